package reporting

import (
	"testing"
	"time"

	"github.com/ethereum-optimism/infra/op-reporter/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnyProblems(t *testing.T) {
	buildTree := func(deepest types.Node) *types.Group {
		inner := types.NewReportingGroup("inner")
		inner.Append(types.Pass())
		inner.Append(deepest)
		outer := types.NewReportingGroup("outer")
		outer.Append(types.Broken("expected"))
		outer.Append(inner)
		root := types.NewReportingGroup("run")
		root.Append(types.Pass())
		root.Append(outer)
		return root
	}

	tests := []struct {
		name string
		node types.Node
		want bool
	}{
		{
			name: "single pass",
			node: types.Pass(),
			want: false,
		},
		{
			name: "single broken",
			node: types.Broken("expected"),
			want: false,
		},
		{
			name: "single fail",
			node: types.Fail("boom", ""),
			want: true,
		},
		{
			name: "single error",
			node: types.Errored("boom", ""),
			want: true,
		},
		{
			name: "timed fail delegates to its outcome",
			node: types.NewTimedOutcome(types.Fail("boom", ""), time.Second),
			want: true,
		},
		{
			name: "empty group",
			node: types.NewGroup("empty"),
			want: false,
		},
		{
			name: "tree of passes and brokens",
			node: buildTree(types.Broken("also expected")),
			want: false,
		},
		{
			name: "fail buried two levels down",
			node: buildTree(types.Fail("boom", "")),
			want: true,
		},
		{
			name: "error buried two levels down",
			node: buildTree(types.NewTimedOutcome(types.Errored("boom", ""), time.Second)),
			want: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AnyProblems(tt.node))
		})
	}
}

func TestAnyProblems_RescanIsStable(t *testing.T) {
	root := types.NewReportingGroup("run")
	section := types.NewReportingGroup("section")
	section.Append(types.NewTimedOutcome(types.Fail("boom", ""), time.Second))
	section.Append(types.Pass())
	root.Append(section)
	NewFlattener(log.New()).Flatten(root)

	first := AnyProblems(root)
	second := AnyProblems(root)
	assert.Equal(t, first, second)
	assert.True(t, first)

	// The scan must not have touched the tree.
	require.Len(t, root.Children(), 1)
	require.Len(t, root.Children()[0].(*types.Group).Children(), 2)
}
