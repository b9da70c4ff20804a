package reporting

import (
	"testing"
	"time"

	"github.com/ethereum-optimism/infra/op-reporter/types"
	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
)

func TestCollectStats(t *testing.T) {
	root := types.NewReportingGroup("run")
	section := types.NewReportingGroup("section")
	section.Append(types.NewTimedOutcome(types.Pass(), 2*time.Second))
	section.Append(types.NewTimedOutcome(types.Fail("boom", ""), 3*time.Second))
	section.Append(types.Broken("flake"))
	root.Append(section)
	root.Append(types.NewTimedOutcome(types.Errored("fault", ""), time.Second))
	root.Append(types.Pass())

	stats := CollectStats(root)

	assert.Equal(t, 5, stats.Total)
	assert.Equal(t, 2, stats.Passed)
	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Broken)
	assert.Equal(t, 1, stats.Errored)
	assert.Equal(t, 6*time.Second, stats.Duration, "only attributed leaf durations are summed")
	assert.InDelta(t, 40.0, stats.PassRate, 0.01)
}

func TestCollectStats_AgreesAcrossNormalization(t *testing.T) {
	build := func() *types.Group {
		root := types.NewReportingGroup("run")
		nested := types.NewReportingGroup("outer")
		inner := types.NewReportingGroup("inner")
		inner.Append(types.NewTimedOutcome(types.Pass(), time.Second))
		inner.Append(types.NewTimedOutcome(types.Fail("boom", ""), time.Second))
		nested.Append(inner)
		nested.Append(types.NewTimedOutcome(types.Broken("flake"), time.Second))
		root.Append(nested)
		root.Append(types.NewTimedOutcome(types.Pass(), time.Second))
		return root
	}

	before := CollectStats(build())

	normalized := build()
	NewFlattener(log.New()).Flatten(normalized)
	after := CollectStats(normalized)

	assert.Equal(t, before, after)
}

func TestStats_Status(t *testing.T) {
	tests := []struct {
		name  string
		stats Stats
		want  types.Kind
	}{
		{
			name:  "empty run passes",
			stats: Stats{},
			want:  types.KindPass,
		},
		{
			name:  "all passed",
			stats: Stats{Total: 3, Passed: 3},
			want:  types.KindPass,
		},
		{
			name:  "broken alone does not demote",
			stats: Stats{Total: 2, Passed: 1, Broken: 1},
			want:  types.KindPass,
		},
		{
			name:  "failure demotes",
			stats: Stats{Total: 2, Passed: 1, Failed: 1},
			want:  types.KindFail,
		},
		{
			name:  "error dominates failure",
			stats: Stats{Total: 3, Failed: 1, Errored: 1},
			want:  types.KindError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.stats.Status())
		})
	}
}
