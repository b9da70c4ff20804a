package display

import (
	"github.com/ethereum-optimism/infra/op-reporter/record"
	"github.com/ethereum-optimism/infra/op-reporter/types"
)

// Mirror builds a plain-group shadow of a result tree: the same
// descriptions and nesting, every leaf unwrapped to its bare Outcome,
// every group demoted to a plain one. The shadow shares no state with
// the original, so renderers can hold or mangle it freely while
// normalization rewrites the real tree.
func Mirror(root *types.Group) *types.Group {
	return mirror(root, record.NewRecorder())
}

func mirror(group *types.Group, recorder *record.Recorder) *types.Group {
	shadow := types.NewGroup(group.Description())
	for _, child := range group.Children() {
		if nested, ok := child.(*types.Group); ok {
			recorder.Record(shadow, mirror(nested, recorder))
			continue
		}
		if outcome, ok := types.OutcomeOf(child); ok {
			recorder.Record(shadow, outcome)
		}
	}
	return shadow
}
