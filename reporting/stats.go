package reporting

import (
	"time"

	"github.com/ethereum-optimism/infra/op-reporter/types"
)

// Stats aggregates the leaf outcomes of a subtree.
type Stats struct {
	Total    int
	Passed   int
	Failed   int
	Broken   int
	Errored  int
	PassRate float64
	Duration time.Duration // sum of attributed leaf durations
}

// Status derives the overall run result: error dominates, then fail,
// otherwise pass. Broken results never demote a run.
func (s Stats) Status() types.Kind {
	switch {
	case s.Errored > 0:
		return types.KindError
	case s.Failed > 0:
		return types.KindFail
	default:
		return types.KindPass
	}
}

// CollectStats walks node and counts every leaf by kind. Only leaf
// attribution is summed for Duration, so the numbers agree whether the
// tree is scanned before or after normalization.
func CollectStats(node types.Node) Stats {
	var stats Stats
	collect(node, &stats)
	if stats.Total > 0 {
		stats.PassRate = float64(stats.Passed) / float64(stats.Total) * 100
	}
	return stats
}

func collect(node types.Node, stats *Stats) {
	if group, ok := node.(*types.Group); ok {
		for _, child := range group.Children() {
			collect(child, stats)
		}
		return
	}

	outcome, ok := types.OutcomeOf(node)
	if !ok {
		return
	}
	stats.Total++
	stats.Duration += types.AttributedDuration(node)
	switch outcome.Kind() {
	case types.KindPass:
		stats.Passed++
	case types.KindFail:
		stats.Failed++
	case types.KindBroken:
		stats.Broken++
	case types.KindError:
		stats.Errored++
	}
}
