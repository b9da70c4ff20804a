package reporting

import (
	"fmt"
	"time"

	"github.com/ethereum-optimism/infra/op-reporter/types"
)

// Report is the contract object handed to emitters once normalization
// has run: the three-level tree plus run bookkeeping. Every group under
// Root carries only leaves and exposes its description, property map,
// elapsed duration, start time and host; emitters serialize that
// however they like.
type Report struct {
	Root      *types.Group
	RunID     string
	Stats     Stats
	Warnings  []PropertyConflict
	Generated time.Time
}

// BuildReport assembles the emitter-facing Report for a normalized
// root. warnings should be the Flattener's collected conflicts for the
// same run.
func BuildReport(root *types.Group, runID string, warnings []PropertyConflict) *Report {
	return &Report{
		Root:      root,
		RunID:     runID,
		Stats:     CollectStats(root),
		Warnings:  warnings,
		Generated: time.Now(),
	}
}

// AnyProblems reports whether the report's tree contains failures.
func (r *Report) AnyProblems() bool {
	return AnyProblems(r.Root)
}

// String summarizes the report in a single line, suitable for exit
// messages and logs.
func (r *Report) String() string {
	return fmt.Sprintf("run %s: %s (%d total, %d passed, %d failed, %d broken, %d errored in %s)",
		r.RunID, r.Stats.Status(),
		r.Stats.Total, r.Stats.Passed, r.Stats.Failed, r.Stats.Broken, r.Stats.Errored,
		r.Stats.Duration)
}

// Sink receives finished reports. Implementations live at the module
// edge: artifact writers here, machine-format emitters in whatever
// consumes this package.
type Sink interface {
	Emit(report *Report) error
}
