package record

import (
	"time"

	"github.com/ethereum-optimism/infra/op-reporter/types"
)

// Recorder appends Nodes to Groups and attributes inter-record timing.
// Recording never fails: fail and error outcomes are data to collect,
// not control flow to unwind.
type Recorder struct {
	clock func() time.Time
}

// NewRecorder creates a Recorder on the system clock.
func NewRecorder() *Recorder {
	return NewRecorderWithClock(time.Now)
}

// NewRecorderWithClock creates a Recorder on an injected time source.
func NewRecorderWithClock(clock func() time.Time) *Recorder {
	if clock == nil {
		clock = time.Now
	}
	return &Recorder{clock: clock}
}

// Record appends node to group. A bare Outcome recorded into a
// reporting group is wrapped as a TimedOutcome whose duration is the
// time since the group's previous record; any other node, and any
// record into a plain group, is appended untouched and leaves the
// timing cursor alone.
func (r *Recorder) Record(group *types.Group, node types.Node) {
	if outcome, ok := node.(types.Outcome); ok && group.Reporting() {
		node = types.NewTimedOutcome(outcome, group.MarkRecord(r.clock()))
	}
	group.Append(node)
}
