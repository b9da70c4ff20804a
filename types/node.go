package types

import "time"

// Node is one unit of a result tree: a leaf carrying an Outcome
// (possibly timed) or a Group containing further Nodes. The set of
// implementations is closed, so consumers can switch exhaustively over
// Outcome, TimedOutcome and *Group.
type Node interface {
	// node restricts implementations to this package.
	node()
}

func (Outcome) node()      {}
func (TimedOutcome) node() {}
func (*Group) node()       {}

// IsLeaf reports whether n is an Outcome or TimedOutcome.
func IsLeaf(n Node) bool {
	switch n.(type) {
	case Outcome, TimedOutcome:
		return true
	default:
		return false
	}
}

// OutcomeOf unwraps a leaf to its Outcome. ok is false when n is a Group.
func OutcomeOf(n Node) (Outcome, bool) {
	switch v := n.(type) {
	case Outcome:
		return v, true
	case TimedOutcome:
		return v.Outcome(), true
	default:
		return Outcome{}, false
	}
}

// AttributedDuration returns the duration attributed to a leaf at record
// time. Bare Outcomes (recorded into plain groups) and Groups carry no
// attribution and report zero.
func AttributedDuration(n Node) time.Duration {
	if timed, ok := n.(TimedOutcome); ok {
		return timed.Duration()
	}
	return 0
}
