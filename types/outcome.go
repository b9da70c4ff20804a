package types

import "time"

// Kind identifies the terminal result of a single test
type Kind string

const (
	KindPass   Kind = "pass"
	KindFail   Kind = "fail"   // assertion mismatch
	KindBroken Kind = "broken" // anticipated failure, not a problem
	KindError  Kind = "error"  // unexpected fault while the test ran
)

// IsProblem reports whether results of this kind should fail a run.
// Broken results are anticipated and do not count.
func (k Kind) IsProblem() bool {
	return k == KindFail || k == KindError
}

// Outcome is the immutable result of one test. The execution engine
// produces it exactly once; nothing downstream mutates it.
type Outcome struct {
	kind    Kind
	message string
	detail  string
}

// NewOutcome builds an Outcome of an arbitrary kind. Prefer the named
// constructors when the kind is known statically.
func NewOutcome(kind Kind, message, detail string) Outcome {
	return Outcome{kind: kind, message: message, detail: detail}
}

// Pass returns a passing Outcome.
func Pass() Outcome {
	return Outcome{kind: KindPass}
}

// Fail returns a failing Outcome carrying the assertion message and any
// diagnostic detail.
func Fail(message, detail string) Outcome {
	return Outcome{kind: KindFail, message: message, detail: detail}
}

// Broken returns an Outcome for a test that failed in an anticipated way.
func Broken(message string) Outcome {
	return Outcome{kind: KindBroken, message: message}
}

// Errored returns an Outcome for a test that hit an unexpected fault.
func Errored(message, detail string) Outcome {
	return Outcome{kind: KindError, message: message, detail: detail}
}

// Kind returns the result kind.
func (o Outcome) Kind() Kind { return o.kind }

// Message returns the short human-readable payload, empty for passes.
func (o Outcome) Message() string { return o.message }

// Detail returns the extended diagnostic payload, typically a trace.
func (o Outcome) Detail() string { return o.detail }

// IsProblem reports whether this Outcome should fail the run.
func (o Outcome) IsProblem() bool { return o.kind.IsProblem() }

// Equal reports whether two Outcomes carry the same kind and payload.
func (o Outcome) Equal(other Outcome) bool { return o == other }

// TimedOutcome decorates an Outcome with the wall-clock duration
// attributed to it at record time (elapsed since the previous record in
// the same group). Only the recorder creates these, and only when the
// target group is metadata-capable.
type TimedOutcome struct {
	outcome  Outcome
	duration time.Duration
}

// NewTimedOutcome wraps an Outcome with its attributed duration.
// Negative durations are clamped to zero.
func NewTimedOutcome(outcome Outcome, duration time.Duration) TimedOutcome {
	if duration < 0 {
		duration = 0
	}
	return TimedOutcome{outcome: outcome, duration: duration}
}

// Outcome returns the wrapped Outcome.
func (t TimedOutcome) Outcome() Outcome { return t.outcome }

// Duration returns the attributed duration.
func (t TimedOutcome) Duration() time.Duration { return t.duration }

// IsProblem reports whether the wrapped Outcome should fail the run.
func (t TimedOutcome) IsProblem() bool { return t.outcome.IsProblem() }

// Equal compares the wrapped Outcomes only; duration is attribution
// metadata, not identity. Callers that need map keys should key on
// Outcome() for the same reason.
func (t TimedOutcome) Equal(other TimedOutcome) bool {
	return t.outcome == other.outcome
}
