package record

import (
	"errors"
	"time"

	"github.com/ethereum-optimism/infra/op-reporter/reporting"
	"github.com/ethereum-optimism/infra/op-reporter/types"
	"github.com/ethereum/go-ethereum/log"
)

// ErrNoOpenGroup signals a Record or Close against an empty session:
// the caller's open/close calls are unbalanced.
var ErrNoOpenGroup = errors.New("no open group in session")

// Display is the boundary to the pre-normalization rendering
// collaborator. Render failures belong to the collaborator: the session
// discards errors and recovers panics at this seam so normalization
// always runs.
type Display interface {
	Render(root *types.Group) error
}

// SessionConfig configures a Session. The zero value is usable: it
// gets a default logger, the system clock, a fresh Flattener and no
// display.
type SessionConfig struct {
	Log       log.Logger
	Clock     func() time.Time
	Display   Display
	Flattener *reporting.Flattener
}

// Session tracks the stack of open groups for one run, replacing the
// implicit "currently open block" context of a test harness with state
// owned by a single goroutine; nothing here locks (callers running
// concurrent producers must serialize their calls).
type Session struct {
	log       log.Logger
	clock     func() time.Time
	recorder  *Recorder
	display   Display
	flattener *reporting.Flattener
	stack     []*types.Group
}

// NewSession creates a Session from cfg, filling defaults for anything
// unset.
func NewSession(cfg SessionConfig) *Session {
	if cfg.Log == nil {
		cfg.Log = log.New()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Flattener == nil {
		cfg.Flattener = reporting.NewFlattener(cfg.Log)
	}
	return &Session{
		log:       cfg.Log,
		clock:     cfg.Clock,
		recorder:  NewRecorderWithClock(cfg.Clock),
		display:   cfg.Display,
		flattener: cfg.Flattener,
	}
}

// Open starts a reporting group nested under the innermost open group
// and makes it current.
func (s *Session) Open(description string) *types.Group {
	group := types.NewReportingGroupAt(description, s.clock())
	s.stack = append(s.stack, group)
	s.log.Debug("Opened group", "description", description, "depth", len(s.stack))
	return group
}

// Record appends a node to the innermost open group via the recorder.
func (s *Session) Record(node types.Node) error {
	if len(s.stack) == 0 {
		return ErrNoOpenGroup
	}
	s.recorder.Record(s.stack[len(s.stack)-1], node)
	return nil
}

// Depth returns the number of open groups.
func (s *Session) Depth() int {
	return len(s.stack)
}

// Warnings returns the property conflicts recorded while normalizing.
func (s *Session) Warnings() []reporting.PropertyConflict {
	return s.flattener.Warnings()
}

// Close seals the innermost open group, fixing its elapsed duration.
// A nested group is recorded as a child of the group above it and Close
// returns a nil root. Closing the outermost group additionally renders
// the tree for display and then normalizes it; only that Close returns
// the (now three-level) root.
func (s *Session) Close() (*types.Group, error) {
	if len(s.stack) == 0 {
		return nil, ErrNoOpenGroup
	}
	group := s.stack[len(s.stack)-1]
	s.stack = s.stack[:len(s.stack)-1]
	group.SetElapsed(s.clock().Sub(group.Start()))

	if len(s.stack) > 0 {
		s.recorder.Record(s.stack[len(s.stack)-1], group)
		return nil, nil
	}

	s.render(group)
	return s.flattener.Flatten(group), nil
}

// render hands the pre-normalization tree to the display collaborator,
// shielding the caller from whatever the collaborator does with it.
func (s *Session) render(root *types.Group) {
	if s.display == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			s.log.Warn("Display collaborator panicked, continuing to normalization", "panic", r)
		}
	}()
	if err := s.display.Render(root); err != nil {
		s.log.Warn("Display collaborator failed, continuing to normalization", "err", err)
	}
}
