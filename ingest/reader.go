package ingest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/acarl005/stripansi"
	"github.com/ethereum-optimism/infra/op-reporter/record"
	"github.com/ethereum-optimism/infra/op-reporter/types"
	"github.com/ethereum/go-ethereum/log"
	"golang.org/x/mod/semver"
)

// ReaderConfig configures a stream reader.
type ReaderConfig struct {
	Log   log.Logger
	Clock func() time.Time // defaults to time.Now
	Name  string           // description of the run root, defaults to "results"
}

// Reader consumes a JSONL result stream and assembles the raw result
// tree it describes. Every stream is rooted in a reporting Group named
// after the run, so a stream that records outcomes without ever opening
// a group still produces a well-formed tree.
type Reader struct {
	log      log.Logger
	clock    func() time.Time
	name     string
	recorder *record.Recorder
}

// Result is the assembled tree plus stream accounting.
type Result struct {
	Root    *types.Group
	Events  int // lines applied to the tree
	Skipped int // lines tolerated and dropped
}

// NewReader creates a stream reader from cfg, filling defaults for
// anything unset.
func NewReader(cfg ReaderConfig) *Reader {
	if cfg.Log == nil {
		cfg.Log = log.New()
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}
	if cfg.Name == "" {
		cfg.Name = "results"
	}
	return &Reader{
		log:      cfg.Log,
		clock:    cfg.Clock,
		name:     cfg.Name,
		recorder: record.NewRecorderWithClock(cfg.Clock),
	}
}

// Read consumes the stream until EOF and returns the raw tree. Lines
// that do not decode and actions the reader does not know are skipped
// with a debug log. An invalid schema version, a close without a
// matching open, or EOF with groups still open fail the read.
func (r *Reader) Read(input io.Reader) (*Result, error) {
	root := types.NewReportingGroupAt(r.name, r.clock())
	stack := []*types.Group{root}
	result := &Result{Root: root}

	scanner := bufio.NewScanner(input)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var event Event
		if err := json.Unmarshal([]byte(line), &event); err != nil {
			r.log.Debug("Skipping malformed stream line", "line", lineNo, "error", err)
			result.Skipped++
			continue
		}

		switch event.Action {
		case ActionSchema:
			if err := checkSchema(event.Version); err != nil {
				return nil, err
			}
		case ActionOpen:
			group := types.NewReportingGroupAt(event.Name, r.clock())
			stack = append(stack, group)
		case ActionClose:
			if len(stack) == 1 {
				return nil, fmt.Errorf("unbalanced stream: close event on line %d has no open group", lineNo)
			}
			group := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if event.Elapsed > 0 {
				group.SetElapsed(secondsToDuration(event.Elapsed))
			} else {
				group.SetElapsed(r.clock().Sub(group.Start()))
			}
			r.recorder.Record(stack[len(stack)-1], group)
		case ActionPass, ActionFail, ActionBroken, ActionError:
			r.recorder.Record(stack[len(stack)-1], r.outcomeFor(event))
		default:
			r.log.Debug("Skipping unknown stream action", "line", lineNo, "action", event.Action)
			result.Skipped++
			continue
		}
		result.Events++
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read stream: %w", err)
	}
	if open := len(stack) - 1; open > 0 {
		return nil, fmt.Errorf("unbalanced stream: %d group(s) still open at EOF", open)
	}
	root.SetElapsed(r.clock().Sub(root.Start()))
	return result, nil
}

// ReadFile reads a stream from a file on disk.
func (r *Reader) ReadFile(path string) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open stream %s: %w", path, err)
	}
	defer f.Close()
	return r.Read(f)
}

// outcomeFor converts an outcome event into a leaf. Messages and
// details are stripped of ANSI escapes before entering the report, and
// the test name stands in for a missing message. When the event carries
// its own elapsed measurement the outcome arrives pre-timed, otherwise
// recording attributes inter-record time as usual.
func (r *Reader) outcomeFor(event Event) types.Node {
	message := composeMessage(event.Test, stripansi.Strip(event.Message))
	outcome := types.NewOutcome(kindFor(event.Action), message, stripansi.Strip(event.Detail))
	if event.Elapsed > 0 {
		return types.NewTimedOutcome(outcome, secondsToDuration(event.Elapsed))
	}
	return outcome
}

func kindFor(action string) types.Kind {
	switch action {
	case ActionPass:
		return types.KindPass
	case ActionFail:
		return types.KindFail
	case ActionBroken:
		return types.KindBroken
	default:
		return types.KindError
	}
}

// composeMessage merges the test name and message into a single label.
func composeMessage(test, message string) string {
	switch {
	case test == "":
		return message
	case message == "":
		return test
	default:
		return test + ": " + message
	}
}

func checkSchema(version string) error {
	if !semver.IsValid(version) {
		return fmt.Errorf("invalid stream schema version %q", version)
	}
	if major := semver.Major(version); major != SchemaMajor {
		return fmt.Errorf("unsupported stream schema version %q, want major %s", version, SchemaMajor)
	}
	return nil
}

func secondsToDuration(seconds float64) time.Duration {
	return time.Duration(seconds * float64(time.Second))
}
