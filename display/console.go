package display

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/ethereum-optimism/infra/op-reporter/record"
	"github.com/ethereum-optimism/infra/op-reporter/reporting"
	"github.com/ethereum-optimism/infra/op-reporter/types"
	"github.com/ethereum-optimism/infra/op-reporter/ui"
	"github.com/ethereum/go-ethereum/log"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

const headerWidth = 60

// ConsoleConfig configures the console renderer.
type ConsoleConfig struct {
	Log   log.Logger
	Out   io.Writer // defaults to os.Stdout
	Title string    // header title, defaults to "Test Results"
}

// Console renders the pre-normalization result tree for humans: a box
// header with run metadata, the tree itself, a colored summary table
// and the list of problems. It implements record.Display.
type Console struct {
	log   log.Logger
	out   io.Writer
	title string
}

var _ record.Display = (*Console)(nil)

// NewConsole creates a console renderer from cfg, filling defaults for
// anything unset.
func NewConsole(cfg ConsoleConfig) *Console {
	if cfg.Log == nil {
		cfg.Log = log.New()
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}
	if cfg.Title == "" {
		cfg.Title = "Test Results"
	}
	return &Console{log: cfg.Log, out: cfg.Out, title: cfg.Title}
}

// Render writes the human-readable view of root. The tree is drawn
// from a plain mirror, so nothing here can disturb the groups the
// normalizer is about to take over.
func (c *Console) Render(root *types.Group) error {
	shadow := Mirror(root)
	stats := reporting.CollectStats(root)

	var buf bytes.Buffer
	c.writeHeader(&buf, root)
	c.writeTree(&buf, shadow, nil)
	buf.WriteString("\n")
	c.writeSummary(&buf, root, stats)
	c.writeProblems(&buf, shadow)

	if _, err := c.out.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write console output: %w", err)
	}
	return nil
}

func (c *Console) writeHeader(buf *bytes.Buffer, root *types.Group) {
	buf.WriteString(ui.BuildBoxHeader(c.title, headerWidth))
	buf.WriteString(ui.BuildBoxLine("Run:     "+root.Description(), headerWidth))
	buf.WriteString(ui.BuildBoxLine("Host:    "+root.Host(), headerWidth))
	buf.WriteString(ui.BuildBoxLine("Started: "+root.Start().Format(time.RFC3339), headerWidth))
	buf.WriteString(ui.BuildBoxFooter(headerWidth))
	buf.WriteString("\n")
}

// writeTree draws the mirrored hierarchy with box-drawing prefixes.
func (c *Console) writeTree(buf *bytes.Buffer, group *types.Group, parentIsLast []bool) {
	if len(parentIsLast) == 0 {
		buf.WriteString(group.Description() + "\n")
	}
	children := group.Children()
	for i, child := range children {
		isLast := i == len(children)-1
		prefix := ui.BuildTreePrefix(len(parentIsLast)+1, isLast, parentIsLast)
		if nested, ok := child.(*types.Group); ok {
			buf.WriteString(prefix + nested.Description() + "\n")
			next := make([]bool, 0, len(parentIsLast)+1)
			next = append(next, parentIsLast...)
			next = append(next, isLast)
			c.writeTree(buf, nested, next)
			continue
		}
		outcome, _ := types.OutcomeOf(child)
		buf.WriteString(prefix + leafLine(outcome) + "\n")
	}
}

func (c *Console) writeSummary(buf *bytes.Buffer, root *types.Group, stats reporting.Stats) {
	t := table.NewWriter()
	t.SetOutputMirror(buf)
	t.SetTitle("Summary")
	t.AppendHeader(table.Row{"TESTS", "PASSED", "FAILED", "BROKEN", "ERRORED", "DURATION", "STATUS"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "TESTS", Align: text.AlignRight},
		{Name: "PASSED", Align: text.AlignRight},
		{Name: "FAILED", Align: text.AlignRight},
		{Name: "BROKEN", Align: text.AlignRight},
		{Name: "ERRORED", Align: text.AlignRight},
		{Name: "DURATION", Align: text.AlignRight},
	})
	t.AppendRow(table.Row{
		stats.Total,
		stats.Passed,
		stats.Failed,
		stats.Broken,
		stats.Errored,
		formatDuration(root.Elapsed()),
		strings.ToUpper(string(stats.Status())),
	})

	switch {
	case stats.Failed > 0 || stats.Errored > 0:
		t.SetStyle(table.StyleColoredBlackOnRedWhite)
	case stats.Broken > 0:
		t.SetStyle(table.StyleColoredBlackOnYellowWhite)
	default:
		t.SetStyle(table.StyleColoredBlackOnGreenWhite)
	}
	t.Render()
}

func (c *Console) writeProblems(buf *bytes.Buffer, shadow *types.Group) {
	problems := collectProblems(shadow, nil)
	if len(problems) == 0 {
		return
	}
	buf.WriteString("\nProblems:\n")
	for _, problem := range problems {
		buf.WriteString("- " + problem + "\n")
	}
}

// collectProblems gathers one line per failing leaf, located by its
// chain of group descriptions (the root is excluded, matching how
// normalized sections are named).
func collectProblems(group *types.Group, chain []string) []string {
	var problems []string
	for _, child := range group.Children() {
		if nested, ok := child.(*types.Group); ok {
			next := make([]string, 0, len(chain)+1)
			next = append(next, chain...)
			next = append(next, nested.Description())
			problems = append(problems, collectProblems(nested, next)...)
			continue
		}
		outcome, ok := types.OutcomeOf(child)
		if !ok || !outcome.IsProblem() {
			continue
		}
		label := string(outcome.Kind())
		if outcome.Message() != "" {
			label += ": " + outcome.Message()
		}
		if len(chain) > 0 {
			label = strings.Join(chain, "/") + ": " + label
		}
		problems = append(problems, label)
	}
	return problems
}

// leafLine renders one outcome with its status symbol.
func leafLine(outcome types.Outcome) string {
	line := statusChar(outcome.Kind()) + " " + string(outcome.Kind())
	if outcome.Message() != "" {
		line += ": " + outcome.Message()
	}
	return line
}

// statusChar returns a character representing the outcome kind.
func statusChar(kind types.Kind) string {
	switch kind {
	case types.KindPass:
		return "✓"
	case types.KindFail:
		return "✗"
	case types.KindBroken:
		return "⊝"
	case types.KindError:
		return "⚠"
	default:
		return "?"
	}
}

// formatDuration formats a duration for display.
func formatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	return d.Truncate(time.Millisecond).String()
}
