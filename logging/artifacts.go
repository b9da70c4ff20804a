package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/ethereum-optimism/infra/op-reporter/reporting"
	"github.com/ethereum-optimism/infra/op-reporter/types"
	"github.com/ethereum/go-ethereum/log"
)

const (
	RunDirectoryPrefix = "run-" // every run directory name starts with this
	DisplayFilename    = "display.txt"
	SummaryFilename    = "summary.txt"
)

// ArtifactWriter persists per-run report artifacts under a base
// directory, one subdirectory per run: the rendered display tree and a
// post-normalization summary. It consumes reports as a reporting.Sink.
type ArtifactWriter struct {
	log     log.Logger
	baseDir string
	mu      sync.Mutex // serializes Emit across concurrent runs
}

var _ reporting.Sink = (*ArtifactWriter)(nil)

// NewArtifactWriter creates an artifact writer rooted at baseDir.
func NewArtifactWriter(logger log.Logger, baseDir string) (*ArtifactWriter, error) {
	if baseDir == "" {
		return nil, fmt.Errorf("base directory is required")
	}
	if logger == nil {
		logger = log.New()
	}

	if err := os.MkdirAll(baseDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory %s: %w", baseDir, err)
	}

	return &ArtifactWriter{
		log:     logger,
		baseDir: baseDir,
	}, nil
}

// BaseDir returns the directory all run artifacts live under.
func (w *ArtifactWriter) BaseDir() string {
	return w.baseDir
}

// DirectoryForRunID returns the artifact directory for a run, creating
// it if needed.
func (w *ArtifactWriter) DirectoryForRunID(runID string) (string, error) {
	if runID == "" {
		return "", fmt.Errorf("run id is required")
	}

	dir := filepath.Join(w.baseDir, RunDirectoryPrefix+runID)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create run directory %s: %w", dir, err)
	}
	return dir, nil
}

// DisplayWriter opens the display artifact of a run for writing, so the
// console renderer can tee its output into the run directory.
func (w *ArtifactWriter) DisplayWriter(runID string) (io.WriteCloser, error) {
	dir, err := w.DirectoryForRunID(runID)
	if err != nil {
		return nil, err
	}

	path := filepath.Join(dir, DisplayFilename)
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create display file %s: %w", path, err)
	}
	return f, nil
}

// Emit writes the summary artifact for a normalized report.
func (w *ArtifactWriter) Emit(report *reporting.Report) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	dir, err := w.DirectoryForRunID(report.RunID)
	if err != nil {
		return err
	}

	path := filepath.Join(dir, SummaryFilename)
	if err := os.WriteFile(path, []byte(renderSummary(report)), 0644); err != nil {
		return fmt.Errorf("failed to write summary %s: %w", path, err)
	}

	w.log.Debug("Report artifacts written", "dir", dir)
	return nil
}

// renderSummary formats the post-normalization view of a report: run
// stats, one line per flattened section, and any property warnings.
func renderSummary(report *reporting.Report) string {
	var b strings.Builder
	stats := report.Stats

	fmt.Fprintf(&b, "Run:       %s\n", report.RunID)
	fmt.Fprintf(&b, "Generated: %s\n", report.Generated.Format(time.RFC3339))
	fmt.Fprintf(&b, "Status:    %s\n", strings.ToUpper(string(stats.Status())))
	fmt.Fprintf(&b, "Tests:     %d total, %d passed, %d failed, %d broken, %d errored\n",
		stats.Total, stats.Passed, stats.Failed, stats.Broken, stats.Errored)
	fmt.Fprintf(&b, "Pass rate: %.1f%%\n", stats.PassRate)
	fmt.Fprintf(&b, "Duration:  %s\n", stats.Duration)

	b.WriteString("\nSections:\n")
	for _, child := range report.Root.Children() {
		group, ok := child.(*types.Group)
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "  %s: %d outcome(s)\n", group.Description(), group.Len())
		if properties := group.Properties(); len(properties) > 0 {
			keys := make([]string, 0, len(properties))
			for key := range properties {
				keys = append(keys, key)
			}
			sort.Strings(keys)
			for _, key := range keys {
				fmt.Fprintf(&b, "    %s=%s\n", key, properties[key])
			}
		}
	}

	if len(report.Warnings) > 0 {
		b.WriteString("\nWarnings:\n")
		for _, warning := range report.Warnings {
			if warning.Key == "" {
				fmt.Fprintf(&b, "  properties from %q could not attach to plain group %q\n", warning.From, warning.To)
			} else {
				fmt.Fprintf(&b, "  property %q from %q kept the value already on %q\n", warning.Key, warning.From, warning.To)
			}
		}
	}

	return b.String()
}
