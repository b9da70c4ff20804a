package reporter

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/ethereum-optimism/infra/op-reporter/display"
	"github.com/ethereum-optimism/infra/op-reporter/ingest"
	"github.com/ethereum-optimism/infra/op-reporter/logging"
	"github.com/ethereum-optimism/infra/op-reporter/metrics"
	"github.com/ethereum-optimism/infra/op-reporter/registry"
	"github.com/ethereum-optimism/infra/op-reporter/reporting"
	"github.com/ethereum-optimism/infra/op-reporter/types"
)

// ReportEngine produces one report per invocation.
type ReportEngine interface {
	Run(ctx context.Context) (*reporting.Report, error)
}

// Pipeline turns a result stream into a normalized report. A run reads
// the stream into a raw tree, renders the console display, stamps the
// selected profile, flattens the tree and emits the report to the
// configured sinks.
type Pipeline struct {
	config     *Config
	log        log.Logger
	profile    registry.Profile
	hasProfile bool
	artifacts  *logging.ArtifactWriter
	tracer     trace.Tracer
}

var _ ReportEngine = (*Pipeline)(nil)

// NewPipeline creates a report pipeline from config, loading the
// profile registry and artifact writer it needs.
func NewPipeline(config *Config) (*Pipeline, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	p := &Pipeline{
		config: config,
		log:    config.Log,
		tracer: otel.Tracer("report pipeline"),
	}

	if config.ProfilesConfig != "" {
		reg, err := registry.NewRegistry(registry.Config{
			Log:               config.Log,
			ProfileConfigFile: config.ProfilesConfig,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create registry: %w", err)
		}
		if config.ProfileName != "" {
			profile, err := reg.Get(config.ProfileName)
			if err != nil {
				return nil, fmt.Errorf("failed to resolve profile: %w", err)
			}
			p.profile = profile
			p.hasProfile = true
		}
	}

	if config.ArtifactDir != "" {
		artifacts, err := logging.NewArtifactWriter(config.Log, config.ArtifactDir)
		if err != nil {
			return nil, fmt.Errorf("failed to create artifact writer: %w", err)
		}
		p.artifacts = artifacts
	}

	return p, nil
}

// Run assembles one report from the configured stream.
func (p *Pipeline) Run(ctx context.Context) (*reporting.Report, error) {
	runID := uuid.New().String()
	ctx, span := p.tracer.Start(ctx, "run report")
	defer span.End()

	p.log.Info("Starting report run", "run_id", runID, "input", p.config.Input)

	stream, err := p.readStream(ctx)
	if err != nil {
		return nil, err
	}

	p.renderDisplay(ctx, runID, stream.Root)

	if p.hasProfile {
		p.applyProfile(ctx, stream.Root)
	}

	report := p.normalize(ctx, runID, stream.Root)

	if err := p.emitArtifacts(ctx, report); err != nil {
		return nil, err
	}

	p.recordMetrics(report)

	p.log.Info("Report run completed",
		"run_id", runID,
		"status", report.Stats.Status(),
		"events", stream.Events,
		"skipped", stream.Skipped)
	return report, nil
}

// readStream assembles the raw result tree from the input stream.
func (p *Pipeline) readStream(ctx context.Context) (*ingest.Result, error) {
	_, span := p.tracer.Start(ctx, "ingest stream")
	defer span.End()

	reader := ingest.NewReader(ingest.ReaderConfig{
		Log:  p.log,
		Name: p.config.RunName,
	})
	stream, err := reader.ReadFile(p.config.Input)
	if err != nil {
		return nil, fmt.Errorf("failed to read result stream: %w", err)
	}
	if stream.Skipped > 0 {
		p.log.Warn("Stream contained lines that could not be applied", "skipped", stream.Skipped)
	}
	return stream, nil
}

// renderDisplay writes the human-readable view of the raw tree. A
// broken display never aborts the run, so failures here are logged and
// swallowed.
func (p *Pipeline) renderDisplay(ctx context.Context, runID string, root *types.Group) {
	_, span := p.tracer.Start(ctx, "render display")
	defer span.End()

	var outs []io.Writer
	if !p.config.Quiet {
		outs = append(outs, os.Stdout)
	}
	if p.artifacts != nil {
		dw, err := p.artifacts.DisplayWriter(runID)
		if err != nil {
			p.log.Error("Failed to create display artifact", "run_id", runID, "error", err)
		} else {
			defer dw.Close()
			outs = append(outs, dw)
		}
	}
	if len(outs) == 0 {
		return
	}

	console := display.NewConsole(display.ConsoleConfig{
		Log: p.log,
		Out: io.MultiWriter(outs...),
	})
	if err := console.Render(root); err != nil {
		p.log.Error("Failed to render result tree", "run_id", runID, "error", err)
	}
}

// applyProfile stamps the selected profile onto the raw tree before
// normalization so its properties flow through propagation.
func (p *Pipeline) applyProfile(ctx context.Context, root *types.Group) {
	_, span := p.tracer.Start(ctx, "apply profile")
	defer span.End()

	p.profile.Apply(root)
	p.log.Debug("Applied report profile", "profile", p.profile.Name, "host", root.Host())
}

// normalize flattens the raw tree and assembles the report.
func (p *Pipeline) normalize(ctx context.Context, runID string, root *types.Group) *reporting.Report {
	_, span := p.tracer.Start(ctx, "normalize tree")
	defer span.End()

	flattener := reporting.NewFlattener(p.log)
	flat := flattener.Flatten(root)
	return reporting.BuildReport(flat, runID, flattener.Warnings())
}

// emitArtifacts hands the report to the artifact writer, if one is
// configured.
func (p *Pipeline) emitArtifacts(ctx context.Context, report *reporting.Report) error {
	if p.artifacts == nil {
		return nil
	}
	_, span := p.tracer.Start(ctx, "emit artifacts")
	defer span.End()

	if err := p.artifacts.Emit(report); err != nil {
		return fmt.Errorf("failed to write report artifacts: %w", err)
	}
	return nil
}

// recordMetrics publishes the run result, its per-section outcomes and
// the normalization bookkeeping.
func (p *Pipeline) recordMetrics(report *reporting.Report) {
	profile := p.profileLabel()
	metrics.RecordReport(
		profile,
		report.RunID,
		string(report.Stats.Status()),
		report.Stats.Total,
		report.Stats.Passed,
		report.Stats.Failed,
		report.Stats.Duration,
	)

	stray := 0
	for _, node := range report.Root.Children() {
		section, ok := node.(*types.Group)
		if !ok {
			continue
		}
		if section.Description() == reporting.TopLevelGroupName {
			stray = section.Len()
		}
		for _, child := range section.Children() {
			if outcome, ok := types.OutcomeOf(child); ok {
				metrics.RecordOutcome(profile, report.RunID, section.Description(), outcome.Kind())
			}
		}
	}
	metrics.RecordPropertyConflicts(profile, report.RunID, len(report.Warnings))
	metrics.RecordStrayLeaves(profile, report.RunID, stray)
}

func (p *Pipeline) profileLabel() string {
	if p.hasProfile {
		return p.profile.Name
	}
	return "default"
}
