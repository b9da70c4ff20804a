package reporter

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/infra/op-reporter/exitcodes"
	"github.com/ethereum-optimism/infra/op-reporter/reporting"
	"github.com/ethereum-optimism/optimism/op-service/cliapp"
)

var _ cliapp.Lifecycle = &reporter{}

// reporter is the service that turns result streams into reports.
type reporter struct {
	ctx       context.Context
	config    *Config
	version   string
	engine    ReportEngine
	scheduler RunScheduler
	report    *reporting.Report

	shutdownCallback func(error) // stops the app after a clean run-once exit
}

func New(ctx context.Context, config *Config, version string, shutdownCallback func(error)) (*reporter, error) {
	if config == nil {
		return nil, errors.New("config is required")
	}

	config.Log.Debug("Creating reporter",
		"input", config.Input,
		"runName", config.RunName,
		"profile", config.ProfileName,
		"profilesConfig", config.ProfilesConfig,
		"runInterval", config.RunInterval,
		"runOnce", config.RunOnce)

	engine, err := NewPipeline(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create pipeline: %w", err)
	}

	return &reporter{
		ctx:              ctx,
		config:           config,
		version:          version,
		engine:           engine,
		scheduler:        NewDefaultRunScheduler(config.RunInterval, config.RunOnce, config.Log),
		shutdownCallback: shutdownCallback,
	}, nil
}

// Start implements cliapp.Lifecycle. The first report is built before
// Start returns, so run-once mode resolves its exit code right here.
func (r *reporter) Start(ctx context.Context) error {
	// A panic in the run path exits with the runtime error code
	// instead of unwinding into cliapp.
	defer func() {
		if rec := recover(); rec != nil {
			r.config.Log.Error("Panic during report run", "error", rec)
			os.Exit(exitcodes.RuntimeErr)
		}
	}()

	r.ctx = ctx
	r.config.Log.Info("Starting op-reporter", "version", r.version)
	r.config.Log.Debug("Resolved inputs",
		"stream", r.config.Input,
		"profiles", r.config.ProfilesConfig)

	// The scheduler builds the first report immediately on startup
	r.scheduler.RegisterCallback(r.runReport)
	if err := r.scheduler.Start(ctx); err != nil {
		// Unreadable streams and bad profiles surface here as runtime errors
		r.config.Log.Error("First report run failed", "error", err)
		return cli.Exit(err.Error(), exitcodes.RuntimeErr)
	}

	if r.config.RunOnce {
		r.config.Log.Info("Run-once report finished")

		// Failing outcomes map to the report failure exit code.
		if r.report != nil && r.report.AnyProblems() {
			r.config.Log.Warn("Report contains failing outcomes")
			return NewReportFailureError(r.report.String())
		}

		// A clean run-once exit stops the app through the shutdown
		// callback rather than an error.
		go func() {
			r.shutdownCallback(nil)
		}()
		return nil
	}

	r.config.Log.Debug("Reporter started")
	return nil
}

// runReport builds one report and keeps the result for exit handling
func (r *reporter) runReport() error {
	r.config.Log.Info("Building report")
	report, err := r.engine.Run(r.ctx)
	if err != nil {
		r.config.Log.Error("Report run failed", "error", err)
		return NewRuntimeError(err)
	}
	r.report = report
	return nil
}

// Stop implements cliapp.Lifecycle by winding down the scheduler.
func (r *reporter) Stop(ctx context.Context) error {
	r.config.Log.Info("Stopping op-reporter")

	if err := r.scheduler.Stop(); err != nil {
		return err
	}

	r.config.Log.Debug("Reporter stopped")
	return nil
}

// Stopped implements cliapp.Lifecycle.
func (r *reporter) Stopped() bool {
	return r.scheduler.Stopped()
}

// WaitForShutdown blocks until the scheduler's goroutines exit or ctx
// expires. Tests use it to keep runs from leaking into each other.
func (r *reporter) WaitForShutdown(ctx context.Context) error {
	return r.scheduler.WaitForShutdown(ctx)
}
