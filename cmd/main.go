package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/ethereum/go-ethereum/log"
	"github.com/honeycombio/otel-config-go/otelconfig"
	"github.com/urfave/cli/v2"

	reporter "github.com/ethereum-optimism/infra/op-reporter"
	"github.com/ethereum-optimism/infra/op-reporter/exitcodes"
	"github.com/ethereum-optimism/infra/op-reporter/flags"
	"github.com/ethereum-optimism/infra/op-reporter/service"
	"github.com/ethereum-optimism/optimism/devnet-sdk/telemetry"
	"github.com/ethereum-optimism/optimism/op-service/cliapp"
	"github.com/ethereum-optimism/optimism/op-service/ctxinterrupt"
	oplog "github.com/ethereum-optimism/optimism/op-service/log"
)

var (
	Version   = "v0.1.0"
	GitCommit = ""
	GitDate   = ""
)

func main() {
	app := newApp()

	ctx, shutdown, err := telemetry.SetupOpenTelemetry(
		context.Background(),
		otelconfig.WithServiceName(app.Name),
		otelconfig.WithServiceVersion(app.Version),
	)
	if err != nil {
		log.Crit("Failed to initialize OpenTelemetry", "err", err)
	}
	defer shutdown()

	// Healthz and metrics servers outlive individual report runs.
	svc := service.New()
	svc.Start(ctx)
	defer svc.Shutdown()

	ctx = ctxinterrupt.WithSignalWaiterMain(ctx)
	if err := app.RunContext(ctx, os.Args); err != nil {
		log.Crit("Application failed", "message", err)
	}
}

func newApp() *cli.App {
	app := cli.NewApp()
	app.Version = fmt.Sprintf("%s-%s-%s", Version, GitCommit, GitDate)
	app.Name = "op-reporter"
	app.Usage = "Optimism Test Report Service"
	app.Description = "op-reporter turns test result streams into normalized reports"
	app.Flags = cliapp.ProtectFlags(flags.Flags)
	app.Action = cliapp.LifecycleCmd(run)
	app.ExitErrHandler = handleExitErr
	return app
}

// handleExitErr maps typed reporter errors onto process exit codes so
// callers can tell a failing report apart from a broken run.
func handleExitErr(_ *cli.Context, err error) {
	if err == nil {
		return
	}
	var coder cli.ExitCoder
	switch {
	case errors.As(err, &coder):
		cli.HandleExitCoder(coder)
	case reporter.IsRuntimeError(err):
		cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.RuntimeErr))
	case reporter.IsReportFailureError(err):
		cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.ReportFailure))
	default:
		// Untyped errors count as report failures, not runtime faults.
		cli.HandleExitCoder(cli.Exit(err.Error(), exitcodes.ReportFailure))
	}
}

func run(ctx *cli.Context, closeApp context.CancelCauseFunc) (cliapp.Lifecycle, error) {
	logCfg := oplog.ReadCLIConfig(ctx)
	logger := oplog.NewLogger(oplog.AppOut(ctx), logCfg)
	oplog.SetGlobalLogHandler(logger.Handler())
	oplog.SetupDefaults()

	cfg, err := reporter.NewConfig(
		ctx,
		logger,
		ctx.String(flags.Input.Name),
		ctx.String(flags.Profile.Name),
		ctx.String(flags.ProfilesConfig.Name),
	)
	if err != nil {
		// Bad flags or an unreadable profile registry are runtime
		// errors, not report failures.
		return nil, reporter.NewRuntimeError(fmt.Errorf("failed to create config: %w", err))
	}
	cfg.Log.Debug("Config", "config", cfg)

	svc, err := reporter.New(ctx.Context, cfg, Version, closeApp)
	if err != nil {
		return nil, reporter.NewRuntimeError(fmt.Errorf("failed to create reporter: %w", err))
	}
	return svc, nil
}
