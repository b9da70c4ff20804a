package flags

import (
	"fmt"

	"github.com/urfave/cli/v2"

	opservice "github.com/ethereum-optimism/optimism/op-service"
	opflags "github.com/ethereum-optimism/optimism/op-service/flags"
	oplog "github.com/ethereum-optimism/optimism/op-service/log"
	opmetrics "github.com/ethereum-optimism/optimism/op-service/metrics"
)

const EnvVarPrefix = "OP_REPORTER"

func prefixEnvVars(name string) []string {
	return opservice.PrefixEnvVar(EnvVarPrefix, name)
}

var (
	Input = &cli.StringFlag{
		Name:     "input",
		Required: true,
		EnvVars:  prefixEnvVars("INPUT"),
		Usage:    "Path to the result stream to report on (eg. 'results.jsonl')",
	}
	RunName = &cli.StringFlag{
		Name:    "run-name",
		EnvVars: prefixEnvVars("RUN_NAME"),
		Usage:   "Name for the run root in rendered reports. Defaults to the input file name.",
	}
	Profile = &cli.StringFlag{
		Name:    "profile",
		EnvVars: prefixEnvVars("PROFILE"),
		Usage:   "Report profile to apply (eg. 'ci'). Requires a profile config file.",
	}
	ProfilesConfig = &cli.StringFlag{
		Name:    "profiles",
		EnvVars: prefixEnvVars("PROFILES"),
		Usage:   "Path to profile config file (eg. 'profiles.yaml')",
	}
	RunInterval = &cli.DurationFlag{
		Name:    "run-interval",
		EnvVars: prefixEnvVars("RUN_INTERVAL"),
		Usage:   "Interval between report runs (e.g. '1h', '30m'). Set to 0 or omit for run-once mode.",
	}
	Quiet = &cli.BoolFlag{
		Name:    "quiet",
		EnvVars: prefixEnvVars("QUIET"),
		Usage:   "Disable the console display of the result tree",
	}
	ArtifactDir = &cli.StringFlag{
		Name:    "artifact-dir",
		Value:   "reports",
		EnvVars: prefixEnvVars("ARTIFACT_DIR"),
		Usage:   "Directory to store report artifacts. Set empty to disable artifacts.",
	}
)

var requiredFlags = []cli.Flag{
	Input,
}

var optionalFlags = []cli.Flag{
	RunName,
	Profile,
	ProfilesConfig,
	RunInterval,
	Quiet,
	ArtifactDir,
}

// Flags contains the list of configuration options available to the binary.
var Flags []cli.Flag

func init() {
	optionalFlags = append(optionalFlags, oplog.CLIFlags(EnvVarPrefix)...)
	optionalFlags = append(optionalFlags, opmetrics.CLIFlags(EnvVarPrefix)...)

	Flags = append(requiredFlags, optionalFlags...)
}

func CheckRequired(ctx *cli.Context) error {
	for _, f := range requiredFlags {
		if !ctx.IsSet(f.Names()[0]) {
			return fmt.Errorf("flag %s is required", f.Names()[0])
		}
	}
	return opflags.CheckRequiredXor(ctx)
}
