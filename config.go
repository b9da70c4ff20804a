package reporter

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ethereum-optimism/infra/op-reporter/flags"
	"github.com/ethereum/go-ethereum/log"
)

// Config holds the resolved service configuration. All paths are
// absolute by the time a Config exists.
type Config struct {
	Input          string        // Path to the result stream
	RunName        string        // Description of the run root in rendered reports
	ProfileName    string        // Profile to stamp onto each run, empty for none
	ProfilesConfig string        // Path to the profile config file
	RunInterval    time.Duration // Interval between report runs
	RunOnce        bool          // Exit after a single report run
	Quiet          bool          // Disable the console display of the result tree
	ArtifactDir    string        // Directory for report artifacts, empty disables them
	Log            log.Logger
}

// NewConfig validates the CLI flags and resolves them into a Config.
func NewConfig(ctx *cli.Context, logger log.Logger, input string, profileName string, profilesConfig string) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, fmt.Errorf("missing required flags: %w", err)
	}
	if input == "" {
		return nil, errors.New("input stream path is required")
	}
	// A profile name is only resolvable against a config file.
	if profileName != "" && profilesConfig == "" {
		return nil, errors.New("profile config file is required when a profile is selected")
	}

	absInput, err := absPath("input stream", input)
	if err != nil {
		return nil, err
	}

	absProfiles := ""
	if profilesConfig != "" {
		if absProfiles, err = absPath("profile config", profilesConfig); err != nil {
			return nil, err
		}
	}

	artifactDir := ctx.String(flags.ArtifactDir.Name)
	if artifactDir != "" {
		if artifactDir, err = absPath("artifact directory", artifactDir); err != nil {
			return nil, err
		}
	}

	runName := ctx.String(flags.RunName.Name)
	if runName == "" {
		runName = defaultRunName(absInput)
	}

	interval := ctx.Duration(flags.RunInterval.Name)

	return &Config{
		Input:          absInput,
		RunName:        runName,
		ProfileName:    profileName,
		ProfilesConfig: absProfiles,
		RunInterval:    interval,
		RunOnce:        interval == 0,
		Quiet:          ctx.Bool(flags.Quiet.Name),
		ArtifactDir:    artifactDir,
		Log:            logger,
	}, nil
}

func absPath(kind, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s path %q: %w", kind, path, err)
	}
	return abs, nil
}

// defaultRunName derives the run description from the input file name.
func defaultRunName(input string) string {
	base := filepath.Base(input)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
