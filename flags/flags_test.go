package flags

import (
	"testing"
	"time"

	opservice "github.com/ethereum-optimism/optimism/op-service"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// TestRequiredFlags asserts the input stream is the only required flag.
func TestRequiredFlags(t *testing.T) {
	require.Equal(t, []cli.Flag{Input}, requiredFlags)

	for _, f := range optionalFlags {
		opt, ok := f.(cli.RequiredFlag)
		require.True(t, ok)
		assert.False(t, opt.IsRequired(), "optional flag %s must not be required", f.Names()[0])
	}
}

// TestUniqueFlagNames guards against two flags claiming the same name.
func TestUniqueFlagNames(t *testing.T) {
	seen := make(map[string]struct{})
	for _, f := range Flags {
		for _, name := range f.Names() {
			_, dup := seen[name]
			assert.False(t, dup, "duplicate flag %s", name)
			seen[name] = struct{}{}
		}
	}
}

// TestEnvVarNaming asserts every flag reads exactly one well-formed
// OP_REPORTER_* environment variable.
func TestEnvVarNaming(t *testing.T) {
	for _, f := range Flags {
		name := f.Names()[0]
		t.Run(name, func(t *testing.T) {
			getter, ok := f.(interface{ GetEnvVars() []string })
			require.True(t, ok, "flag %s must support env vars", name)

			envVars := getter.GetEnvVars()
			require.Len(t, envVars, 1)
			assert.Equal(t, opservice.FlagNameToEnvVarName(name, EnvVarPrefix), envVars[0])
		})
	}
}

// TestFlagDefaults parses a minimal command line and checks the
// fallback values the rest of the service assumes.
func TestFlagDefaults(t *testing.T) {
	app := &cli.App{
		Flags: Flags,
		Action: func(ctx *cli.Context) error {
			assert.Equal(t, time.Duration(0), ctx.Duration(RunInterval.Name), "default is run-once mode")
			assert.False(t, ctx.Bool(Quiet.Name))
			assert.Equal(t, "reports", ctx.String(ArtifactDir.Name))
			assert.Empty(t, ctx.String(RunName.Name))
			assert.Empty(t, ctx.String(Profile.Name))
			return CheckRequired(ctx)
		},
	}
	require.NoError(t, app.Run([]string{"op-reporter", "--input", "results.jsonl"}))
}

// TestMissingInput asserts the CLI refuses to start without an input
// stream.
func TestMissingInput(t *testing.T) {
	app := &cli.App{
		Flags:  Flags,
		Action: func(ctx *cli.Context) error { return nil },
	}

	err := app.Run([]string{"op-reporter"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "input")
}
