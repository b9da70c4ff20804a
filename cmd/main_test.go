package main_test

import (
	"context"
	"errors"
	"os"
	"os/exec"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/ethereum-optimism/infra/op-reporter/exitcodes"
	"github.com/stretchr/testify/require"
)

var (
	buildOnce sync.Once
	buildPath string
	buildFail error
)

// reporterBinary compiles op-reporter once per test run and returns
// the binary path.
func reporterBinary(t *testing.T) string {
	t.Helper()

	buildOnce.Do(func() {
		dir, err := os.MkdirTemp("", "op-reporter-bin-")
		if err != nil {
			buildFail = err
			return
		}
		buildPath = filepath.Join(dir, "op-reporter")

		cmd := exec.Command("go", "build", "-o", buildPath, ".")
		if out, err := cmd.CombinedOutput(); err != nil {
			buildFail = err
			t.Logf("build output:\n%s", out)
		}
	})
	require.NoError(t, buildFail, "failed to build op-reporter binary")
	require.FileExists(t, buildPath)
	return buildPath
}

// TestExitCodeBehavior runs the binary once per fixture and checks the
// exit code contract: 0 for a clean report, 1 when the report contains
// problems, 2 when the run itself breaks.
func TestExitCodeBehavior(t *testing.T) {
	bin := reporterBinary(t)

	tests := []struct {
		name     string
		stream   string // written to results.jsonl; empty leaves the file missing
		wantCode int
	}{
		{
			name: "clean report exits zero",
			stream: `{"action":"schema","version":"v1.0.0"}
{"action":"open","name":"suite"}
{"action":"pass","test":"TestAlwaysPasses"}
{"action":"close"}
`,
			wantCode: exitcodes.Success,
		},
		{
			name: "failing outcome exits one",
			stream: `{"action":"schema","version":"v1.0.0"}
{"action":"open","name":"suite"}
{"action":"fail","test":"TestAlwaysFails","message":"assertion failed"}
{"action":"close"}
`,
			wantCode: exitcodes.ReportFailure,
		},
		{
			// Broken outcomes are anticipated failures and never fail
			// the run.
			name: "broken outcome exits zero",
			stream: `{"action":"schema","version":"v1.0.0"}
{"action":"open","name":"suite"}
{"action":"broken","test":"TestKnownFlake","message":"known flake"}
{"action":"close"}
`,
			wantCode: exitcodes.Success,
		},
		{
			name:     "missing input exits two",
			stream:   "",
			wantCode: exitcodes.RuntimeErr,
		},
		{
			name: "unbalanced stream exits two",
			stream: `{"action":"schema","version":"v1.0.0"}
{"action":"open","name":"suite"}
{"action":"pass","test":"TestNeverClosed"}
`,
			wantCode: exitcodes.RuntimeErr,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			workDir := t.TempDir()
			input := filepath.Join(workDir, "results.jsonl")
			if tc.stream != "" {
				require.NoError(t, os.WriteFile(input, []byte(tc.stream), 0644))
			}

			code := runReporter(t, bin, input, filepath.Join(workDir, "reports"))
			require.Equal(t, tc.wantCode, code, "unexpected exit code")
		})
	}
}

// runReporter invokes the binary in run-once mode and returns its exit
// code.
func runReporter(t *testing.T, bin, input, artifactDir string) int {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, bin,
		"--run-interval=0",
		"--input="+input,
		"--artifact-dir="+artifactDir,
	)
	out, err := cmd.CombinedOutput()
	if len(out) > 0 {
		t.Logf("op-reporter output:\n%s", out)
	}
	require.NoError(t, ctx.Err(), "op-reporter did not finish in time")

	if err == nil {
		return exitcodes.Success
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	t.Fatalf("running op-reporter: %v", err)
	return exitcodes.RuntimeErr
}
