package reporter

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ethereum-optimism/infra/op-reporter/logging"
	"github.com/ethereum-optimism/infra/op-reporter/reporting"
	"github.com/ethereum-optimism/infra/op-reporter/types"
)

const pipelineStream = `{"action":"schema","version":"v1.0.0"}
{"action":"open","name":"suite"}
{"action":"pass","test":"TestPing","elapsed":1.5}
{"action":"fail","test":"TestQuery","message":"boom"}
{"action":"close"}
{"action":"pass","test":"TestStray"}
`

func writeStream(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "results.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func writeProfiles(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profiles.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

// sectionsByName indexes the normalized root's sections by description.
func sectionsByName(t *testing.T, root *types.Group) map[string]*types.Group {
	t.Helper()
	sections := make(map[string]*types.Group)
	for _, node := range root.Children() {
		section, ok := node.(*types.Group)
		require.True(t, ok, "normalized root should contain only groups")
		sections[section.Description()] = section
	}
	return sections
}

func TestPipeline_Run_EndToEnd(t *testing.T) {
	artifactDir := filepath.Join(t.TempDir(), "reports")
	cfg := &Config{
		Input:       writeStream(t, pipelineStream),
		RunName:     "nightly",
		ArtifactDir: artifactDir,
		Quiet:       true,
		Log:         log.New(),
	}

	p, err := NewPipeline(cfg)
	require.NoError(t, err)

	report, err := p.Run(context.Background())
	require.NoError(t, err)
	require.NotNil(t, report)

	// Run IDs are fresh UUIDs
	_, err = uuid.Parse(report.RunID)
	assert.NoError(t, err)

	assert.Equal(t, 3, report.Stats.Total)
	assert.Equal(t, 2, report.Stats.Passed)
	assert.Equal(t, 1, report.Stats.Failed)
	assert.Equal(t, types.KindFail, report.Stats.Status())
	assert.True(t, report.AnyProblems())
	assert.GreaterOrEqual(t, report.Stats.Duration, 1500*time.Millisecond)

	// The stray pass lands in the synthetic bucket, the suite keeps its leaves
	sections := sectionsByName(t, report.Root)
	require.Len(t, sections, 2)
	require.Contains(t, sections, "suite")
	require.Contains(t, sections, reporting.TopLevelGroupName)
	assert.Equal(t, 2, sections["suite"].Len())
	assert.Equal(t, 1, sections[reporting.TopLevelGroupName].Len())

	// Both artifacts are written into the run directory
	runDir := filepath.Join(artifactDir, logging.RunDirectoryPrefix+report.RunID)
	summary, err := os.ReadFile(filepath.Join(runDir, logging.SummaryFilename))
	require.NoError(t, err)
	assert.Contains(t, string(summary), "Status:    FAIL")
	assert.Contains(t, string(summary), "suite: 2 outcome(s)")

	display, err := os.ReadFile(filepath.Join(runDir, logging.DisplayFilename))
	require.NoError(t, err)
	assert.Contains(t, string(display), "Run:     nightly")
	assert.Contains(t, string(display), "TestQuery: boom")
}

func TestPipeline_Run_AppliesProfile(t *testing.T) {
	stream := `{"action":"schema","version":"v1.2.0"}
{"action":"open","name":"suite"}
{"action":"pass","test":"TestOne"}
{"action":"close"}
`
	profiles := `profiles:
  - name: ci
    host: runner-ci
    properties:
      env: ci
`
	cfg := &Config{
		Input:          writeStream(t, stream),
		RunName:        "nightly",
		ProfileName:    "ci",
		ProfilesConfig: writeProfiles(t, profiles),
		Quiet:          true,
		Log:            log.New(),
	}

	p, err := NewPipeline(cfg)
	require.NoError(t, err)

	report, err := p.Run(context.Background())
	require.NoError(t, err)

	// The profile's host is stamped on the run root
	assert.Equal(t, "runner-ci", report.Root.Host())

	// The profile's properties reach the normalized sections
	sections := sectionsByName(t, report.Root)
	require.Contains(t, sections, "suite")
	env, ok := sections["suite"].Property("env")
	require.True(t, ok, "profile property should be stamped on the section")
	assert.Equal(t, "ci", env)
}

func TestPipeline_Run_MissingInput(t *testing.T) {
	cfg := &Config{
		Input: filepath.Join(t.TempDir(), "does-not-exist.jsonl"),
		Quiet: true,
		Log:   log.New(),
	}

	p, err := NewPipeline(cfg)
	require.NoError(t, err)

	_, err = p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read result stream")
}

func TestNewPipeline_UnknownProfile(t *testing.T) {
	profiles := `profiles:
  - name: local
`
	cfg := &Config{
		Input:          writeStream(t, pipelineStream),
		ProfileName:    "staging",
		ProfilesConfig: writeProfiles(t, profiles),
		Log:            log.New(),
	}

	_, err := NewPipeline(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to resolve profile")
}

func TestNewPipeline_WithoutArtifacts(t *testing.T) {
	cfg := &Config{
		Input: writeStream(t, pipelineStream),
		Quiet: true,
		Log:   log.New(),
	}

	p, err := NewPipeline(cfg)
	require.NoError(t, err)

	report, err := p.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 3, report.Stats.Total)
}

func TestNewPipeline_RequiresConfig(t *testing.T) {
	_, err := NewPipeline(nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "config is required")
}
