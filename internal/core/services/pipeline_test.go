package services

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"stemsplit/internal/core/domain"
)

// stemProducingTool writes named stems under the output root passed via -o.
const stemProducingTool = `
out=""
prev=""
for a in "$@"; do
  if [ "$prev" = "-o" ]; then out="$a"; fi
  prev="$a"
done
mkdir -p "$out/track"
printf 'VOCALSTEM' > "$out/track/vocals.mp3"
printf 'ACCOMPANIMENTSTEM' > "$out/track/no_vocals.mp3"
`

func newTestPipeline(t *testing.T, tool string, timeout time.Duration) (*Pipeline, string) {
	t.Helper()
	wsRoot := filepath.Join(t.TempDir(), "workspaces")
	require.NoError(t, os.MkdirAll(wsRoot, 0o755))
	logger := testLogger()
	p := NewPipeline(logger, "htdemucs_ft", timeout, 4,
		NewWorkspaceManager(logger, wsRoot),
		NewJobRunner(logger, tool, 192),
		NewArtifactLocator(logger))
	return p, wsRoot
}

func assertNoWorkspacesLeft(t *testing.T, wsRoot string) {
	t.Helper()
	entries, err := os.ReadDir(wsRoot)
	require.NoError(t, err)
	assert.Empty(t, entries, "workspace dirs must be released")
}

func TestProcess_SuccessDeliversStems(t *testing.T) {
	p, wsRoot := newTestPipeline(t, writeTool(t, stemProducingTool), 10*time.Second)

	result, err := p.Process(context.Background(), "song.wav",
		strings.NewReader("fake audio bytes"), ProcessOptions{})
	require.NoError(t, err)

	assert.Equal(t, domain.JobStatusCompleted, result.Job.Status)
	assert.Equal(t, "song.wav", result.Job.InputName)
	assert.EqualValues(t, len("fake audio bytes"), result.Job.InputSize)
	require.NotNil(t, result.Primary)
	assert.EqualValues(t, len("VOCALSTEM"), result.Primary.SizeBytes)
	require.NotNil(t, result.Secondary)
	assert.EqualValues(t, len("ACCOMPANIMENTSTEM"), result.Secondary.SizeBytes)

	// Caller owns the workspace until Release; the stem is still readable.
	data, err := os.ReadFile(result.Primary.Path)
	require.NoError(t, err)
	assert.Equal(t, "VOCALSTEM", string(data))

	result.Release()
	result.Release() // idempotent
	assertNoWorkspacesLeft(t, wsRoot)
}

func TestProcess_ToolFailureReleasesWorkspace(t *testing.T) {
	p, wsRoot := newTestPipeline(t, writeTool(t, "echo 'model load failed' >&2\nexit 1\n"), 10*time.Second)

	_, err := p.Process(context.Background(), "song.wav", strings.NewReader("x"), ProcessOptions{})
	var toolErr *domain.ToolFailureError
	require.ErrorAs(t, err, &toolErr)
	assert.Equal(t, 1, toolErr.ExitCode)
	assert.Contains(t, toolErr.Stderr, "model load failed")
	assertNoWorkspacesLeft(t, wsRoot)
}

func TestProcess_TimeoutReleasesWorkspace(t *testing.T) {
	p, wsRoot := newTestPipeline(t, writeTool(t, "sleep 30\n"), 200*time.Millisecond)

	_, err := p.Process(context.Background(), "song.wav", strings.NewReader("x"), ProcessOptions{})
	assert.ErrorIs(t, err, domain.ErrSeparationTimeout)
	assertNoWorkspacesLeft(t, wsRoot)
}

func TestProcess_EmptyOutputTree(t *testing.T) {
	p, wsRoot := newTestPipeline(t, writeTool(t, "exit 0\n"), 10*time.Second)

	_, err := p.Process(context.Background(), "song.wav", strings.NewReader("x"), ProcessOptions{})
	assert.ErrorIs(t, err, domain.ErrArtifactNotFound)
	assertNoWorkspacesLeft(t, wsRoot)
}

func TestProcess_EmptyOutputToleratedForSummary(t *testing.T) {
	p, wsRoot := newTestPipeline(t, writeTool(t, "exit 0\n"), 10*time.Second)

	result, err := p.Process(context.Background(), "song.wav", strings.NewReader("x"),
		ProcessOptions{AllowMissingStem: true})
	require.NoError(t, err)
	assert.Nil(t, result.Primary)
	assert.Nil(t, result.Secondary)
	assert.Equal(t, domain.JobStatusCompleted, result.Job.Status)

	result.Release()
	assertNoWorkspacesLeft(t, wsRoot)
}

func TestProcess_LaunchErrorReleasesWorkspace(t *testing.T) {
	p, wsRoot := newTestPipeline(t, "/nonexistent/demucs-binary", 10*time.Second)

	_, err := p.Process(context.Background(), "song.wav", strings.NewReader("x"), ProcessOptions{})
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrSeparationTimeout)
	assertNoWorkspacesLeft(t, wsRoot)
}
