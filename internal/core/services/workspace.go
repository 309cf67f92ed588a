package services

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"stemsplit/internal/core/domain"
)

// WorkspaceManager allocates and destroys the per-job directory pair.
// Names are uuid-based, so concurrently active jobs never receive
// overlapping paths.
type WorkspaceManager struct {
	logger   *slog.Logger
	tempRoot string
}

func NewWorkspaceManager(logger *slog.Logger, tempRoot string) *WorkspaceManager {
	if tempRoot == "" {
		tempRoot = os.TempDir()
	}
	return &WorkspaceManager{logger: logger, tempRoot: tempRoot}
}

// Acquire creates two fresh, uniquely named, empty directories for one job.
func (m *WorkspaceManager) Acquire() (domain.Workspace, error) {
	id := uuid.New().String()
	ws := domain.Workspace{
		InputDir:  filepath.Join(m.tempRoot, "stemsplit-in-"+id),
		OutputDir: filepath.Join(m.tempRoot, "stemsplit-out-"+id),
	}
	for _, dir := range []string{ws.InputDir, ws.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			// Partial creation: remove whatever was made before failing.
			m.Release(ws)
			return domain.Workspace{}, fmt.Errorf("failed to create workspace: %w", err)
		}
	}
	return ws, nil
}

// Release recursively removes both directories. It tolerates directories
// that are already gone or were never fully created, logs a warning on
// removal failure, and never propagates the error. Safe to call twice.
func (m *WorkspaceManager) Release(ws domain.Workspace) {
	for _, dir := range []string{ws.InputDir, ws.OutputDir} {
		if dir == "" {
			continue
		}
		if err := os.RemoveAll(dir); err != nil {
			m.logger.Warn("failed to cleanup workspace dir", "dir", dir, "error", err)
		}
	}
}
