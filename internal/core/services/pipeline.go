package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/semaphore"
	"stemsplit/internal/core/domain"
)

// stagedInputName is the fixed name the upload is staged under inside the
// workspace input dir; the tool does not care about the original name.
const stagedInputName = "input_audio.wav"

// Pipeline composes one job end to end: acquire workspace, stage the
// upload, run the tool, locate the stems. Every stage returns an explicit
// result; the workspace is released on every failure path here, while on
// success ownership moves to the returned JobResult so the transport layer
// can defer release until the response has been fully sent.
type Pipeline struct {
	logger     *slog.Logger
	model      string
	timeout    time.Duration
	workspaces *WorkspaceManager
	runner     *JobRunner
	locator    *ArtifactLocator
	sem        *semaphore.Weighted
}

func NewPipeline(
	logger *slog.Logger,
	model string,
	timeout time.Duration,
	maxConcurrent int64,
	workspaces *WorkspaceManager,
	runner *JobRunner,
	locator *ArtifactLocator,
) *Pipeline {
	if maxConcurrent <= 0 {
		maxConcurrent = 4
	}
	return &Pipeline{
		logger:     logger,
		model:      model,
		timeout:    timeout,
		workspaces: workspaces,
		runner:     runner,
		locator:    locator,
		sem:        semaphore.NewWeighted(maxConcurrent),
	}
}

// JobResult is a successful job whose workspace is still alive. Release
// must be called exactly when the outcome has been fully delivered; it is
// idempotent.
type JobResult struct {
	Job            domain.Job
	Workspace      domain.Workspace
	Primary        *domain.Artifact
	Secondary      *domain.Artifact
	ProcessingTime time.Duration

	releaseOnce sync.Once
	manager     *WorkspaceManager
}

func (r *JobResult) Release() {
	r.releaseOnce.Do(func() {
		r.manager.Release(r.Workspace)
	})
}

// ProcessOptions selects per-endpoint behavior.
type ProcessOptions struct {
	// AllowMissingStem turns an ArtifactNotFound from the locator into a
	// result with no artifacts instead of a failure. The summary-report
	// path uses it to report absence as sizes of zero.
	AllowMissingStem bool
}

// Process runs one job for the named upload. On error the workspace has
// already been released; on success the caller owns the result and must
// call Release.
func (p *Pipeline) Process(ctx context.Context, inputName string, content io.Reader, opts ProcessOptions) (*JobResult, error) {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("job admission: %w", err)
	}
	defer p.sem.Release(1)

	ws, err := p.workspaces.Acquire()
	if err != nil {
		return nil, err
	}

	// Scoped release: every exit below, including a panic in a stage,
	// releases the workspace unless ownership was handed to the result.
	delivered := false
	defer func() {
		if !delivered {
			p.workspaces.Release(ws)
		}
	}()

	job := domain.Job{
		ID:        domain.JobID(uuid.New().String()),
		InputName: inputName,
		Model:     p.model,
		Timeout:   p.timeout,
		Status:    domain.JobStatusIdle,
		CreatedAt: time.Now(),
	}

	job.InputPath = filepath.Join(ws.InputDir, stagedInputName)
	job.InputSize, err = stageUpload(job.InputPath, content)
	if err != nil {
		return nil, fmt.Errorf("failed to stage upload: %w", err)
	}
	p.logger.Info("processing audio file", "job_id", job.ID, "file", inputName, "size", job.InputSize)

	job.Status = domain.JobStatusRunning
	start := time.Now()
	outcome := p.runner.Run(ctx, job, ws)
	elapsed := time.Since(start)

	switch outcome.Kind {
	case domain.OutcomeSuccess:
		// fall through to artifact discovery
	case domain.OutcomeTimeout:
		job.Status = domain.JobStatusFailed
		return nil, domain.ErrSeparationTimeout
	case domain.OutcomeToolFailure:
		job.Status = domain.JobStatusFailed
		return nil, &domain.ToolFailureError{ExitCode: outcome.ExitCode, Stderr: outcome.Stderr}
	default:
		job.Status = domain.JobStatusFailed
		return nil, fmt.Errorf("failed to launch separation tool: %w", outcome.Err)
	}

	sel, err := p.locator.Locate(ws.OutputDir)
	if err != nil {
		if !(opts.AllowMissingStem && errors.Is(err, domain.ErrArtifactNotFound)) {
			job.Status = domain.JobStatusFailed
			return nil, err
		}
		sel = Selection{}
	}

	job.Status = domain.JobStatusCompleted
	if sel.Primary != nil {
		p.logger.Info("vocal separation successful",
			"job_id", job.ID,
			"vocal_file", sel.Primary.Path,
			"vocal_size", sel.Primary.SizeBytes,
			"elapsed", elapsed)
	}

	delivered = true
	return &JobResult{
		Job:            job,
		Workspace:      ws,
		Primary:        sel.Primary,
		Secondary:      sel.Secondary,
		ProcessingTime: elapsed,
		manager:        p.workspaces,
	}, nil
}

func stageUpload(path string, content io.Reader) (int64, error) {
	f, err := os.Create(path)
	if err != nil {
		return 0, err
	}
	n, err := io.Copy(f, content)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}
