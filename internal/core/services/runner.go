package services

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"stemsplit/internal/core/domain"
)

// JobRunner invokes the external separation tool under a wall-clock bound
// and classifies the outcome. It never retries; retry policy, if any,
// belongs to the caller.
type JobRunner struct {
	logger      *slog.Logger
	interpreter string
	bitrate     int
}

func NewJobRunner(logger *slog.Logger, interpreter string, bitrate int) *JobRunner {
	return &JobRunner{logger: logger, interpreter: interpreter, bitrate: bitrate}
}

// buildArgs assembles the fixed command-line contract of the separation
// tool: model selector, output root, per-track/per-stem filename pattern,
// mp3 encoding flags, input path.
func (r *JobRunner) buildArgs(job domain.Job, ws domain.Workspace) []string {
	return []string{
		"-m", "demucs.separate",
		"-n", job.Model,
		"-o", ws.OutputDir,
		"--filename", "{track}/{stem}.{ext}",
		"--mp3",
		"--mp3-bitrate", strconv.Itoa(r.bitrate),
		job.InputPath,
	}
}

// Run executes the tool as a child process, capturing stdout and stderr,
// and returns a terminal ToolOutcome. On timeout the process is killed,
// never left running past the bound.
func (r *JobRunner) Run(ctx context.Context, job domain.Job, ws domain.Workspace) domain.ToolOutcome {
	args := r.buildArgs(job, ws)
	r.logger.Info("running separation tool",
		"interpreter", r.interpreter,
		"args", strings.Join(args, " "),
		"timeout", job.Timeout)

	execCtx, cancel := context.WithTimeout(ctx, job.Timeout)
	defer cancel()

	cmd := exec.CommandContext(execCtx, r.interpreter, args...)
	// Stop waiting on inherited pipes shortly after the kill, so a
	// grandchild keeping stdout open cannot hold the job past the bound.
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	if execCtx.Err() == context.DeadlineExceeded {
		r.logger.Error("separation tool timed out", "elapsed", elapsed)
		return domain.ToolOutcome{Kind: domain.OutcomeTimeout}
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			r.logger.Error("separation tool failed",
				"exit_code", exitErr.ExitCode(),
				"stderr", truncate(stderr.String(), 4096))
			return domain.ToolOutcome{
				Kind:     domain.OutcomeToolFailure,
				ExitCode: exitErr.ExitCode(),
				Stderr:   stderr.String(),
			}
		}
		r.logger.Error("separation tool could not be started", "error", err)
		return domain.ToolOutcome{Kind: domain.OutcomeLaunchError, Err: err}
	}

	r.logger.Info("separation tool finished", "elapsed", elapsed)
	return domain.ToolOutcome{Kind: domain.OutcomeSuccess}
}

func truncate(s string, n int) string {
	if len(s) > n {
		return s[:n] + "... (truncated)"
	}
	return s
}
