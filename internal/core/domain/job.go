package domain

import (
	"errors"
	"time"
)

type JobID string

type JobStatus string

const (
	JobStatusIdle      JobStatus = "IDLE"
	JobStatusRunning   JobStatus = "RUNNING"
	JobStatusCompleted JobStatus = "COMPLETED"
	JobStatusFailed    JobStatus = "FAILED"
)

// Job is one end-to-end separation unit for a single uploaded file.
// Its workspace is released when the outcome has been fully delivered
// to the caller, never before.
type Job struct {
	ID        JobID
	InputName string // original filename from the upload
	InputPath string // staged copy inside the workspace input dir
	InputSize int64
	Model     string
	Timeout   time.Duration
	Status    JobStatus
	CreatedAt time.Time
}

// ErrArtifactNotFound means the tool succeeded but produced no
// recognizable stem; distinct from a tool failure.
var ErrArtifactNotFound = errors.New("no recognizable stem produced")
