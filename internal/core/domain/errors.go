package domain

import (
	"errors"
	"fmt"
)

// ErrSeparationTimeout means the tool exceeded its wall-clock bound and
// was killed; no partial artifact is trusted.
var ErrSeparationTimeout = errors.New("separation timed out")

// ToolFailureError carries the diagnostics of a non-zero tool exit.
type ToolFailureError struct {
	ExitCode int
	Stderr   string
}

func (e *ToolFailureError) Error() string {
	return fmt.Sprintf("separation tool exited with code %d", e.ExitCode)
}
