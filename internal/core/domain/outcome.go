package domain

type OutcomeKind string

const (
	OutcomeSuccess     OutcomeKind = "SUCCESS"      // exit code 0 before the deadline
	OutcomeToolFailure OutcomeKind = "TOOL_FAILURE" // non-zero exit before the deadline
	OutcomeTimeout     OutcomeKind = "TIMEOUT"      // deadline elapsed, process killed
	OutcomeLaunchError OutcomeKind = "LAUNCH_ERROR" // process could not be started
)

// ToolOutcome is the tagged terminal result of one external tool run.
type ToolOutcome struct {
	Kind     OutcomeKind
	ExitCode int
	Stderr   string // retained for diagnostics on ToolFailure
	Err      error  // underlying error for LaunchError
}
