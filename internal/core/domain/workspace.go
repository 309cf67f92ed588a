package domain

// Workspace is the pair of isolated temporary directories scoped to one
// job. Exactly one job owns a handle; concurrent jobs never share paths.
type Workspace struct {
	InputDir  string
	OutputDir string
}
