package domain

type ArtifactRole string

const (
	RolePrimary   ArtifactRole = "primary"   // extracted target stem (vocals)
	RoleSecondary ArtifactRole = "secondary" // complementary stem (accompaniment)
	RoleOther     ArtifactRole = "other"
)

// Artifact is a file physically present under the job's output directory
// after the tool ran. Immutable once recorded.
type Artifact struct {
	Path      string
	Role      ArtifactRole
	SizeBytes int64
}
