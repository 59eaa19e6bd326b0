package ledger

import "time"

// Artifact upload statuses.
const (
	ArtifactPending  = "pending"
	ArtifactUploaded = "uploaded"
	ArtifactFailed   = "failed"
)

// Run is one recorded packaging run.
type Run struct {
	ID           string
	Input        string
	Bucket       string
	Prefix       string
	State        string
	FailedStage  string
	ErrorMessage string
	Plan         string
	StartedAt    time.Time
	FinishedAt   *time.Time
	Artifacts    []ArtifactRecord
}

// Duration reports how long the run took, or zero while it is unfinished.
func (r Run) Duration() time.Duration {
	if r.FinishedAt == nil {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// ArtifactRecord is the publish outcome of one artifact.
type ArtifactRecord struct {
	Position     int
	Kind         string
	RemotePath   string
	Status       string
	ErrorMessage string
}

// Outcome is the terminal state recorded for a run.
type Outcome struct {
	State        string
	FailedStage  string
	ErrorMessage string
	Plan         string
	FinishedAt   time.Time
}
