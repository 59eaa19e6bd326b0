package pipeline

import (
	"context"
	"time"

	"bideorai/internal/artifact"
	"bideorai/internal/packager"
	"bideorai/internal/plan"
	"bideorai/internal/probe"
	"bideorai/internal/publish"
	"bideorai/internal/transcode"
)

// State is a position in the run state machine.
type State string

// Run states in the order a successful run visits them.
const (
	StateProbing     State = "probing"
	StatePlanning    State = "planning"
	StateTranscoding State = "transcoding"
	StatePackaging   State = "packaging"
	StatePublishing  State = "publishing"
	StateDone        State = "done"
	StateFailed      State = "failed"
)

// StateValidating is reported as the failed stage when the request itself is
// rejected before any stage starts.
const StateValidating State = "validating"

// Request identifies one input and its publish destination.
type Request struct {
	Input  string
	Bucket string
	Prefix string
}

// Report describes a finished run. On failure it holds whatever the run
// produced before the failing stage.
type Report struct {
	RunID          string
	State          State
	FailedStage    State
	WorkDir        string
	Inventory      probe.MediaInventory
	Plan           plan.TranscodePlan
	Artifacts      []artifact.Artifact
	Publish        publish.Report
	StageDurations map[State]time.Duration
	StartedAt      time.Time
	FinishedAt     time.Time
}

// Duration is the wall-clock time of the run.
func (r Report) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}

// Transcoder runs the transcoding stage.
type Transcoder interface {
	Run(ctx context.Context, input, workDir string, p plan.TranscodePlan) (transcode.Output, error)
}

// Packager runs the packaging stage.
type Packager interface {
	Run(ctx context.Context, req packager.Request) (*artifact.Set, error)
}
