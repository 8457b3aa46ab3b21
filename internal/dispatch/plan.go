// Package dispatch routes a job to one of the two external generation lanes.
// The plan is computed once per job; nothing downstream re-checks flags.
package dispatch

import (
	"context"

	"github.com/google/uuid"

	"sketchmachine-backend/internal/models"
)

// Plan is the provider lane chosen for a job.
type Plan int

const (
	PlanStandard Plan = iota
	PlanPremium
)

func (p Plan) String() string {
	if p == PlanPremium {
		return "premium"
	}
	return "standard"
}

// PlanFor selects the lane. The premium lane requires both the global flag
// and the caller's opt-in; this is policy, not fallback — a premium job that
// fails stays failed.
func PlanFor(premiumEnabled, cinemaLane bool) Plan {
	if premiumEnabled && cinemaLane {
		return PlanPremium
	}
	return PlanStandard
}

// SubmitInput carries everything a lane needs to dispatch one job.
type SubmitInput struct {
	JobID       uuid.UUID
	Premise     string
	Role        string
	Vector      string
	AvatarURL   string
	ImagePacket *models.ImagePacket
	VideoPacket *models.VideoPacket
	Narrative   models.Narrative
}

// Outcome reports how completion will arrive: a task id whose webhook will
// fire (standard), or a status URL the poller owns (premium).
type Outcome struct {
	Provider  string
	TaskID    string
	StatusURL string
}

// Dispatcher submits a job to its lane's provider.
type Dispatcher interface {
	Submit(ctx context.Context, in *SubmitInput) (*Outcome, error)
}

// JobStore is the slice of the persistence layer the dispatchers write
// through. Every method updates both physical job records.
type JobStore interface {
	UpdateJobDispatch(jobID uuid.UUID, provider, taskID, statusURL, status string) error
	UpdateJobStatus(jobID uuid.UUID, status string) error
	UpdateJobError(jobID uuid.UUID, detail string) error
}

// PollTrigger hands a dispatched premium job to the completion poller without
// blocking the request.
type PollTrigger interface {
	StartPoll(jobID uuid.UUID, statusURL string)
}
