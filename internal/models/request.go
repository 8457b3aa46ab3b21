package models

// GenerateRequest is the job-submission body. SketchID, when supplied, must be
// a valid UUID; submission is an idempotent upsert on it.
type GenerateRequest struct {
	SketchID       string   `json:"sketchId,omitempty"`
	UserID         string   `json:"userId,omitempty"`
	IdentityID     string   `json:"identity_id,omitempty"`
	Type           string   `json:"type,omitempty"`
	RealityVectors []string `json:"reality_vectors,omitempty"`
	Premise        string   `json:"premise,omitempty"`
	Role           string   `json:"role,omitempty"`
	CinemaLane     bool     `json:"cinema_lane"`
	AvatarID       string   `json:"avatarId,omitempty"`
}

// SeedRequest asks the seed bank for a premise/scene pair.
type SeedRequest struct {
	Category  string `json:"category,omitempty"`
	SessionID string `json:"session_id,omitempty"`
}

// PollRequest fires the bounded completion poll loop for a dispatched job.
// Service-to-service only; the caller does not wait for completion.
type PollRequest struct {
	JobID     string `json:"job_id"`
	StatusURL string `json:"status_url"`
}
