package models

import (
	"database/sql"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Job statuses. A job is terminal once it reaches complete or failed.
const (
	JobStatusPending         = "pending"
	JobStatusGeneratingImage = "generating_image"
	JobStatusGeneratingVideo = "generating_video"
	JobStatusAnimating       = "animating"
	JobStatusComplete        = "complete"
	JobStatusFailed          = "failed"
)

// Providers.
const (
	ProviderKie        = "kie"
	ProviderHiggsfield = "higgsfield"
)

// Job is the primary record in sketch_jobs. The legacy mobile client reads a
// mirror row in the sketches table; the store keeps both in step inside one
// transaction.
type Job struct {
	ID             uuid.UUID
	IdentityID     uuid.NullUUID
	Status         string
	Provider       sql.NullString
	Vector         string
	SketchType     sql.NullString
	Premise        string
	Role           sql.NullString
	ImagePacketID  uuid.NullUUID
	VideoPacketID  uuid.NullUUID
	ExternalTaskID sql.NullString
	StatusURL      sql.NullString
	ResultURL      sql.NullString
	ErrorDetail    sql.NullString
	Content        json.RawMessage
	CreatedAt      time.Time
	ImageStartedAt sql.NullTime
	VideoStartedAt sql.NullTime
	CompletedAt    sql.NullTime
	UpdatedAt      time.Time
}

// Terminal reports whether the job can no longer transition.
func (j *Job) Terminal() bool {
	return j.Status == JobStatusComplete || j.Status == JobStatusFailed
}

// Narrative is the synthesizer output embedded into the job's content field.
// It is never persisted on its own.
type Narrative struct {
	Title       string   `json:"title"`
	Verdict     string   `json:"verdict"`
	Captions    []string `json:"captions"`
	DeletedLine string   `json:"deleted_line"`
}
