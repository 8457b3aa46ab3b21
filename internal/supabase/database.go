package supabase

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"sketchmachine-backend/internal/models"
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

// NewDatabaseClientFromDB wraps an existing connection. Used by tests.
func NewDatabaseClientFromDB(db *sql.DB) *DatabaseClient {
	return &DatabaseClient{db: db}
}

// CreateJob upserts the primary sketch_jobs row and the legacy sketches mirror
// in one transaction. Submitting the same id twice leaves exactly one logical
// job; the second submission overwrites the mutable fields.
func (d *DatabaseClient) CreateJob(job *models.Job) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	content := job.Content
	if content == nil {
		content = json.RawMessage("{}")
	}

	_, err = tx.Exec(`
		INSERT INTO sketch_jobs (id, identity_id, status, vector, sketch_type, premise, role, image_packet_id, video_packet_id, content)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			identity_id = EXCLUDED.identity_id,
			status = EXCLUDED.status,
			vector = EXCLUDED.vector,
			sketch_type = EXCLUDED.sketch_type,
			premise = EXCLUDED.premise,
			role = EXCLUDED.role,
			image_packet_id = EXCLUDED.image_packet_id,
			video_packet_id = EXCLUDED.video_packet_id,
			content = EXCLUDED.content,
			updated_at = NOW()
	`, job.ID, job.IdentityID, job.Status, job.Vector, job.SketchType, job.Premise,
		job.Role, job.ImagePacketID, job.VideoPacketID, content)
	if err != nil {
		return fmt.Errorf("failed to upsert sketch_jobs: %w", err)
	}

	_, err = tx.Exec(`
		INSERT INTO sketches (id, user_id, status, premise, role, content)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			user_id = EXCLUDED.user_id,
			status = EXCLUDED.status,
			premise = EXCLUDED.premise,
			role = EXCLUDED.role,
			content = EXCLUDED.content,
			updated_at = NOW()
	`, job.ID, job.IdentityID, job.Status, job.Premise, job.Role, content)
	if err != nil {
		return fmt.Errorf("failed to upsert sketches mirror: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit job upsert: %w", err)
	}
	return nil
}

func (d *DatabaseClient) GetJob(jobID uuid.UUID) (*models.Job, error) {
	var job models.Job
	err := d.db.QueryRow(`
		SELECT id, identity_id, status, provider, vector, sketch_type, premise, role,
			image_packet_id, video_packet_id, external_task_id, status_url, result_url,
			error_detail, content, created_at, image_started_at, video_started_at,
			completed_at, updated_at
		FROM sketch_jobs
		WHERE id = $1
	`, jobID).Scan(
		&job.ID, &job.IdentityID, &job.Status, &job.Provider, &job.Vector, &job.SketchType,
		&job.Premise, &job.Role, &job.ImagePacketID, &job.VideoPacketID, &job.ExternalTaskID,
		&job.StatusURL, &job.ResultURL, &job.ErrorDetail, &job.Content, &job.CreatedAt,
		&job.ImageStartedAt, &job.VideoStartedAt, &job.CompletedAt, &job.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get job: %w", err)
	}
	return &job, nil
}

// UpdateJobDispatch records the provider handoff on both records and moves the
// job into its first generating state.
func (d *DatabaseClient) UpdateJobDispatch(jobID uuid.UUID, provider, taskID, statusURL, status string) error {
	return d.dualUpdate(jobID,
		`UPDATE sketch_jobs
		 SET provider = $2, external_task_id = $3, status_url = $4, status = $5,
		     image_started_at = COALESCE(image_started_at, NOW()), updated_at = NOW()
		 WHERE id = $1`,
		[]interface{}{jobID, provider, taskID, statusURL, status},
		`UPDATE sketches
		 SET provider = $2, task_id = $3, status_url = $4, status = $5, updated_at = NOW()
		 WHERE id = $1`,
		[]interface{}{jobID, provider, taskID, statusURL, status},
	)
}

// UpdateJobStatus advances the lifecycle status on both records.
func (d *DatabaseClient) UpdateJobStatus(jobID uuid.UUID, status string) error {
	stamp := ""
	switch status {
	case models.JobStatusGeneratingImage:
		stamp = ", image_started_at = COALESCE(image_started_at, NOW())"
	case models.JobStatusGeneratingVideo, models.JobStatusAnimating:
		stamp = ", video_started_at = COALESCE(video_started_at, NOW())"
	}
	return d.dualUpdate(jobID,
		fmt.Sprintf(`UPDATE sketch_jobs SET status = $2%s, updated_at = NOW() WHERE id = $1`, stamp),
		[]interface{}{jobID, status},
		`UPDATE sketches SET status = $2, updated_at = NOW() WHERE id = $1`,
		[]interface{}{jobID, status},
	)
}

// UpdateJobComplete marks the terminal success state with the result media URL.
func (d *DatabaseClient) UpdateJobComplete(jobID uuid.UUID, resultURL string) error {
	return d.dualUpdate(jobID,
		`UPDATE sketch_jobs
		 SET status = $2, result_url = $3, completed_at = NOW(), updated_at = NOW()
		 WHERE id = $1`,
		[]interface{}{jobID, models.JobStatusComplete, resultURL},
		`UPDATE sketches
		 SET status = $2, video_url = $3, updated_at = NOW()
		 WHERE id = $1`,
		[]interface{}{jobID, models.JobStatusComplete, resultURL},
	)
}

// UpdateJobError marks the terminal failure state with the captured detail.
func (d *DatabaseClient) UpdateJobError(jobID uuid.UUID, detail string) error {
	return d.dualUpdate(jobID,
		`UPDATE sketch_jobs
		 SET status = $2, error_detail = $3, completed_at = NOW(), updated_at = NOW()
		 WHERE id = $1`,
		[]interface{}{jobID, models.JobStatusFailed, detail},
		`UPDATE sketches
		 SET status = $2, error_message = $3, updated_at = NOW()
		 WHERE id = $1`,
		[]interface{}{jobID, models.JobStatusFailed, detail},
	)
}

// dualUpdate applies the primary and mirror statements inside one transaction
// so the two representations of a job cannot be observed diverged.
func (d *DatabaseClient) dualUpdate(jobID uuid.UUID, primarySQL string, primaryArgs []interface{}, mirrorSQL string, mirrorArgs []interface{}) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(primarySQL, primaryArgs...); err != nil {
		return fmt.Errorf("failed to update sketch_jobs %s: %w", jobID, err)
	}
	if _, err := tx.Exec(mirrorSQL, mirrorArgs...); err != nil {
		return fmt.Errorf("failed to update sketches mirror %s: %w", jobID, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit job update: %w", err)
	}
	return nil
}
