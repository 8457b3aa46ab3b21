package supabase

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"sketchmachine-backend/internal/models"
)

// ListPremises returns the seed-bank candidates for a category, or the whole
// bank when category is empty.
func (d *DatabaseClient) ListPremises(category string) ([]models.Premise, error) {
	query := `
		SELECT id, category, sketch_type, role, premise, weight, created_at
		FROM premises
	`
	args := []interface{}{}
	if category != "" {
		query += ` WHERE category = $1`
		args = append(args, category)
	}
	query += ` ORDER BY created_at ASC`

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list premises: %w", err)
	}
	defer rows.Close()

	var premises []models.Premise
	for rows.Next() {
		var p models.Premise
		if err := rows.Scan(&p.ID, &p.Category, &p.SketchType, &p.Role, &p.Premise, &p.Weight, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan premise: %w", err)
		}
		premises = append(premises, p)
	}
	return premises, rows.Err()
}

// RecentPremiseIDs returns the premise ids of the session's last n seed
// resolutions, most recent first.
func (d *DatabaseClient) RecentPremiseIDs(sessionID string, n int) ([]uuid.UUID, error) {
	rows, err := d.db.Query(`
		SELECT premise_id
		FROM seed_usage
		WHERE session_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, sessionID, n)
	if err != nil {
		return nil, fmt.Errorf("failed to query seed usage: %w", err)
	}
	defer rows.Close()

	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan seed usage: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// ScenesForPremise returns the scenes joined to a premise.
func (d *DatabaseClient) ScenesForPremise(premiseID uuid.UUID) ([]models.Scene, error) {
	rows, err := d.db.Query(`
		SELECT id, premise_id, setting, camera, sound, props, created_at
		FROM scenes
		WHERE premise_id = $1
		ORDER BY created_at ASC
	`, premiseID)
	if err != nil {
		return nil, fmt.Errorf("failed to query scenes: %w", err)
	}
	defer rows.Close()

	var scenes []models.Scene
	for rows.Next() {
		var s models.Scene
		if err := rows.Scan(&s.ID, &s.PremiseID, &s.Setting, &s.Camera, &s.Sound, pq.Array(&s.Props), &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan scene: %w", err)
		}
		scenes = append(scenes, s)
	}
	return scenes, rows.Err()
}

// RecordSeedUsage writes the usage row and prunes the session's history past
// the most recent 50 entries. Recency avoidance only ever inspects a handful
// of rows, so the window loses nothing observable.
func (d *DatabaseClient) RecordSeedUsage(sessionID string, premiseID, sceneID uuid.UUID) error {
	tx, err := d.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`
		INSERT INTO seed_usage (id, session_id, premise_id, scene_id)
		VALUES ($1, $2, $3, $4)
	`, uuid.New(), sessionID, premiseID, sceneID); err != nil {
		return fmt.Errorf("failed to insert seed usage: %w", err)
	}

	if _, err := tx.Exec(`
		DELETE FROM seed_usage
		WHERE session_id = $1
		AND id NOT IN (
			SELECT id FROM seed_usage
			WHERE session_id = $1
			ORDER BY created_at DESC
			LIMIT 50
		)
	`, sessionID); err != nil {
		return fmt.Errorf("failed to prune seed usage: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit seed usage: %w", err)
	}
	return nil
}
