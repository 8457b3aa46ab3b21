package supabase

import (
	"fmt"

	"github.com/lib/pq"

	"sketchmachine-backend/internal/models"
)

// ImagePackets returns packets matching (vector, sketch_type). A nil
// sketchType matches only rows whose sketch_type IS NULL, the vector-level
// fallback tier.
func (d *DatabaseClient) ImagePackets(vector string, sketchType *string) ([]models.ImagePacket, error) {
	query := `
		SELECT id, vector, sketch_type, aesthetic_preset, subject, setting, camera, lighting, style, overlays, created_at
		FROM image_packets
		WHERE vector = $1
	`
	args := []interface{}{vector}
	if sketchType != nil {
		query += ` AND sketch_type = $2`
		args = append(args, *sketchType)
	} else {
		query += ` AND sketch_type IS NULL`
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query image packets: %w", err)
	}
	defer rows.Close()

	var packets []models.ImagePacket
	for rows.Next() {
		var p models.ImagePacket
		if err := rows.Scan(&p.ID, &p.Vector, &p.SketchType, &p.AestheticPreset, &p.Subject,
			&p.Setting, &p.Camera, &p.Lighting, &p.Style, pq.Array(&p.Overlays), &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan image packet: %w", err)
		}
		packets = append(packets, p)
	}
	return packets, rows.Err()
}

// UniversalImagePackets returns the global fallback tier, ignoring sketch_type.
func (d *DatabaseClient) UniversalImagePackets() ([]models.ImagePacket, error) {
	rows, err := d.db.Query(`
		SELECT id, vector, sketch_type, aesthetic_preset, subject, setting, camera, lighting, style, overlays, created_at
		FROM image_packets
		WHERE vector = $1
	`, models.VectorUniversal)
	if err != nil {
		return nil, fmt.Errorf("failed to query universal image packets: %w", err)
	}
	defer rows.Close()

	var packets []models.ImagePacket
	for rows.Next() {
		var p models.ImagePacket
		if err := rows.Scan(&p.ID, &p.Vector, &p.SketchType, &p.AestheticPreset, &p.Subject,
			&p.Setting, &p.Camera, &p.Lighting, &p.Style, pq.Array(&p.Overlays), &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan image packet: %w", err)
		}
		packets = append(packets, p)
	}
	return packets, rows.Err()
}

// VideoPackets mirrors ImagePackets for the video prompt table.
func (d *DatabaseClient) VideoPackets(vector string, sketchType *string) ([]models.VideoPacket, error) {
	query := `
		SELECT id, vector, sketch_type, aesthetic_preset, motion_profile, motion, timing, style, overlays, created_at
		FROM video_packets
		WHERE vector = $1
	`
	args := []interface{}{vector}
	if sketchType != nil {
		query += ` AND sketch_type = $2`
		args = append(args, *sketchType)
	} else {
		query += ` AND sketch_type IS NULL`
	}

	rows, err := d.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query video packets: %w", err)
	}
	defer rows.Close()

	var packets []models.VideoPacket
	for rows.Next() {
		var p models.VideoPacket
		if err := rows.Scan(&p.ID, &p.Vector, &p.SketchType, &p.AestheticPreset, &p.MotionProfile,
			&p.Motion, &p.Timing, &p.Style, pq.Array(&p.Overlays), &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan video packet: %w", err)
		}
		packets = append(packets, p)
	}
	return packets, rows.Err()
}

// UniversalVideoPackets returns the global video fallback tier.
func (d *DatabaseClient) UniversalVideoPackets() ([]models.VideoPacket, error) {
	rows, err := d.db.Query(`
		SELECT id, vector, sketch_type, aesthetic_preset, motion_profile, motion, timing, style, overlays, created_at
		FROM video_packets
		WHERE vector = $1
	`, models.VectorUniversal)
	if err != nil {
		return nil, fmt.Errorf("failed to query universal video packets: %w", err)
	}
	defer rows.Close()

	var packets []models.VideoPacket
	for rows.Next() {
		var p models.VideoPacket
		if err := rows.Scan(&p.ID, &p.Vector, &p.SketchType, &p.AestheticPreset, &p.MotionProfile,
			&p.Motion, &p.Timing, &p.Style, pq.Array(&p.Overlays), &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan video packet: %w", err)
		}
		packets = append(packets, p)
	}
	return packets, rows.Err()
}
