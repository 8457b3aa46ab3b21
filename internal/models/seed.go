package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Premise is immutable seed-bank reference data.
type Premise struct {
	ID         uuid.UUID
	Category   string
	SketchType sql.NullString
	Role       sql.NullString
	Premise    string
	Weight     float64
	CreatedAt  time.Time
}

// Scene describes the setting a premise plays out in.
type Scene struct {
	ID        uuid.UUID
	PremiseID uuid.UUID
	Setting   string
	Camera    string
	Sound     string
	Props     []string
	CreatedAt time.Time
}

// SeedUsage links a session to a premise/scene pair. Written on every seed
// resolution so later resolutions in the same session can avoid repeats.
type SeedUsage struct {
	ID        uuid.UUID
	SessionID string
	PremiseID uuid.UUID
	SceneID   uuid.UUID
	CreatedAt time.Time
}
