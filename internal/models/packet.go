package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// VectorUniversal is the global fallback tier. At least one image packet and
// one video packet must carry it or selection cannot be guaranteed.
const VectorUniversal = "UNIVERSAL"

// ImagePacket is a structured prompt payload for still generation, keyed by
// (vector, sketch_type, aesthetic_preset). Reference data; never mutated.
type ImagePacket struct {
	ID              uuid.UUID
	Vector          string
	SketchType      sql.NullString
	AestheticPreset string
	Subject         string
	Setting         string
	Camera          string
	Lighting        string
	Style           string
	Overlays        []string
	CreatedAt       time.Time
}

// VideoPacket adds motion and timing grammar on top of the image keys.
type VideoPacket struct {
	ID              uuid.UUID
	Vector          string
	SketchType      sql.NullString
	AestheticPreset string
	MotionProfile   string
	Motion          string
	Timing          string
	Style           string
	Overlays        []string
	CreatedAt       time.Time
}
