// Package packets selects image and video prompt packets through an ordered
// fallback chain: exact (vector, sketch_type), then vector-only, then the
// UNIVERSAL tier.
package packets

import (
	"errors"
	"fmt"

	"sketchmachine-backend/internal/models"
	"sketchmachine-backend/internal/pick"
)

// ErrNoFallbackPacket means even the UNIVERSAL tier is empty. That is a
// misconfigured deployment, not a runtime condition to degrade around.
var ErrNoFallbackPacket = errors.New("no universal fallback packet seeded")

type Store interface {
	ImagePackets(vector string, sketchType *string) ([]models.ImagePacket, error)
	UniversalImagePackets() ([]models.ImagePacket, error)
	VideoPackets(vector string, sketchType *string) ([]models.VideoPacket, error)
	UniversalVideoPackets() ([]models.VideoPacket, error)
}

type Selector struct {
	store Store
}

func NewSelector(store Store) *Selector {
	return &Selector{store: store}
}

// SelectImage resolves the image packet for (vector, sketchType). A tier with
// several candidates picks uniformly so repeated requests vary.
func (s *Selector) SelectImage(vector string, sketchType *string) (*models.ImagePacket, error) {
	if sketchType != nil {
		exact, err := s.store.ImagePackets(vector, sketchType)
		if err != nil {
			return nil, fmt.Errorf("failed exact image packet lookup: %w", err)
		}
		if len(exact) > 0 {
			p, err := pick.Uniform(exact)
			return &p, err
		}
	}

	vectorOnly, err := s.store.ImagePackets(vector, nil)
	if err != nil {
		return nil, fmt.Errorf("failed vector-only image packet lookup: %w", err)
	}
	if len(vectorOnly) > 0 {
		p, err := pick.Uniform(vectorOnly)
		return &p, err
	}

	universal, err := s.store.UniversalImagePackets()
	if err != nil {
		return nil, fmt.Errorf("failed universal image packet lookup: %w", err)
	}
	if len(universal) == 0 {
		return nil, ErrNoFallbackPacket
	}
	p, err := pick.Uniform(universal)
	return &p, err
}

// SelectVideo mirrors SelectImage for the video packet table. Image and video
// selection are independent and may land on different presets.
func (s *Selector) SelectVideo(vector string, sketchType *string) (*models.VideoPacket, error) {
	if sketchType != nil {
		exact, err := s.store.VideoPackets(vector, sketchType)
		if err != nil {
			return nil, fmt.Errorf("failed exact video packet lookup: %w", err)
		}
		if len(exact) > 0 {
			p, err := pick.Uniform(exact)
			return &p, err
		}
	}

	vectorOnly, err := s.store.VideoPackets(vector, nil)
	if err != nil {
		return nil, fmt.Errorf("failed vector-only video packet lookup: %w", err)
	}
	if len(vectorOnly) > 0 {
		p, err := pick.Uniform(vectorOnly)
		return &p, err
	}

	universal, err := s.store.UniversalVideoPackets()
	if err != nil {
		return nil, fmt.Errorf("failed universal video packet lookup: %w", err)
	}
	if len(universal) == 0 {
		return nil, ErrNoFallbackPacket
	}
	p, err := pick.Uniform(universal)
	return &p, err
}
