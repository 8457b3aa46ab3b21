// Package seedbank resolves a premise/scene pair for jobs that arrive without
// caller-supplied premise text, avoiding recent repeats within a session.
package seedbank

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"sketchmachine-backend/internal/models"
	"sketchmachine-backend/internal/pick"
)

// ErrNoSeedAvailable means the premise bank holds zero rows. Callers degrade
// to a procedural fallback premise instead of failing the request.
var ErrNoSeedAvailable = errors.New("seed bank has no premises")

// DefaultAvoidLast is how many of the session's most recent premises are
// excluded from re-selection.
const DefaultAvoidLast = 5

// Store is the slice of the persistence layer the resolver needs.
type Store interface {
	ListPremises(category string) ([]models.Premise, error)
	RecentPremiseIDs(sessionID string, n int) ([]uuid.UUID, error)
	ScenesForPremise(premiseID uuid.UUID) ([]models.Scene, error)
	RecordSeedUsage(sessionID string, premiseID, sceneID uuid.UUID) error
}

type Resolver struct {
	store     Store
	avoidLast int
}

func NewResolver(store Store) *Resolver {
	return &Resolver{store: store, avoidLast: DefaultAvoidLast}
}

// Result is a resolved premise joined to one of its scenes.
type Result struct {
	Premise models.Premise
	Scene   models.Scene
}

// Resolve picks a premise for the session. Recently used premises are
// excluded unless exclusion would empty the pool; selection never fails just
// because a session has seen everything.
func (r *Resolver) Resolve(category, sessionID string) (*Result, error) {
	candidates, err := r.store.ListPremises(category)
	if err != nil {
		return nil, fmt.Errorf("failed to load premise candidates: %w", err)
	}
	if len(candidates) == 0 && category != "" {
		// Nothing in this category; fall back to the whole bank.
		candidates, err = r.store.ListPremises("")
		if err != nil {
			return nil, fmt.Errorf("failed to load premise candidates: %w", err)
		}
	}
	if len(candidates) == 0 {
		return nil, ErrNoSeedAvailable
	}

	filtered := candidates
	if sessionID != "" {
		recent, err := r.store.RecentPremiseIDs(sessionID, r.avoidLast)
		if err != nil {
			return nil, fmt.Errorf("failed to load recent usage: %w", err)
		}
		filtered = excludeRecent(candidates, recent)
		if len(filtered) == 0 {
			// Every candidate was used recently; repeats beat failures.
			filtered = candidates
		}
	}

	premise, err := pick.Uniform(filtered)
	if err != nil {
		return nil, err
	}

	scenes, err := r.store.ScenesForPremise(premise.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load scenes: %w", err)
	}

	var scene models.Scene
	if len(scenes) > 0 {
		scene, err = pick.Uniform(scenes)
		if err != nil {
			return nil, err
		}
	} else {
		scene = models.Scene{ID: uuid.New(), PremiseID: premise.ID, Setting: "a nondescript room"}
	}

	if sessionID != "" {
		// Usage must land before the result does, or a rapid follow-up call in
		// the same session could re-pick this premise.
		if err := r.store.RecordSeedUsage(sessionID, premise.ID, scene.ID); err != nil {
			return nil, fmt.Errorf("failed to record seed usage: %w", err)
		}
	}

	return &Result{Premise: premise, Scene: scene}, nil
}

func excludeRecent(candidates []models.Premise, recent []uuid.UUID) []models.Premise {
	if len(recent) == 0 {
		return candidates
	}
	used := make(map[uuid.UUID]struct{}, len(recent))
	for _, id := range recent {
		used[id] = struct{}{}
	}
	var out []models.Premise
	for _, c := range candidates {
		if _, ok := used[c.ID]; !ok {
			out = append(out, c)
		}
	}
	return out
}

// FallbackPremise builds a generic premise when the bank is empty.
func FallbackPremise(vector, role string) string {
	subject := "an unreasonably confident person"
	if role != "" {
		subject = strings.TrimSpace(role)
	}
	theme := "everyday life"
	switch vector {
	case "WORK_VECTOR":
		theme = "an open-plan office"
	case "LIFE_VECTOR":
		theme = "a family kitchen"
	case "FEED_VECTOR":
		theme = "a livestream gone sideways"
	}
	return fmt.Sprintf("%s takes %s far too seriously until it visibly stops cooperating", subject, theme)
}
