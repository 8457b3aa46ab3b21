package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sketchmachine-backend/internal/dispatch"
	"sketchmachine-backend/internal/models"
	"sketchmachine-backend/internal/packets"
	"sketchmachine-backend/internal/pick"
	"sketchmachine-backend/internal/seedbank"
)

// TypeViral is the request type that routes vector selection through the
// weighted picker instead of taking the first tag.
const TypeViral = "celit_viral"

// Relative pull of each reality vector when the viral path weights them.
var vectorWeights = map[string]float64{
	"WORK_VECTOR": 3,
	"LIFE_VECTOR": 2,
	"FEED_VECTOR": 1,
}

// SeedSource resolves a premise when the caller did not supply one.
type SeedSource interface {
	Resolve(category, sessionID string) (*seedbank.Result, error)
}

// PacketSource selects the image/video prompt packets.
type PacketSource interface {
	SelectImage(vector string, sketchType *string) (*models.ImagePacket, error)
	SelectVideo(vector string, sketchType *string) (*models.VideoPacket, error)
}

// NarrativeSource produces the caption copy. It cannot fail.
type NarrativeSource interface {
	Compose(ctx context.Context, premise, role, vector string) models.Narrative
}

// JobCreator is the job-intake slice of the store.
type JobCreator interface {
	CreateJob(job *models.Job) error
}

type GenerateHandler struct {
	seeds          SeedSource
	packets        PacketSource
	narrative      NarrativeSource
	store          JobCreator
	standard       dispatch.Dispatcher
	premium        dispatch.Dispatcher
	premiumEnabled bool
	avatarBaseURL  string
	logger         zerolog.Logger
}

func NewGenerateHandler(
	seeds SeedSource,
	packetSource PacketSource,
	narrative NarrativeSource,
	store JobCreator,
	standard dispatch.Dispatcher,
	premium dispatch.Dispatcher,
	premiumEnabled bool,
	avatarBaseURL string,
	logger zerolog.Logger,
) *GenerateHandler {
	return &GenerateHandler{
		seeds:          seeds,
		packets:        packetSource,
		narrative:      narrative,
		store:          store,
		standard:       standard,
		premium:        premium,
		premiumEnabled: premiumEnabled,
		avatarBaseURL:  avatarBaseURL,
		logger:         logger,
	}
}

// Generate runs the full pipeline for one sketch job: premise resolution,
// packet selection, narrative synthesis, persistence, provider dispatch.
func (h *GenerateHandler) Generate(c *gin.Context) {
	var req models.GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Details: err.Error(),
		})
		return
	}

	jobID := uuid.New()
	if req.SketchID != "" {
		parsed, err := uuid.Parse(req.SketchID)
		if err != nil {
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid sketch id",
				Details: "sketchId must be a valid UUID",
			})
			return
		}
		jobID = parsed
	}

	identityID := parseIdentity(req)
	vector := resolveVector(&req)

	premise := req.Premise
	role := req.Role
	sketchType := req.Type
	if premise == "" {
		seed, err := h.seeds.Resolve(seedCategory(vector), sessionID(&req))
		switch {
		case errors.Is(err, seedbank.ErrNoSeedAvailable):
			// An empty seed bank degrades to a procedural premise.
			premise = seedbank.FallbackPremise(vector, role)
		case err != nil:
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "seed resolution failed",
				Details: err.Error(),
			})
			return
		default:
			premise = seed.Premise.Premise
			if role == "" && seed.Premise.Role.Valid {
				role = seed.Premise.Role.String
			}
			if sketchType == "" && seed.Premise.SketchType.Valid {
				sketchType = seed.Premise.SketchType.String
			}
		}
	}

	imagePacket, err := h.packets.SelectImage(vector, sketchTypePtr(sketchType))
	if err != nil {
		h.packetFailure(c, err)
		return
	}
	videoPacket, err := h.packets.SelectVideo(vector, sketchTypePtr(sketchType))
	if err != nil {
		h.packetFailure(c, err)
		return
	}

	story := h.narrative.Compose(c.Request.Context(), premise, role, vector)
	content, _ := json.Marshal(story)

	job := &models.Job{
		ID:            jobID,
		IdentityID:    identityID,
		Status:        models.JobStatusPending,
		Vector:        vector,
		SketchType:    nullString(sketchType),
		Premise:       premise,
		Role:          nullString(role),
		ImagePacketID: uuid.NullUUID{UUID: imagePacket.ID, Valid: true},
		VideoPacketID: uuid.NullUUID{UUID: videoPacket.ID, Valid: true},
		Content:       content,
	}
	if err := h.store.CreateJob(job); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "failed to create job",
			Details: err.Error(),
		})
		return
	}

	dispatcher := h.standard
	if dispatch.PlanFor(h.premiumEnabled, req.CinemaLane) == dispatch.PlanPremium {
		dispatcher = h.premium
	}

	outcome, err := dispatcher.Submit(c.Request.Context(), &dispatch.SubmitInput{
		JobID:       jobID,
		Premise:     premise,
		Role:        role,
		Vector:      vector,
		AvatarURL:   h.avatarURL(req.AvatarID),
		ImagePacket: imagePacket,
		VideoPacket: videoPacket,
		Narrative:   story,
	})
	if err != nil {
		// The dispatcher has already marked the job failed on both records.
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "provider dispatch failed",
			Details: err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, models.GenerateResponse{
		OK:        true,
		JobID:     jobID.String(),
		TaskID:    outcome.TaskID,
		StatusURL: outcome.StatusURL,
	})
}

func (h *GenerateHandler) packetFailure(c *gin.Context, err error) {
	if errors.Is(err, packets.ErrNoFallbackPacket) {
		// Deployment misconfiguration: nothing seeded at the UNIVERSAL tier.
		h.logger.Error().Err(err).Msg("generate: no universal packet seeded")
	}
	c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "packet selection failed",
		Details: err.Error(),
	})
}

func (h *GenerateHandler) avatarURL(avatarID string) string {
	if avatarID == "" {
		return ""
	}
	return fmt.Sprintf("%s/storage/v1/object/public/avatars/%s.png", h.avatarBaseURL, avatarID)
}

// resolveVector picks the job's reality vector. The viral type weights the
// supplied tags; everything else takes the first tag as given.
func resolveVector(req *models.GenerateRequest) string {
	if len(req.RealityVectors) == 0 {
		return models.VectorUniversal
	}
	if req.Type == TypeViral {
		items := make([]pick.Item[string], 0, len(req.RealityVectors))
		for _, v := range req.RealityVectors {
			weight, ok := vectorWeights[v]
			if !ok {
				weight = 1
			}
			items = append(items, pick.Item[string]{Value: v, Weight: weight})
		}
		if v, err := pick.Weighted(items); err == nil {
			return v
		}
	}
	return req.RealityVectors[0]
}

func seedCategory(vector string) string {
	if vector == models.VectorUniversal {
		return ""
	}
	return vector
}

func sessionID(req *models.GenerateRequest) string {
	if req.UserID != "" {
		return req.UserID
	}
	return req.IdentityID
}

func parseIdentity(req models.GenerateRequest) uuid.NullUUID {
	raw := req.UserID
	if raw == "" {
		raw = req.IdentityID
	}
	if raw == "" {
		return uuid.NullUUID{}
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: parsed, Valid: true}
}

func sketchTypePtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
