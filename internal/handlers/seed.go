package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"sketchmachine-backend/internal/models"
	"sketchmachine-backend/internal/seedbank"
)

type SeedHandler struct {
	seeds SeedSource
}

func NewSeedHandler(seeds SeedSource) *SeedHandler {
	return &SeedHandler{seeds: seeds}
}

// GetSeed resolves a premise/scene pair for the caller's session. 404 only
// when the seed bank holds nothing at all.
func (h *SeedHandler) GetSeed(c *gin.Context) {
	var req models.SeedRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Details: err.Error(),
		})
		return
	}

	result, err := h.seeds.Resolve(req.Category, req.SessionID)
	if err != nil {
		if errors.Is(err, seedbank.ErrNoSeedAvailable) {
			c.JSON(http.StatusNotFound, models.ErrorResponse{Error: "no seed data available"})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "seed resolution failed",
			Details: err.Error(),
		})
		return
	}

	seed := &models.Seed{
		PremiseID: result.Premise.ID.String(),
		SceneID:   result.Scene.ID.String(),
		Category:  result.Premise.Category,
		Premise:   result.Premise.Premise,
		Scene:     result.Scene.Setting,
	}
	if result.Premise.SketchType.Valid {
		seed.SketchType = result.Premise.SketchType.String
	}
	if result.Premise.Role.Valid {
		seed.Role = result.Premise.Role.String
	}

	c.JSON(http.StatusOK, models.SeedResponse{OK: true, Seed: seed})
}
