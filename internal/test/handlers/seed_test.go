package handlers_test

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"sketchmachine-backend/internal/handlers"
	"sketchmachine-backend/internal/models"
	"sketchmachine-backend/internal/seedbank"
)

func postSeed(h *handlers.SeedHandler, body string) *httptest.ResponseRecorder {
	router := gin.New()
	router.POST("/api/v1/seeds", h.GetSeed)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/seeds", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetSeed_ResolvedPair(t *testing.T) {
	premiseID := uuid.New()
	sceneID := uuid.New()
	seeds := &fakeSeeds{result: &seedbank.Result{
		Premise: models.Premise{
			ID:       premiseID,
			Category: "WORK_VECTOR",
			Premise:  "a fire drill nobody believes in",
			Role:     sql.NullString{String: "a safety officer", Valid: true},
		},
		Scene: models.Scene{ID: sceneID, PremiseID: premiseID, Setting: "a stairwell"},
	}}
	h := handlers.NewSeedHandler(seeds)

	w := postSeed(h, `{"category":"WORK_VECTOR","session_id":"session-1"}`)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.SeedResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, premiseID.String(), resp.Seed.PremiseID)
	assert.Equal(t, "a fire drill nobody believes in", resp.Seed.Premise)
	assert.Equal(t, "a stairwell", resp.Seed.Scene)
	assert.Equal(t, "a safety officer", resp.Seed.Role)
}

func TestGetSeed_EmptyBankIs404(t *testing.T) {
	h := handlers.NewSeedHandler(&fakeSeeds{err: seedbank.ErrNoSeedAvailable})

	w := postSeed(h, `{}`)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestGetSeed_MalformedBody(t *testing.T) {
	h := handlers.NewSeedHandler(&fakeSeeds{})

	w := postSeed(h, `{`)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHealth(t *testing.T) {
	router := gin.New()
	router.GET("/health", handlers.HealthHandler)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}
