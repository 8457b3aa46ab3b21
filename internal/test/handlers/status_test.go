package handlers_test

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"sketchmachine-backend/internal/handlers"
	"sketchmachine-backend/internal/models"
)

type fakeJobReader struct {
	jobs map[uuid.UUID]*models.Job
}

func (f *fakeJobReader) GetJob(jobID uuid.UUID) (*models.Job, error) {
	job, ok := f.jobs[jobID]
	if !ok {
		return nil, errors.New("job not found")
	}
	return job, nil
}

func getStatus(h *handlers.StatusHandler, jobID string) *httptest.ResponseRecorder {
	router := gin.New()
	router.GET("/api/v1/sketches/:job_id/status", h.GetStatus)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/sketches/"+jobID+"/status", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestGetStatus_CompleteJob(t *testing.T) {
	jobID := uuid.New()
	reader := &fakeJobReader{jobs: map[uuid.UUID]*models.Job{
		jobID: {
			ID:        jobID,
			Status:    models.JobStatusComplete,
			Provider:  sql.NullString{String: models.ProviderKie, Valid: true},
			ResultURL: sql.NullString{String: "https://cdn.example.com/out.mp4", Valid: true},
		},
	}}
	h := handlers.NewStatusHandler(reader)

	w := getStatus(h, jobID.String())

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.StatusResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, jobID.String(), resp.JobID)
	assert.Equal(t, models.JobStatusComplete, resp.Status)
	assert.Equal(t, models.ProviderKie, resp.Provider)
	assert.Equal(t, "https://cdn.example.com/out.mp4", resp.ResultURL)
	assert.Empty(t, resp.ErrorDetail)
}

func TestGetStatus_FailedJobCarriesDetail(t *testing.T) {
	jobID := uuid.New()
	reader := &fakeJobReader{jobs: map[uuid.UUID]*models.Job{
		jobID: {
			ID:          jobID,
			Status:      models.JobStatusFailed,
			ErrorDetail: sql.NullString{String: "content policy", Valid: true},
		},
	}}
	h := handlers.NewStatusHandler(reader)

	w := getStatus(h, jobID.String())

	assert.Equal(t, http.StatusOK, w.Code)

	var resp models.StatusResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "content policy", resp.ErrorDetail)
	assert.Empty(t, resp.ResultURL)
}

func TestGetStatus_InvalidJobID(t *testing.T) {
	h := handlers.NewStatusHandler(&fakeJobReader{jobs: map[uuid.UUID]*models.Job{}})

	w := getStatus(h, "not-a-uuid")

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetStatus_UnknownJob(t *testing.T) {
	h := handlers.NewStatusHandler(&fakeJobReader{jobs: map[uuid.UUID]*models.Job{}})

	w := getStatus(h, uuid.New().String())

	assert.Equal(t, http.StatusNotFound, w.Code)
}
