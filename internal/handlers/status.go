package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sketchmachine-backend/internal/models"
)

// JobReader is the read slice of the store.
type JobReader interface {
	GetJob(jobID uuid.UUID) (*models.Job, error)
}

type StatusHandler struct {
	store JobReader
}

func NewStatusHandler(store JobReader) *StatusHandler {
	return &StatusHandler{store: store}
}

// GetStatus lets the client poll a job it submitted.
func (h *StatusHandler) GetStatus(c *gin.Context) {
	jobID, err := uuid.Parse(c.Param("job_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid job id",
			Details: "job_id must be a valid UUID",
		})
		return
	}

	job, err := h.store.GetJob(jobID)
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "job not found",
			Details: err.Error(),
		})
		return
	}

	resp := models.StatusResponse{
		JobID:     job.ID.String(),
		Status:    job.Status,
		UpdatedAt: job.UpdatedAt,
	}
	if job.Provider.Valid {
		resp.Provider = job.Provider.String
	}
	if job.ResultURL.Valid {
		resp.ResultURL = job.ResultURL.String
	}
	if job.ErrorDetail.Valid {
		resp.ErrorDetail = job.ErrorDetail.String
	}

	c.JSON(http.StatusOK, resp)
}
