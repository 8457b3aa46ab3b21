package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"sketchmachine-backend/internal/models"
)

// PollStarter fires the bounded completion poll loop for a job.
type PollStarter interface {
	StartPoll(jobID uuid.UUID, statusURL string)
}

type PollHandler struct {
	completion PollStarter
}

func NewPollHandler(completion PollStarter) *PollHandler {
	return &PollHandler{completion: completion}
}

// TriggerPoll is the service-to-service entry point. The caller gets 202 and
// does not wait for the loop.
func (h *PollHandler) TriggerPoll(c *gin.Context) {
	var req models.PollRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid request body",
			Details: err.Error(),
		})
		return
	}

	jobID, err := uuid.Parse(req.JobID)
	if err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid job id",
			Details: "job_id must be a valid UUID",
		})
		return
	}
	if req.StatusURL == "" {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{Error: "status_url is required"})
		return
	}

	h.completion.StartPoll(jobID, req.StatusURL)

	c.JSON(http.StatusAccepted, gin.H{"ok": true, "job_id": jobID.String()})
}
