package handlers

import (
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sketchmachine-backend/internal/models"
	"sketchmachine-backend/internal/providers/kie"
)

// CallbackProcessor finalizes a job from a provider callback. Runs after the
// handler has already acked.
type CallbackProcessor interface {
	HandleKieCallback(jobID uuid.UUID, event *kie.CallbackEvent)
}

type WebhookHandler struct {
	token     string
	processor CallbackProcessor
	logger    zerolog.Logger
}

func NewWebhookHandler(token string, processor CallbackProcessor, logger zerolog.Logger) *WebhookHandler {
	return &WebhookHandler{
		token:     token,
		processor: processor,
		logger:    logger,
	}
}

// HandleKieWebhook receives the standard-lane completion callback. It acks
// 200 immediately; the database work happens in a detached goroutine, so a
// processing failure never makes the provider retry forever.
func (h *WebhookHandler) HandleKieWebhook(c *gin.Context) {
	if h.token != "" {
		auth := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		if auth != h.token {
			c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "invalid webhook token"})
			return
		}
	}

	jobID, err := uuid.Parse(c.Query("job_id"))
	if err != nil {
		h.logger.Warn().Str("job_id", c.Query("job_id")).Msg("webhook: callback without a usable job_id")
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		h.logger.Warn().Err(err).Str("job_id", jobID.String()).Msg("webhook: failed to read callback body")
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	var event kie.CallbackEvent
	if err := json.Unmarshal(body, &event); err != nil {
		h.logger.Warn().Err(err).Str("job_id", jobID.String()).Msg("webhook: failed to parse callback body")
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}

	go h.processor.HandleKieCallback(jobID, &event)

	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
