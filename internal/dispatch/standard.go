package dispatch

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"sketchmachine-backend/internal/models"
	"sketchmachine-backend/internal/providers/kie"
)

// Standard is the default asynchronous lane. One task submission with an
// embedded callback URL; the provider's webhook finishes the job.
type Standard struct {
	client      *kie.Client
	store       JobStore
	callbackURL string
	logger      zerolog.Logger
}

func NewStandard(client *kie.Client, store JobStore, callbackURL string, logger zerolog.Logger) *Standard {
	return &Standard{
		client:      client,
		store:       store,
		callbackURL: callbackURL,
		logger:      logger,
	}
}

func (s *Standard) Submit(ctx context.Context, in *SubmitInput) (*Outcome, error) {
	taskReq := kie.CreateTaskRequest{
		Model:       "sketch-video-v1",
		CallbackURL: fmt.Sprintf("%s/webhooks/kie?job_id=%s", s.callbackURL, in.JobID),
		Input: kie.TaskInput{
			Prompt:      buildImagePrompt(in),
			ImagePrompt: buildVideoPrompt(in),
			AspectRatio: "9:16",
			Overlays:    packetOverlays(in.ImagePacket),
		},
	}

	taskID, err := s.client.CreateTask(ctx, taskReq)
	if err != nil {
		if storeErr := s.store.UpdateJobError(in.JobID, err.Error()); storeErr != nil {
			s.logger.Error().Err(storeErr).Str("job_id", in.JobID.String()).Msg("dispatch: failed to persist dispatch error")
		}
		return nil, fmt.Errorf("standard lane submission failed: %w", err)
	}

	if err := s.store.UpdateJobDispatch(in.JobID, models.ProviderKie, taskID, "", models.JobStatusGeneratingImage); err != nil {
		return nil, fmt.Errorf("failed to persist dispatch: %w", err)
	}

	s.logger.Info().Str("job_id", in.JobID.String()).Str("task_id", taskID).Msg("dispatch: standard lane task submitted")
	return &Outcome{Provider: models.ProviderKie, TaskID: taskID}, nil
}
