// Package services holds the completion service: the one place a job is moved
// into a terminal state, whether the news arrived by webhook or by polling.
package services

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sketchmachine-backend/internal/models"
	"sketchmachine-backend/internal/poller"
	"sketchmachine-backend/internal/providers/higgsfield"
	"sketchmachine-backend/internal/providers/kie"
	"sketchmachine-backend/internal/supabase"
)

// Store is the job persistence surface the completion paths need.
type Store interface {
	GetJob(jobID uuid.UUID) (*models.Job, error)
	UpdateJobComplete(jobID uuid.UUID, resultURL string) error
	UpdateJobError(jobID uuid.UUID, detail string) error
}

// StatusClient fetches provider job status by URL (premium lane).
type StatusClient interface {
	CheckStatus(ctx context.Context, statusURL string) (*higgsfield.Status, error)
}

// MediaStore mirrors result media into our own storage. Optional; mirroring
// failures keep the provider URL.
type MediaStore interface {
	UploadResultMedia(jobID uuid.UUID, filename, contentType string, data []byte) (string, string, error)
}

type CompletionService struct {
	store      Store
	status     StatusClient
	media      MediaStore
	realtime   *supabase.RealtimeClient
	machine    *poller.Machine
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewCompletionService(store Store, status StatusClient, media MediaStore, realtime *supabase.RealtimeClient, logger zerolog.Logger) *CompletionService {
	return &CompletionService{
		store:    store,
		status:   status,
		media:    media,
		realtime: realtime,
		machine:  poller.NewMachine(logger),
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// SetMachine swaps the poll machine. Used by tests to inject a fake clock.
func (s *CompletionService) SetMachine(m *poller.Machine) {
	s.machine = m
}

// StartPoll fires the bounded poll loop for a dispatched job without blocking
// the caller.
func (s *CompletionService) StartPoll(jobID uuid.UUID, statusURL string) {
	go s.Poll(context.Background(), jobID, statusURL)
}

// Poll runs the loop to a terminal state and finalizes the job. A timeout is
// a failure; the job is never left pending forever.
func (s *CompletionService) Poll(ctx context.Context, jobID uuid.UUID, statusURL string) {
	result := s.machine.Run(ctx, func(ctx context.Context) (*poller.Observation, error) {
		status, err := s.status.CheckStatus(ctx, statusURL)
		if err != nil {
			return nil, err
		}
		return &poller.Observation{
			Done:      status.State == higgsfield.StateCompleted,
			Failed:    status.Terminal() && status.State != higgsfield.StateCompleted,
			ResultURL: status.ResultURL,
			Detail:    status.Detail,
		}, nil
	})

	switch result.State {
	case poller.StateCompleted:
		s.MarkComplete(jobID, result.ResultURL)
	case poller.StateTimedOut:
		s.MarkFailed(jobID, result.Detail)
	default:
		detail := result.Detail
		if detail == "" {
			detail = "provider reported failure"
		}
		s.MarkFailed(jobID, detail)
	}
}

// HandleKieCallback finalizes a job from a standard-lane webhook event. The
// HTTP handler has already acked; this runs detached and best-effort. A job
// already terminal is left alone so duplicate callbacks apply exactly once.
func (s *CompletionService) HandleKieCallback(jobID uuid.UUID, event *kie.CallbackEvent) {
	job, err := s.store.GetJob(jobID)
	if err != nil {
		s.logger.Error().Err(err).Str("job_id", jobID.String()).Msg("completion: callback for unknown job")
		return
	}
	if job.Terminal() {
		s.logger.Info().Str("job_id", jobID.String()).Msg("completion: duplicate callback for terminal job, ignoring")
		return
	}

	if event.Data.State == "success" {
		urls := event.ResultURLs()
		if len(urls) == 0 {
			s.MarkFailed(jobID, "provider reported success without result media")
			return
		}
		s.MarkComplete(jobID, urls[0])
		return
	}

	detail := event.Data.FailMsg
	if detail == "" {
		detail = fmt.Sprintf("provider reported state %q", event.Data.State)
	}
	s.MarkFailed(jobID, detail)
}

// MarkComplete persists the terminal success state on both records. The
// result media is mirrored into our storage when possible; the provider URL
// stands in when mirroring fails.
func (s *CompletionService) MarkComplete(jobID uuid.UUID, resultURL string) {
	finalURL := resultURL
	if s.media != nil && resultURL != "" {
		if mirrored, err := s.mirrorMedia(jobID, resultURL); err != nil {
			s.logger.Warn().Err(err).Str("job_id", jobID.String()).Msg("completion: media mirror failed, keeping provider URL")
		} else {
			finalURL = mirrored
		}
	}

	if err := s.store.UpdateJobComplete(jobID, finalURL); err != nil {
		s.logger.Error().Err(err).Str("job_id", jobID.String()).Msg("completion: failed to persist complete state")
		return
	}
	if s.realtime != nil {
		_ = s.realtime.PublishJobEvent(jobID, "sketch_complete", supabase.CompletedPayload(jobID, finalURL))
	}
	s.logger.Info().Str("job_id", jobID.String()).Msg("completion: job complete")
}

// MarkFailed persists the terminal failure state on both records.
func (s *CompletionService) MarkFailed(jobID uuid.UUID, detail string) {
	if detail == "" {
		detail = "generation failed"
	}
	if err := s.store.UpdateJobError(jobID, detail); err != nil {
		s.logger.Error().Err(err).Str("job_id", jobID.String()).Msg("completion: failed to persist failed state")
		return
	}
	if s.realtime != nil {
		_ = s.realtime.PublishJobEvent(jobID, "sketch_failed", supabase.FailedPayload(jobID, detail))
	}
	s.logger.Info().Str("job_id", jobID.String()).Str("detail", detail).Msg("completion: job failed")
}

func (s *CompletionService) mirrorMedia(jobID uuid.UUID, mediaURL string) (string, error) {
	resp, err := s.httpClient.Get(mediaURL)
	if err != nil {
		return "", fmt.Errorf("failed to download result media: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download result media: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read result media: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "video/mp4"
	}
	filename := fmt.Sprintf("sketch_%s.mp4", time.Now().Format("20060102_150405"))

	_, publicURL, err := s.media.UploadResultMedia(jobID, filename, contentType, data)
	if err != nil {
		return "", err
	}
	return publicURL, nil
}
