package dispatch

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"sketchmachine-backend/internal/models"
	"sketchmachine-backend/internal/poller"
	"sketchmachine-backend/internal/providers/faceswap"
	"sketchmachine-backend/internal/providers/higgsfield"
)

// The image stage completes in seconds, so it is polled inline on a tighter
// interval than the video stage.
const (
	imageStageInterval    = 2 * time.Second
	imageStageMaxAttempts = 60
)

// Premium is the cinema lane: synchronous image generation, optional face
// swap, then an image-to-video submission whose completion the poller owns.
// It never falls back to the standard lane.
type Premium struct {
	client   *higgsfield.Client
	faceswap *faceswap.Client
	store    JobStore
	trigger  PollTrigger
	machine  *poller.Machine
	logger   zerolog.Logger
}

func NewPremium(client *higgsfield.Client, swap *faceswap.Client, store JobStore, trigger PollTrigger, logger zerolog.Logger) *Premium {
	machine := poller.NewMachine(logger)
	machine.Interval = imageStageInterval
	machine.MaxAttempts = imageStageMaxAttempts
	return &Premium{
		client:   client,
		faceswap: swap,
		store:    store,
		trigger:  trigger,
		machine:  machine,
		logger:   logger,
	}
}

func (p *Premium) Submit(ctx context.Context, in *SubmitInput) (*Outcome, error) {
	imageSet, err := p.client.SubmitImage(ctx, higgsfield.ImageRequest{
		Prompt:      buildImagePrompt(in),
		AspectRatio: "9:16",
		StylePreset: packetPreset(in.ImagePacket),
	})
	if err != nil {
		return nil, p.fail(in.JobID, err)
	}

	if err := p.store.UpdateJobDispatch(in.JobID, models.ProviderHiggsfield, imageSet.ID, imageSet.StatusURL, models.JobStatusGeneratingImage); err != nil {
		return nil, fmt.Errorf("failed to persist dispatch: %w", err)
	}

	result := p.machine.Run(ctx, func(ctx context.Context) (*poller.Observation, error) {
		status, err := p.client.CheckStatus(ctx, imageSet.StatusURL)
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
		// continue below
	case poller.StateTimedOut:
		return nil, p.fail(in.JobID, fmt.Errorf("image generation timed out after %d attempts", result.Attempts))
	default:
		return nil, p.fail(in.JobID, fmt.Errorf("image generation failed: %s", result.Detail))
	}

	imageURL := result.ResultURL
	if in.AvatarURL != "" {
		swapped, err := p.faceswap.Swap(ctx, imageURL, in.AvatarURL)
		if err != nil {
			// Identity replacement is best-effort; the unswapped image ships.
			p.logger.Warn().Err(err).Str("job_id", in.JobID.String()).Msg("dispatch: face swap failed, continuing with original image")
		} else {
			imageURL = swapped
		}
	}

	videoSet, err := p.client.SubmitVideo(ctx, higgsfield.VideoRequest{
		ImageURL:      imageURL,
		Prompt:        buildVideoPrompt(in),
		Motion:        packetMotion(in.VideoPacket),
		MotionProfile: packetMotionProfile(in.VideoPacket),
	})
	if err != nil {
		return nil, p.fail(in.JobID, err)
	}

	if err := p.store.UpdateJobDispatch(in.JobID, models.ProviderHiggsfield, videoSet.ID, videoSet.StatusURL, models.JobStatusAnimating); err != nil {
		return nil, fmt.Errorf("failed to persist dispatch: %w", err)
	}

	// The video stage runs for minutes; hand it to the poller and return.
	p.trigger.StartPoll(in.JobID, videoSet.StatusURL)

	p.logger.Info().Str("job_id", in.JobID.String()).Str("job_set_id", videoSet.ID).Msg("dispatch: premium lane video submitted")
	return &Outcome{Provider: models.ProviderHiggsfield, TaskID: videoSet.ID, StatusURL: videoSet.StatusURL}, nil
}

func (p *Premium) fail(jobID uuid.UUID, err error) error {
	if storeErr := p.store.UpdateJobError(jobID, err.Error()); storeErr != nil {
		p.logger.Error().Err(storeErr).Str("job_id", jobID.String()).Msg("dispatch: failed to persist dispatch error")
	}
	return fmt.Errorf("premium lane submission failed: %w", err)
}

func packetPreset(p *models.ImagePacket) string {
	if p == nil {
		return ""
	}
	return p.AestheticPreset
}

func packetMotion(p *models.VideoPacket) string {
	if p == nil {
		return ""
	}
	return p.Motion
}

func packetMotionProfile(p *models.VideoPacket) string {
	if p == nil {
		return ""
	}
	return p.MotionProfile
}
