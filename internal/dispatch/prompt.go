package dispatch

import (
	"strings"

	"sketchmachine-backend/internal/models"
)

// buildImagePrompt folds the premise and the image packet's visual grammar
// into one prompt string.
func buildImagePrompt(in *SubmitInput) string {
	parts := []string{in.Premise}
	if in.Role != "" {
		parts = append(parts, "featuring "+in.Role)
	}
	if p := in.ImagePacket; p != nil {
		for _, s := range []string{p.Subject, p.Setting, p.Camera, p.Lighting, p.Style} {
			if s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, ", ")
}

// buildVideoPrompt folds the premise and the video packet's motion grammar.
func buildVideoPrompt(in *SubmitInput) string {
	parts := []string{in.Premise}
	if p := in.VideoPacket; p != nil {
		for _, s := range []string{p.Motion, p.Timing, p.Style} {
			if s != "" {
				parts = append(parts, s)
			}
		}
	}
	return strings.Join(parts, ", ")
}

func packetOverlays(p *models.ImagePacket) []string {
	if p == nil {
		return nil
	}
	return p.Overlays
}
