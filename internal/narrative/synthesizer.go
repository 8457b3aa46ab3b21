// Package narrative asks an LLM for title/verdict/caption copy for a sketch.
// Generation failure is never fatal: every failure path lands on static
// defaults, and a partial parse merges parsed fields over them.
package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"sketchmachine-backend/internal/models"
)

type Synthesizer struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
	logger     zerolog.Logger
}

func NewSynthesizer(baseURL, apiKey, model string, logger zerolog.Logger) *Synthesizer {
	return &Synthesizer{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		model:   model,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger: logger,
	}
}

// Defaults is the static structure used when generation fails outright.
func Defaults() models.Narrative {
	return models.Narrative{
		Title:   "Untitled Sketch",
		Verdict: "The committee has reviewed this and has concerns.",
		Captions: []string{
			"this is fine",
			"no notes",
			"we will speak of this never",
		},
		DeletedLine: "take four was somehow worse",
	}
}

type geminiRequest struct {
	Contents []geminiContent `json:"contents"`
	GenerationConfig struct {
		ResponseMIMEType string  `json:"responseMimeType,omitempty"`
		Temperature      float64 `json:"temperature,omitempty"`
	} `json:"generationConfig"`
}

type geminiContent struct {
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text"`
}

type geminiResponse struct {
	Candidates []struct {
		Content struct {
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"content"`
	} `json:"candidates"`
}

// Compose returns narrative copy for the premise. It always returns a usable
// narrative; the error surface of the LLM call is absorbed here.
func (s *Synthesizer) Compose(ctx context.Context, premise, role, vector string) models.Narrative {
	defaults := Defaults()

	if s.apiKey == "" {
		return defaults
	}

	payload := geminiRequest{
		Contents: []geminiContent{
			{Parts: []geminiPart{{Text: buildDirective(premise, role, vector)}}},
		},
	}
	payload.GenerationConfig.ResponseMIMEType = "application/json"
	payload.GenerationConfig.Temperature = 0.9

	jsonData, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn().Err(err).Msg("narrative: failed to encode request, using defaults")
		return defaults
	}

	url := fmt.Sprintf("%s/models/%s:generateContent?key=%s", s.baseURL, s.model, s.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		s.logger.Warn().Err(err).Msg("narrative: failed to build request, using defaults")
		return defaults
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		s.logger.Warn().Err(err).Msg("narrative: request failed, using defaults")
		return defaults
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		s.logger.Warn().Err(err).Msg("narrative: failed to read response, using defaults")
		return defaults
	}

	if resp.StatusCode != http.StatusOK {
		s.logger.Warn().Int("status", resp.StatusCode).Msg("narrative: non-200 from LLM, using defaults")
		return defaults
	}

	var result geminiResponse
	if err := json.Unmarshal(body, &result); err != nil {
		s.logger.Warn().Err(err).Msg("narrative: failed to decode envelope, using defaults")
		return defaults
	}
	if len(result.Candidates) == 0 || len(result.Candidates[0].Content.Parts) == 0 {
		return defaults
	}

	return MergeOverDefaults(result.Candidates[0].Content.Parts[0].Text)
}

// MergeOverDefaults parses the model's JSON text and overlays any parsed
// fields on the static defaults, field by field.
func MergeOverDefaults(text string) models.Narrative {
	out := Defaults()

	text = stripFences(text)

	var parsed struct {
		Title       string   `json:"title"`
		Verdict     string   `json:"verdict"`
		Captions    []string `json:"captions"`
		DeletedLine string   `json:"deleted_line"`
	}
	if err := json.Unmarshal([]byte(text), &parsed); err != nil {
		return out
	}

	if strings.TrimSpace(parsed.Title) != "" {
		out.Title = parsed.Title
	}
	if strings.TrimSpace(parsed.Verdict) != "" {
		out.Verdict = parsed.Verdict
	}
	if len(parsed.Captions) > 0 {
		out.Captions = parsed.Captions
	}
	if strings.TrimSpace(parsed.DeletedLine) != "" {
		out.DeletedLine = parsed.DeletedLine
	}
	return out
}

// stripFences removes a markdown code fence the model sometimes wraps its
// JSON in despite the response MIME type.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(text, "```")
	}
	return strings.TrimSpace(text)
}

func buildDirective(premise, role, vector string) string {
	var b strings.Builder
	b.WriteString("You write deadpan comedy copy for short AI-generated sketches. ")
	b.WriteString("Respond with only a JSON object with these fields: ")
	b.WriteString(`"title" (string), "verdict" (one dry sentence), `)
	b.WriteString(`"captions" (array of exactly 3 short strings), `)
	b.WriteString(`"deleted_line" (one discarded alternate caption).`)
	b.WriteString("\n\nPremise: ")
	b.WriteString(premise)
	if role != "" {
		b.WriteString("\nRole: ")
		b.WriteString(role)
	}
	if vector != "" {
		b.WriteString("\nContext: ")
		b.WriteString(vector)
	}
	return b.String()
}
