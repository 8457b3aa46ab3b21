// Package higgsfield is the client for the premium "cinema lane" provider:
// a submit-then-poll image stage chained into an image-to-video stage.
package higgsfield

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Job set states reported by the status endpoint.
const (
	StateQueued     = "queued"
	StateInProgress = "in_progress"
	StateCompleted  = "completed"
	StateFailed     = "failed"
	StateNSFW       = "nsfw"
)

type Client struct {
	baseURL    string
	apiKey     string
	apiSecret  string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey, apiSecret string) *Client {
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		apiKey:    apiKey,
		apiSecret: apiSecret,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type ImageRequest struct {
	Prompt          string `json:"prompt"`
	AspectRatio     string `json:"aspect_ratio,omitempty"`
	StylePreset     string `json:"style_preset,omitempty"`
	EnhancePrompt   bool   `json:"enhance_prompt,omitempty"`
	ReferenceImage  string `json:"reference_image_url,omitempty"`
}

type VideoRequest struct {
	ImageURL      string `json:"image_url"`
	Motion        string `json:"motion,omitempty"`
	MotionProfile string `json:"motion_profile,omitempty"`
	Prompt        string `json:"prompt,omitempty"`
	Duration      int    `json:"duration,omitempty"`
}

// JobSet identifies a submitted generation and where to poll it.
type JobSet struct {
	ID        string
	StatusURL string
}

// Status is one observation of a job set.
type Status struct {
	State     string
	ResultURL string
	Detail    string
}

// Terminal reports whether the provider will not move this job set again.
func (s *Status) Terminal() bool {
	return s.State == StateCompleted || s.State == StateFailed || s.State == StateNSFW
}

type jobSetResponse struct {
	ID   string `json:"id"`
	Jobs []struct {
		ID      string `json:"id"`
		Status  string `json:"status"`
		Results struct {
			Raw struct {
				URL string `json:"url"`
			} `json:"raw"`
		} `json:"results"`
		Details string `json:"details,omitempty"`
	} `json:"jobs"`
}

// SubmitImage submits a text-to-image generation and returns the job set with
// its polling URL.
func (c *Client) SubmitImage(ctx context.Context, imageReq ImageRequest) (*JobSet, error) {
	return c.submit(ctx, "/text2image", imageReq)
}

// SubmitVideo submits an image-to-video generation.
func (c *Client) SubmitVideo(ctx context.Context, videoReq VideoRequest) (*JobSet, error) {
	return c.submit(ctx, "/image2video", videoReq)
}

func (c *Client) submit(ctx context.Context, endpoint string, payload interface{}) (*JobSet, error) {
	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + endpoint
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return nil, fmt.Errorf("failed to submit job: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result jobSetResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}
	if result.ID == "" {
		return nil, fmt.Errorf("job set id is empty in response, body: %s", string(body))
	}

	return &JobSet{
		ID:        result.ID,
		StatusURL: fmt.Sprintf("%s/job-sets/%s", c.baseURL, result.ID),
	}, nil
}

// CheckStatus fetches one observation of a job set by its status URL.
func (c *Client) CheckStatus(ctx context.Context, statusURL string) (*Status, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, statusURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to check status: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result jobSetResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}

	return reduceJobSet(&result), nil
}

// reduceJobSet folds the per-job statuses into one observation. Any failed
// job fails the set; the set completes when every job has completed.
func reduceJobSet(resp *jobSetResponse) *Status {
	if len(resp.Jobs) == 0 {
		return &Status{State: StateQueued}
	}

	allCompleted := true
	var resultURL string
	for _, job := range resp.Jobs {
		switch job.Status {
		case StateFailed, StateNSFW:
			detail := job.Details
			if detail == "" {
				detail = fmt.Sprintf("job %s reported %s", job.ID, job.Status)
			}
			return &Status{State: StateFailed, Detail: detail}
		case StateCompleted:
			if job.Results.Raw.URL != "" {
				resultURL = job.Results.Raw.URL
			}
		default:
			allCompleted = false
		}
	}

	if allCompleted {
		return &Status{State: StateCompleted, ResultURL: resultURL}
	}
	return &Status{State: StateInProgress}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("hf-api-key", c.apiKey)
	req.Header.Set("hf-secret", c.apiSecret)
	req.Header.Set("Content-Type", "application/json")
}
