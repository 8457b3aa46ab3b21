// Package kie is the client for the standard-lane generation provider. Jobs
// are submitted with a callback URL and complete out-of-band via webhook.
package kie

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

type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type CreateTaskRequest struct {
	Model       string    `json:"model"`
	CallbackURL string    `json:"callBackUrl,omitempty"`
	Input       TaskInput `json:"input"`
}

type TaskInput struct {
	Prompt      string   `json:"prompt"`
	ImagePrompt string   `json:"image_prompt,omitempty"`
	AspectRatio string   `json:"aspect_ratio,omitempty"`
	Overlays    []string `json:"overlays,omitempty"`
}

type createTaskResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		TaskID string `json:"taskId"`
	} `json:"data"`
}

// CallbackEvent is the webhook payload KIE posts back when a task reaches a
// terminal state.
type CallbackEvent struct {
	Code int    `json:"code"`
	Msg  string `json:"msg"`
	Data struct {
		TaskID     string `json:"taskId"`
		State      string `json:"state"` // "success" or "fail"
		ResultJSON string `json:"resultJson,omitempty"`
		FailMsg    string `json:"failMsg,omitempty"`
	} `json:"data"`
}

// ResultURLs extracts the media URLs from a success callback's result payload.
func (e *CallbackEvent) ResultURLs() []string {
	if e.Data.ResultJSON == "" {
		return nil
	}
	var result struct {
		ResultURLs []string `json:"resultUrls"`
	}
	if err := json.Unmarshal([]byte(e.Data.ResultJSON), &result); err != nil {
		return nil
	}
	return result.ResultURLs
}

// CreateTask submits an asynchronous generation task and returns the provider
// task id. Completion arrives on the callback URL.
func (c *Client) CreateTask(ctx context.Context, taskReq CreateTaskRequest) (string, error) {
	jsonData, err := json.Marshal(taskReq)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/jobs/createTask"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to create task: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result createTaskResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}

	if result.Code != 200 {
		return "", fmt.Errorf("task rejected: code %d, msg: %s", result.Code, result.Msg)
	}
	if result.Data.TaskID == "" {
		return "", fmt.Errorf("taskId is empty in response, body: %s", string(body))
	}

	return result.Data.TaskID, nil
}
