// Package faceswap replaces the generated subject's face with the caller's
// avatar. Failures here are absorbed by the dispatcher; the pipeline carries
// on with the unswapped image.
package faceswap

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

type swapRequest struct {
	TargetImageURL string `json:"target_image"`
	SwapImageURL   string `json:"swap_image"`
}

type swapResponse struct {
	Code int    `json:"code"`
	Msg  string `json:"message"`
	Data struct {
		ImageURL string `json:"image_url"`
	} `json:"data"`
}

// Swap returns the URL of targetImageURL with the face from avatarURL applied.
func (c *Client) Swap(ctx context.Context, targetImageURL, avatarURL string) (string, error) {
	jsonData, err := json.Marshal(swapRequest{
		TargetImageURL: targetImageURL,
		SwapImageURL:   avatarURL,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	url := c.baseURL + "/faceswap"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(jsonData))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("x-api-key", c.apiKey)
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
		return "", fmt.Errorf("failed to swap face: status %d, body: %s", resp.StatusCode, string(body))
	}

	var result swapResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return "", fmt.Errorf("failed to decode response: %w, body: %s", err, string(body))
	}
	if result.Data.ImageURL == "" {
		return "", fmt.Errorf("image_url is empty in response, body: %s", string(body))
	}

	return result.Data.ImageURL, nil
}
