package providers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"sketchmachine-backend/internal/providers/higgsfield"
)

func TestSubmitImage_ReturnsJobSetWithStatusURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/text2image", r.URL.Path)
		assert.Equal(t, "test-key", r.Header.Get("hf-api-key"))
		assert.Equal(t, "test-secret", r.Header.Get("hf-secret"))
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id":"set-1","jobs":[{"id":"job-1","status":"queued"}]}`))
	}))
	defer server.Close()

	client := higgsfield.NewClient(server.URL, "test-key", "test-secret")
	set, err := client.SubmitImage(context.Background(), higgsfield.ImageRequest{Prompt: "a prompt"})

	assert.NoError(t, err)
	assert.Equal(t, "set-1", set.ID)
	assert.Equal(t, server.URL+"/job-sets/set-1", set.StatusURL)
}

func TestSubmitVideo_MissingIDIsAnError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/image2video", r.URL.Path)
		w.Write([]byte(`{"jobs":[]}`))
	}))
	defer server.Close()

	client := higgsfield.NewClient(server.URL, "test-key", "test-secret")
	_, err := client.SubmitVideo(context.Background(), higgsfield.VideoRequest{ImageURL: "https://x/img.png"})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "job set id is empty")
}

func TestCheckStatus_AllJobsCompleted(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"set-1","jobs":[
			{"id":"job-1","status":"completed","results":{"raw":{"url":"https://cdn.example.com/a.png"}}},
			{"id":"job-2","status":"completed","results":{"raw":{"url":"https://cdn.example.com/b.png"}}}
		]}`))
	}))
	defer server.Close()

	client := higgsfield.NewClient(server.URL, "test-key", "test-secret")
	status, err := client.CheckStatus(context.Background(), server.URL+"/job-sets/set-1")

	assert.NoError(t, err)
	assert.Equal(t, higgsfield.StateCompleted, status.State)
	assert.True(t, status.Terminal())
	assert.NotEmpty(t, status.ResultURL)
}

func TestCheckStatus_AnyFailedJobFailsTheSet(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"set-1","jobs":[
			{"id":"job-1","status":"completed","results":{"raw":{"url":"https://cdn.example.com/a.png"}}},
			{"id":"job-2","status":"nsfw","details":"content flagged"}
		]}`))
	}))
	defer server.Close()

	client := higgsfield.NewClient(server.URL, "test-key", "test-secret")
	status, err := client.CheckStatus(context.Background(), server.URL+"/job-sets/set-1")

	assert.NoError(t, err)
	assert.Equal(t, higgsfield.StateFailed, status.State)
	assert.True(t, status.Terminal())
	assert.Equal(t, "content flagged", status.Detail)
}

func TestCheckStatus_MixedProgressIsNotTerminal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"set-1","jobs":[
			{"id":"job-1","status":"completed","results":{"raw":{"url":"https://cdn.example.com/a.png"}}},
			{"id":"job-2","status":"in_progress"}
		]}`))
	}))
	defer server.Close()

	client := higgsfield.NewClient(server.URL, "test-key", "test-secret")
	status, err := client.CheckStatus(context.Background(), server.URL+"/job-sets/set-1")

	assert.NoError(t, err)
	assert.Equal(t, higgsfield.StateInProgress, status.State)
	assert.False(t, status.Terminal())
}

func TestCheckStatus_EmptyJobListIsQueued(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"id":"set-1","jobs":[]}`))
	}))
	defer server.Close()

	client := higgsfield.NewClient(server.URL, "test-key", "test-secret")
	status, err := client.CheckStatus(context.Background(), server.URL+"/job-sets/set-1")

	assert.NoError(t, err)
	assert.Equal(t, higgsfield.StateQueued, status.State)
	assert.False(t, status.Terminal())
}
