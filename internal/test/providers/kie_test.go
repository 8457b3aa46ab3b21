package providers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"sketchmachine-backend/internal/providers/kie"
)

func TestCreateTask_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/jobs/createTask", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req kie.CreateTaskRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.NotEmpty(t, req.Input.Prompt)
		assert.Contains(t, req.CallbackURL, "job_id=")

		w.Write([]byte(`{"code":200,"msg":"ok","data":{"taskId":"task-123"}}`))
	}))
	defer server.Close()

	client := kie.NewClient(server.URL, "test-key")
	taskID, err := client.CreateTask(context.Background(), kie.CreateTaskRequest{
		Model:       "sketch-video-v1",
		CallbackURL: "https://app.example.com/webhooks/kie?job_id=abc",
		Input:       kie.TaskInput{Prompt: "a prompt"},
	})

	assert.NoError(t, err)
	assert.Equal(t, "task-123", taskID)
}

func TestCreateTask_Non200IsFatal(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		w.Write([]byte(`upstream exploded`))
	}))
	defer server.Close()

	client := kie.NewClient(server.URL, "test-key")
	_, err := client.CreateTask(context.Background(), kie.CreateTaskRequest{})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "status 502")
	assert.Contains(t, err.Error(), "upstream exploded")
}

func TestCreateTask_RejectedEnvelope(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"code":422,"msg":"prompt rejected","data":{}}`))
	}))
	defer server.Close()

	client := kie.NewClient(server.URL, "test-key")
	_, err := client.CreateTask(context.Background(), kie.CreateTaskRequest{})

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "prompt rejected")
}

func TestCallbackEvent_ResultURLs(t *testing.T) {
	var event kie.CallbackEvent
	err := json.Unmarshal([]byte(`{
		"code":200,"msg":"ok",
		"data":{"taskId":"task-123","state":"success","resultJson":"{\"resultUrls\":[\"https://cdn.example.com/a.mp4\"]}"}
	}`), &event)
	assert.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.example.com/a.mp4"}, event.ResultURLs())

	empty := kie.CallbackEvent{}
	assert.Nil(t, empty.ResultURLs())
}
