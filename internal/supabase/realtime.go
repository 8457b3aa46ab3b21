package supabase

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/supabase-community/supabase-go"
)

type RealtimeClient struct {
	client *supabase.Client
}

func NewRealtimeClient(client *supabase.Client) *RealtimeClient {
	return &RealtimeClient{
		client: client,
	}
}

func (r *RealtimeClient) PublishEvent(channel string, event string, payload map[string]interface{}) error {
	// The Go client has no direct Realtime publish. Row updates on sketch_jobs
	// trigger Realtime automatically; this remains the hook for explicit
	// events via the Realtime REST API if the mobile client ever needs them.
	return nil
}

func (r *RealtimeClient) PublishJobEvent(jobID uuid.UUID, event string, payload map[string]interface{}) error {
	channel := fmt.Sprintf("sketch_job:%s", jobID.String())
	return r.PublishEvent(channel, event, payload)
}

// Event payloads
func DispatchedPayload(jobID uuid.UUID, provider, taskID string) map[string]interface{} {
	return map[string]interface{}{
		"job_id":   jobID.String(),
		"status":   "generating_image",
		"provider": provider,
		"task_id":  taskID,
	}
}

func CompletedPayload(jobID uuid.UUID, resultURL string) map[string]interface{} {
	return map[string]interface{}{
		"job_id":     jobID.String(),
		"status":     "complete",
		"result_url": resultURL,
	}
}

func FailedPayload(jobID uuid.UUID, errorMsg string) map[string]interface{} {
	return map[string]interface{}{
		"job_id": jobID.String(),
		"status": "failed",
		"error":  errorMsg,
	}
}
