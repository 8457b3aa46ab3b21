package models

import "time"

type GenerateResponse struct {
	OK        bool   `json:"ok"`
	JobID     string `json:"job_id"`
	TaskID    string `json:"task_id,omitempty"`
	StatusURL string `json:"status_url,omitempty"`
}

type SeedResponse struct {
	OK   bool  `json:"ok"`
	Seed *Seed `json:"seed"`
}

// Seed is the resolved premise/scene envelope returned to clients.
type Seed struct {
	PremiseID  string `json:"premise_id"`
	SceneID    string `json:"scene_id"`
	Category   string `json:"category"`
	SketchType string `json:"sketch_type,omitempty"`
	Role       string `json:"role,omitempty"`
	Premise    string `json:"premise"`
	Scene      string `json:"scene"`
}

type StatusResponse struct {
	JobID       string    `json:"job_id"`
	Status      string    `json:"status"`
	Provider    string    `json:"provider,omitempty"`
	ResultURL   string    `json:"result_url,omitempty"`
	ErrorDetail string    `json:"error_detail,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

type HealthResponse struct {
	Status string `json:"status"`
}
