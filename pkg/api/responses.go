package api

import (
	"time"

	"github.com/ovokpus/PostAssist/pkg/models"
)

// GeneratePostResponse acknowledges an accepted generation task.
type GeneratePostResponse struct {
	TaskID                  string    `json:"task_id"`
	Status                  string    `json:"status"`
	Message                 string    `json:"message"`
	EstimatedCompletionTime time.Time `json:"estimated_completion_time"`
}

// BatchGenerateResponse acknowledges an accepted batch.
type BatchGenerateResponse struct {
	BatchID                 string    `json:"batch_id"`
	TotalPosts              int       `json:"total_posts"`
	TaskIDs                 []string  `json:"task_ids"`
	SchedulePosts           bool      `json:"schedule_posts"`
	TimeIntervalMinutes     int       `json:"time_interval_minutes,omitempty"`
	EstimatedCompletionTime time.Time `json:"estimated_completion_time"`
}

// VerifyPostResponse is the standalone verification result.
type VerifyPostResponse struct {
	VerificationID string `json:"verification_id"`
	*models.VerificationReport
}

// HealthResponse reports the process and its backing services.
type HealthResponse struct {
	Status   string            `json:"status"`
	Version  string            `json:"version"`
	Services map[string]string `json:"services"`
}

// MessageResponse is the generic acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
	TaskID  string `json:"task_id,omitempty"`
}
