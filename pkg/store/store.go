// Package store persists Task records. The concrete store is Redis; on any
// remote failure the adapter degrades one-way to a mutex-guarded in-process
// map so writes always land somewhere for the lifetime of the process.
package store

import (
	"context"
	"encoding/json"
	"time"

	"github.com/ovokpus/PostAssist/pkg/apperr"
	"github.com/ovokpus/PostAssist/pkg/models"
)

// keyPrefix namespaces all task keys. No other keys are owned by this
// service.
const keyPrefix = "task:"

// Store is the task persistence interface.
type Store interface {
	// Put atomically replaces the record with a fresh TTL.
	Put(ctx context.Context, task *models.Task, ttl time.Duration) error
	// Create writes the record only if the key does not already exist.
	Create(ctx context.Context, task *models.Task, ttl time.Duration) error
	// Get returns the task, or a NotFound error if absent or expired.
	Get(ctx context.Context, taskID string) (*models.Task, error)
	// List returns all live tasks.
	List(ctx context.Context) ([]*models.Task, error)
	// Delete removes the record. Deleting an absent key is not an error.
	Delete(ctx context.Context, taskID string) error
}

// Health states reported by the store to the health endpoint.
const (
	HealthConnected    = "connected"
	HealthDegraded     = "degraded"
	HealthNotAvailable = "not_available"
)

// HealthReporter is implemented by stores that can describe their backend
// state.
type HealthReporter interface {
	Health(ctx context.Context) string
}

func taskKey(taskID string) string {
	return keyPrefix + taskID
}

func encodeTask(task *models.Task) ([]byte, error) {
	data, err := json.Marshal(task)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindSerialization, err, "encoding task %s", task.TaskID)
	}
	return data, nil
}

func decodeTask(data []byte) (*models.Task, error) {
	var task models.Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, apperr.Wrap(apperr.KindSerialization, err, "decoding task record")
	}
	task.Normalize()
	return &task, nil
}
