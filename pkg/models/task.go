// Package models defines the value types persisted in the task store and
// exchanged between the orchestrator components. Everything here serializes
// to JSON with UTC timestamps.
package models

import "time"

// TaskStatus is the lifecycle state of a generation task.
type TaskStatus string

const (
	TaskPending    TaskStatus = "PENDING"
	TaskInProgress TaskStatus = "IN_PROGRESS"
	TaskCompleted  TaskStatus = "COMPLETED"
	TaskFailed     TaskStatus = "FAILED"
)

// Terminal reports whether the status admits no further transitions.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// rank orders statuses for the forward-only transition check.
func (s TaskStatus) rank() int {
	switch s {
	case TaskPending:
		return 0
	case TaskInProgress:
		return 1
	case TaskCompleted, TaskFailed:
		return 2
	default:
		return -1
	}
}

// CanTransitionTo reports whether moving to next is a forward transition.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	if s == next {
		return true
	}
	return next.rank() > s.rank()
}

// AgentStatus is the lifecycle state of a single agent within a team.
type AgentStatus string

const (
	AgentIdle      AgentStatus = "IDLE"
	AgentWorking   AgentStatus = "WORKING"
	AgentCompleted AgentStatus = "COMPLETED"
	AgentError     AgentStatus = "ERROR"
)

func (s AgentStatus) rank() int {
	switch s {
	case AgentIdle:
		return 0
	case AgentWorking:
		return 1
	case AgentCompleted, AgentError:
		return 2
	default:
		return -1
	}
}

// CanTransitionTo reports whether moving to next is a forward transition.
func (s AgentStatus) CanTransitionTo(next AgentStatus) bool {
	if s == next {
		return true
	}
	return next.rank() > s.rank()
}

// TaskError is the taxonomized failure recorded on a FAILED task.
type TaskError struct {
	Kind    string         `json:"kind"`
	Message string         `json:"message"`
	Details map[string]any `json:"details,omitempty"`
}

// AgentState is the live view of one agent inside a team.
type AgentState struct {
	AgentName       string      `json:"agent_name"`
	Status          AgentStatus `json:"status"`
	CurrentActivity string      `json:"current_activity,omitempty"`
	Progress        float64     `json:"progress"`
	Findings        string      `json:"findings,omitempty"`
	LastUpdate      time.Time   `json:"last_update"`
	ErrorMessage    string      `json:"error_message,omitempty"`
}

// TeamState is the live view of one team of agents.
type TeamState struct {
	TeamName     string                 `json:"team_name"`
	Status       TaskStatus             `json:"status"`
	Progress     float64                `json:"progress"`
	CurrentFocus string                 `json:"current_focus,omitempty"`
	StartedAt    *time.Time             `json:"started_at,omitempty"`
	CompletedAt  *time.Time             `json:"completed_at,omitempty"`
	TeamFindings string                 `json:"team_findings,omitempty"`
	Agents       map[string]*AgentState `json:"agents"`
}

// Task is the persisted record for one generation request.
type Task struct {
	TaskID         string                `json:"task_id"`
	Status         TaskStatus            `json:"status"`
	Progress       float64               `json:"progress"`
	CurrentStep    string                `json:"current_step,omitempty"`
	Phase          string                `json:"phase,omitempty"`
	DetailedStatus string                `json:"detailed_status,omitempty"`
	CreatedAt      time.Time             `json:"created_at"`
	UpdatedAt      time.Time             `json:"updated_at"`
	RequestData    map[string]any        `json:"request_data,omitempty"`
	Teams          map[string]*TeamState `json:"teams,omitempty"`
	Result         *LinkedInPost         `json:"result,omitempty"`
	Verification   *VerificationReport   `json:"verification,omitempty"`
	Error          *TaskError            `json:"error,omitempty"`
	BatchID        string                `json:"batch_id,omitempty"`
}

// NewTask creates a pending task with UTC timestamps.
func NewTask(taskID string, requestData map[string]any) *Task {
	now := time.Now().UTC()
	return &Task{
		TaskID:      taskID,
		Status:      TaskPending,
		Progress:    0.0,
		CurrentStep: "queued",
		CreatedAt:   now,
		UpdatedAt:   now,
		RequestData: requestData,
		Teams:       make(map[string]*TeamState),
	}
}

// Normalize coerces all timestamps to UTC. Decoded records pass through
// here so round-trips compare equal regardless of wire offset.
func (t *Task) Normalize() {
	t.CreatedAt = t.CreatedAt.UTC()
	t.UpdatedAt = t.UpdatedAt.UTC()
	for _, team := range t.Teams {
		if team.StartedAt != nil {
			utc := team.StartedAt.UTC()
			team.StartedAt = &utc
		}
		if team.CompletedAt != nil {
			utc := team.CompletedAt.UTC()
			team.CompletedAt = &utc
		}
		for _, agent := range team.Agents {
			agent.LastUpdate = agent.LastUpdate.UTC()
		}
	}
	if t.Verification != nil && !t.Verification.VerifiedAt.IsZero() {
		t.Verification.VerifiedAt = t.Verification.VerifiedAt.UTC()
	}
}
