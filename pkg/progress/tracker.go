// Package progress mediates all writes to a Task during its execution.
// The tracker is the single writer for its task: it recomputes aggregate
// progress (agent -> team -> task), enforces forward-only status
// transitions, and debounces store writes.
package progress

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/ovokpus/PostAssist/pkg/models"
	"github.com/ovokpus/PostAssist/pkg/store"
)

// Fixed per-status agent progress values. Team progress is the mean of its
// agents and task progress the mean of its teams, so these constants decide
// the observable milestones.
const (
	ProgressIdle      = 0.0
	ProgressWorking   = 0.4
	ProgressCompleted = 1.0
)

// debounceInterval caps the store write rate for progress-only updates.
// Status transitions and terminal writes always flush immediately.
const debounceInterval = 200 * time.Millisecond

// Tracker owns one Task record for the duration of a job.
type Tracker struct {
	store  store.Store
	ttl    time.Duration
	logger *slog.Logger

	mu        sync.Mutex
	task      *models.Task
	lastWrite time.Time
	dirty     bool
	timer     *time.Timer
	now       func() time.Time
}

// NewTracker binds a tracker to a task. The tracker takes ownership of the
// record; callers must not mutate it afterwards.
func NewTracker(s store.Store, task *models.Task, ttl time.Duration, logger *slog.Logger) *Tracker {
	if logger == nil {
		logger = slog.Default()
	}
	return &Tracker{
		store:  s,
		ttl:    ttl,
		logger: logger.With("task_id", task.TaskID),
		task:   task,
		now:    time.Now,
	}
}

// TaskUpdate is a partial update to the task record. Nil fields are left
// untouched.
type TaskUpdate struct {
	Status         *models.TaskStatus
	Progress       *float64
	CurrentStep    *string
	Phase          *string
	DetailedStatus *string
	Result         *models.LinkedInPost
	Verification   *models.VerificationReport
	Error          *models.TaskError
}

// AgentUpdate is a partial update to one agent's state.
type AgentUpdate struct {
	Activity *string
	Progress *float64
	Findings *string
	Error    *string
}

// InitializeTeams writes all four agents to their teams in IDLE with team
// status PENDING, then flushes.
func (t *Tracker) InitializeTeams(ctx context.Context) error {
	t.mu.Lock()
	now := t.now().UTC()
	for _, teamName := range models.TeamNames() {
		team := &models.TeamState{
			TeamName: teamName,
			Status:   models.TaskPending,
			Agents:   make(map[string]*models.AgentState),
		}
		for _, agentName := range models.TeamMembers(teamName) {
			team.Agents[agentName] = &models.AgentState{
				AgentName:  agentName,
				Status:     models.AgentIdle,
				Progress:   ProgressIdle,
				LastUpdate: now,
			}
		}
		t.task.Teams[teamName] = team
	}
	t.recompute()
	t.mu.Unlock()

	return t.Flush(ctx)
}

// UpdateTask applies a partial update. Backward status transitions are
// dropped with a warning. Status changes and terminal fields flush
// immediately; everything else is debounced.
func (t *Tracker) UpdateTask(ctx context.Context, update TaskUpdate) error {
	t.mu.Lock()

	immediate := update.Result != nil || update.Verification != nil || update.Error != nil
	if update.Status != nil {
		if !t.task.Status.CanTransitionTo(*update.Status) {
			t.logger.Warn("dropping backward task status transition",
				"from", t.task.Status, "to", *update.Status)
		} else if t.task.Status != *update.Status {
			t.task.Status = *update.Status
			immediate = true
		}
	}
	if update.Progress != nil && len(t.task.Teams) == 0 {
		// Before teams exist progress is set directly; afterwards it is
		// always derived from agent state.
		t.setProgress(*update.Progress)
	}
	if update.CurrentStep != nil {
		t.task.CurrentStep = *update.CurrentStep
	}
	if update.Phase != nil {
		t.task.Phase = *update.Phase
	}
	if update.DetailedStatus != nil {
		t.task.DetailedStatus = *update.DetailedStatus
	}
	if update.Result != nil {
		t.task.Result = update.Result
	}
	if update.Verification != nil {
		t.task.Verification = update.Verification
	}
	if update.Error != nil {
		t.task.Error = update.Error
	}

	t.recompute()
	t.mu.Unlock()

	return t.write(ctx, immediate)
}

// UpdateAgent updates one agent's state, then recomputes team and task
// progress. Completing the last agent of a team marks the team COMPLETED;
// an agent ERROR marks the team FAILED.
func (t *Tracker) UpdateAgent(ctx context.Context, agentName string, status models.AgentStatus, update AgentUpdate) error {
	t.mu.Lock()

	teamName := models.TeamOf(agentName)
	team, ok := t.task.Teams[teamName]
	if !ok {
		t.mu.Unlock()
		t.logger.Warn("agent update for uninitialized team", "agent", agentName)
		return nil
	}
	agent, ok := team.Agents[agentName]
	if !ok {
		t.mu.Unlock()
		t.logger.Warn("agent update for unknown agent", "agent", agentName)
		return nil
	}

	now := t.now().UTC()
	transition := agent.Status != status
	if transition && !agent.Status.CanTransitionTo(status) {
		t.logger.Warn("dropping backward agent status transition",
			"agent", agentName, "from", agent.Status, "to", status)
		transition = false
	} else {
		agent.Status = status
		switch status {
		case models.AgentIdle:
			agent.Progress = ProgressIdle
		case models.AgentWorking:
			if agent.Progress < ProgressWorking {
				agent.Progress = ProgressWorking
			}
		case models.AgentCompleted:
			agent.Progress = ProgressCompleted
		case models.AgentError:
			// Progress frozen where it was.
		}
	}
	if update.Progress != nil && *update.Progress > agent.Progress {
		agent.Progress = *update.Progress
	}
	if update.Activity != nil {
		agent.CurrentActivity = *update.Activity
	}
	if update.Findings != nil {
		agent.Findings = *update.Findings
	}
	if update.Error != nil {
		agent.ErrorMessage = *update.Error
	}
	agent.LastUpdate = now

	t.applyTeamTransitions(team, now)
	t.recompute()
	t.mu.Unlock()

	return t.write(ctx, transition)
}

// applyTeamTransitions derives team status from its agents.
func (t *Tracker) applyTeamTransitions(team *models.TeamState, now time.Time) {
	anyWorking := false
	allCompleted := len(team.Agents) > 0
	anyError := false
	for _, agent := range team.Agents {
		switch agent.Status {
		case models.AgentWorking:
			anyWorking = true
			allCompleted = false
		case models.AgentError:
			anyError = true
			allCompleted = false
		case models.AgentIdle:
			allCompleted = false
		}
	}

	switch {
	case anyError:
		if team.Status.CanTransitionTo(models.TaskFailed) {
			team.Status = models.TaskFailed
		}
	case allCompleted:
		if team.Status != models.TaskCompleted && team.Status.CanTransitionTo(models.TaskCompleted) {
			team.Status = models.TaskCompleted
			completed := now
			team.CompletedAt = &completed
		}
	case anyWorking:
		if team.Status == models.TaskPending {
			team.Status = models.TaskInProgress
			started := now
			team.StartedAt = &started
		}
	}
}

// recompute derives team and task progress per the mean-of-means rule.
// Task progress never moves backward while the task is live.
func (t *Tracker) recompute() {
	if len(t.task.Teams) == 0 {
		return
	}
	var teamSum float64
	for _, team := range t.task.Teams {
		if len(team.Agents) == 0 {
			team.Progress = 0
			continue
		}
		var agentSum float64
		for _, agent := range team.Agents {
			agentSum += agent.Progress
		}
		team.Progress = agentSum / float64(len(team.Agents))
		teamSum += team.Progress
	}
	t.setProgress(teamSum / float64(len(t.task.Teams)))
}

func (t *Tracker) setProgress(p float64) {
	if p > t.task.Progress {
		t.task.Progress = p
	}
}

// write persists the record, debouncing non-transition updates.
func (t *Tracker) write(ctx context.Context, immediate bool) error {
	t.mu.Lock()
	now := t.now()
	if !immediate && now.Sub(t.lastWrite) < debounceInterval {
		t.dirty = true
		if t.timer == nil {
			remaining := debounceInterval - now.Sub(t.lastWrite)
			t.timer = time.AfterFunc(remaining, func() {
				if err := t.Flush(context.Background()); err != nil {
					t.logger.Warn("debounced flush failed", "error", err)
				}
			})
		}
		t.mu.Unlock()
		return nil
	}
	t.mu.Unlock()
	return t.Flush(ctx)
}

// Flush writes the current record through the store unconditionally.
func (t *Tracker) Flush(ctx context.Context) error {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.dirty = false
	t.task.UpdatedAt = t.now().UTC()
	t.lastWrite = t.now()
	snapshot := t.snapshotLocked()
	t.mu.Unlock()

	return t.store.Put(ctx, snapshot, t.ttl)
}

// Close flushes any pending debounced write. Called when the owning job
// terminates.
func (t *Tracker) Close() {
	t.mu.Lock()
	pending := t.dirty
	t.mu.Unlock()
	if pending {
		if err := t.Flush(context.Background()); err != nil {
			t.logger.Warn("final flush failed", "error", err)
		}
	}
}

// Snapshot returns a deep copy of the current task state.
func (t *Tracker) Snapshot() *models.Task {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snapshotLocked()
}

func (t *Tracker) snapshotLocked() *models.Task {
	copied := *t.task
	copied.Teams = make(map[string]*models.TeamState, len(t.task.Teams))
	for name, team := range t.task.Teams {
		teamCopy := *team
		teamCopy.Agents = make(map[string]*models.AgentState, len(team.Agents))
		for agentName, agent := range team.Agents {
			agentCopy := *agent
			teamCopy.Agents[agentName] = &agentCopy
		}
		copied.Teams[name] = &teamCopy
	}
	return &copied
}
