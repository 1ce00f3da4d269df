package queue

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/ovokpus/PostAssist/pkg/apperr"
	"github.com/ovokpus/PostAssist/pkg/governor"
	"github.com/ovokpus/PostAssist/pkg/graph"
	"github.com/ovokpus/PostAssist/pkg/models"
	"github.com/ovokpus/PostAssist/pkg/progress"
	"github.com/ovokpus/PostAssist/pkg/store"
	"github.com/ovokpus/PostAssist/pkg/tools"
)

// Executor drives one generation job: permit, tracker lifecycle, meta graph
// run, and terminal result or error extraction.
type Executor struct {
	store    store.Store
	ttl      time.Duration
	governor *governor.Governor
	meta     *graph.MetaGraph
	logger   *slog.Logger
}

// NewExecutor wires an executor. The meta graph is shared across jobs; all
// per-job state lives in the message log and tracker.
func NewExecutor(s store.Store, ttl time.Duration, gov *governor.Governor, meta *graph.MetaGraph, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{store: s, ttl: ttl, governor: gov, meta: meta, logger: logger}
}

// Execute runs the full workflow for a task. The task stays PENDING until a
// generation permit is held; all terminal writes go through the tracker.
func (e *Executor) Execute(ctx context.Context, task *models.Task) {
	logger := e.logger.With("task_id", task.TaskID)
	tracker := progress.NewTracker(e.store, task, e.ttl, e.logger)
	defer tracker.Close()

	if err := e.governor.AcquireGeneration(ctx); err != nil {
		e.fail(tracker, nil, err, logger)
		return
	}
	defer e.governor.ReleaseGeneration()

	e.run(ctx, task, tracker, logger)
}

func (e *Executor) run(ctx context.Context, task *models.Task, tracker *progress.Tracker, logger *slog.Logger) {
	inProgress := models.TaskInProgress
	phase := "starting"
	step := "starting workflow"
	if err := tracker.UpdateTask(ctx, progress.TaskUpdate{
		Status:      &inProgress,
		Phase:       &phase,
		CurrentStep: &step,
	}); err != nil {
		logger.Warn("initial status write failed", "error", err)
	}
	if err := tracker.InitializeTeams(ctx); err != nil {
		logger.Warn("team initialization write failed", "error", err)
	}

	hooks := newTrackerHooks(ctx, tracker)
	initial := []models.Message{models.HumanMessage(buildInstruction(task.RequestData))}

	finalLog, err := e.meta.Run(ctx, initial, hooks)
	if err != nil {
		e.fail(tracker, hooks, err, logger)
		return
	}

	content, ok := extractFinalPost(finalLog)
	if !ok {
		e.fail(tracker, hooks, apperr.New(apperr.KindInternal, "workflow produced no post"), logger)
		return
	}

	post := &models.LinkedInPost{
		Content:        content,
		Hashtags:       tools.ExtractHashtags(content),
		WordCount:      tools.WordCount(content),
		CharacterCount: tools.CharacterCount(content),
	}
	var verification *models.VerificationReport
	if tech, style := hooks.reports(); tech != "" || style != "" {
		verification = tools.BuildVerificationReport(tech, style)
	}

	// Close out every agent so the terminal snapshot reports full progress.
	for _, teamName := range models.TeamNames() {
		for _, member := range models.TeamMembers(teamName) {
			_ = tracker.UpdateAgent(ctx, member, models.AgentCompleted, progress.AgentUpdate{})
		}
	}

	completed := models.TaskCompleted
	doneStep := "completed"
	donePhase := "done"
	if err := tracker.UpdateTask(context.Background(), progress.TaskUpdate{
		Status:       &completed,
		CurrentStep:  &doneStep,
		Phase:        &donePhase,
		Result:       post,
		Verification: verification,
	}); err != nil {
		logger.Warn("terminal write failed", "error", err)
	}
	logger.Info("generation completed",
		"characters", post.CharacterCount, "hashtags", len(post.Hashtags))
}

// fail records a terminal failure. The agent that was active when the error
// surfaced is marked ERROR so its team reads FAILED while other teams keep
// the state they had.
func (e *Executor) fail(tracker *progress.Tracker, hooks *trackerHooks, err error, logger *slog.Logger) {
	kind := apperr.KindOf(err)
	logger.Error("generation failed", "kind", kind, "error", err)

	// The job context may already be dead; terminal writes must still land.
	ctx := context.Background()
	if hooks != nil {
		if member := hooks.activeMember(); member != "" {
			msg := err.Error()
			_ = tracker.UpdateAgent(ctx, member, models.AgentError, progress.AgentUpdate{Error: &msg})
		}
	}

	failed := models.TaskFailed
	step := "failed"
	if writeErr := tracker.UpdateTask(ctx, progress.TaskUpdate{
		Status:      &failed,
		CurrentStep: &step,
		Error:       &models.TaskError{Kind: string(kind), Message: err.Error()},
	}); writeErr != nil {
		logger.Warn("terminal write failed", "error", writeErr)
	}
}

// buildInstruction renders the opening human message from the request.
func buildInstruction(request map[string]any) string {
	var b strings.Builder
	title, _ := request["paper_title"].(string)
	fmt.Fprintf(&b, "Create a LinkedIn post about the machine learning paper: %q.", title)

	if extra, ok := request["additional_context"].(string); ok && extra != "" {
		fmt.Fprintf(&b, " Additional context: %s.", extra)
	}
	audience, _ := request["target_audience"].(string)
	tone, _ := request["tone"].(string)
	if audience != "" || tone != "" {
		fmt.Fprintf(&b, " Target a %s audience with a %s tone.",
			orDefault(audience, "professional"), orDefault(tone, "professional"))
	}
	if include, ok := request["include_technical_details"].(bool); ok && include {
		b.WriteString(" Include technical details about the methodology and results.")
	}
	if max, ok := request["max_hashtags"].(float64); ok && max > 0 {
		fmt.Fprintf(&b, " Use at most %d hashtags.", int(max))
	}
	b.WriteString("\n\nPlease ensure the post:\n" +
		"1. Researches the paper thoroughly\n" +
		"2. Creates an engaging LinkedIn post\n" +
		"3. Verifies technical accuracy\n" +
		"4. Checks LinkedIn style compliance\n" +
		"5. Provides a final, ready-to-publish post")
	return b.String()
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

// finalPostLabels are prefixes agents sometimes put before the post body.
var finalPostLabels = []string{"FINAL POST:", "Final post:", "POST:"}

// extractFinalPost pulls the artifact content: the last plain assistant
// message authored by the post creator, stripped of labels and fences.
func extractFinalPost(log []models.Message) (string, bool) {
	for i := len(log) - 1; i >= 0; i-- {
		msg := log[i]
		if msg.Role != models.RoleAI || msg.Name != models.AgentLinkedInCreator || len(msg.ToolCalls) > 0 {
			continue
		}
		content := stripPostDecorations(msg.Content)
		if content != "" {
			return content, true
		}
	}
	return "", false
}

func stripPostDecorations(content string) string {
	content = strings.TrimSpace(content)
	for _, label := range finalPostLabels {
		if strings.HasPrefix(content, label) {
			content = strings.TrimSpace(strings.TrimPrefix(content, label))
			break
		}
	}
	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.Index(content, "\n"); idx >= 0 && !strings.HasPrefix(content, "\n") {
			// Drop a language tag on the opening fence.
			content = content[idx+1:]
		}
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
	}
	return strings.TrimSpace(content)
}

// memberActivities is the activity line shown while an agent works.
var memberActivities = map[string]string{
	models.AgentPaperResearcher: "researching paper",
	models.AgentLinkedInCreator: "creating post",
	models.AgentTechVerifier:    "verifying technical accuracy",
	models.AgentStyleChecker:    "checking style",
}

// teamPhases maps team node names to the task phase label.
var teamPhases = map[string]string{
	models.TeamContent:      "content",
	models.TeamVerification: "verification",
}

// stateOwners maps a state key to the agent whose output it is.
var stateOwners = map[string]string{
	graph.StateResearchFindings: models.AgentPaperResearcher,
	graph.StateDraftPost:        models.AgentLinkedInCreator,
	graph.StateTechnicalReport:  models.AgentTechVerifier,
	graph.StateStyleReport:      models.AgentStyleChecker,
}

// stateSuccessors names the agent that starts working once a state key is
// populated, keeping the progress milestones moving between node events.
var stateSuccessors = map[string]string{
	graph.StateResearchFindings: models.AgentLinkedInCreator,
	graph.StateTechnicalReport:  models.AgentStyleChecker,
}

// trackerHooks translates graph events into tracker updates and records the
// state deltas needed for result extraction.
type trackerHooks struct {
	ctx     context.Context
	tracker *progress.Tracker

	mu     sync.Mutex
	member string
	deltas map[string]string
}

func newTrackerHooks(ctx context.Context, tracker *progress.Tracker) *trackerHooks {
	return &trackerHooks{ctx: ctx, tracker: tracker, deltas: make(map[string]string)}
}

func (h *trackerHooks) OnNodeEnter(node string) {
	if phase, ok := teamPhases[node]; ok {
		step := "running " + node
		_ = h.tracker.UpdateTask(h.ctx, progress.TaskUpdate{Phase: &phase, CurrentStep: &step})
		return
	}
	if activity, ok := memberActivities[node]; ok {
		h.mu.Lock()
		h.member = node
		h.mu.Unlock()
		_ = h.tracker.UpdateAgent(h.ctx, node, models.AgentWorking, progress.AgentUpdate{Activity: &activity})
	}
}

func (h *trackerHooks) OnNodeExit(string) {}

func (h *trackerHooks) OnStateDelta(key, value string) {
	h.mu.Lock()
	h.deltas[key] = value
	h.mu.Unlock()

	owner, ok := stateOwners[key]
	if !ok {
		return
	}
	_ = h.tracker.UpdateAgent(h.ctx, owner, models.AgentCompleted, progress.AgentUpdate{Findings: &value})
	if next, ok := stateSuccessors[key]; ok {
		_ = h.tracker.UpdateAgent(h.ctx, next, models.AgentWorking, progress.AgentUpdate{})
	}
}

// activeMember returns the member node that most recently started.
func (h *trackerHooks) activeMember() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.member
}

// reports returns the recorded verification report texts.
func (h *trackerHooks) reports() (technical, style string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.deltas[graph.StateTechnicalReport], h.deltas[graph.StateStyleReport]
}
