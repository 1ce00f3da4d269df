package graph

import (
	"context"
	"log/slog"

	"github.com/ovokpus/PostAssist/pkg/agent"
	"github.com/ovokpus/PostAssist/pkg/apperr"
	"github.com/ovokpus/PostAssist/pkg/models"
)

// supervisorNode is the hook name for supervisor executions.
const supervisorNode = "supervisor"

// Team is one team-level graph: a supervisor routing between member nodes
// until it finishes or the transition cap trips.
type Team struct {
	name       string
	supervisor *Supervisor
	roles      map[string]agent.Role
	runtime    *agent.Runtime
	limit      int
	logger     *slog.Logger
}

// NewTeam assembles a team graph. roles must cover every member the
// supervisor can route to.
func NewTeam(name string, supervisor *Supervisor, roles []agent.Role, runtime *agent.Runtime, limit int, logger *slog.Logger) *Team {
	if logger == nil {
		logger = slog.Default()
	}
	byName := make(map[string]agent.Role, len(roles))
	for _, role := range roles {
		byName[role.Name] = role
	}
	return &Team{
		name:       name,
		supervisor: supervisor,
		roles:      byName,
		runtime:    runtime,
		limit:      limit,
		logger:     logger.With("team", name),
	}
}

// Name returns the team's node name in the meta graph.
func (t *Team) Name() string {
	return t.name
}

// Run executes the team graph over the shared log and returns the log with
// member messages appended. Every node execution, supervisor included,
// counts one transition against the cap.
func (t *Team) Run(ctx context.Context, log []models.Message, hooks Hooks) ([]models.Message, error) {
	if hooks == nil {
		hooks = NopHooks{}
	}

	transitions := 0
	for {
		if err := apperr.FromContext(ctx); err != nil {
			return log, err
		}

		transitions++
		if transitions > t.limit {
			return log, apperr.New(apperr.KindRecursionExceeded,
				"team %s exceeded %d transitions", t.name, t.limit)
		}

		hooks.OnNodeEnter(supervisorNode)
		route, err := t.supervisor.Decide(ctx, log)
		hooks.OnNodeExit(supervisorNode)
		if err != nil {
			return log, err
		}
		if route.Finish() {
			t.logger.Debug("team finished", "transitions", transitions)
			return log, nil
		}

		role, ok := t.roles[route.Member]
		if !ok {
			// The parser validates against the member list, so this means
			// the graph was wired with a missing role.
			return log, apperr.New(apperr.KindInternal,
				"team %s has no role for member %s", t.name, route.Member)
		}

		transitions++
		if transitions > t.limit {
			return log, apperr.New(apperr.KindRecursionExceeded,
				"team %s exceeded %d transitions", t.name, t.limit)
		}

		hooks.OnNodeEnter(route.Member)
		msg, err := t.runtime.Step(ctx, role, log)
		if err != nil {
			hooks.OnNodeExit(route.Member)
			return log, err
		}
		log = append(log, msg)
		if key, ok := memberStateKeys[route.Member]; ok && msg.Content != "" {
			hooks.OnStateDelta(key, msg.Content)
		}
		hooks.OnNodeExit(route.Member)
	}
}
