package graph

import (
	"context"
	"log/slog"

	"github.com/ovokpus/PostAssist/pkg/apperr"
	"github.com/ovokpus/PostAssist/pkg/models"
)

// MetaGraph routes between the team graphs until the meta supervisor
// finishes. The expected flow is Content team, then Verification team, then
// finish, but the supervisor may loop back within the transition cap.
type MetaGraph struct {
	supervisor *Supervisor
	teams      map[string]*Team
	limit      int
	logger     *slog.Logger
}

// NewMetaGraph assembles the top-level graph over the given teams.
func NewMetaGraph(supervisor *Supervisor, teams []*Team, limit int, logger *slog.Logger) *MetaGraph {
	if logger == nil {
		logger = slog.Default()
	}
	byName := make(map[string]*Team, len(teams))
	for _, team := range teams {
		byName[team.Name()] = team
	}
	return &MetaGraph{
		supervisor: supervisor,
		teams:      byName,
		limit:      limit,
		logger:     logger,
	}
}

// Run executes the meta graph over the initial log and returns the final
// log. Team runs append their member messages to the shared log, so the
// meta supervisor always routes over the full conversation.
func (g *MetaGraph) Run(ctx context.Context, log []models.Message, hooks Hooks) ([]models.Message, error) {
	if hooks == nil {
		hooks = NopHooks{}
	}

	transitions := 0
	for {
		if err := apperr.FromContext(ctx); err != nil {
			return log, err
		}

		transitions++
		if transitions > g.limit {
			return log, apperr.New(apperr.KindRecursionExceeded,
				"meta graph exceeded %d transitions", g.limit)
		}

		hooks.OnNodeEnter(supervisorNode)
		route, err := g.supervisor.Decide(ctx, log)
		hooks.OnNodeExit(supervisorNode)
		if err != nil {
			return log, err
		}
		if route.Finish() {
			g.logger.Debug("meta graph finished", "transitions", transitions)
			return log, nil
		}

		team, ok := g.teams[route.Member]
		if !ok {
			return log, apperr.New(apperr.KindInternal,
				"meta graph has no team named %s", route.Member)
		}

		transitions++
		if transitions > g.limit {
			return log, apperr.New(apperr.KindRecursionExceeded,
				"meta graph exceeded %d transitions", g.limit)
		}

		hooks.OnNodeEnter(team.Name())
		log, err = team.Run(ctx, log, hooks)
		hooks.OnNodeExit(team.Name())
		if err != nil {
			return log, err
		}
	}
}
