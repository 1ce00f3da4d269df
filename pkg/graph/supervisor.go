package graph

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ovokpus/PostAssist/pkg/config"
	"github.com/ovokpus/PostAssist/pkg/llm"
	"github.com/ovokpus/PostAssist/pkg/models"
)

// routingInstruction closes every supervisor turn so the model answers with
// a routing decision rather than prose.
const routingInstruction = "Given the conversation above, who should act next?" +
	" Or should we FINISH? Respond with a JSON object like {\"next\": \"<choice>\"}." +
	" Select one of: %s."

// Supervisor asks the model to pick the next node for one graph level.
type Supervisor struct {
	name        string
	prompt      string
	members     []string
	client      llm.ChatClient
	temperature float32
	telemetry   *Telemetry
	logger      *slog.Logger
}

// NewSupervisor builds a supervisor from its role config. The config prompt
// receives the member list through its %s verb.
func NewSupervisor(cfg *config.SupervisorConfig, client llm.ChatClient, temperature float32, telemetry *Telemetry, logger *slog.Logger) *Supervisor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Supervisor{
		name:        cfg.Name,
		prompt:      fmt.Sprintf(cfg.SystemPrompt, strings.Join(cfg.Members, ", ")),
		members:     append([]string(nil), cfg.Members...),
		client:      client,
		temperature: temperature,
		telemetry:   telemetry,
		logger:      logger.With("supervisor", cfg.Name),
	}
}

// Decide invokes the model over the shared log and parses its routing
// choice. Unreadable replies finish the graph rather than failing the task.
func (s *Supervisor) Decide(ctx context.Context, log []models.Message) (Route, error) {
	choices := append([]string{finishKeyword}, s.members...)

	messages := make([]models.Message, 0, len(log)+2)
	messages = append(messages, models.SystemMessage(s.prompt))
	messages = append(messages, log...)
	messages = append(messages, models.SystemMessage(
		fmt.Sprintf(routingInstruction, strings.Join(choices, ", "))))

	resp, err := s.client.Complete(ctx, llm.Request{
		Messages:    messages,
		Temperature: s.temperature,
	})
	if err != nil {
		return Route{}, err
	}

	route := ParseRoute(resp.Content, s.members, s.telemetry)
	s.logger.Debug("routing decision", "raw", resp.Content, "next", routeLabel(route))
	return route, nil
}

func routeLabel(route Route) string {
	if route.Finish() {
		return finishKeyword
	}
	return route.Member
}
