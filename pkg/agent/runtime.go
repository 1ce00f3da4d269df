// Package agent runs a single role against the chat model: it sends the
// role's prompt plus the shared log, executes any tool calls the model
// emits, and returns the role's final message. The intermediate assistant
// and tool messages stay in a private scratchpad; only the closing message
// is handed back to the caller.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/kaptinlin/jsonrepair"

	"github.com/ovokpus/PostAssist/pkg/apperr"
	"github.com/ovokpus/PostAssist/pkg/llm"
	"github.com/ovokpus/PostAssist/pkg/models"
	"github.com/ovokpus/PostAssist/pkg/tools"
)

// Role is a resolved agent role: prompt plus the concrete tools it may call.
type Role struct {
	Name         string
	SystemPrompt string
	Tools        []tools.Tool
}

// Runtime drives the model/tool loop for agent roles. Safe for concurrent
// use; per-run state lives on the stack.
type Runtime struct {
	client        llm.ChatClient
	logger        *slog.Logger
	temperature   float32
	maxToolRounds int
}

// NewRuntime builds a runtime. maxToolRounds bounds the number of
// model turns that request tools within a single Step.
func NewRuntime(client llm.ChatClient, temperature float32, maxToolRounds int, logger *slog.Logger) *Runtime {
	if logger == nil {
		logger = slog.Default()
	}
	return &Runtime{
		client:        client,
		logger:        logger,
		temperature:   temperature,
		maxToolRounds: maxToolRounds,
	}
}

// Step runs one agent turn: the role sees its system prompt followed by the
// shared log, and may call its tools for up to maxToolRounds model turns.
// The returned message is the role's final ai message. Exceeding the round
// budget yields a RecursionExceeded error.
func (r *Runtime) Step(ctx context.Context, role Role, log []models.Message) (models.Message, error) {
	logger := r.logger.With("agent", role.Name)

	messages := make([]models.Message, 0, len(log)+1)
	messages = append(messages, models.SystemMessage(role.SystemPrompt))
	messages = append(messages, log...)

	defs := make([]llm.ToolDefinition, len(role.Tools))
	for i, tool := range role.Tools {
		defs[i] = tool.Definition()
	}

	for round := 0; ; round++ {
		resp, err := r.client.Complete(ctx, llm.Request{
			Messages:    messages,
			Tools:       defs,
			Temperature: r.temperature,
		})
		if err != nil {
			return models.Message{}, err
		}

		if len(resp.ToolCalls) == 0 {
			return models.AgentMessage(role.Name, resp.Content), nil
		}
		if round >= r.maxToolRounds {
			return models.Message{}, apperr.New(apperr.KindRecursionExceeded,
				"agent %s exceeded %d tool rounds", role.Name, r.maxToolRounds)
		}

		logger.Debug("executing tool calls", "round", round, "count", len(resp.ToolCalls))
		messages = append(messages, models.Message{
			Role:      models.RoleAI,
			Name:      role.Name,
			Content:   resp.Content,
			ToolCalls: resp.ToolCalls,
		})

		// Results are appended in the order the model emitted the calls.
		for _, call := range resp.ToolCalls {
			result, err := r.executeCall(ctx, role, call)
			if err != nil {
				return models.Message{}, err
			}
			messages = append(messages, models.ToolMessage(call.ID, result))
		}
	}
}

// executeCall resolves and runs one tool call. Failures that the model can
// recover from (unknown tool, bad arguments) come back as the result string;
// the error return is reserved for context termination.
func (r *Runtime) executeCall(ctx context.Context, role Role, call models.ToolCall) (string, error) {
	var tool *tools.Tool
	for i := range role.Tools {
		if role.Tools[i].Name == call.Name {
			tool = &role.Tools[i]
			break
		}
	}
	if tool == nil {
		r.logger.Warn("model requested unknown tool", "agent", role.Name, "tool", call.Name)
		return fmt.Sprintf("TOOL_ERROR: unknown tool '%s'", call.Name), nil
	}

	args, err := parseArguments(call.Arguments)
	if err != nil {
		r.logger.Warn("unparseable tool arguments", "agent", role.Name, "tool", call.Name, "error", err)
		return fmt.Sprintf("TOOL_ERROR: invalid arguments for '%s': %v", call.Name, err), nil
	}

	return tool.Run(ctx, args)
}

// parseArguments decodes the model-emitted argument JSON, repairing
// truncated or sloppy payloads before giving up. Empty arguments decode to
// an empty map.
func parseArguments(raw string) (map[string]any, error) {
	if raw == "" {
		return map[string]any{}, nil
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err == nil {
		return args, nil
	}

	repaired, err := jsonrepair.JSONRepair(raw)
	if err != nil {
		return nil, fmt.Errorf("repairing argument JSON: %w", err)
	}
	if err := json.Unmarshal([]byte(repaired), &args); err != nil {
		return nil, fmt.Errorf("parsing repaired argument JSON: %w", err)
	}
	return args, nil
}
