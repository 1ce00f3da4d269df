// Package llm abstracts the chat-completion provider behind a small
// interface the agent runtime consumes, with an OpenAI-backed
// implementation and retry support for transient failures.
package llm

import (
	"context"
	"encoding/json"

	"github.com/ovokpus/PostAssist/pkg/models"
)

// ToolDefinition describes one callable tool advertised to the model.
// Parameters holds the raw JSON schema for the tool's arguments.
type ToolDefinition struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// Request is one chat-completion call.
type Request struct {
	Messages    []models.Message
	Tools       []ToolDefinition
	Temperature float32
	// ForceTool names a tool the model must call, or "" for free choice.
	ForceTool string
}

// Response is the model's reply: either content, tool calls, or both.
type Response struct {
	Content   string
	ToolCalls []models.ToolCall
}

// ChatClient is the provider interface. Implementations must be safe for
// concurrent calls.
type ChatClient interface {
	Complete(ctx context.Context, req Request) (*Response, error)
}
