package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"

	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ovokpus/PostAssist/pkg/apperr"
	"github.com/ovokpus/PostAssist/pkg/models"
)

func TestEncodeMessages(t *testing.T) {
	messages := []models.Message{
		models.SystemMessage("you are a researcher"),
		models.HumanMessage("write about BERT"),
		{
			Role: models.RoleAI,
			Name: models.AgentPaperResearcher,
			ToolCalls: []models.ToolCall{
				{ID: "call_1", Name: "web_search", Arguments: `{"query":"BERT"}`},
			},
		},
		models.ToolMessage("call_1", "search results"),
		models.AgentMessage(models.AgentPaperResearcher, "findings"),
	}

	encoded := encodeMessages(messages)
	require.Len(t, encoded, 5)

	assert.Equal(t, openai.ChatMessageRoleSystem, encoded[0].Role)
	assert.Equal(t, openai.ChatMessageRoleUser, encoded[1].Role)

	assert.Equal(t, openai.ChatMessageRoleAssistant, encoded[2].Role)
	require.Len(t, encoded[2].ToolCalls, 1)
	assert.Equal(t, "web_search", encoded[2].ToolCalls[0].Function.Name)

	assert.Equal(t, openai.ChatMessageRoleTool, encoded[3].Role)
	assert.Equal(t, "call_1", encoded[3].ToolCallID)

	assert.Equal(t, openai.ChatMessageRoleAssistant, encoded[4].Role)
	assert.Equal(t, models.AgentPaperResearcher, encoded[4].Name)
}

func TestEncodeTools(t *testing.T) {
	schema := json.RawMessage(`{"type":"object","properties":{"query":{"type":"string"}}}`)
	encoded := encodeTools([]ToolDefinition{
		{Name: "web_search", Description: "search the web", Parameters: schema},
	})

	require.Len(t, encoded, 1)
	assert.Equal(t, openai.ToolTypeFunction, encoded[0].Type)
	assert.Equal(t, "web_search", encoded[0].Function.Name)

	assert.Nil(t, encodeTools(nil))
}

func TestDecodeResponse(t *testing.T) {
	msg := openai.ChatCompletionMessage{
		Content: "thinking",
		ToolCalls: []openai.ToolCall{
			{ID: "a", Function: openai.FunctionCall{Name: "create_post", Arguments: "{}"}},
			{ID: "b", Function: openai.FunctionCall{Name: "check_style", Arguments: "{}"}},
		},
	}

	resp := decodeResponse(msg)
	assert.Equal(t, "thinking", resp.Content)
	require.Len(t, resp.ToolCalls, 2)
	// Model-emitted order is preserved.
	assert.Equal(t, "create_post", resp.ToolCalls[0].Name)
	assert.Equal(t, "check_style", resp.ToolCalls[1].Name)
}

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected apperr.Kind
	}{
		{"deadline", context.DeadlineExceeded, apperr.KindTimeout},
		{"cancelled", context.Canceled, apperr.KindCancelled},
		{"rate limited", &openai.APIError{HTTPStatusCode: http.StatusTooManyRequests}, apperr.KindUnavailable},
		{"server error", &openai.APIError{HTTPStatusCode: http.StatusServiceUnavailable}, apperr.KindUnavailable},
		{"bad request", &openai.APIError{HTTPStatusCode: http.StatusBadRequest}, apperr.KindInternal},
		{"transport failure", errors.New("connection reset"), apperr.KindUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, apperr.KindOf(classifyError(tt.err)))
		})
	}
}
