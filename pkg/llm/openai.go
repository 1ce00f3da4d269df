package llm

import (
	"context"
	"errors"
	"net"
	"net/http"

	openai "github.com/sashabaranov/go-openai"

	"github.com/ovokpus/PostAssist/pkg/apperr"
	"github.com/ovokpus/PostAssist/pkg/config"
	"github.com/ovokpus/PostAssist/pkg/models"
)

// OpenAIClient adapts the OpenAI chat-completions API to ChatClient.
type OpenAIClient struct {
	client *openai.Client
	model  string
}

// NewOpenAIClient creates a provider-backed client from configuration.
func NewOpenAIClient(cfg config.LLMConfig) *OpenAIClient {
	return &OpenAIClient{
		client: openai.NewClient(cfg.APIKey),
		model:  cfg.Model,
	}
}

// Complete implements ChatClient.
func (c *OpenAIClient) Complete(ctx context.Context, req Request) (*Response, error) {
	chatReq := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    encodeMessages(req.Messages),
		Temperature: req.Temperature,
		Tools:       encodeTools(req.Tools),
	}
	if req.ForceTool != "" {
		chatReq.ToolChoice = openai.ToolChoice{
			Type:     openai.ToolTypeFunction,
			Function: openai.ToolFunction{Name: req.ForceTool},
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, classifyError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, apperr.New(apperr.KindUnavailable, "provider returned no choices")
	}
	return decodeResponse(resp.Choices[0].Message), nil
}

func encodeMessages(messages []models.Message) []openai.ChatCompletionMessage {
	out := make([]openai.ChatCompletionMessage, 0, len(messages))
	for _, msg := range messages {
		encoded := openai.ChatCompletionMessage{Content: msg.Content}
		switch msg.Role {
		case models.RoleSystem:
			encoded.Role = openai.ChatMessageRoleSystem
		case models.RoleHuman:
			encoded.Role = openai.ChatMessageRoleUser
			encoded.Name = msg.Name
		case models.RoleAI:
			encoded.Role = openai.ChatMessageRoleAssistant
			encoded.Name = msg.Name
			for _, call := range msg.ToolCalls {
				encoded.ToolCalls = append(encoded.ToolCalls, openai.ToolCall{
					ID:   call.ID,
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      call.Name,
						Arguments: call.Arguments,
					},
				})
			}
		case models.RoleTool:
			encoded.Role = openai.ChatMessageRoleTool
			encoded.ToolCallID = msg.Name
		}
		out = append(out, encoded)
	}
	return out
}

func encodeTools(tools []ToolDefinition) []openai.Tool {
	if len(tools) == 0 {
		return nil
	}
	out := make([]openai.Tool, 0, len(tools))
	for _, tool := range tools {
		out = append(out, openai.Tool{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		})
	}
	return out
}

func decodeResponse(msg openai.ChatCompletionMessage) *Response {
	resp := &Response{Content: msg.Content}
	for _, call := range msg.ToolCalls {
		resp.ToolCalls = append(resp.ToolCalls, models.ToolCall{
			ID:        call.ID,
			Name:      call.Function.Name,
			Arguments: call.Function.Arguments,
		})
	}
	return resp
}

// classifyError maps provider errors onto the taxonomy. Rate limits and
// 5xx responses are Unavailable (retriable); timeouts are Timeout.
func classifyError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return apperr.Wrap(apperr.KindTimeout, err, "llm call timed out")
	}
	if errors.Is(err, context.Canceled) {
		return apperr.Wrap(apperr.KindCancelled, err, "llm call cancelled")
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return apperr.Wrap(apperr.KindTimeout, err, "llm call timed out")
	}

	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		if retriableStatus(apiErr.HTTPStatusCode) {
			return apperr.Wrap(apperr.KindUnavailable, err, "llm provider unavailable")
		}
		return apperr.Wrap(apperr.KindInternal, err, "llm provider error")
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		if retriableStatus(reqErr.HTTPStatusCode) {
			return apperr.Wrap(apperr.KindUnavailable, err, "llm provider unavailable")
		}
		return apperr.Wrap(apperr.KindInternal, err, "llm request failed")
	}

	return apperr.Wrap(apperr.KindUnavailable, err, "llm call failed")
}

func retriableStatus(status int) bool {
	switch status {
	case http.StatusTooManyRequests,
		http.StatusInternalServerError,
		http.StatusBadGateway,
		http.StatusServiceUnavailable,
		http.StatusGatewayTimeout:
		return true
	default:
		return false
	}
}
