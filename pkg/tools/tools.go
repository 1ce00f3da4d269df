// Package tools implements the tool catalog exposed to agents: paper
// research, web search, post formatting, and the two verification scorers.
// Tools return strings; failures other than context termination are
// encoded into the result string so the model can react to them.
package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/ovokpus/PostAssist/pkg/llm"
)

// Tool is one callable entry in the catalog.
type Tool struct {
	Name        string
	Description string
	// Parameters is the JSON schema advertised to the model.
	Parameters json.RawMessage
	// Run executes the tool. The returned error is reserved for context
	// termination; all other failures are encoded in the string result.
	Run func(ctx context.Context, args map[string]any) (string, error)
}

// Definition converts the tool to its LLM-facing description.
func (t Tool) Definition() llm.ToolDefinition {
	return llm.ToolDefinition{
		Name:        t.Name,
		Description: t.Description,
		Parameters:  t.Parameters,
	}
}

// Registry maps tool names to implementations.
type Registry struct {
	tools map[string]Tool
}

// NewRegistry creates a registry over the given tools.
func NewRegistry(tools ...Tool) *Registry {
	r := &Registry{tools: make(map[string]Tool, len(tools))}
	for _, tool := range tools {
		r.tools[tool.Name] = tool
	}
	return r
}

// Get returns a tool by name.
func (r *Registry) Get(name string) (Tool, bool) {
	tool, ok := r.tools[name]
	return tool, ok
}

// Select resolves a list of tool names, erroring on unknown names so role
// configuration mistakes surface at startup.
func (r *Registry) Select(names []string) ([]Tool, error) {
	out := make([]Tool, 0, len(names))
	for _, name := range names {
		tool, ok := r.tools[name]
		if !ok {
			return nil, fmt.Errorf("unknown tool: %s", name)
		}
		out = append(out, tool)
	}
	return out, nil
}

// Names lists registered tool names, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func stringArg(args map[string]any, key string) string {
	if v, ok := args[key].(string); ok {
		return v
	}
	return ""
}

func intArg(args map[string]any, key string, defaultValue int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return defaultValue
	}
}

func stringSliceArg(args map[string]any, key string) []string {
	raw, ok := args[key].([]any)
	if !ok {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, item := range raw {
		if s, ok := item.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
