package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ovokpus/PostAssist/pkg/apperr"
	"github.com/ovokpus/PostAssist/pkg/search"
)

var webSearchSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"query": {"type": "string", "description": "Search query"}
	},
	"required": ["query"]
}`)

var researchPaperSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"paper_title": {"type": "string", "description": "Title or topic of the ML paper to research"},
		"focus_areas": {"type": "array", "items": {"type": "string"}, "description": "Specific aspects to focus on"}
	},
	"required": ["paper_title"]
}`)

// defaultFocusAreas are researched when the model does not name its own.
var defaultFocusAreas = []string{"methodology", "results", "applications", "impact"}

// NewWebSearchTool delegates a single query to the search provider.
// Provider failures are encoded as SEARCH_ERROR strings so the model can
// proceed with degraded information.
func NewWebSearchTool(provider search.Provider) Tool {
	return Tool{
		Name:        "web_search",
		Description: "Search the web for current information.",
		Parameters:  webSearchSchema,
		Run: func(ctx context.Context, args map[string]any) (string, error) {
			result, err := provider.Search(ctx, stringArg(args, "query"))
			if err != nil {
				if ctxErr := terminalToolError(ctx, err); ctxErr != nil {
					return "", ctxErr
				}
				return "SEARCH_ERROR: " + err.Error(), nil
			}
			return result, nil
		},
	}
}

// NewResearchPaperTool combines search results for the base query and each
// focus area into one labelled block.
func NewResearchPaperTool(provider search.Provider) Tool {
	return Tool{
		Name:        "research_paper",
		Description: "Research a machine learning paper using web search to gather comprehensive information.",
		Parameters:  researchPaperSchema,
		Run: func(ctx context.Context, args map[string]any) (string, error) {
			title := stringArg(args, "paper_title")
			focusAreas := stringSliceArg(args, "focus_areas")
			if len(focusAreas) == 0 {
				focusAreas = defaultFocusAreas
			}

			main, err := provider.Search(ctx, fmt.Sprintf("machine learning paper %s arxiv research", title))
			if err != nil {
				if ctxErr := terminalToolError(ctx, err); ctxErr != nil {
					return "", ctxErr
				}
				main = "SEARCH_ERROR: " + err.Error()
			}

			var focused strings.Builder
			for _, area := range focusAreas {
				result, err := provider.Search(ctx, fmt.Sprintf("%s %s machine learning", title, area))
				if err != nil {
					if ctxErr := terminalToolError(ctx, err); ctxErr != nil {
						return "", ctxErr
					}
					result = "SEARCH_ERROR: " + err.Error()
				}
				fmt.Fprintf(&focused, "\n--- %s ---\n%s", strings.ToUpper(area), result)
			}

			return fmt.Sprintf("MAIN RESEARCH FINDINGS:\n%s\n\nFOCUSED RESEARCH AREAS:\n%s\n", main, focused.String()), nil
		},
	}
}

// terminalToolError returns a non-nil error only when the failure is a
// context termination, which must stop the run instead of feeding back to
// the model.
func terminalToolError(ctx context.Context, err error) error {
	if ctxErr := apperr.FromContext(ctx); ctxErr != nil {
		return ctxErr
	}
	switch apperr.KindOf(err) {
	case apperr.KindCancelled, apperr.KindTimeout:
		return err
	default:
		return nil
	}
}
