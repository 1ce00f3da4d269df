package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
)

var createPostSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"content": {"type": "string", "description": "The main content for the LinkedIn post"},
		"paper_title": {"type": "string", "description": "Title of the ML paper"},
		"key_insights": {"type": "array", "items": {"type": "string"}, "description": "List of key insights from the paper"},
		"target_audience": {"type": "string", "enum": ["academic", "professional", "general"]},
		"tone": {"type": "string", "enum": ["professional", "casual", "enthusiastic", "academic"]},
		"max_hashtags": {"type": "integer", "description": "Maximum number of hashtags"}
	},
	"required": ["content", "paper_title", "key_insights"]
}`)

var toneEmoji = map[string]string{
	"professional": "🚀",
	"academic":     "📚",
	"casual":       "💡",
}

// NewCreatePostTool builds the pure post formatter.
func NewCreatePostTool() Tool {
	return Tool{
		Name:        "create_post",
		Description: "Create a LinkedIn post about a machine learning paper.",
		Parameters:  createPostSchema,
		Run: func(_ context.Context, args map[string]any) (string, error) {
			return FormatPost(
				stringArg(args, "content"),
				stringArg(args, "paper_title"),
				stringSliceArg(args, "key_insights"),
				stringArg(args, "target_audience"),
				stringArg(args, "tone"),
				intArg(args, "max_hashtags", 10),
			), nil
		},
	}
}

// FormatPost assembles the canonical post layout: opening line, body,
// numbered takeaways (at most 5), an engagement question, and the hashtag
// block.
func FormatPost(content, paperTitle string, keyInsights []string, audience, tone string, maxHashtags int) string {
	emoji, ok := toneEmoji[tone]
	if !ok {
		emoji = toneEmoji["professional"]
	}

	var opening string
	switch audience {
	case "academic":
		opening = fmt.Sprintf("%s **New Research Alert: %s**", emoji, paperTitle)
	case "general":
		opening = fmt.Sprintf("%s **Exciting breakthrough in AI!**", emoji)
	default:
		opening = fmt.Sprintf("%s **Transforming the Future of AI: %s**", emoji, paperTitle)
	}

	var sb strings.Builder
	sb.WriteString(opening)
	sb.WriteString("\n\n")
	sb.WriteString(content)
	sb.WriteString("\n\n")

	if len(keyInsights) > 0 {
		sb.WriteString("💡 **Key Takeaways:**\n")
		insights := keyInsights
		if len(insights) > 5 {
			insights = insights[:5]
		}
		for i, insight := range insights {
			fmt.Fprintf(&sb, "\n%d. %s", i+1, insight)
		}
		sb.WriteString("\n\n")
	}

	switch audience {
	case "academic":
		sb.WriteString("What are your thoughts on this methodology? How do you see it advancing the field?\n\n")
	case "general":
		sb.WriteString("What excites you most about AI developments like this?\n\n")
	default:
		sb.WriteString("What are your thoughts on this research? How do you see it impacting your industry?\n\n")
	}

	sb.WriteString(strings.Join(generateHashtags(paperTitle, keyInsights, maxHashtags), " "))
	return sb.String()
}
