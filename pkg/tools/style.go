package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var checkStyleSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"post_content": {"type": "string", "description": "LinkedIn post content to check"}
	},
	"required": ["post_content"]
}`)

// Style bands for a publishable post.
const (
	styleMinChars    = 600
	styleMaxChars    = 1300
	styleMinHashtags = 3
	styleMaxHashtags = 15
)

var numberedListPattern = regexp.MustCompile(`(?m)^\s*\d+\.\s`)

// NewCheckStyleTool builds the structural style scorer.
func NewCheckStyleTool() Tool {
	return Tool{
		Name:        "check_style",
		Description: "Check if the post follows LinkedIn best practices and professional tone.",
		Parameters:  checkStyleSchema,
		Run: func(_ context.Context, args map[string]any) (string, error) {
			return CheckStyle(stringArg(args, "post_content")), nil
		},
	}
}

// CheckStyle computes structural metrics and a style score: base 1.0 minus
// 0.1 for each failed check (length band, emoji presence, engagement
// question, hashtag band, numbered list). The report carries
// "STYLE SCORE: X.XX/1.0" and a LINKEDIN READY status at >= 0.7.
func CheckStyle(postContent string) string {
	var issues, recommendations []string

	charCount := CharacterCount(postContent)
	if charCount < styleMinChars || charCount > styleMaxChars {
		issues = append(issues, fmt.Sprintf("Character count %d outside [%d, %d]", charCount, styleMinChars, styleMaxChars))
		recommendations = append(recommendations, "Aim for a post between 600 and 1300 characters")
	}

	emojiCount := countEmoji(postContent)
	if emojiCount == 0 {
		issues = append(issues, "No emojis used")
		recommendations = append(recommendations, "Add 1-3 relevant emojis for engagement")
	}

	hasQuestion := strings.Contains(postContent, "?")
	if !hasQuestion {
		issues = append(issues, "Missing engagement question")
		recommendations = append(recommendations, "Add a question to encourage comments")
	}

	hashtagCount := len(hashtagPattern.FindAllString(postContent, -1))
	if hashtagCount < styleMinHashtags || hashtagCount > styleMaxHashtags {
		issues = append(issues, fmt.Sprintf("Hashtag count %d outside [%d, %d]", hashtagCount, styleMinHashtags, styleMaxHashtags))
		recommendations = append(recommendations, "Use 3 to 15 relevant hashtags")
	}

	hasNumberedList := numberedListPattern.MatchString(postContent)
	if !hasNumberedList {
		issues = append(issues, "Missing numbered list")
		recommendations = append(recommendations, "Summarize key takeaways as a numbered list")
	}

	score := 1.0 - 0.1*float64(len(issues))
	if score < 0 {
		score = 0
	}

	status := "NEEDS STYLE IMPROVEMENTS"
	if score >= 0.7 {
		status = "LINKEDIN READY"
	}

	yesNo := func(b bool) string {
		if b {
			return "Yes"
		}
		return "No"
	}

	return fmt.Sprintf(`LINKEDIN STYLE ASSESSMENT:
=========================

POST ANALYZED:
%s

METRICS:
- Character count: %d
- Emoji count: %d
- Hashtag count: %d
- Has engagement question: %s
- Has numbered list: %s

STYLE SCORE: %.2f/1.0

ISSUES IDENTIFIED:
%s

RECOMMENDATIONS:
%s

STATUS: %s
`, truncate(postContent, 300), charCount, emojiCount, hashtagCount,
		yesNo(hasQuestion), yesNo(hasNumberedList), score,
		bulletList(issues, "- No major style issues"),
		bulletList(recommendations, "- Post follows LinkedIn best practices"),
		status)
}

// countEmoji counts code points in the common emoji blocks.
func countEmoji(s string) int {
	count := 0
	for _, r := range s {
		switch {
		case r >= 0x1F300 && r <= 0x1F5FF, // symbols and pictographs
			r >= 0x1F600 && r <= 0x1F64F, // emoticons
			r >= 0x1F680 && r <= 0x1F6FF, // transport
			r >= 0x1F900 && r <= 0x1F9FF, // supplemental
			r >= 0x2600 && r <= 0x27BF: // misc symbols and dingbats
			count++
		}
	}
	return count
}
