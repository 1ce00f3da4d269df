package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

var verifyTechnicalSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"post_content": {"type": "string", "description": "LinkedIn post content to verify"},
		"paper_reference": {"type": "string", "description": "Reference information about the paper"}
	},
	"required": ["post_content"]
}`)

// overstatedPatterns are hype signals that each cost 0.2 accuracy points.
var overstatedPatterns = []string{
	"revolutionary", "breakthrough", "unprecedented",
	"solves all", "perfect", "100%", "completely",
}

var technicalTermPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\b(?:neural network|transformer|attention|BERT|GPT|CNN|RNN|LSTM)\b`),
	regexp.MustCompile(`(?i)\b(?:machine learning|deep learning|artificial intelligence|AI|ML|DL)\b`),
	regexp.MustCompile(`(?i)\b(?:algorithm|model|dataset|training|inference|optimization)\b`),
	regexp.MustCompile(`(?i)\b(?:accuracy|precision|recall|F1|loss|gradient|backpropagation)\b`),
	regexp.MustCompile(`(?i)\b(?:supervised|unsupervised|reinforcement|learning)\b`),
}

// NewVerifyTechnicalTool builds the pattern-based accuracy scorer.
func NewVerifyTechnicalTool() Tool {
	return Tool{
		Name:        "verify_technical",
		Description: "Verify the technical accuracy of claims made in the LinkedIn post.",
		Parameters:  verifyTechnicalSchema,
		Run: func(_ context.Context, args map[string]any) (string, error) {
			return VerifyTechnical(stringArg(args, "post_content"), stringArg(args, "paper_reference")), nil
		},
	}
}

// VerifyTechnical scores a post for overstated claims, missing
// attribution, and reference mismatch: score = max(0, 1 - 0.2*issues).
// The report carries "Score: X.XX/1.0" and an APPROVED status at >= 0.7.
func VerifyTechnical(postContent, paperReference string) string {
	lower := strings.ToLower(postContent)

	var issues, recommendations []string

	for _, pattern := range overstatedPatterns {
		if strings.Contains(lower, pattern) {
			issues = append(issues, fmt.Sprintf("Potentially overstated claim detected: '%s'", pattern))
			recommendations = append(recommendations, "Consider using more measured language")
		}
	}

	if !strings.Contains(postContent, "et al") && !strings.Contains(lower, "by") {
		issues = append(issues, "Missing author attribution")
		recommendations = append(recommendations, "Add proper attribution to paper authors")
	}

	if paperReference != "" && !referenceMentioned(lower, paperReference) {
		issues = append(issues, "Paper reference not reflected in post")
		recommendations = append(recommendations, "Mention the paper or its key terms explicitly")
	}

	score := 1.0 - 0.2*float64(len(issues))
	if score < 0 {
		score = 0
	}

	status := "NEEDS REVISION"
	if score >= 0.7 {
		status = "APPROVED"
	}

	terms := extractTechnicalTerms(postContent)
	termLine := "None detected"
	if len(terms) > 0 {
		termLine = strings.Join(terms, ", ")
	}

	return fmt.Sprintf(`TECHNICAL VERIFICATION REPORT:
=============================

POST CONTENT ANALYZED:
%s

TECHNICAL TERMS IDENTIFIED:
%s

ACCURACY ASSESSMENT:
Score: %.2f/1.0

ISSUES IDENTIFIED:
%s

RECOMMENDATIONS:
%s

STATUS: %s
`, truncate(postContent, 500), termLine, score,
		bulletList(issues, "- No major issues detected"),
		bulletList(recommendations, "- Post appears technically sound"),
		status)
}

// referenceMentioned checks whether any significant word of the reference
// appears in the post.
func referenceMentioned(lowerPost, reference string) bool {
	for _, word := range strings.Fields(strings.ToLower(reference)) {
		word = strings.Trim(word, `.,:;"'()`)
		if len(word) > 3 && strings.Contains(lowerPost, word) {
			return true
		}
	}
	return false
}

func extractTechnicalTerms(text string) []string {
	seen := make(map[string]struct{})
	var terms []string
	for _, pattern := range technicalTermPatterns {
		for _, match := range pattern.FindAllString(text, -1) {
			key := strings.ToLower(match)
			if _, ok := seen[key]; ok {
				continue
			}
			seen[key] = struct{}{}
			terms = append(terms, match)
		}
	}
	return terms
}

func bulletList(items []string, emptyLine string) string {
	if len(items) == 0 {
		return emptyLine
	}
	lines := make([]string, len(items))
	for i, item := range items {
		lines[i] = "- " + item
	}
	return strings.Join(lines, "\n")
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit]) + "..."
}
