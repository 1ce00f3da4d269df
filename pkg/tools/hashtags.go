package tools

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

var hashtagPattern = regexp.MustCompile(`#[A-Za-z0-9_]+`)

// ExtractHashtags returns the hashtags in content in order of first
// appearance, deduplicated. Idempotent over its own output.
func ExtractHashtags(content string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, tag := range hashtagPattern.FindAllString(content, -1) {
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}

// WordCount counts whitespace-separated words.
func WordCount(content string) int {
	return len(strings.Fields(content))
}

// CharacterCount counts characters as code points, matching how the style
// checker measures post length.
func CharacterCount(content string) int {
	return utf8.RuneCountInString(content)
}

// baseHashtags always lead the generated tag block.
var baseHashtags = []string{"#MachineLearning", "#AI", "#Research", "#Innovation", "#TechTrends"}

// topicHashtagRules map content patterns to topic hashtags, applied in a
// fixed order so generation is deterministic.
var topicHashtagRules = []struct {
	pattern *regexp.Regexp
	hashtag string
}{
	{regexp.MustCompile(`(?i)natural language|nlp|text|language`), "#NLP"},
	{regexp.MustCompile(`(?i)computer vision|cv|image|visual`), "#ComputerVision"},
	{regexp.MustCompile(`(?i)transformer|attention|bert|gpt`), "#Transformers"},
	{regexp.MustCompile(`(?i)deep learning|neural network`), "#DeepLearning"},
	{regexp.MustCompile(`(?i)reinforcement learning|rl`), "#ReinforcementLearning"},
	{regexp.MustCompile(`(?i)data science|analytics`), "#DataScience"},
	{regexp.MustCompile(`(?i)python|pytorch|tensorflow`), "#Python"},
	{regexp.MustCompile(`(?i)automation|efficiency`), "#Automation"},
	{regexp.MustCompile(`(?i)business|industry|enterprise`), "#BusinessAI"},
	{regexp.MustCompile(`(?i)algorithm|optimization`), "#Algorithms"},
}

// generateHashtags picks the tag block for a post: base tags plus topic
// tags matched against the title and insights, capped at maxHashtags.
func generateHashtags(paperTitle string, keyInsights []string, maxHashtags int) []string {
	if maxHashtags <= 0 {
		maxHashtags = 10
	}
	text := paperTitle + " " + strings.Join(keyInsights, " ")

	hashtags := make([]string, 0, maxHashtags)
	hashtags = append(hashtags, baseHashtags...)
	for _, rule := range topicHashtagRules {
		if rule.pattern.MatchString(text) {
			hashtags = append(hashtags, rule.hashtag)
		}
	}

	if len(hashtags) > maxHashtags {
		hashtags = hashtags[:maxHashtags]
	}
	return hashtags
}
