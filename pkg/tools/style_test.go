package tools

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// goodPost builds a post that passes every style check.
func goodPost() string {
	body := strings.Repeat("Solid insight about transformers and attention. ", 14)
	return "🚀 Research update\n\n" + body +
		"\n1. First takeaway\n2. Second takeaway\n\nWhat do you think?\n\n#AI #MachineLearning #Research"
}

func TestCheckStyleCleanPost(t *testing.T) {
	report := CheckStyle(goodPost())

	assert.Contains(t, report, "STYLE SCORE: 1.00/1.0")
	assert.Contains(t, report, "STATUS: LINKEDIN READY")
	assert.Contains(t, report, "- No major style issues")
}

func TestCheckStyleShortPost(t *testing.T) {
	report := CheckStyle("🚀 tiny\n1. a\nWhat?\n#AI #ML #Research")

	assert.Contains(t, report, "outside [600, 1300]")
	assert.Contains(t, report, "STYLE SCORE: 0.90/1.0")
	assert.Contains(t, report, "STATUS: LINKEDIN READY")
}

func TestCheckStyleMultipleFailures(t *testing.T) {
	// No emoji, no question, no hashtags, no list, too short: 5 issues.
	report := CheckStyle("plain short text")

	assert.Contains(t, report, "STYLE SCORE: 0.50/1.0")
	assert.Contains(t, report, "STATUS: NEEDS STYLE IMPROVEMENTS")
	assert.Contains(t, report, "No emojis used")
	assert.Contains(t, report, "Missing engagement question")
	assert.Contains(t, report, "Missing numbered list")
}

func TestCheckStyleHashtagBand(t *testing.T) {
	post := goodPost() + " " + strings.Repeat("#x ", 20)
	report := CheckStyle(post)

	assert.Contains(t, report, "Hashtag count 23 outside [3, 15]")
}

func TestCountEmoji(t *testing.T) {
	assert.Equal(t, 0, countEmoji("no emoji here"))
	assert.Equal(t, 2, countEmoji("🚀 launch 💡 idea"))
	assert.Equal(t, 1, countEmoji("sun ☀ only"))
}
