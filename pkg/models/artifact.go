package models

import "time"

// LinkedInPost is the final artifact written on completion.
type LinkedInPost struct {
	Content         string   `json:"content"`
	Hashtags        []string `json:"hashtags"`
	WordCount       int      `json:"word_count"`
	CharacterCount  int      `json:"character_count"`
	EngagementScore *float64 `json:"engagement_score,omitempty"`
}

// ReportSection is one half of a verification report (technical or style).
type ReportSection struct {
	Score       float64  `json:"score"`
	Issues      []string `json:"issues"`
	Suggestions []string `json:"suggestions"`
	Report      string   `json:"report,omitempty"`
}

// Rating buckets for the overall verification score.
const (
	RatingExcellent        = "excellent"
	RatingGood             = "good"
	RatingNeedsImprovement = "needs_improvement"
	RatingPoor             = "poor"
)

// VerificationReport pairs the technical and style assessments of a post.
type VerificationReport struct {
	Technical       *ReportSection `json:"technical,omitempty"`
	Style           *ReportSection `json:"style,omitempty"`
	OverallScore    float64        `json:"overall_score"`
	Recommendations []string       `json:"recommendations"`
	Rating          string         `json:"rating"`
	VerifiedAt      time.Time      `json:"verified_at,omitempty"`
}

// RatingFor maps an overall score to its rating bucket.
func RatingFor(score float64) string {
	switch {
	case score >= 0.9:
		return RatingExcellent
	case score >= 0.7:
		return RatingGood
	case score >= 0.5:
		return RatingNeedsImprovement
	default:
		return RatingPoor
	}
}
