package tools

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ovokpus/PostAssist/pkg/models"
)

// Report parsing is tolerant: verifier agents normally emit the exact
// formats produced by VerifyTechnical and CheckStyle, but scores are also
// accepted in looser phrasings like "score 0.40".
var scorePattern = regexp.MustCompile(`(?i)\bscore:?\s*([0-9]*\.?[0-9]+)(?:\s*/\s*1\.0)?`)

var defaultBullets = map[string]struct{}{
	"No major issues detected":             {},
	"No major style issues":                {},
	"Post appears technically sound":       {},
	"Post follows LinkedIn best practices": {},
}

// ParseReportSection extracts the score, issues, and suggestions from a
// verification report text.
func ParseReportSection(text string) *models.ReportSection {
	if strings.TrimSpace(text) == "" {
		return nil
	}

	section := &models.ReportSection{
		Score:       parseScore(text),
		Issues:      parseBullets(text, "ISSUES IDENTIFIED:"),
		Suggestions: parseBullets(text, "RECOMMENDATIONS:"),
		Report:      text,
	}
	return section
}

func parseScore(text string) float64 {
	match := scorePattern.FindStringSubmatch(text)
	if match == nil {
		return 0
	}
	score, err := strconv.ParseFloat(match[1], 64)
	if err != nil || score < 0 || score > 1 {
		return 0
	}
	return score
}

// parseBullets collects "- " lines under the named header, stopping at the
// next blank line or header. Placeholder bullets are dropped.
func parseBullets(text, header string) []string {
	items := []string{}
	idx := strings.Index(text, header)
	if idx < 0 {
		return items
	}
	for _, line := range strings.Split(text[idx+len(header):], "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" && len(items) > 0 {
			break
		}
		if trimmed == "" {
			continue
		}
		if !strings.HasPrefix(trimmed, "- ") {
			break
		}
		item := strings.TrimPrefix(trimmed, "- ")
		if _, placeholder := defaultBullets[item]; placeholder {
			continue
		}
		items = append(items, item)
	}
	return items
}

// BuildVerificationReport combines the technical and style report texts
// into the persisted report: overall score is the mean of the present
// sections, recommendations are merged, rating follows the score bands.
func BuildVerificationReport(technicalText, styleText string) *models.VerificationReport {
	report := &models.VerificationReport{
		Technical:       ParseReportSection(technicalText),
		Style:           ParseReportSection(styleText),
		Recommendations: []string{},
		VerifiedAt:      time.Now().UTC(),
	}

	var sum float64
	var count int
	if report.Technical != nil {
		sum += report.Technical.Score
		count++
		report.Recommendations = append(report.Recommendations, report.Technical.Suggestions...)
	}
	if report.Style != nil {
		sum += report.Style.Score
		count++
		report.Recommendations = append(report.Recommendations, report.Style.Suggestions...)
	}
	if count > 0 {
		report.OverallScore = sum / float64(count)
	}
	report.Rating = models.RatingFor(report.OverallScore)
	return report
}
