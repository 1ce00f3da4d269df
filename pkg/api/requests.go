package api

import (
	"unicode/utf8"

	"github.com/ovokpus/PostAssist/pkg/apperr"
	"github.com/ovokpus/PostAssist/pkg/config"
)

// Request field bounds.
const (
	minTitleLen      = 5
	maxTitleLen      = 500
	maxContextLen    = 1000
	minHashtags      = 1
	maxHashtags      = 20
	defaultHashtags  = 10
	minBatchPapers   = 1
	maxBatchPapers   = 5
	minIntervalMins  = 30
	maxIntervalMins  = 1440
	defaultIntervals = 30
)

// GeneratePostRequest is the body of POST /generate-post.
type GeneratePostRequest struct {
	PaperTitle              string `json:"paper_title"`
	AdditionalContext       string `json:"additional_context,omitempty"`
	TargetAudience          string `json:"target_audience,omitempty"`
	Tone                    string `json:"tone,omitempty"`
	IncludeTechnicalDetails *bool  `json:"include_technical_details,omitempty"`
	MaxHashtags             int    `json:"max_hashtags,omitempty"`
}

// applyDefaults fills the optional fields the same way the service always
// interpreted them: professional audience and tone, technical details on,
// ten hashtags.
func (r *GeneratePostRequest) applyDefaults() {
	if r.TargetAudience == "" {
		r.TargetAudience = string(config.AudienceProfessional)
	}
	if r.Tone == "" {
		r.Tone = string(config.ToneProfessional)
	}
	if r.IncludeTechnicalDetails == nil {
		v := true
		r.IncludeTechnicalDetails = &v
	}
	if r.MaxHashtags == 0 {
		r.MaxHashtags = defaultHashtags
	}
}

func (r *GeneratePostRequest) validate() error {
	if n := utf8.RuneCountInString(r.PaperTitle); n < minTitleLen || n > maxTitleLen {
		return apperr.New(apperr.KindValidation,
			"paper_title must be %d-%d characters, got %d", minTitleLen, maxTitleLen, n)
	}
	if n := utf8.RuneCountInString(r.AdditionalContext); n > maxContextLen {
		return apperr.New(apperr.KindValidation,
			"additional_context must be at most %d characters, got %d", maxContextLen, n)
	}
	if !config.Audience(r.TargetAudience).IsValid() {
		return apperr.New(apperr.KindValidation,
			"target_audience %q is not one of academic, professional, general", r.TargetAudience)
	}
	if !config.Tone(r.Tone).IsValid() {
		return apperr.New(apperr.KindValidation,
			"tone %q is not one of professional, casual, enthusiastic, academic", r.Tone)
	}
	if r.MaxHashtags < minHashtags || r.MaxHashtags > maxHashtags {
		return apperr.New(apperr.KindValidation,
			"max_hashtags must be %d-%d, got %d", minHashtags, maxHashtags, r.MaxHashtags)
	}
	return nil
}

// requestData flattens the request into the task record. Numbers are stored
// as float64 so the map matches its JSON round-trip.
func (r *GeneratePostRequest) requestData() map[string]any {
	data := map[string]any{
		"paper_title":               r.PaperTitle,
		"target_audience":           r.TargetAudience,
		"tone":                      r.Tone,
		"include_technical_details": *r.IncludeTechnicalDetails,
		"max_hashtags":              float64(r.MaxHashtags),
	}
	if r.AdditionalContext != "" {
		data["additional_context"] = r.AdditionalContext
	}
	return data
}

// VerifyPostRequest is the body of POST /verify-post.
type VerifyPostRequest struct {
	PostContent      string `json:"post_content"`
	PaperReference   string `json:"paper_reference,omitempty"`
	VerificationType string `json:"verification_type,omitempty"`
}

func (r *VerifyPostRequest) applyDefaults() {
	if r.VerificationType == "" {
		r.VerificationType = string(config.VerificationBoth)
	}
}

func (r *VerifyPostRequest) validate() error {
	if r.PostContent == "" {
		return apperr.New(apperr.KindValidation, "post_content must not be empty")
	}
	if !config.VerificationType(r.VerificationType).IsValid() {
		return apperr.New(apperr.KindValidation,
			"verification_type %q is not one of technical, style, both", r.VerificationType)
	}
	return nil
}

// BatchGenerateRequest is the body of POST /batch-generate. Scheduling is
// accepted and echoed; posts are enqueued immediately either way.
type BatchGenerateRequest struct {
	Papers              []GeneratePostRequest `json:"papers"`
	SchedulePosts       bool                  `json:"schedule_posts,omitempty"`
	TimeIntervalMinutes int                   `json:"time_interval_minutes,omitempty"`
}

func (r *BatchGenerateRequest) applyDefaults() {
	for i := range r.Papers {
		r.Papers[i].applyDefaults()
	}
	if r.SchedulePosts && r.TimeIntervalMinutes == 0 {
		r.TimeIntervalMinutes = defaultIntervals
	}
}

func (r *BatchGenerateRequest) validate() error {
	if len(r.Papers) < minBatchPapers || len(r.Papers) > maxBatchPapers {
		return apperr.New(apperr.KindValidation,
			"papers must contain %d-%d entries, got %d", minBatchPapers, maxBatchPapers, len(r.Papers))
	}
	for i := range r.Papers {
		if err := r.Papers[i].validate(); err != nil {
			return apperr.Wrap(apperr.KindValidation, err, "papers[%d]", i)
		}
	}
	if r.TimeIntervalMinutes != 0 &&
		(r.TimeIntervalMinutes < minIntervalMins || r.TimeIntervalMinutes > maxIntervalMins) {
		return apperr.New(apperr.KindValidation,
			"time_interval_minutes must be %d-%d, got %d", minIntervalMins, maxIntervalMins, r.TimeIntervalMinutes)
	}
	return nil
}
