package queue

import (
	"context"
	"log/slog"

	"github.com/ovokpus/PostAssist/pkg/apperr"
	"github.com/ovokpus/PostAssist/pkg/config"
	"github.com/ovokpus/PostAssist/pkg/governor"
	"github.com/ovokpus/PostAssist/pkg/models"
	"github.com/ovokpus/PostAssist/pkg/tools"
)

// VerifyRequest is a standalone verification of an existing post. It runs
// synchronously and never touches the task store.
type VerifyRequest struct {
	PostContent    string
	PaperReference string
	Type           config.VerificationType
}

// Verifier runs standalone verifications under the verification permit and
// deadline.
type Verifier struct {
	governor *governor.Governor
	logger   *slog.Logger
}

// NewVerifier wires a verifier.
func NewVerifier(gov *governor.Governor, logger *slog.Logger) *Verifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &Verifier{governor: gov, logger: logger}
}

// Verify scores the post per the requested verification type. The deadline
// covers the permit wait as well as the scoring, so saturated verification
// capacity surfaces as a Timeout.
func (v *Verifier) Verify(ctx context.Context, req VerifyRequest) (*models.VerificationReport, error) {
	vctx, cancel := v.governor.WithVerificationDeadline(ctx)
	defer cancel()

	if err := v.governor.AcquireVerification(vctx); err != nil {
		return nil, err
	}
	defer v.governor.ReleaseVerification()

	var technical, style string
	if req.Type == config.VerificationTechnical || req.Type == config.VerificationBoth {
		technical = tools.VerifyTechnical(req.PostContent, req.PaperReference)
	}
	if err := apperr.FromContext(vctx); err != nil {
		return nil, err
	}
	if req.Type == config.VerificationStyle || req.Type == config.VerificationBoth {
		style = tools.CheckStyle(req.PostContent)
	}

	report := tools.BuildVerificationReport(technical, style)
	v.logger.Info("standalone verification complete",
		"type", req.Type, "overall_score", report.OverallScore, "rating", report.Rating)
	return report, nil
}
