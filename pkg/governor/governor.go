// Package governor bounds concurrent work with two independent weighted
// semaphores: one for full generation runs, one for standalone
// verification requests.
package governor

import (
	"context"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/ovokpus/PostAssist/pkg/apperr"
)

// Governor is the concurrency permit authority. Safe for concurrent use.
type Governor struct {
	generation   *semaphore.Weighted
	verification *semaphore.Weighted

	verificationTimeout time.Duration

	generationInFlight   atomic.Int64
	verificationInFlight atomic.Int64
}

// New creates a governor with the given permit counts. Generation runs are
// unbounded in time; verification runs are bounded by verificationTimeout.
func New(generationPermits, verificationPermits int, verificationTimeout time.Duration) *Governor {
	return &Governor{
		generation:          semaphore.NewWeighted(int64(generationPermits)),
		verification:        semaphore.NewWeighted(int64(verificationPermits)),
		verificationTimeout: verificationTimeout,
	}
}

// AcquireGeneration blocks until a generation permit is available or the
// context ends.
func (g *Governor) AcquireGeneration(ctx context.Context) error {
	if err := g.generation.Acquire(ctx, 1); err != nil {
		return acquireError(ctx, err)
	}
	g.generationInFlight.Add(1)
	return nil
}

// ReleaseGeneration returns a generation permit.
func (g *Governor) ReleaseGeneration() {
	g.generationInFlight.Add(-1)
	g.generation.Release(1)
}

// AcquireVerification blocks until a verification permit is available or
// the context ends.
func (g *Governor) AcquireVerification(ctx context.Context) error {
	if err := g.verification.Acquire(ctx, 1); err != nil {
		return acquireError(ctx, err)
	}
	g.verificationInFlight.Add(1)
	return nil
}

// ReleaseVerification returns a verification permit.
func (g *Governor) ReleaseVerification() {
	g.verificationInFlight.Add(-1)
	g.verification.Release(1)
}

// WithVerificationDeadline derives the bounded context a verification run
// must execute under.
func (g *Governor) WithVerificationDeadline(ctx context.Context) (context.Context, context.CancelFunc) {
	if g.verificationTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, g.verificationTimeout)
}

// GenerationInFlight returns the number of held generation permits.
func (g *Governor) GenerationInFlight() int {
	return int(g.generationInFlight.Load())
}

// VerificationInFlight returns the number of held verification permits.
func (g *Governor) VerificationInFlight() int {
	return int(g.verificationInFlight.Load())
}

func acquireError(ctx context.Context, err error) error {
	if ctxErr := apperr.FromContext(ctx); ctxErr != nil {
		return ctxErr
	}
	return apperr.Wrap(apperr.KindCancelled, err, "permit acquisition interrupted")
}
