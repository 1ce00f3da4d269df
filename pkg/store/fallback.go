package store

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/ovokpus/PostAssist/pkg/apperr"
	"github.com/ovokpus/PostAssist/pkg/models"
)

// Fallback wraps a remote store with a one-way degradation to an
// in-process map. The first remote failure flips the adapter to local mode
// for the rest of the process lifetime; recovered remotes are never
// promoted back so each task keeps a single writer view.
//
// Serialization errors pass through without degrading; only backend
// (Unavailable) errors trip the switch.
type Fallback struct {
	remote   Store
	local    *MemoryStore
	degraded atomic.Bool
	logger   *slog.Logger
}

// NewFallback creates the degrading adapter. A nil remote means the store
// runs local-only from the start (STORE_URL unset).
func NewFallback(remote Store, logger *slog.Logger) *Fallback {
	if logger == nil {
		logger = slog.Default()
	}
	f := &Fallback{
		remote: remote,
		local:  NewMemoryStore(),
		logger: logger,
	}
	if remote == nil {
		f.degraded.Store(true)
	}
	return f
}

// Degraded reports whether the adapter is running on the in-process map.
func (f *Fallback) Degraded() bool {
	return f.degraded.Load()
}

// Health implements HealthReporter.
func (f *Fallback) Health(ctx context.Context) string {
	if !f.degraded.Load() {
		if pinger, ok := f.remote.(interface{ Ping(context.Context) error }); ok {
			if err := pinger.Ping(ctx); err != nil {
				return HealthDegraded
			}
		}
		return HealthConnected
	}
	if f.remote == nil {
		return HealthNotAvailable
	}
	return HealthDegraded
}

// degrade flips to local mode, logging once per transition.
func (f *Fallback) degrade(op string, err error) {
	if f.degraded.CompareAndSwap(false, true) {
		f.logger.Warn("remote task store unreachable, degrading to in-process store",
			"operation", op, "error", err)
	}
}

// fellBack reports whether the error should trigger degradation.
func fellBack(err error) bool {
	return apperr.IsKind(err, apperr.KindUnavailable)
}

// Put implements Store.
func (f *Fallback) Put(ctx context.Context, task *models.Task, ttl time.Duration) error {
	if !f.degraded.Load() {
		err := f.remote.Put(ctx, task, ttl)
		if err == nil || !fellBack(err) {
			return err
		}
		f.degrade("put", err)
	}
	return f.local.Put(ctx, task, ttl)
}

// Create implements Store.
func (f *Fallback) Create(ctx context.Context, task *models.Task, ttl time.Duration) error {
	if !f.degraded.Load() {
		err := f.remote.Create(ctx, task, ttl)
		if err == nil || !fellBack(err) {
			return err
		}
		f.degrade("create", err)
	}
	return f.local.Create(ctx, task, ttl)
}

// Get implements Store.
func (f *Fallback) Get(ctx context.Context, taskID string) (*models.Task, error) {
	if !f.degraded.Load() {
		task, err := f.remote.Get(ctx, taskID)
		if err == nil || !fellBack(err) {
			return task, err
		}
		f.degrade("get", err)
	}
	return f.local.Get(ctx, taskID)
}

// List implements Store.
func (f *Fallback) List(ctx context.Context) ([]*models.Task, error) {
	if !f.degraded.Load() {
		tasks, err := f.remote.List(ctx)
		if err == nil || !fellBack(err) {
			return tasks, err
		}
		f.degrade("list", err)
	}
	return f.local.List(ctx)
}

// Delete implements Store.
func (f *Fallback) Delete(ctx context.Context, taskID string) error {
	if !f.degraded.Load() {
		err := f.remote.Delete(ctx, taskID)
		if err == nil || !fellBack(err) {
			return err
		}
		f.degrade("delete", err)
	}
	return f.local.Delete(ctx, taskID)
}
