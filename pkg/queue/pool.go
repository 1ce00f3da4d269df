// Package queue runs accepted generation jobs on a bounded worker pool and
// exposes the task-facing service operations built on top of it: submit,
// status, listing, cancellation, and standalone verification.
package queue

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/ovokpus/PostAssist/pkg/apperr"
	"github.com/ovokpus/PostAssist/pkg/config"
)

// Job is one queued unit of work. Run receives a per-job context that is
// cancelled by CancelTask or by forced shutdown.
type Job struct {
	TaskID string
	Run    func(ctx context.Context)
}

// Pool is a fixed-size worker pool over a bounded job channel.
type Pool struct {
	cfg    config.QueueConfig
	jobs   chan Job
	logger *slog.Logger

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup

	// Task cancel registry: task_id -> cancel function for the running job.
	mu          sync.RWMutex
	activeTasks map[string]context.CancelFunc
	started     bool
}

// NewPool creates a pool; call Start before enqueueing.
func NewPool(cfg config.QueueConfig, logger *slog.Logger) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pool{
		cfg:         cfg,
		jobs:        make(chan Job, cfg.QueueDepth),
		logger:      logger,
		stopCh:      make(chan struct{}),
		activeTasks: make(map[string]context.CancelFunc),
	}
}

// Start spawns the worker goroutines. Safe to call multiple times;
// subsequent calls are no-ops.
func (p *Pool) Start(ctx context.Context) {
	if p.started {
		p.logger.Warn("worker pool already started, ignoring duplicate Start call")
		return
	}
	p.started = true

	p.logger.Info("starting worker pool",
		"worker_count", p.cfg.WorkerCount, "queue_depth", p.cfg.QueueDepth)
	for i := 0; i < p.cfg.WorkerCount; i++ {
		workerID := fmt.Sprintf("worker-%d", i)
		p.wg.Add(1)
		go p.runWorker(ctx, workerID)
	}
}

// Stop shuts the pool down in two phases: workers get the configured grace
// period to finish their current jobs, then any still-running jobs are
// cancelled and the tasks fail with a Cancelled error. Jobs still waiting in
// the queue are failed the same way so their tasks do not sit PENDING until
// the TTL expires.
func (p *Pool) Stop() {
	p.logger.Info("stopping worker pool")
	p.stopOnce.Do(func() { close(p.stopCh) })

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(p.cfg.GracefulShutdownTimeout):
		active := p.activeTaskIDs()
		p.logger.Warn("grace period elapsed, cancelling in-flight jobs",
			"count", len(active), "task_ids", active)
		p.cancelAll()
		<-done
	}
	p.drainQueue()
	p.logger.Info("worker pool stopped")
}

// drainQueue fails jobs that never reached a worker. Each runs with an
// already-cancelled context so its task records a Cancelled failure.
func (p *Pool) drainQueue() {
	cancelled, cancel := context.WithCancel(context.Background())
	cancel()
	for {
		select {
		case job := <-p.jobs:
			p.logger.Info("failing queued job on shutdown", "task_id", job.TaskID)
			job.Run(cancelled)
		default:
			return
		}
	}
}

// Enqueue hands a job to the pool without blocking. A full queue is an
// Unavailable error so callers can surface backpressure.
func (p *Pool) Enqueue(job Job) error {
	select {
	case <-p.stopCh:
		return apperr.New(apperr.KindUnavailable, "worker pool is shutting down")
	default:
	}
	select {
	case p.jobs <- job:
		return nil
	default:
		return apperr.New(apperr.KindUnavailable, "job queue full")
	}
}

// CancelTask cancels the running job for a task. Returns false when no job
// for that task is currently executing.
func (p *Pool) CancelTask(taskID string) bool {
	p.mu.RLock()
	defer p.mu.RUnlock()
	if cancel, ok := p.activeTasks[taskID]; ok {
		cancel()
		return true
	}
	return false
}

// QueuedJobs reports the number of jobs waiting for a worker.
func (p *Pool) QueuedJobs() int {
	return len(p.jobs)
}

// ActiveJobs reports the number of jobs currently executing.
func (p *Pool) ActiveJobs() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.activeTasks)
}

func (p *Pool) runWorker(ctx context.Context, workerID string) {
	defer p.wg.Done()

	log := p.logger.With("worker_id", workerID)
	log.Info("worker started")

	for {
		// Once shutdown begins, finish the current job only; queued jobs
		// are drained by Stop.
		select {
		case <-p.stopCh:
			log.Info("worker shutting down")
			return
		case <-ctx.Done():
			log.Info("context cancelled, worker shutting down")
			return
		default:
		}

		select {
		case <-p.stopCh:
			log.Info("worker shutting down")
			return
		case <-ctx.Done():
			log.Info("context cancelled, worker shutting down")
			return
		case job := <-p.jobs:
			p.process(ctx, job, log)
		}
	}
}

func (p *Pool) process(ctx context.Context, job Job, log *slog.Logger) {
	jobCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	p.register(job.TaskID, cancel)
	defer p.unregister(job.TaskID)

	log.Info("job started", "task_id", job.TaskID)
	job.Run(jobCtx)
	log.Info("job finished", "task_id", job.TaskID)
}

func (p *Pool) register(taskID string, cancel context.CancelFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.activeTasks[taskID] = cancel
}

func (p *Pool) unregister(taskID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.activeTasks, taskID)
}

func (p *Pool) cancelAll() {
	p.mu.RLock()
	defer p.mu.RUnlock()
	for _, cancel := range p.activeTasks {
		cancel()
	}
}

func (p *Pool) activeTaskIDs() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	ids := make([]string, 0, len(p.activeTasks))
	for id := range p.activeTasks {
		ids = append(ids, id)
	}
	return ids
}
