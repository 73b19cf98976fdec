package pipeline

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"ninjaengine/internal/domain"
	"ninjaengine/internal/observability"
)

// WorkerConfig configures the post-call worker pool.
type WorkerConfig struct {
	WorkerCount int
	MaxAttempts int
	BaseBackoff time.Duration
	PollTimeout time.Duration
}

// Pool runs a fixed-size worker pool claiming tasks from Queue, routing
// them by task type, and recording completion. Only high-priority tasks
// retry; everything else is recorded failed on first error, per spec.md
// §4.7's failure semantics.
type Pool struct {
	queue   *Queue
	deps    Dependencies
	cfg     WorkerConfig
	batches *BatchTracker
	active  int64
}

// NewPool builds a worker pool.
func NewPool(queue *Queue, deps Dependencies, cfg WorkerConfig, batches *BatchTracker) *Pool {
	if cfg.WorkerCount <= 0 {
		cfg.WorkerCount = 4
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.BaseBackoff <= 0 {
		cfg.BaseBackoff = 200 * time.Millisecond
	}
	if cfg.PollTimeout <= 0 {
		cfg.PollTimeout = 2 * time.Second
	}
	return &Pool{queue: queue, deps: deps, cfg: cfg, batches: batches}
}

// Run starts cfg.WorkerCount workers, each looping claim-handle-record
// until ctx is cancelled. Run blocks until every worker has exited,
// finishing its current task if it completes within a grace window.
func (p *Pool) Run(ctx context.Context) {
	done := make(chan struct{}, p.cfg.WorkerCount)
	for i := 0; i < p.cfg.WorkerCount; i++ {
		go func(workerID int) {
			defer func() { done <- struct{}{} }()
			p.workerLoop(ctx, workerID)
		}(i)
	}
	for i := 0; i < p.cfg.WorkerCount; i++ {
		<-done
	}
}

func (p *Pool) workerLoop(ctx context.Context, workerID int) {
	for {
		if ctx.Err() != nil {
			return
		}
		task, ok, err := p.queue.Dequeue(ctx, p.cfg.PollTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			observability.LoggerWithTrace(ctx).Warn().Err(err).Int("worker", workerID).Msg("pipeline dequeue failed")
			continue
		}
		if !ok {
			continue // clean poll timeout, loop again
		}
		p.claimTracked(ctx, task)
	}
}

// claimTracked scopes the active-task gauge tightly around claim so it
// increments and decrements exactly once per dequeued task, regardless of
// which return path claim takes or whether its handler panics.
func (p *Pool) claimTracked(ctx context.Context, task domain.QueuedTask) {
	atomic.AddInt64(&p.active, 1)
	defer atomic.AddInt64(&p.active, -1)
	p.claim(ctx, task)
}

// ActiveCount returns the number of tasks currently being claimed across
// every worker, exact by construction rather than accumulated drift.
func (p *Pool) ActiveCount() int {
	return int(atomic.LoadInt64(&p.active))
}

// claim runs a task to completion, retrying with exponential backoff up
// to MaxAttempts total attempts when the task's priority is high and the
// handler returns any error; every other priority gets exactly one
// attempt before being recorded failed.
func (p *Pool) claim(ctx context.Context, task domain.QueuedTask) {
	handlerCtx, cancel := context.WithTimeout(ctx, taskTimeout)
	defer cancel()

	err := p.dispatch(handlerCtx, task)
	if err == nil {
		p.recordCompletion(ctx, task, true, "")
		return
	}

	if task.Priority != domain.PriorityHigh {
		p.recordCompletion(ctx, task, false, err.Error())
		return
	}

	for attempt := task.Attempt + 1; attempt < p.cfg.MaxAttempts; attempt++ {
		backoff := p.cfg.BaseBackoff * time.Duration(1<<uint(attempt-1))
		select {
		case <-time.After(backoff):
		case <-ctx.Done():
			return
		}

		task.Attempt = attempt
		retryCtx, retryCancel := context.WithTimeout(ctx, taskTimeout)
		err = p.dispatch(retryCtx, task)
		retryCancel()
		if err == nil {
			p.recordCompletion(ctx, task, true, "")
			return
		}
	}

	observability.LoggerForCall(ctx, task.CallID).Warn().Err(err).Msg("pipeline task exhausted retries, sending to DLQ")
	if dlqErr := p.queue.EnqueueDLQ(ctx, task, err); dlqErr != nil {
		observability.LoggerWithTrace(ctx).Error().Err(dlqErr).Msg("pipeline DLQ enqueue failed")
	}
	p.recordCompletion(ctx, task, false, err.Error())
}

func (p *Pool) dispatch(ctx context.Context, task domain.QueuedTask) error {
	payload, err := decodePayload(task.Payload)
	if err != nil {
		return fmt.Errorf("%w: decode task payload: %v", domain.ErrFatal, err)
	}
	if payload.State == nil {
		return fmt.Errorf("%w: task payload missing dialogue state", domain.ErrInputInvalid)
	}

	switch task.Type {
	case domain.TaskFullAnalysis:
		_, err := handleFullAnalysis(ctx, p.deps, task, payload.State, payload.Profile)
		return err
	case domain.TaskEffectiveness:
		_, err := handleEffectivenessEval(ctx, p.deps, task, payload.State, payload.Profile)
		return err
	case domain.TaskSummary:
		_, err := handleSummaryGeneration(ctx, p.deps, task, payload.State)
		return err
	case domain.TaskContentAnalysis:
		_, err := handleContentAnalysis(ctx, p.deps, task, payload.State)
		return err
	case domain.TaskTranscription:
		return handleTranscription(ctx, p.deps, task, payload.State)
	default:
		return fmt.Errorf("%w: unknown task type %q", domain.ErrInputInvalid, task.Type)
	}
}

// recordCompletion publishes a completion signal and, if the task
// belongs to a batch, updates the batch's counters.
func (p *Pool) recordCompletion(ctx context.Context, task domain.QueuedTask, success bool, errText string) {
	if p.deps.Queue != nil && p.deps.ResultsChannel != "" {
		_ = p.deps.Queue.Publish(ctx, p.deps.ResultsChannel, map[string]any{
			"call_id": task.CallID,
			"type":    task.Type,
			"success": success,
			"error":   errText,
		})
	}
	if p.batches != nil {
		p.batches.RecordCallCompletion(ctx, task.CallID, success)
	}
}
