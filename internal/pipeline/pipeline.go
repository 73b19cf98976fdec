package pipeline

import (
	"context"
	"sync"
	"time"

	"ninjaengine/internal/domain"
	"ninjaengine/internal/evaluator"
	"ninjaengine/internal/observability"
)

// shutdownGrace bounds how long Stop waits for in-flight tasks to finish
// before returning, per spec.md §5's cooperative-shutdown requirement.
const shutdownGrace = 20 * time.Second

// Pipeline wires the queue, worker pool, and batch tracker together and
// exposes the post-call surface external callers need: Enqueue for a
// single call, EnqueueBatch for a group.
type Pipeline struct {
	Queue   *Queue
	Pool    *Pool
	Batches *BatchTracker

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds a Pipeline from its collaborators.
func New(queue *Queue, deps Dependencies, cfg WorkerConfig) *Pipeline {
	batches := NewBatchTracker()
	pool := NewPool(queue, deps, cfg, batches)
	return &Pipeline{Queue: queue, Pool: pool, Batches: batches}
}

// Start launches the worker pool in the background. Call Stop to shut it
// down cooperatively.
func (p *Pipeline) Start(ctx context.Context) {
	runCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		p.Pool.Run(runCtx)
	}()
}

// Stop cancels the worker pool and waits up to shutdownGrace for workers
// to finish their current task before returning.
func (p *Pipeline) Stop() {
	if p.cancel == nil {
		return
	}
	p.cancel()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(shutdownGrace):
		observability.LoggerWithTrace(context.Background()).Warn().Msg("pipeline shutdown grace window elapsed, workers may still be running")
	}
}

// EnqueueFullAnalysis queues a single call's full_analysis task. The
// conversation manager's call-end path does not call it.
func (p *Pipeline) EnqueueFullAnalysis(ctx context.Context, callID string, state *domain.DialogueState, profile evaluator.UserProfileSnapshot, priority domain.Priority) error {
	data, err := encodePayload(TaskPayload{State: state, Profile: profile})
	if err != nil {
		return err
	}
	return p.Queue.Enqueue(ctx, domain.QueuedTask{
		TaskID:     callID + ":full_analysis",
		CallID:     callID,
		Type:       domain.TaskFullAnalysis,
		Priority:   priority,
		Payload:    data,
		EnqueuedAt: time.Now(),
	})
}

// EnqueueBatch registers and enqueues a batch job's member tasks.
func (p *Pipeline) EnqueueBatch(ctx context.Context, job domain.BatchJob, priority domain.Priority, profileFor func(callID string) evaluator.UserProfileSnapshot, stateFor func(callID string) *domain.DialogueState) error {
	return p.Batches.Submit(ctx, p.Queue, job, priority, func(callID string) (TaskPayload, error) {
		return TaskPayload{State: stateFor(callID), Profile: profileFor(callID)}, nil
	})
}
