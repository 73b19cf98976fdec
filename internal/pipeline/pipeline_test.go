package pipeline

import (
	"context"
	"testing"
	"time"

	"ninjaengine/internal/cacheutil"
	"ninjaengine/internal/domain"
	"ninjaengine/internal/evaluator"

	"github.com/alicebob/miniredis/v2"
	redis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newTestQueue(t *testing.T) (*Queue, *redis.Client) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	keys := QueueKeys{High: "q:high", Normal: "q:normal", Low: "q:low", DLQSuffix: ":dlq", DepthLimit: 10}
	return NewQueue(client, keys), client
}

func sampleState(callID string) *domain.DialogueState {
	return &domain.DialogueState{
		CallID:        callID,
		Stage:         domain.StageHandlingSales,
		TurnCount:     3,
		IntentHistory: []string{"sales_pitch", "sales_pitch", "objection"},
		KeyPoints:     []string{"offered discount"},
		Turns: []domain.TurnRecord{
			{Speaker: domain.SpeakerCaller, Text: "hi"},
			{Speaker: domain.SpeakerAI, Text: "not interested"},
		},
	}
}

func TestQueueEnqueueDequeuePriorityOrder(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, domain.QueuedTask{CallID: "low-1", Priority: domain.PriorityLow}))
	require.NoError(t, q.Enqueue(ctx, domain.QueuedTask{CallID: "high-1", Priority: domain.PriorityHigh}))
	require.NoError(t, q.Enqueue(ctx, domain.QueuedTask{CallID: "normal-1", Priority: domain.PriorityNormal}))

	task, ok, err := q.Dequeue(ctx, time.Second)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, "high-1", task.CallID, "high priority must dequeue before normal/low")
}

func TestQueueEnqueueRejectsAtDepthLimit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	q := NewQueue(client, QueueKeys{High: "q:high", Normal: "q:normal", Low: "q:low", DLQSuffix: ":dlq", DepthLimit: 1})
	ctx := context.Background()

	require.NoError(t, q.Enqueue(ctx, domain.QueuedTask{CallID: "a", Priority: domain.PriorityNormal}))
	err := q.Enqueue(ctx, domain.QueuedTask{CallID: "b", Priority: domain.PriorityNormal})
	require.ErrorIs(t, err, domain.ErrQueueFull)
}

func TestQueueDequeueTimeoutReturnsNoError(t *testing.T) {
	q, _ := newTestQueue(t)
	ctx := context.Background()

	_, ok, err := q.Dequeue(ctx, 50*time.Millisecond)
	require.NoError(t, err)
	require.False(t, ok)
}

func TestAnalysisCacheHasAllRequiresEveryType(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	cache := NewAnalysisCache(cacheutil.NewRedis(client), time.Minute)
	ctx := context.Background()

	require.False(t, cache.HasAll(ctx, "call-1", []string{"content", "effectiveness"}))

	require.NoError(t, cache.Set(ctx, "call-1", "content", ContentAnalysis{DominantCategory: "sales_pitch"}))
	require.False(t, cache.HasAll(ctx, "call-1", []string{"content", "effectiveness"}))

	require.NoError(t, cache.Set(ctx, "call-1", "effectiveness", evaluator.Result{Overall: 0.7}))
	require.True(t, cache.HasAll(ctx, "call-1", []string{"content", "effectiveness"}))
}

func TestHandleFullAnalysisUsesCacheShortCircuit(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	cache := NewAnalysisCache(cacheutil.NewRedis(client), time.Minute)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "call-1", "content", ContentAnalysis{DominantCategory: "cached_category"}))
	require.NoError(t, cache.Set(ctx, "call-1", "effectiveness", evaluator.Result{Overall: 0.9}))
	require.NoError(t, cache.Set(ctx, "call-1", "summary", "cached summary"))

	deps := Dependencies{Cache: cache}
	task := domain.QueuedTask{CallID: "call-1", Type: domain.TaskFullAnalysis}
	state := sampleState("call-1")

	result, err := handleFullAnalysis(ctx, deps, task, state, evaluator.UserProfileSnapshot{})
	require.NoError(t, err)
	require.Equal(t, "cached_category", result.Content.DominantCategory)
	require.Equal(t, 0.9, result.Effectiveness.Overall)
	require.Equal(t, "cached summary", result.Summary)
}

func TestHandleFullAnalysisComputesWhenUncached(t *testing.T) {
	deps := Dependencies{}
	task := domain.QueuedTask{CallID: "call-2", Type: domain.TaskFullAnalysis}
	state := sampleState("call-2")

	result, err := handleFullAnalysis(context.Background(), deps, task, state, evaluator.UserProfileSnapshot{})
	require.NoError(t, err)
	require.Equal(t, "sales_pitch", result.Content.DominantCategory)
	require.Equal(t, []string{"offered discount"}, result.Content.KeyPoints)
}

func TestPoolActiveCountReturnsToZeroAfterDraining(t *testing.T) {
	q, _ := newTestQueue(t)
	state := sampleState("call-active")
	payload, err := encodePayload(TaskPayload{State: state})
	require.NoError(t, err)
	task := domain.QueuedTask{CallID: "call-active", Type: domain.TaskContentAnalysis, Priority: domain.PriorityNormal, Payload: payload}
	require.NoError(t, q.Enqueue(context.Background(), task))

	pool := NewPool(q, Dependencies{}, WorkerConfig{WorkerCount: 1, PollTimeout: 50 * time.Millisecond}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	pool.Run(ctx)

	require.Equal(t, 0, pool.ActiveCount(), "active count must return to zero once every claimed task finishes")
}

func TestPoolRecordsSuccessForContentAnalysisTask(t *testing.T) {
	q, _ := newTestQueue(t)
	state := sampleState("call-3")
	payload, err := encodePayload(TaskPayload{State: state})
	require.NoError(t, err)

	task := domain.QueuedTask{CallID: "call-3", Type: domain.TaskContentAnalysis, Priority: domain.PriorityNormal, Payload: payload}
	require.NoError(t, q.Enqueue(context.Background(), task))

	// A one-member batch makes the pool's success record observable.
	batches := NewBatchTracker()
	batches.jobs["batch-3"] = &domain.BatchJob{BatchID: "batch-3", CallIDs: []string{"call-3"}}
	batches.callToBatch["call-3"] = "batch-3"

	pool := NewPool(q, Dependencies{}, WorkerConfig{WorkerCount: 1, PollTimeout: 100 * time.Millisecond}, batches)
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	pool.Run(ctx)

	job, ok := batches.Status("batch-3")
	require.True(t, ok)
	require.Equal(t, []string{"call-3"}, job.Completed)
}

func TestPoolRecordsSuccessForTranscriptionTask(t *testing.T) {
	q, _ := newTestQueue(t)
	state := sampleState("call-6")
	payload, err := encodePayload(TaskPayload{State: state})
	require.NoError(t, err)

	task := domain.QueuedTask{CallID: "call-6", Type: domain.TaskTranscription, Priority: domain.PriorityNormal, Payload: payload}
	require.NoError(t, q.Enqueue(context.Background(), task))

	// A one-member batch makes the pool's success record observable.
	batches := NewBatchTracker()
	batches.jobs["batch-6"] = &domain.BatchJob{BatchID: "batch-6", CallIDs: []string{"call-6"}}
	batches.callToBatch["call-6"] = "batch-6"

	pool := NewPool(q, Dependencies{}, WorkerConfig{WorkerCount: 1, PollTimeout: 100 * time.Millisecond}, batches)
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	pool.Run(ctx)

	job, ok := batches.Status("batch-6")
	require.True(t, ok)
	require.Equal(t, []string{"call-6"}, job.Completed)
}

func TestPoolRetriesHighPriorityOnFailureThenDLQs(t *testing.T) {
	q, _ := newTestQueue(t)
	// Malformed payload makes dispatch fail deterministically on every attempt.
	task := domain.QueuedTask{CallID: "call-4", Type: domain.TaskFullAnalysis, Priority: domain.PriorityHigh, Payload: []byte("not-json")}
	require.NoError(t, q.Enqueue(context.Background(), task))

	pool := NewPool(q, Dependencies{}, WorkerConfig{WorkerCount: 1, MaxAttempts: 2, BaseBackoff: time.Millisecond, PollTimeout: 50 * time.Millisecond}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()
	pool.Run(ctx)

	dlqLen, err := q.client.LLen(context.Background(), q.cfg.High+q.cfg.DLQSuffix).Result()
	require.NoError(t, err)
	require.Equal(t, int64(1), dlqLen, "exhausted high-priority retries should land in the DLQ")
}

func TestPoolDoesNotRetryNormalPriorityOnFailure(t *testing.T) {
	q, _ := newTestQueue(t)
	task := domain.QueuedTask{CallID: "call-5", Type: domain.TaskFullAnalysis, Priority: domain.PriorityNormal, Payload: []byte("not-json")}
	require.NoError(t, q.Enqueue(context.Background(), task))

	pool := NewPool(q, Dependencies{}, WorkerConfig{WorkerCount: 1, MaxAttempts: 3, BaseBackoff: time.Millisecond, PollTimeout: 50 * time.Millisecond}, nil)
	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()
	pool.Run(ctx)

	dlqLen, err := q.client.LLen(context.Background(), q.cfg.Normal+q.cfg.DLQSuffix).Result()
	require.NoError(t, err)
	require.Equal(t, int64(0), dlqLen, "normal priority tasks are recorded failed without a DLQ retry")
}

func TestBatchTrackerFiresCallbackOnlyWhenAllMembersDone(t *testing.T) {
	tracker := NewBatchTracker()
	job := domain.BatchJob{BatchID: "b1", CallIDs: []string{"c1", "c2"}}
	tracker.jobs["b1"] = &job
	tracker.callToBatch["c1"] = "b1"
	tracker.callToBatch["c2"] = "b1"

	tracker.RecordCallCompletion(context.Background(), "c1", true)
	status, ok := tracker.Status("b1")
	require.True(t, ok)
	require.False(t, status.Done)

	tracker.RecordCallCompletion(context.Background(), "c2", false)
	status, ok = tracker.Status("b1")
	require.True(t, ok)
	require.True(t, status.Done)
	require.Equal(t, []string{"c1"}, status.Completed)
	require.Equal(t, []string{"c2"}, status.Failed)
}

func TestBatchTrackerSubmitEnqueuesOnePerCallID(t *testing.T) {
	q, _ := newTestQueue(t)
	tracker := NewBatchTracker()
	job := domain.BatchJob{BatchID: "b2", CallIDs: []string{"x1", "x2", "x3"}}

	err := tracker.Submit(context.Background(), q, job, domain.PriorityLow, func(callID string) (TaskPayload, error) {
		return TaskPayload{State: sampleState(callID)}, nil
	})
	require.NoError(t, err)

	length, err := q.client.LLen(context.Background(), q.cfg.Low).Result()
	require.NoError(t, err)
	require.Equal(t, int64(3), length)
}
