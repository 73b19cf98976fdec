package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"ninjaengine/internal/domain"
	"ninjaengine/internal/observability"
)

// BatchTracker tracks in-flight BatchJobs and fires each job's callback
// once, when every member call has either completed or failed.
// Batch jobs enqueue one full_analysis task per member call id at the
// job's configured priority, inheriting that priority's backpressure.
type BatchTracker struct {
	mu   sync.Mutex
	jobs map[string]*domain.BatchJob
	// callToBatch maps a call id back to the batch it belongs to, so a
	// worker finishing an individual task can find its parent job.
	callToBatch map[string]string

	httpClient *http.Client
}

// NewBatchTracker builds an empty tracker.
func NewBatchTracker() *BatchTracker {
	return &BatchTracker{
		jobs:        make(map[string]*domain.BatchJob),
		callToBatch: make(map[string]string),
		httpClient:  &http.Client{Timeout: 10 * time.Second},
	}
}

// Submit registers a new batch job and enqueues one full_analysis task
// per call id onto queue at priority. It stops and returns the error at
// the first member that cannot be encoded or enqueued.
func (t *BatchTracker) Submit(ctx context.Context, queue *Queue, job domain.BatchJob, priority domain.Priority, payloadFor func(callID string) (TaskPayload, error)) error {
	t.mu.Lock()
	t.jobs[job.BatchID] = &job
	for _, callID := range job.CallIDs {
		t.callToBatch[callID] = job.BatchID
	}
	t.mu.Unlock()

	for _, callID := range job.CallIDs {
		payload, err := payloadFor(callID)
		if err != nil {
			return fmt.Errorf("%w: build payload for call %s: %v", domain.ErrInputInvalid, callID, err)
		}
		data, err := encodePayload(payload)
		if err != nil {
			return fmt.Errorf("%w: encode payload for call %s: %v", domain.ErrInputInvalid, callID, err)
		}
		task := domain.QueuedTask{
			TaskID:     job.BatchID + ":" + callID,
			CallID:     callID,
			Type:       domain.TaskFullAnalysis,
			Priority:   priority,
			Payload:    data,
			EnqueuedAt: job.CreatedAt,
		}
		if err := queue.Enqueue(ctx, task); err != nil {
			return fmt.Errorf("enqueue batch member %s: %w", callID, err)
		}
	}
	return nil
}

// RecordCallCompletion folds one call's outcome into its parent batch (if
// any), invoking the batch's callback once every member has finished.
func (t *BatchTracker) RecordCallCompletion(ctx context.Context, callID string, success bool) {
	t.mu.Lock()
	batchID, belongs := t.callToBatch[callID]
	if !belongs {
		t.mu.Unlock()
		return
	}
	job, ok := t.jobs[batchID]
	if !ok {
		t.mu.Unlock()
		return
	}
	if success {
		job.Completed = append(job.Completed, callID)
	} else {
		job.Failed = append(job.Failed, callID)
	}
	remaining := job.Remaining()
	var callbackJob domain.BatchJob
	fireCallback := remaining == 0 && !job.Done
	if fireCallback {
		job.Done = true
		callbackJob = *job
	}
	t.mu.Unlock()

	if fireCallback {
		t.invokeCallback(ctx, callbackJob)
	}
}

// invokeCallback posts the finished batch job to its CallbackURL once;
// a delivery failure or non-2xx response is logged and not retried.
func (t *BatchTracker) invokeCallback(ctx context.Context, job domain.BatchJob) {
	if job.CallbackURL == "" {
		return
	}
	body, err := json.Marshal(job)
	if err != nil {
		observability.LoggerWithTrace(ctx).Error().Err(err).Str("batch_id", job.BatchID).Msg("batch callback marshal failed")
		return
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, job.CallbackURL, strings.NewReader(string(body)))
	if err != nil {
		observability.LoggerWithTrace(ctx).Error().Err(err).Str("batch_id", job.BatchID).Msg("batch callback request build failed")
		return
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.httpClient.Do(req)
	if err != nil {
		observability.LoggerWithTrace(ctx).Warn().Err(err).Str("batch_id", job.BatchID).Msg("batch callback delivery failed")
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)
	if resp.StatusCode >= 300 {
		observability.LoggerWithTrace(ctx).Warn().Int("status", resp.StatusCode).Str("batch_id", job.BatchID).Msg("batch callback non-2xx response")
	}
}

// Status returns a snapshot of a tracked batch job, or false if unknown.
func (t *BatchTracker) Status(batchID string) (domain.BatchJob, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	job, ok := t.jobs[batchID]
	if !ok {
		return domain.BatchJob{}, false
	}
	return *job, true
}
