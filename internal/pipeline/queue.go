package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"ninjaengine/internal/domain"

	"github.com/redis/go-redis/v9"
)

// errQueueFull is returned by Enqueue when the target queue is at its
// configured depth limit.
var errQueueFull = domain.ErrQueueFull

// Queue is the Redis-backed priority queue set: three lists (high/normal/
// low) dequeued with a blocking pop that checks high first, mirroring
// internal/cacheutil's thin-wrapper-over-go-redis style extended to list
// operations.
type Queue struct {
	client *redis.Client
	cfg    QueueKeys
}

// QueueKeys names the three priority list keys and the DLQ suffix.
type QueueKeys struct {
	High    string
	Normal  string
	Low     string
	DLQSuffix string
	DepthLimit int
}

// NewQueue wraps an already-connected shared Redis client.
func NewQueue(client *redis.Client, keys QueueKeys) *Queue {
	return &Queue{client: client, cfg: keys}
}

func (q *Queue) keyFor(p domain.Priority) string {
	switch p {
	case domain.PriorityHigh:
		return q.cfg.High
	case domain.PriorityLow:
		return q.cfg.Low
	default:
		return q.cfg.Normal
	}
}

// Enqueue serializes task and LPUSHes it onto its priority's list,
// rejecting the push with errQueueFull if the list is already at the
// configured depth limit.
func (q *Queue) Enqueue(ctx context.Context, task domain.QueuedTask) error {
	key := q.keyFor(task.Priority)

	if q.cfg.DepthLimit > 0 {
		length, err := q.client.LLen(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("%w: queue depth check: %v", domain.ErrTransient, err)
		}
		if int(length) >= q.cfg.DepthLimit {
			return fmt.Errorf("%w: queue %s at depth limit %d", errQueueFull, key, q.cfg.DepthLimit)
		}
	}

	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("%w: marshal task: %v", domain.ErrInputInvalid, err)
	}
	if err := q.client.LPush(ctx, key, data).Err(); err != nil {
		return fmt.Errorf("%w: lpush: %v", domain.ErrTransient, err)
	}
	return nil
}

// Dequeue blocks (up to timeout) on a high-first BRPOP across all three
// lists, returning the first task found. ok is false on a clean timeout.
func (q *Queue) Dequeue(ctx context.Context, timeout time.Duration) (domain.QueuedTask, bool, error) {
	keys := []string{q.cfg.High, q.cfg.Normal, q.cfg.Low}
	result, err := q.client.BRPop(ctx, timeout, keys...).Result()
	if err == redis.Nil {
		return domain.QueuedTask{}, false, nil
	}
	if err != nil {
		return domain.QueuedTask{}, false, fmt.Errorf("%w: brpop: %v", domain.ErrTransient, err)
	}

	// result[0] is the key that produced a value, result[1] is the payload.
	var task domain.QueuedTask
	if err := json.Unmarshal([]byte(result[1]), &task); err != nil {
		return domain.QueuedTask{}, false, fmt.Errorf("%w: unmarshal task: %v", domain.ErrFatal, err)
	}
	return task, true, nil
}

// EnqueueDLQ pushes a task that exhausted its retries onto the
// priority's dead-letter list.
func (q *Queue) EnqueueDLQ(ctx context.Context, task domain.QueuedTask, lastErr error) error {
	key := q.keyFor(task.Priority) + q.cfg.DLQSuffix
	envelope := struct {
		Task  domain.QueuedTask `json:"task"`
		Error string            `json:"error"`
	}{Task: task, Error: lastErr.Error()}
	data, err := json.Marshal(envelope)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, key, data).Err()
}

// Publish announces a task's completion on the results stream.
func (q *Queue) Publish(ctx context.Context, channel string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return q.client.Publish(ctx, channel, data).Err()
}
