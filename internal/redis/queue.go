package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// NotificationTarget selects which bot service receives an order snapshot.
type NotificationTarget string

const (
	TargetDriver    NotificationTarget = "driver"
	TargetPassenger NotificationTarget = "passenger"
)

// NotificationJob is a single queued snapshot delivery.
type NotificationJob struct {
	OrderID    string             `json:"order_id"`
	Target     NotificationTarget `json:"target"`
	Status     string             `json:"status"`
	Seq        int64              `json:"seq"`
	EnqueuedAt time.Time          `json:"enqueued_at"`
}

// IdempotencyKey identifies a notification uniquely per (order, status,
// target) so redelivery cannot double-notify.
func (j *NotificationJob) IdempotencyKey() string {
	return fmt.Sprintf("%s:%s:%s", j.OrderID, j.Status, j.Target)
}

const (
	notifyQueueKey      = "notify:queue"
	notifyDeadLetterKey = "notify:dead"
	notifyDedupPrefix   = "notify:dedup:"
	notifySeqPrefix     = "notify:seq:"

	dedupTTL = 24 * time.Hour
)

// NotificationQueue is a durable Redis-list-backed job queue for outbound
// notifications.
type NotificationQueue struct {
	client *redis.Client
}

// NewNotificationQueue creates a new NotificationQueue.
func NewNotificationQueue(client *redis.Client) *NotificationQueue {
	return &NotificationQueue{client: client}
}

// Push enqueues a job. Returns false when a job with the same idempotency key
// was already enqueued recently. The job is stamped with a per-order sequence
// number so consumers can discard stale snapshots.
func (q *NotificationQueue) Push(ctx context.Context, job *NotificationJob) (bool, error) {
	dedupKey := notifyDedupPrefix + job.IdempotencyKey()
	fresh, err := q.client.SetNX(ctx, dedupKey, "1", dedupTTL).Result()
	if err != nil {
		return false, err
	}
	if !fresh {
		return false, nil
	}

	seq, err := q.client.Incr(ctx, notifySeqPrefix+job.OrderID).Result()
	if err != nil {
		return false, err
	}
	job.Seq = seq

	if job.EnqueuedAt.IsZero() {
		job.EnqueuedAt = time.Now().UTC()
	}

	data, err := json.Marshal(job)
	if err != nil {
		return false, err
	}

	if err := q.client.LPush(ctx, notifyQueueKey, data).Err(); err != nil {
		return false, err
	}

	return true, nil
}

// Pop blocks up to timeout waiting for the next job. Returns (nil, nil) when
// the timeout elapses with an empty queue.
func (q *NotificationQueue) Pop(ctx context.Context, timeout time.Duration) (*NotificationJob, error) {
	result, err := q.client.BRPop(ctx, timeout, notifyQueueKey).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, err
	}

	// BRPOP returns [key, value].
	var job NotificationJob
	if err := json.Unmarshal([]byte(result[1]), &job); err != nil {
		return nil, fmt.Errorf("decode notification job: %w", err)
	}

	return &job, nil
}

// DeadLetter parks a job whose delivery attempts are exhausted.
func (q *NotificationQueue) DeadLetter(ctx context.Context, job *NotificationJob) error {
	data, err := json.Marshal(job)
	if err != nil {
		return err
	}
	return q.client.LPush(ctx, notifyDeadLetterKey, data).Err()
}

// DeadLetterLength returns the number of parked jobs.
func (q *NotificationQueue) DeadLetterLength(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, notifyDeadLetterKey).Result()
}

// Length returns the number of pending jobs.
func (q *NotificationQueue) Length(ctx context.Context) (int64, error) {
	return q.client.LLen(ctx, notifyQueueKey).Result()
}
