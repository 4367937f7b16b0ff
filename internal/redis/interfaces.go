package redis

import (
	"context"
	"time"
)

// NotificationQueueInterface defines the interface for the notification job
// queue.
type NotificationQueueInterface interface {
	Push(ctx context.Context, job *NotificationJob) (bool, error)
	Pop(ctx context.Context, timeout time.Duration) (*NotificationJob, error)
	DeadLetter(ctx context.Context, job *NotificationJob) error
}

// LockStoreInterface defines the interface for distributed locking.
type LockStoreInterface interface {
	AcquireOrderLock(ctx context.Context, orderID string, ttl time.Duration) (bool, error)
	ReleaseOrderLock(ctx context.Context, orderID string) error
}

// Ensure concrete types implement interfaces.
var (
	_ NotificationQueueInterface = (*NotificationQueue)(nil)
	_ LockStoreInterface         = (*LockStore)(nil)
)
