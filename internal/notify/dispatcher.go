package notify

import (
	"context"
	"sync"
	"time"

	"dispatch/internal/domain"
	"dispatch/internal/logger"
	internalredis "dispatch/internal/redis"
)

// Deliverer sends an assembled snapshot to a bot service.
type Deliverer interface {
	Deliver(ctx context.Context, target internalredis.NotificationTarget, snapshot *Snapshot) error
}

const (
	popTimeout    = 2 * time.Second
	orderLockTTL  = 30 * time.Second
	lockRetryWait = 100 * time.Millisecond
	lockAttempts  = 50
)

// Dispatcher fans order snapshots out to the driver-bot and passenger-bot
// services. Enqueue is non-blocking; delivery happens on a background worker
// pool consuming the durable Redis queue.
type Dispatcher struct {
	queue     internalredis.NotificationQueueInterface
	locks     internalredis.LockStoreInterface
	snapshots *SnapshotBuilder
	client    Deliverer
	log       logger.Logger
	workers   int

	wg sync.WaitGroup
}

// NewDispatcher creates a new Dispatcher with the given worker count.
func NewDispatcher(
	queue internalredis.NotificationQueueInterface,
	locks internalredis.LockStoreInterface,
	snapshots *SnapshotBuilder,
	client Deliverer,
	log logger.Logger,
	workers int,
) *Dispatcher {
	if workers <= 0 {
		workers = 4
	}
	return &Dispatcher{
		queue:     queue,
		locks:     locks,
		snapshots: snapshots,
		client:    client,
		log:       log,
		workers:   workers,
	}
}

// Enqueue queues a snapshot delivery for the order. It never blocks on
// network I/O toward the bot services and absorbs queue errors: a failed
// enqueue is logged, not surfaced to the triggering request.
func (d *Dispatcher) Enqueue(ctx context.Context, target internalredis.NotificationTarget, orderID string, status domain.OrderStatus) {
	job := &internalredis.NotificationJob{
		OrderID: orderID,
		Target:  target,
		Status:  string(status),
	}

	// A false push result means the idempotency key was already seen and the
	// earlier job covers this (order, status, target).
	if _, err := d.queue.Push(ctx, job); err != nil {
		d.log.Error("enqueue notification",
			logger.String("order_id", orderID),
			logger.String("target", string(target)),
			logger.Error(err),
		)
	}
}

// OnOrderTransitioned selects notification targets from the resulting status
// of a committed transition. Orders without a driver notify nobody.
func (d *Dispatcher) OnOrderTransitioned(ctx context.Context, event domain.OrderTransitioned) {
	if event.DriverID == "" {
		return
	}

	switch event.NewStatus {
	case domain.OrderStatusAssigned, domain.OrderStatusArrived, domain.OrderStatusEnded:
		d.Enqueue(ctx, internalredis.TargetPassenger, event.OrderID, event.NewStatus)
	case domain.OrderStatusStarted:
		d.Enqueue(ctx, internalredis.TargetDriver, event.OrderID, event.NewStatus)
	}
}

// Start launches the worker pool. Workers run until ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go func() {
			defer d.wg.Done()
			d.run(ctx)
		}()
	}
}

// Wait blocks until all workers have exited.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) run(ctx context.Context) {
	for {
		if ctx.Err() != nil {
			return
		}

		job, err := d.queue.Pop(ctx, popTimeout)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			d.log.Error("pop notification job", logger.Error(err))
			continue
		}
		if job == nil {
			continue
		}

		d.handle(ctx, job)
	}
}

// handle delivers one job. The per-order lock keeps deliveries for the same
// order sequential even across workers; consumers additionally get the seq
// number to discard stale snapshots.
func (d *Dispatcher) handle(ctx context.Context, job *internalredis.NotificationJob) {
	if !d.acquireOrderLock(ctx, job.OrderID) {
		d.deadLetter(ctx, job, "order delivery lock not acquired")
		return
	}
	defer func() {
		_ = d.locks.ReleaseOrderLock(ctx, job.OrderID)
	}()

	snapshot, err := d.snapshots.Build(ctx, job.OrderID, job.Seq)
	if err != nil {
		d.deadLetter(ctx, job, err.Error())
		return
	}

	if err := d.client.Deliver(ctx, job.Target, snapshot); err != nil {
		d.deadLetter(ctx, job, err.Error())
		return
	}

	d.log.Info("notification delivered",
		logger.String("order_id", job.OrderID),
		logger.String("target", string(job.Target)),
		logger.String("status", job.Status),
		logger.Int64("seq", job.Seq),
	)
}

func (d *Dispatcher) acquireOrderLock(ctx context.Context, orderID string) bool {
	for attempt := 0; attempt < lockAttempts; attempt++ {
		ok, err := d.locks.AcquireOrderLock(ctx, orderID, orderLockTTL)
		if err != nil {
			d.log.Error("acquire order lock", logger.String("order_id", orderID), logger.Error(err))
			return false
		}
		if ok {
			return true
		}

		select {
		case <-ctx.Done():
			return false
		case <-time.After(lockRetryWait):
		}
	}
	return false
}

func (d *Dispatcher) deadLetter(ctx context.Context, job *internalredis.NotificationJob, reason string) {
	d.log.Error("notification delivery failed",
		logger.String("order_id", job.OrderID),
		logger.String("target", string(job.Target)),
		logger.String("status", job.Status),
		logger.String("reason", reason),
	)

	if err := d.queue.DeadLetter(ctx, job); err != nil {
		d.log.Error("dead-letter notification job",
			logger.String("order_id", job.OrderID),
			logger.Error(err),
		)
	}
}
