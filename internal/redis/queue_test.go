package redis_test

import (
	"context"
	"testing"
	"time"

	redisstore "dispatch/internal/redis"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T) *goredis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestNotificationQueue_PushStampsSequence(t *testing.T) {
	queue := redisstore.NewNotificationQueue(newTestClient(t))
	ctx := context.Background()

	first := &redisstore.NotificationJob{OrderID: "ord-1", Target: redisstore.TargetPassenger, Status: "assigned"}
	fresh, err := queue.Push(ctx, first)
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, int64(1), first.Seq)
	assert.False(t, first.EnqueuedAt.IsZero())

	second := &redisstore.NotificationJob{OrderID: "ord-1", Target: redisstore.TargetDriver, Status: "started"}
	fresh, err = queue.Push(ctx, second)
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, int64(2), second.Seq)

	other := &redisstore.NotificationJob{OrderID: "ord-2", Target: redisstore.TargetPassenger, Status: "assigned"}
	fresh, err = queue.Push(ctx, other)
	require.NoError(t, err)
	assert.True(t, fresh)
	assert.Equal(t, int64(1), other.Seq, "sequence counters are per order")
}

func TestNotificationQueue_PushSuppressesDuplicates(t *testing.T) {
	queue := redisstore.NewNotificationQueue(newTestClient(t))
	ctx := context.Background()

	job := &redisstore.NotificationJob{OrderID: "ord-1", Target: redisstore.TargetPassenger, Status: "assigned"}
	fresh, err := queue.Push(ctx, job)
	require.NoError(t, err)
	require.True(t, fresh)

	dup := &redisstore.NotificationJob{OrderID: "ord-1", Target: redisstore.TargetPassenger, Status: "assigned"}
	fresh, err = queue.Push(ctx, dup)
	require.NoError(t, err)
	assert.False(t, fresh)

	length, err := queue.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), length)

	// Same order and status toward the other bot is a distinct delivery.
	cross := &redisstore.NotificationJob{OrderID: "ord-1", Target: redisstore.TargetDriver, Status: "assigned"}
	fresh, err = queue.Push(ctx, cross)
	require.NoError(t, err)
	assert.True(t, fresh)
}

func TestNotificationQueue_PopRoundTrip(t *testing.T) {
	queue := redisstore.NewNotificationQueue(newTestClient(t))
	ctx := context.Background()

	pushed := &redisstore.NotificationJob{OrderID: "ord-9", Target: redisstore.TargetDriver, Status: "started"}
	_, err := queue.Push(ctx, pushed)
	require.NoError(t, err)

	popped, err := queue.Pop(ctx, time.Second)
	require.NoError(t, err)
	require.NotNil(t, popped)
	assert.Equal(t, "ord-9", popped.OrderID)
	assert.Equal(t, redisstore.TargetDriver, popped.Target)
	assert.Equal(t, "started", popped.Status)
	assert.Equal(t, pushed.Seq, popped.Seq)
}

func TestNotificationQueue_PopOrdersFIFO(t *testing.T) {
	queue := redisstore.NewNotificationQueue(newTestClient(t))
	ctx := context.Background()

	for _, status := range []string{"assigned", "arrived", "started"} {
		_, err := queue.Push(ctx, &redisstore.NotificationJob{OrderID: "ord-1", Target: redisstore.TargetPassenger, Status: status})
		require.NoError(t, err)
	}

	for _, want := range []string{"assigned", "arrived", "started"} {
		job, err := queue.Pop(ctx, time.Second)
		require.NoError(t, err)
		require.NotNil(t, job)
		assert.Equal(t, want, job.Status)
	}
}

func TestNotificationQueue_DeadLetter(t *testing.T) {
	queue := redisstore.NewNotificationQueue(newTestClient(t))
	ctx := context.Background()

	job := &redisstore.NotificationJob{OrderID: "ord-1", Target: redisstore.TargetPassenger, Status: "assigned", Seq: 3}
	require.NoError(t, queue.DeadLetter(ctx, job))
	require.NoError(t, queue.DeadLetter(ctx, &redisstore.NotificationJob{OrderID: "ord-2", Target: redisstore.TargetDriver, Status: "started", Seq: 1}))

	parked, err := queue.DeadLetterLength(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), parked)

	length, err := queue.Length(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(0), length, "dead letters never re-enter the live queue")
}

func TestLockStore_AcquireAndRelease(t *testing.T) {
	store := redisstore.NewLockStore(newTestClient(t))
	ctx := context.Background()

	ok, err := store.AcquireOrderLock(ctx, "ord-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.AcquireOrderLock(ctx, "ord-1", time.Minute)
	require.NoError(t, err)
	assert.False(t, ok, "second acquisition must fail while held")

	ok, err = store.AcquireOrderLock(ctx, "ord-2", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok, "locks are scoped per order")

	require.NoError(t, store.ReleaseOrderLock(ctx, "ord-1"))

	ok, err = store.AcquireOrderLock(ctx, "ord-1", time.Minute)
	require.NoError(t, err)
	assert.True(t, ok)
}
