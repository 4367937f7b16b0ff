package notify

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	internalredis "dispatch/internal/redis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testClient(driverURL, passengerURL string) *BotClient {
	return NewBotClient(ClientConfig{
		DriverBaseURL:    driverURL,
		PassengerBaseURL: passengerURL,
		RequestTimeout:   time.Second,
		MaxAttempts:      3,
		RetryBackoff:     time.Millisecond,
	})
}

func TestBotClient_DeliverRoutesByTarget(t *testing.T) {
	var driverHits, passengerHits int32

	driverSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&driverHits, 1)
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/driver", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.Write([]byte(`{"ok":true}`))
	}))
	defer driverSrv.Close()

	passengerSrv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&passengerHits, 1)
		assert.Equal(t, "/passenger", r.URL.Path)
		w.Write([]byte(`{"ok":true}`))
	}))
	defer passengerSrv.Close()

	client := testClient(driverSrv.URL, passengerSrv.URL)
	snapshot := &Snapshot{ID: "ord-1", Status: "started"}

	require.NoError(t, client.Deliver(context.Background(), internalredis.TargetDriver, snapshot))
	require.NoError(t, client.Deliver(context.Background(), internalredis.TargetPassenger, snapshot))

	assert.Equal(t, int32(1), atomic.LoadInt32(&driverHits))
	assert.Equal(t, int32(1), atomic.LoadInt32(&passengerHits))
}

func TestBotClient_NoContentIsSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	client := testClient(srv.URL, srv.URL)
	err := client.Deliver(context.Background(), internalredis.TargetDriver, &Snapshot{ID: "ord-1"})
	assert.NoError(t, err)
}

func TestBotClient_RetriesTransientFailures(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&hits, 1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{}`))
	}))
	defer srv.Close()

	client := testClient(srv.URL, srv.URL)
	err := client.Deliver(context.Background(), internalredis.TargetPassenger, &Snapshot{ID: "ord-1"})
	require.NoError(t, err)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestBotClient_ExhaustedRetriesFail(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := testClient(srv.URL, srv.URL)
	err := client.Deliver(context.Background(), internalredis.TargetDriver, &Snapshot{ID: "ord-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDeliveryFailed)
	assert.Equal(t, int32(3), atomic.LoadInt32(&hits))
}

func TestBotClient_ClientErrorsDoNotRetry(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	client := testClient(srv.URL, srv.URL)
	err := client.Deliver(context.Background(), internalredis.TargetPassenger, &Snapshot{ID: "ord-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDeliveryFailed)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "4xx responses are permanent failures")
}

func TestBotClient_NonJSONBodyFails(t *testing.T) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		w.Write([]byte("<html>ok</html>"))
	}))
	defer srv.Close()

	client := testClient(srv.URL, srv.URL)
	err := client.Deliver(context.Background(), internalredis.TargetDriver, &Snapshot{ID: "ord-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDeliveryFailed)
	assert.Equal(t, int32(1), atomic.LoadInt32(&hits))
}

func TestBotClient_UnknownTargetRejected(t *testing.T) {
	client := testClient("http://localhost:1", "http://localhost:1")
	err := client.Deliver(context.Background(), internalredis.NotificationTarget("admin"), &Snapshot{ID: "ord-1"})
	assert.Error(t, err)
}

func TestBotClient_CancelledContextStopsRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := testClient(srv.URL, srv.URL)
	err := client.Deliver(ctx, internalredis.TargetDriver, &Snapshot{ID: "ord-1"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
