package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	internalredis "dispatch/internal/redis"
)

// ErrDeliveryFailed marks a notification that could not be delivered after
// the configured number of attempts.
var ErrDeliveryFailed = errors.New("notification delivery failed")

// ClientConfig configures the bot HTTP client. Base URLs are injected at
// construction; there is no ambient configuration.
type ClientConfig struct {
	DriverBaseURL    string
	PassengerBaseURL string
	RequestTimeout   time.Duration
	MaxAttempts      int
	RetryBackoff     time.Duration
}

// BotClient delivers order snapshots to the driver-bot and passenger-bot
// services.
type BotClient struct {
	session *http.Client
	cfg     ClientConfig
}

// NewBotClient creates a new BotClient with a bounded request timeout.
func NewBotClient(cfg ClientConfig) *BotClient {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 10 * time.Second
	}
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 4
	}
	if cfg.RetryBackoff <= 0 {
		cfg.RetryBackoff = 200 * time.Millisecond
	}

	return &BotClient{
		session: &http.Client{Timeout: cfg.RequestTimeout},
		cfg:     cfg,
	}
}

// Deliver POSTs a snapshot to the target bot service, retrying transient
// failures with exponential backoff. A 2xx response with a JSON body (204
// counts as empty JSON) is success; anything else is a failure.
func (c *BotClient) Deliver(ctx context.Context, target internalredis.NotificationTarget, snapshot *Snapshot) error {
	body, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}

	url, err := c.endpointFor(target)
	if err != nil {
		return err
	}

	return c.doWithRetry(ctx, url, body)
}

func (c *BotClient) endpointFor(target internalredis.NotificationTarget) (string, error) {
	switch target {
	case internalredis.TargetDriver:
		return strings.TrimRight(c.cfg.DriverBaseURL, "/") + "/driver", nil
	case internalredis.TargetPassenger:
		return strings.TrimRight(c.cfg.PassengerBaseURL, "/") + "/passenger", nil
	default:
		return "", fmt.Errorf("unknown notification target %q", target)
	}
}

type httpStatusError struct {
	Code int
	Body string
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.Code, e.Body)
}

// doWithRetry retries transient failures (network errors, 429, 5xx) with
// exponential backoff while respecting context cancellation. Exhaustion wraps
// ErrDeliveryFailed.
func (c *BotClient) doWithRetry(ctx context.Context, url string, body []byte) error {
	backoff := c.cfg.RetryBackoff

	var lastErr error

	for attempt := 1; attempt <= c.cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr = c.post(ctx, url, body)
		if lastErr == nil {
			return nil
		}

		retry := false
		var he *httpStatusError
		if errors.As(lastErr, &he) {
			switch he.Code {
			case http.StatusTooManyRequests,
				http.StatusInternalServerError,
				http.StatusBadGateway,
				http.StatusServiceUnavailable,
				http.StatusGatewayTimeout:
				retry = true
			}
		}

		var netErr net.Error
		if !retry && errors.As(lastErr, &netErr) {
			retry = true
		}

		if !retry || attempt == c.cfg.MaxAttempts {
			break
		}

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}

		backoff *= 2
	}

	return fmt.Errorf("%w: %v", ErrDeliveryFailed, lastErr)
}

func (c *BotClient) post(ctx context.Context, url string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.session.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &httpStatusError{Code: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}

	// 204 is success with an implicit empty object.
	if resp.StatusCode == http.StatusNoContent {
		return nil
	}

	var decoded any
	if err := json.Unmarshal(data, &decoded); err != nil {
		return fmt.Errorf("non-JSON response body: %q", truncate(string(data), 100))
	}

	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
