package provider

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestErrorClassification(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name      string
		err       error
		rateLimit bool
		server    bool
	}{
		{name: "nil", err: nil},
		{name: "429", err: errors.New("POST /v1/responses: 429 Too Many Requests"), rateLimit: true},
		{name: "rate_limit_text", err: errors.New("Rate limit reached for requests"), rateLimit: true},
		{name: "500", err: errors.New("500 Internal Server Error"), server: true},
		{name: "server_error_code", err: errors.New("code: server_error"), server: true},
		{name: "400", err: errors.New("400 Bad Request"), server: false},
	}
	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := isRateLimitError(tc.err); got != tc.rateLimit {
				t.Fatalf("isRateLimitError=%v, want %v", got, tc.rateLimit)
			}
			if got := isServerError(tc.err); got != tc.server {
				t.Fatalf("isServerError=%v, want %v", got, tc.server)
			}
		})
	}
}

func TestCallWithRetry_ZeroPolicyMakesOneAttempt(t *testing.T) {
	t.Parallel()

	var calls int
	_, err := CallWithRetry(context.Background(), RetryPolicy{}, nil, func(context.Context) (string, error) {
		calls++
		return "", errors.New("429 Too Many Requests")
	})
	if err == nil {
		t.Fatalf("expected error")
	}
	if calls != 1 {
		t.Fatalf("calls=%d, want 1", calls)
	}
}

func TestCallWithRetry_DoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls int
	_, err := CallWithRetry(context.Background(), BackoffPolicy(3), nil, func(context.Context) (int, error) {
		calls++
		return 0, errors.New("400 Bad Request")
	})
	if err == nil || calls != 1 {
		t.Fatalf("calls=%d err=%v, want 1 call and an error", calls, err)
	}
}

func TestCallWithRetry_RetriesUntilSuccess(t *testing.T) {
	t.Parallel()

	policy := RetryPolicy{
		MaxAttempts:      3,
		RateLimitWaits:   []time.Duration{time.Millisecond},
		ServerErrorWaits: []time.Duration{time.Millisecond},
	}
	var calls int
	out, err := CallWithRetry(context.Background(), policy, nil, func(context.Context) (string, error) {
		calls++
		switch calls {
		case 1:
			return "", errors.New("429 Too Many Requests")
		case 2:
			return "", errors.New("500 Internal Server Error")
		}
		return "ok", nil
	})
	if err != nil || out != "ok" || calls != 3 {
		t.Fatalf("out=%q err=%v calls=%d", out, err, calls)
	}
}

func TestCallWithRetry_WaitStopsOnCancel(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	start := time.Now()
	_, err := CallWithRetry(ctx, BackoffPolicy(3), nil, func(context.Context) (string, error) {
		cancel()
		return "", errors.New("429 Too Many Requests")
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err=%v, want context.Canceled", err)
	}
	if time.Since(start) > 5*time.Second {
		t.Fatalf("wait did not stop on cancel")
	}
}

func TestWaitFor_ClampsToLast(t *testing.T) {
	t.Parallel()

	waits := []time.Duration{time.Second, 2 * time.Second}
	if got := waitFor(waits, 5); got != 2*time.Second {
		t.Fatalf("waitFor=%v, want 2s", got)
	}
	if got := waitFor(nil, 0); got != 0 {
		t.Fatalf("waitFor(nil)=%v, want 0", got)
	}
}
