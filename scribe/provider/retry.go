package provider

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/openai/openai-go"
	"go.uber.org/zap"
)

// RetryPolicy controls CallWithRetry. The zero value makes exactly one attempt.
type RetryPolicy struct {
	MaxAttempts      int
	RateLimitWaits   []time.Duration
	ServerErrorWaits []time.Duration
}

// BackoffPolicy returns a policy of attempts tries using the long rate-limit waits the API needs
// to refill its window and shorter waits for server errors.
func BackoffPolicy(attempts int) RetryPolicy {
	return RetryPolicy{
		MaxAttempts:      attempts,
		RateLimitWaits:   []time.Duration{65 * time.Second, 100 * time.Second, 135 * time.Second},
		ServerErrorWaits: []time.Duration{5 * time.Second, 30 * time.Second, 60 * time.Second},
	}
}

func (p RetryPolicy) attempts() int {
	if p.MaxAttempts < 1 {
		return 1
	}
	return p.MaxAttempts
}

func waitFor(waits []time.Duration, attempt int) time.Duration {
	if len(waits) == 0 {
		return 0
	}
	if attempt >= len(waits) {
		return waits[len(waits)-1]
	}
	return waits[attempt]
}

// CallWithRetry runs call until it succeeds, fails with a non-retryable error or the policy is
// exhausted. Only rate-limit and server errors are retried. Waits end early when ctx is done.
func CallWithRetry[T any](ctx context.Context, policy RetryPolicy, logger *zap.Logger, call func(context.Context) (T, error)) (T, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	maxAttempts := policy.attempts()

	var zero T
	for attempt := 0; ; attempt++ {
		out, err := call(ctx)
		if err == nil {
			return out, nil
		}
		if attempt >= maxAttempts-1 {
			return zero, err
		}

		var wait time.Duration
		switch {
		case isRateLimitError(err):
			wait = waitFor(policy.RateLimitWaits, attempt)
		case isServerError(err):
			wait = waitFor(policy.ServerErrorWaits, attempt)
		default:
			return zero, err
		}

		logger.Warn("completion call failed, retrying",
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", maxAttempts),
			zap.Duration("wait", wait),
			zap.Error(err),
		)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
}

func statusCode(err error) int {
	var apiErr *openai.Error
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

func isRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	if code := statusCode(err); code != 0 {
		return code == http.StatusTooManyRequests
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "429") ||
		strings.Contains(errStr, "rate limit") ||
		strings.Contains(errStr, "too many requests")
}

func isServerError(err error) bool {
	if err == nil {
		return false
	}
	if code := statusCode(err); code != 0 {
		return code >= 500
	}
	errStr := strings.ToLower(err.Error())
	return strings.Contains(errStr, "500") ||
		strings.Contains(errStr, "internal server error") ||
		strings.Contains(errStr, "server_error")
}
