package translator

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
)

const (
	defaultMaxAttempts = 3
	defaultRetryDelay  = 500 * time.Millisecond
)

// withRetry runs call up to cfg.MaxAttempts times with exponential backoff,
// stopping early when ctx is done. Errors marked with retry.Unrecoverable are
// returned immediately.
func withRetry(ctx context.Context, cfg ServiceConfig, call func() error) error {
	attempts := cfg.MaxAttempts
	if attempts <= 0 {
		attempts = defaultMaxAttempts
	}
	delay := cfg.RetryDelay
	if delay <= 0 {
		delay = defaultRetryDelay
	}

	return retry.Do(
		call,
		retry.Context(ctx),
		retry.Attempts(uint(attempts)),
		retry.Delay(delay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
	)
}
