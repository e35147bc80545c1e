package connection

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrRetriesExhausted is returned by Retry when every attempt failed.
var ErrRetriesExhausted = errors.New("retries exhausted")

// Retry calls fn until it succeeds, ctx is done, or maxAttempts attempts
// have failed. Delays between attempts come from b. maxAttempts <= 0 means
// unlimited attempts. The returned error wraps the last failure.
func Retry(ctx context.Context, b *Backoff, maxAttempts int, fn func(ctx context.Context) error) error {
	if b == nil {
		b = NewBackoff()
	}

	var lastErr error
	for attempt := 1; maxAttempts <= 0 || attempt <= maxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			b.Reset()
			return nil
		}

		if maxAttempts > 0 && attempt == maxAttempts {
			break
		}

		timer := time.NewTimer(b.Next())
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(ctx.Err(), lastErr)
		case <-timer.C:
		}
	}
	return fmt.Errorf("%w after %d attempts: %w", ErrRetriesExhausted, maxAttempts, lastErr)
}
