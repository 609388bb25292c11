// Package backoff provides the fixed-delay retry policy used for the
// transient failure modes of the vision and hosting backends.
package backoff

import (
	"context"
	"fmt"
	"time"
)

// Policy retries an operation a fixed number of times with a fixed
// delay between attempts. Retryable decides whether a given error is
// worth another attempt; a nil Retryable retries every error.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	Retryable   func(error) bool
}

// Do runs op until it succeeds, returns a non-retryable error, or the
// attempt budget is spent. The last error is returned on exhaustion.
func (p Policy) Do(ctx context.Context, op func() error) error {
	attempts := p.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = op()
		if err == nil {
			return nil
		}
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		if attempt == attempts {
			break
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(p.Delay):
		}
	}
	return fmt.Errorf("after %d attempts: %w", attempts, err)
}
