package database

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/futa-medical/clinic-booking/pkg/logger"
)

// Retry calls fn up to attempts times, doubling the wait after each failure.
// It returns the last error when every attempt fails.
func Retry(ctx context.Context, log *logger.Logger, operation string, attempts int, delay time.Duration, fn func(ctx context.Context) error) error {
	if attempts < 1 {
		attempts = 1
	}

	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = delay
	policy.Multiplier = 2
	policy.RandomizationFactor = 0
	policy.MaxInterval = time.Duration(math.MaxInt64)
	policy.MaxElapsedTime = 0

	attempt := 0
	op := func() error {
		attempt++
		return fn(ctx)
	}
	notify := func(err error, wait time.Duration) {
		log.WithComponent("database").WithError(err).WithFields(map[string]interface{}{
			"operation": operation,
			"attempt":   attempt,
			"attempts":  attempts,
			"retry_in":  wait.String(),
		}).Warn("Operation failed, retrying")
	}

	b := backoff.WithContext(backoff.WithMaxRetries(policy, uint64(attempts-1)), ctx)
	err := backoff.RetryNotify(op, b, notify)
	if err == nil {
		return nil
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s: %w", operation, ctxErr)
	}

	log.WithComponent("database").WithError(err).WithFields(map[string]interface{}{
		"operation": operation,
		"attempts":  attempt,
	}).Error("Operation failed, giving up")
	return fmt.Errorf("%s failed after %d attempts: %w", operation, attempt, err)
}
