// Package retry provides the shared retry policy applied around each
// upstream client's primary operation.
package retry

import (
	"context"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/cojovi/cmac-chat-module-win86/pkg/logger"
	"github.com/cojovi/cmac-chat-module-win86/pkg/metrics"
)

// Policy is a fixed-attempt exponential backoff policy. Retries are blind:
// no error-kind filtering, so permanent failures consume the full budget.
type Policy struct {
	// Attempts is the total number of attempts, including the first.
	Attempts int

	// Base is the delay before the second attempt; it doubles for each
	// subsequent attempt. No jitter.
	Base time.Duration
}

// Default matches the upstream clients: 3 attempts, 1s then 2s between them.
var Default = Policy{Attempts: 3, Base: time.Second}

// Do runs fn under the policy. Intermediate failures are logged at warn and
// discarded; only the final attempt's error is returned. The backoff sleep
// is context-aware.
func Do[T any](ctx context.Context, log *logger.Logger, operation string, p Policy, fn func() (T, error)) (T, error) {
	var result T

	attempts := p.Attempts
	if attempts < 1 {
		attempts = 1
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = p.Base
	bo.RandomizationFactor = 0
	bo.Multiplier = 2
	bo.MaxElapsedTime = 0

	attempt := 0
	op := func() error {
		attempt++
		metrics.RetryAttemptsTotal.WithLabelValues(operation).Inc()
		var err error
		result, err = fn()
		return err
	}

	notify := func(err error, delay time.Duration) {
		log.Warn("operation failed, retrying",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
	}

	b := backoff.WithContext(backoff.WithMaxRetries(bo, uint64(attempts-1)), ctx)
	if err := backoff.RetryNotify(op, b, notify); err != nil {
		return result, err
	}
	return result, nil
}
