package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zarwallet/backend/internal/logger"
	"github.com/zarwallet/backend/internal/store"
)

// withRetry re-runs fn while the store reports a transaction conflict, doubling the
// backoff each time. Every fn passed here must be idempotent.
func withRetry(ctx context.Context, attempts int, backoff time.Duration, op string, fn func() error) error {
	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if !errors.Is(err, store.ErrConflict) {
			return err
		}
		if attempt == attempts {
			break
		}

		wait := backoff << (attempt - 1)
		logger.Debugf("[LEDGER] %s conflicted (attempt %d/%d), retrying in %s", op, attempt, attempts, wait)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
	}
	return fmt.Errorf("%w: %s: %v", ErrTransactionConflict, op, err)
}
