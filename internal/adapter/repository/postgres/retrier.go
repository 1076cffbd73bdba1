package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/jefwallets/ledger/internal/domain"
)

// PostgreSQL error codes that warrant another attempt.
const (
	pgErrDeadlock             = "40P01"
	pgErrSerializationFailure = "40001"
)

// Retrier implements usecase.Retrier with bounded exponential backoff and
// jitter. Version-fence conflicts and transient store errors retry; every
// other error is permanent and surfaces on the first attempt.
type Retrier struct {
	maxRetries      int
	initialInterval time.Duration
	maxInterval     time.Duration
	maxElapsedTime  time.Duration
	logger          *slog.Logger
}

// NewRetrier creates a new Retrier with default settings.
func NewRetrier() *Retrier {
	return &Retrier{
		maxRetries:      3,
		initialInterval: 50 * time.Millisecond,
		maxInterval:     1 * time.Second,
		maxElapsedTime:  10 * time.Second,
		logger:          slog.Default(),
	}
}

// WithMaxRetries overrides the retry budget.
func (r *Retrier) WithMaxRetries(n int) *Retrier {
	r.maxRetries = n
	return r
}

// Retry executes an operation, backing off between retryable failures. The
// last error is returned once the budget is exhausted; transient store
// failures come back as domain.ErrStoreUnavailable because their outcome is
// unknown.
func (r *Retrier) Retry(ctx context.Context, operation func() error) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.initialInterval
	b.MaxInterval = r.maxInterval
	b.MaxElapsedTime = r.maxElapsedTime

	retryCount := 0

	err := backoff.Retry(func() error {
		err := operation()
		if err == nil {
			return nil
		}

		if !isRetryableError(err) {
			return backoff.Permanent(err)
		}

		retryCount++
		if retryCount > r.maxRetries {
			return backoff.Permanent(err)
		}

		r.logger.Warn("retryable write failure, retrying",
			"error", err,
			"retry", retryCount,
		)

		return err
	}, backoff.WithContext(b, ctx))

	if err != nil && !errors.Is(err, domain.ErrStoreUnavailable) && isTransientStoreError(err) {
		return fmt.Errorf("%w: %v", domain.ErrStoreUnavailable, err)
	}

	return err
}

// isRetryableError reports whether another attempt could succeed: a racing
// writer moved the version fence, or the store failed transiently.
func isRetryableError(err error) bool {
	if errors.Is(err, domain.ErrConcurrencyConflict) || errors.Is(err, domain.ErrStoreUnavailable) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgErrDeadlock, pgErrSerializationFailure:
			return true
		}
	}

	return isTransientStoreError(err)
}

// isTransientStoreError reports store failures with an unknown outcome:
// timeouts, dropped connections, server shutdown. PostgreSQL class 08 is
// connection exceptions, class 57 is operator intervention.
func isTransientStoreError(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}

	if pgconn.SafeToRetry(err) || pgconn.Timeout(err) {
		return true
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return strings.HasPrefix(pgErr.Code, "08") || strings.HasPrefix(pgErr.Code, "57")
	}

	return false
}
