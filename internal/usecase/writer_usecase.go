package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/jefwallets/ledger/internal/domain"
	"github.com/jefwallets/ledger/internal/infrastructure/metrics"
)

// LedgerWriter is the idempotent, concurrency-safe write path. Single
// entries go through the version-fenced AccountState commit; transfer pairs
// are committed as one atomic two-leg insert with no state coupling.
type LedgerWriter struct {
	txManager TransactionManager
	stateRepo AccountStateRepository
	entryRepo EntryRepository
	retrier   Retrier
	cache     Cache
	metrics   *metrics.Metrics
	now       func() time.Time
}

// NewLedgerWriter creates a new LedgerWriter. cache may be nil.
func NewLedgerWriter(
	txManager TransactionManager,
	stateRepo AccountStateRepository,
	entryRepo EntryRepository,
	retrier Retrier,
	cache Cache,
) *LedgerWriter {
	return &LedgerWriter{
		txManager: txManager,
		stateRepo: stateRepo,
		entryRepo: entryRepo,
		retrier:   retrier,
		cache:     cache,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// WithMetrics attaches Prometheus metrics to the write path.
func (w *LedgerWriter) WithMetrics(m *metrics.Metrics) *LedgerWriter {
	w.metrics = m
	return w
}

// RecordEntry validates the request, computes before/after balances from the
// account state and commits the entry and the advanced state atomically.
// A version conflict from a racing writer restarts the whole sequence under
// the retry policy. A duplicate entry ID is answered with the previously
// committed entry when the replayed payload matches, so redelivery of the
// same request is safe.
func (w *LedgerWriter) RecordEntry(ctx context.Context, req domain.RecordEntryRequest) (*domain.LedgerEntry, error) {
	draft, err := req.Normalize()
	if err != nil {
		return nil, err
	}

	var committed *domain.LedgerEntry

	err = w.retrier.Retry(ctx, func() error {
		entry, commitErr := w.commitEntry(ctx, draft)
		if commitErr != nil {
			return commitErr
		}

		committed = entry

		return nil
	})

	if errors.Is(err, domain.ErrDuplicateEntry) {
		return w.replayEntry(ctx, draft)
	}

	if err != nil {
		w.countWriteError(err)
		return nil, err
	}

	if w.metrics != nil {
		w.metrics.EntriesRecorded.Inc()
		amount, _ := draft.Amount.Float64()
		w.metrics.EntryAmount.Observe(amount)
	}

	w.invalidateBalance(ctx, draft.AccountNumber)

	return committed, nil
}

// commitEntry performs one read-compute-commit attempt.
func (w *LedgerWriter) commitEntry(ctx context.Context, draft *domain.EntryDraft) (*domain.LedgerEntry, error) {
	state, err := w.stateRepo.Get(ctx, draft.AccountNumber)
	if errors.Is(err, domain.ErrAccountNotFound) {
		state = domain.NewAccountState(draft.AccountNumber)
	} else if err != nil {
		return nil, err
	}

	now := w.now()
	next := state.Apply(draft.Type, draft.Amount, now)
	entry := draft.Entry(state.LatestBalance, next.LatestBalance, now)

	tx, err := w.txManager.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	if err := w.stateRepo.UpsertFenced(ctx, tx, next, state.Version); err != nil {
		if w.metrics != nil && errors.Is(err, domain.ErrConcurrencyConflict) {
			w.metrics.VersionConflicts.Inc()
		}
		return nil, err
	}

	if err := w.entryRepo.Insert(ctx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	return entry, nil
}

// replayEntry resolves a tripped entry-ID guard: a matching payload is an
// idempotent redelivery and succeeds with the committed entry, anything else
// is a real conflict.
func (w *LedgerWriter) replayEntry(ctx context.Context, draft *domain.EntryDraft) (*domain.LedgerEntry, error) {
	existing, err := w.entryRepo.GetByID(ctx, draft.EntryID)
	if err != nil {
		return nil, err
	}

	if !existing.Matches(draft.AccountNumber, draft.Type, draft.Amount) {
		if w.metrics != nil {
			w.metrics.DuplicateWrites.WithLabelValues("entry").Inc()
		}
		return nil, domain.ErrDuplicateEntry
	}

	if w.metrics != nil {
		w.metrics.EntryReplays.Inc()
	}

	return existing, nil
}

// RecordTransfer validates the request, rejects transaction IDs that already
// have any leg, and commits both legs as one atomic insert. Leg entry IDs
// are derived from the transaction ID, so a redelivered transfer trips the
// insert-if-absent guard instead of creating a second pair.
func (w *LedgerWriter) RecordTransfer(ctx context.Context, req domain.RecordTransferRequest) (*domain.TransferPair, error) {
	draft, err := req.Normalize()
	if err != nil {
		return nil, err
	}

	existing, err := w.entryRepo.GetByTransaction(ctx, draft.TransactionID)
	if err != nil {
		return nil, err
	}

	if len(existing) > 0 {
		if w.metrics != nil {
			w.metrics.DuplicateWrites.WithLabelValues("transfer").Inc()
		}
		return nil, domain.ErrDuplicateTransaction
	}

	pair := draft.Pair(w.now())

	err = w.retrier.Retry(ctx, func() error {
		return w.commitPair(ctx, pair)
	})

	if errors.Is(err, domain.ErrDuplicateEntry) {
		if w.metrics != nil {
			w.metrics.DuplicateWrites.WithLabelValues("transfer").Inc()
		}
		return nil, domain.ErrDuplicateTransaction
	}

	if err != nil {
		w.countWriteError(err)
		return nil, err
	}

	if w.metrics != nil {
		w.metrics.TransfersRecorded.Inc()
	}

	w.invalidateBalance(ctx, pair.Debit.AccountNumber)
	w.invalidateBalance(ctx, pair.Credit.AccountNumber)

	return pair, nil
}

func (w *LedgerWriter) commitPair(ctx context.Context, pair *domain.TransferPair) error {
	tx, err := w.txManager.Begin(ctx)
	if err != nil {
		return err
	}
	defer tx.Rollback(ctx)

	if err := w.entryRepo.Insert(ctx, tx, pair.Debit); err != nil {
		return err
	}

	if err := w.entryRepo.Insert(ctx, tx, pair.Credit); err != nil {
		return err
	}

	return tx.Commit(ctx)
}

func (w *LedgerWriter) countWriteError(err error) {
	if w.metrics == nil {
		return
	}

	switch {
	case errors.Is(err, domain.ErrConcurrencyConflict):
		w.metrics.WriteErrors.WithLabelValues("conflict").Inc()
	case errors.Is(err, domain.ErrStoreUnavailable):
		w.metrics.WriteErrors.WithLabelValues("store_unavailable").Inc()
	default:
		w.metrics.WriteErrors.WithLabelValues("internal").Inc()
	}
}

// invalidateBalance drops the cached balance after a commit. Best effort:
// the cache TTL bounds staleness if the delete fails.
func (w *LedgerWriter) invalidateBalance(ctx context.Context, accountNumber string) {
	if w.cache == nil {
		return
	}

	_ = w.cache.Delete(ctx, balanceCachePrefix+accountNumber)
}
