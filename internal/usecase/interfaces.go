package usecase

import (
	"context"
	"time"

	"github.com/jefwallets/ledger/internal/domain"
)

// SortOrder controls listing direction by creation time.
type SortOrder string

const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// EntryRepository defines data access for ledger entries.
type EntryRepository interface {
	// Insert stores an entry only if no entry with its entry ID exists.
	// Returns domain.ErrDuplicateEntry when the guard trips.
	Insert(ctx context.Context, tx Transaction, entry *domain.LedgerEntry) error
	GetByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error)
	GetByTransaction(ctx context.Context, transactionID string) ([]*domain.LedgerEntry, error)
	// ListByAccount returns one page of entries where the account is the
	// primary party, ordered by creation time.
	ListByAccount(ctx context.Context, accountNumber string, order SortOrder, limit, offset int) ([]*domain.LedgerEntry, error)
	// ListByCounterparty returns one page of entries where the account is
	// the other side of the movement.
	ListByCounterparty(ctx context.Context, accountNumber string, order SortOrder, limit, offset int) ([]*domain.LedgerEntry, error)
	// GetLatestByAccount returns the most recently created entry for the
	// account, or domain.ErrEntryNotFound.
	GetLatestByAccount(ctx context.Context, accountNumber string) (*domain.LedgerEntry, error)
}

// AccountStateRepository defines data access for the per-account balance
// and version fence. Mutated only through UpsertFenced, only by the writer.
type AccountStateRepository interface {
	// Get returns the state for an account, or domain.ErrAccountNotFound
	// when the account has no committed entries yet.
	Get(ctx context.Context, accountNumber string) (*domain.AccountState, error)
	// UpsertFenced commits next within tx. expectedVersion is the version
	// observed before computing next (next.Version-1): 0 performs an
	// insert-if-absent, otherwise a conditional update. Returns
	// domain.ErrConcurrencyConflict when the fence trips.
	UpsertFenced(ctx context.Context, tx Transaction, next *domain.AccountState, expectedVersion int64) error
}

// Transaction represents a store transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier applies the shared bounded-backoff retry policy. Implementations
// decide which errors are retryable (version conflicts, transient store
// failures) and return the last error on exhaustion.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations for derived read state.
type Cache interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage at the HTTP boundary.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
}

// Publisher sends a write request to the queue for asynchronous recording.
type Publisher interface {
	PublishEntry(ctx context.Context, req domain.RecordEntryRequest) (string, error)
	PublishTransfer(ctx context.Context, req domain.RecordTransferRequest) (string, error)
}
