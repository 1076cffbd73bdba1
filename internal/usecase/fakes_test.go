package usecase

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/jefwallets/ledger/internal/domain"
)

// fakeStore backs the fake repositories with staged-write transactions so
// that a rollback really discards partial commits.
type fakeStore struct {
	mu      sync.Mutex
	states  map[string]*domain.AccountState
	entries map[string]*domain.LedgerEntry
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		states:  make(map[string]*domain.AccountState),
		entries: make(map[string]*domain.LedgerEntry),
	}
}

type fakeTx struct {
	store     *fakeStore
	states    []*domain.AccountState
	entries   []*domain.LedgerEntry
	committed bool
}

func (t *fakeTx) Commit(_ context.Context) error {
	t.store.mu.Lock()
	defer t.store.mu.Unlock()

	for _, s := range t.states {
		copied := *s
		t.store.states[s.AccountNumber] = &copied
	}

	for _, e := range t.entries {
		copied := *e
		t.store.entries[e.EntryID] = &copied
	}

	t.committed = true

	return nil
}

func (t *fakeTx) Rollback(_ context.Context) error {
	if !t.committed {
		t.states = nil
		t.entries = nil
	}

	return nil
}

type fakeTxManager struct {
	store    *fakeStore
	beginErr error
}

func (m *fakeTxManager) Begin(_ context.Context) (Transaction, error) {
	if m.beginErr != nil {
		return nil, m.beginErr
	}

	return &fakeTx{store: m.store}, nil
}

type fakeStateRepo struct {
	store *fakeStore

	// beforeUpsert runs once before the fence check, letting tests inject a
	// racing writer between read and commit.
	beforeUpsert func()
	getErr       error
}

func (r *fakeStateRepo) Get(_ context.Context, accountNumber string) (*domain.AccountState, error) {
	if r.getErr != nil {
		return nil, r.getErr
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	state, ok := r.store.states[accountNumber]
	if !ok {
		return nil, domain.ErrAccountNotFound
	}

	copied := *state

	return &copied, nil
}

func (r *fakeStateRepo) UpsertFenced(_ context.Context, tx Transaction, next *domain.AccountState, expectedVersion int64) error {
	if r.beforeUpsert != nil {
		hook := r.beforeUpsert
		r.beforeUpsert = nil
		hook()
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	current, exists := r.store.states[next.AccountNumber]

	if expectedVersion == 0 {
		if exists {
			return domain.ErrConcurrencyConflict
		}
	} else if !exists || current.Version != expectedVersion {
		return domain.ErrConcurrencyConflict
	}

	ftx := tx.(*fakeTx)
	ftx.states = append(ftx.states, next)

	return nil
}

type fakeEntryRepo struct {
	store     *fakeStore
	insertErr error
}

func (r *fakeEntryRepo) Insert(_ context.Context, tx Transaction, entry *domain.LedgerEntry) error {
	if r.insertErr != nil {
		return r.insertErr
	}

	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	if _, ok := r.store.entries[entry.EntryID]; ok {
		return domain.ErrDuplicateEntry
	}

	ftx := tx.(*fakeTx)
	for _, staged := range ftx.entries {
		if staged.EntryID == entry.EntryID {
			return domain.ErrDuplicateEntry
		}
	}

	ftx.entries = append(ftx.entries, entry)

	return nil
}

func (r *fakeEntryRepo) GetByID(_ context.Context, entryID string) (*domain.LedgerEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	entry, ok := r.store.entries[entryID]
	if !ok {
		return nil, domain.ErrEntryNotFound
	}

	copied := *entry

	return &copied, nil
}

func (r *fakeEntryRepo) GetByTransaction(_ context.Context, transactionID string) ([]*domain.LedgerEntry, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var legs []*domain.LedgerEntry
	for _, e := range r.store.entries {
		if e.TransactionID == transactionID {
			copied := *e
			legs = append(legs, &copied)
		}
	}

	return legs, nil
}

func (r *fakeEntryRepo) ListByAccount(_ context.Context, accountNumber string, order SortOrder, limit, offset int) ([]*domain.LedgerEntry, error) {
	return r.list(func(e *domain.LedgerEntry) bool {
		return e.AccountNumber == accountNumber
	}, order, limit, offset), nil
}

func (r *fakeEntryRepo) ListByCounterparty(_ context.Context, accountNumber string, order SortOrder, limit, offset int) ([]*domain.LedgerEntry, error) {
	return r.list(func(e *domain.LedgerEntry) bool {
		return e.CounterpartyAccountNumber == accountNumber
	}, order, limit, offset), nil
}

func (r *fakeEntryRepo) GetLatestByAccount(ctx context.Context, accountNumber string) (*domain.LedgerEntry, error) {
	entries, _ := r.ListByAccount(ctx, accountNumber, OrderDesc, 1, 0)
	if len(entries) == 0 {
		return nil, domain.ErrEntryNotFound
	}

	return entries[0], nil
}

func (r *fakeEntryRepo) list(match func(*domain.LedgerEntry) bool, order SortOrder, limit, offset int) []*domain.LedgerEntry {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	var matched []*domain.LedgerEntry
	for _, e := range r.store.entries {
		if match(e) {
			copied := *e
			matched = append(matched, &copied)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if order == OrderAsc {
			return matched[i].CreatedAt.Before(matched[j].CreatedAt)
		}

		return matched[i].CreatedAt.After(matched[j].CreatedAt)
	})

	if offset >= len(matched) {
		return nil
	}

	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}

	return matched
}

// fakeRetrier applies the production predicate (conflicts and transient
// store failures retry) without sleeping.
type fakeRetrier struct {
	maxAttempts int
	attempts    int
}

func (r *fakeRetrier) Retry(_ context.Context, operation func() error) error {
	max := r.maxAttempts
	if max == 0 {
		max = 5
	}

	var err error
	for i := 0; i < max; i++ {
		r.attempts++

		err = operation()
		if err == nil {
			return nil
		}

		if !errors.Is(err, domain.ErrConcurrencyConflict) && !errors.Is(err, domain.ErrStoreUnavailable) {
			return err
		}
	}

	return err
}

type fakeCache struct {
	mu      sync.Mutex
	values  map[string]string
	deleted []string
}

func newFakeCache() *fakeCache {
	return &fakeCache{values: make(map[string]string)}
}

func (c *fakeCache) Get(_ context.Context, key string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	v, ok := c.values[key]
	if !ok {
		return "", errors.New("cache miss")
	}

	return v, nil
}

func (c *fakeCache) Set(_ context.Context, key, value string, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.values[key] = value

	return nil
}

func (c *fakeCache) Delete(_ context.Context, key string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.values, key)
	c.deleted = append(c.deleted, key)

	return nil
}
