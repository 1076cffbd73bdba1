package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jefwallets/ledger/internal/domain"
	"github.com/jefwallets/ledger/internal/infrastructure/metrics"
)

// LedgerReader serves derived read state: latest balances, entry history,
// reconciled transfer listings and sufficient-funds checks. It never mutates
// AccountState.
type LedgerReader struct {
	stateRepo AccountStateRepository
	entryRepo EntryRepository
	cache     Cache
	metrics   *metrics.Metrics
	pageSize  int
}

// NewLedgerReader creates a new LedgerReader. cache may be nil.
func NewLedgerReader(stateRepo AccountStateRepository, entryRepo EntryRepository, cache Cache) *LedgerReader {
	return &LedgerReader{
		stateRepo: stateRepo,
		entryRepo: entryRepo,
		cache:     cache,
		pageSize:  defaultListPageSize,
	}
}

// WithMetrics attaches Prometheus metrics to the read path.
func (r *LedgerReader) WithMetrics(m *metrics.Metrics) *LedgerReader {
	r.metrics = m
	return r
}

// BalanceResult is the derived latest balance for an account.
type BalanceResult struct {
	AsOf    time.Time       `json:"as_of"`
	Balance decimal.Decimal `json:"balance"`
	Exists  bool            `json:"exists"`
}

// GetLatestBalance returns the balance after the most recent committed entry.
// AccountState is authoritative when present; accounts written only through
// the double-entry mode fall back to the newest entry's balance_after.
// Accounts with no entries report exists=false and balance 0.
func (r *LedgerReader) GetLatestBalance(ctx context.Context, accountNumber string) (*BalanceResult, error) {
	if accountNumber == "" {
		return nil, fmt.Errorf("%w: account_number", domain.ErrMissingField)
	}

	if cached, ok := r.cachedBalance(ctx, accountNumber); ok {
		if r.metrics != nil {
			r.metrics.BalanceCacheHits.Inc()
		}
		return cached, nil
	}

	if r.metrics != nil && r.cache != nil {
		r.metrics.BalanceCacheMisses.Inc()
	}

	result, err := r.lookupBalance(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	r.storeBalance(ctx, accountNumber, result)

	return result, nil
}

func (r *LedgerReader) lookupBalance(ctx context.Context, accountNumber string) (*BalanceResult, error) {
	state, err := r.stateRepo.Get(ctx, accountNumber)
	if err == nil {
		return &BalanceResult{Exists: true, Balance: state.LatestBalance, AsOf: state.UpdatedAt}, nil
	}

	if !errors.Is(err, domain.ErrAccountNotFound) {
		return nil, err
	}

	latest, err := r.entryRepo.GetLatestByAccount(ctx, accountNumber)
	if errors.Is(err, domain.ErrEntryNotFound) {
		return &BalanceResult{Exists: false, Balance: decimal.Zero}, nil
	}

	if err != nil {
		return nil, err
	}

	return &BalanceResult{Exists: true, Balance: latest.BalanceAfter, AsOf: latest.CreatedAt}, nil
}

// ListEntriesByAccount returns all entries where the account is the primary
// party, in the requested order. Pagination is internal: pages are fetched
// until exhaustion, one full pass per call.
func (r *LedgerReader) ListEntriesByAccount(ctx context.Context, accountNumber string, order SortOrder) ([]*domain.LedgerEntry, error) {
	if accountNumber == "" {
		return nil, fmt.Errorf("%w: account_number", domain.ErrMissingField)
	}

	if order != OrderAsc {
		order = OrderDesc
	}

	return r.drain(ctx, func(limit, offset int) ([]*domain.LedgerEntry, error) {
		return r.entryRepo.ListByAccount(ctx, accountNumber, order, limit, offset)
	})
}

// ListEntriesByCounterparty returns all entries naming the account as the
// other side of the movement.
func (r *LedgerReader) ListEntriesByCounterparty(ctx context.Context, accountNumber string, order SortOrder) ([]*domain.LedgerEntry, error) {
	if accountNumber == "" {
		return nil, fmt.Errorf("%w: account_number", domain.ErrMissingField)
	}

	if order != OrderAsc {
		order = OrderDesc
	}

	return r.drain(ctx, func(limit, offset int) ([]*domain.LedgerEntry, error) {
		return r.entryRepo.ListByCounterparty(ctx, accountNumber, order, limit, offset)
	})
}

func (r *LedgerReader) drain(ctx context.Context, page func(limit, offset int) ([]*domain.LedgerEntry, error)) ([]*domain.LedgerEntry, error) {
	var all []*domain.LedgerEntry

	for offset := 0; ; offset += r.pageSize {
		entries, err := page(r.pageSize, offset)
		if err != nil {
			return nil, err
		}

		all = append(all, entries...)

		if len(entries) < r.pageSize {
			return all, nil
		}
	}
}

// ListTransfersByAccount joins each of the account's transfer legs with its
// counterpart leg by transaction ID, newest first, and accumulates the
// debit/credit totals.
func (r *LedgerReader) ListTransfersByAccount(ctx context.Context, accountNumber string) ([]*domain.ReconciledTransfer, domain.TransferSummary, error) {
	entries, err := r.ListEntriesByAccount(ctx, accountNumber, OrderDesc)
	if err != nil {
		return nil, domain.TransferSummary{}, err
	}

	var transfers []*domain.ReconciledTransfer

	for _, own := range entries {
		if own.TransactionID == "" {
			continue
		}

		reconciled, err := r.reconcile(ctx, own)
		if err != nil {
			return nil, domain.TransferSummary{}, err
		}

		transfers = append(transfers, reconciled)
	}

	sort.SliceStable(transfers, func(i, j int) bool {
		return transfers[i].CreatedAt.After(transfers[j].CreatedAt)
	})

	return transfers, domain.SummarizeTransfers(transfers), nil
}

func (r *LedgerReader) reconcile(ctx context.Context, own *domain.LedgerEntry) (*domain.ReconciledTransfer, error) {
	legs, err := r.entryRepo.GetByTransaction(ctx, own.TransactionID)
	if err != nil {
		return nil, err
	}

	t := &domain.ReconciledTransfer{
		TransactionID:             own.TransactionID,
		CounterpartyAccountNumber: own.CounterpartyAccountNumber,
		CounterpartyName:          own.CounterpartyName,
		Description:               own.Description,
		CreatedBy:                 own.CreatedBy,
		Amount:                    own.Amount,
		CreatedAt:                 own.CreatedAt,
	}

	if own.Type == domain.EntryTypeDebit {
		t.Direction = domain.DirectionSender
	} else {
		t.Direction = domain.DirectionReceiver
	}

	for _, leg := range legs {
		switch leg.Type {
		case domain.EntryTypeDebit:
			t.DebitEntry = leg
		case domain.EntryTypeCredit:
			t.CreditEntry = leg
		}
	}

	t.IsComplete = t.DebitEntry != nil && t.CreditEntry != nil

	return t, nil
}

// FundsResult is the outcome of a sufficient-funds check. Insufficient and
// not-found are both negative but carry distinct messages.
type FundsResult struct {
	IsSufficient bool
	Message      string
}

// VerifySufficientFunds compares amount against the account's latest balance.
func (r *LedgerReader) VerifySufficientFunds(ctx context.Context, accountNumber string, amount any) (*FundsResult, error) {
	if accountNumber == "" {
		return nil, fmt.Errorf("%w: account_number", domain.ErrMissingField)
	}

	requested, err := domain.ParseAmount(amount)
	if err != nil {
		return nil, err
	}

	if requested.IsNegative() {
		return nil, fmt.Errorf("%w: amount must be non-negative", domain.ErrInvalidAmount)
	}

	balance, err := r.GetLatestBalance(ctx, accountNumber)
	if err != nil {
		return nil, err
	}

	if !balance.Exists {
		return &FundsResult{IsSufficient: false, Message: "no ledger entries found for this account"}, nil
	}

	if balance.Balance.GreaterThanOrEqual(requested) {
		return &FundsResult{IsSufficient: true, Message: "sufficient funds"}, nil
	}

	return &FundsResult{IsSufficient: false, Message: "insufficient funds"}, nil
}

func (r *LedgerReader) cachedBalance(ctx context.Context, accountNumber string) (*BalanceResult, bool) {
	if r.cache == nil {
		return nil, false
	}

	raw, err := r.cache.Get(ctx, balanceCachePrefix+accountNumber)
	if err != nil {
		return nil, false
	}

	var result BalanceResult
	if err := json.Unmarshal([]byte(raw), &result); err != nil {
		return nil, false
	}

	return &result, true
}

func (r *LedgerReader) storeBalance(ctx context.Context, accountNumber string, result *BalanceResult) {
	if r.cache == nil {
		return
	}

	raw, err := json.Marshal(result)
	if err != nil {
		return
	}

	_ = r.cache.Set(ctx, balanceCachePrefix+accountNumber, string(raw), balanceCacheTTL)
}
