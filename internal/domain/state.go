package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountState is the single mutable record per account: the balance after
// the most recently committed entry and a monotonic version counter used as
// an optimistic-concurrency fence. It is owned exclusively by the ledger
// writer; readers only observe it through derived balance queries.
type AccountState struct {
	UpdatedAt     time.Time
	AccountNumber string
	LatestBalance decimal.Decimal
	Version       int64
}

// NewAccountState returns the zero state for an account with no entries.
func NewAccountState(accountNumber string) *AccountState {
	return &AccountState{
		AccountNumber: accountNumber,
		LatestBalance: decimal.Zero,
		Version:       0,
	}
}

// NextBalance returns the balance after applying an entry of the given
// direction and amount.
func (s *AccountState) NextBalance(entryType EntryType, amount decimal.Decimal) decimal.Decimal {
	if entryType == EntryTypeDebit {
		return s.LatestBalance.Sub(amount)
	}

	return s.LatestBalance.Add(amount)
}

// Apply returns the successor state for one committed entry. The version
// advances by exactly one; the commit is rejected by the store unless the
// persisted version still equals s.Version.
func (s *AccountState) Apply(entryType EntryType, amount decimal.Decimal, at time.Time) *AccountState {
	return &AccountState{
		AccountNumber: s.AccountNumber,
		LatestBalance: s.NextBalance(entryType, amount),
		Version:       s.Version + 1,
		UpdatedAt:     at,
	}
}
