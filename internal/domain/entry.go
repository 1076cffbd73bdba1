package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// EntryType marks the direction of a ledger entry.
type EntryType string

const (
	EntryTypeCredit EntryType = "credit"
	EntryTypeDebit  EntryType = "debit"
)

// ParseEntryType validates an external entry type string.
func ParseEntryType(s string) (EntryType, error) {
	switch EntryType(s) {
	case EntryTypeCredit, EntryTypeDebit:
		return EntryType(s), nil
	default:
		return "", ErrInvalidEntryType
	}
}

// LedgerEntry is one immutable credit or debit record affecting one
// account's balance. Once committed it is never updated or deleted.
type LedgerEntry struct {
	CreatedAt                 time.Time
	EntryID                   string
	TransactionID             string
	AccountNumber             string
	CounterpartyAccountNumber string
	CounterpartyName          string
	Description               string
	CreatedBy                 string
	Type                      EntryType
	Amount                    decimal.Decimal
	BalanceBefore             decimal.Decimal
	BalanceAfter              decimal.Decimal
}

// SignedAmount returns the amount with credit positive and debit negative.
func (e *LedgerEntry) SignedAmount() decimal.Decimal {
	if e.Type == EntryTypeDebit {
		return e.Amount.Neg()
	}

	return e.Amount
}

// Matches reports whether a replayed request is the same logical operation
// as this committed entry: same account, direction and amount.
func (e *LedgerEntry) Matches(accountNumber string, entryType EntryType, amount decimal.Decimal) bool {
	return e.AccountNumber == accountNumber &&
		e.Type == entryType &&
		e.Amount.Equal(amount)
}

// Namespace for deriving transfer leg entry IDs from a transaction ID.
var transferLegNamespace = uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8")

// DebitLegID derives the deterministic entry ID of a transfer's debit leg.
// Redelivery of the same transaction produces the same IDs, which makes the
// storage-level insert-if-absent guard the dedup mechanism.
func DebitLegID(transactionID string) string {
	return uuid.NewSHA1(transferLegNamespace, []byte(transactionID+":debit")).String()
}

// CreditLegID derives the deterministic entry ID of a transfer's credit leg.
func CreditLegID(transactionID string) string {
	return uuid.NewSHA1(transferLegNamespace, []byte(transactionID+":credit")).String()
}
