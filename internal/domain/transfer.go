package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferPair is the two committed legs of one logical transfer.
type TransferPair struct {
	Debit  *LedgerEntry
	Credit *LedgerEntry
}

// TransferDirection says which side of a transfer an account was on.
type TransferDirection string

const (
	DirectionSender   TransferDirection = "sender"
	DirectionReceiver TransferDirection = "receiver"
)

// ReconciledTransfer is one transfer as seen from a single account: its own
// leg joined with the counterpart leg fetched by transaction ID. IsComplete
// is false when the counterpart leg is missing, which for a committed
// transfer must never happen.
type ReconciledTransfer struct {
	CreatedAt                 time.Time
	TransactionID             string
	Direction                 TransferDirection
	CounterpartyAccountNumber string
	CounterpartyName          string
	Description               string
	CreatedBy                 string
	Amount                    decimal.Decimal
	DebitEntry                *LedgerEntry
	CreditEntry               *LedgerEntry
	IsComplete                bool
}

// TransferSummary accumulates the running totals over a reconciled listing.
type TransferSummary struct {
	DebitTotal    decimal.Decimal
	CreditTotal   decimal.Decimal
	NetForAccount decimal.Decimal
}

// SummarizeTransfers totals debits and credits from the account's point of
// view. Net is credits received minus debits sent.
func SummarizeTransfers(transfers []*ReconciledTransfer) TransferSummary {
	s := TransferSummary{
		DebitTotal:    decimal.Zero,
		CreditTotal:   decimal.Zero,
		NetForAccount: decimal.Zero,
	}

	for _, t := range transfers {
		switch t.Direction {
		case DirectionSender:
			s.DebitTotal = s.DebitTotal.Add(t.Amount)
		case DirectionReceiver:
			s.CreditTotal = s.CreditTotal.Add(t.Amount)
		}
	}

	s.NetForAccount = s.CreditTotal.Sub(s.DebitTotal)

	return s
}
