package domain

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

var createdByPattern = regexp.MustCompile(`^[0-9]{5}$`)

// RecordEntryRequest is the untyped single-entry write payload as delivered
// by the HTTP or queue boundary. Amount stays `any` until normalization so
// that both JSON numbers and numeric strings are accepted.
type RecordEntryRequest struct {
	EntryID                   string `json:"entry_id"`
	AccountNumber             string `json:"account_number"`
	CounterpartyAccountNumber string `json:"counterparty_account_number"`
	CounterpartyName          string `json:"counterparty_name"`
	EntryType                 string `json:"entry_type"`
	Amount                    any    `json:"amount"`
	Description               string `json:"description"`
	CreatedBy                 string `json:"created_by"`
	TransactionID             string `json:"transaction_id,omitempty"`
}

// EntryDraft is the strict, normalized form of a RecordEntryRequest.
type EntryDraft struct {
	EntryID                   string
	AccountNumber             string
	CounterpartyAccountNumber string
	CounterpartyName          string
	Type                      EntryType
	Amount                    decimal.Decimal
	Description               string
	CreatedBy                 string
	TransactionID             string
}

// Normalize validates and coerces the request, rejecting on the first
// violation with no side effects.
func (r *RecordEntryRequest) Normalize() (*EntryDraft, error) {
	d := &EntryDraft{
		EntryID:                   strings.TrimSpace(r.EntryID),
		AccountNumber:             strings.TrimSpace(r.AccountNumber),
		CounterpartyAccountNumber: strings.TrimSpace(r.CounterpartyAccountNumber),
		CounterpartyName:          strings.TrimSpace(r.CounterpartyName),
		Description:               strings.TrimSpace(r.Description),
		CreatedBy:                 strings.TrimSpace(r.CreatedBy),
		TransactionID:             strings.TrimSpace(r.TransactionID),
	}

	if d.EntryID == "" {
		return nil, fmt.Errorf("%w: entry_id", ErrMissingField)
	}

	if d.AccountNumber == "" {
		return nil, fmt.Errorf("%w: account_number", ErrMissingField)
	}

	entryType, err := ParseEntryType(strings.TrimSpace(r.EntryType))
	if err != nil {
		return nil, err
	}
	d.Type = entryType

	amount, err := ParsePositiveAmount(r.Amount)
	if err != nil {
		return nil, err
	}
	d.Amount = amount

	if d.Description == "" {
		return nil, fmt.Errorf("%w: description", ErrMissingField)
	}

	if d.CreatedBy == "" {
		return nil, fmt.Errorf("%w: created_by", ErrMissingField)
	}

	return d, nil
}

// Entry materializes the immutable ledger entry for this draft given the
// balances computed by the writer.
func (d *EntryDraft) Entry(balanceBefore, balanceAfter decimal.Decimal, at time.Time) *LedgerEntry {
	return &LedgerEntry{
		EntryID:                   d.EntryID,
		TransactionID:             d.TransactionID,
		AccountNumber:             d.AccountNumber,
		CounterpartyAccountNumber: d.CounterpartyAccountNumber,
		CounterpartyName:          d.CounterpartyName,
		Type:                      d.Type,
		Amount:                    d.Amount,
		BalanceBefore:             balanceBefore,
		BalanceAfter:              balanceAfter,
		Description:               d.Description,
		CreatedBy:                 d.CreatedBy,
		CreatedAt:                 at,
	}
}

// RecordTransferRequest is the untyped double-entry write payload.
type RecordTransferRequest struct {
	CreatorAccountNumber  string `json:"creator_account_number"`
	SenderAccountNumber   string `json:"sender_account_number"`
	SenderName            string `json:"sender_name"`
	ReceiverAccountNumber string `json:"receiver_account_number"`
	ReceiverName          string `json:"receiver_name"`
	Amount                any    `json:"amount"`
	TransactionID         string `json:"transaction_id"`
	Description           string `json:"description"`
	CreatedBy             string `json:"created_by"`
}

// TransferDraft is the strict, normalized form of a RecordTransferRequest.
type TransferDraft struct {
	TransactionID         string
	SenderAccountNumber   string
	SenderName            string
	ReceiverAccountNumber string
	ReceiverName          string
	Amount                decimal.Decimal
	Description           string
	CreatedBy             string
}

// Normalize validates and coerces the request. Only the account initiating
// the debit may create the pair, so creator must equal sender.
func (r *RecordTransferRequest) Normalize() (*TransferDraft, error) {
	d := &TransferDraft{
		TransactionID:         strings.TrimSpace(r.TransactionID),
		SenderAccountNumber:   strings.TrimSpace(r.SenderAccountNumber),
		SenderName:            strings.TrimSpace(r.SenderName),
		ReceiverAccountNumber: strings.TrimSpace(r.ReceiverAccountNumber),
		ReceiverName:          strings.TrimSpace(r.ReceiverName),
		Description:           strings.TrimSpace(r.Description),
		CreatedBy:             strings.TrimSpace(r.CreatedBy),
	}

	creator := strings.TrimSpace(r.CreatorAccountNumber)

	if creator == "" {
		return nil, fmt.Errorf("%w: creator_account_number", ErrMissingField)
	}

	if d.SenderAccountNumber == "" {
		return nil, fmt.Errorf("%w: sender_account_number", ErrMissingField)
	}

	if d.ReceiverAccountNumber == "" {
		return nil, fmt.Errorf("%w: receiver_account_number", ErrMissingField)
	}

	if d.SenderAccountNumber == d.ReceiverAccountNumber {
		return nil, ErrSameAccount
	}

	if creator != d.SenderAccountNumber {
		return nil, ErrCreatorNotSender
	}

	if d.TransactionID == "" {
		return nil, fmt.Errorf("%w: transaction_id", ErrMissingField)
	}

	if _, err := uuid.Parse(d.TransactionID); err != nil {
		return nil, ErrInvalidTransactionID
	}

	amount, err := ParsePositiveAmount(r.Amount)
	if err != nil {
		return nil, err
	}
	d.Amount = amount

	if d.Description == "" {
		return nil, fmt.Errorf("%w: description", ErrMissingField)
	}

	if !createdByPattern.MatchString(d.CreatedBy) {
		return nil, ErrInvalidCreatedBy
	}

	return d, nil
}

// Pair builds both legs of the transfer. The legs share amount, description,
// created_by and created_at, reference each other's counterparty fields, and
// carry no running balances (the double-entry mode stores point-in-time
// entries; balances are derived by summation at query time).
func (d *TransferDraft) Pair(at time.Time) *TransferPair {
	debit := &LedgerEntry{
		EntryID:                   DebitLegID(d.TransactionID),
		TransactionID:             d.TransactionID,
		AccountNumber:             d.SenderAccountNumber,
		CounterpartyAccountNumber: d.ReceiverAccountNumber,
		CounterpartyName:          d.ReceiverName,
		Type:                      EntryTypeDebit,
		Amount:                    d.Amount,
		Description:               d.Description,
		CreatedBy:                 d.CreatedBy,
		CreatedAt:                 at,
	}

	credit := &LedgerEntry{
		EntryID:                   CreditLegID(d.TransactionID),
		TransactionID:             d.TransactionID,
		AccountNumber:             d.ReceiverAccountNumber,
		CounterpartyAccountNumber: d.SenderAccountNumber,
		CounterpartyName:          d.SenderName,
		Type:                      EntryTypeCredit,
		Amount:                    d.Amount,
		Description:               d.Description,
		CreatedBy:                 d.CreatedBy,
		CreatedAt:                 at,
	}

	return &TransferPair{Debit: debit, Credit: credit}
}
