package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/jefwallets/ledger/internal/domain"
	"github.com/jefwallets/ledger/internal/usecase"
)

// ErrorResponse is the envelope for failed requests.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// RecordEntryResponse acknowledges a single-entry write.
type RecordEntryResponse struct {
	IsCreated bool   `json:"is_created"`
	Message   string `json:"message"`
	EntryID   string `json:"entry_id"`
}

// RecordTransferResponse acknowledges a double-entry write.
type RecordTransferResponse struct {
	IsCreated     bool   `json:"is_created"`
	Message       string `json:"message"`
	TransactionID string `json:"transaction_id"`
	DebitEntryID  string `json:"debit_entry_id"`
	CreditEntryID string `json:"credit_entry_id"`
}

// EnqueueResponse acknowledges that a write request was handed to the queue.
type EnqueueResponse struct {
	IsEnqueued bool   `json:"is_enqueued"`
	Message    string `json:"message"`
	MessageID  string `json:"message_id"`
}

// BalanceResponse reports an account's latest derived balance.
type BalanceResponse struct {
	Exists  bool            `json:"exists"`
	Balance decimal.Decimal `json:"balance"`
	AsOf    *time.Time      `json:"as_of,omitempty"`
}

// BalanceFromResult converts a reader balance result to a response.
func BalanceFromResult(r *usecase.BalanceResult) *BalanceResponse {
	resp := &BalanceResponse{
		Exists:  r.Exists,
		Balance: r.Balance,
	}

	if r.Exists && !r.AsOf.IsZero() {
		asOf := r.AsOf
		resp.AsOf = &asOf
	}

	return resp
}

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	EntryID                   string          `json:"entry_id"`
	TransactionID             string          `json:"transaction_id,omitempty"`
	AccountNumber             string          `json:"account_number"`
	CounterpartyAccountNumber string          `json:"counterparty_account_number"`
	CounterpartyName          string          `json:"counterparty_name"`
	EntryType                 string          `json:"entry_type"`
	Amount                    decimal.Decimal `json:"amount"`
	BalanceBefore             decimal.Decimal `json:"balance_before"`
	BalanceAfter              decimal.Decimal `json:"balance_after"`
	Description               string          `json:"description"`
	CreatedBy                 string          `json:"created_by"`
	CreatedAt                 time.Time       `json:"created_at"`
}

// EntryFromDomain converts a domain entry to a response.
func EntryFromDomain(e *domain.LedgerEntry) *EntryResponse {
	return &EntryResponse{
		EntryID:                   e.EntryID,
		TransactionID:             e.TransactionID,
		AccountNumber:             e.AccountNumber,
		CounterpartyAccountNumber: e.CounterpartyAccountNumber,
		CounterpartyName:          e.CounterpartyName,
		EntryType:                 string(e.Type),
		Amount:                    e.Amount,
		BalanceBefore:             e.BalanceBefore,
		BalanceAfter:              e.BalanceAfter,
		Description:               e.Description,
		CreatedBy:                 e.CreatedBy,
		CreatedAt:                 e.CreatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.LedgerEntry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// EntriesListResponse is the listing envelope for an account's history.
type EntriesListResponse struct {
	Exists  bool             `json:"exists"`
	Entries []*EntryResponse `json:"entries"`
}

// TransferItemResponse represents one reconciled transfer in API responses.
type TransferItemResponse struct {
	TransactionID             string          `json:"transaction_id"`
	Direction                 string          `json:"direction"`
	CounterpartyAccountNumber string          `json:"counterparty_account_number"`
	CounterpartyName          string          `json:"counterparty_name"`
	Amount                    decimal.Decimal `json:"amount"`
	Description               string          `json:"description"`
	CreatedBy                 string          `json:"created_by"`
	CreatedAt                 time.Time       `json:"created_at"`
	IsComplete                bool            `json:"is_complete"`
	DebitEntry                *EntryResponse  `json:"debit_entry,omitempty"`
	CreditEntry               *EntryResponse  `json:"credit_entry,omitempty"`
}

// TransferFromDomain converts a reconciled transfer to a response.
func TransferFromDomain(t *domain.ReconciledTransfer) *TransferItemResponse {
	resp := &TransferItemResponse{
		TransactionID:             t.TransactionID,
		Direction:                 string(t.Direction),
		CounterpartyAccountNumber: t.CounterpartyAccountNumber,
		CounterpartyName:          t.CounterpartyName,
		Amount:                    t.Amount,
		Description:               t.Description,
		CreatedBy:                 t.CreatedBy,
		CreatedAt:                 t.CreatedAt,
		IsComplete:                t.IsComplete,
	}

	if t.DebitEntry != nil {
		resp.DebitEntry = EntryFromDomain(t.DebitEntry)
	}

	if t.CreditEntry != nil {
		resp.CreditEntry = EntryFromDomain(t.CreditEntry)
	}

	return resp
}

// TransferSummaryResponse carries the accumulated totals of a listing.
type TransferSummaryResponse struct {
	DebitTotal    decimal.Decimal `json:"debit_total"`
	CreditTotal   decimal.Decimal `json:"credit_total"`
	NetForAccount decimal.Decimal `json:"net_for_account"`
}

// TransfersListResponse is the listing envelope for an account's transfers.
type TransfersListResponse struct {
	Exists    bool                    `json:"exists"`
	Transfers []*TransferItemResponse `json:"transfers"`
	Summary   TransferSummaryResponse `json:"summary"`
}

// TransfersFromDomain converts reconciled transfers and their summary to the
// listing envelope.
func TransfersFromDomain(transfers []*domain.ReconciledTransfer, summary domain.TransferSummary) *TransfersListResponse {
	items := make([]*TransferItemResponse, len(transfers))
	for i, t := range transfers {
		items[i] = TransferFromDomain(t)
	}

	return &TransfersListResponse{
		Exists:    len(items) > 0,
		Transfers: items,
		Summary: TransferSummaryResponse{
			DebitTotal:    summary.DebitTotal,
			CreditTotal:   summary.CreditTotal,
			NetForAccount: summary.NetForAccount,
		},
	}
}

// FundsResponse reports a sufficient-funds check.
type FundsResponse struct {
	IsSufficient bool   `json:"is_sufficient"`
	Message      string `json:"message"`
}
