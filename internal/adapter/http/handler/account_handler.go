package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/jefwallets/ledger/internal/adapter/http/dto"
	"github.com/jefwallets/ledger/internal/domain"
	"github.com/jefwallets/ledger/internal/usecase"
)

// LedgerReaderService is the read-side surface the handler depends on.
// Satisfied by usecase.LedgerReader.
type LedgerReaderService interface {
	GetLatestBalance(ctx context.Context, accountNumber string) (*usecase.BalanceResult, error)
	ListEntriesByAccount(ctx context.Context, accountNumber string, order usecase.SortOrder) ([]*domain.LedgerEntry, error)
	ListEntriesByCounterparty(ctx context.Context, accountNumber string, order usecase.SortOrder) ([]*domain.LedgerEntry, error)
	ListTransfersByAccount(ctx context.Context, accountNumber string) ([]*domain.ReconciledTransfer, domain.TransferSummary, error)
	VerifySufficientFunds(ctx context.Context, accountNumber string, amount any) (*usecase.FundsResult, error)
}

// AccountHandler handles the read side: balances, entry history, reconciled
// transfers and sufficient-funds checks.
type AccountHandler struct {
	reader LedgerReaderService
}

// NewAccountHandler creates a new AccountHandler.
func NewAccountHandler(reader LedgerReaderService) *AccountHandler {
	return &AccountHandler{reader: reader}
}

// GetBalance returns the account's latest derived balance.
func (h *AccountHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	accountNumber := chi.URLParam(r, "accountNumber")
	if accountNumber == "" {
		writeError(w, http.StatusBadRequest, "missing account number", "")
		return
	}

	balance, err := h.reader.GetLatestBalance(r.Context(), accountNumber)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceFromResult(balance))
}

// ListEntries lists the account's entries. role=counterparty switches to
// entries naming the account as the other side of the movement.
func (h *AccountHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	accountNumber := chi.URLParam(r, "accountNumber")
	if accountNumber == "" {
		writeError(w, http.StatusBadRequest, "missing account number", "")
		return
	}

	order := parseOrderQuery(r)

	var (
		entries []*domain.LedgerEntry
		err     error
	)

	if r.URL.Query().Get("role") == "counterparty" {
		entries, err = h.reader.ListEntriesByCounterparty(r.Context(), accountNumber, order)
	} else {
		entries, err = h.reader.ListEntriesByAccount(r.Context(), accountNumber, order)
	}

	if err != nil {
		writeError(w, mapDomainError(err), "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesListResponse{
		Exists:  len(entries) > 0,
		Entries: dto.EntriesFromDomain(entries),
	})
}

// ListTransfers lists the account's reconciled transfers with totals.
func (h *AccountHandler) ListTransfers(w http.ResponseWriter, r *http.Request) {
	accountNumber := chi.URLParam(r, "accountNumber")
	if accountNumber == "" {
		writeError(w, http.StatusBadRequest, "missing account number", "")
		return
	}

	transfers, summary, err := h.reader.ListTransfersByAccount(r.Context(), accountNumber)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list transfers", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.TransfersFromDomain(transfers, summary))
}

// VerifyFunds checks whether the account's balance covers the requested
// amount.
func (h *AccountHandler) VerifyFunds(w http.ResponseWriter, r *http.Request) {
	accountNumber := chi.URLParam(r, "accountNumber")
	if accountNumber == "" {
		writeError(w, http.StatusBadRequest, "missing account number", "")
		return
	}

	amount := r.URL.Query().Get("amount")
	if amount == "" {
		writeError(w, http.StatusBadRequest, "missing amount", "amount query parameter is required")
		return
	}

	result, err := h.reader.VerifySufficientFunds(r.Context(), accountNumber, amount)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to verify funds", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.FundsResponse{
		IsSufficient: result.IsSufficient,
		Message:      result.Message,
	})
}
