package handler

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/jefwallets/ledger/internal/adapter/http/dto"
	"github.com/jefwallets/ledger/internal/domain"
	"github.com/jefwallets/ledger/internal/usecase"
)

// LedgerWriterService is the write-side surface the handler depends on.
// Satisfied by usecase.LedgerWriter.
type LedgerWriterService interface {
	RecordEntry(ctx context.Context, req domain.RecordEntryRequest) (*domain.LedgerEntry, error)
	RecordTransfer(ctx context.Context, req domain.RecordTransferRequest) (*domain.TransferPair, error)
}

// LedgerHandler handles the write side: recording entries and transfers,
// either synchronously or by handing the request to the queue.
type LedgerHandler struct {
	writer    LedgerWriterService
	publisher usecase.Publisher
	idGen     usecase.IDGenerator
}

// NewLedgerHandler creates a new LedgerHandler. publisher may be nil, which
// disables the enqueue endpoints. idGen may be nil, which requires enqueued
// entries to carry their own entry ID.
func NewLedgerHandler(writer LedgerWriterService, publisher usecase.Publisher, idGen usecase.IDGenerator) *LedgerHandler {
	return &LedgerHandler{writer: writer, publisher: publisher, idGen: idGen}
}

// RecordEntry records a single ledger entry synchronously.
func (h *LedgerHandler) RecordEntry(w http.ResponseWriter, r *http.Request) {
	var req domain.RecordEntryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	entry, err := h.writer.RecordEntry(r.Context(), req)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to record entry", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.RecordEntryResponse{
		IsCreated: true,
		Message:   "entry recorded",
		EntryID:   entry.EntryID,
	})
}

// RecordTransfer records both legs of a transfer synchronously.
func (h *LedgerHandler) RecordTransfer(w http.ResponseWriter, r *http.Request) {
	var req domain.RecordTransferRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	pair, err := h.writer.RecordTransfer(r.Context(), req)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to record transfer", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.RecordTransferResponse{
		IsCreated:     true,
		Message:       "transfer recorded",
		TransactionID: pair.Debit.TransactionID,
		DebitEntryID:  pair.Debit.EntryID,
		CreditEntryID: pair.Credit.EntryID,
	})
}

// EnqueueEntry validates an entry request and hands it to the queue for
// asynchronous recording.
func (h *LedgerHandler) EnqueueEntry(w http.ResponseWriter, r *http.Request) {
	if h.publisher == nil {
		writeError(w, http.StatusNotImplemented, "queue not configured", "")
		return
	}

	var req domain.RecordEntryRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	// Assign the entry ID here so queue redelivery replays the same entry
	// instead of minting a new one.
	if req.EntryID == "" && h.idGen != nil {
		req.EntryID = h.idGen.Generate()
	}

	// Reject malformed payloads before they reach the queue.
	if _, err := req.Normalize(); err != nil {
		writeError(w, mapDomainError(err), "invalid entry request", err.Error())
		return
	}

	messageID, err := h.publisher.PublishEntry(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "failed to enqueue entry", err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, dto.EnqueueResponse{
		IsEnqueued: true,
		Message:    "entry accepted for recording",
		MessageID:  messageID,
	})
}

// EnqueueTransfer validates a transfer request and hands it to the queue.
func (h *LedgerHandler) EnqueueTransfer(w http.ResponseWriter, r *http.Request) {
	if h.publisher == nil {
		writeError(w, http.StatusNotImplemented, "queue not configured", "")
		return
	}

	var req domain.RecordTransferRequest
	if err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if _, err := req.Normalize(); err != nil {
		writeError(w, mapDomainError(err), "invalid transfer request", err.Error())
		return
	}

	messageID, err := h.publisher.PublishTransfer(r.Context(), req)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "failed to enqueue transfer", err.Error())
		return
	}

	writeJSON(w, http.StatusAccepted, dto.EnqueueResponse{
		IsEnqueued: true,
		Message:    "transfer accepted for recording",
		MessageID:  messageID,
	})
}

func decodeBody(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.UseNumber()

	return dec.Decode(v)
}
