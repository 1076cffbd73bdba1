package handler

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jefwallets/ledger/internal/domain"
	"github.com/jefwallets/ledger/internal/usecase"
)

func TestMapDomainError(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{domain.ErrMissingField, http.StatusBadRequest},
		{fmt.Errorf("%w: entry_id", domain.ErrMissingField), http.StatusBadRequest},
		{domain.ErrInvalidAmount, http.StatusBadRequest},
		{domain.ErrInvalidEntryType, http.StatusBadRequest},
		{domain.ErrInvalidTransactionID, http.StatusBadRequest},
		{domain.ErrInvalidCreatedBy, http.StatusBadRequest},
		{domain.ErrCreatorNotSender, http.StatusBadRequest},
		{domain.ErrSameAccount, http.StatusBadRequest},
		{domain.ErrDuplicateEntry, http.StatusConflict},
		{domain.ErrDuplicateTransaction, http.StatusConflict},
		{domain.ErrConcurrencyConflict, http.StatusConflict},
		{domain.ErrAccountNotFound, http.StatusNotFound},
		{domain.ErrEntryNotFound, http.StatusNotFound},
		{domain.ErrStoreUnavailable, http.StatusServiceUnavailable},
		{errors.New("unexpected"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		if got := mapDomainError(tt.err); got != tt.want {
			t.Errorf("mapDomainError(%v) = %d, want %d", tt.err, got, tt.want)
		}
	}
}

func TestParseOrderQuery(t *testing.T) {
	tests := []struct {
		query string
		want  usecase.SortOrder
	}{
		{"", usecase.OrderDesc},
		{"order=asc", usecase.OrderAsc},
		{"order=desc", usecase.OrderDesc},
		{"order=bogus", usecase.OrderDesc},
	}

	for _, tt := range tests {
		r := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)
		if got := parseOrderQuery(r); got != tt.want {
			t.Errorf("parseOrderQuery(%q) = %s, want %s", tt.query, got, tt.want)
		}
	}
}
