package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func validEntryRequest() RecordEntryRequest {
	return RecordEntryRequest{
		EntryID:                   "e1",
		AccountNumber:             "1001",
		CounterpartyAccountNumber: "2001",
		CounterpartyName:          "Supplier A",
		EntryType:                 "credit",
		Amount:                    "500",
		Description:               "Daily remittance",
		CreatedBy:                 "00031",
	}
}

func TestRecordEntryRequestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("valid request", func(t *testing.T) {
		req := validEntryRequest()
		d, err := req.Normalize()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if d.Type != EntryTypeCredit {
			t.Fatalf("expected credit, got %s", d.Type)
		}
		if !d.Amount.Equal(decimal.NewFromInt(500)) {
			t.Fatalf("expected 500, got %s", d.Amount)
		}
	})

	t.Run("missing entry id", func(t *testing.T) {
		req := validEntryRequest()
		req.EntryID = " "
		if _, err := req.Normalize(); !errors.Is(err, ErrMissingField) {
			t.Fatalf("expected ErrMissingField, got %v", err)
		}
	})

	t.Run("missing account number", func(t *testing.T) {
		req := validEntryRequest()
		req.AccountNumber = ""
		if _, err := req.Normalize(); !errors.Is(err, ErrMissingField) {
			t.Fatalf("expected ErrMissingField, got %v", err)
		}
	})

	t.Run("invalid entry type", func(t *testing.T) {
		req := validEntryRequest()
		req.EntryType = "withdrawal"
		if _, err := req.Normalize(); !errors.Is(err, ErrInvalidEntryType) {
			t.Fatalf("expected ErrInvalidEntryType, got %v", err)
		}
	})

	t.Run("non-positive amount", func(t *testing.T) {
		req := validEntryRequest()
		req.Amount = "-10"
		if _, err := req.Normalize(); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("expected ErrInvalidAmount, got %v", err)
		}
	})

	t.Run("boolean amount", func(t *testing.T) {
		req := validEntryRequest()
		req.Amount = false
		if _, err := req.Normalize(); !errors.Is(err, ErrInvalidAmount) {
			t.Fatalf("expected ErrInvalidAmount, got %v", err)
		}
	})

	t.Run("missing created_by", func(t *testing.T) {
		req := validEntryRequest()
		req.CreatedBy = ""
		if _, err := req.Normalize(); !errors.Is(err, ErrMissingField) {
			t.Fatalf("expected ErrMissingField, got %v", err)
		}
	})
}

func validTransferRequest() RecordTransferRequest {
	return RecordTransferRequest{
		CreatorAccountNumber:  "1006",
		SenderAccountNumber:   "1006",
		SenderName:            "JEF Minimart",
		ReceiverAccountNumber: "1010",
		ReceiverName:          "Caferimo Coffee Shop",
		Amount:                "123.45",
		TransactionID:         "b6c4a6a8-0b2a-4dbe-8f66-8c8f8c8f8c8f",
		Description:           "Test transfer",
		CreatedBy:             "00001",
	}
}

func TestRecordTransferRequestNormalize(t *testing.T) {
	t.Parallel()

	t.Run("valid request", func(t *testing.T) {
		req := validTransferRequest()
		d, err := req.Normalize()
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if !d.Amount.Equal(decimal.RequireFromString("123.45")) {
			t.Fatalf("expected 123.45, got %s", d.Amount)
		}
	})

	t.Run("creator must equal sender", func(t *testing.T) {
		req := validTransferRequest()
		req.CreatorAccountNumber = "9999"
		if _, err := req.Normalize(); !errors.Is(err, ErrCreatorNotSender) {
			t.Fatalf("expected ErrCreatorNotSender, got %v", err)
		}
	})

	t.Run("same account rejected", func(t *testing.T) {
		req := validTransferRequest()
		req.ReceiverAccountNumber = req.SenderAccountNumber
		if _, err := req.Normalize(); !errors.Is(err, ErrSameAccount) {
			t.Fatalf("expected ErrSameAccount, got %v", err)
		}
	})

	t.Run("transaction id must be uuid", func(t *testing.T) {
		req := validTransferRequest()
		req.TransactionID = "t1"
		if _, err := req.Normalize(); !errors.Is(err, ErrInvalidTransactionID) {
			t.Fatalf("expected ErrInvalidTransactionID, got %v", err)
		}
	})

	t.Run("created_by must be operator code", func(t *testing.T) {
		req := validTransferRequest()
		req.CreatedBy = "alice"
		if _, err := req.Normalize(); !errors.Is(err, ErrInvalidCreatedBy) {
			t.Fatalf("expected ErrInvalidCreatedBy, got %v", err)
		}
	})
}

func TestTransferDraftPair(t *testing.T) {
	t.Parallel()

	req := validTransferRequest()
	d, err := req.Normalize()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	pair := d.Pair(testNow())

	if pair.Debit.Type != EntryTypeDebit || pair.Credit.Type != EntryTypeCredit {
		t.Fatal("pair legs have wrong directions")
	}

	if pair.Debit.AccountNumber != "1006" || pair.Credit.AccountNumber != "1010" {
		t.Fatal("pair legs assigned to wrong accounts")
	}

	if pair.Debit.CounterpartyAccountNumber != "1010" || pair.Credit.CounterpartyAccountNumber != "1006" {
		t.Fatal("counterparty fields must cross-reference the other leg")
	}

	if !pair.Debit.Amount.Equal(pair.Credit.Amount) {
		t.Fatal("legs must share the amount")
	}

	if !pair.Debit.CreatedAt.Equal(pair.Credit.CreatedAt) {
		t.Fatal("legs must share created_at")
	}

	// Deterministic leg IDs: same transaction always derives the same pair.
	if pair.Debit.EntryID != DebitLegID(d.TransactionID) {
		t.Fatal("debit leg id not derived from transaction id")
	}
	if pair.Debit.EntryID == pair.Credit.EntryID {
		t.Fatal("leg ids must differ")
	}

	again := d.Pair(testNow())
	if again.Debit.EntryID != pair.Debit.EntryID || again.Credit.EntryID != pair.Credit.EntryID {
		t.Fatal("leg ids must be stable across retries")
	}
}
