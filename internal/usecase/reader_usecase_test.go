package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jefwallets/ledger/internal/domain"
)

type readerFixture struct {
	store     *fakeStore
	stateRepo *fakeStateRepo
	entryRepo *fakeEntryRepo
	cache     *fakeCache
	reader    *LedgerReader
}

func newReaderFixture() *readerFixture {
	store := newFakeStore()
	f := &readerFixture{
		store:     store,
		stateRepo: &fakeStateRepo{store: store},
		entryRepo: &fakeEntryRepo{store: store},
		cache:     newFakeCache(),
	}

	f.reader = NewLedgerReader(f.stateRepo, f.entryRepo, f.cache)

	return f
}

func (f *readerFixture) seedState(accountNumber string, balance int64, version int64, at time.Time) {
	f.store.states[accountNumber] = &domain.AccountState{
		AccountNumber: accountNumber,
		LatestBalance: decimal.NewFromInt(balance),
		Version:       version,
		UpdatedAt:     at,
	}
}

func (f *readerFixture) seedEntry(entry *domain.LedgerEntry) {
	f.store.entries[entry.EntryID] = entry
}

func readerNow() time.Time {
	return time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)
}

func TestLedgerReaderGetLatestBalanceFromState(t *testing.T) {
	t.Parallel()

	f := newReaderFixture()
	f.seedState("1001", 300, 2, readerNow())

	result, err := f.reader.GetLatestBalance(context.Background(), "1001")
	if err != nil {
		t.Fatalf("GetLatestBalance() error = %v", err)
	}

	if !result.Exists {
		t.Error("Exists = false, want true")
	}

	if !result.Balance.Equal(decimal.NewFromInt(300)) {
		t.Errorf("Balance = %s, want 300", result.Balance)
	}

	if !result.AsOf.Equal(readerNow()) {
		t.Errorf("AsOf = %s, want %s", result.AsOf, readerNow())
	}
}

func TestLedgerReaderGetLatestBalanceFallsBackToNewestEntry(t *testing.T) {
	t.Parallel()

	f := newReaderFixture()

	// Double-entry accounts never get an AccountState row; the newest leg's
	// balance_after stands in.
	f.seedEntry(&domain.LedgerEntry{
		EntryID:       "e1",
		AccountNumber: "1002",
		Type:          domain.EntryTypeCredit,
		Amount:        decimal.NewFromInt(100),
		BalanceAfter:  decimal.NewFromInt(100),
		CreatedAt:     readerNow().Add(-time.Hour),
	})
	f.seedEntry(&domain.LedgerEntry{
		EntryID:       "e2",
		AccountNumber: "1002",
		Type:          domain.EntryTypeDebit,
		Amount:        decimal.NewFromInt(40),
		BalanceAfter:  decimal.NewFromInt(60),
		CreatedAt:     readerNow(),
	})

	result, err := f.reader.GetLatestBalance(context.Background(), "1002")
	if err != nil {
		t.Fatalf("GetLatestBalance() error = %v", err)
	}

	if !result.Exists {
		t.Error("Exists = false, want true")
	}

	if !result.Balance.Equal(decimal.NewFromInt(60)) {
		t.Errorf("Balance = %s, want 60", result.Balance)
	}
}

func TestLedgerReaderGetLatestBalanceUnknownAccount(t *testing.T) {
	t.Parallel()

	f := newReaderFixture()

	result, err := f.reader.GetLatestBalance(context.Background(), "9999")
	if err != nil {
		t.Fatalf("GetLatestBalance() error = %v", err)
	}

	if result.Exists {
		t.Error("Exists = true, want false")
	}

	if !result.Balance.IsZero() {
		t.Errorf("Balance = %s, want 0", result.Balance)
	}
}

func TestLedgerReaderGetLatestBalanceServedFromCache(t *testing.T) {
	t.Parallel()

	f := newReaderFixture()
	f.seedState("1001", 300, 2, readerNow())

	ctx := context.Background()

	if _, err := f.reader.GetLatestBalance(ctx, "1001"); err != nil {
		t.Fatalf("warmup GetLatestBalance() error = %v", err)
	}

	// A repo failure after warmup proves the second read never hits the store.
	f.stateRepo.getErr = errors.New("connection refused")

	result, err := f.reader.GetLatestBalance(ctx, "1001")
	if err != nil {
		t.Fatalf("cached GetLatestBalance() error = %v", err)
	}

	if !result.Balance.Equal(decimal.NewFromInt(300)) {
		t.Errorf("Balance = %s, want 300", result.Balance)
	}
}

func TestLedgerReaderGetLatestBalanceMissingAccountNumber(t *testing.T) {
	t.Parallel()

	f := newReaderFixture()

	_, err := f.reader.GetLatestBalance(context.Background(), "")
	if !errors.Is(err, domain.ErrMissingField) {
		t.Fatalf("GetLatestBalance() error = %v, want ErrMissingField", err)
	}
}

func TestLedgerReaderListEntriesByAccountDrainsAllPages(t *testing.T) {
	t.Parallel()

	f := newReaderFixture()
	f.reader.pageSize = 2

	for i := 0; i < 5; i++ {
		f.seedEntry(&domain.LedgerEntry{
			EntryID:       fmt.Sprintf("e%d", i),
			AccountNumber: "1001",
			Type:          domain.EntryTypeCredit,
			Amount:        decimal.NewFromInt(int64(i + 1)),
			CreatedAt:     readerNow().Add(time.Duration(i) * time.Minute),
		})
	}
	f.seedEntry(&domain.LedgerEntry{
		EntryID:       "other",
		AccountNumber: "2002",
		Type:          domain.EntryTypeCredit,
		Amount:        decimal.NewFromInt(9),
		CreatedAt:     readerNow(),
	})

	entries, err := f.reader.ListEntriesByAccount(context.Background(), "1001", OrderDesc)
	if err != nil {
		t.Fatalf("ListEntriesByAccount() error = %v", err)
	}

	if len(entries) != 5 {
		t.Fatalf("len(entries) = %d, want 5", len(entries))
	}

	for i := 1; i < len(entries); i++ {
		if entries[i].CreatedAt.After(entries[i-1].CreatedAt) {
			t.Fatal("entries not in descending order")
		}
	}
}

func TestLedgerReaderListEntriesByCounterparty(t *testing.T) {
	t.Parallel()

	f := newReaderFixture()
	f.seedEntry(&domain.LedgerEntry{
		EntryID:                   "e1",
		AccountNumber:             "1001",
		CounterpartyAccountNumber: "2002",
		Type:                      domain.EntryTypeDebit,
		Amount:                    decimal.NewFromInt(10),
		CreatedAt:                 readerNow(),
	})

	entries, err := f.reader.ListEntriesByCounterparty(context.Background(), "2002", OrderDesc)
	if err != nil {
		t.Fatalf("ListEntriesByCounterparty() error = %v", err)
	}

	if len(entries) != 1 || entries[0].EntryID != "e1" {
		t.Fatalf("entries = %v, want [e1]", entries)
	}
}

func TestLedgerReaderListTransfersByAccount(t *testing.T) {
	t.Parallel()

	f := newReaderFixture()

	completeTx := "b3c54a21-9f6e-4a7d-8c2b-1f0e9d8c7b6a"
	orphanTx := "0b54d2f3-4c6a-48e9-9d1e-2a3b4c5d6e7f"

	f.seedEntry(&domain.LedgerEntry{
		EntryID:                   domain.DebitLegID(completeTx),
		TransactionID:             completeTx,
		AccountNumber:             "1001",
		CounterpartyAccountNumber: "1002",
		CounterpartyName:          "Kofi Owusu",
		Type:                      domain.EntryTypeDebit,
		Amount:                    decimal.NewFromInt(75),
		CreatedAt:                 readerNow().Add(-time.Hour),
	})
	f.seedEntry(&domain.LedgerEntry{
		EntryID:                   domain.CreditLegID(completeTx),
		TransactionID:             completeTx,
		AccountNumber:             "1002",
		CounterpartyAccountNumber: "1001",
		CounterpartyName:          "Ada Mensah",
		Type:                      domain.EntryTypeCredit,
		Amount:                    decimal.NewFromInt(75),
		CreatedAt:                 readerNow().Add(-time.Hour),
	})

	// Credit leg whose debit counterpart never landed.
	f.seedEntry(&domain.LedgerEntry{
		EntryID:                   domain.CreditLegID(orphanTx),
		TransactionID:             orphanTx,
		AccountNumber:             "1001",
		CounterpartyAccountNumber: "1003",
		Type:                      domain.EntryTypeCredit,
		Amount:                    decimal.NewFromInt(20),
		CreatedAt:                 readerNow(),
	})

	// Single-entry records carry no transaction ID and are not transfers.
	f.seedEntry(&domain.LedgerEntry{
		EntryID:       "plain",
		AccountNumber: "1001",
		Type:          domain.EntryTypeCredit,
		Amount:        decimal.NewFromInt(500),
		CreatedAt:     readerNow().Add(-2 * time.Hour),
	})

	transfers, summary, err := f.reader.ListTransfersByAccount(context.Background(), "1001")
	if err != nil {
		t.Fatalf("ListTransfersByAccount() error = %v", err)
	}

	if len(transfers) != 2 {
		t.Fatalf("len(transfers) = %d, want 2", len(transfers))
	}

	orphan := transfers[0]
	if orphan.TransactionID != orphanTx {
		t.Fatalf("transfers not sorted newest first: got %s", orphan.TransactionID)
	}

	if orphan.Direction != domain.DirectionReceiver {
		t.Errorf("orphan direction = %s, want receiver", orphan.Direction)
	}

	if orphan.IsComplete {
		t.Error("orphan transfer reported complete")
	}

	complete := transfers[1]
	if complete.Direction != domain.DirectionSender {
		t.Errorf("complete direction = %s, want sender", complete.Direction)
	}

	if !complete.IsComplete {
		t.Error("paired transfer reported incomplete")
	}

	if complete.DebitEntry == nil || complete.CreditEntry == nil {
		t.Fatal("paired transfer missing a leg")
	}

	if !summary.DebitTotal.Equal(decimal.NewFromInt(75)) {
		t.Errorf("DebitTotal = %s, want 75", summary.DebitTotal)
	}

	if !summary.CreditTotal.Equal(decimal.NewFromInt(20)) {
		t.Errorf("CreditTotal = %s, want 20", summary.CreditTotal)
	}

	if !summary.NetForAccount.Equal(decimal.NewFromInt(-55)) {
		t.Errorf("NetForAccount = %s, want -55", summary.NetForAccount)
	}
}

func TestLedgerReaderVerifySufficientFunds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name           string
		balance        int64
		seed           bool
		amount         any
		wantSufficient bool
		wantMessage    string
		wantErr        error
	}{
		{
			name:           "sufficient",
			balance:        300,
			seed:           true,
			amount:         "200",
			wantSufficient: true,
			wantMessage:    "sufficient funds",
		},
		{
			name:           "exactly equal",
			balance:        300,
			seed:           true,
			amount:         "300",
			wantSufficient: true,
			wantMessage:    "sufficient funds",
		},
		{
			name:           "insufficient",
			balance:        100,
			seed:           true,
			amount:         "200.01",
			wantSufficient: false,
			wantMessage:    "insufficient funds",
		},
		{
			name:           "unknown account",
			seed:           false,
			amount:         "1",
			wantSufficient: false,
			wantMessage:    "no ledger entries found for this account",
		},
		{
			name:    "negative amount",
			seed:    true,
			balance: 100,
			amount:  "-5",
			wantErr: domain.ErrInvalidAmount,
		},
		{
			name:    "non-numeric amount",
			seed:    true,
			balance: 100,
			amount:  "lots",
			wantErr: domain.ErrInvalidAmount,
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newReaderFixture()
			if tt.seed {
				f.seedState("1001", tt.balance, 1, readerNow())
			}

			result, err := f.reader.VerifySufficientFunds(context.Background(), "1001", tt.amount)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("VerifySufficientFunds() error = %v, want %v", err, tt.wantErr)
				}

				return
			}

			if err != nil {
				t.Fatalf("VerifySufficientFunds() error = %v", err)
			}

			if result.IsSufficient != tt.wantSufficient {
				t.Errorf("IsSufficient = %v, want %v", result.IsSufficient, tt.wantSufficient)
			}

			if result.Message != tt.wantMessage {
				t.Errorf("Message = %q, want %q", result.Message, tt.wantMessage)
			}
		})
	}
}
