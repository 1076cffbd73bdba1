package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jefwallets/ledger/internal/domain"
	"github.com/jefwallets/ledger/internal/usecase"
)

const entryColumns = `entry_id, transaction_id, account_number, counterparty_account_number,
	counterparty_name, entry_type, amount, balance_before, balance_after,
	description, created_by, created_at`

// EntryRepository implements usecase.EntryRepository on PostgreSQL.
type EntryRepository struct {
	pool *pgxpool.Pool
}

// NewEntryRepository creates a new EntryRepository.
func NewEntryRepository(pool *pgxpool.Pool) *EntryRepository {
	return &EntryRepository{pool: pool}
}

// Insert stores the entry unless one with its entry ID already exists. The
// insert-if-absent guard is the storage half of the idempotency contract.
func (r *EntryRepository) Insert(ctx context.Context, tx usecase.Transaction, entry *domain.LedgerEntry) error {
	pgxTx := tx.(*Tx).PgxTx()

	tag, err := pgxTx.Exec(ctx, `
		INSERT INTO ledger_entries (`+entryColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (entry_id) DO NOTHING`,
		entry.EntryID,
		textOrNull(entry.TransactionID),
		entry.AccountNumber,
		entry.CounterpartyAccountNumber,
		entry.CounterpartyName,
		string(entry.Type),
		decimalToNumeric(entry.Amount),
		decimalToNumeric(entry.BalanceBefore),
		decimalToNumeric(entry.BalanceAfter),
		entry.Description,
		entry.CreatedBy,
		timeToPgTimestamptz(entry.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrDuplicateEntry
		}

		return fmt.Errorf("insert ledger entry: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrDuplicateEntry
	}

	return nil
}

// GetByID retrieves an entry by its entry ID.
func (r *EntryRepository) GetByID(ctx context.Context, entryID string) (*domain.LedgerEntry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+entryColumns+`
		FROM ledger_entries
		WHERE entry_id = $1`, entryID)

	entry, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEntryNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("get ledger entry: %w", err)
	}

	return entry, nil
}

// GetByTransaction retrieves all legs recorded under a transaction ID.
func (r *EntryRepository) GetByTransaction(ctx context.Context, transactionID string) ([]*domain.LedgerEntry, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+entryColumns+`
		FROM ledger_entries
		WHERE transaction_id = $1
		ORDER BY created_at`, transactionID)
	if err != nil {
		return nil, fmt.Errorf("get entries by transaction: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// ListByAccount returns one page of entries where the account is the primary
// party, ordered by creation time.
func (r *EntryRepository) ListByAccount(ctx context.Context, accountNumber string, order usecase.SortOrder, limit, offset int) ([]*domain.LedgerEntry, error) {
	return r.listPage(ctx, "account_number", accountNumber, order, limit, offset)
}

// ListByCounterparty returns one page of entries where the account is the
// other side of the movement.
func (r *EntryRepository) ListByCounterparty(ctx context.Context, accountNumber string, order usecase.SortOrder, limit, offset int) ([]*domain.LedgerEntry, error) {
	return r.listPage(ctx, "counterparty_account_number", accountNumber, order, limit, offset)
}

func (r *EntryRepository) listPage(ctx context.Context, column, accountNumber string, order usecase.SortOrder, limit, offset int) ([]*domain.LedgerEntry, error) {
	direction := "DESC"
	if order == usecase.OrderAsc {
		direction = "ASC"
	}

	rows, err := r.pool.Query(ctx, `
		SELECT `+entryColumns+`
		FROM ledger_entries
		WHERE `+column+` = $1
		ORDER BY created_at `+direction+`, entry_id `+direction+`
		LIMIT $2 OFFSET $3`, accountNumber, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list ledger entries: %w", err)
	}
	defer rows.Close()

	return collectEntries(rows)
}

// GetLatestByAccount returns the most recently created entry for the account.
func (r *EntryRepository) GetLatestByAccount(ctx context.Context, accountNumber string) (*domain.LedgerEntry, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+entryColumns+`
		FROM ledger_entries
		WHERE account_number = $1
		ORDER BY created_at DESC, entry_id DESC
		LIMIT 1`, accountNumber)

	entry, err := scanEntry(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrEntryNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("get latest ledger entry: %w", err)
	}

	return entry, nil
}

func collectEntries(rows pgx.Rows) ([]*domain.LedgerEntry, error) {
	entries := make([]*domain.LedgerEntry, 0)

	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan ledger entry: %w", err)
		}

		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ledger entries: %w", err)
	}

	return entries, nil
}

func scanEntry(row pgx.Row) (*domain.LedgerEntry, error) {
	var (
		entry         domain.LedgerEntry
		transactionID pgtype.Text
		entryType     string
		amount        pgtype.Numeric
		balanceBefore pgtype.Numeric
		balanceAfter  pgtype.Numeric
		createdAt     pgtype.Timestamptz
	)

	err := row.Scan(
		&entry.EntryID,
		&transactionID,
		&entry.AccountNumber,
		&entry.CounterpartyAccountNumber,
		&entry.CounterpartyName,
		&entryType,
		&amount,
		&balanceBefore,
		&balanceAfter,
		&entry.Description,
		&entry.CreatedBy,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	entry.TransactionID = transactionID.String
	entry.Type = domain.EntryType(entryType)
	entry.Amount = numericToDecimal(amount)
	entry.BalanceBefore = numericToDecimal(balanceBefore)
	entry.BalanceAfter = numericToDecimal(balanceAfter)
	entry.CreatedAt = createdAt.Time

	return &entry, nil
}
