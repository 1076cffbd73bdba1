package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/jefwallets/ledger/internal/domain"
	"github.com/jefwallets/ledger/internal/usecase"
)

// AccountStateRepository implements usecase.AccountStateRepository on
// PostgreSQL. The version column is the fence: every committed write must
// name the exact version it read.
type AccountStateRepository struct {
	pool *pgxpool.Pool
}

// NewAccountStateRepository creates a new AccountStateRepository.
func NewAccountStateRepository(pool *pgxpool.Pool) *AccountStateRepository {
	return &AccountStateRepository{pool: pool}
}

// Get returns the state for an account.
func (r *AccountStateRepository) Get(ctx context.Context, accountNumber string) (*domain.AccountState, error) {
	var (
		state     domain.AccountState
		balance   pgtype.Numeric
		updatedAt pgtype.Timestamptz
	)

	err := r.pool.QueryRow(ctx, `
		SELECT account_number, latest_balance, version, updated_at
		FROM account_states
		WHERE account_number = $1`, accountNumber).
		Scan(&state.AccountNumber, &balance, &state.Version, &updatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrAccountNotFound
	}

	if err != nil {
		return nil, fmt.Errorf("get account state: %w", err)
	}

	state.LatestBalance = numericToDecimal(balance)
	state.UpdatedAt = updatedAt.Time

	return &state, nil
}

// UpsertFenced commits next within tx. expectedVersion 0 inserts a fresh row
// and loses to any concurrent creator; otherwise the update lands only if
// the stored version still equals expectedVersion. Zero rows affected means
// a racing writer advanced the account first.
func (r *AccountStateRepository) UpsertFenced(ctx context.Context, tx usecase.Transaction, next *domain.AccountState, expectedVersion int64) error {
	pgxTx := tx.(*Tx).PgxTx()

	var (
		tag pgconn.CommandTag
		err error
	)

	if expectedVersion == 0 {
		tag, err = pgxTx.Exec(ctx, `
			INSERT INTO account_states (account_number, latest_balance, version, updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (account_number) DO NOTHING`,
			next.AccountNumber,
			decimalToNumeric(next.LatestBalance),
			next.Version,
			timeToPgTimestamptz(next.UpdatedAt),
		)
	} else {
		tag, err = pgxTx.Exec(ctx, `
			UPDATE account_states
			SET latest_balance = $2, version = $3, updated_at = $4
			WHERE account_number = $1 AND version = $5`,
			next.AccountNumber,
			decimalToNumeric(next.LatestBalance),
			next.Version,
			timeToPgTimestamptz(next.UpdatedAt),
			expectedVersion,
		)
	}

	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrConcurrencyConflict
		}

		return fmt.Errorf("upsert account state: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrConcurrencyConflict
	}

	return nil
}
