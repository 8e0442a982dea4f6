package repository

import (
	"context"
	"errors"
	"fmt"

	"cravesmart-backend/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// pgUniqueViolation is the SQLSTATE for unique_violation
const pgUniqueViolation = "23505"

// AccountRepository handles database operations for accounts
type AccountRepository struct {
	db *pgxpool.Pool
}

// NewAccountRepository creates a new account repository
func NewAccountRepository(db *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{db: db}
}

// AccountsSchema creates the accounts table used by AccountRepository
const AccountsSchema = `
CREATE TABLE IF NOT EXISTS accounts (
    id UUID PRIMARY KEY DEFAULT gen_random_uuid(),
    username VARCHAR(255) NOT NULL UNIQUE,
    email VARCHAR(255),
    password_hash TEXT NOT NULL,
    profiles JSONB NOT NULL DEFAULT '[]'::jsonb,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE INDEX IF NOT EXISTS idx_accounts_email ON accounts (email);
`

const accountColumns = `id, username, email, password_hash, profiles, created_at, updated_at`

// Create creates a new account record
func (r *AccountRepository) Create(ctx context.Context, account *models.Account) error {
	if account.Profiles == nil {
		account.Profiles = models.SavedProfiles{}
	}

	query := `
		INSERT INTO accounts (
			id, username, email, password_hash, profiles
		) VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.QueryRow(
		ctx, query,
		account.ID,
		account.Username,
		account.Email,
		account.PasswordHash,
		account.Profiles,
	).Scan(&account.CreatedAt, &account.UpdatedAt)

	if isUniqueViolation(err) {
		return ErrUsernameTaken
	}
	return err
}

// GetByID retrieves an account by ID
func (r *AccountRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1`

	return r.scanOne(r.db.QueryRow(ctx, query, id))
}

// FindByLogin retrieves an account by username, falling back to email
func (r *AccountRepository) FindByLogin(ctx context.Context, login string) (*models.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE username = $1 OR email = $1
		ORDER BY (username = $1) DESC
		LIMIT 1`

	return r.scanOne(r.db.QueryRow(ctx, query, login))
}

// Update updates an account's email, password hash and profiles
func (r *AccountRepository) Update(ctx context.Context, account *models.Account) error {
	return updateAccount(ctx, r.db, account)
}

// Modify runs fn on the locked account row and saves the result in the same transaction
func (r *AccountRepository) Modify(ctx context.Context, id uuid.UUID, fn func(*models.Account) error) (err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		}
	}()

	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE id = $1
		FOR UPDATE`

	account, err := r.scanOne(tx.QueryRow(ctx, query, id))
	if err != nil {
		return err
	}
	if err = fn(account); err != nil {
		return err
	}
	if err = updateAccount(ctx, tx, account); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

// rowQuerier is satisfied by both *pgxpool.Pool and pgx.Tx
type rowQuerier interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

func updateAccount(ctx context.Context, q rowQuerier, account *models.Account) error {
	query := `
		UPDATE accounts
		SET email = $2, password_hash = $3, profiles = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING created_at, updated_at`

	err := q.QueryRow(
		ctx, query,
		account.ID,
		account.Email,
		account.PasswordHash,
		account.Profiles,
	).Scan(&account.CreatedAt, &account.UpdatedAt)

	if errors.Is(err, pgx.ErrNoRows) {
		return ErrAccountNotFound
	}
	return err
}

func (r *AccountRepository) scanOne(row pgx.Row) (*models.Account, error) {
	account := &models.Account{}
	err := row.Scan(
		&account.ID,
		&account.Username,
		&account.Email,
		&account.PasswordHash,
		&account.Profiles,
		&account.CreatedAt,
		&account.UpdatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrAccountNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan account: %w", err)
	}
	return account, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgUniqueViolation
}
