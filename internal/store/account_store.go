package store

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/budgetbook/backend/internal/models"
)

// AccountStore persists account identity and credentials.
type AccountStore struct {
	db *sql.DB
}

func NewAccountStore(db *sql.DB) *AccountStore {
	return &AccountStore{db: db}
}

// Create registers a new account. Name and email must be globally unique;
// emails are stored lower-cased. The password hash is stored as given and
// never inspected here.
func (s *AccountStore) Create(ctx context.Context, name, email, passwordHash string) (*models.Account, error) {
	email = strings.ToLower(email)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	var taken bool
	if err := tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM accounts WHERE name = $1)", name).Scan(&taken); err != nil {
		return nil, fmt.Errorf("error checking name: %w", err)
	}
	if taken {
		return nil, models.ErrDuplicateName
	}

	if err := tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM accounts WHERE email = $1)", email).Scan(&taken); err != nil {
		return nil, fmt.Errorf("error checking email: %w", err)
	}
	if taken {
		return nil, models.ErrDuplicateEmail
	}

	account := &models.Account{
		Name:  name,
		Email: email,
		Image: models.DefaultImage,
	}
	account.PasswordHash = passwordHash

	err = tx.QueryRowContext(ctx,
		"INSERT INTO accounts (name, email, password_hash, image) VALUES ($1, $2, $3, $4) RETURNING id, created_at",
		name, email, passwordHash, models.DefaultImage).Scan(&account.ID, &account.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error creating account: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("error committing account: %w", err)
	}
	return account, nil
}

func (s *AccountStore) GetByID(ctx context.Context, id int) (*models.Account, error) {
	return s.get(ctx, "SELECT id, name, email, password_hash, image, created_at FROM accounts WHERE id = $1", id)
}

func (s *AccountStore) GetByEmail(ctx context.Context, email string) (*models.Account, error) {
	return s.get(ctx, "SELECT id, name, email, password_hash, image, created_at FROM accounts WHERE email = $1",
		strings.ToLower(email))
}

func (s *AccountStore) get(ctx context.Context, query string, arg any) (*models.Account, error) {
	var a models.Account
	err := s.db.QueryRowContext(ctx, query, arg).
		Scan(&a.ID, &a.Name, &a.Email, &a.PasswordHash, &a.Image, &a.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching account: %w", err)
	}
	return &a, nil
}

// UpdateProfile changes name, email and image. Uniqueness checks exclude the
// account's own row, so a no-op rename is allowed.
func (s *AccountStore) UpdateProfile(ctx context.Context, id int, name, email, image string) error {
	email = strings.ToLower(email)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}
	defer tx.Rollback()

	var taken bool
	if err := tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM accounts WHERE name = $1 AND id <> $2)", name, id).Scan(&taken); err != nil {
		return fmt.Errorf("error checking name: %w", err)
	}
	if taken {
		return models.ErrDuplicateName
	}

	if err := tx.QueryRowContext(ctx,
		"SELECT EXISTS(SELECT 1 FROM accounts WHERE email = $1 AND id <> $2)", email, id).Scan(&taken); err != nil {
		return fmt.Errorf("error checking email: %w", err)
	}
	if taken {
		return models.ErrDuplicateEmail
	}

	result, err := tx.ExecContext(ctx,
		"UPDATE accounts SET name = $1, email = $2, image = $3 WHERE id = $4",
		name, email, image, id)
	if err != nil {
		return fmt.Errorf("error updating account: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrNotFound
	}

	return tx.Commit()
}

// SetPassword replaces the stored hash unconditionally. Authorization (an
// active session or a verified reset token) is the caller's responsibility.
func (s *AccountStore) SetPassword(ctx context.Context, id int, passwordHash string) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE accounts SET password_hash = $1 WHERE id = $2", passwordHash, id)
	if err != nil {
		return fmt.Errorf("error updating password: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return models.ErrNotFound
	}
	return nil
}
