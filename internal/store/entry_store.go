package store

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/budgetbook/backend/internal/models"
)

// PageSize is the number of entries shown per page.
const PageSize = 5

// Pagination describes one page of a reverse-chronological listing.
type Pagination struct {
	Page       int
	TotalPages int
	Total      int
	HasPrev    bool
	HasNext    bool
	PrevPage   int
	NextPage   int
}

// EntryStore persists ledger entries and computes balances. All operations
// are scoped to the owning account: an id belonging to another account is
// indistinguishable from a missing one.
type EntryStore struct {
	db *sql.DB
}

func NewEntryStore(db *sql.DB) *EntryStore {
	return &EntryStore{db: db}
}

// Create inserts an entry timestamped with the server clock. The income and
// costs flags are stored as given; exclusivity is not enforced.
func (s *EntryStore) Create(ctx context.Context, accountID int, income, costs bool, amount int64) (*models.Entry, error) {
	entry := &models.Entry{
		Income:    income,
		Costs:     costs,
		Amount:    amount,
		AccountID: accountID,
	}
	err := s.db.QueryRowContext(ctx,
		"INSERT INTO entries (income, costs, amount, account_id) VALUES ($1, $2, $3, $4) RETURNING id, created_at",
		income, costs, amount, accountID).Scan(&entry.ID, &entry.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("error creating entry: %w", err)
	}
	return entry, nil
}

// Get fetches one entry owned by the account.
func (s *EntryStore) Get(ctx context.Context, id, accountID int) (*models.Entry, error) {
	var e models.Entry
	err := s.db.QueryRowContext(ctx,
		"SELECT id, income, costs, amount, account_id, created_at FROM entries WHERE id = $1 AND account_id = $2",
		id, accountID).Scan(&e.ID, &e.Income, &e.Costs, &e.Amount, &e.AccountID, &e.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, models.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching entry: %w", err)
	}
	return &e, nil
}

// ListPage returns one page of the account's entries, newest first.
func (s *EntryStore) ListPage(ctx context.Context, accountID, page int) ([]models.Entry, Pagination, error) {
	if page < 1 {
		page = 1
	}

	var total int
	if err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM entries WHERE account_id = $1", accountID).Scan(&total); err != nil {
		return nil, Pagination{}, fmt.Errorf("error counting entries: %w", err)
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, income, costs, amount, account_id, created_at FROM entries WHERE account_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3",
		accountID, PageSize, (page-1)*PageSize)
	if err != nil {
		return nil, Pagination{}, fmt.Errorf("error listing entries: %w", err)
	}
	defer rows.Close()

	var entries []models.Entry
	for rows.Next() {
		var e models.Entry
		if err := rows.Scan(&e.ID, &e.Income, &e.Costs, &e.Amount, &e.AccountID, &e.CreatedAt); err != nil {
			return nil, Pagination{}, fmt.Errorf("error scanning entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, Pagination{}, err
	}

	totalPages := (total + PageSize - 1) / PageSize
	if totalPages == 0 {
		totalPages = 1
	}
	p := Pagination{
		Page:       page,
		TotalPages: totalPages,
		Total:      total,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
		PrevPage:   page - 1,
		NextPage:   page + 1,
	}
	return entries, p, nil
}

// Balance sums the account's entries: +amount for income, -amount for costs.
// An entry with both flags nets to zero and one with neither contributes
// nothing, mirroring how the flags are defined on the data model.
func (s *EntryStore) Balance(ctx context.Context, accountID int) (int64, error) {
	var balance int64
	err := s.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(
			CASE WHEN income THEN amount ELSE 0 END -
			CASE WHEN costs THEN amount ELSE 0 END), 0)
		FROM entries WHERE account_id = $1`, accountID).Scan(&balance)
	if err != nil {
		return 0, fmt.Errorf("error computing balance: %w", err)
	}
	return balance, nil
}

// Update rewrites flags and amount of an entry owned by the account.
func (s *EntryStore) Update(ctx context.Context, id, accountID int, income, costs bool, amount int64) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE entries SET income = $1, costs = $2, amount = $3 WHERE id = $4 AND account_id = $5",
		income, costs, amount, id, accountID)
	if err != nil {
		return fmt.Errorf("error updating entry: %w", err)
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

// Delete removes an entry owned by the account.
func (s *EntryStore) Delete(ctx context.Context, id, accountID int) error {
	result, err := s.db.ExecContext(ctx,
		"DELETE FROM entries WHERE id = $1 AND account_id = $2", id, accountID)
	if err != nil {
		return fmt.Errorf("error deleting entry: %w", err)
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
