package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"

	"github.com/budgetbook/backend/internal/models"
)

func TestEntryStore_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	store := NewEntryStore(db)
	ctx := context.Background()

	mock.ExpectQuery("INSERT INTO entries").
		WithArgs(true, false, int64(100), 1).
		WillReturnRows(sqlmock.NewRows([]string{"id", "created_at"}).AddRow(3, time.Now()))

	entry, err := store.Create(ctx, 1, true, false, 100)
	assert.NoError(t, err)
	assert.Equal(t, 3, entry.ID)
	assert.True(t, entry.Income)
	assert.False(t, entry.Costs)
	assert.Equal(t, int64(100), entry.Amount)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryStore_ListPage(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	store := NewEntryStore(db)
	ctx := context.Background()

	t.Run("last page holds the remainder", func(t *testing.T) {
		// 12 entries, page 3: the 2 oldest.
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM entries`).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(12))
		mock.ExpectQuery("SELECT id, income, costs, amount, account_id, created_at FROM entries").
			WithArgs(1, PageSize, 10).
			WillReturnRows(sqlmock.NewRows([]string{"id", "income", "costs", "amount", "account_id", "created_at"}).
				AddRow(2, true, false, 20, 1, time.Now().Add(-11*time.Hour)).
				AddRow(1, false, true, 30, 1, time.Now().Add(-12*time.Hour)))

		entries, page, err := store.ListPage(ctx, 1, 3)
		assert.NoError(t, err)
		assert.Len(t, entries, 2)
		assert.Equal(t, 3, page.Page)
		assert.Equal(t, 3, page.TotalPages)
		assert.Equal(t, 12, page.Total)
		assert.True(t, page.HasPrev)
		assert.False(t, page.HasNext)
	})

	t.Run("empty ledger", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM entries`).
			WithArgs(2).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(0))
		mock.ExpectQuery("SELECT id, income, costs, amount, account_id, created_at FROM entries").
			WithArgs(2, PageSize, 0).
			WillReturnRows(sqlmock.NewRows([]string{"id", "income", "costs", "amount", "account_id", "created_at"}))

		entries, page, err := store.ListPage(ctx, 2, 1)
		assert.NoError(t, err)
		assert.Empty(t, entries)
		assert.Equal(t, 1, page.TotalPages)
		assert.False(t, page.HasNext)
	})

	t.Run("page below one is clamped", func(t *testing.T) {
		mock.ExpectQuery(`SELECT COUNT\(\*\) FROM entries`).
			WithArgs(1).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
		mock.ExpectQuery("SELECT id, income, costs, amount, account_id, created_at FROM entries").
			WithArgs(1, PageSize, 0).
			WillReturnRows(sqlmock.NewRows([]string{"id", "income", "costs", "amount", "account_id", "created_at"}).
				AddRow(1, true, false, 10, 1, time.Now()))

		_, page, err := store.ListPage(ctx, 1, 0)
		assert.NoError(t, err)
		assert.Equal(t, 1, page.Page)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryStore_Balance(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	store := NewEntryStore(db)
	ctx := context.Background()

	mock.ExpectQuery("SELECT COALESCE").
		WithArgs(1).
		WillReturnRows(sqlmock.NewRows([]string{"balance"}).AddRow(90))

	balance, err := store.Balance(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, int64(90), balance)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntrySigned(t *testing.T) {
	// Balance semantics per entry: income adds, costs subtracts, both flags
	// cancel out, neither contributes nothing.
	cases := []struct {
		name   string
		entry  models.Entry
		signed int64
	}{
		{"income", models.Entry{Income: true, Amount: 100}, 100},
		{"costs", models.Entry{Costs: true, Amount: 30}, -30},
		{"both flags net to zero", models.Entry{Income: true, Costs: true, Amount: 50}, 0},
		{"neither flag", models.Entry{Amount: 70}, 0},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.signed, tc.entry.Signed())
		})
	}

	// The worked example: income 100, cost 30, income 20.
	entries := []models.Entry{
		{Income: true, Amount: 100},
		{Costs: true, Amount: 30},
		{Income: true, Amount: 20},
	}
	var balance int64
	for _, e := range entries {
		balance += e.Signed()
	}
	assert.Equal(t, int64(90), balance)
}

func TestEntryStore_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	store := NewEntryStore(db)
	ctx := context.Background()

	t.Run("successful update", func(t *testing.T) {
		mock.ExpectExec("UPDATE entries SET income").
			WithArgs(false, true, int64(45), 3, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, store.Update(ctx, 3, 1, false, true, 45))
	})

	t.Run("entry owned by another account", func(t *testing.T) {
		mock.ExpectExec("UPDATE entries SET income").
			WithArgs(false, true, int64(45), 3, 2).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, store.Update(ctx, 3, 2, false, true, 45), models.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEntryStore_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	assert.NoError(t, err)
	defer db.Close()

	store := NewEntryStore(db)
	ctx := context.Background()

	t.Run("successful delete", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM entries").
			WithArgs(3, 1).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, store.Delete(ctx, 3, 1))
	})

	t.Run("unknown id", func(t *testing.T) {
		mock.ExpectExec("DELETE FROM entries").
			WithArgs(99, 1).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, store.Delete(ctx, 99, 1), models.ErrNotFound)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}
