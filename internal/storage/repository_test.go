package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/core"
)

func newTestRepo(t *testing.T) (*SQLiteRepository, string) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "fintrack.db")
	repo, err := NewSQLiteRepository(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { repo.Close() })
	return repo, dbPath
}

func mustCreateAccount(t *testing.T, repo *SQLiteRepository, username string, balance int64) core.Account {
	t.Helper()
	acc, err := repo.CreateAccount(context.Background(), NewAccount{
		Profile: core.Profile{
			Username: username,
			Email:    username + "@example.com",
			Phone:    "555-0100",
			Currency: "EUR",
		},
		PasswordHash: "hash",
		Balance:      core.Cents(balance),
	})
	require.NoError(t, err)
	return acc
}

func at(s string) time.Time {
	t, err := time.ParseInLocation(TimeLayout, s, time.UTC)
	if err != nil {
		panic(err)
	}
	return t
}

func insertTx(t *testing.T, repo *SQLiteRepository, accountID, cents int64, category, when string) core.Transaction {
	t.Helper()
	tr, err := repo.InsertTransaction(context.Background(), core.Transaction{
		AccountID:  accountID,
		Amount:     core.Cents(cents),
		Category:   category,
		OccurredAt: at(when),
	})
	require.NoError(t, err)
	return tr
}

func countRows(t *testing.T, repo *SQLiteRepository, query string, args ...any) int {
	t.Helper()
	var n int
	require.NoError(t, repo.db.QueryRow(query, args...).Scan(&n))
	return n
}

func TestMigrationsApplied(t *testing.T) {
	_, dbPath := newTestRepo(t)

	v, dirty, err := MigrationVersion(dbPath)
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
	assert.False(t, dirty)

	// Re-running is a no-op
	require.NoError(t, RunMigrations(dbPath))
}

func TestCreateAccount(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	acc := mustCreateAccount(t, repo, "ada", 10000)
	assert.NotZero(t, acc.ID)
	assert.Equal(t, core.ThemeLight, acc.Theme)
	assert.Equal(t, int64(10000), acc.Balance.Cents)
	assert.False(t, acc.CreatedAt.IsZero())

	_, hash, err := repo.GetCredentials(ctx, "ada")
	require.NoError(t, err)
	assert.Equal(t, "hash", hash)

	t.Run("duplicate username", func(t *testing.T) {
		_, err := repo.CreateAccount(ctx, NewAccount{
			Profile:      core.Profile{Username: "ada", Email: "other@example.com", Phone: "1", Currency: "EUR"},
			PasswordHash: "x",
		})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("duplicate email", func(t *testing.T) {
		_, err := repo.CreateAccount(ctx, NewAccount{
			Profile:      core.Profile{Username: "bob", Email: "ada@example.com", Phone: "1", Currency: "EUR"},
			PasswordHash: "x",
		})
		assert.ErrorIs(t, err, ErrConflict)
	})

	t.Run("missing account", func(t *testing.T) {
		_, err := repo.GetAccount(ctx, 999)
		assert.ErrorIs(t, err, ErrNotFound)
		_, _, err = repo.GetCredentials(ctx, "nobody")
		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestBalanceUpdates(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	acc := mustCreateAccount(t, repo, "ada", 1000)

	require.NoError(t, repo.AdjustBalance(ctx, acc.ID, core.Cents(-250)))
	require.NoError(t, repo.AdjustBalance(ctx, acc.ID, core.Cents(50)))
	got, err := repo.GetAccount(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(800), got.Balance.Cents)

	require.NoError(t, repo.SetBalance(ctx, acc.ID, core.Money{}))
	got, err = repo.GetAccount(ctx, acc.ID)
	require.NoError(t, err)
	assert.Zero(t, got.Balance.Cents)

	assert.ErrorIs(t, repo.AdjustBalance(ctx, 999, core.Cents(1)), ErrNotFound)
}

func TestInTxRollsBack(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	acc := mustCreateAccount(t, repo, "ada", 1000)

	boom := errors.New("boom")
	err := repo.InTx(ctx, func(tx *SQLiteRepository) error {
		if _, err := tx.InsertTransaction(ctx, core.Transaction{
			AccountID: acc.ID, Amount: core.Cents(100), Category: "Other", OccurredAt: time.Now(),
		}); err != nil {
			return err
		}
		if err := tx.AdjustBalance(ctx, acc.ID, core.Cents(-100)); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := repo.GetAccount(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1000), got.Balance.Cents)
	assert.Equal(t, 0, countRows(t, repo, `SELECT COUNT(*) FROM transactions`))
}

func TestTransactionOwnership(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	ada := mustCreateAccount(t, repo, "ada", 0)
	bob := mustCreateAccount(t, repo, "bob", 0)
	tr := insertTx(t, repo, ada.ID, 500, "Shopping", "2024-03-01 10:00:00")

	_, err := repo.GetTransaction(ctx, bob.ID, tr.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	err = repo.UpdateTransaction(ctx, core.Transaction{ID: tr.ID, AccountID: bob.ID, Amount: core.Cents(1), Category: "Other"})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.ErrorIs(t, repo.DeleteTransaction(ctx, bob.ID, tr.ID), ErrNotFound)

	got, err := repo.GetTransaction(ctx, ada.ID, tr.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(500), got.Amount.Cents)
	assert.Equal(t, at("2024-03-01 10:00:00"), got.OccurredAt)
}

func TestListTransactionsFilters(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	acc := mustCreateAccount(t, repo, "ada", 0)
	other := mustCreateAccount(t, repo, "bob", 0)

	insertTx(t, repo, acc.ID, 100, "Shopping", "2024-01-10 09:00:00")
	insertTx(t, repo, acc.ID, 200, "Housing", "2024-01-15 23:59:59")
	insertTx(t, repo, acc.ID, 300, "Shopping", "2024-01-16 00:00:01")
	insertTx(t, repo, other.ID, 999, "Shopping", "2024-01-12 00:00:00")

	t.Run("no filter returns newest first", func(t *testing.T) {
		items, err := repo.ListTransactions(ctx, TransactionQuery{AccountID: acc.ID})
		require.NoError(t, err)
		require.Len(t, items, 3)
		assert.Equal(t, int64(300), items[0].Amount.Cents)
		assert.Equal(t, int64(100), items[2].Amount.Cents)
	})

	t.Run("inclusive end of day", func(t *testing.T) {
		to := core.NewDate(2024, 1, 15).EndOfDay()
		items, err := repo.ListTransactions(ctx, TransactionQuery{AccountID: acc.ID, To: &to})
		require.NoError(t, err)
		require.Len(t, items, 2)
		assert.Equal(t, int64(200), items[0].Amount.Cents)
	})

	t.Run("category and from", func(t *testing.T) {
		from := core.NewDate(2024, 1, 11).Time
		items, err := repo.ListTransactions(ctx, TransactionQuery{AccountID: acc.ID, Category: "Shopping", From: &from})
		require.NoError(t, err)
		require.Len(t, items, 1)
		assert.Equal(t, int64(300), items[0].Amount.Cents)
	})

	t.Run("no match is empty not nil error", func(t *testing.T) {
		items, err := repo.ListTransactions(ctx, TransactionQuery{AccountID: acc.ID, Category: "Vehicle"})
		require.NoError(t, err)
		assert.Empty(t, items)
	})

	t.Run("limit", func(t *testing.T) {
		items, err := repo.ListTransactions(ctx, TransactionQuery{AccountID: acc.ID, Limit: 1})
		require.NoError(t, err)
		assert.Len(t, items, 1)
	})
}

func TestAggregates(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	acc := mustCreateAccount(t, repo, "ada", 0)

	insertTx(t, repo, acc.ID, 100, "Shopping", "2024-02-01 00:00:00")
	insertTx(t, repo, acc.ID, 250, "Shopping", "2024-02-10 12:00:00")
	insertTx(t, repo, acc.ID, 400, "Housing", "2024-02-29 23:59:59")
	insertTx(t, repo, acc.ID, 800, "Housing", "2024-03-01 00:00:00")

	from, to := at("2024-02-01 00:00:00"), at("2024-02-29 23:59:59")
	breakdown, err := repo.SumByCategory(ctx, acc.ID, from, to)
	require.NoError(t, err)
	assert.Equal(t, core.Breakdown{"Shopping": core.Cents(350), "Housing": core.Cents(400)}, breakdown)

	spent, err := repo.SumSpent(ctx, acc.ID, from, to)
	require.NoError(t, err)
	assert.Equal(t, int64(750), spent.Cents)

	empty, err := repo.SumByCategory(ctx, acc.ID, at("2020-01-01 00:00:00"), at("2020-12-31 23:59:59"))
	require.NoError(t, err)
	assert.Empty(t, empty)

	n, err := repo.DeleteAllTransactions(ctx, acc.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestUpsertBudgetKeepsOneRow(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	acc := mustCreateAccount(t, repo, "ada", 0)

	first, err := repo.UpsertBudget(ctx, core.Budget{AccountID: acc.ID, Month: 5, Year: 2024, Amount: core.Cents(10000)})
	require.NoError(t, err)
	second, err := repo.UpsertBudget(ctx, core.Budget{AccountID: acc.ID, Month: 5, Year: 2024, Amount: core.Cents(20000)})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	assert.Equal(t, 1, countRows(t, repo, `SELECT COUNT(*) FROM budgets WHERE account_id = ?`, acc.ID))
	got, err := repo.GetBudget(ctx, acc.ID, 5, 2024)
	require.NoError(t, err)
	assert.Equal(t, int64(20000), got.Amount.Cents)

	_, err = repo.GetBudget(ctx, acc.ID, 6, 2024)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestScheduledPayments(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	acc := mustCreateAccount(t, repo, "ada", 0)

	for i, day := range []int{20, 5, 12, 1, 28, 15, 25} {
		_, err := repo.InsertPayment(ctx, core.ScheduledPayment{
			AccountID: acc.ID,
			Title:     "p",
			Amount:    core.Cents(int64(100 * (i + 1))),
			DueDate:   core.NewDate(2024, 6, day),
			Recurring: day%2 == 0,
		})
		require.NoError(t, err)
	}

	all, err := repo.ListPayments(ctx, acc.ID)
	require.NoError(t, err)
	require.Len(t, all, 7)
	assert.Equal(t, 1, all[0].DueDate.Day())
	assert.Equal(t, 28, all[6].DueDate.Day())

	upcoming, err := repo.UpcomingPayments(ctx, acc.ID, core.NewDate(2024, 6, 10), 5)
	require.NoError(t, err)
	require.Len(t, upcoming, 5)
	assert.Equal(t, 12, upcoming[0].DueDate.Day())
	assert.True(t, upcoming[0].Recurring)
	assert.Equal(t, 28, upcoming[4].DueDate.Day())

	assert.ErrorIs(t, repo.DeletePayment(ctx, acc.ID+1, all[0].ID), ErrNotFound)
	require.NoError(t, repo.DeletePayment(ctx, acc.ID, all[0].ID))
}

func TestDeleteAccountCascades(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	acc := mustCreateAccount(t, repo, "ada", 0)
	insertTx(t, repo, acc.ID, 100, "Other", "2024-01-01 00:00:00")
	_, err := repo.InsertPayment(ctx, core.ScheduledPayment{AccountID: acc.ID, Title: "Rent", DueDate: core.NewDate(2024, 1, 2)})
	require.NoError(t, err)
	_, err = repo.UpsertBudget(ctx, core.Budget{AccountID: acc.ID, Month: 1, Year: 2024})
	require.NoError(t, err)

	require.NoError(t, repo.DeleteAccount(ctx, acc.ID))

	for _, table := range []string{"accounts", "transactions", "scheduled_payments", "budgets"} {
		assert.Equal(t, 0, countRows(t, repo, `SELECT COUNT(*) FROM `+table), table)
	}
}

func TestWritesForMissingAccountAreNotFound(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	acc := mustCreateAccount(t, repo, "ada", 0)
	require.NoError(t, repo.DeleteAccount(ctx, acc.ID))

	_, err := repo.InsertTransaction(ctx, core.Transaction{
		AccountID: acc.ID, Amount: core.Cents(100), Category: "Other", OccurredAt: at("2024-01-01 00:00:00"),
	})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.UpsertBudget(ctx, core.Budget{AccountID: acc.ID, Month: 1, Year: 2024})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = repo.InsertPayment(ctx, core.ScheduledPayment{AccountID: acc.ID, Title: "Rent", DueDate: core.NewDate(2024, 1, 2)})
	assert.ErrorIs(t, err, ErrNotFound)

	assert.False(t, errors.Is(mapError(errors.New("disk I/O error")), ErrNotFound))
}
