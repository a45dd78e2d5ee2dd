package storage

import (
	"context"
	"fmt"
	"time"

	"fintrack/internal/core"
)

// TransactionQuery narrows ListTransactions. Nil bounds and an empty
// category do not restrict. Both bounds are inclusive.
type TransactionQuery struct {
	AccountID int64
	Category  string
	From      *time.Time
	To        *time.Time
	Limit     int
}

func toTransaction(t TransactionRow) core.Transaction {
	return core.Transaction{
		ID:          t.ID,
		AccountID:   t.AccountID,
		Amount:      core.Money{Cents: t.AmountCents},
		Category:    t.Category,
		Description: t.Description,
		OccurredAt:  parseTime(t.OccurredAt),
	}
}

func (r *SQLiteRepository) InsertTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	row, err := r.queries.CreateTransaction(ctx, CreateTransactionParams{
		AccountID:   t.AccountID,
		AmountCents: t.Amount.Cents,
		Category:    t.Category,
		Description: t.Description,
		OccurredAt:  formatTime(t.OccurredAt),
	})
	if err != nil {
		return core.Transaction{}, fmt.Errorf("insert transaction: %w", mapError(err))
	}
	return toTransaction(row), nil
}

// GetTransaction returns the transaction only when accountID owns it.
func (r *SQLiteRepository) GetTransaction(ctx context.Context, accountID, id int64) (core.Transaction, error) {
	row, err := r.queries.GetTransaction(ctx, accountID, id)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("get transaction %d: %w", id, mapError(err))
	}
	return toTransaction(row), nil
}

// UpdateTransaction rewrites amount, category and description. The
// timestamp is immutable.
func (r *SQLiteRepository) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	err := requireRow(r.queries.UpdateTransaction(ctx, UpdateTransactionParams{
		ID:          t.ID,
		AccountID:   t.AccountID,
		AmountCents: t.Amount.Cents,
		Category:    t.Category,
		Description: t.Description,
	}))
	if err != nil {
		return fmt.Errorf("update transaction %d: %w", t.ID, err)
	}
	return nil
}

func (r *SQLiteRepository) DeleteTransaction(ctx context.Context, accountID, id int64) error {
	if err := requireRow(r.queries.DeleteTransaction(ctx, accountID, id)); err != nil {
		return fmt.Errorf("delete transaction %d: %w", id, err)
	}
	return nil
}

// DeleteAllTransactions removes every transaction of the account and returns how many went.
func (r *SQLiteRepository) DeleteAllTransactions(ctx context.Context, accountID int64) (int64, error) {
	n, err := r.queries.DeleteAccountTransactions(ctx, accountID)
	if err != nil {
		return 0, fmt.Errorf("delete transactions of account %d: %w", accountID, mapError(err))
	}
	return n, nil
}

// ListTransactions returns matching transactions newest first.
func (r *SQLiteRepository) ListTransactions(ctx context.Context, q TransactionQuery) ([]core.Transaction, error) {
	params := ListTransactionsParams{
		AccountID: q.AccountID,
		Category:  q.Category,
		Limit:     q.Limit,
	}
	if q.From != nil {
		params.From = formatTime(*q.From)
	}
	if q.To != nil {
		params.To = formatTime(*q.To)
	}

	rows, err := r.queries.ListTransactions(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", mapError(err))
	}
	out := make([]core.Transaction, len(rows))
	for i, row := range rows {
		out[i] = toTransaction(row)
	}
	return out, nil
}

// SumByCategory groups amounts of transactions in [from, to] by category.
func (r *SQLiteRepository) SumByCategory(ctx context.Context, accountID int64, from, to time.Time) (core.Breakdown, error) {
	rows, err := r.queries.SumByCategory(ctx, accountID, formatTime(from), formatTime(to))
	if err != nil {
		return nil, fmt.Errorf("sum by category: %w", mapError(err))
	}
	out := make(core.Breakdown, len(rows))
	for _, row := range rows {
		out[row.Category] = core.Money{Cents: row.TotalCents}
	}
	return out, nil
}

// SumSpent totals transaction amounts in [from, to].
func (r *SQLiteRepository) SumSpent(ctx context.Context, accountID int64, from, to time.Time) (core.Money, error) {
	total, err := r.queries.SumBetween(ctx, accountID, formatTime(from), formatTime(to))
	if err != nil {
		return core.Money{}, fmt.Errorf("sum spent: %w", mapError(err))
	}
	return core.Money{Cents: total}, nil
}
