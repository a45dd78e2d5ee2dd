package storage

import (
	"context"
	"fmt"

	"fintrack/internal/core"
)

func toBudget(b BudgetRow) core.Budget {
	return core.Budget{
		ID:        b.ID,
		AccountID: b.AccountID,
		Month:     int(b.Month),
		Year:      int(b.Year),
		Amount:    core.Money{Cents: b.AmountCents},
	}
}

// UpsertBudget replaces any budget the account already has for the period.
func (r *SQLiteRepository) UpsertBudget(ctx context.Context, b core.Budget) (core.Budget, error) {
	row, err := r.queries.UpsertBudget(ctx, UpsertBudgetParams{
		AccountID:   b.AccountID,
		Month:       int64(b.Month),
		Year:        int64(b.Year),
		AmountCents: b.Amount.Cents,
	})
	if err != nil {
		return core.Budget{}, fmt.Errorf("upsert budget %d-%02d: %w", b.Year, b.Month, mapError(err))
	}
	return toBudget(row), nil
}

// GetBudget returns ErrNotFound when no budget is set for the period.
func (r *SQLiteRepository) GetBudget(ctx context.Context, accountID int64, month, year int) (core.Budget, error) {
	row, err := r.queries.GetBudget(ctx, accountID, int64(month), int64(year))
	if err != nil {
		return core.Budget{}, fmt.Errorf("get budget %d-%02d: %w", year, month, mapError(err))
	}
	return toBudget(row), nil
}
