package services

import (
	"context"
	"errors"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// Budgets tracks a monthly spending target per account.
type Budgets struct {
	repo   *storage.SQLiteRepository
	logger *log.Logger
	now    func() time.Time
}

func NewBudgets(repo *storage.SQLiteRepository, logger *log.Logger) *Budgets {
	return &Budgets{
		repo:   repo,
		logger: logger.WithComponent(log.ComponentBudgets),
		now:    systemNow,
	}
}

// SetBudget creates or replaces the budget of month/year.
func (s *Budgets) SetBudget(ctx context.Context, p auth.Principal, month, year int, amount core.Money) (core.Budget, error) {
	id, err := accountID(p)
	if err != nil {
		return core.Budget{}, err
	}
	b := core.Budget{AccountID: id, Month: month, Year: year, Amount: amount}
	if err := b.Validate(); err != nil {
		return core.Budget{}, core.Validation(err)
	}

	saved, err := s.repo.UpsertBudget(ctx, b)
	if err != nil {
		err = translate(log.OpUpdate, err, msgAccountNotFound)
		logFailure(ctx, s.logger, log.OpUpdate, id, err)
		return core.Budget{}, err
	}

	s.logger.InfoContext(ctx, "Budget set",
		log.FieldAccountID, id,
		log.FieldMonth, month,
		log.FieldYear, year,
		log.FieldAmountCents, amount.Cents,
	)
	return saved, nil
}

// CurrentMonthStatus compares this calendar month's spending to its budget.
// Budget and Remaining are nil when no budget is set.
func (s *Budgets) CurrentMonthStatus(ctx context.Context, p auth.Principal) (core.BudgetStatus, error) {
	id, err := accountID(p)
	if err != nil {
		return core.BudgetStatus{}, err
	}

	now := s.now().UTC()
	start := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 1, 0).Add(-time.Second)
	status := core.BudgetStatus{Month: int(now.Month()), Year: now.Year()}

	err = s.repo.InTx(ctx, func(tx *storage.SQLiteRepository) error {
		spent, err := tx.SumSpent(ctx, id, start, end)
		if err != nil {
			return err
		}
		status.Spent = spent

		b, err := tx.GetBudget(ctx, id, status.Month, status.Year)
		if errors.Is(err, storage.ErrNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		remaining := b.Amount.Sub(spent)
		status.Budget = &b.Amount
		status.Remaining = &remaining
		return nil
	})
	if err != nil {
		err = translate(log.OpRead, err, msgAccountNotFound)
		logFailure(ctx, s.logger, log.OpRead, id, err)
		return core.BudgetStatus{}, err
	}
	return status, nil
}
