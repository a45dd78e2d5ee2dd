package storage

import (
	"context"
	"fmt"

	"fintrack/internal/core"
)

func toPayment(p ScheduledPaymentRow) core.ScheduledPayment {
	due, _ := core.ParseDate(p.DueDate)
	return core.ScheduledPayment{
		ID:        p.ID,
		AccountID: p.AccountID,
		Title:     p.Title,
		Amount:    core.Money{Cents: p.AmountCents},
		DueDate:   due,
		Category:  p.Category,
		Recurring: p.Recurring,
	}
}

func (r *SQLiteRepository) InsertPayment(ctx context.Context, p core.ScheduledPayment) (core.ScheduledPayment, error) {
	row, err := r.queries.CreateScheduledPayment(ctx, CreateScheduledPaymentParams{
		AccountID:   p.AccountID,
		Title:       p.Title,
		AmountCents: p.Amount.Cents,
		DueDate:     p.DueDate.String(),
		Category:    p.Category,
		Recurring:   p.Recurring,
	})
	if err != nil {
		return core.ScheduledPayment{}, fmt.Errorf("insert scheduled payment: %w", mapError(err))
	}
	return toPayment(row), nil
}

// ListPayments returns every payment of the account by due date.
func (r *SQLiteRepository) ListPayments(ctx context.Context, accountID int64) ([]core.ScheduledPayment, error) {
	return r.listPayments(ctx, accountID, "", -1)
}

// UpcomingPayments returns at most limit payments due on or after from.
func (r *SQLiteRepository) UpcomingPayments(ctx context.Context, accountID int64, from core.Date, limit int) ([]core.ScheduledPayment, error) {
	return r.listPayments(ctx, accountID, from.String(), limit)
}

func (r *SQLiteRepository) listPayments(ctx context.Context, accountID int64, from string, limit int) ([]core.ScheduledPayment, error) {
	rows, err := r.queries.ListScheduledPayments(ctx, accountID, from, limit)
	if err != nil {
		return nil, fmt.Errorf("list scheduled payments: %w", mapError(err))
	}
	out := make([]core.ScheduledPayment, len(rows))
	for i, row := range rows {
		out[i] = toPayment(row)
	}
	return out, nil
}

func (r *SQLiteRepository) DeletePayment(ctx context.Context, accountID, id int64) error {
	if err := requireRow(r.queries.DeleteScheduledPayment(ctx, accountID, id)); err != nil {
		return fmt.Errorf("delete scheduled payment %d: %w", id, err)
	}
	return nil
}
