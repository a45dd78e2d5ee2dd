package services

import (
	"context"
	"strings"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/storage"
)

// Ledger keeps the cached account balance consistent with the expense rows.
// Every mutation commits the row change and the balance change together.
type Ledger struct {
	repo       *storage.SQLiteRepository
	logger     *log.Logger
	structured *log.StructuredLogger
	now        func() time.Time
}

func NewLedger(repo *storage.SQLiteRepository, logger *log.Logger) *Ledger {
	l := logger.WithComponent(log.ComponentLedger)
	return &Ledger{
		repo:       repo,
		logger:     l,
		structured: log.NewStructuredLogger(l),
		now:        systemNow,
	}
}

// ExpenseInput is the user-supplied part of an expense. OccurredAt is
// optional on create and ignored on edit.
type ExpenseInput struct {
	Amount      core.Money
	Category    string
	Description string
	OccurredAt  *time.Time
}

func (in ExpenseInput) apply(t *core.Transaction) {
	t.Amount = in.Amount
	t.Category = strings.TrimSpace(in.Category)
	t.Description = strings.TrimSpace(in.Description)
}

// ApplyIncome credits amount to the balance and returns the new balance.
// Income is not stored as a row.
func (l *Ledger) ApplyIncome(ctx context.Context, p auth.Principal, amount core.Money) (core.Money, error) {
	id, err := accountID(p)
	if err != nil {
		return core.Money{}, err
	}
	if err := amount.Validate(); err != nil {
		return core.Money{}, core.Validation(err)
	}

	var balance core.Money
	err = l.repo.InTx(ctx, func(tx *storage.SQLiteRepository) error {
		if err := tx.AdjustBalance(ctx, id, amount); err != nil {
			return err
		}
		acc, err := tx.GetAccount(ctx, id)
		if err != nil {
			return err
		}
		balance = acc.Balance
		return nil
	})
	if err != nil {
		return core.Money{}, l.fail(ctx, log.OpIncome, id, err, msgAccountNotFound)
	}

	l.structured.LogLedgerMutation(ctx, log.OpIncome, id, amount.Cents, amount.Cents)
	return balance, nil
}

// RecordExpense stores a new expense and debits its amount.
func (l *Ledger) RecordExpense(ctx context.Context, p auth.Principal, in ExpenseInput) (core.Transaction, error) {
	id, err := accountID(p)
	if err != nil {
		return core.Transaction{}, err
	}

	now := stamp(l.now())
	t := core.Transaction{AccountID: id, OccurredAt: now}
	if in.OccurredAt != nil {
		t.OccurredAt = stamp(*in.OccurredAt)
		if t.OccurredAt.After(now) {
			return core.Transaction{}, core.Invalid(msgFutureExpense)
		}
	}
	in.apply(&t)
	if err := t.Validate(); err != nil {
		return core.Transaction{}, core.Validation(err)
	}

	var created core.Transaction
	err = l.repo.InTx(ctx, func(tx *storage.SQLiteRepository) error {
		var err error
		if created, err = tx.InsertTransaction(ctx, t); err != nil {
			return err
		}
		return tx.AdjustBalance(ctx, id, core.Money{Cents: -t.Amount.Cents})
	})
	if err != nil {
		return core.Transaction{}, l.fail(ctx, log.OpExpense, id, err, msgAccountNotFound)
	}

	l.structured.LogLedgerMutation(ctx, log.OpExpense, id, t.Amount.Cents, -t.Amount.Cents)
	return created, nil
}

// EditExpense rewrites an owned expense and moves the balance by the
// difference between the old and new amounts.
func (l *Ledger) EditExpense(ctx context.Context, p auth.Principal, txID int64, in ExpenseInput) (core.Transaction, error) {
	id, err := accountID(p)
	if err != nil {
		return core.Transaction{}, err
	}

	draft := core.Transaction{}
	in.apply(&draft)
	if err := draft.Validate(); err != nil {
		return core.Transaction{}, core.Validation(err)
	}

	var (
		updated core.Transaction
		delta   core.Money
	)
	err = l.repo.InTx(ctx, func(tx *storage.SQLiteRepository) error {
		old, err := tx.GetTransaction(ctx, id, txID)
		if err != nil {
			return err
		}
		updated = old
		in.apply(&updated)
		if err := tx.UpdateTransaction(ctx, updated); err != nil {
			return err
		}
		delta = old.Amount.Sub(updated.Amount)
		if delta.IsZero() {
			return nil
		}
		return tx.AdjustBalance(ctx, id, delta)
	})
	if err != nil {
		return core.Transaction{}, l.fail(ctx, log.OpEdit, id, err, msgTransactionNotFound)
	}

	l.structured.LogLedgerMutation(ctx, log.OpEdit, id, updated.Amount.Cents, delta.Cents)
	return updated, nil
}

// DeleteExpense removes an owned expense and credits its amount back.
func (l *Ledger) DeleteExpense(ctx context.Context, p auth.Principal, txID int64) error {
	id, err := accountID(p)
	if err != nil {
		return err
	}

	var refund core.Money
	err = l.repo.InTx(ctx, func(tx *storage.SQLiteRepository) error {
		old, err := tx.GetTransaction(ctx, id, txID)
		if err != nil {
			return err
		}
		if err := tx.DeleteTransaction(ctx, id, txID); err != nil {
			return err
		}
		refund = old.Amount
		return tx.AdjustBalance(ctx, id, refund)
	})
	if err != nil {
		return l.fail(ctx, log.OpDelete, id, err, msgTransactionNotFound)
	}

	l.structured.LogLedgerMutation(ctx, log.OpDelete, id, refund.Cents, refund.Cents)
	return nil
}

// DeleteAllTransactions wipes the account's expenses and resets the
// balance to zero. It returns the number of removed rows.
func (l *Ledger) DeleteAllTransactions(ctx context.Context, p auth.Principal) (int64, error) {
	id, err := accountID(p)
	if err != nil {
		return 0, err
	}

	var removed int64
	err = l.repo.InTx(ctx, func(tx *storage.SQLiteRepository) error {
		var err error
		if removed, err = tx.DeleteAllTransactions(ctx, id); err != nil {
			return err
		}
		return tx.SetBalance(ctx, id, core.Money{})
	})
	if err != nil {
		return 0, l.fail(ctx, log.OpReset, id, err, msgAccountNotFound)
	}

	l.logger.InfoContext(ctx, "Transactions reset",
		log.NewFields().WithAccount(id).WithOperation(log.OpReset).ToSlice()...,
	)
	return removed, nil
}

// Balance returns the cached balance.
func (l *Ledger) Balance(ctx context.Context, p auth.Principal) (core.Money, error) {
	id, err := accountID(p)
	if err != nil {
		return core.Money{}, err
	}
	acc, err := l.repo.GetAccount(ctx, id)
	if err != nil {
		return core.Money{}, l.fail(ctx, log.OpRead, id, err, msgAccountNotFound)
	}
	return acc.Balance, nil
}

func (l *Ledger) fail(ctx context.Context, op string, account int64, err error, notFound string) error {
	err = translate(op, err, notFound)
	logFailure(ctx, l.logger, op, account, err)
	return err
}
