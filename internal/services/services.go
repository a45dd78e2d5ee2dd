// Package services holds the use cases of the tracker. Each service scopes
// every read and write to the authenticated principal's account.
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

// Services bundles every use case behind one constructor for the HTTP
// server and the CLI.
type Services struct {
	Ledger       *Ledger
	Accounts     *Accounts
	Reports      *Reports
	Transactions *Transactions
	Budgets      *Budgets
	Planner      *Planner
	Dashboard    *Dashboard
}

func New(repo *storage.SQLiteRepository, hasher *auth.Hasher, logger *log.Logger) *Services {
	return &Services{
		Ledger:       NewLedger(repo, logger),
		Accounts:     NewAccounts(repo, hasher, logger),
		Reports:      NewReports(repo, logger),
		Transactions: NewTransactions(repo),
		Budgets:      NewBudgets(repo, logger),
		Planner:      NewPlanner(repo, logger),
		Dashboard:    NewDashboard(repo),
	}
}

const (
	msgLoginRequired       = "Login required"
	msgAccountNotFound     = "Account not found"
	msgTransactionNotFound = "Transaction not found"
	msgPaymentNotFound     = "Planned payment not found"
	msgFutureExpense       = "occurred_at must not be in the future"
)

func accountID(p auth.Principal) (int64, error) {
	if p.AccountID <= 0 {
		return 0, core.AuthFailure(msgLoginRequired)
	}
	return p.AccountID, nil
}

// translate maps a store error to a domain error kind. notFound is the
// message used when the row was missing or owned by another account.
func translate(op string, err error, notFound string) error {
	if err == nil {
		return nil
	}
	var ce *core.Error
	switch {
	case errors.As(err, &ce):
		return err
	case errors.Is(err, storage.ErrNotFound):
		return core.NotFound(notFound)
	case errors.Is(err, storage.ErrConflict):
		return core.Conflict("Record already exists")
	}
	return core.Persistence(op, err)
}

// logFailure logs persistence failures with their cause. Expected failures
// such as validation or ownership misses stay at debug.
func logFailure(ctx context.Context, logger *log.Logger, op string, account int64, err error) {
	fields := log.NewFields().WithAccount(account).WithOperation(op)
	kind := core.KindOf(err)
	fields[log.FieldErrorKind] = string(kind)
	if kind == core.KindPersistence {
		logger.ErrorContext(ctx, "Operation failed", fields.WithError(err).ToSlice()...)
		return
	}
	logger.DebugContext(ctx, "Operation rejected", fields.WithError(err).ToSlice()...)
}

func systemNow() time.Time {
	return time.Now().UTC()
}

// stamp drops sub-second precision so values round trip through the store.
func stamp(t time.Time) time.Time {
	return t.UTC().Truncate(time.Second)
}
