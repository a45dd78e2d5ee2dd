package services

import (
	"context"
	"strings"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/storage"
)

// RecentDays bounds the "recent" list of the home view.
const RecentDays = 30

// Filter narrows a transaction listing. Zero fields do not restrict; both
// date bounds are inclusive, DateTo through the end of that day.
type Filter struct {
	Category string
	DateFrom *core.Date
	DateTo   *core.Date
}

// Transactions is the read side over an account's expenses.
type Transactions struct {
	repo *storage.SQLiteRepository
	now  func() time.Time
}

func NewTransactions(repo *storage.SQLiteRepository) *Transactions {
	return &Transactions{repo: repo, now: systemNow}
}

// List returns matching transactions newest first. No match is an empty
// slice, not an error.
func (s *Transactions) List(ctx context.Context, p auth.Principal, f Filter) ([]core.Transaction, error) {
	id, err := accountID(p)
	if err != nil {
		return nil, err
	}

	q := storage.TransactionQuery{
		AccountID: id,
		Category:  strings.TrimSpace(f.Category),
	}
	if f.DateFrom != nil {
		from := f.DateFrom.Time
		q.From = &from
	}
	if f.DateTo != nil {
		to := f.DateTo.EndOfDay()
		q.To = &to
	}

	txs, err := s.repo.ListTransactions(ctx, q)
	if err != nil {
		return nil, translate("list transactions", err, msgAccountNotFound)
	}
	return txs, nil
}

// Recent returns up to n of the newest transactions of the last RecentDays days.
func (s *Transactions) Recent(ctx context.Context, p auth.Principal, n int) ([]core.Transaction, error) {
	id, err := accountID(p)
	if err != nil {
		return nil, err
	}
	if n <= 0 {
		return []core.Transaction{}, nil
	}
	return recent(ctx, s.repo, id, s.now(), n)
}

// Get returns one owned transaction.
func (s *Transactions) Get(ctx context.Context, p auth.Principal, txID int64) (core.Transaction, error) {
	id, err := accountID(p)
	if err != nil {
		return core.Transaction{}, err
	}
	t, err := s.repo.GetTransaction(ctx, id, txID)
	if err != nil {
		return core.Transaction{}, translate("get transaction", err, msgTransactionNotFound)
	}
	return t, nil
}

func recent(ctx context.Context, repo *storage.SQLiteRepository, id int64, now time.Time, n int) ([]core.Transaction, error) {
	from := now.AddDate(0, 0, -RecentDays)
	txs, err := repo.ListTransactions(ctx, storage.TransactionQuery{
		AccountID: id,
		From:      &from,
		To:        &now,
		Limit:     n,
	})
	if err != nil {
		return nil, translate("list recent transactions", err, msgAccountNotFound)
	}
	return txs, nil
}
