package core

import (
	"sort"
	"time"
)

// CategoryAmount represents an amount aggregated by category name.
type CategoryAmount struct {
	Name   string
	Amount Money
}

// Breakdown maps category to summed amount over a window.
type Breakdown map[string]Money

// Total sums every category.
func (b Breakdown) Total() Money {
	var t Money
	for _, m := range b {
		t = t.Add(m)
	}
	return t
}

// Sorted returns the categories by name so charts render deterministically.
func (b Breakdown) Sorted() []CategoryAmount {
	out := make([]CategoryAmount, 0, len(b))
	for name, m := range b {
		out = append(out, CategoryAmount{Name: name, Amount: m})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// BalancePoint is the balance right after time At.
type BalancePoint struct {
	At      time.Time
	Balance Money
}

// BalanceTrend is a reconstructed running balance. Points are in ascending
// time order and end with the current balance at generation time; they are
// empty when no transaction fell in the window.
type BalanceTrend struct {
	Current      Money
	Points       []BalancePoint
	Transactions int
}

// BudgetStatus is the current calendar month's budget against spending.
type BudgetStatus struct {
	Month     int
	Year      int
	Budget    *Money
	Spent     Money
	Remaining *Money
}

// Dashboard is the home view of an account.
type Dashboard struct {
	Account  Account
	Recent   []Transaction
	Upcoming []ScheduledPayment
}
