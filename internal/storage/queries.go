package storage

import (
	"context"
	"database/sql"
	"strings"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(context.Context, string, ...interface{}) (sql.Result, error)
	QueryContext(context.Context, string, ...interface{}) (*sql.Rows, error)
	QueryRowContext(context.Context, string, ...interface{}) *sql.Row
}

// Queries holds every statement the store runs, bound to a DB or a Tx.
type Queries struct {
	db DBTX
}

func New(db DBTX) *Queries {
	return &Queries{db: db}
}

func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}

// Row types mirror the tables one to one.

type AccountRow struct {
	ID           int64
	Username     string
	Email        string
	Phone        string
	PasswordHash string
	Currency     string
	Theme        string
	BalanceCents int64
	CreatedAt    string
}

type TransactionRow struct {
	ID          int64
	AccountID   int64
	AmountCents int64
	Category    string
	Description string
	OccurredAt  string
}

type ScheduledPaymentRow struct {
	ID          int64
	AccountID   int64
	Title       string
	AmountCents int64
	DueDate     string
	Category    string
	Recurring   bool
}

type BudgetRow struct {
	ID          int64
	AccountID   int64
	Month       int64
	Year        int64
	AmountCents int64
}

type CategorySumRow struct {
	Category   string
	TotalCents int64
}

// Accounts

const accountColumns = `id, username, email, phone, password_hash, currency, theme, balance_cents, created_at`

func scanAccount(row interface{ Scan(...any) error }) (AccountRow, error) {
	var a AccountRow
	err := row.Scan(&a.ID, &a.Username, &a.Email, &a.Phone, &a.PasswordHash,
		&a.Currency, &a.Theme, &a.BalanceCents, &a.CreatedAt)
	return a, err
}

type CreateAccountParams struct {
	Username     string
	Email        string
	Phone        string
	PasswordHash string
	Currency     string
	BalanceCents int64
}

const createAccount = `INSERT INTO accounts (username, email, phone, password_hash, currency, balance_cents)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING ` + accountColumns

func (q *Queries) CreateAccount(ctx context.Context, arg CreateAccountParams) (AccountRow, error) {
	row := q.db.QueryRowContext(ctx, createAccount,
		arg.Username, arg.Email, arg.Phone, arg.PasswordHash, arg.Currency, arg.BalanceCents)
	return scanAccount(row)
}

const getAccount = `SELECT ` + accountColumns + ` FROM accounts WHERE id = ?`

func (q *Queries) GetAccount(ctx context.Context, id int64) (AccountRow, error) {
	return scanAccount(q.db.QueryRowContext(ctx, getAccount, id))
}

const getAccountByUsername = `SELECT ` + accountColumns + ` FROM accounts WHERE username = ?`

func (q *Queries) GetAccountByUsername(ctx context.Context, username string) (AccountRow, error) {
	return scanAccount(q.db.QueryRowContext(ctx, getAccountByUsername, username))
}

type UpdateAccountProfileParams struct {
	ID       int64
	Username string
	Email    string
	Phone    string
	Currency string
}

const updateAccountProfile = `UPDATE accounts SET username = ?, email = ?, phone = ?, currency = ? WHERE id = ?`

func (q *Queries) UpdateAccountProfile(ctx context.Context, arg UpdateAccountProfileParams) (int64, error) {
	return execRows(q.db.ExecContext(ctx, updateAccountProfile,
		arg.Username, arg.Email, arg.Phone, arg.Currency, arg.ID))
}

const updateAccountTheme = `UPDATE accounts SET theme = ? WHERE id = ?`

func (q *Queries) UpdateAccountTheme(ctx context.Context, id int64, theme string) (int64, error) {
	return execRows(q.db.ExecContext(ctx, updateAccountTheme, theme, id))
}

const adjustAccountBalance = `UPDATE accounts SET balance_cents = balance_cents + ? WHERE id = ?`

func (q *Queries) AdjustAccountBalance(ctx context.Context, id int64, deltaCents int64) (int64, error) {
	return execRows(q.db.ExecContext(ctx, adjustAccountBalance, deltaCents, id))
}

const setAccountBalance = `UPDATE accounts SET balance_cents = ? WHERE id = ?`

func (q *Queries) SetAccountBalance(ctx context.Context, id int64, cents int64) (int64, error) {
	return execRows(q.db.ExecContext(ctx, setAccountBalance, cents, id))
}

const deleteAccount = `DELETE FROM accounts WHERE id = ?`

func (q *Queries) DeleteAccount(ctx context.Context, id int64) (int64, error) {
	return execRows(q.db.ExecContext(ctx, deleteAccount, id))
}

// Transactions

const transactionColumns = `id, account_id, amount_cents, category, description, occurred_at`

func scanTransaction(row interface{ Scan(...any) error }) (TransactionRow, error) {
	var t TransactionRow
	err := row.Scan(&t.ID, &t.AccountID, &t.AmountCents, &t.Category, &t.Description, &t.OccurredAt)
	return t, err
}

type CreateTransactionParams struct {
	AccountID   int64
	AmountCents int64
	Category    string
	Description string
	OccurredAt  string
}

const createTransaction = `INSERT INTO transactions (account_id, amount_cents, category, description, occurred_at)
VALUES (?, ?, ?, ?, ?)
RETURNING ` + transactionColumns

func (q *Queries) CreateTransaction(ctx context.Context, arg CreateTransactionParams) (TransactionRow, error) {
	row := q.db.QueryRowContext(ctx, createTransaction,
		arg.AccountID, arg.AmountCents, arg.Category, arg.Description, arg.OccurredAt)
	return scanTransaction(row)
}

const getTransaction = `SELECT ` + transactionColumns + ` FROM transactions WHERE id = ? AND account_id = ?`

func (q *Queries) GetTransaction(ctx context.Context, accountID, id int64) (TransactionRow, error) {
	return scanTransaction(q.db.QueryRowContext(ctx, getTransaction, id, accountID))
}

type UpdateTransactionParams struct {
	ID          int64
	AccountID   int64
	AmountCents int64
	Category    string
	Description string
}

const updateTransaction = `UPDATE transactions SET amount_cents = ?, category = ?, description = ?
WHERE id = ? AND account_id = ?`

func (q *Queries) UpdateTransaction(ctx context.Context, arg UpdateTransactionParams) (int64, error) {
	return execRows(q.db.ExecContext(ctx, updateTransaction,
		arg.AmountCents, arg.Category, arg.Description, arg.ID, arg.AccountID))
}

const deleteTransaction = `DELETE FROM transactions WHERE id = ? AND account_id = ?`

func (q *Queries) DeleteTransaction(ctx context.Context, accountID, id int64) (int64, error) {
	return execRows(q.db.ExecContext(ctx, deleteTransaction, id, accountID))
}

const deleteAccountTransactions = `DELETE FROM transactions WHERE account_id = ?`

func (q *Queries) DeleteAccountTransactions(ctx context.Context, accountID int64) (int64, error) {
	return execRows(q.db.ExecContext(ctx, deleteAccountTransactions, accountID))
}

// ListTransactionsParams narrows a listing. Empty strings mean no bound.
// From and To are inclusive timestamps in storage layout.
type ListTransactionsParams struct {
	AccountID int64
	Category  string
	From      string
	To        string
	Limit     int
}

func (q *Queries) ListTransactions(ctx context.Context, arg ListTransactionsParams) ([]TransactionRow, error) {
	var b strings.Builder
	b.WriteString(`SELECT ` + transactionColumns + ` FROM transactions WHERE account_id = ?`)
	args := []any{arg.AccountID}
	if arg.Category != "" {
		b.WriteString(` AND category = ?`)
		args = append(args, arg.Category)
	}
	if arg.From != "" {
		b.WriteString(` AND occurred_at >= ?`)
		args = append(args, arg.From)
	}
	if arg.To != "" {
		b.WriteString(` AND occurred_at <= ?`)
		args = append(args, arg.To)
	}
	b.WriteString(` ORDER BY occurred_at DESC, id DESC`)
	if arg.Limit > 0 {
		b.WriteString(` LIMIT ?`)
		args = append(args, arg.Limit)
	}

	rows, err := q.db.QueryContext(ctx, b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []TransactionRow{}
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const sumByCategory = `SELECT category, COALESCE(SUM(amount_cents), 0) AS total
FROM transactions
WHERE account_id = ? AND occurred_at >= ? AND occurred_at <= ?
GROUP BY category`

func (q *Queries) SumByCategory(ctx context.Context, accountID int64, from, to string) ([]CategorySumRow, error) {
	rows, err := q.db.QueryContext(ctx, sumByCategory, accountID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []CategorySumRow
	for rows.Next() {
		var c CategorySumRow
		if err := rows.Scan(&c.Category, &c.TotalCents); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const sumBetween = `SELECT COALESCE(SUM(amount_cents), 0)
FROM transactions
WHERE account_id = ? AND occurred_at >= ? AND occurred_at <= ?`

func (q *Queries) SumBetween(ctx context.Context, accountID int64, from, to string) (int64, error) {
	var total int64
	err := q.db.QueryRowContext(ctx, sumBetween, accountID, from, to).Scan(&total)
	return total, err
}

// Scheduled payments

const paymentColumns = `id, account_id, title, amount_cents, due_date, category, recurring`

func scanPayment(row interface{ Scan(...any) error }) (ScheduledPaymentRow, error) {
	var p ScheduledPaymentRow
	err := row.Scan(&p.ID, &p.AccountID, &p.Title, &p.AmountCents, &p.DueDate, &p.Category, &p.Recurring)
	return p, err
}

type CreateScheduledPaymentParams struct {
	AccountID   int64
	Title       string
	AmountCents int64
	DueDate     string
	Category    string
	Recurring   bool
}

const createScheduledPayment = `INSERT INTO scheduled_payments (account_id, title, amount_cents, due_date, category, recurring)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING ` + paymentColumns

func (q *Queries) CreateScheduledPayment(ctx context.Context, arg CreateScheduledPaymentParams) (ScheduledPaymentRow, error) {
	row := q.db.QueryRowContext(ctx, createScheduledPayment,
		arg.AccountID, arg.Title, arg.AmountCents, arg.DueDate, arg.Category, arg.Recurring)
	return scanPayment(row)
}

const listScheduledPayments = `SELECT ` + paymentColumns + ` FROM scheduled_payments
WHERE account_id = ? AND due_date >= ?
ORDER BY due_date ASC, id ASC
LIMIT ?`

// ListScheduledPayments returns payments due on or after fromDate. A
// negative limit means no limit.
func (q *Queries) ListScheduledPayments(ctx context.Context, accountID int64, fromDate string, limit int) ([]ScheduledPaymentRow, error) {
	rows, err := q.db.QueryContext(ctx, listScheduledPayments, accountID, fromDate, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := []ScheduledPaymentRow{}
	for rows.Next() {
		p, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const deleteScheduledPayment = `DELETE FROM scheduled_payments WHERE id = ? AND account_id = ?`

func (q *Queries) DeleteScheduledPayment(ctx context.Context, accountID, id int64) (int64, error) {
	return execRows(q.db.ExecContext(ctx, deleteScheduledPayment, id, accountID))
}

// Budgets

const upsertBudget = `INSERT INTO budgets (account_id, month, year, amount_cents)
VALUES (?, ?, ?, ?)
ON CONFLICT (account_id, month, year) DO UPDATE SET amount_cents = excluded.amount_cents
RETURNING id, account_id, month, year, amount_cents`

type UpsertBudgetParams struct {
	AccountID   int64
	Month       int64
	Year        int64
	AmountCents int64
}

func (q *Queries) UpsertBudget(ctx context.Context, arg UpsertBudgetParams) (BudgetRow, error) {
	var b BudgetRow
	err := q.db.QueryRowContext(ctx, upsertBudget, arg.AccountID, arg.Month, arg.Year, arg.AmountCents).
		Scan(&b.ID, &b.AccountID, &b.Month, &b.Year, &b.AmountCents)
	return b, err
}

const getBudget = `SELECT id, account_id, month, year, amount_cents FROM budgets
WHERE account_id = ? AND month = ? AND year = ?`

func (q *Queries) GetBudget(ctx context.Context, accountID, month, year int64) (BudgetRow, error) {
	var b BudgetRow
	err := q.db.QueryRowContext(ctx, getBudget, accountID, month, year).
		Scan(&b.ID, &b.AccountID, &b.Month, &b.Year, &b.AmountCents)
	return b, err
}

func execRows(res sql.Result, err error) (int64, error) {
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
