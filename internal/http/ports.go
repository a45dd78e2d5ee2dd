package http

import (
	"context"
	"time"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/report"
	"fintrack/internal/services"
)

// The handlers depend on these narrow views of the services so tests can
// substitute fakes.

type LedgerService interface {
	ApplyIncome(ctx context.Context, p auth.Principal, amount core.Money) (core.Money, error)
	RecordExpense(ctx context.Context, p auth.Principal, in services.ExpenseInput) (core.Transaction, error)
	EditExpense(ctx context.Context, p auth.Principal, id int64, in services.ExpenseInput) (core.Transaction, error)
	DeleteExpense(ctx context.Context, p auth.Principal, id int64) error
	DeleteAllTransactions(ctx context.Context, p auth.Principal) (int64, error)
}

type AccountService interface {
	Signup(ctx context.Context, in services.SignupInput) (core.Account, error)
	Login(ctx context.Context, username, password string) (core.Account, error)
	Profile(ctx context.Context, p auth.Principal) (core.Account, error)
	UpdateProfile(ctx context.Context, p auth.Principal, in core.Profile) (core.Account, error)
	ToggleTheme(ctx context.Context, p auth.Principal) (core.Theme, error)
	DeleteAccount(ctx context.Context, p auth.Principal) error
}

type ReportService interface {
	ExpenseChart(ctx context.Context, p auth.Principal, w core.Window, format report.Format) (report.Chart, error)
	HomeChart(ctx context.Context, p auth.Principal) (report.Chart, error)
	BalanceChart(ctx context.Context, p auth.Principal) (report.Chart, error)
	Export(ctx context.Context, p auth.Principal, w core.Window, format report.Format) (report.Chart, string, error)
}

type TransactionService interface {
	List(ctx context.Context, p auth.Principal, f services.Filter) ([]core.Transaction, error)
	Get(ctx context.Context, p auth.Principal, id int64) (core.Transaction, error)
}

type BudgetService interface {
	SetBudget(ctx context.Context, p auth.Principal, month, year int, amount core.Money) (core.Budget, error)
	CurrentMonthStatus(ctx context.Context, p auth.Principal) (core.BudgetStatus, error)
}

type PlannerService interface {
	Schedule(ctx context.Context, p auth.Principal, in services.PaymentInput) (core.ScheduledPayment, error)
	List(ctx context.Context, p auth.Principal) ([]core.ScheduledPayment, error)
	Delete(ctx context.Context, p auth.Principal, id int64) error
}

type DashboardService interface {
	Home(ctx context.Context, p auth.Principal) (core.Dashboard, error)
}

// TokenService issues and verifies bearer tokens.
type TokenService interface {
	Issue(p auth.Principal) (string, time.Time, error)
	Parse(token string) (auth.Principal, error)
}

// Pinger reports store readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps wires the server to its collaborators.
type Deps struct {
	Ledger       LedgerService
	Accounts     AccountService
	Reports      ReportService
	Transactions TransactionService
	Budgets      BudgetService
	Planner      PlannerService
	Dashboard    DashboardService
	Tokens       TokenService
	Store        Pinger
}

// FromServices fills Deps from the concrete service bundle.
func FromServices(svc *services.Services, tokens TokenService, store Pinger) Deps {
	return Deps{
		Ledger:       svc.Ledger,
		Accounts:     svc.Accounts,
		Reports:      svc.Reports,
		Transactions: svc.Transactions,
		Budgets:      svc.Budgets,
		Planner:      svc.Planner,
		Dashboard:    svc.Dashboard,
		Tokens:       tokens,
		Store:        store,
	}
}
