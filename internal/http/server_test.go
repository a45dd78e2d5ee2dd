package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/report"
	"fintrack/internal/services"
)

type fakeLedger struct {
	income    core.Money
	expense   services.ExpenseInput
	editedID  int64
	deletedID int64
	err       error
}

func (f *fakeLedger) ApplyIncome(_ context.Context, _ auth.Principal, amount core.Money) (core.Money, error) {
	f.income = amount
	return core.Cents(10000).Add(amount), f.err
}

func (f *fakeLedger) RecordExpense(_ context.Context, p auth.Principal, in services.ExpenseInput) (core.Transaction, error) {
	f.expense = in
	if f.err != nil {
		return core.Transaction{}, f.err
	}
	return core.Transaction{ID: 7, AccountID: p.AccountID, Amount: in.Amount, Category: in.Category, Description: in.Description}, nil
}

func (f *fakeLedger) EditExpense(_ context.Context, p auth.Principal, id int64, in services.ExpenseInput) (core.Transaction, error) {
	f.editedID = id
	f.expense = in
	if f.err != nil {
		return core.Transaction{}, f.err
	}
	return core.Transaction{ID: id, AccountID: p.AccountID, Amount: in.Amount, Category: in.Category}, nil
}

func (f *fakeLedger) DeleteExpense(_ context.Context, _ auth.Principal, id int64) error {
	f.deletedID = id
	return f.err
}

func (f *fakeLedger) DeleteAllTransactions(context.Context, auth.Principal) (int64, error) {
	return 3, f.err
}

type fakeAccounts struct {
	account core.Account
	theme   core.Theme
	deleted bool
}

func (f *fakeAccounts) Signup(_ context.Context, in services.SignupInput) (core.Account, error) {
	if in.Username == "taken" {
		return core.Account{}, core.Conflict("Username or email already exists")
	}
	return core.Account{ID: 2, Username: in.Username, Email: in.Email, Balance: in.InitialBalance}, nil
}

func (f *fakeAccounts) Login(_ context.Context, username, password string) (core.Account, error) {
	if username != f.account.Username || password != "correct-horse" {
		return core.Account{}, core.AuthFailure("Invalid username or password")
	}
	return f.account, nil
}

func (f *fakeAccounts) Profile(_ context.Context, p auth.Principal) (core.Account, error) {
	if p.AccountID != f.account.ID {
		return core.Account{}, core.NotFound("Account not found")
	}
	return f.account, nil
}

func (f *fakeAccounts) UpdateProfile(_ context.Context, _ auth.Principal, in core.Profile) (core.Account, error) {
	acc := f.account
	acc.Username, acc.Email, acc.Phone, acc.Currency = in.Username, in.Email, in.Phone, in.Currency
	return acc, nil
}

func (f *fakeAccounts) ToggleTheme(context.Context, auth.Principal) (core.Theme, error) {
	f.theme = f.theme.Toggle()
	return f.theme, nil
}

func (f *fakeAccounts) DeleteAccount(context.Context, auth.Principal) error {
	f.deleted = true
	return nil
}

type fakeReports struct {
	window core.Window
	format report.Format
}

func (f *fakeReports) ExpenseChart(_ context.Context, _ auth.Principal, w core.Window, format report.Format) (report.Chart, error) {
	f.window, f.format = w, format
	return report.Chart{Data: []byte("\x89PNG"), MIMEType: format.MIMEType(), Ext: format.Ext()}, nil
}

func (f *fakeReports) HomeChart(context.Context, auth.Principal) (report.Chart, error) {
	return report.Chart{Data: []byte("\x89PNG"), MIMEType: "image/png", Ext: "png"}, nil
}

func (f *fakeReports) BalanceChart(context.Context, auth.Principal) (report.Chart, error) {
	return report.Chart{Data: []byte("\x89PNG"), MIMEType: "image/png", Ext: "png"}, nil
}

func (f *fakeReports) Export(_ context.Context, _ auth.Principal, w core.Window, format report.Format) (report.Chart, string, error) {
	f.window, f.format = w, format
	if format != report.PDF && format != report.JPEG {
		return report.Chart{}, "", core.Invalid("export format must be pdf or jpg")
	}
	return report.Chart{Data: []byte("%PDF"), MIMEType: format.MIMEType(), Ext: format.Ext()}, report.Filename(w, format), nil
}

type fakeTransactions struct {
	filter services.Filter
	txs    map[int64]core.Transaction
}

func (f *fakeTransactions) List(_ context.Context, _ auth.Principal, filter services.Filter) ([]core.Transaction, error) {
	f.filter = filter
	out := make([]core.Transaction, 0, len(f.txs))
	for _, t := range f.txs {
		out = append(out, t)
	}
	return out, nil
}

func (f *fakeTransactions) Get(_ context.Context, _ auth.Principal, id int64) (core.Transaction, error) {
	t, ok := f.txs[id]
	if !ok {
		return core.Transaction{}, core.NotFound("Transaction not found")
	}
	return t, nil
}

type fakeBudgets struct{}

func (fakeBudgets) SetBudget(_ context.Context, p auth.Principal, month, year int, amount core.Money) (core.Budget, error) {
	b := core.Budget{AccountID: p.AccountID, Month: month, Year: year, Amount: amount}
	if err := b.Validate(); err != nil {
		return core.Budget{}, core.Validation(err)
	}
	return b, nil
}

func (fakeBudgets) CurrentMonthStatus(context.Context, auth.Principal) (core.BudgetStatus, error) {
	return core.BudgetStatus{Month: 6, Year: 2024, Spent: core.Cents(2500)}, nil
}

type fakePlanner struct {
	scheduled services.PaymentInput
}

func (f *fakePlanner) Schedule(_ context.Context, _ auth.Principal, in services.PaymentInput) (core.ScheduledPayment, error) {
	f.scheduled = in
	return core.ScheduledPayment{ID: 4, Title: in.Title, Amount: in.Amount, DueDate: in.DueDate}, nil
}

func (f *fakePlanner) List(context.Context, auth.Principal) ([]core.ScheduledPayment, error) {
	return nil, nil
}

func (f *fakePlanner) Delete(_ context.Context, _ auth.Principal, id int64) error {
	if id != 4 {
		return core.NotFound("Planned payment not found")
	}
	return nil
}

type fakeDashboard struct{ account core.Account }

func (f fakeDashboard) Home(context.Context, auth.Principal) (core.Dashboard, error) {
	return core.Dashboard{Account: f.account}, nil
}

type fakePinger struct{ err error }

func (f fakePinger) Ping(context.Context) error { return f.err }

type harness struct {
	server       *Server
	tokens       *auth.Tokens
	ledger       *fakeLedger
	accounts     *fakeAccounts
	reports      *fakeReports
	transactions *fakeTransactions
	planner      *fakePlanner
}

func newHarness(t *testing.T, rateLimit int) *harness {
	t.Helper()

	account := core.Account{ID: 1, Username: "alice", Email: "alice@example.com", Currency: "EUR", Theme: core.ThemeLight, Balance: core.Cents(10000)}
	h := &harness{
		tokens:   auth.NewTokens("test-secret-0123456789", time.Hour),
		ledger:   &fakeLedger{},
		accounts: &fakeAccounts{account: account, theme: core.ThemeLight},
		reports:  &fakeReports{},
		transactions: &fakeTransactions{txs: map[int64]core.Transaction{
			5: {ID: 5, AccountID: 1, Amount: core.Cents(1250), Category: "Shopping"},
		}},
		planner: &fakePlanner{},
	}

	logger := log.New(log.Config{Handler: slog.NewTextHandler(io.Discard, nil)})
	h.server = NewServer(ServerConfig{Addr: ":0", ReadTimeout: time.Second, WriteTimeout: time.Second, IdleTimeout: time.Second, RateLimitPerMinute: rateLimit}, Deps{
		Ledger:       h.ledger,
		Accounts:     h.accounts,
		Reports:      h.reports,
		Transactions: h.transactions,
		Budgets:      fakeBudgets{},
		Planner:      h.planner,
		Dashboard:    fakeDashboard{account: account},
		Tokens:       h.tokens,
		Store:        fakePinger{},
	}, logger)
	t.Cleanup(func() { _ = h.server.Shutdown(context.Background()) })
	return h
}

func (h *harness) token(t *testing.T) string {
	t.Helper()
	tok, _, err := h.tokens.Issue(auth.Principal{AccountID: 1, Username: "alice"})
	require.NoError(t, err)
	return tok
}

func (h *harness) do(t *testing.T, method, target, body, token string) *httptest.ResponseRecorder {
	t.Helper()
	var rdr io.Reader
	if body != "" {
		rdr = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, rdr)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	h.server.Handler.ServeHTTP(rec, req)
	return rec
}

type rawEnvelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rec *httptest.ResponseRecorder) rawEnvelope {
	t.Helper()
	var env rawEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return env
}

func TestHealthAndReadiness(t *testing.T) {
	h := newHarness(t, 100)

	rec := h.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeEnvelope(t, rec).Success)

	rec = h.do(t, http.MethodGet, "/readyz", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	h.server.deps.Store = fakePinger{err: errors.New("disk gone")}
	rec = h.do(t, http.MethodGet, "/readyz", "", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.False(t, decodeEnvelope(t, rec).Success)
}

func TestMiddlewareHeaders(t *testing.T) {
	h := newHarness(t, 100)
	rec := h.do(t, http.MethodGet, "/healthz", "", "")

	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
}

func TestAuthRequired(t *testing.T) {
	h := newHarness(t, 100)

	for _, tok := range []string{"", "not-a-jwt"} {
		rec := h.do(t, http.MethodGet, "/api/home", "", tok)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
		env := decodeEnvelope(t, rec)
		assert.False(t, env.Success)
		assert.Equal(t, "Login required", env.Message)
		assert.Contains(t, rec.Header().Get("WWW-Authenticate"), "Bearer")
	}
}

func TestSignupAndLogin(t *testing.T) {
	h := newHarness(t, 100)

	rec := h.do(t, http.MethodPost, "/api/signup",
		`{"username":"bob","email":"bob@example.com","phone":"123","password":"correct-horse","currency":"EUR","initial_balance":"50,25"}`, "")
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var acc accountResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &acc))
	assert.Equal(t, "bob", acc.Username)
	assert.Equal(t, core.Cents(5025), acc.Balance)

	rec = h.do(t, http.MethodPost, "/api/signup", `{"username":"taken","email":"x@example.com","password":"correct-horse"}`, "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	rec = h.do(t, http.MethodPost, "/api/login", `{"username":"alice","password":"wrong"}`, "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "Invalid username or password", decodeEnvelope(t, rec).Message)

	rec = h.do(t, http.MethodPost, "/api/login", `{"username":"alice","password":"correct-horse"}`, "")
	require.Equal(t, http.StatusOK, rec.Code)
	var login loginResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &login))
	require.NotEmpty(t, login.Token)

	rec = h.do(t, http.MethodGet, "/api/profile", "", login.Token)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestCreateTransaction(t *testing.T) {
	h := newHarness(t, 100)
	tok := h.token(t)

	rec := h.do(t, http.MethodPost, "/api/transactions",
		`{"amount":"12,50","category":" Shopping ","description":"shoes","occurred_at":"2024-06-01"}`, tok)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, core.Cents(1250), h.ledger.expense.Amount)
	assert.Equal(t, "Shopping", h.ledger.expense.Category)
	require.NotNil(t, h.ledger.expense.OccurredAt)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), h.ledger.expense.OccurredAt.UTC())

	rec = h.do(t, http.MethodPost, "/api/transactions", `{"amount":20,"is_income":true}`, tok)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, core.Cents(2000), h.ledger.income)
	var inc incomeResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &inc))
	assert.Equal(t, core.Cents(12000), inc.Balance)
}

func TestCreateTransactionRejectsBadInput(t *testing.T) {
	h := newHarness(t, 100)
	tok := h.token(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"malformed json", `{"amount":`},
		{"unknown field", `{"amount":"1","category":"x","colour":"red"}`},
		{"negative amount", `{"amount":"-5","category":"x"}`},
		{"bad timestamp", `{"amount":"5","category":"x","occurred_at":"yesterday"}`},
		{"two objects", `{"amount":"5","category":"x"}{}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := h.do(t, http.MethodPost, "/api/transactions", tt.body, tok)
			assert.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			assert.False(t, decodeEnvelope(t, rec).Success)
		})
	}
}

func TestTransactionByID(t *testing.T) {
	h := newHarness(t, 100)
	tok := h.token(t)

	rec := h.do(t, http.MethodGet, "/api/transactions/5", "", tok)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/transactions/99", "", tok)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Transaction not found", decodeEnvelope(t, rec).Message)

	rec = h.do(t, http.MethodDelete, "/api/transactions/abc", "", tok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodPut, "/api/transactions/5", `{"amount":"30","category":"Housing","description":"rent"}`, tok)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, int64(5), h.ledger.editedID)
	assert.Equal(t, core.Cents(3000), h.ledger.expense.Amount)

	rec = h.do(t, http.MethodPut, "/api/transactions/5", `{"amount":"30","category":"Housing","occurred_at":"2024-01-01"}`, tok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodDelete, "/api/transactions/5", "", tok)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(5), h.ledger.deletedID)
}

func TestListTransactionsFilters(t *testing.T) {
	h := newHarness(t, 100)
	tok := h.token(t)

	rec := h.do(t, http.MethodGet, "/api/transactions?category=Shopping&date_from=2024-06-01&date_to=2024-06-30", "", tok)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "Shopping", h.transactions.filter.Category)
	require.NotNil(t, h.transactions.filter.DateFrom)
	require.NotNil(t, h.transactions.filter.DateTo)
	assert.Equal(t, "2024-06-30", h.transactions.filter.DateTo.String())

	rec = h.do(t, http.MethodGet, "/api/transactions?date_from=06/01/2024", "", tok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPersistenceFailureIsGeneric(t *testing.T) {
	h := newHarness(t, 100)
	h.ledger.err = core.Persistence("record expense", errors.New("database is locked"))

	rec := h.do(t, http.MethodPost, "/api/transactions", `{"amount":"1","category":"Other"}`, h.token(t))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "record expense failed", env.Message)
	assert.NotContains(t, rec.Body.String(), "locked")
}

func TestSettingsActions(t *testing.T) {
	h := newHarness(t, 100)
	tok := h.token(t)

	rec := h.do(t, http.MethodPost, "/api/settings", `{"action":"toggle_theme"}`, tok)
	require.Equal(t, http.StatusOK, rec.Code)
	var theme themeResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &theme))
	assert.Equal(t, core.ThemeDark, theme.Theme)

	rec = h.do(t, http.MethodPost, "/api/settings", `{"action":"delete_expenses"}`, tok)
	require.Equal(t, http.StatusOK, rec.Code)
	var deleted deletedResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &deleted))
	assert.Equal(t, int64(3), deleted.Deleted)

	rec = h.do(t, http.MethodPost, "/api/settings", `{"action":"delete_profile"}`, tok)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, h.accounts.deleted)

	rec = h.do(t, http.MethodPost, "/api/settings", `{"action":"launch"}`, tok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestBudgetEndpoints(t *testing.T) {
	h := newHarness(t, 100)
	tok := h.token(t)

	rec := h.do(t, http.MethodGet, "/api/budget", "", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	var st budgetResponse
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &st))
	assert.Nil(t, st.Budget)
	assert.Nil(t, st.Remaining)
	assert.Equal(t, core.Cents(2500), st.Spent)

	rec = h.do(t, http.MethodPost, "/api/budget", `{"month":6,"year":2024,"amount":"400"}`, tok)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = h.do(t, http.MethodPost, "/api/budget", `{"month":13,"year":2024,"amount":"400"}`, tok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPlannedPayments(t *testing.T) {
	h := newHarness(t, 100)
	tok := h.token(t)

	rec := h.do(t, http.MethodPost, "/api/planned-payments", `{"title":"Rent","amount":"800","due_date":"2024-07-01","recurring":true}`, tok)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Rent", h.planner.scheduled.Title)
	assert.Equal(t, "2024-07-01", h.planner.scheduled.DueDate.String())
	assert.True(t, h.planner.scheduled.Recurring)

	rec = h.do(t, http.MethodPost, "/api/planned-payments", `{"title":"Rent","amount":"800","due_date":"July"}`, tok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodDelete, "/api/planned-payments/4", "", tok)
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = h.do(t, http.MethodDelete, "/api/planned-payments/5", "", tok)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCharts(t *testing.T) {
	h := newHarness(t, 100)
	tok := h.token(t)

	rec := h.do(t, http.MethodGet, "/api/charts/expenses?period=weekly", "", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	assert.Equal(t, core.Weekly, h.reports.window)

	rec = h.do(t, http.MethodGet, "/api/charts/expenses?period=hourly", "", tok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	for _, path := range []string{"/api/charts/balance", "/api/charts/home"} {
		rec = h.do(t, http.MethodGet, path, "", tok)
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Equal(t, "4", rec.Header().Get("Content-Length"))
	}
}

func TestExport(t *testing.T) {
	h := newHarness(t, 100)
	tok := h.token(t)

	rec := h.do(t, http.MethodGet, "/api/export?period=yearly", "", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, report.PDF, h.reports.format)
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.Equal(t, `attachment; filename="expenses_yearly.pdf"`, rec.Header().Get("Content-Disposition"))

	rec = h.do(t, http.MethodGet, "/api/export?format=jpeg", "", tok)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="expenses_monthly.jpg"`, rec.Header().Get("Content-Disposition"))

	rec = h.do(t, http.MethodGet, "/api/export?format=png", "", tok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = h.do(t, http.MethodGet, "/api/export?format=gif", "", tok)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRateLimit(t *testing.T) {
	h := newHarness(t, 2)

	for i := 0; i < 2; i++ {
		assert.Equal(t, http.StatusOK, h.do(t, http.MethodGet, "/healthz", "", "").Code)
	}
	rec := h.do(t, http.MethodGet, "/healthz", "", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.False(t, decodeEnvelope(t, rec).Success)
}

func TestUnknownRoute(t *testing.T) {
	h := newHarness(t, 100)
	rec := h.do(t, http.MethodGet, "/nope", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
