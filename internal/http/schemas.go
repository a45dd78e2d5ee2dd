package http

import (
	"time"

	"fintrack/internal/core"
)

type signupRequest struct {
	Username       string      `json:"username"`
	Email          string      `json:"email"`
	Phone          string      `json:"phone"`
	Password       string      `json:"password"`
	Currency       string      `json:"currency"`
	InitialBalance amountInput `json:"initial_balance"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type profileRequest struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Currency string `json:"currency"`
}

type transactionRequest struct {
	Amount      amountInput `json:"amount"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	OccurredAt  string      `json:"occurred_at"`
	IsIncome    bool        `json:"is_income"`
}

type budgetRequest struct {
	Month  int         `json:"month"`
	Year   int         `json:"year"`
	Amount amountInput `json:"amount"`
}

type paymentRequest struct {
	Title     string      `json:"title"`
	Amount    amountInput `json:"amount"`
	DueDate   string      `json:"due_date"`
	Category  string      `json:"category"`
	Recurring bool        `json:"recurring"`
}

type settingsRequest struct {
	Action string `json:"action"`
}

const (
	actionToggleTheme    = "toggle_theme"
	actionDeleteExpenses = "delete_expenses"
	actionDeleteProfile  = "delete_profile"
)

type accountResponse struct {
	ID        int64      `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Phone     string     `json:"phone"`
	Currency  string     `json:"currency"`
	Theme     core.Theme `json:"theme"`
	Balance   core.Money `json:"balance"`
	CreatedAt time.Time  `json:"created_at"`
}

func toAccountResponse(a core.Account) accountResponse {
	return accountResponse{
		ID:        a.ID,
		Username:  a.Username,
		Email:     a.Email,
		Phone:     a.Phone,
		Currency:  a.Currency,
		Theme:     a.Theme,
		Balance:   a.Balance,
		CreatedAt: a.CreatedAt,
	}
}

type loginResponse struct {
	Token     string          `json:"token"`
	ExpiresAt time.Time       `json:"expires_at"`
	Account   accountResponse `json:"account"`
}

type transactionResponse struct {
	ID          int64      `json:"id"`
	Amount      core.Money `json:"amount"`
	Category    string     `json:"category"`
	Description string     `json:"description"`
	OccurredAt  time.Time  `json:"occurred_at"`
}

func toTransactionResponse(t core.Transaction) transactionResponse {
	return transactionResponse{
		ID:          t.ID,
		Amount:      t.Amount,
		Category:    t.Category,
		Description: t.Description,
		OccurredAt:  t.OccurredAt,
	}
}

func toTransactionResponses(txs []core.Transaction) []transactionResponse {
	out := make([]transactionResponse, len(txs))
	for i, t := range txs {
		out[i] = toTransactionResponse(t)
	}
	return out
}

type paymentResponse struct {
	ID        int64      `json:"id"`
	Title     string     `json:"title"`
	Amount    core.Money `json:"amount"`
	DueDate   core.Date  `json:"due_date"`
	Category  string     `json:"category,omitempty"`
	Recurring bool       `json:"recurring"`
}

func toPaymentResponses(ps []core.ScheduledPayment) []paymentResponse {
	out := make([]paymentResponse, len(ps))
	for i, p := range ps {
		out[i] = paymentResponse{
			ID:        p.ID,
			Title:     p.Title,
			Amount:    p.Amount,
			DueDate:   p.DueDate,
			Category:  p.Category,
			Recurring: p.Recurring,
		}
	}
	return out
}

type budgetResponse struct {
	Month     int         `json:"month"`
	Year      int         `json:"year"`
	Budget    *core.Money `json:"budget"`
	Spent     core.Money  `json:"spent"`
	Remaining *core.Money `json:"remaining"`
}

type incomeResponse struct {
	Balance core.Money `json:"balance"`
}

type homeResponse struct {
	Account  accountResponse       `json:"account"`
	Balance  core.Money            `json:"balance"`
	Recent   []transactionResponse `json:"recent"`
	Upcoming []paymentResponse     `json:"upcoming"`
}

type themeResponse struct {
	Theme core.Theme `json:"theme"`
}

type deletedResponse struct {
	Deleted int64 `json:"deleted"`
}

type categoriesResponse struct {
	Categories []string `json:"categories"`
}
