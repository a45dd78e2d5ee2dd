package http

import (
	"net/http"

	"fintrack/internal/auth"
	"fintrack/internal/core"
	"fintrack/internal/services"
)

func (s *Server) handleSignup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := decodeJSON(w, r, &req); err != nil {
		FromError(r, err).Write(w)
		return
	}
	balance, err := req.InitialBalance.optional("initial_balance")
	if err != nil {
		FromError(r, err).Write(w)
		return
	}

	acc, err := s.deps.Accounts.Signup(r.Context(), services.SignupInput{
		Username:       sanitizeInput(req.Username),
		Email:          sanitizeInput(req.Email),
		Phone:          sanitizeInput(req.Phone),
		Password:       req.Password,
		Currency:       sanitizeInput(req.Currency),
		InitialBalance: balance,
	})
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	NewResponse().
		Status(http.StatusCreated).
		Message("Account created successfully").
		Data(toAccountResponse(acc)).
		Write(w)
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		FromError(r, err).Write(w)
		return
	}
	acc, err := s.deps.Accounts.Login(r.Context(), sanitizeInput(req.Username), req.Password)
	if err != nil {
		FromError(r, err).Write(w)
		return
	}

	token, expires, err := s.deps.Tokens.Issue(auth.Principal{AccountID: acc.ID, Username: acc.Username})
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	NewResponse().
		Message("Logged in successfully").
		Data(loginResponse{Token: token, ExpiresAt: expires, Account: toAccountResponse(acc)}).
		Write(w)
}

// handleLogout acknowledges the request. Tokens are stateless and simply
// expire; clients drop theirs.
func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	NewResponse().Message("Logged out successfully").Write(w)
}

func (s *Server) handleHome(w http.ResponseWriter, r *http.Request) {
	d, err := s.deps.Dashboard.Home(r.Context(), principal(r))
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	NewResponse().Data(homeResponse{
		Account:  toAccountResponse(d.Account),
		Balance:  d.Account.Balance,
		Recent:   toTransactionResponses(d.Recent),
		Upcoming: toPaymentResponses(d.Upcoming),
	}).Write(w)
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	acc, err := s.deps.Accounts.Profile(r.Context(), principal(r))
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	NewResponse().Data(toAccountResponse(acc)).Write(w)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	var req profileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		FromError(r, err).Write(w)
		return
	}
	acc, err := s.deps.Accounts.UpdateProfile(r.Context(), principal(r), core.Profile{
		Username: sanitizeInput(req.Username),
		Email:    sanitizeInput(req.Email),
		Phone:    sanitizeInput(req.Phone),
		Currency: sanitizeInput(req.Currency),
	})
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	NewResponse().Message("Profile updated successfully").Data(toAccountResponse(acc)).Write(w)
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	var req settingsRequest
	if err := decodeJSON(w, r, &req); err != nil {
		FromError(r, err).Write(w)
		return
	}
	p := principal(r)

	switch req.Action {
	case actionToggleTheme:
		theme, err := s.deps.Accounts.ToggleTheme(r.Context(), p)
		if err != nil {
			FromError(r, err).Write(w)
			return
		}
		NewResponse().Message("Theme updated").Data(themeResponse{Theme: theme}).Write(w)

	case actionDeleteExpenses:
		n, err := s.deps.Ledger.DeleteAllTransactions(r.Context(), p)
		if err != nil {
			FromError(r, err).Write(w)
			return
		}
		NewResponse().Message("All expenses deleted").Data(deletedResponse{Deleted: n}).Write(w)

	case actionDeleteProfile:
		if err := s.deps.Accounts.DeleteAccount(r.Context(), p); err != nil {
			FromError(r, err).Write(w)
			return
		}
		NewResponse().Message("Profile deleted").Write(w)

	default:
		FromError(r, core.Invalid("Unknown settings action")).Write(w)
	}
}
