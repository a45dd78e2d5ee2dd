package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	st, err := s.deps.Budgets.CurrentMonthStatus(r.Context(), principal(r))
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	NewResponse().Data(budgetResponse{
		Month:     st.Month,
		Year:      st.Year,
		Budget:    st.Budget,
		Spent:     st.Spent,
		Remaining: st.Remaining,
	}).Write(w)
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		FromError(r, err).Write(w)
		return
	}
	amount, err := req.Amount.money("amount")
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	b, err := s.deps.Budgets.SetBudget(r.Context(), principal(r), req.Month, req.Year, amount)
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	NewResponse().Message("Budget saved successfully").Data(budgetResponse{
		Month:  b.Month,
		Year:   b.Year,
		Budget: &b.Amount,
	}).Write(w)
}

func (s *Server) handleListPayments(w http.ResponseWriter, r *http.Request) {
	ps, err := s.deps.Planner.List(r.Context(), principal(r))
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	NewResponse().Data(toPaymentResponses(ps)).Write(w)
}

func (s *Server) handleSchedulePayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		FromError(r, err).Write(w)
		return
	}
	amount, err := req.Amount.money("amount")
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	due, err := core.ParseDate(req.DueDate)
	if err != nil {
		FromError(r, core.Invalid("due_date must be a YYYY-MM-DD date")).Write(w)
		return
	}

	sp, err := s.deps.Planner.Schedule(r.Context(), principal(r), services.PaymentInput{
		Title:     sanitizeInput(req.Title),
		Amount:    amount,
		DueDate:   due,
		Category:  sanitizeInput(req.Category),
		Recurring: req.Recurring,
	})
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	NewResponse().
		Status(http.StatusCreated).
		Message("Planned payment added successfully").
		Data(toPaymentResponses([]core.ScheduledPayment{sp})[0]).
		Write(w)
}

func (s *Server) handleDeletePayment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	if err := s.deps.Planner.Delete(r.Context(), principal(r), id); err != nil {
		FromError(r, err).Write(w)
		return
	}
	NewResponse().Message("Planned payment deleted successfully").Write(w)
}
