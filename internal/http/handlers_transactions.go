package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/services"
)

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		FromError(r, err).Write(w)
		return
	}
	amount, err := req.Amount.money("amount")
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	p := principal(r)

	if req.IsIncome {
		balance, err := s.deps.Ledger.ApplyIncome(r.Context(), p, amount)
		if err != nil {
			FromError(r, err).Write(w)
			return
		}
		NewResponse().
			Status(http.StatusCreated).
			Message("Income added successfully").
			Data(incomeResponse{Balance: balance}).
			Write(w)
		return
	}

	occurred, err := parseTimestamp("occurred_at", req.OccurredAt)
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	tr, err := s.deps.Ledger.RecordExpense(r.Context(), p, services.ExpenseInput{
		Amount:      amount,
		Category:    sanitizeInput(req.Category),
		Description: sanitizeInput(req.Description),
		OccurredAt:  occurred,
	})
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	NewResponse().
		Status(http.StatusCreated).
		Message("Transaction added successfully").
		Data(toTransactionResponse(tr)).
		Write(w)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	from, err := queryDate(r, "date_from")
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	to, err := queryDate(r, "date_to")
	if err != nil {
		FromError(r, err).Write(w)
		return
	}

	txs, err := s.deps.Transactions.List(r.Context(), principal(r), services.Filter{
		Category: sanitizeInput(r.URL.Query().Get("category")),
		DateFrom: from,
		DateTo:   to,
	})
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	NewResponse().Data(toTransactionResponses(txs)).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	tr, err := s.deps.Transactions.Get(r.Context(), principal(r), id)
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	NewResponse().Data(toTransactionResponse(tr)).Write(w)
}

func (s *Server) handleEditTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	var req transactionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		FromError(r, err).Write(w)
		return
	}
	if req.IsIncome || req.OccurredAt != "" {
		FromError(r, core.Invalid("Only amount, category and description can be edited")).Write(w)
		return
	}
	amount, err := req.Amount.money("amount")
	if err != nil {
		FromError(r, err).Write(w)
		return
	}

	tr, err := s.deps.Ledger.EditExpense(r.Context(), principal(r), id, services.ExpenseInput{
		Amount:      amount,
		Category:    sanitizeInput(req.Category),
		Description: sanitizeInput(req.Description),
	})
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	NewResponse().Message("Transaction updated successfully").Data(toTransactionResponse(tr)).Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	if err := s.deps.Ledger.DeleteExpense(r.Context(), principal(r), id); err != nil {
		FromError(r, err).Write(w)
		return
	}
	NewResponse().Message("Transaction deleted successfully").Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	NewResponse().Data(categoriesResponse{Categories: core.Categories}).Write(w)
}
