package http

import (
	"net/http"

	"fintrack/internal/core"
	"fintrack/internal/report"
)

func (s *Server) handleExpenseChart(w http.ResponseWriter, r *http.Request) {
	win, err := core.ParseWindow(r.URL.Query().Get("period"))
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	chart, err := s.deps.Reports.ExpenseChart(r.Context(), principal(r), win, report.PNG)
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	writeChart(w, chart, "")
}

func (s *Server) handleBalanceChart(w http.ResponseWriter, r *http.Request) {
	chart, err := s.deps.Reports.BalanceChart(r.Context(), principal(r))
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	writeChart(w, chart, "")
}

func (s *Server) handleHomeChart(w http.ResponseWriter, r *http.Request) {
	chart, err := s.deps.Reports.HomeChart(r.Context(), principal(r))
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	writeChart(w, chart, "")
}

// handleExport downloads the period's bar chart, pdf unless format=jpg.
func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	win, err := core.ParseWindow(q.Get("period"))
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	format := report.PDF
	if v := q.Get("format"); v != "" {
		if format, err = report.ParseFormat(v); err != nil {
			FromError(r, err).Write(w)
			return
		}
	}

	chart, filename, err := s.deps.Reports.Export(r.Context(), principal(r), win, format)
	if err != nil {
		FromError(r, err).Write(w)
		return
	}
	writeChart(w, chart, filename)
}
