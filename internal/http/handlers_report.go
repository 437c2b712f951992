package http

import (
	"net/http"

	applog "costbook/internal/log"
)

// handleReport builds the monthly report in the requested currency.
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := ParseMonthParams(q, s.now())
	if err != nil {
		writeError(w, r, applog.OpReport, err)
		return
	}
	target, err := ParseCurrencyParam(q)
	if err != nil {
		writeError(w, r, applog.OpReport, err)
		return
	}

	rep, err := s.backend.Reports.BuildReport(r.Context(), p.Year, p.Month, target)
	if err != nil {
		writeError(w, r, applog.OpReport, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// handleCategories returns per-category totals of one month.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := ParseMonthParams(q, s.now())
	if err != nil {
		writeError(w, r, applog.OpReport, err)
		return
	}
	target, err := ParseCurrencyParam(q)
	if err != nil {
		writeError(w, r, applog.OpReport, err)
		return
	}

	breakdown, err := s.backend.Reports.CategoryBreakdown(r.Context(), p.Year, p.Month, target)
	if err != nil {
		writeError(w, r, applog.OpReport, err)
		return
	}
	writeJSON(w, http.StatusOK, breakdown)
}

// handleYear returns twelve monthly totals.
func (s *Server) handleYear(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	p, err := ParseMonthParams(q, s.now())
	if err != nil {
		writeError(w, r, applog.OpReport, err)
		return
	}
	target, err := ParseCurrencyParam(q)
	if err != nil {
		writeError(w, r, applog.OpReport, err)
		return
	}

	overview, err := s.backend.Reports.YearOverview(r.Context(), p.Year, target)
	if err != nil {
		writeError(w, r, applog.OpReport, err)
		return
	}
	writeJSON(w, http.StatusOK, overview)
}
