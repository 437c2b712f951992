package http

import (
	"net/http"

	"costbook/internal/core"
	applog "costbook/internal/log"
)

// handleCreateCost records a cost and echoes the stored subset.
func (s *Server) handleCreateCost(w http.ResponseWriter, r *http.Request) {
	in, err := ParseCostInput(NewRequestBodyParser(r))
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}

	saved, err := s.backend.Costs.AddCost(r.Context(), in)
	if err != nil {
		writeError(w, r, applog.OpCreate, err)
		return
	}
	writeJSON(w, http.StatusCreated, saved)
}

// handleListCosts returns the costs of one month, id ascending.
func (s *Server) handleListCosts(w http.ResponseWriter, r *http.Request) {
	p, err := ParseMonthParams(r.URL.Query(), s.now())
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}

	costs, err := s.backend.Costs.GetCostsForPeriod(r.Context(), p.Year, p.Month)
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, costList{Year: p.Year, Month: p.Month, Costs: costs})
}

// handleAllCosts dumps every stored cost.
func (s *Server) handleAllCosts(w http.ResponseWriter, r *http.Request) {
	costs, err := s.backend.Costs.GetAllCosts(r.Context())
	if err != nil {
		writeError(w, r, applog.OpList, err)
		return
	}
	writeJSON(w, http.StatusOK, costList{Costs: costs})
}

// handleClearCosts deletes every cost once the caller confirms.
func (s *Server) handleClearCosts(w http.ResponseWriter, r *http.Request) {
	if r.URL.Query().Get("confirm") != "true" {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "clearing all costs requires confirm=true"})
		return
	}
	if err := s.backend.Costs.ClearAll(r.Context()); err != nil {
		writeError(w, r, applog.OpClear, err)
		return
	}
	applog.Component(applog.ComponentHTTP).InfoContext(r.Context(), "All costs cleared")
	w.WriteHeader(http.StatusNoContent)
}

type costList struct {
	Year  int               `json:"year,omitempty"`
	Month int               `json:"month,omitempty"`
	Costs []core.CostRecord `json:"costs"`
}
