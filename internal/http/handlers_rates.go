package http

import (
	"net/http"

	applog "costbook/internal/log"
)

const opSetRates = "set_rates"

func (s *Server) handleGetRates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.backend.Rates.Rates())
}

// handlePutRates replaces the whole table; partial tables are rejected.
func (s *Server) handlePutRates(w http.ResponseWriter, r *http.Request) {
	m, err := ParseRates(r)
	if err != nil {
		writeError(w, r, opSetRates, err)
		return
	}
	if err := s.backend.Rates.SetRates(m); err != nil {
		writeError(w, r, opSetRates, err)
		return
	}
	applog.Component(applog.ComponentRates).InfoContext(r.Context(), "Rates overridden")
	writeJSON(w, http.StatusOK, s.backend.Rates.Rates())
}

func (s *Server) handleGetSource(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, sourceResponse{URL: s.backend.Rates.URL()})
}

// handlePutSource sets the URL used by the next refresh. No fetch happens here.
func (s *Server) handlePutSource(w http.ResponseWriter, r *http.Request) {
	raw, err := ParseSourceURL(r)
	if err != nil {
		writeError(w, r, opSetRates, err)
		return
	}
	if err := s.backend.Rates.SetURL(raw); err != nil {
		writeError(w, r, opSetRates, err)
		return
	}
	applog.Component(applog.ComponentRates).InfoContext(r.Context(), "Rates source updated",
		applog.FieldRatesURL, s.backend.Rates.URL())
	writeJSON(w, http.StatusOK, sourceResponse{URL: s.backend.Rates.URL()})
}

// handleRefreshRates fetches from the current source. Fetch failures are
// absorbed by the fetcher, so the reply is always the table in effect.
func (s *Server) handleRefreshRates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.backend.Refresher.Refresh(r.Context()))
}

type sourceResponse struct {
	URL string `json:"url"`
}
