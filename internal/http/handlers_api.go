package http

import (
	"net/http"
	"sync/atomic"

	"listrik/internal/log"
	"listrik/internal/report"
)

// handleAPISummary returns the headline figures of the caller's ledger.
func (s *Server) handleAPISummary(w http.ResponseWriter, r *http.Request) {
	_, l, ok := s.ledgerFromRequest(w, r)
	if !ok {
		return
	}
	respondJSON(w, r, http.StatusOK, l.Snapshot().Summary())
}

// handleAPIChart serves the Chart.js payloads the pages draw.
func (s *Server) handleAPIChart(w http.ResponseWriter, r *http.Request) {
	_, l, ok := s.ledgerFromRequest(w, r)
	if !ok {
		return
	}

	name := r.PathValue("name")
	chart, found, err := report.ChartByName(name, l.Snapshot())
	if !found {
		writeJSONError(w, http.StatusNotFound, "unknown chart "+name)
		return
	}
	if err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Chart unavailable", "chart", name, log.FieldError, err)
		writeJSONError(w, errorStatus(err), publicMessage(err))
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	respondJSON(w, r, http.StatusOK, chart)
}

// handleAPIAddAppliance is the JSON counterpart of the add form.
func (s *Server) handleAPIAddAppliance(w http.ResponseWriter, r *http.Request) {
	id, l, ok := s.ledgerFromRequest(w, r)
	if !ok {
		return
	}

	form, err := ParseApplianceForm(NewRequestBodyParser(r))
	if err == nil {
		_, err = s.ledger.AddAppliance(r.Context(), id, l, form.Input())
	}
	if err != nil {
		status := errorStatus(err)
		if status == http.StatusInternalServerError {
			requestLogger(r).LogError(r.Context(), "API appliance add failed", err, log.ComponentHTTP, log.OpCreate, nil)
		}
		writeJSONError(w, status, publicMessage(err))
		return
	}
	atomic.AddInt64(&s.appMetrics.appliancesAdded, 1)

	respondJSON(w, r, http.StatusCreated, l.Snapshot().Summary())
}
