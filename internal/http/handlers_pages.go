package http

import (
	"bytes"
	"net/http"
	"net/url"
	"sync/atomic"

	"listrik/internal/core"
	"listrik/internal/log"
	"listrik/internal/report"
	"listrik/internal/session"
)

// pageData is handed to every page template; View carries the page's report.
type pageData struct {
	Page   string
	Title  string
	View   any
	Form   ApplianceForm
	Error  string
	Notice string
}

// renderTemplate executes into a buffer first so a failing template never
// leaves a half-written page behind.
func (s *Server) renderTemplate(r *http.Request, name string, data any) ([]byte, error) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		atomic.AddInt64(&s.appMetrics.renderFailures, 1)
		requestLogger(r).LogError(r.Context(), "Template execution failed", err, log.ComponentTemplate, log.OpRender,
			log.LogFields{"template": name})
		return nil, err
	}
	return buf.Bytes(), nil
}

func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	body, err := s.renderTemplate(r, name, data)
	if err != nil {
		http.Error(w, "Internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

// requestLogger carries the request ID set by the trace middleware.
func requestLogger(r *http.Request) *log.StructuredLogger {
	return log.NewStructuredLogger(log.FromContext(r.Context()))
}

// ledgerFromRequest returns the session ledger attached by session.Middleware.
func (s *Server) ledgerFromRequest(w http.ResponseWriter, r *http.Request) (string, *core.Ledger, bool) {
	id, l, ok := session.FromContext(r.Context())
	if !ok {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "No session ledger on request", log.FieldPath, r.URL.Path)
		http.Error(w, "Session unavailable", http.StatusInternalServerError)
		return "", nil, false
	}
	return id, l, true
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if resp := RequireMethod(r, http.MethodGet, http.MethodHead); resp != nil {
		resp.Write(w)
		return
	}
	_, l, ok := s.ledgerFromRequest(w, r)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, "dashboard_page", pageData{
		Page:  "dashboard",
		Title: "Dashboard",
		View:  report.Dashboard(l.Snapshot()),
	})
}

func (s *Server) handleAppliances(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet, http.MethodHead:
		s.handleAppliancesPage(w, r)
	case http.MethodPost:
		s.handleAddAppliance(w, r)
	default:
		MethodNotAllowedError("GET, POST").Write(w)
	}
}

func (s *Server) appliancesPage(l *core.Ledger) pageData {
	return pageData{
		Page:  "appliances",
		Title: "Appliances",
		View:  report.Appliances(l.Snapshot()),
		Form:  ApplianceForm{TariffClass: core.DefaultTariffClass, Units: 1, HoursPerDay: 1.0},
	}
}

func (s *Server) handleAppliancesPage(w http.ResponseWriter, r *http.Request) {
	_, l, ok := s.ledgerFromRequest(w, r)
	if !ok {
		return
	}
	data := s.appliancesPage(l)
	if added := sanitizeInput(r.URL.Query().Get("added")); added != "" {
		data.Notice = "Appliance " + added + " added"
	}
	s.render(w, r, http.StatusOK, "appliances_page", data)
}

// handleAddAppliance answers htmx with the refreshed table and triggers, and
// plain forms with a redirect back to the list.
func (s *Server) handleAddAppliance(w http.ResponseWriter, r *http.Request) {
	id, l, ok := s.ledgerFromRequest(w, r)
	if !ok {
		return
	}

	form, err := ParseApplianceForm(NewRequestBodyParser(r))
	if err == nil {
		_, err = s.ledger.AddAppliance(r.Context(), id, l, form.Input())
	}
	if err != nil {
		s.writeFormError(w, r, err, func(status int, msg string) {
			data := s.appliancesPage(l)
			if form != (ApplianceForm{}) {
				data.Form = form
			}
			data.Error = msg
			s.render(w, r, status, "appliances_page", data)
		})
		return
	}
	atomic.AddInt64(&s.appMetrics.appliancesAdded, 1)

	if !isHTMX(r) {
		http.Redirect(w, r, "/appliances?added="+url.QueryEscape(form.Name), http.StatusSeeOther)
		return
	}

	snap := l.Snapshot()
	body, err := s.renderTemplate(r, "appliance_table", report.Appliances(snap))
	if err != nil {
		InternalServerError("Appliance saved but the list could not be refreshed").Write(w)
		return
	}
	NewHTMXResponse().
		TriggerApplianceAdded(form.Name, snap.TotalMonthlyKWh()).
		TriggerFormReset().
		TriggerSuccessNotification("Appliance " + form.Name + " added").
		BodyHTML(body).
		Write(w)
}

// writeFormError reports a failed form post: an htmx error fragment for htmx
// requests, otherwise fallback renders the full page with the message.
func (s *Server) writeFormError(w http.ResponseWriter, r *http.Request, err error, fallback func(status int, msg string)) {
	status := errorStatus(err)
	msg := publicMessage(err)
	if status == http.StatusInternalServerError {
		requestLogger(r).LogError(r.Context(), "Form submission failed", err, log.ComponentHTTP, log.OpCreate,
			log.NewFields().WithClientIP(s.securityDetector.ExtractClientIP(r)))
	} else {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Form rejected",
			log.FieldPath, r.URL.Path, log.FieldError, err)
	}

	if isHTMX(r) {
		ErrorResponse(status, msg).Write(w)
		return
	}
	fallback(status, msg)
}

func (s *Server) handleUsage(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet, http.MethodHead); resp != nil {
		resp.Write(w)
		return
	}
	_, l, ok := s.ledgerFromRequest(w, r)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, "usage_page", pageData{
		Page:  "usage",
		Title: "Usage",
		View:  report.Usage(l.Snapshot()),
	})
}

// costPage renders the cost view. A tariff class missing from the table makes
// the per-appliance rows unavailable; the page is still drawn with the
// aggregate figures and a 409.
func (s *Server) costPage(r *http.Request, l *core.Ledger) (int, pageData) {
	v, err := report.Cost(l.Snapshot())
	data := pageData{Page: "cost", Title: "Cost", View: v}
	if err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Per-appliance cost unavailable", log.FieldError, err)
		data.Error = publicMessage(err)
		return errorStatus(err), data
	}
	return http.StatusOK, data
}

func (s *Server) handleCost(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet, http.MethodHead); resp != nil {
		resp.Write(w)
		return
	}
	_, l, ok := s.ledgerFromRequest(w, r)
	if !ok {
		return
	}
	status, data := s.costPage(r, l)
	s.render(w, r, status, "cost_page", data)
}

func (s *Server) handleSuggestions(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet, http.MethodHead); resp != nil {
		resp.Write(w)
		return
	}
	_, l, ok := s.ledgerFromRequest(w, r)
	if !ok {
		return
	}
	s.render(w, r, http.StatusOK, "suggestions_page", pageData{
		Page:  "suggestions",
		Title: "Suggestions",
		View:  report.Suggestions(l.Snapshot()),
	})
}

// handleSelectTariff changes the class used for the aggregate cost.
func (s *Server) handleSelectTariff(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	id, l, ok := s.ledgerFromRequest(w, r)
	if !ok {
		return
	}

	form, err := ParseTariffForm(NewRequestBodyParser(r))
	if err == nil {
		err = s.ledger.SelectTariff(r.Context(), id, l, form.TariffClass)
	}
	if err != nil {
		s.writeFormError(w, r, err, func(status int, msg string) {
			_, data := s.costPage(r, l)
			data.Error = msg
			s.render(w, r, status, "cost_page", data)
		})
		return
	}
	atomic.AddInt64(&s.appMetrics.tariffChanges, 1)

	if !isHTMX(r) {
		http.Redirect(w, r, "/cost", http.StatusSeeOther)
		return
	}

	// the selection succeeded, so the fragment is swapped in even when some
	// appliance rows cannot be priced
	_, data := s.costPage(r, l)
	body, err := s.renderTemplate(r, "cost_summary", data)
	if err != nil {
		InternalServerError("Tariff saved but the cost could not be refreshed").Write(w)
		return
	}
	NewHTMXResponse().
		TriggerTariffChanged(form.TariffClass).
		TriggerSuccessNotification("Tariff " + form.TariffClass + " selected").
		BodyHTML(body).
		Write(w)
}
