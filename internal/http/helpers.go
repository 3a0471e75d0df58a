package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"listrik/internal/core"
	"listrik/internal/format"
	"listrik/internal/log"
)

// templateFuncs exposes the display formatters to templates.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"rupiah":  format.Rupiah,
		"kwh":     format.KWh,
		"decimal": format.Decimal,
		"watts":   format.Watts,
		"hours":   format.Hours,
	}
}

// errorStatus maps ledger errors onto HTTP status codes.
func errorStatus(err error) int {
	var verr *core.ValidationError
	var lerr *core.LookupError
	switch {
	case errors.As(err, &verr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &lerr):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is the error text safe to show to the user.
func publicMessage(err error) string {
	if errorStatus(err) == http.StatusInternalServerError {
		return "Internal error, please try again"
	}
	var verr *core.ValidationError
	if errors.As(err, &verr) {
		return verr.Error()
	}
	var lerr *core.LookupError
	if errors.As(err, &lerr) {
		return lerr.Error()
	}
	return err.Error()
}

func isHTMX(r *http.Request) bool {
	return r.Header.Get("HX-Request") == "true"
}

// writeJSON encodes v before touching the response, so an unencodable value
// becomes a 500 with a JSON error body instead of a bare status line.
func writeJSON(w http.ResponseWriter, status int, v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		status = http.StatusInternalServerError
		body = []byte(`{"error":"Internal error, please try again"}`)
		err = fmt.Errorf("encode json response: %w", err)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
	return err
}

// respondJSON is writeJSON for handlers, logging values that fail to encode.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, v any) {
	if err := writeJSON(w, status, v); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Response encoding failed", log.FieldError, err)
	}
}

func writeJSONError(w http.ResponseWriter, status int, message string) {
	_ = writeJSON(w, status, map[string]string{"error": message})
}

// sanitizeInput removes control characters and trims whitespace.
func sanitizeInput(s string) string {
	s = strings.TrimSpace(s)
	return strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s)
}
