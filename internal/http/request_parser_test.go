package http

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"listrik/internal/core"
)

func parserFor(body string) *RequestBodyParser {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	return NewRequestBodyParser(req)
}

func TestParseApplianceForm(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		want    ApplianceForm
		wantErr string
	}{
		{
			name: "form with defaults",
			body: "name=Kulkas&tariff_class=R-1&watts=150",
			want: ApplianceForm{Name: "Kulkas", TariffClass: "R-1", Units: 1, HoursPerDay: 1, WattsPerUnit: 150},
		},
		{
			name: "json numbers",
			body: `{"name":"AC","tariff_class":"R-2","units":2,"hours_per_day":8,"watts":1000}`,
			want: ApplianceForm{Name: "AC", TariffClass: "R-2", Units: 2, HoursPerDay: 8, WattsPerUnit: 1000},
		},
		{
			name: "json numbers as strings",
			body: `{"name":"TV","tariff_class":"R-1","units":"1","hours_per_day":"4.5","watts":"90"}`,
			want: ApplianceForm{Name: "TV", TariffClass: "R-1", Units: 1, HoursPerDay: 4.5, WattsPerUnit: 90},
		},
		{
			name: "whitespace and control characters are stripped",
			body: "name=+Lampu%00+&tariff_class=R-1&watts=10",
			want: ApplianceForm{Name: "Lampu", TariffClass: "R-1", Units: 1, HoursPerDay: 1, WattsPerUnit: 10},
		},
		{name: "units below one", body: "name=X&tariff_class=R-1&units=0&watts=10", wantErr: "units"},
		{name: "hours over a day", body: "name=X&tariff_class=R-1&hours_per_day=24.5&watts=10", wantErr: "hours_per_day"},
		{name: "watts below one", body: "name=X&tariff_class=R-1&watts=0.5", wantErr: "watts"},
		{name: "watts above bound", body: "name=X&tariff_class=R-1&hours_per_day=24&watts=1e308", wantErr: "watts"},
		{name: "watts out of float range", body: "name=X&tariff_class=R-1&watts=1e400", wantErr: "watts"},
		{name: "name too long", body: "name=" + strings.Repeat("a", 65) + "&tariff_class=R-1&watts=10", wantErr: "name"},
		{name: "malformed json", body: `{"name"`, wantErr: "body"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseApplianceForm(parserFor(tt.body))
			if tt.wantErr != "" {
				var verr *core.ValidationError
				if !errors.As(err, &verr) {
					t.Fatalf("err = %v, want *core.ValidationError", err)
				}
				if verr.Field != tt.wantErr {
					t.Fatalf("field = %q, want %q", verr.Field, tt.wantErr)
				}
				if !errors.Is(err, core.ErrInvalidAppliance) {
					t.Fatal("validation errors should unwrap to ErrInvalidAppliance")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Fatalf("form = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseApplianceForm_HoursZeroRejectedOnlyByForm(t *testing.T) {
	_, err := ParseApplianceForm(parserFor("name=X&tariff_class=R-1&hours_per_day=0&watts=10"))
	if err == nil {
		t.Fatal("form should reject 0 hours")
	}
	if _, err := core.NewAppliance(core.ApplianceInput{Name: "X", Units: 1, WattsPerUnit: 10, TariffClass: "R-1"}); err != nil {
		t.Fatalf("ledger should accept 0 hours: %v", err)
	}
}

func TestValidationMessages(t *testing.T) {
	tests := []struct {
		body string
		want string
	}{
		{"tariff_class=R-1&watts=10", "invalid name: is required"},
		{"name=X&tariff_class=R-1&units=0&watts=10", "invalid units: must be at least 1"},
		{"name=X&tariff_class=R-1&hours_per_day=30&watts=10", "invalid hours_per_day: must be at most 24"},
		{"name=X&tariff_class=R-1&watts=250000", "invalid watts: must be at most 100000"},
		{"name=X&tariff_class=" + strings.Repeat("R", 17) + "&watts=10", "invalid tariff_class: must be at most 16 characters"},
	}
	for _, tt := range tests {
		_, err := ParseApplianceForm(parserFor(tt.body))
		if err == nil || err.Error() != tt.want {
			t.Errorf("body %q: err = %v, want %q", tt.body, err, tt.want)
		}
	}
}

func TestParseTariffForm(t *testing.T) {
	f, err := ParseTariffForm(parserFor("tariff_class=R-3"))
	if err != nil || f.TariffClass != "R-3" {
		t.Fatalf("form = %+v, err = %v", f, err)
	}

	_, err = ParseTariffForm(parserFor(""))
	var verr *core.ValidationError
	if !errors.As(err, &verr) || verr.Field != "tariff_class" {
		t.Fatalf("err = %v, want tariff_class validation error", err)
	}
}

func TestRequestBodyParser_TooLarge(t *testing.T) {
	p := parserFor("name=" + strings.Repeat("a", maxBodyBytes+10))
	if err := p.Parse(); err == nil {
		t.Fatal("expected error for oversized body")
	}
}

func TestRequireMethod(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if resp := RequireMethod(req, http.MethodGet, http.MethodHead); resp != nil {
		t.Fatal("GET should be allowed")
	}

	resp := RequirePOST(req)
	if resp == nil {
		t.Fatal("GET should be rejected by RequirePOST")
	}
	w := httptest.NewRecorder()
	resp.Write(w)
	if w.Code != http.StatusMethodNotAllowed || w.Header().Get("Allow") != "POST" {
		t.Fatalf("status=%d allow=%q", w.Code, w.Header().Get("Allow"))
	}
}

func TestErrorStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &core.ValidationError{Field: "units", Reason: "x"}, http.StatusUnprocessableEntity},
		{"wrapped validation", errors.Join(errors.New("ctx"), &core.ValidationError{Field: "units"}), http.StatusUnprocessableEntity},
		{"lookup", &core.LookupError{Class: "B-9"}, http.StatusConflict},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := errorStatus(tt.err); got != tt.want {
				t.Fatalf("errorStatus = %d, want %d", got, tt.want)
			}
		})
	}

	if msg := publicMessage(errors.New("db password leaked")); strings.Contains(msg, "password") {
		t.Fatalf("internal error text leaked: %q", msg)
	}
}
