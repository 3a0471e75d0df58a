// Package http provides HTTP server and handler implementations.
//
// This file implements utilities for parsing and validating HTTP request data.
// Bodies may arrive form-encoded (htmx, plain forms) or as JSON (API clients);
// both go through the same struct validation.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"listrik/internal/core"
)

const maxBodyBytes = 64 << 10

// validate is safe for concurrent use and caches struct metadata.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	return v
}

// ApplianceForm is the add-appliance form. Hours start at 0.1 here even though
// the ledger accepts 0.
type ApplianceForm struct {
	Name         string  `json:"name" validate:"required,max=64"`
	TariffClass  string  `json:"tariff_class" validate:"required,max=16"`
	Units        int     `json:"units" validate:"min=1,max=100000"`
	HoursPerDay  float64 `json:"hours_per_day" validate:"gte=0.1,lte=24"`
	WattsPerUnit float64 `json:"watts" validate:"gte=1,lte=100000"`
}

// Input converts the form into a ledger registration tuple.
func (f ApplianceForm) Input() core.ApplianceInput {
	return core.ApplianceInput{
		Name:         f.Name,
		Units:        f.Units,
		WattsPerUnit: f.WattsPerUnit,
		TariffClass:  f.TariffClass,
		HoursPerDay:  f.HoursPerDay,
	}
}

// TariffForm selects the class used for the aggregate cost.
type TariffForm struct {
	TariffClass string `json:"tariff_class" validate:"required,max=16"`
}

// ParseApplianceForm reads and validates an appliance registration. Units
// default to 1 and hours to 1.0 when left empty. Failures are returned as
// *core.ValidationError naming the field, together with whatever was read so
// the form can be shown again.
func ParseApplianceForm(p *RequestBodyParser) (ApplianceForm, error) {
	if err := p.Parse(); err != nil {
		return ApplianceForm{}, malformed(err)
	}

	f := ApplianceForm{
		Name:        p.Get("name"),
		TariffClass: p.Get("tariff_class"),
		Units:       1,
		HoursPerDay: 1.0,
	}

	if v := p.Get("units"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return f, &core.ValidationError{Field: "units", Reason: "must be a whole number"}
		}
		f.Units = n
	}
	var err error
	if f.HoursPerDay, err = parseFloatField(p, "hours_per_day", f.HoursPerDay); err != nil {
		return f, err
	}
	if f.WattsPerUnit, err = parseFloatField(p, "watts", 0); err != nil {
		return f, err
	}

	if err := validate.Struct(f); err != nil {
		return f, validationError(err)
	}
	return f, nil
}

// ParseTariffForm reads the tariff selector.
func ParseTariffForm(p *RequestBodyParser) (TariffForm, error) {
	if err := p.Parse(); err != nil {
		return TariffForm{}, malformed(err)
	}
	f := TariffForm{TariffClass: p.Get("tariff_class")}
	if err := validate.Struct(f); err != nil {
		return TariffForm{}, validationError(err)
	}
	return f, nil
}

func malformed(err error) error {
	return &core.ValidationError{Field: "body", Reason: err.Error()}
}

func parseFloatField(p *RequestBodyParser, key string, def float64) (float64, error) {
	v := p.Get(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, &core.ValidationError{Field: key, Reason: "must be a number"}
	}
	return f, nil
}

// validationError turns the first validator failure into a core.ValidationError.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	fe := verrs[0]
	return &core.ValidationError{Field: fe.Field(), Reason: describe(fe)}
}

func describe(fe validator.FieldError) string {
	unit := ""
	if fe.Kind() == reflect.String {
		unit = " characters"
	}
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min", "gte":
		return "must be at least " + fe.Param() + unit
	case "max", "lte":
		return "must be at most " + fe.Param() + unit
	default:
		return fmt.Sprintf("failed %s check", fe.Tag())
	}
}

// RequestBodyParser handles different content types for request body parsing.
// It supports both JSON and form-encoded data, commonly used with HTMX.
type RequestBodyParser struct {
	body     []byte
	jsonData map[string]any
	formData url.Values
	parsed   bool
	err      error
}

// NewRequestBodyParser creates a parser for the given request.
// It reads the body once, up to a fixed limit.
func NewRequestBodyParser(r *http.Request) *RequestBodyParser {
	p := &RequestBodyParser{}
	if r.Body == nil {
		return p
	}

	p.body, p.err = io.ReadAll(io.LimitReader(r.Body, maxBodyBytes+1))
	if p.err == nil && len(p.body) > maxBodyBytes {
		p.err = errors.New("request body too large")
	}
	return p
}

// Parse attempts to parse the body as JSON or form data.
func (p *RequestBodyParser) Parse() error {
	if p.parsed {
		return p.err
	}
	p.parsed = true

	if p.err != nil {
		return p.err
	}

	if len(p.body) == 0 {
		p.formData = url.Values{}
		return nil
	}

	if p.body[0] == '{' {
		p.jsonData = make(map[string]any)
		if err := json.Unmarshal(p.body, &p.jsonData); err != nil {
			p.err = err
			return err
		}
		return nil
	}

	p.formData, p.err = url.ParseQuery(string(p.body))
	return p.err
}

// Get returns a string value from the parsed data (JSON or form).
func (p *RequestBodyParser) Get(key string) string {
	if p.jsonData != nil {
		if val, ok := p.jsonData[key]; ok {
			return sanitizeInput(stringValue(val))
		}
		return ""
	}
	if p.formData != nil {
		return sanitizeInput(p.formData.Get(key))
	}
	return ""
}

func stringValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}

// RequireMethod checks if the request method matches the expected method(s).
// Returns an error response builder if the method doesn't match.
func RequireMethod(r *http.Request, methods ...string) *HTMXResponseBuilder {
	for _, m := range methods {
		if r.Method == m {
			return nil
		}
	}
	return MethodNotAllowedError(strings.Join(methods, ", "))
}

// RequirePOST is a convenience function for POST-only handlers.
func RequirePOST(r *http.Request) *HTMXResponseBuilder {
	return RequireMethod(r, http.MethodPost)
}
