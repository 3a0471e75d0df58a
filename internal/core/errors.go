package core

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAppliance   = errors.New("invalid appliance")
	ErrUnknownTariffClass = errors.New("unknown tariff class")
)

// ValidationError names the input field that failed its numeric bound.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidAppliance }

// LookupError is returned by strict tariff lookups for a class missing from the table.
type LookupError struct {
	Class string
}

func (e *LookupError) Error() string {
	return fmt.Sprintf("tariff class %q not found", e.Class)
}

func (e *LookupError) Unwrap() error { return ErrUnknownTariffClass }
