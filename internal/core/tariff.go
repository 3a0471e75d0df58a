package core

import (
	"maps"
	"slices"
)

const (
	// DefaultTariffClass is the class selected for a new ledger.
	DefaultTariffClass = "R-1"

	// FallbackPrice is used by the permissive lookup when even the default
	// class is missing from the table.
	FallbackPrice = 1500.0
)

// TariffTable maps tariff-class labels to a price per kWh. The set of classes is
// open; Default names the class whose price the permissive lookup falls back to.
type TariffTable struct {
	Default string
	Prices  map[string]float64
}

// DefaultTariffs returns the reference household tariff table.
func DefaultTariffs() TariffTable {
	return TariffTable{
		Default: DefaultTariffClass,
		Prices: map[string]float64{
			"R-1": 1500,
			"R-2": 2000,
			"R-3": 2500,
		},
	}
}

// Price is the strict lookup: a class missing from the table is a *LookupError.
func (t TariffTable) Price(class string) (float64, error) {
	p, ok := t.Prices[class]
	if !ok {
		return 0, &LookupError{Class: class}
	}
	return p, nil
}

// PriceOrDefault is the permissive lookup used for ledger-wide figures. Unknown
// classes are priced at the default class.
func (t TariffTable) PriceOrDefault(class string) float64 {
	if p, ok := t.Prices[class]; ok {
		return p
	}
	if p, ok := t.Prices[t.Default]; ok {
		return p
	}
	return FallbackPrice
}

// MaxPrice is the highest price any lookup can return, FallbackPrice included.
func (t TariffTable) MaxPrice() float64 {
	highest := FallbackPrice
	for _, p := range t.Prices {
		if p > highest {
			highest = p
		}
	}
	return highest
}

// Has reports whether the class is priced by the table.
func (t TariffTable) Has(class string) bool {
	_, ok := t.Prices[class]
	return ok
}

// Classes returns the class labels in lexical order.
func (t TariffTable) Classes() []string {
	return slices.Sorted(maps.Keys(t.Prices))
}

// Clone returns a deep copy so snapshots never share the price map.
func (t TariffTable) Clone() TariffTable {
	return TariffTable{Default: t.Default, Prices: maps.Clone(t.Prices)}
}
