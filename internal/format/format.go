// Package format renders energy and money figures for people.
package format

import (
	"strconv"

	"github.com/dustin/go-humanize"
)

// Rupiah formats an amount with thousands separators and two decimals,
// e.g. "Rp 90,000.00".
func Rupiah(v float64) string {
	if v < 0 {
		return "-Rp " + humanize.FormatFloat("#,###.##", -v)
	}
	return "Rp " + humanize.FormatFloat("#,###.##", v)
}

// KWh formats an energy figure with two decimals, e.g. "576.00 kWh".
func KWh(v float64) string {
	return Decimal(v) + " kWh"
}

// Decimal formats a number with two decimals and no grouping.
func Decimal(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

// Watts formats a power figure with thousands separators, e.g. "2,000 W".
func Watts(v float64) string {
	return humanize.CommafWithDigits(v, 2) + " W"
}

// Hours formats hours per day, dropping a trailing ".0".
func Hours(v float64) string {
	return humanize.FtoaWithDigits(v, 2) + " h"
}
