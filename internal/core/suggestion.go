package core

import (
	"maps"
	"slices"
)

// SuggestedMaxHoursPerDay caps the daily use of every appliance that is not
// always on when computing potential savings.
const SuggestedMaxHoursPerDay = 4.0

// alwaysOn holds appliances that must keep running around the clock
// (refrigeration and continuous monitoring).
var alwaysOn = map[string]struct{}{
	"Kulkas":          {},
	"Kamera Pengawas": {},
}

type (
	ApplianceSuggestion struct {
		Name           string
		Exempt         bool
		CurrentHours   float64
		SuggestedHours float64
		CurrentKWh     float64
		SuggestedKWh   float64
	}

	Suggestion struct {
		PerAppliance      []ApplianceSuggestion
		CurrentTotalKWh   float64
		SuggestedTotalKWh float64
		SavingsKWh        float64
		SavingsCost       float64
	}
)

// AlwaysOnAppliances lists the names exempt from the daily cap, sorted.
func AlwaysOnAppliances() []string {
	return slices.Sorted(maps.Keys(alwaysOn))
}

// IsAlwaysOn reports whether the appliance name is exempt from the daily cap.
func IsAlwaysOn(name string) bool {
	_, ok := alwaysOn[name]
	return ok
}

// SuggestedHours returns the recommended daily hours for an appliance.
func SuggestedHours(a Appliance) float64 {
	if IsAlwaysOn(a.Name) {
		return a.HoursPerDay
	}
	return min(a.HoursPerDay, SuggestedMaxHoursPerDay)
}

// UsageReductionSuggestion compares the current consumption with the one obtained
// by capping every non-exempt appliance. Savings are priced at the selected class
// with the permissive lookup.
func (s Snapshot) UsageReductionSuggestion() Suggestion {
	out := Suggestion{PerAppliance: make([]ApplianceSuggestion, 0, len(s.Appliances))}
	for _, a := range s.Appliances {
		hours := SuggestedHours(a)
		row := ApplianceSuggestion{
			Name:           a.Name,
			Exempt:         IsAlwaysOn(a.Name),
			CurrentHours:   a.HoursPerDay,
			SuggestedHours: hours,
			CurrentKWh:     a.MonthlyKWh(),
			SuggestedKWh:   monthlyKWh(a.TotalWatts, hours),
		}
		out.PerAppliance = append(out.PerAppliance, row)
		out.CurrentTotalKWh += row.CurrentKWh
		out.SuggestedTotalKWh += row.SuggestedKWh
	}
	out.SavingsKWh = out.CurrentTotalKWh - out.SuggestedTotalKWh
	out.SavingsCost = out.SavingsKWh * s.SelectedPrice()
	return out
}
