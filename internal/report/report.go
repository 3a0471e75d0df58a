// Package report builds the read-only views of a ledger snapshot: one view per
// dashboard page plus the chart payloads that go with them. Every function is a
// pure transformation of core.Snapshot.
package report

import (
	"listrik/internal/core"
)

type (
	DashboardView struct {
		Summary       core.Summary
		SelectedPrice float64
		Daily         []core.DailySample
		Distribution  []core.ApplianceConsumption
	}

	ApplianceRow struct {
		Name         string
		TariffClass  string
		Units        int
		WattsPerUnit float64
		TotalWatts   float64
		HoursPerDay  float64
	}

	AppliancesView struct {
		Rows       []ApplianceRow
		TotalWatts float64
		Classes    []string
	}

	UsageRow struct {
		Name        string
		HoursPerDay float64
		KWhPerHour  float64
		MonthlyKWh  float64
	}

	UsageView struct {
		TotalKWh      float64
		AveragePerDay float64
		Rows          []UsageRow
	}

	CostView struct {
		TotalCost     float64
		TotalKWh      float64
		SelectedClass string
		SelectedPrice float64
		Classes       []string
		Rows          []core.ApplianceCost
	}

	SuggestionView struct {
		core.Suggestion
		SelectedClass string
		CapHours      float64
		AlwaysOn      []string
	}
)

// Dashboard is the landing page: headline figures, daily series and the
// consumption distribution.
func Dashboard(s core.Snapshot) DashboardView {
	return DashboardView{
		Summary:       s.Summary(),
		SelectedPrice: s.SelectedPrice(),
		Daily:         s.DailyUsage,
		Distribution:  s.PerApplianceConsumption(),
	}
}

// Appliances lists the registered appliances in insertion order.
func Appliances(s core.Snapshot) AppliancesView {
	v := AppliancesView{
		Rows:       make([]ApplianceRow, 0, len(s.Appliances)),
		TotalWatts: s.TotalWatts(),
		Classes:    s.Tariffs.Classes(),
	}
	for _, a := range s.Appliances {
		v.Rows = append(v.Rows, ApplianceRow{
			Name:         a.Name,
			TariffClass:  a.TariffClass,
			Units:        a.Units,
			WattsPerUnit: a.WattsPerUnit,
			TotalWatts:   a.TotalWatts,
			HoursPerDay:  a.HoursPerDay,
		})
	}
	return v
}

// Usage breaks the monthly consumption down per appliance.
func Usage(s core.Snapshot) UsageView {
	total := s.TotalMonthlyKWh()
	v := UsageView{
		TotalKWh:      total,
		AveragePerDay: total / core.DaysPerMonth,
		Rows:          make([]UsageRow, 0, len(s.Appliances)),
	}
	for _, a := range s.Appliances {
		v.Rows = append(v.Rows, UsageRow{
			Name:        a.Name,
			HoursPerDay: a.HoursPerDay,
			KWhPerHour:  a.KilowattsPerHour(),
			MonthlyKWh:  a.MonthlyKWh(),
		})
	}
	return v
}

// Cost prices the ledger: the total at the selected class and each appliance at
// its own class. When an appliance's class is missing from the table the
// aggregate figures are still filled in, Rows stays nil and the *core.LookupError
// of the strict path is returned.
func Cost(s core.Snapshot) (CostView, error) {
	v := CostView{
		TotalCost:     s.EstimatedMonthlyCost(),
		TotalKWh:      s.TotalMonthlyKWh(),
		SelectedClass: s.SelectedTariffClass,
		SelectedPrice: s.SelectedPrice(),
		Classes:       s.Tariffs.Classes(),
	}
	rows, err := s.PerApplianceCost()
	if err != nil {
		return v, err
	}
	v.Rows = rows
	return v, nil
}

// Suggestions compares current and capped usage.
func Suggestions(s core.Snapshot) SuggestionView {
	return SuggestionView{
		Suggestion:    s.UsageReductionSuggestion(),
		SelectedClass: s.SelectedTariffClass,
		CapHours:      core.SuggestedMaxHoursPerDay,
		AlwaysOn:      core.AlwaysOnAppliances(),
	}
}
