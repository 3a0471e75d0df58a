package core

import "time"

const (
	EventApplianceAdded = "appliance.added"
	EventTariffSelected = "tariff.selected"
)

type (
	// Summary holds the headline figures of a ledger.
	Summary struct {
		ApplianceCount      int     `json:"appliance_count"`
		TotalKWh            float64 `json:"total_kwh"`
		EstimatedCost       float64 `json:"estimated_cost"`
		SelectedTariffClass string  `json:"selected_tariff_class"`
		SavingsKWh          float64 `json:"savings_kwh"`
		SavingsCost         float64 `json:"savings_cost"`
	}

	// LedgerEvent describes one mutation of a session ledger, with the summary
	// computed right after it.
	LedgerEvent struct {
		ID          string
		Type        string
		SessionID   string
		Appliance   *Appliance
		TariffClass string
		Summary     Summary
		At          time.Time
	}
)

// Summary computes the headline figures.
func (s Snapshot) Summary() Summary {
	sug := s.UsageReductionSuggestion()
	return Summary{
		ApplianceCount:      len(s.Appliances),
		TotalKWh:            s.TotalMonthlyKWh(),
		EstimatedCost:       s.EstimatedMonthlyCost(),
		SelectedTariffClass: s.SelectedTariffClass,
		SavingsKWh:          sug.SavingsKWh,
		SavingsCost:         sug.SavingsCost,
	}
}
