package core

type (
	// Snapshot is an immutable copy of a ledger's state. All consumption, cost and
	// suggestion figures are computed from it.
	Snapshot struct {
		Appliances          []Appliance
		SelectedTariffClass string
		Tariffs             TariffTable
		DailyUsage          []DailySample
	}

	ApplianceConsumption struct {
		Name string
		KWh  float64
	}

	ApplianceCost struct {
		Name        string
		TariffClass string
		KWh         float64
		Cost        float64
	}
)

// TotalMonthlyKWh sums the monthly consumption of every appliance.
func (s Snapshot) TotalMonthlyKWh() float64 {
	var total float64
	for _, a := range s.Appliances {
		total += a.MonthlyKWh()
	}
	return total
}

// SelectedPrice is the price per kWh of the selected class, falling back to the
// default class when the selection is not in the table.
func (s Snapshot) SelectedPrice() float64 {
	return s.Tariffs.PriceOrDefault(s.SelectedTariffClass)
}

// EstimatedMonthlyCost prices the total at the selected class (permissive lookup).
func (s Snapshot) EstimatedMonthlyCost() float64 {
	return s.TotalMonthlyKWh() * s.SelectedPrice()
}

// PerApplianceConsumption lists monthly kWh per appliance in insertion order.
// Appliances sharing a name are not merged.
func (s Snapshot) PerApplianceConsumption() []ApplianceConsumption {
	out := make([]ApplianceConsumption, 0, len(s.Appliances))
	for _, a := range s.Appliances {
		out = append(out, ApplianceConsumption{Name: a.Name, KWh: a.MonthlyKWh()})
	}
	return out
}

// PerApplianceCost prices every appliance at its own tariff class with the strict
// lookup. The first appliance whose class is missing aborts with a *LookupError.
func (s Snapshot) PerApplianceCost() ([]ApplianceCost, error) {
	out := make([]ApplianceCost, 0, len(s.Appliances))
	for _, a := range s.Appliances {
		price, err := s.Tariffs.Price(a.TariffClass)
		if err != nil {
			return nil, err
		}
		kwh := a.MonthlyKWh()
		out = append(out, ApplianceCost{
			Name:        a.Name,
			TariffClass: a.TariffClass,
			KWh:         kwh,
			Cost:        kwh * price,
		})
	}
	return out, nil
}

// TotalWatts is the summed nameplate power of every registered unit.
func (s Snapshot) TotalWatts() float64 {
	var total float64
	for _, a := range s.Appliances {
		total += a.TotalWatts
	}
	return total
}
