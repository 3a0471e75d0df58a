package core

import (
	"math"
)

const (
	// DaysPerMonth is the fixed month length used by every monthly figure.
	DaysPerMonth = 30

	wattsPerKilowatt = 1000.0
)

type (
	// ApplianceInput is an appliance registration tuple as it arrives from a form,
	// the CLI or a catalog file.
	ApplianceInput struct {
		Name         string
		Units        int
		WattsPerUnit float64
		TariffClass  string
		HoursPerDay  float64
	}

	// Appliance is an immutable ledger entry. TotalWatts is derived at construction.
	Appliance struct {
		Name         string
		Units        int
		WattsPerUnit float64
		TotalWatts   float64
		TariffClass  string
		HoursPerDay  float64
	}
)

// Validate checks the numeric bounds of the registration tuple.
func (in ApplianceInput) Validate() error {
	if in.Units < 1 {
		return &ValidationError{Field: "units", Reason: "must be at least 1"}
	}
	if math.IsNaN(in.WattsPerUnit) || math.IsInf(in.WattsPerUnit, 0) {
		return &ValidationError{Field: "watts", Reason: "must be a finite number"}
	}
	if in.WattsPerUnit <= 0 {
		return &ValidationError{Field: "watts", Reason: "must be greater than 0"}
	}
	if math.IsNaN(in.HoursPerDay) || math.IsInf(in.HoursPerDay, 0) {
		return &ValidationError{Field: "hours", Reason: "must be a finite number"}
	}
	if in.HoursPerDay < 0 {
		return &ValidationError{Field: "hours", Reason: "must not be negative"}
	}
	total := in.WattsPerUnit * float64(in.Units)
	if math.IsInf(total, 0) {
		return &ValidationError{Field: "watts", Reason: "total power is too large"}
	}
	if math.IsInf(monthlyKWh(total, in.HoursPerDay), 0) {
		return &ValidationError{Field: "hours", Reason: "monthly consumption is too large"}
	}
	return nil
}

// NewAppliance validates the input and derives TotalWatts.
func NewAppliance(in ApplianceInput) (Appliance, error) {
	if err := in.Validate(); err != nil {
		return Appliance{}, err
	}
	return Appliance{
		Name:         in.Name,
		Units:        in.Units,
		WattsPerUnit: in.WattsPerUnit,
		TotalWatts:   in.WattsPerUnit * float64(in.Units),
		TariffClass:  in.TariffClass,
		HoursPerDay:  in.HoursPerDay,
	}, nil
}

// KilowattsPerHour is the energy drawn in one hour of use, in kWh.
func (a Appliance) KilowattsPerHour() float64 {
	return a.TotalWatts / wattsPerKilowatt
}

// MonthlyKWh is the consumption over a 30-day month at the registered hours.
func (a Appliance) MonthlyKWh() float64 {
	return monthlyKWh(a.TotalWatts, a.HoursPerDay)
}

// Input returns the registration tuple the appliance was built from.
func (a Appliance) Input() ApplianceInput {
	return ApplianceInput{
		Name:         a.Name,
		Units:        a.Units,
		WattsPerUnit: a.WattsPerUnit,
		TariffClass:  a.TariffClass,
		HoursPerDay:  a.HoursPerDay,
	}
}

func monthlyKWh(totalWatts, hoursPerDay float64) float64 {
	return (totalWatts / wattsPerKilowatt) * hoursPerDay * DaysPerMonth
}
