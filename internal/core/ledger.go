package core

import (
	"math"
	"slices"
	"sync"
)

// Ledger owns the appliance list of one session together with its tariff table,
// the selected tariff class and the synthetic daily usage series.
//
// AddAppliance and SetTariffClass are serialised by the ledger's mutex. Every read
// works on a Snapshot, so computations never hold the lock.
type Ledger struct {
	mu         sync.Mutex
	tariffs    TariffTable
	selected   string
	appliances []Appliance
	daily      []DailySample
	sampler    *sampler
}

// LedgerOption customises a new ledger.
type LedgerOption func(*Ledger)

// WithTariffs replaces the reference tariff table. The selected class becomes the
// table's default class.
func WithTariffs(t TariffTable) LedgerOption {
	return func(l *Ledger) {
		l.tariffs = t.Clone()
		if t.Default != "" {
			l.selected = t.Default
		}
	}
}

// NewLedger returns an empty ledger priced with the reference tariffs.
func NewLedger(opts ...LedgerOption) *Ledger {
	l := &Ledger{
		tariffs:  DefaultTariffs(),
		selected: DefaultTariffClass,
		sampler:  newSampler(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// NewSeededLedger returns a ledger with the given appliances appended in order.
func NewSeededLedger(seed []ApplianceInput, opts ...LedgerOption) (*Ledger, error) {
	l := NewLedger(opts...)
	for _, in := range seed {
		if _, err := l.AddAppliance(in); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// AddAppliance validates and appends an appliance, then extends the daily usage
// series by one sample (or fills it on the first append).
func (l *Ledger) AddAppliance(in ApplianceInput) (Appliance, error) {
	a, err := NewAppliance(in)
	if err != nil {
		return Appliance{}, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.checkTotals(a); err != nil {
		return Appliance{}, err
	}
	l.appliances = append(l.appliances, a)
	if len(l.daily) == 0 {
		l.daily = l.sampler.fill(SampleDays)
	} else {
		l.daily = append(l.daily, l.sampler.next(l.daily))
	}
	return a, nil
}

// checkTotals rejects an appliance that would push the ledger-wide watts, kWh or
// cost at the dearest tariff past the float64 range. Callers hold l.mu.
func (l *Ledger) checkTotals(a Appliance) error {
	watts, kwh := a.TotalWatts, a.MonthlyKWh()
	for _, e := range l.appliances {
		watts += e.TotalWatts
		kwh += e.MonthlyKWh()
	}
	if math.IsInf(watts, 0) {
		return &ValidationError{Field: "watts", Reason: "total power of the ledger is too large"}
	}
	if math.IsInf(kwh*l.tariffs.MaxPrice(), 0) {
		return &ValidationError{Field: "watts", Reason: "monthly cost of the ledger is too large"}
	}
	return nil
}

// SetTariffClass selects the class used for ledger-wide cost figures. The class
// is not checked against the table.
func (l *Ledger) SetTariffClass(class string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.selected = class
}

// Snapshot copies the current state.
func (l *Ledger) Snapshot() Snapshot {
	l.mu.Lock()
	defer l.mu.Unlock()
	return Snapshot{
		Appliances:          slices.Clone(l.appliances),
		SelectedTariffClass: l.selected,
		Tariffs:             l.tariffs.Clone(),
		DailyUsage:          slices.Clone(l.daily),
	}
}

// TotalMonthlyKWh is Snapshot().TotalMonthlyKWh.
func (l *Ledger) TotalMonthlyKWh() float64 { return l.Snapshot().TotalMonthlyKWh() }

// EstimatedMonthlyCost prices the ledger total at the selected class.
func (l *Ledger) EstimatedMonthlyCost() float64 { return l.Snapshot().EstimatedMonthlyCost() }

// PerApplianceConsumption lists monthly kWh per appliance in ledger order.
func (l *Ledger) PerApplianceConsumption() []ApplianceConsumption {
	return l.Snapshot().PerApplianceConsumption()
}

// PerApplianceCost prices each appliance at its own class with the strict lookup.
func (l *Ledger) PerApplianceCost() ([]ApplianceCost, error) {
	return l.Snapshot().PerApplianceCost()
}

// UsageReductionSuggestion caps daily hours and reports the savings.
func (l *Ledger) UsageReductionSuggestion() Suggestion {
	return l.Snapshot().UsageReductionSuggestion()
}
