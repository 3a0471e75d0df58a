package report

import (
	"strconv"

	"listrik/internal/core"
)

const (
	ChartLine = "line"
	ChartPie  = "pie"
	ChartBar  = "bar"
)

// Chart is shaped after the Chart.js data object so the browser can hand it over
// without reshaping.
type Chart struct {
	Type     string    `json:"type"`
	Title    string    `json:"title"`
	Labels   []string  `json:"labels"`
	Datasets []Dataset `json:"datasets"`
}

type Dataset struct {
	Label string    `json:"label"`
	Data  []float64 `json:"data"`
}

// DailyChart plots the synthetic daily usage series.
func DailyChart(s core.Snapshot) Chart {
	c := Chart{Type: ChartLine, Title: "Daily electricity usage"}
	data := make([]float64, 0, len(s.DailyUsage))
	for _, d := range s.DailyUsage {
		c.Labels = append(c.Labels, strconv.Itoa(d.Day))
		data = append(data, d.KWh)
	}
	c.Datasets = []Dataset{{Label: "kWh", Data: data}}
	return c
}

// DistributionChart is the share of monthly kWh per appliance.
func DistributionChart(s core.Snapshot) Chart {
	c := Chart{Type: ChartPie, Title: "Energy consumption per appliance"}
	var data []float64
	for _, r := range s.PerApplianceConsumption() {
		c.Labels = append(c.Labels, r.Name)
		data = append(data, r.KWh)
	}
	c.Datasets = []Dataset{{Label: "kWh / month", Data: data}}
	return c
}

// WattsChart is the share of nameplate power per appliance.
func WattsChart(s core.Snapshot) Chart {
	c := Chart{Type: ChartPie, Title: "Power per appliance"}
	var data []float64
	for _, a := range s.Appliances {
		c.Labels = append(c.Labels, a.Name)
		data = append(data, a.TotalWatts)
	}
	c.Datasets = []Dataset{{Label: "Total watts", Data: data}}
	return c
}

// UsageChart is the monthly kWh per appliance as bars.
func UsageChart(s core.Snapshot) Chart {
	c := DistributionChart(s)
	c.Type = ChartBar
	c.Title = "Monthly electricity usage per appliance"
	return c
}

// CostChart is the monthly cost per appliance at its own tariff class.
func CostChart(s core.Snapshot) (Chart, error) {
	rows, err := s.PerApplianceCost()
	if err != nil {
		return Chart{}, err
	}
	c := Chart{Type: ChartBar, Title: "Electricity cost per appliance"}
	data := make([]float64, 0, len(rows))
	for _, r := range rows {
		c.Labels = append(c.Labels, r.Name)
		data = append(data, r.Cost)
	}
	c.Datasets = []Dataset{{Label: "Cost (Rp)", Data: data}}
	return c, nil
}

// SuggestionChart groups current and suggested kWh per appliance.
func SuggestionChart(s core.Snapshot) Chart {
	sug := s.UsageReductionSuggestion()
	c := Chart{Type: ChartBar, Title: "Current vs suggested usage"}
	current := make([]float64, 0, len(sug.PerAppliance))
	suggested := make([]float64, 0, len(sug.PerAppliance))
	for _, r := range sug.PerAppliance {
		c.Labels = append(c.Labels, r.Name)
		current = append(current, r.CurrentKWh)
		suggested = append(suggested, r.SuggestedKWh)
	}
	c.Datasets = []Dataset{
		{Label: "Current (kWh)", Data: current},
		{Label: "Suggested (kWh)", Data: suggested},
	}
	return c
}

// ChartByName resolves the chart endpoints served to the browser.
func ChartByName(name string, s core.Snapshot) (Chart, bool, error) {
	switch name {
	case "daily":
		return DailyChart(s), true, nil
	case "distribution":
		return DistributionChart(s), true, nil
	case "watts":
		return WattsChart(s), true, nil
	case "usage":
		return UsageChart(s), true, nil
	case "cost":
		c, err := CostChart(s)
		return c, true, err
	case "suggestions":
		return SuggestionChart(s), true, nil
	default:
		return Chart{}, false, nil
	}
}
