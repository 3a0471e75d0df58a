package mqtt

import (
	"encoding/json"
	"fmt"

	"github.com/carlmjohnson/versioninfo"

	"listrik/internal/core"
	"listrik/internal/format"
)

const (
	SensorTotalKWh       = "total_kwh"
	SensorEstimatedCost  = "estimated_cost"
	SensorApplianceCount = "appliance_count"
	SensorSavingsKWh     = "savings_kwh"
	SensorTariffClass    = "tariff_class"
)

// Sensor is one summary figure exposed per session.
type Sensor struct {
	Id                string
	Name              string
	DeviceClass       string
	StateClass        string
	UnitOfMeasurement string
	Icon              string
	Value             func(core.Summary) string
}

func Sensors() []Sensor {
	return []Sensor{
		{
			Id: SensorTotalKWh, Name: "Monthly energy", DeviceClass: "energy", StateClass: "total",
			UnitOfMeasurement: "kWh",
			Value:             func(s core.Summary) string { return format.Decimal(s.TotalKWh) },
		},
		{
			Id: SensorEstimatedCost, Name: "Estimated monthly cost", DeviceClass: "monetary", StateClass: "total",
			UnitOfMeasurement: "IDR",
			Value:             func(s core.Summary) string { return format.Decimal(s.EstimatedCost) },
		},
		{
			Id: SensorApplianceCount, Name: "Appliances", StateClass: "measurement", Icon: "mdi:power-plug",
			Value: func(s core.Summary) string { return fmt.Sprint(s.ApplianceCount) },
		},
		{
			Id: SensorSavingsKWh, Name: "Potential savings", DeviceClass: "energy", StateClass: "total",
			UnitOfMeasurement: "kWh", Icon: "mdi:leaf",
			Value: func(s core.Summary) string { return format.Decimal(s.SavingsKWh) },
		},
		{
			Id: SensorTariffClass, Name: "Tariff class", Icon: "mdi:cash",
			Value: func(s core.Summary) string { return s.SelectedTariffClass },
		},
	}
}

type HADiscoveryConfig struct {
	Device            HADiscoveryDevice `json:"device"`
	StateTopic        string            `json:"state_topic"`
	StateClass        string            `json:"state_class,omitempty"`
	DeviceClass       string            `json:"device_class,omitempty"`
	UnitOfMeasurement string            `json:"unit_of_measurement,omitempty"`
	AvTopic           string            `json:"availability_topic,omitempty"`
	Name              string            `json:"name"`
	UniqueId          string            `json:"unique_id"`
	Platform          string            `json:"platform"`
	Icon              string            `json:"icon,omitempty"`
}

type HADiscoveryDevice struct {
	Id           []string `json:"identifiers"`
	Manufacturer string   `json:"manufacturer,omitempty"`
	Version      string   `json:"sw_version,omitempty"`
	Model        string   `json:"model,omitempty"`
	Name         string   `json:"name,omitempty"`
}

func (c HADiscoveryConfig) ToJSON() ([]byte, error) {
	return json.Marshal(c)
}

func deviceID(base, session string) string {
	return fmt.Sprintf("%s_%s", topicSafe(base), session)
}

// DiscoveryTopic is where Home Assistant looks for the sensor's config.
func DiscoveryTopic(base, session string, s Sensor) string {
	return fmt.Sprintf("homeassistant/sensor/%s/%s/config", deviceID(base, session), s.Id)
}

func SensorDiscoveryMessage(p *Publisher, session string, s Sensor) HADiscoveryConfig {
	id := deviceID(p.baseTopic, session)
	return HADiscoveryConfig{
		Device: HADiscoveryDevice{
			Id:           []string{id},
			Manufacturer: "listrik",
			Model:        "Household ledger",
			Version:      versioninfo.Short(),
			Name:         fmt.Sprintf("Listrik %s", shortID(session)),
		},
		StateTopic:        p.SensorStateTopic(session, s.Id),
		StateClass:        s.StateClass,
		DeviceClass:       s.DeviceClass,
		UnitOfMeasurement: s.UnitOfMeasurement,
		AvTopic:           p.BridgeStateTopic(),
		Name:              s.Name,
		UniqueId:          fmt.Sprintf("%s_%s", id, s.Id),
		Platform:          "mqtt",
		Icon:              s.Icon,
	}
}

func shortID(s string) string {
	if len(s) > 8 {
		return s[:8]
	}
	return s
}
