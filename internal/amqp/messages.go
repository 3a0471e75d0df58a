package amqp

import (
	"encoding/json"
	"time"

	"listrik/internal/core"
)

// LedgerEventMessage is the wire form of a core.LedgerEvent.
type LedgerEventMessage struct {
	ID          string            `json:"id"`
	Type        string            `json:"type"`
	SessionID   string            `json:"session_id"`
	Appliance   *ApplianceMessage `json:"appliance,omitempty"`
	TariffClass string            `json:"tariff_class,omitempty"`
	Summary     core.Summary      `json:"summary"`
	Timestamp   time.Time         `json:"timestamp"`
}

type ApplianceMessage struct {
	Name         string  `json:"name"`
	Units        int     `json:"units"`
	WattsPerUnit float64 `json:"watts_per_unit"`
	TotalWatts   float64 `json:"total_watts"`
	TariffClass  string  `json:"tariff_class"`
	HoursPerDay  float64 `json:"hours_per_day"`
	MonthlyKWh   float64 `json:"monthly_kwh"`
}

func NewLedgerEventMessage(ev core.LedgerEvent) *LedgerEventMessage {
	msg := &LedgerEventMessage{
		ID:          ev.ID,
		Type:        ev.Type,
		SessionID:   ev.SessionID,
		TariffClass: ev.TariffClass,
		Summary:     ev.Summary,
		Timestamp:   ev.At,
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}
	if a := ev.Appliance; a != nil {
		msg.Appliance = &ApplianceMessage{
			Name:         a.Name,
			Units:        a.Units,
			WattsPerUnit: a.WattsPerUnit,
			TotalWatts:   a.TotalWatts,
			TariffClass:  a.TariffClass,
			HoursPerDay:  a.HoursPerDay,
			MonthlyKWh:   a.MonthlyKWh(),
		}
	}
	return msg
}

// ToJSON converts the message to JSON bytes
func (m *LedgerEventMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func LedgerEventMessageFromJSON(data []byte) (*LedgerEventMessage, error) {
	var msg LedgerEventMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
