package events

import (
	"encoding/json"
	"time"

	"hub-ops-service/internal/domain"
)

type recordMessage struct {
	ID       string     `json:"id"`
	DriverID string     `json:"driver_id"`
	Name     string     `json:"name"`
	Plate    string     `json:"plate"`
	Date     string     `json:"date"`
	Entrada  time.Time  `json:"entrada"`
	Saida    *time.Time `json:"saida"`
	TempoHub string     `json:"tempo_hub,omitempty"`
	Status   string     `json:"status"`
}

type eventMessage struct {
	Type     domain.EventType `json:"type"`
	At       time.Time        `json:"at"`
	Record   *recordMessage   `json:"record,omitempty"`
	Closed   *int             `json:"closed,omitempty"`
	SLALevel domain.SLALevel  `json:"sla_level,omitempty"`
}

func encodeEvent(ev domain.HubEvent) ([]byte, error) {
	msg := eventMessage{
		Type:     ev.Type,
		At:       ev.At,
		SLALevel: ev.SLALevel,
	}
	if ev.Record != nil {
		r := ev.Record
		msg.Record = &recordMessage{
			ID:       r.ID,
			DriverID: r.DriverID,
			Name:     r.Name,
			Plate:    r.Plate,
			Date:     r.Date,
			Entrada:  r.Entrada,
			Saida:    r.Saida,
			TempoHub: r.TempoHub,
			Status:   string(r.Status),
		}
	}
	if ev.Type == domain.EventMasterStop {
		closed := ev.Closed
		msg.Closed = &closed
	}
	return json.Marshal(msg)
}
