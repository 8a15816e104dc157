package dto

import (
	"time"

	"hub-ops-service/internal/domain"
)

type ScanRequest struct {
	DriverID string `json:"driver_id"`
	// Channel enables repeated-scan suppression for the given input.
	Channel string `json:"channel"`
}

type SLAColors struct {
	Level      domain.SLALevel `json:"sla_level"`
	Background string          `json:"background"`
	TextColor  string          `json:"text_color"`
}

func NewSLAColors(l domain.SLALevel) SLAColors {
	bg, fg := l.Colors()
	return SLAColors{Level: l, Background: bg, TextColor: fg}
}

type DwellRecordResponse struct {
	ID       string     `json:"id"`
	DriverID string     `json:"driver_id"`
	Name     string     `json:"name"`
	Plate    string     `json:"plate"`
	Date     string     `json:"date"`
	Entrada  time.Time  `json:"entrada"`
	Saida    *time.Time `json:"saida"`
	TempoHub string     `json:"tempo_hub"`
	Status   string     `json:"status"`
	SLAColors
}

func NewDwellRecordResponse(r domain.DwellRecord, level domain.SLALevel) DwellRecordResponse {
	return DwellRecordResponse{
		ID:        r.ID,
		DriverID:  r.DriverID,
		Name:      r.Name,
		Plate:     r.Plate,
		Date:      r.Date,
		Entrada:   r.Entrada,
		Saida:     r.Saida,
		TempoHub:  r.TempoHub,
		Status:    string(r.Status),
		SLAColors: NewSLAColors(level),
	}
}

type ScanResponse struct {
	Transition domain.Transition    `json:"transition"`
	Duplicate  bool                 `json:"duplicate"`
	Record     *DwellRecordResponse `json:"record,omitempty"`
	Warning    string               `json:"warning,omitempty"`
}

type ListRecordsResponse struct {
	Date    string                `json:"date"`
	Records []DwellRecordResponse `json:"records"`
}

type LiveEntryResponse struct {
	DwellRecordResponse
	ElapsedSeconds int64  `json:"elapsed_seconds"`
	Elapsed        string `json:"elapsed"`
}

type LiveGridResponse struct {
	Entries []LiveEntryResponse `json:"entries"`
}
