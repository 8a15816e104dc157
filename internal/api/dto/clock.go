package dto

import (
	"time"

	"hub-ops-service/internal/domain"
)

type ClockResponse struct {
	Running        bool       `json:"running"`
	StartTime      *time.Time `json:"start_time"`
	ElapsedSeconds int64      `json:"elapsed_seconds"`
	Elapsed        string     `json:"elapsed"`
}

func NewClockResponse(running bool, start *time.Time, elapsed time.Duration) ClockResponse {
	return ClockResponse{
		Running:        running,
		StartTime:      start,
		ElapsedSeconds: int64(elapsed / time.Second),
		Elapsed:        domain.FormatDwell(elapsed),
	}
}

type MasterStopRequest struct {
	Date string `json:"date"`
}

type MasterStopResponse struct {
	Date   string        `json:"date"`
	Closed int           `json:"closed"`
	Clock  ClockResponse `json:"clock"`
}

type SLAResponse struct {
	Duration string `json:"duration"`
	SLAColors
}
