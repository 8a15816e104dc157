package services

import (
	"math"
	"strconv"
	"strings"
	"time"

	"hub-ops-service/internal/domain"
)

// Dwell thresholds in minutes.
const (
	SLAWarnMinutes   = 11.0
	SLABreachMinutes = 15.0
)

// ClassifyMinutes buckets an elapsed dwell expressed in minutes.
func ClassifyMinutes(m float64) domain.SLALevel {
	switch {
	case math.IsNaN(m) || math.IsInf(m, 0) || m < 0:
		return domain.SLANeutral
	case m < SLAWarnMinutes:
		return domain.SLAOK
	case m < SLABreachMinutes:
		return domain.SLAWarn
	}
	return domain.SLABreach
}

func ClassifyDuration(d time.Duration) domain.SLALevel {
	return ClassifyMinutes(d.Minutes())
}

// Classify parses a displayed duration and buckets it. Anything that does
// not parse is NEUTRAL.
func Classify(s string) domain.SLALevel {
	m, ok := ParseDwellMinutes(s)
	if !ok {
		return domain.SLANeutral
	}
	return ClassifyMinutes(m)
}

// ParseDwellMinutes converts "H:MM:SS", "MM:SS", "N day(s), H:MM:SS" or a
// plain minute count into minutes.
func ParseDwellMinutes(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}

	var days float64
	if head, rest, ok := strings.Cut(s, ","); ok {
		fields := strings.Fields(head)
		if len(fields) != 2 || (fields[1] != "day" && fields[1] != "days") {
			return 0, false
		}
		n, err := strconv.Atoi(fields[0])
		if err != nil || n < 0 {
			return 0, false
		}
		days = float64(n)
		s = strings.TrimSpace(rest)
	}

	parts := strings.Split(s, ":")
	nums := make([]float64, len(parts))
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil || v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
			return 0, false
		}
		nums[i] = v
	}

	var minutes float64
	switch len(nums) {
	case 1:
		minutes = nums[0]
	case 2:
		minutes = nums[0] + nums[1]/60
	case 3:
		minutes = nums[0]*60 + nums[1] + nums[2]/60
	default:
		return 0, false
	}

	return days*24*60 + minutes, true
}
