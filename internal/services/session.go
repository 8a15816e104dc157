package services

import (
	"sync"
	"time"

	"hub-ops-service/internal/domain"
)

// Session holds operator state shared across requests: the ops clock and
// the last identifier accepted on each input channel.
type Session struct {
	mu       sync.Mutex
	clock    domain.OpsClock
	lastScan map[string]string
}

func NewSession() *Session {
	return &Session{lastScan: make(map[string]string)}
}

// Clock returns a copy of the ops clock.
func (s *Session) Clock() domain.OpsClock {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := s.clock
	if c.StartTime != nil {
		st := *c.StartTime
		c.StartTime = &st
	}
	return c
}

// StartClock starts the clock at the given instant. It reports false when
// the clock was already running.
func (s *Session) StartClock(at time.Time) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.clock.Running {
		return false
	}
	s.clock = domain.OpsClock{Running: true, StartTime: &at}
	return true
}

// StopClock stops the clock and clears its start time.
func (s *Session) StopClock() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clock = domain.OpsClock{}
}

// ShouldProcess reports whether value is new on the channel, and remembers
// it. Repeating the last value is suppressed until a different value or a
// Clear arrives.
func (s *Session) ShouldProcess(channel, value string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if last, ok := s.lastScan[channel]; ok && last == value {
		return false
	}
	s.lastScan[channel] = value
	return true
}

func (s *Session) Clear(channel string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.lastScan, channel)
}

// Forget re-arms the channel for value if value is still the last one
// remembered, so a scan that failed can be retried.
func (s *Session) Forget(channel, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if last, ok := s.lastScan[channel]; ok && last == value {
		delete(s.lastScan, channel)
	}
}
