package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"hub-ops-service/internal/adapters/memory"
	"hub-ops-service/internal/domain"
	"hub-ops-service/internal/ports"
)

type staticReference struct {
	snap ports.ReferenceSnapshot
	err  error
}

func (s staticReference) Snapshot(ctx context.Context) (ports.ReferenceSnapshot, error) {
	return s.snap, s.err
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []domain.HubEvent
}

func (p *recordingPublisher) Publish(ctx context.Context, ev domain.HubEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []domain.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]domain.EventType, 0, len(p.events))
	for _, ev := range p.events {
		out = append(out, ev.Type)
	}
	return out
}

// fakeClock is a manually advanced time source.
type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

var errStoreDown = errors.New("store down")

// flakyDwellLog fails Toggle or CloseAllOpen while the flags are set.
type flakyDwellLog struct {
	*memory.DwellLog

	mu         sync.Mutex
	failToggle bool
	failClose  bool
}

func (l *flakyDwellLog) setFailures(toggle, closeAll bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.failToggle, l.failClose = toggle, closeAll
}

func (l *flakyDwellLog) Toggle(ctx context.Context, open domain.DwellRecord, at time.Time) (ports.ToggleResult, error) {
	l.mu.Lock()
	fail := l.failToggle
	l.mu.Unlock()
	if fail {
		return ports.ToggleResult{}, errStoreDown
	}
	return l.DwellLog.Toggle(ctx, open, at)
}

func (l *flakyDwellLog) CloseAllOpen(ctx context.Context, date string, at time.Time, status domain.DwellStatus) (int, error) {
	l.mu.Lock()
	fail := l.failClose
	l.mu.Unlock()
	if fail {
		return 0, errStoreDown
	}
	return l.DwellLog.CloseAllOpen(ctx, date, at, status)
}
