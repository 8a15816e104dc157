package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"
	"time"

	"hub-ops-service/internal/domain"
	"hub-ops-service/internal/ports"
)

// DwellLog is an in-memory dwell log. A single mutex makes Toggle and
// CloseAllOpen atomic.
type DwellLog struct {
	mu      sync.Mutex
	records []domain.DwellRecord
}

func NewDwellLog() *DwellLog {
	return &DwellLog{}
}

var _ ports.DwellLog = (*DwellLog)(nil)

func (l *DwellLog) Insert(ctx context.Context, rec domain.DwellRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.insertLocked(rec)
}

func (l *DwellLog) insertLocked(rec domain.DwellRecord) error {
	if rec.Open() {
		if _, ok := l.openIndexLocked(rec.DriverID, rec.Date); ok {
			return fmt.Errorf("insert dwell record driver_id=%s date=%s: %w", rec.DriverID, rec.Date, ports.ErrOpenRecordExists)
		}
	}
	l.records = append(l.records, cloneRecord(rec))
	return nil
}

func (l *DwellLog) Update(ctx context.Context, rec domain.DwellRecord) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.records {
		if l.records[i].ID == rec.ID {
			l.records[i] = cloneRecord(rec)
			return nil
		}
	}
	return fmt.Errorf("update dwell record id=%s: %w", rec.ID, ports.ErrNotFound)
}

func (l *DwellLog) ListByDate(ctx context.Context, date string) ([]domain.DwellRecord, error) {
	return l.list(date, false), nil
}

func (l *DwellLog) ListOpenByDate(ctx context.Context, date string) ([]domain.DwellRecord, error) {
	return l.list(date, true), nil
}

func (l *DwellLog) FindOpen(ctx context.Context, driverID, date string) (domain.DwellRecord, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	i, ok := l.openIndexLocked(driverID, date)
	if !ok {
		return domain.DwellRecord{}, ports.ErrNotFound
	}
	return cloneRecord(l.records[i]), nil
}

func (l *DwellLog) Toggle(ctx context.Context, open domain.DwellRecord, at time.Time) (ports.ToggleResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if i, ok := l.openIndexLocked(open.DriverID, open.Date); ok {
		if err := l.records[i].Close(at, domain.DwellStatusClosed); err != nil {
			return ports.ToggleResult{}, fmt.Errorf("toggle dwell record: %w", err)
		}
		return ports.ToggleResult{Transition: domain.TransitionOut, Record: cloneRecord(l.records[i])}, nil
	}

	if err := l.insertLocked(open); err != nil {
		return ports.ToggleResult{}, fmt.Errorf("toggle dwell record: %w", err)
	}
	return ports.ToggleResult{Transition: domain.TransitionIn, Record: cloneRecord(open)}, nil
}

func (l *DwellLog) CloseAllOpen(ctx context.Context, date string, at time.Time, status domain.DwellStatus) (int, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	closed := 0
	for i := range l.records {
		r := &l.records[i]
		if r.Date != date || !r.Open() {
			continue
		}
		if err := r.Close(at, status); err != nil {
			return closed, fmt.Errorf("close all open: %w", err)
		}
		closed++
	}
	return closed, nil
}

func (l *DwellLog) openIndexLocked(driverID, date string) (int, bool) {
	for i := range l.records {
		r := &l.records[i]
		if r.DriverID == driverID && r.Date == date && r.Open() {
			return i, true
		}
	}
	return 0, false
}

func (l *DwellLog) list(date string, openOnly bool) []domain.DwellRecord {
	l.mu.Lock()
	defer l.mu.Unlock()

	out := make([]domain.DwellRecord, 0)
	for _, r := range l.records {
		if r.Date != date || (openOnly && !r.Open()) {
			continue
		}
		out = append(out, cloneRecord(r))
	}

	slices.SortStableFunc(out, func(a, b domain.DwellRecord) int {
		return cmp.Compare(b.Entrada.UnixNano(), a.Entrada.UnixNano())
	})
	return out
}

// cloneRecord detaches Saida so callers cannot mutate stored state.
func cloneRecord(r domain.DwellRecord) domain.DwellRecord {
	if r.Saida != nil {
		s := *r.Saida
		r.Saida = &s
	}
	return r
}
