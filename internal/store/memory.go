package store

import (
	"context"
	"sync"
	"time"

	"calcburst/internal/calculator"
)

// sweepInterval is the minimum time between full scans for expired records.
const sweepInterval = time.Minute

// Memory is an in-process Backend. Expired records are swept out by later
// writes, at most once per sweepInterval.
type Memory struct {
	mu         sync.Mutex
	records    map[string]calculator.Record
	now        func() time.Time
	lastSweep  time.Time
	nextExpiry time.Time
}

func NewMemory() *Memory {
	return &Memory{
		records: make(map[string]calculator.Record),
		now:     time.Now,
	}
}

func (m *Memory) PutIfAbsent(_ context.Context, rec calculator.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	m.maybeSweep(now)

	if existing, ok := m.records[rec.CalculationID]; ok && now.Before(existing.ExpiresAt) {
		return ErrAlreadyExists
	}

	// already past its ttl: accepted, and reclaimed on the spot
	if !now.Before(rec.ExpiresAt) {
		delete(m.records, rec.CalculationID)
		return nil
	}

	m.records[rec.CalculationID] = rec
	if m.nextExpiry.IsZero() || rec.ExpiresAt.Before(m.nextExpiry) {
		m.nextExpiry = rec.ExpiresAt
	}
	return nil
}

// maybeSweep drops every expired record once the earliest expiry has passed
// and the last sweep is at least sweepInterval old. m.mu must be held.
func (m *Memory) maybeSweep(now time.Time) {
	if m.nextExpiry.IsZero() || now.Before(m.nextExpiry) {
		return
	}
	if !m.lastSweep.IsZero() && now.Sub(m.lastSweep) < sweepInterval {
		return
	}

	m.lastSweep = now
	m.nextExpiry = time.Time{}
	for id, rec := range m.records {
		if !now.Before(rec.ExpiresAt) {
			delete(m.records, id)
			continue
		}
		if m.nextExpiry.IsZero() || rec.ExpiresAt.Before(m.nextExpiry) {
			m.nextExpiry = rec.ExpiresAt
		}
	}
}

// get returns the unexpired record stored under id.
func (m *Memory) get(id string) (calculator.Record, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.records[id]
	if !ok || !m.now().Before(rec.ExpiresAt) {
		return calculator.Record{}, false
	}
	return rec, true
}

// size returns the number of records held, expired or not.
func (m *Memory) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.records)
}
