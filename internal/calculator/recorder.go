package calculator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
)

// Recorder receives the handler's operational metrics. Implementations must
// be safe for concurrent use.
type Recorder interface {
	IncRequests(ctx context.Context)
	IncErrors(ctx context.Context, kind ErrorKind)
	ObserveLatency(ctx context.Context, d time.Duration)
	AddInFlight(ctx context.Context, delta int64)
}

// TrackInFlight marks a request as in flight and returns the func that ends
// it. The release func is safe to call more than once; only the first call
// has an effect.
func TrackInFlight(ctx context.Context, r Recorder) (release func()) {
	r.AddInFlight(ctx, 1)

	var once sync.Once
	return func() {
		once.Do(func() { r.AddInFlight(ctx, -1) })
	}
}

// MultiRecorder fans every observation out to all of its recorders.
type MultiRecorder []Recorder

func (m MultiRecorder) IncRequests(ctx context.Context) {
	for _, r := range m {
		r.IncRequests(ctx)
	}
}

func (m MultiRecorder) IncErrors(ctx context.Context, kind ErrorKind) {
	for _, r := range m {
		r.IncErrors(ctx, kind)
	}
}

func (m MultiRecorder) ObserveLatency(ctx context.Context, d time.Duration) {
	for _, r := range m {
		r.ObserveLatency(ctx, d)
	}
}

func (m MultiRecorder) AddInFlight(ctx context.Context, delta int64) {
	for _, r := range m {
		r.AddInFlight(ctx, delta)
	}
}

// MemoryRecorder keeps metrics in process memory. It is used in tests and
// when no metrics backend is configured.
type MemoryRecorder struct {
	requests atomic.Int64
	inFlight atomic.Int64

	mu        sync.Mutex
	errors    map[ErrorKind]int64
	latencies []time.Duration
}

func NewMemoryRecorder() *MemoryRecorder {
	return &MemoryRecorder{errors: make(map[ErrorKind]int64)}
}

func (m *MemoryRecorder) IncRequests(context.Context) { m.requests.Add(1) }

func (m *MemoryRecorder) IncErrors(_ context.Context, kind ErrorKind) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}

func (m *MemoryRecorder) ObserveLatency(_ context.Context, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.latencies = append(m.latencies, d)
}

func (m *MemoryRecorder) AddInFlight(_ context.Context, delta int64) { m.inFlight.Add(delta) }

func (m *MemoryRecorder) Requests() int64 { return m.requests.Load() }

func (m *MemoryRecorder) InFlight() int64 { return m.inFlight.Load() }

// Errors returns the error count for kind.
func (m *MemoryRecorder) Errors(kind ErrorKind) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[kind]
}

// TotalErrors returns the error count across all kinds.
func (m *MemoryRecorder) TotalErrors() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	var total int64
	for _, n := range m.errors {
		total += n
	}
	return total
}

// Latencies returns a copy of every observed latency.
func (m *MemoryRecorder) Latencies() []time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]time.Duration(nil), m.latencies...)
}
