package store

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"calcburst/internal/calculator"
	"calcburst/internal/observability"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

var createdAt = time.Date(2025, 3, 14, 9, 26, 53, 589793000, time.UTC)

func testRecord(id string) calculator.Record {
	req := calculator.Request{Operation: calculator.OpDivide, Operands: []float64{0.1, 0.2}, ID: id}
	return calculator.NewRecord(req, 0.5, 1.2345, createdAt)
}

type failingBackend struct{ err error }

func (f failingBackend) PutIfAbsent(context.Context, calculator.Record) error { return f.err }

func TestStorePutSuccess(t *testing.T) {
	observability.Logger = zap.NewNop()
	backend := NewMemory()
	backend.now = func() time.Time { return createdAt }
	recorder := calculator.NewMemoryRecorder()

	ok := New(backend, recorder).Put(context.Background(), testRecord("calc-1"))

	assert.True(t, ok)
	assert.Equal(t, int64(0), recorder.TotalErrors())
	_, found := backend.get("calc-1")
	assert.True(t, found)
}

func TestStorePutFailureIsLoggedAndCounted(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	oldLogger := observability.Logger
	observability.Logger = zap.New(core)
	t.Cleanup(func() { observability.Logger = oldLogger })

	recorder := calculator.NewMemoryRecorder()
	ctx := observability.ContextWithRequestID(context.Background(), "req-9")

	ok := New(failingBackend{err: errors.New("table unavailable")}, recorder).Put(ctx, testRecord("calc-2"))

	assert.False(t, ok)
	assert.Equal(t, int64(1), recorder.Errors(calculator.KindPersistence))
	assert.Equal(t, int64(1), recorder.TotalErrors())

	entries := logs.FilterMessage("store calculation failed").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "calc-2", fields["calculation_id"])
	assert.Equal(t, "req-9", fields["request_id"])
	assert.Equal(t, false, fields["duplicate"])
}

func TestStorePutDuplicateIsAFailure(t *testing.T) {
	observability.Logger = zap.NewNop()
	backend := NewMemory()
	backend.now = func() time.Time { return createdAt }
	recorder := calculator.NewMemoryRecorder()
	s := New(backend, recorder)

	require.True(t, s.Put(context.Background(), testRecord("calc-3")))
	assert.False(t, s.Put(context.Background(), testRecord("calc-3")))
	assert.Equal(t, int64(1), recorder.Errors(calculator.KindPersistence))
}

func TestMemoryExpiredRecordCanBeReplaced(t *testing.T) {
	backend := NewMemory()
	now := createdAt
	backend.now = func() time.Time { return now }

	require.NoError(t, backend.PutIfAbsent(context.Background(), testRecord("calc-4")))
	assert.ErrorIs(t, backend.PutIfAbsent(context.Background(), testRecord("calc-4")), ErrAlreadyExists)

	now = createdAt.Add(calculator.RecordTTL)
	_, found := backend.get("calc-4")
	assert.False(t, found)

	req := calculator.Request{Operation: calculator.OpAdd, Operands: []float64{1, 2}, ID: "calc-4"}
	assert.NoError(t, backend.PutIfAbsent(context.Background(), calculator.NewRecord(req, 3, 1, now)))
	assert.Equal(t, 1, backend.size())
}

func TestMemorySweepsExpiredRecordsOfOtherIDs(t *testing.T) {
	backend := NewMemory()
	now := createdAt
	backend.now = func() time.Time { return now }

	for i := range 1000 {
		require.NoError(t, backend.PutIfAbsent(context.Background(), testRecord(fmt.Sprintf("calc-old-%d", i))))
	}
	require.Equal(t, 1000, backend.size())

	now = createdAt.Add(31 * 24 * time.Hour)
	req := calculator.Request{Operation: calculator.OpAdd, Operands: []float64{1, 2}, ID: "calc-fresh"}
	require.NoError(t, backend.PutIfAbsent(context.Background(), calculator.NewRecord(req, 3, 1, now)))

	assert.Equal(t, 1, backend.size())
	_, found := backend.get("calc-fresh")
	assert.True(t, found)
}

func TestMemoryDoesNotKeepAlreadyExpiredRecords(t *testing.T) {
	backend := NewMemory()
	backend.now = func() time.Time { return createdAt.Add(31 * 24 * time.Hour) }

	for i := range 1000 {
		require.NoError(t, backend.PutIfAbsent(context.Background(), testRecord(fmt.Sprintf("calc-stale-%d", i))))
	}

	assert.Equal(t, 0, backend.size())
}

func TestMemorySweepIsRateLimited(t *testing.T) {
	backend := NewMemory()
	now := createdAt
	backend.now = func() time.Time { return now }

	require.NoError(t, backend.PutIfAbsent(context.Background(), testRecord("calc-a")))

	// first sweep after expiry runs immediately
	now = createdAt.Add(calculator.RecordTTL)
	fresh := func(id string) calculator.Record {
		req := calculator.Request{Operation: calculator.OpAdd, Operands: []float64{1, 2}, ID: id}
		return calculator.NewRecord(req, 3, 1, now.Add(-calculator.RecordTTL+time.Second))
	}
	require.NoError(t, backend.PutIfAbsent(context.Background(), fresh("calc-b")))
	assert.Equal(t, 1, backend.size())

	// calc-b expires one second later, but the next sweep waits for sweepInterval
	now = now.Add(2 * time.Second)
	require.NoError(t, backend.PutIfAbsent(context.Background(), testRecord("calc-c")))
	assert.Equal(t, 1, backend.size())

	now = now.Add(sweepInterval)
	require.NoError(t, backend.PutIfAbsent(context.Background(), testRecord("calc-d")))
	assert.Equal(t, 0, backend.size())
}

func TestGeneratedIDsCollideWithinOneMillisecond(t *testing.T) {
	observability.Logger = zap.NewNop()
	backend := NewMemory()
	backend.now = func() time.Time { return createdAt }
	recorder := calculator.NewMemoryRecorder()

	h := calculator.NewHandler(New(backend, recorder), recorder,
		calculator.WithClock(func() time.Time { return createdAt }))

	first := h.Handle(context.Background(), strings.NewReader(`{"operation":"add","operands":[1,2]}`))
	second := h.Handle(context.Background(), strings.NewReader(`{"operation":"add","operands":[3,4]}`))

	// both callers get their result; only the first record is kept
	require.Equal(t, http.StatusOK, first.Status)
	require.Equal(t, http.StatusOK, second.Status)
	firstID := first.Body.(calculator.Response).CalculationID
	assert.Equal(t, firstID, second.Body.(calculator.Response).CalculationID)
	assert.Equal(t, 7.0, second.Body.(calculator.Response).Result)

	stored, found := backend.get(firstID)
	require.True(t, found)
	assert.Equal(t, "3", stored.Result.String())
	assert.Equal(t, 1, backend.size())
	assert.Equal(t, int64(1), recorder.Errors(calculator.KindPersistence))
}
