// Package store persists calculation records behind a best-effort adapter.
package store

import (
	"context"
	"errors"

	"calcburst/internal/calculator"
	"calcburst/internal/observability"

	"go.uber.org/zap"
)

// ErrAlreadyExists is returned by a Backend when a record with the same
// calculation id is already stored and has not expired.
var ErrAlreadyExists = errors.New("calculation already exists")

// Backend writes a record only if its id is not already present, and
// arranges for it to expire at rec.ExpiresAt.
type Backend interface {
	PutIfAbsent(ctx context.Context, rec calculator.Record) error
}

// ErrorCounter is the slice of calculator.Recorder the store needs.
type ErrorCounter interface {
	IncErrors(ctx context.Context, kind calculator.ErrorKind)
}

// Store adapts a Backend to calculator.Persister: failures are logged and
// counted, never returned.
type Store struct {
	backend Backend
	errors  ErrorCounter
}

func New(backend Backend, errors ErrorCounter) *Store {
	return &Store{backend: backend, errors: errors}
}

// Put stores rec and reports whether it succeeded.
func (s *Store) Put(ctx context.Context, rec calculator.Record) bool {
	logger := observability.LoggerWithTrace(ctx)

	if err := s.backend.PutIfAbsent(ctx, rec); err != nil {
		s.errors.IncErrors(ctx, calculator.KindPersistence)
		logger.Error("store calculation failed",
			zap.String("calculation_id", rec.CalculationID),
			zap.Bool("duplicate", errors.Is(err, ErrAlreadyExists)),
			zap.Error(err),
			zap.String("request_id", observability.RequestIDFromContext(ctx)),
		)
		return false
	}

	logger.Info("stored calculation",
		zap.String("calculation_id", rec.CalculationID),
		zap.Int64("ttl", rec.TTL()),
	)
	return true
}
