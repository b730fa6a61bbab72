package observability

import (
	"context"
	"errors"
	"sync"
)

// flusher is implemented by the SDK tracer, meter and logger providers.
type flusher interface {
	ForceFlush(ctx context.Context) error
}

var (
	flushMu  sync.Mutex
	flushers []flusher
)

func registerFlusher(f flusher) {
	flushMu.Lock()
	defer flushMu.Unlock()
	flushers = append(flushers, f)
}

// ForceFlush exports everything the installed providers have buffered.
// The Lambda adapter calls it before each invocation returns.
func ForceFlush(ctx context.Context) error {
	flushMu.Lock()
	fs := append([]flusher(nil), flushers...)
	flushMu.Unlock()

	var errs []error
	for _, f := range fs {
		if err := f.ForceFlush(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
