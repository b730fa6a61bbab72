package observability

import (
	"context"

	"github.com/google/uuid"
)

type contextKey string

const RequestIDKey contextKey = "request_id"

// RequestIDHeader carries the request id in both directions.
const RequestIDHeader = "X-Request-ID"

// maxRequestIDLen bounds ids accepted from callers.
const maxRequestIDLen = 128

func NewRequestID() string {
	return uuid.New().String()
}

// RequestIDOrNew returns id if a caller-supplied id is usable, otherwise a
// fresh one.
func RequestIDOrNew(id string) string {
	if id == "" || len(id) > maxRequestIDLen {
		return NewRequestID()
	}
	return id
}

func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, RequestIDKey, id)
}

func RequestIDFromContext(ctx context.Context) string {
	id, ok := ctx.Value(RequestIDKey).(string)
	if !ok {
		return ""
	}
	return id
}
