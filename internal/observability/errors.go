package observability

import (
	"context"

	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// RecordError centralises failure reporting: records the error on the span
// with the caller-facing status message and logs the full cause with trace
// context. Writing the response is left to the caller.
func RecordError(ctx context.Context, span trace.Span, logger *zap.Logger, logMsg, statusMsg string, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, statusMsg)

	logger.Error(logMsg,
		zap.String("status_message", statusMsg),
		zap.Error(err),
		zap.String("request_id", RequestIDFromContext(ctx)),
	)
}
