package calculator

import (
	"context"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"calcburst/internal/handlers"
	"calcburst/internal/observability"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// tracer is the calculator's dedicated OpenTelemetry tracer.
var tracer = otel.Tracer("calculator")

// MaxBodyBytes caps the size of a request body accepted over HTTP.
const MaxBodyBytes = 1 << 20

// Persister stores a calculation record. Put reports whether the record was
// stored and must not fail the request.
type Persister interface {
	Put(ctx context.Context, rec Record) bool
}

// Outcome is a transport-independent response: a status and a JSON body.
type Outcome struct {
	Status int
	Body   any
}

// Handler validates, evaluates and persists calculation requests.
type Handler struct {
	store    Persister
	recorder Recorder
	now      func() time.Time
}

// Option configures a Handler.
type Option func(*Handler)

// WithClock replaces time.Now, mainly for tests.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) { h.now = now }
}

func NewHandler(store Persister, recorder Recorder, opts ...Option) *Handler {
	h := &Handler{
		store:    store,
		recorder: recorder,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ServeHTTP handles POST /calculate.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	out := h.Handle(r.Context(), http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	handlers.WriteJSON(w, out.Status, out.Body)
}

// Handle runs one calculation request end to end. It never panics; any
// unexpected failure becomes a 500 outcome with a generic message.
func (h *Handler) Handle(ctx context.Context, body io.Reader) (out Outcome) {
	start := h.now()
	h.recorder.IncRequests(ctx)
	release := TrackInFlight(ctx, h.recorder)
	defer release()

	ctx, span := tracer.Start(ctx, "calculator.calculate",
		trace.WithAttributes(
			attribute.String("request.id", observability.RequestIDFromContext(ctx)),
		),
	)
	defer span.End()

	defer func() {
		if p := recover(); p != nil {
			out = h.fail(ctx, span, fmt.Errorf("panic: %v", p))
			h.recorder.ObserveLatency(ctx, h.now().Sub(start))
		}
	}()

	resp, err := h.calculate(ctx, span, body, start)
	if err != nil {
		out = h.fail(ctx, span, err)
	} else {
		out = Outcome{Status: http.StatusOK, Body: resp}
	}

	h.recorder.ObserveLatency(ctx, h.now().Sub(start))
	return out
}

func (h *Handler) calculate(ctx context.Context, span trace.Span, body io.Reader, start time.Time) (Response, error) {
	logger := observability.LoggerWithTrace(ctx)

	req, err := Validate(body)
	if err != nil {
		return Response{}, err
	}

	if req.ID == "" {
		req.ID = fmt.Sprintf("calc-%d", start.UnixMilli())
	}

	span.SetAttributes(
		attribute.String("calculator.operation", string(req.Operation)),
		attribute.Float64Slice("calculator.operands", req.Operands),
		attribute.String("calculation.id", req.ID),
	)

	result, err := Evaluate(req.Operation, req.Operands)
	if err != nil {
		return Response{}, err
	}

	now := h.now()
	executionMS := float64(now.Sub(start)) / float64(time.Millisecond)

	rec := NewRecord(req, result, executionMS, now)
	persisted := h.store.Put(ctx, rec)

	span.AddEvent("computation.complete", trace.WithAttributes(
		attribute.Float64("result", result),
		attribute.Float64("duration_ms", executionMS),
	))
	span.SetAttributes(
		attribute.Float64("calculator.result", result),
		attribute.Bool("calculation.persisted", persisted),
	)
	span.SetStatus(codes.Ok, "")

	logger.Info("calculation completed",
		zap.String("calculation_id", req.ID),
		zap.String("operation", string(req.Operation)),
		zap.Float64s("operands", req.Operands),
		zap.Float64("result", result),
		zap.Bool("persisted", persisted),
		zap.String("request_id", observability.RequestIDFromContext(ctx)),
		zap.Float64("duration_ms", executionMS),
	)

	return Response{
		CalculationID:   req.ID,
		Operation:       req.Operation,
		Operands:        req.Operands,
		Result:          result,
		ExecutionTimeMS: math.Round(executionMS*100) / 100,
		Timestamp:       rec.FormattedTimestamp(),
	}, nil
}

func (h *Handler) fail(ctx context.Context, span trace.Span, err error) Outcome {
	kind := KindOf(err)
	h.recorder.IncErrors(ctx, kind)

	msg := PublicMessage(err)
	observability.RecordError(ctx, span, observability.LoggerWithTrace(ctx), kind.String()+" error", msg, err)

	return Outcome{
		Status: StatusFor(kind),
		Body:   ErrorResponse{Error: msg},
	}
}
