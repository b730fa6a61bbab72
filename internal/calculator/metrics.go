package calculator

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// OTelRecorder records handler metrics as OTel instruments, exported by
// whatever meter provider observability.InitMetrics installed.
type OTelRecorder struct {
	requests metric.Int64Counter
	errors   metric.Int64Counter
	latency  metric.Float64Histogram
	inFlight metric.Int64UpDownCounter
}

// NewOTelRecorder registers the calculator instruments on meter.
// Call this once at startup (after observability.InitMetrics).
func NewOTelRecorder(meter metric.Meter) (*OTelRecorder, error) {
	var (
		r   OTelRecorder
		err error
	)

	r.requests, err = meter.Int64Counter("calcburst.requests.total",
		metric.WithDescription("Total calculation requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating requests counter: %w", err)
	}

	r.errors, err = meter.Int64Counter("calcburst.errors.total",
		metric.WithDescription("Total calculation errors"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating error counter: %w", err)
	}

	r.latency, err = meter.Float64Histogram("calcburst.request.latency",
		metric.WithDescription("End-to-end calculation request latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1),
	)
	if err != nil {
		return nil, fmt.Errorf("creating latency histogram: %w", err)
	}

	r.inFlight, err = meter.Int64UpDownCounter("calcburst.active_requests",
		metric.WithDescription("Currently active requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("creating in-flight counter: %w", err)
	}

	return &r, nil
}

func (r *OTelRecorder) IncRequests(ctx context.Context) {
	r.requests.Add(ctx, 1)
}

func (r *OTelRecorder) IncErrors(ctx context.Context, kind ErrorKind) {
	r.errors.Add(ctx, 1, metric.WithAttributes(attribute.String("kind", kind.String())))
}

func (r *OTelRecorder) ObserveLatency(ctx context.Context, d time.Duration) {
	r.latency.Record(ctx, d.Seconds())
}

func (r *OTelRecorder) AddInFlight(ctx context.Context, delta int64) {
	r.inFlight.Add(ctx, delta)
}
