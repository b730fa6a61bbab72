// Package bridge republishes platform metrics from CloudWatch to a
// Prometheus Pushgateway.
package bridge

import (
	"context"
	"time"
)

// Series keys in a Snapshot.
const (
	SeriesInvocations = "invocations"
	SeriesErrors      = "errors"
	SeriesDuration    = "duration"
	SeriesAPIRequests = "api_requests"
)

// Snapshot maps a series key to its latest value in the window. A missing
// key means no datapoint was available, not zero.
type Snapshot map[string]float64

// Source reads the current Snapshot over a trailing window. A Source may
// return a partial Snapshot together with an error.
type Source interface {
	Snapshot(ctx context.Context, window time.Duration) (Snapshot, error)
}
