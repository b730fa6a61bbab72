package calculator

import (
	"time"

	"github.com/shopspring/decimal"
)

// RecordTTL is how long a persisted calculation is kept before the store may reclaim it.
const RecordTTL = 30 * 24 * time.Hour

// TimestampLayout is ISO-8601 in UTC with microsecond precision.
const TimestampLayout = "2006-01-02T15:04:05.000000Z"

// Request is a validated calculation request.
type Request struct {
	Operation Operation
	Operands  []float64
	ID        string
}

// Response is the JSON body returned for a successful calculation.
type Response struct {
	CalculationID   string    `json:"calculation_id"`
	Operation       Operation `json:"operation"`
	Operands        []float64 `json:"operands"`
	Result          float64   `json:"result"`
	ExecutionTimeMS float64   `json:"execution_time_ms"`
	Timestamp       string    `json:"timestamp"`
}

// ErrorResponse is the JSON body returned for any failure.
type ErrorResponse struct {
	Error string `json:"error"`
}

// Record is the persisted form of a successful calculation. Numeric values
// are held as exact decimals so they survive store round-trips unchanged.
type Record struct {
	CalculationID   string
	Operation       Operation
	Operands        []decimal.Decimal
	Result          decimal.Decimal
	Timestamp       time.Time
	ExecutionTimeMS decimal.Decimal
	ExpiresAt       time.Time
}

// NewRecord builds the record for a computed result created at now.
func NewRecord(req Request, result float64, executionTimeMS float64, now time.Time) Record {
	operands := make([]decimal.Decimal, len(req.Operands))
	for i, op := range req.Operands {
		operands[i] = decimal.NewFromFloat(op)
	}

	now = now.UTC()
	return Record{
		CalculationID:   req.ID,
		Operation:       req.Operation,
		Operands:        operands,
		Result:          decimal.NewFromFloat(result),
		Timestamp:       now,
		ExecutionTimeMS: decimal.NewFromFloat(executionTimeMS),
		ExpiresAt:       now.Add(RecordTTL),
	}
}

// TTL is the expiry as epoch seconds.
func (r Record) TTL() int64 {
	return r.ExpiresAt.Unix()
}

// FormattedTimestamp returns the creation time in TimestampLayout.
func (r Record) FormattedTimestamp() string {
	return r.Timestamp.UTC().Format(TimestampLayout)
}
