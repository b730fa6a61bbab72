package store

import (
	"calcburst/internal/calculator"

	"github.com/shopspring/decimal"
)

// document is the serialised layout of a calculation record. Decimals
// marshal as JSON strings, keeping their exact value.
type document struct {
	CalculationID   string            `json:"calculation_id"`
	Operation       string            `json:"operation"`
	Operands        []decimal.Decimal `json:"operands"`
	Result          decimal.Decimal   `json:"result"`
	Timestamp       string            `json:"timestamp"`
	ExecutionTimeMS decimal.Decimal   `json:"execution_time_ms"`
	TTL             int64             `json:"ttl"`
}

func newDocument(rec calculator.Record) document {
	return document{
		CalculationID:   rec.CalculationID,
		Operation:       string(rec.Operation),
		Operands:        rec.Operands,
		Result:          rec.Result,
		Timestamp:       rec.FormattedTimestamp(),
		ExecutionTimeMS: rec.ExecutionTimeMS,
		TTL:             rec.TTL(),
	}
}
