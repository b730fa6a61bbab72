package calculator

import (
	"encoding/json"
	"errors"
	"io"
)

type rawRequest struct {
	Operation string    `json:"operation"`
	Operands  []float64 `json:"operands"`
	ID        string    `json:"id"`
}

// Validate decodes a JSON request body and checks that the required fields
// are present. It does not enforce the operand count floor; Evaluate does.
func Validate(body io.Reader) (Request, error) {
	var raw rawRequest
	dec := json.NewDecoder(body)
	if err := dec.Decode(&raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) && typeErr.Field != "" {
			return Request{}, withMessage(ErrMalformedBody, "Invalid value for field "+typeErr.Field)
		}
		return Request{}, ErrMalformedBody
	}
	// the body must hold exactly one JSON value
	if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return Request{}, ErrMalformedBody
	}

	if raw.Operation == "" || len(raw.Operands) == 0 {
		return Request{}, ErrMissingField
	}

	return Request{
		Operation: Operation(raw.Operation),
		Operands:  raw.Operands,
		ID:        raw.ID,
	}, nil
}
