package calculator

import (
	"errors"
	"net/http"
)

// ErrorKind classifies a failure for status mapping and the error counter.
type ErrorKind int

const (
	KindUnclassified ErrorKind = iota
	KindValidation
	KindEvaluation
	KindPersistence
)

func (k ErrorKind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindEvaluation:
		return "evaluation"
	case KindPersistence:
		return "persistence"
	default:
		return "unclassified"
	}
}

// Reason identifies a specific failure within a kind.
type Reason string

const (
	ReasonMissingField         Reason = "missing_field"
	ReasonMalformedBody        Reason = "malformed_body"
	ReasonInvalidOperandCount  Reason = "invalid_operand_count"
	ReasonUnsupportedOperation Reason = "unsupported_operation"
	ReasonDivisionByZero       Reason = "division_by_zero"
	ReasonNonFiniteResult      Reason = "non_finite_result"
)

// Error is a classified calculator failure. Message is safe to return to the caller.
type Error struct {
	Kind    ErrorKind
	Reason  Reason
	Message string
}

func (e *Error) Error() string { return e.Message }

// Is matches on Reason so that sentinels compare equal to errors carrying
// a more specific message.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Reason == e.Reason
}

var (
	ErrMissingField         = &Error{Kind: KindValidation, Reason: ReasonMissingField, Message: "Missing operation or operands"}
	ErrMalformedBody        = &Error{Kind: KindValidation, Reason: ReasonMalformedBody, Message: "Invalid request body"}
	ErrInvalidOperandCount  = &Error{Kind: KindEvaluation, Reason: ReasonInvalidOperandCount, Message: "At least two operands required"}
	ErrUnsupportedOperation = &Error{Kind: KindEvaluation, Reason: ReasonUnsupportedOperation, Message: "Unsupported operation"}
	ErrDivisionByZero       = &Error{Kind: KindEvaluation, Reason: ReasonDivisionByZero, Message: "Division by zero"}
	ErrNonFiniteResult      = &Error{Kind: KindEvaluation, Reason: ReasonNonFiniteResult, Message: "Result is not a finite number"}
)

func withMessage(base *Error, msg string) *Error {
	return &Error{Kind: base.Kind, Reason: base.Reason, Message: msg}
}

// KindOf returns the kind of err, or KindUnclassified for anything that is
// not a calculator error.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnclassified
}

// StatusFor maps an error kind to the HTTP status returned to the caller.
func StatusFor(kind ErrorKind) int {
	switch kind {
	case KindValidation, KindEvaluation:
		return http.StatusBadRequest
	case KindPersistence:
		// persistence failures are absorbed before a response is built
		return http.StatusOK
	default:
		return http.StatusInternalServerError
	}
}

const internalErrorMessage = "Internal server error"

// PublicMessage is the message shown to the caller for err. Unclassified
// errors never leak their detail.
func PublicMessage(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Kind != KindUnclassified {
		return e.Message
	}
	return internalErrorMessage
}
