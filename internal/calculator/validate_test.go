package calculator

import (
	"errors"
	"strings"
	"testing"
)

func TestValidateAcceptsWellFormedRequest(t *testing.T) {
	req, err := Validate(strings.NewReader(`{"operation":"add","operands":[1,2.5],"id":"calc-7"}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Operation != OpAdd {
		t.Fatalf("expected operation %q, got %q", OpAdd, req.Operation)
	}
	if len(req.Operands) != 2 || req.Operands[0] != 1 || req.Operands[1] != 2.5 {
		t.Fatalf("unexpected operands %v", req.Operands)
	}
	if req.ID != "calc-7" {
		t.Fatalf("expected id %q, got %q", "calc-7", req.ID)
	}
}

func TestValidateLeavesOperandFloorToEngine(t *testing.T) {
	req, err := Validate(strings.NewReader(`{"operation":"add","operands":[1]}`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(req.Operands) != 1 {
		t.Fatalf("expected 1 operand, got %d", len(req.Operands))
	}
}

func TestValidateLeavesOperationCheckToEngine(t *testing.T) {
	if _, err := Validate(strings.NewReader(`{"operation":"sqrt","operands":[1,2]}`)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateAllowsTrailingWhitespace(t *testing.T) {
	if _, err := Validate(strings.NewReader("{\"operation\":\"add\",\"operands\":[1,2]}\n\t ")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestValidateMissingFields(t *testing.T) {
	bodies := map[string]string{
		"missing operation": `{"operands":[10,20]}`,
		"empty operation":   `{"operation":"","operands":[10,20]}`,
		"missing operands":  `{"operation":"add"}`,
		"empty operands":    `{"operation":"add","operands":[]}`,
		"null operands":     `{"operation":"add","operands":null}`,
		"null body":         `null`,
		"empty object":      `{}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			_, err := Validate(strings.NewReader(body))
			if !errors.Is(err, ErrMissingField) {
				t.Fatalf("expected %v, got %v", ErrMissingField, err)
			}
			if err.Error() != "Missing operation or operands" {
				t.Fatalf("unexpected message %q", err.Error())
			}
			if KindOf(err) != KindValidation {
				t.Fatalf("expected validation kind, got %v", KindOf(err))
			}
		})
	}
}

func TestValidateMalformedBody(t *testing.T) {
	bodies := map[string]string{
		"empty":              ``,
		"not json":           `operation=add`,
		"truncated":          `{"operation":"add","operands":[1,`,
		"array":              `[1,2]`,
		"string operand":     `{"operation":"add","operands":[1,"2"]}`,
		"numeric operation":  `{"operation":5,"operands":[1,2]}`,
		"operands not array": `{"operation":"add","operands":3}`,
		"trailing garbage":   `{"operation":"add","operands":[1,2]} {"operation":"divide"}garbage`,
		"second object":      `{"operation":"add","operands":[1,2]}{"operation":"add","operands":[3,4]}`,
		"trailing brace":     `{"operation":"add","operands":[1,2]}}`,
	}

	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			_, err := Validate(strings.NewReader(body))
			if !errors.Is(err, ErrMalformedBody) {
				t.Fatalf("expected %v, got %v", ErrMalformedBody, err)
			}
			if KindOf(err) != KindValidation {
				t.Fatalf("expected validation kind, got %v", KindOf(err))
			}
		})
	}
}
