package calculator

import (
	"math"
)

// Operation is one of the supported calculator operations.
type Operation string

const (
	OpAdd      Operation = "add"
	OpSubtract Operation = "subtract"
	OpMultiply Operation = "multiply"
	OpDivide   Operation = "divide"
	OpPower    Operation = "power"
	OpModulo   Operation = "modulo"
)

// Operations lists every supported operation.
var Operations = []Operation{OpAdd, OpSubtract, OpMultiply, OpDivide, OpPower, OpModulo}

// Evaluate applies op to operands. add, subtract, multiply and divide fold
// left over all operands; power and modulo only look at the first two.
// operands is never modified.
func Evaluate(op Operation, operands []float64) (float64, error) {
	if len(operands) < 2 {
		return 0, ErrInvalidOperandCount
	}

	var (
		result float64
		err    error
	)

	switch op {
	case OpAdd:
		result, err = fold(operands, func(acc, x float64) (float64, error) { return acc + x, nil })
	case OpSubtract:
		result, err = fold(operands, func(acc, x float64) (float64, error) { return acc - x, nil })
	case OpMultiply:
		result, err = fold(operands, func(acc, x float64) (float64, error) { return acc * x, nil })
	case OpDivide:
		result, err = fold(operands, func(acc, x float64) (float64, error) {
			if x == 0 {
				return 0, ErrDivisionByZero
			}
			return acc / x, nil
		})
	case OpPower:
		result = math.Pow(operands[0], operands[1])
	case OpModulo:
		result, err = floorMod(operands[0], operands[1])
	default:
		return 0, withMessage(ErrUnsupportedOperation, "Unsupported operation: "+string(op))
	}
	if err != nil {
		return 0, err
	}

	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0, ErrNonFiniteResult
	}
	return result, nil
}

func fold(operands []float64, step func(acc, x float64) (float64, error)) (float64, error) {
	acc := operands[0]
	for _, x := range operands[1:] {
		var err error
		if acc, err = step(acc, x); err != nil {
			return 0, err
		}
	}
	return acc, nil
}

// floorMod returns a mod b with the sign of b, so -7 mod 3 is 2.
func floorMod(a, b float64) (float64, error) {
	if b == 0 {
		return 0, withMessage(ErrDivisionByZero, "Modulo by zero")
	}
	r := math.Mod(a, b)
	if r != 0 && (r < 0) != (b < 0) {
		r += b
	}
	return r, nil
}
