// Package calculator implements the arithmetic behind the calculator endpoints.
//
// Every function is pure. A result that is not a finite number is reported
// as an error, never returned as a value.
package calculator

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/Knetic/govaluate"

	"github.com/and161185/calcapi/internal/errs"
	"github.com/and161185/calcapi/internal/model"
)

// Sum returns a + b.
func Sum(a, b float64) float64 { return a + b }

// Subtract returns a - b.
func Subtract(a, b float64) float64 { return a - b }

// Multiply returns a * b.
func Multiply(a, b float64) float64 { return a * b }

// Divide returns a / b, or errs.ErrDivisionByZero when b is zero.
func Divide(a, b float64) (float64, error) {
	if b == 0 {
		return 0, errs.ErrDivisionByZero
	}
	return a / b, nil
}

// Power returns a raised to b.
func Power(a, b float64) (float64, error) {
	if a == 0 && b < 0 {
		return 0, errs.ErrDivisionByZero
	}
	return finite(math.Pow(a, b))
}

// Apply dispatches op over a and b.
func Apply(op model.Operation, a, b float64) (float64, error) {
	switch op {
	case model.OpSum:
		return finite(Sum(a, b))
	case model.OpSubtract:
		return finite(Subtract(a, b))
	case model.OpMultiply:
		return finite(Multiply(a, b))
	case model.OpDivide:
		r, err := Divide(a, b)
		if err != nil {
			return 0, err
		}
		return finite(r)
	case model.OpPower:
		return Power(a, b)
	default:
		return 0, fmt.Errorf("%w: unknown operation %q", errs.ErrInvalidInput, op)
	}
}

// Evaluate computes an arithmetic expression such as "2+3*4" or "(1-5)/2".
// Only numbers, parentheses, unary minus and + - * / % ** are accepted.
func Evaluate(expr string) (float64, error) {
	e, err := govaluate.NewEvaluableExpression(expr)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errs.ErrInvalidInput, err)
	}
	tokens := e.Tokens()
	for _, tok := range tokens {
		if !allowedToken(tok) {
			return 0, fmt.Errorf("%w: unsupported token %v", errs.ErrInvalidInput, tok.Value)
		}
	}
	if hasZeroDivisor(tokens) {
		return 0, errs.ErrDivisionByZero
	}
	v, err := e.Evaluate(nil)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", errs.ErrInvalidInput, err)
	}
	f, ok := v.(float64)
	if !ok {
		return 0, fmt.Errorf("%w: expression is not numeric", errs.ErrInvalidInput)
	}
	return finite(f)
}

var allowedModifiers = map[string]bool{"+": true, "-": true, "*": true, "/": true, "%": true, "**": true}

func allowedToken(tok govaluate.ExpressionToken) bool {
	switch tok.Kind {
	case govaluate.NUMERIC, govaluate.CLAUSE, govaluate.CLAUSE_CLOSE:
		return true
	case govaluate.MODIFIER:
		s, _ := tok.Value.(string)
		return allowedModifiers[s]
	case govaluate.PREFIX:
		return tok.Value == "-"
	default:
		return false
	}
}

// hasZeroDivisor evaluates the right operand of every / and % on its own.
// Tokens must already have passed allowedToken.
func hasZeroDivisor(tokens []govaluate.ExpressionToken) bool {
	for i, tok := range tokens {
		if tok.Kind != govaluate.MODIFIER || (tok.Value != "/" && tok.Value != "%") {
			continue
		}
		end := operandEnd(tokens, i+1)
		if end < 0 {
			continue
		}
		d, err := govaluate.NewEvaluableExpression(render(tokens[i+1 : end]))
		if err != nil {
			continue
		}
		if v, err := d.Evaluate(nil); err == nil && v == 0.0 {
			return true
		}
	}
	return false
}

// operandEnd returns the index just past the operand starting at i, or -1.
// An operand binds a trailing ** chain, which outranks / and %.
func operandEnd(tokens []govaluate.ExpressionToken, i int) int {
	if i >= len(tokens) {
		return -1
	}
	var j int
	switch tokens[i].Kind {
	case govaluate.PREFIX:
		return operandEnd(tokens, i+1)
	case govaluate.NUMERIC:
		j = i + 1
	case govaluate.CLAUSE:
		depth := 0
		for j = i; j < len(tokens); j++ {
			switch tokens[j].Kind {
			case govaluate.CLAUSE:
				depth++
			case govaluate.CLAUSE_CLOSE:
				depth--
			}
			if depth == 0 {
				break
			}
		}
		if j == len(tokens) {
			return -1
		}
		j++
	default:
		return -1
	}
	for j < len(tokens) && tokens[j].Kind == govaluate.MODIFIER && tokens[j].Value == "**" {
		if j = operandEnd(tokens, j+1); j < 0 {
			return -1
		}
	}
	return j
}

func render(tokens []govaluate.ExpressionToken) string {
	parts := make([]string, 0, len(tokens))
	for _, tok := range tokens {
		switch tok.Kind {
		case govaluate.NUMERIC:
			parts = append(parts, strconv.FormatFloat(tok.Value.(float64), 'f', -1, 64))
		case govaluate.CLAUSE:
			parts = append(parts, "(")
		case govaluate.CLAUSE_CLOSE:
			parts = append(parts, ")")
		default:
			parts = append(parts, fmt.Sprint(tok.Value))
		}
	}
	return strings.Join(parts, " ")
}

func finite(v float64) (float64, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: result is not a finite number", errs.ErrInvalidInput)
	}
	return v, nil
}
