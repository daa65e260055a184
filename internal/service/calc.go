// Package service contains application services for calculations and users.
package service

import (
	"context"
	"fmt"

	"github.com/and161185/calcapi/internal/calculator"
	"github.com/and161185/calcapi/internal/errs"
	"github.com/and161185/calcapi/internal/model"
	"github.com/and161185/calcapi/internal/validate"
)

// CalcService defines arithmetic operations exposed by the API.
type CalcService interface {
	// Calculate applies a binary operation to two operands.
	Calculate(ctx context.Context, op model.Operation, a, b float64) (float64, error)
	// Evaluate computes an arithmetic expression.
	Evaluate(ctx context.Context, expr string) (float64, error)
}

type CalcServiceImpl struct{}

// NewCalcService constructs CalcService.
func NewCalcService() *CalcServiceImpl { return &CalcServiceImpl{} }

// Calculate validates op and dispatches to the calculator.
func (s *CalcServiceImpl) Calculate(ctx context.Context, op model.Operation, a, b float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if !op.Valid() {
		return 0, fmt.Errorf("%w: unknown operation %q", errs.ErrInvalidInput, op)
	}
	return calculator.Apply(op, a, b)
}

// Evaluate checks expression limits, then evaluates it.
func (s *CalcServiceImpl) Evaluate(ctx context.Context, expr string) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	expr, err := validate.Expression(expr)
	if err != nil {
		return 0, err
	}
	return calculator.Evaluate(expr)
}
