package service

import (
	"context"
	"errors"
	"testing"

	"github.com/and161185/calcapi/internal/errs"
	"github.com/and161185/calcapi/internal/model"
)

func TestCalcService_Calculate(t *testing.T) {
	t.Parallel()
	s := NewCalcService()
	ctx := context.Background()

	cases := []struct {
		op   model.Operation
		a, b float64
		want float64
	}{
		{model.OpSum, 5, 3, 8},
		{model.OpSubtract, 10, 4, 6},
		{model.OpSubtract, 4, 10, -6},
		{model.OpDivide, 10, 2, 5},
		{model.OpDivide, 5, 2, 2.5},
		{model.OpMultiply, 2.5, 2.5, 6.25},
		{model.OpPower, 2, 3, 8},
	}
	for _, c := range cases {
		got, err := s.Calculate(ctx, c.op, c.a, c.b)
		if err != nil {
			t.Fatalf("%s(%v,%v): %v", c.op, c.a, c.b, err)
		}
		if got != c.want {
			t.Fatalf("%s(%v,%v) = %v, want %v", c.op, c.a, c.b, got, c.want)
		}
	}

	if _, err := s.Calculate(ctx, model.OpDivide, 10, 0); !errors.Is(err, errs.ErrDivisionByZero) {
		t.Fatalf("want ErrDivisionByZero, got %v", err)
	}
	if _, err := s.Calculate(ctx, "modulo", 1, 1); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput on unknown op, got %v", err)
	}

	canceled, cancel := context.WithCancel(ctx)
	cancel()
	if _, err := s.Calculate(canceled, model.OpSum, 1, 1); !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
}

func TestCalcService_Evaluate(t *testing.T) {
	t.Parallel()
	s := NewCalcService()
	ctx := context.Background()

	got, err := s.Evaluate(ctx, " 2+2*2 ")
	if err != nil || got != 6 {
		t.Fatalf("Evaluate: %v %v", got, err)
	}
	if _, err := s.Evaluate(ctx, ""); !errors.Is(err, errs.ErrInvalidInput) {
		t.Fatalf("want ErrInvalidInput on empty expression, got %v", err)
	}
	if _, err := s.Evaluate(ctx, "1/0"); !errors.Is(err, errs.ErrDivisionByZero) {
		t.Fatalf("want ErrDivisionByZero, got %v", err)
	}
}
