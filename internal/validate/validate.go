// Package validate converts raw request input into typed values.
//
// Every failure wraps errs.ErrInvalidInput, so transports map them uniformly.
package validate

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/and161185/calcapi/internal/errs"
)

// Limits applied to request input.
const (
	DefaultMaxNameLen = 128
	MaxExpressionLen  = 256
	MaxBodyBytes      = 1 << 20
)

// Operand parses a path operand as a finite float64.
func Operand(name, raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %s must be a number, got %q", errs.ErrInvalidInput, name, raw)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("%w: %s must be a finite number", errs.ErrInvalidInput, name)
	}
	return v, nil
}

// UserID parses a path user id as a base-10 int64.
func UserID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: user_id must be an integer, got %q", errs.ErrInvalidInput, raw)
	}
	return id, nil
}

// Name trims s and checks it is non-empty and at most maxLen runes.
// A non-positive maxLen selects DefaultMaxNameLen.
func Name(s string, maxLen int) (string, error) {
	if maxLen <= 0 {
		maxLen = DefaultMaxNameLen
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: name must not be empty", errs.ErrInvalidInput)
	}
	if !utf8.ValidString(s) {
		return "", fmt.Errorf("%w: name must be valid UTF-8", errs.ErrInvalidInput)
	}
	if n := utf8.RuneCountInString(s); n > maxLen {
		return "", fmt.Errorf("%w: name too long (%d > %d)", errs.ErrInvalidInput, n, maxLen)
	}
	return s, nil
}

// Expression checks a calculator expression before it is parsed.
func Expression(s string) (string, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: expression must not be empty", errs.ErrInvalidInput)
	}
	if len(s) > MaxExpressionLen {
		return "", fmt.Errorf("%w: expression too long (%d > %d)", errs.ErrInvalidInput, len(s), MaxExpressionLen)
	}
	return s, nil
}

// UserBody is the request payload for user create and update.
type UserBody struct {
	Name *string `json:"name"`
}

// ExpressionBody is the request payload for expression evaluation.
type ExpressionBody struct {
	Expression *string `json:"expression"`
}

// DecodeUserBody reads a JSON object with a required string "name".
// The returned name is not yet checked with Name.
func DecodeUserBody(r io.Reader) (string, error) {
	var b UserBody
	if err := decodeObject(r, &b); err != nil {
		return "", err
	}
	if b.Name == nil {
		return "", fmt.Errorf("%w: field \"name\" is required", errs.ErrInvalidInput)
	}
	return *b.Name, nil
}

// DecodeExpressionBody reads a JSON object with a required string "expression".
func DecodeExpressionBody(r io.Reader) (string, error) {
	var b ExpressionBody
	if err := decodeObject(r, &b); err != nil {
		return "", err
	}
	if b.Expression == nil {
		return "", fmt.Errorf("%w: field \"expression\" is required", errs.ErrInvalidInput)
	}
	return *b.Expression, nil
}

func decodeObject(r io.Reader, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r, MaxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		var typeErr *json.UnmarshalTypeError
		switch {
		case errors.Is(err, io.EOF):
			return fmt.Errorf("%w: request body is required", errs.ErrInvalidInput)
		case errors.As(err, &typeErr) && typeErr.Field != "":
			return fmt.Errorf("%w: field %q has the wrong type", errs.ErrInvalidInput, typeErr.Field)
		case errors.As(err, &typeErr):
			return fmt.Errorf("%w: request body must be a JSON object", errs.ErrInvalidInput)
		default:
			return fmt.Errorf("%w: malformed JSON body", errs.ErrInvalidInput)
		}
	}
	if dec.More() {
		return fmt.Errorf("%w: unexpected data after JSON body", errs.ErrInvalidInput)
	}
	return nil
}
