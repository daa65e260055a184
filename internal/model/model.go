// Package model defines domain entities used by services and repositories.
package model

// User is the only stored entity. ID is supplied by the caller and never changes.
type User struct {
	ID   int64
	Name string
}

// Operation names a binary calculator operation.
type Operation string

// Supported binary operations.
const (
	OpSum      Operation = "sum"
	OpSubtract Operation = "subtract"
	OpMultiply Operation = "multiply"
	OpDivide   Operation = "divide"
	OpPower    Operation = "power"
)

// Operations lists every binary operation in a stable order.
var Operations = []Operation{OpSum, OpSubtract, OpMultiply, OpDivide, OpPower}

// Valid reports whether op is a known operation.
func (op Operation) Valid() bool {
	for _, o := range Operations {
		if o == op {
			return true
		}
	}
	return false
}
