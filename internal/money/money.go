package money

import (
	"errors"
	"fmt"
	"math"
)

var (
	// ErrInvalidAmount occurs when a request carries a zero or negative amount.
	ErrInvalidAmount = errors.New("amount must be positive")

	// ErrInsufficientFunds occurs when a subtraction would take a balance below zero.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrOverflow occurs when an addition would exceed the representable range.
	ErrOverflow = errors.New("amount overflow")
)

// Money is a non-negative amount of the ledger's base currency in minor units.
type Money int64

// NewAmount validates a caller-supplied operation amount. Zero and negative
// values are rejected before any wallet row is touched.
func NewAmount(v int64) (Money, error) {
	if v <= 0 {
		return 0, ErrInvalidAmount
	}
	return Money(v), nil
}

// Add returns m+n or ErrOverflow if the sum does not fit in an int64.
func (m Money) Add(n Money) (Money, error) {
	if n > math.MaxInt64-m {
		return 0, ErrOverflow
	}
	return m + n, nil
}

// Sub returns m-n or ErrInsufficientFunds if n exceeds m. Balances never go
// negative.
func (m Money) Sub(n Money) (Money, error) {
	if n > m {
		return 0, ErrInsufficientFunds
	}
	return m - n, nil
}

// Int64 exposes the raw minor-unit value for persistence and responses.
func (m Money) Int64() int64 {
	return int64(m)
}

func (m Money) String() string {
	return fmt.Sprintf("%d", int64(m))
}
