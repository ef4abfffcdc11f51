// README: Common money value object used across modules.
package types

import (
	"errors"
	"fmt"
	"math"
)

// DefaultCurrency is used when a stored amount carries no currency.
const DefaultCurrency = "EUR"

// MaxMajor bounds amounts accepted from callers so minor units stay well
// inside int64.
const MaxMajor = 1e9

var ErrAmountOutOfRange = errors.New("amount out of range")

// Money holds an amount in minor units (cents).
type Money struct {
	Amount   int64
	Currency string
}

// FromMajor converts a decimal amount such as 80.00 into minor units.
func FromMajor(v float64, currency string) Money {
	if currency == "" {
		currency = DefaultCurrency
	}
	return Money{Amount: int64(math.Round(v * 100)), Currency: currency}
}

// ParseMajor is FromMajor for untrusted input. NaN, infinities and amounts
// beyond MaxMajor in either direction are rejected.
func ParseMajor(v float64, currency string) (Money, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) > MaxMajor {
		return Money{}, fmt.Errorf("%w: %v", ErrAmountOutOfRange, v)
	}
	return FromMajor(v, currency), nil
}

func (m Money) Major() float64 {
	return float64(m.Amount) / 100
}

func (m Money) IsZero() bool {
	return m.Amount == 0
}

// String renders the amount with two decimals, e.g. "120.00".
func (m Money) String() string {
	sign := ""
	a := m.Amount
	if a < 0 {
		sign = "-"
		a = -a
	}
	return fmt.Sprintf("%s%d.%02d", sign, a/100, a%100)
}
