package models

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Money is a two-place decimal amount. It is stored as DECIMAL(10,2) and
// rendered in JSON as a fixed two-place string, e.g. "230.00".
type Money struct {
	decimal.Decimal
}

// NewMoney builds a Money value from a decimal string such as "100.00".
func NewMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	return Money{d.Round(2)}, nil
}

// MustMoney is NewMoney for constants and tests.
func MustMoney(s string) Money {
	m, err := NewMoney(s)
	if err != nil {
		panic(err)
	}
	return m
}

func MoneyFromDecimal(d decimal.Decimal) Money {
	return Money{d.Round(2)}
}

func (m Money) Add(o Money) Money {
	return Money{m.Decimal.Add(o.Decimal)}
}

// Times multiplies by a whole quantity.
func (m Money) Times(qty int) Money {
	return Money{m.Decimal.Mul(decimal.NewFromInt(int64(qty))).Round(2)}
}

// Percent returns rate percent of m, rounded half away from zero to cents.
func (m Money) Percent(rate decimal.Decimal) Money {
	return Money{m.Decimal.Mul(rate).Div(decimal.NewFromInt(100)).Round(2)}
}

func (m Money) String() string {
	return m.StringFixed(2)
}

func (m Money) MarshalJSON() ([]byte, error) {
	return []byte(`"` + m.StringFixed(2) + `"`), nil
}
