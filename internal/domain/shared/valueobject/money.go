package valueobject

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Currency represents a currency code (ISO 4217)
type Currency string

const (
	BRL Currency = "BRL" // Brazilian Real (default)
	USD Currency = "USD" // US Dollar
	EUR Currency = "EUR" // Euro
)

// DefaultCurrency is the default currency for the system
const DefaultCurrency = BRL

// RoundingEpsilon is the residue below which a balance counts as settled.
// Cascading allocations can leave sub-cent residues after rounding.
var RoundingEpsilon = decimal.NewFromFloat(0.01)

// Money is an immutable value object for monetary amounts.
// All arithmetic is exact decimal; binary floating point never enters the
// money path because cascades compound rounding error across many titles.
type Money struct {
	amount   decimal.Decimal
	currency Currency
}

// NewMoney creates a new Money with the specified amount and currency
func NewMoney(amount decimal.Decimal, currency Currency) (Money, error) {
	if currency == "" {
		return Money{}, errors.New("currency cannot be empty")
	}
	return Money{amount: amount, currency: currency}, nil
}

// NewMoneyBRL creates Money in the default currency
func NewMoneyBRL(amount decimal.Decimal) Money {
	return Money{amount: amount, currency: BRL}
}

// NewMoneyBRLFromString creates Money in BRL from a string representation
func NewMoneyBRLFromString(amount string) (Money, error) {
	d, err := decimal.NewFromString(amount)
	if err != nil {
		return Money{}, fmt.Errorf("invalid amount string: %w", err)
	}
	return Money{amount: d, currency: BRL}, nil
}

// ZeroBRL returns a zero-value Money in BRL
func ZeroBRL() Money {
	return Money{amount: decimal.Zero, currency: BRL}
}

// Amount returns the decimal amount
func (m Money) Amount() decimal.Decimal { return m.amount }

// Currency returns the currency code
func (m Money) Currency() Currency { return m.currency }

// IsZero returns true if the amount is zero
func (m Money) IsZero() bool { return m.amount.IsZero() }

// IsPositive returns true if the amount is strictly positive
func (m Money) IsPositive() bool { return m.amount.IsPositive() }

// IsNegative returns true if the amount is strictly negative
func (m Money) IsNegative() bool { return m.amount.IsNegative() }

// IsSettled returns true if the amount is within the rounding epsilon of zero
func (m Money) IsSettled() bool {
	return m.amount.Abs().LessThanOrEqual(RoundingEpsilon)
}

// Add returns the sum of both amounts; errors if currencies differ
func (m Money) Add(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.currency, other.currency)
	}
	return Money{amount: m.amount.Add(other.amount), currency: m.currency}, nil
}

// Sub returns the difference of both amounts; errors if currencies differ
func (m Money) Sub(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.currency, other.currency)
	}
	return Money{amount: m.amount.Sub(other.amount), currency: m.currency}, nil
}

// Min returns the smaller of the two amounts; errors if currencies differ
func (m Money) Min(other Money) (Money, error) {
	if m.currency != other.currency {
		return Money{}, fmt.Errorf("currency mismatch: %s vs %s", m.currency, other.currency)
	}
	if m.amount.LessThanOrEqual(other.amount) {
		return m, nil
	}
	return other, nil
}

// LessThan reports whether m is strictly smaller than other, ignoring currency
func (m Money) LessThan(other Money) bool {
	return m.amount.LessThan(other.amount)
}

// GreaterThan reports whether m is strictly greater than other, ignoring currency
func (m Money) GreaterThan(other Money) bool {
	return m.amount.GreaterThan(other.amount)
}

// Round rounds to two decimal places (currency precision)
func (m Money) Round() Money {
	return Money{amount: m.amount.Round(2), currency: m.currency}
}

// String formats the amount with its currency code
func (m Money) String() string {
	return fmt.Sprintf("%s %s", m.amount.StringFixed(2), m.currency)
}
