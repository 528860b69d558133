// Package money represents currency amounts as integer paise (minor units).
//
// All arithmetic in the ledger, the settlement planner and the executor
// happens on Paise values, so there is no floating-point drift between bill
// creation and settlement. Conversion to and from display rupees happens
// only at the API boundary, using decimal rounding (half away from zero,
// two places).
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Paise is a currency amount in minor units (1 rupee = 100 paise).
// Signed: negative values represent debts in net-position math.
type Paise int64

var hundred = decimal.NewFromInt(100)

// FromRupees converts a display amount to paise, rounding to two decimal
// places half away from zero.
func FromRupees(rupees float64) Paise {
	return FromDecimal(decimal.NewFromFloat(rupees))
}

// FromDecimal converts a decimal rupee amount to paise, rounding to two
// decimal places half away from zero.
func FromDecimal(d decimal.Decimal) Paise {
	return Paise(d.Round(2).Mul(hundred).IntPart())
}

// Decimal returns the amount as decimal rupees.
func (p Paise) Decimal() decimal.Decimal {
	return decimal.NewFromInt(int64(p)).Div(hundred)
}

// Rupees returns the amount as a float for JSON responses.
// Exact: paise values always fit a float64 mantissa in practice.
func (p Paise) Rupees() float64 {
	f, _ := p.Decimal().Float64()
	return f
}

// Abs returns the absolute value.
func (p Paise) Abs() Paise {
	if p < 0 {
		return -p
	}
	return p
}

// String formats the amount as rupees with two decimal places.
func (p Paise) String() string {
	return p.Decimal().StringFixed(2)
}

// RoundToRupee rounds the amount to the nearest whole rupee, half away
// from zero.
func (p Paise) RoundToRupee() Paise {
	return Paise(p.Decimal().Round(0).IntPart() * 100)
}

// SplitEqually divides total across n heads, rounding each share to two
// decimal places. The rounding remainder (total - n*share) is returned
// separately so the caller can assign it; it may be negative.
func SplitEqually(total Paise, n int) (share, remainder Paise, err error) {
	if n <= 0 {
		return 0, 0, fmt.Errorf("cannot split across %d members", n)
	}
	share = FromDecimal(total.Decimal().Div(decimal.NewFromInt(int64(n))))
	remainder = total - share*Paise(n)
	return share, remainder, nil
}
