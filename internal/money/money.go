// Package money holds the rounding rules shared by every monetary computation.
package money

import "github.com/shopspring/decimal"

// Places is the number of decimals kept for every stored amount.
const Places = 2

var hundred = decimal.NewFromInt(100)

// Round rounds an amount to two decimals, half away from zero.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// Percent returns round(amount * pct / 100).
func Percent(amount, pct decimal.Decimal) decimal.Decimal {
	return Round(amount.Mul(pct).Div(hundred))
}

// NonNegative clamps negative amounts to zero.
func NonNegative(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Sum adds amounts and rounds the result.
func Sum(amounts ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, a := range amounts {
		total = total.Add(a)
	}
	return Round(total)
}

// Hundred is 100 as a decimal.
func Hundred() decimal.Decimal { return hundred }
