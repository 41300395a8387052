// Package valueobject contains domain value objects for the Finance Tracker system.
package valueobject

import "github.com/shopspring/decimal"

// PercentageScale is the number of decimal places kept for percentages and shares.
const PercentageScale = 2

var (
	hundred = decimal.NewFromInt(100)
	zero    = decimal.Zero
)

// CalculateShare returns amount * percentage / 100 rounded half-up to two decimals.
// Each share is rounded on its own, so a split is not guaranteed to add back to the amount.
func CalculateShare(amount, percentage decimal.Decimal) decimal.Decimal {
	return amount.Mul(percentage).Div(hundred).Round(PercentageScale)
}

// SumsToWhole reports whether the two-decimal sum of the percentages is exactly 100.00.
func SumsToWhole(percentages []decimal.Decimal) bool {
	return PercentageTotal(percentages).Equal(hundred)
}

// PercentageTotal sums percentages after normalizing each to two decimals.
func PercentageTotal(percentages []decimal.Decimal) decimal.Decimal {
	total := zero
	for _, p := range percentages {
		total = total.Add(p.Round(PercentageScale))
	}
	return total
}

// IsPercentageInRange reports whether p lies within [0, 100].
func IsPercentageInRange(p decimal.Decimal) bool {
	return !p.IsNegative() && p.LessThanOrEqual(hundred)
}

// HasPercentagePrecision reports whether p carries no more than two decimal places.
func HasPercentagePrecision(p decimal.Decimal) bool {
	return p.Equal(p.Truncate(PercentageScale))
}
