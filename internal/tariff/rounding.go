package tariff

import "github.com/shopspring/decimal"

// RoundingPolicy selects the tie-breaking rule when rounding a base tax to
// the nearest 100 francs. The official documentation states the 100-franc
// granularity but not the tie-break; half-up is the default.
type RoundingPolicy string

const (
	RoundHalfUp   RoundingPolicy = "half_up"
	RoundHalfEven RoundingPolicy = "half_even"
)

var hundred = decimal.NewFromInt(100)

// RoundTo100 rounds an amount to the nearest multiple of 100 under the given
// policy. Unknown policies fall back to half-up.
func RoundTo100(amount decimal.Decimal, policy RoundingPolicy) decimal.Decimal {
	scaled := amount.Div(hundred)
	if policy == RoundHalfEven {
		return scaled.RoundBank(0).Mul(hundred)
	}
	return scaled.Round(0).Mul(hundred)
}
