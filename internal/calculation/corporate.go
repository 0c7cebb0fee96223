package calculation

import (
	"github.com/lodi-go/lodi/internal/domain"
	"github.com/shopspring/decimal"
)

// TotalCorporateRate composes the confederation profit tax rate with the
// canton's base rate scaled by the canton and commune profit multipliers.
func TotalCorporateRate(rules *domain.RuleSet, jur *domain.Jurisdiction) decimal.Decimal {
	federal := rules.FederalCorporateRate
	if federal.IsZero() {
		federal = domain.DefaultFederalCorporateRate
	}
	local := jur.CorporateBaseRate.Mul(jur.CorpCantonMultiplier.Add(jur.CorpCommuneMultiplier))
	return federal.Add(local)
}

// CorporateTax is the profit tax on the given taxable profit, never negative.
func CorporateTax(profit decimal.Decimal, rules *domain.RuleSet, jur *domain.Jurisdiction) decimal.Decimal {
	if profit.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	return profit.Mul(TotalCorporateRate(rules, jur))
}
