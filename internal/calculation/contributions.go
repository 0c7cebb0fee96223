package calculation

import (
	"github.com/lodi-go/lodi/internal/domain"
	"github.com/shopspring/decimal"
)

// ContributionCalculator derives employee-side deductions and employer-side
// cost from a gross salary under the loaded social insurance rates.
type ContributionCalculator struct {
	Social domain.SocialRates
}

// NewContributionCalculator creates a calculator over the rule set's rates.
func NewContributionCalculator(social domain.SocialRates) *ContributionCalculator {
	return &ContributionCalculator{Social: social}
}

// EmployeeDeductions computes the contributions subtracted from gross salary
// before income taxation. Each capped contribution caps the wage base it is
// computed on, not the contribution amount; AHV is uncapped. A pension
// buy-in is deductible up to the gross salary.
func (cc *ContributionCalculator) EmployeeDeductions(gross, buyIn decimal.Decimal, age int) domain.EmployeeDeductions {
	if gross.IsNegative() {
		gross = decimal.Zero
	}
	capped := decimal.Min(gross, cc.Social.ALVCeiling)

	d := domain.EmployeeDeductions{
		AHV: gross.Mul(cc.Social.AHVEmployee),
		ALV: capped.Mul(cc.Social.ALVEmployee),
		NBU: capped.Mul(cc.Social.NBURate),
		BVG: cc.bvgHalf(gross, age),
	}
	if buyIn.IsPositive() {
		d.BuyIn = decimal.Min(buyIn, gross)
	}
	return d
}

// EmployerCost is the company-side charge on a salary: employer AHV, employer
// ALV plus the solidarity percentage above the ceiling, and the employer BVG
// half. It reduces the profit available for dividends.
func (cc *ContributionCalculator) EmployerCost(gross decimal.Decimal, age int) decimal.Decimal {
	if gross.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero
	}
	capped := decimal.Min(gross, cc.Social.ALVCeiling)

	cost := gross.Mul(cc.Social.AHVEmployer).
		Add(capped.Mul(cc.Social.ALVEmployer))
	if gross.GreaterThan(cc.Social.ALVCeiling) {
		cost = cost.Add(gross.Sub(cc.Social.ALVCeiling).Mul(cc.Social.ALVSolidarity))
	}
	return cost.Add(cc.bvgHalf(gross, age))
}

// bvgHalf is one half of the BVG contribution on the coordinated salary,
// zero below the entry threshold or outside every age band.
func (cc *ContributionCalculator) bvgHalf(gross decimal.Decimal, age int) decimal.Decimal {
	if gross.LessThan(cc.Social.BVGEntryThreshold) {
		return decimal.Zero
	}
	rate := cc.Social.BVGRate(age)
	if rate.IsZero() {
		return decimal.Zero
	}
	insured := decimal.Min(gross, cc.Social.BVGMaxInsured).Sub(cc.Social.BVGCoordDeduction)
	if insured.IsNegative() {
		insured = decimal.Zero
	}
	return insured.Mul(rate).Div(decimal.NewFromInt(2))
}
