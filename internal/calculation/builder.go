package calculation

import (
	"github.com/lodi-go/lodi/internal/domain"
	"github.com/shopspring/decimal"
)

// Scenario names used by the comparison surface.
const (
	ScenarioSalaryOnly = "100% salary"
	ScenarioMixed      = "salary + dividend"
)

// ScenarioBuilder derives per-scenario taxable bases from the raw inputs:
// employment base net of social contributions and the gross dividend for the
// remainder of the payout.
type ScenarioBuilder struct {
	Rules         *domain.RuleSet
	Contributions *ContributionCalculator
}

// NewScenarioBuilder creates a builder over a loaded rule set.
func NewScenarioBuilder(rules *domain.RuleSet) *ScenarioBuilder {
	return &ScenarioBuilder{
		Rules:         rules,
		Contributions: NewContributionCalculator(rules.Social),
	}
}

// EffectivePayout resolves the owner's payout: the target when one is set,
// capped at profit, otherwise the full profit.
func EffectivePayout(in domain.OwnerInputs) decimal.Decimal {
	if in.TargetPayout.IsPositive() && in.TargetPayout.LessThan(in.Profit) {
		return in.TargetPayout
	}
	return in.Profit
}

// Build derives the two scenarios of the comparison: A pays the whole payout
// as salary, B reduces salary to the floor and distributes the remainder as
// dividend. In Strikt mode a payout below the minimum wage floor collapses B
// into A; no partial dividend is allowed then.
func (b *ScenarioBuilder) Build(in domain.OwnerInputs) (salary, mixed domain.IncomeScenario, err error) {
	jur, err := b.Rules.Jurisdiction(in.Canton, in.Commune)
	if err != nil {
		return domain.IncomeScenario{}, domain.IncomeScenario{}, err
	}

	payout := EffectivePayout(in)

	salary = b.BuildSplit(ScenarioSalaryOnly, in, jur, payout)

	mixedSalary := in.MinSalary
	if in.Strikt && payout.LessThan(in.MinSalary) {
		// Floor not reachable: scenario B collapses to scenario A.
		mixedSalary = payout
	}
	if mixedSalary.GreaterThan(payout) {
		mixedSalary = payout
	}
	mixed = b.BuildSplit(ScenarioMixed, in, jur, mixedSalary)
	return salary, mixed, nil
}

// BuildSplit constructs the scenario for one candidate split: the given
// salary plus the remainder of the payout as dividend. Scenarios are built
// fresh per evaluation and never mutated afterwards.
func (b *ScenarioBuilder) BuildSplit(name string, in domain.OwnerInputs, jur *domain.Jurisdiction, grossSalary decimal.Decimal) domain.IncomeScenario {
	payout := EffectivePayout(in)
	if grossSalary.GreaterThan(payout) {
		grossSalary = payout
	}
	if grossSalary.IsNegative() {
		grossSalary = decimal.Zero
	}
	dividend := payout.Sub(grossSalary)

	deductions := b.Contributions.EmployeeDeductions(grossSalary, in.PensionBuyIn, in.Age)
	base := grossSalary.Sub(deductions.Total())
	if base.IsNegative() {
		base = decimal.Zero
	}

	employerCost := b.Contributions.EmployerCost(grossSalary, in.Age)
	retained := in.Profit.Sub(grossSalary).Sub(employerCost)
	corpTax := CorporateTax(retained, b.Rules, jur)

	return domain.IncomeScenario{
		Name:           name,
		GrossSalary:    grossSalary,
		GrossDividend:  dividend,
		OtherIncome:    in.OtherIncome,
		MaritalStatus:  in.MaritalStatus,
		Children:       in.Children,
		Confession:     in.Confession,
		Age:            in.Age,
		Deductions:     deductions,
		EmploymentBase: base,
		EmployerCost:   employerCost,
		CorporateTax:   corpTax,
	}
}

// DistributableDividend is the dividend the company can actually pay out of
// retained profit after employer charges and corporate tax.
func (b *ScenarioBuilder) DistributableDividend(in domain.OwnerInputs, jur *domain.Jurisdiction, grossSalary decimal.Decimal) decimal.Decimal {
	employerCost := b.Contributions.EmployerCost(grossSalary, in.Age)
	retained := in.Profit.Sub(grossSalary).Sub(employerCost)
	if retained.IsNegative() {
		return decimal.Zero
	}
	one := decimal.NewFromInt(1)
	return retained.Mul(one.Sub(TotalCorporateRate(b.Rules, jur)))
}
