package calculation

import (
	"fmt"
	"log/slog"

	"github.com/lodi-go/lodi/internal/domain"
	"github.com/lodi-go/lodi/internal/tariff"
	"github.com/shopspring/decimal"
)

// LevyAggregator composes federal, cantonal, communal, church and personal
// levies into a total tax for one income scenario.
type LevyAggregator struct {
	Rules  *domain.RuleSet
	Engine *tariff.Engine
}

// NewLevyAggregator creates an aggregator with the default rounding policy.
func NewLevyAggregator(rules *domain.RuleSet) *LevyAggregator {
	return &LevyAggregator{Rules: rules, Engine: tariff.NewEngine()}
}

// Aggregate computes the full breakdown for a scenario in a jurisdiction.
// The cantonal base tax is computed once and reused for the communal and
// church components; only the multipliers differ.
func (a *LevyAggregator) Aggregate(sc domain.IncomeScenario, jur *domain.Jurisdiction) (*domain.TaxBreakdown, error) {
	if jur == nil {
		return nil, &domain.ConfigError{Op: "aggregate", Message: "jurisdiction is required"}
	}
	filing := tariff.Filing{Status: sc.MaritalStatus, Children: sc.Children}
	bd := &domain.TaxBreakdown{}

	// Federal component: fixed 70% dividend inclusion regardless of canton.
	federalBase := sc.EmploymentBase.
		Add(sc.GrossDividend.Mul(domain.FederalDividendInclusion)).
		Add(sc.OtherIncome)
	federal, err := a.Engine.ComputeBaseTax(a.Rules.FederalTariff, federalBase, filing)
	if err != nil {
		return nil, err
	}
	bd.Federal = a.clamp(bd, "federal", federal)

	// Cantonal inclusion rate is looked up per canton; a canton without an
	// entry uses the documented default, surfaced as an anomaly.
	inclusion, fellBack := a.Rules.InclusionRate(jur.CantonCode)
	if fellBack && sc.GrossDividend.IsPositive() {
		a.note(bd, domain.AnomalyFallbackUsed,
			fmt.Sprintf("canton %s has no dividend inclusion entry, using default %s", jur.CantonCode, domain.DefaultDividendInclusion))
	}

	cantonalBase := sc.EmploymentBase.
		Add(sc.GrossDividend.Mul(inclusion)).
		Add(sc.OtherIncome)
	baseTax, err := a.Engine.ComputeBaseTax(jur.Tariff, cantonalBase, filing)
	if err != nil {
		return nil, err
	}

	bd.Cantonal = a.clamp(bd, "cantonal", baseTax.Mul(jur.CantonMultiplier))
	bd.Communal = a.clamp(bd, "communal", baseTax.Mul(jur.CommuneMultiplier))
	bd.Church = a.clamp(bd, "church", baseTax.Mul(jur.ChurchMultiplier(sc.Confession)))

	if rule, ok := ResolvePersonalTaxRule(jur, a.Rules); ok {
		if rule.Source == domain.PersonalSourceFallback {
			a.note(bd, domain.AnomalyFallbackUsed,
				fmt.Sprintf("personal tax for canton %s resolved from fallback map", jur.CantonCode))
		}
		bd.Personal = a.clamp(bd, "personal", PersonalTaxAmount(rule, sc.MaritalStatus))
	}

	bd.Total = bd.Federal.Add(bd.Cantonal).Add(bd.Communal).Add(bd.Church).Add(bd.Personal)
	return bd, nil
}

// NetProceeds derives the owner's bottom line for a scenario from its
// breakdown: gross payout minus corporate tax, social deductions and the
// aggregated income tax.
func (a *LevyAggregator) NetProceeds(sc domain.IncomeScenario, bd *domain.TaxBreakdown) domain.NetProceeds {
	gross := sc.GrossSalary.Add(sc.GrossDividend)
	deductions := sc.Deductions.Total()
	net := gross.Sub(deductions).Sub(bd.Total).Sub(sc.CorporateTax)
	return domain.NetProceeds{
		Gross:        gross,
		CorporateTax: sc.CorporateTax,
		EmployerCost: sc.EmployerCost,
		Deductions:   deductions,
		IncomeTax:    bd.Total,
		Net:          net,
	}
}

// clamp zeroes a negative component and records the anomaly; totals must
// never go negative.
func (a *LevyAggregator) clamp(bd *domain.TaxBreakdown, component string, v decimal.Decimal) decimal.Decimal {
	if v.IsNegative() {
		a.note(bd, domain.AnomalyNegativeClamped,
			fmt.Sprintf("%s component computed %s, clamped to zero", component, v))
		return decimal.Zero
	}
	return v
}

func (a *LevyAggregator) note(bd *domain.TaxBreakdown, code domain.AnomalyCode, msg string) {
	bd.Anomalies = append(bd.Anomalies, domain.Anomaly{Code: code, Message: msg})
	slog.Warn("levy anomaly", "code", string(code), "detail", msg)
}
