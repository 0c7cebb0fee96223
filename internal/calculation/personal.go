package calculation

import (
	"github.com/lodi-go/lodi/internal/domain"
	"github.com/shopspring/decimal"
)

// personalResolver is one step of the head-tax resolution chain. The first
// resolver that returns a rule wins; later sources are never consulted, so a
// personal tax can never be charged twice for the same canton.
type personalResolver func(jur *domain.Jurisdiction, rules *domain.RuleSet) (*domain.PersonalTaxRule, bool)

func tariffSourced(jur *domain.Jurisdiction, _ *domain.RuleSet) (*domain.PersonalTaxRule, bool) {
	if jur.PersonalTax != nil && jur.PersonalTax.Source == domain.PersonalSourceTariff {
		return jur.PersonalTax, true
	}
	return nil, false
}

func factorSourced(jur *domain.Jurisdiction, _ *domain.RuleSet) (*domain.PersonalTaxRule, bool) {
	if jur.PersonalTax != nil && jur.PersonalTax.Source == domain.PersonalSourceFactor {
		return jur.PersonalTax, true
	}
	return nil, false
}

func fallbackSourced(jur *domain.Jurisdiction, rules *domain.RuleSet) (*domain.PersonalTaxRule, bool) {
	return rules.FallbackPersonalTax(jur.CantonCode)
}

var personalResolvers = []personalResolver{tariffSourced, factorSourced, fallbackSourced}

// ResolvePersonalTaxRule walks the priority chain
// tariff-sourced > factor-sourced > fallback-sourced for a jurisdiction.
func ResolvePersonalTaxRule(jur *domain.Jurisdiction, rules *domain.RuleSet) (*domain.PersonalTaxRule, bool) {
	for _, resolve := range personalResolvers {
		if rule, ok := resolve(jur, rules); ok {
			return rule, true
		}
	}
	return nil, false
}

// PersonalTaxAmount charges the resolved head tax: per-person rules charge
// once per spouse for married filers unless the rule restricts itself to a
// single filer.
func PersonalTaxAmount(rule *domain.PersonalTaxRule, status domain.MaritalStatus) decimal.Decimal {
	if rule == nil {
		return decimal.Zero
	}
	amount := rule.ResolvedAmount()
	if rule.PerPerson && status == domain.StatusMarried && !rule.OneFilerOnly {
		amount = amount.Mul(decimal.NewFromInt(2))
	}
	return amount
}
