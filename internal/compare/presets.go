package compare

import (
	"github.com/lodi-go/lodi/internal/calculation"
	"github.com/lodi-go/lodi/internal/domain"
	"github.com/shopspring/decimal"
)

// Preset is a named split heuristic included in every comparison alongside
// the base scenarios. Salary maps the inputs to a gross salary candidate.
type Preset struct {
	Name   string
	Salary func(in domain.OwnerInputs) decimal.Decimal
}

// Presets returns the built-in split heuristics, in display order.
func Presets() []Preset {
	half := decimal.NewFromFloat(0.5)
	quarter := decimal.NewFromFloat(0.25)
	return []Preset{
		{
			Name: "50/50 split",
			Salary: func(in domain.OwnerInputs) decimal.Decimal {
				return calculation.EffectivePayout(in).Mul(half).Round(0)
			},
		},
		{
			Name: "75% dividend",
			Salary: func(in domain.OwnerInputs) decimal.Decimal {
				return calculation.EffectivePayout(in).Mul(quarter).Round(0)
			},
		},
		{
			Name: "salary at AHV ceiling",
			Salary: func(in domain.OwnerInputs) decimal.Decimal {
				// The ALV/NBU ceiling is a natural salary anchor: above it only
				// the uncapped AHV share keeps growing.
				return decimal.NewFromInt(148200)
			},
		},
	}
}
