package tariff

import (
	"fmt"

	"github.com/lodi-go/lodi/internal/domain"
	"github.com/shopspring/decimal"
)

// Filing carries the filer attributes that influence a tariff lookup: the
// splitting engines divide income before lookup based on these.
type Filing struct {
	Status   domain.MaritalStatus
	Children int
}

// Engine maps a taxable base to a base tax amount for one tariff schedule.
// Multipliers and levy composition are the aggregator's business.
type Engine struct {
	Rounding RoundingPolicy
}

// NewEngine returns an engine with the default half-up rounding policy.
func NewEngine() *Engine {
	return &Engine{Rounding: RoundHalfUp}
}

// NewEngineWithPolicy returns an engine with an explicit rounding policy.
func NewEngineWithPolicy(policy RoundingPolicy) *Engine {
	return &Engine{Rounding: policy}
}

// defaultFederalDivisor applies when a federal schedule defines no splitting
// divisor of its own. The federal married relief is close to, but not, a
// literal halving.
var defaultFederalDivisor = decimal.NewFromFloat(1.9)

// defaultSplitDivisor is the married divisor for splitting-style cantonal
// tariffs that omit one.
var defaultSplitDivisor = decimal.NewFromFloat(1.6)

// defaultChildStep is the per-child divisor increment for splitting tariffs.
var defaultChildStep = decimal.NewFromFloat(0.25)

// ComputeBaseTax evaluates the schedule's tariff function at the taxable
// income and rounds the result to the nearest 100 francs. Negative input is
// clamped to zero; an unknown tariff kind is a configuration error.
func (e *Engine) ComputeBaseTax(sched domain.TariffSchedule, taxable decimal.Decimal, filing Filing) (decimal.Decimal, error) {
	if taxable.IsNegative() {
		taxable = decimal.Zero
	}

	var raw decimal.Decimal
	switch sched.Kind {
	case domain.TariffMarginal:
		raw = marginalSlices(sched.Brackets, taxable)

	case domain.TariffFederal:
		divisor := decimal.NewFromInt(1)
		if filing.Status == domain.StatusMarried {
			divisor = sched.MarriedDivisor
			if divisor.LessThanOrEqual(decimal.NewFromInt(1)) {
				divisor = defaultFederalDivisor
			}
		}
		raw = baseAmountLookup(sched.Brackets, taxable.Div(divisor)).Mul(divisor)

	case domain.TariffFlat:
		raw = taxable.Mul(sched.FlatRate)

	case domain.TariffFormula:
		raw = taxable.Mul(sched.Rate).Add(sched.Offset)

	case domain.TariffFormulaFixed:
		// Flagged canton: the fixed adjustment replaces the generic offset.
		raw = taxable.Mul(sched.Rate).Add(sched.FixedAdjustment)

	case domain.TariffSplitting:
		divisor := splittingDivisor(sched, filing)
		raw = marginalSlices(sched.Brackets, taxable.Div(divisor)).Mul(divisor)

	default:
		return decimal.Zero, &domain.ConfigError{
			Op:      "compute_base_tax",
			Message: fmt.Sprintf("unknown tariff kind %q", sched.Kind),
		}
	}

	if raw.IsNegative() {
		raw = decimal.Zero
	}
	return RoundTo100(raw, e.Rounding), nil
}

// marginalSlices decomposes income into successive bracket slices, each taxed
// at its marginal rate. Income below the first threshold is untaxed; income
// above the last bracket's upper bound is taxed at the top marginal rate.
func marginalSlices(brackets []domain.TariffBracket, income decimal.Decimal) decimal.Decimal {
	tax := decimal.Zero
	for i, b := range brackets {
		if income.LessThanOrEqual(b.Min) {
			return tax
		}
		upper := b.Max
		if upper.IsZero() || i == len(brackets)-1 {
			// Open-ended top bracket: the excess over Min is all taxed here.
			upper = income
		}
		slice := decimal.Min(income, upper).Sub(b.Min)
		if slice.IsPositive() {
			tax = tax.Add(slice.Mul(b.Rate))
		}
	}
	return tax
}

// baseAmountLookup finds the bracket containing the income and returns the
// bracket's base amount plus the marginal rate on the excess over its lower
// bound, the federal schedule shape.
func baseAmountLookup(brackets []domain.TariffBracket, income decimal.Decimal) decimal.Decimal {
	if len(brackets) == 0 {
		return decimal.Zero
	}
	for i, b := range brackets {
		if !b.Max.IsZero() && income.GreaterThan(b.Max) && i < len(brackets)-1 {
			continue
		}
		if income.LessThanOrEqual(b.Min) && i == 0 {
			return decimal.Zero
		}
		if income.LessThan(b.Min) {
			continue
		}
		return b.Base.Add(income.Sub(b.Min).Mul(b.Rate))
	}
	top := brackets[len(brackets)-1]
	return top.Base.Add(income.Sub(top.Min).Mul(top.Rate))
}

// splittingDivisor derives the family divisor for splitting tariffs: single
// filers without children get 1, married couples the schedule's divisor, and
// each child adds the schedule's per-child step.
func splittingDivisor(sched domain.TariffSchedule, filing Filing) decimal.Decimal {
	divisor := decimal.NewFromInt(1)
	if filing.Status == domain.StatusMarried {
		divisor = sched.MarriedDivisor
		if divisor.LessThan(decimal.NewFromInt(1)) {
			divisor = defaultSplitDivisor
		}
	}
	if filing.Children > 0 {
		step := sched.ChildDivisorStep
		if step.IsZero() {
			step = defaultChildStep
		}
		divisor = divisor.Add(step.Mul(decimal.NewFromInt(int64(filing.Children))))
	}
	return divisor
}
