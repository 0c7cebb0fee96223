package compare

import (
	"github.com/lodi-go/lodi/internal/calculation"
	"github.com/lodi-go/lodi/internal/domain"
)

// CompareEngine evaluates the salary-only and salary-plus-dividend scenarios
// for one set of owner inputs and derives the comparison metrics.
type CompareEngine struct {
	Rules      *domain.RuleSet
	Builder    *calculation.ScenarioBuilder
	Aggregator *calculation.LevyAggregator
}

// NewCompareEngine creates an engine over a loaded rule set.
func NewCompareEngine(rules *domain.RuleSet) *CompareEngine {
	return &CompareEngine{
		Rules:      rules,
		Builder:    calculation.NewScenarioBuilder(rules),
		Aggregator: calculation.NewLevyAggregator(rules),
	}
}

// Run builds and aggregates both scenarios; the salary-only scenario is the
// base, presets add further splits.
func (e *CompareEngine) Run(in domain.OwnerInputs) (*ComparisonSet, error) {
	salary, mixed, err := e.Builder.Build(in)
	if err != nil {
		return nil, err
	}
	jur, err := e.Rules.Jurisdiction(in.Canton, in.Commune)
	if err != nil {
		return nil, err
	}

	base, err := e.evaluate(in, salary, jur)
	if err != nil {
		return nil, err
	}

	set := &ComparisonSet{
		Canton:     in.Canton,
		Commune:    in.Commune,
		BaseResult: &base,
	}

	alt, err := e.evaluate(in, mixed, jur)
	if err != nil {
		return nil, err
	}
	set.AlternativeResults = append(set.AlternativeResults, CalculateComparison(alt, base))

	for _, preset := range Presets() {
		sc := e.Builder.BuildSplit(preset.Name, in, jur, preset.Salary(in))
		if sc.GrossSalary.Equal(salary.GrossSalary) || sc.GrossSalary.Equal(mixed.GrossSalary) {
			continue // preset coincides with a scenario already in the set
		}
		res, err := e.evaluate(in, sc, jur)
		if err != nil {
			return nil, err
		}
		set.AlternativeResults = append(set.AlternativeResults, CalculateComparison(res, base))
	}

	set.Recommendations = GenerateRecommendations(set)
	return set, nil
}

func (e *CompareEngine) evaluate(in domain.OwnerInputs, sc domain.IncomeScenario, jur *domain.Jurisdiction) (ComparisonResult, error) {
	bd, err := e.Aggregator.Aggregate(sc, jur)
	if err != nil {
		return ComparisonResult{}, err
	}
	return ComparisonResult{
		ScenarioName:          sc.Name,
		GrossSalary:           sc.GrossSalary,
		GrossDividend:         sc.GrossDividend,
		DistributableDividend: e.Builder.DistributableDividend(in, jur, sc.GrossSalary),
		Breakdown:             bd,
		Net:                   e.Aggregator.NetProceeds(sc, bd),
	}, nil
}
