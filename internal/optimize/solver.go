package optimize

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/lodi-go/lodi/internal/calculation"
	"github.com/lodi-go/lodi/internal/domain"
	"github.com/shopspring/decimal"
)

// Solver scans the salary/dividend split space with a brute-force grid. The
// tariff functions are piecewise and non-convex (bracket thresholds,
// splitting divisors), so no closed form exists across engine kinds.
type Solver struct {
	Rules      *domain.RuleSet
	Builder    *calculation.ScenarioBuilder
	Aggregator *calculation.LevyAggregator
	Options    Options
}

// NewSolver creates a solver over a loaded rule set.
func NewSolver(rules *domain.RuleSet, options Options) *Solver {
	return &Solver{
		Rules:      rules,
		Builder:    calculation.NewScenarioBuilder(rules),
		Aggregator: calculation.NewLevyAggregator(rules),
		Options:    options,
	}
}

// NewDefaultSolver creates a solver with the default options.
func NewDefaultSolver(rules *domain.RuleSet) *Solver {
	return NewSolver(rules, DefaultOptions())
}

// Optimize evaluates every candidate split on the grid and returns the one
// minimizing the objective. Ties prefer the higher salary: the more
// predictable, pension-relevant income.
func (s *Solver) Optimize(ctx context.Context, req Request) (*Result, error) {
	if err := req.Inputs.Validate(); err != nil {
		return nil, &OptimizeError{Operation: "optimize", Message: "invalid inputs", Cause: err}
	}
	jur, err := s.Rules.Jurisdiction(req.Inputs.Canton, req.Inputs.Commune)
	if err != nil {
		return nil, &OptimizeError{Operation: "optimize", Message: "jurisdiction lookup failed", Cause: err}
	}

	step := req.Step
	if step.IsZero() {
		step = s.Options.Step
	}
	if step.LessThanOrEqual(decimal.Zero) {
		return nil, &OptimizeError{Operation: "optimize", Message: fmt.Sprintf("step must be positive, got %s", step)}
	}
	objective := req.Objective
	if objective == "" {
		objective = s.Options.Objective
	}

	payout := calculation.EffectivePayout(req.Inputs)
	grid := s.salaryGrid(req.Inputs, payout, step)

	start := time.Now()
	trace := make([]CandidateEvaluation, len(grid))
	if s.Options.Parallel {
		err = s.evaluateParallel(ctx, req.Inputs, jur, grid, trace)
	} else {
		err = s.evaluateSerial(ctx, req.Inputs, jur, grid, trace)
	}
	if err != nil {
		return nil, err
	}

	// Deterministic reduction in grid order regardless of evaluation order.
	best := trace[0]
	for _, cand := range trace[1:] {
		if s.isBetter(cand, best, objective) {
			best = cand
		}
	}

	return &Result{
		RunID:      uuid.NewString(),
		Best:       best,
		Trace:      trace,
		Iterations: len(trace),
		Objective:  objective,
		Elapsed:    time.Since(start),
	}, nil
}

// salaryGrid builds the candidate salaries from the floor (minimum wage in
// Strikt mode, otherwise zero) up to the full payout. The payout itself is
// always a candidate so the salary-only structure stays comparable.
func (s *Solver) salaryGrid(in domain.OwnerInputs, payout, step decimal.Decimal) []decimal.Decimal {
	floor := decimal.Zero
	if in.Strikt {
		floor = in.MinSalary
	}
	if floor.GreaterThan(payout) {
		floor = payout
	}

	var grid []decimal.Decimal
	for salary := floor; salary.LessThan(payout); salary = salary.Add(step) {
		grid = append(grid, salary)
	}
	grid = append(grid, payout)
	return grid
}

func (s *Solver) evaluateSerial(ctx context.Context, in domain.OwnerInputs, jur *domain.Jurisdiction, grid []decimal.Decimal, trace []CandidateEvaluation) error {
	for i, salary := range grid {
		// Cancellation is checked at the grid boundary; candidates are
		// short-lived pure evaluations.
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		cand, err := s.evaluate(in, jur, salary)
		if err != nil {
			return err
		}
		trace[i] = cand
	}
	return nil
}

// evaluateParallel fans the grid out to workers. Candidates are independent
// pure evaluations; each worker writes only its own trace slots.
func (s *Solver) evaluateParallel(ctx context.Context, in domain.OwnerInputs, jur *domain.Jurisdiction, grid []decimal.Decimal, trace []CandidateEvaluation) error {
	workers := s.Options.Workers
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	errs := make([]error, workers)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := w; i < len(grid); i += workers {
				select {
				case <-ctx.Done():
					errs[w] = ctx.Err()
					return
				default:
				}
				cand, err := s.evaluate(in, jur, grid[i])
				if err != nil {
					errs[w] = err
					return
				}
				trace[i] = cand
			}
		}(w)
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func (s *Solver) evaluate(in domain.OwnerInputs, jur *domain.Jurisdiction, salary decimal.Decimal) (CandidateEvaluation, error) {
	sc := s.Builder.BuildSplit(fmt.Sprintf("salary %s", salary.StringFixed(0)), in, jur, salary)
	bd, err := s.Aggregator.Aggregate(sc, jur)
	if err != nil {
		return CandidateEvaluation{}, &OptimizeError{Operation: "evaluate", Message: "aggregation failed", Cause: err}
	}
	return CandidateEvaluation{
		Salary:    sc.GrossSalary,
		Dividend:  sc.GrossDividend,
		Breakdown: bd,
		Net:       s.Aggregator.NetProceeds(sc, bd),
	}, nil
}

// isBetter compares two candidates under the objective; exact ties go to the
// higher salary.
func (s *Solver) isBetter(a, b CandidateEvaluation, objective Objective) bool {
	switch objective {
	case ObjectiveMaxNet:
		if !a.Net.Net.Equal(b.Net.Net) {
			return a.Net.Net.GreaterThan(b.Net.Net)
		}
	default:
		if !a.Breakdown.Total.Equal(b.Breakdown.Total) {
			return a.Breakdown.Total.LessThan(b.Breakdown.Total)
		}
	}
	return a.Salary.GreaterThan(b.Salary)
}
