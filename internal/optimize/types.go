package optimize

import (
	"time"

	"github.com/lodi-go/lodi/internal/domain"
	"github.com/shopspring/decimal"
)

// Objective selects what the grid search minimizes or maximizes.
type Objective string

const (
	// ObjectiveMinTax minimizes the aggregated total tax (default).
	ObjectiveMinTax Objective = "min_total_tax"
	// ObjectiveMaxNet maximizes the owner's net proceeds, the original
	// product's headline comparison.
	ObjectiveMaxNet Objective = "max_net_proceeds"
)

// Options configure the solver grid.
type Options struct {
	// Step is the salary grid spacing in CHF.
	Step decimal.Decimal
	// Parallel evaluates candidates on worker goroutines. Results are
	// reduced in grid order, so the outcome is identical to a serial run.
	Parallel  bool
	Workers   int
	Objective Objective
}

// DefaultOptions returns the coarse default grid: CHF 1'000 steps, serial,
// minimal total tax.
func DefaultOptions() Options {
	return Options{
		Step:      decimal.NewFromInt(1000),
		Parallel:  false,
		Workers:   4,
		Objective: ObjectiveMinTax,
	}
}

// Request is one optimization run over an owner's inputs.
type Request struct {
	Inputs domain.OwnerInputs

	// Overrides; zero values fall back to the solver options.
	Step      decimal.Decimal
	Objective Objective
}

// CandidateEvaluation is one evaluated split of the search trace.
type CandidateEvaluation struct {
	Salary    decimal.Decimal      `json:"salary"`
	Dividend  decimal.Decimal      `json:"dividend"`
	Breakdown *domain.TaxBreakdown `json:"breakdown"`
	Net       domain.NetProceeds   `json:"net"`
}

// Result is the outcome of a grid search: the winning split, its breakdown
// and the full trace for transparency.
type Result struct {
	RunID      string                `json:"run_id"`
	Best       CandidateEvaluation   `json:"best"`
	Trace      []CandidateEvaluation `json:"trace"`
	Iterations int                   `json:"iterations"`
	Objective  Objective             `json:"objective"`
	Elapsed    time.Duration         `json:"elapsed"`
}

// OptimizeError reports solver failures.
type OptimizeError struct {
	Operation string
	Message   string
	Cause     error
}

func (e *OptimizeError) Error() string {
	if e.Cause != nil {
		return e.Operation + ": " + e.Message + ": " + e.Cause.Error()
	}
	return e.Operation + ": " + e.Message
}

func (e *OptimizeError) Unwrap() error {
	return e.Cause
}
