package tui

import (
	"github.com/lodi-go/lodi/internal/compare"
	"github.com/lodi-go/lodi/internal/config"
	"github.com/lodi-go/lodi/internal/domain"
	"github.com/lodi-go/lodi/internal/optimize"
)

// DataLoadedMsg carries the rule set, profile and initial comparison after
// startup loading finishes.
type DataLoadedMsg struct {
	Rules   *domain.RuleSet
	Profile *config.Profile
	Set     *compare.ComparisonSet
}

// ComparisonMsg carries a recomputed comparison after a parameter change.
type ComparisonMsg struct {
	Set *compare.ComparisonSet
}

// OptimizeDoneMsg carries a finished grid search.
type OptimizeDoneMsg struct {
	Result *optimize.Result
}

// ErrorMsg surfaces a load or computation failure.
type ErrorMsg struct {
	Err error
}
