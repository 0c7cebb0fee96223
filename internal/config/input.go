package config

import (
	"fmt"
	"os"

	"github.com/lodi-go/lodi/internal/domain"
	"github.com/lodi-go/lodi/internal/optimize"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Profile is the owner-side input file: the personal and company figures of
// one computation run plus optional optimizer settings.
type Profile struct {
	Owner     domain.OwnerInputs `yaml:"owner"`
	Optimizer OptimizerSettings  `yaml:"optimizer"`
}

// OptimizerSettings are the per-profile overrides for the grid search.
type OptimizerSettings struct {
	Step      decimal.Decimal    `yaml:"step"`
	Parallel  bool               `yaml:"parallel"`
	Workers   int                `yaml:"workers"`
	Objective optimize.Objective `yaml:"objective"`
}

// Options merges the profile settings over the solver defaults.
func (s OptimizerSettings) Options() optimize.Options {
	opts := optimize.DefaultOptions()
	if s.Step.IsPositive() {
		opts.Step = s.Step
	}
	opts.Parallel = s.Parallel
	if s.Workers > 0 {
		opts.Workers = s.Workers
	}
	if s.Objective != "" {
		opts.Objective = s.Objective
	}
	return opts
}

// InputParser handles parsing of owner profile files.
type InputParser struct{}

// NewInputParser creates a new input parser.
func NewInputParser() *InputParser {
	return &InputParser{}
}

// LoadFromFile loads and validates a profile from a YAML file.
func (ip *InputParser) LoadFromFile(filename string) (*Profile, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}

	var profile Profile
	if err := yaml.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := ip.ValidateProfile(&profile); err != nil {
		return nil, fmt.Errorf("profile validation failed: %w", err)
	}
	return &profile, nil
}

// ValidateProfile rejects malformed profiles before any computation starts.
func (ip *InputParser) ValidateProfile(profile *Profile) error {
	if profile.Owner.Confession == "" {
		profile.Owner.Confession = domain.ConfessionNone
	}
	if profile.Owner.MaritalStatus == "" {
		profile.Owner.MaritalStatus = domain.StatusSingle
	}
	if err := profile.Owner.Validate(); err != nil {
		return fmt.Errorf("owner: %w", err)
	}
	if profile.Optimizer.Step.IsNegative() {
		return fmt.Errorf("optimizer: step must not be negative, got %s", profile.Optimizer.Step)
	}
	if profile.Optimizer.Workers < 0 {
		return fmt.Errorf("optimizer: workers must not be negative, got %d", profile.Optimizer.Workers)
	}
	switch profile.Optimizer.Objective {
	case "", optimize.ObjectiveMinTax, optimize.ObjectiveMaxNet:
	default:
		return fmt.Errorf("optimizer: unknown objective %q", profile.Optimizer.Objective)
	}
	if profile.Owner.Strikt && !profile.Owner.MinSalary.IsPositive() {
		return fmt.Errorf("owner: strikt mode requires a positive min_salary")
	}
	return nil
}
