package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/lodi-go/lodi/internal/compare"
	"github.com/lodi-go/lodi/internal/config"
	"github.com/lodi-go/lodi/internal/dataset"
	"github.com/lodi-go/lodi/internal/domain"
	"github.com/lodi-go/lodi/internal/optimize"
)

// View identifies the active tab.
type View int

const (
	ViewComparison View = iota
	ViewCurve
)

// Model is the application state: one loaded profile, its comparison and an
// optional optimizer run.
type Model struct {
	profilePath string
	dataDir     string

	width  int
	height int

	rules   *domain.RuleSet
	profile *config.Profile
	set     *compare.ComparisonSet
	result  *optimize.Result

	view       View
	loading    bool
	optimizing bool
	spinner    spinner.Model

	err error
}

// NewModel creates the initial model; data loads in Init.
func NewModel(profilePath, dataDir string) Model {
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return Model{
		profilePath: profilePath,
		dataDir:     dataDir,
		loading:     true,
		spinner:     sp,
		width:       100,
		height:      30,
	}
}

// Init kicks off dataset and profile loading.
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, loadDataCmd(m.profilePath, m.dataDir))
}

// recomputeCmd reruns the comparison after a parameter adjustment.
func recomputeCmd(rules *domain.RuleSet, in domain.OwnerInputs) tea.Cmd {
	return func() tea.Msg {
		set, err := compare.NewCompareEngine(rules).Run(in)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return ComparisonMsg{Set: set}
	}
}

// loadDataCmd loads the rule set and profile, then runs the comparison.
func loadDataCmd(profilePath, dataDir string) tea.Cmd {
	return func() tea.Msg {
		rules, err := dataset.NewLoader(dataDir).Load()
		if err != nil {
			return ErrorMsg{Err: err}
		}
		profile, err := config.NewInputParser().LoadFromFile(profilePath)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		set, err := compare.NewCompareEngine(rules).Run(profile.Owner)
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return DataLoadedMsg{Rules: rules, Profile: profile, Set: set}
	}
}

// optimizeCmd runs the grid search off the update loop.
func optimizeCmd(rules *domain.RuleSet, profile *config.Profile) tea.Cmd {
	return func() tea.Msg {
		solver := optimize.NewSolver(rules, profile.Optimizer.Options())
		result, err := solver.Optimize(context.Background(), optimize.Request{Inputs: profile.Owner})
		if err != nil {
			return ErrorMsg{Err: err}
		}
		return OptimizeDoneMsg{Result: result}
	}
}
