package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/shopspring/decimal"

	"github.com/lodi-go/lodi/internal/domain"
)

// Update handles all messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKeyPress(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case DataLoadedMsg:
		m.loading = false
		m.rules = msg.Rules
		m.profile = msg.Profile
		m.set = msg.Set
		return m, nil

	case ComparisonMsg:
		m.set = msg.Set
		m.result = nil // parameters changed, the old trace no longer applies
		return m, nil

	case OptimizeDoneMsg:
		m.optimizing = false
		m.result = msg.Result
		m.view = ViewCurve
		return m, nil

	case ErrorMsg:
		m.loading = false
		m.optimizing = false
		m.err = msg.Err
		return m, nil
	}

	var cmd tea.Cmd
	m.spinner, cmd = m.spinner.Update(msg)
	return m, cmd
}

func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		return m, tea.Quit

	case "tab", "right", "l":
		if m.view == ViewComparison {
			m.view = ViewCurve
		} else {
			m.view = ViewComparison
		}
		return m, nil

	case "o":
		if m.rules == nil || m.profile == nil || m.optimizing {
			return m, nil
		}
		m.optimizing = true
		return m, tea.Batch(m.spinner.Tick, optimizeCmd(m.rules, m.profile))

	case "r":
		if m.loading {
			return m, nil
		}
		m.loading = true
		m.err = nil
		return m, tea.Batch(m.spinner.Tick, loadDataCmd(m.profilePath, m.dataDir))

	case "+", "=":
		return m.adjust(func(in *domain.OwnerInputs) {
			// A zero target means "pay out everything"; adjustments start there.
			if in.TargetPayout.IsZero() {
				in.TargetPayout = in.Profit
			}
			in.TargetPayout = in.TargetPayout.Add(payoutStep)
			if in.TargetPayout.GreaterThan(in.Profit) {
				in.TargetPayout = in.Profit
			}
		})

	case "-", "_":
		return m.adjust(func(in *domain.OwnerInputs) {
			if in.TargetPayout.IsZero() {
				in.TargetPayout = in.Profit
			}
			in.TargetPayout = in.TargetPayout.Sub(payoutStep)
			if in.TargetPayout.IsNegative() {
				in.TargetPayout = decimal.Zero
			}
		})

	case "M":
		return m.adjust(func(in *domain.OwnerInputs) {
			in.MinSalary = in.MinSalary.Add(payoutStep)
		})

	case "m":
		return m.adjust(func(in *domain.OwnerInputs) {
			in.MinSalary = in.MinSalary.Sub(payoutStep)
			if in.MinSalary.IsNegative() {
				in.MinSalary = decimal.Zero
			}
		})
	}
	return m, nil
}

// payoutStep is the increment the adjustment keys apply.
var payoutStep = decimal.NewFromInt(10000)

// adjust mutates the profile inputs and reruns the comparison.
func (m Model) adjust(change func(in *domain.OwnerInputs)) (tea.Model, tea.Cmd) {
	if m.rules == nil || m.profile == nil {
		return m, nil
	}
	change(&m.profile.Owner)
	return m, recomputeCmd(m.rules, m.profile.Owner)
}
