package tui

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// View renders the active tab.
func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(TitleStyle.Render("Lodi - Salary / Dividend Planner"))
	sb.WriteString("\n")

	if m.err != nil {
		sb.WriteString(ErrorStyle.Render("Error: " + m.err.Error()))
		sb.WriteString("\n\n")
		sb.WriteString(HelpStyle.Render("r reload • q quit"))
		return AppStyle.Render(sb.String())
	}

	if m.loading {
		sb.WriteString(m.spinner.View() + " loading rule data...")
		return AppStyle.Render(sb.String())
	}

	if m.profile != nil {
		sb.WriteString(SubtitleStyle.Render(fmt.Sprintf("%s / %s • profit %s • payout %s",
			m.profile.Owner.Canton, m.profile.Owner.Commune,
			FormatCurrency(m.profile.Owner.Profit),
			FormatCurrency(m.profile.Owner.TargetPayout))))
		sb.WriteString("\n\n")
	}

	sb.WriteString(m.renderTabs())
	sb.WriteString("\n\n")

	switch m.view {
	case ViewCurve:
		sb.WriteString(m.renderCurve())
	default:
		sb.WriteString(m.renderComparison())
	}

	sb.WriteString("\n\n")
	sb.WriteString(HelpStyle.Render("tab switch view • +/- payout • m/M salary floor • o optimize • r reload • q quit"))
	return AppStyle.Render(sb.String())
}

func (m Model) renderTabs() string {
	tabs := []struct {
		name string
		view View
	}{
		{"Comparison", ViewComparison},
		{"Optimizer Curve", ViewCurve},
	}
	var parts []string
	for _, t := range tabs {
		if t.view == m.view {
			parts = append(parts, ActiveTabStyle.Render("[ "+t.name+" ]"))
		} else {
			parts = append(parts, InactiveTabStyle.Render("  "+t.name+"  "))
		}
	}
	return strings.Join(parts, " ")
}

func (m Model) renderComparison() string {
	if m.set == nil || m.set.BaseResult == nil {
		return HelpStyle.Render("no comparison loaded")
	}

	var sb strings.Builder
	sb.WriteString(m.renderScenarioCard(m.set.BaseResult.ScenarioName+" (base)",
		m.set.BaseResult.GrossSalary, m.set.BaseResult.GrossDividend,
		m.set.BaseResult.Breakdown.Total, m.set.BaseResult.Net.Net))

	for _, alt := range m.set.AlternativeResults {
		sb.WriteString("\n")
		sb.WriteString(m.renderScenarioCard(alt.ScenarioName,
			alt.GrossSalary, alt.GrossDividend, alt.Breakdown.Total, alt.Net.Net))

		delta := alt.NetDiffFromBase
		style := PositiveStyle
		sign := "+"
		if delta.IsNegative() {
			style = NegativeStyle
			sign = ""
		}
		sb.WriteString(style.Render(fmt.Sprintf("  net vs base: %s%s", sign, FormatCurrency(delta))))
		sb.WriteString("\n")
	}

	if len(m.set.Recommendations) > 0 {
		sb.WriteString("\n")
		for _, rec := range m.set.Recommendations {
			sb.WriteString(PositiveStyle.Render("- " + rec))
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

func (m Model) renderScenarioCard(name string, salary, dividend, tax, net decimal.Decimal) string {
	body := fmt.Sprintf("%s\n%s %s   %s %s\n%s %s   %s %s",
		ValueStyle.Render(name),
		LabelStyle.Render("salary"), FormatCurrency(salary),
		LabelStyle.Render("dividend"), FormatCurrency(dividend),
		LabelStyle.Render("total tax"), FormatCurrency(tax),
		LabelStyle.Render("net"), ValueStyle.Render(FormatCurrency(net)))
	return BorderStyle.Render(body) + "\n"
}

func (m Model) renderCurve() string {
	if m.optimizing {
		return m.spinner.View() + " scanning salary grid..."
	}
	if m.result == nil {
		return HelpStyle.Render("press o to run the optimizer")
	}

	tax := make([]float64, len(m.result.Trace))
	net := make([]float64, len(m.result.Trace))
	for i, cand := range m.result.Trace {
		tax[i] = cand.Breakdown.Total.InexactFloat64()
		net[i] = cand.Net.Net.InexactFloat64()
	}

	chart := NewASCIIChart("Tax and net over the salary grid").
		AddSeries("total tax", tax, ColorDanger).
		AddSeries("net proceeds", net, ColorAccent)
	chart.XLabel = "salary: low -> high"

	var sb strings.Builder
	sb.WriteString(chart.Render())
	sb.WriteString("\n\n")
	sb.WriteString(ValueStyle.Render(fmt.Sprintf("best split: salary %s / dividend %s",
		FormatCurrency(m.result.Best.Salary), FormatCurrency(m.result.Best.Dividend))))
	sb.WriteString("\n")
	sb.WriteString(LabelStyle.Render(fmt.Sprintf("total tax %s • net %s • %d candidates • run %s",
		FormatCurrency(m.result.Best.Breakdown.Total),
		FormatCurrency(m.result.Best.Net.Net),
		m.result.Iterations, m.result.RunID)))
	return sb.String()
}
