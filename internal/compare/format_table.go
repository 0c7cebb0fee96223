package compare

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// TableFormatter formats comparison results as a console table.
type TableFormatter struct{}

// Format generates a formatted table comparing scenarios.
func (tf *TableFormatter) Format(set *ComparisonSet) (string, error) {
	if set == nil || set.BaseResult == nil {
		return "", fmt.Errorf("comparison set has no base result")
	}

	var sb strings.Builder

	sb.WriteString("SALARY / DIVIDEND COMPARISON\n")
	sb.WriteString(strings.Repeat("=", 88) + "\n")
	sb.WriteString(fmt.Sprintf("Jurisdiction: %s / %s\n", set.Canton, set.Commune))
	sb.WriteString("\n")

	nameWidth := 24
	numWidth := 15

	sb.WriteString(fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		nameWidth, "Scenario",
		numWidth, "Salary",
		numWidth, "Dividend",
		numWidth, "Total Tax",
		numWidth, "Net to Owner"))
	sb.WriteString(strings.Repeat("-", 88) + "\n")

	sb.WriteString(tf.formatRow(set.BaseResult, nameWidth, numWidth, true))

	if len(set.AlternativeResults) > 0 {
		sb.WriteString(strings.Repeat("-", 88) + "\n")
		for i := range set.AlternativeResults {
			sb.WriteString(tf.formatRow(&set.AlternativeResults[i], nameWidth, numWidth, false))
		}
	}
	sb.WriteString(strings.Repeat("=", 88) + "\n")

	if len(set.AlternativeResults) > 0 {
		sb.WriteString("\nCOMPARISON TO BASE\n")
		sb.WriteString(strings.Repeat("-", 88) + "\n")
		for _, alt := range set.AlternativeResults {
			sb.WriteString(fmt.Sprintf("\n%s:\n", alt.ScenarioName))

			taxSymbol := tf.deltaSymbol(alt.TaxDiffFromBase.Neg()) // lower taxes are better
			sb.WriteString(fmt.Sprintf("  Tax Impact:   %sCHF %s\n",
				taxSymbol, tf.formatDecimal(alt.TaxDiffFromBase.Abs())))

			netSymbol := tf.deltaSymbol(alt.NetDiffFromBase)
			sb.WriteString(fmt.Sprintf("  Net Impact:   %sCHF %s\n",
				netSymbol, tf.formatDecimal(alt.NetDiffFromBase.Abs())))

			if alt.GrossDividend.GreaterThan(alt.DistributableDividend) {
				sb.WriteString(fmt.Sprintf("  Note:         dividend exceeds the distributable CHF %s\n",
					tf.formatDecimal(alt.DistributableDividend)))
			}
			for _, a := range alt.Breakdown.Anomalies {
				sb.WriteString(fmt.Sprintf("  Note:         %s\n", a.Message))
			}
		}
		sb.WriteString("\n")
	}

	if len(set.Recommendations) > 0 {
		sb.WriteString("\nRECOMMENDATIONS\n")
		sb.WriteString(strings.Repeat("-", 88) + "\n")
		for _, rec := range set.Recommendations {
			sb.WriteString(fmt.Sprintf("- %s\n", rec))
		}
		sb.WriteString("\n")
	}

	return sb.String(), nil
}

// formatRow formats a single scenario row.
func (tf *TableFormatter) formatRow(result *ComparisonResult, nameWidth, numWidth int, isBase bool) string {
	name := result.ScenarioName
	if isBase {
		name += " (base)"
	}
	return fmt.Sprintf("%-*s %*s %*s %*s %*s\n",
		nameWidth, tf.truncate(name, nameWidth),
		numWidth, tf.formatDecimal(result.GrossSalary),
		numWidth, tf.formatDecimal(result.GrossDividend),
		numWidth, tf.formatDecimal(result.Breakdown.Total),
		numWidth, tf.formatDecimal(result.Net.Net))
}

// formatDecimal renders an amount with apostrophe thousands separators, the
// Swiss convention.
func (tf *TableFormatter) formatDecimal(d decimal.Decimal) string {
	s := d.Round(0).StringFixed(0)
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	for i := len(s) - 3; i > 0; i -= 3 {
		s = s[:i] + "'" + s[i:]
	}
	if neg {
		s = "-" + s
	}
	return s
}

// deltaSymbol returns a + or - prefix for deltas.
func (tf *TableFormatter) deltaSymbol(delta decimal.Decimal) string {
	if delta.IsPositive() {
		return "+"
	} else if delta.IsNegative() {
		return "-"
	}
	return " "
}

// truncate truncates a string to maxLen.
func (tf *TableFormatter) truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}

// FormatCompact creates a compact single-line summary of the set.
func (tf *TableFormatter) FormatCompact(set *ComparisonSet) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Base: %s", set.BaseResult.ScenarioName))
	for _, alt := range set.AlternativeResults {
		change := "="
		if alt.NetDiffFromBase.IsPositive() {
			change = "+CHF " + tf.formatDecimal(alt.NetDiffFromBase)
		} else if alt.NetDiffFromBase.IsNegative() {
			change = "-CHF " + tf.formatDecimal(alt.NetDiffFromBase.Abs())
		}
		sb.WriteString(fmt.Sprintf(" | %s: %s", alt.ScenarioName, change))
	}
	return sb.String()
}
