package compare

import (
	"encoding/csv"
	"fmt"
	"strings"
)

// CSVFormatter formats comparison results as CSV.
type CSVFormatter struct{}

// Format generates CSV output for comparison results.
func (cf *CSVFormatter) Format(set *ComparisonSet) (string, error) {
	if set == nil || set.BaseResult == nil {
		return "", fmt.Errorf("comparison set has no base result")
	}

	var sb strings.Builder
	writer := csv.NewWriter(&sb)

	header := []string{
		"Scenario",
		"Type",
		"Gross Salary",
		"Gross Dividend",
		"Distributable Dividend",
		"Federal Tax",
		"Cantonal Tax",
		"Communal Tax",
		"Church Tax",
		"Personal Tax",
		"Total Tax",
		"Net to Owner",
		"Tax Diff from Base",
		"Net Diff from Base",
	}
	if err := writer.Write(header); err != nil {
		return "", err
	}

	if err := writer.Write(cf.formatRow(set.BaseResult, "base")); err != nil {
		return "", err
	}
	for i := range set.AlternativeResults {
		if err := writer.Write(cf.formatRow(&set.AlternativeResults[i], "alternative")); err != nil {
			return "", err
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", err
	}
	return sb.String(), nil
}

// formatRow formats a comparison result as a CSV row.
func (cf *CSVFormatter) formatRow(result *ComparisonResult, scenarioType string) []string {
	return []string{
		result.ScenarioName,
		scenarioType,
		result.GrossSalary.StringFixed(2),
		result.GrossDividend.StringFixed(2),
		result.DistributableDividend.StringFixed(2),
		result.Breakdown.Federal.StringFixed(2),
		result.Breakdown.Cantonal.StringFixed(2),
		result.Breakdown.Communal.StringFixed(2),
		result.Breakdown.Church.StringFixed(2),
		result.Breakdown.Personal.StringFixed(2),
		result.Breakdown.Total.StringFixed(2),
		result.Net.Net.StringFixed(2),
		result.TaxDiffFromBase.StringFixed(2),
		result.NetDiffFromBase.StringFixed(2),
	}
}
