package compare

import (
	"github.com/lodi-go/lodi/internal/domain"
	"github.com/shopspring/decimal"
)

// ComparisonResult is one scenario with its computed metrics.
type ComparisonResult struct {
	ScenarioName  string          `json:"scenarioName"`
	GrossSalary   decimal.Decimal `json:"grossSalary"`
	GrossDividend decimal.Decimal `json:"grossDividend"`

	// DistributableDividend is the dividend the company could fund out of
	// retained profit after employer charges and corporate tax. A gross
	// dividend above it is flagged in the formatted output.
	DistributableDividend decimal.Decimal `json:"distributableDividend"`

	Breakdown *domain.TaxBreakdown `json:"breakdown"`
	Net       domain.NetProceeds   `json:"net"`

	// Deltas against the base scenario.
	TaxDiffFromBase decimal.Decimal `json:"taxDiffFromBase"`
	NetDiffFromBase decimal.Decimal `json:"netDiffFromBase"`
}

// ComparisonSet collects the base scenario and its alternatives.
type ComparisonSet struct {
	Canton  string `json:"canton"`
	Commune string `json:"commune"`

	BaseResult         *ComparisonResult  `json:"baseResult"`
	AlternativeResults []ComparisonResult `json:"alternativeResults"`
	Recommendations    []string           `json:"recommendations"`
}

// CalculateComparison fills a result's deltas against the base.
func CalculateComparison(result, base ComparisonResult) ComparisonResult {
	result.TaxDiffFromBase = result.Breakdown.Total.Sub(base.Breakdown.Total)
	result.NetDiffFromBase = result.Net.Net.Sub(base.Net.Net)
	return result
}

// GenerateRecommendations derives plain-language guidance from a set.
func GenerateRecommendations(set *ComparisonSet) []string {
	var recs []string
	if set.BaseResult == nil || len(set.AlternativeResults) == 0 {
		return recs
	}

	bestNet := *set.BaseResult
	for _, alt := range set.AlternativeResults {
		if alt.Net.Net.GreaterThan(bestNet.Net.Net) {
			bestNet = alt
		}
	}
	if bestNet.ScenarioName != set.BaseResult.ScenarioName {
		diff := bestNet.Net.Net.Sub(set.BaseResult.Net.Net)
		recs = append(recs, "Best net: "+bestNet.ScenarioName+" leaves CHF "+diff.StringFixed(0)+" more to the owner")
	}

	lowestTax := *set.BaseResult
	for _, alt := range set.AlternativeResults {
		if alt.Breakdown.Total.LessThan(lowestTax.Breakdown.Total) {
			lowestTax = alt
		}
	}
	if lowestTax.ScenarioName != set.BaseResult.ScenarioName {
		saving := set.BaseResult.Breakdown.Total.Sub(lowestTax.Breakdown.Total)
		recs = append(recs, "Lowest taxes: "+lowestTax.ScenarioName+" saves CHF "+saving.StringFixed(0))
	}
	return recs
}
