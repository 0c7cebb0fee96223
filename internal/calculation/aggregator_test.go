package calculation

import (
	"testing"

	"github.com/lodi-go/lodi/internal/domain"
	"github.com/lodi-go/lodi/internal/tariff"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testScenario(dividend float64) domain.IncomeScenario {
	return domain.IncomeScenario{
		Name:           "fixture",
		GrossSalary:    dec(100000),
		GrossDividend:  dec(dividend),
		MaritalStatus:  domain.StatusSingle,
		Confession:     domain.ConfessionNone,
		EmploymentBase: dec(93000),
	}
}

func TestFederalDividendInclusionIsFixed(t *testing.T) {
	rules := testRuleSet()
	agg := NewLevyAggregator(rules)
	sc := testScenario(50000)

	zh, err := rules.Jurisdiction("ZH", "261")
	require.NoError(t, err)
	lu, err := rules.Jurisdiction("LU", "1061")
	require.NoError(t, err)

	bdZH, err := agg.Aggregate(sc, zh)
	require.NoError(t, err)
	bdLU, err := agg.Aggregate(sc, lu)
	require.NoError(t, err)

	// Cantonal inclusion differs (0.50 vs fallback 0.70) but the federal
	// component is always computed on dividend * 0.70.
	assert.True(t, bdZH.Federal.Equal(bdLU.Federal))

	engine := tariff.NewEngine()
	expectedBase := sc.EmploymentBase.Add(dec(50000).Mul(dec(0.70))).Add(sc.OtherIncome)
	want, err := engine.ComputeBaseTax(rules.FederalTariff, expectedBase, tariff.Filing{Status: sc.MaritalStatus})
	require.NoError(t, err)
	assert.True(t, want.Equal(bdZH.Federal))
}

func TestCantonalInclusionFallback(t *testing.T) {
	rules := testRuleSet()

	rate, fellBack := rules.InclusionRate("LU")
	assert.True(t, fellBack)
	assert.True(t, domain.DefaultDividendInclusion.Equal(rate), "fallback must be the documented default, got %s", rate)

	agg := NewLevyAggregator(rules)
	lu, err := rules.Jurisdiction("LU", "1061")
	require.NoError(t, err)
	bd, err := agg.Aggregate(testScenario(50000), lu)
	require.NoError(t, err)

	found := false
	for _, an := range bd.Anomalies {
		if an.Code == domain.AnomalyFallbackUsed {
			found = true
		}
	}
	assert.True(t, found, "fallback use must surface as an anomaly")
}

func TestCommunalAndChurchReuseCantonalBaseTax(t *testing.T) {
	rules := testRuleSet()
	agg := NewLevyAggregator(rules)
	zh, err := rules.Jurisdiction("ZH", "261")
	require.NoError(t, err)

	sc := testScenario(0)
	sc.Confession = domain.ConfessionProtestant
	bd, err := agg.Aggregate(sc, zh)
	require.NoError(t, err)

	engine := tariff.NewEngine()
	baseTax, err := engine.ComputeBaseTax(zh.Tariff, sc.EmploymentBase, tariff.Filing{Status: sc.MaritalStatus})
	require.NoError(t, err)

	assert.True(t, baseTax.Mul(zh.CantonMultiplier).Equal(bd.Cantonal))
	assert.True(t, baseTax.Mul(zh.CommuneMultiplier).Equal(bd.Communal), "communal tax reuses the same engine result")
	assert.True(t, baseTax.Mul(dec(0.10)).Equal(bd.Church))
}

func TestChurchTaxZeroWithoutConfession(t *testing.T) {
	rules := testRuleSet()
	agg := NewLevyAggregator(rules)
	zh, err := rules.Jurisdiction("ZH", "261")
	require.NoError(t, err)

	bd, err := agg.Aggregate(testScenario(0), zh)
	require.NoError(t, err)
	assert.True(t, bd.Church.IsZero())
}

func TestPersonalTaxPerPersonDoublesForMarried(t *testing.T) {
	rules := testRuleSet()
	agg := NewLevyAggregator(rules)
	ag, err := rules.Jurisdiction("AG", "4001")
	require.NoError(t, err)

	single := testScenario(0)
	bd, err := agg.Aggregate(single, ag)
	require.NoError(t, err)
	assert.True(t, dec(24).Equal(bd.Personal), "single filer pays once, got %s", bd.Personal)

	married := single
	married.MaritalStatus = domain.StatusMarried
	bd, err = agg.Aggregate(married, ag)
	require.NoError(t, err)
	assert.True(t, dec(48).Equal(bd.Personal), "per-person rule charges once per spouse, got %s", bd.Personal)
}

func TestPersonalTaxNeverDoubleCounted(t *testing.T) {
	// AG carries both a factor-sourced rule (24) and a fallback entry (1000);
	// only the higher-priority source may contribute.
	rules := testRuleSet()
	agg := NewLevyAggregator(rules)
	ag, err := rules.Jurisdiction("AG", "4001")
	require.NoError(t, err)

	bd, err := agg.Aggregate(testScenario(0), ag)
	require.NoError(t, err)
	assert.True(t, dec(24).Equal(bd.Personal), "factor-sourced amount must win alone, got %s", bd.Personal)
}

func TestPersonalTaxRangeResolvesToMidpoint(t *testing.T) {
	rules := testRuleSet()
	agg := NewLevyAggregator(rules)
	lu, err := rules.Jurisdiction("LU", "1061")
	require.NoError(t, err)

	bd, err := agg.Aggregate(testScenario(0), lu)
	require.NoError(t, err)
	assert.True(t, dec(40).Equal(bd.Personal), "range [20,60] resolves to its midpoint, got %s", bd.Personal)
}

func TestMissingJurisdictionIsConfigError(t *testing.T) {
	rules := testRuleSet()
	_, err := rules.Jurisdiction("TI", "5001")
	require.Error(t, err)
	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)

	_, err = rules.Jurisdiction("ZH", "9999")
	require.Error(t, err)
}

func TestTotalIsSumOfComponents(t *testing.T) {
	rules := testRuleSet()
	agg := NewLevyAggregator(rules)
	ag, err := rules.Jurisdiction("AG", "4001")
	require.NoError(t, err)

	sc := testScenario(80000)
	sc.Confession = domain.ConfessionRoman
	bd, err := agg.Aggregate(sc, ag)
	require.NoError(t, err)

	sum := bd.Federal.Add(bd.Cantonal).Add(bd.Communal).Add(bd.Church).Add(bd.Personal)
	assert.True(t, sum.Equal(bd.Total))
	assert.False(t, bd.Total.IsNegative())
}
