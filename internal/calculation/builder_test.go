package calculation

import (
	"testing"

	"github.com/lodi-go/lodi/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmploymentBaseDeductions(t *testing.T) {
	// Canton ZH, single, gross 150'000, no dividend: AHV 5.3% uncapped,
	// ALV 1.1% and NBU 0.4% on the capped wage base of 148'200.
	cc := NewContributionCalculator(testSocialRates())
	d := cc.EmployeeDeductions(dec(150000), dec(0), 24) // 24: below every BVG band

	assert.True(t, dec(7950).Equal(d.AHV), "AHV: got %s", d.AHV)
	assert.True(t, dec(1630.20).Equal(d.ALV), "ALV: got %s", d.ALV)
	assert.True(t, dec(592.80).Equal(d.NBU), "NBU: got %s", d.NBU)
	assert.True(t, d.BVG.IsZero())

	base := dec(150000).Sub(d.Total())
	assert.True(t, dec(139827).Equal(base), "taxable base: got %s", base)
}

func TestBVGBandSelection(t *testing.T) {
	cc := NewContributionCalculator(testSocialRates())
	insured := dec(90720).Sub(dec(26460)) // coordinated salary at the cap

	tests := []struct {
		age  int
		rate float64
	}{
		{24, 0},
		{30, 0.07},
		{40, 0.10},
		{50, 0.15},
		{60, 0.18},
		{70, 0},
	}
	for _, tc := range tests {
		d := cc.EmployeeDeductions(dec(120000), dec(0), tc.age)
		want := insured.Mul(dec(tc.rate)).Div(dec(2))
		assert.True(t, want.Equal(d.BVG), "age %d: want %s, got %s", tc.age, want, d.BVG)
	}
}

func TestBVGBelowEntryThreshold(t *testing.T) {
	cc := NewContributionCalculator(testSocialRates())
	d := cc.EmployeeDeductions(dec(20000), dec(0), 40)
	assert.True(t, d.BVG.IsZero(), "no BVG below the entry threshold")
}

func TestBuyInCappedAtGross(t *testing.T) {
	cc := NewContributionCalculator(testSocialRates())
	d := cc.EmployeeDeductions(dec(30000), dec(100000), 24)
	assert.True(t, dec(30000).Equal(d.BuyIn), "buy-in cannot exceed gross, got %s", d.BuyIn)
}

func TestEmploymentBaseClampedToZero(t *testing.T) {
	b := NewScenarioBuilder(testRuleSet())
	in := testInputs()
	in.TargetPayout = dec(20000)
	in.PensionBuyIn = dec(50000)

	jur, err := b.Rules.Jurisdiction("ZH", "261")
	require.NoError(t, err)
	sc := b.BuildSplit(ScenarioSalaryOnly, in, jur, dec(20000))
	assert.True(t, sc.EmploymentBase.IsZero(), "base must not go negative, got %s", sc.EmploymentBase)
}

func TestBuildSalaryOnlyAndMixed(t *testing.T) {
	b := NewScenarioBuilder(testRuleSet())
	in := testInputs()
	in.MinSalary = dec(60000)

	salary, mixed, err := b.Build(in)
	require.NoError(t, err)

	assert.True(t, dec(200000).Equal(salary.GrossSalary))
	assert.True(t, salary.GrossDividend.IsZero())

	assert.True(t, dec(60000).Equal(mixed.GrossSalary))
	assert.True(t, dec(140000).Equal(mixed.GrossDividend))
	assert.True(t, mixed.GrossSalary.Add(mixed.GrossDividend).Equal(dec(200000)))
}

func TestStriktModeCollapsesMixedScenario(t *testing.T) {
	b := NewScenarioBuilder(testRuleSet())
	in := testInputs()
	in.Profit = dec(40000)
	in.TargetPayout = dec(40000)
	in.Strikt = true
	in.MinSalary = dec(60000)

	salary, mixed, err := b.Build(in)
	require.NoError(t, err)

	// Payout below the floor: no partial dividend, B equals A exactly.
	assert.True(t, mixed.GrossDividend.IsZero())
	assert.True(t, mixed.GrossSalary.Equal(salary.GrossSalary))
	assert.True(t, mixed.EmploymentBase.Equal(salary.EmploymentBase))
	assert.True(t, mixed.CorporateTax.Equal(salary.CorporateTax))

	agg := NewLevyAggregator(b.Rules)
	jur, err := b.Rules.Jurisdiction("ZH", "261")
	require.NoError(t, err)
	bdA, err := agg.Aggregate(salary, jur)
	require.NoError(t, err)
	bdB, err := agg.Aggregate(mixed, jur)
	require.NoError(t, err)
	assert.True(t, bdA.Total.Equal(bdB.Total), "collapsed scenario must produce an identical breakdown")
}

func TestDistributableDividend(t *testing.T) {
	rules := testRuleSet()
	b := NewScenarioBuilder(rules)
	in := testInputs()
	jur, err := rules.Jurisdiction("ZH", "261")
	require.NoError(t, err)

	salary := dec(100000)
	employer := b.Contributions.EmployerCost(salary, in.Age)
	retained := in.Profit.Sub(salary).Sub(employer)
	want := retained.Mul(dec(1).Sub(TotalCorporateRate(rules, jur)))

	got := b.DistributableDividend(in, jur, salary)
	assert.True(t, want.Equal(got), "want %s, got %s", want, got)
	assert.True(t, got.LessThan(retained), "corporate tax reduces the distributable dividend")
}

func TestEffectivePayout(t *testing.T) {
	in := domain.OwnerInputs{Profit: dec(300000)}
	assert.True(t, dec(300000).Equal(EffectivePayout(in)), "no target: full profit")

	in.TargetPayout = dec(120000)
	assert.True(t, dec(120000).Equal(EffectivePayout(in)))

	in.TargetPayout = dec(500000)
	assert.True(t, dec(300000).Equal(EffectivePayout(in)), "target is capped at profit")
}
