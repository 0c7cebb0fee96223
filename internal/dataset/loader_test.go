package dataset

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lodi-go/lodi/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const multipliersJSON = `[
  {"Kanton": "Kanton", "Gemeinde": "Gemeinde"},
  {"Kanton": "ZH", "Gemeinde": "Zürich", "GemeindeID": "261",
   "Einkommen_Kanton": 0.98, "Einkommen_Gemeinde": 1.19,
   "Gewinn_Kanton": 1.0, "Gewinn_Gemeinde": 1.3,
   "Kirche_Roemisch": 0.10, "Kirche_Reformiert": 0.10},
  {"Kanton": "AG", "Gemeinde": "Aarau", "GemeindeID": "4001",
   "Einkommen_Kanton": 1.09, "Einkommen_Gemeinde": 0.97,
   "Personalsteuer": 24, "Personalsteuer_ProPerson": true},
  {"Kanton": "FR", "Gemeinde": "Freiburg", "GemeindeID": "2196",
   "Einkommen_Kanton": 1.0, "Einkommen_Gemeinde": 0.77}
]`

const cantonTariffsJSON = `{
  "ZH": {"Tarif": "ZUERICH", "Stufen": [
    {"For the next CHF": 6700, "Additional %": 0},
    {"For the next CHF": 4700, "Additional %": 2},
    {"For the next CHF": 4700, "Additional %": 3},
    {"For the next CHF": 0, "Additional %": 5}
  ]},
  "AG": {"Tarif": "FLATTAX", "FlatRate %": 4.5,
   "Personalsteuer": {"Level": "canton", "Amount": 20, "PerPerson": true}},
  "FR": {"Tarif": "FREIBURG", "MarriedDivisor": 1.6, "ChildDivisorStep": 0.25,
   "Stufen": [
    {"For the next CHF": 5000, "Additional %": 0},
    {"For the next CHF": 10000, "Additional %": 1},
    {"For the next CHF": 0, "Additional %": 4}
  ]}
}`

const federalJSON = `[
  {"Taxable income for federal tax": 17800, "Additional %": 0, "Base amount CHF": 0},
  {"Taxable income for federal tax": 31600, "Additional %": 0.77, "Base amount CHF": 0},
  {"Taxable income for federal tax": 41400, "Additional %": 0.88, "Base amount CHF": 106.25}
]`

const corporateJSON = `{"Confederation": 0.085, "ZH": 0.07, "AG": 0.065}`

const socialJSON = `{
  "AHV_IV_EO_EmployeeShare": 0.053, "AHV_IV_EO_EmployerShare": 0.053,
  "ALV_EmployeeShare": 0.011, "ALV_EmployerShare": 0.011,
  "ALV_Ceiling": 148200, "ALV_Solidarity": 0.005,
  "NBU_Rate": 0.004,
  "BVG_EntryThreshold": 22680, "BVG_CoordDeduction": 26460,
  "BVG_MaxInsuredSalary": 90720,
  "BVG_Rate_25_34": 0.07, "BVG_Rate_35_44": 0.10,
  "BVG_Rate_45_54": 0.15, "BVG_Rate_55_65": 0.18
}`

const inclusionJSON = `{"ZH": 0.50, "AG": 0.60}`

const fallbackJSON = `{"schema_version": 1, "cantons": {
  "FR": {"level": "both", "per_person": true, "amount": 15}
}}`

func writeDataset(t *testing.T, overrides map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	files := map[string]string{
		FileMultipliers:       multipliersJSON,
		FileCantonTariffs:     cantonTariffsJSON,
		FileFederalTariff:     federalJSON,
		FileCorporate:         corporateJSON,
		FileSocial:            socialJSON,
		FileDividendInclusion: inclusionJSON,
		FilePersonalFallback:  fallbackJSON,
	}
	for name, content := range overrides {
		if content == "" {
			delete(files, name)
			continue
		}
		files[name] = content
	}
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644))
	}
	return dir
}

func TestLoadFullDataset(t *testing.T) {
	rs, err := NewLoader(writeDataset(t, nil)).Load()
	require.NoError(t, err)

	zh, err := rs.Jurisdiction("ZH", "261")
	require.NoError(t, err)
	assert.Equal(t, domain.TariffMarginal, zh.Tariff.Kind)
	assert.Len(t, zh.Tariff.Brackets, 4)
	assert.True(t, decimal.NewFromFloat(0.98).Equal(zh.CantonMultiplier))
	assert.True(t, decimal.NewFromFloat(1.19).Equal(zh.CommuneMultiplier))
	assert.True(t, decimal.NewFromFloat(0.07).Equal(zh.CorporateBaseRate))

	// Slice widths become cumulative thresholds.
	assert.True(t, decimal.NewFromInt(6700).Equal(zh.Tariff.Brackets[1].Min))
	assert.True(t, decimal.NewFromInt(11400).Equal(zh.Tariff.Brackets[2].Min))
	assert.True(t, zh.Tariff.Brackets[3].Max.IsZero(), "top bracket is open-ended")

	ag, err := rs.Jurisdiction("AG", "4001")
	require.NoError(t, err)
	assert.Equal(t, domain.TariffFlat, ag.Tariff.Kind)
	assert.True(t, decimal.NewFromFloat(0.045).Equal(ag.Tariff.FlatRate))

	// Tariff-sourced personal tax outranks the factor-file amount.
	require.NotNil(t, ag.PersonalTax)
	assert.Equal(t, domain.PersonalSourceTariff, ag.PersonalTax.Source)
	assert.True(t, decimal.NewFromInt(20).Equal(ag.PersonalTax.Amount))

	fr, err := rs.Jurisdiction("FR", "2196")
	require.NoError(t, err)
	assert.Equal(t, domain.TariffSplitting, fr.Tariff.Kind)
	assert.True(t, decimal.NewFromFloat(1.6).Equal(fr.Tariff.MarriedDivisor))

	assert.Equal(t, domain.TariffFederal, rs.FederalTariff.Kind)
	assert.Len(t, rs.FederalTariff.Brackets, 4, "loader appends the open-ended top bracket")

	assert.True(t, decimal.NewFromFloat(0.053).Equal(rs.Social.AHVEmployee))
	assert.True(t, decimal.NewFromFloat(0.10).Equal(rs.Social.BVGRate(40)))

	rate, fellBack := rs.InclusionRate("ZH")
	assert.False(t, fellBack)
	assert.True(t, decimal.NewFromFloat(0.50).Equal(rate))

	require.NotNil(t, rs.PersonalTaxFallback)
	rule, ok := rs.FallbackPersonalTax("FR")
	require.True(t, ok)
	assert.Equal(t, domain.PersonalSourceFallback, rule.Source)
}

func TestMissingOptionalFilesDegradeToDefaults(t *testing.T) {
	dir := writeDataset(t, map[string]string{
		FileDividendInclusion: "",
		FilePersonalFallback:  "",
	})
	rs, err := NewLoader(dir).Load()
	require.NoError(t, err)

	rate, fellBack := rs.InclusionRate("ZH")
	assert.True(t, fellBack)
	assert.True(t, domain.DefaultDividendInclusion.Equal(rate))
	assert.Nil(t, rs.PersonalTaxFallback)
}

func TestMissingRequiredFileIsConfigError(t *testing.T) {
	dir := writeDataset(t, map[string]string{FileSocial: ""})
	_, err := NewLoader(dir).Load()
	require.Error(t, err)
	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}

func TestUnknownTariffKindRejected(t *testing.T) {
	dir := writeDataset(t, map[string]string{
		FileCantonTariffs: `{"ZH": {"Tarif": "MYSTERY"}, "AG": {"Tarif": "FLATTAX", "FlatRate %": 4.5}, "FR": {"Tarif": "FLATTAX", "FlatRate %": 4}}`,
	})
	_, err := NewLoader(dir).Load()
	require.Error(t, err)
	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Message, "MYSTERY")
}

func TestUnsupportedFallbackSchemaVersionRejected(t *testing.T) {
	dir := writeDataset(t, map[string]string{
		FilePersonalFallback: `{"schema_version": 99, "cantons": {}}`,
	})
	_, err := NewLoader(dir).Load()
	require.Error(t, err)
	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, cfgErr.Message, "schema version")
}

func TestInclusionRateOutOfRangeRejected(t *testing.T) {
	dir := writeDataset(t, map[string]string{
		FileDividendInclusion: `{"ZH": 1.7}`,
	})
	_, err := NewLoader(dir).Load()
	require.Error(t, err)
}

func TestMalformedJSONRejected(t *testing.T) {
	dir := writeDataset(t, map[string]string{FileCorporate: `{"ZH": `})
	_, err := NewLoader(dir).Load()
	require.Error(t, err)
	var cfgErr *domain.ConfigError
	require.ErrorAs(t, err, &cfgErr)
}
