package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// TariffKind identifies the tariff algorithm a canton uses. The names follow
// the official dataset tags.
type TariffKind string

const (
	TariffMarginal     TariffKind = "ZUERICH"    // marginal bracket slices
	TariffFederal      TariffKind = "BUND"       // federal brackets + married splitting divisor
	TariffFlat         TariffKind = "FLATTAX"    // single proportional rate
	TariffFormula      TariffKind = "FORMEL"     // rate * income + offset
	TariffFormulaFixed TariffKind = "FORMEL_FIX" // FORMEL with a canton-specific fixed adjustment
	TariffSplitting    TariffKind = "FREIBURG"   // brackets with family splitting divisor
)

// TariffBracket is one record of a piecewise tariff. Min is the lower bound of
// the slice, Max its upper bound, Rate the marginal rate applied inside the
// slice and Base the cumulative tax owed at Min (federal-style schedules).
type TariffBracket struct {
	Min  decimal.Decimal `json:"min"`
	Max  decimal.Decimal `json:"max"`
	Rate decimal.Decimal `json:"rate"`
	Base decimal.Decimal `json:"base"`
}

// TariffSchedule defines the piecewise function from taxable income to base
// tax for one jurisdiction. Which fields are populated depends on Kind.
type TariffSchedule struct {
	Kind     TariffKind      `json:"kind"`
	Brackets []TariffBracket `json:"brackets,omitempty"`

	// FLATTAX
	FlatRate decimal.Decimal `json:"flat_rate,omitempty"`

	// FORMEL / FORMEL_FIX
	Rate            decimal.Decimal `json:"rate,omitempty"`
	Offset          decimal.Decimal `json:"offset,omitempty"`
	FixedAdjustment decimal.Decimal `json:"fixed_adjustment,omitempty"`

	// BUND: divisor applied to married-joint income before bracket lookup.
	// FREIBURG: divisor for a married couple without children.
	MarriedDivisor decimal.Decimal `json:"married_divisor,omitempty"`
	// FREIBURG: divisor increment per dependent child.
	ChildDivisorStep decimal.Decimal `json:"child_divisor_step,omitempty"`
}

// Validate checks the schedule invariants: strictly increasing thresholds and
// non-negative rates. Called once at load time; computation assumes it passed.
func (ts *TariffSchedule) Validate() error {
	switch ts.Kind {
	case TariffMarginal, TariffFederal, TariffSplitting:
		if len(ts.Brackets) == 0 {
			return fmt.Errorf("tariff kind %s requires at least one bracket", ts.Kind)
		}
		prev := decimal.NewFromInt(-1)
		for i, b := range ts.Brackets {
			if b.Min.LessThanOrEqual(prev) && i > 0 {
				return fmt.Errorf("bracket %d: thresholds must be strictly increasing", i)
			}
			if b.Rate.IsNegative() {
				return fmt.Errorf("bracket %d: negative rate", i)
			}
			if !b.Max.IsZero() && b.Max.LessThanOrEqual(b.Min) {
				return fmt.Errorf("bracket %d: max %s not above min %s", i, b.Max, b.Min)
			}
			prev = b.Min
		}
	case TariffFlat:
		if ts.FlatRate.IsNegative() {
			return fmt.Errorf("flat rate must not be negative")
		}
	case TariffFormula, TariffFormulaFixed:
		if ts.Rate.IsNegative() {
			return fmt.Errorf("formula rate must not be negative")
		}
	default:
		return fmt.Errorf("unknown tariff kind %q", ts.Kind)
	}
	return nil
}

// PersonalTaxLevel says at which government level a head tax is charged.
type PersonalTaxLevel string

const (
	PersonalLevelCanton  PersonalTaxLevel = "canton"
	PersonalLevelCommune PersonalTaxLevel = "commune"
	PersonalLevelBoth    PersonalTaxLevel = "both"
)

// PersonalTaxSource records which resolution path produced a rule. Exactly
// one path wins per canton; amounts are never summed across sources.
type PersonalTaxSource string

const (
	PersonalSourceTariff   PersonalTaxSource = "tariff"
	PersonalSourceFactor   PersonalTaxSource = "factor"
	PersonalSourceFallback PersonalTaxSource = "fallback"
)

// PersonalTaxRule describes a Personalsteuer (head tax). Either Amount is set
// or the [AmountMin, AmountMax] range is; a range resolves to its midpoint.
type PersonalTaxRule struct {
	Level     PersonalTaxLevel `json:"level"`
	PerPerson bool             `json:"per_person"`
	// OneFilerOnly restricts a per-person rule to a single charge even for
	// married-joint filers.
	OneFilerOnly bool              `json:"one_filer_only,omitempty"`
	Amount       decimal.Decimal   `json:"amount,omitempty"`
	AmountMin    decimal.Decimal   `json:"amount_min,omitempty"`
	AmountMax    decimal.Decimal   `json:"amount_max,omitempty"`
	Source       PersonalTaxSource `json:"source,omitempty"`
}

// ResolvedAmount returns the per-charge amount: the fixed amount if present,
// otherwise the midpoint of the range rounded to whole francs.
func (r *PersonalTaxRule) ResolvedAmount() decimal.Decimal {
	if !r.Amount.IsZero() {
		return r.Amount
	}
	if r.AmountMin.IsZero() && r.AmountMax.IsZero() {
		return decimal.Zero
	}
	two := decimal.NewFromInt(2)
	return r.AmountMin.Add(r.AmountMax).Div(two).Round(0)
}

// PersonalTaxFallback is the versioned JSON fallback map consulted when a
// canton's primary dataset carries no personal-tax parameters.
type PersonalTaxFallback struct {
	SchemaVersion int                        `json:"schema_version"`
	Cantons       map[string]PersonalTaxRule `json:"cantons"`
}

// PersonalTaxFallbackSchemaVersion is the only schema major this build reads.
const PersonalTaxFallbackSchemaVersion = 1

// Confession selects the church-tax multiplier that applies to a filer.
type Confession string

const (
	ConfessionNone       Confession = "none"
	ConfessionRoman      Confession = "roman_catholic"
	ConfessionProtestant Confession = "protestant"
	ConfessionChristian  Confession = "christian_catholic"
)

// MaritalStatus of the filer; married couples file jointly.
type MaritalStatus string

const (
	StatusSingle  MaritalStatus = "single"
	StatusMarried MaritalStatus = "married"
)

// BVGBand is one age band of the occupational pension scheme with its total
// contribution rate (split half employee / half employer).
type BVGBand struct {
	MinAge int             `json:"min_age"`
	MaxAge int             `json:"max_age"`
	Rate   decimal.Decimal `json:"rate"`
}

// SocialRates carries the social insurance parameters used to derive the
// employment taxable base and the employer-side cost of a salary.
type SocialRates struct {
	AHVEmployee decimal.Decimal `json:"ahv_iv_eo_employee"`
	AHVEmployer decimal.Decimal `json:"ahv_iv_eo_employer"`

	ALVEmployee   decimal.Decimal `json:"alv_employee"`
	ALVEmployer   decimal.Decimal `json:"alv_employer"`
	ALVCeiling    decimal.Decimal `json:"alv_ceiling"`
	ALVSolidarity decimal.Decimal `json:"alv_solidarity"` // employer side, above ceiling

	NBURate decimal.Decimal `json:"nbu_rate"` // capped at ALVCeiling

	BVGEntryThreshold decimal.Decimal `json:"bvg_entry_threshold"`
	BVGCoordDeduction decimal.Decimal `json:"bvg_coord_deduction"`
	BVGMaxInsured     decimal.Decimal `json:"bvg_max_insured"`
	BVGBands          []BVGBand       `json:"bvg_bands"`
}

// BVGRate returns the total BVG rate for an age, zero outside all bands.
func (sr *SocialRates) BVGRate(age int) decimal.Decimal {
	for _, b := range sr.BVGBands {
		if age >= b.MinAge && age <= b.MaxAge {
			return b.Rate
		}
	}
	return decimal.Zero
}

// Jurisdiction is the immutable per-commune view of the rule data: tariff,
// multipliers and the optional primary-source personal tax rule.
type Jurisdiction struct {
	CantonCode  string `json:"canton_code"`
	CommuneCode string `json:"commune_code"`
	CantonName  string `json:"canton_name"`
	CommuneName string `json:"commune_name"`

	Tariff TariffSchedule `json:"tariff"`

	CantonMultiplier  decimal.Decimal                `json:"canton_multiplier"`
	CommuneMultiplier decimal.Decimal                `json:"commune_multiplier"`
	ChurchMultipliers map[Confession]decimal.Decimal `json:"church_multipliers,omitempty"`

	// PersonalTax is the tariff- or factor-sourced head tax rule, nil when
	// the primary dataset has none (the fallback map is consulted then).
	PersonalTax *PersonalTaxRule `json:"personal_tax,omitempty"`

	// Corporate profit tax parameters.
	CorporateBaseRate     decimal.Decimal `json:"corporate_base_rate"`
	CorpCantonMultiplier  decimal.Decimal `json:"corp_canton_multiplier"`
	CorpCommuneMultiplier decimal.Decimal `json:"corp_commune_multiplier"`
}

// ChurchMultiplier returns the multiplier for a confession, zero when the
// confession owes no church tax or the jurisdiction records none.
func (j *Jurisdiction) ChurchMultiplier(c Confession) decimal.Decimal {
	if c == ConfessionNone || j.ChurchMultipliers == nil {
		return decimal.Zero
	}
	return j.ChurchMultipliers[c]
}

// FederalDividendInclusion is the fixed federal partial-taxation rate for
// qualifying dividends (art. 20 DBG).
var FederalDividendInclusion = decimal.NewFromFloat(0.70)

// DefaultDividendInclusion is the documented fallback when a canton has no
// entry in the inclusion map. It mirrors the federal 70% rule.
var DefaultDividendInclusion = decimal.NewFromFloat(0.70)

// DefaultFederalCorporateRate is the confederation profit tax rate used when
// the corporate dataset omits it.
var DefaultFederalCorporateRate = decimal.NewFromFloat(0.085)

// RuleSet is the Rule Repository: the whole jurisdiction dataset, loaded once
// at startup and shared read-only by every computation. It is threaded
// explicitly as a parameter, never held in a package global.
type RuleSet struct {
	// Jurisdictions is keyed canton code, then commune code.
	Jurisdictions map[string]map[string]*Jurisdiction

	FederalTariff        TariffSchedule
	FederalCorporateRate decimal.Decimal

	// DividendInclusion maps canton code to the cantonal inclusion rate.
	DividendInclusion map[string]decimal.Decimal

	PersonalTaxFallback *PersonalTaxFallback

	Social SocialRates
}

// Jurisdiction resolves a canton/commune pair. Missing data is a
// configuration error, never a silent default.
func (rs *RuleSet) Jurisdiction(canton, commune string) (*Jurisdiction, error) {
	communes, ok := rs.Jurisdictions[canton]
	if !ok {
		return nil, &ConfigError{Op: "jurisdiction", Message: fmt.Sprintf("canton %q not in rule set", canton)}
	}
	jur, ok := communes[commune]
	if !ok {
		return nil, &ConfigError{Op: "jurisdiction", Message: fmt.Sprintf("commune %q not in canton %q", commune, canton)}
	}
	return jur, nil
}

// Cantons returns the sorted-insertion map of canton codes to commune codes;
// callers sort for display.
func (rs *RuleSet) Cantons() []string {
	out := make([]string, 0, len(rs.Jurisdictions))
	for c := range rs.Jurisdictions {
		out = append(out, c)
	}
	return out
}

// InclusionRate returns the cantonal dividend inclusion rate and whether the
// documented fallback had to be used because the canton has no entry.
func (rs *RuleSet) InclusionRate(canton string) (decimal.Decimal, bool) {
	if rs.DividendInclusion != nil {
		if r, ok := rs.DividendInclusion[canton]; ok {
			return r, false
		}
	}
	return DefaultDividendInclusion, true
}

// FallbackPersonalTax looks up the versioned fallback map for a canton.
func (rs *RuleSet) FallbackPersonalTax(canton string) (*PersonalTaxRule, bool) {
	if rs.PersonalTaxFallback == nil {
		return nil, false
	}
	rule, ok := rs.PersonalTaxFallback.Cantons[canton]
	if !ok {
		return nil, false
	}
	rule.Source = PersonalSourceFallback
	return &rule, true
}
