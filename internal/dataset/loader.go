package dataset

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
	"github.com/lodi-go/lodi/internal/domain"
	"github.com/lodi-go/lodi/internal/tariff"
	"github.com/shopspring/decimal"
)

// File names of the raw JSON dumps shipped with the dataset.
const (
	FileMultipliers       = "Steuerfuesse.json"
	FileCantonTariffs     = "Income_Tax_Cantons.json"
	FileFederalTariff     = "Income_Tax_Confederation.json"
	FileCorporate         = "Corporate_Income_Tax.json"
	FileSocial            = "Social_Security_Contributions.json"
	FileDividendInclusion = "Teilbesteuerung_Dividenden.json" // optional
	FilePersonalFallback  = "Personalsteuer_Fallback.json"    // optional
)

// Loader parses the on-disk jurisdiction dataset into the immutable RuleSet
// the computation core consumes. All I/O happens here, before any
// computation starts.
type Loader struct {
	Dir string
}

// NewLoader creates a loader rooted at a dataset directory.
func NewLoader(dir string) *Loader {
	return &Loader{Dir: dir}
}

// multiplierRow mirrors one row of the Steuerfuesse dump. Numeric fields are
// pointers because the dump carries nulls for communes without a value.
type multiplierRow struct {
	Kanton     string `json:"Kanton"`
	Gemeinde   string `json:"Gemeinde"`
	GemeindeID string `json:"GemeindeID"`

	EinkommenKanton   *float64 `json:"Einkommen_Kanton"`
	EinkommenGemeinde *float64 `json:"Einkommen_Gemeinde"`
	GewinnKanton      *float64 `json:"Gewinn_Kanton"`
	GewinnGemeinde    *float64 `json:"Gewinn_Gemeinde"`

	KircheRoemisch         *float64 `json:"Kirche_Roemisch"`
	KircheReformiert       *float64 `json:"Kirche_Reformiert"`
	KircheChristkatholisch *float64 `json:"Kirche_Christkatholisch"`

	Personalsteuer          *float64 `json:"Personalsteuer"`
	PersonalsteuerProPerson bool     `json:"Personalsteuer_ProPerson"`
}

// cantonTariff mirrors one canton's entry of the Income_Tax_Cantons dump.
type cantonTariff struct {
	Tarif  string `json:"Tarif"`
	Stufen []struct {
		ForTheNextCHF *float64 `json:"For the next CHF"`
		AdditionalPct *float64 `json:"Additional %"`
	} `json:"Stufen"`

	FlatRatePct        *float64 `json:"FlatRate %"`
	RatePct            *float64 `json:"Rate %"`
	OffsetCHF          *float64 `json:"Offset CHF"`
	FixedAdjustmentCHF *float64 `json:"FixedAdjustment CHF"`
	MarriedDivisor     *float64 `json:"MarriedDivisor"`
	ChildDivisorStep   *float64 `json:"ChildDivisorStep"`

	// Tariff-sourced head tax, highest priority in the resolution chain.
	Personalsteuer *struct {
		Level     string   `json:"Level"`
		Amount    *float64 `json:"Amount"`
		PerPerson bool     `json:"PerPerson"`
	} `json:"Personalsteuer"`
}

// federalRow mirrors one row of the Income_Tax_Confederation dump.
type federalRow struct {
	Threshold     *float64 `json:"Taxable income for federal tax"`
	AdditionalPct *float64 `json:"Additional %"`
	BaseCHF       *float64 `json:"Base amount CHF"`
}

type socialDump struct {
	AHVEmployee *float64 `json:"AHV_IV_EO_EmployeeShare"`
	AHVEmployer *float64 `json:"AHV_IV_EO_EmployerShare"`

	ALVEmployee   *float64 `json:"ALV_EmployeeShare"`
	ALVEmployer   *float64 `json:"ALV_EmployerShare"`
	ALVCeiling    *float64 `json:"ALV_Ceiling"`
	ALVSolidarity *float64 `json:"ALV_Solidarity"`

	NBURate *float64 `json:"NBU_Rate"`

	BVGEntryThreshold *float64 `json:"BVG_EntryThreshold"`
	BVGCoordDeduction *float64 `json:"BVG_CoordDeduction"`
	BVGMaxInsured     *float64 `json:"BVG_MaxInsuredSalary"`
	BVGRate2534       *float64 `json:"BVG_Rate_25_34"`
	BVGRate3544       *float64 `json:"BVG_Rate_35_44"`
	BVGRate4554       *float64 `json:"BVG_Rate_45_54"`
	BVGRate5565       *float64 `json:"BVG_Rate_55_65"`
}

// Load reads and validates the whole dataset. Optional files degrade to
// documented defaults; required files and schedule invariants fail hard.
func (l *Loader) Load() (*domain.RuleSet, error) {
	rs := &domain.RuleSet{
		Jurisdictions:     map[string]map[string]*domain.Jurisdiction{},
		DividendInclusion: map[string]decimal.Decimal{},
	}

	tariffs, err := l.loadCantonTariffs()
	if err != nil {
		return nil, err
	}
	if err := l.loadMultipliers(rs, tariffs); err != nil {
		return nil, err
	}
	if err := l.loadFederalTariff(rs); err != nil {
		return nil, err
	}
	if err := l.loadCorporate(rs); err != nil {
		return nil, err
	}
	if err := l.loadSocial(rs); err != nil {
		return nil, err
	}
	if err := l.loadDividendInclusion(rs); err != nil {
		return nil, err
	}
	if err := l.loadPersonalFallback(rs); err != nil {
		return nil, err
	}

	if err := l.validateSchedules(rs); err != nil {
		return nil, err
	}
	return rs, nil
}

func (l *Loader) readJSON(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(l.Dir, name))
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return &domain.ConfigError{Op: "load", Message: fmt.Sprintf("malformed %s", name), Cause: err}
	}
	return nil
}

func (l *Loader) loadCantonTariffs() (map[string]cantonTariff, error) {
	var raw map[string]cantonTariff
	if err := l.readJSON(FileCantonTariffs, &raw); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &domain.ConfigError{Op: "load", Message: FileCantonTariffs + " is required", Cause: err}
		}
		return nil, err
	}
	return raw, nil
}

func (l *Loader) loadMultipliers(rs *domain.RuleSet, tariffs map[string]cantonTariff) error {
	var rows []multiplierRow
	if err := l.readJSON(FileMultipliers, &rows); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &domain.ConfigError{Op: "load", Message: FileMultipliers + " is required", Cause: err}
		}
		return err
	}

	for _, row := range rows {
		if row.Kanton == "" || row.Gemeinde == "" || row.Kanton == "Kanton" {
			continue // header or filler rows in the raw dump
		}
		raw, ok := tariffs[row.Kanton]
		if !ok {
			return &domain.ConfigError{Op: "load",
				Message: fmt.Sprintf("canton %s has multipliers but no tariff entry", row.Kanton)}
		}
		sched, personal, err := buildSchedule(row.Kanton, raw)
		if err != nil {
			return err
		}

		jur := &domain.Jurisdiction{
			CantonCode:  row.Kanton,
			CommuneCode: communeCode(row),
			CantonName:  row.Kanton,
			CommuneName: row.Gemeinde,
			Tariff:      sched,

			CantonMultiplier:  num(row.EinkommenKanton),
			CommuneMultiplier: num(row.EinkommenGemeinde),
			ChurchMultipliers: map[domain.Confession]decimal.Decimal{
				domain.ConfessionRoman:      num(row.KircheRoemisch),
				domain.ConfessionProtestant: num(row.KircheReformiert),
				domain.ConfessionChristian:  num(row.KircheChristkatholisch),
			},

			CorpCantonMultiplier:  num(row.GewinnKanton),
			CorpCommuneMultiplier: num(row.GewinnGemeinde),
		}

		switch {
		case personal != nil:
			jur.PersonalTax = personal
		case row.Personalsteuer != nil:
			jur.PersonalTax = &domain.PersonalTaxRule{
				Level:     domain.PersonalLevelCanton,
				PerPerson: row.PersonalsteuerProPerson,
				Amount:    num(row.Personalsteuer),
				Source:    domain.PersonalSourceFactor,
			}
		}

		if rs.Jurisdictions[row.Kanton] == nil {
			rs.Jurisdictions[row.Kanton] = map[string]*domain.Jurisdiction{}
		}
		rs.Jurisdictions[row.Kanton][jur.CommuneCode] = jur
	}

	if len(rs.Jurisdictions) == 0 {
		return &domain.ConfigError{Op: "load", Message: FileMultipliers + " contains no usable rows"}
	}
	return nil
}

// buildSchedule converts one raw canton entry into a TariffSchedule plus the
// tariff-sourced personal tax rule, if the tariff file states one.
func buildSchedule(canton string, raw cantonTariff) (domain.TariffSchedule, *domain.PersonalTaxRule, error) {
	kind := domain.TariffKind(raw.Tarif)
	sched := domain.TariffSchedule{Kind: kind}

	switch kind {
	case domain.TariffMarginal, domain.TariffSplitting:
		// "For the next CHF" slices become cumulative [Min, Max) brackets;
		// the last slice is open-ended.
		lower := decimal.Zero
		for i, st := range raw.Stufen {
			width := num(st.ForTheNextCHF)
			b := domain.TariffBracket{
				Min:  lower,
				Rate: num(st.AdditionalPct).Div(decimal.NewFromInt(100)),
			}
			if i < len(raw.Stufen)-1 {
				b.Max = lower.Add(width)
			}
			sched.Brackets = append(sched.Brackets, b)
			lower = lower.Add(width)
		}
		sched.MarriedDivisor = num(raw.MarriedDivisor)
		sched.ChildDivisorStep = num(raw.ChildDivisorStep)

	case domain.TariffFlat:
		sched.FlatRate = num(raw.FlatRatePct).Div(decimal.NewFromInt(100))

	case domain.TariffFormula, domain.TariffFormulaFixed:
		sched.Rate = num(raw.RatePct).Div(decimal.NewFromInt(100))
		sched.Offset = num(raw.OffsetCHF)
		sched.FixedAdjustment = num(raw.FixedAdjustmentCHF)

	default:
		return sched, nil, &domain.ConfigError{Op: "load",
			Message: fmt.Sprintf("canton %s declares unknown tariff kind %q", canton, raw.Tarif)}
	}

	var personal *domain.PersonalTaxRule
	if raw.Personalsteuer != nil {
		level := domain.PersonalTaxLevel(raw.Personalsteuer.Level)
		if level == "" {
			level = domain.PersonalLevelCanton
		}
		personal = &domain.PersonalTaxRule{
			Level:     level,
			PerPerson: raw.Personalsteuer.PerPerson,
			Amount:    num(raw.Personalsteuer.Amount),
			Source:    domain.PersonalSourceTariff,
		}
	}
	return sched, personal, nil
}

func (l *Loader) loadFederalTariff(rs *domain.RuleSet) error {
	var rows []federalRow
	if err := l.readJSON(FileFederalTariff, &rows); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &domain.ConfigError{Op: "load", Message: FileFederalTariff + " is required", Cause: err}
		}
		return err
	}
	if len(rows) == 0 {
		return &domain.ConfigError{Op: "load", Message: FileFederalTariff + " contains no brackets"}
	}

	sched := domain.TariffSchedule{Kind: domain.TariffFederal}
	lower := decimal.Zero
	for _, row := range rows {
		sched.Brackets = append(sched.Brackets, domain.TariffBracket{
			Min:  lower,
			Max:  num(row.Threshold),
			Rate: num(row.AdditionalPct).Div(decimal.NewFromInt(100)),
			Base: num(row.BaseCHF),
		})
		lower = num(row.Threshold)
	}
	// Income beyond the top threshold keeps the top marginal rate.
	top := rows[len(rows)-1]
	sched.Brackets = append(sched.Brackets, domain.TariffBracket{
		Min:  num(top.Threshold),
		Rate: num(top.AdditionalPct).Div(decimal.NewFromInt(100)),
		Base: num(top.BaseCHF),
	})

	rs.FederalTariff = sched
	return nil
}

func (l *Loader) loadCorporate(rs *domain.RuleSet) error {
	var rates map[string]*float64
	if err := l.readJSON(FileCorporate, &rates); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Info("corporate tax file missing, using federal default", "file", FileCorporate)
			rs.FederalCorporateRate = domain.DefaultFederalCorporateRate
			return nil
		}
		return err
	}

	rs.FederalCorporateRate = domain.DefaultFederalCorporateRate
	if v, ok := rates["Confederation"]; ok {
		rs.FederalCorporateRate = num(v)
	}
	for canton, communes := range rs.Jurisdictions {
		if v, ok := rates[canton]; ok {
			for _, jur := range communes {
				jur.CorporateBaseRate = num(v)
			}
		}
	}
	return nil
}

func (l *Loader) loadSocial(rs *domain.RuleSet) error {
	var dump socialDump
	if err := l.readJSON(FileSocial, &dump); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &domain.ConfigError{Op: "load", Message: FileSocial + " is required", Cause: err}
		}
		return err
	}

	rs.Social = domain.SocialRates{
		AHVEmployee:   num(dump.AHVEmployee),
		AHVEmployer:   num(dump.AHVEmployer),
		ALVEmployee:   num(dump.ALVEmployee),
		ALVEmployer:   num(dump.ALVEmployer),
		ALVCeiling:    num(dump.ALVCeiling),
		ALVSolidarity: num(dump.ALVSolidarity),
		NBURate:       num(dump.NBURate),

		BVGEntryThreshold: num(dump.BVGEntryThreshold),
		BVGCoordDeduction: num(dump.BVGCoordDeduction),
		BVGMaxInsured:     num(dump.BVGMaxInsured),
		BVGBands: []domain.BVGBand{
			{MinAge: 25, MaxAge: 34, Rate: num(dump.BVGRate2534)},
			{MinAge: 35, MaxAge: 44, Rate: num(dump.BVGRate3544)},
			{MinAge: 45, MaxAge: 54, Rate: num(dump.BVGRate4554)},
			{MinAge: 55, MaxAge: 65, Rate: num(dump.BVGRate5565)},
		},
	}
	return nil
}

func (l *Loader) loadDividendInclusion(rs *domain.RuleSet) error {
	var rates map[string]*float64
	if err := l.readJSON(FileDividendInclusion, &rates); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Info("dividend inclusion file missing, cantons fall back to the default rate",
				"file", FileDividendInclusion, "default", domain.DefaultDividendInclusion)
			return nil
		}
		return err
	}
	for canton, v := range rates {
		rate := num(v)
		if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
			return &domain.ConfigError{Op: "load",
				Message: fmt.Sprintf("dividend inclusion rate for %s out of [0,1]: %s", canton, rate)}
		}
		rs.DividendInclusion[canton] = rate
	}
	return nil
}

func (l *Loader) loadPersonalFallback(rs *domain.RuleSet) error {
	var fallback domain.PersonalTaxFallback
	if err := l.readJSON(FilePersonalFallback, &fallback); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			slog.Info("personal tax fallback file missing", "file", FilePersonalFallback)
			return nil
		}
		return err
	}
	if fallback.SchemaVersion != domain.PersonalTaxFallbackSchemaVersion {
		return &domain.ConfigError{Op: "load",
			Message: fmt.Sprintf("%s schema version %d unsupported (want %d)",
				FilePersonalFallback, fallback.SchemaVersion, domain.PersonalTaxFallbackSchemaVersion)}
	}
	for canton, rule := range fallback.Cantons {
		rule.Source = domain.PersonalSourceFallback
		fallback.Cantons[canton] = rule
	}
	rs.PersonalTaxFallback = &fallback
	return nil
}

// validateSchedules checks every schedule's structural invariants and
// samples the tariff function to assert it is monotonically non-decreasing.
func (l *Loader) validateSchedules(rs *domain.RuleSet) error {
	if err := rs.FederalTariff.Validate(); err != nil {
		return &domain.ConfigError{Op: "load", Message: "federal tariff invalid", Cause: err}
	}
	if err := sampleMonotone(rs.FederalTariff); err != nil {
		return &domain.ConfigError{Op: "load", Message: "federal tariff not monotone", Cause: err}
	}
	for canton, communes := range rs.Jurisdictions {
		for _, jur := range communes {
			if err := jur.Tariff.Validate(); err != nil {
				return &domain.ConfigError{Op: "load",
					Message: fmt.Sprintf("tariff for canton %s invalid", canton), Cause: err}
			}
			if err := sampleMonotone(jur.Tariff); err != nil {
				return &domain.ConfigError{Op: "load",
					Message: fmt.Sprintf("tariff for canton %s not monotone", canton), Cause: err}
			}
			break // one commune per canton suffices, the schedule is shared
		}
	}
	return nil
}

func sampleMonotone(sched domain.TariffSchedule) error {
	engine := tariff.NewEngine()
	prev := decimal.Zero
	for income := int64(0); income <= 1_000_000; income += 25_000 {
		tax, err := engine.ComputeBaseTax(sched, decimal.NewFromInt(income), tariff.Filing{Status: domain.StatusSingle})
		if err != nil {
			return err
		}
		if tax.LessThan(prev) {
			return fmt.Errorf("tax decreases at income %d: %s after %s", income, tax, prev)
		}
		prev = tax
	}
	return nil
}

func communeCode(row multiplierRow) string {
	if row.GemeindeID != "" {
		return row.GemeindeID
	}
	return row.Gemeinde
}

// num converts an optional dump value, treating null as zero the way the
// original dataset consumers do.
func num(v *float64) decimal.Decimal {
	if v == nil {
		return decimal.Zero
	}
	return decimal.NewFromFloat(*v)
}
