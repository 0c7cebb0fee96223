package calculation

import (
	"github.com/lodi-go/lodi/internal/domain"
	"github.com/shopspring/decimal"
)

func dec(v float64) decimal.Decimal { return decimal.NewFromFloat(v) }

func testSocialRates() domain.SocialRates {
	return domain.SocialRates{
		AHVEmployee:   dec(0.053),
		AHVEmployer:   dec(0.053),
		ALVEmployee:   dec(0.011),
		ALVEmployer:   dec(0.011),
		ALVCeiling:    dec(148200),
		ALVSolidarity: dec(0.005),
		NBURate:       dec(0.004),

		BVGEntryThreshold: dec(22680),
		BVGCoordDeduction: dec(26460),
		BVGMaxInsured:     dec(90720),
		BVGBands: []domain.BVGBand{
			{MinAge: 25, MaxAge: 34, Rate: dec(0.07)},
			{MinAge: 35, MaxAge: 44, Rate: dec(0.10)},
			{MinAge: 45, MaxAge: 54, Rate: dec(0.15)},
			{MinAge: 55, MaxAge: 65, Rate: dec(0.18)},
		},
	}
}

func testTariff() domain.TariffSchedule {
	return domain.TariffSchedule{
		Kind: domain.TariffMarginal,
		Brackets: []domain.TariffBracket{
			{Min: dec(6700), Max: dec(50000), Rate: dec(0.03)},
			{Min: dec(50000), Max: dec(150000), Rate: dec(0.06)},
			{Min: dec(150000), Max: decimal.Zero, Rate: dec(0.10)},
		},
	}
}

func testFederalTariff() domain.TariffSchedule {
	return domain.TariffSchedule{
		Kind: domain.TariffFederal,
		Brackets: []domain.TariffBracket{
			{Min: dec(0), Max: dec(17800), Rate: dec(0), Base: dec(0)},
			{Min: dec(17800), Max: dec(76100), Rate: dec(0.0264), Base: dec(0)},
			{Min: dec(76100), Max: decimal.Zero, Rate: dec(0.066), Base: dec(1539.1)},
		},
		MarriedDivisor: dec(1.9),
	}
}

// testRuleSet builds the in-memory fixture shared by the calculation tests:
// ZH with a full jurisdiction record, LU without a dividend-inclusion entry,
// AG with a factor-sourced per-person head tax plus a conflicting fallback.
func testRuleSet() *domain.RuleSet {
	zh := &domain.Jurisdiction{
		CantonCode:  "ZH",
		CommuneCode: "261",
		CantonName:  "Zürich",
		CommuneName: "Zürich",
		Tariff:      testTariff(),

		CantonMultiplier:  dec(0.98),
		CommuneMultiplier: dec(1.19),
		ChurchMultipliers: map[domain.Confession]decimal.Decimal{
			domain.ConfessionProtestant: dec(0.10),
			domain.ConfessionRoman:      dec(0.10),
		},

		CorporateBaseRate:     dec(0.07),
		CorpCantonMultiplier:  dec(1.0),
		CorpCommuneMultiplier: dec(1.3),
	}

	lu := &domain.Jurisdiction{
		CantonCode:        "LU",
		CommuneCode:       "1061",
		CantonName:        "Luzern",
		CommuneName:       "Luzern",
		Tariff:            testTariff(),
		CantonMultiplier:  dec(1.6),
		CommuneMultiplier: dec(1.75),
	}

	ag := &domain.Jurisdiction{
		CantonCode:        "AG",
		CommuneCode:       "4001",
		CantonName:        "Aargau",
		CommuneName:       "Aarau",
		Tariff:            testTariff(),
		CantonMultiplier:  dec(1.09),
		CommuneMultiplier: dec(0.97),
		PersonalTax: &domain.PersonalTaxRule{
			Level:     domain.PersonalLevelCanton,
			PerPerson: true,
			Amount:    dec(24),
			Source:    domain.PersonalSourceFactor,
		},
	}

	return &domain.RuleSet{
		Jurisdictions: map[string]map[string]*domain.Jurisdiction{
			"ZH": {"261": zh},
			"LU": {"1061": lu},
			"AG": {"4001": ag},
		},
		FederalTariff:        testFederalTariff(),
		FederalCorporateRate: dec(0.085),
		DividendInclusion: map[string]decimal.Decimal{
			"ZH": dec(0.50),
			"AG": dec(0.60),
		},
		PersonalTaxFallback: &domain.PersonalTaxFallback{
			SchemaVersion: domain.PersonalTaxFallbackSchemaVersion,
			Cantons: map[string]domain.PersonalTaxRule{
				// Conflicts with AG's factor-sourced rule on purpose: the
				// chain must never add both.
				"AG": {Level: domain.PersonalLevelCanton, PerPerson: true, Amount: dec(1000)},
				"LU": {Level: domain.PersonalLevelBoth, PerPerson: false, AmountMin: dec(20), AmountMax: dec(60)},
			},
		},
		Social: testSocialRates(),
	}
}

func testInputs() domain.OwnerInputs {
	return domain.OwnerInputs{
		Profit:        dec(300000),
		TargetPayout:  dec(200000),
		Canton:        "ZH",
		Commune:       "261",
		MaritalStatus: domain.StatusSingle,
		Confession:    domain.ConfessionNone,
		Age:           40,
	}
}
