package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// OwnerInputs are the raw inputs of one computation run: the company's
// pre-salary profit, the owner's situation and the payout constraints.
type OwnerInputs struct {
	Profit       decimal.Decimal `yaml:"profit" json:"profit"`
	TargetPayout decimal.Decimal `yaml:"target_payout" json:"target_payout"`
	OtherIncome  decimal.Decimal `yaml:"other_income" json:"other_income"`
	PensionBuyIn decimal.Decimal `yaml:"pension_buy_in" json:"pension_buy_in"`

	Canton  string `yaml:"canton" json:"canton"`
	Commune string `yaml:"commune" json:"commune"`

	MaritalStatus MaritalStatus `yaml:"marital_status" json:"marital_status"`
	Children      int           `yaml:"children" json:"children"`
	Confession    Confession    `yaml:"confession" json:"confession"`
	Age           int           `yaml:"age" json:"age"`

	// Strikt requires salary to reach MinSalary before any dividend may be
	// paid; below the floor the mixed scenario collapses to salary-only.
	Strikt    bool            `yaml:"strikt" json:"strikt"`
	MinSalary decimal.Decimal `yaml:"min_salary" json:"min_salary"`
}

// Validate rejects malformed inputs before any computation starts.
func (in *OwnerInputs) Validate() error {
	if in.Profit.IsNegative() {
		return fmt.Errorf("profit must not be negative, got %s", in.Profit)
	}
	if in.TargetPayout.IsNegative() {
		return fmt.Errorf("target payout must not be negative, got %s", in.TargetPayout)
	}
	if in.OtherIncome.IsNegative() {
		return fmt.Errorf("other income must not be negative, got %s", in.OtherIncome)
	}
	if in.PensionBuyIn.IsNegative() {
		return fmt.Errorf("pension buy-in must not be negative, got %s", in.PensionBuyIn)
	}
	if in.Canton == "" {
		return fmt.Errorf("canton is required")
	}
	switch in.MaritalStatus {
	case StatusSingle, StatusMarried:
	default:
		return fmt.Errorf("marital status must be %q or %q, got %q", StatusSingle, StatusMarried, in.MaritalStatus)
	}
	switch in.Confession {
	case ConfessionNone, ConfessionRoman, ConfessionProtestant, ConfessionChristian:
	default:
		return fmt.Errorf("unknown confession %q", in.Confession)
	}
	if in.Children < 0 {
		return fmt.Errorf("children must not be negative, got %d", in.Children)
	}
	if in.Age < 0 || in.Age > 120 {
		return fmt.Errorf("age %d out of range", in.Age)
	}
	return nil
}

// EmployeeDeductions itemizes the social contributions subtracted from gross
// salary when deriving the employment taxable base.
type EmployeeDeductions struct {
	AHV   decimal.Decimal `json:"ahv"`
	ALV   decimal.Decimal `json:"alv"`
	NBU   decimal.Decimal `json:"nbu"`
	BVG   decimal.Decimal `json:"bvg"`
	BuyIn decimal.Decimal `json:"buy_in"`
}

// Total is the sum of all employee-side deductions.
func (d EmployeeDeductions) Total() decimal.Decimal {
	return d.AHV.Add(d.ALV).Add(d.NBU).Add(d.BVG).Add(d.BuyIn)
}

// IncomeScenario is one named compensation structure. Built once per
// evaluation and never mutated afterwards; the optimizer builds a fresh
// scenario per candidate split.
type IncomeScenario struct {
	Name string `json:"name"`

	GrossSalary   decimal.Decimal `json:"gross_salary"`
	GrossDividend decimal.Decimal `json:"gross_dividend"`
	OtherIncome   decimal.Decimal `json:"other_income"`

	MaritalStatus MaritalStatus `json:"marital_status"`
	Children      int           `json:"children"`
	Confession    Confession    `json:"confession"`
	Age           int           `json:"age"`

	// Derived by the scenario builder.
	Deductions     EmployeeDeductions `json:"deductions"`
	EmploymentBase decimal.Decimal    `json:"employment_base"`

	// Company-side figures carried for the net-to-owner view.
	EmployerCost decimal.Decimal `json:"employer_cost"`
	CorporateTax decimal.Decimal `json:"corporate_tax"`
}

// TaxBreakdown is the aggregated levy result for one scenario. Immutable
// value; anomalies record clamps and fallback uses that occurred on the way.
type TaxBreakdown struct {
	Federal  decimal.Decimal `json:"federal"`
	Cantonal decimal.Decimal `json:"cantonal"`
	Communal decimal.Decimal `json:"communal"`
	Church   decimal.Decimal `json:"church"`
	Personal decimal.Decimal `json:"personal"`
	Total    decimal.Decimal `json:"total"`

	Anomalies []Anomaly `json:"anomalies,omitempty"`
}

// NetProceeds is the owner's bottom line for a scenario: payout minus
// corporate tax, social charges and personal taxes.
type NetProceeds struct {
	Gross        decimal.Decimal `json:"gross"`
	CorporateTax decimal.Decimal `json:"corporate_tax"`
	EmployerCost decimal.Decimal `json:"employer_cost"`
	Deductions   decimal.Decimal `json:"deductions"`
	IncomeTax    decimal.Decimal `json:"income_tax"`
	Net          decimal.Decimal `json:"net"`
}
