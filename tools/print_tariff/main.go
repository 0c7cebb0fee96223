package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/lodi-go/lodi/internal/dataset"
	"github.com/lodi-go/lodi/internal/domain"
	"github.com/lodi-go/lodi/internal/tariff"
)

// print_tariff dumps the loaded tariff curves as CSV: one row per sampled
// income, one column per canton. Used to eyeball dataset changes.
func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: print_tariff <data-dir> [max-income]")
		return
	}

	rules, err := dataset.NewLoader(os.Args[1]).Load()
	if err != nil {
		panic(err)
	}

	maxIncome := decimal.NewFromInt(300000)
	if len(os.Args) > 2 {
		v, err := decimal.NewFromString(os.Args[2])
		if err != nil {
			panic(err)
		}
		maxIncome = v
	}

	cantons := rules.Cantons()
	sort.Strings(cantons)

	// One representative tariff per canton: all communes of a canton share it.
	tariffs := make(map[string]domain.TariffSchedule, len(cantons))
	for _, c := range cantons {
		for _, jur := range rules.Jurisdictions[c] {
			tariffs[c] = jur.Tariff
			break
		}
	}

	header := "Income,Federal"
	for _, c := range cantons {
		header += "," + c
	}
	fmt.Println(header)

	engine := tariff.NewEngine()
	filing := tariff.Filing{Status: domain.StatusSingle}
	step := decimal.NewFromInt(10000)
	for income := decimal.Zero; income.LessThanOrEqual(maxIncome); income = income.Add(step) {
		federal, err := engine.ComputeBaseTax(rules.FederalTariff, income, filing)
		if err != nil {
			panic(err)
		}
		row := fmt.Sprintf("%s,%s", income.StringFixed(0), federal.StringFixed(0))
		for _, c := range cantons {
			base, err := engine.ComputeBaseTax(tariffs[c], income, filing)
			if err != nil {
				panic(err)
			}
			row += "," + base.StringFixed(0)
		}
		fmt.Println(row)
	}
}
