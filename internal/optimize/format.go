package optimize

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// FormatResult renders an optimization result for the console.
func FormatResult(res *Result) string {
	var sb strings.Builder

	sb.WriteString("SALARY / DIVIDEND OPTIMIZATION\n")
	sb.WriteString(strings.Repeat("=", 60) + "\n")
	sb.WriteString(fmt.Sprintf("Run:        %s\n", res.RunID))
	sb.WriteString(fmt.Sprintf("Objective:  %s\n", res.Objective))
	sb.WriteString(fmt.Sprintf("Candidates: %d (%.0f ms)\n\n", res.Iterations, float64(res.Elapsed.Milliseconds())))

	best := res.Best
	sb.WriteString("BEST SPLIT\n")
	sb.WriteString(strings.Repeat("-", 60) + "\n")
	sb.WriteString(fmt.Sprintf("  Salary:      CHF %s\n", money(best.Salary)))
	sb.WriteString(fmt.Sprintf("  Dividend:    CHF %s\n", money(best.Dividend)))
	sb.WriteString("\n")
	sb.WriteString(fmt.Sprintf("  Federal:     CHF %s\n", money(best.Breakdown.Federal)))
	sb.WriteString(fmt.Sprintf("  Cantonal:    CHF %s\n", money(best.Breakdown.Cantonal)))
	sb.WriteString(fmt.Sprintf("  Communal:    CHF %s\n", money(best.Breakdown.Communal)))
	sb.WriteString(fmt.Sprintf("  Church:      CHF %s\n", money(best.Breakdown.Church)))
	sb.WriteString(fmt.Sprintf("  Personal:    CHF %s\n", money(best.Breakdown.Personal)))
	sb.WriteString(fmt.Sprintf("  Total tax:   CHF %s\n", money(best.Breakdown.Total)))
	sb.WriteString(fmt.Sprintf("  Net to owner: CHF %s\n", money(best.Net.Net)))

	if len(best.Breakdown.Anomalies) > 0 {
		sb.WriteString("\nNOTES\n")
		for _, an := range best.Breakdown.Anomalies {
			sb.WriteString(fmt.Sprintf("  [%s] %s\n", an.Code, an.Message))
		}
	}

	if len(res.Trace) > 1 {
		worst := res.Trace[0]
		for _, c := range res.Trace[1:] {
			if c.Breakdown.Total.GreaterThan(worst.Breakdown.Total) {
				worst = c
			}
		}
		saving := worst.Breakdown.Total.Sub(best.Breakdown.Total)
		sb.WriteString("\n")
		sb.WriteString(fmt.Sprintf("Saves CHF %s against the worst evaluated split (salary %s).\n",
			money(saving), money(worst.Salary)))
	}

	return sb.String()
}

func money(d decimal.Decimal) string {
	s := d.StringFixed(0)
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	var parts []string
	for len(s) > 3 {
		parts = append([]string{s[len(s)-3:]}, parts...)
		s = s[:len(s)-3]
	}
	parts = append([]string{s}, parts...)
	out := strings.Join(parts, "'")
	if neg {
		out = "-" + out
	}
	return out
}
