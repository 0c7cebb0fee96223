package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lodi-go/lodi/internal/domain"
	"github.com/lodi-go/lodi/internal/optimize"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validProfile = `
owner:
  profit: 300000
  target_payout: 180000
  other_income: 12000
  canton: ZH
  commune: "261"
  marital_status: married
  children: 2
  confession: protestant
  age: 47
  strikt: true
  min_salary: 60000
optimizer:
  step: 500
  parallel: true
  workers: 8
  objective: max_net_proceeds
`

func writeProfile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadValidProfile(t *testing.T) {
	profile, err := NewInputParser().LoadFromFile(writeProfile(t, validProfile))
	require.NoError(t, err)

	assert.True(t, decimal.NewFromInt(300000).Equal(profile.Owner.Profit))
	assert.Equal(t, domain.StatusMarried, profile.Owner.MaritalStatus)
	assert.Equal(t, 2, profile.Owner.Children)
	assert.True(t, profile.Owner.Strikt)

	opts := profile.Optimizer.Options()
	assert.True(t, decimal.NewFromInt(500).Equal(opts.Step))
	assert.True(t, opts.Parallel)
	assert.Equal(t, 8, opts.Workers)
	assert.Equal(t, optimize.ObjectiveMaxNet, opts.Objective)
}

func TestDefaultsApplied(t *testing.T) {
	profile, err := NewInputParser().LoadFromFile(writeProfile(t, `
owner:
  profit: 100000
  canton: ZH
  commune: "261"
  age: 40
`))
	require.NoError(t, err)

	assert.Equal(t, domain.StatusSingle, profile.Owner.MaritalStatus)
	assert.Equal(t, domain.ConfessionNone, profile.Owner.Confession)

	opts := profile.Optimizer.Options()
	assert.True(t, decimal.NewFromInt(1000).Equal(opts.Step), "default step is the coarse 1'000 grid")
	assert.Equal(t, optimize.ObjectiveMinTax, opts.Objective)
}

func TestValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name: "negative profit",
			content: `
owner:
  profit: -5
  canton: ZH
  age: 40
`,
			want: "profit",
		},
		{
			name: "malformed marital status",
			content: `
owner:
  profit: 100000
  canton: ZH
  marital_status: divorced
  age: 40
`,
			want: "marital status",
		},
		{
			name: "unknown confession",
			content: `
owner:
  profit: 100000
  canton: ZH
  confession: druid
  age: 40
`,
			want: "confession",
		},
		{
			name: "missing canton",
			content: `
owner:
  profit: 100000
  age: 40
`,
			want: "canton",
		},
		{
			name: "strikt without floor",
			content: `
owner:
  profit: 100000
  canton: ZH
  age: 40
  strikt: true
`,
			want: "min_salary",
		},
		{
			name: "unknown objective",
			content: `
owner:
  profit: 100000
  canton: ZH
  age: 40
optimizer:
  objective: fastest
`,
			want: "objective",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewInputParser().LoadFromFile(writeProfile(t, tc.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.want)
		})
	}
}

func TestMissingFile(t *testing.T) {
	_, err := NewInputParser().LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}
