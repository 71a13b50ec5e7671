package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adscope/creativerank/internal/domain"
)

func TestDefaults_Valid(t *testing.T) {
	cfg := Defaults()
	require.NoError(t, cfg.Validate())

	assert.Equal(t, 50.0, cfg.Gates.MinSpend)
	assert.Equal(t, 1000.0, cfg.Gates.MinImpressions)
	assert.True(t, cfg.Gates.RequirePurchases)
	assert.Equal(t, ZeroDivisionZero, cfg.Derive.ZeroDivision)
	assert.InDelta(t, 1.0, cfg.WeightSum(), 0.001, "default weights should sum to 1.0")
	assert.Equal(t, 0.40, cfg.Weights[domain.MetricCTR])
}

func TestLoad_EmptyPathReturnsDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Defaults(), cfg)
}

func TestLoad_OverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	yaml := `
gates:
  min_spend: 25
  min_impressions: 500
  require_purchases: false
weights:
  ctr: 0.5
  cvr: 0.5
analysis:
  top_n: 10
  bottom_n: 10
  min_group_size: 2
  significance_pct: 15
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 25.0, cfg.Gates.MinSpend)
	assert.Equal(t, 500.0, cfg.Gates.MinImpressions)
	assert.False(t, cfg.Gates.RequirePurchases)
	assert.Equal(t, map[string]float64{"ctr": 0.5, "cvr": 0.5}, cfg.Weights)
	assert.Equal(t, 2, cfg.Analysis.MinGroupSize)

	// Untouched sections keep their defaults.
	assert.Equal(t, Defaults().Load.Columns, cfg.Load.Columns)
	assert.Equal(t, Defaults().Report.Title, cfg.Report.Title)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate_Rejections(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"negative weight", func(c *Config) { c.Weights["ctr"] = -0.1 }},
		{"no weights", func(c *Config) { c.Weights = nil }},
		{"bad zero-division policy", func(c *Config) { c.Derive.ZeroDivision = "explode" }},
		{"bad exclude pattern", func(c *Config) { c.Load.ExcludePattern = "(" }},
		{"no encodings", func(c *Config) { c.Load.Encodings = nil }},
		{"negative min spend", func(c *Config) { c.Gates.MinSpend = -1 }},
		{"zero min group size", func(c *Config) { c.Analysis.MinGroupSize = 0 }},
		{"zero classifier rate", func(c *Config) { c.Vision.RatePerSecond = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
