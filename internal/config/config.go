package config

import (
	"fmt"
	"math"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/adscope/creativerank/internal/domain"
)

// ZeroDivisionPolicy controls what derivation does with a zero or missing
// denominator: substitute a neutral zero, or drop the row entirely.
type ZeroDivisionPolicy string

const (
	ZeroDivisionZero ZeroDivisionPolicy = "zero"
	ZeroDivisionDrop ZeroDivisionPolicy = "drop"
)

// LoadConfig controls ingestion of the raw export.
type LoadConfig struct {
	// Columns maps source export headers to canonical field names.
	Columns map[string]string `yaml:"columns"`
	// ExcludePattern drops rows whose ad name matches (aggregated or
	// dynamic placeholder ads that are not single creatives).
	ExcludePattern string `yaml:"exclude_pattern"`
	// Encodings is the ordered candidate list for decode attempts.
	Encodings []string `yaml:"encodings"`
}

// DeriveConfig controls ratio derivation.
type DeriveConfig struct {
	ZeroDivision ZeroDivisionPolicy `yaml:"zero_division"`
}

// GateConfig holds the quality-gate thresholds.
type GateConfig struct {
	MinSpend         float64 `yaml:"min_spend"`
	MinImpressions   float64 `yaml:"min_impressions"`
	RequirePurchases bool    `yaml:"require_purchases"`
}

// AnalysisConfig controls the export selection and tag correlation.
type AnalysisConfig struct {
	// TopN and BottomN select the performers exported for correlation.
	TopN    int `yaml:"top_n"`
	BottomN int `yaml:"bottom_n"`
	// MinGroupSize is the minimum creatives per tag value for a group
	// to count toward a hypothesis.
	MinGroupSize int `yaml:"min_group_size"`
	// SignificancePct is the relative best-vs-worst mean difference, in
	// percent, required before a hypothesis is emitted.
	SignificancePct float64 `yaml:"significance_pct"`
}

// VisionConfig paces and guards the content-classifier client.
type VisionConfig struct {
	// Seed for the mock classifier. Zero seeds from the clock.
	Seed int64 `yaml:"seed"`
	// RatePerSecond and Burst bound classifier call throughput.
	RatePerSecond float64 `yaml:"rate_per_second"`
	Burst         int     `yaml:"burst"`
	// Breaker settings for the classifier circuit.
	BreakerMaxRequests         uint32 `yaml:"breaker_max_requests"`
	BreakerIntervalSeconds     int    `yaml:"breaker_interval_seconds"`
	BreakerTimeoutSeconds      int    `yaml:"breaker_timeout_seconds"`
	BreakerConsecutiveFailures uint32 `yaml:"breaker_consecutive_failures"`
}

// ReportConfig controls dashboard rendering.
type ReportConfig struct {
	Title       string `yaml:"title"`
	TopTable    int    `yaml:"top_table"`
	BottomTable int    `yaml:"bottom_table"`
}

// Config is the immutable configuration for one pipeline run. It is built
// once (defaults, optionally overridden from YAML) and passed into every
// stage; stages never reach for globals.
type Config struct {
	Load     LoadConfig         `yaml:"load"`
	Derive   DeriveConfig       `yaml:"derive"`
	Gates    GateConfig         `yaml:"gates"`
	Weights  map[string]float64 `yaml:"weights"`
	Analysis AnalysisConfig     `yaml:"analysis"`
	Vision   VisionConfig       `yaml:"vision"`
	Report   ReportConfig       `yaml:"report"`
}

// Defaults returns the built-in configuration matching a standard Meta
// creative export.
func Defaults() Config {
	return Config{
		Load: LoadConfig{
			Columns: map[string]string{
				"Ad name":                            "ad_name",
				"Ads":                                "ad_id",
				"Creative ID":                        "creative_id",
				"Preview link":                       "creative_link",
				"Amount spent (AUD)":                 "spend",
				"Impressions":                        "impressions",
				"Reach":                              "reach",
				"Frequency":                          "frequency",
				"Clicks (all)":                       "clicks_all",
				"Outbound clicks":                    "outbound_clicks",
				"Purchases":                          "purchases",
				"CTR (all)":                          "ctr_raw",
				"Purchase ROAS (return on ad spend)": "roas",
				"Video plays at 95%":                 "video_plays_95",
			},
			ExcludePattern: `(?i)DPA|Dynamic|Set - Sales`,
			Encodings:      []string{"utf-8", "utf-16", "windows-1252"},
		},
		Derive: DeriveConfig{
			ZeroDivision: ZeroDivisionZero,
		},
		Gates: GateConfig{
			MinSpend:         50,
			MinImpressions:   1000,
			RequirePurchases: true,
		},
		Weights: map[string]float64{
			domain.MetricCTR:      0.40,
			domain.MetricCVR:      0.30,
			domain.MetricROAS:     0.20,
			domain.MetricThruPlay: 0.10,
		},
		Analysis: AnalysisConfig{
			TopN:            20,
			BottomN:         20,
			MinGroupSize:    3,
			SignificancePct: 10,
		},
		Vision: VisionConfig{
			Seed:                       0,
			RatePerSecond:              8,
			Burst:                      4,
			BreakerMaxRequests:         3,
			BreakerIntervalSeconds:     60,
			BreakerTimeoutSeconds:      30,
			BreakerConsecutiveFailures: 5,
		},
		Report: ReportConfig{
			Title:       "Creative Performance Dashboard",
			TopTable:    10,
			BottomTable: 10,
		},
	}
}

// Load reads a YAML config file over the defaults. An empty path returns
// the defaults unchanged.
func Load(path string) (Config, error) {
	cfg := Defaults()
	if path == "" {
		if err := cfg.Validate(); err != nil {
			return Config{}, err
		}
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("read config %s: %w", path, err)
	}

	// YAML decoding merges into pre-populated maps, which would mix user
	// weights with the defaults. Clear them first and restore defaults
	// only for sections the file does not mention.
	defaults := Defaults()
	cfg.Load.Columns = nil
	cfg.Load.Encodings = nil
	cfg.Weights = nil
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config %s: %w", path, err)
	}
	if cfg.Load.Columns == nil {
		cfg.Load.Columns = defaults.Load.Columns
	}
	if cfg.Load.Encodings == nil {
		cfg.Load.Encodings = defaults.Load.Encodings
	}
	if cfg.Weights == nil {
		cfg.Weights = defaults.Weights
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks that the configuration is internally consistent.
// Weight sums are deliberately not enforced here; the scorer warns when
// they drift from 1.0 but proceeds.
func (c Config) Validate() error {
	if len(c.Load.Columns) == 0 {
		return fmt.Errorf("load.columns must not be empty")
	}
	if c.Load.ExcludePattern != "" {
		if _, err := regexp.Compile(c.Load.ExcludePattern); err != nil {
			return fmt.Errorf("load.exclude_pattern: %w", err)
		}
	}
	if len(c.Load.Encodings) == 0 {
		return fmt.Errorf("load.encodings must list at least one candidate")
	}

	switch c.Derive.ZeroDivision {
	case ZeroDivisionZero, ZeroDivisionDrop:
	default:
		return fmt.Errorf("derive.zero_division must be %q or %q, got %q",
			ZeroDivisionZero, ZeroDivisionDrop, c.Derive.ZeroDivision)
	}

	if c.Gates.MinSpend < 0 {
		return fmt.Errorf("gates.min_spend must be non-negative, got %.2f", c.Gates.MinSpend)
	}
	if c.Gates.MinImpressions < 0 {
		return fmt.Errorf("gates.min_impressions must be non-negative, got %.0f", c.Gates.MinImpressions)
	}

	if len(c.Weights) == 0 {
		return fmt.Errorf("weights must not be empty")
	}
	for metric, w := range c.Weights {
		if w < 0 {
			return fmt.Errorf("negative weight for %s: %f", metric, w)
		}
		if math.IsNaN(w) || math.IsInf(w, 0) {
			return fmt.Errorf("invalid weight for %s: %f", metric, w)
		}
	}

	if c.Analysis.TopN < 1 || c.Analysis.BottomN < 0 {
		return fmt.Errorf("analysis.top_n must be >= 1 and analysis.bottom_n >= 0")
	}
	if c.Analysis.MinGroupSize < 1 {
		return fmt.Errorf("analysis.min_group_size must be >= 1, got %d", c.Analysis.MinGroupSize)
	}
	if c.Analysis.SignificancePct <= 0 {
		return fmt.Errorf("analysis.significance_pct must be positive, got %.2f", c.Analysis.SignificancePct)
	}

	if c.Vision.RatePerSecond <= 0 {
		return fmt.Errorf("vision.rate_per_second must be positive, got %.2f", c.Vision.RatePerSecond)
	}
	if c.Vision.Burst < 1 {
		return fmt.Errorf("vision.burst must be >= 1, got %d", c.Vision.Burst)
	}

	if c.Report.TopTable < 1 || c.Report.BottomTable < 1 {
		return fmt.Errorf("report table sizes must be >= 1")
	}
	return nil
}

// WeightSum returns the sum of all metric weights.
func (c Config) WeightSum() float64 {
	sum := 0.0
	for _, w := range c.Weights {
		sum += w
	}
	return sum
}
