package domain

import "math"

// Metric keys used by the scorer configuration and the normalized-value map.
const (
	MetricCTR      = "ctr"
	MetricCVR      = "cvr"
	MetricROAS     = "roas"
	MetricThruPlay = "thruplay"
)

// ScoreMetrics lists the metrics eligible for composite scoring.
func ScoreMetrics() []string {
	return []string{MetricCTR, MetricCVR, MetricROAS, MetricThruPlay}
}

// Tag dimensions assigned by the vision stage.
const (
	DimFormat  = "format"
	DimSetting = "setting"
	DimColor   = "dominant_color"
	DimHook    = "hook"
	DimEmotion = "emotion"
)

// TagDimensions returns the tag dimensions in stable output order.
func TagDimensions() []string {
	return []string{DimFormat, DimSetting, DimColor, DimHook, DimEmotion}
}

// CreativeRecord is one advertising creative as loaded from a platform
// export, enriched in place as it moves through the pipeline stages.
// Raw metrics may be NaN after loading when the export cell was blank or
// unparseable; derivation and gating treat NaN as missing.
type CreativeRecord struct {
	// Identifiers
	AdName       string
	AdID         string
	CreativeID   string
	CreativeLink string

	// Raw metrics from the export
	Spend          float64
	Impressions    float64
	Reach          float64
	Frequency      float64
	ClicksAll      float64
	OutboundClicks float64
	Purchases      float64
	CTRRaw         float64 // percentage, as exported
	ROAS           float64
	VideoPlays95   float64

	// Derived ratios, always finite after derivation
	CTR      float64 // decimal
	CVR      float64
	CPA      float64
	ThruPlay float64

	// Scoring output
	Normalized map[string]float64 // per-metric normalized value in [0,1]
	Score      float64            // composite score in [0,100]

	// Tags attached by the vision stage, keyed by tag dimension
	Tags map[string]string
}

// Metric returns the value of a scoring metric by key. Unknown keys
// return 0 so a misconfigured weight cannot poison a composite with NaN.
func (r *CreativeRecord) Metric(key string) float64 {
	var v float64
	switch key {
	case MetricCTR:
		v = r.CTR
	case MetricCVR:
		v = r.CVR
	case MetricROAS:
		v = r.ROAS
	case MetricThruPlay:
		v = r.ThruPlay
	default:
		return 0
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
