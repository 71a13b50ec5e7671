package composite

import (
	"math"

	"github.com/adscope/creativerank/internal/domain"
)

// Bounds holds the observed min and max of one metric across a batch.
type Bounds struct {
	Min float64
	Max float64
}

// Degenerate reports whether the metric carried no information in this
// batch (all values equal), in which case every record normalizes to 0.
func (b Bounds) Degenerate() bool {
	return b.Max == b.Min
}

// Normalize maps a value into [0,1] against the bounds. A degenerate
// column yields 0 for every record rather than dividing by zero.
func (b Bounds) Normalize(v float64) float64 {
	if b.Degenerate() {
		return 0
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		v = b.Min
	}
	return (v - b.Min) / (b.Max - b.Min)
}

// ComputeBounds scans the batch once per metric. Scores are batch-relative:
// bounds from one export say nothing about another.
func ComputeBounds(records []domain.CreativeRecord, metrics []string) map[string]Bounds {
	bounds := make(map[string]Bounds, len(metrics))
	for _, metric := range metrics {
		b := Bounds{Min: math.Inf(1), Max: math.Inf(-1)}
		for i := range records {
			v := records[i].Metric(metric)
			if v < b.Min {
				b.Min = v
			}
			if v > b.Max {
				b.Max = v
			}
		}
		bounds[metric] = b
	}
	return bounds
}
