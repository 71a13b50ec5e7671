// Package correlate groups scored creatives by tag value and surfaces
// qualitative hypotheses where one tag group clearly out- or under-performs.
package correlate

import (
	"fmt"
	"sort"

	"github.com/adscope/creativerank/internal/config"
	"github.com/adscope/creativerank/internal/domain"
)

// HypothesisKind separates claims about the best group from claims about
// the worst.
type HypothesisKind string

const (
	Winning HypothesisKind = "winning"
	Losing  HypothesisKind = "losing"
)

// GroupStat is the composite-score summary for one tag value.
type GroupStat struct {
	Value string
	Mean  float64
	Count int
}

// Hypothesis is one emitted claim for a tag dimension.
type Hypothesis struct {
	Dimension string
	Kind      HypothesisKind
	Best      GroupStat
	Worst     GroupStat
	// DiffPct is the relative best-vs-worst mean difference in percent.
	DiffPct float64
}

// String renders the hypothesis in the report wording.
func (h Hypothesis) String() string {
	switch h.Kind {
	case Winning:
		return fmt.Sprintf("WINNING (%s): creatives tagged %q averaged a score of %.1f (vs. %.1f), %.0f%% higher performance",
			h.Dimension, h.Best.Value, h.Best.Mean, h.Worst.Mean, h.DiffPct)
	default:
		return fmt.Sprintf("LOSING (%s): creatives tagged %q averaged a score of %.1f, %.0f%% lower than better-performing tags",
			h.Dimension, h.Worst.Value, h.Worst.Mean, -h.DiffPct)
	}
}

// Correlator computes per-dimension group statistics and hypotheses.
type Correlator struct {
	minGroupSize    int
	significancePct float64
}

// NewCorrelator creates a correlator from the analysis configuration.
func NewCorrelator(cfg config.AnalysisConfig) *Correlator {
	return &Correlator{
		minGroupSize:    cfg.MinGroupSize,
		significancePct: cfg.SignificancePct,
	}
}

// GroupStats summarizes composite scores per tag value for one dimension,
// sorted by mean descending. Untagged records are ignored.
func (c *Correlator) GroupStats(records []domain.CreativeRecord, dimension string) []GroupStat {
	sums := make(map[string]float64)
	counts := make(map[string]int)
	for i := range records {
		value, ok := records[i].Tags[dimension]
		if !ok || value == "" {
			continue
		}
		sums[value] += records[i].Score
		counts[value]++
	}

	stats := make([]GroupStat, 0, len(sums))
	for value, sum := range sums {
		stats = append(stats, GroupStat{
			Value: value,
			Mean:  sum / float64(counts[value]),
			Count: counts[value],
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Mean != stats[j].Mean {
			return stats[i].Mean > stats[j].Mean
		}
		return stats[i].Value < stats[j].Value
	})
	return stats
}

// Analyze walks every tag dimension and emits at most one hypothesis per
// dimension. Groups smaller than the minimum sample are discarded first;
// a dimension with fewer than two qualifying groups produces no claim.
func (c *Correlator) Analyze(records []domain.CreativeRecord) []Hypothesis {
	var hypotheses []Hypothesis
	for _, dimension := range domain.TagDimensions() {
		if h, ok := c.analyzeDimension(records, dimension); ok {
			hypotheses = append(hypotheses, h)
		}
	}
	return hypotheses
}

func (c *Correlator) analyzeDimension(records []domain.CreativeRecord, dimension string) (Hypothesis, bool) {
	stats := c.GroupStats(records, dimension)

	qualified := stats[:0]
	for _, s := range stats {
		if s.Count >= c.minGroupSize {
			qualified = append(qualified, s)
		}
	}
	if len(qualified) < 2 {
		return Hypothesis{}, false
	}

	best := qualified[0]
	worst := qualified[len(qualified)-1]
	if worst.Mean == 0 {
		// Relative difference is undefined against a zero baseline.
		return Hypothesis{}, false
	}

	diffPct := (best.Mean - worst.Mean) / worst.Mean * 100
	switch {
	case diffPct > c.significancePct:
		return Hypothesis{Dimension: dimension, Kind: Winning, Best: best, Worst: worst, DiffPct: diffPct}, true
	case diffPct < -c.significancePct:
		return Hypothesis{Dimension: dimension, Kind: Losing, Best: best, Worst: worst, DiffPct: diffPct}, true
	default:
		return Hypothesis{}, false
	}
}
