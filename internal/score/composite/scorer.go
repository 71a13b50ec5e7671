// Package composite turns filtered creative records into a ranked batch
// with a 0-100 composite score: min-max normalize each configured metric,
// combine with weights, then rescale so the batch maximum maps to 100.
package composite

import (
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/rs/zerolog/log"

	"github.com/adscope/creativerank/internal/domain"
)

// ErrEmptyBatch is returned when there are no records to score.
// Normalization and rescaling are undefined over an empty set, so the
// caller must treat this as a run-level failure.
var ErrEmptyBatch = errors.New("no records to score")

// Scorer computes weighted composite scores over one batch.
type Scorer struct {
	weights map[string]float64
}

// NewScorer creates a scorer from metric weights. Weights must be
// non-negative; the sum is expected to be ~1.0 but is the caller's
// responsibility — drift is logged, not rejected.
func NewScorer(weights map[string]float64) (*Scorer, error) {
	if len(weights) == 0 {
		return nil, fmt.Errorf("no metric weights configured")
	}
	sum := 0.0
	for metric, w := range weights {
		if w < 0 || math.IsNaN(w) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("invalid weight for %s: %f", metric, w)
		}
		sum += w
	}
	if math.Abs(sum-1.0) > 0.01 {
		log.Warn().Float64("sum", sum).Msg("metric weights do not sum to 1.0, scores remain comparable within the batch only")
	}

	copied := make(map[string]float64, len(weights))
	for k, v := range weights {
		copied[k] = v
	}
	return &Scorer{weights: copied}, nil
}

// Metrics returns the configured metric keys in stable order.
func (s *Scorer) Metrics() []string {
	metrics := make([]string, 0, len(s.weights))
	for m := range s.weights {
		metrics = append(metrics, m)
	}
	sort.Strings(metrics)
	return metrics
}

// Score annotates every record with per-metric normalized values and the
// composite score, and returns the batch sorted by score descending
// (ties broken by ad name for deterministic output).
//
// The composite is monotonically non-decreasing in each weighted input:
// raising one metric for one record can only raise or hold its score.
func (s *Scorer) Score(records []domain.CreativeRecord) ([]domain.CreativeRecord, error) {
	if len(records) == 0 {
		return nil, ErrEmptyBatch
	}

	metrics := s.Metrics()
	bounds := ComputeBounds(records, metrics)

	scored := make([]domain.CreativeRecord, len(records))
	copy(scored, records)

	maxComposite := 0.0
	for i := range scored {
		normalized := make(map[string]float64, len(metrics))
		composite := 0.0
		for _, metric := range metrics {
			n := bounds[metric].Normalize(scored[i].Metric(metric))
			normalized[metric] = n
			composite += s.weights[metric] * n
		}
		scored[i].Normalized = normalized
		scored[i].Score = composite
		if composite > maxComposite {
			maxComposite = composite
		}
	}

	// Rescale so the best creative in the batch scores exactly 100.
	// A zero maximum (single record, or every column degenerate) leaves
	// all scores at 0 instead of dividing by zero.
	if maxComposite > 0 {
		for i := range scored {
			scored[i].Score = scored[i].Score / maxComposite * 100
		}
	} else {
		log.Warn().Int("records", len(scored)).Msg("degenerate batch, all composite scores are 0")
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Score != scored[j].Score {
			return scored[i].Score > scored[j].Score
		}
		return scored[i].AdName < scored[j].AdName
	})

	return scored, nil
}
