package composite

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adscope/creativerank/internal/domain"
)

var testWeights = map[string]float64{
	domain.MetricCTR:      0.40,
	domain.MetricCVR:      0.30,
	domain.MetricROAS:     0.20,
	domain.MetricThruPlay: 0.10,
}

func TestNewScorer_RejectsNegativeWeights(t *testing.T) {
	_, err := NewScorer(map[string]float64{domain.MetricCTR: -0.5})
	assert.Error(t, err)

	_, err = NewScorer(nil)
	assert.Error(t, err)
}

func TestScore_EmptyBatch(t *testing.T) {
	scorer, err := NewScorer(testWeights)
	require.NoError(t, err)

	_, err = scorer.Score(nil)
	assert.ErrorIs(t, err, ErrEmptyBatch)
}

func TestScore_MaxRecordScoresExactly100(t *testing.T) {
	scorer, err := NewScorer(testWeights)
	require.NoError(t, err)

	ranked, err := scorer.Score([]domain.CreativeRecord{
		{AdName: "best", CTR: 0.05, CVR: 0.10, ROAS: 4.0, ThruPlay: 0.3},
		{AdName: "mid", CTR: 0.03, CVR: 0.05, ROAS: 2.0, ThruPlay: 0.2},
		{AdName: "worst", CTR: 0.01, CVR: 0.01, ROAS: 0.5, ThruPlay: 0.1},
	})
	require.NoError(t, err)
	require.Len(t, ranked, 3)

	assert.Equal(t, "best", ranked[0].AdName)
	assert.Equal(t, 100.0, ranked[0].Score, "batch maximum maps to exactly 100")
	for _, rec := range ranked {
		assert.GreaterOrEqual(t, rec.Score, 0.0)
		assert.LessOrEqual(t, rec.Score, 100.0)
	}
}

func TestScore_DegenerateColumnNormalizesToZero(t *testing.T) {
	scorer, err := NewScorer(map[string]float64{domain.MetricCTR: 0.5, domain.MetricCVR: 0.5})
	require.NoError(t, err)

	// CTR is constant across the batch; only CVR separates the records.
	ranked, err := scorer.Score([]domain.CreativeRecord{
		{AdName: "a", CTR: 0.02, CVR: 0.10},
		{AdName: "b", CTR: 0.02, CVR: 0.05},
	})
	require.NoError(t, err)

	for _, rec := range ranked {
		assert.Equal(t, 0.0, rec.Normalized[domain.MetricCTR], "constant column yields 0, not NaN")
	}
	assert.Equal(t, "a", ranked[0].AdName)
	assert.Equal(t, 100.0, ranked[0].Score)
}

func TestScore_SingleRecordGuardsRescale(t *testing.T) {
	scorer, err := NewScorer(testWeights)
	require.NoError(t, err)

	// One record: every metric is degenerate, composite is 0, and the
	// rescale division must be skipped rather than producing NaN.
	ranked, err := scorer.Score([]domain.CreativeRecord{
		{AdName: "only", CTR: 0.05, CVR: 0.10, ROAS: 4.0, ThruPlay: 0.3},
	})
	require.NoError(t, err)
	require.Len(t, ranked, 1)
	assert.Equal(t, 0.0, ranked[0].Score)
}

func TestScore_RanksPurchaseRateScenario(t *testing.T) {
	// Three identical creatives except for purchases-driven CVR:
	// the higher-CVR record must rank first.
	scorer, err := NewScorer(testWeights)
	require.NoError(t, err)

	ranked, err := scorer.Score([]domain.CreativeRecord{
		{AdName: "rec2", CTR: 0.02, CVR: 0.05, ROAS: 2.0, ThruPlay: 0.1},
		{AdName: "rec1", CTR: 0.02, CVR: 0.10, ROAS: 2.0, ThruPlay: 0.1},
	})
	require.NoError(t, err)
	assert.Equal(t, "rec1", ranked[0].AdName)
	assert.Greater(t, ranked[0].Score, ranked[1].Score)
}

func TestScore_MonotoneInWeightedInput(t *testing.T) {
	scorer, err := NewScorer(testWeights)
	require.NoError(t, err)

	base := []domain.CreativeRecord{
		{AdName: "a", CTR: 0.02, CVR: 0.05, ROAS: 1.0, ThruPlay: 0.1},
		{AdName: "b", CTR: 0.04, CVR: 0.02, ROAS: 3.0, ThruPlay: 0.2},
		{AdName: "c", CTR: 0.01, CVR: 0.08, ROAS: 2.0, ThruPlay: 0.0},
	}
	ranked, err := scorer.Score(base)
	require.NoError(t, err)

	// Raising one metric for one record cannot lower its pre-rescale
	// composite relative to unchanged records below it.
	boosted := make([]domain.CreativeRecord, len(base))
	copy(boosted, base)
	boosted[2].ROAS = 5.0
	reranked, err := scorer.Score(boosted)
	require.NoError(t, err)

	posBefore := rankOf(ranked, "c")
	posAfter := rankOf(reranked, "c")
	assert.LessOrEqual(t, posAfter, posBefore, "improving a metric never demotes the record")
}

func TestScore_DeterministicTieBreak(t *testing.T) {
	scorer, err := NewScorer(testWeights)
	require.NoError(t, err)

	ranked, err := scorer.Score([]domain.CreativeRecord{
		{AdName: "zeta", CTR: 0.02, CVR: 0.05, ROAS: 2.0, ThruPlay: 0.1},
		{AdName: "alpha", CTR: 0.02, CVR: 0.05, ROAS: 2.0, ThruPlay: 0.1},
		{AdName: "best", CTR: 0.04, CVR: 0.08, ROAS: 4.0, ThruPlay: 0.2},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"best", "alpha", "zeta"}, []string{ranked[0].AdName, ranked[1].AdName, ranked[2].AdName})
}

func TestComputeBounds(t *testing.T) {
	records := []domain.CreativeRecord{
		{CTR: 0.01}, {CTR: 0.05}, {CTR: 0.03},
	}
	bounds := ComputeBounds(records, []string{domain.MetricCTR})

	b := bounds[domain.MetricCTR]
	assert.Equal(t, 0.01, b.Min)
	assert.Equal(t, 0.05, b.Max)
	assert.False(t, b.Degenerate())
	assert.InDelta(t, 0.5, b.Normalize(0.03), 1e-9)
}

func rankOf(records []domain.CreativeRecord, name string) int {
	for i := range records {
		if records[i].AdName == name {
			return i
		}
	}
	return -1
}
