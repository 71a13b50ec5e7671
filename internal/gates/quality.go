// Package gates filters out creatives whose volume is too low for their
// ratios to be statistically meaningful.
package gates

import (
	"fmt"
	"math"

	"github.com/rs/zerolog/log"

	"github.com/adscope/creativerank/internal/config"
	"github.com/adscope/creativerank/internal/domain"
)

// QualityGate is the pure keep/drop predicate applied before scoring.
// Applying it twice is a no-op: the thresholds do not depend on the
// surviving set.
type QualityGate struct {
	cfg config.GateConfig
}

// NewQualityGate creates a gate from the configured thresholds.
func NewQualityGate(cfg config.GateConfig) *QualityGate {
	return &QualityGate{cfg: cfg}
}

// Result reports the gate outcome for a single creative.
type Result struct {
	AdName  string
	Pass    bool
	Reasons []string
}

// Evaluate checks one record against every gate and collects the reasons
// it failed, for explainability in the run manifest and logs.
func (g *QualityGate) Evaluate(rec domain.CreativeRecord) Result {
	res := Result{AdName: rec.AdName, Pass: true}

	fail := func(reason string) {
		res.Pass = false
		res.Reasons = append(res.Reasons, reason)
	}

	spend := finiteOrZero(rec.Spend)
	impressions := finiteOrZero(rec.Impressions)
	purchases := finiteOrZero(rec.Purchases)

	if spend < g.cfg.MinSpend {
		fail(fmt.Sprintf("spend %.2f below minimum %.2f", spend, g.cfg.MinSpend))
	}
	if impressions < g.cfg.MinImpressions {
		fail(fmt.Sprintf("impressions %.0f below minimum %.0f", impressions, g.cfg.MinImpressions))
	}
	if spend <= 0 {
		fail("zero spend")
	}
	if g.cfg.RequirePurchases && purchases <= 0 {
		fail("zero purchases")
	}
	return res
}

// Apply filters the record set, returning the survivors and the per-record
// results for every dropped creative.
func (g *QualityGate) Apply(records []domain.CreativeRecord) ([]domain.CreativeRecord, []Result) {
	kept := make([]domain.CreativeRecord, 0, len(records))
	var dropped []Result
	for _, rec := range records {
		res := g.Evaluate(rec)
		if res.Pass {
			kept = append(kept, rec)
		} else {
			dropped = append(dropped, res)
		}
	}

	log.Debug().
		Int("in", len(records)).
		Int("kept", len(kept)).
		Int("dropped", len(dropped)).
		Msg("quality gate applied")

	return kept, dropped
}

func finiteOrZero(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
