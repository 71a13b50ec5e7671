// Package derive computes per-creative efficiency and engagement ratios
// from the raw export counts.
package derive

import (
	"math"

	"github.com/adscope/creativerank/internal/config"
	"github.com/adscope/creativerank/internal/domain"
)

// Deriver applies the ratio derivations to a record set.
type Deriver struct {
	policy config.ZeroDivisionPolicy
}

// NewDeriver creates a deriver with the given zero-denominator policy.
func NewDeriver(cfg config.DeriveConfig) *Deriver {
	return &Deriver{policy: cfg.ZeroDivision}
}

// Apply computes CVR, CTR, CPA and ThruPlay for every record. Under the
// default zero policy a zero or missing denominator yields exactly 0,
// keeping the record in the batch with a neutral value. Under the drop
// policy such records are removed instead, which changes ranking for
// low-denominator creatives.
func (d *Deriver) Apply(records []domain.CreativeRecord) []domain.CreativeRecord {
	out := records[:0]
	for _, rec := range records {
		if d.policy == config.ZeroDivisionDrop && hasZeroDenominator(rec) {
			continue
		}
		rec.CVR = safeDiv(rec.Purchases, rec.OutboundClicks)
		rec.CTR = sanitize(rec.CTRRaw / 100)
		rec.CPA = safeDiv(rec.Spend, rec.Purchases)
		rec.ThruPlay = safeDiv(rec.VideoPlays95, rec.Impressions)
		if math.IsNaN(rec.ROAS) {
			rec.ROAS = 0
		}
		out = append(out, rec)
	}
	return out
}

func hasZeroDenominator(rec domain.CreativeRecord) bool {
	for _, den := range []float64{rec.OutboundClicks, rec.Purchases, rec.Impressions} {
		if den == 0 || math.IsNaN(den) {
			return true
		}
	}
	return false
}

// safeDiv divides num by den, yielding exactly 0 for any zero, missing,
// or non-finite operand or result.
func safeDiv(num, den float64) float64 {
	if den == 0 || math.IsNaN(den) || math.IsNaN(num) {
		return 0
	}
	return sanitize(num / den)
}

func sanitize(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
