// Package vision attaches visual-content tags to creatives. The default
// implementation is an explicit stand-in for a real content-classification
// model; the correlation stage is independent of how tags are produced.
package vision

import (
	"context"

	"github.com/adscope/creativerank/internal/domain"
)

// Tagger classifies one creative into a value per tag dimension.
// Implementations receive the scored record because the mock conditions
// its vocabulary on score bands; a real classifier should look only at
// the creative content behind rec.CreativeLink — sourcing tags from the
// score itself would manufacture the correlations the analysis stage is
// meant to discover.
type Tagger interface {
	Tag(ctx context.Context, rec domain.CreativeRecord) (map[string]string, error)
}

// Score bands used by the mock vocabulary.
const (
	bandHighMin = 80.0
	bandLowMax  = 30.0
)

var (
	formatTags  = []string{"UGC-Style Video", "Studio Shoot", "Static Image", "Carousel"}
	settingTags = []string{"Indoor Fashion Shot", "Outdoor Lifestyle", "Product Demo", "Text Overlay Only"}
	colorTags   = []string{"Black/White", "Vibrant Pink/Red", "Muted Earth Tones", "Cool Blue/Green"}

	highHookTags    = []string{"Strong Text Hook (5+ words)", "Fast-paced editing", "Direct-to-camera speaking"}
	highEmotionTags = []string{"Excitement/Urgency", "Calm/Luxurious"}

	lowHookTags    = []string{"Slow Intro/Weak Hook", "Busy Background", "No clear CTA"}
	lowEmotionTags = []string{"Confused/Aesthetic Only", "Boring/Neutral"}

	midHookTags    = []string{"Standard Product Showcase", "Medium-paced edit"}
	midEmotionTags = []string{"Informative", "Pleasant"}
)
