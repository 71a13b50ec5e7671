package vision

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"

	"github.com/adscope/creativerank/internal/config"
	"github.com/adscope/creativerank/internal/domain"
)

// MockClient simulates a remote vision model. It is wrapped in the same
// pacing and circuit-breaker machinery a real classifier client would
// carry, so swapping in a live model changes only the call inside
// Execute. Tags are drawn from a seeded PRNG conditioned on the score
// band, which makes runs reproducible for a fixed seed and record order.
type MockClient struct {
	mu      sync.Mutex
	rng     *rand.Rand
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

// NewMockClient builds the mock classifier from the vision configuration.
// A zero seed falls back to the clock.
func NewMockClient(cfg config.VisionConfig) *MockClient {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	settings := gobreaker.Settings{
		Name:        "vision-classifier",
		MaxRequests: cfg.BreakerMaxRequests,
		Interval:    time.Duration(cfg.BreakerIntervalSeconds) * time.Second,
		Timeout:     time.Duration(cfg.BreakerTimeoutSeconds) * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerConsecutiveFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn().Str("breaker", name).Str("from", from.String()).Str("to", to.String()).Msg("classifier breaker state change")
		},
	}

	return &MockClient{
		rng:     rand.New(rand.NewSource(seed)),
		limiter: rate.NewLimiter(rate.Limit(cfg.RatePerSecond), cfg.Burst),
		breaker: gobreaker.NewCircuitBreaker(settings),
	}
}

// Tag classifies one creative. The call is paced by the token bucket and
// routed through the breaker exactly as a live classifier call would be.
func (c *MockClient) Tag(ctx context.Context, rec domain.CreativeRecord) (map[string]string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("classifier pacing: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.classify(rec), nil
	})
	if err != nil {
		return nil, fmt.Errorf("classify %s: %w", rec.AdName, err)
	}
	return result.(map[string]string), nil
}

func (c *MockClient) classify(rec domain.CreativeRecord) map[string]string {
	c.mu.Lock()
	defer c.mu.Unlock()

	tags := map[string]string{
		domain.DimFormat:  pick(c.rng, formatTags),
		domain.DimSetting: pick(c.rng, settingTags),
		domain.DimColor:   pick(c.rng, colorTags),
	}

	switch {
	case rec.Score >= bandHighMin:
		tags[domain.DimHook] = pick(c.rng, highHookTags)
		tags[domain.DimEmotion] = pick(c.rng, highEmotionTags)
	case rec.Score <= bandLowMax:
		tags[domain.DimHook] = pick(c.rng, lowHookTags)
		tags[domain.DimEmotion] = pick(c.rng, lowEmotionTags)
	default:
		tags[domain.DimHook] = pick(c.rng, midHookTags)
		tags[domain.DimEmotion] = pick(c.rng, midEmotionTags)
	}
	return tags
}

func pick(rng *rand.Rand, options []string) string {
	return options[rng.Intn(len(options))]
}
