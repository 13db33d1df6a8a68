package trend

import (
	"fmt"
	"io"
	"math"
	"time"

	"gobevtrend_api/metrics"
	"gobevtrend_api/pkg/logger"
)

// Tier buckets derived from the composite score.
const (
	TierViral     = "viral"
	TierTrending  = "trending"
	TierEmerging  = "emerging"
	TierStable    = "stable"
	TierDeclining = "declining"
)

// DefaultSignalWindow is the look-back window for component signals.
const DefaultSignalWindow = 7 * 24 * time.Hour

// Score is one appended history row.
type Score struct {
	ProductID    string
	CalculatedAt time.Time
	Composite    int
	Components   map[string]int
	SignalCount  int
}

// CurrentScore is the per-product cache row, upserted on every calculation.
type CurrentScore struct {
	ProductID    string         `json:"product_id"`
	Composite    int            `json:"composite"`
	Tier         string         `json:"tier"`
	Momentum24h  int            `json:"momentum_24h"`
	Momentum7d   int            `json:"momentum_7d"`
	Components   map[string]int `json:"components"`
	CalculatedAt time.Time      `json:"calculated_at"`
}

// SignalSource aggregates a product's signal window.
type SignalSource interface {
	Signals(productID string, window time.Duration, asOf time.Time) (*ProductSignals, error)
	// ProductIDsWithSignals lists products that have any signal inside the
	// window, for batch recalculation.
	ProductIDsWithSignals(window time.Duration, asOf time.Time) ([]string, error)
}

// ScoreStore persists history rows and the current-score cache.
type ScoreStore interface {
	Append(score *Score) error
	UpsertCurrent(current *CurrentScore) error
	// CompositeAt returns the most recent stored composite at or before asOf,
	// or (nil, nil) when no history exists that early.
	CompositeAt(productID string, asOf time.Time) (*int, error)
}

// Scorer computes weighted composite trend scores.
type Scorer struct {
	signals SignalSource
	store   ScoreStore
	weights ComponentWeights
	window  time.Duration
	log     logger.Logger
}

func NewScorer(signals SignalSource, store ScoreStore, weights ComponentWeights, writer io.Writer) (*Scorer, error) {
	if err := weights.Validate(); err != nil {
		return nil, err
	}
	return &Scorer{
		signals: signals,
		store:   store,
		weights: weights,
		window:  DefaultSignalWindow,
		log:     logger.NewLogger(writer, "[TrendScorer]"),
	}, nil
}

// TierFor maps a composite score onto its named bucket.
func TierFor(composite int) string {
	switch {
	case composite >= 85:
		return TierViral
	case composite >= 70:
		return TierTrending
	case composite >= 50:
		return TierEmerging
	case composite >= 30:
		return TierStable
	default:
		return TierDeclining
	}
}

// Composite folds component scores into the weighted composite, clamped to
// [0,100] regardless of component rounding.
func Composite(components map[string]int, weights ComponentWeights) int {
	var sum float64
	for name, weight := range weights {
		sum += float64(components[name]) * weight
	}
	return clampScore(int(math.Round(sum)))
}

// CalculateScore computes, persists and returns the current score for one
// product as of the given time (zero time means now).
func (s *Scorer) CalculateScore(productID string, asOf time.Time) (*CurrentScore, error) {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}

	signals, err := s.signals.Signals(productID, s.window, asOf)
	if err != nil {
		return nil, fmt.Errorf("signals for %s: %w", productID, err)
	}

	components := make(map[string]int, len(s.weights))
	for name := range s.weights {
		components[name] = componentFuncs[name](signals, asOf)
	}
	composite := Composite(components, s.weights)

	momentum24h, err := s.momentum(productID, composite, asOf.Add(-24*time.Hour))
	if err != nil {
		return nil, err
	}
	momentum7d, err := s.momentum(productID, composite, asOf.Add(-7*24*time.Hour))
	if err != nil {
		return nil, err
	}

	if err := s.store.Append(&Score{
		ProductID:    productID,
		CalculatedAt: asOf,
		Composite:    composite,
		Components:   components,
		SignalCount:  signals.SignalCount,
	}); err != nil {
		return nil, fmt.Errorf("append trend score: %w", err)
	}

	current := &CurrentScore{
		ProductID:    productID,
		Composite:    composite,
		Tier:         TierFor(composite),
		Momentum24h:  momentum24h,
		Momentum7d:   momentum7d,
		Components:   components,
		CalculatedAt: asOf,
	}
	if err := s.store.UpsertCurrent(current); err != nil {
		return nil, fmt.Errorf("upsert current score: %w", err)
	}
	return current, nil
}

// momentum is the difference between the fresh composite and the most recent
// stored composite at or before the horizon. Without earlier history the
// current score is its own baseline and momentum is 0.
func (s *Scorer) momentum(productID string, composite int, horizon time.Time) (int, error) {
	earlier, err := s.store.CompositeAt(productID, horizon)
	if err != nil {
		return 0, fmt.Errorf("composite at %s: %w", horizon.Format(time.RFC3339), err)
	}
	if earlier == nil {
		return 0, nil
	}
	return composite - *earlier, nil
}

// BatchStats summarizes one batch recalculation.
type BatchStats struct {
	Calculated int
	Failed     int
}

// CalculateAll recalculates every product with a recent signal. Per-product
// failures are logged and counted, never abort the batch.
func (s *Scorer) CalculateAll(asOf time.Time) (BatchStats, error) {
	if asOf.IsZero() {
		asOf = time.Now().UTC()
	}
	ids, err := s.signals.ProductIDsWithSignals(s.window, asOf)
	if err != nil {
		return BatchStats{}, fmt.Errorf("list products with signals: %w", err)
	}

	var stats BatchStats
	for _, id := range ids {
		if _, err := s.CalculateScore(id, asOf); err != nil {
			s.log.Log("score failed for %s: %v", id, err)
			metrics.RecordTrendCalculation(false)
			stats.Failed++
			continue
		}
		metrics.RecordTrendCalculation(true)
		stats.Calculated++
	}
	s.log.Log("batch complete: %d calculated, %d failed", stats.Calculated, stats.Failed)
	return stats, nil
}
