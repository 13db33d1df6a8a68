package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"gobevtrend_api/internal/trend"
)

// TrendRepository persists trend score history and the current-score cache.
type TrendRepository struct {
	db *sql.DB
}

func NewTrendRepository(db *sql.DB) *TrendRepository {
	return &TrendRepository{db: db}
}

func (r *TrendRepository) Append(score *trend.Score) error {
	components, err := json.Marshal(score.Components)
	if err != nil {
		return fmt.Errorf("failed to marshal components: %w", err)
	}

	query := `INSERT INTO bevtrend.trend_scores
			  (product_id, calculated_at, composite, components, signal_count)
			  VALUES ($1, $2, $3, $4, $5)`
	_, err = r.db.Exec(query, score.ProductID, score.CalculatedAt, score.Composite, components, score.SignalCount)
	if err != nil {
		return fmt.Errorf("failed to append trend score: %w", err)
	}
	return nil
}

func (r *TrendRepository) UpsertCurrent(current *trend.CurrentScore) error {
	components, err := json.Marshal(current.Components)
	if err != nil {
		return fmt.Errorf("failed to marshal components: %w", err)
	}

	query := `INSERT INTO bevtrend.current_trend_scores
			  (product_id, composite, tier, momentum_24h, momentum_7d, components, calculated_at)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  ON CONFLICT (product_id) DO UPDATE SET
			  composite = EXCLUDED.composite,
			  tier = EXCLUDED.tier,
			  momentum_24h = EXCLUDED.momentum_24h,
			  momentum_7d = EXCLUDED.momentum_7d,
			  components = EXCLUDED.components,
			  calculated_at = EXCLUDED.calculated_at`
	_, err = r.db.Exec(query,
		current.ProductID, current.Composite, current.Tier,
		current.Momentum24h, current.Momentum7d, components, current.CalculatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert current trend score: %w", err)
	}
	return nil
}

func (r *TrendRepository) CompositeAt(productID string, asOf time.Time) (*int, error) {
	query := `SELECT composite FROM bevtrend.trend_scores
			  WHERE product_id = $1 AND calculated_at <= $2
			  ORDER BY calculated_at DESC LIMIT 1`

	var composite int
	err := r.db.QueryRow(query, productID, asOf).Scan(&composite)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get composite at %s: %w", asOf.Format(time.RFC3339), err)
	}
	return &composite, nil
}

func (r *TrendRepository) GetCurrent(productID string) (*trend.CurrentScore, error) {
	query := `SELECT product_id, composite, tier, momentum_24h, momentum_7d, components, calculated_at
			  FROM bevtrend.current_trend_scores WHERE product_id = $1`

	var current trend.CurrentScore
	var components []byte
	err := r.db.QueryRow(query, productID).Scan(
		&current.ProductID, &current.Composite, &current.Tier,
		&current.Momentum24h, &current.Momentum7d, &components, &current.CalculatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get current trend score: %w", err)
	}
	if err := json.Unmarshal(components, &current.Components); err != nil {
		return nil, fmt.Errorf("failed to unmarshal components: %w", err)
	}
	return &current, nil
}
