package storage

import (
	"database/sql"
	"fmt"
	"time"

	"gobevtrend_api/internal/trend"
)

// SignalRepository aggregates the per-product signal window the scorer
// consumes: price and inventory observations, alias activity, media and
// social mentions.
type SignalRepository struct {
	db *sql.DB
}

func NewSignalRepository(db *sql.DB) *SignalRepository {
	return &SignalRepository{db: db}
}

func (r *SignalRepository) Signals(productID string, window time.Duration, asOf time.Time) (*trend.ProductSignals, error) {
	since := asOf.Add(-window)
	signals := &trend.ProductSignals{ProductID: productID}

	err := r.db.QueryRow(
		`SELECT category FROM bevtrend.products WHERE id = $1`, productID,
	).Scan(&signals.Category)
	if err != nil {
		return nil, fmt.Errorf("failed to get product category: %w", err)
	}

	err = r.db.QueryRow(
		`SELECT COUNT(DISTINCT distributor_slug) FROM bevtrend.price_history
		 WHERE product_id = $1 AND recorded_at BETWEEN $2 AND $3`,
		productID, since, asOf,
	).Scan(&signals.DistributorCount)
	if err != nil {
		return nil, fmt.Errorf("failed to count distributors: %w", err)
	}

	err = r.db.QueryRow(
		`SELECT COUNT(*) FROM bevtrend.product_aliases
		 WHERE product_id = $1 AND created_at BETWEEN $2 AND $3`,
		productID, since, asOf,
	).Scan(&signals.NewListings)
	if err != nil {
		return nil, fmt.Errorf("failed to count new listings: %w", err)
	}

	err = r.db.QueryRow(
		`SELECT COALESCE(MAX(cardinality(available_states)), 0)
		 FROM bevtrend.inventory_history
		 WHERE product_id = $1 AND recorded_at BETWEEN $2 AND $3`,
		productID, since, asOf,
	).Scan(&signals.StateCount)
	if err != nil {
		return nil, fmt.Errorf("failed to measure state breadth: %w", err)
	}

	if err := r.loadPricePoints(signals, productID, since, asOf); err != nil {
		return nil, err
	}
	if err := r.loadInventoryPoints(signals, productID, since, asOf); err != nil {
		return nil, err
	}
	if err := r.loadMentions(signals, productID, since, asOf); err != nil {
		return nil, err
	}

	signals.SignalCount = len(signals.PricePoints) + len(signals.InventoryPoints) +
		signals.MediaMentions + signals.SocialMentions + signals.NewListings
	return signals, nil
}

func (r *SignalRepository) loadPricePoints(signals *trend.ProductSignals, productID string, since, asOf time.Time) error {
	rows, err := r.db.Query(
		`SELECT price, recorded_at FROM bevtrend.price_history
		 WHERE product_id = $1 AND recorded_at BETWEEN $2 AND $3
		 ORDER BY recorded_at`,
		productID, since, asOf,
	)
	if err != nil {
		return fmt.Errorf("failed to query price points: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var point trend.PricePoint
		if err := rows.Scan(&point.Price, &point.RecordedAt); err != nil {
			return fmt.Errorf("failed to scan price point: %w", err)
		}
		signals.PricePoints = append(signals.PricePoints, point)
	}
	return rows.Err()
}

func (r *SignalRepository) loadInventoryPoints(signals *trend.ProductSignals, productID string, since, asOf time.Time) error {
	rows, err := r.db.Query(
		`SELECT COALESCE(inventory, 0), in_stock, recorded_at FROM bevtrend.inventory_history
		 WHERE product_id = $1 AND recorded_at BETWEEN $2 AND $3
		 ORDER BY recorded_at`,
		productID, since, asOf,
	)
	if err != nil {
		return fmt.Errorf("failed to query inventory points: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var point trend.InventoryPoint
		if err := rows.Scan(&point.Inventory, &point.InStock, &point.RecordedAt); err != nil {
			return fmt.Errorf("failed to scan inventory point: %w", err)
		}
		signals.InventoryPoints = append(signals.InventoryPoints, point)
	}
	return rows.Err()
}

func (r *SignalRepository) loadMentions(signals *trend.ProductSignals, productID string, since, asOf time.Time) error {
	err := r.db.QueryRow(
		`SELECT COUNT(*) FILTER (WHERE channel = 'media'),
		        COALESCE(AVG(sentiment) FILTER (WHERE channel = 'media'), 0),
		        COUNT(*) FILTER (WHERE channel = 'social')
		 FROM bevtrend.media_mentions
		 WHERE product_id = $1 AND mentioned_at BETWEEN $2 AND $3`,
		productID, since, asOf,
	).Scan(&signals.MediaMentions, &signals.MediaSentiment, &signals.SocialMentions)
	if err != nil {
		return fmt.Errorf("failed to count mentions: %w", err)
	}
	return nil
}

// ProductIDsWithSignals lists products with any observation in the window.
func (r *SignalRepository) ProductIDsWithSignals(window time.Duration, asOf time.Time) ([]string, error) {
	since := asOf.Add(-window)
	query := `SELECT product_id FROM bevtrend.price_history WHERE recorded_at BETWEEN $1 AND $2
			  UNION
			  SELECT product_id FROM bevtrend.inventory_history WHERE recorded_at BETWEEN $1 AND $2
			  UNION
			  SELECT product_id FROM bevtrend.media_mentions WHERE mentioned_at BETWEEN $1 AND $2`

	rows, err := r.db.Query(query, since, asOf)
	if err != nil {
		return nil, fmt.Errorf("failed to list products with signals: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan product id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
