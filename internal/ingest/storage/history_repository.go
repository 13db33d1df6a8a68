package storage

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/lib/pq"

	"gobevtrend_api/internal/catalog/models"
)

// HistoryRepository appends price and inventory observations. Both tables
// are append-only timeseries: one row per observation, never updated.
type HistoryRepository struct {
	db *sql.DB
}

func NewHistoryRepository(db *sql.DB) *HistoryRepository {
	return &HistoryRepository{db: db}
}

func (r *HistoryRepository) RecordPrice(productID, distributorSlug string, price float64, priceType models.PriceType, recordedAt time.Time) error {
	query := `INSERT INTO bevtrend.price_history
			  (product_id, distributor_slug, price, price_type, recorded_at)
			  VALUES ($1, $2, $3, $4, $5)`

	_, err := r.db.Exec(query, productID, distributorSlug, price, string(priceType), recordedAt)
	if err != nil {
		return fmt.Errorf("failed to record price: %w", err)
	}
	return nil
}

func (r *HistoryRepository) RecordInventory(productID, distributorSlug string, inventory *int, inStock bool, availableStates []string, recordedAt time.Time) error {
	query := `INSERT INTO bevtrend.inventory_history
			  (product_id, distributor_slug, inventory, in_stock, available_states, recorded_at)
			  VALUES ($1, $2, $3, $4, $5, $6)`

	_, err := r.db.Exec(query, productID, distributorSlug, inventory, inStock, pq.Array(availableStates), recordedAt)
	if err != nil {
		return fmt.Errorf("failed to record inventory: %w", err)
	}
	return nil
}
