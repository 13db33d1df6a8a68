package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"gobevtrend_api/internal/catalog/models"
)

type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(db *sql.DB) *ProductRepository {
	return &ProductRepository{db: db}
}

func (r *ProductRepository) GetByID(id string) (*models.Product, error) {
	query := `SELECT id, name, brand, category, subcategory, volume_ml, abv, upc, is_active
			  FROM bevtrend.products WHERE id = $1`

	product, err := scanProduct(r.db.QueryRow(query, id))
	if err != nil {
		return nil, fmt.Errorf("failed to get product %s: %w", id, err)
	}
	return product, nil
}

// GetByUPC looks up a product by its normalized UPC. Returns (nil, nil)
// when no product carries that UPC.
func (r *ProductRepository) GetByUPC(upc string) (*models.Product, error) {
	query := `SELECT id, name, brand, category, subcategory, volume_ml, abv, upc, is_active
			  FROM bevtrend.products WHERE upc = $1 AND is_active`

	product, err := scanProduct(r.db.QueryRow(query, upc))
	if err != nil {
		return nil, fmt.Errorf("failed to get product by upc: %w", err)
	}
	return product, nil
}

func (r *ProductRepository) Create(product *models.Product) error {
	query := `INSERT INTO bevtrend.products
			  (id, name, brand, category, subcategory, volume_ml, abv, upc, is_active)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.db.Exec(query,
		product.ID, product.Name, nullString(product.Brand), product.Category,
		nullString(product.Subcategory), product.VolumeML, product.ABV,
		nullString(product.UPC), product.IsActive,
	)
	if err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// ActiveCandidates returns active products for the fuzzy cascade, optionally
// filtered by category. The limit bounds the candidate set so fuzzy matching
// stays O(limit) per call.
func (r *ProductRepository) ActiveCandidates(category string, limit int) ([]models.Product, error) {
	query := `SELECT id, name, brand, category, subcategory, volume_ml, abv, upc, is_active
			  FROM bevtrend.products WHERE is_active`
	args := []interface{}{}
	if category != "" {
		query += ` AND category = $1`
		args = append(args, category)
	}
	query += fmt.Sprintf(` LIMIT %d`, limit)

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query candidates: %w", err)
	}
	defer rows.Close()

	var candidates []models.Product
	for rows.Next() {
		product, err := scanProductRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan candidate: %w", err)
		}
		candidates = append(candidates, *product)
	}
	return candidates, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanProduct(row *sql.Row) (*models.Product, error) {
	product, err := scanProductRow(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return product, nil
}

func scanProductRow(row rowScanner) (*models.Product, error) {
	var product models.Product
	var brand, subcategory, upc sql.NullString
	err := row.Scan(
		&product.ID, &product.Name, &brand, &product.Category, &subcategory,
		&product.VolumeML, &product.ABV, &upc, &product.IsActive,
	)
	if err != nil {
		return nil, err
	}
	product.Brand = brand.String
	product.Subcategory = subcategory.String
	product.UPC = upc.String
	return &product, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
