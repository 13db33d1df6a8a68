package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"gobevtrend_api/internal/catalog/models"
)

const uniqueViolationCode = "23505"

type AliasRepository struct {
	db *sql.DB
}

func NewAliasRepository(db *sql.DB) *AliasRepository {
	return &AliasRepository{db: db}
}

// Find returns the alias for (source, externalID), or (nil, nil) when
// no such alias exists.
func (r *AliasRepository) Find(source, externalID string) (*models.ProductAlias, error) {
	query := `SELECT product_id, source, external_id, external_name, external_url, confidence, created_at
			  FROM bevtrend.product_aliases WHERE source = $1 AND external_id = $2`

	var alias models.ProductAlias
	var externalName, externalURL sql.NullString
	err := r.db.QueryRow(query, source, externalID).Scan(
		&alias.ProductID, &alias.Source, &alias.ExternalID,
		&externalName, &externalURL, &alias.Confidence, &alias.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find alias: %w", err)
	}
	alias.ExternalName = externalName.String
	alias.ExternalURL = externalURL.String
	return &alias, nil
}

// Create inserts an alias. A conflicting (source, external_id) pair is an
// idempotent success: the existing row wins and no error is returned.
func (r *AliasRepository) Create(alias *models.ProductAlias) error {
	query := `INSERT INTO bevtrend.product_aliases
			  (product_id, source, external_id, external_name, external_url, confidence, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6, now())
			  ON CONFLICT (source, external_id) DO NOTHING`

	_, err := r.db.Exec(query,
		alias.ProductID, alias.Source, alias.ExternalID,
		nullString(alias.ExternalName), nullString(alias.ExternalURL), alias.Confidence,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolationCode {
			return nil
		}
		return fmt.Errorf("failed to create alias: %w", err)
	}
	return nil
}

func (r *AliasRepository) ListForProduct(productID string) ([]models.ProductAlias, error) {
	query := `SELECT product_id, source, external_id, external_name, external_url, confidence, created_at
			  FROM bevtrend.product_aliases WHERE product_id = $1 ORDER BY created_at`

	rows, err := r.db.Query(query, productID)
	if err != nil {
		return nil, fmt.Errorf("failed to list aliases: %w", err)
	}
	defer rows.Close()

	var aliases []models.ProductAlias
	for rows.Next() {
		var alias models.ProductAlias
		var externalName, externalURL sql.NullString
		if err := rows.Scan(
			&alias.ProductID, &alias.Source, &alias.ExternalID,
			&externalName, &externalURL, &alias.Confidence, &alias.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan alias: %w", err)
		}
		alias.ExternalName = externalName.String
		alias.ExternalURL = externalURL.String
		aliases = append(aliases, alias)
	}
	return aliases, rows.Err()
}
