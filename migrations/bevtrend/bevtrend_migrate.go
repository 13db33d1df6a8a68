package bevtrend

import (
	"database/sql"
	"fmt"
	"log"
)

func checkAndSkipMigration(db *sql.DB, migrationName string) (bool, error) {
	var migrationExists bool
	err := db.QueryRow("SELECT EXISTS (SELECT 1 FROM migrations.migrations WHERE name = $1)", migrationName).Scan(&migrationExists)
	if err != nil {
		return false, fmt.Errorf("failed to check migration status: %w", err)
	}
	if migrationExists {
		log.Printf("Migration '%s' already completed. Skipping.", migrationName)
	}
	return migrationExists, nil
}

func executeAndMarkMigration(db *sql.DB, query, migrationName string) error {
	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("failed to apply migration '%s': %w", migrationName, err)
	}
	_, err = db.Exec("INSERT INTO migrations.migrations (name, time) VALUES ($1, current_timestamp)", migrationName)
	if err != nil {
		return fmt.Errorf("failed to mark migration '%s' as complete: %w", migrationName, err)
	}
	return nil
}

// MigrationsBootstrap creates the bookkeeping schema every other migration
// checks against. Must run first.
type MigrationsBootstrap struct{}

func (m *MigrationsBootstrap) UpMigration(db *sql.DB) error {
	query := `
	CREATE SCHEMA IF NOT EXISTS migrations;
	CREATE TABLE IF NOT EXISTS migrations.migrations (
		name TEXT PRIMARY KEY,
		time TIMESTAMPTZ NOT NULL
	);
	CREATE SCHEMA IF NOT EXISTS bevtrend;`
	if _, err := db.Exec(query); err != nil {
		return fmt.Errorf("failed to bootstrap migrations schema: %w", err)
	}
	return nil
}

type CreateProductsTable struct{}

func (m *CreateProductsTable) UpMigration(db *sql.DB) error {
	if ok, err := checkAndSkipMigration(db, "bevtrend.products"); err != nil {
		return err
	} else if ok {
		return nil
	}
	query := `
	CREATE TABLE IF NOT EXISTS bevtrend.products (
		id UUID PRIMARY KEY,
		name TEXT NOT NULL,
		brand VARCHAR(255),
		category VARCHAR(64) NOT NULL,
		subcategory VARCHAR(64),
		volume_ml INT,
		abv NUMERIC(5,2),
		upc VARCHAR(32),
		is_active BOOLEAN NOT NULL DEFAULT TRUE
	);
	CREATE INDEX IF NOT EXISTS products_upc_idx ON bevtrend.products(upc) WHERE upc IS NOT NULL;
	CREATE INDEX IF NOT EXISTS products_category_idx ON bevtrend.products(category) WHERE is_active;`
	if err := executeAndMarkMigration(db, query, "bevtrend.products"); err != nil {
		return err
	}
	log.Println("Migration 'bevtrend.products' completed successfully.")
	return nil
}

type CreateProductAliasesTable struct{}

func (m *CreateProductAliasesTable) UpMigration(db *sql.DB) error {
	if ok, err := checkAndSkipMigration(db, "bevtrend.product_aliases"); err != nil {
		return err
	} else if ok {
		return nil
	}
	query := `
	CREATE TABLE IF NOT EXISTS bevtrend.product_aliases (
		product_id UUID NOT NULL REFERENCES bevtrend.products(id),
		source VARCHAR(64) NOT NULL,
		external_id VARCHAR(255) NOT NULL,
		external_name TEXT,
		external_url TEXT,
		confidence NUMERIC(4,3) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (source, external_id)
	);
	CREATE INDEX IF NOT EXISTS product_aliases_product_idx ON bevtrend.product_aliases(product_id);`
	if err := executeAndMarkMigration(db, query, "bevtrend.product_aliases"); err != nil {
		return err
	}
	log.Println("Migration 'bevtrend.product_aliases' completed successfully.")
	return nil
}

type CreatePriceHistoryTable struct{}

func (m *CreatePriceHistoryTable) UpMigration(db *sql.DB) error {
	if ok, err := checkAndSkipMigration(db, "bevtrend.price_history"); err != nil {
		return err
	} else if ok {
		return nil
	}
	query := `
	CREATE TABLE IF NOT EXISTS bevtrend.price_history (
		id BIGSERIAL PRIMARY KEY,
		product_id UUID NOT NULL REFERENCES bevtrend.products(id),
		distributor_slug VARCHAR(64),
		price NUMERIC(10,2) NOT NULL,
		price_type VARCHAR(16) NOT NULL,
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS price_history_product_idx ON bevtrend.price_history(product_id, recorded_at);`
	if err := executeAndMarkMigration(db, query, "bevtrend.price_history"); err != nil {
		return err
	}
	log.Println("Migration 'bevtrend.price_history' completed successfully.")
	return nil
}

type CreateInventoryHistoryTable struct{}

func (m *CreateInventoryHistoryTable) UpMigration(db *sql.DB) error {
	if ok, err := checkAndSkipMigration(db, "bevtrend.inventory_history"); err != nil {
		return err
	} else if ok {
		return nil
	}
	query := `
	CREATE TABLE IF NOT EXISTS bevtrend.inventory_history (
		id BIGSERIAL PRIMARY KEY,
		product_id UUID NOT NULL REFERENCES bevtrend.products(id),
		distributor_slug VARCHAR(64),
		inventory INT,
		in_stock BOOLEAN NOT NULL,
		available_states TEXT[],
		recorded_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS inventory_history_product_idx ON bevtrend.inventory_history(product_id, recorded_at);`
	if err := executeAndMarkMigration(db, query, "bevtrend.inventory_history"); err != nil {
		return err
	}
	log.Println("Migration 'bevtrend.inventory_history' completed successfully.")
	return nil
}

type CreateScraperStateTable struct{}

func (m *CreateScraperStateTable) UpMigration(db *sql.DB) error {
	if ok, err := checkAndSkipMigration(db, "bevtrend.scraper_state"); err != nil {
		return err
	} else if ok {
		return nil
	}
	query := `
	CREATE TABLE IF NOT EXISTS bevtrend.scraper_state (
		distributor_slug VARCHAR(64) NOT NULL,
		date DATE NOT NULL,
		items_scraped INT NOT NULL DEFAULT 0,
		daily_limit INT NOT NULL,
		last_offset INT NOT NULL DEFAULT 0,
		last_category VARCHAR(255),
		last_session_at TIMESTAMPTZ,
		sessions_today INT NOT NULL DEFAULT 0,
		last_error TEXT,
		PRIMARY KEY (distributor_slug, date)
	);`
	if err := executeAndMarkMigration(db, query, "bevtrend.scraper_state"); err != nil {
		return err
	}
	log.Println("Migration 'bevtrend.scraper_state' completed successfully.")
	return nil
}

type CreateTrendScoresTable struct{}

func (m *CreateTrendScoresTable) UpMigration(db *sql.DB) error {
	if ok, err := checkAndSkipMigration(db, "bevtrend.trend_scores"); err != nil {
		return err
	} else if ok {
		return nil
	}
	query := `
	CREATE TABLE IF NOT EXISTS bevtrend.trend_scores (
		id BIGSERIAL PRIMARY KEY,
		product_id UUID NOT NULL REFERENCES bevtrend.products(id),
		calculated_at TIMESTAMPTZ NOT NULL,
		composite INT NOT NULL,
		components JSONB NOT NULL,
		signal_count INT NOT NULL DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS trend_scores_product_idx ON bevtrend.trend_scores(product_id, calculated_at);`
	if err := executeAndMarkMigration(db, query, "bevtrend.trend_scores"); err != nil {
		return err
	}
	log.Println("Migration 'bevtrend.trend_scores' completed successfully.")
	return nil
}

type CreateCurrentTrendScoresTable struct{}

func (m *CreateCurrentTrendScoresTable) UpMigration(db *sql.DB) error {
	if ok, err := checkAndSkipMigration(db, "bevtrend.current_trend_scores"); err != nil {
		return err
	} else if ok {
		return nil
	}
	query := `
	CREATE TABLE IF NOT EXISTS bevtrend.current_trend_scores (
		product_id UUID PRIMARY KEY REFERENCES bevtrend.products(id),
		composite INT NOT NULL,
		tier VARCHAR(16) NOT NULL,
		momentum_24h INT NOT NULL DEFAULT 0,
		momentum_7d INT NOT NULL DEFAULT 0,
		components JSONB NOT NULL,
		calculated_at TIMESTAMPTZ NOT NULL
	);`
	if err := executeAndMarkMigration(db, query, "bevtrend.current_trend_scores"); err != nil {
		return err
	}
	log.Println("Migration 'bevtrend.current_trend_scores' completed successfully.")
	return nil
}

type CreateMediaMentionsTable struct{}

func (m *CreateMediaMentionsTable) UpMigration(db *sql.DB) error {
	if ok, err := checkAndSkipMigration(db, "bevtrend.media_mentions"); err != nil {
		return err
	} else if ok {
		return nil
	}
	query := `
	CREATE TABLE IF NOT EXISTS bevtrend.media_mentions (
		id BIGSERIAL PRIMARY KEY,
		product_id UUID NOT NULL REFERENCES bevtrend.products(id),
		channel VARCHAR(16) NOT NULL,
		source VARCHAR(255),
		sentiment NUMERIC(4,3) NOT NULL DEFAULT 0,
		mentioned_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	CREATE INDEX IF NOT EXISTS media_mentions_product_idx ON bevtrend.media_mentions(product_id, mentioned_at);`
	if err := executeAndMarkMigration(db, query, "bevtrend.media_mentions"); err != nil {
		return err
	}
	log.Println("Migration 'bevtrend.media_mentions' completed successfully.")
	return nil
}
