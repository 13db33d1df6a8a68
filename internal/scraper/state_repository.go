package scraper

import (
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// ScraperState is the per-distributor, per-day session ledger. Exactly one
// row per (distributor_slug, date); the budget resets with a fresh row each
// calendar day.
type ScraperState struct {
	DistributorSlug string
	Date            time.Time
	ItemsScraped    int
	DailyLimit      int
	LastOffset      int
	LastCategory    string
	LastSessionAt   *time.Time
	SessionsToday   int
	LastError       string
}

// Remaining is the unspent part of the day's budget.
func (s *ScraperState) Remaining() int {
	remaining := s.DailyLimit - s.ItemsScraped
	if remaining < 0 {
		return 0
	}
	return remaining
}

type StateRepository struct {
	db *sql.DB
}

func NewStateRepository(db *sql.DB) *StateRepository {
	return &StateRepository{db: db}
}

// GetForDay returns the state row for (slug, day), or (nil, nil) when no
// session has run yet that day.
func (r *StateRepository) GetForDay(slug string, day time.Time) (*ScraperState, error) {
	query := `SELECT distributor_slug, date, items_scraped, daily_limit, last_offset,
			  last_category, last_session_at, sessions_today, COALESCE(last_error, '')
			  FROM bevtrend.scraper_state WHERE distributor_slug = $1 AND date = $2`

	var state ScraperState
	var lastCategory sql.NullString
	err := r.db.QueryRow(query, slug, day.Format("2006-01-02")).Scan(
		&state.DistributorSlug, &state.Date, &state.ItemsScraped, &state.DailyLimit,
		&state.LastOffset, &lastCategory, &state.LastSessionAt, &state.SessionsToday,
		&state.LastError,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get scraper state: %w", err)
	}
	state.LastCategory = lastCategory.String
	return &state, nil
}

// RecordSession applies one finished session as a single atomic
// read-modify-write keyed on (slug, date): items_scraped and last_offset
// advance by the item count, sessions_today by one. The row is created with
// the configured daily limit on the first session of the day. A clean session
// passes an empty lastError and clears any earlier error text; a session that
// ended early with partial results passes the error so the status surface
// still shows it. Concurrent workers and process restarts serialize on this
// upsert, not on an in-process lock.
func (r *StateRepository) RecordSession(slug string, day time.Time, items, dailyLimit int, lastCategory, lastError string) error {
	query := `INSERT INTO bevtrend.scraper_state
			  (distributor_slug, date, items_scraped, daily_limit, last_offset,
			   last_category, last_session_at, sessions_today, last_error)
			  VALUES ($1, $2, $3, $4, $3, $5, now(), 1, $6)
			  ON CONFLICT (distributor_slug, date) DO UPDATE SET
			  items_scraped  = bevtrend.scraper_state.items_scraped + EXCLUDED.items_scraped,
			  last_offset    = bevtrend.scraper_state.last_offset + EXCLUDED.items_scraped,
			  sessions_today = bevtrend.scraper_state.sessions_today + 1,
			  last_category  = EXCLUDED.last_category,
			  last_session_at = now(),
			  last_error     = EXCLUDED.last_error`

	_, err := r.db.Exec(query, slug, day.Format("2006-01-02"), items, dailyLimit, lastCategory, lastError)
	if err != nil {
		return fmt.Errorf("failed to record session for %s: %w", slug, err)
	}
	return nil
}

// RecordError stores the last error text for the operator surface without
// touching budget counters.
func (r *StateRepository) RecordError(slug string, day time.Time, dailyLimit int, message string) error {
	query := `INSERT INTO bevtrend.scraper_state
			  (distributor_slug, date, items_scraped, daily_limit, last_offset,
			   last_category, last_session_at, sessions_today, last_error)
			  VALUES ($1, $2, 0, $3, 0, NULL, NULL, 0, $4)
			  ON CONFLICT (distributor_slug, date) DO UPDATE SET
			  last_error = EXCLUDED.last_error`

	_, err := r.db.Exec(query, slug, day.Format("2006-01-02"), dailyLimit, message)
	if err != nil {
		return fmt.Errorf("failed to record error for %s: %w", slug, err)
	}
	return nil
}

// ListForDay returns the day's ledger for every distributor, for the status
// surface.
func (r *StateRepository) ListForDay(day time.Time) ([]ScraperState, error) {
	query := `SELECT distributor_slug, date, items_scraped, daily_limit, last_offset,
			  last_category, last_session_at, sessions_today, COALESCE(last_error, '')
			  FROM bevtrend.scraper_state WHERE date = $1 ORDER BY distributor_slug`

	rows, err := r.db.Query(query, day.Format("2006-01-02"))
	if err != nil {
		return nil, fmt.Errorf("failed to list scraper state: %w", err)
	}
	defer rows.Close()

	var states []ScraperState
	for rows.Next() {
		var state ScraperState
		var lastCategory sql.NullString
		if err := rows.Scan(
			&state.DistributorSlug, &state.Date, &state.ItemsScraped, &state.DailyLimit,
			&state.LastOffset, &lastCategory, &state.LastSessionAt, &state.SessionsToday,
			&state.LastError,
		); err != nil {
			return nil, fmt.Errorf("failed to scan scraper state: %w", err)
		}
		state.LastCategory = lastCategory.String
		states = append(states, state)
	}
	return states, rows.Err()
}
