package db

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/NLlemain/ride-comparing/internal/domain"
)

// Initialize the Postgres schema backing the place caches.
func InitSchema(db *sql.DB) error {
	if db == nil {
		return errors.New("init schema: DB is nil")
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("init schema: begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	createGeocodeCacheQuery := `
	CREATE TABLE IF NOT EXISTS geocode_cache (
		query TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		lat DOUBLE PRECISION NOT NULL,
		lon DOUBLE PRECISION NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	createReverseCacheQuery := `
	CREATE TABLE IF NOT EXISTS reverse_geocode_cache (
		geohash TEXT PRIMARY KEY,
		display_name TEXT NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
	);
	`

	statements := []string{
		createGeocodeCacheQuery,
		createReverseCacheQuery,
	}

	for i, stmt := range statements {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: exec statement #%d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("init schema: commit tx: %w", err)
	}

	return nil
}

type PlaceSeed struct {
	Query       string  `json:"query"`
	DisplayName string  `json:"display_name"`
	Lat         float64 `json:"lat"`
	Lon         float64 `json:"lon"`
}

// Populate geocode_cache with well-known places from a JSON file.
func SeedFromJSON(db *sql.DB, jsonPath string) error {
	bytes, err := os.ReadFile(jsonPath)
	if err != nil {
		return fmt.Errorf("seed places: read %q: %w", jsonPath, err)
	}

	var data []PlaceSeed
	if err := json.Unmarshal(bytes, &data); err != nil {
		return fmt.Errorf("seed places: parse json: %w", err)
	}

	rows := make([]PlaceSeed, 0, len(data))
	for i, item := range data {
		query := domain.NormalizeQuery(item.Query)
		if query == "" {
			return fmt.Errorf("seed places: item at index %d: query cannot be empty", i+1)
		}
		if strings.TrimSpace(item.DisplayName) == "" {
			return fmt.Errorf("seed places: item at index %d: display_name cannot be empty", i+1)
		}
		item.Query = query
		rows = append(rows, item)
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("seed places: begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`
	INSERT INTO geocode_cache (query, display_name, lat, lon)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (query) DO UPDATE
	SET display_name = EXCLUDED.display_name,
		lat = EXCLUDED.lat,
		lon = EXCLUDED.lon,
		updated_at = now();
	`)
	if err != nil {
		return fmt.Errorf("seed places: prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range rows {
		if _, err := stmt.Exec(p.Query, p.DisplayName, p.Lat, p.Lon); err != nil {
			return fmt.Errorf("seed places: insert query=%q: %w", p.Query, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("seed places: commit tx: %w", err)
	}

	return nil
}
