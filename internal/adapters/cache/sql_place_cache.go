package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/NLlemain/ride-comparing/internal/domain"
	"github.com/NLlemain/ride-comparing/internal/platform/obs"
	"github.com/mmcloughlin/geohash"
)

// Reverse lookups are keyed by a geohash cell of roughly 5x5 meters.
const reverseGeohashPrecision = 9

// SQLPlaceCache is a Postgres-backed cache of best-match places and reverse lookups.
// Query keys are expected to be normalized by the caller.
type SQLPlaceCache struct {
	DB *sql.DB
}

func NewSQLPlaceCache(db *sql.DB) *SQLPlaceCache {
	return &SQLPlaceCache{DB: db}
}

// Fetch the cached best match for a query.
func (s *SQLPlaceCache) GetPlace(ctx context.Context, query string) (_ domain.AddressSuggestion, _ bool, err error) {
	defer obs.Time(ctx, "place.cache.GetPlace")(&err)

	if s.DB == nil {
		return domain.AddressSuggestion{}, false, errors.New("place cache: db is nil")
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return domain.AddressSuggestion{}, false, errors.New("get place cache: query must not be empty")
	}

	q := `
	SELECT display_name, lat, lon
	FROM geocode_cache
	WHERE query = $1;
	`

	var (
		name     string
		lat, lon float64
	)
	err = s.DB.QueryRowContext(ctx, q, query).Scan(&name, &lat, &lon)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.AddressSuggestion{}, false, nil
	}
	if err != nil {
		return domain.AddressSuggestion{}, false, fmt.Errorf("get place cache: query geocode_cache table: %w", err)
	}

	return domain.AddressSuggestion{
		DisplayName: name,
		Coordinate:  domain.Coordinate{Lat: lat, Lon: lon},
	}, true, nil
}

// Store the best match for a query.
func (s *SQLPlaceCache) PutPlace(ctx context.Context, query string, place domain.AddressSuggestion) error {
	if s.DB == nil {
		return errors.New("place cache: db is nil")
	}

	query = strings.TrimSpace(query)
	if query == "" {
		return errors.New("insert place cache: query must not be empty")
	}

	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO geocode_cache (query, display_name, lat, lon)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (query) DO UPDATE
	SET display_name = EXCLUDED.display_name,
		lat = EXCLUDED.lat,
		lon = EXCLUDED.lon,
		updated_at = now();
	`, query, place.DisplayName, place.Coordinate.Lat, place.Coordinate.Lon)
	if err != nil {
		return fmt.Errorf("insert place cache query=%q: %w", query, err)
	}

	return nil
}

// Fetch the cached address for the geohash cell containing at.
func (s *SQLPlaceCache) GetAddress(ctx context.Context, at domain.Coordinate) (_ string, _ bool, err error) {
	defer obs.Time(ctx, "place.cache.GetAddress")(&err)

	if s.DB == nil {
		return "", false, errors.New("place cache: db is nil")
	}

	q := `
	SELECT display_name
	FROM reverse_geocode_cache
	WHERE geohash = $1;
	`

	var name string
	err = s.DB.QueryRowContext(ctx, q, reverseKey(at)).Scan(&name)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get reverse cache: query reverse_geocode_cache table: %w", err)
	}

	return name, true, nil
}

// Store the address for the geohash cell containing at.
func (s *SQLPlaceCache) PutAddress(ctx context.Context, at domain.Coordinate, displayName string) error {
	if s.DB == nil {
		return errors.New("place cache: db is nil")
	}

	if strings.TrimSpace(displayName) == "" {
		return errors.New("insert reverse cache: display name must not be empty")
	}

	key := reverseKey(at)
	_, err := s.DB.ExecContext(ctx, `
	INSERT INTO reverse_geocode_cache (geohash, display_name)
	VALUES ($1, $2)
	ON CONFLICT (geohash) DO UPDATE
	SET display_name = EXCLUDED.display_name,
		updated_at = now();
	`, key, displayName)
	if err != nil {
		return fmt.Errorf("insert reverse cache geohash=%q: %w", key, err)
	}

	return nil
}

func reverseKey(at domain.Coordinate) string {
	return geohash.EncodeWithPrecision(at.Lat, at.Lon, reverseGeohashPrecision)
}
