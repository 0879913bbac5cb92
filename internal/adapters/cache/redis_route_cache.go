package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/NLlemain/ride-comparing/internal/domain"
	"github.com/NLlemain/ride-comparing/internal/platform/obs"
	"github.com/mmcloughlin/geohash"
	"github.com/redis/go-redis/v9"
)

// Route endpoints are bucketed into geohash cells of roughly 5x5 meters.
const routeGeohashPrecision = 9

type cachedRoute struct {
	Geometry        [][2]float64 `json:"geometry"`
	DistanceMeters  float64      `json:"distance_meters"`
	DurationSeconds float64      `json:"duration_seconds"`
}

// RedisRouteCache caches routing responses per origin/destination cell pair.
type RedisRouteCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisRouteCache(client *redis.Client, ttl time.Duration) *RedisRouteCache {
	return &RedisRouteCache{client: client, ttl: ttl}
}

// Fetch cached candidates for an origin/destination pair.
func (r *RedisRouteCache) Get(
	ctx context.Context,
	origin, destination domain.Coordinate,
	alternatives bool,
) (_ []domain.RouteCandidate, _ bool, err error) {
	defer obs.Time(ctx, "route.cache.Get")(&err)

	if r.client == nil {
		return nil, false, errors.New("route cache: client is nil")
	}

	raw, err := r.client.Get(ctx, routeKey(origin, destination, alternatives)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get route cache: %w", err)
	}

	var stored []cachedRoute
	if err := json.Unmarshal(raw, &stored); err != nil {
		return nil, false, fmt.Errorf("get route cache: decode: %w", err)
	}

	out := make([]domain.RouteCandidate, 0, len(stored))
	for _, s := range stored {
		geometry := make([]domain.Coordinate, 0, len(s.Geometry))
		for _, p := range s.Geometry {
			geometry = append(geometry, domain.Coordinate{Lat: p[0], Lon: p[1]})
		}
		out = append(out, domain.RouteCandidate{
			Geometry:        geometry,
			DistanceMeters:  s.DistanceMeters,
			DurationSeconds: s.DurationSeconds,
		})
	}

	return out, true, nil
}

// Store candidates for an origin/destination pair.
func (r *RedisRouteCache) Put(
	ctx context.Context,
	origin, destination domain.Coordinate,
	alternatives bool,
	routes []domain.RouteCandidate,
) error {
	if r.client == nil {
		return errors.New("route cache: client is nil")
	}

	if len(routes) == 0 {
		return nil
	}

	stored := make([]cachedRoute, 0, len(routes))
	for _, rc := range routes {
		geometry := make([][2]float64, 0, len(rc.Geometry))
		for _, c := range rc.Geometry {
			geometry = append(geometry, [2]float64{c.Lat, c.Lon})
		}
		stored = append(stored, cachedRoute{
			Geometry:        geometry,
			DistanceMeters:  rc.DistanceMeters,
			DurationSeconds: rc.DurationSeconds,
		})
	}

	payload, err := json.Marshal(stored)
	if err != nil {
		return fmt.Errorf("insert route cache: encode: %w", err)
	}

	if err := r.client.Set(ctx, routeKey(origin, destination, alternatives), payload, r.ttl).Err(); err != nil {
		return fmt.Errorf("insert route cache: %w", err)
	}

	return nil
}

func routeKey(origin, destination domain.Coordinate, alternatives bool) string {
	return fmt.Sprintf(
		"route:%s:%s:%t",
		geohash.EncodeWithPrecision(origin.Lat, origin.Lon, routeGeohashPrecision),
		geohash.EncodeWithPrecision(destination.Lat, destination.Lon, routeGeohashPrecision),
		alternatives,
	)
}
