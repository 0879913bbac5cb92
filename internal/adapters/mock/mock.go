// Package mock provides deterministic offline stand-ins for the upstream
// geocoding, routing and fare services. It backs MOCK_PROVIDERS=true and tests.
package mock

import (
	"context"
	"fmt"
	"math"
	"strings"

	"github.com/NLlemain/ride-comparing/internal/domain"
)

type Place struct {
	Name string
	At   domain.Coordinate
}

// DefaultPlaces is a small gazetteer around lower Manhattan.
var DefaultPlaces = []Place{
	{Name: "Times Square, Manhattan, New York", At: domain.Coordinate{Lat: 40.758, Lon: -73.9855}},
	{Name: "Union Square, Manhattan, New York", At: domain.Coordinate{Lat: 40.7359, Lon: -73.9911}},
	{Name: "Union Station, Washington Heights, New York", At: domain.Coordinate{Lat: 40.8417, Lon: -73.9394}},
	{Name: "Brooklyn Bridge, New York", At: domain.Coordinate{Lat: 40.7061, Lon: -73.9969}},
	{Name: "Central Park, Manhattan, New York", At: domain.Coordinate{Lat: 40.7812, Lon: -73.9665}},
	{Name: "Wall Street, Manhattan, New York", At: domain.Coordinate{Lat: 40.7069, Lon: -74.0113}},
}

// Geocoder matches queries against a fixed gazetteer.
type Geocoder struct {
	places []Place
}

func NewGeocoder(places []Place) *Geocoder {
	return &Geocoder{places: places}
}

func (g *Geocoder) Search(ctx context.Context, query string, limit int) ([]domain.AddressSuggestion, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.ErrCancelled
	}
	if limit <= 0 {
		limit = 1
	}

	q := domain.NormalizeQuery(query)
	out := make([]domain.AddressSuggestion, 0, limit)
	for _, p := range g.places {
		if len(out) == limit {
			break
		}
		if strings.Contains(strings.ToLower(p.Name), q) {
			out = append(out, domain.AddressSuggestion{DisplayName: p.Name, Coordinate: p.At})
		}
	}
	return out, nil
}

// Reverse names the nearest gazetteer place within 2 km.
func (g *Geocoder) Reverse(ctx context.Context, c domain.Coordinate) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", domain.ErrCancelled
	}

	best, bestDist := "", math.MaxFloat64
	for _, p := range g.places {
		if d := haversineMeters(c, p.At); d < bestDist {
			best, bestDist = p.Name, d
		}
	}
	if best == "" || bestDist > 2000 {
		return "", fmt.Errorf("mock reverse %s: %w", c, domain.ErrNotFound)
	}
	return best, nil
}

// Router returns straight-line routes at a fixed urban speed.
type Router struct {
	metersPerSecond float64
}

func NewRouter() *Router {
	// 30 km/h
	return &Router{metersPerSecond: 30000.0 / 3600.0}
}

func (r *Router) Routes(ctx context.Context, origin, destination domain.Coordinate, alternatives bool) ([]domain.RouteCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, domain.ErrCancelled
	}

	direct := haversineMeters(origin, destination)
	if direct == 0 {
		return []domain.RouteCandidate{}, nil
	}

	best := domain.RouteCandidate{
		Geometry:        []domain.Coordinate{origin, destination},
		DistanceMeters:  math.Round(direct),
		DurationSeconds: math.Round(direct / r.metersPerSecond),
	}
	if !alternatives {
		return []domain.RouteCandidate{best}, nil
	}

	// Detour through a point offset from the midpoint.
	mid := domain.Coordinate{
		Lat: (origin.Lat+destination.Lat)/2 + (destination.Lon-origin.Lon)*0.15,
		Lon: (origin.Lon+destination.Lon)/2 - (destination.Lat-origin.Lat)*0.15,
	}
	detour := haversineMeters(origin, mid) + haversineMeters(mid, destination)
	alt := domain.RouteCandidate{
		Geometry:        []domain.Coordinate{origin, mid, destination},
		DistanceMeters:  math.Round(detour),
		DurationSeconds: math.Round(detour / r.metersPerSecond),
	}
	return []domain.RouteCandidate{best, alt}, nil
}

// FareProvider prices trips from a base fare and a per-km rate.
type FareProvider struct {
	name     string
	base     float64
	perKm    float64
	currency string
}

func NewFareProvider(name string, base, perKm float64) *FareProvider {
	return &FareProvider{name: name, base: base, perKm: perKm, currency: domain.DefaultCurrency}
}

// DefaultFareProviders mirrors the real provider set.
func DefaultFareProviders() []*FareProvider {
	return []*FareProvider{
		NewFareProvider("uber", 2.55, 1.75),
		NewFareProvider("lyft", 2.00, 1.90),
		NewFareProvider("bolt", 1.50, 1.60),
	}
}

func (f *FareProvider) Name() string { return f.name }

func (f *FareProvider) Estimate(ctx context.Context, origin, destination domain.Coordinate) (domain.FareEstimate, error) {
	if err := ctx.Err(); err != nil {
		return domain.FareEstimate{}, domain.ErrCancelled
	}

	km := haversineMeters(origin, destination) / 1000
	amount := math.Round((f.base+f.perKm*km)*100) / 100
	return domain.FareEstimate{Provider: f.name, Amount: &amount, Currency: f.currency}, nil
}

const earthRadiusMeters = 6371000.0

func haversineMeters(a, b domain.Coordinate) float64 {
	lat1 := a.Lat * math.Pi / 180
	lat2 := b.Lat * math.Pi / 180
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLon := (b.Lon - a.Lon) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(h))
}
