package ports

import (
	"context"

	"github.com/NLlemain/ride-comparing/internal/domain"
)

// In-process cache of suggestion lists keyed by normalized query.
type SuggestionCache interface {
	Get(query string, limit int) ([]domain.AddressSuggestion, bool)
	Put(query string, limit int, suggestions []domain.AddressSuggestion)
}

// Persistent cache of forward best matches and reverse lookups.
type PlaceCache interface {
	GetPlace(ctx context.Context, query string) (domain.AddressSuggestion, bool, error)
	PutPlace(ctx context.Context, query string, place domain.AddressSuggestion) error
	GetAddress(ctx context.Context, at domain.Coordinate) (string, bool, error)
	PutAddress(ctx context.Context, at domain.Coordinate, displayName string) error
}

// Cache of routing responses.
type RouteCache interface {
	Get(ctx context.Context, origin, destination domain.Coordinate, alternatives bool) ([]domain.RouteCandidate, bool, error)
	Put(ctx context.Context, origin, destination domain.Coordinate, alternatives bool, routes []domain.RouteCandidate) error
}
