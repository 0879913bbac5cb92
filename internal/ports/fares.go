package ports

import (
	"context"

	"github.com/NLlemain/ride-comparing/internal/domain"
)

// A single ride-hailing provider's price endpoint.
type FareProvider interface {
	Name() string
	Estimate(ctx context.Context, origin, destination domain.Coordinate) (domain.FareEstimate, error)
}

// Queries every configured provider for one trip.
type FareEstimator interface {
	// Provider names in display order.
	Providers() []string
	// Deliver each provider's result as it resolves; the channel closes once all resolved.
	Stream(ctx context.Context, origin, destination domain.Coordinate) <-chan domain.FareResult
}
