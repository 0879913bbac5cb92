package ports

import (
	"context"

	"github.com/NLlemain/ride-comparing/internal/domain"
)

// Contract for retrieving drivable routes between two points.
type Router interface {
	// Return zero or more candidates; the first is the service's default route.
	Routes(ctx context.Context, origin, destination domain.Coordinate, alternatives bool) ([]domain.RouteCandidate, error)
}
