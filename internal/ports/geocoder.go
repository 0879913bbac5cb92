package ports

import (
	"context"

	"github.com/NLlemain/ride-comparing/internal/domain"
)

// Contract for address <-> coordinate lookups.
type Geocoder interface {
	// Return up to limit address candidates for free text, in service order.
	// A cancelled ctx resolves to domain.ErrCancelled.
	Search(ctx context.Context, query string, limit int) ([]domain.AddressSuggestion, error)
	// Return the display name of the address at c, or domain.ErrNotFound.
	Reverse(ctx context.Context, c domain.Coordinate) (string, error)
}
