package ports

import (
	"context"

	"github.com/NLlemain/ride-comparing/internal/domain"
)

// Receives every completed fare comparison.
type QuoteSink interface {
	PublishQuote(ctx context.Context, q domain.Quote) error
}
