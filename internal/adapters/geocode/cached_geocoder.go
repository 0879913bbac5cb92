package geocode

import (
	"context"
	"errors"
	"fmt"

	"github.com/NLlemain/ride-comparing/internal/domain"
	"github.com/NLlemain/ride-comparing/internal/ports"
	"go.uber.org/zap"
)

// CachedGeocoder decorates a Geocoder with the suggestion and place caches.
//
// It coordinates:
//   - Query normalization
//   - In-process caching of suggestion lists
//   - Persistent caching of best matches and reverse lookups
//
// Either cache may be nil. Cache faults are logged and bypassed.
type CachedGeocoder struct {
	inner       ports.Geocoder
	suggestions ports.SuggestionCache
	places      ports.PlaceCache
	logger      *zap.Logger
}

func NewCachedGeocoder(
	inner ports.Geocoder,
	suggestions ports.SuggestionCache,
	places ports.PlaceCache,
	logger *zap.Logger,
) *CachedGeocoder {
	return &CachedGeocoder{
		inner:       inner,
		suggestions: suggestions,
		places:      places,
		logger:      logger,
	}
}

func (g *CachedGeocoder) Search(ctx context.Context, query string, limit int) ([]domain.AddressSuggestion, error) {
	if ctx.Err() != nil {
		return nil, fmt.Errorf("cached geocoder: %w", domain.ErrCancelled)
	}

	norm := domain.NormalizeQuery(query)
	if norm == "" {
		return []domain.AddressSuggestion{}, nil
	}

	// Single best-match lookups go to the persistent cache first.
	if limit == 1 && g.places != nil {
		place, ok, err := g.places.GetPlace(ctx, norm)
		if err != nil {
			g.cacheFault(ctx, "place cache read failed", err, zap.String("query", norm))
		} else if ok {
			return []domain.AddressSuggestion{place}, nil
		}
	}

	if g.suggestions != nil {
		if cached, ok := g.suggestions.Get(norm, limit); ok {
			return cached, nil
		}
	}

	fresh, err := g.inner.Search(ctx, query, limit)
	if err != nil {
		return nil, fmt.Errorf("cached geocoder: %w", err)
	}

	if len(fresh) == 0 {
		return fresh, nil
	}

	if g.suggestions != nil {
		g.suggestions.Put(norm, limit, fresh)
	}

	if limit == 1 && g.places != nil {
		if err := g.places.PutPlace(ctx, norm, fresh[0]); err != nil {
			g.cacheFault(ctx, "place cache write failed", err, zap.String("query", norm))
		}
	}

	return fresh, nil
}

func (g *CachedGeocoder) Reverse(ctx context.Context, c domain.Coordinate) (string, error) {
	if ctx.Err() != nil {
		return "", fmt.Errorf("cached geocoder: %w", domain.ErrCancelled)
	}

	if g.places != nil {
		name, ok, err := g.places.GetAddress(ctx, c)
		if err != nil {
			g.cacheFault(ctx, "reverse cache read failed", err, zap.Stringer("at", c))
		} else if ok {
			return name, nil
		}
	}

	name, err := g.inner.Reverse(ctx, c)
	if err != nil {
		return "", fmt.Errorf("cached geocoder: %w", err)
	}

	if g.places != nil {
		if err := g.places.PutAddress(ctx, c, name); err != nil {
			g.cacheFault(ctx, "reverse cache write failed", err, zap.Stringer("at", c))
		}
	}

	return name, nil
}

// Faults caused by the caller going away are not worth a warning.
func (g *CachedGeocoder) cacheFault(ctx context.Context, msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if ctx.Err() != nil || errors.Is(err, context.Canceled) || errors.Is(err, domain.ErrCancelled) {
		g.logger.Debug(msg, fields...)
		return
	}
	g.logger.Warn(msg, fields...)
}
