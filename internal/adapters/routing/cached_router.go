package routing

import (
	"context"
	"errors"
	"fmt"

	"github.com/NLlemain/ride-comparing/internal/domain"
	"github.com/NLlemain/ride-comparing/internal/ports"
	"go.uber.org/zap"
)

// CachedRouter serves repeat origin/destination pairs from a RouteCache.
// Cache faults are logged and bypassed.
type CachedRouter struct {
	inner  ports.Router
	cache  ports.RouteCache
	logger *zap.Logger
}

func NewCachedRouter(inner ports.Router, cache ports.RouteCache, logger *zap.Logger) *CachedRouter {
	return &CachedRouter{inner: inner, cache: cache, logger: logger}
}

func (r *CachedRouter) Routes(
	ctx context.Context,
	origin, destination domain.Coordinate,
	alternatives bool,
) ([]domain.RouteCandidate, error) {
	if ctx.Err() != nil {
		return nil, fmt.Errorf("cached router: %w", domain.ErrCancelled)
	}

	cached, ok, err := r.cache.Get(ctx, origin, destination, alternatives)
	if err != nil {
		r.cacheFault(ctx, "route cache read failed", err,
			zap.Stringer("origin", origin),
			zap.Stringer("destination", destination),
		)
	} else if ok {
		return cached, nil
	}

	fresh, err := r.inner.Routes(ctx, origin, destination, alternatives)
	if err != nil {
		return nil, fmt.Errorf("cached router: %w", err)
	}

	if err := r.cache.Put(ctx, origin, destination, alternatives, fresh); err != nil {
		r.cacheFault(ctx, "route cache write failed", err)
	}

	return fresh, nil
}

func (r *CachedRouter) cacheFault(ctx context.Context, msg string, err error, fields ...zap.Field) {
	fields = append(fields, zap.Error(err))
	if ctx.Err() != nil || errors.Is(err, context.Canceled) {
		r.logger.Debug(msg, fields...)
		return
	}
	r.logger.Warn(msg, fields...)
}
