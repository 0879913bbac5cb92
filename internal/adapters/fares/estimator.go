package fares

import (
	"context"
	"errors"
	"sync"

	"github.com/NLlemain/ride-comparing/internal/domain"
	"github.com/NLlemain/ride-comparing/internal/ports"
	"go.uber.org/zap"
)

// Estimator fans a trip out to every provider concurrently.
// A failing provider only affects its own result.
type Estimator struct {
	providers []ports.FareProvider
	logger    *zap.Logger
}

func NewEstimator(logger *zap.Logger, providers ...ports.FareProvider) *Estimator {
	return &Estimator{providers: providers, logger: logger}
}

func (e *Estimator) Providers() []string {
	names := make([]string, 0, len(e.providers))
	for _, p := range e.providers {
		names = append(names, p.Name())
	}
	return names
}

// Stream delivers each provider's result as soon as it resolves and closes
// the channel once every provider has resolved.
func (e *Estimator) Stream(ctx context.Context, origin, destination domain.Coordinate) <-chan domain.FareResult {
	// Buffered so workers never block on a consumer that stopped reading.
	out := make(chan domain.FareResult, len(e.providers))

	var wg sync.WaitGroup
	for _, p := range e.providers {
		wg.Add(1)
		go func(p ports.FareProvider) {
			defer wg.Done()

			est, err := p.Estimate(ctx, origin, destination)
			if err != nil && !errors.Is(err, domain.ErrCancelled) {
				e.logger.Warn("fare estimate failed", zap.String("provider", p.Name()), zap.Error(err))
			}
			out <- domain.FareResult{Provider: p.Name(), Estimate: est, Err: err}
		}(p)
	}

	go func() {
		wg.Wait()
		close(out)
	}()

	return out
}

// Estimate waits for every provider and returns the results in provider order.
func (e *Estimator) Estimate(ctx context.Context, origin, destination domain.Coordinate) []domain.FareResult {
	byName := make(map[string]domain.FareResult, len(e.providers))
	for r := range e.Stream(ctx, origin, destination) {
		byName[r.Provider] = r
	}

	results := make([]domain.FareResult, 0, len(e.providers))
	for _, name := range e.Providers() {
		results = append(results, byName[name])
	}
	return results
}
