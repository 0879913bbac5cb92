package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/NLlemain/ride-comparing/internal/adapters/cache"
	"github.com/NLlemain/ride-comparing/internal/adapters/events"
	"github.com/NLlemain/ride-comparing/internal/adapters/fares"
	"github.com/NLlemain/ride-comparing/internal/adapters/geocode"
	"github.com/NLlemain/ride-comparing/internal/adapters/mock"
	"github.com/NLlemain/ride-comparing/internal/adapters/routing"
	"github.com/NLlemain/ride-comparing/internal/api"
	"github.com/NLlemain/ride-comparing/internal/api/handlers"
	"github.com/NLlemain/ride-comparing/internal/config"
	"github.com/NLlemain/ride-comparing/internal/platform/db"
	"github.com/NLlemain/ride-comparing/internal/platform/obs"
	"github.com/NLlemain/ride-comparing/internal/ports"
	"github.com/NLlemain/ride-comparing/internal/services"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// main is the application composition root.
// It wires concrete adapters behind ports and starts the HTTP server.
func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := obs.NewLogger(cfg.AppEnv, "ride-comparing")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()
	zap.ReplaceGlobals(log)

	log.Info("starting ride-comparing",
		zap.String("port", cfg.Port),
		zap.Bool("mock_providers", cfg.MockProviders),
	)

	deps, closeAll, err := wire(cfg, log)
	if err != nil {
		log.Fatal("failed to wire dependencies", zap.Error(err))
	}
	defer closeAll()

	sessions := handlers.NewSessionHandler(deps, log)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(sessions, log),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Info("server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit
	log.Info("shutting down", zap.String("signal", sig.String()))

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Error("graceful shutdown failed", zap.Error(err))
	}
}

// wire builds the session dependencies. Postgres, Redis and Kafka are optional;
// each is skipped when its URL is unset.
func wire(cfg *config.Config, log *zap.Logger) (services.Dependencies, func(), error) {
	var closers []func()
	closeAll := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	geocoder, router, providers, err := upstreams(cfg)
	if err != nil {
		return services.Dependencies{}, closeAll, err
	}

	var places ports.PlaceCache
	if cfg.DatabaseURL != "" {
		conn, err := db.Open(cfg.DatabaseURL)
		if err != nil {
			return services.Dependencies{}, closeAll, err
		}
		closers = append(closers, func() { _ = conn.Close() })

		if err := db.InitSchema(conn); err != nil {
			return services.Dependencies{}, closeAll, err
		}
		places = cache.NewSQLPlaceCache(conn)
		log.Info("place cache enabled")
	}

	suggestions := cache.NewMemorySuggestionCache(cfg.SuggestionCacheSize, cfg.SuggestionCacheTTL)
	cachedGeocoder := geocode.NewCachedGeocoder(geocoder, suggestions, places, log.Named("geocode"))

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return services.Dependencies{}, closeAll, fmt.Errorf("parse redis url: %w", err)
		}
		client := redis.NewClient(opts)
		closers = append(closers, func() { _ = client.Close() })

		pingCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Ping(pingCtx).Err(); err != nil {
			return services.Dependencies{}, closeAll, fmt.Errorf("ping redis: %w", err)
		}

		router = routing.NewCachedRouter(router, cache.NewRedisRouteCache(client, cfg.RouteCacheTTL), log.Named("routing"))
		log.Info("route cache enabled")
	}

	var quotes ports.QuoteSink = events.NoopQuoteSink{}
	if len(cfg.KafkaBrokers) > 0 {
		publisher, err := events.NewKafkaQuotePublisher(cfg.KafkaBrokers, cfg.KafkaTopic, log.Named("events"))
		if err != nil {
			return services.Dependencies{}, closeAll, err
		}
		closers = append(closers, func() { _ = publisher.Close() })
		quotes = publisher
		log.Info("quote events enabled", zap.Strings("brokers", cfg.KafkaBrokers), zap.String("topic", cfg.KafkaTopic))
	}

	return services.Dependencies{
		Geocoder: cachedGeocoder,
		Router:   router,
		Fares:    fares.NewEstimator(log.Named("fares"), providers...),
		Quotes:   quotes,
	}, closeAll, nil
}

// upstreams returns the real services, or deterministic offline ones in mock mode.
func upstreams(cfg *config.Config) (ports.Geocoder, ports.Router, []ports.FareProvider, error) {
	if cfg.MockProviders {
		var providers []ports.FareProvider
		for _, p := range mock.DefaultFareProviders() {
			providers = append(providers, p)
		}
		return mock.NewGeocoder(mock.DefaultPlaces), mock.NewRouter(), providers, nil
	}

	geocoder, err := geocode.NewNominatimGeocoder(cfg.NominatimURL, cfg.NominatimUserAgent, cfg.HTTPTimeout)
	if err != nil {
		return nil, nil, nil, err
	}
	router, err := routing.NewOSRMRouter(cfg.OSRMURL, cfg.HTTPTimeout)
	if err != nil {
		return nil, nil, nil, err
	}

	uber, err := fares.NewUber(cfg.Uber.URL, cfg.Uber.Token, cfg.HTTPTimeout)
	if err != nil {
		return nil, nil, nil, err
	}
	lyft, err := fares.NewLyft(cfg.Lyft.URL, cfg.Lyft.Token, cfg.HTTPTimeout)
	if err != nil {
		return nil, nil, nil, err
	}
	bolt, err := fares.NewBolt(cfg.Bolt.URL, cfg.Bolt.Token, cfg.HTTPTimeout)
	if err != nil {
		return nil, nil, nil, err
	}

	return geocoder, router, []ports.FareProvider{uber, lyft, bolt}, nil
}
