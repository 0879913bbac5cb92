package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/NLlemain/ride-comparing/internal/adapters/events"
	"github.com/NLlemain/ride-comparing/internal/adapters/fares"
	"github.com/NLlemain/ride-comparing/internal/adapters/geocode"
	"github.com/NLlemain/ride-comparing/internal/adapters/routing"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Provider is the endpoint and credential of one fare provider.
type Provider struct {
	URL   string `validate:"required,url"`
	Token string `validate:"required_if=Mock false"`
	Mock  bool
}

// Config holds all configuration for the ride-comparing service.
type Config struct {
	Port   string `validate:"required,numeric"`
	AppEnv string `validate:"required,oneof=development staging production test"`

	NominatimURL       string `validate:"required,url"`
	NominatimUserAgent string `validate:"required"`
	OSRMURL            string `validate:"required,url"`
	Uber               Provider
	Lyft               Provider
	Bolt               Provider
	HTTPTimeout        time.Duration `validate:"gt=0"`
	MockProviders      bool

	DatabaseURL         string        `validate:"omitempty,url"`
	RedisURL            string        `validate:"omitempty,url"`
	RouteCacheTTL       time.Duration `validate:"gt=0"`
	SuggestionCacheSize int           `validate:"gt=0"`
	SuggestionCacheTTL  time.Duration `validate:"gt=0"`

	KafkaBrokers []string `validate:"dive,hostname_port"`
	KafkaTopic   string   `validate:"required"`

	SeedPath string
}

// Load reads configuration from a .env file, when present, and the environment.
func Load() (*Config, error) {
	// A missing .env file is normal outside local runs.
	_ = godotenv.Load()

	timeout, err := GetDuration("HTTP_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, err
	}
	routeTTL, err := GetDuration("ROUTE_CACHE_TTL", 24*time.Hour)
	if err != nil {
		return nil, err
	}
	suggestionTTL, err := GetDuration("SUGGESTION_CACHE_TTL", 10*time.Minute)
	if err != nil {
		return nil, err
	}
	suggestionSize, err := GetInt("SUGGESTION_CACHE_SIZE", 1024)
	if err != nil {
		return nil, err
	}
	mock, err := GetBool("MOCK_PROVIDERS", false)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Port:               Get("PORT", "8080"),
		AppEnv:             Get("APP_ENV", "development"),
		NominatimURL:       Get("NOMINATIM_URL", geocode.DefaultNominatimURL),
		NominatimUserAgent: Get("NOMINATIM_USER_AGENT", "ride-comparing/1.0"),
		OSRMURL:            Get("OSRM_URL", routing.DefaultOSRMURL),
		Uber: Provider{
			URL:   Get("UBER_API_URL", fares.DefaultUberURL),
			Token: os.Getenv("UBER_API_TOKEN"),
			Mock:  mock,
		},
		Lyft: Provider{
			URL:   Get("LYFT_API_URL", fares.DefaultLyftURL),
			Token: os.Getenv("LYFT_API_TOKEN"),
			Mock:  mock,
		},
		Bolt: Provider{
			URL:   Get("BOLT_API_URL", fares.DefaultBoltURL),
			Token: os.Getenv("BOLT_API_TOKEN"),
			Mock:  mock,
		},
		HTTPTimeout:   timeout,
		MockProviders: mock,

		DatabaseURL:         os.Getenv("DATABASE_URL"),
		RedisURL:            os.Getenv("REDIS_URL"),
		RouteCacheTTL:       routeTTL,
		SuggestionCacheSize: suggestionSize,
		SuggestionCacheTTL:  suggestionTTL,

		KafkaBrokers: GetList("KAFKA_BROKERS"),
		KafkaTopic:   Get("KAFKA_TOPIC", events.DefaultQuoteTopic),

		SeedPath: Get("SEED_PATH", "data/seeds/places.json"),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	v := validator.New(validator.WithRequiredStructEnabled())
	if err := v.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

// Get returns the trimmed value of key, or fallback when it is unset or blank.
func Get(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func GetInt(key string, fallback int) (int, error) {
	raw := Get(key, "")
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("config %s: %q is not an integer", key, raw)
	}
	return n, nil
}

func GetBool(key string, fallback bool) (bool, error) {
	raw := Get(key, "")
	if raw == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("config %s: %q is not a boolean", key, raw)
	}
	return b, nil
}

func GetDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := Get(key, "")
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("config %s: %q is not a duration", key, raw)
	}
	return d, nil
}

// GetList splits a comma-separated value, dropping blank entries.
func GetList(key string) []string {
	var out []string
	for _, part := range strings.Split(os.Getenv(key), ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
