package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/NLlemain/ride-comparing/internal/config"
	"github.com/NLlemain/ride-comparing/internal/platform/db"
	"github.com/NLlemain/ride-comparing/internal/platform/obs"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// dbtool creates the place cache schema and seeds well-known places.
func main() {
	_ = godotenv.Load()

	log, err := obs.NewLogger(config.Get("APP_ENV", "development"), "dbtool")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = log.Sync() }()

	databaseURL := config.Get("DATABASE_URL", "")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal("failed to connect to database", zap.Error(err))
	}
	defer conn.Close()

	seedPath := config.Get("SEED_PATH", "data/seeds/places.json")
	if err := initAndSeed(log, conn, seedPath); err != nil {
		log.Fatal("dbtool failed", zap.Error(err))
	}
}

func initAndSeed(log *zap.Logger, conn *sql.DB, seedPath string) error {
	log.Info("initializing database schema")
	if err := db.InitSchema(conn); err != nil {
		return fmt.Errorf("schema initialization: %w", err)
	}
	log.Info("schema ready")

	log.Info("seeding places", zap.String("path", seedPath))
	if err := db.SeedFromJSON(conn, seedPath); err != nil {
		return fmt.Errorf("seeding: %w", err)
	}
	log.Info("seeding complete")

	return nil
}
