// Package main applies the schema migrations and loads a job board data set
// into PostgreSQL.
package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/pflag"

	"jobboard/internal/fixtures"
	"jobboard/internal/infrastructure/storage/memory"
	"jobboard/internal/infrastructure/storage/postgres"
	"jobboard/internal/infrastructure/storage/postgres/jobpost_repo"
	"jobboard/pkg/logger"
)

func main() {
	flags := pflag.NewFlagSet("seed", pflag.ExitOnError)
	reset := flags.Bool("reset", false, "truncate job board tables before loading")
	fixturePath := flags.StringP("fixture", "f", "", "fixture JSON to load instead of the bundled sample")
	migrateOnly := flags.Bool("migrate-only", false, "apply migrations and exit")
	_ = flags.Parse(os.Args[1:])

	log, err := logger.New(logger.Config{
		Level:       "info",
		Development: true,
	})
	if err != nil {
		fmt.Printf("failed to create logger: %v\n", err)
		os.Exit(1)
	}

	ctx := logger.WithLogger(context.Background(), log)

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	poolCfg := postgres.DefaultPoolConfig(dbURL)
	poolCfg.ApplicationName = "jobboard-seed"
	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("connected to database")

	txm := postgres.NewTxManager(pool)
	if err := postgres.Migrate(ctx, pool); err != nil {
		log.Fatalw("failed to migrate", "error", err)
	}
	if *migrateOnly {
		log.Info("migrations applied")
		return
	}

	src, err := openFixture(*fixturePath)
	if err != nil {
		log.Fatalw("failed to open fixture", "error", err)
	}
	store, _, err := memory.LoadFixture(src)
	if err != nil {
		log.Fatalw("failed to load fixture", "error", err)
	}

	stats, err := jobpost_repo.NewSeeder(txm).Seed(ctx, store, *reset)
	if err != nil {
		log.Fatalw("failed to seed", "error", err)
	}
	log.Infow("seeding completed successfully", "stats", stats, "reset", *reset)
}

func openFixture(path string) (io.Reader, error) {
	if path == "" {
		return bytes.NewReader(fixtures.Jobs), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return bytes.NewReader(data), nil
}
