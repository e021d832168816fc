package postgres

import (
	"context"
	"embed"
	"fmt"

	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"jobboard/pkg/logger"
)

// Migrations are plain goose files. Migrate and `goose -dir migrations postgres $DSN up`
// both record progress in goose_db_version.
//
//go:embed migrations/*.sql
var migrationFS embed.FS

const migrationDir = "migrations"

// gooseLogger routes goose output through the context logger.
type gooseLogger struct {
	*logger.Logger
}

func (l gooseLogger) Printf(format string, v ...any) {
	l.Infof(format, v...)
}

func setupGoose(ctx context.Context) error {
	goose.SetBaseFS(migrationFS)
	goose.SetLogger(gooseLogger{logger.FromContext(ctx).WithComponent("migrate")})
	return goose.SetDialect("postgres")
}

// LoadMigrations lists the embedded migrations ordered by version.
func LoadMigrations() (goose.Migrations, error) {
	goose.SetBaseFS(migrationFS)
	migrations, err := goose.CollectMigrations(migrationDir, 0, goose.MaxVersion)
	if err != nil {
		return nil, fmt.Errorf("collect migrations: %w", err)
	}
	return migrations, nil
}

// Migrate applies pending migrations through a database/sql handle borrowed from the pool.
func Migrate(ctx context.Context, pool *Pool) error {
	if err := setupGoose(ctx); err != nil {
		return fmt.Errorf("configure migrations: %w", err)
	}

	db := stdlib.OpenDBFromPool(pool.Pool)
	defer db.Close()

	if err := goose.UpContext(ctx, db, migrationDir); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	version, err := goose.GetDBVersionContext(ctx, db)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	logger.Info(ctx, "schema up to date", "version", version)
	return nil
}
