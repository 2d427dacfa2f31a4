package db

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"
	"sync"

	"github.com/pressly/goose/v3"

	"resume-builder/internal/shared/telemetry"
)

//go:embed migrations/*.sql
var migrationFiles embed.FS

// goose keeps its base FS, dialect and logger in package globals.
var migrateMu sync.Mutex

// gooseLogger routes goose output through telemetry.
type gooseLogger struct{}

func (gooseLogger) Printf(format string, v ...any) {
	telemetry.Debug("db.migrations.goose", map[string]any{"message": fmt.Sprintf(format, v...)})
}

func (gooseLogger) Fatalf(format string, v ...any) {
	telemetry.Error("db.migrations.fatal", map[string]any{"message": fmt.Sprintf(format, v...)})
	os.Exit(1)
}

func prepareGoose() error {
	goose.SetBaseFS(migrationFiles)
	goose.SetLogger(gooseLogger{})
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	return nil
}

// SchemaVersion reports the latest applied migration.
func SchemaVersion(ctx context.Context, database *sql.DB) (int64, error) {
	migrateMu.Lock()
	defer migrateMu.Unlock()
	if err := prepareGoose(); err != nil {
		return 0, err
	}
	version, err := goose.GetDBVersionContext(ctx, database)
	if err != nil {
		return 0, fmt.Errorf("read schema version: %w", err)
	}
	return version, nil
}

// RunMigrations applies the embedded schema migrations (templates, resumes,
// downloads). A nil database is a no-op so memory-backed runs can share the call.
func RunMigrations(ctx context.Context, database *sql.DB) error {
	if database == nil {
		return nil
	}

	migrateMu.Lock()
	defer migrateMu.Unlock()

	if err := prepareGoose(); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, database, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}

	version, err := goose.GetDBVersionContext(ctx, database)
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	telemetry.Info("db.migrations.applied", map[string]any{"version": version})
	return nil
}
