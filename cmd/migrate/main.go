package main

// Apply database migrations, or report the schema version with -status:
//   go run ./cmd/migrate [-status]

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/storage/db"
	"resume-builder/internal/shared/telemetry"
)

func main() {
	statusOnly := flag.Bool("status", false, "print the applied schema version and exit")
	flag.Parse()

	cfg := config.Load()
	telemetry.Init(telemetry.Config{Level: cfg.LogLevel, Encoding: cfg.LogFormat})
	defer func() { _ = telemetry.Sync() }()
	logger := telemetry.L()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultOptions(db.RoleMigrate)))
	if err != nil {
		logger.Fatal("connect database", zap.Error(err))
	}
	defer sqlDB.Close()

	if *statusOnly {
		version, err := db.SchemaVersion(ctx, sqlDB)
		if err != nil {
			logger.Fatal("read schema version", zap.Error(err))
		}
		logger.Info("schema version", zap.Int64("version", version))
		return
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		logger.Fatal("run migrations", zap.Error(err))
	}
}
