package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"go.uber.org/zap"

	"resume-builder/internal/bootstrap"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/server"
	"resume-builder/internal/shared/telemetry"
)

func main() {
	cfg := config.Load()
	telemetry.Init(telemetry.Config{Level: cfg.LogLevel, Encoding: cfg.LogFormat})
	defer func() { _ = telemetry.Sync() }()
	logger := telemetry.L()

	app, err := bootstrap.Build(cfg)
	if err != nil {
		logger.Error("bootstrap failed", zap.Error(err))
		os.Exit(1)
	}

	srv := &http.Server{
		Addr:              server.Addr(cfg.Port),
		Handler:           app.Router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	app.Lifecycle.Register("http", srv.Shutdown)

	ctx, stop := app.Lifecycle.SignalContext(context.Background())
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("starting API server", zap.String("addr", srv.Addr), zap.String("env", cfg.Env))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if err != nil {
			logger.Error("server error", zap.Error(err))
		}
	}

	if err := app.Shutdown(context.Background()); err != nil {
		logger.Error("shutdown incomplete", zap.Error(err))
		os.Exit(1)
	}
}
