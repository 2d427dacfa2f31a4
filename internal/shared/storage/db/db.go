package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // register pgx as database/sql driver

	"resume-builder/internal/shared/telemetry"
)

// Role selects pool defaults for the kind of process opening the pool.
type Role string

const (
	RoleServer  Role = "server"
	RoleLambda  Role = "lambda"
	RoleMigrate Role = "migrate"
)

// Options controls database pool and connectivity behavior.
type Options struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	ConnMaxIdleTime time.Duration
	PingTimeout     time.Duration
	// PingAttempts bounds the initial ping; retry n waits n*PingBackoff.
	PingAttempts int
	PingBackoff  time.Duration
}

var (
	openDB      = sql.Open
	sleep       = time.Sleep
	singletonMu sync.Mutex
	singletonDB *sql.DB
)

// IsLambdaRuntime reports whether the current process is running in AWS Lambda.
func IsLambdaRuntime() bool {
	return strings.TrimSpace(os.Getenv("AWS_LAMBDA_FUNCTION_NAME")) != ""
}

// CurrentRole is RoleLambda inside AWS Lambda and RoleServer elsewhere.
func CurrentRole() Role {
	if IsLambdaRuntime() {
		return RoleLambda
	}
	return RoleServer
}

// DefaultOptions returns pool defaults for role.
func DefaultOptions(role Role) Options {
	switch role {
	case RoleLambda:
		return Options{
			MaxOpenConns:    2,
			MaxIdleConns:    1,
			ConnMaxIdleTime: 30 * time.Second,
			ConnMaxLifetime: 15 * time.Minute,
			PingTimeout:     3 * time.Second,
			PingAttempts:    1,
		}
	case RoleMigrate:
		return Options{
			MaxOpenConns:    1,
			MaxIdleConns:    1,
			ConnMaxIdleTime: 2 * time.Minute,
			ConnMaxLifetime: time.Hour,
			PingTimeout:     5 * time.Second,
			PingAttempts:    5,
			PingBackoff:     time.Second,
		}
	default:
		return Options{
			MaxOpenConns:    10,
			MaxIdleConns:    5,
			ConnMaxIdleTime: 2 * time.Minute,
			ConnMaxLifetime: time.Hour,
			PingTimeout:     5 * time.Second,
			PingAttempts:    3,
			PingBackoff:     500 * time.Millisecond,
		}
	}
}

// OptionsFromEnv overrides defaults with DB_* env vars if present.
func OptionsFromEnv(defaults Options) Options {
	opts := defaults
	envInt("DB_MAX_OPEN_CONNS", &opts.MaxOpenConns)
	envInt("DB_MAX_IDLE_CONNS", &opts.MaxIdleConns)
	envInt("DB_PING_ATTEMPTS", &opts.PingAttempts)
	envDuration("DB_CONN_MAX_LIFETIME", &opts.ConnMaxLifetime)
	envDuration("DB_CONN_MAX_IDLE_TIME", &opts.ConnMaxIdleTime)
	envDuration("DB_PING_TIMEOUT", &opts.PingTimeout)
	envDuration("DB_PING_BACKOFF", &opts.PingBackoff)
	return opts
}

// Connect opens a pgx-backed pool for databaseURL and waits until it answers a ping.
func Connect(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, errors.New("DATABASE_URL is empty")
	}

	db, err := openDB("pgx", databaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	applyOptions(db, opts)

	attempts := max(opts.PingAttempts, 1)
	for attempt := 1; ; attempt++ {
		err = ping(ctx, db, opts.PingTimeout)
		if err == nil {
			break
		}
		if attempt >= attempts || ctx.Err() != nil {
			_ = db.Close()
			return nil, fmt.Errorf("ping database after %d attempt(s): %w", attempt, err)
		}
		telemetry.Warn("db.ping.retry", map[string]any{"attempt": attempt, "error": err.Error()})
		sleep(opts.PingBackoff * time.Duration(attempt))
	}

	logPoolStats(db, "db.init")
	return db, nil
}

// GetSingleton returns a process-wide pool. Concurrent callers wait for the
// first connect; a failed connect leaves nothing cached so the next call retries.
func GetSingleton(ctx context.Context, databaseURL string, opts Options) (*sql.DB, error) {
	singletonMu.Lock()
	defer singletonMu.Unlock()
	if singletonDB != nil {
		telemetry.Debug("db.singleton.reuse", nil)
		return singletonDB, nil
	}
	db, err := Connect(ctx, databaseURL, opts)
	if err != nil {
		return nil, err
	}
	singletonDB = db
	telemetry.Info("db.singleton.init", nil)
	return db, nil
}

// Health pings db with a short timeout. It backs the /health readiness probe.
func Health(ctx context.Context, db *sql.DB) error {
	if db == nil {
		return nil
	}
	if err := ping(ctx, db, 2*time.Second); err != nil {
		logPoolStats(db, "db.health.failed")
		return err
	}
	return nil
}

func ping(ctx context.Context, db *sql.DB, timeout time.Duration) error {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return db.PingContext(pingCtx)
}

func applyOptions(db *sql.DB, opts Options) {
	if opts.MaxOpenConns <= 0 {
		opts.MaxOpenConns = 10
	}
	if opts.MaxIdleConns <= 0 {
		opts.MaxIdleConns = 5
	}
	if opts.ConnMaxLifetime <= 0 {
		opts.ConnMaxLifetime = time.Hour
	}
	db.SetMaxOpenConns(opts.MaxOpenConns)
	db.SetMaxIdleConns(opts.MaxIdleConns)
	db.SetConnMaxLifetime(opts.ConnMaxLifetime)
	if opts.ConnMaxIdleTime > 0 {
		db.SetConnMaxIdleTime(opts.ConnMaxIdleTime)
	}
}

func logPoolStats(db *sql.DB, label string) {
	stats := db.Stats()
	telemetry.Info(label, map[string]any{
		"open":     stats.OpenConnections,
		"in_use":   stats.InUse,
		"idle":     stats.Idle,
		"wait":     stats.WaitCount,
		"max_open": stats.MaxOpenConnections,
	})
}

func envInt(key string, dst *int) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return
	}
	val, err := strconv.Atoi(raw)
	if err != nil {
		telemetry.Warn("db.env.invalid", map[string]any{"key": key, "error": err.Error()})
		return
	}
	*dst = val
}

func envDuration(key string, dst *time.Duration) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return
	}
	val, err := time.ParseDuration(raw)
	if err != nil {
		telemetry.Warn("db.env.invalid", map[string]any{"key": key, "error": err.Error()})
		return
	}
	*dst = val
}
