package db

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

// pingFailures makes the next n pings on any test connection fail.
var pingFailures atomic.Int32

type fakeDriver struct{}

func (fakeDriver) Open(string) (driver.Conn, error) { return fakeConn{}, nil }

type fakeConn struct{}

func (fakeConn) Prepare(string) (driver.Stmt, error) { return nil, errors.New("not supported") }
func (fakeConn) Close() error                        { return nil }
func (fakeConn) Begin() (driver.Tx, error)           { return nil, errors.New("not supported") }

func (fakeConn) Ping(context.Context) error {
	if pingFailures.Load() > 0 {
		pingFailures.Add(-1)
		return errors.New("connection refused")
	}
	return nil
}

var registerOnce sync.Once

// useFakeDriver routes openDB to the fake driver and returns the recorded backoff sleeps.
func useFakeDriver(t *testing.T, failures int32) *[]time.Duration {
	t.Helper()
	registerOnce.Do(func() { sql.Register("resumedbtest", fakeDriver{}) })
	pingFailures.Store(failures)

	prevOpen, prevSleep := openDB, sleep
	var slept []time.Duration
	openDB = func(_, dsn string) (*sql.DB, error) { return sql.Open("resumedbtest", dsn) }
	sleep = func(d time.Duration) { slept = append(slept, d) }
	t.Cleanup(func() {
		openDB, sleep = prevOpen, prevSleep
		pingFailures.Store(0)
	})

	singletonMu.Lock()
	singletonDB = nil
	singletonMu.Unlock()
	return &slept
}

func TestConnectRetriesPing(t *testing.T) {
	slept := useFakeDriver(t, 2)
	opts := DefaultOptions(RoleServer)

	db, err := Connect(context.Background(), "postgres://test", opts)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer db.Close()
	if pingFailures.Load() != 0 {
		t.Fatalf("expected both failing pings to be consumed")
	}
	want := []time.Duration{opts.PingBackoff, 2 * opts.PingBackoff}
	if len(*slept) != 2 || (*slept)[0] != want[0] || (*slept)[1] != want[1] {
		t.Fatalf("expected linear backoff %v, got %v", want, *slept)
	}
}

func TestConnectGivesUpAfterAttempts(t *testing.T) {
	useFakeDriver(t, 10)
	opts := DefaultOptions(RoleServer)
	opts.PingAttempts = 2

	_, err := Connect(context.Background(), "postgres://test", opts)
	if err == nil {
		t.Fatalf("expected error after exhausting attempts")
	}
	if got := pingFailures.Load(); got != 8 {
		t.Fatalf("expected exactly 2 pings, %d failures left", got)
	}
}

func TestConnectRejectsEmptyURL(t *testing.T) {
	if _, err := Connect(context.Background(), "  ", DefaultOptions(RoleMigrate)); err == nil {
		t.Fatalf("expected error for empty url")
	}
}

func TestGetSingletonReusesPoolAndRetriesAfterFailure(t *testing.T) {
	useFakeDriver(t, 1)
	opts := DefaultOptions(RoleLambda)

	if _, err := GetSingleton(context.Background(), "postgres://test", opts); err == nil {
		t.Fatalf("expected first call to fail")
	}
	db1, err := GetSingleton(context.Background(), "postgres://test", opts)
	if err != nil {
		t.Fatalf("second call: %v", err)
	}
	db2, err := GetSingleton(context.Background(), "postgres://test", opts)
	if err != nil {
		t.Fatalf("third call: %v", err)
	}
	if db1 != db2 {
		t.Fatalf("expected the same pool")
	}
}

func TestOptionsFromEnvAppliesOverrides(t *testing.T) {
	useFakeDriver(t, 0)
	t.Setenv("DB_MAX_OPEN_CONNS", "7")
	t.Setenv("DB_MAX_IDLE_CONNS", "3")
	t.Setenv("DB_CONN_MAX_LIFETIME", "20m")
	t.Setenv("DB_PING_ATTEMPTS", "9")
	t.Setenv("DB_PING_TIMEOUT", "not-a-duration")

	opts := OptionsFromEnv(DefaultOptions(RoleServer))
	if opts.MaxIdleConns != 3 || opts.ConnMaxLifetime != 20*time.Minute || opts.PingAttempts != 9 {
		t.Fatalf("overrides not applied: %+v", opts)
	}
	if opts.PingTimeout != 5*time.Second {
		t.Fatalf("invalid override must keep the default, got %s", opts.PingTimeout)
	}

	db, err := Connect(context.Background(), "postgres://test", opts)
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer db.Close()
	if got := db.Stats().MaxOpenConnections; got != 7 {
		t.Fatalf("expected MaxOpenConnections=7, got %d", got)
	}
}

func TestHealth(t *testing.T) {
	useFakeDriver(t, 0)
	if err := Health(context.Background(), nil); err != nil {
		t.Fatalf("nil db must be healthy: %v", err)
	}

	db, err := Connect(context.Background(), "postgres://test", DefaultOptions(RoleServer))
	if err != nil {
		t.Fatalf("Connect: %v", err)
	}
	defer db.Close()
	if err := Health(context.Background(), db); err != nil {
		t.Fatalf("Health: %v", err)
	}
	pingFailures.Store(1)
	if err := Health(context.Background(), db); err == nil {
		t.Fatalf("expected health failure")
	}
}

func TestCurrentRole(t *testing.T) {
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "")
	if CurrentRole() != RoleServer {
		t.Fatalf("expected server role")
	}
	t.Setenv("AWS_LAMBDA_FUNCTION_NAME", "resume-api")
	if CurrentRole() != RoleLambda {
		t.Fatalf("expected lambda role")
	}
}
