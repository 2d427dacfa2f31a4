package lifecycle

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"
)

func TestShutdownRunsHooksInReverse(t *testing.T) {
	m := New(time.Second, nil)
	var order []string
	for _, name := range []string{"db", "cache", "http"} {
		name := name
		m.Register(name, func(context.Context) error {
			order = append(order, name)
			return nil
		})
	}
	if err := m.Shutdown(context.Background()); err != nil {
		t.Fatalf("shutdown: %v", err)
	}
	if want := []string{"http", "cache", "db"}; !reflect.DeepEqual(order, want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	if err := m.Shutdown(context.Background()); err != nil || len(order) != 3 {
		t.Fatalf("second shutdown should be a no-op")
	}
}

func TestShutdownJoinsErrorsAndContinues(t *testing.T) {
	m := New(time.Second, nil)
	errA := errors.New("a")
	ran := false
	m.Register("last", func(context.Context) error { ran = true; return nil })
	m.Register("first", func(context.Context) error { return errA })

	err := m.Shutdown(context.Background())
	if !errors.Is(err, errA) {
		t.Fatalf("expected joined error, got %v", err)
	}
	if !ran {
		t.Fatalf("remaining hooks must still run")
	}
}

func TestShutdownHonoursTimeout(t *testing.T) {
	m := New(20*time.Millisecond, nil)
	m.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	start := time.Now()
	if err := m.Shutdown(context.Background()); !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatalf("timeout not applied")
	}
}
