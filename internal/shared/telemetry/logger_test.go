package telemetry

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	fn()
	_ = w.Close()
	os.Stdout = orig
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("read: %v", err)
	}
	return buf.String()
}

func TestInfoWritesJSONWithFields(t *testing.T) {
	Init(Config{Level: "info"})
	out := captureStdout(t, func() {
		Info("resume.created", map[string]any{"resume_id": "r1", "err": errors.New("boom")})
		Debug("hidden", nil)
	})

	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 1 {
		t.Fatalf("expected one line, got %d: %q", len(lines), out)
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(lines[0]), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["msg"] != "resume.created" || payload["level"] != "info" {
		t.Fatalf("unexpected payload: %v", payload)
	}
	if payload["resume_id"] != "r1" || payload["err"] != "boom" {
		t.Fatalf("fields missing: %v", payload)
	}
	if _, ok := payload["ts"]; !ok {
		t.Fatalf("missing ts")
	}
}

func TestWithRequestID(t *testing.T) {
	Init(Config{Level: "debug"})
	ctx := ContextWithRequestID(context.Background(), "req-9")
	out := captureStdout(t, func() {
		WithRequestID(ctx).Info("hello")
	})
	if !strings.Contains(out, `"request_id":"req-9"`) {
		t.Fatalf("request id missing: %s", out)
	}
}
