package log

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func newBufferLogger(buf *bytes.Buffer) *Logger {
	return New(Config{
		Level:     slog.LevelDebug,
		Component: "test",
		Handler:   slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
}

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" INFO ":  slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"warning": slog.LevelWarn,
		"error":   slog.LevelError,
		"bogus":   slog.LevelInfo,
		"":        slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Errorf("ParseLevel(%q) = %v, want %v", in, got, want)
		}
	}
}

func TestLoggerComponent(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	logger.Info("hello", "k", "v")
	logger.WithComponent("other").Warn("second")

	out := buf.String()
	if !strings.Contains(out, "component=test") || !strings.Contains(out, "k=v") {
		t.Fatalf("missing component or attribute: %s", out)
	}
	if !strings.Contains(out, "component=other") {
		t.Fatalf("WithComponent not applied: %s", out)
	}
	if strings.Count(out, "component=") != 2 {
		t.Fatalf("component should be logged once per record: %s", out)
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := newBufferLogger(&buf)

	var seen string
	handler := Middleware(logger)(RequestIDMiddleware(func(*http.Request) string { return "req_1" })(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			seen = RequestID(r.Context())
			FromContext(r.Context()).Info("inside")
		})))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if seen != "req_1" {
		t.Fatalf("request ID not stored in context, got %q", seen)
	}
	if rr.Header().Get("X-Request-ID") != "req_1" {
		t.Fatalf("request ID header not set")
	}
	if !strings.Contains(buf.String(), "request_id=req_1") {
		t.Fatalf("request logger missing request id: %s", buf.String())
	}
}

func TestFromContextDefault(t *testing.T) {
	if FromContext(context.Background()).Component() != "unknown" {
		t.Fatalf("expected fallback logger")
	}
}

func TestStructuredLogger(t *testing.T) {
	var buf bytes.Buffer
	sl := NewStructuredLogger(newBufferLogger(&buf))
	ctx := WithRequestID(context.Background(), "req_2")

	sl.LogEntitySaved(ctx, "money", OpCreate, 12, true)
	sl.LogEntityDeleted(ctx, "income", 4)
	sl.LogError(ctx, "boom", errors.New("bad"), ComponentTransport, OpList, nil)

	out := buf.String()
	for _, want := range []string{"entity=money", "entity_id=12", "operation=create", "entity=income", "operation=delete", "error=bad", "component=transport"} {
		if !strings.Contains(out, want) {
			t.Errorf("log output missing %q: %s", want, out)
		}
	}
}

func TestLogFieldsWithEntityWithoutID(t *testing.T) {
	f := NewFields().WithEntity("money", 0, false)
	if _, ok := f[FieldEntityID]; ok {
		t.Fatalf("entity_id should be omitted when unset")
	}
}
