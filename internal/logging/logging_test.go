package logging

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	cases := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		" WARN ":  slog.LevelWarn,
		"error":   slog.LevelError,
		"":        slog.LevelInfo,
		"verbose": slog.LevelInfo,
	}
	for in, want := range cases {
		if got := ParseLevel(in); got != want {
			t.Fatalf("ParseLevel(%q) = %v want %v", in, got, want)
		}
	}
}

func TestStartSpanReusesRequestID(t *testing.T) {
	var buf bytes.Buffer
	logger := New(&buf, "debug")

	ctx := WithLogger(context.Background(), logger)
	ctx = WithRequestID(ctx, "req-123")

	ctx, span := StartSpan(ctx, "upload")
	if got := TraceIDFromContext(ctx); got != "req-123" {
		t.Fatalf("expected trace id to reuse request id, got %q", got)
	}

	_, child := StartSpan(ctx, "child")
	child.End()
	span.End()

	out := buf.String()
	if !strings.Contains(out, `"span_name":"child"`) || !strings.Contains(out, `"parent_span_id"`) {
		t.Fatalf("expected child span log with parent id, got %s", out)
	}
}

func TestSpanFailLogsError(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), New(&buf, "info"))

	_, span := StartSpan(ctx, "stats", "channel_id", "abc")
	span.Fail(errors.New("aggregate failed"))
	span.End()

	out := buf.String()
	if !strings.Contains(out, `"msg":"span failed"`) || !strings.Contains(out, `"channel_id":"abc"`) {
		t.Fatalf("expected failed span entry, got %s", out)
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	if FromContext(context.Background()) != slog.Default() {
		t.Fatal("expected default logger")
	}
}

func TestWithAddsAttributes(t *testing.T) {
	var buf bytes.Buffer
	ctx := WithLogger(context.Background(), New(&buf, "info"))

	ctx = With(ctx, "user_id", "64b7f0c2a1d3e4f5a6b7c8d9")
	FromContext(ctx).Info("hello")

	if !strings.Contains(buf.String(), `"user_id":"64b7f0c2a1d3e4f5a6b7c8d9"`) {
		t.Fatalf("expected user id attribute, got %s", buf.String())
	}
	if With(ctx) != ctx {
		t.Fatal("expected context to be returned unchanged without attributes")
	}
}
