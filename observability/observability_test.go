package observability

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestFieldConstructors(t *testing.T) {
	err := errors.New("boom")
	cases := []struct {
		field Field
		key   string
		value interface{}
	}{
		{String("a", "x"), "a", "x"},
		{Int("b", 7), "b", 7},
		{Int64("c", int64(9)), "c", int64(9)},
		{Float64("d", 1.5), "d", 1.5},
		{Error("e", err), "e", err},
	}
	for _, c := range cases {
		if c.field.Key() != c.key {
			t.Fatalf("key = %q, want %q", c.field.Key(), c.key)
		}
		if c.field.Value() != c.value {
			t.Fatalf("value = %v, want %v", c.field.Value(), c.value)
		}
	}
}

func TestNopLoggerAndTracer(t *testing.T) {
	var l Logger = NopLogger{}
	l.Info("ignored", String("k", "v"))
	if _, ok := l.With(Int("n", 1)).(NopLogger); !ok {
		t.Fatal("With must stay a NopLogger")
	}

	ctx, span := NopTracer().StartSpan(context.Background(), "op")
	if ctx == nil {
		t.Fatal("nil context from nop tracer")
	}
	span.SetTag("k", "v")
	span.SetError(errors.New("x"))
	span.Finish()
}

func TestSlogLoggerEmitsFields(t *testing.T) {
	var buf bytes.Buffer
	sl := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	log := NewSlogLogger(sl).With(String("component", "batch"))
	log.Info("pages processed", Int("count", 3))

	out := buf.String()
	for _, want := range []string{"pages processed", "component=batch", "count=3"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output %q missing %q", out, want)
		}
	}
}

func TestSlogLoggerNilDiscards(t *testing.T) {
	log := NewSlogLogger(nil)
	log.Error("dropped", Error("err", errors.New("x")))
}
