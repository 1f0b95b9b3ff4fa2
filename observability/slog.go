package observability

import (
	"io"
	"log/slog"
	"math"
)

// SlogLogger adapts a *slog.Logger to the Logger interface so hosts that
// standardize on the stdlib structured logger can plug it straight in.
type SlogLogger struct {
	l *slog.Logger
}

// NewSlogLogger wraps sl. A nil sl yields a logger that discards output.
func NewSlogLogger(sl *slog.Logger) SlogLogger {
	if sl == nil {
		sl = slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.Level(math.MaxInt)}))
	}
	return SlogLogger{l: sl}
}

func (s SlogLogger) Debug(msg string, fields ...Field) { s.l.Debug(msg, attrs(fields)...) }
func (s SlogLogger) Info(msg string, fields ...Field)  { s.l.Info(msg, attrs(fields)...) }
func (s SlogLogger) Warn(msg string, fields ...Field)  { s.l.Warn(msg, attrs(fields)...) }
func (s SlogLogger) Error(msg string, fields ...Field) { s.l.Error(msg, attrs(fields)...) }

func (s SlogLogger) With(fields ...Field) Logger {
	return SlogLogger{l: s.l.With(attrs(fields)...)}
}

func attrs(fields []Field) []any {
	out := make([]any, 0, len(fields))
	for _, f := range fields {
		out = append(out, slog.Any(f.Key(), f.Value()))
	}
	return out
}
