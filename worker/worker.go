// Package worker provides the execution strategy for heavy document
// transforms: an inline runner and a dispatcher that isolates work on
// its own goroutine, correlating request and response by operation id
// and relaying coarse progress notifications. Both implementations are
// observably identical; only latency and caller blocking differ. The
// strategy is selected once at startup, never branched per call.
package worker

import (
	"context"
	"time"

	"github.com/wudi/pdfoverlay/batch"
	"github.com/wudi/pdfoverlay/observability"
)

// DefaultDeadline bounds how long the offloaded path may stay silent
// before the operation is reported as timed out.
const DefaultDeadline = 2 * time.Minute

// Progress is a coarse notification emitted while a transform runs.
type Progress struct {
	Stage string
	Done  int
	Total int
}

// ProgressFunc receives progress notifications. Implementations must be
// cheap; they are called from the executing context.
type ProgressFunc func(Progress)

// Task is one offloadable document transform. It returns the new
// serialized document bytes. Tasks must be self-contained: they operate
// on their own snapshot copy and never touch state shared with the
// caller.
type Task func(ctx context.Context, report ProgressFunc) ([]byte, error)

// Runner executes tasks. Run blocks until the task completes, fails, or
// the runner's deadline elapses.
type Runner interface {
	Run(ctx context.Context, name string, task Task, onProgress ProgressFunc) ([]byte, error)
}

// Config selects and tunes a runner.
type Config struct {
	// Offload moves execution onto the dispatcher's isolate. When
	// false everything runs inline on the caller's goroutine.
	Offload bool
	// Deadline bounds the offloaded path. Zero means DefaultDeadline.
	// Ignored inline; inline callers bound work via ctx.
	Deadline time.Duration
	Logger   observability.Logger
}

// Select returns the configured runner. Callers keep the returned
// Runner for the life of the process.
func Select(cfg Config) Runner {
	if cfg.Offload {
		return NewDispatcher(cfg)
	}
	return Inline{}
}

// Inline runs every task synchronously on the caller's goroutine. It is
// the fallback when no isolated context is available.
type Inline struct{}

func (Inline) Run(ctx context.Context, name string, task Task, onProgress ProgressFunc) ([]byte, error) {
	if onProgress == nil {
		onProgress = func(Progress) {}
	}
	return task(ctx, onProgress)
}

func timeoutErr(name string, elapsed time.Duration) error {
	return &batch.TimeoutError{Op: name, Elapsed: elapsed}
}
