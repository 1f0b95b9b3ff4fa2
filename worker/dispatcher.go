package worker

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/wudi/pdfoverlay/observability"
)

type request struct {
	id       uint64
	name     string
	task     Task
	ctx      context.Context
	progress chan Progress
	done     chan response
}

type response struct {
	id    uint64
	bytes []byte
	err   error
}

// Dispatcher runs tasks on a single dedicated goroutine, one at a time,
// mirroring the single-threaded isolate the editor offloads to. Callers
// block in Run; request and response are matched by operation id so a
// late response from an abandoned operation can never be delivered to
// the wrong caller.
type Dispatcher struct {
	nextID   atomic.Uint64
	deadline time.Duration
	log      observability.Logger
	requests chan *request
	closed   chan struct{}
}

// NewDispatcher starts the isolate goroutine.
func NewDispatcher(cfg Config) *Dispatcher {
	deadline := cfg.Deadline
	if deadline <= 0 {
		deadline = DefaultDeadline
	}
	log := cfg.Logger
	if log == nil {
		log = observability.NopLogger{}
	}
	d := &Dispatcher{
		deadline: deadline,
		log:      log,
		requests: make(chan *request),
		closed:   make(chan struct{}),
	}
	go d.loop()
	return d
}

func (d *Dispatcher) loop() {
	for {
		select {
		case req := <-d.requests:
			bytes, err := req.task(req.ctx, func(p Progress) {
				select {
				case req.progress <- p:
				default: // caller not keeping up, drop
				}
			})
			req.done <- response{id: req.id, bytes: bytes, err: err}
		case <-d.closed:
			return
		}
	}
}

// Run submits a task to the isolate and waits for its response. When
// the isolate stays silent past the deadline, the caller gets a timeout
// error; the task is not rolled back, its eventual result is discarded.
func (d *Dispatcher) Run(ctx context.Context, name string, task Task, onProgress ProgressFunc) ([]byte, error) {
	id := d.nextID.Add(1)
	req := &request{
		id:       id,
		name:     name,
		task:     task,
		ctx:      ctx,
		progress: make(chan Progress, 8),
		done:     make(chan response, 1),
	}

	start := time.Now()
	select {
	case d.requests <- req:
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-time.After(d.deadline):
		d.log.Warn("worker busy past deadline",
			observability.String("op", name),
			observability.Int64("id", int64(id)))
		return nil, timeoutErr(name, time.Since(start))
	}

	timeout := time.NewTimer(d.deadline)
	defer timeout.Stop()
	for {
		select {
		case p := <-req.progress:
			if onProgress != nil {
				onProgress(p)
			}
		case resp := <-req.done:
			if resp.id != id {
				continue
			}
			// The isolate queued all progress before responding.
			for {
				select {
				case p := <-req.progress:
					if onProgress != nil {
						onProgress(p)
					}
					continue
				default:
				}
				break
			}
			d.log.Debug("worker op finished",
				observability.String("op", name),
				observability.Int64("id", int64(id)),
				observability.Float64("seconds", time.Since(start).Seconds()))
			return resp.bytes, resp.err
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timeout.C:
			d.log.Warn("worker op timed out",
				observability.String("op", name),
				observability.Int64("id", int64(id)))
			return nil, timeoutErr(name, time.Since(start))
		}
	}
}

// Close stops the isolate goroutine. In-flight work finishes; new Run
// calls after Close block until their deadline.
func (d *Dispatcher) Close() {
	close(d.closed)
}
