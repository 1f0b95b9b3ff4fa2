package worker

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"golang.org/x/net/websocket"

	"github.com/wudi/pdfoverlay/observability"
)

// Frame types exchanged with a remote worker.
const (
	frameStart    = "start"
	frameProgress = "progress"
	frameResult   = "result"
	frameError    = "error"
)

// frame is one message on the remote-worker wire. Every frame carries
// the operation id it belongs to.
type frame struct {
	ID      uint64 `json:"id"`
	Type    string `json:"type"`
	Op      string `json:"op,omitempty"`
	Payload []byte `json:"payload,omitempty"`
	Stage   string `json:"stage,omitempty"`
	Done    int    `json:"done,omitempty"`
	Total   int    `json:"total,omitempty"`
	Message string `json:"message,omitempty"`
}

// Handler executes one named remote operation against its serialized
// payload.
type Handler func(ctx context.Context, payload []byte, report ProgressFunc) ([]byte, error)

// Registry maps operation names to handlers on the serving side.
type Registry map[string]Handler

// Serve returns a websocket handler that executes registry operations
// one at a time, mirroring the dispatcher's single isolate. Progress
// and results are sent back as frames tagged with the request's id.
func Serve(reg Registry, log observability.Logger) websocket.Handler {
	if log == nil {
		log = observability.NopLogger{}
	}
	return func(conn *websocket.Conn) {
		var sendMu sync.Mutex
		send := func(f frame) {
			sendMu.Lock()
			defer sendMu.Unlock()
			if err := websocket.JSON.Send(conn, f); err != nil {
				log.Warn("remote worker send failed", observability.Error("err", err))
			}
		}
		for {
			var req frame
			if err := websocket.JSON.Receive(conn, &req); err != nil {
				if !errors.Is(err, io.EOF) {
					log.Warn("remote worker receive failed", observability.Error("err", err))
				}
				return
			}
			if req.Type != frameStart {
				continue
			}
			h, ok := reg[req.Op]
			if !ok {
				send(frame{ID: req.ID, Type: frameError, Message: fmt.Sprintf("unknown operation %q", req.Op)})
				continue
			}
			out, err := h(conn.Request().Context(), req.Payload, func(p Progress) {
				send(frame{ID: req.ID, Type: frameProgress, Stage: p.Stage, Done: p.Done, Total: p.Total})
			})
			if err != nil {
				send(frame{ID: req.ID, Type: frameError, Message: err.Error()})
				continue
			}
			send(frame{ID: req.ID, Type: frameResult, Payload: out})
		}
	}
}

// Client drives operations on a remote worker over one websocket
// connection. Responses are matched to callers by operation id, so a
// frame from an abandoned call is dropped rather than delivered to the
// wrong caller.
type Client struct {
	conn     *websocket.Conn
	deadline time.Duration
	log      observability.Logger

	sendMu sync.Mutex

	mu      sync.Mutex
	nextID  uint64
	pending map[uint64]*pendingCall
	readErr error
}

// pendingCall splits a call's incoming frames by disposition: progress
// is advisory and may be dropped under backpressure, while the single
// terminal result/error frame must never be lost.
type pendingCall struct {
	progress chan frame
	done     chan frame
}

// NewClient wraps an established connection and starts its read loop.
func NewClient(conn *websocket.Conn, cfg Config) *Client {
	deadline := cfg.Deadline
	if deadline <= 0 {
		deadline = DefaultDeadline
	}
	log := cfg.Logger
	if log == nil {
		log = observability.NopLogger{}
	}
	c := &Client{
		conn:     conn,
		deadline: deadline,
		log:      log,
		pending:  make(map[uint64]*pendingCall),
	}
	go c.readLoop()
	return c
}

func (c *Client) readLoop() {
	for {
		var f frame
		if err := websocket.JSON.Receive(c.conn, &f); err != nil {
			c.mu.Lock()
			c.readErr = err
			for _, call := range c.pending {
				close(call.done)
			}
			c.pending = make(map[uint64]*pendingCall)
			c.mu.Unlock()
			return
		}
		c.mu.Lock()
		call := c.pending[f.ID]
		c.mu.Unlock()
		if call == nil {
			continue // abandoned or unknown op
		}
		switch f.Type {
		case frameProgress:
			select {
			case call.progress <- f:
			default: // caller not keeping up, drop
			}
		case frameResult, frameError:
			// One terminal frame per id and done has room for it.
			call.done <- f
		}
	}
}

// Call runs a named operation on the remote worker and waits for its
// result, relaying progress frames to onProgress.
func (c *Client) Call(ctx context.Context, op string, payload []byte, onProgress ProgressFunc) ([]byte, error) {
	c.mu.Lock()
	if c.readErr != nil {
		err := c.readErr
		c.mu.Unlock()
		return nil, fmt.Errorf("worker: connection down: %w", err)
	}
	c.nextID++
	id := c.nextID
	call := &pendingCall{
		progress: make(chan frame, 8),
		done:     make(chan frame, 1),
	}
	c.pending[id] = call
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		delete(c.pending, id)
		c.mu.Unlock()
	}()

	c.sendMu.Lock()
	err := websocket.JSON.Send(c.conn, frame{ID: id, Type: frameStart, Op: op, Payload: payload})
	c.sendMu.Unlock()
	if err != nil {
		return nil, fmt.Errorf("worker: send %s: %w", op, err)
	}

	start := time.Now()
	timeout := time.NewTimer(c.deadline)
	defer timeout.Stop()
	for {
		select {
		case f := <-call.progress:
			if onProgress != nil {
				onProgress(Progress{Stage: f.Stage, Done: f.Done, Total: f.Total})
			}
		case f, ok := <-call.done:
			if !ok {
				return nil, fmt.Errorf("worker: connection closed during %s", op)
			}
			// The server queued all progress before the terminal frame.
			for {
				select {
				case p := <-call.progress:
					if onProgress != nil {
						onProgress(Progress{Stage: p.Stage, Done: p.Done, Total: p.Total})
					}
					continue
				default:
				}
				break
			}
			if f.Type == frameError {
				return nil, fmt.Errorf("worker: %s: %s", op, f.Message)
			}
			return f.Payload, nil
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timeout.C:
			c.log.Warn("remote op timed out", observability.String("op", op))
			return nil, timeoutErr(op, time.Since(start))
		}
	}
}

// Close tears down the connection; pending calls fail.
func (c *Client) Close() error { return c.conn.Close() }
