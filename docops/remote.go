package docops

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wudi/pdfoverlay/worker"
)

// Remote operation names, shared between Register and remote callers.
const (
	OpMerge     = "merge"
	OpSplit     = "split"
	OpRotateAll = "rotate-all"
	OpReorder   = "reorder"
)

// MergeParams is the wire payload for OpMerge.
type MergeParams struct {
	Documents [][]byte `json:"documents"`
}

// SplitParams is the wire payload for OpSplit. From and To are
// 1-indexed, inclusive.
type SplitParams struct {
	Document []byte `json:"document"`
	From     int    `json:"from"`
	To       int    `json:"to"`
}

// RotateAllParams is the wire payload for OpRotateAll.
type RotateAllParams struct {
	Document []byte `json:"document"`
	Delta    int    `json:"delta"`
}

// ReorderParams is the wire payload for OpReorder.
type ReorderParams struct {
	Document []byte `json:"document"`
	Order    []int  `json:"order"`
}

// Register installs the document transforms into a remote-worker
// registry so a browser-hosted worker can serve them.
func (o *Ops) Register(reg worker.Registry) {
	reg[OpMerge] = func(ctx context.Context, payload []byte, report worker.ProgressFunc) ([]byte, error) {
		var p MergeParams
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("docops: merge params: %w", err)
		}
		return o.Merge(p.Documents...)(ctx, report)
	}
	reg[OpSplit] = func(ctx context.Context, payload []byte, report worker.ProgressFunc) ([]byte, error) {
		var p SplitParams
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("docops: split params: %w", err)
		}
		return o.Split(p.Document, p.From, p.To)(ctx, report)
	}
	reg[OpRotateAll] = func(ctx context.Context, payload []byte, report worker.ProgressFunc) ([]byte, error) {
		var p RotateAllParams
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("docops: rotate-all params: %w", err)
		}
		return o.RotateAll(p.Document, p.Delta)(ctx, report)
	}
	reg[OpReorder] = func(ctx context.Context, payload []byte, report worker.ProgressFunc) ([]byte, error) {
		var p ReorderParams
		if err := json.Unmarshal(payload, &p); err != nil {
			return nil, fmt.Errorf("docops: reorder params: %w", err)
		}
		return o.Reorder(p.Document, p.Order)(ctx, report)
	}
}
