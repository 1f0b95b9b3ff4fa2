// Package docops builds the offloadable whole-document transforms of
// the editor (merge, split, rotate-all, reorder) as worker tasks over
// the mutation engine. Each task loads its own snapshot, mutates it,
// and returns a freshly serialized document; nothing shared with the
// caller is touched.
package docops

import (
	"context"
	"fmt"

	"github.com/wudi/pdfoverlay/coords"
	"github.com/wudi/pdfoverlay/engine"
	"github.com/wudi/pdfoverlay/observability"
	"github.com/wudi/pdfoverlay/worker"
)

// Ops builds document transform tasks against one mutation engine.
type Ops struct {
	mut engine.Mutator
	log observability.Logger
}

// New wraps the mutation engine. A nil logger means no logging.
func New(mut engine.Mutator, log observability.Logger) *Ops {
	if log == nil {
		log = observability.NopLogger{}
	}
	return &Ops{mut: mut, log: log}
}

// Merge returns a task concatenating the given documents in order. The
// first document is the base; every page of the rest is appended to it.
func (o *Ops) Merge(docs ...[]byte) worker.Task {
	return func(ctx context.Context, report worker.ProgressFunc) ([]byte, error) {
		if len(docs) < 2 {
			return nil, fmt.Errorf("docops: merge needs at least 2 documents, got %d", len(docs))
		}
		base, err := o.mut.LoadDocument(ctx, docs[0])
		if err != nil {
			return nil, fmt.Errorf("docops: load base: %w", err)
		}
		for i, data := range docs[1:] {
			src, err := o.mut.LoadDocument(ctx, data)
			if err != nil {
				return nil, fmt.Errorf("docops: load document %d: %w", i+2, err)
			}
			for p := 0; p < src.PageCount(); p++ {
				if err := base.AppendPageFrom(ctx, src, p); err != nil {
					return nil, fmt.Errorf("docops: append page %d of document %d: %w", p+1, i+2, err)
				}
			}
			report(worker.Progress{Stage: "merge", Done: i + 1, Total: len(docs) - 1})
		}
		o.log.Info("documents merged",
			observability.Int("documents", len(docs)),
			observability.Int("pages", base.PageCount()))
		return base.Save(ctx)
	}
}

// Split returns a task extracting the 1-indexed page range [from, to]
// into a new document.
func (o *Ops) Split(doc []byte, from, to int) worker.Task {
	return func(ctx context.Context, report worker.ProgressFunc) ([]byte, error) {
		d, err := o.mut.LoadDocument(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("docops: load: %w", err)
		}
		n := d.PageCount()
		if from < 1 || to < from || to > n {
			return nil, fmt.Errorf("docops: page range [%d,%d] invalid for %d pages", from, to, n)
		}
		// Trim the tail first so the leading indexes stay valid.
		for i := n - 1; i >= to; i-- {
			if err := d.RemovePage(i); err != nil {
				return nil, fmt.Errorf("docops: remove page %d: %w", i+1, err)
			}
		}
		for i := from - 2; i >= 0; i-- {
			if err := d.RemovePage(i); err != nil {
				return nil, fmt.Errorf("docops: remove page %d: %w", i+1, err)
			}
		}
		report(worker.Progress{Stage: "split", Done: 1, Total: 1})
		o.log.Info("document split",
			observability.Int("from", from),
			observability.Int("to", to),
			observability.Int("pages", d.PageCount()))
		return d.Save(ctx)
	}
}

// RotateAll returns a task adding delta degrees to every page's
// rotation. Delta must be a multiple of 90.
func (o *Ops) RotateAll(doc []byte, delta int) worker.Task {
	return func(ctx context.Context, report worker.ProgressFunc) ([]byte, error) {
		d, err := o.mut.LoadDocument(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("docops: load: %w", err)
		}
		if _, err := coords.NormalizeRotation(delta); err != nil {
			return nil, fmt.Errorf("docops: rotate-all: %w", err)
		}
		n := d.PageCount()
		for i := 0; i < n; i++ {
			p, err := d.Page(i)
			if err != nil {
				return nil, fmt.Errorf("docops: page %d: %w", i+1, err)
			}
			r, err := coords.NormalizeRotation(int(p.Rotation()) + delta)
			if err != nil {
				return nil, fmt.Errorf("docops: page %d: %w", i+1, err)
			}
			if err := p.SetRotation(r); err != nil {
				return nil, fmt.Errorf("docops: rotate page %d: %w", i+1, err)
			}
			report(worker.Progress{Stage: "rotate", Done: i + 1, Total: n})
		}
		return d.Save(ctx)
	}
}

// Reorder returns a task rearranging pages into the given order. Order
// lists every original 1-indexed page number exactly once, in its new
// position.
func (o *Ops) Reorder(doc []byte, order []int) worker.Task {
	return func(ctx context.Context, report worker.ProgressFunc) ([]byte, error) {
		d, err := o.mut.LoadDocument(ctx, doc)
		if err != nil {
			return nil, fmt.Errorf("docops: load: %w", err)
		}
		n := d.PageCount()
		if err := checkPermutation(order, n); err != nil {
			return nil, err
		}
		// current[i] holds the original page number now at index i.
		current := make([]int, n)
		for i := range current {
			current[i] = i + 1
		}
		for i, want := range order {
			j := i
			for current[j] != want {
				j++
			}
			if j == i {
				continue
			}
			if err := d.MovePage(j, i); err != nil {
				return nil, fmt.Errorf("docops: move page %d to %d: %w", j+1, i+1, err)
			}
			moved := current[j]
			copy(current[i+1:j+1], current[i:j])
			current[i] = moved
			report(worker.Progress{Stage: "reorder", Done: i + 1, Total: n})
		}
		return d.Save(ctx)
	}
}

func checkPermutation(order []int, n int) error {
	if len(order) != n {
		return fmt.Errorf("docops: order lists %d pages, document has %d", len(order), n)
	}
	seen := make([]bool, n+1)
	for _, p := range order {
		if p < 1 || p > n {
			return fmt.Errorf("docops: page %d out of range [1,%d]", p, n)
		}
		if seen[p] {
			return fmt.Errorf("docops: page %d listed twice", p)
		}
		seen[p] = true
	}
	return nil
}
