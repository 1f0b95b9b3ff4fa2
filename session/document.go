package session

import "sync"

// DefaultHistoryLimit caps how many undo steps a document retains.
const DefaultHistoryLimit = 20

// Document is one open document: its current snapshot plus bounded
// undo/redo stacks. Every tool operation publishes a new snapshot via
// Apply; Undo and Redo move between published snapshots without ever
// mutating one.
type Document struct {
	id   string
	name string

	mu      sync.Mutex
	current Snapshot
	undo    []Snapshot
	redo    []Snapshot
	limit   int
}

// ID returns the document's stable identifier.
func (d *Document) ID() string { return d.id }

// Name returns the display name the document was opened with.
func (d *Document) Name() string { return d.name }

// Current returns the latest published snapshot.
func (d *Document) Current() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.current
}

// Apply publishes a new state, pushing the previous one onto the undo
// stack and clearing the redo stack. Identical content is a no-op so
// cancelled operations don't pollute history.
func (d *Document) Apply(data []byte) Snapshot {
	next := NewSnapshot(data)
	d.mu.Lock()
	defer d.mu.Unlock()
	if next.Equal(d.current) {
		return d.current
	}
	d.undo = append(d.undo, d.current)
	if len(d.undo) > d.limit {
		d.undo = d.undo[len(d.undo)-d.limit:]
	}
	d.redo = nil
	d.current = next
	return next
}

// Undo steps back one snapshot. It reports false when there is no
// history.
func (d *Document) Undo() (Snapshot, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.undo) == 0 {
		return d.current, false
	}
	d.redo = append(d.redo, d.current)
	d.current = d.undo[len(d.undo)-1]
	d.undo = d.undo[:len(d.undo)-1]
	return d.current, true
}

// Redo re-applies the most recently undone snapshot.
func (d *Document) Redo() (Snapshot, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.redo) == 0 {
		return d.current, false
	}
	d.undo = append(d.undo, d.current)
	d.current = d.redo[len(d.redo)-1]
	d.redo = d.redo[:len(d.redo)-1]
	return d.current, true
}

// CanUndo reports whether Undo would change state.
func (d *Document) CanUndo() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.undo) > 0
}

// CanRedo reports whether Redo would change state.
func (d *Document) CanRedo() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.redo) > 0
}
