// Package session makes the editor's document state explicit: immutable
// byte snapshots with content fingerprints, per-document undo/redo
// history, and a manager that owns the active document and transfers
// ownership on switch. Nothing here is ambient or global; the host holds
// a Manager and passes documents down.
package session

import (
	"bytes"
	"encoding/hex"

	"golang.org/x/crypto/blake2b"
)

// Snapshot is one immutable serialized state of a document. The backing
// bytes are cloned on construction and never mutated afterwards, so any
// number of readers (thumbnail renderers, previews) can share a snapshot
// while a mutator works on its own copy.
type Snapshot struct {
	data   []byte
	digest [blake2b.Size256]byte
}

// NewSnapshot clones data into an immutable snapshot.
func NewSnapshot(data []byte) Snapshot {
	d := bytes.Clone(data)
	return Snapshot{data: d, digest: blake2b.Sum256(d)}
}

// Bytes returns the snapshot's backing slice. Callers must treat it as
// read-only; mutators take Clone instead.
func (s Snapshot) Bytes() []byte { return s.data }

// Clone returns a fresh copy a mutator may write into.
func (s Snapshot) Clone() []byte { return bytes.Clone(s.data) }

// Len returns the snapshot size in bytes.
func (s Snapshot) Len() int { return len(s.data) }

// Fingerprint returns a short hex content fingerprint, stable across
// processes for identical bytes.
func (s Snapshot) Fingerprint() string { return hex.EncodeToString(s.digest[:8]) }

// Equal reports whether two snapshots hold identical content.
func (s Snapshot) Equal(o Snapshot) bool { return s.digest == o.digest }
