package session

import (
	"fmt"
	"sync"

	"github.com/wudi/pdfoverlay/observability"
)

// Manager owns every open document and tracks which one is active.
// Opening a document transfers ownership of its bytes into the manager;
// closing discards all of its session state unconditionally.
type Manager struct {
	mu     sync.Mutex
	docs   map[string]*Document
	active string
	limit  int
	log    observability.Logger
}

// ManagerConfig tunes a Manager.
type ManagerConfig struct {
	// HistoryLimit caps undo depth per document. Zero means
	// DefaultHistoryLimit.
	HistoryLimit int
	Logger       observability.Logger
}

// NewManager builds an empty manager.
func NewManager(cfg ManagerConfig) *Manager {
	limit := cfg.HistoryLimit
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	log := cfg.Logger
	if log == nil {
		log = observability.NopLogger{}
	}
	return &Manager{docs: make(map[string]*Document), limit: limit, log: log}
}

// Open registers a document and makes it active. An existing document
// with the same id is replaced, dropping its history.
func (m *Manager) Open(id, name string, data []byte) *Document {
	doc := &Document{id: id, name: name, current: NewSnapshot(data), limit: m.limit}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.docs[id] = doc
	m.active = id
	m.log.Info("document opened",
		observability.String("doc", id),
		observability.Int("bytes", doc.current.Len()),
		observability.String("fingerprint", doc.current.Fingerprint()))
	return doc
}

// Get returns the document with the given id.
func (m *Manager) Get(id string) (*Document, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[id]
	return d, ok
}

// Active returns the currently active document.
func (m *Manager) Active() (*Document, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	d, ok := m.docs[m.active]
	return d, ok
}

// Switch changes the active document.
func (m *Manager) Switch(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return fmt.Errorf("session: no document %q", id)
	}
	m.active = id
	return nil
}

// Close discards a document and all its session state. Closing the
// active document leaves no document active.
func (m *Manager) Close(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	if m.active == id {
		m.active = ""
	}
	m.log.Info("document closed", observability.String("doc", id))
}

// Len returns the number of open documents.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.docs)
}
