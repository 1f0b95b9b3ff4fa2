// Package editor is the host-facing facade: it owns the open documents,
// opens interactive overlay sessions on top of them, runs batch
// insertions through the orchestrator, and exposes the scripting host
// surface. Hosts hold one Editor per process.
package editor

import (
	"context"
	"fmt"

	"github.com/wudi/pdfoverlay/batch"
	"github.com/wudi/pdfoverlay/engine"
	"github.com/wudi/pdfoverlay/observability"
	"github.com/wudi/pdfoverlay/ocr"
	"github.com/wudi/pdfoverlay/session"
)

// Config carries the editor's optional collaborators.
type Config struct {
	Logger observability.Logger
	Tracer observability.Tracer

	// HistoryLimit caps undo depth per document. Zero means
	// session.DefaultHistoryLimit.
	HistoryLimit int

	// AltText, when set, derives alt text for raster payloads before
	// insertion. Languages hint its trained data.
	AltText          ocr.Engine
	AltTextLanguages []string
}

// Editor composes the two engines with session state.
type Editor struct {
	renderer engine.Renderer
	mutator  engine.Mutator
	log      observability.Logger
	docs     *session.Manager
	orch     *batch.Orchestrator
	alt      ocr.Engine
	altLangs []string
}

// New builds an editor over the rendering and mutation engines.
func New(renderer engine.Renderer, mutator engine.Mutator, cfg Config) *Editor {
	log := cfg.Logger
	if log == nil {
		log = observability.NopLogger{}
	}
	return &Editor{
		renderer: renderer,
		mutator:  mutator,
		log:      log,
		docs: session.NewManager(session.ManagerConfig{
			HistoryLimit: cfg.HistoryLimit,
			Logger:       log,
		}),
		orch:     batch.NewOrchestrator(renderer, mutator, batch.Config{Logger: cfg.Logger, Tracer: cfg.Tracer}),
		alt:      cfg.AltText,
		altLangs: cfg.AltTextLanguages,
	}
}

// Open registers a document with the session manager and makes it
// active.
func (e *Editor) Open(id, name string, data []byte) *session.Document {
	return e.docs.Open(id, name, data)
}

// Documents exposes the session manager for switching and closing.
func (e *Editor) Documents() *session.Manager { return e.docs }

func (e *Editor) activeDocument() (*session.Document, error) {
	doc, ok := e.docs.Active()
	if !ok {
		return nil, fmt.Errorf("editor: no active document")
	}
	return doc, nil
}

// Undo steps the active document back one snapshot.
func (e *Editor) Undo() (session.Snapshot, error) {
	doc, err := e.activeDocument()
	if err != nil {
		return session.Snapshot{}, err
	}
	snap, ok := doc.Undo()
	if !ok {
		return session.Snapshot{}, fmt.Errorf("editor: nothing to undo")
	}
	return snap, nil
}

// Redo re-applies the active document's most recently undone snapshot.
func (e *Editor) Redo() (session.Snapshot, error) {
	doc, err := e.activeDocument()
	if err != nil {
		return session.Snapshot{}, err
	}
	snap, ok := doc.Redo()
	if !ok {
		return session.Snapshot{}, fmt.Errorf("editor: nothing to redo")
	}
	return snap, nil
}

// InsertText draws text at a document-space point on one 1-indexed page
// of the active document and publishes the result as a new snapshot.
func (e *Editor) InsertText(ctx context.Context, pageNumber int, text string, opts engine.TextOptions) error {
	doc, err := e.activeDocument()
	if err != nil {
		return err
	}
	handle, err := e.mutator.LoadDocument(ctx, doc.Current().Bytes())
	if err != nil {
		return fmt.Errorf("editor: load: %w", err)
	}
	page, err := handle.Page(pageNumber - 1)
	if err != nil {
		return fmt.Errorf("editor: page %d: %w", pageNumber, err)
	}
	if err := page.DrawText(text, opts); err != nil {
		return fmt.Errorf("editor: draw text on page %d: %w", pageNumber, err)
	}
	out, err := handle.Save(ctx)
	if err != nil {
		return fmt.Errorf("editor: save: %w", err)
	}
	doc.Apply(out)
	e.log.Info("text inserted",
		observability.String("doc", doc.ID()),
		observability.Int("page", pageNumber))
	return nil
}
