package editor

import (
	"context"
	"fmt"

	"github.com/wudi/pdfoverlay/assets"
	"github.com/wudi/pdfoverlay/batch"
	"github.com/wudi/pdfoverlay/coords"
	"github.com/wudi/pdfoverlay/observability"
	"github.com/wudi/pdfoverlay/ocr"
	"github.com/wudi/pdfoverlay/overlay"
	"github.com/wudi/pdfoverlay/session"
)

// OverlaySession is one interactive insertion: a box tracker over the
// reference page's displayed surface, a page selection, and the payload
// to stamp. All of its state is discarded on Close.
type OverlaySession struct {
	ed      *Editor
	doc     *session.Document
	payload assets.Payload

	reference overlay.PageRenderDescriptor
	scale     float64

	tracker *overlay.BoxTracker
	pages   *overlay.PageSet
	closed  bool
}

// Show opens an interactive overlay session on the active document. The
// reference page is rendered at the given scale into a surface displayed
// displayedWidth CSS pixels wide; pointer events feed the session's
// tracker in displayed-pixel coordinates.
func (e *Editor) Show(ctx context.Context, pageNumber int, scale, displayedWidth float64, payload assets.Payload) (*OverlaySession, error) {
	if err := payload.Validate(); err != nil {
		return nil, err
	}
	doc, err := e.activeDocument()
	if err != nil {
		return nil, err
	}
	page, err := e.renderer.GetPage(ctx, pageNumber)
	if err != nil {
		return nil, fmt.Errorf("editor: reference page %d: %w", pageNumber, err)
	}
	vp, err := page.Viewport(scale)
	if err != nil {
		return nil, fmt.Errorf("editor: reference page %d viewport: %w", pageNumber, err)
	}
	if displayedWidth <= 0 {
		return nil, fmt.Errorf("editor: displayed width %g must be positive", displayedWidth)
	}
	sw, sh := vp.SurfaceSize()
	ref := overlay.PageRenderDescriptor{
		PageNumber:      pageNumber,
		Rotation:        page.Rotation(),
		NativeWidth:     sw,
		NativeHeight:    sh,
		DisplayedWidth:  displayedWidth,
		DisplayedHeight: displayedWidth * sh / sw,
		Viewport:        vp,
	}

	e.deriveAltText(ctx, &payload)

	return &OverlaySession{
		ed:        e,
		doc:       doc,
		payload:   payload,
		reference: ref,
		scale:     scale,
		tracker:   overlay.NewBoxTracker(ref.DisplayedWidth, ref.DisplayedHeight, overlay.TrackerOptions{}),
		// The page the user is drawing on is selected from the start;
		// committing without touching the toggles stamps that page.
		pages: overlay.NewPageSet(pageNumber),
	}, nil
}

// deriveAltText fills in missing alt text for raster payloads when a
// recognizer is configured. Recognition failure is not fatal, the
// insertion just stays without alt text.
func (e *Editor) deriveAltText(ctx context.Context, p *assets.Payload) {
	if e.alt == nil || p.AltText != "" || p.Kind == assets.KindText {
		return
	}
	text, err := ocr.AltText(ctx, e.alt,
		ocr.NewInput("payload", p.Image, ocr.WithLanguages(e.altLangs...)))
	if err != nil {
		e.log.Warn("alt text derivation failed", observability.Error("err", err))
		return
	}
	p.AltText = text
}

// Tracker exposes the pointer state machine; hosts forward pointer
// events to it.
func (s *OverlaySession) Tracker() *overlay.BoxTracker { return s.tracker }

// Pages exposes the page selection.
func (s *OverlaySession) Pages() *overlay.PageSet { return s.pages }

// Payload returns the payload as it will be inserted, including any
// derived alt text.
func (s *OverlaySession) Payload() assets.Payload { return s.payload }

// Reference describes the rendered reference page the box is drawn on.
func (s *OverlaySession) Reference() overlay.PageRenderDescriptor { return s.reference }

// PreviewRect maps the current box to document points on the reference
// page, committed or not, so hosts can render a live placement preview.
func (s *OverlaySession) PreviewRect() (coords.Rect, bool) {
	box, ok := s.tracker.Box()
	if !ok {
		return coords.Rect{}, false
	}
	ratio, err := s.reference.Ratio()
	if err != nil {
		return coords.Rect{}, false
	}
	return overlay.ToDocumentRect(box, ratio, s.reference.Viewport), true
}

// Run commits the session: the tracked box is applied to every selected
// page in one batch and the output becomes the document's new snapshot.
func (s *OverlaySession) Run(ctx context.Context) (*batch.Result, error) {
	if s.closed {
		return nil, fmt.Errorf("editor: session is closed")
	}
	box, ok := s.tracker.Box()
	if !ok || !s.tracker.Committed() {
		return nil, &batch.ValidationError{Reason: "no committed box"}
	}
	res, err := s.ed.orch.Run(ctx, batch.Request{
		Document:       s.doc.Current().Bytes(),
		Pages:          s.pages,
		Payload:        s.payload,
		ReferencePage:  s.reference.PageNumber,
		ReferenceBox:   box,
		DisplayedWidth: s.reference.DisplayedWidth,
		Scale:          s.scale,
	})
	if err != nil {
		return nil, err
	}
	s.doc.Apply(res.Output)
	s.ed.log.Info("overlay committed",
		observability.String("doc", s.doc.ID()),
		observability.String("summary", res.Summary()),
		observability.Int("first_page", res.FirstPage))
	return res, nil
}

// Close tears down all session state unconditionally: the box, the
// selection, any cached assets inside a pending run. The session cannot
// be reused.
func (s *OverlaySession) Close() {
	s.tracker.Reset()
	s.pages.Clear()
	s.closed = true
}
