// Package enginetest provides an in-memory implementation of the engine
// contracts for tests. It records every draw call per page, supports
// per-operation failure injection, and grows the serialized byte buffer
// for every embedded asset so byte-length assertions against Save output
// are meaningful.
package enginetest

import (
	"bytes"
	"context"
	"fmt"
	"image/draw"
	"image/png"
	"sync"

	"github.com/wudi/pdfoverlay/coords"
	"github.com/wudi/pdfoverlay/engine"
	"github.com/wudi/pdfoverlay/viewport"
)

// PageSpec describes one page of the fixture document.
type PageSpec struct {
	Rotation      coords.Rotation
	Width, Height float64 // zero means US Letter (612x792)
}

// Engine implements engine.Renderer and engine.Mutator over an in-memory
// page list shared by both roles, the way a host application holds one
// document open in both its preview and its editor.
type Engine struct {
	mu    sync.Mutex
	pages []*Page

	// Failure injection, keyed by 1-indexed page number where relevant.
	FailLoad    error
	FailSave    error
	FailGetPage map[int]error
	FailDraw    map[int]error
	FailEmbed   error

	LoadCalls  int
	SaveCalls  int
	EmbedCalls int
}

// New builds an engine holding one page per spec.
func New(specs ...PageSpec) *Engine {
	e := &Engine{}
	for i, s := range specs {
		w, h := s.Width, s.Height
		if w == 0 {
			w = 612
		}
		if h == 0 {
			h = 792
		}
		e.pages = append(e.pages, &Page{
			number:   i + 1,
			rotation: s.Rotation,
			width:    w,
			height:   h,
		})
	}
	return e
}

// Page exposes the recorded state of the 1-indexed page for assertions.
func (e *Engine) Page(number int) *Page {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.pages[number-1]
}

func (e *Engine) PageCount(ctx context.Context) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.pages), nil
}

func (e *Engine) GetPage(ctx context.Context, pageNumber int) (engine.PageHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.FailGetPage[pageNumber]; err != nil {
		return nil, err
	}
	if pageNumber < 1 || pageNumber > len(e.pages) {
		return nil, fmt.Errorf("enginetest: page %d out of range [1,%d]", pageNumber, len(e.pages))
	}
	return &pageHandle{page: e.pages[pageNumber-1]}, nil
}

func (e *Engine) LoadDocument(ctx context.Context, data []byte) (engine.DocumentHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.LoadCalls++
	if e.FailLoad != nil {
		return nil, e.FailLoad
	}
	pages := make([]*Page, len(e.pages))
	copy(pages, e.pages)
	return &Document{eng: e, base: bytes.Clone(data), pages: pages}, nil
}

// Page is one in-memory page with its recorded mutations.
type Page struct {
	number   int
	rotation coords.Rotation
	width    float64
	height   float64

	Draws []DrawCall
	Texts []TextCall
}

// DrawCall records one DrawAsset invocation.
type DrawCall struct {
	AssetID string
	Rect    coords.Rect
}

// TextCall records one DrawText invocation.
type TextCall struct {
	Text string
	Opts engine.TextOptions
}

func (p *Page) Number() int                   { return p.number }
func (p *Page) PageRotation() coords.Rotation { return p.rotation }

type pageHandle struct{ page *Page }

func (h *pageHandle) Number() int               { return h.page.number }
func (h *pageHandle) Rotation() coords.Rotation { return h.page.rotation }
func (h *pageHandle) Size() (float64, float64)  { return h.page.width, h.page.height }

func (h *pageHandle) Viewport(scale float64) (viewport.Mapper, error) {
	return viewport.NewPageViewport(h.page.width, h.page.height, scale, h.page.rotation)
}

func (h *pageHandle) Render(ctx context.Context, vp viewport.Mapper, target draw.Image) error {
	return ctx.Err()
}

// Document implements engine.DocumentHandle.
type Document struct {
	eng    *Engine
	base   []byte
	pages  []*Page
	assets []*Asset
}

func (d *Document) PageCount() int { return len(d.pages) }

func (d *Document) Page(index int) (engine.MutablePage, error) {
	if index < 0 || index >= len(d.pages) {
		return nil, fmt.Errorf("enginetest: page index %d out of range [0,%d)", index, len(d.pages))
	}
	return &mutablePage{doc: d, page: d.pages[index]}, nil
}

func (d *Document) EmbedRasterAsset(ctx context.Context, data []byte) (engine.AssetHandle, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.eng.mu.Lock()
	defer d.eng.mu.Unlock()
	d.eng.EmbedCalls++
	if d.eng.FailEmbed != nil {
		return nil, d.eng.FailEmbed
	}
	a := &Asset{id: fmt.Sprintf("asset-%d", d.eng.EmbedCalls), data: bytes.Clone(data)}
	if cfg, err := png.DecodeConfig(bytes.NewReader(data)); err == nil {
		a.width, a.height = cfg.Width, cfg.Height
	}
	d.assets = append(d.assets, a)
	return a, nil
}

func (d *Document) AppendPageFrom(ctx context.Context, src engine.DocumentHandle, srcIndex int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	other, ok := src.(*Document)
	if !ok {
		return fmt.Errorf("enginetest: cannot copy pages from foreign document %T", src)
	}
	if srcIndex < 0 || srcIndex >= len(other.pages) {
		return fmt.Errorf("enginetest: source page index %d out of range", srcIndex)
	}
	sp := other.pages[srcIndex]
	cp := &Page{
		number:   len(d.pages) + 1,
		rotation: sp.rotation,
		width:    sp.width,
		height:   sp.height,
		Draws:    append([]DrawCall(nil), sp.Draws...),
		Texts:    append([]TextCall(nil), sp.Texts...),
	}
	d.pages = append(d.pages, cp)
	return nil
}

func (d *Document) RemovePage(index int) error {
	if index < 0 || index >= len(d.pages) {
		return fmt.Errorf("enginetest: page index %d out of range", index)
	}
	d.pages = append(d.pages[:index], d.pages[index+1:]...)
	d.renumber()
	return nil
}

func (d *Document) MovePage(from, to int) error {
	if from < 0 || from >= len(d.pages) || to < 0 || to >= len(d.pages) {
		return fmt.Errorf("enginetest: move %d->%d out of range", from, to)
	}
	p := d.pages[from]
	d.pages = append(d.pages[:from], d.pages[from+1:]...)
	d.pages = append(d.pages[:to], append([]*Page{p}, d.pages[to:]...)...)
	d.renumber()
	return nil
}

func (d *Document) renumber() {
	for i, p := range d.pages {
		p.number = i + 1
	}
}

func (d *Document) Save(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	d.eng.mu.Lock()
	defer d.eng.mu.Unlock()
	d.eng.SaveCalls++
	if d.eng.FailSave != nil {
		return nil, d.eng.FailSave
	}
	var buf bytes.Buffer
	buf.Write(d.base)
	for _, a := range d.assets {
		buf.Write(a.data)
	}
	for _, p := range d.pages {
		fmt.Fprintf(&buf, "\n%% page %d rotation %s size %gx%g", p.number, p.rotation, p.width, p.height)
		for _, dc := range p.Draws {
			fmt.Fprintf(&buf, "\n%% draw %s on page %d at %+v", dc.AssetID, p.number, dc.Rect)
		}
		for _, tc := range p.Texts {
			fmt.Fprintf(&buf, "\n%% text %q on page %d", tc.Text, p.number)
		}
	}
	return buf.Bytes(), nil
}

// Asset implements engine.AssetHandle.
type Asset struct {
	id            string
	data          []byte
	width, height int
}

func (a *Asset) ID() string            { return a.id }
func (a *Asset) PixelSize() (int, int) { return a.width, a.height }

type mutablePage struct {
	doc  *Document
	page *Page
}

func (m *mutablePage) DrawAsset(asset engine.AssetHandle, rect coords.Rect) error {
	m.doc.eng.mu.Lock()
	defer m.doc.eng.mu.Unlock()
	if err := m.doc.eng.FailDraw[m.page.number]; err != nil {
		return err
	}
	if rect.IsEmpty() {
		return fmt.Errorf("enginetest: draw rect %+v is empty", rect)
	}
	m.page.Draws = append(m.page.Draws, DrawCall{AssetID: asset.ID(), Rect: rect})
	return nil
}

func (m *mutablePage) DrawText(text string, opts engine.TextOptions) error {
	m.doc.eng.mu.Lock()
	defer m.doc.eng.mu.Unlock()
	if err := m.doc.eng.FailDraw[m.page.number]; err != nil {
		return err
	}
	m.page.Texts = append(m.page.Texts, TextCall{Text: text, Opts: opts})
	return nil
}

func (m *mutablePage) SetRotation(r coords.Rotation) error {
	m.doc.eng.mu.Lock()
	defer m.doc.eng.mu.Unlock()
	m.page.rotation = r
	return nil
}

func (m *mutablePage) Rotation() coords.Rotation {
	m.doc.eng.mu.Lock()
	defer m.doc.eng.mu.Unlock()
	return m.page.rotation
}
