// Package engine declares the contracts the overlay core consumes from
// the two external document engines: the page rendering engine and the
// document mutation/serialization engine. The core never reaches past
// these interfaces; parsing, font shaping and byte serialization are the
// engines' concern.
package engine

import (
	"context"
	"image/draw"

	"github.com/wudi/pdfoverlay/coords"
	"github.com/wudi/pdfoverlay/viewport"
)

// Renderer is the page rendering engine. Page numbers are 1-indexed, the
// way they are presented to the user.
type Renderer interface {
	PageCount(ctx context.Context) (int, error)
	GetPage(ctx context.Context, pageNumber int) (PageHandle, error)
}

// PageHandle is a single page as the rendering engine sees it.
type PageHandle interface {
	Number() int
	Rotation() coords.Rotation

	// Size returns the unrotated page dimensions in document points.
	Size() (width, height float64)

	// Viewport returns the mapper for this page rendered at the given
	// scale, with the page's own rotation baked in.
	Viewport(scale float64) (viewport.Mapper, error)

	// Render rasterizes the page through the given viewport into target.
	Render(ctx context.Context, vp viewport.Mapper, target draw.Image) error
}

// Mutator is the document mutation/serialization engine.
type Mutator interface {
	LoadDocument(ctx context.Context, data []byte) (DocumentHandle, error)
}

// DocumentHandle is one loaded document. It is single-writer: exactly one
// goroutine may mutate it between LoadDocument and Save.
type DocumentHandle interface {
	PageCount() int

	// Page returns the mutable page at the given 0-based index.
	Page(index int) (MutablePage, error)

	// EmbedRasterAsset embeds an encoded raster image (PNG with alpha)
	// into the document once and returns a reusable handle.
	EmbedRasterAsset(ctx context.Context, data []byte) (AssetHandle, error)

	// AppendPageFrom copies the page at srcIndex of src onto the end of
	// this document.
	AppendPageFrom(ctx context.Context, src DocumentHandle, srcIndex int) error

	// RemovePage deletes the page at the given 0-based index.
	RemovePage(index int) error

	// MovePage relocates the page at from so it ends up at index to.
	MovePage(from, to int) error

	// Save serializes the document and returns a fresh byte buffer.
	Save(ctx context.Context) ([]byte, error)
}

// AssetHandle is an opaque reference to an embedded raster asset.
type AssetHandle interface {
	ID() string

	// PixelSize returns the raster dimensions of the embedded image.
	PixelSize() (width, height int)
}

// MutablePage supports drawing onto one page in document-space points.
type MutablePage interface {
	DrawAsset(asset AssetHandle, rect coords.Rect) error
	DrawText(text string, opts TextOptions) error
	SetRotation(r coords.Rotation) error
	Rotation() coords.Rotation
}

// TextOptions positions a direct text draw in document points.
type TextOptions struct {
	X, Y     float64
	Size     float64
	Color    Color
	MaxWidth float64
}
