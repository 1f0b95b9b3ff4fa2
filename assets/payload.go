// Package assets prepares insertable overlay assets: it rasterizes text
// payloads into pre-rotated bitmaps, upscales and pre-rotates image
// payloads, and memoizes the prepared result per page rotation so a batch
// touching many pages pays the preparation cost once per distinct
// rotation.
package assets

import (
	"context"
	"errors"
	"fmt"

	"github.com/wudi/pdfoverlay/coords"
	"github.com/wudi/pdfoverlay/engine"
)

// Kind discriminates the payload variants.
type Kind int

const (
	KindImage Kind = iota
	KindSignature
	KindText
)

func (k Kind) String() string {
	switch k {
	case KindImage:
		return "image"
	case KindSignature:
		return "signature"
	case KindText:
		return "text"
	}
	return "unknown"
}

// TextStyle describes a text payload.
type TextStyle struct {
	Text  string
	Size  float64 // font size in document points
	Color engine.Color

	// FontData optionally carries a TTF the text is rendered with. When
	// empty the bundled Go fonts are used.
	FontData []byte

	// Markdown enables inline **bold** and *italic* emphasis.
	Markdown bool
}

// Payload is one logical insertion, immutable once a drawing session
// starts. Image and Signature carry encoded raster bytes; Text carries a
// string plus style.
type Payload struct {
	Kind Kind

	// Image holds the encoded source raster (PNG or JPEG) for KindImage
	// and KindSignature.
	Image []byte

	// Text holds the text content and style for KindText.
	Text TextStyle

	// PreviewURL optionally points at a host-side preview of the asset.
	PreviewURL string

	// AltText optionally carries searchable text describing a raster
	// payload, e.g. derived via OCR.
	AltText string
}

// ErrEmptyPayload is returned when a payload carries no content.
var ErrEmptyPayload = errors.New("assets: payload has no content")

// Validate checks the payload carries content appropriate for its kind.
func (p Payload) Validate() error {
	switch p.Kind {
	case KindImage, KindSignature:
		if len(p.Image) == 0 {
			return ErrEmptyPayload
		}
	case KindText:
		if p.Text.Text == "" {
			return ErrEmptyPayload
		}
		if p.Text.Size <= 0 {
			return fmt.Errorf("assets: text size %g is not positive", p.Text.Size)
		}
	default:
		return fmt.Errorf("assets: unknown payload kind %d", p.Kind)
	}
	return nil
}

// Prepare produces the encoded PNG for this payload, pre-rotated to
// compensate for the given page rotation. This is the expensive
// per-rotation step the RotationAssetCache exists for.
func (p Payload) Prepare(ctx context.Context, rotation coords.Rotation) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	switch p.Kind {
	case KindText:
		return RenderText(p.Text, rotation)
	default:
		return PrepareImage(p.Image, rotation)
	}
}
