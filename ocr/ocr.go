// Package ocr derives searchable text from the raster assets the editor
// inserts: a stamped signature or pasted image gets alt text so the
// result stays accessible and findable. The contract is small and
// provider-agnostic; the tesseract subpackage supplies the default
// local provider.
package ocr

import (
	"context"
	"strings"
)

// ImageFormat identifies the content type of an OCR input image.
type ImageFormat string

const (
	ImageFormatPNG  ImageFormat = "image/png"
	ImageFormatJPEG ImageFormat = "image/jpeg"
)

// Input is a single encoded image submitted for recognition.
type Input struct {
	// ID is echoed back in the corresponding Result.
	ID string
	// Image is the encoded payload in the format given by Format.
	Image  []byte
	Format ImageFormat
	// DPI is the effective dots-per-inch; zero means unknown.
	DPI int
	// Languages lists trained-data hints such as "eng" or "deu".
	Languages []string
	// Metadata passes provider-specific knobs through without
	// hard-coding them into the API surface.
	Metadata map[string]string
}

// InputOption mutates an Input under construction.
type InputOption func(*Input)

// WithLanguages sets language hints on the input.
func WithLanguages(langs ...string) InputOption {
	return func(in *Input) { in.Languages = append([]string(nil), langs...) }
}

// WithDPI overrides the DPI value on the input.
func WithDPI(dpi int) InputOption {
	return func(in *Input) { in.DPI = dpi }
}

// WithMetadata sets provider-specific metadata for the input.
func WithMetadata(metadata map[string]string) InputOption {
	return func(in *Input) {
		if len(metadata) == 0 {
			in.Metadata = nil
			return
		}
		in.Metadata = make(map[string]string, len(metadata))
		for k, v := range metadata {
			in.Metadata[k] = v
		}
	}
}

// NewInput builds a PNG input for an asset the editor is about to
// embed.
func NewInput(id string, pngData []byte, opts ...InputOption) Input {
	in := Input{ID: id, Image: pngData, Format: ImageFormatPNG}
	for _, opt := range opts {
		opt(&in)
	}
	return in
}

// Result is the recognition output for one input.
type Result struct {
	// InputID mirrors the Input.ID that produced this result.
	InputID string
	// PlainText is the linearized recognized text.
	PlainText string
	// Language is the dominant language, if known.
	Language string
}

// Engine is the provider contract: one image in, one result out.
type Engine interface {
	Name() string
	Recognize(ctx context.Context, input Input) (Result, error)
}

// Noop recognizes nothing. It is the default when no provider is
// configured; alt-text derivation quietly yields empty strings.
type Noop struct{}

func (Noop) Name() string { return "noop" }

func (Noop) Recognize(_ context.Context, in Input) (Result, error) {
	return Result{InputID: in.ID}, nil
}

// AltTextMaxLen bounds derived alt text; recognized prose past it is cut
// at a word boundary.
const AltTextMaxLen = 120

// AltText runs recognition on an asset image and collapses the output
// into a single alt-text line.
func AltText(ctx context.Context, eng Engine, in Input) (string, error) {
	res, err := eng.Recognize(ctx, in)
	if err != nil {
		return "", err
	}
	text := strings.Join(strings.Fields(res.PlainText), " ")
	if len(text) <= AltTextMaxLen {
		return text, nil
	}
	cut := strings.LastIndex(text[:AltTextMaxLen], " ")
	if cut <= 0 {
		cut = AltTextMaxLen
	}
	return text[:cut], nil
}
