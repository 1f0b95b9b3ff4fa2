// Package viewport maps between the pixel grid a page was rendered into
// and the document point space of that page. The mapping bakes together
// render scale, page rotation and the y-axis flip between the y-down
// surface and the y-up document space.
package viewport

import (
	"fmt"

	"github.com/wudi/pdfoverlay/coords"
)

// Mapper converts between native surface pixels and document points for a
// single rendered page. Implementations encapsulate scale and rotation;
// callers never apply rotation math themselves.
type Mapper interface {
	// ToDocumentPoint maps a native-surface pixel location (y-down,
	// origin top-left) to document points (y-up, origin bottom-left).
	ToDocumentPoint(x, y float64) coords.Point

	// ToSurfacePoint is the inverse of ToDocumentPoint.
	ToSurfacePoint(p coords.Point) (x, y float64)

	// SurfaceSize returns the native pixel dimensions of the rendered
	// surface. Axes are swapped relative to the page size when the
	// rotation is 90° or 270°.
	SurfaceSize() (width, height float64)
}

// PageViewport is the concrete Mapper for a page of known size rendered
// at a uniform scale under one of the four canonical rotations.
type PageViewport struct {
	pageWidth  float64
	pageHeight float64
	scale      float64
	rotation   coords.Rotation

	surfaceW float64
	surfaceH float64
	forward  coords.Matrix // document -> surface
	inverse  coords.Matrix // surface -> document
}

// NewPageViewport builds the viewport for a page of pageWidth×pageHeight
// document points rendered at the given scale and rotation.
func NewPageViewport(pageWidth, pageHeight, scale float64, rotation coords.Rotation) (*PageViewport, error) {
	if pageWidth <= 0 || pageHeight <= 0 {
		return nil, fmt.Errorf("viewport: page size %gx%g is not positive", pageWidth, pageHeight)
	}
	if scale <= 0 {
		return nil, fmt.Errorf("viewport: scale %g is not positive", scale)
	}

	sw := pageWidth * scale
	sh := pageHeight * scale
	if rotation.Swapped() {
		sw, sh = sh, sw
	}

	// Forward transform per rotation, document points (y-up) to surface
	// pixels (y-down). W and H are the unrotated page dimensions.
	var forward coords.Matrix
	s := scale
	switch rotation {
	case coords.Rotate0:
		// sx = s*x ; sy = s*(H - y)
		forward = coords.Matrix{s, 0, 0, -s, 0, s * pageHeight}
	case coords.Rotate90:
		// sx = s*y ; sy = s*x
		forward = coords.Matrix{0, s, s, 0, 0, 0}
	case coords.Rotate180:
		// sx = s*(W - x) ; sy = s*y
		forward = coords.Matrix{-s, 0, 0, s, s * pageWidth, 0}
	case coords.Rotate270:
		// sx = s*(H - y) ; sy = s*(W - x)
		forward = coords.Matrix{0, -s, -s, 0, s * pageHeight, s * pageWidth}
	default:
		return nil, fmt.Errorf("viewport: unsupported rotation %v", rotation)
	}

	inverse, err := forward.Inverse()
	if err != nil {
		return nil, fmt.Errorf("viewport: invert transform: %w", err)
	}

	return &PageViewport{
		pageWidth:  pageWidth,
		pageHeight: pageHeight,
		scale:      scale,
		rotation:   rotation,
		surfaceW:   sw,
		surfaceH:   sh,
		forward:    forward,
		inverse:    inverse,
	}, nil
}

func (v *PageViewport) ToDocumentPoint(x, y float64) coords.Point {
	return v.inverse.Transform(coords.Point{X: x, Y: y})
}

func (v *PageViewport) ToSurfacePoint(p coords.Point) (float64, float64) {
	sp := v.forward.Transform(p)
	return sp.X, sp.Y
}

func (v *PageViewport) SurfaceSize() (float64, float64) { return v.surfaceW, v.surfaceH }

// Scale returns the render scale the viewport was built with.
func (v *PageViewport) Scale() float64 { return v.scale }

// Rotation returns the rotation baked into the rendered surface.
func (v *PageViewport) Rotation() coords.Rotation { return v.rotation }

// PageSize returns the unrotated page dimensions in document points.
func (v *PageViewport) PageSize() (width, height float64) { return v.pageWidth, v.pageHeight }
