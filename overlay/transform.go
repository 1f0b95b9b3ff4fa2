package overlay

import (
	"errors"

	"github.com/wudi/pdfoverlay/coords"
	"github.com/wudi/pdfoverlay/viewport"
)

// ErrSurfaceNotLaidOut is returned when the displayed surface width is
// zero, i.e. a transform was requested before layout. Callers defer the
// transform until the surface has a size; this layer never divides by
// zero.
var ErrSurfaceNotLaidOut = errors.New("overlay: displayed surface width is zero")

// DisplayToNativeRatio computes the single uniform scale between the
// displayed (CSS pixel) width of a rendered surface and its native pixel
// width. The surface is never stretched non-uniformly, so one ratio
// covers both axes, and the ratio is a property of the render pipeline:
// measured once on the reference page, it holds for every page rendered
// in the same session.
func DisplayToNativeRatio(displayedWidth, nativeWidth float64) (float64, error) {
	if displayedWidth <= 0 {
		return 0, ErrSurfaceNotLaidOut
	}
	if nativeWidth <= 0 {
		return 0, errors.New("overlay: native surface width is zero")
	}
	return nativeWidth / displayedWidth, nil
}

// ToDocumentRect converts a rectangle in displayed surface pixels into
// document points for the page behind vp, given the display-to-native
// ratio from DisplayToNativeRatio.
//
// The conversion runs in three fixed stages:
//
//  1. Scale the rectangle by the ratio to land on the pixel grid the
//     page was rendered into, at whatever rotation that render baked in.
//  2. Map all four corners through the viewport. Rotation can swap which
//     surface axis corresponds to which document axis, so mapping only
//     two opposite corners can produce an inverted or mis-axised result.
//  3. Take the axis-aligned bounding box of the mapped corners.
func ToDocumentRect(box coords.Rect, ratio float64, vp viewport.Mapper) coords.Rect {
	native := box.Scaled(ratio)

	corners := native.Corners()
	mapped := make([]coords.Point, 0, len(corners))
	for _, c := range corners {
		mapped = append(mapped, vp.ToDocumentPoint(c.X, c.Y))
	}
	return coords.BoundingBox(mapped)
}
