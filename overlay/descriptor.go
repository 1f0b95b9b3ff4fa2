package overlay

import (
	"github.com/wudi/pdfoverlay/coords"
	"github.com/wudi/pdfoverlay/viewport"
)

// PageRenderDescriptor captures everything the pipeline needs to know
// about one rendered page at the moment an overlay session opens. The
// reference page gets one up front; other pages in a batch get theirs
// lazily during the insertion loop, because rotation may differ page to
// page.
type PageRenderDescriptor struct {
	PageNumber int
	Rotation   coords.Rotation

	// Native dimensions of the rendered bitmap in device pixels.
	NativeWidth  float64
	NativeHeight float64

	// Displayed dimensions of the surface in CSS pixels.
	DisplayedWidth  float64
	DisplayedHeight float64

	Viewport viewport.Mapper
}

// Ratio returns the display-to-native scale for this surface.
func (d PageRenderDescriptor) Ratio() (float64, error) {
	return DisplayToNativeRatio(d.DisplayedWidth, d.NativeWidth)
}
