package overlay

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/wudi/pdfoverlay/coords"
	"github.com/wudi/pdfoverlay/viewport"
)

const tol = 1e-9

func mustViewport(t *testing.T, w, h, scale float64, r coords.Rotation) viewport.Mapper {
	t.Helper()
	vp, err := viewport.NewPageViewport(w, h, scale, r)
	if err != nil {
		t.Fatalf("viewport: %v", err)
	}
	return vp
}

func rectNear(a, b coords.Rect) bool {
	return scalar.EqualWithinAbs(a.X, b.X, tol) &&
		scalar.EqualWithinAbs(a.Y, b.Y, tol) &&
		scalar.EqualWithinAbs(a.Width, b.Width, tol) &&
		scalar.EqualWithinAbs(a.Height, b.Height, tol)
}

func TestDisplayToNativeRatio(t *testing.T) {
	ratio, err := DisplayToNativeRatio(500, 1000)
	if err != nil {
		t.Fatalf("ratio: %v", err)
	}
	if ratio != 2 {
		t.Fatalf("ratio = %g, want 2", ratio)
	}

	if _, err := DisplayToNativeRatio(0, 1000); !errors.Is(err, ErrSurfaceNotLaidOut) {
		t.Fatalf("zero displayed width: %v, want ErrSurfaceNotLaidOut", err)
	}
	if _, err := DisplayToNativeRatio(500, 0); err == nil {
		t.Fatal("zero native width must error")
	}
}

func TestToDocumentRectUpright(t *testing.T) {
	// 600x800pt page rendered 1:1; displayed at half resolution.
	vp := mustViewport(t, 600, 800, 1, coords.Rotate0)
	got := ToDocumentRect(coords.Rect{X: 50, Y: 50, Width: 100, Height: 40}, 2, vp)

	// Native rect {100,100,200,80}; document y counts up from the
	// bottom of the 800pt page.
	want := coords.Rect{X: 100, Y: 800 - 100 - 80, Width: 200, Height: 80}
	if !rectNear(got, want) {
		t.Fatalf("rect = %+v, want %+v", got, want)
	}
}

// A native rectangle near the top-left of a 90°-rotated render must land
// with its aspect swapped relative to the upright case.
func TestAspectSwapsUnderQuarterRotations(t *testing.T) {
	native := coords.Rect{X: 0, Y: 0, Width: 10, Height: 20}

	upright := ToDocumentRect(native, 1, mustViewport(t, 600, 800, 1, coords.Rotate0))
	if !scalar.EqualWithinAbs(upright.Width, 10, tol) || !scalar.EqualWithinAbs(upright.Height, 20, tol) {
		t.Fatalf("upright rect = %+v", upright)
	}

	for _, r := range []coords.Rotation{coords.Rotate90, coords.Rotate270} {
		rotated := ToDocumentRect(native, 1, mustViewport(t, 600, 800, 1, r))
		if !scalar.EqualWithinAbs(rotated.Width, 20, tol) || !scalar.EqualWithinAbs(rotated.Height, 10, tol) {
			t.Fatalf("%v rect = %+v, want 20x10", r, rotated)
		}
	}
}

// Transforming to document space and back through the viewport must
// reproduce the native rectangle for every rotation and scale.
func TestRotationRoundTrip(t *testing.T) {
	rotations := []coords.Rotation{coords.Rotate0, coords.Rotate90, coords.Rotate180, coords.Rotate270}
	scales := []float64{0.5, 1, 2.25}
	native := coords.Rect{X: 37, Y: 91, Width: 120, Height: 55}

	for _, r := range rotations {
		for _, s := range scales {
			vp := mustViewport(t, 612, 792, s, r)
			doc := ToDocumentRect(native, 1, vp)

			// Map the document rect corners back onto the surface and
			// take their bounding box.
			var back []coords.Point
			for _, c := range doc.Corners() {
				x, y := vp.ToSurfacePoint(coords.Point{X: c.X, Y: c.Y})
				back = append(back, coords.Point{X: x, Y: y})
			}
			got := coords.BoundingBox(back)
			if !scalar.EqualWithinAbs(got.X, native.X, 1e-3) ||
				!scalar.EqualWithinAbs(got.Y, native.Y, 1e-3) ||
				!scalar.EqualWithinAbs(got.Width, native.Width, 1e-3) ||
				!scalar.EqualWithinAbs(got.Height, native.Height, 1e-3) {
				t.Fatalf("rotation %v scale %g: round trip %+v -> %+v -> %+v", r, s, native, doc, got)
			}
		}
	}
}

func TestToDocumentRectAllCornersNotJustTwo(t *testing.T) {
	// Under 180° the top-left surface corner maps to the bottom-right
	// document corner; a two-corner implementation that copies corner
	// order produces a negative-extent rectangle.
	vp := mustViewport(t, 600, 800, 1, coords.Rotate180)
	got := ToDocumentRect(coords.Rect{X: 10, Y: 10, Width: 30, Height: 40}, 1, vp)
	if got.Width <= 0 || got.Height <= 0 {
		t.Fatalf("non-positive extents: %+v", got)
	}
	want := coords.Rect{X: 600 - 40, Y: 10, Width: 30, Height: 40}
	if !rectNear(got, want) {
		t.Fatalf("rect = %+v, want %+v", got, want)
	}
}

func TestDescriptorRatio(t *testing.T) {
	d := PageRenderDescriptor{DisplayedWidth: 400, NativeWidth: 800}
	ratio, err := d.Ratio()
	if err != nil || ratio != 2 {
		t.Fatalf("ratio = %g, %v", ratio, err)
	}
	d.DisplayedWidth = 0
	if _, err := d.Ratio(); !errors.Is(err, ErrSurfaceNotLaidOut) {
		t.Fatalf("err = %v", err)
	}
}
