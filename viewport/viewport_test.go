package viewport

import (
	"testing"

	"gonum.org/v1/gonum/floats/scalar"

	"github.com/wudi/pdfoverlay/coords"
)

const tol = 1e-9

func near(a, b float64) bool { return scalar.EqualWithinAbs(a, b, tol) }

func TestSurfaceSizePerRotation(t *testing.T) {
	cases := []struct {
		rotation coords.Rotation
		w, h     float64
	}{
		{coords.Rotate0, 1224, 1584},
		{coords.Rotate90, 1584, 1224},
		{coords.Rotate180, 1224, 1584},
		{coords.Rotate270, 1584, 1224},
	}
	for _, c := range cases {
		v, err := NewPageViewport(612, 792, 2, c.rotation)
		if err != nil {
			t.Fatalf("rotation %v: %v", c.rotation, err)
		}
		w, h := v.SurfaceSize()
		if !near(w, c.w) || !near(h, c.h) {
			t.Fatalf("rotation %v: surface %gx%g, want %gx%g", c.rotation, w, h, c.w, c.h)
		}
	}
}

// The surface origin is the top-left of the rendered bitmap; the document
// origin is the bottom-left of the unrotated page. These fixed points pin
// the orientation of each rotation.
func TestKnownMappings(t *testing.T) {
	const w, h, s = 600, 800, 1.0
	cases := []struct {
		rotation   coords.Rotation
		sx, sy     float64
		docX, docY float64
	}{
		{coords.Rotate0, 0, 0, 0, h},
		{coords.Rotate0, w, h, w, 0},
		{coords.Rotate90, 0, 0, 0, 0},
		{coords.Rotate90, h, w, w, h},
		{coords.Rotate180, 0, 0, w, 0},
		{coords.Rotate180, w, h, 0, h},
		{coords.Rotate270, 0, 0, w, h},
		{coords.Rotate270, h, w, 0, 0},
	}
	for _, c := range cases {
		v, err := NewPageViewport(w, h, s, c.rotation)
		if err != nil {
			t.Fatalf("rotation %v: %v", c.rotation, err)
		}
		p := v.ToDocumentPoint(c.sx, c.sy)
		if !near(p.X, c.docX) || !near(p.Y, c.docY) {
			t.Fatalf("rotation %v: surface (%g,%g) -> %+v, want (%g,%g)",
				c.rotation, c.sx, c.sy, p, c.docX, c.docY)
		}
	}
}

func TestRoundTripAllRotations(t *testing.T) {
	rotations := []coords.Rotation{coords.Rotate0, coords.Rotate90, coords.Rotate180, coords.Rotate270}
	scales := []float64{0.25, 1, 1.5, 4}
	points := []coords.Point{{X: 0, Y: 0}, {X: 50, Y: 50}, {X: 123.456, Y: 654.321}, {X: 600, Y: 800}}

	for _, r := range rotations {
		for _, s := range scales {
			v, err := NewPageViewport(600, 800, s, r)
			if err != nil {
				t.Fatalf("rotation %v scale %g: %v", r, s, err)
			}
			for _, p := range points {
				sx, sy := v.ToSurfacePoint(p)
				back := v.ToDocumentPoint(sx, sy)
				if !near(back.X, p.X) || !near(back.Y, p.Y) {
					t.Fatalf("rotation %v scale %g: %+v -> (%g,%g) -> %+v",
						r, s, p, sx, sy, back)
				}
			}
		}
	}
}

func TestInvalidArguments(t *testing.T) {
	if _, err := NewPageViewport(0, 800, 1, coords.Rotate0); err == nil {
		t.Fatal("expected error for zero page width")
	}
	if _, err := NewPageViewport(600, 800, 0, coords.Rotate0); err == nil {
		t.Fatal("expected error for zero scale")
	}
	if _, err := NewPageViewport(600, 800, 1, coords.Rotation(45)); err == nil {
		t.Fatal("expected error for non-canonical rotation")
	}
}
