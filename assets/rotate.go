package assets

import (
	"image"

	"golang.org/x/image/draw"
	"golang.org/x/image/math/f64"

	"github.com/wudi/pdfoverlay/coords"
)

// compensate pre-rotates src so that, once the bitmap is placed unrotated
// onto a page whose render bakes in the given rotation, it reads upright
// to the viewer. 90° maps the source onto the bottom-left of the swapped
// canvas (a −90° turn), 180° onto the bottom-right (a half turn), 270°
// onto the top-right (a +90° turn).
func compensate(src image.Image, rotation coords.Rotation) *image.NRGBA {
	b := src.Bounds()
	w := float64(b.Dx())
	h := float64(b.Dy())

	var dst *image.NRGBA
	var s2d f64.Aff3
	switch rotation {
	case coords.Rotate90:
		dst = image.NewNRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
		s2d = f64.Aff3{0, 1, 0, -1, 0, w}
	case coords.Rotate180:
		dst = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		s2d = f64.Aff3{-1, 0, w, 0, -1, h}
	case coords.Rotate270:
		dst = image.NewNRGBA(image.Rect(0, 0, b.Dy(), b.Dx()))
		s2d = f64.Aff3{0, -1, h, 1, 0, 0}
	default:
		dst = image.NewNRGBA(image.Rect(0, 0, b.Dx(), b.Dy()))
		draw.Draw(dst, dst.Bounds(), src, b.Min, draw.Src)
		return dst
	}

	draw.NearestNeighbor.Transform(dst, s2d, src, b, draw.Src, nil)
	return dst
}
