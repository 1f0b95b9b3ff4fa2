package assets

import (
	"bytes"
	"fmt"
	"image"
	_ "image/jpeg" // register source decoders
	"image/png"

	"golang.org/x/image/draw"

	"github.com/wudi/pdfoverlay/coords"
)

// ImageUpscaleFactor is the supersampling applied to raster payloads so
// the embedded asset stays crisp when the viewer zooms in.
const ImageUpscaleFactor = 3

// PrepareImage decodes a PNG or JPEG payload, upscales it by
// ImageUpscaleFactor with a Catmull-Rom kernel, pre-rotates it to
// compensate for the target page rotation, and re-encodes it as PNG with
// alpha preserved.
func PrepareImage(data []byte, rotation coords.Rotation) ([]byte, error) {
	src, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("assets: decode image payload: %w", err)
	}

	b := src.Bounds()
	scaled := image.NewNRGBA(image.Rect(0, 0, b.Dx()*ImageUpscaleFactor, b.Dy()*ImageUpscaleFactor))
	draw.CatmullRom.Scale(scaled, scaled.Bounds(), src, b, draw.Src, nil)

	out := compensate(scaled, rotation)

	var buf bytes.Buffer
	if err := png.Encode(&buf, out); err != nil {
		return nil, fmt.Errorf("assets: encode prepared image: %w", err)
	}
	return buf.Bytes(), nil
}
