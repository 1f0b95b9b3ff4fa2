package engine

import "image/color"

// Color is a normalized RGB color with components in [0, 1]. It is the
// single color representation used past the UI boundary; hosts convert
// whatever shape their widgets produce into one of these exactly once.
type Color struct {
	R, G, B float64
}

// NewColor builds a Color, clamping each component into [0, 1].
func NewColor(r, g, b float64) Color {
	return Color{R: clamp01(r), G: clamp01(g), B: clamp01(b)}
}

// ColorFromBytes builds a Color from 8-bit components.
func ColorFromBytes(r, g, b uint8) Color {
	return Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// RGBA returns the color as a fully opaque image/color value.
func (c Color) RGBA() color.RGBA {
	return color.RGBA{
		R: uint8(clamp01(c.R)*255 + 0.5),
		G: uint8(clamp01(c.G)*255 + 0.5),
		B: uint8(clamp01(c.B)*255 + 0.5),
		A: 0xff,
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
