package coords

import "math"

// Rect is an axis-aligned rectangle with non-negative dimensions. Like
// Point, the coordinate space is implicit from context.
type Rect struct {
	X, Y          float64
	Width, Height float64
}

// RectFromCorners returns the normalized rectangle spanned by two opposite
// corners, in either order. Width and height are never negative.
func RectFromCorners(a, b Point) Rect {
	x0 := math.Min(a.X, b.X)
	y0 := math.Min(a.Y, b.Y)
	return Rect{
		X:      x0,
		Y:      y0,
		Width:  math.Max(a.X, b.X) - x0,
		Height: math.Max(a.Y, b.Y) - y0,
	}
}

// BoundingBox returns the axis-aligned bounding box of the given points.
// It returns the zero Rect for an empty slice.
func BoundingBox(pts []Point) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, Width: maxX - minX, Height: maxY - minY}
}

// Corners returns the four corners in top-left, top-right, bottom-right,
// bottom-left order (for a y-down space).
func (r Rect) Corners() [4]Point {
	return [4]Point{
		{r.X, r.Y},
		{r.X + r.Width, r.Y},
		{r.X + r.Width, r.Y + r.Height},
		{r.X, r.Y + r.Height},
	}
}

// IsEmpty reports whether the rectangle has a non-positive dimension.
func (r Rect) IsEmpty() bool { return r.Width <= 0 || r.Height <= 0 }

// Scaled returns the rectangle with all four components multiplied by f.
func (r Rect) Scaled(f float64) Rect {
	return Rect{X: r.X * f, Y: r.Y * f, Width: r.Width * f, Height: r.Height * f}
}

// Translated returns the rectangle moved by (dx, dy).
func (r Rect) Translated(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, Width: r.Width, Height: r.Height}
}

// Contains reports whether p lies inside the rectangle (edges inclusive).
func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X <= r.X+r.Width && p.Y >= r.Y && p.Y <= r.Y+r.Height
}

// ClampedTo returns the rectangle translated the minimal distance so it
// lies entirely within bounds. Dimensions are preserved; a rectangle
// larger than bounds is pinned to the bounds origin.
func (r Rect) ClampedTo(bounds Rect) Rect {
	x := r.X
	y := r.Y
	if x+r.Width > bounds.X+bounds.Width {
		x = bounds.X + bounds.Width - r.Width
	}
	if y+r.Height > bounds.Y+bounds.Height {
		y = bounds.Y + bounds.Height - r.Height
	}
	if x < bounds.X {
		x = bounds.X
	}
	if y < bounds.Y {
		y = bounds.Y
	}
	return Rect{X: x, Y: y, Width: r.Width, Height: r.Height}
}

// ClampPoint returns p moved to the nearest location inside bounds.
func ClampPoint(p Point, bounds Rect) Point {
	return Point{
		X: math.Min(math.Max(p.X, bounds.X), bounds.X+bounds.Width),
		Y: math.Min(math.Max(p.Y, bounds.Y), bounds.Y+bounds.Height),
	}
}
