package coords

import "fmt"

// Rotation is a canonical page rotation in degrees, clockwise when the
// page is viewed on screen. Only the four values a PDF page dictionary
// permits are representable.
type Rotation int

const (
	Rotate0   Rotation = 0
	Rotate90  Rotation = 90
	Rotate180 Rotation = 180
	Rotate270 Rotation = 270
)

// NormalizeRotation maps an arbitrary degree value onto the canonical
// range. Values that are not a multiple of 90 are rejected.
func NormalizeRotation(degrees int) (Rotation, error) {
	if degrees%90 != 0 {
		return 0, fmt.Errorf("coords: rotation %d is not a multiple of 90", degrees)
	}
	d := degrees % 360
	if d < 0 {
		d += 360
	}
	return Rotation(d), nil
}

// Swapped reports whether the rotation exchanges the horizontal and
// vertical axes of the rendered surface.
func (r Rotation) Swapped() bool { return r == Rotate90 || r == Rotate270 }

func (r Rotation) String() string { return fmt.Sprintf("%d°", int(r)) }
