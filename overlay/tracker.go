// Package overlay implements the interactive insertion pipeline: the
// pointer-gesture rectangle tracker, the displayed-to-document coordinate
// transform, and the session that ties a drawn rectangle to a batch
// insertion across selected pages.
package overlay

import (
	"github.com/wudi/pdfoverlay/coords"
)

// TrackerState is the gesture state of a BoxTracker.
type TrackerState int

const (
	StateIdle TrackerState = iota
	StateDrawing
	StateDragging
	StateResizing
)

func (s TrackerState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateDrawing:
		return "drawing"
	case StateDragging:
		return "dragging"
	case StateResizing:
		return "resizing"
	}
	return "unknown"
}

// Corner identifies one of the four resize handles.
type Corner int

const (
	CornerTopLeft Corner = iota
	CornerTopRight
	CornerBottomRight
	CornerBottomLeft
)

// Default interaction thresholds in displayed surface pixels.
const (
	DefaultMinBoxSize   = 10
	DefaultHandleRadius = 10
)

// TrackerOptions tunes a BoxTracker.
type TrackerOptions struct {
	// MinBoxSize is the smallest width/height a rectangle may have to be
	// committed on pointer-up. Zero means DefaultMinBoxSize.
	MinBoxSize float64

	// HandleRadius is the hit radius around each corner handle that
	// starts a resize. Zero means DefaultHandleRadius.
	HandleRadius float64

	// OnChange, when set, is invoked once per pointer-move while a
	// gesture is active, with the current rectangle. Hosts use it to
	// repaint the selection visuals.
	OnChange func(coords.Rect)
}

// BoxTracker turns pointer events over a fixed drawing surface into a
// single rectangle. All coordinates are displayed surface pixels with the
// origin at the surface's top-left corner. Exactly one pointer gesture is
// active at a time, so the tracker needs no locking.
type BoxTracker struct {
	bounds       coords.Rect
	minBoxSize   float64
	handleRadius float64
	onChange     func(coords.Rect)

	state     TrackerState
	hasBox    bool
	box       coords.Rect
	committed bool

	anchor     coords.Point // fixed corner while drawing or resizing
	grabOffset coords.Point // pointer offset from box origin while dragging
}

// NewBoxTracker creates a tracker for a surface of the given displayed
// size in CSS pixels.
func NewBoxTracker(surfaceWidth, surfaceHeight float64, opts TrackerOptions) *BoxTracker {
	min := opts.MinBoxSize
	if min <= 0 {
		min = DefaultMinBoxSize
	}
	radius := opts.HandleRadius
	if radius <= 0 {
		radius = DefaultHandleRadius
	}
	return &BoxTracker{
		bounds:       coords.Rect{Width: surfaceWidth, Height: surfaceHeight},
		minBoxSize:   min,
		handleRadius: radius,
		onChange:     opts.OnChange,
	}
}

// State returns the current gesture state.
func (t *BoxTracker) State() TrackerState { return t.state }

// Box returns the current rectangle and whether one exists.
func (t *BoxTracker) Box() (coords.Rect, bool) { return t.box, t.hasBox }

// Committed reports whether the current rectangle passed the minimum-size
// gate on pointer-up. This is the "insert enabled" signal.
func (t *BoxTracker) Committed() bool { return t.committed }

// Handles returns the four corner handle positions of the current box, in
// CornerTopLeft..CornerBottomLeft order.
func (t *BoxTracker) Handles() [4]coords.Point {
	c := t.box.Corners()
	return [4]coords.Point{c[0], c[1], c[2], c[3]}
}

// Reset discards the rectangle and any in-flight gesture.
func (t *BoxTracker) Reset() {
	t.state = StateIdle
	t.hasBox = false
	t.box = coords.Rect{}
	t.committed = false
}

// PointerDown begins a gesture. The transition depends on where the
// pointer lands relative to the existing box: on a corner handle starts a
// resize, strictly inside the body starts a drag, anywhere else starts
// drawing a fresh rectangle anchored at the down-point.
func (t *BoxTracker) PointerDown(x, y float64) {
	if t.state != StateIdle {
		return
	}
	p := coords.ClampPoint(coords.Point{X: x, Y: y}, t.bounds)
	t.committed = false

	if t.hasBox {
		if corner, ok := t.hitHandle(p); ok {
			t.state = StateResizing
			t.anchor = t.oppositeCorner(corner)
			return
		}
		if t.box.Contains(p) {
			t.state = StateDragging
			t.grabOffset = coords.Point{X: p.X - t.box.X, Y: p.Y - t.box.Y}
			return
		}
	}

	t.state = StateDrawing
	t.anchor = p
	t.hasBox = true
	t.box = coords.Rect{X: p.X, Y: p.Y}
}

// PointerMove advances the active gesture. The rectangle never has
// negative dimensions: drawing and resizing re-anchor on the fixed
// opposite corner, dragging translates within bounds.
func (t *BoxTracker) PointerMove(x, y float64) {
	p := coords.ClampPoint(coords.Point{X: x, Y: y}, t.bounds)

	switch t.state {
	case StateDrawing:
		t.box = coords.RectFromCorners(t.anchor, p)
	case StateResizing:
		t.box = coords.RectFromCorners(t.anchor, t.withMinExtent(p))
	case StateDragging:
		moved := coords.Rect{
			X:      p.X - t.grabOffset.X,
			Y:      p.Y - t.grabOffset.Y,
			Width:  t.box.Width,
			Height: t.box.Height,
		}
		t.box = moved.ClampedTo(t.bounds)
	default:
		return
	}

	if t.onChange != nil {
		t.onChange(t.box)
	}
}

// PointerUp ends the gesture. A rectangle below the minimum size is
// discarded; otherwise it is committed and returned.
func (t *BoxTracker) PointerUp() (coords.Rect, bool) {
	if t.state == StateIdle {
		return t.box, t.committed
	}
	t.state = StateIdle

	if t.box.Width < t.minBoxSize || t.box.Height < t.minBoxSize {
		t.hasBox = false
		t.box = coords.Rect{}
		t.committed = false
		return coords.Rect{}, false
	}
	t.committed = true
	return t.box, true
}

// withMinExtent pushes the moving corner far enough from the anchor that
// a resize never collapses the rectangle below the minimum size.
func (t *BoxTracker) withMinExtent(p coords.Point) coords.Point {
	dx := p.X - t.anchor.X
	dy := p.Y - t.anchor.Y
	if dx >= 0 && dx < t.minBoxSize {
		dx = t.minBoxSize
	} else if dx < 0 && dx > -t.minBoxSize {
		dx = -t.minBoxSize
	}
	if dy >= 0 && dy < t.minBoxSize {
		dy = t.minBoxSize
	} else if dy < 0 && dy > -t.minBoxSize {
		dy = -t.minBoxSize
	}
	return coords.Point{X: t.anchor.X + dx, Y: t.anchor.Y + dy}
}

func (t *BoxTracker) hitHandle(p coords.Point) (Corner, bool) {
	corners := t.box.Corners()
	for i, c := range corners {
		dx := p.X - c.X
		dy := p.Y - c.Y
		if dx*dx+dy*dy <= t.handleRadius*t.handleRadius {
			return Corner(i), true
		}
	}
	return 0, false
}

func (t *BoxTracker) oppositeCorner(c Corner) coords.Point {
	corners := t.box.Corners()
	return corners[(int(c)+2)%4]
}
