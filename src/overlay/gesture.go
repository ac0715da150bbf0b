package overlay

import "screen-capture-tool/src/capture"

// MinSelectionSpan is the smallest selection edge, in pixels, that still
// counts as intentional. Anything below this on either axis is treated as
// a slip of the mouse and discarded.
const MinSelectionSpan = 10

// Gesture tracks one press-drag-release selection in screen coordinates.
// It is pure state so the selection rules can be tested without a window
// system; the platform overlays feed it raw mouse events.
type Gesture struct {
	tracking       bool
	x1, y1, x2, y2 int
}

// Press anchors the selection and starts tracking.
func (g *Gesture) Press(x, y int) {
	g.tracking = true
	g.x1, g.y1 = x, y
	g.x2, g.y2 = x, y
}

// Drag moves the floating corner. Ignored unless a press is being tracked.
func (g *Gesture) Drag(x, y int) {
	if !g.tracking {
		return
	}
	g.x2, g.y2 = x, y
}

// Release ends the gesture at the given point. ok is false when nothing was
// being tracked or the selection is too small to mean anything; in both
// cases the gesture is over and the region is undefined.
func (g *Gesture) Release(x, y int) (region capture.Region, ok bool) {
	if !g.tracking {
		return capture.Region{}, false
	}
	g.tracking = false
	g.x2, g.y2 = x, y

	region, err := capture.RegionFromPoints(g.x1, g.y1, g.x2, g.y2)
	if err != nil {
		return capture.Region{}, false
	}
	if region.Width < MinSelectionSpan || region.Height < MinSelectionSpan {
		return capture.Region{}, false
	}
	return region, true
}

// Cancel abandons the gesture in progress, if any.
func (g *Gesture) Cancel() {
	g.tracking = false
}

// Tracking reports whether a press is currently being dragged.
func (g *Gesture) Tracking() bool {
	return g.tracking
}

// Bounds returns the normalized corners of the rubber band for painting.
func (g *Gesture) Bounds() (left, top, right, bottom int) {
	left, right = g.x1, g.x2
	if right < left {
		left, right = right, left
	}
	top, bottom = g.y1, g.y2
	if bottom < top {
		top, bottom = bottom, top
	}
	return left, top, right, bottom
}
