package capture

import (
	"errors"
	"fmt"
	"image"
)

// ErrInvalidRegion is returned when a region has a negative origin or a
// non-positive width or height.
var ErrInvalidRegion = errors.New("invalid region")

// Region is a rectangular area of the virtual screen in pixel coordinates.
// X and Y locate the top-left corner. User-supplied regions go through
// NewRegion, which requires a non-negative origin; OS-reported display
// bounds (which can sit left of or above the primary monitor) are built
// directly, see DisplayRegion.
type Region struct {
	X      int
	Y      int
	Width  int
	Height int
}

// NewRegion validates coordinates and dimensions and returns the region.
// A negative origin or a zero/negative width or height is rejected with
// ErrInvalidRegion.
func NewRegion(x, y, width, height int) (Region, error) {
	if x < 0 || y < 0 {
		return Region{}, fmt.Errorf("%w: origin (%d,%d) must not be negative", ErrInvalidRegion, x, y)
	}
	if width <= 0 || height <= 0 {
		return Region{}, fmt.Errorf("%w: width=%d height=%d", ErrInvalidRegion, width, height)
	}
	return Region{X: x, Y: y, Width: width, Height: height}, nil
}

// RegionFromPoints builds a region from two opposite corners in any order.
// The corners are normalized so the result always has its origin at the
// top-left. Degenerate selections (zero span on either axis) are rejected
// with ErrInvalidRegion.
func RegionFromPoints(x1, y1, x2, y2 int) (Region, error) {
	if x2 < x1 {
		x1, x2 = x2, x1
	}
	if y2 < y1 {
		y1, y2 = y2, y1
	}
	return NewRegion(x1, y1, x2-x1, y2-y1)
}

// EvenDimensions returns a copy of the region with width and height rounded
// down to the nearest even number. Video codecs that subsample chroma need
// even frame dimensions, so recordings capture through this adjusted region
// while the origin stays put.
func (r Region) EvenDimensions() Region {
	r.Width -= r.Width % 2
	r.Height -= r.Height % 2
	return r
}

// Bounds converts the region to an image.Rectangle in screen coordinates.
func (r Region) Bounds() image.Rectangle {
	return image.Rect(r.X, r.Y, r.X+r.Width, r.Y+r.Height)
}

func (r Region) String() string {
	return fmt.Sprintf("%dx%d at (%d,%d)", r.Width, r.Height, r.X, r.Y)
}
