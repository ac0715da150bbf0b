package capture

import (
	"errors"
	"fmt"
	"image"
	"log"

	"github.com/kbinani/screenshot"
)

// ErrCapture is returned when frame acquisition from the display fails.
var ErrCapture = errors.New("screen capture failed")

// Init probes the attached displays and fails when none are active, so
// callers can refuse to start instead of failing on the first capture.
func Init() error {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return fmt.Errorf("%w: no active displays found", ErrCapture)
	}
	log.Printf("Capture initialized: %d active display(s)", n)
	return nil
}

// Capture grabs the entire virtual screen across all active displays.
func Capture() (*image.RGBA, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return nil, fmt.Errorf("%w: no active displays found", ErrCapture)
	}
	union := screenshot.GetDisplayBounds(0)
	for i := 1; i < n; i++ {
		union = union.Union(screenshot.GetDisplayBounds(i))
	}
	img, err := screenshot.CaptureRect(union)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCapture, err)
	}
	return img, nil
}

// CaptureRegion grabs one frame of the given screen region. The returned
// buffer is RGBA with its bounds translated to the origin.
func CaptureRegion(region Region) (*image.RGBA, error) {
	if region.Width <= 0 || region.Height <= 0 {
		return nil, fmt.Errorf("%w: width=%d height=%d", ErrInvalidRegion, region.Width, region.Height)
	}
	img, err := screenshot.CaptureRect(region.Bounds())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCapture, err)
	}
	return img, nil
}

// DisplayCount reports the number of active displays.
func DisplayCount() int {
	return screenshot.NumActiveDisplays()
}

// DisplayRegion returns the full bounds of one display as a region. The
// bounds come straight from the OS and bypass NewRegion's origin check:
// a monitor left of or above the primary one legitimately starts at
// negative coordinates.
func DisplayRegion(index int) (Region, error) {
	n := screenshot.NumActiveDisplays()
	if n == 0 {
		return Region{}, fmt.Errorf("%w: no active displays found", ErrCapture)
	}
	if index < 0 || index >= n {
		return Region{}, fmt.Errorf("display %d out of range (have %d)", index, n)
	}
	b := screenshot.GetDisplayBounds(index)
	return Region{X: b.Min.X, Y: b.Min.Y, Width: b.Dx(), Height: b.Dy()}, nil
}

// ScreenSource captures frames from the live display. It satisfies the
// frame source contract the recorder consumes.
type ScreenSource struct{}

func (ScreenSource) Capture(region Region) (*image.RGBA, error) {
	return CaptureRegion(region)
}
