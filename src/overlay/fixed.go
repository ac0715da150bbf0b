package overlay

import (
	"context"
	"fmt"

	"screen-capture-tool/src/capture"
)

// FixedSelector returns a predetermined region instead of asking the user.
// The command line uses it for explicit geometry flags and display bounds;
// tests use it to drive flows without a display. Only the dimensions are
// checked: the region is already validated or OS-reported, and display
// bounds may carry a negative origin on multi-monitor setups.
type FixedSelector struct {
	Region capture.Region
}

func (f FixedSelector) Select(ctx context.Context) (capture.Region, bool, error) {
	if err := ctx.Err(); err != nil {
		return capture.Region{}, false, err
	}
	if f.Region.Width <= 0 || f.Region.Height <= 0 {
		return capture.Region{}, false, fmt.Errorf("%w: width=%d height=%d",
			capture.ErrInvalidRegion, f.Region.Width, f.Region.Height)
	}
	return f.Region, false, nil
}
