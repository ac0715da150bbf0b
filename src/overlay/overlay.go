package overlay

import (
	"context"
	"errors"

	"screen-capture-tool/src/capture"
)

// ErrUnsupported is returned on platforms without an interactive selector.
var ErrUnsupported = errors.New("interactive region selection not supported on this platform")

// Selector runs one region selection and blocks until the user commits or
// cancels. The call MUST come from the single event-loop goroutine; it
// creates and tears down its own UI. When cancelled is true the region is
// undefined and err is nil.
type Selector interface {
	Select(ctx context.Context) (region capture.Region, cancelled bool, err error)
}

// NewSelector returns the interactive selector for this platform.
func NewSelector() Selector {
	return newPlatformSelector()
}
