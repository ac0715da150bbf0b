//go:build !windows

package overlay

import (
	"context"

	"screen-capture-tool/src/capture"
)

type unsupportedSelector struct{}

func newPlatformSelector() Selector { return unsupportedSelector{} }

func (unsupportedSelector) Select(ctx context.Context) (capture.Region, bool, error) {
	return capture.Region{}, false, ErrUnsupported
}
