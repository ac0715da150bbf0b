package encoder

import (
	"errors"
	"image"
)

// ErrEncoderInit is returned when the output file or codec cannot be prepared.
var ErrEncoderInit = errors.New("encoder init failed")

// ErrEncode is returned when writing a frame to the container fails.
var ErrEncode = errors.New("frame encode failed")

// Sink consumes captured frames and writes them into a video container.
// Close finalizes the container and may be called more than once; the
// underlying file is released exactly once. Writes after Close fail with
// ErrEncode.
type Sink interface {
	WriteFrame(img *image.RGBA) error
	Frames() int
	Close() error
}
