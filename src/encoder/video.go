package encoder

import (
	"fmt"
	"image"
	"log"
	"sync"

	"gocv.io/x/gocv"
)

// fourCC selects MPEG-4 Part 2 inside the container. Stock OpenCV builds
// ship this codec, so no extra packages are needed on the machine.
const fourCC = "mp4v"

type videoSink struct {
	mu     sync.Mutex
	writer *gocv.VideoWriter
	path   string
	width  int
	height int
	frames int
	closed bool
}

// Open creates path and prepares an MPEG-4 encoder for frames of the given
// size. Dimensions must be positive and even; fps must be positive. Failures
// are reported as ErrEncoderInit and leave no open file handle behind.
func Open(path string, width, height int, fps float64) (Sink, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", ErrEncoderInit, width, height)
	}
	if width%2 != 0 || height%2 != 0 {
		return nil, fmt.Errorf("%w: dimensions %dx%d must be even", ErrEncoderInit, width, height)
	}
	if fps <= 0 {
		return nil, fmt.Errorf("%w: invalid fps %g", ErrEncoderInit, fps)
	}

	writer, err := gocv.VideoWriterFile(path, fourCC, fps, width, height, true)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEncoderInit, err)
	}
	if !writer.IsOpened() {
		writer.Close()
		return nil, fmt.Errorf("%w: could not open %s for %dx%d @ %g fps", ErrEncoderInit, path, width, height, fps)
	}

	log.Printf("Encoder opened: %s (%dx%d @ %g fps)", path, width, height, fps)
	return &videoSink{writer: writer, path: path, width: width, height: height}, nil
}

// WriteFrame converts the RGBA buffer to the codec's BGR channel order and
// appends it to the container. The conversion always runs; OpenCV reads the
// channels in the wrong order otherwise and the recording comes out with
// red and blue swapped. Frames whose size differs from the configured
// dimensions are resized to fit.
func (s *videoSink) WriteFrame(img *image.RGBA) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return fmt.Errorf("%w: writer already closed", ErrEncode)
	}

	rgb, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}
	defer rgb.Close()

	bgr := gocv.NewMat()
	defer bgr.Close()
	gocv.CvtColor(rgb, &bgr, gocv.ColorRGBToBGR)

	frame := bgr
	if bgr.Cols() != s.width || bgr.Rows() != s.height {
		resized := gocv.NewMat()
		defer resized.Close()
		gocv.Resize(bgr, &resized, image.Pt(s.width, s.height), 0, 0, gocv.InterpolationLinear)
		frame = resized
	}

	if err := s.writer.Write(frame); err != nil {
		return fmt.Errorf("%w: %v", ErrEncode, err)
	}
	s.frames++
	return nil
}

func (s *videoSink) Frames() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

// Close finalizes the container. Subsequent calls are no-ops.
func (s *videoSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	if err := s.writer.Close(); err != nil {
		return fmt.Errorf("failed to finalize %s: %v", s.path, err)
	}
	log.Printf("Encoder closed: %s (%d frames)", s.path, s.frames)
	return nil
}
