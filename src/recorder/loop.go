package recorder

import (
	"context"
	"fmt"
	"image"
	"time"

	"screen-capture-tool/src/capture"
	"screen-capture-tool/src/encoder"
)

// FrameSource yields one frame of a screen region per call.
type FrameSource interface {
	Capture(region capture.Region) (*image.RGBA, error)
}

// Loop captures frames of one region at a fixed rate and hands them to a
// sink, one cycle at a time. Nothing in the cycle runs concurrently: a
// frame is captured, encoded, and only then is the next one due. When a
// cycle overruns its deadline the lost time is dropped rather than made up,
// so a slow source produces a shorter video instead of a growing backlog.
type Loop struct {
	Source FrameSource
	Sink   encoder.Sink
	Region capture.Region
	FPS    float64
	Pacer  Pacer // nil means SystemPacer

	// OnFrame, when set, is called after every encoded frame with the
	// running total. Must be cheap; it executes inside the cycle.
	OnFrame func(frames int)
}

// Run drives the loop until ctx is cancelled or a frame fails. It returns
// the number of frames encoded and, for capture or encode failures, the
// error that stopped it. Cancellation is not an error. Cancellation is
// observed at the top of each cycle, so stop latency is bounded by one
// frame interval plus the time of the cycle in flight. The sink stays open;
// the caller owns finalization.
func (l *Loop) Run(ctx context.Context) (int, error) {
	if l.FPS <= 0 {
		return 0, fmt.Errorf("invalid fps %g", l.FPS)
	}
	pacer := l.Pacer
	if pacer == nil {
		pacer = SystemPacer{}
	}
	restore := raiseTimerResolution()
	defer restore()

	interval := time.Duration(float64(time.Second) / l.FPS)
	next := pacer.Now().Add(interval)
	frames := 0

	for {
		select {
		case <-ctx.Done():
			return frames, nil
		default:
		}

		img, err := l.Source.Capture(l.Region)
		if err != nil {
			return frames, fmt.Errorf("frame %d: %w", frames, err)
		}
		if err := l.Sink.WriteFrame(img); err != nil {
			return frames, fmt.Errorf("frame %d: %w", frames, err)
		}
		frames++
		if l.OnFrame != nil {
			l.OnFrame(frames)
		}

		if now := pacer.Now(); now.Before(next) {
			pacer.Sleep(next.Sub(now))
		}
		next = next.Add(interval)
		if now := pacer.Now(); next.Before(now) {
			// Behind schedule. Rebase on the present so the loop skips the
			// missed slots instead of bursting to catch up.
			next = now
		}
	}
}
