package recorder

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"screen-capture-tool/src/capture"
	"screen-capture-tool/src/encoder"
)

// ErrAlreadyRecording is returned by Start while a recording is active.
var ErrAlreadyRecording = errors.New("recording already in progress")

// ErrStopTimeout is returned by Stop when the loop did not exit in time.
// The recording goroutine is never killed; it keeps running and a later
// Stop can still collect it.
var ErrStopTimeout = errors.New("timed out waiting for recording to stop")

// SinkOpener creates the output sink for one recording.
type SinkOpener func(path string, width, height int, fps float64) (encoder.Sink, error)

// StopResult describes a finished recording.
type StopResult struct {
	Path     string
	Frames   int
	Duration time.Duration
	// Err is the error that terminated the loop early, nil for a clean
	// run. Even when set, the file at Path is finalized and playable up
	// to the last encoded frame.
	Err error
}

// Options configures a Session. Zero values select the live screen, the
// MPEG-4 encoder, and the system clock.
type Options struct {
	Source FrameSource
	Open   SinkOpener
	Pacer  Pacer
}

// Session runs at most one recording at a time and may be reused for any
// number of consecutive recordings. Start and Stop are expected from one
// caller goroutine; Running, Err and Elapsed may be polled from others.
type Session struct {
	source FrameSource
	open   SinkOpener
	pacer  Pacer

	mu        sync.Mutex
	running   bool
	cancel    context.CancelFunc
	done      chan struct{}
	path      string
	startedAt time.Time
	frames    int
	elapsed   time.Duration
	loopErr   error
}

func NewSession(opts Options) *Session {
	s := &Session{source: opts.Source, open: opts.Open, pacer: opts.Pacer}
	if s.source == nil {
		s.source = capture.ScreenSource{}
	}
	if s.open == nil {
		s.open = encoder.Open
	}
	if s.pacer == nil {
		s.pacer = SystemPacer{}
	}
	return s
}

// Start validates the parameters, opens the output file and launches the
// capture loop. It returns once the recording is running; open failures
// surface here and leave the session idle. The region is normalized to
// even dimensions before the encoder sees it.
func (s *Session) Start(region capture.Region, fps float64, path string) error {
	if fps <= 0 {
		return fmt.Errorf("recording fps must be positive, got %g", fps)
	}
	// Only the dimensions are checked here: callers hand in either a
	// validated selection or OS-reported display bounds, and the latter may
	// carry a negative origin on multi-monitor setups.
	if region.Width <= 0 || region.Height <= 0 {
		return fmt.Errorf("%w: width=%d height=%d", capture.ErrInvalidRegion, region.Width, region.Height)
	}
	adjusted := region.EvenDimensions()
	if adjusted.Width < 2 || adjusted.Height < 2 {
		return fmt.Errorf("%w: region %s too small to record", capture.ErrInvalidRegion, region)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return ErrAlreadyRecording
	}

	sink, err := s.open(path, adjusted.Width, adjusted.Height, fps)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	s.running = true
	s.cancel = cancel
	s.done = done
	s.path = path
	s.startedAt = time.Now()
	s.frames = 0
	s.elapsed = 0
	s.loopErr = nil

	log.Printf("Recording started: %s region=%s fps=%g", path, adjusted, fps)
	go s.record(ctx, cancel, adjusted, fps, path, sink, done)
	return nil
}

// record owns the sink: whatever ends the loop, the file is finalized here,
// exactly once, before the outcome becomes visible to pollers.
func (s *Session) record(ctx context.Context, cancel context.CancelFunc, region capture.Region, fps float64, path string, sink encoder.Sink, done chan struct{}) {
	defer close(done)
	defer cancel()

	loop := &Loop{
		Source: s.source,
		Sink:   sink,
		Region: region,
		FPS:    fps,
		Pacer:  s.pacer,
		OnFrame: func(n int) {
			s.mu.Lock()
			s.frames = n
			s.mu.Unlock()
		},
	}

	start := time.Now()
	frames, err := loop.Run(ctx)
	elapsed := time.Since(start)

	if cerr := sink.Close(); cerr != nil && err == nil {
		err = cerr
	}

	if err != nil {
		log.Printf("Recording failed after %d frames: %v", frames, err)
	} else {
		log.Printf("Recording finished: %s frames=%d elapsed=%s", path, frames, elapsed.Round(time.Millisecond))
	}

	s.mu.Lock()
	s.frames = frames
	s.elapsed = elapsed
	s.loopErr = err
	s.running = false
	s.mu.Unlock()
}

// Stop cancels the loop and waits up to timeout for it to finish. A session
// with no recording, including one whose loop already died on its own, stops
// as a successful no-op carrying the final counters. A timeout leaves the
// recording collectable by a later Stop. Loop failures are reported in
// StopResult.Err, not in the error return, which only covers the stop
// mechanics themselves.
func (s *Session) Stop(timeout time.Duration) (StopResult, error) {
	s.mu.Lock()
	if s.cancel == nil {
		s.mu.Unlock()
		return StopResult{}, nil
	}
	cancel := s.cancel
	done := s.done
	path := s.path
	started := s.startedAt
	frames := s.frames
	s.mu.Unlock()

	cancel()

	finished := false
	if timeout > 0 {
		select {
		case <-done:
			finished = true
		case <-time.After(timeout):
		}
	} else {
		select {
		case <-done:
			finished = true
		default:
		}
	}
	if !finished {
		return StopResult{Path: path, Frames: frames, Duration: time.Since(started)},
			fmt.Errorf("%w (%s after %s)", ErrStopTimeout, path, timeout)
	}

	s.mu.Lock()
	res := StopResult{Path: path, Frames: s.frames, Duration: s.elapsed, Err: s.loopErr}
	s.cancel = nil
	s.done = nil
	s.path = ""
	s.mu.Unlock()
	return res, nil
}

// Running reports whether the capture loop is currently alive.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// Err returns the terminal error of the most recent recording, nil while
// recording and after clean runs. It lets pollers notice a loop that died
// mid-recording before they get around to calling Stop.
func (s *Session) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loopErr
}

// Elapsed returns how long the current recording has been running, or zero
// when idle.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.running {
		return 0
	}
	return time.Since(s.startedAt)
}
