package session

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"os"
	"path/filepath"
	"time"

	"screen-capture-tool/src/capture"
	"screen-capture-tool/src/clipboard"
	"screen-capture-tool/src/recorder"
)

var ErrSelectionCancelled = errors.New("selection cancelled")

// SelectRegionFunc yields the region to capture. Implementations range from
// the interactive overlay to a fixed rectangle for headless runs.
type SelectRegionFunc func(ctx context.Context) (capture.Region, bool, error)

// CaptureFunc grabs one frame of a region. Tests swap in synthetic frames.
type CaptureFunc func(region capture.Region) (*image.RGBA, error)

// SnapshotFilename names a still capture after its wall-clock moment, so a
// directory of captures sorts chronologically.
func SnapshotFilename(t time.Time) string {
	return "screenshot_" + t.Format("20060102_150405") + ".png"
}

// RecordingFilename names a video capture the same way.
func RecordingFilename(t time.Time) string {
	return "recording_" + t.Format("20060102_150405") + ".mp4"
}

// EnsureOutputDir creates the capture directory if it does not exist yet.
func EnsureOutputDir(dir string) error {
	if dir == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create output directory %s: %v", dir, err)
	}
	return nil
}

// SnapshotOptions configures one still-capture flow.
type SnapshotOptions struct {
	SelectRegion    SelectRegionFunc // required
	Capture         CaptureFunc      // defaults to live screen capture
	OutputDir       string           // defaults to the working directory
	CopyToClipboard bool
	Now             func() time.Time // defaults to time.Now
}

// SnapshotResult reports where the still landed.
type SnapshotResult struct {
	Path   string
	Region capture.Region
	PNG    []byte
}

// Snapshot runs one select-capture-save flow: obtain a region, grab its
// pixels, write a timestamped PNG into the output directory and optionally
// put the image on the clipboard. Cancelled selections return
// ErrSelectionCancelled with nothing written.
func Snapshot(ctx context.Context, opts SnapshotOptions) (SnapshotResult, error) {
	if opts.SelectRegion == nil {
		return SnapshotResult{}, errors.New("SelectRegion is required")
	}
	grab := opts.Capture
	if grab == nil {
		grab = capture.CaptureRegion
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	region, cancelled, err := opts.SelectRegion(ctx)
	if err != nil {
		return SnapshotResult{}, err
	}
	if cancelled {
		return SnapshotResult{}, ErrSelectionCancelled
	}

	img, err := grab(region)
	if err != nil {
		return SnapshotResult{}, err
	}
	png, err := capture.EncodePNG(img)
	if err != nil {
		return SnapshotResult{}, err
	}

	if err := EnsureOutputDir(opts.OutputDir); err != nil {
		return SnapshotResult{}, err
	}
	path := filepath.Join(opts.OutputDir, SnapshotFilename(now()))
	if err := os.WriteFile(path, png, 0o644); err != nil {
		return SnapshotResult{}, fmt.Errorf("failed to write %s: %v", path, err)
	}
	log.Printf("Snapshot saved: %s (%s)", path, region)

	if opts.CopyToClipboard {
		if err := clipboard.WriteImage(png); err != nil {
			// The file is already on disk; a clipboard hiccup is not worth
			// failing the whole capture over.
			log.Printf("Snapshot clipboard copy failed: %v", err)
		}
	}

	return SnapshotResult{Path: path, Region: region, PNG: png}, nil
}

// RecordOptions configures one bounded recording flow.
type RecordOptions struct {
	SelectRegion SelectRegionFunc // required
	Recorder     *recorder.Session
	OutputDir    string
	FPS          float64
	Duration     time.Duration // 0 means record until ctx is cancelled
	StopTimeout  time.Duration
	Now          func() time.Time
}

// RecordResult reports a finished recording.
type RecordResult struct {
	Path     string
	Region   capture.Region
	Frames   int
	Duration time.Duration
}

// Record runs one select-record-stop flow for callers without an event loop,
// like the command line. It blocks until the duration elapses or ctx is
// cancelled, then stops the recording and reports the outcome. A loop-fatal
// capture or encode error surfaces as the returned error, with the partial
// file finalized on disk.
func Record(ctx context.Context, opts RecordOptions) (RecordResult, error) {
	if opts.SelectRegion == nil {
		return RecordResult{}, errors.New("SelectRegion is required")
	}
	rec := opts.Recorder
	if rec == nil {
		rec = recorder.NewSession(recorder.Options{})
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	stopTimeout := opts.StopTimeout
	if stopTimeout <= 0 {
		stopTimeout = 5 * time.Second
	}

	region, cancelled, err := opts.SelectRegion(ctx)
	if err != nil {
		return RecordResult{}, err
	}
	if cancelled {
		return RecordResult{}, ErrSelectionCancelled
	}

	if err := EnsureOutputDir(opts.OutputDir); err != nil {
		return RecordResult{}, err
	}
	path := filepath.Join(opts.OutputDir, RecordingFilename(now()))
	if err := rec.Start(region, opts.FPS, path); err != nil {
		return RecordResult{}, err
	}

	if opts.Duration > 0 {
		select {
		case <-time.After(opts.Duration):
		case <-ctx.Done():
		}
	} else {
		<-ctx.Done()
	}

	res, err := rec.Stop(stopTimeout)
	out := RecordResult{Path: res.Path, Region: region, Frames: res.Frames, Duration: res.Duration}
	if err != nil {
		return out, err
	}
	if res.Err != nil {
		return out, fmt.Errorf("recording ended early after %d frames: %w", res.Frames, res.Err)
	}
	return out, nil
}
