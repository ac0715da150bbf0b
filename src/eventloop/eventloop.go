package eventloop

import (
	"context"
	"errors"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"screen-capture-tool/src/config"
	"screen-capture-tool/src/hotkey"
	"screen-capture-tool/src/notification"
	"screen-capture-tool/src/overlay"
	"screen-capture-tool/src/recorder"
	"screen-capture-tool/src/session"
	"screen-capture-tool/src/singleinstance"
	"screen-capture-tool/src/tray"
	"screen-capture-tool/src/worker"
)

// State describes which actions the coordinator currently permits. The
// recorder fails safe on a double Start regardless; the state exists so the
// UI surfaces "busy" instead of surfacing an error.
type State int

const (
	StateIdle State = iota
	StateSelecting
	StateRecording
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSelecting:
		return "selecting"
	case StateRecording:
		return "recording"
	}
	return "unknown"
}

// Loop is the single-goroutine coordinator for hotkey, tray and delegated
// capture commands. All state transitions happen on the Run goroutine;
// callbacks from other goroutines only post into channels.
type Loop struct {
	selector overlay.Selector
	pool     *worker.Pool
	rec      *recorder.Session
	srv      singleinstance.Server

	state    State
	results  chan result
	snapCh   chan struct{}
	recordCh chan struct{}
	fpsCh    chan float64

	outputDir       string
	fps             float64
	copyToClipboard bool
	stopTimeout     time.Duration
	snapDeadline    time.Duration
	defaultTooltip  string
	recordingPath   string
	recordingConn   bool
}

type result struct {
	res    session.SnapshotResult
	err    error
	target resultTarget
	cancel context.CancelFunc
}

type resultTarget interface {
	OnSuccess(res session.SnapshotResult)
	OnFailure(err error)
	Close()
}

// localTarget delivers outcomes of hotkey and tray captures to the user.
type localTarget struct{}

func (localTarget) OnSuccess(res session.SnapshotResult) {
	notification.Notify("Screenshot saved", res.Path)
}

func (localTarget) OnFailure(err error) {
	if errors.Is(err, session.ErrSelectionCancelled) {
		return
	}
	notification.NotifyError("Screenshot failed", err)
}

func (localTarget) Close() {}

// connTarget answers a delegated client over its connection.
type connTarget struct {
	conn singleinstance.Conn
}

func (t connTarget) OnSuccess(res session.SnapshotResult) {
	_ = t.conn.RespondSuccess(res.Path)
}

func (t connTarget) OnFailure(err error) {
	_ = t.conn.RespondError(err.Error())
}

func (t connTarget) Close() {
	_ = t.conn.Close()
}

// New creates the coordinator with the live selector, recorder and worker
// pool. cfg supplies the output directory, frame rate and stop timeout.
func New(cfg *config.Config) *Loop {
	l := &Loop{
		selector:        overlay.NewSelector(),
		pool:            worker.New(0),
		rec:             recorder.NewSession(recorder.Options{}),
		results:         make(chan result, 1),
		snapCh:          make(chan struct{}, 4),
		recordCh:        make(chan struct{}, 4),
		fpsCh:           make(chan float64, 1),
		fps:             config.DefaultFPS,
		copyToClipboard: true,
		stopTimeout:     time.Duration(config.DefaultStopTimeoutSec) * time.Second,
		snapDeadline:    30 * time.Second,
		defaultTooltip:  "Screen Capture Tool",
	}
	if cfg != nil {
		l.outputDir = cfg.OutputDir
		l.copyToClipboard = cfg.CopyToClipboard
		if cfg.FPS > 0 {
			l.fps = cfg.FPS
		}
		if cfg.StopTimeoutSec > 0 {
			l.stopTimeout = time.Duration(cfg.StopTimeoutSec) * time.Second
		}
	}
	return l
}

// SetDefaultTooltip optionally sets the tray tooltip base text.
func (l *Loop) SetDefaultTooltip(tt string) { l.defaultTooltip = tt }

// RequestSnapshot posts a snapshot request into the loop. Safe from any
// goroutine; dropped when the queue is full.
func (l *Loop) RequestSnapshot() {
	select {
	case l.snapCh <- struct{}{}:
	default:
	}
}

// RequestRecordToggle posts a record start/stop request into the loop.
func (l *Loop) RequestRecordToggle() {
	select {
	case l.recordCh <- struct{}{}:
	default:
	}
}

// SetFPS changes the frame rate for subsequent recordings.
func (l *Loop) SetFPS(fps float64) {
	if fps <= 0 {
		return
	}
	select {
	case l.fpsCh <- fps:
	default:
	}
}

// StartHotkeys registers the global capture and record combos. gohook only
// supports one event loop per process, so both arrive in one call.
func (l *Loop) StartHotkeys(captureCombo, recordCombo string) {
	var bindings []hotkey.Binding
	if captureCombo != "" {
		bindings = append(bindings, hotkey.Binding{Combo: captureCombo, Action: l.RequestSnapshot})
	}
	if recordCombo != "" {
		bindings = append(bindings, hotkey.Binding{Combo: recordCombo, Action: l.RequestRecordToggle})
	}
	if len(bindings) > 0 {
		hotkey.Listen(bindings...)
	}
}

// Run starts the singleinstance server and processes requests until ctx is
// cancelled. A recording still running at shutdown is stopped and finalized.
func (l *Loop) Run(ctx context.Context) error {
	if l.srv == nil {
		l.srv = singleinstance.NewServer()
	}
	if err := l.srv.Start(ctx); err != nil {
		return err
	}
	if p := l.srv.Port(); p > 0 {
		log.Printf("Resident listening on 127.0.0.1:%d", p)
		tray.SetAboutExtra(fmt.Sprintf("Resident TCP port: %d", p))
	}
	defer l.pool.Close()
	defer l.finishRecordingOnShutdown()

	// Accept loop in background so a waiting client never blocks results.
	reqCh := make(chan singleinstance.Conn, 4)
	go func() {
		for {
			conn, err := l.srv.Next(ctx)
			if err != nil {
				close(reqCh)
				return
			}
			reqCh <- conn
		}
	}()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-l.snapCh:
			l.handleSnapshot(ctx, localTarget{})
		case <-l.recordCh:
			l.handleRecordToggle(ctx, nil)
		case fps := <-l.fpsCh:
			l.fps = fps
			log.Printf("Recording frame rate set to %g fps", fps)
		case conn, ok := <-reqCh:
			if !ok {
				return nil
			}
			l.handleConn(ctx, conn)
		case res := <-l.results:
			l.handleResult(res)
		case <-ticker.C:
			l.tick()
		}
	}
}

func (l *Loop) handleConn(ctx context.Context, conn singleinstance.Conn) {
	switch conn.Request().Kind {
	case singleinstance.KindSnap:
		l.handleSnapshot(ctx, connTarget{conn: conn})
	case singleinstance.KindRecord:
		l.handleRecordToggle(ctx, conn)
	default:
		_ = conn.RespondError("unknown command")
		_ = conn.Close()
	}
}

// handleSnapshot runs the selection on the loop goroutine (the overlay owns
// its own message pump) and hands the capture-encode-save work to the pool.
func (l *Loop) handleSnapshot(ctx context.Context, target resultTarget) {
	if l.state != StateIdle {
		target.OnFailure(fmt.Errorf("busy (%s), please retry", l.state))
		target.Close()
		return
	}

	l.state = StateSelecting
	region, cancelled, err := l.selector.Select(ctx)
	if err != nil {
		l.state = StateIdle
		target.OnFailure(fmt.Errorf("failed to select region: %w", err))
		target.Close()
		return
	}
	if cancelled {
		l.state = StateIdle
		target.OnFailure(session.ErrSelectionCancelled)
		target.Close()
		return
	}

	jobCtx, cancel := context.WithTimeout(ctx, l.snapDeadline)
	opts := session.SnapshotOptions{
		SelectRegion:    session.SelectRegionFunc(overlay.FixedSelector{Region: region}.Select),
		OutputDir:       l.outputDir,
		CopyToClipboard: l.copyToClipboard,
	}
	submitted := l.pool.Submit(jobCtx, opts, func(res session.SnapshotResult, err error) {
		l.results <- result{res: res, err: err, target: target, cancel: cancel}
	})
	if !submitted {
		cancel()
		l.state = StateIdle
		target.OnFailure(errors.New("busy, please retry"))
		target.Close()
	}
}

func (l *Loop) handleResult(res result) {
	defer func() {
		if l.state == StateSelecting {
			l.state = StateIdle
		}
		if res.cancel != nil {
			res.cancel()
		}
	}()
	defer res.target.Close()

	if res.err != nil {
		log.Printf("Snapshot request failed: %v", res.err)
		res.target.OnFailure(res.err)
		return
	}
	res.target.OnSuccess(res.res)
}

// handleRecordToggle starts a recording when idle and stops the active one
// otherwise. conn is nil for hotkey and tray toggles.
func (l *Loop) handleRecordToggle(ctx context.Context, conn singleinstance.Conn) {
	if l.state == StateRecording {
		l.stopRecording(conn)
		return
	}
	if l.state != StateIdle {
		l.respondOrNotifyError(conn, fmt.Errorf("busy (%s), please retry", l.state))
		return
	}

	l.state = StateSelecting
	region, cancelled, err := l.selector.Select(ctx)
	if err != nil {
		l.state = StateIdle
		l.respondOrNotifyError(conn, fmt.Errorf("failed to select region: %w", err))
		return
	}
	if cancelled {
		l.state = StateIdle
		l.respondOrNotifyError(conn, session.ErrSelectionCancelled)
		return
	}

	if err := session.EnsureOutputDir(l.outputDir); err != nil {
		l.state = StateIdle
		l.respondOrNotifyError(conn, err)
		return
	}
	path := filepath.Join(l.outputDir, session.RecordingFilename(time.Now()))
	if err := l.rec.Start(region, l.fps, path); err != nil {
		l.state = StateIdle
		l.respondOrNotifyError(conn, err)
		return
	}

	l.state = StateRecording
	l.recordingPath = path
	l.recordingConn = conn != nil
	tray.SetRecording(true)
	tray.UpdateTooltip("Recording 00:00 - " + filepath.Base(path))
	if conn != nil {
		_ = conn.RespondSuccess(path)
		_ = conn.Close()
	} else {
		log.Printf("Recording toggled on: %s", path)
	}
}

func (l *Loop) stopRecording(conn singleinstance.Conn) {
	res, err := l.rec.Stop(l.stopTimeout)
	if errors.Is(err, recorder.ErrStopTimeout) {
		// The loop did not acknowledge in time. Resources may still be
		// held; stay in Recording so a later toggle can collect it.
		notification.NotifyError("Recording stop timed out", err)
		if conn != nil {
			_ = conn.RespondError(err.Error())
			_ = conn.Close()
		}
		return
	}

	l.state = StateIdle
	l.recordingPath = ""
	tray.SetRecording(false)
	tray.ResetTooltip()

	switch {
	case err != nil:
		l.respondOrNotifyError(conn, err)
	case res.Err != nil:
		failure := fmt.Errorf("recording ended early after %d frames: %w", res.Frames, res.Err)
		l.respondOrNotifyError(conn, failure)
	default:
		log.Printf("Recording stopped: %s frames=%d elapsed=%s", res.Path, res.Frames, res.Duration.Round(time.Millisecond))
		if conn != nil {
			_ = conn.RespondSuccess(res.Path)
			_ = conn.Close()
		} else {
			notification.Notify("Recording saved", res.Path)
		}
	}
}

// tick updates the recording timer and notices a capture loop that died on
// its own, e.g. when the display went away mid-recording.
func (l *Loop) tick() {
	if l.state != StateRecording {
		return
	}
	if l.rec.Running() {
		elapsed := l.rec.Elapsed().Round(time.Second)
		tray.UpdateTooltip(fmt.Sprintf("Recording %02d:%02d - %s",
			int(elapsed.Minutes()), int(elapsed.Seconds())%60, filepath.Base(l.recordingPath)))
		return
	}

	// Loop exited without a toggle: collect and report.
	res, err := l.rec.Stop(l.stopTimeout)
	l.state = StateIdle
	l.recordingPath = ""
	tray.SetRecording(false)
	tray.ResetTooltip()
	if err != nil {
		notification.NotifyError("Recording failed", err)
		return
	}
	if res.Err != nil {
		notification.NotifyError("Recording failed",
			fmt.Errorf("stopped after %d frames, partial file kept at %s: %w", res.Frames, res.Path, res.Err))
	} else {
		notification.Notify("Recording saved", res.Path)
	}
}

func (l *Loop) finishRecordingOnShutdown() {
	if l.state != StateRecording {
		return
	}
	if res, err := l.rec.Stop(l.stopTimeout); err != nil {
		log.Printf("Shutdown: recording stop failed: %v", err)
	} else if res.Path != "" {
		log.Printf("Shutdown: recording finalized at %s (%d frames)", res.Path, res.Frames)
	}
}

func (l *Loop) respondOrNotifyError(conn singleinstance.Conn, err error) {
	if conn != nil {
		_ = conn.RespondError(err.Error())
		_ = conn.Close()
		return
	}
	if errors.Is(err, session.ErrSelectionCancelled) {
		log.Printf("Recording selection cancelled")
		return
	}
	notification.NotifyError("Recording failed", err)
}

// State reports the coordinator's current state. Only meaningful from the
// Run goroutine or after Run has returned; exposed for tests.
func (l *Loop) State() State { return l.state }
