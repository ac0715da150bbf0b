package eventloop

import (
	"context"
	"image"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"screen-capture-tool/src/capture"
	"screen-capture-tool/src/encoder"
	"screen-capture-tool/src/overlay"
	"screen-capture-tool/src/recorder"
	"screen-capture-tool/src/singleinstance"
	"screen-capture-tool/src/worker"
)

// stubServer feeds pre-queued connections into the loop without TCP.
type stubServer struct {
	conns chan singleinstance.Conn
}

func newStubServer() *stubServer {
	return &stubServer{conns: make(chan singleinstance.Conn, 4)}
}

func (s *stubServer) Start(ctx context.Context) error { return nil }
func (s *stubServer) Port() int                       { return 0 }
func (s *stubServer) Close() error                    { return nil }

func (s *stubServer) Next(ctx context.Context) (singleinstance.Conn, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case c := <-s.conns:
		return c, nil
	}
}

// stubConn records the response a delegated command received.
type stubConn struct {
	kind singleinstance.Kind

	mu      sync.Mutex
	success []string
	failure []string
	closed  int
}

func (c *stubConn) Request() singleinstance.Request {
	return singleinstance.Request{Kind: c.kind}
}

func (c *stubConn) RespondSuccess(text string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.success = append(c.success, text)
	return nil
}

func (c *stubConn) RespondError(msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.failure = append(c.failure, msg)
	return nil
}

func (c *stubConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed++
	return nil
}

func (c *stubConn) replies() (success, failure []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.success...), append([]string(nil), c.failure...)
}

// countingSink tallies recorder activity for toggle tests.
type countingSink struct {
	mu     sync.Mutex
	writes int
	closes int
}

func (c *countingSink) WriteFrame(*image.RGBA) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes++
	return nil
}

func (c *countingSink) Frames() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes
}

func (c *countingSink) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closes++
	return nil
}

func (c *countingSink) CloseCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closes
}

type blankSource struct{}

func (blankSource) Capture(r capture.Region) (*image.RGBA, error) {
	return image.NewRGBA(image.Rect(0, 0, r.Width, r.Height)), nil
}

type loopHarness struct {
	loop     *Loop
	server   *stubServer
	sinks    *sinkBox
	dir      string
	cancel   context.CancelFunc
	done     chan error
	waitOnce sync.Once
	waitErr  bool
}

// stop cancels the loop and waits for Run to return; safe to call twice.
func (h *loopHarness) stop() bool {
	h.cancel()
	h.waitOnce.Do(func() {
		select {
		case <-h.done:
		case <-time.After(5 * time.Second):
			h.waitErr = true
		}
	})
	return !h.waitErr
}

type sinkBox struct {
	mu    sync.Mutex
	sinks []*countingSink
}

func (b *sinkBox) open(path string, width, height int, fps float64) (encoder.Sink, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := &countingSink{}
	b.sinks = append(b.sinks, s)
	return s, nil
}

func (b *sinkBox) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.sinks)
}

func (b *sinkBox) last() *countingSink {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.sinks) == 0 {
		return nil
	}
	return b.sinks[len(b.sinks)-1]
}

func startHarness(t *testing.T) *loopHarness {
	t.Helper()
	dir := t.TempDir()
	sinks := &sinkBox{}
	server := newStubServer()

	l := &Loop{
		selector:        overlay.FixedSelector{Region: capture.Region{Width: 64, Height: 48}},
		pool:            worker.New(1),
		rec:             recorder.NewSession(recorder.Options{Source: blankSource{}, Open: sinks.open}),
		srv:             server,
		results:         make(chan result, 1),
		snapCh:          make(chan struct{}, 4),
		recordCh:        make(chan struct{}, 4),
		fpsCh:           make(chan float64, 1),
		outputDir:       dir,
		fps:             60,
		stopTimeout:     2 * time.Second,
		snapDeadline:    5 * time.Second,
		defaultTooltip:  "test",
		copyToClipboard: false,
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- l.Run(ctx) }()

	h := &loopHarness{loop: l, server: server, sinks: sinks, dir: dir, cancel: cancel, done: done}
	t.Cleanup(func() {
		if !h.stop() {
			t.Error("Loop did not shut down")
		}
	})
	return h
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("Timed out waiting for %s", what)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func pngCount(dir string) int {
	entries, _ := os.ReadDir(dir)
	n := 0
	for _, e := range entries {
		if strings.HasSuffix(e.Name(), ".png") {
			n++
		}
	}
	return n
}

func TestSnapshotRequestSavesFile(t *testing.T) {
	h := startHarness(t)

	h.loop.RequestSnapshot()
	waitFor(t, "snapshot file", func() bool { return pngCount(h.dir) == 1 })
}

func TestDelegatedSnapshotRepliesWithPath(t *testing.T) {
	h := startHarness(t)

	conn := &stubConn{kind: singleinstance.KindSnap}
	h.server.conns <- conn

	waitFor(t, "delegated reply", func() bool {
		success, failure := conn.replies()
		return len(success)+len(failure) > 0
	})
	success, failure := conn.replies()
	if len(failure) != 0 {
		t.Fatalf("Delegated snapshot failed: %v", failure)
	}
	if !strings.HasSuffix(success[0], ".png") {
		t.Errorf("Reply %q is not a PNG path", success[0])
	}
	if _, err := os.Stat(success[0]); err != nil {
		t.Errorf("Replied path does not exist: %v", err)
	}
}

func TestRecordToggleStartsAndStops(t *testing.T) {
	h := startHarness(t)

	h.loop.RequestRecordToggle()
	waitFor(t, "recording start", func() bool { return h.sinks.count() == 1 })
	sink := h.sinks.last()
	waitFor(t, "frames", func() bool { return sink.Frames() >= 3 })

	h.loop.RequestRecordToggle()
	waitFor(t, "recording stop", func() bool { return sink.CloseCount() == 1 })

	if sink.Frames() < 3 {
		t.Errorf("Expected at least 3 frames, got %d", sink.Frames())
	}
}

func TestDelegatedRecordToggle(t *testing.T) {
	h := startHarness(t)

	start := &stubConn{kind: singleinstance.KindRecord}
	h.server.conns <- start
	waitFor(t, "recording start", func() bool { return h.sinks.count() == 1 })

	success, failure := start.replies()
	if len(failure) != 0 {
		t.Fatalf("Record start failed: %v", failure)
	}
	if len(success) != 1 || !strings.HasSuffix(success[0], ".mp4") {
		t.Fatalf("Expected mp4 path reply, got %v", success)
	}

	stop := &stubConn{kind: singleinstance.KindRecord}
	h.server.conns <- stop
	waitFor(t, "recording stop", func() bool { return h.sinks.last().CloseCount() == 1 })

	success, failure = stop.replies()
	if len(failure) != 0 {
		t.Fatalf("Record stop failed: %v", failure)
	}
	if len(success) != 1 || !strings.HasSuffix(success[0], ".mp4") {
		t.Errorf("Expected mp4 path reply on stop, got %v", success)
	}
}

func TestSnapshotWhileRecordingIsRejected(t *testing.T) {
	h := startHarness(t)

	h.loop.RequestRecordToggle()
	waitFor(t, "recording start", func() bool { return h.sinks.count() == 1 })

	conn := &stubConn{kind: singleinstance.KindSnap}
	h.server.conns <- conn
	waitFor(t, "busy reply", func() bool {
		_, failure := conn.replies()
		return len(failure) == 1
	})
	_, failure := conn.replies()
	if !strings.Contains(failure[0], "busy") {
		t.Errorf("Expected busy rejection, got %q", failure[0])
	}
	if pngCount(h.dir) != 0 {
		t.Error("Rejected snapshot must not write a file")
	}

	h.loop.RequestRecordToggle()
	waitFor(t, "recording stop", func() bool { return h.sinks.last().CloseCount() == 1 })
}

func TestShutdownFinalizesActiveRecording(t *testing.T) {
	h := startHarness(t)

	h.loop.RequestRecordToggle()
	waitFor(t, "recording start", func() bool { return h.sinks.count() == 1 })
	sink := h.sinks.last()
	waitFor(t, "frames", func() bool { return sink.Frames() >= 1 })

	if !h.stop() {
		t.Fatal("Loop did not shut down")
	}
	if sink.CloseCount() != 1 {
		t.Errorf("Shutdown left the sink open, closes=%d", sink.CloseCount())
	}
}
