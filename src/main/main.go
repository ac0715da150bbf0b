package main

import (
	"context"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"screen-capture-tool/src/capture"
	"screen-capture-tool/src/clipboard"
	"screen-capture-tool/src/config"
	"screen-capture-tool/src/eventloop"
	"screen-capture-tool/src/logutil"
	"screen-capture-tool/src/notification"
	"screen-capture-tool/src/singleinstance"
	"screen-capture-tool/src/tray"
)

func residentTooltip(captureHotkey, recordHotkey string) string {
	return fmt.Sprintf("Screen Capture - %s to snap, %s to record", captureHotkey, recordHotkey)
}

func main() {
	// Ensure DPI awareness before creating any windows or querying metrics,
	// otherwise the overlay's coordinates come back scaled.
	enableDPIAwareness()

	// The selection overlay runs its message pump on the calling thread.
	runtime.LockOSThread()

	// Load .env early so SINGLEINSTANCE_PORT_* is applied before the
	// pre-flight bind.
	_, _ = config.Load()

	// ---------- SINGLE-INSTANCE PRE-FLIGHT ----------
	startPort, _ := singleinstance.GetPortRangeForDebug()
	addr := fmt.Sprintf("127.0.0.1:%d", startPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Printf("Pre-flight: port %d busy, resident already exists", startPort)
		fmt.Printf("one is already running on port %d\n", startPort)
		os.Exit(1)
	}
	// We claimed the port; release it so the event loop can re-bind.
	_ = listener.Close()
	log.Printf("Pre-flight: port %d free, we are the resident", startPort)
	// ------------------------------------------------

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logutil.Setup(cfg.EnableFileLogging)
	logMonitorConfiguration()

	if err := capture.Init(); err != nil {
		notification.ShowBlockingError("No display", fmt.Sprintf("Startup check failed: %v", err))
		os.Exit(1)
	}
	if cfg.CopyToClipboard {
		if err := clipboard.Init(); err != nil {
			// Snapshots still land on disk; only the clipboard copy is lost.
			log.Printf("Clipboard unavailable, copies disabled: %v", err)
			cfg.CopyToClipboard = false
		}
	}

	log.Printf("Screen Capture Tool initialized")
	log.Printf("Output directory: %s", cfg.OutputDir)
	log.Printf("Frame rate: %g fps", cfg.FPS)
	log.Printf("Hotkeys: snap=%s record=%s", cfg.CaptureHotkey, cfg.RecordHotkey)

	tray.SetAboutExtra("Snapshot hotkey: " + cfg.CaptureHotkey)
	tray.SetAboutExtra("Record hotkey: " + cfg.RecordHotkey)

	loop := eventloop.New(cfg)
	tooltip := residentTooltip(cfg.CaptureHotkey, cfg.RecordHotkey)
	loop.SetDefaultTooltip(tooltip)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	trayIcon, _ := tray.New(tray.Config{
		Title:      "Screen Capture Tool",
		Tooltip:    tooltip,
		FPS:        cfg.FPS,
		FPSChoices: config.FPSChoices,
		OnSnap:     loop.RequestSnapshot,
		OnRecord:   loop.RequestRecordToggle,
		OnFPS:      loop.SetFPS,
		OnExit:     func() { cancel() },
	})
	go trayIcon.Run()
	defer trayIcon.Destroy()

	loop.StartHotkeys(cfg.CaptureHotkey, cfg.RecordHotkey)

	// Handle SIGINT/SIGTERM
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
	}()

	if err := loop.Run(ctx); err != nil && err != context.Canceled {
		log.Printf("event loop stopped: %v", err)
	}
}
