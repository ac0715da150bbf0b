package tray

import (
	"fmt"
	"strings"
	"sync"

	"github.com/getlantern/systray"

	"screen-capture-tool/src/notification"
)

// Config wires tray menu actions back into the application. Callbacks run on
// systray's internal goroutine; they should hand off to the event loop and
// return quickly.
type Config struct {
	Title      string
	Tooltip    string
	FPS        float64
	FPSChoices []float64
	OnSnap     func()
	OnRecord   func()
	OnFPS      func(fps float64)
	OnExit     func()
}

// Tray is the system tray icon plus its menu.
type Tray struct {
	cfg Config
}

var (
	mu          sync.Mutex
	ready       bool
	baseTooltip string
	aboutExtra  []string
	recordItem  *systray.MenuItem
)

func New(cfg Config) (*Tray, error) {
	if cfg.Title == "" {
		cfg.Title = "Screen Capture Tool"
	}
	return &Tray{cfg: cfg}, nil
}

// Run blocks inside the systray event loop until Destroy or Quit.
func (t *Tray) Run() {
	systray.Run(t.onReady, t.onExit)
}

// Destroy tears the icon down.
func (t *Tray) Destroy() {
	systray.Quit()
}

func (t *Tray) onReady() {
	if icon := Icon(); len(icon) > 0 {
		systray.SetIcon(icon)
	}
	systray.SetTitle(t.cfg.Title)
	systray.SetTooltip(t.cfg.Tooltip)

	mu.Lock()
	baseTooltip = t.cfg.Tooltip
	ready = true
	mu.Unlock()

	mSnap := systray.AddMenuItem("Take Screenshot", "Select a region and save it as PNG")
	mRecord := systray.AddMenuItem("Start Recording", "Select a region and record it to MP4")
	mu.Lock()
	recordItem = mRecord
	mu.Unlock()

	mFPS := systray.AddMenuItem("Frame Rate", "Recording frame rate")
	fpsItems := make([]*systray.MenuItem, len(t.cfg.FPSChoices))
	for i, fps := range t.cfg.FPSChoices {
		item := mFPS.AddSubMenuItemCheckbox(fmt.Sprintf("%g fps", fps), "", fps == t.cfg.FPS)
		fpsItems[i] = item
		go t.watchFPSItem(fpsItems, i)
	}

	systray.AddSeparator()
	mAbout := systray.AddMenuItem("About", "About this tool")
	mQuit := systray.AddMenuItem("Quit", "Quit the application")

	go func() {
		for {
			select {
			case <-mSnap.ClickedCh:
				if t.cfg.OnSnap != nil {
					t.cfg.OnSnap()
				}
			case <-mRecord.ClickedCh:
				if t.cfg.OnRecord != nil {
					t.cfg.OnRecord()
				}
			case <-mAbout.ClickedCh:
				t.showAbout()
			case <-mQuit.ClickedCh:
				systray.Quit()
			}
		}
	}()
}

func (t *Tray) watchFPSItem(items []*systray.MenuItem, idx int) {
	for range items[idx].ClickedCh {
		for j, item := range items {
			if j == idx {
				item.Check()
			} else {
				item.Uncheck()
			}
		}
		if t.cfg.OnFPS != nil {
			t.cfg.OnFPS(t.cfg.FPSChoices[idx])
		}
	}
}

func (t *Tray) showAbout() {
	lines := []string{t.cfg.Title, "Region screenshots and MP4 screen recordings."}
	mu.Lock()
	lines = append(lines, aboutExtra...)
	mu.Unlock()
	notification.Notify("About", strings.Join(lines, "\n"))
}

func (t *Tray) onExit() {
	mu.Lock()
	ready = false
	recordItem = nil
	mu.Unlock()
	if t.cfg.OnExit != nil {
		t.cfg.OnExit()
	}
}

// UpdateTooltip replaces the tray tooltip, used for the recording timer.
func UpdateTooltip(tooltip string) {
	mu.Lock()
	ok := ready
	mu.Unlock()
	if ok {
		systray.SetTooltip(tooltip)
	}
}

// ResetTooltip restores the tooltip configured at startup.
func ResetTooltip() {
	mu.Lock()
	tt := baseTooltip
	ok := ready
	mu.Unlock()
	if ok {
		systray.SetTooltip(tt)
	}
}

// SetRecording flips the record menu entry between start and stop.
func SetRecording(active bool) {
	mu.Lock()
	item := recordItem
	mu.Unlock()
	if item == nil {
		return
	}
	if active {
		item.SetTitle("Stop Recording")
	} else {
		item.SetTitle("Start Recording")
	}
}

// SetAboutExtra appends a line to the About notice, e.g. hotkeys or the
// resident TCP port.
func SetAboutExtra(line string) {
	mu.Lock()
	aboutExtra = append(aboutExtra, line)
	mu.Unlock()
}
