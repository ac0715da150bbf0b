//go:build windows

package recorder

import "golang.org/x/sys/windows"

var (
	winmm               = windows.NewLazySystemDLL("winmm.dll")
	procTimeBeginPeriod = winmm.NewProc("timeBeginPeriod")
	procTimeEndPeriod   = winmm.NewProc("timeEndPeriod")
)

// raiseTimerResolution requests 1 ms scheduler ticks while a recording runs.
// Windows wakes sleeps on a ~15.6 ms boundary otherwise, which is far too
// coarse for frame pacing. The returned func restores the previous rate.
func raiseTimerResolution() func() {
	procTimeBeginPeriod.Call(1)
	return func() { procTimeEndPeriod.Call(1) }
}
