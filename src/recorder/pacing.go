package recorder

import "time"

// Pacer supplies the capture loop's notion of time. The loop only ever asks
// for "now" and "sleep", so tests can swap in a fake clock and run a
// multi-second recording schedule instantly.
type Pacer interface {
	Now() time.Time
	Sleep(d time.Duration)
}

// SystemPacer paces against the monotonic clock.
type SystemPacer struct{}

func (SystemPacer) Now() time.Time { return time.Now() }

// Sleep blocks for d with sub-millisecond accuracy. The OS timer alone wakes
// late, so the bulk of the wait goes to time.Sleep and the final millisecond
// is spun off the clock.
func (SystemPacer) Sleep(d time.Duration) {
	if d <= 0 {
		return
	}
	deadline := time.Now().Add(d)
	if coarse := d - time.Millisecond; coarse > 0 {
		time.Sleep(coarse)
	}
	for time.Now().Before(deadline) {
	}
}
