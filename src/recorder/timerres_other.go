//go:build !windows

package recorder

// Non-windows schedulers already honor short sleeps closely enough.
func raiseTimerResolution() func() {
	return func() {}
}
