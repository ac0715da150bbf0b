//go:build !windows

package main

// DPI awareness and monitor metrics are Windows concerns; elsewhere the
// display server hands out unscaled pixel coordinates already.

func enableDPIAwareness() {}

func logMonitorConfiguration() {}
