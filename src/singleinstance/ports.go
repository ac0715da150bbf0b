package singleinstance

import (
	"os"
	"strconv"
)

// Default loopback port range the resident binds and clients scan.
const (
	defaultPortStart = 49500
	defaultPortEnd   = 49550
)

func envPort(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

// getPortRange returns the effective TCP port range, inclusive. Overridable
// via SINGLEINSTANCE_PORT_START / SINGLEINSTANCE_PORT_END; values outside
// [1024, 65535] are clamped and an inverted range is swapped.
func getPortRange() (int, int) {
	start := envPort("SINGLEINSTANCE_PORT_START", defaultPortStart)
	end := envPort("SINGLEINSTANCE_PORT_END", defaultPortEnd)
	if start < 1024 {
		start = 1024
	}
	if end > 65535 {
		end = 65535
	}
	if end < start {
		start, end = end, start
	}
	return start, end
}

// GetPortRangeForDebug exposes the effective range for startup logging and
// the resident's pre-flight bind.
func GetPortRangeForDebug() (int, int) { return getPortRange() }
