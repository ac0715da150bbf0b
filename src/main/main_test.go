package main

import (
	"strings"
	"testing"
)

func TestResidentTooltip(t *testing.T) {
	tt := residentTooltip("Ctrl+Alt+S", "Ctrl+Alt+R")
	if !strings.Contains(tt, "Ctrl+Alt+S") || !strings.Contains(tt, "Ctrl+Alt+R") {
		t.Errorf("Tooltip %q does not mention both hotkeys", tt)
	}
}
