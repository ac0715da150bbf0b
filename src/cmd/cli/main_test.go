package main

import (
	"testing"
)

func TestNormalizeLegacyArgs(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		out  []string
	}{
		{
			name: "Normalizes long single dash flags",
			in:   []string{"screen-capture", "snap", "-output", "/tmp/caps", "-clipboard"},
			out:  []string{"screen-capture", "snap", "--output", "/tmp/caps", "--clipboard"},
		},
		{
			name: "Normalizes equals form",
			in:   []string{"screen-capture", "record", "-fps=60", "-duration=10s"},
			out:  []string{"screen-capture", "record", "--fps=60", "--duration=10s"},
		},
		{
			name: "Leaves double dash and short flags unchanged",
			in:   []string{"screen-capture", "snap", "--verbose", "-v", "-o", "/tmp"},
			out:  []string{"screen-capture", "snap", "--verbose", "-v", "-o", "/tmp"},
		},
		{
			name: "Leaves single letter geometry flags unchanged",
			in:   []string{"screen-capture", "snap", "-x", "10", "-width=200"},
			out:  []string{"screen-capture", "snap", "-x", "10", "--width=200"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizeLegacyArgs(tt.in)
			if len(got) != len(tt.out) {
				t.Fatalf("Expected len=%d, got %d", len(tt.out), len(got))
			}
			for i := range got {
				if got[i] != tt.out[i] {
					t.Fatalf("Expected arg[%d]=%q, got %q", i, tt.out[i], got[i])
				}
			}
		})
	}
}

func TestGeometryRegion(t *testing.T) {
	g := geometry{x: 10, y: 20, width: 300, height: 200, display: -1}
	if !g.headless() {
		t.Fatal("Explicit geometry should be headless")
	}
	region, err := g.region()
	if err != nil {
		t.Fatalf("region failed: %v", err)
	}
	if region.X != 10 || region.Y != 20 || region.Width != 300 || region.Height != 200 {
		t.Errorf("region = %+v", region)
	}
}

func TestGeometryRejectsPartialRectangle(t *testing.T) {
	g := geometry{width: 300, display: -1}
	if _, err := g.region(); err == nil {
		t.Error("Expected error for width without height")
	}
}

func TestGeometryRejectsNegativeOrigin(t *testing.T) {
	g := geometry{x: -10, y: 0, width: 300, height: 200, display: -1}
	if _, err := g.region(); err == nil {
		t.Error("Expected error for negative origin")
	}
}

func TestGeometryDefaultIsInteractive(t *testing.T) {
	g := geometry{display: -1}
	if g.headless() {
		t.Error("No flags should mean interactive selection")
	}
}

func TestCommandTree(t *testing.T) {
	root := newRootCmd()
	for _, name := range []string{"snap", "record"} {
		cmd, _, err := root.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("Subcommand %q not found: %v", name, err)
		}
	}
}
