package config

import (
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"OUTPUT_DIR", "DEFAULT_FPS", "CAPTURE_HOTKEY", "RECORD_HOTKEY",
		"ENABLE_FILE_LOGGING", "COPY_TO_CLIPBOARD", "STOP_TIMEOUT_SEC", EnvPathVar,
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.FPS != DefaultFPS {
		t.Errorf("FPS = %g, want %g", cfg.FPS, DefaultFPS)
	}
	if cfg.CaptureHotkey != DefaultCaptureHotkey {
		t.Errorf("CaptureHotkey = %q, want %q", cfg.CaptureHotkey, DefaultCaptureHotkey)
	}
	if cfg.RecordHotkey != DefaultRecordHotkey {
		t.Errorf("RecordHotkey = %q, want %q", cfg.RecordHotkey, DefaultRecordHotkey)
	}
	if cfg.StopTimeoutSec != DefaultStopTimeoutSec {
		t.Errorf("StopTimeoutSec = %d, want %d", cfg.StopTimeoutSec, DefaultStopTimeoutSec)
	}
	if !cfg.CopyToClipboard {
		t.Error("CopyToClipboard should default to true")
	}
	if cfg.EnableFileLogging {
		t.Error("EnableFileLogging should default to false")
	}
	if cfg.OutputDir == "" {
		t.Error("OutputDir must never be empty")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("OUTPUT_DIR", "/tmp/captures")
	t.Setenv("DEFAULT_FPS", "24")
	t.Setenv("CAPTURE_HOTKEY", "Ctrl+Shift+4")
	t.Setenv("RECORD_HOTKEY", "Ctrl+Shift+5")
	t.Setenv("ENABLE_FILE_LOGGING", "TRUE")
	t.Setenv("COPY_TO_CLIPBOARD", "false")
	t.Setenv("STOP_TIMEOUT_SEC", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.OutputDir != "/tmp/captures" {
		t.Errorf("OutputDir = %q, want /tmp/captures", cfg.OutputDir)
	}
	if cfg.FPS != 24 {
		t.Errorf("FPS = %g, want 24", cfg.FPS)
	}
	if cfg.CaptureHotkey != "Ctrl+Shift+4" {
		t.Errorf("CaptureHotkey = %q", cfg.CaptureHotkey)
	}
	if cfg.RecordHotkey != "Ctrl+Shift+5" {
		t.Errorf("RecordHotkey = %q", cfg.RecordHotkey)
	}
	if !cfg.EnableFileLogging {
		t.Error("Expected EnableFileLogging true for ENABLE_FILE_LOGGING=TRUE")
	}
	if cfg.CopyToClipboard {
		t.Error("Expected CopyToClipboard false")
	}
	if cfg.StopTimeoutSec != 10 {
		t.Errorf("StopTimeoutSec = %d, want 10", cfg.StopTimeoutSec)
	}
}

func TestLoadIgnoresInvalidNumbers(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"non-numeric fps", "DEFAULT_FPS", "fast"},
		{"negative fps", "DEFAULT_FPS", "-10"},
		{"zero fps", "DEFAULT_FPS", "0"},
		{"non-numeric timeout", "STOP_TIMEOUT_SEC", "soon"},
		{"zero timeout", "STOP_TIMEOUT_SEC", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(tt.key, tt.value)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if cfg.FPS != DefaultFPS {
				t.Errorf("FPS = %g, want default %g", cfg.FPS, DefaultFPS)
			}
			if cfg.StopTimeoutSec != DefaultStopTimeoutSec {
				t.Errorf("StopTimeoutSec = %d, want default %d", cfg.StopTimeoutSec, DefaultStopTimeoutSec)
			}
		})
	}
}

func TestLoadSnapsFPSToNearestChoice(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  float64
	}{
		{"below lowest choice", "5", 15},
		{"between choices", "25", 24},
		{"exact choice", "30", 30},
		{"above highest choice", "144", 60},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("DEFAULT_FPS", tt.value)

			cfg, err := Load()
			if err != nil {
				t.Fatalf("Load failed: %v", err)
			}
			if cfg.FPS != tt.want {
				t.Errorf("FPS = %g, want %g for DEFAULT_FPS=%s", cfg.FPS, tt.want, tt.value)
			}
		})
	}
}

func TestLoadOptionsTakePrecedence(t *testing.T) {
	clearEnv(t)
	t.Setenv("OUTPUT_DIR", "/tmp/from-env")
	t.Setenv("DEFAULT_FPS", "24")

	cfg, err := LoadWithOptions(LoadOptions{OutputDirOverride: "/tmp/from-flag", FPSOverride: 60})
	if err != nil {
		t.Fatalf("LoadWithOptions failed: %v", err)
	}

	if cfg.OutputDir != "/tmp/from-flag" {
		t.Errorf("OutputDir = %q, want the override", cfg.OutputDir)
	}
	if cfg.FPS != 60 {
		t.Errorf("FPS = %g, want the override 60", cfg.FPS)
	}

	// Explicit overrides are not snapped to the tray choices.
	cfg, err = LoadWithOptions(LoadOptions{FPSOverride: 25})
	if err != nil {
		t.Fatalf("LoadWithOptions failed: %v", err)
	}
	if cfg.FPS != 25 {
		t.Errorf("FPS = %g, want the override 25 untouched", cfg.FPS)
	}
}
