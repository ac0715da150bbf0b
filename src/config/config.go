package config

import (
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// EnvPathVar points at an alternate config file when no .env sits next to
// the executable.
const EnvPathVar = "SCREEN_CAPTURE_TOOL"

const (
	DefaultFPS            = 30.0
	DefaultCaptureHotkey  = "Ctrl+Alt+S"
	DefaultRecordHotkey   = "Ctrl+Alt+R"
	DefaultStopTimeoutSec = 5
)

// FPSChoices are the rates offered in the tray menu. The recorder itself
// accepts any positive rate.
var FPSChoices = []float64{15, 24, 30, 60}

type LoadOptions struct {
	OutputDirOverride string
	FPSOverride       float64
}

type Config struct {
	OutputDir         string
	FPS               float64
	CaptureHotkey     string
	RecordHotkey      string
	EnableFileLogging bool
	CopyToClipboard   bool
	StopTimeoutSec    int
}

func Load() (*Config, error) {
	return LoadWithOptions(LoadOptions{})
}

func LoadWithOptions(opts LoadOptions) (*Config, error) {
	// Load configuration from sources in priority order:
	// 1) .env in the application (executable) directory
	// 2) If not found, use SCREEN_CAPTURE_TOOL env var as a path to a config file
	if envPath := resolveEnvPath(); envPath != "" {
		_ = godotenv.Load(envPath)
	}

	cfg := &Config{
		OutputDir:         resolveOutputDir(opts),
		FPS:               resolveFPS(opts),
		CaptureHotkey:     getEnvWithDefault("CAPTURE_HOTKEY", DefaultCaptureHotkey),
		RecordHotkey:      getEnvWithDefault("RECORD_HOTKEY", DefaultRecordHotkey),
		EnableFileLogging: strings.ToLower(os.Getenv("ENABLE_FILE_LOGGING")) == "true",
		CopyToClipboard:   strings.ToLower(getEnvWithDefault("COPY_TO_CLIPBOARD", "true")) == "true",
		StopTimeoutSec:    resolveStopTimeout(),
	}

	return cfg, nil
}

func resolveEnvPath() string {
	execPath, err := os.Executable()
	if err != nil {
		return ""
	}

	exeEnv := filepath.Join(filepath.Dir(execPath), ".env")
	if _, err := os.Stat(exeEnv); err == nil {
		return exeEnv
	}

	if alt := os.Getenv(EnvPathVar); alt != "" {
		if _, err := os.Stat(alt); err == nil {
			return alt
		}
	}

	return ""
}

func resolveOutputDir(opts LoadOptions) string {
	if dir := strings.TrimSpace(opts.OutputDirOverride); dir != "" {
		return dir
	}
	if dir := strings.TrimSpace(os.Getenv("OUTPUT_DIR")); dir != "" {
		return dir
	}
	// Captures land where the tool was started from when nothing is set.
	if wd, err := os.Getwd(); err == nil {
		return wd
	}
	return "."
}

func resolveFPS(opts LoadOptions) float64 {
	// An explicit override (the CLI's --fps) passes through untouched; the
	// recorder takes any positive rate. The .env default drives the tray's
	// frame-rate menu, so it snaps to the nearest offered choice.
	if opts.FPSOverride > 0 {
		return opts.FPSOverride
	}
	if v := os.Getenv("DEFAULT_FPS"); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n > 0 {
			return nearestFPSChoice(n)
		}
	}
	return DefaultFPS
}

func nearestFPSChoice(fps float64) float64 {
	best := FPSChoices[0]
	for _, choice := range FPSChoices[1:] {
		if math.Abs(choice-fps) < math.Abs(best-fps) {
			best = choice
		}
	}
	return best
}

func resolveStopTimeout() int {
	if v := os.Getenv("STOP_TIMEOUT_SEC"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return DefaultStopTimeoutSec
}

func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
