// Package config handles daemon configuration
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	HTTPAddr    string
	Display     int    // display index to capture
	OCRWorkers  int    // recognition cluster size
	OCRLanguage string // tesseract language code
	OCRTimeout  time.Duration
	LayoutPath  string // empty means built-in template
	DataDir     string // roster, learned ban images, corrections
	BaselineDir string // bundled reference ban portraits
	DebugDir    string
	DebugDumps  bool          // persist crop pairs for offline tuning
	ActiveDelay time.Duration // pass cadence while a draft is tracked
	IdleDelay   time.Duration // pass cadence while waiting for a draft
	MapCooldown time.Duration // re-OCR cool-down for the map label
}

func Load() *Config {
	dataDir := getEnv("DRAFTLENS_DATA_DIR", defaultDataDir())
	return &Config{
		HTTPAddr:    getEnv("DRAFTLENS_HTTP_ADDR", ":8330"),
		Display:     getEnvInt("DRAFTLENS_DISPLAY", 0),
		OCRWorkers:  getEnvInt("DRAFTLENS_OCR_WORKERS", 4),
		OCRLanguage: getEnv("DRAFTLENS_OCR_LANG", "eng"),
		OCRTimeout:  getEnvDuration("DRAFTLENS_OCR_TIMEOUT", 10*time.Second),
		LayoutPath:  getEnv("DRAFTLENS_LAYOUT", ""),
		DataDir:     dataDir,
		BaselineDir: getEnv("DRAFTLENS_BASELINE_DIR", filepath.Join(dataDir, "heroes")),
		DebugDir:    getEnv("DRAFTLENS_DEBUG_DIR", filepath.Join(dataDir, "debug")),
		DebugDumps:  getEnvBool("DRAFTLENS_DEBUG_DUMPS", false),
		ActiveDelay: getEnvDuration("DRAFTLENS_ACTIVE_DELAY", 100*time.Millisecond),
		IdleDelay:   getEnvDuration("DRAFTLENS_IDLE_DELAY", time.Second),
		MapCooldown: getEnvDuration("DRAFTLENS_MAP_COOLDOWN", 20*time.Second),
	}
}

func defaultDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".draftlens"
	}
	return filepath.Join(home, ".draftlens")
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		return v == "true" || v == "1"
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
