// Package config resolves the driver's environment-sourced settings:
// the HRAM server's address, device geometry, and a default cache size
// for cmd/hramctl. Every lookup follows the same check-env-else-default
// idiom, never failing on an unset variable.
package config

import (
	"fmt"
	"os"
	"strconv"
)

const (
	defaultHost                  = "127.0.0.1"
	defaultPort                  = 8080
	defaultMaxCartridges         = 16
	defaultMaxFramesPerCartridge = 1024
)

// Config is the resolved set of environment-driven settings.
type Config struct {
	Host                  string
	Port                  int
	MaxCartridges         int
	MaxFramesPerCartridge int
	// CacheFrames is a convenience default for cmd/hramctl. The fs
	// package's SetCacheSize remains mandatory regardless of this value.
	CacheFrames int
}

// Load reads HRAM_HOST, HRAM_PORT, HRAM_MAX_CARTRIDGES,
// HRAM_MAX_FRAMES_PER_CARTRIDGE, and HRAM_CACHE_FRAMES from the
// environment, falling back to compiled-in defaults.
func Load() Config {
	return Config{
		Host:                  getenvString("HRAM_HOST", defaultHost),
		Port:                  getenvInt("HRAM_PORT", defaultPort),
		MaxCartridges:         getenvInt("HRAM_MAX_CARTRIDGES", defaultMaxCartridges),
		MaxFramesPerCartridge: getenvInt("HRAM_MAX_FRAMES_PER_CARTRIDGE", defaultMaxFramesPerCartridge),
		CacheFrames:           getenvInt("HRAM_CACHE_FRAMES", 0),
	}
}

// Addr formats the host:port pair transport.New expects.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func getenvString(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
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
