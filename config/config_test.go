package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	c := Load()
	require.Equal(t, defaultHost, c.Host)
	require.Equal(t, defaultPort, c.Port)
	require.Equal(t, "127.0.0.1:8080", c.Addr())
}

func TestLoadHonorsEnv(t *testing.T) {
	t.Setenv("HRAM_HOST", "10.0.0.5")
	t.Setenv("HRAM_PORT", "9999")
	t.Setenv("HRAM_MAX_CARTRIDGES", "not-a-number")

	c := Load()
	require.Equal(t, "10.0.0.5", c.Host)
	require.Equal(t, 9999, c.Port)
	require.Equal(t, defaultMaxCartridges, c.MaxCartridges) // bad value falls back
}
