package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("HOME", t.TempDir())

	s, err := LoadSettings(NewViper())
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(Dir(), "config.json"), s.ConfigPath)
	assert.Equal(t, filepath.Join(Dir(), "history.db"), s.HistoryPath)
	assert.Equal(t, "info", s.LogLevel)
	assert.Equal(t, DefaultIPServices, s.IPServices)
	assert.True(t, s.DNSLookup)
	assert.Equal(t, 10*time.Second, s.HTTPTimeout)
}

func TestLoadSettingsEnvironment(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("IPWATCH_CONFIG", "/tmp/ipwatch-test/config.json")
	t.Setenv("IPWATCH_LOG_LEVEL", "debug")
	t.Setenv("IPWATCH_DNS_LOOKUP", "false")
	t.Setenv("IPWATCH_HISTORY", "")

	s, err := LoadSettings(NewViper())
	require.NoError(t, err)

	assert.Equal(t, "/tmp/ipwatch-test/config.json", s.ConfigPath)
	assert.Equal(t, "debug", s.LogLevel)
	assert.False(t, s.DNSLookup)
	assert.Empty(t, s.HistoryPath)
}

func TestLoadSettingsFile(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)
	dir := filepath.Join(base, "ipwatch")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.yaml"), []byte(
		"log-level: warn\nhttp-timeout: 3s\nip-services:\n  - http://127.0.0.1:9/ip\n"), 0o600))

	s, err := LoadSettings(NewViper())
	require.NoError(t, err)

	assert.Equal(t, "warn", s.LogLevel)
	assert.Equal(t, 3*time.Second, s.HTTPTimeout)
	assert.Equal(t, []string{"http://127.0.0.1:9/ip"}, s.IPServices)
}

func TestLoadSettingsMalformedFile(t *testing.T) {
	base := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", base)
	dir := filepath.Join(base, "ipwatch")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "settings.yaml"), []byte("log-level: [unclosed\n"), 0o600))

	_, err := LoadSettings(NewViper())
	assert.Error(t, err)
}
