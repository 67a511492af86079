// Package config turns the persisted JSON document into the typed
// Configuration the monitor works with, and resolves the runtime Settings
// that say where that document lives.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Settings keys, shared by flags, environment (IPWATCH_*) and settings.yaml.
const (
	SettingConfig      = "config"
	SettingHistory     = "history"
	SettingLogLevel    = "log-level"
	SettingIPServices  = "ip-services"
	SettingDNSLookup   = "dns-lookup"
	SettingHTTPTimeout = "http-timeout"
)

// DefaultIPServices answer a plain GET with the caller's address as text.
var DefaultIPServices = []string{
	"https://ifconfig.me/ip",
	"https://api.ipify.org",
	"https://icanhazip.com",
}

// Settings are the process level knobs. They are not part of the document.
type Settings struct {
	ConfigPath string
	// HistoryPath is the SQLite file for change history; empty disables it.
	HistoryPath string
	LogLevel    string
	IPServices  []string
	DNSLookup   bool
	HTTPTimeout time.Duration
}

// Dir is the directory ipwatch keeps its files in by default.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		base = "."
	}
	return filepath.Join(base, "ipwatch")
}

// NewViper returns a viper instance with ipwatch defaults and environment
// binding. Flags are bound on top of it by the CLI.
func NewViper() *viper.Viper {
	v := viper.New()
	dir := Dir()

	v.SetDefault(SettingConfig, filepath.Join(dir, "config.json"))
	v.SetDefault(SettingHistory, filepath.Join(dir, "history.db"))
	v.SetDefault(SettingLogLevel, "info")
	v.SetDefault(SettingIPServices, DefaultIPServices)
	v.SetDefault(SettingDNSLookup, true)
	v.SetDefault(SettingHTTPTimeout, 10*time.Second)

	v.SetConfigName("settings")
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix("IPWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AllowEmptyEnv(true)
	v.AutomaticEnv()
	return v
}

// LoadSettings resolves Settings from v. A missing settings.yaml is not an
// error; a malformed one is.
func LoadSettings(v *viper.Viper) (*Settings, error) {
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read settings file: %w", err)
		}
	}

	s := &Settings{
		ConfigPath:  v.GetString(SettingConfig),
		HistoryPath: v.GetString(SettingHistory),
		LogLevel:    v.GetString(SettingLogLevel),
		IPServices:  v.GetStringSlice(SettingIPServices),
		DNSLookup:   v.GetBool(SettingDNSLookup),
		HTTPTimeout: v.GetDuration(SettingHTTPTimeout),
	}
	if s.ConfigPath == "" {
		return nil, fmt.Errorf("config path must not be empty")
	}
	if s.HTTPTimeout <= 0 {
		s.HTTPTimeout = 10 * time.Second
	}
	return s, nil
}
