// Package config handles persistent user configuration for dsadmin.
//
// Configuration is stored as JSON at ~/.config/dsadmin/config.json (or the
// platform-equivalent path returned by os.UserConfigDir).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

const (
	appDir   = "dsadmin"
	fileName = "config.json"
)

// Storage modes for the audit database.
const (
	StorageModeLocal   = "local"
	StorageModeNetwork = "network"
)

// DefaultCacheTTLMinutes is how long cached directory listings stay fresh
// when the user has not configured a TTL.
const DefaultCacheTTLMinutes = 120

// pathOverride, when non-empty, replaces the default config file path.
// Intended for testing. Use SetPath / ResetPath to manage.
var pathOverride string

// SetPath overrides the config file path. Intended for testing.
func SetPath(p string) { pathOverride = p }

// ResetPath clears the path override, reverting to the default. Intended for testing.
func ResetPath() { pathOverride = "" }

// Config holds user preferences that persist across invocations.
type Config struct {
	// CacheTTLMinutes bounds how long cached directory listings are served
	// before the next read falls through to the directory service.
	CacheTTLMinutes int `json:"cache_ttl_minutes,omitempty"`

	// AuditEnabled toggles audit logging. Defaults to true.
	AuditEnabled *bool `json:"audit_enabled,omitempty"`

	// AuditRetentionDays is the age beyond which audit records are purged.
	// Zero or negative means retain forever.
	AuditRetentionDays int `json:"audit_retention_days,omitempty"`

	// AuditStorageMode selects "local" or "network" audit storage.
	AuditStorageMode string `json:"audit_storage_mode,omitempty"`

	// AuditNetworkPath is the shared path (e.g. a UNC share) used when
	// AuditStorageMode is "network". May name a directory or a file.
	AuditNetworkPath string `json:"audit_network_path,omitempty"`
}

// CacheTTLMinutesOrDefault returns the configured cache TTL, falling back
// to DefaultCacheTTLMinutes when unset or invalid.
func (c *Config) CacheTTLMinutesOrDefault() int {
	if c == nil || c.CacheTTLMinutes <= 0 {
		return DefaultCacheTTLMinutes
	}
	return c.CacheTTLMinutes
}

// AuditEnabledOrDefault reports whether audit logging is on. Unset means on.
func (c *Config) AuditEnabledOrDefault() bool {
	if c == nil || c.AuditEnabled == nil {
		return true
	}
	return *c.AuditEnabled
}

// Path returns the absolute path to the config file.
// If SetPath has been called, that value is returned instead.
func Path() (string, error) {
	if pathOverride != "" {
		return pathOverride, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("config: unable to determine config directory: %w", err)
	}
	return filepath.Join(base, appDir, fileName), nil
}

// Load reads the config file from disk and returns the parsed Config.
// If the file does not exist, a zero-value Config is returned (not an error).
func Load() (*Config, error) {
	return loadFrom("")
}

func loadFrom(path string) (*Config, error) {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return nil, err
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return &Config{}, nil
		}
		return nil, fmt.Errorf("config: failed to read %s: %w", path, err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	return &cfg, nil
}

// Save writes the config to disk, creating the parent directory if needed.
func (c *Config) Save() error {
	return c.saveTo("")
}

func (c *Config) saveTo(path string) error {
	if path == "" {
		var err error
		path, err = Path()
		if err != nil {
			return err
		}
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("config: failed to create directory %s: %w", dir, err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("config: failed to marshal config: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: failed to write %s: %w", path, err)
	}

	return nil
}

// LoadFrom reads the config from the given path. Intended for testing.
func LoadFrom(path string) (*Config, error) {
	return loadFrom(path)
}

// SaveTo writes the config to the given path. Intended for testing.
func (c *Config) SaveTo(path string) error {
	return c.saveTo(path)
}
