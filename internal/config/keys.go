package config

import (
	"fmt"
	"strconv"
	"strings"
)

// KeySpec describes a single configuration key.
type KeySpec struct {
	// Name is the CLI-facing key name (e.g. "cache-ttl-minutes").
	Name string

	// Description is a short human-readable explanation shown in help text.
	Description string

	// Get returns the current value for this key from a loaded Config.
	Get func(cfg *Config) string

	// Set applies a value for this key to the given Config (in memory only;
	// the caller is responsible for calling Save). Returns an error when the
	// value cannot be parsed for the key.
	Set func(cfg *Config, value string) error
}

// Keys is the authoritative list of all supported configuration keys.
// To add a new option: add a field to Config and append a KeySpec here.
var Keys = []KeySpec{
	{
		Name:        "cache-ttl-minutes",
		Description: "Minutes cached directory listings stay fresh (default 120)",
		Get: func(cfg *Config) string {
			return strconv.Itoa(cfg.CacheTTLMinutesOrDefault())
		},
		Set: func(cfg *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n <= 0 {
				return fmt.Errorf("cache-ttl-minutes must be a positive integer")
			}
			cfg.CacheTTLMinutes = n
			return nil
		},
	},
	{
		Name:        "audit-enabled",
		Description: "Whether administrative actions are recorded (true/false)",
		Get: func(cfg *Config) string {
			return strconv.FormatBool(cfg.AuditEnabledOrDefault())
		},
		Set: func(cfg *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("audit-enabled must be true or false")
			}
			cfg.AuditEnabled = &b
			return nil
		},
	},
	{
		Name:        "audit-retention-days",
		Description: "Days to keep audit records; 0 retains forever",
		Get: func(cfg *Config) string {
			return strconv.Itoa(cfg.AuditRetentionDays)
		},
		Set: func(cfg *Config, v string) error {
			n, err := strconv.Atoi(v)
			if err != nil || n < 0 {
				return fmt.Errorf("audit-retention-days must be a non-negative integer")
			}
			cfg.AuditRetentionDays = n
			return nil
		},
	},
	{
		Name:        "audit-storage-mode",
		Description: "Where the audit database lives: local or network",
		Get: func(cfg *Config) string {
			if cfg.AuditStorageMode == "" {
				return StorageModeLocal
			}
			return cfg.AuditStorageMode
		},
		Set: func(cfg *Config, v string) error {
			v = strings.ToLower(strings.TrimSpace(v))
			if v != StorageModeLocal && v != StorageModeNetwork {
				return fmt.Errorf("audit-storage-mode must be %q or %q", StorageModeLocal, StorageModeNetwork)
			}
			cfg.AuditStorageMode = v
			return nil
		},
	},
	{
		Name:        "audit-network-path",
		Description: "Shared path for the audit database in network mode",
		Get:         func(cfg *Config) string { return cfg.AuditNetworkPath },
		Set: func(cfg *Config, v string) error {
			cfg.AuditNetworkPath = strings.TrimSpace(v)
			return nil
		},
	},
}

// Lookup returns the KeySpec for the given name, or nil if not found.
// The name is matched case-insensitively after trimming whitespace.
func Lookup(name string) *KeySpec {
	normalized := strings.ToLower(strings.TrimSpace(name))
	for i := range Keys {
		if Keys[i].Name == normalized {
			return &Keys[i]
		}
	}
	return nil
}

// KeyNames returns the names of all registered keys.
func KeyNames() []string {
	names := make([]string, len(Keys))
	for i, k := range Keys {
		names[i] = k.Name
	}
	return names
}

// KeysHelp builds a formatted block listing all available keys and their
// descriptions, suitable for inclusion in Cobra Long help text.
func KeysHelp() string {
	if len(Keys) == 0 {
		return ""
	}

	maxLen := 0
	for _, k := range Keys {
		if len(k.Name) > maxLen {
			maxLen = len(k.Name)
		}
	}

	var b strings.Builder
	b.WriteString("Available keys:\n")
	for _, k := range Keys {
		fmt.Fprintf(&b, "  %-*s   %s\n", maxLen, k.Name, k.Description)
	}
	return b.String()
}
