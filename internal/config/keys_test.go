package config

import (
	"strings"
	"testing"
)

func TestLookup(t *testing.T) {
	if Lookup("cache-ttl-minutes") == nil {
		t.Error("expected to find cache-ttl-minutes")
	}
	if Lookup("  Audit-Enabled ") == nil {
		t.Error("expected case-insensitive, trimmed lookup to succeed")
	}
	if Lookup("no-such-key") != nil {
		t.Error("expected nil for unknown key")
	}
}

func TestKeySetters_RejectBadValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{"cache-ttl-minutes", "zero"},
		{"cache-ttl-minutes", "-5"},
		{"audit-enabled", "maybe"},
		{"audit-retention-days", "-1"},
		{"audit-storage-mode", "cloud"},
	}

	for _, tt := range tests {
		spec := Lookup(tt.key)
		if spec == nil {
			t.Fatalf("key %q not registered", tt.key)
		}
		var cfg Config
		if err := spec.Set(&cfg, tt.value); err == nil {
			t.Errorf("Set(%q, %q) succeeded, want error", tt.key, tt.value)
		}
	}
}

func TestKeyRoundTrip(t *testing.T) {
	var cfg Config

	for key, value := range map[string]string{
		"cache-ttl-minutes":    "45",
		"audit-enabled":        "false",
		"audit-retention-days": "30",
		"audit-storage-mode":   "network",
		"audit-network-path":   `\\srv\share`,
	} {
		spec := Lookup(key)
		if spec == nil {
			t.Fatalf("key %q not registered", key)
		}
		if err := spec.Set(&cfg, value); err != nil {
			t.Fatalf("Set(%q, %q) failed: %v", key, value, err)
		}
		if got := spec.Get(&cfg); got != value {
			t.Errorf("Get(%q) = %q, want %q", key, got, value)
		}
	}
}

func TestKeysHelp_ListsEveryKey(t *testing.T) {
	help := KeysHelp()
	for _, name := range KeyNames() {
		if !strings.Contains(help, name) {
			t.Errorf("KeysHelp missing %q", name)
		}
	}
}
