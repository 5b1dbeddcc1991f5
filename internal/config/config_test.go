package config

import (
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadFrom_MissingFileReturnsZeroConfig(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "config.json"))
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if diff := cmp.Diff(&Config{}, cfg); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	enabled := false
	want := &Config{
		CacheTTLMinutes:    30,
		AuditEnabled:       &enabled,
		AuditRetentionDays: 90,
		AuditStorageMode:   StorageModeNetwork,
		AuditNetworkPath:   `\\fileserver\admin\audit`,
	}

	if err := want.SaveTo(path); err != nil {
		t.Fatalf("SaveTo failed: %v", err)
	}

	got, err := LoadFrom(path)
	if err != nil {
		t.Fatalf("LoadFrom failed: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaults(t *testing.T) {
	var cfg Config

	if got := cfg.CacheTTLMinutesOrDefault(); got != DefaultCacheTTLMinutes {
		t.Errorf("expected default TTL %d, got %d", DefaultCacheTTLMinutes, got)
	}
	if !cfg.AuditEnabledOrDefault() {
		t.Error("expected audit enabled by default")
	}
}
