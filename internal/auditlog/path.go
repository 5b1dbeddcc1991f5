package auditlog

import (
	"os"
	"path/filepath"
	"strings"

	"dsadmin/internal/database"
)

// Database file names. The shared name is distinct from the local one so a
// misconfigured network path pointing at an operator's own config directory
// cannot silently collide with the local store.
const (
	localDBFile  = "audit.db"
	sharedDBFile = "dsadmin-audit.db"
)

// Settings are the audit tunables, resolved from configuration at the time
// of each operation because the storage path may be reconfigured at runtime.
type Settings struct {
	Enabled       bool
	RetentionDays int

	// StorageMode is "local" or "network".
	StorageMode string

	// NetworkPath is the shared location used in network mode. It may name
	// either the database file or a directory to place it in.
	NetworkPath string

	// LocalDir overrides the default local directory. Intended for testing.
	LocalDir string
}

// resolvePath picks the database file for the current settings: the network
// path when network mode is configured, the per-user local default
// otherwise. Values that look like directories get the fixed filename
// appended.
func resolvePath(s Settings) (string, error) {
	if strings.EqualFold(s.StorageMode, "network") && s.NetworkPath != "" {
		if looksLikeDir(s.NetworkPath) {
			return filepath.Join(s.NetworkPath, sharedDBFile), nil
		}
		return s.NetworkPath, nil
	}

	dir := s.LocalDir
	if dir == "" {
		var err error
		dir, err = database.DefaultAuditDir()
		if err != nil {
			return "", err
		}
	}
	return filepath.Join(dir, localDBFile), nil
}

// looksLikeDir reports whether a configured path names a directory rather
// than a database file: it ends in a separator, exists as a directory, or
// has no file extension.
func looksLikeDir(path string) bool {
	if strings.HasSuffix(path, "/") || strings.HasSuffix(path, `\`) {
		return true
	}
	if info, err := os.Stat(path); err == nil && info.IsDir() {
		return true
	}
	return filepath.Ext(path) == ""
}
