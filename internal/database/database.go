// Package database provides the shared SQLite open helper for dsadmin's
// local stores.
//
// Every handle returned by Open carries the pragmas required for a database
// file that may be shared between processes (and, for the audit trail,
// between machines over a network path): WAL journaling, a busy timeout so
// writers wait out short locks instead of failing, and synchronous=NORMAL.
// The pragmas are part of the DSN, so the driver re-applies them on every
// new pool connection.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	appDir      = "dsadmin"
	cacheDBFile = "directory-cache.db"

	// busyTimeoutMs is how long a connection waits on a locked database
	// before giving up. Several seconds covers checkpoint pauses on a
	// shared network file.
	busyTimeoutMs = 5000
)

var cachePathOverride string

// SetCachePath overrides the default cache database path. Intended for testing.
func SetCachePath(p string) { cachePathOverride = p }

// ResetCachePath clears the cache path override. Intended for testing.
func ResetCachePath() { cachePathOverride = "" }

// DefaultCachePath returns the fixed per-user path of the directory cache
// database. Cached data is disposable, so it lives under the user cache
// directory rather than the config directory.
func DefaultCachePath() (string, error) {
	if cachePathOverride != "" {
		return cachePathOverride, nil
	}
	base, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("database: unable to determine cache directory: %w", err)
	}
	return filepath.Join(base, appDir, cacheDBFile), nil
}

// DefaultAuditDir returns the per-user directory that holds the local audit
// database.
func DefaultAuditDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("database: unable to determine config directory: %w", err)
	}
	return filepath.Join(base, appDir), nil
}

// DSN builds the SQLite connection string for path with the shared-access
// pragmas applied per connection.
func DSN(path string) string {
	return path +
		"?_pragma=journal_mode(WAL)" +
		fmt.Sprintf("&_pragma=busy_timeout(%d)", busyTimeoutMs) +
		"&_pragma=synchronous(NORMAL)"
}

// Open opens a SQLite database at the provided path, creating the parent
// directory if needed.
func Open(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("database: failed to create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", DSN(path))
	if err != nil {
		return nil, fmt.Errorf("database: failed to open database: %w", err)
	}
	return db, nil
}
