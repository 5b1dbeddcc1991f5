// Package dircache provides a TTL-bounded, read-through SQLite cache of
// directory listings (principals and groups).
//
// The cache is best-effort by contract: no public operation ever surfaces a
// storage error. Reads degrade to a "no data" result so the caller falls
// through to the directory service, and writes log failures and move on.
// The backing database lives at a fixed per-user local path and is wiped
// whenever its schema version does not match SchemaVersion.
package dircache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"dsadmin/internal/database"
	"dsadmin/internal/directory"
)

// Cache is a TTL-bounded cache of directory listings backed by a local
// SQLite database. The zero value is not usable; construct with Open or
// OpenAt.
type Cache struct {
	db     *sql.DB
	ttl    time.Duration
	logger zerolog.Logger

	// now is stubbed in tests to control TTL expiry.
	now func() time.Time
}

// BucketStats describes one cached collection for display purposes.
type BucketStats struct {
	// LastRefresh is nil when the bucket has never been refreshed.
	LastRefresh *time.Time
	ItemCount   int
}

// Stats reports per-bucket cache state.
type Stats struct {
	Principals BucketStats
	Groups     BucketStats
}

// Open creates or opens the cache at the default per-user path.
func Open(ttl time.Duration, logger zerolog.Logger) (*Cache, error) {
	path, err := database.DefaultCachePath()
	if err != nil {
		return nil, fmt.Errorf("dircache: %w", err)
	}
	return OpenAt(path, ttl, logger)
}

// OpenAt creates or opens the cache database at the given path, ensuring
// the schema exists and matches SchemaVersion.
func OpenAt(path string, ttl time.Duration, logger zerolog.Logger) (*Cache, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, fmt.Errorf("dircache: %w", err)
	}

	c := &Cache{db: db, ttl: ttl, logger: logger, now: time.Now}
	if err := c.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

// Close releases database resources.
func (c *Cache) Close() error {
	return c.db.Close()
}

// ensureSchema creates the tables and enforces the schema version marker.
// A missing or mismatched version wipes every table, not just the changed
// one, before stamping the current version.
func (c *Cache) ensureSchema() error {
	if _, err := c.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("dircache: migration failed: %w", err)
	}

	var stored int
	err := c.db.QueryRow(`SELECT version FROM schema_info WHERE id = 1`).Scan(&stored)
	switch {
	case err == sql.ErrNoRows:
		stored = 0
	case err != nil:
		return fmt.Errorf("dircache: schema version check failed: %w", err)
	}

	if stored == SchemaVersion {
		return nil
	}

	if stored != 0 {
		c.logger.Info().
			Int("stored", stored).
			Int("current", SchemaVersion).
			Msg("cache schema version mismatch, resetting store")
	}
	return c.reset()
}

// reset drops and recreates the entire store, then writes the version marker.
func (c *Cache) reset() error {
	for _, table := range cacheTables {
		if _, err := c.db.Exec(`DROP TABLE IF EXISTS ` + table); err != nil {
			return fmt.Errorf("dircache: reset failed dropping %s: %w", table, err)
		}
	}
	if _, err := c.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("dircache: reset migration failed: %w", err)
	}
	if _, err := c.db.Exec(`INSERT INTO schema_info (id, version) VALUES (1, ?)`, SchemaVersion); err != nil {
		return fmt.Errorf("dircache: writing schema version failed: %w", err)
	}
	return nil
}

// Principals returns the cached principal collection. ok is false on a cache
// miss: metadata absent, data older than the TTL, an empty table, or any
// storage failure. The caller is expected to fall through to the directory
// service and write the result back via SetPrincipals.
func (c *Cache) Principals() (principals []directory.Principal, ok bool) {
	if !c.fresh(BucketPrincipals) {
		return nil, false
	}

	principals, err := c.loadPrincipals()
	if err != nil {
		c.logger.Warn().Err(err).Msg("cache read failed, treating as miss")
		return nil, false
	}
	if len(principals) == 0 {
		// An empty cached directory is never meaningful; treat it as a miss.
		return nil, false
	}
	return principals, true
}

// Groups returns the cached group collection, with the same miss semantics
// as Principals.
func (c *Cache) Groups() (groups []directory.Group, ok bool) {
	if !c.fresh(BucketGroups) {
		return nil, false
	}

	groups, err := c.loadGroups()
	if err != nil {
		c.logger.Warn().Err(err).Msg("cache read failed, treating as miss")
		return nil, false
	}
	if len(groups) == 0 {
		return nil, false
	}
	return groups, true
}

// SetPrincipals replaces the cached principal collection wholesale and
// stamps the bucket metadata. The delete, inserts, and metadata upsert run
// inside one transaction so a reader never observes a half-replaced table.
// Failures are logged and swallowed.
func (c *Cache) SetPrincipals(principals []directory.Principal) {
	if err := c.replacePrincipals(principals); err != nil {
		c.logger.Warn().Err(err).Int("count", len(principals)).Msg("cache write failed")
	}
}

// SetGroups replaces the cached group collection wholesale, with the same
// semantics as SetPrincipals.
func (c *Cache) SetGroups(groups []directory.Group) {
	if err := c.replaceGroups(groups); err != nil {
		c.logger.Warn().Err(err).Int("count", len(groups)).Msg("cache write failed")
	}
}

// SetPrincipal upserts a single principal without touching the bucket
// metadata or any other row. Used when one entity is known to have changed
// and a full refresh would be wasteful. Failures are logged and swallowed.
func (c *Cache) SetPrincipal(p directory.Principal) {
	if err := c.upsertPrincipal(p); err != nil {
		c.logger.Warn().Err(err).Str("username", p.Username).Msg("cache patch failed")
	}
}

// Clear removes every cached row and all metadata. Called after any
// directory mutation that makes the snapshot stale. Failures are logged
// and swallowed.
func (c *Cache) Clear() {
	_, err := c.db.Exec(`
		DELETE FROM cached_principals;
		DELETE FROM cached_groups;
		DELETE FROM cache_metadata;
	`)
	if err != nil {
		c.logger.Warn().Err(err).Msg("cache clear failed")
	}
}

// Valid reports whether the named bucket holds fresh data, without loading
// it. Buckets are BucketPrincipals and BucketGroups.
func (c *Cache) Valid(bucket string) bool {
	return c.fresh(bucket)
}

// GetStats returns per-bucket refresh timestamps and item counts for
// display. Absent metadata yields nil/zero values, never an error.
func (c *Cache) GetStats() Stats {
	return Stats{
		Principals: c.bucketStats(BucketPrincipals),
		Groups:     c.bucketStats(BucketGroups),
	}
}

// fresh reports whether bucket metadata exists and is younger than the TTL.
func (c *Cache) fresh(bucket string) bool {
	refreshed, _, err := c.metadata(bucket)
	if err != nil {
		if err != sql.ErrNoRows {
			c.logger.Warn().Err(err).Str("bucket", bucket).Msg("cache metadata read failed")
		}
		return false
	}
	return c.now().Sub(refreshed) < c.ttl
}

func (c *Cache) metadata(bucket string) (lastRefresh time.Time, itemCount int, err error) {
	var refreshStr string
	err = c.db.QueryRow(`
		SELECT last_refresh, item_count FROM cache_metadata WHERE bucket = ?`,
		bucket).Scan(&refreshStr, &itemCount)
	if err != nil {
		return time.Time{}, 0, err
	}

	lastRefresh, err = time.Parse(time.RFC3339Nano, refreshStr)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("dircache: malformed refresh timestamp %q: %w", refreshStr, err)
	}
	return lastRefresh, itemCount, nil
}

func (c *Cache) bucketStats(bucket string) BucketStats {
	refreshed, count, err := c.metadata(bucket)
	if err != nil {
		return BucketStats{}
	}
	return BucketStats{LastRefresh: &refreshed, ItemCount: count}
}

func (c *Cache) replacePrincipals(principals []directory.Principal) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("dircache: begin failed: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM cached_principals`); err != nil {
		return fmt.Errorf("dircache: delete failed: %w", err)
	}

	nowStr := c.now().UTC().Format(time.RFC3339Nano)
	for _, p := range principals {
		if err := insertPrincipal(tx, p, nowStr); err != nil {
			return err
		}
	}

	if err := upsertMetadata(tx, BucketPrincipals, nowStr, len(principals)); err != nil {
		return err
	}
	return tx.Commit()
}

func (c *Cache) replaceGroups(groups []directory.Group) error {
	tx, err := c.db.Begin()
	if err != nil {
		return fmt.Errorf("dircache: begin failed: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM cached_groups`); err != nil {
		return fmt.Errorf("dircache: delete failed: %w", err)
	}

	nowStr := c.now().UTC().Format(time.RFC3339Nano)
	for _, g := range groups {
		_, err := tx.Exec(`
			INSERT INTO cached_groups (name, description, distinguished_name, updated_at)
			VALUES (?, ?, ?, ?)`,
			g.Name, g.Description, g.DistinguishedName, nowStr,
		)
		if err != nil {
			return fmt.Errorf("dircache: insert failed: %w", err)
		}
	}

	if err := upsertMetadata(tx, BucketGroups, nowStr, len(groups)); err != nil {
		return err
	}
	return tx.Commit()
}

// execer is satisfied by both *sql.DB and *sql.Tx.
type execer interface {
	Exec(query string, args ...any) (sql.Result, error)
}

func insertPrincipal(e execer, p directory.Principal, nowStr string) error {
	_, err := e.Exec(`
		INSERT INTO cached_principals (
			username, display_name, given_name, surname, email, principal_name,
			phone, mobile, job_title, department, company, office, description,
			distinguished_name, enabled, memberships, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			display_name = excluded.display_name,
			given_name = excluded.given_name,
			surname = excluded.surname,
			email = excluded.email,
			principal_name = excluded.principal_name,
			phone = excluded.phone,
			mobile = excluded.mobile,
			job_title = excluded.job_title,
			department = excluded.department,
			company = excluded.company,
			office = excluded.office,
			description = excluded.description,
			distinguished_name = excluded.distinguished_name,
			enabled = excluded.enabled,
			memberships = excluded.memberships,
			updated_at = excluded.updated_at`,
		p.Username, p.DisplayName, p.GivenName, p.Surname, p.Email, p.PrincipalName,
		p.Phone, p.Mobile, p.JobTitle, p.Department, p.Company, p.Office, p.Description,
		p.DistinguishedName, boolToInt(p.Enabled), encodeMemberships(p.Memberships), nowStr,
	)
	if err != nil {
		return fmt.Errorf("dircache: insert failed: %w", err)
	}
	return nil
}

func (c *Cache) upsertPrincipal(p directory.Principal) error {
	return insertPrincipal(c.db, p, c.now().UTC().Format(time.RFC3339Nano))
}

func upsertMetadata(e execer, bucket, refreshStr string, count int) error {
	_, err := e.Exec(`
		INSERT INTO cache_metadata (bucket, last_refresh, item_count)
		VALUES (?, ?, ?)
		ON CONFLICT(bucket) DO UPDATE SET
			last_refresh = excluded.last_refresh,
			item_count = excluded.item_count`,
		bucket, refreshStr, count,
	)
	if err != nil {
		return fmt.Errorf("dircache: metadata upsert failed: %w", err)
	}
	return nil
}

func (c *Cache) loadPrincipals() ([]directory.Principal, error) {
	rows, err := c.db.Query(`
		SELECT username, display_name, given_name, surname, email, principal_name,
		       phone, mobile, job_title, department, company, office, description,
		       distinguished_name, enabled, memberships
		FROM cached_principals ORDER BY username`)
	if err != nil {
		return nil, fmt.Errorf("dircache: query failed: %w", err)
	}
	defer rows.Close()

	var principals []directory.Principal
	for rows.Next() {
		var p directory.Principal
		var enabled int
		var memberships string
		err := rows.Scan(
			&p.Username, &p.DisplayName, &p.GivenName, &p.Surname, &p.Email, &p.PrincipalName,
			&p.Phone, &p.Mobile, &p.JobTitle, &p.Department, &p.Company, &p.Office, &p.Description,
			&p.DistinguishedName, &enabled, &memberships,
		)
		if err != nil {
			return nil, fmt.Errorf("dircache: scan failed: %w", err)
		}
		p.Enabled = enabled != 0
		p.Memberships = decodeMemberships(memberships)
		principals = append(principals, p)
	}
	return principals, rows.Err()
}

func (c *Cache) loadGroups() ([]directory.Group, error) {
	rows, err := c.db.Query(`
		SELECT name, description, distinguished_name
		FROM cached_groups ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("dircache: query failed: %w", err)
	}
	defer rows.Close()

	var groups []directory.Group
	for rows.Next() {
		var g directory.Group
		if err := rows.Scan(&g.Name, &g.Description, &g.DistinguishedName); err != nil {
			return nil, fmt.Errorf("dircache: scan failed: %w", err)
		}
		groups = append(groups, g)
	}
	return groups, rows.Err()
}

// encodeMemberships serializes a membership list, encoding nil as the empty
// JSON array so the stored value is always valid structured data.
func encodeMemberships(memberships []directory.Membership) string {
	if len(memberships) == 0 {
		return "[]"
	}
	data, err := json.Marshal(memberships)
	if err != nil {
		return "[]"
	}
	return string(data)
}

// decodeMemberships deserializes a stored membership list. Malformed data
// degrades to an empty list rather than propagating an error.
func decodeMemberships(raw string) []directory.Membership {
	var memberships []directory.Membership
	if err := json.Unmarshal([]byte(raw), &memberships); err != nil {
		return []directory.Membership{}
	}
	if memberships == nil {
		return []directory.Membership{}
	}
	return memberships
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
