package dircache

// SchemaVersion is the compiled-in cache schema version. Any other persisted
// version causes a destructive reset: cached data is always reconstructible
// from the directory service, so wiping the store is the simplest correct
// migration.
const SchemaVersion = 1

// Bucket names for the two cached collections.
const (
	BucketPrincipals = "principals"
	BucketGroups     = "groups"
)

const schemaDDL = `
	CREATE TABLE IF NOT EXISTS cached_principals (
		username           TEXT PRIMARY KEY,
		display_name       TEXT    NOT NULL DEFAULT '',
		given_name         TEXT    NOT NULL DEFAULT '',
		surname            TEXT    NOT NULL DEFAULT '',
		email              TEXT    NOT NULL DEFAULT '',
		principal_name     TEXT    NOT NULL DEFAULT '',
		phone              TEXT    NOT NULL DEFAULT '',
		mobile             TEXT    NOT NULL DEFAULT '',
		job_title          TEXT    NOT NULL DEFAULT '',
		department         TEXT    NOT NULL DEFAULT '',
		company            TEXT    NOT NULL DEFAULT '',
		office             TEXT    NOT NULL DEFAULT '',
		description        TEXT    NOT NULL DEFAULT '',
		distinguished_name TEXT    NOT NULL DEFAULT '',
		enabled            INTEGER NOT NULL DEFAULT 1,
		memberships        TEXT    NOT NULL DEFAULT '[]',
		updated_at         TEXT    NOT NULL
	);
	CREATE TABLE IF NOT EXISTS cached_groups (
		name               TEXT PRIMARY KEY,
		description        TEXT NOT NULL DEFAULT '',
		distinguished_name TEXT NOT NULL DEFAULT '',
		updated_at         TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS cache_metadata (
		bucket       TEXT PRIMARY KEY,
		last_refresh TEXT    NOT NULL,
		item_count   INTEGER NOT NULL DEFAULT 0
	);
	CREATE TABLE IF NOT EXISTS schema_info (
		id      INTEGER PRIMARY KEY CHECK (id = 1),
		version INTEGER NOT NULL
	);
`

// cacheTables lists every table wiped by a destructive reset, in drop order.
var cacheTables = []string{
	"cached_principals",
	"cached_groups",
	"cache_metadata",
	"schema_info",
}
