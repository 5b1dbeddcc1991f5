// Package auditlog provides the append-only audit trail of administrative
// actions, backed by a SQLite database that may live on a local disk or a
// shared network path written to by several machines at once.
//
// Handles are short-lived: every logical operation resolves the storage
// path from settings, opens a fresh handle with the shared-access pragmas,
// and closes it again. Operations are wrapped in a bounded retry loop that
// only retries transient failures (lock contention, I/O errors, timeouts).
//
// Failure propagation is deliberately asymmetric. Log and Purge are
// side-effects of other work and swallow every failure — an audit outage
// must never abort the administrative action that triggered it. Query and
// ExportCSV are user-initiated, so their failures propagate.
package auditlog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os/user"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"dsadmin/internal/database"
	"dsadmin/internal/retry"
)

// timeFormat is RFC 3339 UTC with fixed-width nanoseconds, so that the
// lexicographic ordering of stored strings matches time ordering and SQL
// range comparisons are correct.
const timeFormat = "2006-01-02T15:04:05.000000000Z"

// DefaultQueryLimit caps Query results when the filter does not specify a
// limit. A negative filter limit means unlimited.
const DefaultQueryLimit = 1000

// defaultEntityLimit caps QueryForEntity results when no limit is given.
const defaultEntityLimit = 100

// exportLimit bounds a CSV export. Effectively unlimited for the expected
// scale of a handful of administrators.
const exportLimit = 100_000

// Trail writes and reads the audit log.
type Trail struct {
	settings func() Settings
	logger   zerolog.Logger
	retry    retry.Config

	// now and username are stubbed in tests.
	now      func() time.Time
	username func() string
}

// New returns a Trail whose storage location and tunables are re-resolved
// from settings on every operation.
func New(settings func() Settings, logger zerolog.Logger) *Trail {
	return &Trail{
		settings: settings,
		logger:   logger,
		retry:    retry.DefaultConfig(),
		now:      time.Now,
		username: currentUsername,
	}
}

// Filter selects records for Query. Zero-value fields are not applied.
// The date range is inclusive on both ends; Operator matches as a
// substring; Action, EntityType, and EntityID match exactly.
type Filter struct {
	Start      *time.Time
	End        *time.Time
	Operator   string
	Action     string
	EntityType string
	EntityID   string

	// Limit caps the result count. Zero means DefaultQueryLimit; a
	// negative value means unlimited.
	Limit int
}

// Log appends one audit record. It is a no-op when auditing is disabled,
// and every failure is logged and swallowed: the caller's business action
// must complete whether or not its audit record persisted.
func (t *Trail) Log(ctx context.Context, entry Entry) {
	s := t.settings()
	if !s.Enabled {
		return
	}

	rec := Record{
		Timestamp:    t.now().UTC(),
		Username:     t.username(),
		Action:       entry.Action,
		EntityType:   entry.EntityType,
		EntityID:     entry.EntityID,
		EntityName:   entry.EntityName,
		Details:      encodeDetails(entry.Details),
		Result:       entry.Result,
		ErrorMessage: entry.ErrorMessage,
	}
	if rec.Result == "" {
		rec.Result = ResultSuccess
	}
	if meta := MetadataFromContext(ctx); rec.EntityType == "" && rec.EntityID == "" && rec.EntityName == "" {
		rec.EntityType = meta.EntityType
		rec.EntityID = meta.EntityID
		rec.EntityName = meta.EntityName
	}

	err := t.withDB(ctx, s, func(db *sql.DB) error {
		_, err := db.Exec(`
			INSERT INTO audit_log (timestamp, username, action, entity_type, entity_id, entity_name, details, result, error_message)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			rec.Timestamp.Format(timeFormat), rec.Username, rec.Action,
			rec.EntityType, rec.EntityID, rec.EntityName,
			rec.Details, rec.Result, rec.ErrorMessage,
		)
		if err != nil {
			return fmt.Errorf("auditlog: insert failed: %w", err)
		}
		return nil
	})
	if err != nil {
		t.logger.Error().Err(err).Str("action", rec.Action).Msg("audit record dropped")
	}
}

// Query returns records matching the filter, newest first.
func (t *Trail) Query(ctx context.Context, filter Filter) ([]Record, error) {
	where, args := buildWhere(filter)

	query := `
		SELECT id, timestamp, username, action, entity_type, entity_id, entity_name, details, result, error_message
		FROM audit_log` + where + ` ORDER BY timestamp DESC`

	limit := filter.Limit
	if limit == 0 {
		limit = DefaultQueryLimit
	}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	var records []Record
	err := t.withDB(ctx, t.settings(), func(db *sql.DB) error {
		rows, err := db.Query(query, args...)
		if err != nil {
			return fmt.Errorf("auditlog: query failed: %w", err)
		}
		defer rows.Close()

		records, err = scanRecords(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// QueryForEntity returns the most recent records for one entity. A limit of
// zero applies the default of 100.
func (t *Trail) QueryForEntity(ctx context.Context, entityType, entityID string, limit int) ([]Record, error) {
	if limit == 0 {
		limit = defaultEntityLimit
	}
	return t.Query(ctx, Filter{EntityType: entityType, EntityID: entityID, Limit: limit})
}

// Purge deletes records older than retentionDays. A retention of zero or
// less retains everything. Failures are logged and swallowed: purging is
// background maintenance. Returns the number of records removed.
func (t *Trail) Purge(ctx context.Context, retentionDays int) int64 {
	if retentionDays <= 0 {
		return 0
	}

	cutoff := t.now().UTC().AddDate(0, 0, -retentionDays).Format(timeFormat)

	var removed int64
	err := t.withDB(ctx, t.settings(), func(db *sql.DB) error {
		result, err := db.Exec(`DELETE FROM audit_log WHERE timestamp < ?`, cutoff)
		if err != nil {
			return fmt.Errorf("auditlog: delete failed: %w", err)
		}
		removed, _ = result.RowsAffected()
		return nil
	})
	if err != nil {
		t.logger.Error().Err(err).Int("retention_days", retentionDays).Msg("audit purge failed")
		return 0
	}

	t.logger.Info().Int64("removed", removed).Int("retention_days", retentionDays).Msg("audit purge complete")
	return removed
}

// GetStats summarizes the store. A zeroed Stats is returned on failure.
func (t *Trail) GetStats(ctx context.Context) Stats {
	now := t.now().UTC()
	startOfDay := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	weekAgo := now.AddDate(0, 0, -7)

	var stats Stats
	err := t.withDB(ctx, t.settings(), func(db *sql.DB) error {
		row := db.QueryRow(`
			SELECT COUNT(*),
			       COALESCE(SUM(timestamp >= ?), 0),
			       COALESCE(SUM(timestamp >= ?), 0),
			       COALESCE(MIN(timestamp), ''),
			       COALESCE(MAX(timestamp), '')
			FROM audit_log`,
			startOfDay.Format(timeFormat), weekAgo.Format(timeFormat))

		var oldestStr, newestStr string
		if err := row.Scan(&stats.Total, &stats.Today, &stats.LastWeek, &oldestStr, &newestStr); err != nil {
			return fmt.Errorf("auditlog: stats query failed: %w", err)
		}
		stats.Oldest = parseOptionalTime(oldestStr)
		stats.Newest = parseOptionalTime(newestStr)
		return nil
	})
	if err != nil {
		t.logger.Warn().Err(err).Msg("audit stats unavailable")
		return Stats{}
	}
	return stats
}

// withDB resolves the storage path from settings, then runs fn against a
// fresh handle inside the retry loop. The handle never outlives the call.
func (t *Trail) withDB(ctx context.Context, s Settings, fn func(db *sql.DB) error) error {
	path, err := resolvePath(s)
	if err != nil {
		return fmt.Errorf("auditlog: %w", err)
	}

	return retry.Do(ctx, t.retry, retry.IsTransient, func() error {
		db, err := database.Open(path)
		if err != nil {
			return fmt.Errorf("auditlog: %w", err)
		}
		defer db.Close()

		if err := ensureSchema(db); err != nil {
			return err
		}
		return fn(db)
	})
}

func ensureSchema(db *sql.DB) error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS audit_log (
			id            INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp     TEXT NOT NULL,
			username      TEXT NOT NULL DEFAULT '',
			action        TEXT NOT NULL,
			entity_type   TEXT NOT NULL DEFAULT '',
			entity_id     TEXT NOT NULL DEFAULT '',
			entity_name   TEXT NOT NULL DEFAULT '',
			details       TEXT NOT NULL DEFAULT '{}',
			result        TEXT NOT NULL DEFAULT 'success',
			error_message TEXT NOT NULL DEFAULT ''
		);
		CREATE INDEX IF NOT EXISTS idx_audit_log_timestamp ON audit_log(timestamp);
		CREATE INDEX IF NOT EXISTS idx_audit_log_username ON audit_log(username);
		CREATE INDEX IF NOT EXISTS idx_audit_log_entity ON audit_log(entity_id);
	`
	if _, err := db.Exec(ddl); err != nil {
		return fmt.Errorf("auditlog: migration failed: %w", err)
	}
	return nil
}

func buildWhere(filter Filter) (string, []any) {
	var clauses []string
	var args []any

	if filter.Start != nil {
		clauses = append(clauses, `timestamp >= ?`)
		args = append(args, filter.Start.UTC().Format(timeFormat))
	}
	if filter.End != nil {
		clauses = append(clauses, `timestamp <= ?`)
		args = append(args, filter.End.UTC().Format(timeFormat))
	}
	if filter.Operator != "" {
		clauses = append(clauses, `username LIKE ?`)
		args = append(args, "%"+filter.Operator+"%")
	}
	if filter.Action != "" {
		clauses = append(clauses, `action = ?`)
		args = append(args, filter.Action)
	}
	if filter.EntityType != "" {
		clauses = append(clauses, `entity_type = ?`)
		args = append(args, filter.EntityType)
	}
	if filter.EntityID != "" {
		clauses = append(clauses, `entity_id = ?`)
		args = append(args, filter.EntityID)
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

func scanRecords(rows *sql.Rows) ([]Record, error) {
	var records []Record
	for rows.Next() {
		var rec Record
		var timestampStr string
		err := rows.Scan(
			&rec.ID, &timestampStr, &rec.Username, &rec.Action,
			&rec.EntityType, &rec.EntityID, &rec.EntityName,
			&rec.Details, &rec.Result, &rec.ErrorMessage,
		)
		if err != nil {
			return nil, fmt.Errorf("auditlog: scan failed: %w", err)
		}
		rec.Timestamp, _ = time.Parse(timeFormat, timestampStr)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func parseOptionalTime(s string) *time.Time {
	if s == "" {
		return nil
	}
	ts, err := time.Parse(timeFormat, s)
	if err != nil {
		return nil
	}
	return &ts
}

// encodeDetails serializes caller-supplied details, redacting sensitive
// keys. Nil or unserializable details become the empty object.
func encodeDetails(details map[string]any) string {
	if len(details) == 0 {
		return "{}"
	}
	data, err := json.Marshal(RedactDetails(details))
	if err != nil {
		return "{}"
	}
	return string(data)
}

func currentUsername() string {
	u, err := user.Current()
	if err != nil || u.Username == "" {
		return "unknown"
	}
	return u.Username
}
