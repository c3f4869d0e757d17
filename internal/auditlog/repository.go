// Package auditlog records every twcatele command in the local SQLite
// database so sign-ins, invites and preference changes can be reviewed.
package auditlog

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/xbocquet/twcatele/internal/database"
)

// Filter selects audit entries. Zero fields match everything.
type Filter struct {
	Command    string
	Project    string
	FailedOnly bool
	Limit      int
}

// where renders the filter as a WHERE clause and its arguments.
func (f Filter) where() (string, []any) {
	var conds []string
	var args []any
	if f.Command != "" {
		conds = append(conds, "command = ?")
		args = append(args, f.Command)
	}
	if f.Project != "" {
		conds = append(conds, "project = ?")
		args = append(args, f.Project)
	}
	if f.FailedOnly {
		conds = append(conds, "outcome = ?")
		args = append(args, OutcomeError)
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// Repository stores audit entries.
type Repository interface {
	Save(entry *AuditEntry) error
	List(f Filter) ([]AuditEntry, error)
	Prune(olderThan time.Duration) (int64, error)
	Close() error
}

// SQLiteRepository is the Repository in the shared twcatele database.
type SQLiteRepository struct {
	db *sql.DB
}

var _ Repository = (*SQLiteRepository)(nil)

// Open opens the audit log in the default database.
func Open() (*SQLiteRepository, error) {
	path, err := database.DefaultPath()
	if err != nil {
		return nil, fmt.Errorf("auditlog: %w", err)
	}
	return OpenAt(path)
}

// OpenAt opens the audit log in the database at path, creating the table
// when needed.
func OpenAt(path string) (*SQLiteRepository, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, fmt.Errorf("auditlog: %w", err)
	}
	if err := database.Migrate(db, "auditlog", schema...); err != nil {
		db.Close()
		return nil, err
	}
	return &SQLiteRepository{db: db}, nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS audit_log (
		id            INTEGER PRIMARY KEY AUTOINCREMENT,
		timestamp     TEXT    NOT NULL,
		command       TEXT    NOT NULL,
		args          TEXT    NOT NULL DEFAULT '',
		backend       TEXT    NOT NULL DEFAULT '',
		project       TEXT    NOT NULL DEFAULT '',
		resource_type TEXT    NOT NULL DEFAULT '',
		resource_id   TEXT    NOT NULL DEFAULT '',
		resource_name TEXT    NOT NULL DEFAULT '',
		outcome       TEXT    NOT NULL DEFAULT '',
		detail        TEXT    NOT NULL DEFAULT '',
		duration_ms   INTEGER NOT NULL DEFAULT 0
	)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_log_timestamp ON audit_log(timestamp)`,
	`CREATE INDEX IF NOT EXISTS idx_audit_log_project ON audit_log(project, outcome)`,
}

// columns are read and written in this order.
const columns = `timestamp, command, args, backend, project, resource_type,
	resource_id, resource_name, outcome, detail, duration_ms`

// Save inserts entry and sets its ID. A zero Timestamp becomes now.
func (r *SQLiteRepository) Save(entry *AuditEntry) error {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = time.Now()
	}
	res, err := r.db.Exec(`INSERT INTO audit_log (`+columns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.Timestamp.UTC().Format(time.RFC3339Nano),
		entry.Command, entry.Args, entry.Backend, entry.Project,
		entry.ResourceType, entry.ResourceID, entry.ResourceName,
		entry.Outcome, entry.Detail, entry.DurationMs,
	)
	if err != nil {
		return fmt.Errorf("auditlog: insert failed: %w", err)
	}
	if entry.ID, err = res.LastInsertId(); err != nil {
		return fmt.Errorf("auditlog: insert failed: %w", err)
	}
	return nil
}

// List returns the entries matching f, newest first. A Limit of zero or
// less returns every match.
func (r *SQLiteRepository) List(f Filter) ([]AuditEntry, error) {
	where, args := f.where()
	query := `SELECT id, ` + columns + ` FROM audit_log` + where + ` ORDER BY timestamp DESC, id DESC`
	if f.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, f.Limit)
	}
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("auditlog: query failed: %w", err)
	}
	defer rows.Close()

	var entries []AuditEntry
	for rows.Next() {
		var e AuditEntry
		var ts string
		if err := rows.Scan(&e.ID, &ts, &e.Command, &e.Args, &e.Backend, &e.Project,
			&e.ResourceType, &e.ResourceID, &e.ResourceName, &e.Outcome, &e.Detail, &e.DurationMs); err != nil {
			return nil, fmt.Errorf("auditlog: scan failed: %w", err)
		}
		e.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Prune deletes entries older than olderThan and reports how many went.
func (r *SQLiteRepository) Prune(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UTC().Format(time.RFC3339Nano)
	res, err := r.db.Exec(`DELETE FROM audit_log WHERE timestamp < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("auditlog: delete failed: %w", err)
	}
	return res.RowsAffected()
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
