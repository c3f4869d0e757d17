// Package database opens the local SQLite file shared by the audit log and
// the group preferences (~/.config/twcatele/twcatele.db).
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite"
)

const (
	appDir = "twcatele"
	dbFile = "twcatele.db"
)

var pathOverride string

// SetPath overrides the default database path. Intended for testing.
func SetPath(p string) { pathOverride = p }

// ResetPath clears the path override. Intended for testing.
func ResetPath() { pathOverride = "" }

// DefaultPath returns the default database path.
func DefaultPath() (string, error) {
	if pathOverride != "" {
		return pathOverride, nil
	}
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("database: unable to determine config directory: %w", err)
	}
	return filepath.Join(base, appDir, dbFile), nil
}

// Open opens a SQLite database at the provided path in WAL mode, creating
// the parent directory when needed.
func Open(path string) (*sql.DB, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("database: failed to create directory %s: %w", dir, err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("database: failed to open database: %w", err)
	}
	return db, nil
}

// Migrate runs each DDL statement in order inside one transaction.
// component prefixes the error ("auditlog: migration failed: ...").
func Migrate(db *sql.DB, component string, ddl ...string) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("%s: migration failed: %w", component, err)
	}
	for _, stmt := range ddl {
		if _, err := tx.Exec(stmt); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("%s: migration failed: %w", component, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%s: migration failed: %w", component, err)
	}
	return nil
}
