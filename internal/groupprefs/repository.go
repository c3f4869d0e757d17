// Package groupprefs persists the user group chosen for each project.
//
// Storage is the shared SQLite database at ~/.config/twcatele/twcatele.db
// (table group_prefs, keyed by userGroup_<projectId>).
package groupprefs

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/xbocquet/twcatele/internal/database"
)

// Repository defines the persistence interface for group preferences.
type Repository interface {
	// Get returns the preference of a project, or nil if none is stored.
	Get(projectID string) (*GroupPref, error)

	// Save upserts the preference of a project.
	Save(pref *GroupPref) error

	// Delete removes the preference of a project.
	Delete(projectID string) error

	// Close releases database resources.
	Close() error
}

// SQLiteRepository implements Repository backed by a local SQLite database.
type SQLiteRepository struct {
	db *sql.DB
}

// Open creates or opens the repository at the default database path.
func Open() (*SQLiteRepository, error) {
	path, err := database.DefaultPath()
	if err != nil {
		return nil, err
	}
	return OpenAt(path)
}

// OpenAt creates or opens the repository at the given path.
func OpenAt(path string) (*SQLiteRepository, error) {
	db, err := database.Open(path)
	if err != nil {
		return nil, err
	}

	r := &SQLiteRepository{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	return r, nil
}

func (r *SQLiteRepository) migrate() error {
	const ddl = `
		CREATE TABLE IF NOT EXISTS group_prefs (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			pref_key   TEXT NOT NULL UNIQUE,
			project_id TEXT NOT NULL,
			group_id   TEXT NOT NULL,
			updated_at TEXT NOT NULL DEFAULT (datetime('now'))
		);
	`
	return database.Migrate(r.db, "groupprefs", ddl)
}

// Get returns the preference of a project, or nil if not found.
func (r *SQLiteRepository) Get(projectID string) (*GroupPref, error) {
	row := r.db.QueryRow(`
		SELECT id, project_id, group_id, updated_at
		FROM group_prefs WHERE pref_key = ?`,
		Key(projectID))

	var pref GroupPref
	var updatedStr string
	err := row.Scan(&pref.ID, &pref.ProjectID, &pref.GroupID, &updatedStr)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("groupprefs: query failed: %w", err)
	}
	pref.UpdatedAt, _ = time.Parse(time.RFC3339Nano, updatedStr)
	return &pref, nil
}

// Save upserts the preference of a project.
func (r *SQLiteRepository) Save(pref *GroupPref) error {
	if strings.TrimSpace(pref.ProjectID) == "" || strings.TrimSpace(pref.GroupID) == "" {
		return fmt.Errorf("groupprefs: project and group id are required")
	}
	pref.UpdatedAt = time.Now().UTC()

	result, err := r.db.Exec(`
		INSERT INTO group_prefs (pref_key, project_id, group_id, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(pref_key) DO UPDATE SET
			group_id = excluded.group_id,
			updated_at = excluded.updated_at`,
		Key(pref.ProjectID), pref.ProjectID, pref.GroupID, pref.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("groupprefs: upsert failed: %w", err)
	}

	if pref.ID == 0 {
		id, err := result.LastInsertId()
		if err == nil {
			pref.ID = id
		}
	}
	return nil
}

// Delete removes the preference of a project. Deleting a missing
// preference is not an error.
func (r *SQLiteRepository) Delete(projectID string) error {
	if _, err := r.db.Exec(`DELETE FROM group_prefs WHERE pref_key = ?`, Key(projectID)); err != nil {
		return fmt.Errorf("groupprefs: delete failed: %w", err)
	}
	return nil
}

// Close releases database resources.
func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}
