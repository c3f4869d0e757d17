package groupprefs

import "time"

// GroupPref is the user group selected for a project.
type GroupPref struct {
	ID        int64
	ProjectID string
	GroupID   string
	UpdatedAt time.Time
}

// Key is the preference name a selection is known by, userGroup_<projectId>.
func Key(projectID string) string {
	return "userGroup_" + projectID
}
