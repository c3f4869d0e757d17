package auditlog

import (
	"errors"
	"time"

	"github.com/xbocquet/twcatele/internal/platform/domain"
)

const (
	OutcomeSuccess = "success"
	OutcomeError   = "error"
)

// AuditEntry is one recorded command invocation.
type AuditEntry struct {
	ID           int64     `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Command      string    `json:"command"`
	Args         string    `json:"args,omitempty"`
	Backend      string    `json:"backend,omitempty"`
	Project      string    `json:"project,omitempty"`
	ResourceType string    `json:"resource_type,omitempty"`
	ResourceID   string    `json:"resource_id,omitempty"`
	ResourceName string    `json:"resource_name,omitempty"`
	Outcome      string    `json:"outcome"`
	Detail       string    `json:"detail,omitempty"`
	DurationMs   int64     `json:"duration_ms"`
}

// NewEntry builds an entry for a finished command. A nil err is a success;
// otherwise the user-facing error text goes into Detail.
func NewEntry(command string, args []string, meta Metadata, err error, start time.Time) *AuditEntry {
	entry := &AuditEntry{
		Timestamp:    start.UTC(),
		Command:      command,
		Args:         JoinArgs(SanitizeArgs(args)),
		Backend:      meta.Backend,
		Project:      meta.Project,
		ResourceType: meta.ResourceType,
		ResourceID:   meta.ResourceID,
		ResourceName: meta.ResourceName,
		Outcome:      OutcomeSuccess,
		DurationMs:   time.Since(start).Milliseconds(),
	}
	if err != nil {
		entry.Outcome = OutcomeError
		entry.Detail = err.Error()
		if errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrNotAuthenticated) {
			entry.Detail = domain.AuthFailedMessage
		}
	}
	return entry
}
