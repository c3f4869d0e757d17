package domain

import (
	"context"

	"github.com/xbocquet/twcatele/internal/record"
	"github.com/xbocquet/twcatele/internal/telemetry"
)

// Catalog lists projects and the items stored in them.
type Catalog interface {
	// ListProjects returns one page of the projects visible to the session.
	ListProjects(ctx context.Context, offset, pageSize int) (ProjectPage, error)

	// NamedUserItems runs a query over the named user items of the
	// given namespaces.
	NamedUserItems(ctx context.Context, namespaces []string, query record.Record, pageSize int) (ItemPage, error)

	// RelatedItems returns the items of a collection.
	RelatedItems(ctx context.Context, namespaces []string, collectionID string, pageSize int) ([]record.Record, error)
}

// ReadingSource reads telemetry of a collection's items.
type ReadingSource interface {
	// Name identifies the backend (e.g. "twinit", "influxdb").
	Name() string

	// RelatedReadings returns readings matching query, newest first.
	RelatedReadings(ctx context.Context, namespaces []string, collectionID string, query record.Record, pageSize int) ([]record.Record, error)

	// Aggregate evaluates an aggregation pipeline over the collection's
	// readings and returns bucket records.
	Aggregate(ctx context.Context, namespaces []string, collectionID string, pipeline telemetry.Pipeline) ([]record.Record, error)
}

// Passport covers the identity service: users, sessions and groups.
type Passport interface {
	CurrentUser(ctx context.Context) (*User, error)
	Logout(ctx context.Context) error
	UserGroups(ctx context.Context, namespaces []string) ([]UserGroup, error)
	MyUserGroups(ctx context.Context, namespaces []string) ([]UserGroup, error)
	GroupUsers(ctx context.Context, namespaces []string, groupID string, offset, pageSize int) ([]User, error)
	GroupInvites(ctx context.Context, namespaces []string, groupID string) ([]Invite, error)
	InviteUsers(ctx context.Context, namespaces []string, groupID string, invites []InviteRequest) error
}
