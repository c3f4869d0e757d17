// Package platformtest provides an in-memory platform for command and
// browser tests.
package platformtest

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/xbocquet/twcatele/internal/config"
	"github.com/xbocquet/twcatele/internal/database"
	"github.com/xbocquet/twcatele/internal/platform/backends"
	"github.com/xbocquet/twcatele/internal/platform/domain"
	"github.com/xbocquet/twcatele/internal/record"
	"github.com/xbocquet/twcatele/internal/services/auth"
	"github.com/xbocquet/twcatele/internal/telemetry"
)

// SentInvites is one recorded InviteUsers call.
type SentInvites struct {
	GroupID string
	Invites []domain.InviteRequest
}

// Platform implements backends.Platform and domain.ReadingSource over
// fixed data. Errors set on the struct are returned by the matching calls.
type Platform struct {
	mu sync.Mutex

	Projects    []domain.Project
	ProjectsErr error

	// Collections maps an _itemClass to its collections; the "" key answers
	// unfiltered queries.
	Collections    map[string][]record.Record
	CollectionsErr error

	// Items maps a collection id to its items.
	Items    map[string][]record.Record
	ItemsErr error

	// Readings maps a source id to its readings, newest first.
	Readings    map[string][]record.Record
	ReadingsErr error

	Buckets      []record.Record
	AggregateErr error
	Pipelines    []telemetry.Pipeline

	User      *domain.User
	LogoutErr error
	LoggedOut bool

	Groups     []domain.UserGroup
	MyGroups   []domain.UserGroup
	Users      map[string][]domain.User
	Invites    map[string][]domain.Invite
	InviteErr  error
	SentGroups []SentInvites
}

var _ backends.Platform = (*Platform)(nil)
var _ domain.ReadingSource = (*Platform)(nil)

func (p *Platform) Name() string { return "twinit" }

func (p *Platform) ListProjects(_ context.Context, offset, pageSize int) (domain.ProjectPage, error) {
	if p.ProjectsErr != nil {
		return domain.ProjectPage{}, p.ProjectsErr
	}
	start := min(offset, len(p.Projects))
	end := min(start+pageSize, len(p.Projects))
	return domain.ProjectPage{Projects: p.Projects[start:end], Total: len(p.Projects)}, nil
}

func (p *Platform) NamedUserItems(_ context.Context, _ []string, query record.Record, _ int) (domain.ItemPage, error) {
	if p.CollectionsErr != nil {
		return domain.ItemPage{}, p.CollectionsErr
	}
	items := p.Collections[query.String("_itemClass")]
	return domain.ItemPage{Items: items, Total: len(items)}, nil
}

func (p *Platform) RelatedItems(_ context.Context, _ []string, collectionID string, _ int) ([]record.Record, error) {
	if p.ItemsErr != nil {
		return nil, p.ItemsErr
	}
	return p.Items[collectionID], nil
}

func (p *Platform) RelatedReadings(_ context.Context, _ []string, _ string, query record.Record, pageSize int) ([]record.Record, error) {
	if p.ReadingsErr != nil {
		return nil, p.ReadingsErr
	}
	readings := p.Readings[query.String("_tsMetadata._sourceId")]
	if pageSize > 0 && len(readings) > pageSize {
		readings = readings[:pageSize]
	}
	return readings, nil
}

func (p *Platform) Aggregate(_ context.Context, _ []string, _ string, pipeline telemetry.Pipeline) ([]record.Record, error) {
	p.mu.Lock()
	p.Pipelines = append(p.Pipelines, pipeline)
	p.mu.Unlock()
	if p.AggregateErr != nil {
		return nil, p.AggregateErr
	}
	return p.Buckets, nil
}

func (p *Platform) CurrentUser(context.Context) (*domain.User, error) {
	if p.User == nil {
		return nil, domain.ErrNotFound
	}
	return p.User, nil
}

func (p *Platform) Logout(context.Context) error {
	p.LoggedOut = true
	return p.LogoutErr
}

func (p *Platform) UserGroups(context.Context, []string) ([]domain.UserGroup, error) {
	return p.Groups, nil
}

func (p *Platform) MyUserGroups(context.Context, []string) ([]domain.UserGroup, error) {
	return p.MyGroups, nil
}

func (p *Platform) GroupUsers(_ context.Context, _ []string, groupID string, _, _ int) ([]domain.User, error) {
	return p.Users[groupID], nil
}

func (p *Platform) GroupInvites(_ context.Context, _ []string, groupID string) ([]domain.Invite, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.Invites[groupID], nil
}

func (p *Platform) InviteUsers(_ context.Context, _ []string, groupID string, invites []domain.InviteRequest) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.InviteErr != nil {
		return p.InviteErr
	}
	p.SentGroups = append(p.SentGroups, SentInvites{GroupID: groupID, Invites: invites})
	if p.Invites == nil {
		p.Invites = map[string][]domain.Invite{}
	}
	for _, inv := range invites {
		p.Invites[groupID] = append(p.Invites[groupID], domain.Invite{Email: inv.Email, Status: domain.InviteStatusPending})
	}
	return nil
}

// Install registers p as the platform and twinit reading backend, signs in
// with a mock keychain, and points config, database and cache paths at a
// temp directory. Everything is restored when the test ends.
func Install(t testing.TB, p *Platform) *auth.MockStore {
	t.Helper()

	backends.Reset()
	t.Cleanup(backends.Reset)
	backends.SetPlatform(func(backends.Env) (backends.Platform, error) { return p, nil })
	backends.Register("twinit", func(backends.Env) (domain.ReadingSource, error) { return p, nil })

	store := SignedIn(t)

	dir := t.TempDir()
	config.SetPath(filepath.Join(dir, "config.json"))
	t.Cleanup(config.ResetPath)
	database.SetPath(filepath.Join(dir, "twcatele.db"))
	t.Cleanup(database.ResetPath)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	t.Setenv("HOME", dir)

	return store
}

// SignedIn installs a mock keychain holding a session.
func SignedIn(t testing.TB) *auth.MockStore {
	t.Helper()
	store := auth.NewMockStore()
	if err := auth.SaveSession(store, auth.Session{Token: "test-token", Env: "https://example.test"}); err != nil {
		t.Fatalf("SaveSession: %v", err)
	}
	auth.SetDefaultStore(store)
	t.Cleanup(auth.ResetDefaultStore)
	return store
}
