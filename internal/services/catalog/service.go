// Package catalog lists the projects, collections and collection items of
// the platform.
//
// Project and collection lists go through the stale-while-revalidate cache
// when one is configured; item lists are always fetched.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/xbocquet/twcatele/internal/platform/domain"
	"github.com/xbocquet/twcatele/internal/record"
	"github.com/xbocquet/twcatele/internal/swrcache"
)

const (
	// ProjectPageSize is the page size of the project listing loop.
	ProjectPageSize = 20

	// ItemPageSize bounds collection and item queries.
	ItemPageSize = 1000
)

// CollectionClasses are queried in this order when listing collections.
var CollectionClasses = []string{
	"NamedUserCollection",
	"NamedFileCollection",
	"NamedCompositeItem",
	"NamedTelemetryCollection",
}

// UnnamedCollection is shown for collections without _name or _shortName.
const UnnamedCollection = "Unnamed Collection"

// Service is the catalog business logic layer.
type Service struct {
	catalog domain.Catalog
	cache   *swrcache.Cache
	scope   string
}

// Option configures a Service.
type Option func(*Service)

// WithCache enables stale-while-revalidate caching for project and
// collection lists. scope separates the entries of different sessions and
// must identify both the environment and the signed-in user.
func WithCache(cache *swrcache.Cache, scope string) Option {
	return func(s *Service) {
		s.cache = cache
		s.scope = scope
	}
}

// New returns a Service backed by the given catalog.
func New(catalog domain.Catalog, opts ...Option) *Service {
	svc := &Service{catalog: catalog}
	for _, opt := range opts {
		opt(svc)
	}
	return svc
}

// Projects returns every project visible to the session, sorted by name.
func (s *Service) Projects(ctx context.Context) ([]domain.Project, error) {
	if s.cache == nil {
		return s.fetchProjects(ctx)
	}
	return swrcache.GetOrFetch(s.cache, ctx, s.cacheKey("projects"), s.fetchProjects)
}

func (s *Service) fetchProjects(ctx context.Context) ([]domain.Project, error) {
	var all []domain.Project
	offset := 0
	for {
		page, err := s.catalog.ListProjects(ctx, offset, ProjectPageSize)
		if err != nil {
			return nil, err
		}
		offset += ProjectPageSize
		all = append(all, page.Projects...)
		if len(all) >= page.Total || len(page.Projects) == 0 {
			break
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		return strings.ToLower(all[i].Name) < strings.ToLower(all[j].Name)
	})
	return all, nil
}

// Project finds a project by id.
func (s *Service) Project(ctx context.Context, id string) (*domain.Project, error) {
	if strings.TrimSpace(id) == "" {
		return nil, fmt.Errorf("project ID is required")
	}
	projects, err := s.Projects(ctx)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].ID == id {
			return &projects[i], nil
		}
	}
	return nil, fmt.Errorf("project %q: %w", id, domain.ErrNotFound)
}

// Collections returns the collections of a project.
//
// Each collection class is queried in turn; a class that fails is logged
// and skipped. When no class yields anything, the namespaces are queried
// without a class filter.
func (s *Service) Collections(ctx context.Context, project domain.Project) ([]record.Record, error) {
	if s.cache == nil {
		return s.fetchCollections(ctx, project)
	}
	return swrcache.GetOrFetch(s.cache, ctx, s.cacheKey("collections", project.ID), func(ctx context.Context) ([]record.Record, error) {
		return s.fetchCollections(ctx, project)
	})
}

func (s *Service) fetchCollections(ctx context.Context, project domain.Project) ([]record.Record, error) {
	ns := namespaces(project)
	var all []record.Record
	var failures []error

	for _, class := range CollectionClasses {
		query := record.New("_itemClass", class, "_namespaces", record.New("$in", ns))
		page, err := s.catalog.NamedUserItems(ctx, ns, query, ItemPageSize)
		if err != nil {
			slog.Warn("collection class query failed", "class", class, "project", project.ID, "error", err)
			failures = append(failures, err)
			continue
		}
		all = append(all, page.Items...)
	}

	if len(all) > 0 {
		return all, nil
	}

	query := record.New("_namespaces", record.New("$in", ns))
	page, err := s.catalog.NamedUserItems(ctx, ns, query, ItemPageSize)
	if err != nil {
		slog.Warn("unfiltered collection query failed", "project", project.ID, "error", err)
		failures = append(failures, err)
		// Auth failures are returned instead of an empty list.
		if authErr := firstAuthError(failures); authErr != nil {
			return nil, authErr
		}
		return []record.Record{}, nil
	}
	if page.Items == nil {
		return []record.Record{}, nil
	}
	return page.Items, nil
}

// Items returns the items of a collection.
func (s *Service) Items(ctx context.Context, project domain.Project, collectionID string) ([]record.Record, error) {
	if strings.TrimSpace(collectionID) == "" {
		return nil, fmt.Errorf("collection ID is required")
	}
	items, err := s.catalog.RelatedItems(ctx, namespaces(project), collectionID, ItemPageSize)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []record.Record{}
	}
	return items, nil
}

// Collection finds a collection of a project by id.
func (s *Service) Collection(ctx context.Context, project domain.Project, id string) (record.Record, error) {
	collections, err := s.Collections(ctx, project)
	if err != nil {
		return nil, err
	}
	for _, c := range collections {
		if c.ID() == id {
			return c, nil
		}
	}
	return nil, fmt.Errorf("collection %q: %w", id, domain.ErrNotFound)
}

// Refresh drops the cached project and collection lists.
func (s *Service) Refresh(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}
	return s.cache.InvalidatePrefix(ctx, s.cacheKey())
}

// CollectionText is the label of a collection: its name plus the user
// type in parentheses when set.
func CollectionText(c record.Record) string {
	name := c.String("_name")
	if name == "" {
		name = c.String("_shortName")
	}
	if name == "" {
		name = UnnamedCollection
	}
	if userType := c.String("_userType"); userType != "" {
		return name + " (" + userType + ")"
	}
	return name
}

// LoadError formats a list failure for display.
func LoadError(what string, err error) string {
	msg := "Unknown error"
	if err != nil {
		msg = domain.UserMessage(err)
	}
	return fmt.Sprintf("Failed to load %s: %s", what, msg)
}

// CachePrefix is the key prefix of every list cached under scope.
func CachePrefix(scope string) string {
	return "catalog_" + scope + "_"
}

func (s *Service) cacheKey(parts ...string) string {
	return CachePrefix(s.scope) + strings.Join(parts, "_")
}

func namespaces(p domain.Project) []string {
	if p.Namespaces == nil {
		return []string{}
	}
	return p.Namespaces
}

func firstAuthError(errs []error) error {
	for _, err := range errs {
		if errors.Is(err, domain.ErrUnauthorized) {
			return err
		}
	}
	return nil
}
