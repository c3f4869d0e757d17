package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/xbocquet/twcatele/internal/platform/domain"
	"github.com/xbocquet/twcatele/internal/record"
	"github.com/xbocquet/twcatele/internal/swrcache"
)

// --- Mock catalog ---

type mockCatalog struct {
	mu sync.Mutex

	projects     []domain.Project
	byClass      map[string][]record.Record
	classErr     map[string]error
	unfiltered   []record.Record
	unfilteredErr error
	items        []record.Record
	itemsErr     error

	projectCalls []int
	queries      []record.Record
	lastNS       []string
	lastPageSize int
}

func (m *mockCatalog) ListProjects(_ context.Context, offset, pageSize int) (domain.ProjectPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.projectCalls = append(m.projectCalls, offset)
	end := min(offset+pageSize, len(m.projects))
	var page []domain.Project
	if offset < len(m.projects) {
		page = m.projects[offset:end]
	}
	return domain.ProjectPage{Projects: page, Total: len(m.projects)}, nil
}

func (m *mockCatalog) NamedUserItems(_ context.Context, ns []string, query record.Record, pageSize int) (domain.ItemPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries = append(m.queries, query)
	m.lastNS = ns
	m.lastPageSize = pageSize
	class := query.String("_itemClass")
	if class == "" {
		return domain.ItemPage{Items: m.unfiltered, Total: len(m.unfiltered)}, m.unfilteredErr
	}
	if err := m.classErr[class]; err != nil {
		return domain.ItemPage{}, err
	}
	items := m.byClass[class]
	return domain.ItemPage{Items: items, Total: len(items)}, nil
}

func (m *mockCatalog) RelatedItems(_ context.Context, ns []string, collectionID string, pageSize int) ([]record.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastNS = ns
	m.lastPageSize = pageSize
	return m.items, m.itemsErr
}

func projectsNamed(names ...string) []domain.Project {
	out := make([]domain.Project, len(names))
	for i, n := range names {
		out[i] = domain.Project{ID: fmt.Sprintf("p%d", i), Name: n}
	}
	return out
}

func TestProjects_PagesAndSorts(t *testing.T) {
	var names []string
	for i := range 45 {
		names = append(names, fmt.Sprintf("project %02d", 44-i))
	}
	names[0] = "Zeta"
	names[1] = "alpha"
	mock := &mockCatalog{projects: projectsNamed(names...)}

	got, err := New(mock).Projects(context.Background())
	if err != nil {
		t.Fatalf("Projects error: %v", err)
	}
	if len(got) != 45 {
		t.Fatalf("got %d projects, want 45", len(got))
	}
	if diff := cmp.Diff([]int{0, 20, 40}, mock.projectCalls); diff != "" {
		t.Errorf("offsets mismatch (-want +got):\n%s", diff)
	}
	if got[0].Name != "alpha" || got[len(got)-1].Name != "Zeta" {
		t.Errorf("sort order: first=%q last=%q", got[0].Name, got[len(got)-1].Name)
	}
}

func TestProjects_StopsOnShortTotal(t *testing.T) {
	mock := &mockCatalog{}
	got, err := New(mock).Projects(context.Background())
	if err != nil {
		t.Fatalf("Projects error: %v", err)
	}
	if len(got) != 0 || len(mock.projectCalls) != 1 {
		t.Errorf("got %d projects after %d calls", len(got), len(mock.projectCalls))
	}
}

func TestProjects_Cached(t *testing.T) {
	mock := &mockCatalog{projects: projectsNamed("a", "b")}
	cache := swrcache.WithTTLs(t.TempDir(), time.Hour, time.Hour)
	svc := New(mock, WithCache(cache, "sandbox"))

	for range 2 {
		if _, err := svc.Projects(context.Background()); err != nil {
			t.Fatalf("Projects error: %v", err)
		}
	}
	if len(mock.projectCalls) != 1 {
		t.Errorf("ListProjects called %d times, want 1", len(mock.projectCalls))
	}

	if err := svc.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if _, err := svc.Projects(context.Background()); err != nil {
		t.Fatalf("Projects error: %v", err)
	}
	if len(mock.projectCalls) != 2 {
		t.Errorf("ListProjects called %d times after refresh, want 2", len(mock.projectCalls))
	}
}

func TestProjects_CacheScopesAreIsolated(t *testing.T) {
	alice := &mockCatalog{projects: projectsNamed("Alice Secret Project")}
	bob := &mockCatalog{projects: projectsNamed("Bob Project")}
	cache := swrcache.WithTTLs(t.TempDir(), time.Hour, time.Hour)
	ctx := context.Background()

	aliceSvc := New(alice, WithCache(cache, "sandbox_a"))
	bobSvc := New(bob, WithCache(cache, "sandbox_ab"))

	if _, err := aliceSvc.Projects(ctx); err != nil {
		t.Fatalf("alice Projects error: %v", err)
	}
	got, err := bobSvc.Projects(ctx)
	if err != nil {
		t.Fatalf("bob Projects error: %v", err)
	}
	if len(got) != 1 || got[0].Name != "Bob Project" {
		t.Errorf("bob sees %+v", got)
	}
	if len(bob.projectCalls) != 1 {
		t.Errorf("bob ListProjects called %d times, want 1", len(bob.projectCalls))
	}

	// Dropping one scope keeps the other, even when its name is a prefix.
	if err := aliceSvc.Refresh(ctx); err != nil {
		t.Fatalf("Refresh error: %v", err)
	}
	if _, err := bobSvc.Projects(ctx); err != nil {
		t.Fatalf("bob Projects error: %v", err)
	}
	if len(bob.projectCalls) != 1 {
		t.Errorf("bob ListProjects called %d times after alice refresh, want 1", len(bob.projectCalls))
	}
}

func TestCachePrefix(t *testing.T) {
	if got := CachePrefix("host_abc"); got != "catalog_host_abc_" {
		t.Errorf("CachePrefix = %q", got)
	}
}

func TestProject_NotFound(t *testing.T) {
	svc := New(&mockCatalog{projects: projectsNamed("a")})
	if p, err := svc.Project(context.Background(), "p0"); err != nil || p.Name != "a" {
		t.Fatalf("Project(p0) = %+v, %v", p, err)
	}
	if _, err := svc.Project(context.Background(), "missing"); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestCollections_QueriesClassesInOrder(t *testing.T) {
	mock := &mockCatalog{
		byClass: map[string][]record.Record{
			"NamedUserCollection":      {record.New("_id", "u1")},
			"NamedTelemetryCollection": {record.New("_id", "t1")},
		},
		classErr: map[string]error{"NamedFileCollection": errors.New("boom")},
	}
	project := domain.Project{ID: "p1", Namespaces: []string{"ns1", "ns2"}}

	got, err := New(mock).Collections(context.Background(), project)
	if err != nil {
		t.Fatalf("Collections error: %v", err)
	}

	var ids []string
	for _, c := range got {
		ids = append(ids, c.ID())
	}
	if diff := cmp.Diff([]string{"u1", "t1"}, ids); diff != "" {
		t.Errorf("ids mismatch (-want +got):\n%s", diff)
	}

	var classes []string
	for _, q := range mock.queries {
		classes = append(classes, q.String("_itemClass"))
	}
	if diff := cmp.Diff(CollectionClasses, classes); diff != "" {
		t.Errorf("classes mismatch (-want +got):\n%s", diff)
	}
	if got := mock.queries[0].String("_namespaces"); got != `{"$in":["ns1","ns2"]}` {
		t.Errorf("namespace filter = %s", got)
	}
	if mock.lastPageSize != ItemPageSize {
		t.Errorf("page size = %d, want %d", mock.lastPageSize, ItemPageSize)
	}
}

func TestCollections_FallsBackToUnfiltered(t *testing.T) {
	mock := &mockCatalog{unfiltered: []record.Record{record.New("_id", "any")}}

	got, err := New(mock).Collections(context.Background(), domain.Project{ID: "p1"})
	if err != nil {
		t.Fatalf("Collections error: %v", err)
	}
	if len(got) != 1 || got[0].ID() != "any" {
		t.Fatalf("got %v", got)
	}
	if len(mock.queries) != 5 {
		t.Errorf("queries = %d, want 5", len(mock.queries))
	}
	if mock.queries[4].Has("_itemClass") {
		t.Error("fallback query must not filter by class")
	}
}

func TestCollections_EmptyWhenEverythingFails(t *testing.T) {
	boom := errors.New("boom")
	mock := &mockCatalog{
		classErr:     map[string]error{"NamedUserCollection": boom},
		unfilteredErr: boom,
	}

	got, err := New(mock).Collections(context.Background(), domain.Project{ID: "p1"})
	if err != nil {
		t.Fatalf("Collections error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("got %v, want empty non-nil list", got)
	}
}

func TestCollections_AuthFailureSurfaces(t *testing.T) {
	denied := fmt.Errorf("list: %w", domain.ErrUnauthorized)
	mock := &mockCatalog{
		classErr: map[string]error{
			"NamedUserCollection":      denied,
			"NamedFileCollection":      denied,
			"NamedCompositeItem":       denied,
			"NamedTelemetryCollection": denied,
		},
		unfilteredErr: denied,
	}

	_, err := New(mock).Collections(context.Background(), domain.Project{ID: "p1"})
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Fatalf("err = %v, want ErrUnauthorized", err)
	}
}

func TestItems(t *testing.T) {
	mock := &mockCatalog{items: []record.Record{record.New("_id", "i1")}}
	svc := New(mock)

	got, err := svc.Items(context.Background(), domain.Project{Namespaces: []string{"ns"}}, "c1")
	if err != nil {
		t.Fatalf("Items error: %v", err)
	}
	if len(got) != 1 || mock.lastPageSize != ItemPageSize {
		t.Errorf("got %d items with page size %d", len(got), mock.lastPageSize)
	}
	if diff := cmp.Diff([]string{"ns"}, mock.lastNS); diff != "" {
		t.Errorf("namespaces mismatch (-want +got):\n%s", diff)
	}

	if _, err := svc.Items(context.Background(), domain.Project{}, " "); err == nil {
		t.Error("expected error for empty collection ID")
	}
}

func TestCollectionText(t *testing.T) {
	tests := []struct {
		in   record.Record
		want string
	}{
		{record.New("_name", "Sensors", "_userType", "iot_collection"), "Sensors (iot_collection)"},
		{record.New("_shortName", "sens"), "sens"},
		{record.New("_name", "", "_shortName", ""), "Unnamed Collection"},
		{record.New("_userType", "x"), "Unnamed Collection (x)"},
	}
	for _, tt := range tests {
		if got := CollectionText(tt.in); got != tt.want {
			t.Errorf("CollectionText(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestLoadError(t *testing.T) {
	if got := LoadError("collections", errors.New("timeout")); got != "Failed to load collections: timeout" {
		t.Errorf("LoadError = %q", got)
	}
	got := LoadError("projects", domain.ErrUnauthorized)
	if !strings.HasPrefix(got, "Failed to load projects: "+domain.AuthFailedMessage) {
		t.Errorf("LoadError auth = %q", got)
	}
}
