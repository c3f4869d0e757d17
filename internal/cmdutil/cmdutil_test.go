package cmdutil

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/spf13/cobra"

	"github.com/xbocquet/twcatele/internal/auditlog"
	"github.com/xbocquet/twcatele/internal/config"
	"github.com/xbocquet/twcatele/internal/platform/domain"
	"github.com/xbocquet/twcatele/internal/platform/platformtest"
	"github.com/xbocquet/twcatele/internal/services/auth"
	"github.com/xbocquet/twcatele/internal/services/catalog"
	"github.com/xbocquet/twcatele/internal/swrcache"
)

func TestCacheScope_Host(t *testing.T) {
	tests := map[string]string{
		"https://sandbox-api.invicara.com":  "sandbox-api_invicara_com_",
		"http://localhost:8083/":            "localhost_8083_",
		"https://api.example.com/tenant/eu": "api_example_com_tenant_eu_",
	}
	for env, want := range tests {
		if got := CacheScope(auth.Session{Env: env, Token: "t"}); !strings.HasPrefix(got, want) {
			t.Errorf("CacheScope(%q) = %q, want prefix %q", env, got, want)
		}
	}
}

func TestCacheScope_PerToken(t *testing.T) {
	env := "https://sandbox-api.invicara.com"
	alice := CacheScope(auth.Session{Env: env, Token: "alice-token"})
	bob := CacheScope(auth.Session{Env: env, Token: "bob-token"})

	if alice == bob {
		t.Fatalf("two sign-ins share scope %q", alice)
	}
	if again := CacheScope(auth.Session{Env: env, Token: "alice-token"}); again != alice {
		t.Errorf("scope not stable: %q vs %q", again, alice)
	}
	if strings.Contains(alice, "alice-token") {
		t.Errorf("scope leaks the token: %q", alice)
	}
}

func TestCatalogCache_SessionsDoNotShareLists(t *testing.T) {
	cache := swrcache.WithTTLs(t.TempDir(), time.Hour, time.Hour)
	ctx := context.Background()
	env := "https://sandbox-api.invicara.com"

	alice := &platformtest.Platform{Projects: []domain.Project{{ID: "p0", Name: "Alice Secret Project"}}}
	bob := &platformtest.Platform{Projects: []domain.Project{{ID: "p9", Name: "Bob Project"}}}

	aliceSvc := catalog.New(alice, catalog.WithCache(cache, CacheScope(auth.Session{Env: env, Token: "alice-token"})))
	bobSvc := catalog.New(bob, catalog.WithCache(cache, CacheScope(auth.Session{Env: env, Token: "bob-token"})))

	if _, err := aliceSvc.Projects(ctx); err != nil {
		t.Fatalf("alice Projects: %v", err)
	}
	got, err := bobSvc.Projects(ctx)
	if err != nil {
		t.Fatalf("bob Projects: %v", err)
	}
	if len(got) != 1 || got[0].ID != "p9" {
		t.Errorf("bob sees %+v", got)
	}
}

func TestForgetLists(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", dir)
	t.Setenv("HOME", dir)
	ctx := context.Background()
	cfg := &config.Config{}
	session := &auth.Session{Env: "https://example.test", Token: "tok"}
	other := &auth.Session{Env: "https://example.test", Token: "other"}

	cache := NewCache(cfg)
	p := &platformtest.Platform{Projects: []domain.Project{{ID: "p1", Name: "One"}}}
	for _, s := range []*auth.Session{session, other} {
		if _, err := catalog.New(p, catalog.WithCache(cache, CacheScope(*s))).Projects(ctx); err != nil {
			t.Fatalf("Projects: %v", err)
		}
	}

	if err := ForgetLists(ctx, cfg, session, nil); err != nil {
		t.Fatalf("ForgetLists: %v", err)
	}

	cached := func(s *auth.Session) bool {
		hit := true
		_, _ = swrcache.GetOrFetch(cache, ctx, catalog.CachePrefix(CacheScope(*s))+"projects",
			func(context.Context) ([]domain.Project, error) {
				hit = false
				return nil, nil
			})
		return hit
	}
	if cached(session) {
		t.Error("forgotten session still has a cached project list")
	}
	if !cached(other) {
		t.Error("other session lost its cached project list")
	}
}

func projectCommand(flag string) *cobra.Command {
	cmd := &cobra.Command{Use: "x"}
	cmd.Flags().String("project", "", "")
	if flag != "" {
		_ = cmd.Flags().Set("project", flag)
	}
	return cmd
}

func TestProjectID(t *testing.T) {
	tests := []struct {
		name    string
		flag    string
		current string
		want    string
		wantErr error
	}{
		{name: "flag wins", flag: " p-flag ", current: "p-cfg", want: "p-flag"},
		{name: "current project", current: "p-cfg", want: "p-cfg"},
		{name: "neither", wantErr: ErrNoProject},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ProjectID(projectCommand(tt.flag), &config.Config{CurrentProject: tt.current})
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("err = %v, want %v", err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ProjectID = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestProjectID_CommandWithoutFlag(t *testing.T) {
	got, err := ProjectID(&cobra.Command{Use: "x"}, &config.Config{CurrentProject: "p1"})
	if err != nil || got != "p1" {
		t.Errorf("ProjectID = %q, %v", got, err)
	}
}

func TestCheckOutput(t *testing.T) {
	if err := CheckOutput("json", OutputTable, OutputJSON); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	err := CheckOutput("yaml", OutputTable, OutputJSON)
	if err == nil || err.Error() != `unsupported output format "yaml" (valid: table, json)` {
		t.Errorf("err = %v", err)
	}
}

func TestAuthHint(t *testing.T) {
	wrapped := fmt.Errorf("list projects: %w", domain.ErrUnauthorized)
	err := AuthHint(wrapped)
	if !errors.Is(err, domain.ErrUnauthorized) {
		t.Error("hint lost the original error")
	}
	if err.Error() != domain.UserMessage(wrapped) {
		t.Errorf("message = %q", err.Error())
	}

	plain := errors.New("boom")
	if AuthHint(plain) != plain {
		t.Error("non-credential errors must pass through unchanged")
	}
}

func TestLoadFailed(t *testing.T) {
	err := LoadFailed("collections", fmt.Errorf("fetch: %w", domain.ErrNotFound))
	if err.Error() != "Failed to load collections: fetch: resource not found" {
		t.Errorf("message = %q", err.Error())
	}
	if !errors.Is(err, domain.ErrNotFound) {
		t.Error("LoadFailed lost the original error")
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := PrintJSON(&buf, map[string]int{"a": 1}); err != nil {
		t.Fatal(err)
	}
	if buf.String() != "{\n  \"a\": 1\n}\n" {
		t.Errorf("PrintJSON = %q", buf.String())
	}
}

func TestAnnotate(t *testing.T) {
	cmd := &cobra.Command{Use: "x"}
	cmd.SetContext(context.Background())

	Annotate(cmd, auditlog.Metadata{Project: "p1"})
	Annotate(cmd, auditlog.Metadata{ResourceType: "collection", ResourceID: "c1"})

	got := auditlog.MetadataFromContext(cmd.Context())
	if got.Project != "p1" || got.ResourceID != "c1" {
		t.Errorf("metadata = %+v", got)
	}
}

func TestContext_NeverNil(t *testing.T) {
	if Context(&cobra.Command{}) == nil {
		t.Error("Context returned nil")
	}
}
