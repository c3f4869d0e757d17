// Package cmdutil holds the plumbing shared by the twcatele commands:
// connecting to the platform, resolving the current project and writing
// command output.
package cmdutil

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/xbocquet/twcatele/internal/auditlog"
	"github.com/xbocquet/twcatele/internal/config"
	"github.com/xbocquet/twcatele/internal/platform/backends"
	"github.com/xbocquet/twcatele/internal/platform/domain"
	"github.com/xbocquet/twcatele/internal/services/auth"
	"github.com/xbocquet/twcatele/internal/services/catalog"
	"github.com/xbocquet/twcatele/internal/swrcache"
)

// Output formats accepted by -o.
const (
	OutputTable = "table"
	OutputJSON  = "json"
	OutputChart = "chart"
)

// ErrNoProject is returned when neither --project nor current-project is set.
var ErrNoProject = errors.New("no project selected: use --project or 'twcatele project use <id>'")

// Session is a connected platform session for one command.
type Session struct {
	Config  *config.Config
	Clients *backends.Clients
	Catalog *catalog.Service
	Cache   *swrcache.Cache
}

// Connect loads the config and the stored session and builds the
// platform clients.
func Connect() (*Session, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	clients, err := backends.Connect(cfg, auth.DefaultStore())
	if err != nil {
		return nil, AuthHint(err)
	}
	cache := NewCache(cfg)
	return &Session{
		Config:  cfg,
		Clients: clients,
		Cache:   cache,
		Catalog: catalog.New(clients.Platform, catalog.WithCache(cache, CacheScope(*clients.Session))),
	}, nil
}

// Close releases the backend and cache connections.
func (s *Session) Close() {
	s.Clients.Close()
	if err := s.Cache.Close(); err != nil {
		slog.Debug("cache close failed", "error", err)
	}
}

// NewCache picks the list cache: Redis when cache-redis-url is set, else
// the file cache. A bad Redis URL falls back to files with a warning.
func NewCache(cfg *config.Config) *swrcache.Cache {
	if url := strings.TrimSpace(cfg.CacheRedisURL); url != "" {
		cache, err := swrcache.NewRedis(url)
		if err == nil {
			return cache
		}
		slog.Warn("redis cache unavailable, using file cache", "error", err)
	}
	return swrcache.NewDefault()
}

// CacheScope turns a session into a cache key segment: the origin host
// followed by a fingerprint of the token. Entries are never shared between
// environments or between sign-ins.
func CacheScope(s auth.Session) string {
	env := strings.TrimPrefix(strings.TrimPrefix(s.Env, "https://"), "http://")
	host := strings.NewReplacer("/", "_", ":", "_", ".", "_").Replace(strings.TrimRight(env, "/"))
	return host + "_" + uuid.NewSHA1(uuid.NameSpaceOID, []byte(s.Token)).String()
}

// ForgetLists drops the cached project and collection lists of the given
// sessions. Nil sessions are skipped.
func ForgetLists(ctx context.Context, cfg *config.Config, sessions ...*auth.Session) error {
	cache := NewCache(cfg)
	defer func() { _ = cache.Close() }()

	var errs []error
	for _, s := range sessions {
		if s == nil {
			continue
		}
		if err := cache.InvalidatePrefix(ctx, catalog.CachePrefix(CacheScope(*s))); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// ProjectID returns --project when given, else current-project.
func ProjectID(cmd *cobra.Command, cfg *config.Config) (string, error) {
	if f := cmd.Flags().Lookup("project"); f != nil && strings.TrimSpace(f.Value.String()) != "" {
		return strings.TrimSpace(f.Value.String()), nil
	}
	if id := strings.TrimSpace(cfg.CurrentProject); id != "" {
		return id, nil
	}
	return "", ErrNoProject
}

// Project resolves the project a command works in and tags the audit
// entry with it.
func (s *Session) Project(cmd *cobra.Command) (*domain.Project, error) {
	id, err := ProjectID(cmd, s.Config)
	if err != nil {
		return nil, err
	}
	project, err := s.Catalog.Project(Context(cmd), id)
	if err != nil {
		return nil, AuthHint(err)
	}
	Annotate(cmd, auditlog.Metadata{Backend: s.Clients.Readings.Name(), Project: project.ID})
	return project, nil
}

// Annotate merges audit metadata into the command's context.
func Annotate(cmd *cobra.Command, meta auditlog.Metadata) {
	cmd.SetContext(auditlog.WithMetadata(Context(cmd), meta))
}

// AuthHint rewrites credential failures into the login hint. The original
// error stays reachable through errors.Is.
func AuthHint(err error) error {
	if errors.Is(err, domain.ErrUnauthorized) || errors.Is(err, domain.ErrNotAuthenticated) {
		return hintError{err: err}
	}
	return err
}

type hintError struct{ err error }

func (e hintError) Error() string { return domain.UserMessage(e.err) }
func (e hintError) Unwrap() error { return e.err }

// LoadFailed reports a list failure as "Failed to load <what>: <msg>".
func LoadFailed(what string, err error) error {
	return loadError{what: what, err: err}
}

type loadError struct {
	what string
	err  error
}

func (e loadError) Error() string { return catalog.LoadError(e.what, e.err) }
func (e loadError) Unwrap() error { return e.err }

// CheckOutput validates an -o value against the formats a command offers.
func CheckOutput(output string, allowed ...string) error {
	for _, a := range allowed {
		if output == a {
			return nil
		}
	}
	return fmt.Errorf("unsupported output format %q (valid: %s)", output, strings.Join(allowed, ", "))
}

// PrintJSON encodes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// Context returns the command's context, never nil.
func Context(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
