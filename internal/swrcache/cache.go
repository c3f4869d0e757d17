// Package swrcache caches list results with stale-while-revalidate
// semantics. Entries are JSON envelopes kept in a Backend: files under the
// user cache directory by default, or a shared Redis instance when
// cache-redis-url is configured.
package swrcache

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/xbocquet/twcatele/internal/metrics"
)

const (
	defaultFreshTTL = 5 * time.Minute
	defaultMaxStale = time.Hour
	refreshTimeout  = 30 * time.Second
)

// Lookup results reported to the cache_lookups_total metric.
const (
	resultFresh   = "fresh"
	resultStale   = "stale"
	resultMiss    = "miss"
	resultExpired = "expired"
)

// Backend stores raw entry payloads by key.
type Backend interface {
	// Name labels the backend in metrics ("file", "redis").
	Name() string
	// Read returns the payload for key; ok is false when nothing is stored.
	Read(ctx context.Context, key string) (data []byte, ok bool, err error)
	Write(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, key string) error
	DeletePrefix(ctx context.Context, prefix string) error
	Clear(ctx context.Context) error
}

// Cache provides stale-while-revalidate caching over a Backend.
type Cache struct {
	backend  Backend
	freshTTL time.Duration
	maxStale time.Duration
}

// New returns a file-backed cache rooted at dir with default TTLs.
func New(dir string) *Cache {
	return WithTTLs(dir, defaultFreshTTL, defaultMaxStale)
}

// NewDefault returns a file-backed cache rooted at the OS user cache dir.
func NewDefault() *Cache {
	return New(defaultDir())
}

// WithTTLs returns a file-backed cache rooted at dir with custom TTLs.
func WithTTLs(dir string, freshTTL, maxStale time.Duration) *Cache {
	if dir == "" {
		return nil
	}
	return WithBackend(NewFileBackend(dir), freshTTL, maxStale)
}

// WithBackend returns a cache over any Backend.
func WithBackend(b Backend, freshTTL, maxStale time.Duration) *Cache {
	return &Cache{backend: b, freshTTL: freshTTL, maxStale: maxStale}
}

// GetOrFetch returns cached data using stale-while-revalidate semantics.
// A nil cache always fetches.
func GetOrFetch[T any](c *Cache, ctx context.Context, key string, fetch func(context.Context) (T, error)) (T, error) {
	if c == nil || c.backend == nil {
		return fetch(ctx)
	}

	entry, ok, err := readEntry[T](c, ctx, key)
	if err != nil {
		slog.Warn("cache read failed", "backend", c.backend.Name(), "key", key, "error", err)
	}
	if err != nil || !ok || entry.FetchedAt.IsZero() {
		c.observe(resultMiss)
		return fetchAndStore(c, ctx, key, fetch)
	}

	age := time.Since(entry.FetchedAt)
	if age < 0 {
		c.observe(resultMiss)
		return fetchAndStore(c, ctx, key, fetch)
	}

	if age <= c.freshTTL {
		c.observe(resultFresh)
		return entry.Data, nil
	}

	if c.maxStale <= 0 || age <= c.maxStale {
		c.observe(resultStale)
		revalidate(c, key, fetch)
		return entry.Data, nil
	}

	c.observe(resultExpired)
	return fetchAndStore(c, ctx, key, fetch)
}

// Invalidate removes a single cached entry.
func (c *Cache) Invalidate(ctx context.Context, key string) error {
	if c == nil || c.backend == nil {
		return nil
	}
	return c.backend.Delete(ctx, key)
}

// InvalidatePrefix removes cached entries with the given key prefix.
func (c *Cache) InvalidatePrefix(ctx context.Context, prefix string) error {
	if c == nil || c.backend == nil {
		return nil
	}
	return c.backend.DeletePrefix(ctx, prefix)
}

// Clear removes every cached entry.
func (c *Cache) Clear(ctx context.Context) error {
	if c == nil || c.backend == nil {
		return nil
	}
	return c.backend.Clear(ctx)
}

// Close releases the backend connection, if it holds one.
func (c *Cache) Close() error {
	if c == nil || c.backend == nil {
		return nil
	}
	if closer, ok := c.backend.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}

func (c *Cache) observe(result string) {
	metrics.CacheLookups.WithLabelValues(c.backend.Name(), result).Inc()
}

func fetchAndStore[T any](c *Cache, ctx context.Context, key string, fetch func(context.Context) (T, error)) (T, error) {
	data, err := fetch(ctx)
	if err != nil {
		var zero T
		return zero, err
	}
	if err := writeEntry(c, ctx, key, Entry[T]{Data: data, FetchedAt: time.Now()}); err != nil {
		slog.Warn("cache write failed", "backend", c.backend.Name(), "key", key, "error", err)
	}
	return data, nil
}

func revalidate[T any](c *Cache, key string, fetch func(context.Context) (T, error)) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), refreshTimeout)
		defer cancel()
		data, err := fetch(ctx)
		if err != nil {
			slog.Debug("cache revalidation failed", "key", key, "error", err)
			return
		}
		_ = writeEntry(c, ctx, key, Entry[T]{Data: data, FetchedAt: time.Now()})
	}()
}

// Entry is the stored form of a cached list: the data and when it was
// fetched from the platform.
type Entry[T any] struct {
	Data      T         `json:"data"`
	FetchedAt time.Time `json:"fetched_at"`
}

func readEntry[T any](c *Cache, ctx context.Context, key string) (Entry[T], bool, error) {
	var zero Entry[T]
	data, ok, err := c.backend.Read(ctx, key)
	if err != nil || !ok {
		return zero, false, err
	}

	var entry Entry[T]
	if err := json.Unmarshal(data, &entry); err != nil {
		return zero, false, nil
	}
	return entry, true, nil
}

func writeEntry[T any](c *Cache, ctx context.Context, key string, entry Entry[T]) error {
	payload, err := json.Marshal(entry)
	if err != nil {
		return err
	}
	return c.backend.Write(ctx, key, payload)
}
