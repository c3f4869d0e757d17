package swrcache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/xbocquet/twcatele/internal/metrics"
)

func TestGetOrFetch_FreshCache(t *testing.T) {
	cache := WithTTLs(t.TempDir(), 5*time.Minute, time.Hour)
	ctx := context.Background()

	key := "projects"
	if err := writeEntry(cache, ctx, key, Entry[string]{Data: "cached", FetchedAt: time.Now().Add(-time.Minute)}); err != nil {
		t.Fatalf("writeEntry error: %v", err)
	}

	before := testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("file", "fresh"))

	called := 0
	fetch := func(ctx context.Context) (string, error) {
		called++
		return "fresh", nil
	}

	got, err := GetOrFetch(cache, ctx, key, fetch)
	if err != nil {
		t.Fatalf("GetOrFetch error: %v", err)
	}
	if got != "cached" {
		t.Fatalf("got %q, want %q", got, "cached")
	}
	if called != 0 {
		t.Fatalf("fetch called %d times, want 0", called)
	}
	if after := testutil.ToFloat64(metrics.CacheLookups.WithLabelValues("file", "fresh")); after != before+1 {
		t.Errorf("fresh lookups = %v, want %v", after, before+1)
	}
}

func TestGetOrFetch_StaleCacheRevalidates(t *testing.T) {
	cache := WithTTLs(t.TempDir(), 5*time.Minute, time.Hour)
	ctx := context.Background()

	key := "collections_p1"
	if err := writeEntry(cache, ctx, key, Entry[string]{Data: "cached", FetchedAt: time.Now().Add(-10 * time.Minute)}); err != nil {
		t.Fatalf("writeEntry error: %v", err)
	}

	called := make(chan struct{}, 1)
	fetch := func(ctx context.Context) (string, error) {
		called <- struct{}{}
		return "fresh", nil
	}

	got, err := GetOrFetch(cache, ctx, key, fetch)
	if err != nil {
		t.Fatalf("GetOrFetch error: %v", err)
	}
	if got != "cached" {
		t.Fatalf("got %q, want %q", got, "cached")
	}

	select {
	case <-called:
	case <-time.After(500 * time.Millisecond):
		t.Fatal("expected background revalidation")
	}

	deadline := time.Now().Add(750 * time.Millisecond)
	for time.Now().Before(deadline) {
		entry, ok, _ := readEntry[string](cache, ctx, key)
		if ok && entry.Data == "fresh" {
			return
		}
		time.Sleep(25 * time.Millisecond)
	}
	entry, ok, _ := readEntry[string](cache, ctx, key)
	if !ok || entry.Data != "fresh" {
		t.Fatalf("expected cache to be refreshed, got ok=%v data=%q", ok, entry.Data)
	}
}

func TestGetOrFetch_ExpiredCacheFetchesSync(t *testing.T) {
	cache := WithTTLs(t.TempDir(), 5*time.Minute, time.Hour)
	ctx := context.Background()

	key := "projects"
	if err := writeEntry(cache, ctx, key, Entry[string]{Data: "cached", FetchedAt: time.Now().Add(-2 * time.Hour)}); err != nil {
		t.Fatalf("writeEntry error: %v", err)
	}

	called := 0
	fetch := func(ctx context.Context) (string, error) {
		called++
		return "fresh", nil
	}

	got, err := GetOrFetch(cache, ctx, key, fetch)
	if err != nil {
		t.Fatalf("GetOrFetch error: %v", err)
	}
	if got != "fresh" {
		t.Fatalf("got %q, want %q", got, "fresh")
	}
	if called != 1 {
		t.Fatalf("fetch called %d times, want 1", called)
	}
}

func TestGetOrFetch_MissFetchesSync(t *testing.T) {
	cache := WithTTLs(t.TempDir(), 5*time.Minute, time.Hour)

	called := 0
	fetch := func(ctx context.Context) ([]string, error) {
		called++
		return []string{"a", "b"}, nil
	}

	got, err := GetOrFetch(cache, context.Background(), "missing", fetch)
	if err != nil {
		t.Fatalf("GetOrFetch error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %v, want two entries", got)
	}
	if called != 1 {
		t.Fatalf("fetch called %d times, want 1", called)
	}

	// Second read is served from the cache.
	if _, err := GetOrFetch(cache, context.Background(), "missing", fetch); err != nil {
		t.Fatalf("GetOrFetch error: %v", err)
	}
	if called != 1 {
		t.Fatalf("fetch called %d times, want 1", called)
	}
}

func TestGetOrFetch_FetchErrorIsNotCached(t *testing.T) {
	cache := WithTTLs(t.TempDir(), 5*time.Minute, time.Hour)
	ctx := context.Background()

	boom := errors.New("boom")
	_, err := GetOrFetch(cache, ctx, "projects", func(context.Context) (string, error) {
		return "", boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if _, ok, _ := readEntry[string](cache, ctx, "projects"); ok {
		t.Fatal("expected failed fetch to leave no entry")
	}
}

func TestGetOrFetch_NilCache(t *testing.T) {
	var cache *Cache
	got, err := GetOrFetch(cache, context.Background(), "k", func(context.Context) (int, error) {
		return 7, nil
	})
	if err != nil || got != 7 {
		t.Fatalf("got %d, %v; want 7, nil", got, err)
	}
	if err := cache.Clear(context.Background()); err != nil {
		t.Fatalf("Clear on nil cache: %v", err)
	}
}

func TestInvalidatePrefix(t *testing.T) {
	cache := WithTTLs(t.TempDir(), 5*time.Minute, time.Hour)
	ctx := context.Background()

	for key, data := range map[string]string{
		"collections_p1":     "a",
		"collections_p1_all": "b",
		"projects":           "c",
	} {
		if err := writeEntry(cache, ctx, key, Entry[string]{Data: data, FetchedAt: time.Now()}); err != nil {
			t.Fatalf("writeEntry error: %v", err)
		}
	}

	if err := cache.InvalidatePrefix(ctx, "collections_"); err != nil {
		t.Fatalf("InvalidatePrefix error: %v", err)
	}

	if _, ok, _ := readEntry[string](cache, ctx, "collections_p1"); ok {
		t.Fatal("expected collections_p1 to be removed")
	}
	if _, ok, _ := readEntry[string](cache, ctx, "collections_p1_all"); ok {
		t.Fatal("expected collections_p1_all to be removed")
	}
	if _, ok, _ := readEntry[string](cache, ctx, "projects"); !ok {
		t.Fatal("expected projects to remain")
	}
}

func TestInvalidateAndClear(t *testing.T) {
	cache := WithTTLs(t.TempDir(), 5*time.Minute, time.Hour)
	ctx := context.Background()

	for _, key := range []string{"a", "b"} {
		if err := writeEntry(cache, ctx, key, Entry[string]{Data: key, FetchedAt: time.Now()}); err != nil {
			t.Fatalf("writeEntry error: %v", err)
		}
	}

	if err := cache.Invalidate(ctx, "a"); err != nil {
		t.Fatalf("Invalidate error: %v", err)
	}
	if err := cache.Invalidate(ctx, "a"); err != nil {
		t.Fatalf("second Invalidate error: %v", err)
	}
	if _, ok, _ := readEntry[string](cache, ctx, "a"); ok {
		t.Fatal("expected a to be removed")
	}

	if err := cache.Clear(ctx); err != nil {
		t.Fatalf("Clear error: %v", err)
	}
	if _, ok, _ := readEntry[string](cache, ctx, "b"); ok {
		t.Fatal("expected b to be removed")
	}
}

func TestSanitizeKey(t *testing.T) {
	tests := map[string]string{
		"":                  "cache",
		"projects":          "projects",
		"collections:p 1/x": "collections_p_1_x",
	}
	for in, want := range tests {
		if got := sanitizeKey(in); got != want {
			t.Errorf("sanitizeKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewRedisBackend_InvalidURL(t *testing.T) {
	if _, err := NewRedisBackend("http://not-redis", time.Minute); err == nil {
		t.Fatal("expected error for non-redis url")
	}
}

func TestRedisKey(t *testing.T) {
	if got := redisKey("collections p1"); got != "twcatele:cache:collections_p1" {
		t.Errorf("redisKey = %q", got)
	}
}
