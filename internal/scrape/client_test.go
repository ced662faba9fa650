package scrape

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/csheth/promptasm/internal/ingest"
)

func newTestClient(t *testing.T, endpoint string) *Client {
	t.Helper()
	client, err := New(Options{Endpoint: endpoint, CacheDir: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestFetchReturnsMarkdown(t *testing.T) {
	t.Parallel()

	var gotQuery string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("url")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"markdown":"# Example\n\nBody"}`))
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL+"/api/scrape")
	got, err := client.Fetch(context.Background(), "https://www.example.com/a?b=c")
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	if got != "# Example\n\nBody" {
		t.Fatalf("unexpected markdown %q", got)
	}
	if gotQuery != "https://www.example.com/a?b=c" {
		t.Fatalf("service saw url=%q", gotQuery)
	}
}

func TestFetchMapsErrorStatus(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		message string
	}{
		{"json error", http.StatusBadGateway, `{"error":"upstream timed out"}`, "upstream timed out"},
		{"plain body", http.StatusInternalServerError, "oops", http.StatusText(http.StatusInternalServerError)},
		{"not found", http.StatusNotFound, `{}`, http.StatusText(http.StatusNotFound)},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			t.Cleanup(server.Close)

			client := newTestClient(t, server.URL)
			_, err := client.Fetch(context.Background(), "https://www.example.com")
			var fe *ingest.FetchError
			if !errors.As(err, &fe) {
				t.Fatalf("expected FetchError, got %v", err)
			}
			if fe.Status != tt.status || fe.Message != tt.message {
				t.Fatalf("got status=%d message=%q, want %d %q", fe.Status, fe.Message, tt.status, tt.message)
			}
		})
	}
}

func TestFetchUsesFreshCache(t *testing.T) {
	t.Parallel()

	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = w.Write([]byte(`{"markdown":"cached body"}`))
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL)
	ctx := context.Background()
	for i := 0; i < 3; i++ {
		got, err := client.Fetch(ctx, "https://www.example.com/page")
		if err != nil {
			t.Fatalf("fetch %d: %v", i, err)
		}
		if got != "cached body" {
			t.Fatalf("fetch %d returned %q", i, got)
		}
	}
	if n := atomic.LoadInt32(&hits); n != 1 {
		t.Fatalf("expected a single request, got %d", n)
	}
}

func TestFetchRefreshesExpiredCache(t *testing.T) {
	t.Parallel()

	var hits int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&hits, 1)
		if n == 1 {
			_, _ = w.Write([]byte(`{"markdown":"v1"}`))
			return
		}
		_, _ = w.Write([]byte(`{"markdown":"v2"}`))
	}))
	t.Cleanup(server.Close)

	client := newTestClient(t, server.URL)
	ctx := context.Background()
	if _, err := client.Fetch(ctx, "https://www.example.com"); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	client.cache.now = func() time.Time { return time.Now().Add(defaultCacheTTL + time.Hour) }

	got, err := client.Fetch(ctx, "https://www.example.com")
	if err != nil {
		t.Fatalf("second fetch: %v", err)
	}
	if got != "v2" {
		t.Fatalf("expected refreshed content, got %q", got)
	}
}

func TestFetchFallsBackToStaleWhenUnreachable(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"markdown":"old copy"}`))
	}))

	client := newTestClient(t, server.URL)
	ctx := context.Background()
	if _, err := client.Fetch(ctx, "https://www.example.com"); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	server.Close()
	client.cache.now = func() time.Time { return time.Now().Add(defaultCacheTTL + time.Hour) }

	got, err := client.Fetch(ctx, "https://www.example.com")
	if err != nil {
		t.Fatalf("expected stale fallback, got %v", err)
	}
	if got != "old copy" {
		t.Fatalf("unexpected fallback %q", got)
	}
}

func TestFetchSkipsStaleCopyOnServiceError(t *testing.T) {
	t.Parallel()

	var failing atomic.Bool
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if failing.Load() {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"error":"upstream down"}`))
			return
		}
		_, _ = w.Write([]byte(`{"markdown":"old copy"}`))
	}))
	defer server.Close()

	client := newTestClient(t, server.URL)
	ctx := context.Background()
	if _, err := client.Fetch(ctx, "https://www.example.com"); err != nil {
		t.Fatalf("first fetch: %v", err)
	}
	failing.Store(true)
	client.cache.now = func() time.Time { return time.Now().Add(defaultCacheTTL + time.Hour) }

	_, err := client.Fetch(ctx, "https://www.example.com")
	var fe *ingest.FetchError
	if !errors.As(err, &fe) || fe.Status != http.StatusBadGateway || fe.Message != "upstream down" {
		t.Fatalf("expected the service error, got %#v", err)
	}
}

func TestFetchTransportErrorWithoutCache(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	endpoint := server.URL
	server.Close()

	client, err := New(Options{Endpoint: endpoint, DisableCache: true})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = client.Fetch(context.Background(), "https://www.example.com")
	var fe *ingest.FetchError
	if !errors.As(err, &fe) || fe.Status != 0 || fe.Err == nil {
		t.Fatalf("expected transport FetchError, got %#v", err)
	}
}

func TestNewRejectsRelativeEndpoint(t *testing.T) {
	t.Parallel()

	if _, err := New(Options{Endpoint: "/api/scrape", DisableCache: true}); err == nil {
		t.Fatal("expected error for relative endpoint")
	}
}

func TestPageCacheWritesAtomically(t *testing.T) {
	t.Parallel()

	cache, err := newPageCache(t.TempDir(), time.Hour)
	if err != nil {
		t.Fatalf("newPageCache: %v", err)
	}
	if err := cache.Put("https://www.example.com", "body"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	pagePath, metaPath, partialPath := cache.pathsFor(cacheKey("https://www.example.com"))
	for _, path := range []string{pagePath, metaPath} {
		if _, err := os.Stat(path); err != nil {
			t.Fatalf("missing %s: %v", path, err)
		}
	}
	if _, err := os.Stat(partialPath); !os.IsNotExist(err) {
		t.Fatalf("partial file should be gone, err=%v", err)
	}
	meta, err := readMeta(metaPath)
	if err != nil || meta.URL != "https://www.example.com" || meta.Size != 4 {
		t.Fatalf("unexpected meta %+v err=%v", meta, err)
	}
	page, ok := cache.Get("https://www.example.com")
	if !ok || page.Stale || page.Markdown != "body" {
		t.Fatalf("unexpected cache entry %+v ok=%v", page, ok)
	}
}
