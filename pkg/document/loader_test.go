package document

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/CliForge/remotecli/pkg/cache"
	"github.com/spf13/afero"
)

// mockCache implements DocumentCache for testing
type mockCache struct {
	data map[string]*cache.Entry
}

func newMockCache() *mockCache {
	return &mockCache{
		data: make(map[string]*cache.Entry),
	}
}

func (m *mockCache) Get(ctx context.Context, key string) (*cache.Entry, error) {
	if entry, ok := m.data[key]; ok {
		return entry, nil
	}
	return nil, cache.ErrCacheMiss
}

func (m *mockCache) Set(ctx context.Context, key string, entry *cache.Entry) error {
	m.data[key] = entry
	return nil
}

func (m *mockCache) Invalidate(ctx context.Context, key string) error {
	delete(m.data, key)
	return nil
}

func newFixtureFs(t *testing.T) afero.Fs {
	t.Helper()
	fsys := afero.NewMemMapFs()
	data, err := os.ReadFile("testdata/cli.json")
	if err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fsys, "/project/cli.json", data, 0o644); err != nil {
		t.Fatal(err)
	}
	yamlData, err := os.ReadFile("testdata/cli.yaml")
	if err != nil {
		t.Fatal(err)
	}
	if err := afero.WriteFile(fsys, "/other/cli.yml", yamlData, 0o644); err != nil {
		t.Fatal(err)
	}
	if err := fsys.MkdirAll("/empty", 0o755); err != nil {
		t.Fatal(err)
	}
	return fsys
}

func TestNewLoader(t *testing.T) {
	loader := NewLoader(afero.NewMemMapFs(), newMockCache())

	if loader.Parser == nil {
		t.Error("Parser not initialized")
	}
	if loader.HTTPClient == nil {
		t.Error("HTTPClient not initialized")
	}
	if loader.CacheTTL != 5*time.Minute {
		t.Errorf("expected CacheTTL 5m, got %v", loader.CacheTTL)
	}
}

func TestLoader_Load(t *testing.T) {
	loader := NewLoader(newFixtureFs(t), nil)
	ctx := context.Background()

	tests := []struct {
		source string
		title  string
	}{
		{"/project", "Demo CLI"},
		{"/project/cli.json", "Demo CLI"},
		{"/other", "Demo CLI"},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			spec, err := loader.Load(ctx, tt.source)
			if err != nil {
				t.Fatalf("Load(%s) error = %v", tt.source, err)
			}
			if spec.Title != tt.title {
				t.Errorf("Title = %s, want %s", spec.Title, tt.title)
			}
		})
	}
}

func TestLoader_NotFound(t *testing.T) {
	loader := NewLoader(newFixtureFs(t), nil)
	ctx := context.Background()

	tests := []struct {
		name string
		load func() error
		want string
	}{
		{
			name: "missing directory",
			load: func() error { _, err := loader.LoadFromDirectory(ctx, "/nowhere"); return err },
			want: "DirectoryNotFound: '/nowhere' does not exist.",
		},
		{
			name: "directory without document",
			load: func() error { _, err := loader.LoadFromDirectory(ctx, "/empty"); return err },
			want: "FileNotFound: '/empty/cli.json' does not exist.",
		},
		{
			name: "missing file",
			load: func() error { _, err := loader.LoadFromFile(ctx, "/project/cli.yaml"); return err },
			want: "FileNotFound: '/project/cli.yaml' does not exist.",
		},
		{
			name: "missing source",
			load: func() error { _, err := loader.Load(ctx, "/gone/cli.json"); return err },
			want: "FileNotFound: '/gone/cli.json' does not exist.",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.load()
			var nf *FileNotFoundError
			if !errors.As(err, &nf) {
				t.Fatalf("expected FileNotFoundError, got %v", err)
			}
			if err.Error() != tt.want {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.want)
			}
		})
	}
}

func TestLoader_LoadFromReader(t *testing.T) {
	loader := NewLoader(afero.NewMemMapFs(), nil)

	data, _ := os.ReadFile("testdata/cli.yaml")
	spec, err := loader.LoadFromReader("cli.yaml", strings.NewReader(string(data)))
	if err != nil {
		t.Fatalf("LoadFromReader() error = %v", err)
	}
	if spec.MainMenu != "main" {
		t.Errorf("MainMenu = %s, want main", spec.MainMenu)
	}
}

func TestLoader_LoadFromURL(t *testing.T) {
	data, _ := os.ReadFile("testdata/cli.json")

	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("ETag", `"v1"`)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(data)
	}))
	defer server.Close()

	c := newMockCache()
	loader := NewLoader(afero.NewMemMapFs(), c)
	ctx := context.Background()

	spec, err := loader.Load(ctx, server.URL)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if spec.Title != "Demo CLI" {
		t.Errorf("Title = %s, want Demo CLI", spec.Title)
	}

	cached, err := c.Get(ctx, server.URL)
	if err != nil {
		t.Fatal("document not cached")
	}
	if cached.ETag != `"v1"` {
		t.Errorf("ETag = %s, want \"v1\"", cached.ETag)
	}

	if _, err := loader.LoadFromURL(ctx, server.URL, nil); err != nil {
		t.Fatalf("second load failed: %v", err)
	}
	if requests != 1 {
		t.Errorf("expected 1 request (cached), got %d", requests)
	}

	if _, err := loader.RefreshCache(ctx, server.URL); err != nil {
		t.Fatalf("RefreshCache() error = %v", err)
	}
	if requests != 2 {
		t.Errorf("expected 2 requests (force refresh), got %d", requests)
	}
}

func TestLoader_LoadFromURL_Revalidate(t *testing.T) {
	data, _ := os.ReadFile("testdata/cli.yaml")

	var full, notModified int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("If-None-Match") == `"v1"` {
			notModified++
			w.WriteHeader(http.StatusNotModified)
			return
		}
		full++
		w.Header().Set("ETag", `"v1"`)
		w.Header().Set("Last-Modified", "Mon, 01 Jan 2024 00:00:00 GMT")
		_, _ = w.Write(data)
	}))
	defer server.Close()

	c := newMockCache()
	loader := NewLoader(afero.NewMemMapFs(), c)
	loader.CacheTTL = time.Millisecond
	ctx := context.Background()
	docURL := server.URL + "/cli.yaml"

	if _, err := loader.LoadFromURL(ctx, docURL, nil); err != nil {
		t.Fatalf("first load failed: %v", err)
	}
	first := c.data[docURL].FetchedAt

	time.Sleep(10 * time.Millisecond)

	spec, err := loader.LoadFromURL(ctx, docURL, nil)
	if err != nil {
		t.Fatalf("second load failed: %v", err)
	}
	if spec.MainMenu != "main" {
		t.Errorf("MainMenu = %s, want main", spec.MainMenu)
	}
	if full != 1 || notModified != 1 {
		t.Errorf("expected 1 full and 1 conditional request, got %d and %d", full, notModified)
	}
	if !c.data[docURL].FetchedAt.After(first) {
		t.Error("revalidation did not refresh FetchedAt")
	}
}

func TestLoader_LoadFromURL_StaleFallback(t *testing.T) {
	data, _ := os.ReadFile("testdata/cli.json")
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(data)
	}))

	c := newMockCache()
	loader := NewLoader(afero.NewMemMapFs(), c)
	loader.CacheTTL = time.Millisecond
	ctx := context.Background()
	docURL := server.URL

	if _, err := loader.LoadFromURL(ctx, docURL, nil); err != nil {
		t.Fatalf("first load failed: %v", err)
	}
	server.Close()
	time.Sleep(10 * time.Millisecond)

	spec, err := loader.LoadFromURL(ctx, docURL, nil)
	if err != nil {
		t.Fatalf("expected stale cache, got %v", err)
	}
	if spec.Title != "Demo CLI" {
		t.Errorf("Title = %s, want Demo CLI", spec.Title)
	}
}

func TestLoader_LoadFromURL_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	loader := NewLoader(afero.NewMemMapFs(), newMockCache())

	if _, err := loader.LoadFromURL(context.Background(), server.URL, nil); err == nil {
		t.Error("expected error for 404 response")
	}
}

func TestLoader_InvalidateCache(t *testing.T) {
	c := newMockCache()
	loader := NewLoader(afero.NewMemMapFs(), c)
	ctx := context.Background()

	_ = c.Set(ctx, "test-url", &cache.Entry{Data: []byte("{}"), FetchedAt: time.Now()})

	if err := loader.InvalidateCache(ctx, "test-url"); err != nil {
		t.Fatalf("InvalidateCache() error = %v", err)
	}
	if _, err := c.Get(ctx, "test-url"); !errors.Is(err, cache.ErrCacheMiss) {
		t.Error("cache not invalidated")
	}
}
