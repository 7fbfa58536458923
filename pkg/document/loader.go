package document

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"net/url"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/CliForge/remotecli/pkg/cache"
	"github.com/CliForge/remotecli/pkg/cli"
	"github.com/spf13/afero"
)

// FileNames are the document names looked up in a directory, in order.
var FileNames = []string{"cli.json", "cli.yaml", "cli.yml"}

// Loader loads specifications from files, directories and URLs.
type Loader struct {
	// Parser is used to parse the loaded document
	Parser *Parser
	// Fs is the filesystem local documents are read from
	Fs afero.Fs
	// Cache stores fetched documents; nil disables caching
	Cache DocumentCache
	// HTTPClient for fetching remote documents
	HTTPClient *http.Client
	// CacheTTL is how long a fetched document is used without revalidation
	CacheTTL time.Duration
	// UserAgent is sent with every request
	UserAgent string
}

// DocumentCache defines the interface for caching fetched documents.
type DocumentCache interface {
	// Get retrieves a cached document
	Get(ctx context.Context, key string) (*cache.Entry, error)
	// Set stores a document in cache
	Set(ctx context.Context, key string, entry *cache.Entry) error
	// Invalidate removes a document from cache
	Invalidate(ctx context.Context, key string) error
}

// LoadOptions controls how remote documents are loaded.
type LoadOptions struct {
	// ForceRefresh bypasses the cache and fetches a fresh document
	ForceRefresh bool
	// Headers to include in HTTP request
	Headers map[string]string
}

// NewLoader creates a new Loader instance.
func NewLoader(fsys afero.Fs, c DocumentCache) *Loader {
	return &Loader{
		Parser: NewParser(),
		Fs:     fsys,
		Cache:  c,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		CacheTTL:  5 * time.Minute,
		UserAgent: "remotecli",
	}
}

// Load loads source, which is an http(s) URL, a directory holding one of
// FileNames, or a document file.
func (l *Loader) Load(ctx context.Context, source string) (*cli.Specification, error) {
	if isURL(source) {
		return l.LoadFromURL(ctx, source, nil)
	}

	info, err := l.Fs.Stat(source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &FileNotFoundError{Path: source}
		}
		return nil, fmt.Errorf("failed to stat %s: %w", source, err)
	}
	if info.IsDir() {
		return l.LoadFromDirectory(ctx, source)
	}
	return l.LoadFromFile(ctx, source)
}

// LoadFromDirectory loads the first of FileNames present in dir.
func (l *Loader) LoadFromDirectory(ctx context.Context, dir string) (*cli.Specification, error) {
	if ok, _ := afero.DirExists(l.Fs, dir); !ok {
		return nil, &FileNotFoundError{Path: dir}
	}
	file, err := l.Find(dir)
	if err != nil {
		return nil, err
	}
	return l.LoadFromFile(ctx, file)
}

// Find returns the path of the document in dir.
func (l *Loader) Find(dir string) (string, error) {
	for _, name := range FileNames {
		candidate := filepath.Join(dir, name)
		if ok, _ := afero.Exists(l.Fs, candidate); ok {
			return candidate, nil
		}
	}
	return "", &FileNotFoundError{Path: filepath.Join(dir, FileNames[0])}
}

// LoadFromFile loads a document file.
func (l *Loader) LoadFromFile(ctx context.Context, file string) (*cli.Specification, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := afero.ReadFile(l.Fs, file)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &FileNotFoundError{Path: file}
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return l.Parser.Parse(file, data)
}

// LoadFromReader loads a document from r; name decides the format.
func (l *Loader) LoadFromReader(name string, r io.Reader) (*cli.Specification, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read document: %w", err)
	}
	return l.Parser.Parse(name, data)
}

// LoadFromURL loads a remote document. A cached copy younger than CacheTTL
// is used as is; an older one is revalidated with its ETag and
// Last-Modified headers, and used stale when the server cannot be reached.
func (l *Loader) LoadFromURL(ctx context.Context, docURL string, options *LoadOptions) (*cli.Specification, error) {
	if options == nil {
		options = &LoadOptions{}
	}

	u, err := url.Parse(docURL)
	if err != nil {
		return nil, fmt.Errorf("invalid URL: %w", err)
	}
	name := path.Base(u.Path)
	if name == "/" || name == "." {
		name = FileNames[0]
	}

	data, err := l.fetchCached(ctx, docURL, options)
	if err != nil {
		return nil, err
	}
	return l.Parser.Parse(name, data)
}

func (l *Loader) fetchCached(ctx context.Context, docURL string, options *LoadOptions) ([]byte, error) {
	var cached *cache.Entry
	if l.Cache != nil && !options.ForceRefresh {
		if entry, err := l.Cache.Get(ctx, docURL); err == nil && entry != nil {
			cached = entry
		}
	}

	if cached != nil && time.Since(cached.FetchedAt) < l.CacheTTL {
		return cached.Data, nil
	}

	entry, notModified, err := l.fetch(ctx, docURL, cached, options.Headers)
	if err != nil {
		if cached != nil && cached.Data != nil {
			return cached.Data, nil
		}
		return nil, fmt.Errorf("failed to fetch document: %w", err)
	}

	if notModified {
		cached.FetchedAt = time.Now()
		entry = cached
	}
	if l.Cache != nil {
		_ = l.Cache.Set(ctx, docURL, entry)
	}
	return entry.Data, nil
}

// fetch performs a GET, conditional when cached carries validators.
func (l *Loader) fetch(ctx context.Context, docURL string, cached *cache.Entry, headers map[string]string) (*cache.Entry, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, docURL, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json, application/yaml, application/x-yaml, text/yaml")
	req.Header.Set("User-Agent", l.UserAgent)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	if cached != nil {
		if cached.ETag != "" {
			req.Header.Set("If-None-Match", cached.ETag)
		}
		if cached.LastModified != "" {
			req.Header.Set("If-Modified-Since", cached.LastModified)
		}
	}

	resp, err := l.HTTPClient.Do(req)
	if err != nil {
		return nil, false, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusNotModified && cached != nil {
		return nil, true, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("failed to read response: %w", err)
	}

	return &cache.Entry{
		Data:         data,
		ETag:         resp.Header.Get("ETag"),
		LastModified: resp.Header.Get("Last-Modified"),
		FetchedAt:    time.Now(),
		URL:          docURL,
	}, false, nil
}

// RefreshCache forces a refresh of the cached document for a URL.
func (l *Loader) RefreshCache(ctx context.Context, docURL string) (*cli.Specification, error) {
	return l.LoadFromURL(ctx, docURL, &LoadOptions{ForceRefresh: true})
}

// InvalidateCache removes a cached document.
func (l *Loader) InvalidateCache(ctx context.Context, docURL string) error {
	if l.Cache == nil {
		return nil
	}
	return l.Cache.Invalidate(ctx, docURL)
}

func isURL(source string) bool {
	return strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://")
}
