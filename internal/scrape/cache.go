package scrape

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const (
	cacheEnvVar     = "PROMPTASM_CACHE_DIR"
	cacheSubdir     = "promptasm/pages"
	defaultCacheTTL = 24 * time.Hour
	partialSuffix   = ".part"
	metaSuffix      = ".meta"
	pageSuffix      = ".md"
)

// pageCache keeps converted pages on disk, one markdown file per URL plus a
// small JSON sidecar.
type pageCache struct {
	dir string
	ttl time.Duration
	now func() time.Time
}

type pageCacheMeta struct {
	URL      string    `json:"url"`
	CachedAt time.Time `json:"cachedAt"`
	Size     int64     `json:"size"`
}

// cachedPage is a hit from the cache. Stale pages are still returned so the
// client can fall back to them when the service is unreachable.
type cachedPage struct {
	Markdown string
	CachedAt time.Time
	Stale    bool
}

func newPageCache(dir string, ttl time.Duration) (*pageCache, error) {
	if dir == "" {
		dir = os.Getenv(cacheEnvVar)
	}
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = filepath.Join(os.TempDir(), "promptasm-cache")
		}
		dir = filepath.Join(base, cacheSubdir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &pageCache{dir: dir, ttl: ttl, now: time.Now}, nil
}

func (c *pageCache) Get(pageURL string) (cachedPage, bool) {
	pagePath, metaPath, _ := c.pathsFor(cacheKey(pageURL))
	info, err := os.Stat(pagePath)
	if err != nil || info.IsDir() {
		return cachedPage{}, false
	}
	data, err := os.ReadFile(pagePath)
	if err != nil {
		return cachedPage{}, false
	}
	cachedAt := info.ModTime()
	if meta, err := readMeta(metaPath); err == nil && !meta.CachedAt.IsZero() {
		cachedAt = meta.CachedAt
	}
	return cachedPage{
		Markdown: string(data),
		CachedAt: cachedAt,
		Stale:    c.now().Sub(cachedAt) >= c.ttl,
	}, true
}

func (c *pageCache) Put(pageURL, markdown string) error {
	pagePath, metaPath, partialPath := c.pathsFor(cacheKey(pageURL))
	if err := os.WriteFile(partialPath, []byte(markdown), 0o644); err != nil {
		return err
	}
	if err := os.Rename(partialPath, pagePath); err != nil {
		return err
	}
	return writeMeta(metaPath, pageCacheMeta{
		URL:      pageURL,
		CachedAt: c.now().UTC(),
		Size:     int64(len(markdown)),
	})
}

func (c *pageCache) pathsFor(key string) (string, string, string) {
	return filepath.Join(c.dir, key+pageSuffix), filepath.Join(c.dir, key+metaSuffix), filepath.Join(c.dir, key+partialSuffix)
}

func cacheKey(pageURL string) string {
	sum := sha1.Sum([]byte(pageURL))
	return hex.EncodeToString(sum[:])
}

func readMeta(path string) (pageCacheMeta, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return pageCacheMeta{}, err
	}
	var meta pageCacheMeta
	if err := json.Unmarshal(data, &meta); err != nil {
		return pageCacheMeta{}, err
	}
	return meta, nil
}

func writeMeta(path string, meta pageCacheMeta) error {
	data, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
