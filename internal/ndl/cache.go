package ndl

import (
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const (
	cacheEnvVar     = "BOOKSCOUT_CACHE_DIR"
	cacheSubdir     = "bookscout/sru"
	defaultCacheTTL = 24 * time.Hour
	partialSuffix   = ".part"
	metaSuffix      = ".meta"
)

// Cache is an on-disk store for SRU response bodies, keyed by request URL.
// Entries expire after a TTL; a stale or unreadable entry is simply a miss.
type Cache struct {
	dir string
	ttl time.Duration
}

type cacheMeta struct {
	URL      string    `json:"url"`
	CachedAt time.Time `json:"cachedAt"`
	Size     int64     `json:"size"`
}

// NewCache opens (creating if needed) the cache directory. An empty dir
// falls back to BOOKSCOUT_CACHE_DIR, then the user cache dir.
func NewCache(dir string, ttl time.Duration) (*Cache, error) {
	if dir == "" {
		dir = os.Getenv(cacheEnvVar)
	}
	if dir == "" {
		base, err := os.UserCacheDir()
		if err != nil {
			base = filepath.Join(os.TempDir(), "bookscout-cache")
		}
		dir = filepath.Join(base, cacheSubdir)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &Cache{dir: dir, ttl: ttl}, nil
}

// Get returns the cached body for the URL if present and fresh.
func (c *Cache) Get(requestURL string) (string, bool) {
	bodyPath, _, _ := c.pathsFor(cacheKey(requestURL))
	info, err := os.Stat(bodyPath)
	if err != nil || info.Size() == 0 || time.Since(info.ModTime()) >= c.ttl {
		return "", false
	}
	data, err := os.ReadFile(bodyPath)
	if err != nil {
		return "", false
	}
	return string(data), true
}

// Put stores a response body. Failures are swallowed: caching is best
// effort and must never fail a search.
func (c *Cache) Put(requestURL, body string) {
	bodyPath, metaPath, partialPath := c.pathsFor(cacheKey(requestURL))
	if err := os.WriteFile(partialPath, []byte(body), 0o644); err != nil {
		return
	}
	if err := os.Rename(partialPath, bodyPath); err != nil {
		return
	}
	meta := cacheMeta{URL: requestURL, CachedAt: time.Now().UTC(), Size: int64(len(body))}
	if data, err := json.MarshalIndent(meta, "", "  "); err == nil {
		_ = os.WriteFile(metaPath, data, 0o644)
	}
}

func (c *Cache) pathsFor(key string) (string, string, string) {
	return filepath.Join(c.dir, key+".xml"), filepath.Join(c.dir, key+metaSuffix), filepath.Join(c.dir, key+partialSuffix)
}

func cacheKey(requestURL string) string {
	sum := sha1.Sum([]byte(requestURL))
	return hex.EncodeToString(sum[:])
}
