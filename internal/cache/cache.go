// Package cache provides a content-addressed, on-disk HTTP response cache
// for regulator API calls. Unlike the fedsync crawler's TTL-based
// crawl_cache table, entries here never expire: a successful response from
// a historical regulator endpoint is immutable, and a failed response is
// never stored at all.
package cache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	_ "modernc.org/sqlite"
)

// Entry is one cached response body.
type Entry struct {
	Key       string
	Body      []byte
	CachedAt  time.Time
}

// Cache is a content-addressed response cache backed by SQLite.
type Cache struct {
	db *sql.DB
}

// Open opens (or creates) a cache database at dsn and runs its migration.
func Open(ctx context.Context, dsn string) (*Cache, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, eris.Wrap(err, "cache: open")
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
		"PRAGMA synchronous=NORMAL",
	} {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			db.Close()
			return nil, eris.Wrapf(err, "cache: exec %s", pragma)
		}
	}
	c := &Cache{db: db}
	if err := c.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return c, nil
}

const cacheMigration = `
CREATE TABLE IF NOT EXISTS response_cache (
	id         TEXT PRIMARY KEY,
	cache_key  TEXT NOT NULL UNIQUE,
	body       BLOB NOT NULL,
	cached_at  DATETIME NOT NULL DEFAULT (datetime('now'))
);

CREATE INDEX IF NOT EXISTS idx_response_cache_key ON response_cache(cache_key);
`

func (c *Cache) migrate(ctx context.Context) error {
	_, err := c.db.ExecContext(ctx, cacheMigration)
	return eris.Wrap(err, "cache: migrate")
}

// Close closes the underlying database.
func (c *Cache) Close() error { return c.db.Close() }

// Key derives a content-addressed cache key from a URL and any headers that
// affect the response shape (e.g. Accept), so callers never need to build
// their own cache keys by hand.
func Key(url string, headers map[string]string) string {
	h := sha256.New()
	h.Write([]byte(url))
	for _, k := range sortedKeys(headers) {
		h.Write([]byte("\x00"))
		h.Write([]byte(k))
		h.Write([]byte("="))
		h.Write([]byte(headers[k]))
	}
	return hex.EncodeToString(h.Sum(nil))
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	for i := 1; i < len(keys); i++ {
		for j := i; j > 0 && keys[j-1] > keys[j]; j-- {
			keys[j-1], keys[j] = keys[j], keys[j-1]
		}
	}
	return keys
}

// Get returns the cached body for key, or (nil, false) on a miss.
func (c *Cache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT body FROM response_cache WHERE cache_key = ?`, key)
	var body []byte
	err := row.Scan(&body)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, eris.Wrap(err, "cache: get")
	}
	return body, true, nil
}

// Put stores a successful response body under key. Callers must never call
// Put for a failed response: a cached failure could mask a transient error
// as a permanent one on retry.
func (c *Cache) Put(ctx context.Context, key string, body []byte) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT INTO response_cache (id, cache_key, body, cached_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(cache_key) DO NOTHING`,
		uuid.New().String(), key, body, time.Now().UTC(),
	)
	return eris.Wrap(err, "cache: put")
}
