// Package fetchcache is a small sqlite-backed cache of remote responses,
// keyed by url. Re-running a scrape against a few hundred documentation
// pages should not refetch pages that were pulled minutes ago.
package fetchcache

import (
	"context"
	"database/sql"
	"time"

	_ "embed"

	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var Schema string

type Cache struct {
	db     *sql.DB
	maxAge time.Duration
}

// Open opens (or creates) the cache at path. Entries older than maxAge
// are treated as misses; maxAge <= 0 means entries never expire.
func Open(path string, maxAge time.Duration) (*Cache, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	_, err = db.Exec(Schema)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Cache{db: db, maxAge: maxAge}, nil
}

func (c *Cache) Close() error {
	return c.db.Close()
}

// Get returns the cached body for a url, if present and fresh. Only 2xx
// responses are ever stored, so a hit is always usable.
func (c *Cache) Get(ctx context.Context, url string) ([]byte, bool, error) {
	row := c.db.QueryRowContext(ctx,
		`SELECT body, fetched_at FROM responses WHERE url = ?`, url)

	var body []byte
	var fetchedAt int64
	err := row.Scan(&body, &fetchedAt)
	if err == sql.ErrNoRows {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	if c.maxAge > 0 && time.Since(time.Unix(fetchedAt, 0)) > c.maxAge {
		return nil, false, nil
	}
	return body, true, nil
}

// Put stores a response body, replacing any previous entry for the url.
func (c *Cache) Put(ctx context.Context, url string, status int, body []byte) error {
	_, err := c.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO responses (url, status, body, fetched_at) VALUES (?, ?, ?, ?)`,
		url, status, body, time.Now().Unix())
	return err
}

// Prune drops every entry older than maxAge and reports how many went.
func (c *Cache) Prune(ctx context.Context) (int64, error) {
	if c.maxAge <= 0 {
		return 0, nil
	}
	cutoff := time.Now().Add(-c.maxAge).Unix()
	res, err := c.db.ExecContext(ctx,
		`DELETE FROM responses WHERE fetched_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
