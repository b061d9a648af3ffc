// Package buildcache persists per-page content hashes between builds so
// incremental builds can skip pages whose inputs did not change. The cache is
// disposable; deleting it only costs a full rebuild.
package buildcache

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Cache implements the page hash store using SQLite.
type Cache struct {
	db *sql.DB
	mu sync.RWMutex
}

// Open opens (and if needed initializes) the cache at dbPath.
// Use ":memory:" for an in-memory cache, or a file path for persistence.
func Open(dbPath string) (*Cache, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite cache: %w", err)
	}

	cache := &Cache{db: db}
	if err := cache.initialize(); err != nil {
		_ = db.Close() // Best effort cleanup on initialization error
		return nil, fmt.Errorf("initialize schema: %w", err)
	}

	return cache, nil
}

func (c *Cache) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pages (
		path TEXT PRIMARY KEY,
		content_hash TEXT NOT NULL,
		build_id TEXT NOT NULL,
		updated_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS builds (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		finished_at INTEGER,
		pages_written INTEGER
	);
	CREATE INDEX IF NOT EXISTS idx_pages_build_id ON pages(build_id);
	`
	_, err := c.db.Exec(schema)
	return err
}

// Close releases the underlying database handle.
func (c *Cache) Close() error {
	return c.db.Close()
}

// HashContent returns the hex SHA-256 of the rendered page inputs.
func HashContent(parts ...[]byte) string {
	h := sha256.New()
	for _, p := range parts {
		_, _ = h.Write(p)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// BeginBuild records a new build and returns its id.
func (c *Cache) BeginBuild(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	id := uuid.NewString()
	_, err := c.db.ExecContext(ctx,
		"INSERT INTO builds (id, started_at) VALUES (?, ?)",
		id, time.Now().Unix(),
	)
	if err != nil {
		return "", fmt.Errorf("insert build: %w", err)
	}
	return id, nil
}

// FinishBuild marks a build complete with the number of pages written.
func (c *Cache) FinishBuild(ctx context.Context, buildID string, pagesWritten int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.ExecContext(ctx,
		"UPDATE builds SET finished_at = ?, pages_written = ? WHERE id = ?",
		time.Now().Unix(), pagesWritten, buildID,
	)
	if err != nil {
		return fmt.Errorf("finish build: %w", err)
	}
	return nil
}

// Lookup returns the stored content hash for a page path, if any.
func (c *Cache) Lookup(ctx context.Context, path string) (string, bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var hash string
	err := c.db.QueryRowContext(ctx,
		"SELECT content_hash FROM pages WHERE path = ?", path,
	).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup page: %w", err)
	}
	return hash, true, nil
}

// Store upserts the content hash for a page path under the given build.
func (c *Cache) Store(ctx context.Context, path, hash, buildID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	_, err := c.db.ExecContext(ctx,
		`INSERT INTO pages (path, content_hash, build_id, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(path) DO UPDATE SET content_hash = excluded.content_hash,
		 build_id = excluded.build_id, updated_at = excluded.updated_at`,
		path, hash, buildID, time.Now().Unix(),
	)
	if err != nil {
		return fmt.Errorf("store page hash: %w", err)
	}
	return nil
}

// Prune removes cached pages whose paths are absent from the current route
// set, so deleted posts do not pin stale cache rows forever.
func (c *Cache) Prune(ctx context.Context, livePaths []string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	live := make(map[string]struct{}, len(livePaths))
	for _, p := range livePaths {
		live[p] = struct{}{}
	}

	rows, err := c.db.QueryContext(ctx, "SELECT path FROM pages")
	if err != nil {
		return 0, fmt.Errorf("query cached pages: %w", err)
	}
	var stale []string
	for rows.Next() {
		var path string
		if err := rows.Scan(&path); err != nil {
			_ = rows.Close()
			return 0, fmt.Errorf("scan cached page: %w", err)
		}
		if _, ok := live[path]; !ok {
			stale = append(stale, path)
		}
	}
	if err := rows.Close(); err != nil {
		return 0, fmt.Errorf("close rows: %w", err)
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("iterate cached pages: %w", err)
	}

	var pruned int64
	for _, path := range stale {
		res, err := c.db.ExecContext(ctx, "DELETE FROM pages WHERE path = ?", path)
		if err != nil {
			return pruned, fmt.Errorf("delete cached page: %w", err)
		}
		n, _ := res.RowsAffected()
		pruned += n
	}
	return pruned, nil
}
