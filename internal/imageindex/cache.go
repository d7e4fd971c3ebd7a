package imageindex

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	_ "modernc.org/sqlite"
)

const cacheSchema = `
CREATE TABLE IF NOT EXISTS scan_dirs (
    root     TEXT    NOT NULL,
    name     TEXT    NOT NULL,
    mtime_ns INTEGER NOT NULL,
    PRIMARY KEY (root, name)
);
CREATE TABLE IF NOT EXISTS scan_artifacts (
    root TEXT    NOT NULL,
    dir  TEXT    NOT NULL,
    pos  INTEGER NOT NULL,
    path TEXT    NOT NULL,
    PRIMARY KEY (root, dir, pos)
);
`

// Cache persists scan results so repeated runs over an unchanged tree skip
// the filesystem walk. Entries are keyed by tree root and invalidated by
// subject-directory mtime.
type Cache struct {
	db   *sql.DB
	path string
}

// OpenCache initializes or connects to the scan cache database.
func OpenCache(path string) (*Cache, error) {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create cache directory: %w", err)
		}
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open scan cache: %w", err)
	}
	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, execErr := db.Exec(pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}
	if _, err := db.Exec(cacheSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init scan cache schema: %w", err)
	}
	return &Cache{db: db, path: path}, nil
}

// Close closes the underlying database connection.
func (c *Cache) Close() error {
	if c == nil || c.db == nil {
		return nil
	}
	return c.db.Close()
}

// Load returns the cached index for root when every cached subject
// directory still exists with an unchanged mtime and no directories were
// added. Returns ok=false when the cache is missing or stale.
func (c *Cache) Load(ctx context.Context, root string) (*Index, bool, error) {
	cached, err := c.loadDirs(ctx, root)
	if err != nil {
		return nil, false, err
	}
	if len(cached) == 0 {
		return nil, false, nil
	}
	current, err := currentDirMtimes(root)
	if err != nil {
		return nil, false, err
	}
	if len(current) != len(cached) {
		return nil, false, nil
	}
	for name, mtime := range current {
		if cached[name] != mtime {
			return nil, false, nil
		}
	}

	idx := &Index{
		root:      root,
		artifacts: make(map[string][]string),
		mtimes:    cached,
	}
	for name := range cached {
		idx.dirs = append(idx.dirs, name)
	}
	sort.Strings(idx.dirs)

	rows, err := c.db.QueryContext(ctx,
		`SELECT dir, path FROM scan_artifacts WHERE root = ? ORDER BY dir, pos`, root)
	if err != nil {
		return nil, false, fmt.Errorf("load cached artifacts: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var dir, path string
		if err := rows.Scan(&dir, &path); err != nil {
			return nil, false, fmt.Errorf("scan cached artifact: %w", err)
		}
		idx.artifacts[dir] = append(idx.artifacts[dir], path)
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate cached artifacts: %w", err)
	}
	return idx, true, nil
}

// Store replaces the cached entries for the index's root.
func (c *Cache) Store(ctx context.Context, idx *Index) error {
	tx, err := c.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin cache store: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range []string{
		`DELETE FROM scan_dirs WHERE root = ?`,
		`DELETE FROM scan_artifacts WHERE root = ?`,
	} {
		if _, err := tx.ExecContext(ctx, stmt, idx.root); err != nil {
			return fmt.Errorf("clear cache for root: %w", err)
		}
	}
	for _, name := range idx.dirs {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO scan_dirs (root, name, mtime_ns) VALUES (?, ?, ?)`,
			idx.root, name, idx.mtimes[name]); err != nil {
			return fmt.Errorf("store cached dir: %w", err)
		}
		for pos, path := range idx.artifacts[name] {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO scan_artifacts (root, dir, pos, path) VALUES (?, ?, ?, ?)`,
				idx.root, name, pos, path); err != nil {
				return fmt.Errorf("store cached artifact: %w", err)
			}
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit cache store: %w", err)
	}
	return nil
}

func (c *Cache) loadDirs(ctx context.Context, root string) (map[string]int64, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT name, mtime_ns FROM scan_dirs WHERE root = ?`, root)
	if err != nil {
		return nil, fmt.Errorf("load cached dirs: %w", err)
	}
	defer rows.Close()
	dirs := make(map[string]int64)
	for rows.Next() {
		var name string
		var mtime int64
		if err := rows.Scan(&name, &mtime); err != nil {
			return nil, fmt.Errorf("scan cached dir: %w", err)
		}
		dirs[name] = mtime
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cached dirs: %w", err)
	}
	return dirs, nil
}

func currentDirMtimes(root string) (map[string]int64, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read preprocessed dir: %w", err)
	}
	mtimes := make(map[string]int64)
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == aggregateDirName {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			return nil, fmt.Errorf("stat subject dir %q: %w", entry.Name(), err)
		}
		mtimes[entry.Name()] = info.ModTime().UnixNano()
	}
	return mtimes, nil
}
