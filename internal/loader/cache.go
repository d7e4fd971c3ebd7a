package loader

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sys/unix"

	"neuroprep/internal/logging"
)

// freeSpaceFloor is the minimum free-space ratio allowed before pruning.
const freeSpaceFloor = 0.10

const entryExt = ".sample"

// statfsFunc allows tests to stub filesystem stats.
type statfsFunc func(path string) (total uint64, free uint64, err error)

// Cache persists transformed samples under a single directory, one file per
// key, bounded by a byte budget and a free-space floor.
type Cache struct {
	root     string
	maxBytes int64
	logger   *slog.Logger
	statfs   statfsFunc
}

// NewCache opens (creating if needed) a sample cache rooted at dir. maxGiB
// must be positive.
func NewCache(dir string, maxGiB int, logger *slog.Logger) (*Cache, error) {
	if dir == "" {
		return nil, errors.New("loader: cache directory required")
	}
	if maxGiB <= 0 {
		return nil, errors.New("loader: cache size must be positive")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("loader: create cache dir: %w", err)
	}
	return &Cache{
		root:     dir,
		maxBytes: int64(maxGiB) * 1024 * 1024 * 1024,
		logger:   logging.NewComponentLogger(logger, "samplecache"),
		statfs:   realStatfs,
	}, nil
}

func (c *Cache) entryPath(key string) string {
	return filepath.Join(c.root, key+entryExt)
}

// Get returns the cached bytes for key. A hit refreshes the entry's mtime
// so recently used samples survive pruning longest.
func (c *Cache) Get(key string) ([]byte, bool) {
	path := c.entryPath(key)
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	now := time.Now()
	_ = os.Chtimes(path, now, now)
	return data, true
}

// Put stores data under key and prunes if the cache exceeds its bounds. The
// write goes through a uniquely named temp file so concurrent readers never
// see a partial entry.
func (c *Cache) Put(ctx context.Context, key string, data []byte) error {
	tmp := filepath.Join(c.root, "tmp-"+uuid.NewString())
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("loader: write cache entry: %w", err)
	}
	dest := c.entryPath(key)
	if err := os.Rename(tmp, dest); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("loader: commit cache entry: %w", err)
	}
	if err := c.prune(ctx, dest); err != nil {
		return fmt.Errorf("loader: prune after store: %w", err)
	}
	return nil
}

// Stats describes current cache usage.
type Stats struct {
	Entries    int
	TotalBytes int64
	MaxBytes   int64
}

// Stats returns current cache usage.
func (c *Cache) Stats() (Stats, error) {
	entries, total, err := c.scan()
	if err != nil {
		return Stats{}, err
	}
	return Stats{Entries: len(entries), TotalBytes: total, MaxBytes: c.maxBytes}, nil
}

type cacheEntry struct {
	path      string
	sizeBytes int64
	modTime   time.Time
}

func (c *Cache) scan() ([]cacheEntry, int64, error) {
	dirEntries, err := os.ReadDir(c.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, 0, nil
		}
		return nil, 0, fmt.Errorf("loader: list cache: %w", err)
	}
	entries := make([]cacheEntry, 0, len(dirEntries))
	var total int64
	for _, entry := range dirEntries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != entryExt {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		total += info.Size()
		entries = append(entries, cacheEntry{
			path:      filepath.Join(c.root, entry.Name()),
			sizeBytes: info.Size(),
			modTime:   info.ModTime(),
		})
	}
	sort.Slice(entries, func(i, j int) bool {
		return entries[i].modTime.Before(entries[j].modTime)
	})
	return entries, total, nil
}

// prune removes oldest entries until both the byte budget and the
// free-space floor are satisfied. keepPath survives unless it is the only
// entry left, which is an error.
func (c *Cache) prune(ctx context.Context, keepPath string) error {
	entries, total, err := c.scan()
	if err != nil {
		return err
	}
	for len(entries) > 0 {
		freeOK, err := c.freeSpaceOK()
		if err != nil {
			return err
		}
		if total <= c.maxBytes && freeOK {
			return nil
		}
		oldest := entries[0]
		if oldest.path == keepPath {
			if len(entries) == 1 {
				return fmt.Errorf("cache over limits and active entry %q cannot be pruned", keepPath)
			}
			entries = entries[1:]
			continue
		}
		if err := os.Remove(oldest.path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %q: %w", oldest.path, err)
		}
		c.logger.InfoContext(ctx, "pruned sample cache entry",
			slog.String("path", oldest.path),
			slog.Int64("entry_size_bytes", oldest.sizeBytes),
		)
		total -= oldest.sizeBytes
		entries = entries[1:]
	}
	return nil
}

func (c *Cache) freeSpaceOK() (bool, error) {
	total, free, err := c.statfs(c.root)
	if err != nil {
		return false, fmt.Errorf("statfs: %w", err)
	}
	if total == 0 {
		return true, nil
	}
	return float64(free)/float64(total) >= freeSpaceFloor, nil
}

func realStatfs(path string) (uint64, uint64, error) {
	var stat unix.Statfs_t
	if err := unix.Statfs(path, &stat); err != nil {
		return 0, 0, err
	}
	total := stat.Blocks * uint64(stat.Bsize)
	free := stat.Bavail * uint64(stat.Bsize)
	return total, free, nil
}
