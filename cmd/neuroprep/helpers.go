package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/mattn/go-isatty"

	"neuroprep/internal/config"
	"neuroprep/internal/imageindex"
	"neuroprep/internal/logging"
)

// lockOutputDir guards an output directory against concurrent runs. The
// returned release function is safe to call once.
func lockOutputDir(dir string) (func(), error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create output directory %q: %w", dir, err)
	}
	lock := flock.New(filepath.Join(dir, ".neuroprep.lock"))
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire output lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("output directory %q is in use by another neuroprep run", dir)
	}
	return func() { _ = lock.Unlock() }, nil
}

// progressEnabled reports whether stderr is a terminal worth drawing a
// progress bar on.
func progressEnabled() bool {
	fd := os.Stderr.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// loadIndex scans the preprocessed tree, going through the sqlite scan
// cache when enabled. rebuild bypasses the cached entry but still refreshes
// it.
func loadIndex(ctx context.Context, cfg *config.Config, preDir string, rebuild bool, logger *slog.Logger) (*imageindex.Index, error) {
	log := logging.NewComponentLogger(logger, "imageindex")
	if !cfg.ScanCache.Enabled || cfg.ScanCache.Path == "" {
		return imageindex.Scan(preDir)
	}

	cache, err := imageindex.OpenCache(cfg.ScanCache.Path)
	if err != nil {
		log.WarnContext(ctx, "scan cache unavailable; scanning directly", slog.String("error", err.Error()))
		return imageindex.Scan(preDir)
	}
	defer cache.Close()

	if !rebuild {
		if idx, ok, err := cache.Load(ctx, preDir); err != nil {
			log.WarnContext(ctx, "scan cache read failed", slog.String("error", err.Error()))
		} else if ok {
			log.DebugContext(ctx, "scan cache hit", slog.String("root", preDir))
			return idx, nil
		}
	}

	idx, err := imageindex.Scan(preDir)
	if err != nil {
		return nil, err
	}
	if err := cache.Store(ctx, idx); err != nil {
		log.WarnContext(ctx, "scan cache write failed", slog.String("error", err.Error()))
	}
	return idx, nil
}

// requireDir fails when a needed input directory is missing.
func requireDir(path, what string) error {
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("%s %q not found", what, path)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s %q is not a directory", what, path)
	}
	return nil
}
