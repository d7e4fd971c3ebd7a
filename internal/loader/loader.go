package loader

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	"neuroprep/internal/manifest"
)

// Transform turns one manifest row into sample bytes. Implementations own
// the whole pipeline; the loader only sequences and caches.
type Transform func(ctx context.Context, row manifest.Row) ([]byte, error)

// Set is a manifest-fed sample set. With a cache attached, each sample is
// transformed once and served from disk afterwards.
type Set struct {
	rows      []manifest.Row
	transform Transform
	cache     *Cache
}

// New builds a sample set. An empty manifest or a nil transform is a
// caller bug and fails immediately. cache may be nil for uncached use.
func New(rows []manifest.Row, transform Transform, cache *Cache) (*Set, error) {
	if len(rows) == 0 {
		return nil, errors.New("loader: empty manifest")
	}
	if transform == nil {
		return nil, errors.New("loader: nil transform")
	}
	return &Set{rows: rows, transform: transform, cache: cache}, nil
}

// Len returns the number of samples.
func (s *Set) Len() int { return len(s.rows) }

// Row returns the manifest row backing sample i.
func (s *Set) Row(i int) manifest.Row { return s.rows[i] }

// Sample returns the transformed bytes for sample i, from cache when
// possible.
func (s *Set) Sample(ctx context.Context, i int) ([]byte, error) {
	if i < 0 || i >= len(s.rows) {
		return nil, fmt.Errorf("loader: sample index %d out of range [0,%d)", i, len(s.rows))
	}
	row := s.rows[i]
	key := sampleKey(row)
	if s.cache != nil {
		if data, ok := s.cache.Get(key); ok {
			return data, nil
		}
	}
	data, err := s.transform(ctx, row)
	if err != nil {
		return nil, fmt.Errorf("loader: transform sample %d: %w", i, err)
	}
	if s.cache != nil {
		if err := s.cache.Put(ctx, key, data); err != nil {
			return nil, err
		}
	}
	return data, nil
}

// sampleKey hashes the fields that identify a sample's content. Two rows
// pointing at the same image with the same identity share a cache entry.
func sampleKey(row manifest.Row) string {
	h := sha256.New()
	h.Write([]byte(row.SubjectID))
	h.Write([]byte{0})
	h.Write([]byte(row.ImageUID))
	h.Write([]byte{0})
	h.Write([]byte(row.ImagePath))
	return hex.EncodeToString(h.Sum(nil))
}
