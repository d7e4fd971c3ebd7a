// Package loader feeds manifest rows through a caller-supplied transform,
// optionally persisting transformed samples on disk.
//
// The cache is content-addressed by row identity and bounded two ways: a
// configured byte budget and a free-space floor on the backing filesystem.
// Oldest entries go first when either bound is exceeded.
package loader
