// Package imageindex builds an immutable index of the preprocessed imaging
// tree.
//
// The tree holds one directory per subject, each containing a warped
// artifact (two accepted filename variants) either directly or one level
// down. Scanning happens once per run; matching then works purely against
// the in-memory index. A sqlite-backed cache keyed by subject-directory
// mtimes lets repeated runs over a large archive skip the filesystem walk.
package imageindex
