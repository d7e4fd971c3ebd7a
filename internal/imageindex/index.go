package imageindex

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

// WarpedNames are the accepted warped-artifact filename variants, in
// preference order.
var WarpedNames = []string{"turboprep_Warped.nii.gz", "turboprep_Warped.nii"}

// SegmNames are the accepted segmentation filename variants, in preference
// order.
var SegmNames = []string{"segm.nii.gz", "segm.nii"}

// aggregateDirName is produced by the registration step and holds copies of
// every subject's output; indexing it would duplicate the whole pool.
const aggregateDirName = "_ALL"

// Index maps subject-directory names to the warped artifacts beneath them.
// It is immutable after Scan; matching treats it as a pure lookup table.
type Index struct {
	root      string
	dirs      []string
	artifacts map[string][]string
	mtimes    map[string]int64
}

// Scan walks the preprocessed tree once and indexes every warped artifact.
// Subject directories are visited in sorted order so candidate pools are
// deterministic.
func Scan(root string) (*Index, error) {
	entries, err := os.ReadDir(root)
	if err != nil {
		return nil, fmt.Errorf("read preprocessed dir: %w", err)
	}

	idx := &Index{
		root:      root,
		artifacts: make(map[string][]string),
		mtimes:    make(map[string]int64),
	}
	for _, entry := range entries {
		if !entry.IsDir() || entry.Name() == aggregateDirName {
			continue
		}
		idx.dirs = append(idx.dirs, entry.Name())
	}
	sort.Strings(idx.dirs)

	for _, name := range idx.dirs {
		dirPath := filepath.Join(root, name)
		info, err := os.Stat(dirPath)
		if err != nil {
			return nil, fmt.Errorf("stat subject dir %q: %w", name, err)
		}
		idx.mtimes[name] = info.ModTime().UnixNano()

		warped, err := warpedUnder(dirPath)
		if err != nil {
			return nil, err
		}
		idx.artifacts[name] = warped
	}
	return idx, nil
}

// warpedUnder collects warped artifacts in dir and in its immediate
// subdirectories, sorted subdir order.
func warpedUnder(dir string) ([]string, error) {
	var found []string
	for _, name := range WarpedNames {
		candidate := filepath.Join(dir, name)
		if fileExists(candidate) {
			found = append(found, candidate)
		}
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read subject dir: %w", err)
	}
	subdirs := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() {
			subdirs = append(subdirs, entry.Name())
		}
	}
	sort.Strings(subdirs)
	for _, sub := range subdirs {
		for _, name := range WarpedNames {
			candidate := filepath.Join(dir, sub, name)
			if fileExists(candidate) {
				found = append(found, candidate)
			}
		}
	}
	return found, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// Root returns the scanned tree root.
func (x *Index) Root() string { return x.root }

// DirNames returns subject-directory names in sorted order.
func (x *Index) DirNames() []string { return x.dirs }

// Artifacts returns the warped artifacts indexed under the named subject
// directory.
func (x *Index) Artifacts(dir string) []string { return x.artifacts[dir] }

// All returns every indexed artifact in directory order. This is the
// ambiguous-match fallback pool.
func (x *Index) All() []string {
	var all []string
	for _, dir := range x.dirs {
		all = append(all, x.artifacts[dir]...)
	}
	return all
}

// SubjectCount returns the number of indexed subject directories.
func (x *Index) SubjectCount() int { return len(x.dirs) }

// ArtifactCount returns the total number of indexed warped artifacts.
func (x *Index) ArtifactCount() int {
	total := 0
	for _, paths := range x.artifacts {
		total += len(paths)
	}
	return total
}

var uidFromDirPattern = regexp.MustCompile(`I?(\d+)_`)

// UIDPaths holds the artifact paths resolved for one image UID.
type UIDPaths struct {
	Image string
	Segm  string
}

// ScanByUID walks the whole tree recursively and keys warped and
// segmentation artifacts by the numeric image UID embedded in their parent
// directory name. Used by the manifest-merge builder, which joins on UID
// rather than matching heuristically.
func ScanByUID(root string) (map[string]UIDPaths, error) {
	paths := make(map[string]UIDPaths)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		name := d.Name()
		isImage := strings.HasSuffix(name, "Warped.nii.gz")
		isSegm := name == "segm.nii.gz"
		if !isImage && !isSegm {
			return nil
		}
		parent := filepath.Base(filepath.Dir(path))
		m := uidFromDirPattern.FindStringSubmatch(parent)
		if m == nil {
			return nil
		}
		uid := m[1]
		entry := paths[uid]
		if isImage {
			entry.Image = path
		}
		if isSegm {
			entry.Segm = path
		}
		paths[uid] = entry
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan by uid: %w", err)
	}
	return paths, nil
}
