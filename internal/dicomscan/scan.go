package dicomscan

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/suyashkumar/dicom"
	"github.com/suyashkumar/dicom/pkg/tag"
)

// Series is one detected DICOM series folder.
type Series struct {
	Dir               string
	PatientID         string
	StudyDate         string
	SeriesInstanceUID string
	SliceCount        int
}

// FindSeries walks the download tree and returns every directory that
// directly contains DICOM slices, sorted by path. Tags come from the first
// slice that parses; a series whose slices all fail to parse is returned
// with empty tags.
func FindSeries(root string) ([]Series, error) {
	slicesByDir := make(map[string][]string)
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		if !isSlice(path) {
			return nil
		}
		dir := filepath.Dir(path)
		slicesByDir[dir] = append(slicesByDir[dir], path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan dicom tree: %w", err)
	}

	dirs := make([]string, 0, len(slicesByDir))
	for dir := range slicesByDir {
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)

	series := make([]Series, 0, len(dirs))
	for _, dir := range dirs {
		slices := slicesByDir[dir]
		sort.Strings(slices)
		s := Series{Dir: dir, SliceCount: len(slices)}
		for _, slice := range slices {
			if readTags(slice, &s) {
				break
			}
		}
		series = append(series, s)
	}
	return series, nil
}

// dicmPreamble sits at offset 128 of every part-10 DICOM file.
var dicmPreamble = []byte("DICM")

// isSlice reports whether path looks like a DICOM slice: either the .dcm
// extension or the DICM preamble. Extension wins so extension-named files
// skip the read.
func isSlice(path string) bool {
	if strings.EqualFold(filepath.Ext(path), ".dcm") {
		return true
	}
	file, err := os.Open(path)
	if err != nil {
		return false
	}
	defer file.Close()

	header := make([]byte, 132)
	if _, err := file.ReadAt(header, 0); err != nil {
		return false
	}
	return bytes.Equal(header[128:], dicmPreamble)
}

func readTags(path string, s *Series) bool {
	ds, err := dicom.ParseFile(path, nil)
	if err != nil {
		return false
	}
	s.PatientID = stringTag(ds, tag.PatientID)
	s.StudyDate = stringTag(ds, tag.StudyDate)
	s.SeriesInstanceUID = stringTag(ds, tag.SeriesInstanceUID)
	return true
}

func stringTag(ds dicom.Dataset, t tag.Tag) string {
	element, err := ds.FindElementByTag(t)
	if err != nil {
		return ""
	}
	values := dicom.MustGetStrings(element.Value)
	if len(values) == 0 {
		return ""
	}
	return strings.TrimSpace(values[0])
}
