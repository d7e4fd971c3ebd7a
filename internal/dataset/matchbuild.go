package dataset

import (
	"path/filepath"
	"strings"

	"github.com/schollz/progressbar/v3"

	"neuroprep/internal/imageindex"
	"neuroprep/internal/manifest"
	"neuroprep/internal/match"
	"neuroprep/internal/tabular"
)

// Summary reports how a build run went.
type Summary struct {
	Matched int
	Skipped int
}

// MatchOptions tune the heuristic-matching builder.
type MatchOptions struct {
	// Limit processes only the first N source rows; zero means all.
	Limit int
	// Progress draws a terminal progress bar on stderr.
	Progress bool
}

// BuildMatched produces one manifest row per source-sheet row that resolves
// to a warped artifact. Rows that match nothing (or match too ambiguously)
// are counted as skipped and dropped.
func BuildMatched(source *tabular.Sheet, idx *imageindex.Index, meta Metadata, opts MatchOptions) ([]manifest.Row, Summary, error) {
	cols := source.Columns()
	subjectCol := cols.Find(`^subjectid$`)
	imageCol := cols.Find(`^imageid$`)
	seriesCol := cols.Find(`^seriesid$`)
	visitCol := cols.Find(`^imagevisit$`)
	splitCol := cols.Find(`^split$`)

	rows := source.Rows
	if opts.Limit > 0 && opts.Limit < len(rows) {
		rows = rows[:opts.Limit]
	}
	bar := newBar(opts.Progress, len(rows), "matching")

	var out []manifest.Row
	var sum Summary
	for _, row := range rows {
		if bar != nil {
			bar.Add(1)
		}
		keys := match.Keys{
			SubjectID: row.Get(subjectCol),
			ImageID:   row.Get(imageCol),
			SeriesID:  row.Get(seriesCol),
			Visit:     row.Get(visitCol),
		}
		split := row.Get(splitCol)
		if split == "" {
			split = "train"
		}

		warped, ok := match.ChooseBest(match.Candidates(idx, keys), keys)
		if !ok {
			sum.Skipped++
			continue
		}
		entry := meta[keys.SubjectID]
		out = append(out, manifest.Row{
			SubjectID:     keys.SubjectID,
			ImageUID:      imageUID(keys.ImageID, warped),
			Split:         split,
			Sex:           entry.Sex,
			Age:           entry.Age,
			Diagnosis:     entry.Diagnosis,
			LastDiagnosis: entry.LastDiagnosis,
			ImagePath:     warped,
			SegmPath:      match.FindSegm(warped),
			LatentPath:    LatentPath(warped),
		})
		sum.Matched++
	}
	return out, sum, nil
}

// LatentPath derives the latent-artifact path for an image: the NIfTI suffix
// is replaced with _latent.npz.
func LatentPath(imagePath string) string {
	if rest, ok := strings.CutSuffix(imagePath, ".nii.gz"); ok {
		return rest + "_latent.npz"
	}
	if rest, ok := strings.CutSuffix(imagePath, ".nii"); ok {
		return rest + "_latent.npz"
	}
	return imagePath
}

// imageUID prefers the sheet's image id; without one the artifact basename
// (minus its NIfTI suffix) stands in.
func imageUID(imageID, warped string) string {
	if imageID != "" {
		return imageID
	}
	base := filepath.Base(warped)
	if rest, ok := strings.CutSuffix(base, ".nii.gz"); ok {
		return rest
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func newBar(enabled bool, total int, description string) *progressbar.ProgressBar {
	if !enabled {
		return nil
	}
	return progressbar.Default(int64(total), description)
}
