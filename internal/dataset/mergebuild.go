package dataset

import (
	"math/rand"
	"sort"
	"time"

	"neuroprep/internal/imageindex"
	"neuroprep/internal/manifest"
	"neuroprep/internal/tabular"
	"neuroprep/internal/timestamp"
)

// MergeOptions tune the sheet-join builder.
type MergeOptions struct {
	// AutoSplit deterministically assigns train/val/test (80/10/10 per
	// subject) to rows whose split is still empty.
	AutoSplit bool
	Seed      int64
	// Progress draws a terminal progress bar on stderr.
	Progress bool
}

type datedStudyRow struct {
	at    time.Time
	dated bool
	row   tabular.Row
}

type studyIndex struct {
	byUID     map[string]tabular.Row
	bySubject map[string][]datedStudyRow

	uidCol     string
	subjectCol string
	sexCol     string
	ageCol     string
	dxCol      string
	splitCol   string
}

func indexStudySheet(study *tabular.Sheet) *studyIndex {
	cols := study.Columns()
	idx := &studyIndex{
		byUID:      make(map[string]tabular.Row),
		bySubject:  make(map[string][]datedStudyRow),
		uidCol:     cols.Find(`^imageuid$`, `image(data)?id`, `imageuid`),
		subjectCol: cols.Find(`^ptid$`, `subject(id)?$`, `rid`, `subjectkey$`),
		sexCol:     cols.Find(`ptgender$`, `sex$`, `gender$`),
		ageCol:     cols.Find(`age(atscan)?$`, `age$`, `ageyears$`),
		dxCol:      cols.Find(`dx(change)?$`, `dx$`, `diagnosis$`, `dxbl$`),
		splitCol:   cols.Find(`split$`),
	}
	dateCol := cols.Find(`exam(date)?$`, `scan(date)?$`, `imagedate$`, `date$`)

	for _, row := range study.Rows {
		if uid := tabular.StripImageUID(row.Get(idx.uidCol)); uid != "" {
			idx.byUID[uid] = row
		}
		subject := row.Get(idx.subjectCol)
		if subject == "" {
			continue
		}
		at, dated := timestamp.ParseDateValue(row.Get(dateCol))
		idx.bySubject[subject] = append(idx.bySubject[subject], datedStudyRow{at: at, dated: dated, row: row})
	}
	// Dated rows ascending, undated ones last; the final entry is the
	// fallback when the manifest carries no usable date.
	for _, rows := range idx.bySubject {
		sort.SliceStable(rows, func(i, j int) bool {
			if rows[i].dated != rows[j].dated {
				return rows[i].dated
			}
			return rows[i].at.Before(rows[j].at)
		})
	}
	return idx
}

// locate finds the study row for a manifest row: by uid first (the index is
// keyed by stripped uid, so prefixed sheet values fall through to the
// subject join), then by subject with the exam date nearest the manifest
// date. Without a
// manifest date (or without any dated candidate) the subject's last row
// wins. Returns nil when nothing joins.
func (idx *studyIndex) locate(uid, subject string, manifestDate time.Time, hasDate bool) tabular.Row {
	if uid != "" {
		if row, ok := idx.byUID[uid]; ok {
			return row
		}
	}
	if subject == "" {
		return nil
	}
	candidates := idx.bySubject[subject]
	if len(candidates) == 0 {
		return nil
	}
	if !hasDate {
		return candidates[len(candidates)-1].row
	}
	var best tabular.Row
	bestGap := time.Duration(-1)
	for _, c := range candidates {
		if !c.dated {
			continue
		}
		gap := c.at.Sub(manifestDate)
		if gap < 0 {
			gap = -gap
		}
		if bestGap < 0 || gap < bestGap {
			bestGap = gap
			best = c.row
		}
	}
	if best == nil {
		return candidates[len(candidates)-1].row
	}
	return best
}

// BuildMerged joins a download manifest against a study sheet and resolves
// artifact paths through the uid-keyed tree scan. A manifest row is kept
// unless both its subject id and its image uid come up empty. The diagnosis
// code is written to both diagnosis columns; pairing-time relabeling is a
// downstream concern.
func BuildMerged(study, man *tabular.Sheet, uidPaths map[string]imageindex.UIDPaths, opts MergeOptions) ([]manifest.Row, Summary, error) {
	sIdx := indexStudySheet(study)

	manCols := man.Columns()
	manUIDCol := manCols.Find(`^imageuid$`, `image(data)?id`, `imageuid`, `seriesid`)
	manSubjectCol := manCols.Find(`^ptid$`, `subject(id)?$`, `rid`, `subjectkey$`, `participant`)
	manDateCol := manCols.Find(`exam(date)?$`, `scan(date)?$`, `imagedate$`, `date$`, `acq(date)?$`)
	manSplitCol := manCols.Find(`split$`)

	bar := newBar(opts.Progress, len(man.Rows), "merging")

	var out []manifest.Row
	var sum Summary
	for _, mr := range man.Rows {
		if bar != nil {
			bar.Add(1)
		}
		manDate, hasDate := timestamp.ParseDateValue(mr.Get(manDateCol))
		rawUID := mr.Get(manUIDCol)
		subject := mr.Get(manSubjectCol)

		sr := sIdx.locate(rawUID, subject, manDate, hasDate)
		if subject == "" && sr != nil {
			subject = sr.Get(sIdx.subjectCol)
		}
		if rawUID == "" && sr != nil {
			rawUID = sr.Get(sIdx.uidCol)
		}
		uid := tabular.StripImageUID(rawUID)
		if subject == "" && uid == "" {
			sum.Skipped++
			continue
		}

		var sex, age, dx string
		if sr != nil {
			sex = tabular.SexCode(sr.Get(sIdx.sexCol))
			age = tabular.NormalizeAgeYears(sr.Get(sIdx.ageCol))
			dx = tabular.NormalizeDiagnosis(sr.Get(sIdx.dxCol))
		}
		split := mr.Get(manSplitCol)
		if split == "" && sr != nil {
			split = sr.Get(sIdx.splitCol)
		}

		paths := uidPaths[uid]
		if paths.Image != "" {
			sum.Matched++
		}
		out = append(out, manifest.Row{
			SubjectID:     subject,
			ImageUID:      uid,
			Split:         split,
			Sex:           sex,
			Age:           age,
			Diagnosis:     dx,
			LastDiagnosis: dx,
			ImagePath:     paths.Image,
			SegmPath:      paths.Segm,
			LatentPath:    "",
		})
	}

	if opts.AutoSplit {
		autoSplit(out, opts.Seed)
	}
	return out, sum, nil
}

// autoSplit fills empty split values deterministically: per subject the row
// indices are shuffled with the seeded source and cut 80/10/10 into
// train/val/test. Already-assigned splits are never touched.
func autoSplit(rows []manifest.Row, seed int64) {
	rng := rand.New(rand.NewSource(seed))

	bySubject := make(map[string][]int)
	var order []string
	for i, row := range rows {
		if _, seen := bySubject[row.SubjectID]; !seen {
			order = append(order, row.SubjectID)
		}
		bySubject[row.SubjectID] = append(bySubject[row.SubjectID], i)
	}

	for _, subject := range order {
		indices := bySubject[subject]
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
		n := len(indices)
		nTrain := int(0.8 * float64(n))
		nVal := int(0.1 * float64(n))
		for pos, idx := range indices {
			split := "test"
			if pos < nTrain {
				split = "train"
			} else if pos < nTrain+nVal {
				split = "val"
			}
			if rows[idx].Split == "" {
				rows[idx].Split = split
			}
		}
	}
}
