package dataset

import (
	"neuroprep/internal/tabular"
)

// MetaEntry is per-subject demographic metadata, values already in manifest
// form.
type MetaEntry struct {
	Sex           string
	Age           string
	Diagnosis     string
	LastDiagnosis string
}

// Metadata maps subject id to its demographics. Missing subjects read as
// zero entries.
type Metadata map[string]MetaEntry

// LoadMetadata reads a per-subject metadata sheet. Age values are
// reformatted to the manifest's three-decimal fraction; when ageIsYears is
// set they are divided by 100 first. Sex and diagnosis values pass through
// untouched, since metadata sheets carry them pre-encoded. Rows without a
// subject id are ignored; later duplicates overwrite earlier ones.
func LoadMetadata(path string, ageIsYears bool) (Metadata, error) {
	sheet, err := tabular.ReadSheet(path)
	if err != nil {
		return nil, err
	}
	cols := sheet.Columns()
	subjectCol := cols.Find(`^subjectid$`)
	sexCol := cols.Find(`^sex$`)
	ageCol := cols.Find(`^age$`)
	dxCol := cols.Find(`^diagnosis$`)
	lastDxCol := cols.Find(`^lastdiagnosis$`)

	meta := make(Metadata, len(sheet.Rows))
	for _, row := range sheet.Rows {
		subject := row.Get(subjectCol)
		if subject == "" {
			continue
		}
		age := row.Get(ageCol)
		if ageIsYears {
			age = tabular.NormalizeAgeYears(age)
		} else {
			age = tabular.NormalizeAgeFraction(age)
		}
		meta[subject] = MetaEntry{
			Sex:           row.Get(sexCol),
			Age:           age,
			Diagnosis:     row.Get(dxCol),
			LastDiagnosis: row.Get(lastDxCol),
		}
	}
	return meta, nil
}
