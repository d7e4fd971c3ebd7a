package manifest

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"

	"neuroprep/internal/tabular"
)

// Write persists rows to path with the fixed header, creating parent
// directories as needed.
func Write(path string, rows []Row) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create output directory %q: %w", dir, err)
		}
	}
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create manifest: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(Fields); err != nil {
		return fmt.Errorf("write manifest header: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row.record()); err != nil {
			return fmt.Errorf("write manifest row: %w", err)
		}
	}
	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flush manifest: %w", err)
	}
	return file.Close()
}

// Read loads a manifest produced by Write. Column lookup is header-driven,
// so extra columns are ignored and missing ones read as unknown.
func Read(path string) ([]Row, error) {
	sheet, err := tabular.ReadSheet(path)
	if err != nil {
		return nil, err
	}
	rows := make([]Row, 0, len(sheet.Rows))
	for _, record := range sheet.Rows {
		rows = append(rows, Row{
			SubjectID:     record.Get("subject_id"),
			ImageUID:      record.Get("image_uid"),
			Split:         record.Get("split"),
			Sex:           record.Get("sex"),
			Age:           record.Get("age"),
			Diagnosis:     record.Get("diagnosis"),
			LastDiagnosis: record.Get("last_diagnosis"),
			ImagePath:     record.Get("image_path"),
			SegmPath:      record.Get("segm_path"),
			LatentPath:    record.Get("latent_path"),
		})
	}
	return rows, nil
}
