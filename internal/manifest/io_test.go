package manifest

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestWriteReadRoundTrip(t *testing.T) {
	rows := []Row{
		{
			SubjectID:     "002_S_0413",
			ImageUID:      "123456",
			Split:         "train",
			Sex:           "1",
			Age:           "0.734",
			Diagnosis:     "0.5",
			LastDiagnosis: "1",
			ImagePath:     "/data/pre/002_S_0413/turboprep_Warped.nii.gz",
			SegmPath:      "/data/pre/002_S_0413/segm.nii.gz",
			LatentPath:    "/data/pre/002_S_0413/turboprep_Warped_latent.npz",
		},
		{SubjectID: "011_S_0021", Split: "val"},
	}

	path := filepath.Join(t.TempDir(), "out", "dataset.csv")
	if err := Write(path, rows); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	got, err := Read(path)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if len(got) != len(rows) {
		t.Fatalf("expected %d rows, got %d", len(rows), len(got))
	}
	for i := range rows {
		if got[i] != rows[i] {
			t.Fatalf("row %d mismatch:\n got %+v\nwant %+v", i, got[i], rows[i])
		}
	}
}

func TestWriteEmitsFixedHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.csv")
	if err := Write(path, nil); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read written manifest: %v", err)
	}
	want := strings.Join(Fields, ",") + "\n"
	if string(data) != want {
		t.Fatalf("unexpected header:\n got %q\nwant %q", string(data), want)
	}
}

func TestReadToleratesExtraColumns(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dataset.csv")
	body := "subject_id,image_uid,split,notes\nS1,42,test,ignore me\n"
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	rows, err := Read(path)
	if err != nil {
		t.Fatalf("Read returned error: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 row, got %d", len(rows))
	}
	if rows[0].SubjectID != "S1" || rows[0].ImageUID != "42" || rows[0].Split != "test" {
		t.Fatalf("unexpected row: %+v", rows[0])
	}
	if rows[0].Age != "" || rows[0].LatentPath != "" {
		t.Fatalf("expected missing columns to read empty, got %+v", rows[0])
	}
}
