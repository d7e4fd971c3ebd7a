package imageindex

import (
	"os"
	"path/filepath"
	"testing"
)

func touch(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for fixture: %v", err)
	}
	if err := os.WriteFile(path, []byte("x"), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
}

func buildTree(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	touch(t, filepath.Join(root, "002_S_0413", "turboprep_Warped.nii.gz"))
	touch(t, filepath.Join(root, "002_S_0413", "segm.nii.gz"))
	touch(t, filepath.Join(root, "011_S_0021", "I123456_20180315", "turboprep_Warped.nii.gz"))
	touch(t, filepath.Join(root, "011_S_0021", "I123456_20180315", "segm.nii.gz"))
	touch(t, filepath.Join(root, "011_S_0021", "I789000_20200101", "turboprep_Warped.nii"))
	touch(t, filepath.Join(root, "_ALL", "turboprep_Warped.nii.gz"))
	// Unrelated files are not artifacts.
	touch(t, filepath.Join(root, "011_S_0021", "notes.txt"))
	return root
}

func TestScanIndexesWarpedArtifacts(t *testing.T) {
	root := buildTree(t)
	idx, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}

	if idx.SubjectCount() != 2 {
		t.Fatalf("expected 2 subject dirs (aggregate skipped), got %d", idx.SubjectCount())
	}
	if idx.ArtifactCount() != 3 {
		t.Fatalf("expected 3 artifacts, got %d", idx.ArtifactCount())
	}
	if got := idx.Artifacts("002_S_0413"); len(got) != 1 {
		t.Fatalf("expected 1 artifact for 002_S_0413, got %v", got)
	}
	if got := idx.Artifacts("011_S_0021"); len(got) != 2 {
		t.Fatalf("expected 2 artifacts for 011_S_0021, got %v", got)
	}
}

func TestScanDeterministicOrder(t *testing.T) {
	root := buildTree(t)
	idx, err := Scan(root)
	if err != nil {
		t.Fatalf("Scan returned error: %v", err)
	}
	dirs := idx.DirNames()
	if dirs[0] != "002_S_0413" || dirs[1] != "011_S_0021" {
		t.Fatalf("expected sorted dir names, got %v", dirs)
	}
	all := idx.All()
	if len(all) != 3 {
		t.Fatalf("expected 3 pooled artifacts, got %d", len(all))
	}
	if filepath.Base(filepath.Dir(all[0])) != "002_S_0413" {
		t.Fatalf("expected pool ordered by dir name, got %v", all)
	}
}

func TestScanMissingRoot(t *testing.T) {
	if _, err := Scan(filepath.Join(t.TempDir(), "absent")); err == nil {
		t.Fatal("expected error for missing root")
	}
}

func TestScanByUID(t *testing.T) {
	root := buildTree(t)
	paths, err := ScanByUID(root)
	if err != nil {
		t.Fatalf("ScanByUID returned error: %v", err)
	}
	entry, ok := paths["123456"]
	if !ok {
		t.Fatalf("expected uid 123456 in map, got %v", paths)
	}
	if entry.Image == "" || entry.Segm == "" {
		t.Fatalf("expected both image and segm for uid 123456, got %+v", entry)
	}
	// The .nii (uncompressed) variant does not match the recursive
	// *Warped.nii.gz pattern, so uid 789000 has no entry.
	if _, ok := paths["789000"]; ok {
		t.Fatal("did not expect uid 789000 for uncompressed artifact")
	}
}
