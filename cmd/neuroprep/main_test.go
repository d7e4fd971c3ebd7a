package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"neuroprep/internal/config"
	"neuroprep/internal/manifest"
	"neuroprep/internal/testsupport"
)

func newTestConfig(t *testing.T, opts ...testsupport.ConfigOption) (*config.Config, string) {
	t.Helper()
	cfg := testsupport.NewConfig(t, opts...)
	cfg.Logging.Level = "error"
	return cfg, testsupport.WriteConfigFile(t, cfg)
}

func runCLI(t *testing.T, configPath string, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(append([]string{"--config", configPath}, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestCLIConfigInit(t *testing.T) {
	target := filepath.Join(t.TempDir(), "config.toml")
	out, _, err := runCLI(t, "", "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	if !strings.Contains(out, "Wrote sample configuration") {
		t.Fatalf("unexpected init output: %q", out)
	}
	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected sample config written: %v", err)
	}

	if _, _, err := runCLI(t, "", "config", "init", "--path", target); err == nil {
		t.Fatal("expected error when config exists without --overwrite")
	}
	if _, _, err := runCLI(t, "", "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("config init --overwrite: %v", err)
	}
}

func TestCLIIndexCommand(t *testing.T) {
	cfg, configPath := newTestConfig(t)
	testsupport.WritePreprocessedSubject(t, cfg.Paths.PreprocessedDir, "002_S_0413", true)
	testsupport.WritePreprocessedSubject(t, cfg.Paths.PreprocessedDir, "011_S_0021", false)

	out, _, err := runCLI(t, configPath, "index")
	if err != nil {
		t.Fatalf("index: %v", err)
	}
	if !strings.Contains(out, "Subject directories") || !strings.Contains(out, "2") {
		t.Fatalf("unexpected index output: %q", out)
	}

	// Second run should hit the cache and report the same counts.
	out, _, err = runCLI(t, configPath, "index")
	if err != nil {
		t.Fatalf("index (cached): %v", err)
	}
	if !strings.Contains(out, "2") {
		t.Fatalf("unexpected cached index output: %q", out)
	}

	if _, _, err := runCLI(t, configPath, "index", "--rebuild"); err != nil {
		t.Fatalf("index --rebuild: %v", err)
	}
}

func TestCLIMatchCommand(t *testing.T) {
	cfg, configPath := newTestConfig(t)
	testsupport.WritePreprocessedSubject(t, cfg.Paths.PreprocessedDir, "002_S_0413", true)

	sourcePath := filepath.Join(testsupport.BaseDir(cfg), "source.csv")
	source := "image_id,subject_id,series_id,image_visit,split\nI999,002_S_0413,S1,m0,\n"
	if err := os.WriteFile(sourcePath, []byte(source), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	outPath := filepath.Join(cfg.Paths.OutputDir, "dataset.csv")

	out, _, err := runCLI(t, configPath, "match",
		"--source-csv", sourcePath,
		"--output", outPath,
	)
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if !strings.Contains(out, "Matched") {
		t.Fatalf("unexpected match output: %q", out)
	}

	rows, err := manifest.Read(outPath)
	if err != nil {
		t.Fatalf("read dataset: %v", err)
	}
	if len(rows) != 1 || rows[0].SubjectID != "002_S_0413" {
		t.Fatalf("unexpected dataset rows: %+v", rows)
	}
	if rows[0].Split != "train" {
		t.Fatalf("expected default split, got %q", rows[0].Split)
	}
	if rows[0].SegmPath == "" {
		t.Fatalf("expected segm path, got %+v", rows[0])
	}
}

func TestCLIPairsCommand(t *testing.T) {
	cfg, configPath := newTestConfig(t)

	datasetPath := filepath.Join(testsupport.BaseDir(cfg), "dataset.csv")
	rows := []manifest.Row{
		{SubjectID: "s", Split: "train", ImagePath: "/pre/s/ses_20180101/img.nii.gz"},
		{SubjectID: "s", Split: "train", ImagePath: "/pre/s/ses_20200101/img.nii.gz"},
		{SubjectID: "t", Split: "test", ImagePath: "/pre/t/ses_20190101/img.nii.gz"},
	}
	if err := manifest.Write(datasetPath, rows); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	outDir := filepath.Join(testsupport.BaseDir(cfg), "pairs")

	out, _, err := runCLI(t, configPath, "pairs",
		"--dataset", datasetPath,
		"--output", outDir,
		"--pairing", "edge",
	)
	if err != nil {
		t.Fatalf("pairs: %v", err)
	}
	if !strings.Contains(out, "Pairs") {
		t.Fatalf("unexpected pairs output: %q", out)
	}

	aRows, err := manifest.Read(filepath.Join(outDir, "A.csv"))
	if err != nil {
		t.Fatalf("read A.csv: %v", err)
	}
	if len(aRows) != 3 {
		t.Fatalf("expected 3 A.csv rows, got %d", len(aRows))
	}
	bRows, err := manifest.Read(filepath.Join(outDir, "B.csv"))
	if err != nil {
		t.Fatalf("read B.csv: %v", err)
	}
	if len(bRows) != 2 {
		t.Fatalf("expected one pair (2 rows) in B.csv, got %d", len(bRows))
	}
	if bRows[0].ImagePath != rows[0].ImagePath {
		t.Fatalf("expected earlier scan first, got %q", bRows[0].ImagePath)
	}
}

func TestCLIPairsSplitFilter(t *testing.T) {
	cfg, configPath := newTestConfig(t)

	datasetPath := filepath.Join(testsupport.BaseDir(cfg), "dataset.csv")
	rows := []manifest.Row{
		{SubjectID: "s", Split: "train", ImagePath: "/pre/s/ses_20180101/img.nii.gz"},
		{SubjectID: "s", Split: "test", ImagePath: "/pre/s/ses_20200101/img.nii.gz"},
	}
	if err := manifest.Write(datasetPath, rows); err != nil {
		t.Fatalf("write dataset: %v", err)
	}
	outDir := filepath.Join(testsupport.BaseDir(cfg), "pairs")

	if _, _, err := runCLI(t, configPath, "pairs",
		"--dataset", datasetPath,
		"--output", outDir,
		"--split-filter", "train",
	); err != nil {
		t.Fatalf("pairs: %v", err)
	}
	aRows, err := manifest.Read(filepath.Join(outDir, "A.csv"))
	if err != nil {
		t.Fatalf("read A.csv: %v", err)
	}
	if len(aRows) != 1 || aRows[0].Split != "train" {
		t.Fatalf("expected filtered A.csv, got %+v", aRows)
	}
}

func TestCLIBuildCommand(t *testing.T) {
	cfg, configPath := newTestConfig(t)
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.PreprocessedDir, "sub", "I123456_x", "turboprep_Warped.nii.gz"), 1)

	base := testsupport.BaseDir(cfg)
	studyPath := filepath.Join(base, "study.csv")
	study := "PTID,Image Data ID,EXAMDATE,PTGENDER,AGE,DX\n002_S_0413,I123456,2018-03-15,Female,73.2,MCI\n"
	if err := os.WriteFile(studyPath, []byte(study), 0o644); err != nil {
		t.Fatalf("write study: %v", err)
	}
	manPath := filepath.Join(base, "manifest.csv")
	man := "Subject,Image ID,Acq Date\n002_S_0413,123456,3/15/2018\n"
	if err := os.WriteFile(manPath, []byte(man), 0o644); err != nil {
		t.Fatalf("write manifest: %v", err)
	}
	outDir := filepath.Join(base, "built")

	out, _, err := runCLI(t, configPath, "build",
		"--study-csv", studyPath,
		"--manifest-csv", manPath,
		"--output-dir", outDir,
	)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if !strings.Contains(out, "Dataset rows") {
		t.Fatalf("unexpected build output: %q", out)
	}

	rows, err := manifest.Read(filepath.Join(outDir, "dataset.csv"))
	if err != nil {
		t.Fatalf("read dataset: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected 1 dataset row, got %d", len(rows))
	}
	if rows[0].Sex != "1" || rows[0].Diagnosis != "0.5" {
		t.Fatalf("unexpected encodings: %+v", rows[0])
	}
	if rows[0].ImagePath == "" {
		t.Fatalf("expected artifact path resolved from tree, got %+v", rows[0])
	}
}

func TestCLIConvertRunsStubbedConverter(t *testing.T) {
	cfg, configPath := newTestConfig(t, testsupport.WithStubbedBinaries("dcm2niix"))
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.DICOMRoot, "series", "slice.dcm"), 1)

	out, _, err := runCLI(t, configPath, "convert")
	if err != nil {
		t.Fatalf("convert: %v", err)
	}
	if !strings.Contains(out, "Converted") || !strings.Contains(out, "1") {
		t.Fatalf("unexpected convert output: %q", out)
	}
}

func TestCLIConvertAbortsWithoutConverter(t *testing.T) {
	cfg, configPath := newTestConfig(t, testsupport.WithConverterBinary("definitely-not-dcm2niix"))
	testsupport.WriteFile(t, filepath.Join(cfg.Paths.DICOMRoot, "series", "slice.dcm"), 1)

	if _, _, err := runCLI(t, configPath, "convert"); err == nil {
		t.Fatal("expected convert to abort when the converter is missing")
	}
}

func TestCLIDepsCommand(t *testing.T) {
	_, configPath := newTestConfig(t, testsupport.WithStubbedBinaries())

	out, _, err := runCLI(t, configPath, "deps")
	if err != nil {
		t.Fatalf("deps: %v", err)
	}
	if !strings.Contains(out, "dcm2niix") || !strings.Contains(out, "yes") {
		t.Fatalf("expected converter available, got %q", out)
	}
}
