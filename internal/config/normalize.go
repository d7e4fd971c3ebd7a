package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeConverter(); err != nil {
		return err
	}
	c.normalizePairing()
	if err := c.normalizeCaches(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.DICOMRoot, err = expandPath(c.Paths.DICOMRoot); err != nil {
		return fmt.Errorf("paths.dicom_root: %w", err)
	}
	if c.Paths.NIfTIDir, err = expandPath(c.Paths.NIfTIDir); err != nil {
		return fmt.Errorf("paths.nifti_dir: %w", err)
	}
	if c.Paths.PreprocessedDir, err = expandPath(c.Paths.PreprocessedDir); err != nil {
		return fmt.Errorf("paths.preprocessed_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.CacheDir) == "" {
		c.Paths.CacheDir = defaultCacheDir()
	}
	if c.Paths.CacheDir, err = expandPath(c.Paths.CacheDir); err != nil {
		return fmt.Errorf("paths.cache_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeConverter() error {
	c.Converter.Binary = strings.TrimSpace(c.Converter.Binary)
	if c.Converter.Binary == "" {
		c.Converter.Binary = defaultConverterBinary
	}
	if c.Converter.TimeoutSeconds <= 0 {
		c.Converter.TimeoutSeconds = defaultConverterTimeout
	}
	return nil
}

func (c *Config) normalizePairing() {
	c.Pairing.Mode = strings.ToLower(strings.TrimSpace(c.Pairing.Mode))
	if c.Pairing.Mode == "" {
		c.Pairing.Mode = defaultPairingMode
	}
	c.Pairing.SubjectGroup = strings.ToLower(strings.TrimSpace(c.Pairing.SubjectGroup))
	if c.Pairing.SubjectGroup == "" {
		c.Pairing.SubjectGroup = defaultSubjectGroup
	}
	c.Pairing.SubjectRegex = strings.TrimSpace(c.Pairing.SubjectRegex)
	if c.Pairing.MinDays < 0 {
		c.Pairing.MinDays = 0
	}
	if c.Pairing.MinYears < 0 {
		c.Pairing.MinYears = 0
	}
	if c.Pairing.MaxPairsPerSubject < 0 {
		c.Pairing.MaxPairsPerSubject = 0
	}
}

func (c *Config) normalizeCaches() error {
	var err error
	if strings.TrimSpace(c.ScanCache.Path) == "" {
		c.ScanCache.Path = filepath.Join(c.Paths.CacheDir, defaultScanCacheFileName)
	}
	if c.ScanCache.Path, err = expandPath(c.ScanCache.Path); err != nil {
		return fmt.Errorf("scan_cache.path: %w", err)
	}
	if strings.TrimSpace(c.SampleCache.Dir) == "" {
		c.SampleCache.Dir = filepath.Join(c.Paths.CacheDir, defaultSampleCacheDirName)
	}
	if c.SampleCache.Dir, err = expandPath(c.SampleCache.Dir); err != nil {
		return fmt.Errorf("sample_cache.dir: %w", err)
	}
	if c.SampleCache.MaxGiB <= 0 {
		c.SampleCache.MaxGiB = defaultSampleCacheMaxGiB
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
