package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	DICOMRoot       string `toml:"dicom_root"`
	NIfTIDir        string `toml:"nifti_dir"`
	PreprocessedDir string `toml:"preprocessed_dir"`
	OutputDir       string `toml:"output_dir"`
	LogDir          string `toml:"log_dir"`
	CacheDir        string `toml:"cache_dir"`
}

// Converter contains configuration for the external DICOM to NIfTI converter.
type Converter struct {
	Binary         string `toml:"binary"`
	Compress       bool   `toml:"compress"`
	TimeoutSeconds int    `toml:"timeout_seconds"`
}

// Pairing contains default constraints for longitudinal pair building.
type Pairing struct {
	Mode               string  `toml:"mode"`
	MinDays            int     `toml:"min_days"`
	MinYears           float64 `toml:"min_years"`
	SameSplit          bool    `toml:"same_split"`
	MaxPairsPerSubject int     `toml:"max_pairs_per_subject"`
	SubjectGroup       string  `toml:"subject_group"`
	SubjectRegex       string  `toml:"subject_regex"`
}

// ScanCache contains configuration for the artifact index cache.
type ScanCache struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// SampleCache contains configuration for the loader's persistent
// transformed-sample cache.
type SampleCache struct {
	Dir    string `toml:"dir"`
	MaxGiB int    `toml:"max_gib"`
}

// Logging contains log output configuration.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Config encapsulates all configuration values for neuroprep.
//
// Configuration sections by subsystem:
//   - Paths: input/output directory defaults shared by commands
//   - Converter: dcm2niix invocation settings
//   - Pairing: default pair constraints for the pairs command
//   - ScanCache: sqlite cache for the preprocessed-tree index
//   - SampleCache: persistent transformed-sample cache bounds
//   - Logging: log format and level
type Config struct {
	Paths       Paths       `toml:"paths"`
	Converter   Converter   `toml:"converter"`
	Pairing     Pairing     `toml:"pairing"`
	ScanCache   ScanCache   `toml:"scan_cache"`
	SampleCache SampleCache `toml:"sample_cache"`
	Logging     Logging     `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration
// file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/neuroprep/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned
// config has all path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		if _, err := os.Stat(expanded); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := DefaultConfigPath()
	if err != nil {
		return "", false, err
	}
	projectPath, err := filepath.Abs("neuroprep.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}
	return defaultPath, false, nil
}

// EnsureDirectories creates the directories commands write into. Input
// directories are left alone; their absence is reported by the command that
// needs them.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.LogDir, c.Paths.CacheDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}
	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
