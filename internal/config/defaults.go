package config

import (
	"os"
	"path/filepath"
	"strings"
)

const (
	defaultOutputDir          = "~/.local/share/neuroprep/output"
	defaultLogDir             = "~/.local/share/neuroprep/logs"
	defaultConverterBinary    = "dcm2niix"
	defaultConverterTimeout   = 600
	defaultPairingMode        = "edge"
	defaultSubjectGroup       = "exact"
	defaultLogFormat          = "console"
	defaultLogLevel           = "info"
	defaultSampleCacheMaxGiB  = 20
	defaultScanCacheFileName  = "scan_index.db"
	defaultSampleCacheDirName = "samples"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			LogDir:    defaultLogDir,
			CacheDir:  defaultCacheDir(),
		},
		Converter: Converter{
			Binary:         defaultConverterBinary,
			Compress:       true,
			TimeoutSeconds: defaultConverterTimeout,
		},
		Pairing: Pairing{
			Mode:         defaultPairingMode,
			SubjectGroup: defaultSubjectGroup,
		},
		ScanCache: ScanCache{
			Enabled: true,
		},
		SampleCache: SampleCache{
			MaxGiB: defaultSampleCacheMaxGiB,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}

func defaultCacheDir() string {
	if base, ok := os.LookupEnv("XDG_CACHE_HOME"); ok && strings.TrimSpace(base) != "" {
		return filepath.Join(base, "neuroprep")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "~/.cache/neuroprep"
	}
	return filepath.Join(home, ".cache", "neuroprep")
}
