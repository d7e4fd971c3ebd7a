package dcm2niix

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"
)

var commandContext = exec.CommandContext

// DefaultBinary is the converter binary name resolved via PATH.
const DefaultBinary = "dcm2niix"

// Client defines DICOM-to-NIfTI conversion behaviour.
type Client interface {
	Convert(ctx context.Context, seriesDir, outputDir string) (string, error)
}

// Option configures the CLI client.
type Option func(*CLI)

// WithBinary overrides the default binary name.
func WithBinary(binary string) Option {
	return func(c *CLI) {
		if binary != "" {
			c.binary = binary
		}
	}
}

// WithCompression toggles gzip output (-z y / -z n).
func WithCompression(enabled bool) Option {
	return func(c *CLI) {
		c.compress = enabled
	}
}

// WithTimeout bounds a single conversion. Zero means no limit.
func WithTimeout(timeout time.Duration) Option {
	return func(c *CLI) {
		c.timeout = timeout
	}
}

// CLI wraps the dcm2niix command-line converter.
type CLI struct {
	binary   string
	compress bool
	timeout  time.Duration
}

// NewCLI constructs a CLI client using defaults.
func NewCLI(opts ...Option) *CLI {
	cli := &CLI{binary: DefaultBinary, compress: true}
	for _, opt := range opts {
		opt(cli)
	}
	return cli
}

// Convert runs dcm2niix on one series folder and returns the tool's combined
// output. The output directory is created if missing.
func (c *CLI) Convert(ctx context.Context, seriesDir, outputDir string) (string, error) {
	if strings.TrimSpace(seriesDir) == "" {
		return "", errors.New("series directory required")
	}
	if strings.TrimSpace(outputDir) == "" {
		return "", errors.New("output directory required")
	}
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output directory: %w", err)
	}

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	compress := "y"
	if !c.compress {
		compress = "n"
	}
	args := []string{"-z", compress, "-o", outputDir, seriesDir}
	cmd := commandContext(ctx, c.binary, args...) //nolint:gosec
	output, err := cmd.CombinedOutput()
	if err != nil {
		return string(output), fmt.Errorf("dcm2niix conversion failed: %w", err)
	}
	return string(output), nil
}

var _ Client = (*CLI)(nil)
