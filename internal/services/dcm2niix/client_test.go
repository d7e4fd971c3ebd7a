package dcm2niix

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"testing"
	"time"
)

func TestNewCLIWithBinary(t *testing.T) {
	cli := NewCLI(WithBinary("/opt/dcm2niix"))
	if cli.binary != "/opt/dcm2niix" {
		t.Fatalf("expected binary override to be applied, got %q", cli.binary)
	}
}

func TestConvertRequiresSeriesDir(t *testing.T) {
	cli := NewCLI()
	if _, err := cli.Convert(context.Background(), "", t.TempDir()); err == nil {
		t.Fatal("expected error when series directory is empty")
	}
}

func TestConvertRequiresOutputDir(t *testing.T) {
	cli := NewCLI()
	if _, err := cli.Convert(context.Background(), t.TempDir(), " "); err == nil {
		t.Fatal("expected error when output directory is empty")
	}
}

func TestConvertArguments(t *testing.T) {
	var capturedArgs []string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		capturedArgs = append([]string(nil), args...)
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "DCM2NIIX_HELPER_MODE=success")
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})

	cli := NewCLI()
	series := t.TempDir()
	output := filepath.Join(t.TempDir(), "nifti")
	if _, err := cli.Convert(context.Background(), series, output); err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}

	want := []string{"-z", "y", "-o", output, series}
	if len(capturedArgs) != len(want) {
		t.Fatalf("expected args %v, got %v", want, capturedArgs)
	}
	for i := range want {
		if capturedArgs[i] != want[i] {
			t.Fatalf("expected args %v, got %v", want, capturedArgs)
		}
	}
	if _, err := os.Stat(output); err != nil {
		t.Fatalf("expected output directory created: %v", err)
	}
}

func TestConvertCompressionDisabled(t *testing.T) {
	var capturedArgs []string
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		capturedArgs = append([]string(nil), args...)
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "DCM2NIIX_HELPER_MODE=success")
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})

	cli := NewCLI(WithCompression(false))
	if _, err := cli.Convert(context.Background(), t.TempDir(), t.TempDir()); err != nil {
		t.Fatalf("Convert returned error: %v", err)
	}
	if len(capturedArgs) < 2 || capturedArgs[0] != "-z" || capturedArgs[1] != "n" {
		t.Fatalf("expected -z n, got %v", capturedArgs)
	}
}

func TestConvertFailureIncludesOutput(t *testing.T) {
	setHelperCommand(t, "failure")

	cli := NewCLI()
	output, err := cli.Convert(context.Background(), t.TempDir(), t.TempDir())
	if err == nil {
		t.Fatal("expected conversion failure error")
	}
	if output == "" {
		t.Fatal("expected captured tool output alongside the error")
	}
}

func TestConvertTimeout(t *testing.T) {
	setHelperCommand(t, "hang")

	cli := NewCLI(WithTimeout(100 * time.Millisecond))
	if _, err := cli.Convert(context.Background(), t.TempDir(), t.TempDir()); err == nil {
		t.Fatal("expected timeout error")
	}
}

func setHelperCommand(t *testing.T, mode string) {
	t.Helper()
	original := commandContext
	commandContext = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		cmd := exec.CommandContext(ctx, os.Args[0], "-test.run=TestHelperProcess")
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", fmt.Sprintf("DCM2NIIX_HELPER_MODE=%s", mode))
		return cmd
	}
	t.Cleanup(func() {
		commandContext = original
	})
}

func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}

	switch os.Getenv("DCM2NIIX_HELPER_MODE") {
	case "success":
		fmt.Println("Convert 1 DICOM as series_001 (256x256x170x1)")
		os.Exit(0)
	case "failure":
		fmt.Fprintln(os.Stderr, "no valid DICOM files found")
		os.Exit(1)
	case "hang":
		time.Sleep(5 * time.Second)
		os.Exit(0)
	default:
		os.Exit(0)
	}
}
