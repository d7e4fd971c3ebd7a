package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"neuroprep/internal/deps"
	"neuroprep/internal/dicomscan"
	"neuroprep/internal/logging"
	"neuroprep/internal/services/dcm2niix"
)

func newConvertCommand(ctx *commandContext) *cobra.Command {
	var dicomRoot string
	var outputDir string

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert DICOM series folders to NIfTI via dcm2niix",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			log := logging.NewComponentLogger(logger, "convert")

			root := strings.TrimSpace(dicomRoot)
			if root == "" {
				root = cfg.Paths.DICOMRoot
			}
			out := strings.TrimSpace(outputDir)
			if out == "" {
				out = cfg.Paths.NIfTIDir
			}
			if root == "" {
				return fmt.Errorf("dicom root not configured; pass --dicom-root or set paths.dicom_root")
			}
			if out == "" {
				return fmt.Errorf("output dir not configured; pass --output or set paths.nifti_dir")
			}
			if err := requireDir(root, "dicom root"); err != nil {
				return err
			}

			// The converter is required before any work starts.
			statuses := deps.Check(deps.Requirements(cfg.Converter.Binary))
			if missing := deps.MissingRequired(statuses); len(missing) > 0 {
				return fmt.Errorf("missing required dependencies: %v", missing)
			}

			release, err := lockOutputDir(out)
			if err != nil {
				return err
			}
			defer release()

			series, err := dicomscan.FindSeries(root)
			if err != nil {
				return err
			}
			if len(series) == 0 {
				return fmt.Errorf("no DICOM series found under %q", root)
			}
			log.InfoContext(cmd.Context(), "series discovered",
				slog.String("root", root),
				slog.Int("series", len(series)),
			)

			client := dcm2niix.NewCLI(
				dcm2niix.WithBinary(cfg.Converter.Binary),
				dcm2niix.WithCompression(cfg.Converter.Compress),
				dcm2niix.WithTimeout(time.Duration(cfg.Converter.TimeoutSeconds)*time.Second),
			)

			converted, failed := 0, 0
			for _, s := range series {
				output, err := client.Convert(cmd.Context(), s.Dir, out)
				if err != nil {
					failed++
					log.ErrorContext(cmd.Context(), "series conversion failed",
						slog.String("series_dir", s.Dir),
						slog.String("series_uid", s.SeriesInstanceUID),
						slog.String("tool_output", strings.TrimSpace(output)),
						slog.String("error", err.Error()),
					)
					continue
				}
				converted++
				log.InfoContext(cmd.Context(), "series converted",
					slog.String("series_dir", s.Dir),
					slog.String("patient_id", s.PatientID),
					slog.String("study_date", s.StudyDate),
					slog.Int("slices", s.SliceCount),
				)
			}

			rows := [][]string{
				{"Series found", strconv.Itoa(len(series))},
				{"Converted", strconv.Itoa(converted)},
				{"Failed", strconv.Itoa(failed)},
				{"Output", out},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows))
			if failed > 0 {
				return fmt.Errorf("%d of %d series failed to convert", failed, len(series))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dicomRoot, "dicom-root", "", "DICOM download tree (defaults to config)")
	cmd.Flags().StringVar(&outputDir, "output", "", "NIfTI output directory (defaults to config)")
	return cmd
}
