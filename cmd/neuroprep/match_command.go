package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"neuroprep/internal/dataset"
	"neuroprep/internal/logging"
	"neuroprep/internal/manifest"
	"neuroprep/internal/tabular"
)

func newMatchCommand(ctx *commandContext) *cobra.Command {
	var sourceCSV string
	var preDir string
	var outputPath string
	var metadataCSV string
	var ageIsYears bool
	var limit int

	cmd := &cobra.Command{
		Use:   "match",
		Short: "Build dataset.csv by matching source rows to warped artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			log := logging.NewComponentLogger(logger, "match")

			dir := strings.TrimSpace(preDir)
			if dir == "" {
				dir = cfg.Paths.PreprocessedDir
			}
			if err := requireDir(dir, "preprocessed directory"); err != nil {
				return err
			}
			if strings.TrimSpace(sourceCSV) == "" {
				return fmt.Errorf("--source-csv is required")
			}
			out := strings.TrimSpace(outputPath)
			if out == "" {
				out = filepath.Join(cfg.Paths.OutputDir, "dataset.csv")
			}

			release, err := lockOutputDir(filepath.Dir(out))
			if err != nil {
				return err
			}
			defer release()

			source, err := tabular.ReadSheet(sourceCSV)
			if err != nil {
				return err
			}

			var meta dataset.Metadata
			if strings.TrimSpace(metadataCSV) != "" {
				meta, err = dataset.LoadMetadata(metadataCSV, ageIsYears)
				if err != nil {
					return err
				}
			}

			idx, err := loadIndex(cmd.Context(), cfg, dir, false, logger)
			if err != nil {
				return err
			}
			log.InfoContext(cmd.Context(), "artifact index ready",
				slog.Int("subjects", idx.SubjectCount()),
				slog.Int("artifacts", idx.ArtifactCount()),
				slog.Int("source_rows", len(source.Rows)),
			)

			rows, sum, err := dataset.BuildMatched(source, idx, meta, dataset.MatchOptions{
				Limit:    limit,
				Progress: progressEnabled(),
			})
			if err != nil {
				return err
			}
			if err := manifest.Write(out, rows); err != nil {
				return err
			}
			log.InfoContext(cmd.Context(), "dataset written",
				slog.String("path", out),
				slog.Int("matched", sum.Matched),
				slog.Int("skipped", sum.Skipped),
			)

			summary := [][]string{
				{"Source rows", strconv.Itoa(len(source.Rows))},
				{"Matched", strconv.Itoa(sum.Matched)},
				{"Skipped", strconv.Itoa(sum.Skipped)},
				{"Output", out},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, summary))
			return nil
		},
	}

	cmd.Flags().StringVar(&sourceCSV, "source-csv", "", "Source sheet with image/subject identifiers")
	cmd.Flags().StringVar(&preDir, "preprocessed-dir", "", "Preprocessed tree root (defaults to config)")
	cmd.Flags().StringVar(&outputPath, "output", "", "Output dataset.csv path")
	cmd.Flags().StringVar(&metadataCSV, "metadata-csv", "", "Optional per-subject metadata sheet")
	cmd.Flags().BoolVar(&ageIsYears, "age-is-years", false, "Metadata ages are in years (divide by 100)")
	cmd.Flags().IntVar(&limit, "limit", 0, "Process only the first N source rows")
	return cmd
}
