package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"neuroprep/internal/dataset"
	"neuroprep/internal/imageindex"
	"neuroprep/internal/logging"
	"neuroprep/internal/manifest"
	"neuroprep/internal/tabular"
)

func newBuildCommand(ctx *commandContext) *cobra.Command {
	var studyCSV string
	var manifestCSV string
	var preDir string
	var outputDir string
	var autoSplit bool
	var seed int64

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Build dataset.csv by joining study and manifest sheets",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			log := logging.NewComponentLogger(logger, "build")

			if strings.TrimSpace(studyCSV) == "" {
				return fmt.Errorf("--study-csv is required")
			}
			if strings.TrimSpace(manifestCSV) == "" {
				return fmt.Errorf("--manifest-csv is required")
			}
			out := strings.TrimSpace(outputDir)
			if out == "" {
				out = cfg.Paths.OutputDir
			}

			release, err := lockOutputDir(out)
			if err != nil {
				return err
			}
			defer release()

			study, err := tabular.ReadSheet(studyCSV)
			if err != nil {
				return err
			}
			man, err := tabular.ReadSheet(manifestCSV)
			if err != nil {
				return err
			}

			uidPaths := map[string]imageindex.UIDPaths{}
			dir := strings.TrimSpace(preDir)
			if dir == "" {
				dir = cfg.Paths.PreprocessedDir
			}
			if dir != "" {
				if err := requireDir(dir, "preprocessed directory"); err == nil {
					uidPaths, err = imageindex.ScanByUID(dir)
					if err != nil {
						return err
					}
				}
			}
			log.InfoContext(cmd.Context(), "sheets loaded",
				slog.Int("study_rows", len(study.Rows)),
				slog.Int("manifest_rows", len(man.Rows)),
				slog.Int("indexed_uids", len(uidPaths)),
			)

			rows, sum, err := dataset.BuildMerged(study, man, uidPaths, dataset.MergeOptions{
				AutoSplit: autoSplit,
				Seed:      seed,
				Progress:  progressEnabled(),
			})
			if err != nil {
				return err
			}

			outPath := filepath.Join(out, "dataset.csv")
			if err := manifest.Write(outPath, rows); err != nil {
				return err
			}
			log.InfoContext(cmd.Context(), "dataset written",
				slog.String("path", outPath),
				slog.Int("rows", len(rows)),
				slog.Int("with_artifacts", sum.Matched),
				slog.Int("skipped", sum.Skipped),
			)

			summary := [][]string{
				{"Manifest rows", strconv.Itoa(len(man.Rows))},
				{"Dataset rows", strconv.Itoa(len(rows))},
				{"With artifacts", strconv.Itoa(sum.Matched)},
				{"Skipped", strconv.Itoa(sum.Skipped)},
				{"Output", outPath},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, summary))
			return nil
		},
	}

	cmd.Flags().StringVar(&studyCSV, "study-csv", "", "Study sheet with demographics and exam dates")
	cmd.Flags().StringVar(&manifestCSV, "manifest-csv", "", "Download manifest sheet")
	cmd.Flags().StringVar(&preDir, "preprocessed-dir", "", "Preprocessed tree root (defaults to config)")
	cmd.Flags().StringVar(&outputDir, "output-dir", "", "Directory for dataset.csv (defaults to config)")
	cmd.Flags().BoolVar(&autoSplit, "auto-split", false, "Assign train/val/test to rows without a split")
	cmd.Flags().Int64Var(&seed, "seed", 42, "Seed for deterministic auto-split")
	return cmd
}
