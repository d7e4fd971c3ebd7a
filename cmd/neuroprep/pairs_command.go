package main

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"neuroprep/internal/logging"
	"neuroprep/internal/manifest"
	"neuroprep/internal/pairing"
)

func newPairsCommand(ctx *commandContext) *cobra.Command {
	var datasetPath string
	var outputDir string
	var splitFilter string
	var mode string
	var minDays int
	var minYears float64
	var sameSplit bool
	var maxPairs int
	var subjectGroup string
	var subjectRegex string

	cmd := &cobra.Command{
		Use:   "pairs",
		Short: "Build A.csv and B.csv longitudinal pairs from dataset.csv",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			log := logging.NewComponentLogger(logger, "pairs")

			if strings.TrimSpace(datasetPath) == "" {
				return fmt.Errorf("--dataset is required")
			}
			out := strings.TrimSpace(outputDir)
			if out == "" {
				out = cfg.Paths.OutputDir
			}

			opts := pairing.Options{
				Mode:               cfg.Pairing.Mode,
				MinDays:            cfg.Pairing.MinDays,
				MinYears:           cfg.Pairing.MinYears,
				SameSplit:          cfg.Pairing.SameSplit,
				MaxPairsPerSubject: cfg.Pairing.MaxPairsPerSubject,
				SubjectGroup:       cfg.Pairing.SubjectGroup,
				SubjectRegex:       cfg.Pairing.SubjectRegex,
			}
			if cmd.Flags().Changed("pairing") {
				opts.Mode = mode
			}
			if cmd.Flags().Changed("min-days") {
				opts.MinDays = minDays
			}
			if cmd.Flags().Changed("min-years") {
				opts.MinYears = minYears
			}
			if cmd.Flags().Changed("same-split") {
				opts.SameSplit = sameSplit
			}
			if cmd.Flags().Changed("max-pairs-per-subject") {
				opts.MaxPairsPerSubject = maxPairs
			}
			if cmd.Flags().Changed("subject-group") {
				opts.SubjectGroup = subjectGroup
			}
			if cmd.Flags().Changed("subject-regex") {
				opts.SubjectRegex = subjectRegex
			}

			release, err := lockOutputDir(out)
			if err != nil {
				return err
			}
			defer release()

			rows, err := manifest.Read(datasetPath)
			if err != nil {
				return err
			}
			var allow []string
			if strings.TrimSpace(splitFilter) != "" {
				allow = strings.Split(splitFilter, ",")
			}
			rows = pairing.FilterSplits(rows, allow)
			log.InfoContext(cmd.Context(), "dataset rows in scope",
				slog.Int("rows", len(rows)),
				slog.String("mode", opts.Mode),
				slog.String("subject_group", opts.SubjectGroup),
			)

			aPath := filepath.Join(out, "A.csv")
			if err := manifest.Write(aPath, rows); err != nil {
				return err
			}

			pairRows, err := pairing.Pairs(rows, opts)
			if err != nil {
				return err
			}
			bPath := filepath.Join(out, "B.csv")
			if err := manifest.Write(bPath, pairRows); err != nil {
				return err
			}
			log.InfoContext(cmd.Context(), "pair files written",
				slog.String("a_path", aPath),
				slog.String("b_path", bPath),
				slog.Int("pairs", len(pairRows)/2),
			)

			summary := [][]string{
				{"Rows in scope", strconv.Itoa(len(rows))},
				{"A.csv rows", strconv.Itoa(len(rows))},
				{"Pairs", strconv.Itoa(len(pairRows) / 2)},
				{"B.csv rows", strconv.Itoa(len(pairRows))},
				{"Output", out},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, summary))
			return nil
		},
	}

	cmd.Flags().StringVar(&datasetPath, "dataset", "", "Input dataset.csv")
	cmd.Flags().StringVar(&outputDir, "output", "", "Directory for A.csv and B.csv (defaults to config)")
	cmd.Flags().StringVar(&splitFilter, "split-filter", "", "Comma list of splits to keep (empty keeps all)")
	cmd.Flags().StringVar(&mode, "pairing", "edge", "Pairing mode: edge or all")
	cmd.Flags().IntVar(&minDays, "min-days", 0, "Minimum gap in days")
	cmd.Flags().Float64Var(&minYears, "min-years", 0, "Minimum gap in years")
	cmd.Flags().BoolVar(&sameSplit, "same-split", false, "Require both rows of a pair to share a split")
	cmd.Flags().IntVar(&maxPairs, "max-pairs-per-subject", 0, "Cap pairs per subject group in all mode (0 = unlimited)")
	cmd.Flags().StringVar(&subjectGroup, "subject-group", "exact", "Grouping key: exact, first_token or regex")
	cmd.Flags().StringVar(&subjectRegex, "subject-regex", "", "Capture-group regex for --subject-group regex")
	return cmd
}
