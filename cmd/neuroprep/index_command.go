package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
)

func newIndexCommand(ctx *commandContext) *cobra.Command {
	var preDir string
	var rebuild bool

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Build or refresh the preprocessed-tree artifact index",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}
			dir := strings.TrimSpace(preDir)
			if dir == "" {
				dir = cfg.Paths.PreprocessedDir
			}
			if err := requireDir(dir, "preprocessed directory"); err != nil {
				return err
			}

			idx, err := loadIndex(cmd.Context(), cfg, dir, rebuild, logger)
			if err != nil {
				return err
			}

			rows := [][]string{
				{"Root", idx.Root()},
				{"Subject directories", strconv.Itoa(idx.SubjectCount())},
				{"Warped artifacts", strconv.Itoa(idx.ArtifactCount())},
				{"Cache", scanCacheLabel(cfg.ScanCache.Enabled, rebuild)},
			}
			fmt.Fprintln(cmd.OutOrStdout(), renderTable([]string{"Field", "Value"}, rows))
			return nil
		},
	}

	cmd.Flags().StringVar(&preDir, "preprocessed-dir", "", "Preprocessed tree root (defaults to config)")
	cmd.Flags().BoolVar(&rebuild, "rebuild", false, "Ignore the cached index and rescan")
	return cmd
}

func scanCacheLabel(enabled, rebuild bool) string {
	switch {
	case !enabled:
		return "disabled"
	case rebuild:
		return "refreshed"
	default:
		return "enabled"
	}
}
