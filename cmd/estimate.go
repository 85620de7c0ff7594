package cmd

import (
	"fmt"

	"dirscope/pkg/logger"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

// estimateCmd represents the estimate command
var estimateCmd = &cobra.Command{
	Use:   "estimate [dir]",
	Short: "Count the files and bytes a scan would visit",
	Long: `Estimate walks the directory in parallel and counts the non-excluded files,
folders and bytes, without building a tree. A warning is printed when the
total is above --warn-size.

Examples:
  dirscope estimate
  dirscope estimate ~/src/monorepo --warn-size 2GB --common-excludes`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEstimate,
}

func init() {
	addScanFlags(estimateCmd)
	estimateCmd.Flags().StringVar(&warnSize, "warn-size", "", "Warn when the counted bytes exceed this size (default from config, 100MB)")
}

// runEstimate executes the estimate command
func runEstimate(cmd *cobra.Command, args []string) error {
	orchestrator, err := newOrchestrator(argOrEmpty(args))
	if err != nil {
		return err
	}

	report, exceeded, err := orchestrator.Estimate(cmd.Context(), moduleIDs)
	if err != nil {
		logger.Logger.WithError(err).Error("Estimate failed")
		return fmt.Errorf("estimate failed: %w", err)
	}

	logger.Logger.WithFields(map[string]interface{}{
		"files":    report.Files,
		"folders":  report.Folders,
		"bytes":    report.Bytes,
		"skipped":  report.Skipped,
		"errors":   report.Errors,
		"duration": report.Duration.String(),
	}).Debug("Estimate completed")

	fmt.Fprintln(cmd.OutOrStdout(), report.String())
	if report.Errors > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "%s entries could not be read\n", humanize.Comma(report.Errors))
	}

	if exceeded {
		logger.Logger.WithField("size", humanize.Bytes(uint64(report.Bytes))).
			Warn("Project is larger than the configured warn size, consider more exclusions")
		fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s is above the warn size of %s\n",
			humanize.Bytes(uint64(report.Bytes)), orchestrator.config.Scan.WarnSize)
	}

	return nil
}
