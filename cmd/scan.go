package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"dirscope/internal/watch"
	"dirscope/pkg/logger"
	"dirscope/pkg/models"

	"github.com/spf13/cobra"
)

var (
	changedPattern string
	rootFlag       string
	watchDebounce  time.Duration
)

// scanCmd represents the scan command
var scanCmd = &cobra.Command{
	Use:   "scan [dir]",
	Short: "Scan a directory and print its annotated tree",
	Long: `Scan walks the directory (the configured root when omitted) and prints every
entry with its exclusion flag. Excluded entries stay in the tree so that callers
can show them and toggle patterns without rescanning.

Examples:
  # JSON tree of the current project
  dirscope scan

  # Unix-style tree, hiding build output and logs
  dirscope scan ./app --format tree --exclude "dist,*.log"

  # Only list Go files, keep dotfiles visible
  dirscope scan --include "*.go" --no-dotfiles

  # Exclude the patterns of the "frontend" module and its dependencies
  dirscope scan --module frontend`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScan,
}

// updateCmd represents the update command
var updateCmd = &cobra.Command{
	Use:   "update <tree.json>",
	Short: "Re-flag a saved tree for new exclude patterns",
	Long: `Update reads a tree printed by "dirscope scan" and recomputes its exclusion
flags for the current patterns without listing the filesystem. Use "-" to read
the tree from stdin. A plain list of relative paths, one per line with "/"
after folders, is accepted as well.

Examples:
  dirscope scan > tree.json
  dirscope update tree.json --exclude "dist,coverage" --changed coverage`,
	Args: cobra.ExactArgs(1),
	RunE: runUpdate,
}

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch [dir]",
	Short: "Rescan and print the tree whenever the directory changes",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runWatch,
}

func init() {
	addScanFlags(scanCmd)
	addOutputFlags(scanCmd)

	updateCmd.Flags().StringVarP(&excludeFlag, "exclude", "e", "", "Comma-separated exclude patterns")
	updateCmd.Flags().StringVarP(&includeFlag, "include", "i", "", "Comma-separated include patterns for files")
	updateCmd.Flags().StringVar(&changedPattern, "changed", "", "Pattern that triggered the update, for logging")
	updateCmd.Flags().StringVar(&matcherFlag, "matcher", "", "Ignore backend: glob, regex or segment")
	updateCmd.Flags().StringVar(&rootFlag, "root", "", "Project root the tree was scanned from")
	updateCmd.Flags().StringSliceVarP(&moduleIDs, "module", "m", nil, "Exclude the patterns of a configured module and its dependencies")
	addOutputFlags(updateCmd)

	addScanFlags(watchCmd)
	addOutputFlags(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watch.DefaultDebounce, "Quiet period before a rescan")
}

// runScan executes the scan command
func runScan(cmd *cobra.Command, args []string) error {
	orchestrator, err := newOrchestrator(argOrEmpty(args))
	if err != nil {
		return err
	}

	colored, err := useColor(colorMode, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	logger.Logger.WithField("root", orchestrator.Root()).Info("Starting dirscope scan")
	node, err := orchestrator.Scan(cmd.Context(), moduleIDs)
	if err != nil {
		logger.Logger.WithError(err).Error("Scan failed")
		return fmt.Errorf("scan failed: %w", err)
	}

	return Render(cmd.OutOrStdout(), node, format, colored)
}

// runUpdate executes the update command
func runUpdate(cmd *cobra.Command, args []string) error {
	data, err := readInput(cmd, args[0])
	if err != nil {
		logger.Logger.WithError(err).Error("Failed to read tree")
		return fmt.Errorf("failed to read tree: %w", err)
	}

	orchestrator, err := newOrchestrator(rootFlag)
	if err != nil {
		return err
	}

	colored, err := useColor(colorMode, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	node := readTree(data, orchestrator.Root())
	updated, err := orchestrator.Update(node, changedPattern, moduleIDs)
	if err != nil {
		logger.Logger.WithError(err).Error("Update failed")
		return fmt.Errorf("update failed: %w", err)
	}

	return Render(cmd.OutOrStdout(), updated, format, colored)
}

// runWatch executes the watch command
func runWatch(cmd *cobra.Command, args []string) error {
	orchestrator, err := newOrchestrator(argOrEmpty(args))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	colored, err := useColor(colorMode, out)
	if err != nil {
		return err
	}

	return orchestrator.Watch(cmd.Context(), moduleIDs, watchDebounce, func(node models.TreeNode) {
		if err := Render(out, node, format, colored); err != nil {
			logger.Logger.WithError(err).Error("Failed to render tree")
		}
	})
}

func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(name)
}
