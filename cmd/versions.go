package cmd

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"dirscope/internal/config"
	"dirscope/internal/versions"
	"dirscope/pkg/logger"
	"dirscope/pkg/models"

	"github.com/spf13/cobra"
)

var fromVersion string

// versionsCmd groups the version tree commands
var versionsCmd = &cobra.Command{
	Use:   "versions",
	Short: "Manage the project versions stored in the config file",
	Long: `Versions are named snapshots of a project's path, patterns and settings. They
form a tree: every version except the root has a parent. A config without
versions has a single "main" version built from its top-level settings.`,
}

var versionsListCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the version tree",
	Args:  cobra.NoArgs,
	RunE:  runVersionsList,
}

var versionsCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a version copied from another one",
	Args:  cobra.ExactArgs(1),
	RunE:  runVersionsCreate,
}

var versionsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a version and all of its descendants",
	Args:  cobra.ExactArgs(1),
	RunE:  runVersionsDelete,
}

var versionsMoveCmd = &cobra.Command{
	Use:   "move <id> <parent>",
	Short: "Reparent a version",
	Long: `Move reparents a version. Moving a version below itself or one of its
descendants would create a cycle and is refused; the config is left untouched.`,
	Args: cobra.ExactArgs(2),
	RunE: runVersionsMove,
}

func init() {
	versionsCreateCmd.Flags().StringVar(&fromVersion, "from", "", "Version to copy (default the root version)")

	versionsCmd.AddCommand(versionsListCmd)
	versionsCmd.AddCommand(versionsCreateCmd)
	versionsCmd.AddCommand(versionsDeleteCmd)
	versionsCmd.AddCommand(versionsMoveCmd)
}

func loadVersions() (*models.Config, *versions.Tree, error) {
	cfg, err := loadConfiguration(nil)
	if err != nil {
		return nil, nil, err
	}

	tree, err := config.NewLoader().VersionTree(cfg)
	if err != nil {
		logger.Logger.WithError(err).Error("Invalid version tree")
		return nil, nil, fmt.Errorf("invalid version tree: %w", err)
	}
	return cfg, tree, nil
}

func saveVersions(cfg *models.Config, tree *versions.Tree) error {
	cfg.Versions = tree.List()
	if err := config.NewLoader().SaveConfig(cfg, configPath()); err != nil {
		logger.Logger.WithError(err).Error("Failed to save configuration")
		return fmt.Errorf("failed to save configuration: %w", err)
	}
	logger.Logger.WithFields(map[string]interface{}{
		"config":   configPath(),
		"versions": len(cfg.Versions),
	}).Debug("Version tree saved")
	return nil
}

func runVersionsList(cmd *cobra.Command, args []string) error {
	_, tree, err := loadVersions()
	if err != nil {
		return err
	}

	writeVersion(cmd.OutOrStdout(), tree, tree.Root(), 0)
	return nil
}

func writeVersion(w io.Writer, tree *versions.Tree, v models.ProjectVersion, depth int) {
	line := strings.Repeat("  ", depth) + v.ID
	if v.Name != "" && v.Name != v.ID {
		line += " (" + v.Name + ")"
	}
	fmt.Fprintln(w, line)

	for _, child := range tree.Children(v.ID) {
		writeVersion(w, tree, child, depth+1)
	}
}

func runVersionsCreate(cmd *cobra.Command, args []string) error {
	cfg, tree, err := loadVersions()
	if err != nil {
		return err
	}

	v, err := tree.Create(args[0], fromVersion)
	if err != nil {
		logger.Logger.WithError(err).Error("Failed to create version")
		return fmt.Errorf("failed to create version: %w", err)
	}
	if err := saveVersions(cfg, tree); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), v.ID)
	return nil
}

func runVersionsDelete(cmd *cobra.Command, args []string) error {
	cfg, tree, err := loadVersions()
	if err != nil {
		return err
	}

	removed, err := tree.Delete(args[0])
	if err != nil {
		logger.Logger.WithError(err).Error("Failed to delete version")
		return fmt.Errorf("failed to delete version: %w", err)
	}
	if err := saveVersions(cfg, tree); err != nil {
		return err
	}

	for _, id := range removed {
		fmt.Fprintln(cmd.OutOrStdout(), id)
	}
	return nil
}

func runVersionsMove(cmd *cobra.Command, args []string) error {
	cfg, tree, err := loadVersions()
	if err != nil {
		return err
	}

	if err := tree.Move(args[0], args[1]); err != nil {
		if errors.Is(err, versions.ErrCycle) {
			logger.Logger.WithError(err).Warn("Move refused")
			return fmt.Errorf("cannot move %s under %s: it would create a cycle", args[0], args[1])
		}
		logger.Logger.WithError(err).Error("Failed to move version")
		return fmt.Errorf("failed to move version: %w", err)
	}

	return saveVersions(cfg, tree)
}
