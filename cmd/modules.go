package cmd

import (
	"fmt"
	"sort"
	"strings"

	"dirscope/internal/engine"
	"dirscope/internal/modules"
	"dirscope/pkg/logger"

	"github.com/spf13/cobra"
)

// modulesCmd groups the module commands
var modulesCmd = &cobra.Command{
	Use:   "modules",
	Short: "Inspect the pattern modules of the config file",
	Long: `Modules are named pattern bundles declared in the config file. A module can
depend on other modules; resolving it yields the union of its own patterns and
those of every module it reaches.`,
}

var modulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured modules with their dependencies",
	Args:  cobra.NoArgs,
	RunE:  runModulesList,
}

var modulesResolveCmd = &cobra.Command{
	Use:   "resolve <id>",
	Short: "Print the pattern closure of a module, one pattern per line",
	Args:  cobra.ExactArgs(1),
	RunE:  runModulesResolve,
}

func init() {
	modulesCmd.AddCommand(modulesListCmd)
	modulesCmd.AddCommand(modulesResolveCmd)
}

func loadRegistry() (*modules.Registry, error) {
	cfg, err := loadConfiguration(nil)
	if err != nil {
		return nil, err
	}
	return modules.NewRegistry(cfg.Modules), nil
}

func runModulesList(cmd *cobra.Command, args []string) error {
	registry, err := loadRegistry()
	if err != nil {
		return err
	}

	graph := registry.Graph()
	if len(graph) == 0 {
		logger.Logger.WithField("config", configPath()).Info("No modules configured")
		return nil
	}

	for _, id := range sortedKeys(graph) {
		m := graph[id]
		line := id
		if m.Name != "" && m.Name != id {
			line += " (" + m.Name + ")"
		}
		if deps := registry.Dependencies(id); len(deps) > 0 {
			line += " -> " + strings.Join(deps, ", ")
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
	return nil
}

func runModulesResolve(cmd *cobra.Command, args []string) error {
	registry, err := loadRegistry()
	if err != nil {
		return err
	}

	if _, err := registry.Get(args[0]); err != nil {
		logger.Logger.WithError(err).Error("Failed to resolve module")
		return fmt.Errorf("failed to resolve module: %w", err)
	}

	for _, p := range engine.ResolveModulePatterns(registry.Graph(), args[0]) {
		fmt.Fprintln(cmd.OutOrStdout(), p)
	}
	return nil
}

func sortedKeys(graph modules.Graph) []string {
	keys := make([]string, 0, len(graph))
	for id := range graph {
		keys = append(keys, id)
	}
	sort.Strings(keys)
	return keys
}
