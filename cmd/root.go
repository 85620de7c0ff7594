package cmd

import (
	"fmt"

	"dirscope/internal/config"
	"dirscope/pkg/logger"
	"dirscope/pkg/models"

	"github.com/spf13/cobra"
)

var (
	// Version information
	Version = "0.0.1"

	// Global flags
	configFile string
	verbose    bool
	quiet      bool

	// Scan flags, shared by scan, estimate and watch
	excludeFlag    string
	includeFlag    string
	matcherFlag    string
	maxFileSize    string
	warnSize       string
	noRepoIgnore   bool
	noDotfiles     bool
	noVCS          bool
	commonExcludes bool
	moduleIDs      []string

	// Output flags
	format    string
	colorMode string
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:     "dirscope",
	Short:   "Project tree scanner with gitignore-style exclusions",
	Version: Version,
	Long: `Dirscope walks a project directory and reports every file and folder as a
tree, flagging the entries that are excluded by the project's ignore rules.

Exclusions are layered, last match wins:
  - version-control directories (.git, .svn, .hg)
  - dotfiles
  - the root .gitignore
  - user patterns from --exclude, the config file and modules

The resulting tree is printed as JSON for other tools, or rendered like the
Unix tree command.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		configureLogging()
	},
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "", "Configuration file path (default "+config.DefaultConfigFile+")")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	RootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "Only log errors")

	RootCmd.AddCommand(scanCmd)
	RootCmd.AddCommand(updateCmd)
	RootCmd.AddCommand(estimateCmd)
	RootCmd.AddCommand(watchCmd)
	RootCmd.AddCommand(modulesCmd)
	RootCmd.AddCommand(versionsCmd)
}

// addScanFlags registers the flags that shape a scan on cmd
func addScanFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&excludeFlag, "exclude", "e", "", "Comma-separated exclude patterns")
	cmd.Flags().StringVarP(&includeFlag, "include", "i", "", "Comma-separated include patterns for files")
	cmd.Flags().StringVar(&matcherFlag, "matcher", "", "Ignore backend: glob, regex or segment")
	cmd.Flags().StringVar(&maxFileSize, "max-file-size", "", "Skip files larger than this size (e.g. 1MB)")
	cmd.Flags().BoolVar(&noRepoIgnore, "no-repo-ignore", false, "Do not read the root .gitignore")
	cmd.Flags().BoolVar(&noDotfiles, "no-dotfiles", false, "Do not exclude dotfiles")
	cmd.Flags().BoolVar(&noVCS, "no-vcs", false, "Do not exclude version-control directories")
	cmd.Flags().BoolVar(&commonExcludes, "common-excludes", false, "Also exclude node_modules, vendor, dist, build, target and __pycache__")
	cmd.Flags().StringSliceVarP(&moduleIDs, "module", "m", nil, "Exclude the patterns of a configured module and its dependencies")
}

// addOutputFlags registers the rendering flags on cmd
func addOutputFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&format, "format", "f", formatJSON, "Output format: json or tree")
	cmd.Flags().StringVar(&colorMode, "color", colorAuto, "Colorize tree output: auto, always or never")
}

func configureLogging() {
	if quiet {
		logger.SetQuiet()
	} else if verbose {
		logger.SetVerbose()
	}
}

func configPath() string {
	if configFile != "" {
		return configFile
	}
	return config.DefaultConfigFile
}

// scanOptions collects the scan flags of the current invocation. dir, when
// not empty, replaces the configured root.
func scanOptions(dir string) *models.CLIOptions {
	return &models.CLIOptions{
		Root:           dir,
		Exclude:        excludeFlag,
		Include:        includeFlag,
		ConfigFile:     configFile,
		Matcher:        matcherFlag,
		Format:         format,
		MaxFileSize:    maxFileSize,
		WarnSize:       warnSize,
		NoRepoIgnore:   noRepoIgnore,
		NoDotfiles:     noDotfiles,
		NoVCS:          noVCS,
		CommonExcludes: commonExcludes,
		Verbose:        verbose,
		Quiet:          quiet,
	}
}

// loadConfiguration loads the project file, applies cliOptions and
// validates the result
func loadConfiguration(cliOptions *models.CLIOptions) (*models.Config, error) {
	configLoader := config.NewLoader()
	cfg, err := configLoader.LoadConfig(configPath())
	if err != nil {
		logger.Logger.WithError(err).Error("Failed to load configuration")
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if !verbose && !quiet {
		logger.SetLevel(cfg.Logging.Level)
	}

	if err := configLoader.OverrideWithFlags(cfg, cliOptions); err != nil {
		logger.Logger.WithError(err).Error("Failed to process configuration")
		return nil, fmt.Errorf("failed to process configuration: %w", err)
	}

	if err := configLoader.ValidateConfig(cfg); err != nil {
		logger.Logger.WithError(err).Error("Configuration validation failed")
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	logger.Logger.WithField("config", configPath()).Debug("Configuration loaded")
	return cfg, nil
}

// newOrchestrator loads the configuration for dir and wraps it
func newOrchestrator(dir string) (*Orchestrator, error) {
	cliOptions := scanOptions(dir)
	cfg, err := loadConfiguration(cliOptions)
	if err != nil {
		return nil, err
	}
	return NewOrchestrator(cfg, cliOptions)
}

func argOrEmpty(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}
