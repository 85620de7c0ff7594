package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"dirscope/internal/ignore"
	"dirscope/internal/modules"
	"dirscope/internal/versions"
	"dirscope/pkg/models"
	"dirscope/pkg/utils"
)

// DefaultConfigFile is looked up in the working directory when no file is given
const DefaultConfigFile = ".dirscope.yml"

// MainVersionID names the root version synthesized for configs without versions
const MainVersionID = "main"

// Loader handles configuration loading and validation
type Loader struct{}

// NewLoader creates a new configuration loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadConfig loads configuration from file or returns default config. A
// missing file is not an error.
func (l *Loader) LoadConfig(configFile string) (*models.Config, error) {
	config := l.getDefaultConfig()

	if configFile == "" {
		return config, nil
	}

	data, err := os.ReadFile(configFile)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// getDefaultConfig returns the default configuration
func (l *Loader) getDefaultConfig() *models.Config {
	return &models.Config{
		Root:     ".",
		Matcher:  models.MatcherGlob,
		Settings: models.DefaultSettings(),
		Scan: models.ScanConfig{
			MaxFileSize: "1MB",
			WarnSize:    "100MB",
		},
		Logging: models.LoggingConfig{
			Level: "info",
		},
	}
}

// OverrideWithFlags overrides config values with command line flags
func (l *Loader) OverrideWithFlags(config *models.Config, flags *models.CLIOptions) error {
	if flags == nil {
		return nil
	}

	if flags.Root != "" {
		config.Root = flags.Root
	}

	if flags.Exclude != "" {
		config.Exclude = utils.JoinPatterns(utils.ParsePatterns(flags.Exclude))
	}

	if flags.Include != "" {
		config.Include = utils.JoinPatterns(utils.ParsePatterns(flags.Include))
	}

	if flags.Matcher != "" {
		config.Matcher = flags.Matcher
	}

	if flags.MaxFileSize != "" {
		config.Scan.MaxFileSize = flags.MaxFileSize
	}

	if flags.WarnSize != "" {
		config.Scan.WarnSize = flags.WarnSize
	}

	if flags.CommonExcludes {
		config.Scan.CommonExcludes = true
	}

	if flags.NoRepoIgnore {
		config.Settings.RespectRepoIgnore = false
	}
	if flags.NoDotfiles {
		config.Settings.IgnoreDotfiles = false
	}
	if flags.NoVCS {
		config.Settings.IgnoreVCS = false
	}

	return nil
}

// ValidateConfig validates the configuration
func (l *Loader) ValidateConfig(config *models.Config) error {
	if _, err := ignore.CompilerFor(config.Matcher); err != nil {
		return fmt.Errorf("invalid matcher: %w", err)
	}

	if config.Scan.MaxFileSize != "" {
		if _, err := utils.ParseSize(config.Scan.MaxFileSize); err != nil {
			return fmt.Errorf("invalid max_file_size: %w", err)
		}
	}

	if config.Scan.WarnSize != "" {
		if _, err := utils.ParseSize(config.Scan.WarnSize); err != nil {
			return fmt.Errorf("invalid warn_size: %w", err)
		}
	}

	if err := modules.NewRegistry(config.Modules).Validate(); err != nil {
		return fmt.Errorf("invalid modules: %w", err)
	}

	if len(config.Versions) > 0 {
		if _, err := versions.NewTree(config.Versions); err != nil {
			return fmt.Errorf("invalid versions: %w", err)
		}
	}

	return nil
}

// SaveConfig writes the configuration back to configFile
func (l *Loader) SaveConfig(config *models.Config, configFile string) error {
	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	if err := os.WriteFile(configFile, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// VersionTree builds the version tree of a config. A config without
// versions gets a single main version mirroring its top-level settings.
func (l *Loader) VersionTree(config *models.Config) (*versions.Tree, error) {
	stored := config.Versions
	if len(stored) == 0 {
		stored = []models.ProjectVersion{{
			ID:       MainVersionID,
			Name:     MainVersionID,
			Path:     config.Root,
			Exclude:  config.Exclude,
			Include:  config.Include,
			Settings: config.Settings,
		}}
	}
	return versions.NewTree(stored)
}
