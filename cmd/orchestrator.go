package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"dirscope/internal/engine"
	"dirscope/internal/estimate"
	"dirscope/internal/exclusion"
	"dirscope/internal/ignore"
	"dirscope/internal/modules"
	"dirscope/internal/scanner"
	"dirscope/internal/watch"
	"dirscope/pkg/logger"
	"dirscope/pkg/models"
	"dirscope/pkg/tree"
	"dirscope/pkg/utils"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

const (
	formatJSON = "json"
	formatTree = "tree"

	colorAuto   = "auto"
	colorAlways = "always"
	colorNever  = "never"
)

// Orchestrator ties a validated configuration to the scanning engine
type Orchestrator struct {
	config     *models.Config
	cliOptions *models.CLIOptions
	compiler   ignore.Compiler
	registry   *modules.Registry
}

// NewOrchestrator creates a new orchestrator instance
func NewOrchestrator(config *models.Config, cliOptions *models.CLIOptions) (*Orchestrator, error) {
	compiler, err := ignore.CompilerFor(config.Matcher)
	if err != nil {
		return nil, fmt.Errorf("failed to select matcher: %w", err)
	}
	if cliOptions == nil {
		cliOptions = &models.CLIOptions{}
	}

	return &Orchestrator{
		config:     config,
		cliOptions: cliOptions,
		compiler:   compiler,
		registry:   modules.NewRegistry(config.Modules),
	}, nil
}

// Root returns the project root the orchestrator scans
func (o *Orchestrator) Root() string {
	return o.config.Root
}

// ExcludePatterns merges the configured exclude list with the common
// excludes, when enabled, and the closures of moduleIDs
func (o *Orchestrator) ExcludePatterns(moduleIDs []string) (string, error) {
	var extra [][]string
	if o.config.Scan.CommonExcludes {
		extra = append(extra, models.CommonExcludes)
	}

	for _, id := range moduleIDs {
		patterns, err := o.registry.Patterns(id)
		if err != nil {
			return "", fmt.Errorf("failed to resolve module: %w", err)
		}
		logger.Logger.WithFields(map[string]interface{}{
			"module":   id,
			"patterns": len(patterns),
		}).Debug("Module patterns resolved")
		extra = append(extra, patterns)
	}

	return engine.MergePatterns(o.config.Exclude, extra...), nil
}

func (o *Orchestrator) engineOptions() ([]engine.Option, error) {
	opts := []engine.Option{engine.WithCompiler(o.compiler)}

	if o.config.Scan.MaxFileSize != "" {
		size, err := utils.ParseSize(o.config.Scan.MaxFileSize)
		if err != nil {
			return nil, fmt.Errorf("invalid max_file_size: %w", err)
		}
		opts = append(opts, engine.WithWalkerOptions(scanner.WithMaxFileSize(size)))
	}

	return opts, nil
}

// Scan walks the project root and returns the annotated tree
func (o *Orchestrator) Scan(ctx context.Context, moduleIDs []string) (models.TreeNode, error) {
	exclude, err := o.ExcludePatterns(moduleIDs)
	if err != nil {
		return models.TreeNode{}, err
	}
	opts, err := o.engineOptions()
	if err != nil {
		return models.TreeNode{}, err
	}

	start := time.Now()
	node := engine.ScanTree(ctx, o.config.Root, exclude, o.config.Include, o.config.Settings, opts...)

	fields := tree.Collect(node).Fields()
	fields["root"] = o.config.Root
	fields["duration"] = time.Since(start).Round(time.Millisecond).String()
	logger.Logger.WithFields(fields).Info("Scan completed")

	return node, nil
}

// Update re-flags a previously scanned tree under the current patterns
func (o *Orchestrator) Update(node models.TreeNode, changedPattern string, moduleIDs []string) (models.TreeNode, error) {
	exclude, err := o.ExcludePatterns(moduleIDs)
	if err != nil {
		return models.TreeNode{}, err
	}

	updated := engine.UpdateExclusions(o.config.Root, node, exclude, o.config.Include, changedPattern, o.config.Settings, engine.WithCompiler(o.compiler))
	return updated, nil
}

// Estimate counts what a scan would visit. exceeded reports whether the
// byte count is above the configured warn size.
func (o *Orchestrator) Estimate(ctx context.Context, moduleIDs []string) (report estimate.Report, exceeded bool, err error) {
	set, err := o.ignoreSet(moduleIDs)
	if err != nil {
		return estimate.Report{}, false, err
	}

	report, err = estimate.Run(ctx, o.config.Root, set, estimate.Options{})
	if err != nil {
		return report, false, fmt.Errorf("failed to estimate %s: %w", o.config.Root, err)
	}

	if o.config.Scan.WarnSize == "" {
		return report, false, nil
	}
	limit, err := utils.ParseSize(o.config.Scan.WarnSize)
	if err != nil {
		return report, false, fmt.Errorf("invalid warn_size: %w", err)
	}
	return report, report.Exceeds(limit), nil
}

// Watch scans once, then rescans after every burst of changes below the
// root. onTree receives each tree. Watch blocks until ctx is done.
func (o *Orchestrator) Watch(ctx context.Context, moduleIDs []string, debounce time.Duration, onTree func(models.TreeNode)) error {
	set, err := o.ignoreSet(moduleIDs)
	if err != nil {
		return err
	}

	node, err := o.Scan(ctx, moduleIDs)
	if err != nil {
		return err
	}
	onTree(node)

	rescans := make(chan []string, 1)
	w, err := watch.New(o.config.Root, set, watch.Options{
		Debounce: debounce,
		OnChange: func(paths []string) {
			select {
			case rescans <- paths:
			default:
				// a rescan is already queued and will see these changes
			}
		},
	})
	if err != nil {
		return fmt.Errorf("failed to start watcher: %w", err)
	}
	defer w.Close()

	go func() {
		if err := w.Run(ctx); err != nil {
			logger.Logger.WithError(err).Error("Watcher stopped")
		}
	}()

	logger.Logger.WithField("root", o.config.Root).Info("Watching for changes")
	for {
		select {
		case <-ctx.Done():
			return nil
		case paths := <-rescans:
			logger.Logger.WithField("changed", len(paths)).Debug("Rescanning")
			node, err := o.Scan(ctx, moduleIDs)
			if err != nil {
				return err
			}
			if ctx.Err() != nil {
				return nil
			}
			onTree(node)
		}
	}
}

func (o *Orchestrator) ignoreSet(moduleIDs []string) (*ignore.Set, error) {
	exclude, err := o.ExcludePatterns(moduleIDs)
	if err != nil {
		return nil, err
	}

	resolver, err := exclusion.New(o.config.Root, exclude, o.config.Settings, exclusion.WithCompiler(o.compiler))
	if err != nil {
		return nil, fmt.Errorf("failed to prepare exclusions: %w", err)
	}
	return resolver.Set(), nil
}

// Render writes node to w as indented JSON or as a Unix-style tree
func Render(w io.Writer, node models.TreeNode, outputFormat string, colored bool) error {
	switch outputFormat {
	case formatJSON, "":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(node); err != nil {
			return fmt.Errorf("failed to encode tree: %w", err)
		}
		return nil
	case formatTree:
		_, err := io.WriteString(w, tree.NewBuilder(tree.WithColor(colored)).WriteProjectTreeUnix(node))
		return err
	default:
		return fmt.Errorf("unknown format %q (valid: %s, %s)", outputFormat, formatJSON, formatTree)
	}
}

// useColor decides whether tree output to w is colorized
func useColor(mode string, w io.Writer) (bool, error) {
	var enabled bool
	switch mode {
	case colorAlways:
		enabled = true
	case colorNever:
		enabled = false
	case colorAuto, "":
		enabled = isTerminal(w) && os.Getenv("NO_COLOR") == ""
	default:
		return false, fmt.Errorf("unknown color mode %q (valid: %s, %s, %s)", mode, colorAuto, colorAlways, colorNever)
	}

	color.NoColor = !enabled
	return enabled, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// readTree loads a saved tree. Input that is not JSON is read as one
// relative path per line, with a trailing "/" marking folders.
func readTree(data []byte, root string) models.TreeNode {
	var node models.TreeNode
	if err := json.Unmarshal(data, &node); err == nil && node.Type != "" {
		return node
	}

	logger.Logger.Debug("Input is not a JSON tree, reading it as a path list")
	return tree.NewBuilder().BuildProjectTree(filepath.Base(root), strings.Split(string(data), "\n"))
}
