// Package engine exposes the scanning core to the rest of the application.
package engine

import (
	"context"
	"path/filepath"

	"dirscope/internal/exclusion"
	"dirscope/internal/ignore"
	"dirscope/internal/modules"
	"dirscope/internal/pipeline"
	"dirscope/internal/scanner"
	"dirscope/internal/updater"
	"dirscope/pkg/logger"
	"dirscope/pkg/models"
	"dirscope/pkg/utils"
)

type options struct {
	compiler   ignore.Compiler
	walkerOpts []scanner.Option
}

// Option configures ScanTree and UpdateExclusions
type Option func(*options)

// WithCompiler selects the ignore backend
func WithCompiler(c ignore.Compiler) Option {
	return func(o *options) {
		if c != nil {
			o.compiler = c
		}
	}
}

// WithWalkerOptions forwards options to the directory walker
func WithWalkerOptions(opts ...scanner.Option) Option {
	return func(o *options) {
		o.walkerOpts = append(o.walkerOpts, opts...)
	}
}

func buildOptions(opts []Option) options {
	o := options{compiler: ignore.GlobCompiler{}}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ScanTree walks rootPath once and returns the annotated tree. It never
// fails: problems are reported through the Error field of the nodes.
func ScanTree(ctx context.Context, rootPath, excludeCSV, includeCSV string, settings models.Settings, opts ...Option) models.TreeNode {
	o := buildOptions(opts)

	resolver, err := exclusion.New(rootPath, excludeCSV, settings, exclusion.WithCompiler(o.compiler))
	if err != nil {
		logger.Logger.WithError(err).WithField("root", rootPath).Error("Cannot prepare scan")
		return models.TreeNode{
			Type:     models.NodeFolder,
			Name:     filepath.Base(rootPath),
			Children: []models.TreeNode{},
			Error:    err.Error(),
		}
	}

	walker := scanner.NewWalker(rootPath, resolver, pipeline.NewIncludeFilter(includeCSV), o.walkerOpts...)
	return walker.Scan(ctx, rootPath)
}

// UpdateExclusions re-flags an existing tree for a changed pattern set
// without listing the filesystem
func UpdateExclusions(rootPath string, tree models.TreeNode, excludeCSV, includeCSV, changedPattern string, settings models.Settings, opts ...Option) models.TreeNode {
	o := buildOptions(opts)
	return updater.Update(rootPath, tree, excludeCSV, includeCSV, changedPattern, settings, exclusion.WithCompiler(o.compiler))
}

// ResolveModulePatterns returns the transitive pattern closure of a module
func ResolveModulePatterns(graph modules.Graph, moduleID string) []string {
	return modules.Closure(moduleID, graph)
}

// MergePatterns appends extra patterns to a comma-separated list, keeping
// the first occurrence of each
func MergePatterns(csv string, extra ...[]string) string {
	seen := make(map[string]bool)
	var merged []string

	add := func(p string) {
		p = utils.NormalizePattern(p)
		if p == "" || seen[p] {
			return
		}
		seen[p] = true
		merged = append(merged, p)
	}

	for _, p := range utils.ParsePatterns(csv) {
		add(p)
	}
	for _, list := range extra {
		for _, p := range list {
			add(p)
		}
	}
	return utils.JoinPatterns(merged)
}
