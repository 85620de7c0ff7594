// Package exclusion answers "is this path excluded" for one project root,
// memoizing answers for the lifetime of a scan.
package exclusion

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dirscope/internal/ignore"
	"dirscope/pkg/logger"
	"dirscope/pkg/models"
	"dirscope/pkg/utils"
)

// Resolver wraps an ignore.Set for one root directory. It is owned by a
// single scan and is not safe for concurrent use.
type Resolver struct {
	root     string
	set      *ignore.Set
	patterns []string
	cache    map[string]bool
}

type options struct {
	compiler  ignore.Compiler
	dirExists func(relPath string) bool
}

// Option configures a Resolver
type Option func(*options)

// WithCompiler selects the ignore backend
func WithCompiler(c ignore.Compiler) Option {
	return func(o *options) {
		if c != nil {
			o.compiler = c
		}
	}
}

// WithDirPredicate replaces the filesystem check used to expand patterns
// that name a directory
func WithDirPredicate(fn func(relPath string) bool) Option {
	return func(o *options) {
		if fn != nil {
			o.dirExists = fn
		}
	}
}

// New builds a resolver from a comma-separated exclude pattern string
func New(root, excludeCSV string, settings models.Settings, opts ...Option) (*Resolver, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("exclusion: failed to get absolute path for root %q: %w", root, err)
	}

	o := options{
		compiler:  ignore.GlobCompiler{},
		dirExists: fsDirPredicate(absRoot),
	}
	for _, opt := range opts {
		opt(&o)
	}

	patterns := utils.ExpandDirectoryPatterns(utils.ParsePatterns(excludeCSV), o.dirExists)
	set := ignore.NewSet(o.compiler, ignore.Layers(absRoot, settings, patterns)...)

	logger.Logger.WithFields(map[string]interface{}{
		"root":     absRoot,
		"matcher":  o.compiler.Name(),
		"layers":   strings.Join(set.Layers(), ","),
		"patterns": len(patterns),
	}).Debug("Exclusion resolver ready")

	return &Resolver{
		root:     absRoot,
		set:      set,
		patterns: patterns,
		cache:    make(map[string]bool),
	}, nil
}

func fsDirPredicate(root string) func(string) bool {
	return func(relPath string) bool {
		info, err := os.Stat(filepath.Join(root, filepath.FromSlash(relPath)))
		return err == nil && info.IsDir()
	}
}

// Root returns the absolute root directory
func (r *Resolver) Root() string {
	return r.root
}

// Set returns the compiled, immutable rule set
func (r *Resolver) Set() *ignore.Set {
	return r.set
}

// Patterns returns the effective user patterns after directory expansion
func (r *Resolver) Patterns() []string {
	return append([]string(nil), r.patterns...)
}

// Reset drops every memoized answer. Walkers call it before each scan.
func (r *Resolver) Reset() {
	r.cache = make(map[string]bool)
}

// CacheSize returns the number of memoized answers
func (r *Resolver) CacheSize() int {
	return len(r.cache)
}

// IsExcluded reports whether path, absolute or relative to the root, is
// excluded. The filesystem is consulted to tell directories from files.
func (r *Resolver) IsExcluded(path string) bool {
	rel, ok := r.Relative(path)
	if !ok || rel == "" {
		return false
	}

	isDir := false
	if info, err := os.Stat(filepath.Join(r.root, filepath.FromSlash(rel))); err == nil {
		isDir = info.IsDir()
	}
	return r.excluded(rel, isDir)
}

// IsExcludedEntry is IsExcluded for callers that already know the entry type
func (r *Resolver) IsExcludedEntry(path string, isDir bool) bool {
	rel, ok := r.Relative(path)
	if !ok || rel == "" {
		return false
	}
	return r.excluded(rel, isDir)
}

// Relative converts path to the normalized root-relative form. ok is false
// for paths that escape the root.
func (r *Resolver) Relative(path string) (rel string, ok bool) {
	p := filepath.FromSlash(strings.ReplaceAll(strings.TrimSpace(path), "\\", "/"))
	if !filepath.IsAbs(p) {
		p = filepath.Join(r.root, p)
	}

	rel, err := filepath.Rel(r.root, p)
	if err != nil {
		return "", false
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", false
	}
	return utils.NormalizePath(rel), true
}

// excluded consults the parent's memoized answer before the path's own rules
func (r *Resolver) excluded(rel string, isDir bool) bool {
	if v, ok := r.cache[rel]; ok {
		return v
	}

	v := false
	if i := strings.LastIndexByte(rel, '/'); i >= 0 {
		v = r.excluded(rel[:i], true)
	}
	if !v {
		v = r.set.Match(rel, isDir)
	}

	r.cache[rel] = v
	return v
}
