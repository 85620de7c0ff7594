package pipeline

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"dirscope/pkg/logger"
	"dirscope/pkg/models"
	"dirscope/pkg/utils"
)

// IncludeFilter is the optional allow-list applied to files. Directories are
// never filtered so the folder skeleton survives.
type IncludeFilter struct {
	include []includePattern
	exclude []includePattern
}

type includePattern struct {
	glob     string
	literal  bool
	baseName bool
}

// NewIncludeFilter compiles a comma-separated allow-list. Patterns prefixed
// with "!" remove files that an earlier pattern admitted.
func NewIncludeFilter(csv string) *IncludeFilter {
	f := &IncludeFilter{}
	for _, p := range utils.ParsePatterns(csv) {
		negate := strings.HasPrefix(p, "!")
		p = strings.TrimPrefix(p, "!")
		p = strings.TrimPrefix(p, "/")
		if strings.HasSuffix(p, "/") {
			p += "**"
		}
		if p == "" {
			continue
		}

		ip := includePattern{
			glob:     p,
			literal:  !doublestar.ValidatePattern(p),
			baseName: !strings.Contains(p, "/"),
		}
		if ip.literal {
			logger.Logger.WithField("pattern", p).Warn("Malformed include pattern, matching literally")
		}

		if negate {
			f.exclude = append(f.exclude, ip)
		} else {
			f.include = append(f.include, ip)
		}
	}
	return f
}

// Empty reports whether the filter admits everything
func (f *IncludeFilter) Empty() bool {
	return f == nil || (len(f.include) == 0 && len(f.exclude) == 0)
}

// ShouldInclude reports whether the entry at relPath survives the allow-list
func (f *IncludeFilter) ShouldInclude(relPath string, isDir bool) bool {
	if isDir || f.Empty() {
		return true
	}

	relPath = utils.NormalizePath(relPath)
	if len(f.include) > 0 && !matchAny(f.include, relPath) {
		return false
	}
	return !matchAny(f.exclude, relPath)
}

// FilterTree drops files that fail the allow-list from a caller-owned tree
// and returns the number of files removed
func (f *IncludeFilter) FilterTree(node *models.TreeNode) int {
	if f.Empty() || node == nil || !node.IsDir() {
		return 0
	}

	removed := 0
	kept := node.Children[:0]
	for i := range node.Children {
		child := node.Children[i]
		if child.IsDir() {
			removed += f.FilterTree(&child)
			kept = append(kept, child)
			continue
		}
		if !f.ShouldInclude(child.Path, false) {
			removed++
			continue
		}
		kept = append(kept, child)
	}
	node.Children = kept
	node.HasChildren = len(node.Children) > 0
	return removed
}

// SeparateFilesAndDirectories splits a sibling list by node type
func SeparateFilesAndDirectories(nodes []models.TreeNode) (files, directories []models.TreeNode) {
	for _, n := range nodes {
		if n.IsDir() {
			directories = append(directories, n)
		} else {
			files = append(files, n)
		}
	}
	return files, directories
}

func matchAny(patterns []includePattern, relPath string) bool {
	base := path.Base(relPath)
	for _, p := range patterns {
		if p.match(relPath) || (p.baseName && p.match(base)) {
			return true
		}
	}
	return false
}

func (p includePattern) match(name string) bool {
	if p.literal {
		return p.glob == name
	}
	ok, err := doublestar.Match(p.glob, name)
	return err == nil && ok
}
