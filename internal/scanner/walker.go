// Package scanner walks a project directory and builds the annotated tree.
package scanner

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/sirupsen/logrus"

	"dirscope/pkg/logger"
	"dirscope/pkg/models"
	"dirscope/pkg/tree"
)

// ExclusionChecker answers exclusion queries for one scan
type ExclusionChecker interface {
	IsExcludedEntry(path string, isDir bool) bool
	Reset()
}

// IncludeChecker is the allow-list consulted for files
type IncludeChecker interface {
	ShouldInclude(relPath string, isDir bool) bool
}

// Walker performs a sequential depth-first scan below a project root
type Walker struct {
	root        string
	resolver    ExclusionChecker
	include     IncludeChecker
	classifier  Classifier
	builder     *tree.Builder
	maxFileSize int64
	log         *logrus.Entry
}

// Option configures a Walker
type Option func(*Walker)

// WithClassifier replaces the text classifier
func WithClassifier(c Classifier) Option {
	return func(w *Walker) {
		if c != nil {
			w.classifier = c
		}
	}
}

// WithMaxFileSize drops files larger than size bytes. Zero means unlimited.
func WithMaxFileSize(size int64) Option {
	return func(w *Walker) {
		w.maxFileSize = size
	}
}

// WithLogFields attaches fields to every log entry of the walk
func WithLogFields(fields logrus.Fields) Option {
	return func(w *Walker) {
		w.log = w.log.WithFields(fields)
	}
}

// NewWalker creates a walker for projectRoot. A nil include checker admits
// every file.
func NewWalker(projectRoot string, resolver ExclusionChecker, include IncludeChecker, opts ...Option) *Walker {
	root, err := filepath.Abs(projectRoot)
	if err != nil {
		root = filepath.Clean(projectRoot)
	}

	w := &Walker{
		root:       root,
		resolver:   resolver,
		include:    include,
		classifier: ContentClassifier{},
		builder:    tree.NewBuilder(),
		log:        logger.Logger.WithField("root", root),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Scan builds the tree rooted at dir, which should be the project root or
// a directory below it. Failures never surface as errors: an unreadable
// root yields a childless folder node with Error set.
func (w *Walker) Scan(ctx context.Context, dir string) models.TreeNode {
	if w.resolver != nil {
		w.resolver.Reset()
	}

	absDir, err := filepath.Abs(dir)
	if err != nil {
		return degenerate(filepath.Base(dir), "", err)
	}
	rel := w.relative(absDir)
	name := filepath.Base(absDir)

	info, err := os.Stat(absDir)
	if err != nil {
		w.log.WithError(err).Warn("Cannot stat scan root")
		return degenerate(name, rel, err)
	}
	if !info.IsDir() {
		err := fmt.Errorf("%s is not a directory", absDir)
		w.log.WithError(err).Warn("Cannot scan root")
		return degenerate(name, rel, err)
	}

	node := w.walkDir(ctx, absDir, rel, name)
	node.Excluded = false

	w.log.WithFields(tree.Collect(node).Fields()).Debug("Scan complete")
	return node
}

// relative returns the project-root-relative POSIX path of abs. Directories
// outside the project root are addressed by their own base name.
func (w *Walker) relative(abs string) string {
	rel, err := filepath.Rel(w.root, abs)
	if err != nil {
		return ""
	}
	rel = filepath.ToSlash(rel)
	if rel == "." {
		return ""
	}
	if rel == ".." || strings.HasPrefix(rel, "../") {
		w.log.WithField("dir", abs).Warn("Scan directory is outside the project root")
		return ""
	}
	return rel
}

func (w *Walker) walkDir(ctx context.Context, abs, rel, name string) models.TreeNode {
	node := models.TreeNode{
		Type:     models.NodeFolder,
		Name:     name,
		Path:     rel,
		Children: []models.TreeNode{},
	}

	if err := ctx.Err(); err != nil {
		node.Error = err.Error()
		return node
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		w.log.WithError(err).WithField("path", rel).Warn("Cannot list directory")
		node.Error = err.Error()
		return node
	}

	for _, entry := range entries {
		if child, ok := w.visit(ctx, abs, rel, entry); ok {
			node.Children = append(node.Children, child)
		}
	}

	w.builder.Sort(node.Children)
	node.HasChildren = len(node.Children) > 0
	return node
}

func (w *Walker) visit(ctx context.Context, parentAbs, parentRel string, entry fs.DirEntry) (models.TreeNode, bool) {
	name := entry.Name()
	abs := filepath.Join(parentAbs, name)
	rel := path.Join(parentRel, name)
	entryLog := w.log.WithField("path", rel)

	mode := entry.Type()
	switch {
	case mode&fs.ModeSymlink != 0:
		entryLog.Debug("Skipping symlink")
		return models.TreeNode{}, false
	case entry.IsDir():
		child := w.walkDir(ctx, abs, rel, name)
		child.Excluded = w.excluded(abs, true)
		return child, true
	case !mode.IsRegular():
		entryLog.Debug("Skipping special file")
		return models.TreeNode{}, false
	}

	info, err := entry.Info()
	if err != nil {
		entryLog.WithError(err).Warn("Cannot stat entry")
		return models.TreeNode{}, false
	}
	if w.maxFileSize > 0 && info.Size() > w.maxFileSize {
		entryLog.WithField("size", info.Size()).Debug("Skipping file above size limit")
		return models.TreeNode{}, false
	}
	if w.include != nil && !w.include.ShouldInclude(rel, false) {
		return models.TreeNode{}, false
	}
	if !w.classifier.IsText(abs) {
		entryLog.Debug("Skipping non-text file")
		return models.TreeNode{}, false
	}

	return models.TreeNode{
		Type:     models.NodeFile,
		Name:     name,
		Path:     rel,
		Excluded: w.excluded(abs, false),
		Children: []models.TreeNode{},
	}, true
}

func (w *Walker) excluded(abs string, isDir bool) bool {
	if w.resolver == nil {
		return false
	}
	return w.resolver.IsExcludedEntry(abs, isDir)
}

func degenerate(name, rel string, err error) models.TreeNode {
	return models.TreeNode{
		Type:     models.NodeFolder,
		Name:     name,
		Path:     rel,
		Children: []models.TreeNode{},
		Error:    err.Error(),
	}
}
