// Package updater re-evaluates exclusion flags on an existing tree when the
// pattern set changes, without listing the filesystem again.
package updater

import (
	"dirscope/internal/exclusion"
	"dirscope/internal/pipeline"
	"dirscope/pkg/logger"
	"dirscope/pkg/models"
)

// Result describes what an update changed
type Result struct {
	Tree    models.TreeNode
	Flipped int
	Removed int
}

// Update returns a copy of tree with every excluded flag recomputed for the
// new pattern set. Files that fail the include list are dropped. The input
// tree is left untouched.
func Update(root string, tree models.TreeNode, excludeCSV, includeCSV, changedPattern string, settings models.Settings, opts ...exclusion.Option) models.TreeNode {
	return Apply(root, tree, excludeCSV, includeCSV, changedPattern, settings, opts...).Tree
}

// Apply is Update with counters
func Apply(root string, tree models.TreeNode, excludeCSV, includeCSV, changedPattern string, settings models.Settings, opts ...exclusion.Option) Result {
	updated := tree.Clone()

	folders := make(map[string]struct{})
	collectFolders(updated, folders)

	resolverOpts := make([]exclusion.Option, 0, len(opts)+1)
	resolverOpts = append(resolverOpts, opts...)
	resolverOpts = append(resolverOpts, exclusion.WithDirPredicate(func(rel string) bool {
		_, ok := folders[rel]
		return ok
	}))

	log := logger.Logger.WithField("root", root)

	resolver, err := exclusion.New(root, excludeCSV, settings, resolverOpts...)
	if err != nil {
		log.WithError(err).Error("Cannot build exclusion resolver for update")
		updated.Error = err.Error()
		return Result{Tree: updated}
	}

	removed := pipeline.NewIncludeFilter(includeCSV).FilterTree(&updated)
	flipped := reflag(&updated, resolver)

	if updated.Excluded {
		flipped++
	}
	updated.Excluded = false

	log.WithFields(map[string]interface{}{
		"changed": changedPattern,
		"flipped": flipped,
		"removed": removed,
	}).Info("Exclusions updated")

	return Result{Tree: updated, Flipped: flipped, Removed: removed}
}

func collectFolders(node models.TreeNode, folders map[string]struct{}) {
	if !node.IsDir() {
		return
	}
	if node.Path != "" {
		folders[node.Path] = struct{}{}
	}
	for _, child := range node.Children {
		collectFolders(child, folders)
	}
}

// reflag recomputes the flags below node and returns how many changed
func reflag(node *models.TreeNode, resolver *exclusion.Resolver) int {
	flipped := 0
	for i := range node.Children {
		child := &node.Children[i]

		excluded := resolver.IsExcludedEntry(child.Path, child.IsDir())
		if excluded != child.Excluded {
			flipped++
		}
		child.Excluded = excluded

		if child.IsDir() {
			flipped += reflag(child, resolver)
		}
	}

	if node.Children == nil {
		node.Children = []models.TreeNode{}
	}
	node.HasChildren = len(node.Children) > 0
	return flipped
}
