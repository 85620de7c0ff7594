package tree

import (
	"fmt"
	"sort"
	"strings"

	"github.com/fatih/color"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"dirscope/pkg/models"
	"dirscope/pkg/utils"
)

// Builder orders, assembles and renders TreeNode trees. A Builder holds a
// collator and must not be shared between goroutines.
type Builder struct {
	collator *collate.Collator
	color    bool
}

// BuilderOption configures a Builder
type BuilderOption func(*Builder)

// WithColor enables ANSI colors in rendered trees
func WithColor(enabled bool) BuilderOption {
	return func(b *Builder) {
		b.color = enabled
	}
}

// NewBuilder creates a new tree builder
func NewBuilder(opts ...BuilderOption) *Builder {
	b := &Builder{
		collator: collate.New(language.Und, collate.IgnoreCase, collate.Numeric),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Less orders two siblings: folders first, then by collated name with the
// raw name as tie-breaker
func (b *Builder) Less(x, y *models.TreeNode) bool {
	if x.IsDir() != y.IsDir() {
		return x.IsDir()
	}
	if c := b.collator.CompareString(x.Name, y.Name); c != 0 {
		return c < 0
	}
	return x.Name < y.Name
}

// Sort orders one sibling list in place
func (b *Builder) Sort(nodes []models.TreeNode) {
	sort.SliceStable(nodes, func(i, j int) bool {
		return b.Less(&nodes[i], &nodes[j])
	})
}

// SortRecursive orders every sibling list below node
func (b *Builder) SortRecursive(node *models.TreeNode) {
	if len(node.Children) == 0 {
		return
	}

	b.Sort(node.Children)
	for i := range node.Children {
		b.SortRecursive(&node.Children[i])
	}
}

// BuildProjectTree creates a hierarchical tree from root-relative paths.
// A path ending in "/" denotes a directory; intermediate directories are
// created as needed.
func (b *Builder) BuildProjectTree(rootName string, paths []string) models.TreeNode {
	root := models.TreeNode{
		Type:     models.NodeFolder,
		Name:     rootName,
		Children: []models.TreeNode{},
	}

	for _, p := range paths {
		isDir := strings.HasSuffix(strings.TrimSpace(p), "/")
		p = utils.NormalizePath(p)
		if p == "" {
			continue
		}
		b.addPathToTree(&root, p, isDir)
	}

	b.SortRecursive(&root)
	setHasChildren(&root)
	return root
}

// addPathToTree adds one path to the tree structure
func (b *Builder) addPathToTree(root *models.TreeNode, relPath string, isDir bool) {
	parts := strings.Split(relPath, "/")
	current := root

	for i, part := range parts {
		isLastPart := i == len(parts)-1

		var found *models.TreeNode
		for j := range current.Children {
			if current.Children[j].Name == part {
				found = &current.Children[j]
				break
			}
		}

		if found == nil {
			nodeType := models.NodeFolder
			if isLastPart && !isDir {
				nodeType = models.NodeFile
			}
			current.Children = append(current.Children, models.TreeNode{
				Type:     nodeType,
				Name:     part,
				Path:     strings.Join(parts[:i+1], "/"),
				Children: []models.TreeNode{},
			})
			found = &current.Children[len(current.Children)-1]
		} else if !isLastPart || isDir {
			// a file listed earlier turned out to be a directory
			found.Type = models.NodeFolder
		}

		current = found
	}
}

func setHasChildren(node *models.TreeNode) {
	for i := range node.Children {
		setHasChildren(&node.Children[i])
	}
	node.HasChildren = len(node.Children) > 0
}

// WriteProjectTree writes the tree in a simple indented format
func (b *Builder) WriteProjectTree(nodes []models.TreeNode, indent string) string {
	var sb strings.Builder
	b.writeProjectTreeRecursive(&sb, nodes, indent)
	return sb.String()
}

func (b *Builder) writeProjectTreeRecursive(sb *strings.Builder, nodes []models.TreeNode, indent string) {
	for _, node := range nodes {
		if node.IsDir() {
			fmt.Fprintf(sb, "%s%s/%s\n", indent, node.Name, b.annotation(node))
			b.writeProjectTreeRecursive(sb, node.Children, indent+"  ")
		} else {
			fmt.Fprintf(sb, "%s%s%s\n", indent, node.Name, b.annotation(node))
		}
	}
}

// WriteProjectTreeUnix writes the tree in Unix tree format. Excluded
// entries are marked rather than hidden.
func (b *Builder) WriteProjectTreeUnix(root models.TreeNode) string {
	var sb strings.Builder

	name := root.Name
	if name == "" {
		name = "."
	}
	sb.WriteString(b.paint(name, true, false))
	sb.WriteString(b.annotation(root))
	sb.WriteString("\n")

	b.writeProjectTreeUnixRecursive(&sb, root.Children, "")

	stats := Collect(root)
	fmt.Fprintf(&sb, "\n%d directories, %d files", stats.Folders, stats.Files)
	if stats.Excluded > 0 {
		fmt.Fprintf(&sb, ", %d excluded", stats.Excluded)
	}
	sb.WriteString("\n")

	return sb.String()
}

func (b *Builder) writeProjectTreeUnixRecursive(sb *strings.Builder, nodes []models.TreeNode, prefix string) {
	for i, node := range nodes {
		var currentPrefix, nextPrefix string
		if i == len(nodes)-1 {
			currentPrefix = prefix + "└── "
			nextPrefix = prefix + "    "
		} else {
			currentPrefix = prefix + "├── "
			nextPrefix = prefix + "│   "
		}

		sb.WriteString(currentPrefix)
		sb.WriteString(b.paint(node.Name, node.IsDir(), node.Excluded))
		sb.WriteString(b.annotation(node))
		sb.WriteString("\n")

		if len(node.Children) > 0 {
			b.writeProjectTreeUnixRecursive(sb, node.Children, nextPrefix)
		}
	}
}

func (b *Builder) annotation(node models.TreeNode) string {
	var sb strings.Builder
	if node.Excluded {
		sb.WriteString(" [excluded]")
	}
	if node.Error != "" {
		sb.WriteString(" [error: " + node.Error + "]")
	}
	if sb.Len() == 0 || !b.color {
		return sb.String()
	}
	return color.New(color.FgHiBlack).Sprint(sb.String())
}

func (b *Builder) paint(name string, isDir, excluded bool) string {
	if !b.color {
		return name
	}
	switch {
	case excluded:
		return color.New(color.FgHiBlack, color.CrossedOut).Sprint(name)
	case isDir:
		return color.New(color.FgBlue, color.Bold).Sprint(name)
	default:
		return name
	}
}
