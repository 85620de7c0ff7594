package tree

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirscope/pkg/models"
)

func names(nodes []models.TreeNode) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func file(name string) models.TreeNode {
	return models.TreeNode{Type: models.NodeFile, Name: name, Path: name, Children: []models.TreeNode{}}
}

func folder(name string) models.TreeNode {
	return models.TreeNode{Type: models.NodeFolder, Name: name, Path: name, Children: []models.TreeNode{}}
}

func TestNewBuilder(t *testing.T) {
	builder := NewBuilder()
	assert.NotNil(t, builder)
}

func TestBuilder_Sort(t *testing.T) {
	builder := NewBuilder()

	t.Run("should order numbers numerically", func(t *testing.T) {
		nodes := []models.TreeNode{file("img2.png"), file("img10.png"), file("img1.png")}
		builder.Sort(nodes)
		assert.Equal(t, []string{"img1.png", "img2.png", "img10.png"}, names(nodes))
	})

	t.Run("should put folders before files", func(t *testing.T) {
		nodes := []models.TreeNode{file("a.txt"), folder("zeta"), file("B.txt"), folder("Alpha")}
		builder.Sort(nodes)
		assert.Equal(t, []string{"Alpha", "zeta", "a.txt", "B.txt"}, names(nodes))
	})

	t.Run("should ignore case and break ties on the raw name", func(t *testing.T) {
		nodes := []models.TreeNode{file("readme.md"), file("README.md"), file("Makefile")}
		builder.Sort(nodes)
		assert.Equal(t, []string{"Makefile", "README.md", "readme.md"}, names(nodes))
	})

	t.Run("should sort nested lists", func(t *testing.T) {
		root := folder("")
		src := folder("src")
		src.Children = []models.TreeNode{file("b10.go"), file("b9.go")}
		root.Children = []models.TreeNode{file("z.md"), src}

		builder.SortRecursive(&root)
		assert.Equal(t, []string{"src", "z.md"}, names(root.Children))
		assert.Equal(t, []string{"b9.go", "b10.go"}, names(root.Children[0].Children))
	})
}

func TestBuilder_BuildProjectTree(t *testing.T) {
	builder := NewBuilder()

	t.Run("should build tree from path list", func(t *testing.T) {
		root := builder.BuildProjectTree("proj", []string{
			"README.md",
			"src/main.go",
			"src/utils/helper.go",
			"docs/",
			"./docs/api.md",
		})

		assert.Equal(t, "proj", root.Name)
		assert.Equal(t, "", root.Path)
		assert.Equal(t, []string{"docs", "src", "README.md"}, names(root.Children))

		src := root.Children[1]
		assert.Equal(t, "src", src.Path)
		assert.True(t, src.HasChildren)
		assert.Equal(t, []string{"utils", "main.go"}, names(src.Children))
		assert.Equal(t, "src/utils/helper.go", src.Children[0].Children[0].Path)
	})

	t.Run("should keep empty directories", func(t *testing.T) {
		root := builder.BuildProjectTree("", []string{"empty/"})
		require.Len(t, root.Children, 1)
		assert.True(t, root.Children[0].IsDir())
		assert.False(t, root.Children[0].HasChildren)
		assert.NotNil(t, root.Children[0].Children)
	})

	t.Run("should handle empty path list", func(t *testing.T) {
		root := builder.BuildProjectTree("", nil)
		assert.Empty(t, root.Children)
		assert.False(t, root.HasChildren)
	})
}

func TestBuilder_WriteProjectTreeUnix(t *testing.T) {
	builder := NewBuilder()

	root := builder.BuildProjectTree("", []string{
		"package.json",
		"src/index.js",
		"src/components/Header.js",
		"node_modules/x/index.js",
	})
	root.Children[0].Excluded = true // node_modules
	root.Children[1].Children[0].Error = "permission denied"

	out := builder.WriteProjectTreeUnix(root)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")

	assert.Equal(t, ".", lines[0])
	assert.Equal(t, "├── node_modules [excluded]", lines[1])
	assert.Equal(t, "│   └── x", lines[2])
	assert.Contains(t, out, "│   ├── components [error: permission denied]")
	assert.Contains(t, out, "└── package.json")
	assert.Equal(t, "4 directories, 4 files, 1 excluded", lines[len(lines)-1])
}

func TestBuilder_WriteProjectTree(t *testing.T) {
	builder := NewBuilder()

	root := builder.BuildProjectTree("", []string{"README.md", "src/main.go"})
	out := builder.WriteProjectTree(root.Children, "")

	assert.Equal(t, "src/\n  main.go\nREADME.md\n", out)
}

func TestCollect(t *testing.T) {
	builder := NewBuilder()
	root := builder.BuildProjectTree("", []string{"a/b/c.txt", "a/d.txt", "e.txt"})
	root.Children[0].Excluded = true

	stats := Collect(root)
	assert.Equal(t, 2, stats.Folders)
	assert.Equal(t, 3, stats.Files)
	assert.Equal(t, 1, stats.Excluded)
	assert.Equal(t, 0, stats.Errors)
	assert.Equal(t, 3, stats.Depth)
	assert.Equal(t, 3, stats.Fields()["files"])
}
