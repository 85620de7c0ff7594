package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirscope/pkg/models"
)

func TestNewIncludeFilter(t *testing.T) {
	assert.True(t, NewIncludeFilter("").Empty())
	assert.True(t, NewIncludeFilter(" , ,").Empty())
	assert.False(t, NewIncludeFilter("*.go").Empty())
}

func TestIncludeFilter_ShouldInclude(t *testing.T) {
	tests := []struct {
		name     string
		include  string
		path     string
		isDir    bool
		expected bool
	}{
		{name: "should include everything without patterns", include: "", path: "bin/app.exe", expected: true},
		{name: "should always include directories", include: "*.md", path: "src", isDir: true, expected: true},
		{name: "should match base names for slashless patterns", include: "*.md", path: "docs/readme.md", expected: true},
		{name: "should reject files matching no pattern", include: "*.md", path: "src/a.go", expected: false},
		{name: "should anchor patterns with a slash", include: "src/*.go", path: "src/a.go", expected: true},
		{name: "should not let single star cross directories", include: "src/*.go", path: "src/pkg/a.go", expected: false},
		{name: "should let double star cross directories", include: "src/**/*.go", path: "src/pkg/deep/a.go", expected: true},
		{name: "should strip a leading slash", include: "/README.md", path: "README.md", expected: true},
		{name: "should expand a trailing slash to the subtree", include: "docs/", path: "docs/api/index.md", expected: true},
		{name: "should accept any of several patterns", include: "*.go, *.md", path: "README.md", expected: true},
		{name: "should normalize backslashes", include: `src\*.go`, path: `src\main.go`, expected: true},
		{name: "should drop negated files", include: "*.go, !*_test.go", path: "pkg/a_test.go", expected: false},
		{name: "should keep files not negated", include: "*.go, !*_test.go", path: "pkg/a.go", expected: true},
		{name: "should match malformed patterns literally", include: "data[1.csv", path: "data[1.csv", expected: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := NewIncludeFilter(tt.include)
			assert.Equal(t, tt.expected, f.ShouldInclude(tt.path, tt.isDir))
		})
	}
}

func TestIncludeFilter_FilterTree(t *testing.T) {
	tree := models.TreeNode{
		Type: models.NodeFolder,
		Children: []models.TreeNode{
			{
				Type: models.NodeFolder, Name: "docs", Path: "docs", HasChildren: true,
				Children: []models.TreeNode{
					{Type: models.NodeFile, Name: "readme.md", Path: "docs/readme.md", Children: []models.TreeNode{}},
				},
			},
			{
				Type: models.NodeFolder, Name: "src", Path: "src", HasChildren: true,
				Children: []models.TreeNode{
					{Type: models.NodeFile, Name: "a.go", Path: "src/a.go", Children: []models.TreeNode{}},
				},
			},
			{Type: models.NodeFile, Name: "main.go", Path: "main.go", Children: []models.TreeNode{}},
		},
		HasChildren: true,
	}

	removed := NewIncludeFilter("*.md").FilterTree(&tree)
	assert.Equal(t, 2, removed)

	require.Len(t, tree.Children, 2)
	assert.Equal(t, "docs", tree.Children[0].Name)
	assert.True(t, tree.Children[0].HasChildren)
	assert.Equal(t, "src", tree.Children[1].Name)
	assert.False(t, tree.Children[1].HasChildren)
	assert.Empty(t, tree.Children[1].Children)
	assert.NotNil(t, tree.Children[1].Children)
}

func TestSeparateFilesAndDirectories(t *testing.T) {
	input := []models.TreeNode{
		{Type: models.NodeFolder, Name: "src"},
		{Type: models.NodeFile, Name: "main.go"},
		{Type: models.NodeFolder, Name: "lib"},
		{Type: models.NodeFile, Name: "readme.txt"},
	}

	files, dirs := SeparateFilesAndDirectories(input)

	assert.Len(t, files, 2)
	assert.Len(t, dirs, 2)
	assert.Equal(t, "main.go", files[0].Name)
	assert.Equal(t, "lib", dirs[1].Name)
}
