package scanner

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"dirscope/internal/exclusion"
	"dirscope/internal/pipeline"
	"dirscope/pkg/models"
)

// MockClassifier implements the Classifier interface for testing
type MockClassifier struct {
	mock.Mock
}

func (m *MockClassifier) IsText(path string) bool {
	args := m.Called(path)
	return args.Bool(0)
}

func writeFiles(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0o644))
	}
}

func newProject(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		".git/config":     "[core]\n",
		"src/a.js":        "console.log(1)\n",
		"docs/readme.md":  "# docs\n",
		"build/out.js":    "x\n",
		"file2.txt":       "two\n",
		"file10.txt":      "ten\n",
		"File1.txt":       "one\n",
		"logo.png":        "\x89PNG\r\n\x1a\n\x00\x00",
		"notes":           "plain text without extension\n",
		"blob":            "\x00\x01\x02\x03",
		"empty/.keep":     "",
		"README.md":       "# proj\n",
		"src/lib/util.js": "export {}\n",
	})
	return root
}

func scan(t *testing.T, root, exclude, include string, opts ...Option) models.TreeNode {
	t.Helper()
	resolver, err := exclusion.New(root, exclude, models.DefaultSettings())
	require.NoError(t, err)
	return NewWalker(root, resolver, pipeline.NewIncludeFilter(include), opts...).Scan(context.Background(), root)
}

func childNames(node models.TreeNode) []string {
	out := make([]string, 0, len(node.Children))
	for _, c := range node.Children {
		out = append(out, c.Name)
	}
	return out
}

func find(node models.TreeNode, name string) (models.TreeNode, bool) {
	for _, c := range node.Children {
		if c.Name == name {
			return c, true
		}
	}
	return models.TreeNode{}, false
}

func TestWalker_Scan(t *testing.T) {
	root := newProject(t)

	t.Run("should build a sorted tree with relative paths", func(t *testing.T) {
		node := scan(t, root, "", "")

		assert.Equal(t, models.NodeFolder, node.Type)
		assert.Equal(t, "", node.Path)
		assert.Equal(t, filepath.Base(root), node.Name)
		assert.Equal(t, []string{".git", "build", "docs", "empty", "src", "File1.txt", "file2.txt", "file10.txt", "notes", "README.md"}, childNames(node))

		src, ok := find(node, "src")
		require.True(t, ok)
		assert.Equal(t, []string{"lib", "a.js"}, childNames(src))
		assert.Equal(t, "src/lib/util.js", src.Children[0].Children[0].Path)
	})

	t.Run("should drop binary files", func(t *testing.T) {
		node := scan(t, root, "", "")
		_, ok := find(node, "logo.png")
		assert.False(t, ok)
		_, ok = find(node, "blob")
		assert.False(t, ok)
	})

	t.Run("should flag excluded entries and keep them in the tree", func(t *testing.T) {
		node := scan(t, root, "build", "")

		git, ok := find(node, ".git")
		require.True(t, ok)
		assert.True(t, git.Excluded)
		assert.True(t, git.Children[0].Excluded)

		build, ok := find(node, "build")
		require.True(t, ok)
		assert.True(t, build.Excluded)
		assert.True(t, build.HasChildren)
		assert.True(t, build.Children[0].Excluded)

		readme, ok := find(node, "README.md")
		require.True(t, ok)
		assert.False(t, readme.Excluded)
	})

	t.Run("should never exclude the root", func(t *testing.T) {
		node := scan(t, root, "*", "")
		assert.False(t, node.Excluded)
		for _, c := range node.Children {
			assert.True(t, c.Excluded, c.Name)
		}
	})

	t.Run("should produce identical trees on repeated scans", func(t *testing.T) {
		resolver, err := exclusion.New(root, "*.txt, build", models.DefaultSettings())
		require.NoError(t, err)
		walker := NewWalker(root, resolver, pipeline.NewIncludeFilter(""))

		first := walker.Scan(context.Background(), root)
		second := walker.Scan(context.Background(), root)
		assert.Equal(t, first, second)
	})

	t.Run("should keep folders that the include filter empties", func(t *testing.T) {
		node := scan(t, root, "", "*.md")

		docs, ok := find(node, "docs")
		require.True(t, ok)
		assert.True(t, docs.HasChildren)
		assert.Equal(t, []string{"readme.md"}, childNames(docs))

		src, ok := find(node, "src")
		require.True(t, ok)
		assert.Equal(t, []string{"lib"}, childNames(src))
		assert.False(t, src.Children[0].HasChildren)
		assert.Empty(t, src.Children[0].Children)

		_, ok = find(node, "file2.txt")
		assert.False(t, ok)
	})

	t.Run("should use paths relative to the project root for nested scans", func(t *testing.T) {
		resolver, err := exclusion.New(root, "", models.DefaultSettings())
		require.NoError(t, err)
		node := NewWalker(root, resolver, nil).Scan(context.Background(), filepath.Join(root, "src"))

		assert.Equal(t, "src", node.Path)
		assert.False(t, node.Excluded)
		a, ok := find(node, "a.js")
		require.True(t, ok)
		assert.Equal(t, "src/a.js", a.Path)
	})
}

func TestWalker_Failures(t *testing.T) {
	t.Run("should return a degenerate node for a missing root", func(t *testing.T) {
		missing := filepath.Join(t.TempDir(), "gone")
		resolver, err := exclusion.New(missing, "", models.DefaultSettings())
		require.NoError(t, err)

		node := NewWalker(missing, resolver, nil).Scan(context.Background(), missing)
		assert.Equal(t, models.NodeFolder, node.Type)
		assert.NotEmpty(t, node.Error)
		assert.NotNil(t, node.Children)
		assert.Empty(t, node.Children)
		assert.False(t, node.HasChildren)
		assert.False(t, node.Excluded)
	})

	t.Run("should return a degenerate node for a file root", func(t *testing.T) {
		root := t.TempDir()
		writeFiles(t, root, map[string]string{"a.txt": "a"})
		target := filepath.Join(root, "a.txt")

		node := NewWalker(root, nil, nil).Scan(context.Background(), target)
		assert.Contains(t, node.Error, "not a directory")
	})

	t.Run("should mark an unreadable subdirectory and continue", func(t *testing.T) {
		if os.Geteuid() == 0 {
			t.Skip("permission bits are not enforced for root")
		}
		root := t.TempDir()
		writeFiles(t, root, map[string]string{"locked/secret.txt": "s", "open.txt": "o"})
		locked := filepath.Join(root, "locked")
		require.NoError(t, os.Chmod(locked, 0o000))
		t.Cleanup(func() { _ = os.Chmod(locked, 0o755) })

		node := scan(t, root, "", "")
		dir, ok := find(node, "locked")
		require.True(t, ok)
		assert.NotEmpty(t, dir.Error)
		assert.False(t, dir.HasChildren)

		_, ok = find(node, "open.txt")
		assert.True(t, ok)
	})

	t.Run("should stop descending when the context is cancelled", func(t *testing.T) {
		root := newProject(t)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		node := NewWalker(root, nil, nil).Scan(ctx, root)
		assert.Equal(t, context.Canceled.Error(), node.Error)
		assert.Empty(t, node.Children)
	})
}

func TestWalker_Options(t *testing.T) {
	t.Run("should skip symlinks", func(t *testing.T) {
		root := t.TempDir()
		writeFiles(t, root, map[string]string{"real/a.txt": "a"})
		if err := os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "link")); err != nil {
			t.Skipf("symlinks unsupported: %v", err)
		}

		node := NewWalker(root, nil, nil).Scan(context.Background(), root)
		assert.Equal(t, []string{"real"}, childNames(node))
	})

	t.Run("should drop files above the size limit", func(t *testing.T) {
		root := t.TempDir()
		writeFiles(t, root, map[string]string{"small.txt": "ok", "large.txt": "0123456789"})

		node := NewWalker(root, nil, nil, WithMaxFileSize(5)).Scan(context.Background(), root)
		assert.Equal(t, []string{"small.txt"}, childNames(node))
	})

	t.Run("should consult the classifier for every candidate file", func(t *testing.T) {
		root := t.TempDir()
		writeFiles(t, root, map[string]string{"keep.dat": "k", "drop.dat": "d"})

		classifier := new(MockClassifier)
		classifier.On("IsText", filepath.Join(root, "keep.dat")).Return(true)
		classifier.On("IsText", filepath.Join(root, "drop.dat")).Return(false)

		node := NewWalker(root, nil, nil, WithClassifier(classifier)).Scan(context.Background(), root)
		assert.Equal(t, []string{"keep.dat"}, childNames(node))
		classifier.AssertExpectations(t)
	})

	t.Run("should accept a classifier function", func(t *testing.T) {
		root := t.TempDir()
		writeFiles(t, root, map[string]string{"a.png": "a"})

		all := ClassifierFunc(func(string) bool { return true })
		node := NewWalker(root, nil, nil, WithClassifier(all)).Scan(context.Background(), root)
		assert.Equal(t, []string{"a.png"}, childNames(node))
	})
}

func TestContentClassifier(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, map[string]string{
		"main.go":    "package main\n",
		"Makefile":   "all:\n",
		"image.png":  "text but png",
		"libx.so.1":  "x",
		"script":     "#!/bin/sh\necho hi\n",
		"data":       "\x00\x00\x00",
		"page.html":  "<p>hi</p>",
		"unknown.zz": "just words\n",
	})

	tests := []struct {
		name     string
		expected bool
	}{
		{"main.go", true},
		{"Makefile", true},
		{"image.png", false},
		{"libx.so.1", false},
		{"script", true},
		{"data", false},
		{"page.html", true},
		{"unknown.zz", true},
		{"missing.zz", false},
	}

	c := ContentClassifier{}
	for _, tt := range tests {
		t.Run("should classify "+tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, c.IsText(filepath.Join(root, tt.name)))
		})
	}
}
