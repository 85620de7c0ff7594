package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParsePatterns(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{
			name:     "should parse comma-separated patterns",
			input:    "*.log,*.tmp,*.cache",
			expected: []string{"*.log", "*.tmp", "*.cache"},
		},
		{
			name:     "should handle spaces around commas",
			input:    "*.log, *.tmp , *.cache",
			expected: []string{"*.log", "*.tmp", "*.cache"},
		},
		{
			name:     "should handle single pattern",
			input:    "*.log",
			expected: []string{"*.log"},
		},
		{
			name:     "should handle empty string",
			input:    "",
			expected: nil,
		},
		{
			name:     "should handle patterns with paths",
			input:    "node_modules/,vendor/,*.log",
			expected: []string{"node_modules/", "vendor/", "*.log"},
		},
		{
			name:     "should filter out empty patterns",
			input:    "*.log,,*.tmp",
			expected: []string{"*.log", "*.tmp"},
		},
		{
			name:     "should handle trailing comma",
			input:    "*.log,*.tmp,",
			expected: []string{"*.log", "*.tmp"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := ParsePatterns(tt.input)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestParsePatterns_Normalization(t *testing.T) {
	t.Run("should convert backslashes and strip leading dot-slash", func(t *testing.T) {
		result := ParsePatterns(`.\build\out, ./docs/ ,  ! ./keep.txt`)
		assert.Equal(t, []string{"build/out", "docs/", "!keep.txt"}, result)
	})

	t.Run("should drop whitespace-only and bare dot segments", func(t *testing.T) {
		assert.Nil(t, ParsePatterns(" , . ,./,  "))
	})
}

func TestNormalizePath(t *testing.T) {
	tests := map[string]string{
		"":             "",
		".":            "",
		"./src/a.go":   "src/a.go",
		"/src/":        "src",
		`src\lib\x.go`: "src/lib/x.go",
	}

	for input, expected := range tests {
		assert.Equal(t, expected, NormalizePath(input), "input %q", input)
	}
}

func TestExpandDirectoryPatterns(t *testing.T) {
	dirs := map[string]bool{"build": true, "docs/api": true}
	isDir := func(p string) bool { return dirs[p] }

	t.Run("should add recursive form for existing directories", func(t *testing.T) {
		result := ExpandDirectoryPatterns([]string{"build", "*.log", "docs/api/", "missing"}, isDir)
		assert.Equal(t, []string{"build", "build/**", "*.log", "docs/api/", "docs/api/**", "missing"}, result)
	})

	t.Run("should keep the negation prefix", func(t *testing.T) {
		result := ExpandDirectoryPatterns([]string{"!build"}, isDir)
		assert.Equal(t, []string{"!build", "!build/**"}, result)
	})

	t.Run("should return input unchanged without a predicate", func(t *testing.T) {
		in := []string{"build"}
		assert.Equal(t, in, ExpandDirectoryPatterns(in, nil))
	})
}

func TestJoinPatterns(t *testing.T) {
	assert.Equal(t, "a,b/**", JoinPatterns([]string{"a", "b/**"}))
	assert.Equal(t, []string{"a", "b/**"}, ParsePatterns(JoinPatterns([]string{"a", "b/**"})))
}
