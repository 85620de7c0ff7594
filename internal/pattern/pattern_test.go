package pattern

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCompile(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		matches []string
		misses  []string
	}{
		{
			name:    "should match literal paths exactly",
			pattern: "src/main.go",
			matches: []string{"src/main.go"},
			misses:  []string{"src/main.go.bak", "other/src/main.go"},
		},
		{
			name:    "should not cross separators with a single star",
			pattern: "*.log",
			matches: []string{"app.log", ".log"},
			misses:  []string{"logs/app.log"},
		},
		{
			name:    "should cross separators with a double star",
			pattern: "docs/**",
			matches: []string{"docs/a.md", "docs/api/v1/index.md"},
			misses:  []string{"docs", "src/docs/a.md"},
		},
		{
			name:    "should let a leading double star match zero directories",
			pattern: "**/fixtures",
			matches: []string{"fixtures", "a/fixtures", "a/b/fixtures"},
			misses:  []string{"fixtures2"},
		},
		{
			name:    "should let an inner double star collapse",
			pattern: "a/**/b",
			matches: []string{"a/b", "a/x/b", "a/x/y/b"},
			misses:  []string{"a/xb", "b"},
		},
		{
			name:    "should match one non-separator character with question mark",
			pattern: "file?.txt",
			matches: []string{"file1.txt", "fileA.txt"},
			misses:  []string{"file10.txt", "file/.txt"},
		},
		{
			name:    "should support character classes",
			pattern: "img[0-9].png",
			matches: []string{"img1.png"},
			misses:  []string{"imgA.png"},
		},
		{
			name:    "should treat braces literally",
			pattern: "{a,b}*.txt",
			matches: []string{"{a,b}x.txt"},
			misses:  []string{"ax.txt", "b.txt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := Compile(tt.pattern)
			assert.Equal(t, tt.pattern, m.String())
			for _, p := range tt.matches {
				assert.True(t, m.Match(p), "expected %q to match %q", tt.pattern, p)
			}
			for _, p := range tt.misses {
				assert.False(t, m.Match(p), "expected %q not to match %q", tt.pattern, p)
			}
		})
	}
}

func TestCompile_Malformed(t *testing.T) {
	t.Run("should degrade unbalanced brackets to a literal matcher", func(t *testing.T) {
		var m Matcher
		assert.NotPanics(t, func() { m = Compile("data[1.csv") })
		assert.True(t, IsLiteral(m))
		assert.True(t, m.Match("data[1.csv"))
		assert.False(t, m.Match("data1.csv"))
	})

	t.Run("should report wildcard patterns as non-literal", func(t *testing.T) {
		assert.False(t, IsLiteral(Compile("*.go")))
		assert.True(t, IsLiteral(Compile("go.mod")))
	})
}

func TestVariants(t *testing.T) {
	assert.ElementsMatch(t, []string{"a/**/b", "a/b"}, variants("a/**/b"))
	assert.ElementsMatch(t, []string{"**/x", "x"}, variants("**/x"))
	assert.Equal(t, []string{"plain"}, variants("plain"))
}
