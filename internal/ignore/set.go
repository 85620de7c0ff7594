package ignore

import (
	"strings"
)

// Layer is one named source of rules
type Layer struct {
	Name  string
	Lines []string
}

// Set is an immutable, ordered aggregation of layers. Later layers override
// earlier ones. A Set is safe for concurrent use.
type Set struct {
	compiler Compiler
	layers   []Layer
	matcher  Matcher
}

// NewSet compiles the layers in order with the given compiler. A nil
// compiler selects the default glob compiler.
func NewSet(compiler Compiler, layers ...Layer) *Set {
	if compiler == nil {
		compiler = GlobCompiler{}
	}

	var lines []string
	for _, layer := range layers {
		lines = append(lines, layer.Lines...)
	}

	return &Set{
		compiler: compiler,
		layers:   layers,
		matcher:  compiler.Compile(lines),
	}
}

// Compiler returns the compiler the set was built with
func (s *Set) Compiler() Compiler {
	return s.compiler
}

// Layers returns the layer names in evaluation order
func (s *Set) Layers() []string {
	names := make([]string, 0, len(s.layers))
	for _, l := range s.layers {
		names = append(names, l.Name)
	}
	return names
}

// Match evaluates the rules against the path alone
func (s *Set) Match(path string, isDir bool) bool {
	if s == nil || path == "" {
		return false
	}
	return s.matcher.Match(path, isDir)
}

// Excluded reports whether the path is excluded, either by its own rules or
// because one of its parent directories is excluded.
func (s *Set) Excluded(path string, isDir bool) bool {
	if s == nil || path == "" {
		return false
	}

	for i := strings.IndexByte(path, '/'); i >= 0; {
		if s.matcher.Match(path[:i], true) {
			return true
		}
		next := strings.IndexByte(path[i+1:], '/')
		if next < 0 {
			break
		}
		i += next + 1
	}

	return s.matcher.Match(path, isDir)
}
