package ignore

import (
	"fmt"
	"strings"

	"dirscope/pkg/models"
)

// Matcher answers whether the last rule matching a path directly excludes
// it. It does not look at parent directories, see Set.Excluded for that.
type Matcher interface {
	Match(path string, isDir bool) bool
}

// Compiler turns ordered gitignore lines into a Matcher. Implementations
// are interchangeable behind the Set.
type Compiler interface {
	Name() string
	Compile(lines []string) Matcher
}

// CompilerFor returns the compiler registered under name. An empty name
// selects the default glob compiler.
func CompilerFor(name string) (Compiler, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", models.MatcherGlob:
		return GlobCompiler{}, nil
	case models.MatcherRegex:
		return RegexCompiler{}, nil
	case models.MatcherSegment:
		return SegmentCompiler{}, nil
	default:
		return nil, fmt.Errorf("unknown matcher %q (valid: glob, regex, segment)", name)
	}
}

// GlobCompiler evaluates rules built on the pattern package
type GlobCompiler struct{}

// Name returns the registry name
func (GlobCompiler) Name() string { return models.MatcherGlob }

// Compile parses the lines into rules
func (GlobCompiler) Compile(lines []string) Matcher {
	return ruleMatcher(ParseRules(lines))
}

type ruleMatcher []Rule

func (rs ruleMatcher) Match(path string, isDir bool) bool {
	for i := len(rs) - 1; i >= 0; i-- {
		if rs[i].Matches(path, isDir) {
			return !rs[i].Negate
		}
	}
	return false
}
