// Package pattern compiles single glob patterns into matchers over
// normalized relative paths.
//
// Syntax: "*" and "?" never cross a "/" and "**" crosses directory
// boundaries. Character classes use "[...]" and "[!...]". Braces are
// literal. A pattern that fails to compile degrades to a literal matcher.
package pattern

import (
	"strings"

	"github.com/gobwas/glob"
)

// Separator is the only path separator patterns are matched against
const Separator = '/'

// Matcher matches a normalized relative path
type Matcher interface {
	Match(path string) bool
	String() string
}

// literalMatcher compares paths for equality
type literalMatcher struct {
	source string
}

func (m literalMatcher) Match(path string) bool { return path == m.source }
func (m literalMatcher) String() string         { return m.source }

// globMatcher matches if any compiled variant of the pattern matches
type globMatcher struct {
	source string
	globs  []glob.Glob
}

func (m *globMatcher) Match(path string) bool {
	for _, g := range m.globs {
		if g.Match(path) {
			return true
		}
	}
	return false
}

func (m *globMatcher) String() string { return m.source }

// Compile compiles a single pattern. It never fails.
func Compile(pattern string) Matcher {
	if !strings.ContainsAny(pattern, "*?[") {
		return literalMatcher{source: pattern}
	}

	escaped := escapeBraces(pattern)
	m := &globMatcher{source: pattern}
	for _, variant := range variants(escaped) {
		g, err := glob.Compile(variant, Separator)
		if err != nil {
			// unbalanced brackets and friends match literally
			return literalMatcher{source: pattern}
		}
		m.globs = append(m.globs, g)
	}

	return m
}

// IsLiteral reports whether the matcher compares paths for plain equality
func IsLiteral(m Matcher) bool {
	_, ok := m.(literalMatcher)
	return ok
}

// escapeBraces makes "{" and "}" literal, gobwas would treat them as alternation
func escapeBraces(pattern string) string {
	if !strings.ContainsAny(pattern, "{}") {
		return pattern
	}
	r := strings.NewReplacer("{", `\{`, "}", `\}`)
	return r.Replace(pattern)
}

// variants expands the zero-directory forms of "**": a leading "**/" may
// match nothing, and every "/**/" may collapse to "/".
func variants(pattern string) []string {
	out := []string{pattern}
	if strings.HasPrefix(pattern, "**/") {
		out = append(out, variants(pattern[3:])...)
	}

	idx := strings.Index(pattern, "/**/")
	if idx < 0 {
		return dedupe(out)
	}
	head := pattern[:idx+1]
	for _, tail := range variants(pattern[idx+4:]) {
		out = append(out, head+tail)
	}
	for _, tail := range variants(pattern[idx+1:]) {
		out = append(out, head+tail)
	}

	return dedupe(out)
}

func dedupe(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, s := range in {
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
