// Package ignore aggregates layered exclusion sources into one matcher
// with gitignore semantics.
//
// Rules are evaluated in order and the last rule that matches a path
// decides. A negated rule ("!pattern") can re-include a path, but never one
// whose parent directory is itself excluded.
package ignore

import (
	"strings"

	"dirscope/internal/pattern"
)

// Rule is one parsed gitignore line
type Rule struct {
	Source   string
	Negate   bool
	DirOnly  bool
	Anchored bool
	matcher  pattern.Matcher
}

// ParseRule parses a gitignore line. Blank lines and comments return ok=false.
func ParseRule(line string) (Rule, bool) {
	line = strings.TrimRight(line, "\r")
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, "#") {
		return Rule{}, false
	}

	r := Rule{Source: line}
	if strings.HasPrefix(line, "!") {
		r.Negate = true
		line = line[1:]
	} else if strings.HasPrefix(line, `\!`) || strings.HasPrefix(line, `\#`) {
		line = line[1:]
	}

	if strings.HasSuffix(line, "/") {
		r.DirOnly = true
		line = strings.TrimRight(line, "/")
	}
	if strings.HasPrefix(line, "/") {
		r.Anchored = true
		line = strings.TrimLeft(line, "/")
	}
	if strings.Contains(line, "/") {
		r.Anchored = true
	}
	if line == "" {
		return Rule{}, false
	}

	r.matcher = pattern.Compile(line)
	return r, true
}

// Matches reports whether the rule matches the path itself. Matches through
// a parent directory are the Set's concern.
func (r Rule) Matches(path string, isDir bool) bool {
	if r.DirOnly && !isDir {
		return false
	}
	if r.Anchored {
		return r.matcher.Match(path)
	}
	return r.matcher.Match(baseName(path))
}

func baseName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// ParseRules parses every non-blank, non-comment line
func ParseRules(lines []string) []Rule {
	rules := make([]Rule, 0, len(lines))
	for _, line := range lines {
		if r, ok := ParseRule(line); ok {
			rules = append(rules, r)
		}
	}
	return rules
}
