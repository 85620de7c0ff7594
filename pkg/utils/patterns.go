package utils

import (
	"strings"
)

// globMeta lists the characters that turn a pattern into a wildcard pattern
const globMeta = "*?["

// ParsePatterns parses comma-separated pattern strings into normalized slices.
// Empty segments are discarded.
func ParsePatterns(patternStr string) []string {
	if patternStr == "" {
		return nil
	}

	patterns := strings.Split(patternStr, ",")
	var result []string

	for _, pattern := range patterns {
		pattern = NormalizePattern(pattern)
		if pattern != "" {
			result = append(result, pattern)
		}
	}

	return result
}

// JoinPatterns is the inverse of ParsePatterns
func JoinPatterns(patterns []string) string {
	return strings.Join(patterns, ",")
}

// NormalizePattern converts backslashes to forward slashes, trims whitespace
// and strips a leading "./". A negation prefix is preserved.
func NormalizePattern(pattern string) string {
	pattern = strings.TrimSpace(pattern)
	pattern = strings.ReplaceAll(pattern, "\\", "/")

	negate := strings.HasPrefix(pattern, "!")
	if negate {
		pattern = strings.TrimSpace(pattern[1:])
	}
	for strings.HasPrefix(pattern, "./") {
		pattern = pattern[2:]
	}
	if pattern == "" || pattern == "." {
		return ""
	}
	if negate {
		return "!" + pattern
	}
	return pattern
}

// NormalizePath converts a relative path to the form patterns are matched
// against: forward slashes, no leading "./" or "/", no trailing "/".
func NormalizePath(relPath string) string {
	p := strings.ReplaceAll(strings.TrimSpace(relPath), "\\", "/")
	for strings.HasPrefix(p, "./") {
		p = p[2:]
	}
	p = strings.Trim(p, "/")
	if p == "." {
		return ""
	}
	return p
}

// HasWildcard reports whether the pattern contains glob metacharacters
func HasWildcard(pattern string) bool {
	return strings.ContainsAny(pattern, globMeta)
}

// ExpandDirectoryPatterns adds "<dir>/**" after every wildcard-free pattern
// that names an existing directory, so excluding a directory also excludes
// its contents. isDir decides existence relative to the project root.
func ExpandDirectoryPatterns(patterns []string, isDir func(relPath string) bool) []string {
	if isDir == nil {
		return patterns
	}

	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		result = append(result, pattern)

		body := pattern
		prefix := ""
		if strings.HasPrefix(body, "!") {
			prefix = "!"
			body = body[1:]
		}
		if HasWildcard(body) {
			continue
		}

		name := strings.Trim(body, "/")
		if name == "" || !isDir(name) {
			continue
		}
		result = append(result, prefix+name+"/**")
	}

	return result
}
