package ignore

import (
	"strings"

	gitignore "github.com/go-git/go-git/v5/plumbing/format/gitignore"
	sabhiram "github.com/sabhiram/go-gitignore"

	"dirscope/internal/pattern"
	"dirscope/pkg/logger"
	"dirscope/pkg/models"
)

// RegexCompiler compiles every line to a regular expression via
// sabhiram/go-gitignore. It does not support "?" as a wildcard.
type RegexCompiler struct{}

// Name returns the registry name
func (RegexCompiler) Name() string { return models.MatcherRegex }

// Compile compiles the lines
func (RegexCompiler) Compile(lines []string) Matcher {
	safe := make([]string, len(lines))
	for i, line := range lines {
		safe[i] = regexSafe(line)
	}
	return &regexMatcher{gi: sabhiram.CompileIgnoreLines(safe...)}
}

var bracketEscaper = strings.NewReplacer("[", `\[`, "]", `\]`)

// regexSafe escapes brackets in a line whose regular expression would not
// compile, so one bad line cannot poison the whole matcher
func regexSafe(line string) string {
	ok := func() (ok bool) {
		defer func() {
			if recover() != nil {
				ok = false
			}
		}()
		sabhiram.CompileIgnoreLines(line).MatchesPath("probe")
		return true
	}()
	if ok {
		return line
	}
	return bracketEscaper.Replace(line)
}

type regexMatcher struct {
	gi *sabhiram.GitIgnore
}

func (m *regexMatcher) Match(path string, isDir bool) (matched bool) {
	if isDir {
		path += "/"
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Logger.WithField("path", path).Warnf("Recovered from gitignore regex panic: %v", r)
			matched = false
		}
	}()
	return m.gi.MatchesPath(path)
}

// SegmentCompiler matches path segments with go-git's gitignore package
type SegmentCompiler struct{}

// Name returns the registry name
func (SegmentCompiler) Name() string { return models.MatcherSegment }

// Compile parses the lines into go-git patterns
func (SegmentCompiler) Compile(lines []string) Matcher {
	patterns := make([]gitignore.Pattern, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, gitignore.ParsePattern(line, nil))
	}
	return &segmentMatcher{m: gitignore.NewMatcher(patterns)}
}

type segmentMatcher struct {
	m gitignore.Matcher
}

func (m *segmentMatcher) Match(path string, isDir bool) bool {
	if path == "" {
		return false
	}
	return m.m.Match(strings.Split(path, string(pattern.Separator)), isDir)
}
