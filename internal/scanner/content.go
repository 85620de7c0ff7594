package scanner

import (
	"mime"
	"path/filepath"
	"strings"

	"dirscope/pkg/logger"
	"dirscope/pkg/utils"
)

// Classifier decides whether a file holds text worth listing
type Classifier interface {
	IsText(path string) bool
}

// ClassifierFunc adapts a function to the Classifier interface
type ClassifierFunc func(path string) bool

// IsText calls f(path)
func (f ClassifierFunc) IsText(path string) bool {
	return f(path)
}

// ContentClassifier checks, in order: known binary extensions, known text
// extensions and file names, the system MIME table, and finally the first
// bytes of the file.
type ContentClassifier struct{}

// IsText reports whether the file at path is text
func (ContentClassifier) IsText(path string) bool {
	name := filepath.Base(path)
	ext := strings.ToLower(filepath.Ext(name))

	if IsBinaryExtension(name) {
		return false
	}
	if _, ok := textExts[ext]; ok {
		return true
	}
	if _, ok := textNames[strings.ToLower(name)]; ok {
		return true
	}

	if ext != "" {
		if mediaType := mime.TypeByExtension(ext); mediaType != "" {
			return isTextMediaType(mediaType)
		}
	}

	ok, err := utils.SniffTextFile(path)
	if err != nil {
		logger.Logger.WithError(err).WithField("path", path).Debug("Could not sniff file content")
		return false
	}
	return ok
}

// IsBinaryExtension returns true if the file name has an extension known to
// be a binary format. Versioned shared libraries like "libfoo.so.1" count.
func IsBinaryExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	if _, ok := binaryExts[ext]; ok {
		return true
	}
	return strings.Contains(name, ".so.")
}

func isTextMediaType(mediaType string) bool {
	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		return false
	}
	if strings.HasPrefix(mt, "text/") {
		return true
	}
	if strings.HasSuffix(mt, "+json") || strings.HasSuffix(mt, "+xml") || strings.HasSuffix(mt, "+yaml") {
		return true
	}
	_, ok := textMediaTypes[mt]
	return ok
}

// textMediaTypes are the non text/* types that still carry readable text
var textMediaTypes = map[string]struct{}{
	"application/json":          {},
	"application/xml":           {},
	"application/yaml":          {},
	"application/x-yaml":        {},
	"application/toml":          {},
	"application/javascript":    {},
	"application/x-javascript":  {},
	"application/ecmascript":    {},
	"application/x-sh":          {},
	"application/x-shellscript": {},
	"application/sql":           {},
	"application/graphql":       {},
	"application/x-httpd-php":   {},
}

// binaryExts is the set of file extensions known to be binary
var binaryExts = map[string]struct{}{
	// Compiled / linked
	".a":     {},
	".o":     {},
	".so":    {},
	".dylib": {},
	".dll":   {},
	".exe":   {},
	".bin":   {},
	".class": {},
	".pyc":   {},
	".pyo":   {},
	".wasm":  {},
	// Archives / compressed
	".gz":  {},
	".bz2": {},
	".xz":  {},
	".zst": {},
	".zip": {},
	".tar": {},
	".tgz": {},
	".rar": {},
	".7z":  {},
	".deb": {},
	".rpm": {},
	".jar": {},
	".war": {},
	".dmg": {},
	".iso": {},
	// Images
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".gif":  {},
	".bmp":  {},
	".ico":  {},
	".webp": {},
	".tif":  {},
	".tiff": {},
	".psd":  {},
	// Audio / video
	".mp3":  {},
	".wav":  {},
	".flac": {},
	".ogg":  {},
	".mp4":  {},
	".mkv":  {},
	".mov":  {},
	".avi":  {},
	".webm": {},
	// Fonts
	".ttf":   {},
	".otf":   {},
	".woff":  {},
	".woff2": {},
	".eot":   {},
	// Documents (binary formats)
	".pdf":  {},
	".doc":  {},
	".docx": {},
	".xls":  {},
	".xlsx": {},
	".ppt":  {},
	".pptx": {},
	// Databases
	".db":      {},
	".sqlite":  {},
	".sqlite3": {},
}

// textExts is the set of file extensions always treated as text
var textExts = map[string]struct{}{
	".txt": {}, ".md": {}, ".rst": {}, ".adoc": {},
	".go": {}, ".mod": {}, ".sum": {},
	".js": {}, ".mjs": {}, ".cjs": {}, ".jsx": {}, ".ts": {}, ".tsx": {}, ".vue": {}, ".svelte": {},
	".py": {}, ".rb": {}, ".php": {}, ".pl": {}, ".lua": {},
	".java": {}, ".kt": {}, ".kts": {}, ".scala": {}, ".groovy": {}, ".gradle": {},
	".c": {}, ".h": {}, ".cc": {}, ".cpp": {}, ".hpp": {}, ".cs": {}, ".rs": {}, ".swift": {}, ".m": {},
	".sh": {}, ".bash": {}, ".zsh": {}, ".fish": {}, ".ps1": {}, ".bat": {},
	".html": {}, ".htm": {}, ".css": {}, ".scss": {}, ".sass": {}, ".less": {}, ".svg": {},
	".json": {}, ".yaml": {}, ".yml": {}, ".toml": {}, ".ini": {}, ".cfg": {}, ".conf": {}, ".env": {},
	".xml": {}, ".csv": {}, ".tsv": {}, ".sql": {}, ".graphql": {}, ".proto": {},
	".tf": {}, ".hcl": {}, ".dockerfile": {}, ".lock": {}, ".log": {},
}

// textNames are extension-less file names always treated as text
var textNames = map[string]struct{}{
	"makefile":      {},
	"dockerfile":    {},
	"license":       {},
	"readme":        {},
	"changelog":     {},
	"authors":       {},
	"contributing":  {},
	"gemfile":       {},
	"rakefile":      {},
	"procfile":      {},
	"vagrantfile":   {},
	"jenkinsfile":   {},
	".gitignore":    {},
	".dockerignore": {},
	".editorconfig": {},
}
