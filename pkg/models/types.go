package models

// Config represents the complete configuration of a dirscope project file
type Config struct {
	Root     string           `yaml:"root"`
	Exclude  string           `yaml:"exclude"`
	Include  string           `yaml:"include"`
	Matcher  string           `yaml:"matcher"`
	Settings Settings         `yaml:"settings"`
	Scan     ScanConfig       `yaml:"scan"`
	Modules  []Module         `yaml:"modules,omitempty"`
	Versions []ProjectVersion `yaml:"versions,omitempty"`
	Logging  LoggingConfig    `yaml:"logging"`
}

// Settings is the per-project toggle bag consumed by the exclusion resolver
type Settings struct {
	RespectRepoIgnore bool `yaml:"respect_repo_ignore" json:"respectRepoIgnore"`
	IgnoreDotfiles    bool `yaml:"ignore_dotfiles" json:"ignoreDotfiles"`
	IgnoreVCS         bool `yaml:"ignore_vcs" json:"ignoreVcs"`
}

// DefaultSettings returns the settings used when a project does not override them
func DefaultSettings() Settings {
	return Settings{
		RespectRepoIgnore: true,
		IgnoreDotfiles:    true,
		IgnoreVCS:         true,
	}
}

// ScanConfig contains walker limits and presets
type ScanConfig struct {
	MaxFileSize    string `yaml:"max_file_size"`
	WarnSize       string `yaml:"warn_size"`
	CommonExcludes bool   `yaml:"common_excludes"`
}

// LoggingConfig contains logging settings
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// CommonExcludes are the opt-in "common exclusions". They are not part of the
// built-in VCS/dotfile layers.
var CommonExcludes = []string{
	"node_modules",
	"vendor",
	"dist",
	"build",
	"target",
	"__pycache__",
}

// Matcher backend names
const (
	MatcherGlob    = "glob"
	MatcherRegex   = "regex"
	MatcherSegment = "segment"
)

// NodeType distinguishes folders from files in a scanned tree
type NodeType string

const (
	NodeFolder NodeType = "folder"
	NodeFile   NodeType = "file"
)

// TreeNode represents one filesystem entry relative to the project root.
// It is the wire contract between the scanner and its consumers.
type TreeNode struct {
	Type        NodeType   `json:"type"`
	Name        string     `json:"name"`
	Path        string     `json:"path"`
	Excluded    bool       `json:"excluded"`
	Children    []TreeNode `json:"children"`
	HasChildren bool       `json:"hasChildren"`
	Error       string     `json:"error,omitempty"`
}

// IsDir reports whether the node is a folder
func (n TreeNode) IsDir() bool {
	return n.Type == NodeFolder
}

// Clone returns a deep copy of the node and its descendants
func (n TreeNode) Clone() TreeNode {
	out := n
	out.Children = make([]TreeNode, len(n.Children))
	for i := range n.Children {
		out.Children[i] = n.Children[i].Clone()
	}
	return out
}

// Module is a named, user-defined pattern bundle
type Module struct {
	ID           string   `yaml:"id" json:"id"`
	Name         string   `yaml:"name" json:"name"`
	Patterns     []string `yaml:"patterns" json:"patterns"`
	Dependencies []string `yaml:"dependencies" json:"dependencies"`
}

// ProjectVersion is a named snapshot of a project's path, patterns and settings.
// Versions form a tree rooted at the version with an empty Parent.
type ProjectVersion struct {
	ID       string   `yaml:"id" json:"id"`
	Name     string   `yaml:"name" json:"name"`
	Parent   string   `yaml:"parent,omitempty" json:"parent,omitempty"`
	Path     string   `yaml:"path" json:"path"`
	Exclude  string   `yaml:"exclude" json:"exclude"`
	Include  string   `yaml:"include" json:"include"`
	Settings Settings `yaml:"settings" json:"settings"`
}

// CLIOptions contains command-line options
type CLIOptions struct {
	Root           string
	Exclude        string
	Include        string
	ConfigFile     string
	Matcher        string
	Format         string
	MaxFileSize    string
	WarnSize       string
	NoRepoIgnore   bool
	NoDotfiles     bool
	NoVCS          bool
	CommonExcludes bool
	Verbose        bool
	Quiet          bool
}
