package ignore

import (
	"os"
	"path/filepath"
	"strings"

	"dirscope/pkg/logger"
	"dirscope/pkg/models"
)

// RepoIgnoreFile is the repository ignore file read from the scan root
const RepoIgnoreFile = ".gitignore"

// Layer names
const (
	LayerVCS      = "vcs"
	LayerDotfiles = "dotfiles"
	LayerRepo     = "repo"
	LayerUser     = "user"
)

// vcsPatterns exclude version control metadata directories and their contents
var vcsPatterns = []string{
	".git",
	".hg",
	".svn",
	".bzr",
}

// dotfilePatterns exclude every segment starting with a dot plus common OS
// metadata files
var dotfilePatterns = []string{
	".*",
	"Thumbs.db",
	"ehthumbs.db",
	"desktop.ini",
}

// VCSLayer returns the built-in version control layer
func VCSLayer() Layer {
	return Layer{Name: LayerVCS, Lines: append([]string(nil), vcsPatterns...)}
}

// DotfileLayer returns the built-in dotfile layer
func DotfileLayer() Layer {
	return Layer{Name: LayerDotfiles, Lines: append([]string(nil), dotfilePatterns...)}
}

// RepoLayer reads the repository ignore file at the root. A missing or
// unreadable file yields an empty layer.
func RepoLayer(root string) Layer {
	layer := Layer{Name: LayerRepo}
	path := filepath.Join(root, RepoIgnoreFile)

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			logger.Logger.WithError(err).WithField("file", path).Warn("Skipping unreadable ignore file")
		}
		return layer
	}

	layer.Lines = strings.Split(string(data), "\n")
	logger.Logger.WithFields(map[string]interface{}{
		"file":  path,
		"lines": len(layer.Lines),
	}).Debug("Loaded repository ignore file")
	return layer
}

// UserLayer wraps user supplied, already normalized patterns
func UserLayer(patterns []string) Layer {
	return Layer{Name: LayerUser, Lines: patterns}
}

// Layers assembles the layers enabled by settings, user patterns last
func Layers(root string, settings models.Settings, userPatterns []string) []Layer {
	var layers []Layer
	if settings.IgnoreVCS {
		layers = append(layers, VCSLayer())
	}
	if settings.IgnoreDotfiles {
		layers = append(layers, DotfileLayer())
	}
	if settings.RespectRepoIgnore {
		layers = append(layers, RepoLayer(root))
	}
	if len(userPatterns) > 0 {
		layers = append(layers, UserLayer(userPatterns))
	}
	return layers
}
