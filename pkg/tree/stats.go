package tree

import (
	"dirscope/pkg/models"
)

// Stats summarizes a scanned tree
type Stats struct {
	Folders  int
	Files    int
	Excluded int
	Errors   int
	Depth    int
}

// Collect walks the tree below root and counts its nodes. The root itself
// is not counted.
func Collect(root models.TreeNode) Stats {
	var s Stats
	if root.Error != "" {
		s.Errors++
	}
	collect(root.Children, 1, &s)
	return s
}

func collect(nodes []models.TreeNode, depth int, s *Stats) {
	for _, node := range nodes {
		if depth > s.Depth {
			s.Depth = depth
		}
		if node.Excluded {
			s.Excluded++
		}
		if node.Error != "" {
			s.Errors++
		}
		if node.IsDir() {
			s.Folders++
			collect(node.Children, depth+1, s)
		} else {
			s.Files++
		}
	}
}

// Fields returns the stats as structured log fields
func (s Stats) Fields() map[string]interface{} {
	return map[string]interface{}{
		"folders":  s.Folders,
		"files":    s.Files,
		"excluded": s.Excluded,
		"errors":   s.Errors,
		"depth":    s.Depth,
	}
}
