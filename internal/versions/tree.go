// Package versions manages the tree of project versions. Parent links come
// from user-editable configuration, so every traversal carries a visited set.
package versions

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode"

	"dirscope/pkg/models"
)

var (
	// ErrCycle is returned when a move would place a version below itself
	ErrCycle = errors.New("version move would create a cycle")
	// ErrNotFound is returned for unknown version ids
	ErrNotFound = errors.New("version not found")
	// ErrRootVersion is returned when deleting or moving the root version
	ErrRootVersion = errors.New("root version cannot be deleted or moved")
	// ErrInvalidTree is returned when stored versions do not form one tree
	ErrInvalidTree = errors.New("invalid version tree")
)

// Tree holds versions in insertion order
type Tree struct {
	versions map[string]models.ProjectVersion
	order    []string
	rootID   string
}

// NewTree validates and indexes stored versions. Exactly one version must
// have no parent and every parent must exist.
func NewTree(versions []models.ProjectVersion) (*Tree, error) {
	t := &Tree{versions: make(map[string]models.ProjectVersion, len(versions))}

	for _, v := range versions {
		if v.ID == "" {
			return nil, fmt.Errorf("%w: version %q has no id", ErrInvalidTree, v.Name)
		}
		if _, dup := t.versions[v.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate id %s", ErrInvalidTree, v.ID)
		}
		if v.Parent == "" {
			if t.rootID != "" {
				return nil, fmt.Errorf("%w: both %s and %s are root versions", ErrInvalidTree, t.rootID, v.ID)
			}
			t.rootID = v.ID
		}
		t.versions[v.ID] = v
		t.order = append(t.order, v.ID)
	}

	if t.rootID == "" {
		return nil, fmt.Errorf("%w: no root version", ErrInvalidTree)
	}
	for _, v := range t.versions {
		if v.Parent != "" {
			if _, ok := t.versions[v.Parent]; !ok {
				return nil, fmt.Errorf("%w: %s has unknown parent %s", ErrInvalidTree, v.ID, v.Parent)
			}
		}
	}
	return t, nil
}

// Root returns the root version
func (t *Tree) Root() models.ProjectVersion {
	return t.versions[t.rootID]
}

// Get returns the version with the given id
func (t *Tree) Get(id string) (models.ProjectVersion, error) {
	v, ok := t.versions[id]
	if !ok {
		return models.ProjectVersion{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return v, nil
}

// List returns all versions in insertion order
func (t *Tree) List() []models.ProjectVersion {
	out := make([]models.ProjectVersion, 0, len(t.order))
	for _, id := range t.order {
		out = append(out, t.versions[id])
	}
	return out
}

// Children returns the direct children of id in insertion order
func (t *Tree) Children(id string) []models.ProjectVersion {
	var out []models.ProjectVersion
	for _, cid := range t.order {
		if v := t.versions[cid]; v.Parent == id && cid != id {
			out = append(out, v)
		}
	}
	return out
}

// Descendants returns the ids below id, parents before children
func (t *Tree) Descendants(id string) []string {
	visited := map[string]bool{id: true}
	var out []string

	queue := []string{id}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		for _, child := range t.Children(cur) {
			if visited[child.ID] {
				continue
			}
			visited[child.ID] = true
			out = append(out, child.ID)
			queue = append(queue, child.ID)
		}
	}
	return out
}

// Ancestors returns the ids above id, nearest first
func (t *Tree) Ancestors(id string) []string {
	visited := map[string]bool{id: true}
	var out []string

	cur, ok := t.versions[id]
	for ok && cur.Parent != "" && !visited[cur.Parent] {
		visited[cur.Parent] = true
		out = append(out, cur.Parent)
		cur, ok = t.versions[cur.Parent]
	}
	return out
}

// Create adds a version named name as a child of fromID, copying its path,
// patterns and settings. An empty fromID copies the root version.
func (t *Tree) Create(name, fromID string) (models.ProjectVersion, error) {
	if fromID == "" {
		fromID = t.rootID
	}
	src, err := t.Get(fromID)
	if err != nil {
		return models.ProjectVersion{}, err
	}

	v := models.ProjectVersion{
		ID:       t.uniqueID(name),
		Name:     name,
		Parent:   src.ID,
		Path:     src.Path,
		Exclude:  src.Exclude,
		Include:  src.Include,
		Settings: src.Settings,
	}
	t.versions[v.ID] = v
	t.order = append(t.order, v.ID)
	return v, nil
}

// Delete removes id and all of its descendants and returns the removed ids
func (t *Tree) Delete(id string) ([]string, error) {
	if _, err := t.Get(id); err != nil {
		return nil, err
	}
	if id == t.rootID {
		return nil, ErrRootVersion
	}

	removed := append([]string{id}, t.Descendants(id)...)
	gone := make(map[string]bool, len(removed))
	for _, rid := range removed {
		gone[rid] = true
		delete(t.versions, rid)
	}

	kept := t.order[:0]
	for _, oid := range t.order {
		if !gone[oid] {
			kept = append(kept, oid)
		}
	}
	t.order = kept
	return removed, nil
}

// Move reparents id under newParent. A move below the version itself or one
// of its descendants fails with ErrCycle and leaves the tree unchanged.
func (t *Tree) Move(id, newParent string) error {
	v, err := t.Get(id)
	if err != nil {
		return err
	}
	if _, err := t.Get(newParent); err != nil {
		return err
	}
	if id == t.rootID {
		return ErrRootVersion
	}

	if newParent == id {
		return fmt.Errorf("move %s under itself: %w", id, ErrCycle)
	}
	for _, d := range t.Descendants(id) {
		if d == newParent {
			return fmt.Errorf("move %s under descendant %s: %w", id, newParent, ErrCycle)
		}
	}

	v.Parent = newParent
	t.versions[id] = v
	return nil
}

func (t *Tree) uniqueID(name string) string {
	base := slug(name)
	if base == "" {
		base = "version"
	}

	id := base
	for n := 2; ; n++ {
		if _, taken := t.versions[id]; !taken {
			return id
		}
		id = base + "-" + strconv.Itoa(n)
	}
}

func slug(name string) string {
	var sb strings.Builder
	dash := false
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			sb.WriteRune(r)
			dash = false
			continue
		}
		if !dash && sb.Len() > 0 {
			sb.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(sb.String(), "-")
}
