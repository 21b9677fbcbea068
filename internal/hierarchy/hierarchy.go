// Package hierarchy resolves slash-separated handle names against a
// sub-repository index.
package hierarchy

import (
	"path/filepath"
	"sort"
	"strings"

	"github.com/conn-castle/datahandle/internal/gitrepo"
)

// Separator joins the segments of a hierarchical name.
const Separator = "/"

// Anchor is the deepest registered ancestor of a name.
type Anchor struct {
	// Name is the ancestor's hierarchical name; empty for the tree root.
	Name string
	// Remainder is the requested name with Name and its separator stripped.
	Remainder string
	// Path is the ancestor's absolute location.
	Path string
}

// Target returns the absolute location the resolved name denotes.
func (a Anchor) Target() string {
	return filepath.Join(a.Path, filepath.FromSlash(a.Remainder))
}

// IsAncestor reports whether ancestor is a strict, segment-aligned prefix of name.
func IsAncestor(ancestor string, name string) bool {
	return ancestor != "" && strings.HasPrefix(name, ancestor+Separator)
}

// Ancestors returns the index names that are strict ancestors of name,
// deepest first.
func Ancestors(name string, index gitrepo.Index) []string {
	var found []string
	for candidate := range index {
		if IsAncestor(candidate, name) {
			found = append(found, candidate)
		}
	}
	sort.Slice(found, func(i, j int) bool { return len(found[i]) > len(found[j]) })
	return found
}

// TrimName strips ancestor and the following separator from name.
func TrimName(name string, ancestor string) string {
	if ancestor == "" {
		return name
	}
	return strings.TrimPrefix(name, ancestor+Separator)
}

// EntryPath returns the slash-separated location of name relative to the
// tree root, falling back to the name itself when the index has no path.
func EntryPath(index gitrepo.Index, name string) string {
	if name == "" {
		return ""
	}
	if entry, ok := index[name]; ok && entry.Path != "" {
		return entry.Path
	}
	return name
}

// SubPath returns the location of name relative to its ancestor's
// location. An empty ancestor is the tree root.
func SubPath(index gitrepo.Index, name string, ancestor string) string {
	p := EntryPath(index, name)
	if ancestor == "" {
		return p
	}
	return strings.TrimPrefix(p, EntryPath(index, ancestor)+Separator)
}

// Resolve finds the most specific registered ancestor of name. Without one,
// the anchor is the tree root at rootPath and the remainder is name itself.
func Resolve(name string, index gitrepo.Index, rootPath string) Anchor {
	ancestors := Ancestors(name, index)
	if len(ancestors) == 0 {
		return Anchor{Remainder: name, Path: rootPath}
	}
	deepest := ancestors[0]
	return Anchor{
		Name:      deepest,
		Remainder: TrimName(name, deepest),
		Path:      filepath.Join(rootPath, filepath.FromSlash(EntryPath(index, deepest))),
	}
}
