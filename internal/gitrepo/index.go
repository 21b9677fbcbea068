package gitrepo

import (
	"context"
	"errors"
	"os"
	"path"
	"path/filepath"
	"sort"

	"github.com/conn-castle/datahandle/internal/porcelain"
	"github.com/conn-castle/datahandle/internal/runner"
)

// Entry describes one registered sub-repository.
type Entry struct {
	// Path is relative to the repository the index was built from, slash separated.
	Path        string `json:"path"`
	URL         string `json:"url"`
	Initialized bool   `json:"initialized"`
}

// Index maps hierarchical handle names to their sub-repository entries.
// It is a point-in-time snapshot and is never cached.
type Index map[string]Entry

// Names returns the index keys in lexical order.
func (idx Index) Names() []string {
	names := make([]string, 0, len(idx))
	for name := range idx {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Added returns the names present in idx but not in before, sorted.
func (idx Index) Added(before Index) []string {
	var added []string
	for name := range idx {
		if _, ok := before[name]; !ok {
			added = append(added, name)
		}
	}
	sort.Strings(added)
	return added
}

// Submodules returns the direct submodules registered in .gitmodules,
// keyed by submodule name.
func (r *Repo) Submodules(ctx context.Context) (Index, error) {
	idx := Index{}
	if _, err := os.Stat(filepath.Join(r.Path, ".gitmodules")); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return idx, nil
		}
		return nil, err
	}
	res, err := r.Exec(ctx, runner.Options{}, "config", "-z", "--file", ".gitmodules", "--get-regexp", `^submodule\.`)
	if err != nil {
		if cmdErr, ok := runner.AsCommandError(err); ok && cmdErr.Code == 1 {
			return idx, nil
		}
		return nil, err
	}
	modules := porcelain.ParseGitmodules(res.Stdout)
	if len(modules) == 0 {
		return idx, nil
	}
	statusRes, err := r.Exec(ctx, runner.Options{}, "submodule", "status")
	if err != nil {
		return nil, err
	}
	status := porcelain.ParseSubmoduleStatus(statusRes.Stdout)
	for name, mod := range modules {
		idx[name] = Entry{Path: mod.Path, URL: mod.URL, Initialized: status[mod.Path]}
	}
	return idx, nil
}

// AllSubmodules returns every sub-repository below this one. Names and
// paths are joined through each level of nesting; only initialized
// submodules are descended into.
func (r *Repo) AllSubmodules(ctx context.Context) (Index, error) {
	all := Index{}
	if err := r.collectSubmodules(ctx, "", "", all); err != nil {
		return nil, err
	}
	return all, nil
}

func (r *Repo) collectSubmodules(ctx context.Context, namePrefix string, pathPrefix string, into Index) error {
	direct, err := r.Submodules(ctx)
	if err != nil {
		return err
	}
	for _, name := range direct.Names() {
		entry := direct[name]
		fullName := path.Join(namePrefix, name)
		entry.Path = path.Join(pathPrefix, entry.Path)
		into[fullName] = entry
		if !entry.Initialized {
			continue
		}
		child := r.At(filepath.Join(r.Path, filepath.FromSlash(direct[name].Path)))
		if err := child.collectSubmodules(ctx, fullName, entry.Path, into); err != nil {
			return err
		}
	}
	return nil
}
