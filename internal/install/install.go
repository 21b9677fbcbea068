// Package install adds handles to the hierarchy below a root handle, or
// adopts an existing directory as a standalone handle.
package install

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/conn-castle/datahandle/internal/config"
	"github.com/conn-castle/datahandle/internal/gitrepo"
	"github.com/conn-castle/datahandle/internal/hierarchy"
	"github.com/conn-castle/datahandle/internal/lock"
	"github.com/conn-castle/datahandle/internal/messages"
	"github.com/conn-castle/datahandle/internal/porcelain"
	"github.com/conn-castle/datahandle/internal/propagate"
	"github.com/conn-castle/datahandle/internal/runner"
)

// Options controls installer behavior.
type Options struct {
	// Source is a URL, a local path, or the hierarchical name of a handle
	// already registered below the root.
	Source string
	// Dest adopts an existing directory instead of installing below the root.
	Dest string
	// Name is the requested hierarchical name for a new handle.
	Name      string
	Recursive bool
	RootPath  string
	Backend   Backend
	System    System
}

// Result describes the installed handle.
type Result struct {
	// Name is the full hierarchical name; empty for an adopted directory.
	Name       string   `json:"name,omitempty"`
	Path       string   `json:"path"`
	URL        string   `json:"url,omitempty"`
	Subhandles []string `json:"subhandles,omitempty"`
	Adopted    bool     `json:"adopted,omitempty"`
}

var withRootLock = lock.WithRoot

type installer struct {
	opts    Options
	backend Backend
	sys     System
}

// Run installs opts.Source.
func Run(ctx context.Context, opts Options) (*Result, error) {
	if strings.TrimSpace(opts.Source) == "" {
		return nil, &UsageError{Msg: messages.InstallSourceRequired}
	}
	if opts.Backend == nil {
		return nil, errors.New(messages.InstallBackendRequired)
	}
	if opts.System == nil {
		return nil, errors.New(messages.InstallSystemRequired)
	}
	inst := &installer{opts: opts, backend: opts.Backend, sys: opts.System}

	if opts.Dest != "" {
		return inst.adopt(ctx)
	}
	if opts.RootPath == "" {
		return nil, errors.New(messages.InstallRootRequired)
	}
	var res *Result
	err := withRootLock(opts.RootPath, func() error {
		var err error
		res, err = inst.installUnderRoot(ctx)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// adopt makes an existing directory a standalone handle tracking Source.
func (i *installer) adopt(ctx context.Context) (*Result, error) {
	if i.opts.Name != "" {
		return nil, &UsageError{Msg: messages.InstallDestWithNameUnsupported}
	}
	dest, err := config.ExpandPath(i.opts.Dest)
	if err != nil {
		return nil, err
	}
	if _, err := i.sys.Stat(dest); err != nil {
		return nil, &UsageError{Msg: fmt.Sprintf(messages.InstallDestMissingFmt, dest)}
	}
	src := i.canonicalSource(i.opts.Source)
	if err := i.backend.InitOrClone(ctx, dest, src); err != nil {
		return nil, err
	}
	if i.backend.IsAnnex(ctx, dest) {
		if err := i.backend.AnnexInit(ctx, dest); err != nil {
			return nil, err
		}
	}
	log.Info().Str("path", dest).Str("source", src).Msg("adopted directory as handle")
	return &Result{Path: dest, URL: src, Adopted: true}, nil
}

func (i *installer) installUnderRoot(ctx context.Context) (*Result, error) {
	rootPath := i.opts.RootPath
	if _, err := i.backend.EnsureRoot(ctx, rootPath); err != nil {
		return nil, err
	}
	log.Info().Str("root", rootPath).Msg("installing using root handle")

	known, err := i.backend.AllSubmodules(ctx, rootPath)
	if err != nil {
		return nil, err
	}
	srcName := strings.TrimRight(i.opts.Source, hierarchy.Separator)
	if entry, ok := known[srcName]; ok {
		if entry.Initialized {
			return nil, &AlreadyInstalledError{Name: srcName}
		}
		return i.reinit(ctx, known, srcName)
	}
	return i.add(ctx, known)
}

// reinit checks out a handle that is registered but not initialized.
func (i *installer) reinit(ctx context.Context, known gitrepo.Index, name string) (*Result, error) {
	anchor := hierarchy.Resolve(name, known, i.opts.RootPath)
	if i.opts.Name != "" {
		log.Warn().Str("name", i.opts.Name).Msg("--name is ignored for an already registered handle")
	}
	rel := hierarchy.SubPath(known, name, anchor.Name)
	log.Debug().Str("anchor", anchor.Path).Str("path", rel).Msg("initializing registered handle")

	subs, err := i.backend.SubmoduleUpdate(ctx, anchor.Path, rel, i.opts.Recursive)
	if err != nil {
		return nil, err
	}
	targets := []string{rel}
	for _, sub := range subs {
		if sub != rel {
			targets = append(targets, sub)
		}
	}
	if err := i.initAnnexes(ctx, anchor.Path, targets); err != nil {
		return nil, err
	}
	var nested []string
	for _, sub := range subs {
		if hierarchy.IsAncestor(rel, sub) {
			nested = append(nested, sub)
		}
	}
	return &Result{
		Name:       name,
		Path:       filepath.Join(anchor.Path, filepath.FromSlash(rel)),
		URL:        known[name].URL,
		Subhandles: nested,
	}, nil
}

// add registers Source as a new sub-repository and commits it up to the root.
func (i *installer) add(ctx context.Context, known gitrepo.Index) (*Result, error) {
	rootPath := i.opts.RootPath
	src := i.canonicalSource(i.opts.Source)
	name := i.opts.Name

	anchor := hierarchy.Anchor{Remainder: name, Path: rootPath}
	if strings.Contains(name, hierarchy.Separator) {
		anchor = hierarchy.Resolve(name, known, rootPath)
		if e, ok := known[anchor.Name]; ok && !e.Initialized {
			return nil, &UsageError{Msg: fmt.Sprintf(messages.InstallAncestorNotInstalledFmt, anchor.Name, anchor.Name)}
		}
		name = anchor.Remainder
		if anchor.Name != "" {
			log.Info().Str("handle", anchor.Name).Msg("installing into handle")
		}
	}

	before, err := i.backend.Submodules(ctx, anchor.Path)
	if err != nil {
		return nil, err
	}
	gitlinkTarget, err := i.replaceGitSymlink(anchor.Path)
	if err != nil {
		return nil, err
	}
	if err := i.backend.SubmoduleAdd(ctx, anchor.Path, src, name); err != nil {
		if gitlinkTarget != "" {
			i.restoreGitSymlink(anchor.Path, gitlinkTarget)
		}
		return nil, classifyAddError(err)
	}

	after, err := i.backend.Submodules(ctx, anchor.Path)
	if err != nil {
		return nil, &PartialStateError{Name: name, Err: err}
	}
	added := after.Added(before)
	for _, a := range added {
		log.Debug().Str("name", a).Str("path", after[a].Path).Str("url", after[a].URL).Msg("added submodule")
	}
	if len(added) != 1 {
		return nil, &InvariantError{Repo: anchor.Path, Requested: name, Added: added}
	}
	if name != "" && added[0] != name {
		return nil, &InvariantError{Repo: anchor.Path, Requested: name, Added: added}
	}
	name = added[0]
	entry := after[name]
	handlePath := filepath.Join(anchor.Path, filepath.FromSlash(hierarchy.EntryPath(after, name)))

	var subs []string
	if i.opts.Recursive {
		subs, err = i.backend.SubmoduleUpdate(ctx, handlePath, "", true)
		if err != nil {
			return nil, &PartialStateError{Name: name, Err: err}
		}
	}

	chain := propagate.Build(rootPath, known, anchor.Name)
	log.Debug().Int("repos", len(chain)).Msg("propagating install commit")
	if err := propagate.Run(ctx, i.backend, chain, propagate.CommitMessage(name, subs)); err != nil {
		return nil, &PartialStateError{Name: name, Err: err}
	}

	if gitlinkTarget != "" {
		if err := i.backend.AnnexInit(ctx, anchor.Path); err != nil {
			return nil, &PartialStateError{Name: name, Err: err}
		}
	}
	if err := i.initAnnexes(ctx, handlePath, append([]string{""}, subs...)); err != nil {
		return nil, &PartialStateError{Name: name, Err: err}
	}

	fullName := name
	if anchor.Name != "" {
		fullName = anchor.Name + hierarchy.Separator + name
	}
	log.Info().Str("handle", fullName).Str("url", entry.URL).Str("path", handlePath).Msg("installed handle")
	for _, sub := range subs {
		log.Info().Str("subhandle", sub).Msg("included subhandle")
	}
	return &Result{Name: fullName, Path: handlePath, URL: entry.URL, Subhandles: subs}, nil
}

// initAnnexes runs annex init in every annex-managed repository among
// rels, each relative to base. Shorter paths go first.
func (i *installer) initAnnexes(ctx context.Context, base string, rels []string) error {
	for _, rel := range rels {
		path := filepath.Join(base, filepath.FromSlash(rel))
		if !i.backend.IsAnnex(ctx, path) {
			continue
		}
		log.Debug().Str("path", path).Msg("annex detected; running annex init")
		if err := i.backend.AnnexInit(ctx, path); err != nil {
			return err
		}
	}
	return nil
}

// canonicalSource returns src as an absolute path when it names an existing
// local path, since the backend may run from another directory.
func (i *installer) canonicalSource(src string) string {
	expanded, err := config.ExpandPath(src)
	if err != nil {
		return src
	}
	if _, err := i.sys.Stat(expanded); err != nil {
		return src
	}
	return expanded
}

// classifyAddError turns the backend's "already exists in the index"
// failure into AlreadyInstalledError.
func classifyAddError(err error) error {
	cmdErr, ok := runner.AsCommandError(err)
	if !ok {
		return err
	}
	if name, ok := porcelain.AlreadyInIndex(cmdErr.Stderr); ok {
		return &AlreadyInstalledError{Name: strings.Trim(name, "'")}
	}
	return err
}
