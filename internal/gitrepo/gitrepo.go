// Package gitrepo wraps the git executable for one repository working tree.
package gitrepo

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/conn-castle/datahandle/internal/messages"
	"github.com/conn-castle/datahandle/internal/porcelain"
	"github.com/conn-castle/datahandle/internal/runner"
)

// DefaultGit is the git executable used when none is configured.
const DefaultGit = "git"

// Repo is a git working tree rooted at Path.
type Repo struct {
	Path string
	git  string
	run  runner.Runner
}

// New returns a Repo for path. An empty git means DefaultGit.
func New(path string, git string, run runner.Runner) *Repo {
	if git == "" {
		git = DefaultGit
	}
	return &Repo{Path: path, git: git, run: run}
}

// Git returns the git executable this repo invokes.
func (r *Repo) Git() string {
	return r.git
}

// Runner returns the runner used for backend calls.
func (r *Repo) Runner() runner.Runner {
	return r.run
}

// At returns a Repo for path sharing this repo's executable and runner.
func (r *Repo) At(path string) *Repo {
	return New(path, r.git, r.run)
}

// Exec runs `git args...` in the repository root.
func (r *Repo) Exec(ctx context.Context, opts runner.Options, args ...string) (runner.Result, error) {
	argv := append([]string{r.git}, args...)
	return r.run.Run(ctx, r.Path, argv, opts)
}

// IsRepo reports whether Path has a .git entry (directory, file or symlink).
func (r *Repo) IsRepo() bool {
	_, err := os.Lstat(filepath.Join(r.Path, ".git"))
	return err == nil
}

// Init runs `git init` in Path.
func (r *Repo) Init(ctx context.Context) error {
	_, err := r.Exec(ctx, runner.Options{}, "init")
	return err
}

// InitOrClone makes Path a repository tracking src. An empty directory is
// cloned into; a populated directory without .git is initialized in place
// with src registered as origin; an existing repository is left alone.
func (r *Repo) InitOrClone(ctx context.Context, src string) error {
	if r.IsRepo() {
		log.Debug().Str("path", r.Path).Msg("already a git repository")
		return nil
	}
	entries, err := os.ReadDir(r.Path)
	if err != nil {
		return fmt.Errorf(messages.GitReadDirFmt, r.Path, err)
	}
	if len(entries) == 0 && src != "" {
		_, err := r.Exec(ctx, runner.Options{ExpectStderr: true}, "clone", src, ".")
		return err
	}
	if err := r.Init(ctx); err != nil {
		return err
	}
	if src == "" {
		return nil
	}
	_, err = r.Exec(ctx, runner.Options{}, "remote", "add", "origin", src)
	return err
}

// Add stages path.
func (r *Repo) Add(ctx context.Context, path string) error {
	_, err := r.Exec(ctx, runner.Options{}, "add", path)
	return err
}

// HasStagedChanges reports whether the index differs from HEAD.
func (r *Repo) HasStagedChanges(ctx context.Context) (bool, error) {
	_, err := r.Exec(ctx, runner.Options{}, "diff", "--cached", "--quiet")
	if err == nil {
		return false, nil
	}
	if cmdErr, ok := runner.AsCommandError(err); ok && cmdErr.Code == 1 {
		return true, nil
	}
	return false, err
}

// Commit records the staged changes with message. Nothing staged is a no-op.
func (r *Repo) Commit(ctx context.Context, message string) error {
	staged, err := r.HasStagedChanges(ctx)
	if err != nil {
		return err
	}
	if !staged {
		log.Debug().Str("path", r.Path).Msg("nothing staged; skipping commit")
		return nil
	}
	_, err = r.Exec(ctx, runner.Options{}, "commit", "-m", message)
	return err
}

// IndexedFiles returns every path tracked in the git index.
func (r *Repo) IndexedFiles(ctx context.Context) (map[string]bool, error) {
	res, err := r.Exec(ctx, runner.Options{}, "ls-files", "-z")
	if err != nil {
		return nil, err
	}
	files := map[string]bool{}
	for _, f := range porcelain.SplitNull(res.Stdout) {
		files[f] = true
	}
	return files, nil
}

// ConfigBool reads a boolean repository setting. Unset reads as false.
func (r *Repo) ConfigBool(ctx context.Context, key string) (bool, error) {
	res, err := r.Exec(ctx, runner.Options{}, "config", "--bool", "--get", key)
	if err != nil {
		if cmdErr, ok := runner.AsCommandError(err); ok && cmdErr.Code == 1 {
			return false, nil
		}
		return false, err
	}
	return strings.TrimSpace(res.Stdout) == "true", nil
}

// SubmoduleAdd registers src as a new submodule. An empty name lets git
// derive the path from src.
func (r *Repo) SubmoduleAdd(ctx context.Context, src string, name string) error {
	args := []string{"submodule", "add", src}
	if name != "" {
		args = append(args, name)
	}
	_, err := r.Exec(ctx, runner.Options{ExpectStderr: true}, args...)
	return err
}

// SubmoduleUpdate initializes and checks out submodules below path (all
// submodules when path is empty) and returns the sub-paths git reported as
// checked out, ancestors first.
func (r *Repo) SubmoduleUpdate(ctx context.Context, path string, recursive bool) ([]string, error) {
	args := []string{"submodule", "update", "--init"}
	if recursive {
		args = append(args, "--recursive")
	}
	if path != "" {
		args = append(args, "--", path)
	}
	res, err := r.Exec(ctx, runner.Options{ExpectStderr: true}, args...)
	if err != nil {
		return nil, err
	}
	return porcelain.UpdatedSubmodulePaths(res.Stdout), nil
}
