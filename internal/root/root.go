// Package root locates repository roots and ensures the root handle exists.
package root

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/conn-castle/datahandle/internal/gitrepo"
	"github.com/conn-castle/datahandle/internal/messages"
)

// FindRepoRoot walks up from start to the nearest directory containing a
// .git directory or gitdir file. It falls back to start when none is found.
func FindRepoRoot(start string) (string, error) {
	if start == "" {
		return "", errors.New(messages.RootStartPathRequired)
	}
	dir, err := filepath.Abs(start)
	if err != nil {
		return "", err
	}
	for {
		found, err := hasGitEntry(dir)
		if err != nil {
			return "", err
		}
		if found {
			return dir, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return filepath.Clean(start), nil
		}
		dir = parent
	}
}

func hasGitEntry(dir string) (bool, error) {
	info, err := os.Stat(filepath.Join(dir, ".git"))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf(messages.RootStatGitFmt, dir, err)
	}
	if info.IsDir() || info.Mode().IsRegular() {
		return true, nil
	}
	return false, fmt.Errorf(messages.RootGitNotDirOrFileFmt, filepath.Join(dir, ".git"))
}

// EnsureRootHandle creates repo.Path and initializes it as a git repository
// when it is not one yet. It reports whether anything was created.
func EnsureRootHandle(ctx context.Context, repo *gitrepo.Repo) (bool, error) {
	if repo.IsRepo() {
		return false, nil
	}
	if err := os.MkdirAll(repo.Path, 0o755); err != nil {
		return false, fmt.Errorf(messages.RootCreateFmt, repo.Path, err)
	}
	log.Info().Str("path", repo.Path).Msg("creating root handle")
	if err := repo.Init(ctx); err != nil {
		return false, err
	}
	return true, nil
}
