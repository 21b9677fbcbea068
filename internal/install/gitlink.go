package install

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/conn-castle/datahandle/internal/messages"
)

const gitdirPrefix = "gitdir: "

// replaceGitSymlink swaps a .git symlink in repoPath for an equivalent
// gitdir redirect file, which `git submodule add` can handle. It returns
// the former link target, or "" when .git was not a symlink.
func (i *installer) replaceGitSymlink(repoPath string) (string, error) {
	dotGit := filepath.Join(repoPath, ".git")
	info, err := i.sys.Lstat(dotGit)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf(messages.InstallGitlinkFmt, dotGit, err)
	}
	if info.Mode()&os.ModeSymlink == 0 {
		return "", nil
	}
	target, err := i.sys.Readlink(dotGit)
	if err != nil {
		return "", fmt.Errorf(messages.InstallGitlinkFmt, dotGit, err)
	}
	if err := i.sys.WriteFileAtomic(dotGit, []byte(gitdirPrefix+target+"\n"), 0o644); err != nil {
		return "", fmt.Errorf(messages.InstallGitlinkFmt, dotGit, err)
	}
	log.Debug().Str("path", dotGit).Str("gitdir", target).Msg("replaced .git symlink with gitdir file")
	return target, nil
}

// restoreGitSymlink puts the original .git symlink back after a failed add.
func (i *installer) restoreGitSymlink(repoPath string, target string) {
	dotGit := filepath.Join(repoPath, ".git")
	if err := i.sys.SymlinkAtomic(target, dotGit); err != nil {
		log.Error().Err(err).Str("path", dotGit).Str("target", target).Msg("failed to restore .git symlink")
	}
}
