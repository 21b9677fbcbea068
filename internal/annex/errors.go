package annex

import (
	"fmt"

	"github.com/conn-castle/datahandle/internal/messages"
)

// PathOutsideRepositoryError reports a path that does not lie under the repository root.
type PathOutsideRepositoryError struct {
	Path string
	Root string
}

func (e *PathOutsideRepositoryError) Error() string {
	return fmt.Sprintf(messages.AnnexPathOutsideRepoFmt, e.Path, e.Root)
}

// CommandNotAvailableError reports a content-store command that cannot run
// in the repository's current state.
type CommandNotAvailableError struct {
	Cmd string
	Msg string
}

func (e *CommandNotAvailableError) Error() string {
	return fmt.Sprintf(messages.AnnexCommandNotAvailableFmt, e.Cmd, e.Msg)
}

// FileNotInAnnexError reports a file that exists but is tracked neither by
// the annex nor by git.
type FileNotInAnnexError struct {
	Cmd  string
	Path string
}

func (e *FileNotInAnnexError) Error() string {
	return fmt.Sprintf(messages.AnnexFileNotInAnnexFmt, e.Path)
}

// FileInGitError reports a file tracked directly by git rather than by the annex.
type FileInGitError struct {
	Cmd  string
	Path string
}

func (e *FileInGitError) Error() string {
	return fmt.Sprintf(messages.AnnexFileInGitFmt, e.Path)
}
