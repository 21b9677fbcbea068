package install

import (
	"fmt"
	"strings"

	"github.com/conn-castle/datahandle/internal/messages"
)

// UsageError reports an invalid combination of install arguments.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string {
	return e.Msg
}

// AlreadyInstalledError reports a handle that is already present.
type AlreadyInstalledError struct {
	Name string
}

func (e *AlreadyInstalledError) Error() string {
	return fmt.Sprintf(messages.InstallAlreadyInstalledFmt, e.Name)
}

// InvariantError reports backend state that contradicts the install
// protocol. It is fatal; no step after it runs.
type InvariantError struct {
	Repo      string
	Requested string
	Added     []string
}

func (e *InvariantError) Error() string {
	if len(e.Added) == 1 {
		return fmt.Sprintf(messages.InstallNameMismatchFmt, e.Added[0], e.Requested, e.Repo)
	}
	return fmt.Sprintf(messages.InstallAddedCountFmt, len(e.Added), e.Repo, strings.Join(e.Added, ", "))
}

// PartialStateError wraps a failure after the sub-repository was registered.
// The registration is left in place.
type PartialStateError struct {
	Name string
	Err  error
}

func (e *PartialStateError) Error() string {
	return fmt.Sprintf(messages.InstallPartialStateFmt, e.Name, e.Err)
}

func (e *PartialStateError) Unwrap() error {
	return e.Err
}
