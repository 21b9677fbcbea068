// Package runner invokes the version-control and content-store backends as
// external processes and reports non-zero exits as structured errors.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/conn-castle/datahandle/internal/messages"
)

// Options tunes a single backend invocation.
type Options struct {
	// ExpectStderr marks stderr output as normal for this command, so it is
	// logged at debug level instead of warn.
	ExpectStderr bool
	// Env is appended to the runner environment for this call only.
	Env []string
}

// Result holds the captured output of a finished command.
type Result struct {
	Stdout string
	Stderr string
	Code   int
}

// Runner executes argv in dir and returns its captured output.
// A non-zero exit is reported as *CommandError.
type Runner interface {
	Run(ctx context.Context, dir string, argv []string, opts Options) (Result, error)
}

// CommandError reports a backend command that exited with a non-zero status.
type CommandError struct {
	Argv   []string
	Dir    string
	Code   int
	Stdout string
	Stderr string
}

func (e *CommandError) Error() string {
	msg := fmt.Sprintf(messages.RunnerCommandFailedFmt, e.CommandLine(), e.Dir, e.Code)
	if stderr := strings.TrimSpace(e.Stderr); stderr != "" {
		msg += ": " + stderr
	}
	return msg
}

// CommandLine returns the argv joined for display.
func (e *CommandError) CommandLine() string {
	return strings.Join(e.Argv, " ")
}

// AsCommandError unwraps err into a *CommandError when possible.
func AsCommandError(err error) (*CommandError, bool) {
	var cmdErr *CommandError
	if errors.As(err, &cmdErr) {
		return cmdErr, true
	}
	return nil, false
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct {
	// Env, when non-nil, replaces the inherited environment.
	Env []string
}

var commandContext = exec.CommandContext

// Run executes argv in dir and waits for it to finish.
func (r ExecRunner) Run(ctx context.Context, dir string, argv []string, opts Options) (Result, error) {
	if len(argv) == 0 {
		return Result{}, errors.New(messages.RunnerEmptyCommand)
	}
	cmd := commandContext(ctx, argv[0], argv[1:]...) //nolint:gosec // argv is assembled by the backend wrappers
	cmd.Dir = dir
	if r.Env != nil || len(opts.Env) > 0 {
		env := r.Env
		if env == nil {
			env = cmd.Environ()
		}
		cmd.Env = append(append([]string{}, env...), opts.Env...)
	}

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	log.Debug().Str("dir", dir).Strs("argv", argv).Msg("running backend command")
	err := cmd.Run()
	res := Result{Stdout: stdout.String(), Stderr: stderr.String()}
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			res.Code = exitErr.ExitCode()
			return res, &CommandError{
				Argv:   append([]string{}, argv...),
				Dir:    dir,
				Code:   res.Code,
				Stdout: res.Stdout,
				Stderr: res.Stderr,
			}
		}
		return res, fmt.Errorf(messages.RunnerStartFailedFmt, strings.Join(argv, " "), err)
	}

	if s := strings.TrimSpace(res.Stderr); s != "" {
		if opts.ExpectStderr {
			log.Debug().Strs("argv", argv).Msg(s)
		} else {
			log.Warn().Strs("argv", argv).Msg(s)
		}
	}
	return res, nil
}
