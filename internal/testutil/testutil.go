package testutil

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// WriteStub writes an executable shell stub that exits successfully.
// t is the active test; dir is the output directory; name is the executable file name.
func WriteStub(t *testing.T, dir string, name string) string {
	t.Helper()
	return WriteStubWithExit(t, dir, name, 0)
}

// WriteStubWithExit writes an executable shell stub that exits with the provided code.
// t is the active test; dir is the output directory; name is the executable file name.
func WriteStubWithExit(t *testing.T, dir string, name string, exitCode int) string {
	t.Helper()
	return WriteBackendStub(t, dir, name, BackendStub{Exit: exitCode})
}

// BackendStub describes the canned behavior of a fake backend executable.
type BackendStub struct {
	Stdout string
	Stderr string
	Exit   int
	// ArgsLog, when set, receives one line per invocation with the received argv.
	ArgsLog string
}

// WriteBackendStub writes an executable shell stub that prints stub.Stdout and
// stub.Stderr, optionally records its arguments, and exits with stub.Exit.
// It returns the absolute path of the stub.
func WriteBackendStub(t *testing.T, dir string, name string, stub BackendStub) string {
	t.Helper()
	path := filepath.Join(dir, name)
	var b strings.Builder
	b.WriteString("#!/bin/sh\n")
	if stub.ArgsLog != "" {
		fmt.Fprintf(&b, "echo \"$*\" >> %s\n", shellQuote(stub.ArgsLog))
	}
	if stub.Stdout != "" {
		fmt.Fprintf(&b, "printf '%%s' %s\n", shellQuote(stub.Stdout))
	}
	if stub.Stderr != "" {
		fmt.Fprintf(&b, "printf '%%s' %s >&2\n", shellQuote(stub.Stderr))
	}
	fmt.Fprintf(&b, "exit %d\n", stub.Exit)
	if err := os.WriteFile(path, []byte(b.String()), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

// WithWorkingDir runs fn with dir as the current working directory and restores the previous directory.
// t is the active test; dir is the temporary working directory for fn.
func WithWorkingDir(t *testing.T, dir string, fn func()) {
	t.Helper()
	cwd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	defer func() {
		if err := os.Chdir(cwd); err != nil {
			t.Fatalf("restore chdir: %v", err)
		}
	}()
	fn()
}

// shellQuote wraps s in single quotes for /bin/sh.
func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}
