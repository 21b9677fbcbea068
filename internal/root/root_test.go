package root

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"syscall"
	"testing"

	"github.com/conn-castle/datahandle/internal/gitrepo"
	"github.com/conn-castle/datahandle/internal/runner"
)

type recordingRunner struct {
	calls []string
}

func (r *recordingRunner) Run(_ context.Context, dir string, argv []string, _ runner.Options) (runner.Result, error) {
	r.calls = append(r.calls, dir+"|"+strings.Join(argv, " "))
	if len(argv) > 1 && argv[1] == "init" {
		if err := os.MkdirAll(filepath.Join(dir, ".git"), 0o755); err != nil {
			return runner.Result{}, err
		}
	}
	return runner.Result{}, nil
}

func TestFindRepoRootUsesGit(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir .git: %v", err)
	}
	sub := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatalf("mkdir sub: %v", err)
	}

	got, err := FindRepoRoot(sub)
	if err != nil {
		t.Fatalf("FindRepoRoot error: %v", err)
	}
	if got != root {
		t.Fatalf("expected root %s, got %s", root, got)
	}
}

func TestFindRepoRootStopsAtNearestRepo(t *testing.T) {
	root := t.TempDir()
	inner := filepath.Join(root, "sub")
	for _, dir := range []string{filepath.Join(root, ".git"), filepath.Join(inner, ".git"), filepath.Join(inner, "data")} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			t.Fatalf("mkdir %s: %v", dir, err)
		}
	}

	got, err := FindRepoRoot(filepath.Join(inner, "data"))
	if err != nil {
		t.Fatalf("FindRepoRoot error: %v", err)
	}
	if got != inner {
		t.Fatalf("expected nested repo %s, got %s", inner, got)
	}
}

func TestFindRepoRootFallsBackToStart(t *testing.T) {
	root := t.TempDir()
	got, err := FindRepoRoot(root)
	if err != nil {
		t.Fatalf("FindRepoRoot error: %v", err)
	}
	if got != root {
		t.Fatalf("expected root %s, got %s", root, got)
	}
}

func TestFindRepoRootRequiresStartPath(t *testing.T) {
	if _, err := FindRepoRoot(""); err == nil {
		t.Fatal("expected FindRepoRoot to reject empty start")
	}
}

func TestFindRepoRootUsesGitFile(t *testing.T) {
	root := t.TempDir()
	gitPath := filepath.Join(root, ".git")
	if err := os.WriteFile(gitPath, []byte("gitdir: ../.git/modules/x\n"), 0o644); err != nil {
		t.Fatalf("write .git file: %v", err)
	}

	got, err := FindRepoRoot(root)
	if err != nil {
		t.Fatalf("FindRepoRoot error: %v", err)
	}
	if got != root {
		t.Fatalf("expected root %s, got %s", root, got)
	}
}

func TestFindRepoRootGitSpecialFileErrors(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("mkfifo is not supported on windows")
	}

	root := t.TempDir()
	gitPath := filepath.Join(root, ".git")
	if err := syscall.Mkfifo(gitPath, 0o644); err != nil {
		t.Fatalf("mkfifo .git: %v", err)
	}

	if _, err := FindRepoRoot(root); err == nil {
		t.Fatal("expected error when .git is neither directory nor regular file")
	}
}

func TestEnsureRootHandleCreates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "datalad")
	run := &recordingRunner{}

	created, err := EnsureRootHandle(context.Background(), gitrepo.New(path, "", run))
	if err != nil {
		t.Fatalf("EnsureRootHandle error: %v", err)
	}
	if !created {
		t.Fatal("expected root handle to be created")
	}
	if len(run.calls) != 1 || run.calls[0] != path+"|git init" {
		t.Fatalf("unexpected calls: %v", run.calls)
	}
}

func TestEnsureRootHandleExisting(t *testing.T) {
	path := t.TempDir()
	if err := os.MkdirAll(filepath.Join(path, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir .git: %v", err)
	}
	run := &recordingRunner{}

	created, err := EnsureRootHandle(context.Background(), gitrepo.New(path, "", run))
	if err != nil {
		t.Fatalf("EnsureRootHandle error: %v", err)
	}
	if created || len(run.calls) != 0 {
		t.Fatalf("expected no-op, created=%v calls=%v", created, run.calls)
	}
}
