package install

import (
	"context"

	"github.com/conn-castle/datahandle/internal/annex"
	"github.com/conn-castle/datahandle/internal/gitrepo"
	"github.com/conn-castle/datahandle/internal/root"
	"github.com/conn-castle/datahandle/internal/runner"
)

// Backend is the set of version-control and content-store operations the
// installer drives. Every repository is addressed by its absolute path.
type Backend interface {
	EnsureRoot(ctx context.Context, rootPath string) (bool, error)
	AllSubmodules(ctx context.Context, repoPath string) (gitrepo.Index, error)
	Submodules(ctx context.Context, repoPath string) (gitrepo.Index, error)
	InitOrClone(ctx context.Context, repoPath string, src string) error
	SubmoduleAdd(ctx context.Context, repoPath string, src string, name string) error
	SubmoduleUpdate(ctx context.Context, repoPath string, path string, recursive bool) ([]string, error)
	Add(ctx context.Context, repoPath string, path string) error
	Commit(ctx context.Context, repoPath string, message string) error
	IsAnnex(ctx context.Context, repoPath string) bool
	AnnexInit(ctx context.Context, repoPath string) error
}

// GitBackend runs the git and git-annex executables.
type GitBackend struct {
	repo *gitrepo.Repo
}

// NewGitBackend returns a backend invoking git (DefaultGit when empty) via run.
func NewGitBackend(git string, run runner.Runner) *GitBackend {
	return &GitBackend{repo: gitrepo.New("", git, run)}
}

func (b *GitBackend) at(path string) *gitrepo.Repo {
	return b.repo.At(path)
}

// EnsureRoot creates the root handle when missing.
func (b *GitBackend) EnsureRoot(ctx context.Context, rootPath string) (bool, error) {
	return root.EnsureRootHandle(ctx, b.at(rootPath))
}

// AllSubmodules returns the recursive sub-repository index of repoPath.
func (b *GitBackend) AllSubmodules(ctx context.Context, repoPath string) (gitrepo.Index, error) {
	return b.at(repoPath).AllSubmodules(ctx)
}

// Submodules returns the direct sub-repository index of repoPath.
func (b *GitBackend) Submodules(ctx context.Context, repoPath string) (gitrepo.Index, error) {
	return b.at(repoPath).Submodules(ctx)
}

// InitOrClone makes repoPath a repository tracking src.
func (b *GitBackend) InitOrClone(ctx context.Context, repoPath string, src string) error {
	return b.at(repoPath).InitOrClone(ctx, src)
}

// SubmoduleAdd registers src below repoPath.
func (b *GitBackend) SubmoduleAdd(ctx context.Context, repoPath string, src string, name string) error {
	return b.at(repoPath).SubmoduleAdd(ctx, src, name)
}

// SubmoduleUpdate initializes submodules of repoPath below path.
func (b *GitBackend) SubmoduleUpdate(ctx context.Context, repoPath string, path string, recursive bool) ([]string, error) {
	return b.at(repoPath).SubmoduleUpdate(ctx, path, recursive)
}

// Add stages path in repoPath.
func (b *GitBackend) Add(ctx context.Context, repoPath string, path string) error {
	return b.at(repoPath).Add(ctx, path)
}

// Commit commits the staged changes in repoPath.
func (b *GitBackend) Commit(ctx context.Context, repoPath string, message string) error {
	return b.at(repoPath).Commit(ctx, message)
}

// IsAnnex reports whether repoPath is annex-managed.
func (b *GitBackend) IsAnnex(ctx context.Context, repoPath string) bool {
	return annex.IsAnnex(ctx, b.at(repoPath))
}

// AnnexInit runs `git annex init` in repoPath.
func (b *GitBackend) AnnexInit(ctx context.Context, repoPath string) error {
	return annex.New(b.at(repoPath)).Init(ctx)
}
