// Package annex bridges a git repository to its git-annex content store:
// initialization, direct/indirect mode, content transfer and key lookup.
package annex

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/shlex"
	"github.com/rs/zerolog/log"

	"github.com/conn-castle/datahandle/internal/gitrepo"
	"github.com/conn-castle/datahandle/internal/messages"
	"github.com/conn-castle/datahandle/internal/porcelain"
	"github.com/conn-castle/datahandle/internal/runner"
)

// Repository configuration keys consulted by the bridge.
const (
	ConfigDirect          = "annex.direct"
	ConfigCrippledFS      = "annex.crippledfilesystem"
	annexBranch           = "git-annex"
	annexStateDir         = "annex"
	gitdirRedirectPrefix  = "gitdir:"
	remoteAnnexRefPattern = "refs/remotes/*/" + annexBranch
)

// Mode is the content-store operating mode.
type Mode int

const (
	// ModeIndirect keeps annexed files as symlinks into the object store.
	ModeIndirect Mode = iota
	// ModeDirect keeps annexed file content directly in the work tree.
	ModeDirect
)

func (m Mode) String() string {
	if m == ModeDirect {
		return "direct"
	}
	return "indirect"
}

// Handle is a snapshot of one repository's content-store state.
type Handle struct {
	Root           string `json:"root"`
	ContentTracked bool   `json:"content_tracked"`
	Mode           Mode   `json:"mode"`
	CrippledFS     bool   `json:"crippled_fs"`
}

// Options are rendered as --key=value flags, sorted by key.
type Options map[string]string

func (o Options) flags() []string {
	keys := make([]string, 0, len(o))
	for k := range o {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	flags := make([]string, 0, len(keys))
	for _, k := range keys {
		flags = append(flags, fmt.Sprintf("--%s=%s", k, o[k]))
	}
	return flags
}

// Repo issues git-annex commands against one git repository.
type Repo struct {
	git   *gitrepo.Repo
	getwd func() (string, error)
}

// New wraps repo without touching the content store.
func New(repo *gitrepo.Repo) *Repo {
	return &Repo{git: repo, getwd: os.Getwd}
}

// OpenOptions controls Open.
type OpenOptions struct {
	// Direct switches a repository in indirect mode to direct mode.
	// Indirect mode is never forced.
	Direct bool
}

// Open wraps repo and creates its content store when none exists yet.
func Open(ctx context.Context, repo *gitrepo.Repo, opts OpenOptions) (*Repo, error) {
	r := New(repo)
	if !r.HasContentStore() {
		log.Debug().Str("path", r.Root()).Msg("no annex found; creating one")
		if err := r.Init(ctx); err != nil {
			return nil, err
		}
	}
	if opts.Direct {
		direct, err := r.IsDirectMode(ctx)
		if err != nil {
			return nil, err
		}
		if !direct {
			if err := r.SetDirectMode(ctx, true); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

// Root returns the repository root.
func (r *Repo) Root() string {
	return r.git.Path
}

// Git returns the underlying git repository.
func (r *Repo) Git() *gitrepo.Repo {
	return r.git
}

func (r *Repo) annex(ctx context.Context, opts runner.Options, args ...string) (runner.Result, error) {
	return r.git.Exec(ctx, opts, append([]string{"annex"}, args...)...)
}

// HasContentStore reports whether annex state exists in the repository's git dir.
func (r *Repo) HasContentStore() bool {
	gitDir, err := resolveGitDir(r.Root())
	if err != nil {
		return false
	}
	info, err := os.Stat(filepath.Join(gitDir, annexStateDir))
	return err == nil && info.IsDir()
}

// Init runs `git annex init`. A non-zero status is logged and returned.
func (r *Repo) Init(ctx context.Context) error {
	if _, err := r.annex(ctx, runner.Options{ExpectStderr: true}, "init"); err != nil {
		if cmdErr, ok := runner.AsCommandError(err); ok {
			log.Error().Str("path", r.Root()).Int("status", cmdErr.Code).Msg("git annex init failed")
		}
		return err
	}
	return nil
}

// IsDirectMode reports whether the annex is in direct mode. An unset
// annex.direct means indirect.
func (r *Repo) IsDirectMode(ctx context.Context) (bool, error) {
	return r.git.ConfigBool(ctx, ConfigDirect)
}

// IsCrippledFS reports whether git-annex flagged the filesystem as crippled.
func (r *Repo) IsCrippledFS(ctx context.Context) (bool, error) {
	return r.git.ConfigBool(ctx, ConfigCrippledFS)
}

// SetDirectMode switches the annex to direct (enable) or indirect mode.
// Indirect mode is unavailable on a crippled filesystem.
func (r *Repo) SetDirectMode(ctx context.Context, enable bool) error {
	mode := ModeIndirect
	if enable {
		mode = ModeDirect
	}
	if !enable {
		crippled, err := r.IsCrippledFS(ctx)
		if err != nil {
			return err
		}
		if crippled {
			return &CommandNotAvailableError{Cmd: "git annex " + mode.String(), Msg: messages.AnnexIndirectOnCrippledFS}
		}
	}
	_, err := r.annex(ctx, runner.Options{ExpectStderr: true}, mode.String())
	return err
}

// Handle returns the repository's current content-store state.
func (r *Repo) Handle(ctx context.Context) (Handle, error) {
	h := Handle{Root: r.Root(), ContentTracked: r.HasContentStore()}
	if !h.ContentTracked {
		return h, nil
	}
	direct, err := r.IsDirectMode(ctx)
	if err != nil {
		return h, err
	}
	if direct {
		h.Mode = ModeDirect
	}
	if h.CrippledFS, err = r.IsCrippledFS(ctx); err != nil {
		return h, err
	}
	return h, nil
}

func (r *Repo) checkPaths(files []string) ([]string, error) {
	paths := make([]string, 0, len(files))
	for _, f := range files {
		p, err := r.CheckPath(f)
		if err != nil {
			return nil, err
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// Get fetches the content of already annexed files. Backend failures are
// returned as *runner.CommandError; per-file outcomes are not inspected.
func (r *Repo) Get(ctx context.Context, files []string, opts Options) error {
	paths, err := r.checkPaths(files)
	if err != nil {
		return err
	}
	args := append(append([]string{"get"}, opts.flags()...), paths...)
	_, err = r.annex(ctx, runner.Options{ExpectStderr: true}, args...)
	return err
}

// Add registers files with the annex.
func (r *Repo) Add(ctx context.Context, files []string, opts Options) error {
	paths, err := r.checkPaths(files)
	if err != nil {
		return err
	}
	args := append(append([]string{"add"}, opts.flags()...), paths...)
	_, err = r.annex(ctx, runner.Options{}, args...)
	return err
}

// Proxy runs a git command through `git annex proxy`, which is only
// meaningful in direct mode. It returns the command's stdout lines.
func (r *Repo) Proxy(ctx context.Context, gitCmd string) ([]string, error) {
	cmdLine := "git annex proxy -- " + gitCmd
	direct, err := r.IsDirectMode(ctx)
	if err != nil {
		return nil, err
	}
	if !direct {
		log.Warn().Str("cmd", gitCmd).Msg("annex proxy called in indirect mode")
		return nil, &CommandNotAvailableError{Cmd: cmdLine, Msg: messages.AnnexProxyRequiresDirect}
	}
	argv, err := shlex.Split(gitCmd)
	if err != nil {
		return nil, fmt.Errorf(messages.AnnexProxyParseFmt, gitCmd, err)
	}
	if len(argv) == 0 {
		return nil, errors.New(messages.AnnexProxyEmptyCommand)
	}
	res, err := r.annex(ctx, runner.Options{}, append([]string{"proxy", "--"}, argv...)...)
	if err != nil {
		return nil, err
	}
	return strings.Split(strings.TrimRight(res.Stdout, "\n"), "\n"), nil
}

// GetFileKey returns the annex key of exactly one file.
//
// When the lookup fails the file is opened to surface filesystem errors
// unchanged; an existing file is then reported as *FileInGitError when git
// tracks it and *FileNotInAnnexError otherwise.
func (r *Repo) GetFileKey(ctx context.Context, path string) (string, error) {
	rel, err := r.CheckPath(path)
	if err != nil {
		return "", err
	}
	res, err := r.annex(ctx, runner.Options{}, "lookupkey", rel)
	cmdLine := strings.Join([]string{r.git.Git(), "annex", "lookupkey", rel}, " ")
	if err == nil {
		if key := porcelain.FirstField(res.Stdout); key != "" {
			return key, nil
		}
	} else if _, ok := runner.AsCommandError(err); !ok {
		return "", err
	}

	f, err := os.Open(filepath.Join(r.Root(), rel))
	if err != nil {
		return "", err
	}
	_ = f.Close()

	indexed, err := r.git.IndexedFiles(ctx)
	if err != nil {
		return "", err
	}
	if indexed[filepath.ToSlash(rel)] {
		return "", &FileInGitError{Cmd: cmdLine, Path: rel}
	}
	return "", &FileNotInAnnexError{Cmd: cmdLine, Path: rel}
}

// FileHasContent reports whether the content of path is present locally.
// Any backend failure reads as absent; only an invalid path is an error.
func (r *Repo) FileHasContent(ctx context.Context, path string) (bool, error) {
	rel, err := r.CheckPath(path)
	if err != nil {
		return false, err
	}
	res, err := r.annex(ctx, runner.Options{}, "find", rel)
	if err != nil {
		log.Debug().Err(err).Str("path", rel).Msg("annex find failed; treating content as absent")
		return false, nil
	}
	line, _, _ := strings.Cut(res.Stdout, "\n")
	line = strings.TrimSpace(line)
	if line == "" {
		return false, nil
	}
	return filepath.Clean(filepath.FromSlash(line)) == filepath.Clean(rel), nil
}

// IsAnnex reports whether the repository at path looks annex-managed: it
// has annex state, or a git-annex branch exists locally or on a remote.
func IsAnnex(ctx context.Context, repo *gitrepo.Repo) bool {
	if New(repo).HasContentStore() {
		return true
	}
	res, err := repo.Exec(ctx, runner.Options{}, "for-each-ref", "--format=%(refname)", "refs/heads/"+annexBranch, remoteAnnexRefPattern)
	if err != nil {
		log.Debug().Err(err).Str("path", repo.Path).Msg("cannot list refs; assuming no annex")
		return false
	}
	return strings.TrimSpace(res.Stdout) != ""
}

// resolveGitDir follows a `gitdir:` redirect file when .git is not a directory.
func resolveGitDir(root string) (string, error) {
	dotGit := filepath.Join(root, ".git")
	info, err := os.Stat(dotGit)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return dotGit, nil
	}
	data, err := os.ReadFile(dotGit)
	if err != nil {
		return "", err
	}
	line, _, _ := strings.Cut(string(data), "\n")
	target := strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), gitdirRedirectPrefix))
	if target == "" {
		return "", fmt.Errorf(messages.AnnexInvalidGitdirFmt, dotGit)
	}
	if !filepath.IsAbs(target) {
		target = filepath.Join(root, target)
	}
	return target, nil
}
