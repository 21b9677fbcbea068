package annex

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conn-castle/datahandle/internal/gitrepo"
	"github.com/conn-castle/datahandle/internal/runner"
)

type fakeRunner struct {
	responses map[string]runner.Result
	failures  map[string]int
	calls     []string
}

func (f *fakeRunner) Run(_ context.Context, dir string, argv []string, _ runner.Options) (runner.Result, error) {
	key := strings.Join(argv[1:], " ")
	f.calls = append(f.calls, key)
	if code, ok := f.failures[key]; ok {
		return runner.Result{Code: code}, &runner.CommandError{Argv: argv, Dir: dir, Code: code}
	}
	if res, ok := f.responses[key]; ok {
		return res, nil
	}
	return runner.Result{}, nil
}

func newTestRepo(t *testing.T, fake *fakeRunner) *Repo {
	t.Helper()
	root := t.TempDir()
	r := New(gitrepo.New(root, "", fake))
	r.getwd = func() (string, error) { return "/", nil }
	return r
}

func makeAnnexDir(t *testing.T, root string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".git", "annex"), 0o755))
}

func TestCheckPath(t *testing.T) {
	r := newTestRepo(t, &fakeRunner{})
	root := r.Root()

	rel, err := r.CheckPath(filepath.Join(root, "data", "f.dat"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("data", "f.dat"), rel)

	for _, abs := range []string{
		filepath.Join(root, "f.dat"),
		filepath.Join(root, "data", "f.dat"),
		filepath.Join(root, "a", "b", "c", "deep.bin"),
		filepath.Join(root, "with space", "x y.txt"),
		root + filepath.FromSlash("/data/../g.dat"),
	} {
		rel, err := r.CheckPath(abs)
		require.NoError(t, err, abs)
		assert.False(t, filepath.IsAbs(rel), "CheckPath(%q) = %q", abs, rel)
		assert.Equal(t, filepath.Clean(abs), filepath.Join(root, rel), "CheckPath(%q) = %q", abs, rel)
	}

	rel, err = r.CheckPath("data/f.dat")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("data", "f.dat"), rel, "relative paths pass through when cwd is outside the repo")

	r.getwd = func() (string, error) { return filepath.Join(root, "data"), nil }
	rel, err = r.CheckPath("f.dat")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("data", "f.dat"), rel)

	_, err = r.CheckPath(filepath.Join(filepath.Dir(root), "elsewhere"))
	var outside *PathOutsideRepositoryError
	require.ErrorAs(t, err, &outside)
	assert.Equal(t, root, outside.Root)

	_, err = r.CheckPath(root + "-sibling")
	require.ErrorAs(t, err, &outside, "a sibling sharing the prefix is outside")
}

func TestCheckPathRejectsEscapeFromSubdir(t *testing.T) {
	r := newTestRepo(t, &fakeRunner{})
	r.getwd = func() (string, error) { return filepath.Join(r.Root(), "data"), nil }

	_, err := r.CheckPath("../../x")
	var outside *PathOutsideRepositoryError
	assert.ErrorAs(t, err, &outside)
}

func TestHasContentStore(t *testing.T) {
	r := newTestRepo(t, &fakeRunner{})
	assert.False(t, r.HasContentStore())

	makeAnnexDir(t, r.Root())
	assert.True(t, r.HasContentStore())
}

func TestHasContentStoreFollowsGitdirFile(t *testing.T) {
	r := newTestRepo(t, &fakeRunner{})
	modules := filepath.Join(r.Root(), "modules", "sub")
	require.NoError(t, os.MkdirAll(filepath.Join(modules, "annex"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(r.Root(), ".git"), []byte("gitdir: modules/sub\n"), 0o644))

	assert.True(t, r.HasContentStore())
}

func TestOpenInitializesMissingStore(t *testing.T) {
	fake := &fakeRunner{}
	root := t.TempDir()
	_, err := Open(context.Background(), gitrepo.New(root, "", fake), OpenOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"annex init"}, fake.calls)
}

func TestOpenSkipsInitAndForcesDirect(t *testing.T) {
	fake := &fakeRunner{failures: map[string]int{"config --bool --get annex.direct": 1}}
	root := t.TempDir()
	makeAnnexDir(t, root)

	_, err := Open(context.Background(), gitrepo.New(root, "", fake), OpenOptions{Direct: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"config --bool --get annex.direct", "annex direct"}, fake.calls)
}

func TestOpenLeavesDirectRepoAlone(t *testing.T) {
	fake := &fakeRunner{responses: map[string]runner.Result{"config --bool --get annex.direct": {Stdout: "true\n"}}}
	root := t.TempDir()
	makeAnnexDir(t, root)

	_, err := Open(context.Background(), gitrepo.New(root, "", fake), OpenOptions{})
	require.NoError(t, err)
	assert.Empty(t, fake.calls)
}

func TestInitFailureIsReturned(t *testing.T) {
	fake := &fakeRunner{failures: map[string]int{"annex init": 1}}
	r := newTestRepo(t, fake)

	err := r.Init(context.Background())
	cmdErr, ok := runner.AsCommandError(err)
	require.True(t, ok)
	assert.Equal(t, 1, cmdErr.Code)
}

func TestSetIndirectOnCrippledFS(t *testing.T) {
	fake := &fakeRunner{responses: map[string]runner.Result{"config --bool --get annex.crippledfilesystem": {Stdout: "true\n"}}}
	r := newTestRepo(t, fake)

	err := r.SetDirectMode(context.Background(), false)
	var notAvail *CommandNotAvailableError
	require.ErrorAs(t, err, &notAvail)
	assert.Equal(t, "git annex indirect", notAvail.Cmd)
	assert.NotContains(t, fake.calls, "annex indirect")
}

func TestSetDirectMode(t *testing.T) {
	fake := &fakeRunner{}
	r := newTestRepo(t, fake)

	require.NoError(t, r.SetDirectMode(context.Background(), true))
	require.NoError(t, r.SetDirectMode(context.Background(), false))
	assert.Equal(t, []string{
		"annex direct",
		"config --bool --get annex.crippledfilesystem",
		"annex indirect",
	}, fake.calls)
}

func TestGetAndAddRenderSortedOptions(t *testing.T) {
	fake := &fakeRunner{}
	r := newTestRepo(t, fake)
	opts := Options{"jobs": "4", "from": "origin"}

	require.NoError(t, r.Get(context.Background(), []string{filepath.Join(r.Root(), "a.dat"), "b.dat"}, opts))
	require.NoError(t, r.Add(context.Background(), []string{"c.dat"}, nil))
	assert.Equal(t, []string{
		"annex get --from=origin --jobs=4 a.dat b.dat",
		"annex add c.dat",
	}, fake.calls)
}

func TestGetRejectsOutsidePathBeforeBackend(t *testing.T) {
	fake := &fakeRunner{}
	r := newTestRepo(t, fake)

	err := r.Get(context.Background(), []string{"/definitely/outside"}, nil)
	var outside *PathOutsideRepositoryError
	require.ErrorAs(t, err, &outside)
	assert.Empty(t, fake.calls)
}

func TestGetSurfacesBackendFailure(t *testing.T) {
	fake := &fakeRunner{failures: map[string]int{"annex get x": 1}}
	r := newTestRepo(t, fake)

	_, ok := runner.AsCommandError(r.Get(context.Background(), []string{"x"}, nil))
	assert.True(t, ok)
}

func TestProxyRequiresDirectMode(t *testing.T) {
	fake := &fakeRunner{}
	r := newTestRepo(t, fake)

	_, err := r.Proxy(context.Background(), "git status")
	var notAvail *CommandNotAvailableError
	require.ErrorAs(t, err, &notAvail)
	assert.Equal(t, "git annex proxy -- git status", notAvail.Cmd)
}

func TestProxySplitsCommand(t *testing.T) {
	fake := &fakeRunner{responses: map[string]runner.Result{
		"config --bool --get annex.direct":              {Stdout: "true\n"},
		"annex proxy -- git log --format=%s -- a b.dat": {Stdout: "one\ntwo\n"},
	}}
	r := newTestRepo(t, fake)

	lines, err := r.Proxy(context.Background(), `git log --format=%s -- "a b.dat"`)
	require.NoError(t, err)
	assert.Equal(t, []string{"one", "two"}, lines)
}

func TestGetFileKey(t *testing.T) {
	fake := &fakeRunner{responses: map[string]runner.Result{
		"annex lookupkey big.dat": {Stdout: "SHA256E-s4--abcd.dat\n"},
	}}
	r := newTestRepo(t, fake)

	key, err := r.GetFileKey(context.Background(), "big.dat")
	require.NoError(t, err)
	assert.Equal(t, "SHA256E-s4--abcd.dat", key)
}

func TestGetFileKeyClassifiesFailures(t *testing.T) {
	fake := &fakeRunner{
		failures: map[string]int{
			"annex lookupkey README":  1,
			"annex lookupkey scratch": 1,
			"annex lookupkey missing": 1,
		},
		responses: map[string]runner.Result{
			"ls-files -z": {Stdout: "README\x00.gitmodules\x00"},
		},
	}
	r := newTestRepo(t, fake)
	require.NoError(t, os.WriteFile(filepath.Join(r.Root(), "README"), []byte("hi"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(r.Root(), "scratch"), []byte("tmp"), 0o644))

	_, err := r.GetFileKey(context.Background(), "README")
	var inGit *FileInGitError
	require.ErrorAs(t, err, &inGit)
	assert.Equal(t, "README", inGit.Path)

	_, err = r.GetFileKey(context.Background(), "scratch")
	var notInAnnex *FileNotInAnnexError
	require.ErrorAs(t, err, &notInAnnex)

	_, err = r.GetFileKey(context.Background(), "missing")
	assert.True(t, errors.Is(err, fs.ErrNotExist), "filesystem errors surface unchanged: %v", err)
}

func TestFileHasContent(t *testing.T) {
	fake := &fakeRunner{
		responses: map[string]runner.Result{"annex find here.dat": {Stdout: "here.dat\n"}},
		failures:  map[string]int{"annex find broken.dat": 1},
	}
	r := newTestRepo(t, fake)
	ctx := context.Background()

	ok, err := r.FileHasContent(ctx, "here.dat")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = r.FileHasContent(ctx, "absent.dat")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = r.FileHasContent(ctx, "broken.dat")
	require.NoError(t, err, "backend failure reads as absent")
	assert.False(t, ok)

	_, err = r.FileHasContent(ctx, "/outside/x")
	assert.Error(t, err)
}

func TestHandleSnapshot(t *testing.T) {
	fake := &fakeRunner{responses: map[string]runner.Result{
		"config --bool --get annex.direct":             {Stdout: "true\n"},
		"config --bool --get annex.crippledfilesystem": {Stdout: "true\n"},
	}}
	r := newTestRepo(t, fake)

	h, err := r.Handle(context.Background())
	require.NoError(t, err)
	assert.False(t, h.ContentTracked)
	assert.Empty(t, fake.calls)

	makeAnnexDir(t, r.Root())
	h, err = r.Handle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Handle{Root: r.Root(), ContentTracked: true, Mode: ModeDirect, CrippledFS: true}, h)
	assert.Equal(t, "direct", h.Mode.String())
}

func TestIsAnnexFromRefs(t *testing.T) {
	query := "for-each-ref --format=%(refname) refs/heads/git-annex refs/remotes/*/git-annex"
	fake := &fakeRunner{responses: map[string]runner.Result{query: {Stdout: "refs/remotes/origin/git-annex\n"}}}
	assert.True(t, IsAnnex(context.Background(), gitrepo.New(t.TempDir(), "", fake)))

	assert.False(t, IsAnnex(context.Background(), gitrepo.New(t.TempDir(), "", &fakeRunner{})))
}
