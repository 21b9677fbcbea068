package cookies

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "nested", DefaultFileName))
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestProvider(t *testing.T) {
	tests := []struct {
		url  string
		want string
	}{
		{"https://data.example.com/a/b", "example.com"},
		{"http://www.example.co.uk:8080/", "example.co.uk"},
		{"https://Example.COM", "example.com"},
		{"http://localhost:8000/x", "localhost"},
	}
	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := Provider(tt.url)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestProviderRequiresHost(t *testing.T) {
	_, err := Provider("relative/path")
	assert.Error(t, err)

	_, err = Provider("http://%zz")
	assert.Error(t, err)
}

func TestOpenCreatesDirectoryWithRestrictedFile(t *testing.T) {
	s := openTestStore(t)
	info, err := os.Stat(s.Path())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestSetGetSharesProvider(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Set("https://a.example.org/login", map[string]string{"session": "abc"}))

	got, err := s.Get("https://b.example.org/data")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"session": "abc"}, got)

	ok, err := s.Has("https://example.org")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSetReplaces(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Set("https://example.org", map[string]string{"a": "1"}))
	require.NoError(t, s.Set("https://example.org", map[string]string{"b": "2"}))

	got, err := s.Get("https://example.org")
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"b": "2"}, got)
}

func TestGetMissing(t *testing.T) {
	s := openTestStore(t)
	_, err := s.Get("https://nothing.example.net")
	assert.ErrorIs(t, err, ErrNotFound)

	ok, err := s.Has("https://nothing.example.net")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteAndList(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.Set("https://z.example.com", map[string]string{"k": "v"}))
	require.NoError(t, s.Set("https://example.org", map[string]string{"k": "v"}))

	providers, err := s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"example.com", "example.org"}, providers)

	require.NoError(t, s.Delete("https://www.example.com"))
	require.NoError(t, s.Delete("https://www.example.com"), "deleting twice is fine")

	providers, err = s.List()
	require.NoError(t, err)
	assert.Equal(t, []string{"example.org"}, providers)
}

func TestStorePersistsAcrossOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	s, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, s.Set("https://example.org", map[string]string{"k": "v"}))
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer func() { _ = s.Close() }()
	got, err := s.Get("https://example.org")
	require.NoError(t, err)
	assert.Equal(t, "v", got["k"])
}
