// Package cookies persists HTTP session cookies per provider, where a
// provider is the registered domain of a URL.
//
// A Store is safe for concurrent use within one process only; concurrent
// writers from separate processes are not coordinated.
package cookies

import (
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/vmihailenco/msgpack"
	"golang.org/x/net/publicsuffix"
	_ "modernc.org/sqlite"

	"github.com/conn-castle/datahandle/internal/messages"
)

// DefaultFileName is the store file name inside the config directory.
const DefaultFileName = "cookies.db"

const schema = `CREATE TABLE IF NOT EXISTS cookies (
	provider TEXT PRIMARY KEY,
	value    BLOB NOT NULL
)`

// ErrNotFound reports a provider with no stored cookies.
var ErrNotFound = errors.New(messages.CookiesNotFound)

// Store is an open cookie database.
type Store struct {
	db   *sql.DB
	path string
}

// Open opens or creates the store at path, creating its directory with
// owner-only permissions.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, fmt.Errorf(messages.CookiesOpenFmt, path, err)
	}
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf(messages.CookiesOpenFmt, path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf(messages.CookiesOpenFmt, path, err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("cannot restrict cookie store permissions")
	}
	return &Store{db: db, path: path}, nil
}

// Path returns the store file location.
func (s *Store) Path() string {
	return s.path
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Provider returns the registered domain of rawURL's host, e.g.
// "example.co.uk" for "https://data.example.co.uk/x".
func Provider(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf(messages.CookiesInvalidURLFmt, rawURL, err)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return "", fmt.Errorf(messages.CookiesMissingHostFmt, rawURL)
	}
	provider, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		// Single-label hosts such as localhost have no registered domain.
		return host, nil
	}
	return provider, nil
}

// Get returns the cookies stored for rawURL's provider.
func (s *Store) Get(rawURL string) (map[string]string, error) {
	provider, err := Provider(rawURL)
	if err != nil {
		return nil, err
	}
	var raw []byte
	err = s.db.QueryRow("SELECT value FROM cookies WHERE provider = ?", provider).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf(messages.CookiesReadFmt, provider, err)
	}
	var value map[string]string
	if err := msgpack.Unmarshal(raw, &value); err != nil {
		return nil, fmt.Errorf(messages.CookiesDecodeFmt, provider, err)
	}
	return value, nil
}

// Has reports whether cookies exist for rawURL's provider.
func (s *Store) Has(rawURL string) (bool, error) {
	_, err := s.Get(rawURL)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Set replaces the cookies stored for rawURL's provider.
func (s *Store) Set(rawURL string, value map[string]string) error {
	provider, err := Provider(rawURL)
	if err != nil {
		return err
	}
	raw, err := msgpack.Marshal(value)
	if err != nil {
		return fmt.Errorf(messages.CookiesEncodeFmt, provider, err)
	}
	_, err = s.db.Exec(`INSERT INTO cookies (provider, value) VALUES (?, ?)
		ON CONFLICT(provider) DO UPDATE SET value = excluded.value`, provider, raw)
	if err != nil {
		return fmt.Errorf(messages.CookiesWriteFmt, provider, err)
	}
	log.Debug().Str("provider", provider).Int("cookies", len(value)).Msg("stored cookies")
	return nil
}

// Delete removes the cookies for rawURL's provider. Deleting an absent
// provider is not an error.
func (s *Store) Delete(rawURL string) error {
	provider, err := Provider(rawURL)
	if err != nil {
		return err
	}
	if _, err := s.db.Exec("DELETE FROM cookies WHERE provider = ?", provider); err != nil {
		return fmt.Errorf(messages.CookiesWriteFmt, provider, err)
	}
	return nil
}

// List returns every stored provider in sorted order.
func (s *Store) List() ([]string, error) {
	rows, err := s.db.Query("SELECT provider FROM cookies ORDER BY provider")
	if err != nil {
		return nil, fmt.Errorf(messages.CookiesListFmt, err)
	}
	defer func() { _ = rows.Close() }()

	var providers []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf(messages.CookiesListFmt, err)
		}
		providers = append(providers, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf(messages.CookiesListFmt, err)
	}
	return providers, nil
}
