// Package config loads user-level settings for handle management.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/go-homedir"
	"github.com/pelletier/go-toml/v2"

	"github.com/conn-castle/datahandle/internal/messages"
)

// Environment variables consulted by Load.
const (
	EnvConfigPath = "DATAHANDLE_CONFIG"
	EnvRoot       = "DATAHANDLE_ROOT"
	EnvLogLevel   = "DATAHANDLE_LOG_LEVEL"
)

const (
	appDirName     = "datahandle"
	configFileName = "config.toml"
	cookiesFile    = "cookies.db"
	// DefaultRoot is the central location of the root handle.
	DefaultRoot = "~/datalad"
)

// ErrConfigValidation wraps config validation failures, as opposed to TOML
// syntax or filesystem errors.
var ErrConfigValidation = errors.New(messages.ConfigValidationFailed)

// Config is the parsed config.toml.
type Config struct {
	Handles HandlesConfig `toml:"handles"`
	Backend BackendConfig `toml:"backend"`
	Annex   AnnexConfig   `toml:"annex"`
	Log     LogConfig     `toml:"log"`
	Cookies CookiesConfig `toml:"cookies"`
}

// HandlesConfig locates the root handle.
type HandlesConfig struct {
	Root string `toml:"root"`
}

// BackendConfig selects the backend executables.
type BackendConfig struct {
	Git string `toml:"git"`
}

// AnnexConfig controls content-store setup of installed handles.
type AnnexConfig struct {
	// Direct switches newly installed handles to direct mode.
	Direct bool `toml:"direct"`
}

// LogConfig controls diagnostic output.
type LogConfig struct {
	Level string `toml:"level"`
}

// CookiesConfig locates the cookie store.
type CookiesConfig struct {
	Path string `toml:"path"`
}

var userConfigDir = os.UserConfigDir

// Dir returns the per-user configuration directory.
func Dir() (string, error) {
	base, err := userConfigDir()
	if err != nil {
		return "", fmt.Errorf(messages.ConfigDirFmt, err)
	}
	return filepath.Join(base, appDirName), nil
}

// DefaultPath returns the config file location, honoring DATAHANDLE_CONFIG.
func DefaultPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return ExpandPath(p)
	}
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, configFileName), nil
}

// Default returns the built-in settings.
func Default() (*Config, error) {
	dir, err := Dir()
	if err != nil {
		return nil, err
	}
	return &Config{
		Handles: HandlesConfig{Root: DefaultRoot},
		Backend: BackendConfig{Git: "git"},
		Log:     LogConfig{Level: "info"},
		Cookies: CookiesConfig{Path: filepath.Join(dir, cookiesFile)},
	}, nil
}

// Load reads the config at path (DefaultPath when empty). A missing file
// yields defaults. Environment overrides are applied last and paths are
// expanded.
func Load(path string) (*Config, error) {
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist):
	case err != nil:
		return nil, fmt.Errorf(messages.ConfigReadFmt, path, err)
	default:
		if err := parseInto(cfg, data, path); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)
	if err := cfg.finalize(path); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Parse decodes config TOML over the defaults without consulting the
// environment. source is used in error messages.
func Parse(data []byte, source string) (*Config, error) {
	cfg, err := Default()
	if err != nil {
		return nil, err
	}
	if err := parseInto(cfg, data, source); err != nil {
		return nil, err
	}
	if err := cfg.finalize(source); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseInto(cfg *Config, data []byte, source string) error {
	dec := toml.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(cfg); err != nil {
		return fmt.Errorf(messages.ConfigInvalidFmt, source, err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	if v := strings.TrimSpace(os.Getenv(EnvRoot)); v != "" {
		cfg.Handles.Root = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Log.Level = v
	}
}

func (c *Config) finalize(source string) error {
	if strings.TrimSpace(c.Handles.Root) == "" {
		return fmt.Errorf("%w: "+messages.ConfigRootRequiredFmt, ErrConfigValidation, source)
	}
	if strings.TrimSpace(c.Backend.Git) == "" {
		return fmt.Errorf("%w: "+messages.ConfigGitRequiredFmt, ErrConfigValidation, source)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
		c.Log.Level = strings.ToLower(c.Log.Level)
	default:
		return fmt.Errorf("%w: "+messages.ConfigLogLevelInvalidFmt, ErrConfigValidation, source, c.Log.Level)
	}
	root, err := ExpandPath(c.Handles.Root)
	if err != nil {
		return err
	}
	c.Handles.Root = root
	cookies, err := ExpandPath(c.Cookies.Path)
	if err != nil {
		return err
	}
	c.Cookies.Path = cookies
	return nil
}

// ExpandPath expands environment variables and a leading ~, then returns an
// absolute path. Empty stays empty.
func ExpandPath(p string) (string, error) {
	if p == "" {
		return "", nil
	}
	expanded, err := homedir.Expand(os.ExpandEnv(p))
	if err != nil {
		return "", fmt.Errorf(messages.ConfigExpandPathFmt, p, err)
	}
	return filepath.Abs(expanded)
}
