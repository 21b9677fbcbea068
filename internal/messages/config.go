package messages

// Config messages for configuration loading and validation.
const (
	ConfigValidationFailed = "config validation failed"
	ConfigDirFmt           = "failed to resolve user config directory: %w"
	ConfigReadFmt          = "failed to read config %s: %w"
	// ConfigInvalidFmt formats TOML syntax and unknown-key errors.
	ConfigInvalidFmt         = "invalid config %s: %w"
	ConfigRootRequiredFmt    = "%s: handles.root is required"
	ConfigGitRequiredFmt     = "%s: backend.git is required"
	ConfigLogLevelInvalidFmt = "%s: log.level must be one of debug, info, warn, error (got %q)"
	ConfigExpandPathFmt      = "failed to expand path %s: %w"

	LogInvalidLevelFmt = "invalid log level %q: must be one of debug, info, warn, error"

	LockCacheDirFmt = "failed to resolve user cache directory: %w"
	LockOpenFmt     = "failed to open lock %s: %w"
	LockAcquireFmt  = "failed to lock %s: %w"
	LockTimeoutFmt  = "timed out waiting for lock after %s"

	CookiesNotFound       = "no cookies stored for provider"
	CookiesOpenFmt        = "failed to open cookie store %s: %w"
	CookiesInvalidURLFmt  = "invalid url %q: %w"
	CookiesMissingHostFmt = "url %q has no host"
	CookiesReadFmt        = "failed to read cookies for %s: %w"
	CookiesDecodeFmt      = "failed to decode cookies for %s: %w"
	CookiesEncodeFmt      = "failed to encode cookies for %s: %w"
	CookiesWriteFmt       = "failed to write cookies for %s: %w"
	CookiesListFmt        = "failed to list cookie providers: %w"
)
