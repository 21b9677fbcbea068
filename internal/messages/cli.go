package messages

// CLI messages for user-facing commands.
const (
	// RootUse is the CLI command name.
	RootUse = "dh"
	// RootShort is the short description for the root command.
	RootShort        = "Install and manage nested data handles"
	RootVersionFlag  = "Print version and exit"
	RootFlagConfig   = "Path to config.toml (default: $XDG_CONFIG_HOME/datahandle/config.toml)"
	RootFlagLogLevel = "Log level: debug, info, warn, error"

	FlagRoot = "Root handle path (overrides handles.root)"
	FlagJSON = "Print machine-readable JSON"

	// VersionCommitFmt formats the commit hash for version display.
	VersionCommitFmt = "commit %s"
	VersionBuildFmt  = "built %s"
	VersionFullFmt   = "%s (%s)"
	VersionTemplate  = "{{.Version}}\n"

	// InstallUse is the install command usage.
	InstallUse   = "install SRC [DEST]"
	InstallShort = "Install a handle below the root handle or at DEST"
	InstallLong  = `Install a handle.

SRC is a URL, a local path, or the name of a handle already registered
below the root handle. Names are hierarchical: a/b installs b inside the
installed handle a. Without DEST the handle is registered as a
sub-repository of the root handle and committed up the hierarchy. With
DEST an existing directory is turned into a handle in place.`
	InstallFlagName      = "Hierarchical name for the new handle (default: derived from SRC)"
	InstallFlagRecursive = "Also install all sub-handles"
	InstallDoneFmt       = "Installed %s at %s\n"
	InstallAdoptedFmt    = "Installed handle at %s\n"
	InstallSubhandleFmt  = "  %s\n"

	// HandlesUse is the handles command name.
	HandlesUse             = "handles"
	HandlesShort           = "List the handles registered below the root handle"
	HandlesNoRootFmt       = "No root handle at %s\n"
	HandlesStateInstalled  = "installed "
	HandlesStateRegistered = "registered"
	HandlesLineFmt         = "%s  %s  %s\n"

	// AnnexUse is the annex command name.
	AnnexUse     = "annex"
	AnnexShort   = "Manage the content store of a handle"
	AnnexFlagDir = "Run in DIR instead of the repository containing the working directory"

	AnnexInitUse         = "init"
	AnnexInitShort       = "Create the content store unless one exists"
	AnnexStatusUse       = "status"
	AnnexStatusShort     = "Show the content-store mode"
	AnnexGetUse          = "get FILE..."
	AnnexGetShort        = "Fetch content of annexed files"
	AnnexAddUse          = "add FILE..."
	AnnexAddShort        = "Add files to the content store"
	AnnexFlagOption      = "Extra git-annex option as key=value (repeatable)"
	AnnexLookupKeyUse    = "lookupkey FILE"
	AnnexLookupKeyShort  = "Print the content key of a file"
	AnnexHasContentUse   = "has-content FILE"
	AnnexHasContentShort = "Exit 0 if the content of FILE is present locally"
	AnnexDirectUse       = "direct"
	AnnexDirectShort     = "Switch the content store to direct mode"
	AnnexIndirectUse     = "indirect"
	AnnexIndirectShort   = "Switch the content store to indirect mode"
	AnnexProxyUse        = "proxy -- GIT-ARGS..."
	AnnexProxyShort      = "Run a git command through the content store (direct mode only)"
	AnnexProxyLong       = `Run a git command through git annex proxy.

The arguments are joined with spaces and split again with shell quoting
rules, so quote arguments that contain spaces.`

	AnnexStatusUntrackedFmt = "%s: no content store\n"
	AnnexStatusFmt          = "%s: %s mode\n"
	AnnexStatusCrippled     = "filesystem is crippled; indirect mode unavailable"
	AnnexContentPresentFmt  = "%s: present\n"
	AnnexContentAbsentFmt   = "%s: absent\n"

	// CookiesUse is the cookies command name.
	CookiesUse            = "cookies"
	CookiesShort          = "Manage stored provider cookies"
	CookiesGetUse         = "get URL"
	CookiesGetShort       = "Print the cookies stored for the provider of URL"
	CookiesSetUse         = "set URL KEY=VALUE..."
	CookiesSetShort       = "Replace the cookies stored for the provider of URL"
	CookiesDeleteUse      = "delete URL"
	CookiesDeleteShort    = "Delete the cookies stored for the provider of URL"
	CookiesListUse        = "list"
	CookiesListShort      = "List providers with stored cookies"
	CookiesInvalidPairFmt = "invalid cookie %q: expected KEY=VALUE"
)
