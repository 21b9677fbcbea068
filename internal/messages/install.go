package messages

// Install messages for the install protocol and the root handle.
const (
	// InstallSourceRequired indicates the install source is missing.
	InstallSourceRequired          = "install source is required"
	InstallRootRequired            = "root handle path is required"
	InstallSystemRequired          = "install system is required"
	InstallBackendRequired         = "install backend is required"
	InstallDestWithNameUnsupported = "--name cannot be combined with a destination path: installing a named handle at a custom location is not supported"
	InstallDestMissingFmt          = "destination %s does not exist"
	InstallAlreadyInstalledFmt     = "handle '%s' is already installed"
	InstallAncestorNotInstalledFmt = "handle '%s' is registered but not installed; run 'dh install %s' first"
	InstallNameMismatchFmt         = "git registered submodule %q instead of requested %q in %s"
	InstallAddedCountFmt           = "expected exactly one new submodule, found %d in %s: [%s]"
	InstallPartialStateFmt         = "handle '%s' was registered but install did not finish: %v; the submodule stays in place, fix the cause and commit the parents manually"
	InstallGitlinkFmt              = "failed to prepare %s for submodule add: %w"

	RootStartPathRequired  = "start path is required"
	RootStatGitFmt         = "failed to inspect .git in %s: %w"
	RootGitNotDirOrFileFmt = "%s is neither a directory nor a gitdir file"
	RootCreateFmt          = "failed to create root handle %s: %w"
)
