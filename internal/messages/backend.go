package messages

// Backend messages for git and git-annex process invocations.
const (
	// RunnerCommandFailedFmt formats a non-zero backend exit.
	RunnerCommandFailedFmt = "command '%s' failed in %s with exit code %d"
	RunnerEmptyCommand     = "backend command is empty"
	RunnerStartFailedFmt   = "failed to start %s: %w"

	GitReadDirFmt = "failed to read directory %s: %w"

	AnnexPathOutsideRepoFmt     = "path %s is outside repository %s"
	AnnexCommandNotAvailableFmt = "%s is not available: %s"
	AnnexFileNotInAnnexFmt      = "file not in annex: %s"
	AnnexFileInGitFmt           = "file is tracked by git, not the annex: %s"
	AnnexIndirectOnCrippledFS   = "indirect mode is not supported on a crippled filesystem"
	AnnexProxyRequiresDirect    = "annex proxy is only available in direct mode"
	AnnexProxyParseFmt          = "failed to parse proxied command %q: %w"
	AnnexProxyEmptyCommand      = "proxied command is empty"
	AnnexInvalidGitdirFmt       = "invalid gitdir redirect in %s"

	PropagateStageFailedFmt  = "failed to stage %s in %s: %w"
	PropagateCommitFailedFmt = "failed to commit in %s: %w"

	// CommitInstalledHandleFmt is the first line of an install commit message.
	CommitInstalledHandleFmt    = "Installed handle '%s'\n"
	CommitInstalledSubhandleFmt = "Installed subhandle '%s'\n"
)
