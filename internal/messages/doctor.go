package messages

// Doctor messages for the doctor command.
const (
	// DoctorUse is the doctor command name.
	DoctorUse   = "doctor"
	DoctorShort = "Check backends, configuration, and the root handle"

	DoctorHealthCheckFmt = "Checking handle environment (root %s)...\n"

	DoctorCheckNameGit     = "Git"
	DoctorCheckNameAnnex   = "Annex"
	DoctorCheckNameConfig  = "Config"
	DoctorCheckNameRoot    = "Root"
	DoctorCheckNameCookies = "Cookies"

	DoctorExecutableMissingFmt  = "%s not found on PATH: %v"
	DoctorExecutableFailedFmt   = "%s is not runnable: %v"
	DoctorGitMissingRecommend   = "Install git or set backend.git in the config file."
	DoctorAnnexUnavailableFmt   = "git-annex is not available: %v"
	DoctorAnnexMissingRecommend = "Install git-annex (https://git-annex.branchable.com/install/)."
	DoctorAnnexVersionFmt       = "git-annex %s"

	DoctorConfigLoadFailedFmt = "Failed to load configuration: %v"
	DoctorConfigLoadRecommend = "Fix config.toml or point DATAHANDLE_CONFIG at a valid file."
	DoctorConfigLoaded        = "Configuration loaded successfully"

	DoctorRootMissingFmt       = "Root handle %s does not exist yet"
	DoctorRootMissingRecommend = "It is created on the first `dh install`."
	DoctorRootFoundFmt         = "Root handle found at %s"
	DoctorRootIndexFailedFmt   = "Failed to read the sub-repository index: %v"
	DoctorRootHandlesFmt       = "%d handles registered, %d not initialized"
	DoctorAnnexStateFailedFmt  = "Failed to read annex state: %v"
	DoctorAnnexModeFmt         = "Root handle annex in %s mode"
	DoctorAnnexCrippledSuffix  = " on a crippled filesystem (indirect mode unavailable)"

	DoctorCookiesFailedFmt = "Cookie store unusable: %v"
	DoctorCookiesOKFmt     = "%d cookie providers stored in %s"

	DoctorFailureSummary = "Some checks failed. Please address the items above."
	DoctorFailureError   = "doctor checks failed"
	DoctorSuccessSummary = "All checks passed."

	DoctorStatusOKLabel        = "[OK]  "
	DoctorStatusWarnLabel      = "[WARN]"
	DoctorStatusFailLabel      = "[FAIL]"
	DoctorResultLineFmt        = "%s %-8s %s\n"
	DoctorRecommendationPrefix = "       > "
	DoctorRecommendationIndent = "         "
)
