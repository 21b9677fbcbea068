// Package doctor runs environment health checks for handle management.
package doctor

import (
	"context"
	"fmt"
	"os/exec"
	"strings"

	"github.com/conn-castle/datahandle/internal/annex"
	"github.com/conn-castle/datahandle/internal/config"
	"github.com/conn-castle/datahandle/internal/cookies"
	"github.com/conn-castle/datahandle/internal/gitrepo"
	"github.com/conn-castle/datahandle/internal/messages"
	"github.com/conn-castle/datahandle/internal/runner"
)

// Status is the outcome of one check.
type Status string

const (
	StatusOK   Status = "OK"
	StatusWarn Status = "WARN"
	StatusFail Status = "FAIL"
)

// Result is one reported check.
type Result struct {
	Status         Status
	CheckName      string
	Message        string
	Recommendation string
}

var lookPath = exec.LookPath

// CheckBackends verifies that git and git-annex are installed and runnable.
func CheckBackends(ctx context.Context, git string, run runner.Runner) []Result {
	var results []Result
	path, err := lookPath(git)
	if err != nil {
		return []Result{{
			Status:         StatusFail,
			CheckName:      messages.DoctorCheckNameGit,
			Message:        fmt.Sprintf(messages.DoctorExecutableMissingFmt, git, err),
			Recommendation: messages.DoctorGitMissingRecommend,
		}}
	}
	res, err := run.Run(ctx, "", []string{path, "--version"}, runner.Options{})
	if err != nil {
		results = append(results, Result{
			Status:    StatusFail,
			CheckName: messages.DoctorCheckNameGit,
			Message:   fmt.Sprintf(messages.DoctorExecutableFailedFmt, path, err),
		})
	} else {
		results = append(results, Result{
			Status:    StatusOK,
			CheckName: messages.DoctorCheckNameGit,
			Message:   strings.TrimSpace(res.Stdout),
		})
	}

	res, err = run.Run(ctx, "", []string{path, "annex", "version", "--raw"}, runner.Options{})
	if err != nil {
		results = append(results, Result{
			Status:         StatusFail,
			CheckName:      messages.DoctorCheckNameAnnex,
			Message:        fmt.Sprintf(messages.DoctorAnnexUnavailableFmt, err),
			Recommendation: messages.DoctorAnnexMissingRecommend,
		})
		return results
	}
	return append(results, Result{
		Status:    StatusOK,
		CheckName: messages.DoctorCheckNameAnnex,
		Message:   fmt.Sprintf(messages.DoctorAnnexVersionFmt, strings.TrimSpace(res.Stdout)),
	})
}

// CheckConfig loads the config at path (the default location when empty).
// The config is nil when loading failed.
func CheckConfig(path string) (Result, *config.Config) {
	cfg, err := config.Load(path)
	if err != nil {
		return Result{
			Status:         StatusFail,
			CheckName:      messages.DoctorCheckNameConfig,
			Message:        fmt.Sprintf(messages.DoctorConfigLoadFailedFmt, err),
			Recommendation: messages.DoctorConfigLoadRecommend,
		}, nil
	}
	return Result{
		Status:    StatusOK,
		CheckName: messages.DoctorCheckNameConfig,
		Message:   messages.DoctorConfigLoaded,
	}, cfg
}

// CheckRootHandle reports whether the root handle exists and whether it is
// annex-managed. A missing root is only a warning; install creates it.
func CheckRootHandle(ctx context.Context, repo *gitrepo.Repo) []Result {
	if !repo.IsRepo() {
		return []Result{{
			Status:         StatusWarn,
			CheckName:      messages.DoctorCheckNameRoot,
			Message:        fmt.Sprintf(messages.DoctorRootMissingFmt, repo.Path),
			Recommendation: messages.DoctorRootMissingRecommend,
		}}
	}
	results := []Result{{
		Status:    StatusOK,
		CheckName: messages.DoctorCheckNameRoot,
		Message:   fmt.Sprintf(messages.DoctorRootFoundFmt, repo.Path),
	}}
	idx, err := repo.AllSubmodules(ctx)
	if err != nil {
		return append(results, Result{
			Status:    StatusFail,
			CheckName: messages.DoctorCheckNameRoot,
			Message:   fmt.Sprintf(messages.DoctorRootIndexFailedFmt, err),
		})
	}
	uninitialized := 0
	for _, e := range idx {
		if !e.Initialized {
			uninitialized++
		}
	}
	results = append(results, Result{
		Status:    StatusOK,
		CheckName: messages.DoctorCheckNameRoot,
		Message:   fmt.Sprintf(messages.DoctorRootHandlesFmt, len(idx), uninitialized),
	})

	h, err := annex.New(repo).Handle(ctx)
	if err != nil {
		return append(results, Result{
			Status:    StatusWarn,
			CheckName: messages.DoctorCheckNameAnnex,
			Message:   fmt.Sprintf(messages.DoctorAnnexStateFailedFmt, err),
		})
	}
	if !h.ContentTracked {
		return results
	}
	r := Result{
		Status:    StatusOK,
		CheckName: messages.DoctorCheckNameAnnex,
		Message:   fmt.Sprintf(messages.DoctorAnnexModeFmt, h.Mode),
	}
	if h.CrippledFS {
		r.Status = StatusWarn
		r.Message += messages.DoctorAnnexCrippledSuffix
	}
	return append(results, r)
}

// CheckCookies verifies the cookie store opens.
func CheckCookies(path string) Result {
	store, err := cookies.Open(path)
	if err != nil {
		return Result{
			Status:    StatusWarn,
			CheckName: messages.DoctorCheckNameCookies,
			Message:   fmt.Sprintf(messages.DoctorCookiesFailedFmt, err),
		}
	}
	defer func() { _ = store.Close() }()
	providers, err := store.List()
	if err != nil {
		return Result{
			Status:    StatusWarn,
			CheckName: messages.DoctorCheckNameCookies,
			Message:   fmt.Sprintf(messages.DoctorCookiesFailedFmt, err),
		}
	}
	return Result{
		Status:    StatusOK,
		CheckName: messages.DoctorCheckNameCookies,
		Message:   fmt.Sprintf(messages.DoctorCookiesOKFmt, len(providers), path),
	}
}
