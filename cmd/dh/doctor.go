package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/conn-castle/datahandle/internal/config"
	"github.com/conn-castle/datahandle/internal/doctor"
	"github.com/conn-castle/datahandle/internal/gitrepo"
	"github.com/conn-castle/datahandle/internal/logging"
	"github.com/conn-castle/datahandle/internal/messages"
)

var (
	checkBackends   = doctor.CheckBackends
	checkConfig     = doctor.CheckConfig
	checkRootHandle = doctor.CheckRootHandle
	checkCookies    = doctor.CheckCookies
)

func newDoctorCmd(st *appState) *cobra.Command {
	return &cobra.Command{
		Use:   messages.DoctorUse,
		Short: messages.DoctorShort,
		Args:  cobra.NoArgs,
		// A broken config is reported as a check result instead of aborting.
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return logging.Setup(cmd.ErrOrStderr(), st.logLevel)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			ctx := cmd.Context()

			configResult, cfg := checkConfig(st.cfgPath)
			fallback := cfg == nil
			if fallback {
				var err error
				if cfg, err = config.Default(); err != nil {
					return err
				}
				if cfg.Handles.Root, err = config.ExpandPath(cfg.Handles.Root); err != nil {
					return err
				}
			}
			run := newRunner()

			_, _ = fmt.Fprintf(out, messages.DoctorHealthCheckFmt, cfg.Handles.Root)

			var allResults []doctor.Result
			allResults = append(allResults, checkBackends(ctx, cfg.Backend.Git, run)...)
			allResults = append(allResults, configResult)
			allResults = append(allResults, checkRootHandle(ctx, gitrepo.New(cfg.Handles.Root, cfg.Backend.Git, run))...)
			if !fallback {
				allResults = append(allResults, checkCookies(cfg.Cookies.Path))
			}

			hasFail := false
			for _, r := range allResults {
				printResult(out, r)
				if r.Status == doctor.StatusFail {
					hasFail = true
				}
			}

			if hasFail {
				_, _ = fmt.Fprintln(out, color.RedString(messages.DoctorFailureSummary))
				return errors.New(messages.DoctorFailureError)
			}
			_, _ = fmt.Fprintln(out, color.GreenString(messages.DoctorSuccessSummary))
			return nil
		},
	}
}

func printResult(out io.Writer, r doctor.Result) {
	var status string
	switch r.Status {
	case doctor.StatusOK:
		status = color.GreenString(messages.DoctorStatusOKLabel)
	case doctor.StatusWarn:
		status = color.YellowString(messages.DoctorStatusWarnLabel)
	case doctor.StatusFail:
		status = color.RedString(messages.DoctorStatusFailLabel)
	}

	_, _ = fmt.Fprintf(out, messages.DoctorResultLineFmt, status, r.CheckName, r.Message)
	if r.Recommendation != "" {
		printRecommendation(out, r.Recommendation)
	}
}

// printRecommendation renders a multi-line recommendation with consistent indentation.
func printRecommendation(out io.Writer, recommendation string) {
	for i, line := range strings.Split(recommendation, "\n") {
		switch {
		case i == 0:
			_, _ = fmt.Fprintf(out, "%s%s\n", messages.DoctorRecommendationPrefix, line)
		case line == "":
			_, _ = fmt.Fprintf(out, "%s\n", messages.DoctorRecommendationIndent)
		default:
			_, _ = fmt.Fprintf(out, "%s%s\n", messages.DoctorRecommendationIndent, line)
		}
	}
}
