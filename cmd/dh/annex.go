package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conn-castle/datahandle/internal/annex"
	"github.com/conn-castle/datahandle/internal/config"
	"github.com/conn-castle/datahandle/internal/gitrepo"
	"github.com/conn-castle/datahandle/internal/messages"
	"github.com/conn-castle/datahandle/internal/root"
)

// annexCmd holds state shared by the annex subcommands.
type annexCmd struct {
	st  *appState
	dir string
}

func newAnnexCmd(st *appState) *cobra.Command {
	a := &annexCmd{st: st}
	cmd := &cobra.Command{
		Use:   messages.AnnexUse,
		Short: messages.AnnexShort,
	}
	cmd.PersistentFlags().StringVarP(&a.dir, "dir", "C", "", messages.AnnexFlagDir)
	cmd.AddCommand(
		a.initCmd(),
		a.statusCmd(),
		a.filesCmd(messages.AnnexGetUse, messages.AnnexGetShort, (*annex.Repo).Get),
		a.filesCmd(messages.AnnexAddUse, messages.AnnexAddShort, (*annex.Repo).Add),
		a.lookupKeyCmd(),
		a.hasContentCmd(),
		a.modeCmd(messages.AnnexDirectUse, messages.AnnexDirectShort, true),
		a.modeCmd(messages.AnnexIndirectUse, messages.AnnexIndirectShort, false),
		a.proxyCmd(),
	)
	return cmd
}

// repo resolves -C, or the repository containing the working directory.
func (a *annexCmd) repo() (*gitrepo.Repo, error) {
	dir := a.dir
	if dir != "" {
		p, err := config.ExpandPath(dir)
		if err != nil {
			return nil, err
		}
		dir = p
	} else {
		cwd, err := getwd()
		if err != nil {
			return nil, err
		}
		dir = cwd
	}
	top, err := root.FindRepoRoot(dir)
	if err != nil {
		return nil, err
	}
	return gitrepo.New(top, a.st.cfg.Backend.Git, a.st.run), nil
}

// existing wraps the repository without creating a content store.
func (a *annexCmd) existing() (*annex.Repo, error) {
	repo, err := a.repo()
	if err != nil {
		return nil, err
	}
	return annex.New(repo), nil
}

func (a *annexCmd) initCmd() *cobra.Command {
	return &cobra.Command{
		Use:   messages.AnnexInitUse,
		Short: messages.AnnexInitShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.repo()
			if err != nil {
				return err
			}
			r, err := annex.Open(cmd.Context(), repo, annex.OpenOptions{Direct: a.st.cfg.Annex.Direct})
			if err != nil {
				return err
			}
			return printHandle(cmd, r)
		},
	}
}

func (a *annexCmd) statusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   messages.AnnexStatusUse,
		Short: messages.AnnexStatusShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.existing()
			if err != nil {
				return err
			}
			return printHandle(cmd, r)
		},
	}
}

func printHandle(cmd *cobra.Command, r *annex.Repo) error {
	h, err := r.Handle(cmd.Context())
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if !h.ContentTracked {
		_, _ = fmt.Fprintf(out, messages.AnnexStatusUntrackedFmt, h.Root)
		return nil
	}
	_, _ = fmt.Fprintf(out, messages.AnnexStatusFmt, h.Root, h.Mode)
	if h.CrippledFS {
		_, _ = fmt.Fprintln(out, messages.AnnexStatusCrippled)
	}
	return nil
}

func (a *annexCmd) filesCmd(use string, short string, op func(*annex.Repo, context.Context, []string, annex.Options) error) *cobra.Command {
	var opts map[string]string
	cmd := &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.existing()
			if err != nil {
				return err
			}
			return op(r, cmd.Context(), args, annex.Options(opts))
		},
	}
	cmd.Flags().StringToStringVarP(&opts, "option", "o", nil, messages.AnnexFlagOption)
	return cmd
}

func (a *annexCmd) lookupKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   messages.AnnexLookupKeyUse,
		Short: messages.AnnexLookupKeyShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.existing()
			if err != nil {
				return err
			}
			key, err := r.GetFileKey(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), key)
			return nil
		},
	}
}

func (a *annexCmd) hasContentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   messages.AnnexHasContentUse,
		Short: messages.AnnexHasContentShort,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.existing()
			if err != nil {
				return err
			}
			present, err := r.FileHasContent(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			if !present {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), messages.AnnexContentAbsentFmt, args[0])
				return &SilentExitError{Code: 1}
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), messages.AnnexContentPresentFmt, args[0])
			return nil
		},
	}
}

func (a *annexCmd) modeCmd(use string, short string, direct bool) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.existing()
			if err != nil {
				return err
			}
			if err := r.SetDirectMode(cmd.Context(), direct); err != nil {
				return err
			}
			return printHandle(cmd, r)
		},
	}
}

func (a *annexCmd) proxyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   messages.AnnexProxyUse,
		Short: messages.AnnexProxyShort,
		Long:  messages.AnnexProxyLong,
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := a.existing()
			if err != nil {
				return err
			}
			lines, err := r.Proxy(cmd.Context(), strings.Join(args, " "))
			if err != nil {
				return err
			}
			for _, line := range lines {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), line)
			}
			return nil
		},
	}
}
