package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/conn-castle/datahandle/internal/annex"
	"github.com/conn-castle/datahandle/internal/gitrepo"
	"github.com/conn-castle/datahandle/internal/install"
	"github.com/conn-castle/datahandle/internal/messages"
)

var installRun = install.Run

func newInstallCmd(st *appState) *cobra.Command {
	var (
		name      string
		rootPath  string
		recursive bool
		asJSON    bool
	)
	cmd := &cobra.Command{
		Use:   messages.InstallUse,
		Short: messages.InstallShort,
		Long:  messages.InstallLong,
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			rootRepo, err := st.rootRepo(rootPath)
			if err != nil {
				return err
			}
			opts := install.Options{
				Source:    args[0],
				Name:      name,
				Recursive: recursive,
				RootPath:  rootRepo.Path,
				Backend:   install.NewGitBackend(st.cfg.Backend.Git, st.run),
				System:    install.RealSystem{},
			}
			if len(args) == 2 {
				opts.Dest = args[1]
			}
			res, err := installRun(cmd.Context(), opts)
			if err != nil {
				return err
			}
			if st.cfg.Annex.Direct {
				repo := gitrepo.New(res.Path, st.cfg.Backend.Git, st.run)
				if annex.IsAnnex(cmd.Context(), repo) {
					if _, err := annex.Open(cmd.Context(), repo, annex.OpenOptions{Direct: true}); err != nil {
						return err
					}
				}
			}
			log.Debug().Str("path", res.Path).Strs("subhandles", res.Subhandles).Msg("install finished")
			return writeInstallResult(cmd.OutOrStdout(), res, asJSON)
		},
	}
	cmd.Flags().StringVar(&name, "name", "", messages.InstallFlagName)
	cmd.Flags().StringVar(&rootPath, "root", "", messages.FlagRoot)
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", false, messages.InstallFlagRecursive)
	cmd.Flags().BoolVar(&asJSON, "json", false, messages.FlagJSON)
	return cmd
}

func writeInstallResult(out io.Writer, res *install.Result, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(res)
	}
	switch {
	case res.Adopted:
		_, _ = fmt.Fprintf(out, messages.InstallAdoptedFmt, res.Path)
	default:
		_, _ = fmt.Fprintf(out, messages.InstallDoneFmt, res.Name, res.Path)
	}
	for _, sub := range res.Subhandles {
		_, _ = fmt.Fprintf(out, messages.InstallSubhandleFmt, sub)
	}
	return nil
}
