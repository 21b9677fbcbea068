package main

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conn-castle/datahandle/internal/messages"
)

func newHandlesCmd(st *appState) *cobra.Command {
	var (
		rootPath string
		asJSON   bool
	)
	cmd := &cobra.Command{
		Use:   messages.HandlesUse,
		Short: messages.HandlesShort,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := st.rootRepo(rootPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if !repo.IsRepo() {
				if asJSON {
					_, _ = fmt.Fprintln(out, "{}")
					return nil
				}
				_, _ = fmt.Fprintf(out, messages.HandlesNoRootFmt, repo.Path)
				return nil
			}
			idx, err := repo.AllSubmodules(cmd.Context())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(idx)
			}
			for _, name := range idx.Names() {
				state := messages.HandlesStateInstalled
				if !idx[name].Initialized {
					state = messages.HandlesStateRegistered
				}
				_, _ = fmt.Fprintf(out, messages.HandlesLineFmt, state, name, idx[name].URL)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&rootPath, "root", "", messages.FlagRoot)
	cmd.Flags().BoolVar(&asJSON, "json", false, messages.FlagJSON)
	return cmd
}
