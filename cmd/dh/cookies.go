package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/conn-castle/datahandle/internal/cookies"
	"github.com/conn-castle/datahandle/internal/messages"
)

func newCookiesCmd(st *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   messages.CookiesUse,
		Short: messages.CookiesShort,
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   messages.CookiesGetUse,
			Short: messages.CookiesGetShort,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return st.withCookies(func(store *cookies.Store) error {
					value, err := store.Get(args[0])
					if err != nil {
						return err
					}
					keys := make([]string, 0, len(value))
					for k := range value {
						keys = append(keys, k)
					}
					sort.Strings(keys)
					for _, k := range keys {
						_, _ = fmt.Fprintf(cmd.OutOrStdout(), "%s=%s\n", k, value[k])
					}
					return nil
				})
			},
		},
		&cobra.Command{
			Use:   messages.CookiesSetUse,
			Short: messages.CookiesSetShort,
			Args:  cobra.MinimumNArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				value := make(map[string]string, len(args)-1)
				for _, pair := range args[1:] {
					k, v, ok := strings.Cut(pair, "=")
					if !ok || k == "" {
						return fmt.Errorf(messages.CookiesInvalidPairFmt, pair)
					}
					value[k] = v
				}
				return st.withCookies(func(store *cookies.Store) error {
					return store.Set(args[0], value)
				})
			},
		},
		&cobra.Command{
			Use:   messages.CookiesDeleteUse,
			Short: messages.CookiesDeleteShort,
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return st.withCookies(func(store *cookies.Store) error {
					return store.Delete(args[0])
				})
			},
		},
		&cobra.Command{
			Use:   messages.CookiesListUse,
			Short: messages.CookiesListShort,
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return st.withCookies(func(store *cookies.Store) error {
					providers, err := store.List()
					if err != nil {
						return err
					}
					for _, p := range providers {
						_, _ = fmt.Fprintln(cmd.OutOrStdout(), p)
					}
					return nil
				})
			},
		},
	)
	return cmd
}

func (st *appState) withCookies(fn func(*cookies.Store) error) error {
	store, err := cookies.Open(st.cfg.Cookies.Path)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()
	return fn(store)
}
