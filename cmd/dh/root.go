package main

import (
	"github.com/spf13/cobra"

	"github.com/conn-castle/datahandle/internal/config"
	"github.com/conn-castle/datahandle/internal/gitrepo"
	"github.com/conn-castle/datahandle/internal/logging"
	"github.com/conn-castle/datahandle/internal/messages"
	"github.com/conn-castle/datahandle/internal/runner"
)

var loadConfig = config.Load

// newRunner builds the backend runner used by every command.
var newRunner = func() runner.Runner { return runner.ExecRunner{} }

// appState carries the global flags and the loaded config to subcommands.
type appState struct {
	cfgPath  string
	logLevel string
	cfg      *config.Config
	run      runner.Runner
}

func newRootCmd() *cobra.Command {
	st := &appState{}
	cmd := &cobra.Command{
		Use:           messages.RootUse,
		Short:         messages.RootShort,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return st.load(cmd)
		},
	}
	cmd.PersistentFlags().StringVar(&st.cfgPath, "config", "", messages.RootFlagConfig)
	cmd.PersistentFlags().StringVar(&st.logLevel, "log-level", "", messages.RootFlagLogLevel)
	cmd.Flags().BoolP("version", "v", false, messages.RootVersionFlag)

	cmd.AddCommand(
		newInstallCmd(st),
		newHandlesCmd(st),
		newAnnexCmd(st),
		newCookiesCmd(st),
		newDoctorCmd(st),
	)
	return cmd
}

// load reads the config and installs the logger. The --log-level flag wins
// over the configured level.
func (st *appState) load(cmd *cobra.Command) error {
	cfg, err := loadConfig(st.cfgPath)
	if err != nil {
		return err
	}
	level := cfg.Log.Level
	if st.logLevel != "" {
		level = st.logLevel
	}
	if err := logging.Setup(cmd.ErrOrStderr(), level); err != nil {
		return err
	}
	st.cfg = cfg
	st.run = newRunner()
	return nil
}

// rootRepo returns the root handle repository, honoring an explicit
// --root override.
func (st *appState) rootRepo(override string) (*gitrepo.Repo, error) {
	path := st.cfg.Handles.Root
	if override != "" {
		p, err := config.ExpandPath(override)
		if err != nil {
			return nil, err
		}
		path = p
	}
	return gitrepo.New(path, st.cfg.Backend.Git, st.run), nil
}
