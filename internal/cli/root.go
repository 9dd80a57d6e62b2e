// Package cli implements hrmctl, the operator command line for hrmgo.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"hrmgo/internal/platform/apiclient"
	"hrmgo/internal/platform/config"
	"hrmgo/internal/platform/i18n"
	"hrmgo/internal/platform/logger"
	"hrmgo/internal/platform/prefs"
)

var (
	Version = "0.0.1-dev"
	Commit  = "unknown"
)

// env is the state shared by every subcommand, built once the persistent
// flags are parsed.
type env struct {
	configPath string
	server     string
	logLevel   string

	prefs  *prefs.Store
	i18n   *i18n.Provider
	client *apiclient.Client
	log    *logger.Logger
}

// NewRootCommand builds the hrmctl command tree.
func NewRootCommand() *cobra.Command {
	e := &env{}
	root := &cobra.Command{
		Use:   "hrmctl",
		Short: "Operator CLI for hrmgo",
		Long: `hrmctl talks to an hrmgo server: sign in, browse any list resource as a
text table or PDF, switch the interface language, and import employees
from a legacy HRMGO MySQL database.

Settings live in ~/.hrmctl.yaml and may be overridden with HRMCTL_* variables.`,
		Version:       fmt.Sprintf("%s (%s)", Version, Commit),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return e.setup()
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if e.log != nil {
				_ = e.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVarP(&e.configPath, "config", "c", "", "path to the hrmctl config file (default ~/.hrmctl.yaml)")
	root.PersistentFlags().StringVar(&e.server, "server", "", "hrmgo base URL, overrides the config file")
	root.PersistentFlags().StringVar(&e.logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	root.AddCommand(
		newLoginCommand(e),
		newLogoutCommand(e),
		newLangCommand(e),
		newListCommand(e),
		newLegacyCommand(e),
	)
	return root
}

func (e *env) setup() error {
	e.log = logger.New(config.LogConfig{Level: e.logLevel, Format: "text", Output: "stderr"})

	path := e.configPath
	if path == "" {
		var err error
		if path, err = prefs.DefaultPath(); err != nil {
			return err
		}
	}
	store, err := prefs.Open(path)
	if err != nil {
		return err
	}
	e.prefs = store

	bundle, err := i18n.Default()
	if err != nil {
		return fmt.Errorf("load translations: %w", err)
	}
	e.i18n = i18n.NewProvider(bundle, store)

	server := e.server
	if server == "" {
		server = store.Server()
	}
	e.client = apiclient.New(server, store,
		apiclient.WithTimeout(store.Timeout(apiclient.DefaultTimeout)),
		apiclient.WithLogger(e.log),
	)
	return nil
}

func (e *env) t(key string) string { return e.i18n.T(key) }

// Execute runs hrmctl and exits non-zero on failure.
func Execute() {
	root := NewRootCommand()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(root.ErrOrStderr(), "Error:", err)
		os.Exit(1)
	}
}
