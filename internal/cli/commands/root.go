// Package commands implements the ipwatch command line.
package commands

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ipwatch/internal/config"
	"github.com/ipwatch/internal/document"
	"github.com/ipwatch/internal/ipcheck"
	"github.com/ipwatch/internal/logging"
	"github.com/ipwatch/internal/notify"
)

// Env carries what the commands share: resolved settings and the
// constructors for network collaborators, which tests replace.
type Env struct {
	viper    *viper.Viper
	settings *config.Settings
	logger   *log.Logger

	NewNotifier func(s *config.Settings) notify.Notifier
	NewFetcher  func(s *config.Settings) ipcheck.Fetcher
}

func NewEnv() *Env {
	return &Env{
		viper:       config.NewViper(),
		NewNotifier: func(s *config.Settings) notify.Notifier {
			return notify.New(s.HTTPTimeout)
		},
		NewFetcher: func(s *config.Settings) ipcheck.Fetcher {
			return ipcheck.NewDefaultChain(s.IPServices, s.DNSLookup, s.HTTPTimeout)
		},
	}
}

// Store returns the document store for the configured path.
func (e *Env) Store() *document.Store {
	return document.NewStore(e.settings.ConfigPath, config.DefaultDocument())
}

func NewRootCommand(env *Env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ipwatch",
		Short: "Watch the public IP address and email when it changes",
		Long: `ipwatch periodically looks up this machine's public IP address, stores
it in a JSON config file and notifies the configured recipient by email
(and optionally Slack) whenever it changes.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			settings, err := config.LoadSettings(env.viper)
			if err != nil {
				return err
			}
			env.settings = settings
			env.logger = logging.New(logging.Options{
				Level:           settings.LogLevel,
				Output:          cmd.ErrOrStderr(),
				Prefix:          "ipwatch",
				ReportTimestamp: true,
			})
			return nil
		},
	}

	bindSettingFlags(env.viper, cmd.PersistentFlags())

	cmd.AddCommand(newRunCommand(env))
	cmd.AddCommand(newShowCommand(env))
	cmd.AddCommand(newSetCommand(env))
	cmd.AddCommand(newSetPathCommand(env))
	cmd.AddCommand(newGetCommand(env))
	cmd.AddCommand(newResetCommand(env))
	cmd.AddCommand(newTestCommand(env))
	cmd.AddCommand(newHistoryCommand(env))

	return cmd
}

// bindSettingFlags registers the settings flags on flags and binds each
// one to the matching viper key.
func bindSettingFlags(v *viper.Viper, flags *pflag.FlagSet) {
	flags.String(config.SettingConfig, "", "path to the JSON config file")
	flags.String(config.SettingHistory, "", "path to the SQLite change history (empty string disables)")
	flags.String(config.SettingLogLevel, "", "log level (debug, info, warn, error)")
	flags.StringSlice(config.SettingIPServices, nil, "HTTP services that echo the caller's IP")
	flags.Bool(config.SettingDNSLookup, true, "try the OpenDNS lookup before the HTTP services")
	flags.Duration(config.SettingHTTPTimeout, 10*time.Second, "timeout for each IP lookup and webhook call")

	flags.VisitAll(func(f *pflag.Flag) {
		if err := v.BindPFlag(f.Name, f); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", f.Name, err))
		}
	})
}
