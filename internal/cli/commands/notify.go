package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ipwatch/internal/config"
	"github.com/ipwatch/internal/notify"
)

func newTestCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "test",
		Short: "Send a test notification with the current settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(env.Store())
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			if err := env.NewNotifier(env.settings).Notify(cfg, notify.Test(cfg.IPAddress)); err != nil {
				return fmt.Errorf("failed to send test notification: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Test notification sent to %s\n", cfg.RecipientAddress)
			return nil
		},
	}
}
