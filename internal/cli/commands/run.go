package commands

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/ipwatch/internal/history"
	"github.com/ipwatch/internal/monitor"
)

func newRunCommand(env *Env) *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start monitoring the public IP",
		Long: `Check the public IP every checkIntervalMinutes and notify on change.
The config file is re-read before every check, so "ipwatch set" takes
effect on the next iteration. Stop with SIGINT or SIGTERM.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			store := env.Store()
			if _, err := store.Load(); err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}

			opts := []monitor.Option{monitor.WithLogger(env.logger)}
			if path := env.settings.HistoryPath; path != "" {
				recorder, err := history.Open(path)
				if err != nil {
					env.logger.Warn("history disabled", "err", err)
				} else {
					defer recorder.Close()
					opts = append(opts, monitor.WithHistory(recorder))
				}
			}

			checker := monitor.NewChecker(store, env.NewFetcher(env.settings), env.NewNotifier(env.settings), opts...)

			if once {
				res, err := checker.RunOnce(cmd.Context())
				if err != nil {
					return err
				}
				printResult(cmd, res)
				return nil
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return checker.Run(ctx)
		},
	}

	cmd.Flags().BoolVar(&once, "once", false, "perform a single check and exit")
	return cmd
}

func printResult(cmd *cobra.Command, res monitor.Result) {
	out := cmd.OutOrStdout()
	switch res.Outcome {
	case monitor.OutcomeChanged:
		fmt.Fprintf(out, "IP changed: %s -> %s\n", res.PreviousIP, res.IP)
		if res.NotifyErr != nil {
			fmt.Fprintf(out, "Notification failed: %v\n", res.NotifyErr)
		}
	case monitor.OutcomeFetchFailed:
		fmt.Fprintf(out, "IP lookup failed (%d in a row): %v\n", res.Failures, res.FetchErr)
	default:
		fmt.Fprintf(out, "IP unchanged: %s\n", res.IP)
	}
}
