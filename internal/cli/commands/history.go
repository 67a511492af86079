package commands

import (
	"errors"
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/ipwatch/internal/history"
)

func newHistoryCommand(env *Env) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:     "history",
		Short:   "List recent IP changes",
		Aliases: []string{"log"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if env.settings.HistoryPath == "" {
				return errors.New("history is disabled")
			}
			recorder, err := history.Open(env.settings.HistoryPath)
			if err != nil {
				return err
			}
			defer recorder.Close()

			changes, err := recorder.Recent(limit)
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "ID\tTIME\tOLD IP\tNEW IP\tNOTIFY\tERROR")
			for _, c := range changes {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\n",
					c.ID,
					c.CreatedAt.Format(time.RFC3339),
					c.OldIP,
					c.NewIP,
					c.NotifyStatus,
					c.NotifyError,
				)
			}
			return w.Flush()
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of entries (0 for all)")
	return cmd
}
