package commands

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ipwatch/internal/config"
	"github.com/ipwatch/internal/document"
)

func newShowCommand(env *Env) *cobra.Command {
	var reveal bool

	cmd := &cobra.Command{
		Use:     "show",
		Short:   "Print the current configuration",
		Aliases: []string{"print"},
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(env.Store())
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Config File:             %s\n", env.settings.ConfigPath)
			cfg.Print(cmd.OutOrStdout(), reveal)
			return nil
		},
	}

	cmd.Flags().BoolVar(&reveal, "reveal", false, "show the email password")
	return cmd
}

func newSetCommand(env *Env) *cobra.Command {
	var long strings.Builder
	long.WriteString("Set a single configuration property.\n\nProperties:\n")
	w := tabwriter.NewWriter(&long, 0, 0, 2, ' ', 0)
	for _, p := range config.Properties() {
		fmt.Fprintf(w, "  %s\t%s\n", p.Key, p.Description)
	}
	w.Flush()

	return &cobra.Command{
		Use:   "set [property] [value]",
		Short: "Set a configuration property",
		Long:  long.String(),
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := config.SetProperty(env.Store(), args[0], args[1])
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s updated\n", key)
			return nil
		},
	}
}

func newSetPathCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "set-path [path] [json-value]",
		Short: "Write a raw value at a document path, e.g. extra.list[0]",
		Long: `Write a value anywhere in the config document. The path uses dots for
object keys and [n] for array indexes; missing objects and arrays are
created. An index past the end of an array appends. The value is parsed
as JSON and stored as a string when it is not valid JSON.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, err := document.Parse([]byte(args[1]))
			if err != nil {
				value = document.TextValue(args[1])
			}
			if err := env.Store().SetPath(args[0], value); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s = %s\n", args[0], value)
			return nil
		},
	}
}

func newGetCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "get [path]",
		Short: "Print the value at a document path as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := env.Store().Load()
			if err != nil {
				return fmt.Errorf("failed to load config: %w", err)
			}
			value, found, err := document.Lookup(doc, args[0])
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("no value at %s", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), value)
			return nil
		},
	}
}

func newResetCommand(env *Env) *cobra.Command {
	return &cobra.Command{
		Use:   "reset",
		Short: "Restore the default configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := env.Store().Reset(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Configuration reset: %s\n", env.settings.ConfigPath)
			return nil
		},
	}
}
