package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wntrblm/wintertools/pkg/app"
)

// NewCommand returns the "wt config" command with subcommands.
func NewCommand(a *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Read and write wintertools configuration",
		Long:  "Get and set values in the user configuration file. Keys are dotted paths into the TOML document, e.g. github.token.",
	}

	cmd.AddCommand(
		newGetCommand(a),
		newSetCommand(a),
		newListCommand(a),
		newPathCommand(a),
	)

	return cmd
}

func newGetCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:               "get KEY",
		Short:             "Print a configuration value",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeKeys(a),
		RunE: func(cmd *cobra.Command, args []string) error {
			value, ok := a.Cfg.Get(args[0])
			if !ok {
				return fmt.Errorf("key %q is not set", args[0])
			}
			fmt.Fprintln(a.OutWriter, value)
			return nil
		},
	}
}

func newSetCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:               "set KEY VALUE",
		Short:             "Set a configuration value",
		Args:              cobra.ExactArgs(2),
		ValidArgsFunction: completeKeys(a),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.Cfg.Set(args[0], args[1])
		},
	}
}

func newListCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all configuration keys and values",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, key := range a.Cfg.Keys() {
				value, _ := a.Cfg.Get(key)
				fmt.Fprintf(a.OutWriter, "%s = %s\n", key, value)
			}
		},
	}
}

func newPathCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print the location of the configuration file",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintln(a.OutWriter, a.Cfg.Path())
		},
	}
}

func completeKeys(a *app.App) func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
	return func(_ *cobra.Command, args []string, _ string) ([]string, cobra.ShellCompDirective) {
		if len(args) > 0 {
			return nil, cobra.ShellCompDirectiveNoFileComp
		}
		return a.Cfg.Keys(), cobra.ShellCompDirectiveNoFileComp
	}
}
