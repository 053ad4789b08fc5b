package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/wntrblm/wintertools/pkg/app"
	"github.com/wntrblm/wintertools/pkg/cmd/buildgen"
	"github.com/wntrblm/wintertools/pkg/cmd/completion"
	wtconfig "github.com/wntrblm/wintertools/pkg/cmd/config"
	"github.com/wntrblm/wintertools/pkg/cmd/fetch"
	"github.com/wntrblm/wintertools/pkg/cmd/release"
	"github.com/wntrblm/wintertools/pkg/cmd/size"
	"github.com/wntrblm/wintertools/pkg/cmd/sysex"
	"github.com/wntrblm/wintertools/pkg/cmd/teeth"
	"github.com/wntrblm/wintertools/pkg/cmd/uf2"
)

// Execute is the single entry point for the CLI.
func Execute(version, commit string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a := app.New()

	root := &cobra.Command{
		Use:          "wt",
		Short:        "Winterbloom firmware development toolkit",
		Version:      fmt.Sprintf("%s (%s)", version, commit),
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			a.OutWriter = cmd.OutOrStdout()
			a.ErrWriter = cmd.ErrOrStderr()
			a.InReader = cmd.InOrStdin()

			if a.OutWriter != os.Stdout {
				a.ColorableOut = a.OutWriter
			}

			return a.InitConfig()
		},
	}

	root.PersistentFlags().StringVar(&a.CfgFile, "config", "", "config file (default is ~/.config/wintertools/config.toml)")
	root.PersistentFlags().BoolVarP(&a.Verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(
		teeth.NewCommand(a),
		sysex.NewCommand(a),
		uf2.NewCommand(a),
		size.NewCommand(a),
		buildgen.NewCommand(a),
		fetch.NewCommand(a),
		release.NewCommand(a),
		wtconfig.NewCommand(a),
		completion.NewCommand(root, a),
	)

	a.Root = root
	return root.ExecuteContext(ctx)
}
