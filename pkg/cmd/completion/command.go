package completion

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wntrblm/wintertools/pkg/app"
)

// NewCommand returns the "wt completion" command.
// It takes the root command so it can generate completions for the full tree.
func NewCommand(root *cobra.Command, a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "completion [SHELL]",
		Short: "Generate completion script for bash, zsh, fish or powershell",
		Long: `To load completions:

Bash:

$ source <(wt completion bash)

# To load completions for each session, execute once:
Linux:
  $ wt completion bash > /etc/bash_completion.d/wt
MacOS:
  $ wt completion bash > /usr/local/etc/bash_completion.d/wt

Zsh:

# To load completions for each session, execute once:
$ wt completion zsh > "${fpath[1]}/_wt"

# You will need to start a new shell for this setup to take effect.

Fish:

$ wt completion fish | source

# To load completions for each session, execute once:
$ wt completion fish > ~/.config/fish/completions/wt.fish
`,
		DisableFlagsInUseLine: true,
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				if err := root.GenBashCompletion(a.OutWriter); err != nil {
					return fmt.Errorf("failed to generate bash completion: %w", err)
				}
			case "zsh":
				if err := root.GenZshCompletion(a.OutWriter); err != nil {
					return fmt.Errorf("failed to generate zsh completion: %w", err)
				}
			case "fish":
				if err := root.GenFishCompletion(a.OutWriter, true); err != nil {
					return fmt.Errorf("failed to generate fish completion: %w", err)
				}
			case "powershell":
				if err := root.GenPowerShellCompletion(a.OutWriter); err != nil {
					return fmt.Errorf("failed to generate powershell completion: %w", err)
				}
			}
			return nil
		},
	}
}
