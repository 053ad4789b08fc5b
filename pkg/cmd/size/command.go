package size

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/wntrblm/wintertools/pkg/app"
	"github.com/wntrblm/wintertools/pkg/fwsize"
)

// NewCommand returns the "wt size" command.
func NewCommand(a *app.App) *cobra.Command {
	var (
		flashSize     int64
		ramSize       int64
		sizeProg      string
		humanReadable bool
		jsonOut       bool
		noLast        bool
	)

	cmd := &cobra.Command{
		Use:   "size ELF",
		Short: "Report firmware flash and RAM usage",
		Long:  "Analyze an ELF file with the binutils size tool and report how much of the target's flash and RAM the firmware occupies, including the change since the previous build.",
		Example: `  wt size --flash-size 0x40000 --ram-size 0x8000 build/firmware.elf
  wt size --flash-size 262144 --ram-size 32768 --json build/firmware.elf`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			elf := args[0]

			analysis, err := fwsize.Analyze(elf, sizeProg)
			if err != nil {
				return err
			}

			if jsonOut {
				out, err := a.JSONFmt.Marshal(analysis)
				if err != nil {
					return err
				}
				fmt.Fprintln(a.ColorableOut, string(out))
				return nil
			}

			lastPath := filepath.Join(filepath.Dir(elf), fwsize.LastFileName)
			var last *fwsize.LastSizes
			if !noLast {
				if last, err = fwsize.ReadLast(lastPath); err != nil {
					return err
				}
			}

			report := fwsize.NewReport(humanReadable)
			report.Print(a.ColorableOut, analysis, flashSize, ramSize, last)

			if !noLast {
				if err := fwsize.WriteLast(lastPath, analysis); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().Int64Var(&flashSize, "flash-size", 0, "Flash capacity of the target in bytes")
	cmd.Flags().Int64Var(&ramSize, "ram-size", 0, "RAM capacity of the target in bytes")
	cmd.Flags().StringVar(&sizeProg, "size-prog", fwsize.DefaultSizeTool, "Path to the binutils size program")
	cmd.Flags().BoolVarP(&humanReadable, "human-readable", "H", false, "Print sizes in KiB and MiB instead of bytes")
	cmd.Flags().BoolVar(&jsonOut, "json", false, "Print the raw analysis as JSON")
	cmd.Flags().BoolVar(&noLast, "no-last", false, "Do not read or update the last-build size file")
	cmd.MarkFlagRequired("flash-size")
	cmd.MarkFlagRequired("ram-size")

	return cmd
}
