package uf2

import (
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/wntrblm/wintertools/pkg/app"
	"github.com/wntrblm/wintertools/pkg/uf2"
)

// NewCommand returns the "wt uf2" command with subcommands.
func NewCommand(a *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "uf2",
		Short: "Convert firmware images to and from the UF2 format",
	}

	cmd.AddCommand(
		newFromBinCommand(a),
		newToBinCommand(a),
		newFamiliesCommand(a),
	)

	return cmd
}

func newFromBinCommand(a *app.App) *cobra.Command {
	var (
		base   uint32
		family string
	)

	cmd := &cobra.Command{
		Use:   "from-bin IN.bin OUT.uf2",
		Short: "Pack a raw firmware image into a UF2 file",
		Example: `  wt uf2 from-bin --family SAMD21 firmware.bin firmware.uf2
  wt uf2 from-bin --base 0x4000 --family SAMD51 firmware.bin firmware.uf2`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			familyID, err := resolveFamily(family)
			if err != nil {
				return err
			}

			out := uf2.FromBin(buf, base, familyID)
			if err := os.WriteFile(args[1], out, 0o644); err != nil {
				return err
			}

			a.Log.Info().
				Str("file", args[1]).
				Int("blocks", len(out)/uf2.BlockSize).
				Msg("wrote uf2")
			return nil
		},
	}

	cmd.Flags().Uint32Var(&base, "base", 0x2000, "Target flash address of the first byte")
	cmd.Flags().StringVar(&family, "family", "", "Processor family name or hex family ID")
	cmd.RegisterFlagCompletionFunc("family", completeFamily)

	return cmd
}

func newToBinCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "to-bin IN.uf2 OUT.bin",
		Short: "Unpack a UF2 file into a raw firmware image",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			buf, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			out, err := uf2.ToBin(buf)
			if err != nil {
				return err
			}
			return os.WriteFile(args[1], out, 0o644)
		},
	}
}

func newFamiliesCommand(a *app.App) *cobra.Command {
	return &cobra.Command{
		Use:   "families",
		Short: "List known processor family IDs",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			for _, name := range familyNames() {
				fmt.Fprintf(a.OutWriter, "%-12s 0x%08X\n", name, uf2.Families[name])
			}
		},
	}
}

// resolveFamily accepts either a known family name or a literal ID
// such as 0x68ED2B88. Empty means no family ID.
func resolveFamily(family string) (uint32, error) {
	if family == "" {
		return 0, nil
	}
	if id, ok := uf2.Families[strings.ToUpper(family)]; ok {
		return id, nil
	}
	id, err := strconv.ParseUint(family, 0, 32)
	if err != nil {
		return 0, fmt.Errorf("unknown family %q, expected one of %s or a hex ID", family, strings.Join(familyNames(), ", "))
	}
	return uint32(id), nil
}

func familyNames() []string {
	names := make([]string, 0, len(uf2.Families))
	for name := range uf2.Families {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func completeFamily(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return familyNames(), cobra.ShellCompDirectiveNoFileComp
}
