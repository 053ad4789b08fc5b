package teeth

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wntrblm/wintertools/pkg/app"
	"github.com/wntrblm/wintertools/pkg/teeth"
)

// NewCommand returns the "wt teeth" command with subcommands.
func NewCommand(a *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "teeth",
		Short: "Encode and decode 7-bit-safe byte streams",
		Long:  "Pack arbitrary bytes into a 7-bit-clean stream (and back) so they can travel inside MIDI SysEx payloads. Each group of 7 bytes is prefixed with a header byte carrying the stripped high bits.",
	}

	cmd.AddCommand(
		newEncodeCommand(a),
		newDecodeCommand(a),
	)

	return cmd
}

func newEncodeCommand(a *app.App) *cobra.Command {
	var (
		inFormat  = app.DataFormatRaw
		outFormat = app.DataFormatHex
	)

	cmd := &cobra.Command{
		Use:   "encode [FILE]",
		Short: "Encode bytes into the 7-bit-safe format",
		Example: `  wt teeth encode firmware.bin > firmware.teeth
  echo -n "c0ffee" | wt teeth encode --input hex`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(a, args, inFormat)
			if err != nil {
				return err
			}
			return app.WriteData(a.OutWriter, teeth.Encode(raw), outFormat)
		},
	}

	cmd.Flags().VarP(&inFormat, "input", "i", "Input format: raw, hex")
	cmd.Flags().VarP(&outFormat, "output", "o", "Output format: raw, hex")
	cmd.RegisterFlagCompletionFunc("input", app.CompleteDataFormat)
	cmd.RegisterFlagCompletionFunc("output", app.CompleteDataFormat)

	return cmd
}

func newDecodeCommand(a *app.App) *cobra.Command {
	var (
		inFormat  = app.DataFormatRaw
		outFormat = app.DataFormatRaw
		strict    bool
	)

	cmd := &cobra.Command{
		Use:   "decode [FILE]",
		Short: "Decode a 7-bit-safe stream back into raw bytes",
		Example: `  wt teeth decode firmware.teeth > firmware.bin
  wt teeth decode --strict --input hex --output hex payload.hex`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			encoded, err := readInput(a, args, inFormat)
			if err != nil {
				return err
			}

			decode := teeth.Decode
			if strict {
				decode = teeth.DecodeStrict
			}
			raw, err := decode(encoded)
			if err != nil {
				return err
			}
			return app.WriteData(a.OutWriter, raw, outFormat)
		},
	}

	cmd.Flags().VarP(&inFormat, "input", "i", "Input format: raw, hex")
	cmd.Flags().VarP(&outFormat, "output", "o", "Output format: raw, hex")
	cmd.Flags().BoolVar(&strict, "strict", false, "Reject nonzero unused header bits in trailing blocks")
	cmd.RegisterFlagCompletionFunc("input", app.CompleteDataFormat)
	cmd.RegisterFlagCompletionFunc("output", app.CompleteDataFormat)

	return cmd
}

func readInput(a *app.App, args []string, format app.DataFormat) ([]byte, error) {
	var r io.Reader = a.InReader
	if len(args) == 1 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r = f
	}
	return app.ReadData(r, format)
}
