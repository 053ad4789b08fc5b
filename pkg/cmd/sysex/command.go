package sysex

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wntrblm/wintertools/pkg/app"
	"github.com/wntrblm/wintertools/pkg/sysex"
)

// DefaultMarker is Winterbloom's manufacturer marker byte.
const DefaultMarker = 0x77

// NewCommand returns the "wt sysex" command with subcommands.
func NewCommand(a *app.App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sysex",
		Short: "Wrap and unwrap MIDI System Exclusive messages",
	}

	cmd.AddCommand(
		newWrapCommand(a),
		newUnwrapCommand(a),
	)

	return cmd
}

func newWrapCommand(a *app.App) *cobra.Command {
	var (
		inFormat  = app.DataFormatRaw
		outFormat = app.DataFormatHex
		marker    uint8
		command   uint8
		encode    bool
	)

	cmd := &cobra.Command{
		Use:   "wrap [FILE]",
		Short: "Wrap a payload in a SysEx message",
		Long:  "Frame a payload as a System Exclusive message for the given command. With --encode the payload may contain arbitrary bytes and is packed into the 7-bit-safe format first; without it every payload byte must already be below 0x80.",
		Example: `  wt sysex wrap --command 0x13 --encode settings.bin
  echo -n "0102" | wt sysex wrap --command 0x01 --input hex`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readInput(a, args, inFormat)
			if err != nil {
				return err
			}

			m := sysex.Message{Marker: marker, Command: command, Data: data}
			var raw []byte
			if encode {
				raw, err = m.MarshalEncoded()
			} else {
				raw, err = m.Marshal()
			}
			if err != nil {
				return err
			}
			return app.WriteData(a.OutWriter, raw, outFormat)
		},
	}

	cmd.Flags().VarP(&inFormat, "input", "i", "Input format: raw, hex")
	cmd.Flags().VarP(&outFormat, "output", "o", "Output format: raw, hex")
	cmd.Flags().Uint8Var(&marker, "marker", DefaultMarker, "Manufacturer marker byte")
	cmd.Flags().Uint8Var(&command, "command", 0, "Command byte")
	cmd.MarkFlagRequired("command")
	cmd.RegisterFlagCompletionFunc("input", app.CompleteDataFormat)
	cmd.RegisterFlagCompletionFunc("output", app.CompleteDataFormat)

	return cmd
}

func newUnwrapCommand(a *app.App) *cobra.Command {
	var (
		inFormat  = app.DataFormatRaw
		outFormat = app.DataFormatRaw
		decode    bool
	)

	cmd := &cobra.Command{
		Use:   "unwrap [FILE]",
		Short: "Extract the payload from a SysEx message",
		Long:  "Strip the SysEx framing and print the payload to stdout. The marker and command bytes are reported on stderr. With --decode the payload is additionally unpacked from the 7-bit-safe format.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := readInput(a, args, inFormat)
			if err != nil {
				return err
			}

			unmarshal := sysex.Unmarshal
			if decode {
				unmarshal = sysex.UnmarshalEncoded
			}
			m, err := unmarshal(raw)
			if err != nil {
				return err
			}

			fmt.Fprintf(a.ErrWriter, "marker: 0x%02X command: 0x%02X length: %d\n", m.Marker, m.Command, len(m.Data))
			return app.WriteData(a.OutWriter, m.Data, outFormat)
		},
	}

	cmd.Flags().VarP(&inFormat, "input", "i", "Input format: raw, hex")
	cmd.Flags().VarP(&outFormat, "output", "o", "Output format: raw, hex")
	cmd.Flags().BoolVar(&decode, "decode", false, "Unpack the payload from the 7-bit-safe format")
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
