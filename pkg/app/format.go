package app

import (
	"encoding/hex"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
)

// DataFormat controls how binary data is read and written on the
// command line.
type DataFormat string

const (
	DataFormatRaw DataFormat = "raw"
	DataFormatHex DataFormat = "hex"
)

func (e *DataFormat) String() string {
	return string(*e)
}

func (e *DataFormat) Set(v string) error {
	switch v {
	case "raw", "hex":
		*e = DataFormat(v)
		return nil
	default:
		return fmt.Errorf("must be one of: raw, hex")
	}
}

func (e *DataFormat) Type() string {
	return "DataFormat"
}

// CompleteDataFormat provides shell completion for --format.
func CompleteDataFormat(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	return []string{"raw", "hex"}, cobra.ShellCompDirectiveNoFileComp
}

// ReadData reads all of r and decodes it according to format. Hex
// input may contain whitespace.
func ReadData(r io.Reader, format DataFormat) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	if format == DataFormatHex {
		s := strings.Join(strings.Fields(string(data)), "")
		return hex.DecodeString(s)
	}
	return data, nil
}

// WriteData writes data to w according to format. Hex output gets a
// trailing newline.
func WriteData(w io.Writer, data []byte, format DataFormat) error {
	if format == DataFormatHex {
		_, err := fmt.Fprintln(w, hex.EncodeToString(data))
		return err
	}
	_, err := w.Write(data)
	return err
}
