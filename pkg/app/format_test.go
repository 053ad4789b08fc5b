package app

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDataFormatSet(t *testing.T) {
	var f DataFormat
	require.NoError(t, f.Set("hex"))
	require.Equal(t, DataFormatHex, f)
	require.Error(t, f.Set("base64"))
}

func TestReadDataRaw(t *testing.T) {
	got, err := ReadData(strings.NewReader("\x00\xFF\x10"), DataFormatRaw)
	require.NoError(t, err)
	require.Equal(t, []byte{0x00, 0xFF, 0x10}, got)
}

func TestReadDataHex(t *testing.T) {
	got, err := ReadData(strings.NewReader("c0 ff\nee\n"), DataFormatHex)
	require.NoError(t, err)
	require.Equal(t, []byte{0xC0, 0xFF, 0xEE}, got)

	_, err = ReadData(strings.NewReader("zz"), DataFormatHex)
	require.Error(t, err)
}

func TestWriteData(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteData(&buf, []byte{0xC0, 0xFF, 0xEE}, DataFormatHex))
	require.Equal(t, "c0ffee\n", buf.String())

	buf.Reset()
	require.NoError(t, WriteData(&buf, []byte{0xC0, 0xFF, 0xEE}, DataFormatRaw))
	require.Equal(t, []byte{0xC0, 0xFF, 0xEE}, buf.Bytes())
}
