package sysex

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/wntrblm/wintertools/pkg/teeth"
)

func TestMarshal(t *testing.T) {
	m := Message{Marker: 0x77, Command: 0x01, Data: []byte{0x10, 0x20}}
	raw, err := m.Marshal()
	require.NoError(t, err)
	require.Equal(t, []byte{Start, 0x77, 0x01, 0x10, 0x20, End}, raw)
}

func TestMarshalEmptyBody(t *testing.T) {
	raw, err := Message{Marker: 0x77, Command: 0x05}.Marshal()
	require.NoError(t, err)
	require.Equal(t, []byte{Start, 0x77, 0x05, End}, raw)
}

func TestMarshalRejectsDirtyBytes(t *testing.T) {
	_, err := Message{Marker: 0x80, Command: 0x01}.Marshal()
	require.ErrorIs(t, err, ErrFraming)

	_, err = Message{Marker: 0x77, Command: 0x01, Data: []byte{0xFF}}.Marshal()
	require.ErrorIs(t, err, ErrFraming)
}

func TestMarshalEncoded(t *testing.T) {
	m := Message{Marker: 0x77, Command: 0x02, Data: []byte{0xFF, 0x00}}
	raw, err := m.MarshalEncoded()
	require.NoError(t, err)
	require.Equal(t, []byte{Start, 0x77, 0x02, 0x01, 0x7F, 0x00, End}, raw)
}

func TestUnmarshal(t *testing.T) {
	m, err := Unmarshal([]byte{Start, 0x77, 0x01, 0x10, 0x20, End})
	require.NoError(t, err)
	require.Equal(t, byte(0x77), m.Marker)
	require.Equal(t, byte(0x01), m.Command)
	require.Equal(t, []byte{0x10, 0x20}, m.Data)
}

func TestUnmarshalFramingErrors(t *testing.T) {
	var framing *FramingError

	_, err := Unmarshal([]byte{Start, 0x77, End})
	require.ErrorAs(t, err, &framing)

	_, err = Unmarshal([]byte{0x00, 0x77, 0x01, End})
	require.ErrorAs(t, err, &framing)

	_, err = Unmarshal([]byte{Start, 0x77, 0x01, 0x00})
	require.ErrorAs(t, err, &framing)

	_, err = Unmarshal([]byte{Start, 0x77, 0x01, 0x90, End})
	require.ErrorAs(t, err, &framing)
	require.ErrorIs(t, err, ErrFraming)
}

func TestUnmarshalEncodedRoundTrip(t *testing.T) {
	payload := []byte{0xDE, 0xAD, 0xBE, 0xEF, 0x00, 0x7F, 0x80, 0xFF}
	raw, err := Message{Marker: 0x77, Command: 0x03, Data: payload}.MarshalEncoded()
	require.NoError(t, err)

	m, err := UnmarshalEncoded(raw)
	require.NoError(t, err)
	require.Equal(t, payload, m.Data)
}

func TestUnmarshalEncodedMalformedBody(t *testing.T) {
	// A lone teeth header with no data bytes following it.
	_, err := UnmarshalEncoded([]byte{Start, 0x77, 0x03, 0x00, End})
	require.ErrorIs(t, err, teeth.ErrMalformed)
}

// fakePort records sent messages and plays back queued responses.
type fakePort struct {
	sent      [][]byte
	responses [][]byte
}

func (p *fakePort) Send(msg []byte) error {
	p.sent = append(p.sent, msg)
	return nil
}

func (p *fakePort) Receive(ctx context.Context) ([]byte, error) {
	if len(p.responses) == 0 {
		<-ctx.Done()
		return nil, ctx.Err()
	}
	resp := p.responses[0]
	p.responses = p.responses[1:]
	return resp, nil
}

func TestDeviceExchangeEncoded(t *testing.T) {
	response, err := Message{Marker: 0x77, Command: 0x03, Data: []byte{0xCA, 0xFE}}.MarshalEncoded()
	require.NoError(t, err)

	port := &fakePort{responses: [][]byte{response}}
	dev := NewDevice(port, 0x77)

	data, err := dev.ExchangeEncoded(context.Background(), 0x03, []byte{0x80, 0x01})
	require.NoError(t, err)
	require.Equal(t, []byte{0xCA, 0xFE}, data)

	require.Len(t, port.sent, 1)
	sent, err := UnmarshalEncoded(port.sent[0])
	require.NoError(t, err)
	require.Equal(t, byte(0x03), sent.Command)
	require.Equal(t, []byte{0x80, 0x01}, sent.Data)
}

func TestDeviceRejectsForeignMarker(t *testing.T) {
	response, err := Message{Marker: 0x12, Command: 0x03}.Marshal()
	require.NoError(t, err)

	port := &fakePort{responses: [][]byte{response}}
	dev := NewDevice(port, 0x77)

	_, err = dev.Exchange(context.Background(), 0x03, nil)
	require.ErrorIs(t, err, ErrFraming)
}
