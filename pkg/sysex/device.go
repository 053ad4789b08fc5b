package sysex

import (
	"context"
	"fmt"

	"github.com/wntrblm/wintertools/pkg/teeth"
)

// Port is a bidirectional MIDI connection able to carry System
// Exclusive messages. Implementations wrap whatever MIDI or serial
// backend is available; Receive blocks until a full message arrives or
// ctx is done.
type Port interface {
	Send(msg []byte) error
	Receive(ctx context.Context) ([]byte, error)
}

// Device talks to a single Winterbloom device over a Port. All messages
// carry the device family's SysEx marker byte.
type Device struct {
	port   Port
	marker byte
}

// NewDevice wraps a port for a device identified by marker.
func NewDevice(port Port, marker byte) *Device {
	return &Device{port: port, marker: marker}
}

// Send transmits a command with a 7-bit-clean body and does not wait for
// a response.
func (d *Device) Send(command byte, data []byte) error {
	raw, err := Message{Marker: d.marker, Command: command, Data: data}.Marshal()
	if err != nil {
		return err
	}
	return d.port.Send(raw)
}

// SendEncoded transmits a command with an arbitrary binary body,
// teeth-encoding it for the wire.
func (d *Device) SendEncoded(command byte, data []byte) error {
	raw, err := Message{Marker: d.marker, Command: command, Data: data}.MarshalEncoded()
	if err != nil {
		return err
	}
	return d.port.Send(raw)
}

// Exchange sends a command and returns the body of the device's
// response. Both bodies travel as-is and must be 7-bit clean.
func (d *Device) Exchange(ctx context.Context, command byte, data []byte) ([]byte, error) {
	if err := d.Send(command, data); err != nil {
		return nil, err
	}
	return d.receive(ctx)
}

// ExchangeEncoded sends a command and returns the response body, with
// both bodies run through the teeth codec.
func (d *Device) ExchangeEncoded(ctx context.Context, command byte, data []byte) ([]byte, error) {
	if err := d.SendEncoded(command, data); err != nil {
		return nil, err
	}
	resp, err := d.receive(ctx)
	if err != nil {
		return nil, err
	}
	return teeth.Decode(resp)
}

func (d *Device) receive(ctx context.Context) ([]byte, error) {
	raw, err := d.port.Receive(ctx)
	if err != nil {
		return nil, err
	}
	m, err := Unmarshal(raw)
	if err != nil {
		return nil, err
	}
	if m.Marker != d.marker {
		return nil, &FramingError{Reason: fmt.Sprintf("response marker 0x%02X does not match device marker 0x%02X", m.Marker, d.marker)}
	}
	return m.Data, nil
}
