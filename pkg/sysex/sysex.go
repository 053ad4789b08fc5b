// Package sysex frames MIDI System Exclusive messages for Winterbloom
// devices. A message on the wire is [Start, marker, command, body..., End]
// where marker identifies the device family and body is 7-bit clean,
// usually by way of the teeth codec. The package only deals in bytes;
// actual MIDI port I/O is supplied by the caller through the Port
// interface.
package sysex

import (
	"errors"
	"fmt"

	"github.com/wntrblm/wintertools/pkg/teeth"
)

// SysEx framing bytes. These are the only bytes in a MIDI stream with
// the high bit set that a device will see during an exclusive transfer.
const (
	Start byte = 0xF0
	End   byte = 0xF7
)

// ErrFraming matches any framing error returned by Unmarshal.
var ErrFraming = errors.New("sysex: bad framing")

// FramingError describes why a byte sequence is not a valid SysEx
// message.
type FramingError struct {
	Reason string
}

func (e *FramingError) Error() string { return "sysex: " + e.Reason }

func (e *FramingError) Is(target error) bool { return target == ErrFraming }

// Message is a single System Exclusive message. Marker and Command must
// be 7-bit clean; Data holds the message body between the command byte
// and the End byte.
type Message struct {
	Marker  byte
	Command byte
	Data    []byte
}

// Marshal renders the message into wire bytes. Data must already be
// 7-bit clean; use MarshalEncoded for arbitrary binary payloads.
func (m Message) Marshal() ([]byte, error) {
	if m.Marker > 0x7F {
		return nil, &FramingError{Reason: fmt.Sprintf("marker 0x%02X is not 7-bit clean", m.Marker)}
	}
	if m.Command > 0x7F {
		return nil, &FramingError{Reason: fmt.Sprintf("command 0x%02X is not 7-bit clean", m.Command)}
	}
	for i, b := range m.Data {
		if b > 0x7F {
			return nil, &FramingError{Reason: fmt.Sprintf("data byte 0x%02X at index %d is not 7-bit clean", b, i)}
		}
	}

	out := make([]byte, 0, len(m.Data)+4)
	out = append(out, Start, m.Marker, m.Command)
	out = append(out, m.Data...)
	out = append(out, End)
	return out, nil
}

// MarshalEncoded renders the message with its data run through the
// teeth encoder, so Data may contain any bytes.
func (m Message) MarshalEncoded() ([]byte, error) {
	encoded := m
	encoded.Data = teeth.Encode(m.Data)
	return encoded.Marshal()
}

// Unmarshal parses wire bytes into a Message. The returned Data aliases
// raw.
func Unmarshal(raw []byte) (Message, error) {
	if len(raw) < 4 {
		return Message{}, &FramingError{Reason: fmt.Sprintf("message too short: %d bytes", len(raw))}
	}
	if raw[0] != Start {
		return Message{}, &FramingError{Reason: fmt.Sprintf("expected start byte 0x%02X, got 0x%02X", Start, raw[0])}
	}
	if raw[len(raw)-1] != End {
		return Message{}, &FramingError{Reason: fmt.Sprintf("expected end byte 0x%02X, got 0x%02X", End, raw[len(raw)-1])}
	}

	m := Message{
		Marker:  raw[1],
		Command: raw[2],
		Data:    raw[3 : len(raw)-1],
	}
	if m.Marker > 0x7F {
		return Message{}, &FramingError{Reason: fmt.Sprintf("marker 0x%02X is not 7-bit clean", m.Marker)}
	}
	if m.Command > 0x7F {
		return Message{}, &FramingError{Reason: fmt.Sprintf("command 0x%02X is not 7-bit clean", m.Command)}
	}
	for i, b := range m.Data {
		if b > 0x7F {
			return Message{}, &FramingError{Reason: fmt.Sprintf("data byte 0x%02X at index %d is not 7-bit clean", b, i)}
		}
	}
	return m, nil
}

// UnmarshalEncoded parses wire bytes and runs the body through the
// teeth decoder.
func UnmarshalEncoded(raw []byte) (Message, error) {
	m, err := Unmarshal(raw)
	if err != nil {
		return Message{}, err
	}
	decoded, err := teeth.Decode(m.Data)
	if err != nil {
		return Message{}, err
	}
	m.Data = decoded
	return m, nil
}
