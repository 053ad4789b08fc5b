// Package teeth implements the 7-bit-clean framing codec used to move
// arbitrary binary data through transports that reserve the high bit of
// every byte, such as the body of a MIDI System Exclusive message.
//
// The stream is a sequence of groups. Each group is one header byte
// followed by up to seven data bytes. Bit i of the header holds the most
// significant bit of data byte i; the data bytes themselves are emitted
// with bit 7 cleared. The codec adds no message framing, length prefix,
// or checksum - delimiting messages is the transport's job.
package teeth

import (
	"errors"
	"fmt"
)

// BlockSize is the number of raw bytes covered by a single header byte.
// It is fixed by the wire format; changing it breaks interoperability
// with every existing encoded stream.
const BlockSize = 7

// ErrMalformed matches any error returned by Decode via errors.Is.
var ErrMalformed = errors.New("teeth: malformed input")

// InvalidByteError reports an input byte with the high bit set. Such a
// byte can never appear in a conformant encoded stream.
type InvalidByteError struct {
	Offset int
	Value  byte
}

func (e *InvalidByteError) Error() string {
	return fmt.Sprintf("teeth: byte 0x%02X at offset %d has the high bit set", e.Value, e.Offset)
}

func (e *InvalidByteError) Is(target error) bool { return target == ErrMalformed }

// TruncatedBlockError reports a header byte with no data bytes after it.
// Offset is the position of the offending header.
type TruncatedBlockError struct {
	Offset int
}

func (e *TruncatedBlockError) Error() string {
	return fmt.Sprintf("teeth: truncated block at offset %d: header with no data", e.Offset)
}

func (e *TruncatedBlockError) Is(target error) bool { return target == ErrMalformed }

// HeaderBitsError reports, in strict mode only, a short trailing block
// whose unused header bits are not zero.
type HeaderBitsError struct {
	Offset int
	Header byte
	N      int
}

func (e *HeaderBitsError) Error() string {
	return fmt.Sprintf("teeth: header 0x%02X at offset %d sets bits beyond its %d data bytes", e.Header, e.Offset, e.N)
}

func (e *HeaderBitsError) Is(target error) bool { return target == ErrMalformed }

// Encode converts raw bytes into a 7-bit-clean stream. It is total: any
// input, including empty, encodes successfully. The output length is
// len(raw) plus one header byte per started block of seven.
func Encode(raw []byte) []byte {
	if len(raw) == 0 {
		return nil
	}

	blocks := (len(raw) + BlockSize - 1) / BlockSize
	out := make([]byte, 0, len(raw)+blocks)

	for start := 0; start < len(raw); start += BlockSize {
		end := start + BlockSize
		if end > len(raw) {
			end = len(raw)
		}
		block := raw[start:end]

		var header byte
		for i, b := range block {
			header |= (b >> 7) << i
		}

		out = append(out, header)
		for _, b := range block {
			out = append(out, b&0x7F)
		}
	}

	return out
}

// Decode converts a 7-bit-clean stream back into raw bytes. It is the
// exact inverse of Encode. Unused header bits in a short trailing block
// are ignored; use DecodeStrict to reject them. On error no partial
// output is returned.
func Decode(in []byte) ([]byte, error) {
	return decode(in, false)
}

// DecodeStrict behaves like Decode but additionally fails with a
// HeaderBitsError when a short trailing block's header sets bits beyond
// its data bytes. A conformant encoder always leaves those bits zero.
func DecodeStrict(in []byte) ([]byte, error) {
	return decode(in, true)
}

func decode(in []byte, strict bool) ([]byte, error) {
	if len(in) == 0 {
		return nil, nil
	}

	out := make([]byte, 0, len(in)-len(in)/(BlockSize+1))

	for pos := 0; pos < len(in); {
		header := in[pos]
		if header > 0x7F {
			return nil, &InvalidByteError{Offset: pos, Value: header}
		}

		n := len(in) - pos - 1
		if n == 0 {
			return nil, &TruncatedBlockError{Offset: pos}
		}
		if n > BlockSize {
			n = BlockSize
		}
		if strict && n < BlockSize && header>>n != 0 {
			return nil, &HeaderBitsError{Offset: pos, Header: header, N: n}
		}

		data := in[pos+1 : pos+1+n]
		for i, b := range data {
			if b > 0x7F {
				return nil, &InvalidByteError{Offset: pos + 1 + i, Value: b}
			}
			out = append(out, b|((header>>i)&1)<<7)
		}

		pos += 1 + n
	}

	return out, nil
}
