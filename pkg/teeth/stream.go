package teeth

// StreamDecoder decodes a 7-bit-clean stream incrementally. Bytes may
// arrive in arbitrary slices across multiple Feed calls; the decoder
// carries partial-group state between calls and only emits bytes once a
// full group of seven data bytes is available. Call Flush when the
// transport signals end of message to drain the final, possibly short,
// group.
//
// A StreamDecoder is not safe for concurrent use. Once a call returns an
// error the decoder is poisoned and every later call returns the same
// error; allocate a fresh decoder per message.
type StreamDecoder struct {
	strict     bool
	err        error
	offset     int
	header     byte
	haveHeader bool
	n          int
	data       [BlockSize]byte
}

// NewStreamDecoder returns a decoder with permissive header handling,
// matching Decode.
func NewStreamDecoder() *StreamDecoder {
	return &StreamDecoder{}
}

// NewStrictStreamDecoder returns a decoder matching DecodeStrict.
func NewStrictStreamDecoder() *StreamDecoder {
	return &StreamDecoder{strict: true}
}

// Feed consumes the next chunk of the encoded stream and returns the raw
// bytes of every group completed by it. The returned slice is freshly
// allocated and may be empty.
func (d *StreamDecoder) Feed(p []byte) ([]byte, error) {
	if d.err != nil {
		return nil, d.err
	}

	var out []byte
	for _, b := range p {
		if b > 0x7F {
			d.err = &InvalidByteError{Offset: d.offset, Value: b}
			return nil, d.err
		}

		if !d.haveHeader {
			d.header = b
			d.haveHeader = true
		} else {
			d.data[d.n] = b
			d.n++
			if d.n == BlockSize {
				out = appendGroup(out, d.header, d.data[:d.n])
				d.haveHeader = false
				d.n = 0
			}
		}
		d.offset++
	}

	return out, nil
}

// Flush drains the trailing short group, if any. It fails with a
// TruncatedBlockError when the stream ended on a bare header. After a
// successful Flush the decoder is ready for another message.
func (d *StreamDecoder) Flush() ([]byte, error) {
	if d.err != nil {
		return nil, d.err
	}
	if !d.haveHeader {
		return nil, nil
	}
	if d.n == 0 {
		d.err = &TruncatedBlockError{Offset: d.offset - 1}
		return nil, d.err
	}
	if d.strict && d.header>>d.n != 0 {
		d.err = &HeaderBitsError{Offset: d.offset - 1 - d.n, Header: d.header, N: d.n}
		return nil, d.err
	}

	out := appendGroup(nil, d.header, d.data[:d.n])
	d.haveHeader = false
	d.n = 0
	return out, nil
}

func appendGroup(dst []byte, header byte, data []byte) []byte {
	for i, b := range data {
		dst = append(dst, b|((header>>i)&1)<<7)
	}
	return dst
}
