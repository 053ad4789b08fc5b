// Package uf2 converts between raw firmware images and the UF2 flashing
// format used by Microsoft's and Adafruit's bootloaders. A UF2 file is a
// sequence of self-describing 512-byte blocks, each carrying up to 256
// bytes of payload plus a target address, which makes it safe to copy to
// a bootloader mass-storage drive in any order.
//
// Format reference: https://github.com/microsoft/uf2
package uf2

import (
	"encoding/binary"
	"errors"
	"fmt"
)

const (
	MagicStart0 uint32 = 0x0A324655 // "UF2\n"
	MagicStart1 uint32 = 0x9E5D5157 // Randomly selected
	MagicEnd    uint32 = 0x0AB16F30 // Ditto
)

const (
	// BlockSize is the fixed on-disk size of a UF2 block.
	BlockSize = 512

	// PayloadSize is the number of firmware bytes carried per block.
	PayloadSize = 256

	headerSize     = 32
	maxPayloadSize = 476
)

// Block flags.
const (
	FlagNotMainFlash uint32 = 0x00000001
	FlagFamilyID     uint32 = 0x00002000
)

// Families maps processor family names to their UF2 family IDs.
var Families = map[string]uint32{
	"SAMD21":     0x68ED2B88,
	"SAML21":     0x1851780A,
	"SAMD51":     0x55114460,
	"NRF52":      0x1B57745F,
	"STM32F1":    0x5EE21072,
	"STM32F4":    0x57755A57,
	"ATMEGA32":   0x16573617,
	"MIMXRT10XX": 0x4FB2D5BD,
}

// ErrInvalidBlock matches any structural error returned by ToBin.
var ErrInvalidBlock = errors.New("uf2: invalid block")

// BlockError reports a structurally invalid block at a byte offset in
// the UF2 input.
type BlockError struct {
	Offset int
	Reason string
}

func (e *BlockError) Error() string {
	return fmt.Sprintf("uf2: invalid block at offset %d: %s", e.Offset, e.Reason)
}

func (e *BlockError) Is(target error) bool { return target == ErrInvalidBlock }

// FromBin packs a raw firmware image into UF2 blocks targeting
// baseAddr. A non-zero familyID is recorded in every block and the
// family-ID flag is set.
func FromBin(buf []byte, baseAddr uint32, familyID uint32) []byte {
	numBlocks := (len(buf) + PayloadSize - 1) / PayloadSize
	out := make([]byte, 0, numBlocks*BlockSize)

	var flags uint32
	if familyID != 0 {
		flags |= FlagFamilyID
	}

	for blockNo := 0; blockNo < numBlocks; blockNo++ {
		ptr := blockNo * PayloadSize
		chunk := buf[ptr:]
		if len(chunk) > PayloadSize {
			chunk = chunk[:PayloadSize]
		}

		var block [BlockSize]byte
		binary.LittleEndian.PutUint32(block[0:], MagicStart0)
		binary.LittleEndian.PutUint32(block[4:], MagicStart1)
		binary.LittleEndian.PutUint32(block[8:], flags)
		binary.LittleEndian.PutUint32(block[12:], baseAddr+uint32(ptr))
		binary.LittleEndian.PutUint32(block[16:], PayloadSize)
		binary.LittleEndian.PutUint32(block[20:], uint32(blockNo))
		binary.LittleEndian.PutUint32(block[24:], uint32(numBlocks))
		binary.LittleEndian.PutUint32(block[28:], familyID)
		copy(block[headerSize:], chunk)
		binary.LittleEndian.PutUint32(block[BlockSize-4:], MagicEnd)

		out = append(out, block[:]...)
	}

	return out
}

// ToBin unpacks a UF2 file back into a contiguous firmware image.
// Blocks with bad magic are skipped, no-flash blocks are ignored, and
// gaps between block addresses are zero filled. Blocks must appear in
// ascending address order.
func ToBin(buf []byte) ([]byte, error) {
	numBlocks := len(buf) / BlockSize
	var out []byte
	var curAddr uint32
	haveAddr := false

	for blockNo := 0; blockNo < numBlocks; blockNo++ {
		ptr := blockNo * BlockSize
		block := buf[ptr : ptr+BlockSize]

		if binary.LittleEndian.Uint32(block[0:]) != MagicStart0 ||
			binary.LittleEndian.Uint32(block[4:]) != MagicStart1 {
			continue
		}

		flags := binary.LittleEndian.Uint32(block[8:])
		if flags&FlagNotMainFlash != 0 {
			continue
		}

		dataLen := binary.LittleEndian.Uint32(block[16:])
		if dataLen > maxPayloadSize {
			return nil, &BlockError{Offset: ptr, Reason: fmt.Sprintf("payload size %d exceeds %d", dataLen, maxPayloadSize)}
		}

		newAddr := binary.LittleEndian.Uint32(block[12:])
		if !haveAddr {
			curAddr = newAddr
			haveAddr = true
		}

		if newAddr < curAddr {
			return nil, &BlockError{Offset: ptr, Reason: "block out of order"}
		}
		padding := newAddr - curAddr
		if padding > 10*1024*1024 {
			return nil, &BlockError{Offset: ptr, Reason: fmt.Sprintf("more than 10M of padding needed (%d bytes)", padding)}
		}
		if padding%4 != 0 {
			return nil, &BlockError{Offset: ptr, Reason: "non-word padding size"}
		}

		out = append(out, make([]byte, padding)...)
		out = append(out, block[headerSize:headerSize+dataLen]...)
		curAddr = newAddr + dataLen
	}

	return out, nil
}
