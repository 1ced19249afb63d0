// Package storage maps arena files into memory and manages their header.
//
// FILE LAYOUT:
// ┌─────────────────────────────────────────────────────────────────────┐
// │ Header page (HeaderSize bytes)                                      │
// │ Magic(4) Version(2) Reserved(2) SlotSize(4) Capacity(4) Checksum(8) │
// ├─────────────────────────────────────────────────────────────────────┤
// │ Slot[0] (reserved sentinel)                                         │
// ├─────────────────────────────────────────────────────────────────────┤
// │ Slot[1] ... Slot[Capacity-1]                                        │
// └─────────────────────────────────────────────────────────────────────┘
package storage

import (
	"encoding/binary"
	"errors"

	"github.com/cespare/xxhash/v2"
)

const (
	// HeaderSize keeps the slot array page aligned.
	HeaderSize = 4096

	// MagicNumber for file format identification ("avlt" in hex)
	MagicNumber uint32 = 0x61766c74

	FormatVersion uint16 = 1

	headerLen     = 24
	checksumStart = 16
)

var (
	ErrInvalidMagicNumber = errors.New("invalid magic number")
	ErrInvalidVersion     = errors.New("invalid format version")
	ErrInvalidSlotSize    = errors.New("invalid slot size")
	ErrInvalidChecksum    = errors.New("invalid checksum")
	ErrUnsupported        = errors.New("memory-mapped arenas are not supported on this platform")
	ErrClosed             = errors.New("storage closed")
)

// Header describes the slot array that follows it.
type Header struct {
	Magic    uint32
	Version  uint16
	SlotSize uint32 // Size of one slot in bytes
	Capacity uint32 // Number of slots, sentinel included
	Checksum uint64 // xxhash64 of the encoded fields above
}

// NewHeader returns a header for a fresh file.
func NewHeader(slotSize, capacity uint32) Header {
	h := Header{
		Magic:    MagicNumber,
		Version:  FormatVersion,
		SlotSize: slotSize,
		Capacity: capacity,
	}
	h.Checksum = h.CalculateChecksum()
	return h
}

func (h *Header) encode(buf []byte) {
	binary.LittleEndian.PutUint32(buf[0:], h.Magic)
	binary.LittleEndian.PutUint16(buf[4:], h.Version)
	binary.LittleEndian.PutUint16(buf[6:], 0)
	binary.LittleEndian.PutUint32(buf[8:], h.SlotSize)
	binary.LittleEndian.PutUint32(buf[12:], h.Capacity)
	binary.LittleEndian.PutUint64(buf[16:], h.Checksum)
}

// CalculateChecksum hashes every field except Checksum itself.
func (h *Header) CalculateChecksum() uint64 {
	var buf [headerLen]byte
	h.encode(buf[:])
	return xxhash.Sum64(buf[:checksumStart])
}

// Validate checks the header against the slot size the caller expects.
func (h *Header) Validate(slotSize uint32) error {
	if h.Magic != MagicNumber {
		return ErrInvalidMagicNumber
	}
	if h.Version != FormatVersion {
		return ErrInvalidVersion
	}
	if h.Checksum != h.CalculateChecksum() {
		return ErrInvalidChecksum
	}
	if h.SlotSize != slotSize {
		return ErrInvalidSlotSize
	}
	return nil
}

// WriteHeader stores h, with a fresh checksum, at the start of buf.
func WriteHeader(buf []byte, h *Header) {
	h.Checksum = h.CalculateChecksum()
	h.encode(buf)
}

// ReadHeader decodes the header at the start of buf.
func ReadHeader(buf []byte) Header {
	return Header{
		Magic:    binary.LittleEndian.Uint32(buf[0:]),
		Version:  binary.LittleEndian.Uint16(buf[4:]),
		SlotSize: binary.LittleEndian.Uint32(buf[8:]),
		Capacity: binary.LittleEndian.Uint32(buf[12:]),
		Checksum: binary.LittleEndian.Uint64(buf[16:]),
	}
}

// Stats holds mapping counters.
type Stats struct {
	Remaps uint64
	Syncs  uint64
}
