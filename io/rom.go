package io

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/marcinbor85/gohex"
)

const (
	HEX_FILL       = 0xff    // Bytes inside the image span not covered by a record.
	HEX_SPAN_LIMIT = 1 << 20 // Largest span between the lowest and highest address.
)

// Rom is a program image ready to be installed into memory.
type Rom struct {
	Name     string  // Source name, for diagnostics.
	Origin   uint32  // Address of Data[0].
	Entry    uint32  // Entry point, if HasEntry.
	HasEntry bool    // Set if the image declares an entry point.
	Data     []uint8 // Image bytes.
}

// Start returns the address execution begins at.
func (rom *Rom) Start() uint32 {
	if rom.HasEntry {
		return rom.Entry
	}
	return rom.Origin
}

// End returns the address one past the last image byte.
func (rom *Rom) End() uint32 {
	return rom.Origin + uint32(len(rom.Data))
}

// isHex decides if a file is Intel HEX, by name or by content.
func isHex(name string, data []byte) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".hex", ".ihex", ".ihx":
		return true
	}

	return bytes.HasPrefix(bytes.TrimLeft(data, " \t\r\n"), []byte{':'})
}

// ReadRom reads a program image from a file. Intel HEX files carry their
// own origin; raw binary images are placed at origin.
func ReadRom(name string, origin uint32) (rom *Rom, err error) {
	data, err := os.ReadFile(name)
	if err != nil {
		err = errors.Join(ErrReadFailure, err)
		return
	}

	if isHex(name, data) {
		data = bytes.ReplaceAll(data, []byte("\r\n"), []byte("\n"))
		rom, err = ParseHex(bytes.NewReader(data))
		if err != nil {
			return
		}
		rom.Name = name
		return
	}

	rom = &Rom{
		Name:   name,
		Origin: origin,
		Data:   data,
	}

	return
}

// ParseHex parses an Intel HEX stream. The image spans from the lowest to
// the highest address written; gaps are filled with HEX_FILL. A stream
// that ends before its EOF record is reported as truncated, and records
// after the EOF record are ignored.
func ParseHex(input io.Reader) (rom *Rom, err error) {
	defer func() {
		if err != nil {
			rom = nil
			err = errors.Join(ErrReadFailure, err)
		}
	}()

	mem := gohex.NewMemory()
	err = mem.ParseIntelHex(input)
	if err != nil {
		return
	}

	rom = &Rom{}
	rom.Entry, rom.HasEntry = mem.GetStartAddress()

	segments := mem.GetDataSegments()
	if len(segments) == 0 {
		return
	}

	low := segments[0].Address
	high := segments[0].Address
	for _, segment := range segments {
		low = min(low, segment.Address)
		high = max(high, segment.Address+uint32(len(segment.Data)))
	}

	if high-low > HEX_SPAN_LIMIT {
		err = ErrHexSyntax("image span too large")
		return
	}

	rom.Origin = low
	rom.Data = mem.ToBinary(low, high-low, HEX_FILL)

	return
}
