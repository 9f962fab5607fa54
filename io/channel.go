// Package io provides the I/O port devices and program image sources for
// the avrsim emulator.
//
// A Port is attached to one of the 64 I/O addresses of the CPU. Reads
// (IN, or a load from the port's data address) Receive a byte from the
// device, writes (OUT, or a store) Send a byte to it. The Rom type holds a
// program image read from raw binary or Intel HEX files.
package io

// Port defines the interface for all I/O port devices.
type Port interface {
	// Rewind resets the port to its initial state.
	Rewind()
	// Receive returns the next byte from the device, if one is available.
	Receive() (value uint8, ok bool)
	// Send writes a single byte to the device.
	Send(value uint8) error
}
