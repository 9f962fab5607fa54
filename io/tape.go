package io

import (
	"io"
)

// Tape provides sequential byte I/O, in the manner of a serial data
// register. It wraps an io.Reader for input and io.Writer for output.
type Tape struct {
	Input  io.Reader
	Output io.Writer

	// Received and Sent count the bytes moved through the port.
	Received int
	Sent     int
}

var _ Port = (*Tape)(nil)

// Rewind is not possible on a tape; only the counters are cleared.
func (tc *Tape) Rewind() {
	tc.Received = 0
	tc.Sent = 0
}

// Receive reads a single byte from the input stream. A missing input, end
// of input or a read error all report no data.
func (tc *Tape) Receive() (value uint8, ok bool) {
	if tc.Input == nil {
		return
	}

	var one [1]byte
	n, err := tc.Input.Read(one[:])
	if n != 1 || (err != nil && err != io.EOF) {
		return
	}

	tc.Received++
	return one[0], true
}

// Send writes a byte to the output stream. Output without a writer is
// discarded.
func (tc *Tape) Send(value uint8) (err error) {
	if tc.Output == nil {
		return
	}

	_, err = tc.Output.Write([]byte{value})
	if err == nil {
		tc.Sent++
	}

	return
}
