// Package io provides the input, output and program image collaborators of
// the um32 machine. Input sources deliver one value at a time without
// blocking the machine, output sinks accept one byte at a time, and Rom
// holds a big-endian program image.
package io

const (
	// END_OF_INPUT is delivered by sources that report exhaustion.
	END_OF_INPUT = ^uint32(0)
)

// Input is a source of input values for the machine.
type Input interface {
	// Receive returns the next input value. If no value is ready yet,
	// ok is false and the machine will ask again later.
	Receive() (value uint32, ok bool)
}

// Output is a sink of output bytes from the machine.
type Output interface {
	// Send writes a single byte to the sink.
	Send(value uint8) error
}
