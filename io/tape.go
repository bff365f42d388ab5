package io

import (
	"io"
)

// Tape provides sequential I/O over byte streams. Input is read from an
// io.Reader one byte per value, and output bytes are collected until
// Flush writes them to the io.Writer.
type Tape struct {
	Input     io.Reader
	Output    io.Writer
	EndOfTape bool // If set, an exhausted input delivers END_OF_INPUT.

	exhausted bool
	pending   []byte
}

var _ Input = (*Tape)(nil)
var _ Output = (*Tape)(nil)

// Receive reads the next byte from the input stream.
// Once the stream ends, Receive reports END_OF_INPUT if EndOfTape is set,
// and no value otherwise.
func (tc *Tape) Receive() (value uint32, ok bool) {
	if tc.Input == nil || tc.exhausted {
		return tc.end()
	}

	var one [1]byte
	n, err := tc.Input.Read(one[:])
	if n == 0 {
		if err == nil {
			// Nothing ready yet.
			return
		}
		tc.exhausted = true
		return tc.end()
	}

	value = uint32(one[0])
	ok = true
	return
}

func (tc *Tape) end() (value uint32, ok bool) {
	if tc.EndOfTape {
		value = END_OF_INPUT
		ok = true
	}
	return
}

// Send collects a byte for the output stream.
func (tc *Tape) Send(value uint8) (err error) {
	if tc.Output == nil {
		err = ErrChannelClosed
		return
	}

	tc.pending = append(tc.pending, value)

	return
}

// Write collects bytes for the output stream, in order with Send.
func (tc *Tape) Write(p []byte) (n int, err error) {
	if tc.Output == nil {
		err = ErrChannelClosed
		return
	}

	tc.pending = append(tc.pending, p...)
	n = len(p)

	return
}

// Flush writes the collected output bytes to the output stream.
func (tc *Tape) Flush() (err error) {
	if len(tc.pending) == 0 {
		return
	}

	_, err = tc.Output.Write(tc.pending)
	tc.pending = tc.pending[:0]

	return
}
