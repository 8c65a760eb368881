package io

import (
	"errors"
	"io"
	"unicode/utf8"
)

// Tape provides sequential I/O operations over byte streams.
// It wraps an io.Reader for input and io.Writer for output.
// A nil Input behaves as an exhausted stream, a nil Output discards.
type Tape struct {
	Input  io.Reader
	Output io.Writer

	Received int // Bytes received since the last rewind.
	Sent     int // Characters sent since the last rewind.
}

var _ Channel = (*Tape)(nil)

// Rewind only clears the counters; a tape cannot be rewound.
func (tc *Tape) Rewind() {
	tc.Received = 0
	tc.Sent = 0
}

// Receive reads exactly one byte from the input stream.
func (tc *Tape) Receive() (value byte, err error) {
	if tc.Input == nil {
		err = ErrChannelEmpty
		return
	}

	var one [1]byte
	for {
		var n int
		n, err = tc.Input.Read(one[:])
		if n == 1 {
			err = nil
			break
		}
		if errors.Is(err, io.EOF) {
			err = ErrChannelEmpty
			return
		}
		if err != nil {
			return
		}
	}

	value = one[0]
	tc.Received++

	return
}

// Send writes a character to the output stream.
func (tc *Tape) Send(value rune) (err error) {
	if !utf8.ValidRune(value) {
		err = ErrChannelRune
		return
	}

	tc.Sent++

	if tc.Output == nil {
		return
	}

	_, err = tc.Output.Write(utf8.AppendRune(nil, value))

	return
}
