// Package io provides the byte stream channels used by the segvm machine's
// input and output instructions. Tape adapts an io.Reader and io.Writer,
// while Temporary keeps everything in memory and is the default stream.
package io

// Channel defines the interface for the machine's I/O streams.
// Input is consumed one byte at a time; output is produced one character
// at a time.
type Channel interface {
	// Rewind resets the channel to its initial state.
	Rewind()
	// Receive reads the next byte, or fails with ErrChannelEmpty.
	Receive() (value byte, err error)
	// Send writes a single character, UTF-8 encoded.
	Send(value rune) error
}
