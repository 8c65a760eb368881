package io

import (
	"unicode/utf8"
)

// Temporary implements an in-memory FIFO byte buffer.
// Bytes are read from the front and characters are appended UTF-8 encoded
// at the back. A zero Capacity means unbounded.
type Temporary struct {
	Capacity int // Capacity in bytes.

	ReadIndex int
	Data      []byte
}

var _ Channel = (*Temporary)(nil)

// NewTemporary creates a temporary buffer pre-loaded with data.
func NewTemporary(data []byte) (temp *Temporary) {
	temp = &Temporary{
		Data: append([]byte(nil), data...),
	}

	return
}

// Rewind resets the temporary storage to empty.
func (temp *Temporary) Rewind() {
	temp.ReadIndex = 0
	temp.Data = temp.Data[:0]
}

// Len returns the number of unread bytes.
func (temp *Temporary) Len() int {
	return len(temp.Data) - temp.ReadIndex
}

// Bytes returns the unread bytes.
func (temp *Temporary) Bytes() []byte {
	return temp.Data[temp.ReadIndex:]
}

// String returns the unread bytes as a string.
func (temp *Temporary) String() string {
	return string(temp.Bytes())
}

// Receive reads the next byte from the buffer.
func (temp *Temporary) Receive() (value byte, err error) {
	if temp.Len() == 0 {
		err = ErrChannelEmpty
		return
	}

	value = temp.Data[temp.ReadIndex]
	temp.ReadIndex++

	return
}

// Send appends a character to the buffer.
// Returns ErrChannelFull if the encoded character does not fit.
func (temp *Temporary) Send(value rune) (err error) {
	if !utf8.ValidRune(value) {
		err = ErrChannelRune
		return
	}

	if temp.Capacity > 0 && len(temp.Data)+utf8.RuneLen(value) > temp.Capacity {
		err = ErrChannelFull
		return
	}

	temp.Data = utf8.AppendRune(temp.Data, value)

	return
}
