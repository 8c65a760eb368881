package io

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTemporary_Send_Receive(t *testing.T) {
	assert := assert.New(t)

	temp := &Temporary{}
	assert.Equal(0, temp.Len())

	assert.NoError(temp.Send('h'))
	assert.NoError(temp.Send('i'))
	assert.Equal("hi", temp.String())

	value, err := temp.Receive()
	assert.NoError(err)
	assert.Equal(byte('h'), value)
	assert.Equal(1, temp.Len())
	assert.Equal([]byte("i"), temp.Bytes())

	value, err = temp.Receive()
	assert.NoError(err)
	assert.Equal(byte('i'), value)

	_, err = temp.Receive()
	assert.ErrorIs(err, ErrChannelEmpty)
}

func TestTemporary_NewTemporary(t *testing.T) {
	assert := assert.New(t)

	data := []byte{1, 2}
	temp := NewTemporary(data)
	data[0] = 9

	value, err := temp.Receive()
	assert.NoError(err)
	assert.Equal(byte(1), value)
}

func TestTemporary_Send_CapacityFull(t *testing.T) {
	assert := assert.New(t)

	temp := &Temporary{Capacity: 2}
	assert.NoError(temp.Send('a'))
	assert.ErrorIs(temp.Send('é'), ErrChannelFull)
	assert.NoError(temp.Send('b'))
	assert.ErrorIs(temp.Send('c'), ErrChannelFull)
	assert.Equal("ab", temp.String())
}

func TestTemporary_Send_Invalid(t *testing.T) {
	assert := assert.New(t)

	temp := &Temporary{}
	assert.ErrorIs(temp.Send(0x110000), ErrChannelRune)
	assert.Equal(0, temp.Len())
}

func TestTemporary_Rewind(t *testing.T) {
	assert := assert.New(t)

	temp := NewTemporary([]byte("abc"))
	_, _ = temp.Receive()
	temp.Rewind()

	assert.Equal(0, temp.ReadIndex)
	assert.Equal(0, temp.Len())
	_, err := temp.Receive()
	assert.ErrorIs(err, ErrChannelEmpty)
}
