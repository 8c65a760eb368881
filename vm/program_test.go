package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestProgramDebug(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := assemble(asm,
		"start: move AX, 1",
		"",
		"       call sub",
		"       ret",
		"sub:   ret",
	)
	if !assert.NoError(err) {
		return
	}

	assert.Equal(5, prog.End())

	dbg := prog.Debug(2)
	if assert.NotNil(dbg.Statement) {
		assert.Equal(3, dbg.LineNo)
		assert.Equal(1, dbg.Index)
		assert.Equal([]string{"call", "sub"}, dbg.Words)
	}

	dbg = prog.Debug(5)
	assert.Nil(dbg.Statement)

	assert.Equal(1, prog.LineNo(0))
	assert.Equal(3, prog.LineNo(1))
	assert.Equal(4, prog.LineNo(3))
	assert.Equal(5, prog.LineNo(4))
	assert.Equal(0, prog.LineNo(-1))
	assert.Equal(0, prog.LineNo(99))
}

func TestProgramInstructions(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := assemble(asm,
		"call f",
		"f: ret",
	)
	if !assert.NoError(err) {
		return
	}

	var ips []int
	for ip := range prog.Instructions() {
		ips = append(ips, ip)
	}
	assert.Equal([]int{0, 1, 2}, ips)

	// Early exit.
	count := 0
	for range prog.Instructions() {
		count++
		break
	}
	assert.Equal(1, count)
}

func TestProgramLoad(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := assemble(asm,
		"double: add AX, AX",
		"        ret",
		"start:  move AX, 21",
		"        call double",
		"        output AX",
	)
	if !assert.NoError(err) {
		return
	}
	assert.Equal(2, prog.Entry)

	m := NewMachine(16)
	assert.NoError(prog.Load(m))
	assert.Equal(2, m.Ip)

	for m.Ip != prog.End() {
		_, err := m.Step()
		if !assert.NoError(err) {
			return
		}
	}

	assert.Equal(Int(42), m.Register[REG_AX])
	assert.Equal("*", m.Output.(interface{ String() string }).String())
}

func TestProgramLoadTooLarge(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	prog, err := assemble(asm, "ret", "ret", "ret")
	if !assert.NoError(err) {
		return
	}

	m := NewMachine(2)
	assert.ErrorIs(prog.Load(m), ErrOutOfBounds)

	var empty Program
	assert.NoError(empty.Load(m))
	assert.Equal(0, m.Ip)
}
