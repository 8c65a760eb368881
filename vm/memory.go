package vm

import (
	"errors"
)

const (
	SEGMENT_SIZE_DEFAULT = 10000 // Default data and stack segment size, in cells.
)

// Segment is a contiguous [Base, Base+Size) range of memory.
type Segment struct {
	Name string
	Base int
	Size int
}

// End returns the address one past the segment.
func (seg Segment) End() int {
	return seg.Base + seg.Size
}

// Contains returns true if the address lies within the segment.
func (seg Segment) Contains(address int) bool {
	return address >= seg.Base && address < seg.End()
}

// codeCell is a code segment slot. An absent cell was never appended.
type codeCell struct {
	Instruction
	present bool
}

// Memory is the flat address space: code, then data, then stack.
type Memory struct {
	Code  Segment // CS
	Data  Segment // DS
	Stack Segment // SS

	code  []codeCell
	cells []Value // Data and stack cells.
}

// NewMemory lays out three segments of size cells each.
// A size of zero selects SEGMENT_SIZE_DEFAULT.
func NewMemory(size uint) (mem *Memory) {
	if size == 0 {
		size = SEGMENT_SIZE_DEFAULT
	}

	s := int(size)
	mem = &Memory{
		Code:  Segment{Name: "CS", Base: 0, Size: s},
		Data:  Segment{Name: "DS", Base: s, Size: s},
		Stack: Segment{Name: "SS", Base: 2 * s, Size: s},
		code:  make([]codeCell, s),
		cells: make([]Value, 2*s),
	}

	return
}

// Size returns the total number of addressable cells.
func (mem *Memory) Size() int {
	return mem.Stack.End()
}

// Reset zeroes the data and stack segments. Code is kept.
func (mem *Memory) Reset() {
	clear(mem.cells)
}

// Clear removes all instructions from the code segment.
func (mem *Memory) Clear() {
	clear(mem.code)
}

// checkData verifies that a value may be stored at the address.
func (mem *Memory) checkData(address int) (err error) {
	switch {
	case mem.Code.Contains(address):
		err = errors.Join(ErrAddress(address), ErrSegmentCode)
	case address < mem.Data.Base || address >= mem.Stack.End():
		err = ErrAddress(address)
	}

	return
}

// Load reads the value stored at a data or stack address.
func (mem *Memory) Load(address int) (value Value, err error) {
	err = mem.checkData(address)
	if err != nil {
		return
	}

	value = mem.cells[address-mem.Data.Base]

	return
}

// Store writes a value to a data or stack address.
func (mem *Memory) Store(address int, value Value) (err error) {
	err = mem.checkData(address)
	if err != nil {
		return
	}

	mem.cells[address-mem.Data.Base] = value

	return
}

// Fetch reads the instruction at a code address.
func (mem *Memory) Fetch(address int) (inst Instruction, err error) {
	if !mem.Code.Contains(address) {
		err = ErrAddress(address)
		return
	}

	cell := mem.code[address-mem.Code.Base]
	if !cell.present {
		err = ErrEmptyInstruction
		return
	}

	inst = cell.Instruction

	return
}

// Place puts an instruction at a code address.
func (mem *Memory) Place(address int, inst Instruction) (err error) {
	if !mem.Code.Contains(address) {
		err = ErrAddress(address)
		return
	}

	mem.code[address-mem.Code.Base] = codeCell{Instruction: inst, present: true}

	return
}
