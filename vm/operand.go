package vm

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// OperandKind is the addressing mode of an operand.
type OperandKind int

//go:generate go tool stringer -linecomment -type=OperandKind
const (
	OPERAND_REGISTER  = OperandKind(0) // register
	OPERAND_IMMEDIATE = OperandKind(1) // immediate
	OPERAND_INDIRECT  = OperandKind(2) // indirect
	OPERAND_ABSOLUTE  = OperandKind(3) // absolute
)

// Operand is a parsed instruction argument. It is resolved against the
// machine state every time the instruction executes.
type Operand struct {
	Kind     OperandKind
	Register Register // Register, or base register of an indirect reference.
	Offset   int64    // Indirect offset, or absolute address.
	Value    Value    // Immediate value.
}

// RegisterOperand makes a register operand.
func RegisterOperand(reg Register) Operand {
	return Operand{Kind: OPERAND_REGISTER, Register: reg}
}

// ImmediateOperand makes an immediate operand.
func ImmediateOperand(value Value) Operand {
	return Operand{Kind: OPERAND_IMMEDIATE, Value: value}
}

// IndirectOperand makes a [reg+offset] operand.
func IndirectOperand(reg Register, offset int64) Operand {
	return Operand{Kind: OPERAND_INDIRECT, Register: reg, Offset: offset}
}

// AbsoluteOperand makes an [address] operand.
func AbsoluteOperand(address int64) Operand {
	return Operand{Kind: OPERAND_ABSOLUTE, Offset: address}
}

// ParseOperand parses operand text:
//
//	AX BX CX DX SP BP     register
//	[R] [R+k] [R-k]       indirect, k a decimal unsigned integer
//	[n]                   absolute address
//	123 -4 1.5            immediate
//
// Inside brackets the longest register name prefix wins; without one the
// contents are an absolute address.
func ParseOperand(text string) (op Operand, err error) {
	reg, ok := registerMap[text]
	if ok {
		op = RegisterOperand(reg)
		return
	}

	if strings.HasPrefix(text, "[") && strings.HasSuffix(text, "]") && len(text) >= 2 {
		inner := text[1 : len(text)-1]

		reg, rest, ok := registerPrefix(inner)
		if ok {
			var offset int64
			offset, err = parseOffset(rest)
			if err != nil {
				err = ErrParseOperand(text)
				return
			}
			op = IndirectOperand(reg, offset)
			return
		}

		ok, point := decimal(inner)
		if !ok || point {
			err = ErrParseOperand(text)
			return
		}

		var address int64
		address, err = strconv.ParseInt(inner, 10, 64)
		if err != nil {
			err = ErrParseOperand(text)
			return
		}
		op = AbsoluteOperand(address)
		return
	}

	value, err := ParseValue(text)
	if err != nil {
		err = ErrParseOperand(text)
		return
	}
	op = ImmediateOperand(value)

	return
}

// parseOffset parses the '', '+k' or '-k' that follows a bracketed
// register name.
func parseOffset(rest string) (offset int64, err error) {
	if len(rest) == 0 {
		return
	}

	sign := rest[0]
	if sign != '+' && sign != '-' {
		err = strconv.ErrSyntax
		return
	}

	digits := rest[1:]
	if len(digits) == 0 || digits[0] == '+' || digits[0] == '-' {
		err = strconv.ErrSyntax
		return
	}

	k, err := strconv.ParseUint(digits, 10, 63)
	if err != nil {
		return
	}

	offset = int64(k)
	if sign == '-' {
		offset = -offset
	}

	return
}

// String returns the operand in assembler syntax.
func (op Operand) String() string {
	switch op.Kind {
	case OPERAND_REGISTER:
		return op.Register.String()
	case OPERAND_IMMEDIATE:
		if op.Value.IsReal {
			text := strconv.FormatFloat(op.Value.Real, 'f', -1, 64)
			if !strings.Contains(text, ".") {
				text += ".0"
			}
			return text
		}
		return op.Value.String()
	case OPERAND_INDIRECT:
		switch {
		case op.Offset > 0:
			return fmt.Sprintf("[%v+%d]", op.Register, op.Offset)
		case op.Offset < 0:
			return fmt.Sprintf("[%v-%d]", op.Register, -op.Offset)
		default:
			return fmt.Sprintf("[%v]", op.Register)
		}
	case OPERAND_ABSOLUTE:
		return fmt.Sprintf("[%d]", op.Offset)
	}

	return op.Kind.String()
}

// Writable returns true if the operand names storage.
func (op Operand) Writable() bool {
	return op.Kind != OPERAND_IMMEDIATE
}

// Read resolves the operand to its current value.
func (op Operand) Read(m *Machine) (value Value, err error) {
	switch op.Kind {
	case OPERAND_REGISTER:
		value = m.Register[op.Register]
	case OPERAND_IMMEDIATE:
		value = op.Value
	case OPERAND_INDIRECT, OPERAND_ABSOLUTE:
		var address int
		address, err = op.Address(m)
		if err != nil {
			return
		}
		value, err = m.Memory.Load(address)
	default:
		err = ErrAddressing
	}

	return
}

// Address resolves the effective address of a memory operand.
// Registers and immediates have no address.
func (op Operand) Address(m *Machine) (address int, err error) {
	switch op.Kind {
	case OPERAND_INDIRECT:
		base, ok := m.Register[op.Register].Integer()
		if !ok {
			err = errors.Join(ErrAddressing, ErrRegisterAddress)
			return
		}
		address = int(base + op.Offset)
	case OPERAND_ABSOLUTE:
		address = int(op.Offset)
	default:
		err = errors.Join(ErrAddressing, ErrNoAddress)
	}

	return
}

// location is a resolved, validated storage target.
type location struct {
	memory   bool
	register Register
	address  int
}

// locate resolves the storage named by the operand, validating that a
// store to it would succeed.
func (op Operand) locate(m *Machine) (loc location, err error) {
	switch op.Kind {
	case OPERAND_REGISTER:
		loc.register = op.Register
	case OPERAND_INDIRECT, OPERAND_ABSOLUTE:
		loc.memory = true
		loc.address, err = op.Address(m)
		if err != nil {
			return
		}
		err = m.Memory.checkData(loc.address)
	default:
		err = errors.Join(ErrAddressing, ErrNotWritable)
	}

	return
}

// Write stores a value into the storage named by the operand.
func (op Operand) Write(m *Machine, value Value) (err error) {
	loc, err := op.locate(m)
	if err != nil {
		return
	}

	m.store(loc, value)

	return
}
