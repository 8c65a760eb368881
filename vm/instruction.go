package vm

import (
	"errors"
	"fmt"
	"strings"
)

// Op is an instruction operation.
type Op int

//go:generate go tool stringer -linecomment -type=Op
const (
	OP_MOVE     = Op(0)  // move
	OP_LEA      = Op(1)  // lea
	OP_PUSH     = Op(2)  // push
	OP_POP      = Op(3)  // pop
	OP_INPUT    = Op(4)  // input
	OP_OUTPUT   = Op(5)  // output
	OP_ADD      = Op(6)  // add
	OP_SUB      = Op(7)  // sub
	OP_MUL      = Op(8)  // mul
	OP_DIV      = Op(9)  // div
	OP_FDIV     = Op(10) // fdiv
	OP_CMP      = Op(11) // cmp
	OP_BIT_NOT  = Op(12) // bit_not
	OP_BIT_TEST = Op(13) // bit_test
	OP_BIT_AND  = Op(14) // bit_and
	OP_BIT_OR   = Op(15) // bit_or
	OP_BIT_XOR  = Op(16) // bit_xor
	OP_JMP      = Op(17) // jmp
	OP_JE       = Op(18) // je
	OP_JNE      = Op(19) // jne
	OP_JB       = Op(20) // jb
	OP_JNB      = Op(21) // jnb
	OP_JBE      = Op(22) // jbe
	OP_JA       = Op(23) // ja
	OP_JNA      = Op(24) // jna
	OP_JAE      = Op(25) // jae
	OP_RET      = Op(26) // ret
)

// OP_COUNT is the number of operations.
const OP_COUNT = 27

// opMap maps mnemonics to operations, including the jz/jnz aliases.
var opMap = map[string]Op{
	"jz":  OP_JE,
	"jnz": OP_JNE,
}

func init() {
	for op := range Op(OP_COUNT) {
		opMap[op.String()] = op
	}
}

// LookupOp finds the operation for a mnemonic.
func LookupOp(mnemonic string) (op Op, ok bool) {
	op, ok = opMap[mnemonic]
	return
}

// Arity returns the minimum and maximum operand counts.
func (op Op) Arity() (least, most int) {
	switch op {
	case OP_RET:
		return 0, 0
	case OP_POP:
		return 0, 1
	case OP_PUSH, OP_INPUT, OP_OUTPUT, OP_BIT_NOT,
		OP_JMP, OP_JE, OP_JNE, OP_JB, OP_JNB, OP_JBE, OP_JA, OP_JNA, OP_JAE:
		return 1, 1
	}
	return 2, 2
}

// IsJump returns true for control transfer operations taking a target.
func (op Op) IsJump() bool {
	return op >= OP_JMP && op <= OP_JAE
}

// Instruction is an operation and its operands. Once placed in the code
// segment an instruction is never modified.
type Instruction struct {
	Op   Op
	Args []Operand
}

// NewInstruction makes an instruction from parsed operands.
func NewInstruction(op Op, args ...Operand) (inst Instruction, err error) {
	if op < 0 || op >= OP_COUNT {
		err = ErrOpcodeInvalid
		return
	}

	least, most := op.Arity()
	if len(args) < least || len(args) > most {
		err = errors.Join(ErrOperandCount, fmt.Errorf("%v: %d", op, len(args)))
		return
	}

	inst = Instruction{Op: op, Args: args}

	return
}

// MakeInstruction makes an instruction from operand text, e.g.
// MakeInstruction(OP_MOVE, "AX", "[BX+2]").
func MakeInstruction(op Op, texts ...string) (inst Instruction, err error) {
	args := make([]Operand, 0, len(texts))
	for _, text := range texts {
		var arg Operand
		arg, err = ParseOperand(text)
		if err != nil {
			return
		}
		args = append(args, arg)
	}

	return NewInstruction(op, args...)
}

// MustInstruction is MakeInstruction that panics on error.
func MustInstruction(op Op, texts ...string) Instruction {
	inst, err := MakeInstruction(op, texts...)
	if err != nil {
		panic(err)
	}
	return inst
}

// String returns the assembly language representation of the instruction.
func (inst Instruction) String() string {
	if len(inst.Args) == 0 {
		return inst.Op.String()
	}

	args := make([]string, len(inst.Args))
	for n, arg := range inst.Args {
		args[n] = arg.String()
	}

	return inst.Op.String() + " " + strings.Join(args, ", ")
}
