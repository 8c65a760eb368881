package vm

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
	"unicode/utf8"

	"github.com/ezrec/segvm/io"
)

// Channel is an I/O stream interface.
type Channel io.Channel

// Machine is the simulation context: memory, registers, flags and streams.
// A machine is not safe for concurrent use.
type Machine struct {
	Verbose bool // Set to enable verbose logging.

	Memory   *Memory               // Code, data and stack segments.
	Register [REGISTER_COUNT]Value // Register bank, indexed by Register.
	Ip       int                   // Address of the next instruction.
	Flags    Flags                 // Sticky condition flags.

	Input  Channel // Byte source for 'input'.
	Output Channel // Character sink for 'output'.

	Ticks int // Instructions executed since reset.
}

// NewMachine creates a machine whose data and stack segments are size
// cells each. The streams default to empty in-memory buffers.
func NewMachine(size uint) (m *Machine) {
	m = &Machine{
		Memory: NewMemory(size),
		Input:  &io.Temporary{},
		Output: &io.Temporary{},
	}

	m.Reset()

	return
}

// Reset the machine state.
// - Zeroes the general-purpose registers, flags, data and stack.
// - Empties the stack: SP is one past the stack, BP the last stack cell.
// - Points IP at the code segment base.
// Code and I/O channels are kept.
func (m *Machine) Reset() {
	if m.Verbose {
		log.Printf("vm: reset")
	}

	clear(m.Register[:])
	m.Register[REG_SP] = Int(int64(m.Memory.Stack.End()))
	m.Register[REG_BP] = Int(int64(m.Memory.Stack.End() - 1))
	m.Flags = Flags{}
	m.Ip = m.Memory.Code.Base
	m.Ticks = 0
	m.Memory.Reset()
}

// Defines returns the segment layout as assembler equates.
func (m *Machine) Defines() iter.Seq2[string, string] {
	mem := m.Memory
	return maps.All(map[string]string{
		"CS":           fmt.Sprintf("%d", mem.Code.Base),
		"DS":           fmt.Sprintf("%d", mem.Data.Base),
		"SS":           fmt.Sprintf("%d", mem.Stack.Base),
		"STACK_TOP":    fmt.Sprintf("%d", mem.Stack.End()),
		"SEGMENT_SIZE": fmt.Sprintf("%d", mem.Data.Size),
	})
}

// String returns the current machine state as a string.
func (m *Machine) String() (text string) {
	text += fmt.Sprintf("% 5s: %d\n", "ip", m.Ip)
	for reg := range Register(REGISTER_COUNT) {
		text += fmt.Sprintf("% 5s: %v\n", reg.String(), m.Register[reg])
	}
	text += fmt.Sprintf("% 5s: %v\n", "zero", m.Flags.Zero)
	text += fmt.Sprintf("% 5s: %v\n", "neg", m.Flags.Neg)

	return
}

// Append places an instruction at IP and advances IP.
// This assembles a program; it does not execute anything.
func (m *Machine) Append(inst Instruction) (err error) {
	err = m.Memory.Place(m.Ip, inst)
	if err != nil {
		return
	}

	m.Ip++

	return
}

// Step fetches the instruction at IP, advances IP, and executes it.
// On failure IP is left at the failing instruction and the error is an
// *ErrExecute.
func (m *Machine) Step() (result Value, err error) {
	ip := m.Ip

	inst, err := m.Memory.Fetch(ip)
	if err != nil {
		err = &ErrExecute{Ip: ip, Err: err}
		return
	}

	if m.Verbose {
		log.Printf("vm: %04d: %v", ip, inst)
	}

	// Advance first, so jumps are not overwritten.
	m.Ip = ip + 1

	result, err = m.Execute(inst)
	if err != nil {
		m.Ip = ip
		err = &ErrExecute{Ip: ip, Instruction: inst, Err: err}
		return
	}

	m.Ticks++

	return
}

// Execute executes a single instruction against the machine state.
// The result is the value computed by arithmetic, compare, bitwise and pop
// instructions, and the zero Value otherwise.
func (m *Machine) Execute(inst Instruction) (result Value, err error) {
	if inst.Op < 0 || inst.Op >= OP_COUNT {
		err = ErrOpcodeInvalid
		return
	}

	least, most := inst.Op.Arity()
	if len(inst.Args) < least || len(inst.Args) > most {
		err = ErrOperandCount
		return
	}

	args := inst.Args

	switch inst.Op {
	case OP_MOVE:
		err = m.move(args[0], args[1])
	case OP_LEA:
		err = m.lea(args[0], args[1])
	case OP_PUSH:
		err = m.push(args[0])
	case OP_POP:
		var dst *Operand
		if len(args) == 1 {
			dst = &args[0]
		}
		result, err = m.pop(dst)
	case OP_INPUT:
		err = m.input(args[0])
	case OP_OUTPUT:
		err = m.output(args[0])
	case OP_ADD:
		result, err = m.alu(valueAdd, args[0], args[1], true)
	case OP_SUB:
		result, err = m.alu(valueSub, args[0], args[1], true)
	case OP_MUL:
		result, err = m.alu(valueMul, args[0], args[1], true)
	case OP_DIV:
		result, err = m.alu(valueDiv, args[0], args[1], true)
	case OP_FDIV:
		result, err = m.alu(valueFdiv, args[0], args[1], true)
	case OP_CMP:
		result, err = m.alu(valueSub, args[0], args[1], false)
	case OP_BIT_NOT:
		result, err = m.alu(valueNot, args[0], ImmediateOperand(Int(0)), true)
	case OP_BIT_TEST:
		result, err = m.alu(valueAnd, args[0], args[1], false)
	case OP_BIT_AND:
		result, err = m.alu(valueAnd, args[0], args[1], true)
	case OP_BIT_OR:
		result, err = m.alu(valueOr, args[0], args[1], true)
	case OP_BIT_XOR:
		result, err = m.alu(valueXor, args[0], args[1], true)
	case OP_JMP, OP_JE, OP_JNE, OP_JB, OP_JNB, OP_JBE, OP_JA, OP_JNA, OP_JAE:
		err = m.jump(args[0], m.taken(inst.Op))
	case OP_RET:
		err = m.ret()
	default:
		err = ErrOpcodeInvalid
	}

	return
}

// store commits a value to a location validated by Operand.locate.
func (m *Machine) store(loc location, value Value) {
	if loc.memory {
		m.Memory.cells[loc.address-m.Memory.Data.Base] = value
		return
	}

	m.Register[loc.register] = value
}

// address reads a register that must hold an integer address.
func (m *Machine) address(reg Register) (address int, err error) {
	value, ok := m.Register[reg].Integer()
	if !ok {
		err = errors.Join(ErrAddressing, ErrRegisterAddress)
		return
	}

	address = int(value)

	return
}

func (m *Machine) move(dst, src Operand) (err error) {
	loc, err := dst.locate(m)
	if err != nil {
		return
	}

	value, err := src.Read(m)
	if err != nil {
		return
	}

	m.store(loc, value)

	return
}

func (m *Machine) lea(dst, variable Operand) (err error) {
	loc, err := dst.locate(m)
	if err != nil {
		return
	}

	address, err := variable.Address(m)
	if err != nil {
		return
	}

	m.store(loc, Int(int64(address)))

	return
}

// push decrements SP, checks it against the stack base, then stores.
// The source is resolved with SP already decremented.
func (m *Machine) push(src Operand) (err error) {
	sp, err := m.address(REG_SP)
	if err != nil {
		return
	}

	next := sp - 1
	if next < m.Memory.Stack.Base {
		err = errors.Join(ErrStackSpace, ErrAddress(next))
		return
	}

	saved := m.Register[REG_SP]
	m.Register[REG_SP] = Int(int64(next))

	value, err := src.Read(m)
	if err == nil {
		err = m.Memory.Store(next, value)
	}
	if err != nil {
		m.Register[REG_SP] = saved
	}

	return
}

// pop reads the top of stack and increments SP, then optionally stores the
// value into dst.
func (m *Machine) pop(dst *Operand) (value Value, err error) {
	sp, err := m.address(REG_SP)
	if err != nil {
		return
	}

	if sp >= m.Memory.Stack.End() {
		err = errors.Join(ErrStackEmpty, ErrAddress(sp))
		return
	}

	value, err = m.Memory.Load(sp)
	if err != nil {
		return
	}

	if dst == nil {
		m.Register[REG_SP] = Int(int64(sp + 1))
		return
	}

	saved := m.Register[REG_SP]
	m.Register[REG_SP] = Int(int64(sp + 1))

	err = dst.Write(m, value)
	if err != nil {
		m.Register[REG_SP] = saved
	}

	return
}

func (m *Machine) input(dst Operand) (err error) {
	loc, err := dst.locate(m)
	if err != nil {
		return
	}

	value, err := m.Input.Receive()
	if errors.Is(err, io.ErrChannelEmpty) {
		err = errors.Join(ErrStreamExhausted, err)
	}
	if err != nil {
		return
	}

	m.store(loc, Int(int64(value)))

	return
}

func (m *Machine) output(src Operand) (err error) {
	value, err := src.Read(m)
	if err != nil {
		return
	}

	code, ok := value.Integer()
	if !ok || code < 0 || code > utf8.MaxRune || !utf8.ValidRune(rune(code)) {
		err = errors.Join(ErrValueType, ErrCharacterInvalid)
		return
	}

	err = m.Output.Send(rune(code))

	return
}

// alu reads x and y, computes the result, raises the flags, and when store
// is set writes the result back into x.
func (m *Machine) alu(op func(a, b Value) (Value, error), x, y Operand, store bool) (result Value, err error) {
	var loc location
	if store {
		loc, err = x.locate(m)
		if err != nil {
			return
		}
	}

	a, err := x.Read(m)
	if err != nil {
		return
	}

	b, err := y.Read(m)
	if err != nil {
		return
	}

	result, err = op(a, b)
	if err != nil {
		return
	}

	m.Flags.set(result)

	if store {
		m.store(loc, result)
	}

	return
}

// taken evaluates the branch condition of a jump operation.
func (m *Machine) taken(op Op) bool {
	zero := m.Flags.Zero
	neg := m.Flags.Neg

	switch op {
	case OP_JMP:
		return true
	case OP_JE:
		return zero
	case OP_JNE:
		return !zero
	case OP_JB:
		return !zero && neg
	case OP_JNB:
		return zero || !neg
	case OP_JBE:
		return zero || neg
	case OP_JA:
		return !zero && !neg
	case OP_JNA:
		return zero || neg
	case OP_JAE:
		return zero || !neg
	}

	return false
}

// jump resolves the target, and sets IP to it if taken.
func (m *Machine) jump(target Operand, taken bool) (err error) {
	value, err := target.Read(m)
	if err != nil {
		return
	}

	address, ok := value.Integer()
	if !ok {
		err = errors.Join(ErrValueType, ErrIntegerRequired)
		return
	}

	if taken {
		m.Ip = int(address)
	}

	return
}

// ret pops a return address and jumps to it.
func (m *Machine) ret() (err error) {
	sp := m.Register[REG_SP]

	value, err := m.pop(nil)
	if err != nil {
		return
	}

	err = m.jump(ImmediateOperand(value), true)
	if err != nil {
		m.Register[REG_SP] = sp
	}

	return
}
