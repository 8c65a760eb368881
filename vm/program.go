package vm

import (
	"iter"
)

// Statement is a line of assembled source and the instructions it
// generated, starting at code address Ip.
type Statement struct {
	LineNo       int
	Ip           int
	Words        []string
	Instructions []Instruction
	LinkLabel    string // Label to resolve into the last instruction.
	LinkArg      int    // Operand index the label resolves into.
}

// Program is an assembled program listing.
type Program struct {
	Statements []Statement
	Label      map[string]int // Map of labels to code addresses.
	Entry      int            // Address execution starts at.
}

// Debug locates the statement that generated a code address.
type Debug struct {
	*Statement
	Index int
}

// Debug returns the statement for the code address, if any.
func (prog *Program) Debug(ip int) (dbg Debug) {
	for n, st := range prog.Statements {
		if ip >= st.Ip && ip < st.Ip+len(st.Instructions) {
			dbg = Debug{
				Statement: &prog.Statements[n],
				Index:     ip - st.Ip,
			}
			break
		}
	}

	return
}

// LineNo returns the source line for a code address, or 0.
func (prog *Program) LineNo(ip int) int {
	dbg := prog.Debug(ip)
	if dbg.Statement == nil {
		return 0
	}
	return dbg.LineNo
}

// End returns the address one past the last instruction.
func (prog *Program) End() int {
	if len(prog.Statements) == 0 {
		return 0
	}

	last := prog.Statements[len(prog.Statements)-1]

	return last.Ip + len(last.Instructions)
}

// Instructions iterates over the code addresses and instructions.
func (prog *Program) Instructions() iter.Seq2[int, Instruction] {
	return func(yield func(ip int, inst Instruction) bool) {
		for _, st := range prog.Statements {
			for n, inst := range st.Instructions {
				if !yield(st.Ip+n, inst) {
					return
				}
			}
		}
	}
}

// Load appends the program into the machine's code segment and points IP
// at the entry address.
func (prog *Program) Load(m *Machine) (err error) {
	for ip, inst := range prog.Instructions() {
		m.Ip = ip
		err = m.Append(inst)
		if err != nil {
			return
		}
	}

	m.Ip = prog.Entry

	return
}
