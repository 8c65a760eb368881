// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/segvm/internal"
	"github.com/ezrec/segvm/io"
	"github.com/ezrec/segvm/vm"
)

const (
	STEP_LIMIT = 1_000_000 // Default limit on instructions per Run.
)

var _emulator_defines = map[string]string{
	"STEP_LIMIT": fmt.Sprintf("%v", STEP_LIMIT),
}

// Emulator state. Machine + program listing + tape.
type Emulator struct {
	Verbose     bool        // If set, enables verbose logging.
	*vm.Machine             // Reference to the machine simulation.
	Program     *vm.Program // Reference to the currently running program listing.

	Tape      io.Tape // Tape IO channel, attached as input and output.
	StepLimit int     // Maximum instructions per Run; 0 for no limit.
}

// NewEmulator creates a new emulator with size cell data and stack
// segments.
func NewEmulator(size uint) (emu *Emulator) {
	emu = &Emulator{
		Machine:   vm.NewMachine(size),
		Program:   &vm.Program{},
		StepLimit: STEP_LIMIT,
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	return internal.Concat2(maps.All(_emulator_defines),
		emu.Machine.Defines(),
	)
}

// Reset the machine, attach the tape, and load the program.
func (emu *Emulator) Reset() (err error) {
	emu.Machine.Verbose = emu.Verbose

	emu.Machine.Memory.Clear()
	emu.Machine.Reset()

	emu.Tape.Rewind()
	emu.Machine.Input = &emu.Tape
	emu.Machine.Output = &emu.Tape

	err = emu.Program.Load(emu.Machine)
	if err != nil {
		return
	}

	if emu.Verbose {
		log.Printf("emulator: loaded %d instructions, entry %d", emu.Program.End(), emu.Program.Entry)
	}

	return
}

// Ticks returns the total instructions executed since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Machine.Ticks
}

// Ip returns current instruction pointer.
func (emu *Emulator) Ip() int {
	return emu.Machine.Ip
}

// LineNo returns the current line number for the executing statement.
func (emu *Emulator) LineNo() int {
	return emu.Program.LineNo(emu.Machine.Ip)
}

// Tick executes a single instruction. Execution is done once IP reaches
// the end of the loaded program.
func (emu *Emulator) Tick() (done bool, err error) {
	emu.Machine.Verbose = emu.Verbose

	if emu.Machine.Ip == emu.Program.End() {
		done = true
		return
	}

	lineno := emu.LineNo()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: lineno, Err: err}
		}
	}()

	_, err = emu.Machine.Step()

	return
}

// Run ticks until the program is done or fails. A program that completes
// within StepLimit instructions is not limited.
func (emu *Emulator) Run() (err error) {
	for steps := 0; ; steps++ {
		if emu.Machine.Ip == emu.Program.End() {
			return
		}

		if emu.StepLimit > 0 && steps >= emu.StepLimit {
			err = &ErrRuntime{LineNo: emu.LineNo(), Err: ErrStepLimit}
			return
		}

		var done bool
		done, err = emu.Tick()
		if err != nil || done {
			return
		}
	}
}
