// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"flag"
	"log"
	"os"

	"github.com/ezrec/segvm/emulator"
	"github.com/ezrec/segvm/internal"
	"github.com/ezrec/segvm/translate"
	"github.com/ezrec/segvm/vm"
)

// echo is the program run when no source is given: read a byte, write it.
var echo = []vm.Instruction{
	vm.MustInstruction(vm.OP_INPUT, "AX"),
	vm.MustInstruction(vm.OP_OUTPUT, "AX"),
}

func main() {
	var compile string
	var input string
	var output string
	var size uint
	var limit int
	var verbose bool

	flag.StringVar(&compile, "c", "", ".asm file to assemble and run")
	flag.StringVar(&input, "i", "-", "Tape input")
	flag.StringVar(&output, "o", "-", "Tape output")
	flag.UintVar(&size, "m", vm.SEGMENT_SIZE_DEFAULT, "Data and stack segment size, in cells")
	flag.IntVar(&limit, "n", emulator.STEP_LIMIT, "Instruction limit, 0 for none")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		log.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	if verbose {
		log.Printf("segvm: language %v", translate.Language())
	}

	emu := emulator.NewEmulator(size)
	emu.Verbose = verbose
	emu.StepLimit = limit

	if input == "-" {
		emu.Tape.Input = os.Stdin
	} else {
		inf, err := os.Open(input)
		if err != nil {
			log.Fatalf("%v: %v", input, err)
		}
		defer inf.Close()
		emu.Tape.Input = inf
	}

	if output == "-" {
		emu.Tape.Output = os.Stdout
	} else {
		ouf, err := os.Create(output)
		if err != nil {
			log.Fatalf("%v: %v", output, err)
		}
		defer ouf.Close()
		emu.Tape.Output = ouf
	}

	if len(compile) == 0 {
		runEcho(emu)
		return
	}

	inf, err := os.Open(compile)
	if err != nil {
		log.Fatalf("%v: %v", compile, err)
	}
	defer inf.Close()

	asm := &vm.Assembler{Verbose: verbose}
	for equ, value := range internal.Sorted2(emu.Defines()) {
		if verbose {
			log.Printf("segvm: .equ %v %v", equ, value)
		}
		asm.Predefine(equ, value)
	}

	emu.Program, err = asm.Parse(inf)
	if err != nil {
		log.Fatalf("%v: %v", compile, err)
	}

	err = emu.Reset()
	if err != nil {
		log.Fatalf("%v: %v", compile, err)
	}

	err = emu.Run()
	if err != nil {
		log.Print(emu.Machine.String())
		log.Fatalf("%v: %v", compile, err)
	}

	if verbose {
		log.Printf("segvm: %d instructions executed", emu.Ticks())
	}
}

// runEcho appends the echo program, and steps it by hand, reporting AX
// between the input and the output.
func runEcho(emu *emulator.Emulator) {
	m := emu.Machine
	m.Input = &emu.Tape
	m.Output = &emu.Tape

	m.Ip = m.Memory.Code.Base
	for _, inst := range echo {
		err := m.Append(inst)
		if err != nil {
			log.Fatal(err)
		}
	}

	m.Ip = m.Memory.Code.Base
	_, err := m.Step()
	if err != nil {
		log.Fatal(err)
	}
	log.Printf("--------------AX: %v----------------", m.Register[vm.REG_AX])
	_, err = m.Step()
	if err != nil {
		log.Fatal(err)
	}
}
