// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package vm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"
)

// Macro represents a macro definition in the assembly language.
type Macro struct {
	LineNo int      // Line number of the macro definition.
	Args   []string // Arguments for the macro.
	Lines  []string // Lines of macro text to expand.
}

// Predefined system equates
var sysEquate = map[string]string{
	"LINENO":               "0",
	"SEGMENT_SIZE_DEFAULT": fmt.Sprintf("%d", SEGMENT_SIZE_DEFAULT),
}

// Assembler is a single pass macro assembler for the segvm machine.
//
// Each line is
//
//	[label:]... mnemonic [operand[, operand]] [; comment]
type Assembler struct {
	Verbose   bool        // If set, verbosely logs the assembler actions.
	Statement []Statement // List of generated statements.

	predefine  map[string]string   // Predefines
	Label      map[string]int      // Map of jump labels to code addresses.
	Equate     map[string]string   // Map of equates.
	Macro      map[string](*Macro) // Map of macros.
	expansions int                 // Macro expansions, for '@' labels.
}

// Predefine defines a new equate or redefines an existing equate.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{equ: value}
	} else {
		asm.predefine[equ] = value
	}
}

var (
	reLabel = regexp.MustCompile(`^[A-Za-z_.][A-Za-z0-9_.]*$`)
	reChar  = regexp.MustCompile(`'\\?[^']'`)
	reParen = regexp.MustCompile(`\$\([^\$]*\)`)
)

// isLabel returns true if the word can name a label.
func isLabel(word string) bool {
	if _, ok := registerMap[word]; ok {
		return false
	}
	return reLabel.MatchString(word)
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value string, err error) {
	thread := starlark.Thread{}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key, str := range asm.Equate {
		v64, err := strconv.ParseInt(str, 0, 64)
		if err != nil {
			// Ignore non-integer equates. They may be registers
			// or something else.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}
	prog := "rc=" + expr + "\n"
	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", prog, pred)
	if err != nil {
		return
	}
	st_rc, ok := dict["rc"]
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	switch st_val := st_rc.(type) {
	case starlark.Int:
		st_int64, ok := st_val.Int64()
		if !ok {
			err = ErrParseExpression(expr)
			return
		}
		value = strconv.FormatInt(st_int64, 10)
	case starlark.Float:
		value = ImmediateOperand(Real(float64(st_val))).String()
	default:
		err = ErrParseExpression(expr)
	}
	return
}

// substitute replaces equates in an operand word, including the base and
// the offset inside brackets. An absolute base with a numeric offset is
// folded into a single address.
func (asm *Assembler) substitute(word string) string {
	equate, ok := asm.Equate[word]
	if ok {
		return equate
	}

	if len(word) < 2 || word[0] != '[' || word[len(word)-1] != ']' {
		return word
	}

	inner := word[1 : len(word)-1]
	equate, ok = asm.Equate[inner]
	if ok {
		return "[" + equate + "]"
	}

	n := strings.IndexAny(inner, "+-")
	if n <= 0 || n == len(inner)-1 {
		return word
	}

	base := inner[:n]
	sign := inner[n]
	offset := inner[n+1:]

	equate, ok = asm.Equate[base]
	if ok {
		base = equate
	}

	equate, ok = asm.Equate[offset]
	if ok {
		offset = equate
		if strings.HasPrefix(offset, "-") {
			offset = offset[1:]
			if sign == '+' {
				sign = '-'
			} else {
				sign = '+'
			}
		}
	}

	address, err := strconv.ParseInt(base, 10, 64)
	if err == nil {
		k, err := strconv.ParseUint(offset, 10, 63)
		if err == nil {
			if sign == '-' {
				address -= int64(k)
			} else {
				address += int64(k)
			}
			return fmt.Sprintf("[%d]", address)
		}
	}

	return fmt.Sprintf("[%v%c%v]", base, sign, offset)
}

// parseLine parses a single line into words.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	// Set line number.
	asm.Equate["LINENO"] = fmt.Sprintf("%v", lineno)

	// Do 'x' evaluations
	line = reChar.ReplaceAllStringFunc(line, func(word string) string {
		str := word[1 : len(word)-1]
		if str[0] == '\\' {
			str = str[1:]
			switch str {
			case "\\":
				str = "\\"
			case "n":
				str = "\n"
			case "r":
				str = "\r"
			case "t":
				str = "\t"
			case "0":
				str = "\000"
			default:
				return word
			}
		} else if len(str) != 1 {
			return word
		}
		return fmt.Sprintf("%d", str[0])
	})

	// Do $() evaluations
	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, _err := asm.parenEval(str[2 : len(str)-1])
		if _err != nil {
			err = _err
		}
		return value
	})
	if err != nil {
		return
	}

	words = strings.Fields(strings.ReplaceAll(line, ",", " "))

	if len(words) == 0 {
		return
	}

	// .equ CONST VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		_, ok := asm.Equate[words[1]]
		if ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = asm.substitute(words[2])
		words = words[:0]
		return
	}

	for strings.HasSuffix(words[0], ":") {
		label := words[0][:len(words[0])-1]
		if !isLabel(label) {
			err = ErrLabelInvalid
			return
		}
		_, ok := asm.Label[label]
		if ok {
			err = ErrLabelDuplicate
			return
		}

		asm.Label[label] = asm.currentIp()
		words = words[1:]
		if len(words) == 0 {
			return
		}
	}

	for n, word := range words[1:] {
		words[1+n] = asm.substitute(word)
	}

	// .macro processing
	macro, ok := asm.Macro[words[0]]
	if ok {
		name := words[0]

		args := words[1:]
		if len(args) != len(macro.Args) {
			err = ErrMacroSyntax
			return
		}
		// Turn args into equs
		old_equate := maps.Clone(asm.Equate)
		for n, arg := range macro.Args {
			asm.Equate[arg] = args[n]
		}
		defer func() { asm.Equate = old_equate }()

		asm.expansions++
		local := fmt.Sprintf("%v_%v_", name, asm.expansions)

		for n, line := range macro.Lines {
			lineno := macro.LineNo + n

			line = strings.ReplaceAll(line, "@", local)
			words, err = asm.parseLine(line, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}

			err = asm.parseWords(words, lineno)
			if err != nil {
				err = &ErrMacro{Macro: name, Line: lineno, Err: err}
				err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
				return
			}
		}

		words = nil
		return
	}

	return
}

// currentIp gets the current code address.
func (asm *Assembler) currentIp() int {
	if len(asm.Statement) == 0 {
		return 0
	}

	last := asm.Statement[len(asm.Statement)-1]

	return last.Ip + len(last.Instructions)
}

// Parse parses an input stream into a Program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {

	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		if err != nil {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Label = make(map[string]int)
	asm.Statement = asm.Statement[:0]
	asm.Macro = make(map[string](*Macro))
	asm.expansions = 0
	asm.Equate = maps.Clone(sysEquate)
	for attr, val := range asm.predefine {
		asm.Equate[attr] = val
	}

	for scanner.Scan() {
		text := scanner.Text()
		lineno += 1

		if asm.Verbose {
			log.Printf("%v: %v\n", lineno, text)
		}

		text_comment := strings.Split(text, ";")
		line = strings.TrimSpace(text_comment[0])
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				err = ErrMacroNesting
				return
			}
			if len(words) < 2 {
				err = ErrMacroSyntax
				return
			}
			_, ok := asm.Macro[words[1]]
			if ok {
				err = ErrMacroDuplicate
				return
			}
			macro = &Macro{
				LineNo: lineno + 1,
			}
			if len(words) > 2 {
				macro.Args = words[2:]
			}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				err = ErrMacroLonelyEndm
				return
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}

	err = scanner.Err()
	if err != nil {
		return
	}

	if macro != nil {
		err = ErrMacroLonely
		return
	}

	// Final linking of jump labels.
	for n := range asm.Statement {
		st := &asm.Statement[n]

		if len(st.LinkLabel) == 0 {
			continue
		}
		label := st.LinkLabel
		ip, ok := asm.Label[label]
		if !ok {
			lineno = st.LineNo
			line = strings.Join(st.Words, " ")
			err = ErrLabelMissing(label)
			return
		}
		linked := &st.Instructions[len(st.Instructions)-1]
		linked.Args[st.LinkArg] = ImmediateOperand(Int(int64(ip)))
	}

	prog = &Program{
		Statements: slices.Clone(asm.Statement),
		Label:      maps.Clone(asm.Label),
	}

	entry, ok := asm.Label["start"]
	if ok {
		prog.Entry = entry
	}

	return
}

// operands parses operand words. A word that is not an operand but can be
// a label becomes a placeholder to be linked.
func (asm *Assembler) operands(words []string) (args []Operand, label string, index int, err error) {
	for n, word := range words {
		var arg Operand
		arg, err = ParseOperand(word)
		if err != nil {
			if !isLabel(word) || len(label) != 0 {
				return
			}
			err = nil
			label = word
			index = n
			arg = ImmediateOperand(Int(0))
		}
		args = append(args, arg)
	}

	return
}

// parseWords evaluates the words in a line of assembly text.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	var insts []Instruction
	var label string
	var index int

	// no-op
	if len(words) == 0 {
		return
	}

	initial_words := words

	defer func() {
		if len(insts) == 0 {
			return
		}
		st := Statement{
			LineNo:       lineno,
			Ip:           asm.currentIp(),
			Words:        initial_words,
			Instructions: insts,
			LinkLabel:    label,
			LinkArg:      index,
		}
		asm.Statement = append(asm.Statement, st)
	}()

	var args []Operand
	args, label, index, err = asm.operands(words[1:])
	if err != nil {
		return
	}

	var inst Instruction

	switch words[0] {
	case "call":
		// call TARGET => push <return>, jmp TARGET
		if len(args) != 1 {
			err = errors.Join(ErrOperandCount, fmt.Errorf("call: %d", len(args)))
			return
		}
		ret := ImmediateOperand(Int(int64(asm.currentIp() + 2)))
		var push Instruction
		push, err = NewInstruction(OP_PUSH, ret)
		if err != nil {
			return
		}
		inst, err = NewInstruction(OP_JMP, args...)
		if err != nil {
			return
		}
		insts = []Instruction{push, inst}
	default:
		op, ok := LookupOp(words[0])
		if !ok {
			err = ErrInstructionInvalid
			return
		}
		inst, err = NewInstruction(op, args...)
		if err != nil {
			return
		}
		insts = []Instruction{inst}
	}

	return
}
