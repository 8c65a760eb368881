package vm

import (
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

// assemble parses the program lines.
func assemble(asm *Assembler, program ...string) (prog *Program, err error) {
	return asm.Parse(strings.NewReader(strings.Join(program, "\n")))
}

// listing renders the assembled instructions, one per code address.
func listing(prog *Program) (text []string) {
	for ip, inst := range prog.Instructions() {
		text = append(text, fmt.Sprintf("%d: %v", ip, inst))
	}
	return
}

func TestAssembler(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := assemble(asm, "")
	assert.NoError(err)
	assert.Equal(0, len(prog.Statements))
	assert.Equal(0, prog.End())
	assert.Equal(0, prog.Entry)

	assert.Equal("0", asm.Equate["LINENO"])
	assert.Equal(fmt.Sprintf("%d", SEGMENT_SIZE_DEFAULT), asm.Equate["SEGMENT_SIZE_DEFAULT"])
}

func TestAssemblerListing(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := assemble(asm,
		"; a comment line",
		"",
		"move AX, 5        ; load",
		"lea BX, [DX+3]",
		"push [BX-2]",
		"pop",
		"pop [7]",
		"fdiv AX, 2.5",
		"bit_not CX",
		"jz 0",
		"jnz 1",
		"ret",
	)
	if !assert.NoError(err) {
		return
	}

	assert.Equal([]string{
		"0: move AX, 5",
		"1: lea BX, [DX+3]",
		"2: push [BX-2]",
		"3: pop",
		"4: pop [7]",
		"5: fdiv AX, 2.5",
		"6: bit_not CX",
		"7: je 0",
		"8: jne 1",
		"9: ret",
	}, listing(prog))

	assert.Equal(10, prog.End())
	assert.Equal(3, prog.Statements[0].LineNo)
	assert.Equal([]string{"move", "AX", "5"}, prog.Statements[0].Words)
}

func TestAssemblerLabels(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := assemble(asm,
		"        move CX, 3",
		"loop:   sub CX, 1",
		"        cmp CX, 0",
		"        je done",
		"        jmp loop",
		"done:",
		".out:   output 'x'",
	)
	if !assert.NoError(err) {
		return
	}

	assert.Equal(map[string]int{"loop": 1, "done": 5, ".out": 5}, prog.Label)
	assert.Equal([]string{
		"0: move CX, 3",
		"1: sub CX, 1",
		"2: cmp CX, 0",
		"3: je 5",
		"4: jmp 1",
		"5: output 120",
	}, listing(prog))

	st := prog.Statements[3]
	assert.Equal("done", st.LinkLabel)
	assert.Equal(0, st.LinkArg)
}

func TestAssemblerLabelOperand(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := assemble(asm,
		"move AX, table",
		"push table",
		"table: ret",
	)
	if !assert.NoError(err) {
		return
	}

	assert.Equal([]string{
		"0: move AX, 2",
		"1: push 2",
		"2: ret",
	}, listing(prog))
}

func TestAssemblerEntry(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := assemble(asm,
		"helper: ret",
		"start:  move AX, 1",
	)
	if !assert.NoError(err) {
		return
	}

	assert.Equal(1, prog.Entry)
}

func TestAssemblerEquate(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("DS", "100")

	prog, err := assemble(asm,
		".equ COUNT 3",
		".equ OFF -2",
		".equ SLOT 104",
		".equ AGAIN COUNT",
		"move AX, COUNT",
		"move BX, AGAIN",
		"move [SLOT], AX",
		"move CX, [BX+OFF]",
		"move DX, [BX-OFF]",
		"lea AX, [DS]",
		"move AX, LINENO",
	)
	if !assert.NoError(err) {
		return
	}

	assert.Equal([]string{
		"0: move AX, 3",
		"1: move BX, 3",
		"2: move [104], AX",
		"3: move CX, [BX-2]",
		"4: move DX, [BX+2]",
		"5: lea AX, [100]",
		"6: move AX, 11",
	}, listing(prog))

	assert.Equal("3", asm.Equate["AGAIN"])
}

func TestAssemblerEquateBase(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("DS", "100")

	prog, err := assemble(asm,
		".equ PTR BX",
		".equ OFF 3",
		".equ BACK -3",
		".macro ld r",
		"  move AX, [r+1]",
		"  move AX, [r-OFF]",
		"  move AX, [r]",
		".endm",
		"ld BX",
		"ld DS",
		"move CX, [PTR-2]",
		"move CX, [PTR+OFF]",
		"move CX, [PTR+BACK]",
		"move [DS+4], CX",
		"move [DS-BACK], CX",
	)
	if !assert.NoError(err) {
		return
	}

	assert.Equal([]string{
		"0: move AX, [BX+1]",
		"1: move AX, [BX-3]",
		"2: move AX, [BX]",
		"3: move AX, [101]",
		"4: move AX, [97]",
		"5: move AX, [100]",
		"6: move CX, [BX-2]",
		"7: move CX, [BX+3]",
		"8: move CX, [BX-3]",
		"9: move [104], CX",
		"10: move [103], CX",
	}, listing(prog))
}

func TestAssemblerEquateBaseInvalid(t *testing.T) {
	assert := assert.New(t)

	for _, operand := range []string{"[PTR+]", "[PTR*2]", "[NAME+1]", "[PTR++1]"} {
		asm := &Assembler{}
		_, err := assemble(asm, ".equ PTR BX", "move AX, "+operand)
		assert.ErrorIs(err, ErrAddressing, operand)
	}
}

func TestAssemblerExpression(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("DS", "100")

	prog, err := assemble(asm,
		".equ N 4",
		"move AX, $(N * 2 + 1)",
		"move BX, $(7 // 2)",
		"move CX, $(1 / 2)",
		"move DX, [$(DS + N)]",
		"lea AX, [BX+$(N - 1)]",
		"move AX, $('a' + 1)",
	)
	if !assert.NoError(err) {
		return
	}

	assert.Equal([]string{
		"0: move AX, 9",
		"1: move BX, 3",
		"2: move CX, 0.5",
		"3: move DX, [104]",
		"4: lea AX, [BX+3]",
		"5: move AX, 98",
	}, listing(prog))
}

func TestAssemblerCharacters(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := assemble(asm,
		"output 'A'",
		"output ' '",
		"output ','",
		`output '\n'`,
		`output '\t'`,
		`output '\0'`,
		`output '\\'`,
	)
	if !assert.NoError(err) {
		return
	}

	assert.Equal([]string{
		"0: output 65",
		"1: output 32",
		"2: output 44",
		"3: output 10",
		"4: output 9",
		"5: output 0",
		"6: output 92",
	}, listing(prog))
}

func TestAssemblerCall(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := assemble(asm,
		"start:  call twice",
		"        output AX",
		"        jmp end",
		"twice:  add AX, AX",
		"        ret",
		"end:",
	)
	if !assert.NoError(err) {
		return
	}

	assert.Equal([]string{
		"0: push 2",
		"1: jmp 4",
		"2: output AX",
		"3: jmp 6",
		"4: add AX, AX",
		"5: ret",
	}, listing(prog))

	st := prog.Statements[0]
	assert.Equal(1, st.LineNo)
	assert.Equal(2, len(st.Instructions))
}

func TestAssemblerMacro(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}

	prog, err := assemble(asm,
		".macro inc REG",
		"add REG, 1",
		".endm",
		".macro abs REG",
		"  cmp REG, 0",
		"  jnb @done",
		"  sub DX, REG",
		"  move REG, DX",
		"@done:",
		".endm",
		"inc AX",
		"inc [BX+1]",
		"abs CX",
		"abs AX",
	)
	if !assert.NoError(err) {
		return
	}

	assert.Equal([]string{
		"0: add AX, 1",
		"1: add [BX+1], 1",
		"2: cmp CX, 0",
		"3: jnb 6",
		"4: sub DX, CX",
		"5: move CX, DX",
		"6: cmp AX, 0",
		"7: jnb 10",
		"8: sub DX, AX",
		"9: move AX, DX",
	}, listing(prog))

	assert.Equal(6, prog.Label["abs_3_done"])
	assert.Equal(10, prog.Label["abs_4_done"])

	// Macro arguments do not leak.
	_, ok := asm.Equate["REG"]
	assert.False(ok)

	// Expanded statements point into the macro body.
	assert.Equal(2, prog.LineNo(0))
	assert.Equal(5, prog.LineNo(2))
}

func TestAssemblerErrors(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		name    string
		program []string
		lineno  int
		err     error
	}){
		{"mnemonic", []string{"ret", "frob AX"}, 2, ErrInstructionInvalid},
		{"few", []string{"add AX"}, 1, ErrOperandCount},
		{"many", []string{"ret AX"}, 1, ErrOperandCount},
		{"operand", []string{"move AX, [AX+]"}, 1, ErrAddressing},
		{"two_labels", []string{"move one, two"}, 1, ErrAddressing},
		{"label_missing", []string{"ret", "", "jmp nowhere"}, 3, ErrLabelMissing("nowhere")},
		{"label_duplicate", []string{"a: ret", "a: ret"}, 2, ErrLabelDuplicate},
		{"label_register", []string{"AX: ret"}, 1, ErrLabelInvalid},
		{"label_digit", []string{"1a: ret"}, 1, ErrLabelInvalid},
		{"equ_syntax", []string{".equ X"}, 1, ErrEquateSyntax},
		{"equ_duplicate", []string{".equ X 1", ".equ X 2"}, 2, ErrEquateDuplicate},
		{"equ_system", []string{".equ LINENO 1"}, 1, ErrEquateDuplicate},
		{"call", []string{"call"}, 1, ErrOperandCount},
		{"call_many", []string{"f: call f, f"}, 1, ErrAddressing},
		{"call_two", []string{"call 1, 2"}, 1, ErrOperandCount},
		{"expression", []string{`move AX, $("ab")`}, 1, ErrParseExpression(`"ab"`)},
		{"macro_nesting", []string{".macro a", ".macro b"}, 2, ErrMacroNesting},
		{"macro_syntax", []string{".macro"}, 1, ErrMacroSyntax},
		{"macro_duplicate", []string{".macro a", ".endm", ".macro a"}, 3, ErrMacroDuplicate},
		{"macro_lonely", []string{".macro a", "ret"}, 2, ErrMacroLonely},
		{"macro_endm", []string{"ret", ".endm"}, 2, ErrMacroLonelyEndm},
		{"macro_args", []string{".macro a X", ".endm", "a"}, 3, ErrMacroSyntax},
	}

	for _, entry := range table {
		asm := &Assembler{}
		prog, err := assemble(asm, entry.program...)
		assert.Nil(prog, entry.name)
		assert.ErrorIs(err, entry.err, entry.name)

		var syntax *ErrSyntax
		if assert.True(errors.As(err, &syntax), entry.name) {
			assert.Equal(entry.lineno, syntax.LineNo, entry.name)
		}
	}
}

func TestAssemblerExpressionError(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, err := assemble(asm, "move AX, $(1 +)")
	assert.Error(err)

	var syntax *ErrSyntax
	assert.True(errors.As(err, &syntax))
}

func TestAssemblerMacroError(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	_, err := assemble(asm,
		".macro bad",
		"ret",
		"frob AX",
		".endm",
		"bad",
	)
	assert.ErrorIs(err, ErrInstructionInvalid)

	var macro *ErrMacro
	if assert.True(errors.As(err, &macro)) {
		assert.Equal("bad", macro.Macro)
		assert.Equal(3, macro.Line)
	}
}

func TestAssemblerReuse(t *testing.T) {
	assert := assert.New(t)

	asm := &Assembler{}
	asm.Predefine("N", "1")
	asm.Predefine("N", "2")

	_, err := assemble(asm, "a: move AX, N")
	assert.NoError(err)

	prog, err := assemble(asm, "a: move AX, N")
	if !assert.NoError(err) {
		return
	}
	assert.Equal([]string{"0: move AX, 2"}, listing(prog))
}
