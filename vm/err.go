package vm

import (
	"errors"

	"github.com/ezrec/segvm/translate"
)

var f = translate.From

var (
	// Machine error classes
	ErrAddressing       = errors.New(f("addressing"))
	ErrOutOfBounds      = errors.New(f("out of bounds"))
	ErrStackSpace       = errors.New(f("insufficient stack space"))
	ErrStackEmpty       = errors.New(f("stack empty"))
	ErrEmptyInstruction = errors.New(f("empty instruction"))
	ErrStreamExhausted  = errors.New(f("input stream exhausted"))
	ErrDivision         = errors.New(f("division by zero"))
	ErrValueType        = errors.New(f("value type"))
	ErrNoAddress        = errors.New(f("operand has no address"))
	ErrNotWritable      = errors.New(f("operand is not writable"))
	ErrOperandCount     = errors.New(f("operand count"))
	ErrOpcodeInvalid    = errors.New(f("opcode invalid"))
	ErrSegmentCode      = errors.New(f("code segment is not data"))
	ErrRegisterAddress  = errors.New(f("register value is not an address"))
	ErrCharacterInvalid = errors.New(f("value is not a character"))
	ErrIntegerRequired  = errors.New(f("integer required"))

	// Assembler errors
	ErrEquateSyntax       = errors.New(f(".equ syntax"))
	ErrEquateDuplicate    = errors.New(f(".equ duplicated"))
	ErrLabelDuplicate     = errors.New(f("label duplicated"))
	ErrLabelInvalid       = errors.New(f("label invalid"))
	ErrMacroSyntax        = errors.New(f(".macro syntax"))
	ErrMacroNesting       = errors.New(f(".macro in .macro prohibited"))
	ErrMacroDuplicate     = errors.New(f(".macro duplicated"))
	ErrMacroLonely        = errors.New(f(".macro without .endm"))
	ErrMacroLonelyEndm    = errors.New(f(".endm without .macro"))
	ErrInstructionInvalid = errors.New(f("instruction invalid"))
)

// ErrLabelMissing is a reference to a label that was never defined.
type ErrLabelMissing string

func (el ErrLabelMissing) Error() string {
	return f("label %v missing", string(el))
}

// ErrParseOperand is operand text that is not a register, an indirect
// reference, or a number.
type ErrParseOperand string

func (err ErrParseOperand) Error() string {
	return f("'%v' is not a register, address or number", string(err))
}

func (err ErrParseOperand) Is(target error) bool {
	return target == ErrAddressing
}

// ErrAddress is a memory access outside of the addressable range.
type ErrAddress int

func (err ErrAddress) Error() string {
	return f("address %d out of range", int(err))
}

func (err ErrAddress) Is(target error) bool {
	return target == ErrOutOfBounds
}

// ErrExecute records the instruction that failed and where it was fetched.
type ErrExecute struct {
	Ip          int
	Instruction Instruction
	Err         error
}

func (err *ErrExecute) Error() string {
	return f("ip %d '%v' %v", err.Ip, err.Instruction, err.Err)
}

func (err *ErrExecute) Unwrap() error {
	return err.Err
}

// ErrSyntax is an assembler error at a specific source line.
type ErrSyntax struct {
	LineNo int
	Line   string
	Err    error
}

func (err ErrSyntax) Error() string {
	return f("line %d '%v' %v", err.LineNo, err.Line, err.Err)
}

func (err ErrSyntax) Unwrap() error {
	return err.Err
}

// ErrParseExpression is an invalid $(...) expression.
type ErrParseExpression string

func (err ErrParseExpression) Error() string {
	return f("$(%v) is not a valid expression", string(err))
}

// ErrMacro is an error raised while expanding a macro.
type ErrMacro struct {
	Macro string
	Line  int
	Err   error
}

func (err ErrMacro) Error() string {
	return f("macro %v line %v %v", err.Macro, err.Line, err.Err.Error())
}

func (err ErrMacro) Unwrap() error {
	return err.Err
}
