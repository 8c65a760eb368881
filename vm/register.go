package vm

// Register names a machine register usable as an operand.
type Register int

//go:generate go tool stringer -linecomment -type=Register
const (
	REG_AX = Register(0) // AX
	REG_BX = Register(1) // BX
	REG_CX = Register(2) // CX
	REG_DX = Register(3) // DX
	REG_SP = Register(4) // SP
	REG_BP = Register(5) // BP
)

// REGISTER_COUNT is the number of operand addressable registers.
const REGISTER_COUNT = 6

// registerMap maps register names to registers. Names are case sensitive.
var registerMap = map[string]Register{
	"AX": REG_AX,
	"BX": REG_BX,
	"CX": REG_CX,
	"DX": REG_DX,
	"SP": REG_SP,
	"BP": REG_BP,
}

// registerPrefix finds the longest register name that prefixes text.
func registerPrefix(text string) (reg Register, rest string, ok bool) {
	best := 0
	for name, r := range registerMap {
		if len(name) > best && len(text) >= len(name) && text[:len(name)] == name {
			best = len(name)
			reg = r
			ok = true
		}
	}
	rest = text[best:]
	return
}

// Flags are the sticky condition flags.
type Flags struct {
	Zero bool // ZERO: a result was zero.
	Neg  bool // NEG: a result was negative.
}

// set raises the flags the result calls for. Flags are never lowered here.
func (fl *Flags) set(result Value) {
	if result.IsZero() {
		fl.Zero = true
	}
	if result.IsNegative() {
		fl.Neg = true
	}
}
