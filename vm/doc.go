// Package vm implements the segmented-memory machine and assembler for the
// segvm system.
//
// The machine has four general-purpose registers (AX, BX, CX, DX), a stack
// pointer (SP), a base pointer (BP), an instruction pointer (IP), and two
// sticky condition flags (ZERO, NEG). Memory is one flat address space split
// into code, data, and stack segments. Every instruction operand is a
// register, an immediate, or an indirect memory reference of the form
// [R], [R+k], [R-k], or [address].
//
// The assembler provides a small assembly language for the instruction set,
// supporting labels, equates, macros, and compile-time expression evaluation.
package vm
