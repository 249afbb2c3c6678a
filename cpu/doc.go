// Package cpu implements the register machine and its assembler.
//
// The machine consists of an instruction pointer (Ip), four signed
// general-purpose registers (ax, bx, cx, dx), and a comparison flag holding
// the signed difference computed by the last cmp. A Program is an ordered
// list of instructions plus a label table; the machine runs it until the
// instruction pointer leaves the program; there is no halt instruction.
//
// Programs are produced by a Builder, by the line Assembler (labels,
// equates, macros, and compile-time $(...) expressions), or by the script
// package.
package cpu
