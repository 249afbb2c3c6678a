package cpu

import (
	"strconv"
)

// Register is a register bank index.
type Register int

//go:generate go tool stringer -linecomment -type=Register
const (
	REG_AX = Register(0) // ax
	REG_BX = Register(1) // bx
	REG_CX = Register(2) // cx
	REG_DX = Register(3) // dx
)

// REGISTER_COUNT is the size of the register bank.
const REGISTER_COUNT = 4

// registerMap maps register names to registers.
var registerMap = map[string]Register{
	"ax": REG_AX,
	"bx": REG_BX,
	"cx": REG_CX,
	"dx": REG_DX,
}

// ParseRegister returns the register with the given name.
func ParseRegister(name string) (reg Register, ok bool) {
	reg, ok = registerMap[name]
	return
}

// Valid returns true if the register is part of the register bank.
func (reg Register) Valid() bool {
	return reg >= 0 && reg < REGISTER_COUNT
}

// Registers is the register bank. All registers start at zero.
type Registers [REGISTER_COUNT]int

// Read returns the value of a register.
func (regs *Registers) Read(reg Register) (value int, err error) {
	if !reg.Valid() {
		err = ErrRegisterUnknown(reg)
		return
	}

	value = regs[reg]
	return
}

// Write sets the value of a register.
func (regs *Registers) Write(reg Register, value int) (err error) {
	if !reg.Valid() {
		err = ErrRegisterUnknown(reg)
		return
	}

	regs[reg] = value
	return
}

// Values returns a snapshot of the registers, in ax, bx, cx, dx order.
func (regs *Registers) Values() [REGISTER_COUNT]int {
	return *regs
}

// Reset zeros all registers.
func (regs *Registers) Reset() {
	clear(regs[:])
}

// OperandKind is the type of an instruction source operand.
type OperandKind int

//go:generate go tool stringer -linecomment -type=OperandKind
const (
	OPERAND_IMMEDIATE = OperandKind(0) // imm
	OPERAND_REGISTER  = OperandKind(1) // reg
)

// Operand is either a literal value, or a register reference.
type Operand struct {
	Kind     OperandKind
	Register Register // Register referenced, for OPERAND_REGISTER.
	Value    int      // Literal value, for OPERAND_IMMEDIATE.
}

// Imm makes a literal operand.
func Imm(value int) Operand {
	return Operand{Kind: OPERAND_IMMEDIATE, Value: value}
}

// Reg makes a register operand.
func Reg(reg Register) Operand {
	return Operand{Kind: OPERAND_REGISTER, Register: reg}
}

// ParseOperand parses a register name or an integer literal.
func ParseOperand(word string) (op Operand, err error) {
	reg, ok := ParseRegister(word)
	if ok {
		op = Reg(reg)
		return
	}

	value, err := parseInt(word)
	if err != nil {
		err = ErrParseValue(word)
		return
	}

	op = Imm(value)
	return
}

// Resolve returns the value of the operand.
//
// Anything that is not a register reference is a literal, so the only failure
// is a register reference outside of the register bank.
func (op Operand) Resolve(regs *Registers) (value int, err error) {
	if op.Kind == OPERAND_REGISTER {
		return regs.Read(op.Register)
	}

	value = op.Value
	return
}

// String returns the assembly form of the operand.
func (op Operand) String() string {
	if op.Kind == OPERAND_REGISTER {
		return op.Register.String()
	}

	return strconv.Itoa(op.Value)
}

// parseInt parses a Go style integer literal.
func parseInt(word string) (value int, err error) {
	v64, err := strconv.ParseInt(word, 0, strconv.IntSize)
	if err != nil {
		return
	}

	value = int(v64)
	return
}
