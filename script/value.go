package script

import (
	"go.starlark.net/starlark"

	"github.com/ezrec/regvm/cpu"
)

// register is the Starlark value of a predeclared register name.
type register cpu.Register

var _ starlark.Value = register(0)

func (r register) String() string        { return cpu.Register(r).String() }
func (r register) Type() string          { return "register" }
func (r register) Freeze()               {}
func (r register) Truth() starlark.Bool  { return starlark.True }
func (r register) Hash() (uint32, error) { return uint32(r), nil }

// destArg unpacks a destination register.
type destArg cpu.Register

func (d *destArg) Unpack(v starlark.Value) error {
	reg, ok := v.(register)
	if !ok {
		return cpu.ErrParseRegister(wordOf(v))
	}

	*d = destArg(reg)
	return nil
}

// operandArg unpacks a register or integer operand.
type operandArg cpu.Operand

func (o *operandArg) Unpack(v starlark.Value) error {
	switch value := v.(type) {
	case register:
		*o = operandArg(cpu.Reg(cpu.Register(value)))
	case starlark.Int:
		number, ok := value.Int64()
		if !ok {
			return cpu.ErrParseNumber(value.String())
		}
		*o = operandArg(cpu.Imm(int(number)))
	default:
		return cpu.ErrParseValue(wordOf(v))
	}

	return nil
}

// targetArg unpacks a label name or a raw instruction index.
type targetArg cpu.Target

func (t *targetArg) Unpack(v starlark.Value) error {
	switch value := v.(type) {
	case starlark.String:
		name := value.GoString()
		if len(name) == 0 {
			return cpu.ErrLabelSyntax
		}
		*t = targetArg(cpu.Label(name))
	case starlark.Int:
		number, ok := value.Int64()
		if !ok {
			return cpu.ErrParseNumber(value.String())
		}
		*t = targetArg(cpu.Index(int(number)))
	default:
		return cpu.ErrLabelSyntax
	}

	return nil
}

// labelArg unpacks a label name.
type labelArg string

func (l *labelArg) Unpack(v starlark.Value) error {
	name, ok := v.(starlark.String)
	if !ok {
		return cpu.ErrLabelSyntax
	}

	*l = labelArg(name.GoString())
	return nil
}
