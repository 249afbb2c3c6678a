// Package script compiles Starlark programs into register machine programs.
//
// A script calls one builtin per instruction:
//
//	mov(ax, 0)
//	label("loop")
//	inc(ax)
//	cmp(ax, 3)
//	jne("loop")
//
// The registers ax, bx, cx and dx are predeclared. Operands are registers or
// integers. Jump targets are label strings, or integers for raw instruction
// indexes. Ordinary Starlark control flow runs at compile time, so loops and
// functions may be used to generate code.
package script

import (
	"errors"
	"io"
	"log"
	"strconv"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/regvm/cpu"
	"github.com/ezrec/regvm/translate"
)

var f = translate.From

var (
	ErrKeywordArgs = errors.New(f("keyword arguments not supported"))
	ErrSource      = errors.New(f("unsupported source type"))
)

// Compiler compiles Starlark scripts.
type Compiler struct {
	Verbose bool // If set, logs each emitted instruction and script print().

	predefine starlark.StringDict
	builder   cpu.Builder
}

// Predefine makes a global visible to compiled scripts.
// Integer values are predeclared as ints, anything else as a string.
func (c *Compiler) Predefine(name string, value string) {
	if c.predefine == nil {
		c.predefine = starlark.StringDict{}
	}

	number, err := strconv.ParseInt(value, 0, strconv.IntSize)
	if err == nil {
		c.predefine[name] = starlark.MakeInt64(number)
	} else {
		c.predefine[name] = starlark.String(value)
	}
}

// predeclared returns the script globals.
func (c *Compiler) predeclared() (dict starlark.StringDict) {
	dict = starlark.StringDict{}
	for name, value := range c.predefine {
		dict[name] = value
	}

	for reg := range cpu.Register(cpu.REGISTER_COUNT) {
		dict[reg.String()] = register(reg)
	}

	dict["mov"] = starlark.NewBuiltin("mov", c.binary(2, (*cpu.Builder).Move))
	dict["cmp"] = starlark.NewBuiltin("cmp", c.binary(2, (*cpu.Builder).Compare))
	dict["inc"] = starlark.NewBuiltin("inc", c.binary(1, func(b *cpu.Builder, dst cpu.Register, src cpu.Operand) {
		b.Increment(dst, src)
	}))
	dict["dec"] = starlark.NewBuiltin("dec", c.binary(1, func(b *cpu.Builder, dst cpu.Register, src cpu.Operand) {
		b.Decrement(dst, src)
	}))
	dict["label"] = starlark.NewBuiltin("label", c.label)

	for cond := range cpu.Cond(cpu.COND_GE + 1) {
		dict[cond.String()] = starlark.NewBuiltin(cond.String(), c.jump(cond))
	}

	return
}

// Compile runs a script and returns the program it built.
// The src argument may be a string, []byte, io.Reader, or nil to read filename.
func (c *Compiler) Compile(filename string, src any) (prog *cpu.Program, err error) {
	switch src.(type) {
	case nil, string, []byte, io.Reader:
	default:
		err = ErrSource
		return
	}

	c.builder.Reset()
	c.builder.Verbose = c.Verbose

	thread := &starlark.Thread{
		Name: filename,
		Print: func(_ *starlark.Thread, msg string) {
			if c.Verbose {
				log.Printf("%v: %v", filename, msg)
			}
		},
	}

	opts := &syntax.FileOptions{
		TopLevelControl: true,
		GlobalReassign:  true,
	}

	_, err = starlark.ExecFileOptions(opts, thread, filename, src, c.predeclared())
	if err != nil {
		return
	}

	prog, err = c.builder.Program()
	if err != nil {
		return
	}

	// Final check of jump labels.
	for _, op := range prog.Opcodes {
		if op.Kind != cpu.KIND_JUMP || !op.Target.IsLabel() {
			continue
		}
		_, err = prog.Labels.Resolve(op.Target)
		if err != nil {
			err = &cpu.ErrSyntax{LineNo: op.LineNo, Line: strings.Join(op.Words, " "), Err: err}
			prog = nil
			return
		}
	}

	return
}

// Compile compiles a script with a default Compiler.
func Compile(filename string, src any) (prog *cpu.Program, err error) {
	return (&Compiler{}).Compile(filename, src)
}

// Run compiles a script and runs it to completion, returning the final
// registers in ax, bx, cx, dx order.
func Run(filename string, src any) (regs [cpu.REGISTER_COUNT]int, err error) {
	prog, err := Compile(filename, src)
	if err != nil {
		return
	}

	return cpu.Run(prog)
}

type builtin func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error)

// at records the calling script line for the next emitted instruction.
func (c *Compiler) at(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple) {
	words := []string{fn.Name()}
	for _, arg := range args {
		words = append(words, wordOf(arg))
	}

	c.builder.At(int(thread.CallFrame(1).Pos.Line), words)
}

// binary builds a register and operand instruction builtin.
// With one required argument the source defaults to 1.
func (c *Compiler) binary(required int, emit func(b *cpu.Builder, dst cpu.Register, src cpu.Operand)) builtin {
	return func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var dst destArg
		src := operandArg(cpu.Imm(1))
		err := unpack(args, kwargs, required, cpu.ErrOpcodeValueMissing, &dst, &src)
		if err != nil {
			return nil, err
		}

		c.at(thread, fn, args)
		emit(&c.builder, cpu.Register(dst), cpu.Operand(src))

		return starlark.None, c.builder.Err()
	}
}

func (c *Compiler) jump(cond cpu.Cond) builtin {
	return func(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
		var target targetArg
		err := unpack(args, kwargs, 1, cpu.ErrTargetMissing, &target)
		if err != nil {
			return nil, err
		}

		c.at(thread, fn, args)
		c.builder.Jump(cond, cpu.Target(target))

		return starlark.None, c.builder.Err()
	}
}

func (c *Compiler) label(thread *starlark.Thread, fn *starlark.Builtin, args starlark.Tuple, kwargs []starlark.Tuple) (starlark.Value, error) {
	var name string
	err := unpack(args, kwargs, 1, cpu.ErrTargetMissing, (*labelArg)(&name))
	if err != nil {
		return nil, err
	}

	c.builder.DeclareLabel(name)

	return starlark.None, c.builder.Err()
}

// unpack assigns positional arguments to their unpackers.
func unpack(args starlark.Tuple, kwargs []starlark.Tuple, required int, missing error, vars ...starlark.Unpacker) (err error) {
	if len(kwargs) > 0 {
		err = ErrKeywordArgs
		return
	}
	if len(args) < required {
		err = missing
		return
	}
	if len(args) > len(vars) {
		err = cpu.ErrOpcodeExtraArgs
		return
	}

	for n, arg := range args {
		err = vars[n].Unpack(arg)
		if err != nil {
			return
		}
	}

	return
}

// wordOf returns the assembler spelling of a builtin argument.
func wordOf(value starlark.Value) string {
	str, ok := value.(starlark.String)
	if ok {
		return str.GoString()
	}

	return value.String()
}
