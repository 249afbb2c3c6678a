package cpu

import (
	"log"
	"maps"
	"slices"
)

// Builder appends instructions and labels to a program under construction.
//
// The first error encountered is kept; later calls are ignored once an
// error is pending. Check Err() after each call, or once via Program().
type Builder struct {
	Verbose bool // If set, logs each appended instruction.

	opcodes []Opcode
	labels  Labels
	lineNo  int
	words   []string
	err     error
}

// At sets the source location recorded for subsequently appended instructions.
func (b *Builder) At(lineNo int, words []string) {
	b.lineNo = lineNo
	b.words = words
}

// Len returns the number of instructions appended so far.
func (b *Builder) Len() int {
	return len(b.opcodes)
}

// Err returns the first error encountered.
func (b *Builder) Err() error {
	return b.err
}

// Append adds an instruction to the program.
func (b *Builder) Append(inst Instruction) {
	if b.err != nil {
		return
	}

	switch inst.Kind {
	case KIND_MOVE, KIND_INCREMENT, KIND_DECREMENT, KIND_COMPARE:
		if !inst.Dest.Valid() {
			b.err = ErrRegisterUnknown(inst.Dest)
			return
		}
		if inst.Source.Kind == OPERAND_REGISTER && !inst.Source.Register.Valid() {
			b.err = ErrRegisterUnknown(inst.Source.Register)
			return
		}
	case KIND_JUMP:
		if !inst.Cond.Valid() {
			b.err = ErrOpcodeCond
			return
		}
	}

	if b.Verbose {
		log.Printf("builder: %03d: %v", len(b.opcodes), inst)
	}

	b.opcodes = append(b.opcodes, Opcode{
		LineNo:      b.lineNo,
		Words:       slices.Clone(b.words),
		Instruction: inst,
	})
}

// DeclareLabel binds a label to the index of the next appended instruction.
// Declaring a name twice fails with ErrLabelDuplicate; it does not rebind.
func (b *Builder) DeclareLabel(name string) {
	if b.err != nil {
		return
	}

	if len(name) == 0 {
		b.err = ErrLabelSyntax
		return
	}

	_, ok := b.labels[name]
	if ok {
		b.err = ErrLabelDuplicate
		return
	}

	if b.labels == nil {
		b.labels = make(Labels, 16)
	}
	b.labels[name] = len(b.opcodes)
}

// sourceOf returns the optional source operand, which defaults to 1.
func (b *Builder) sourceOf(src []Operand) (op Operand, ok bool) {
	switch len(src) {
	case 0:
		op = Imm(1)
	case 1:
		op = src[0]
	default:
		if b.err == nil {
			b.err = ErrOpcodeExtraArgs
		}
		return
	}

	ok = true
	return
}

// Move appends `mov dst, src`.
func (b *Builder) Move(dst Register, src Operand) {
	b.Append(MakeMove(dst, src))
}

// Increment appends `inc dst, src`. The source defaults to 1.
func (b *Builder) Increment(dst Register, src ...Operand) {
	op, ok := b.sourceOf(src)
	if ok {
		b.Append(MakeIncrement(dst, op))
	}
}

// Decrement appends `dec dst, src`. The source defaults to 1.
func (b *Builder) Decrement(dst Register, src ...Operand) {
	op, ok := b.sourceOf(src)
	if ok {
		b.Append(MakeDecrement(dst, op))
	}
}

// Compare appends `cmp dst, src`.
func (b *Builder) Compare(dst Register, src Operand) {
	b.Append(MakeCompare(dst, src))
}

// Jump appends a jump with the given condition.
func (b *Builder) Jump(cond Cond, target Target) {
	b.Append(MakeJump(cond, target))
}

// JumpAlways appends `jmp target`.
func (b *Builder) JumpAlways(target Target) { b.Jump(COND_ALWAYS, target) }

// JumpIfEqual appends `je target`.
func (b *Builder) JumpIfEqual(target Target) { b.Jump(COND_EQ, target) }

// JumpIfNotEqual appends `jne target`.
func (b *Builder) JumpIfNotEqual(target Target) { b.Jump(COND_NE, target) }

// JumpIfLess appends `jl target`.
func (b *Builder) JumpIfLess(target Target) { b.Jump(COND_LT, target) }

// JumpIfLessOrEqual appends `jle target`.
func (b *Builder) JumpIfLessOrEqual(target Target) { b.Jump(COND_LE, target) }

// JumpIfGreater appends `jg target`.
func (b *Builder) JumpIfGreater(target Target) { b.Jump(COND_GT, target) }

// JumpIfGreaterOrEqual appends `jge target`.
func (b *Builder) JumpIfGreaterOrEqual(target Target) { b.Jump(COND_GE, target) }

// Program returns a copy of the program built so far.
func (b *Builder) Program() (prog *Program, err error) {
	if b.err != nil {
		err = b.err
		return
	}

	prog = &Program{
		Opcodes: slices.Clone(b.opcodes),
		Labels:  maps.Clone(b.labels),
	}
	if prog.Labels == nil {
		prog.Labels = Labels{}
	}

	return
}

// Reset discards all instructions, labels and errors.
func (b *Builder) Reset() {
	b.opcodes = b.opcodes[:0]
	clear(b.labels)
	b.lineNo = 0
	b.words = nil
	b.err = nil
}
