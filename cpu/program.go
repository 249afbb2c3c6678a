package cpu

import (
	"fmt"
	"iter"
	"maps"
	"slices"
	"strings"
)

// Labels maps jump labels to instruction indexes.
type Labels map[string]int

// Lookup returns the index a label was declared at.
func (labels Labels) Lookup(name string) (index int, ok bool) {
	index, ok = labels[name]
	return
}

// Resolve returns the instruction index of a jump target.
//
// A label that was never declared, but reads as an integer, resolves to
// that integer. A mistyped numeric label therefore jumps to an arbitrary
// index rather than failing.
func (labels Labels) Resolve(target Target) (index int, err error) {
	if !target.IsLabel() {
		index = target.Index
		return
	}

	index, ok := labels.Lookup(target.Label)
	if ok {
		return
	}

	index, err = parseInt(target.Label)
	if err != nil {
		err = ErrLabelMissing(target.Label)
	}

	return
}

// At returns the labels declared at an index, in name order.
func (labels Labels) At(index int) (names []string) {
	for name, ip := range labels {
		if ip == index {
			names = append(names, name)
		}
	}
	slices.Sort(names)

	return
}

// Program is an assembled, immutable instruction sequence.
type Program struct {
	Opcodes []Opcode
	Labels  Labels
}

// Len returns the number of instructions in the program.
func (prog *Program) Len() int {
	return len(prog.Opcodes)
}

// Fetch returns the instruction at an index.
func (prog *Program) Fetch(ip int) (inst Instruction, ok bool) {
	if ip < 0 || ip >= len(prog.Opcodes) {
		return
	}

	return prog.Opcodes[ip].Instruction, true
}

// LineNo returns the source line of the instruction at an index, or zero.
func (prog *Program) LineNo(ip int) int {
	if ip < 0 || ip >= len(prog.Opcodes) {
		return 0
	}

	return prog.Opcodes[ip].LineNo
}

// Instructions iterates over the program's instructions by index.
func (prog *Program) Instructions() iter.Seq2[int, Instruction] {
	return func(yield func(ip int, inst Instruction) bool) {
		for ip, op := range prog.Opcodes {
			if !yield(ip, op.Instruction) {
				return
			}
		}
	}
}

// Clone returns a deep copy of the program.
func (prog *Program) Clone() *Program {
	clone := &Program{
		Opcodes: slices.Clone(prog.Opcodes),
		Labels:  maps.Clone(prog.Labels),
	}
	for n := range clone.Opcodes {
		clone.Opcodes[n].Words = slices.Clone(clone.Opcodes[n].Words)
	}
	if clone.Labels == nil {
		clone.Labels = Labels{}
	}

	return clone
}

// String returns the program listing, which the Assembler accepts as input.
func (prog *Program) String() string {
	var sb strings.Builder

	for ip := 0; ip <= len(prog.Opcodes); ip++ {
		for _, name := range prog.Labels.At(ip) {
			fmt.Fprintf(&sb, "%v:\n", name)
		}
		if ip < len(prog.Opcodes) {
			fmt.Fprintf(&sb, "\t%v\n", prog.Opcodes[ip].Instruction.String())
		}
	}

	return sb.String()
}
