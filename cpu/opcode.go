package cpu

import (
	"fmt"
	"strconv"
)

// Kind is the instruction operation type.
type Kind int

//go:generate go tool stringer -linecomment -type=Kind
const (
	KIND_MOVE      = Kind(0) // mov
	KIND_INCREMENT = Kind(1) // inc
	KIND_DECREMENT = Kind(2) // dec
	KIND_COMPARE   = Kind(3) // cmp
	KIND_JUMP      = Kind(4) // jump
)

// Cond is a jump condition, tested against the comparison flag.
type Cond int

//go:generate go tool stringer -linecomment -type=Cond
const (
	COND_ALWAYS = Cond(0) // jmp
	COND_EQ     = Cond(1) // je
	COND_NE     = Cond(2) // jne
	COND_LT     = Cond(3) // jl
	COND_LE     = Cond(4) // jle
	COND_GT     = Cond(5) // jg
	COND_GE     = Cond(6) // jge
)

// condMap maps jump mnemonics to conditions.
var condMap = map[string]Cond{
	"jmp": COND_ALWAYS,
	"je":  COND_EQ,
	"jne": COND_NE,
	"jl":  COND_LT,
	"jle": COND_LE,
	"jg":  COND_GT,
	"jge": COND_GE,
}

// ParseCond returns the condition for a jump mnemonic.
func ParseCond(mnemonic string) (cond Cond, ok bool) {
	cond, ok = condMap[mnemonic]
	return
}

// Valid returns true for the seven jump conditions.
func (cond Cond) Valid() bool {
	return cond >= COND_ALWAYS && cond <= COND_GE
}

// Test evaluates the condition against a comparison flag.
func (cond Cond) Test(flag int) (taken bool, err error) {
	switch cond {
	case COND_ALWAYS:
		taken = true
	case COND_EQ:
		taken = flag == 0
	case COND_NE:
		taken = flag != 0
	case COND_LT:
		taken = flag < 0
	case COND_LE:
		taken = flag <= 0
	case COND_GT:
		taken = flag > 0
	case COND_GE:
		taken = flag >= 0
	default:
		err = ErrOpcodeCond
	}

	return
}

// Target is a jump destination: a label name, or a raw instruction index
// when Label is empty.
type Target struct {
	Label string
	Index int
}

// Label makes a jump target referencing a label.
func Label(name string) Target {
	return Target{Label: name}
}

// Index makes a jump target referencing an instruction index.
func Index(index int) Target {
	return Target{Index: index}
}

// IsLabel returns true if the target references a label.
func (target Target) IsLabel() bool {
	return len(target.Label) != 0
}

// String returns the assembly form of the target.
func (target Target) String() string {
	if target.IsLabel() {
		return target.Label
	}

	return strconv.Itoa(target.Index)
}

// Instruction is a single decoded instruction.
//
// Move, Increment, Decrement and Compare use Dest and Source.
// Jump uses Cond and Target.
type Instruction struct {
	Kind   Kind
	Dest   Register
	Source Operand
	Cond   Cond
	Target Target
}

// MakeMove creates a `mov dst, src` instruction.
func MakeMove(dst Register, src Operand) Instruction {
	return Instruction{Kind: KIND_MOVE, Dest: dst, Source: src}
}

// MakeIncrement creates an `inc dst, src` instruction.
func MakeIncrement(dst Register, src Operand) Instruction {
	return Instruction{Kind: KIND_INCREMENT, Dest: dst, Source: src}
}

// MakeDecrement creates a `dec dst, src` instruction.
func MakeDecrement(dst Register, src Operand) Instruction {
	return Instruction{Kind: KIND_DECREMENT, Dest: dst, Source: src}
}

// MakeCompare creates a `cmp dst, src` instruction.
func MakeCompare(dst Register, src Operand) Instruction {
	return Instruction{Kind: KIND_COMPARE, Dest: dst, Source: src}
}

// MakeJump creates a conditional jump instruction.
func MakeJump(cond Cond, target Target) Instruction {
	return Instruction{Kind: KIND_JUMP, Cond: cond, Target: target}
}

// String returns the assembly language representation of this instruction.
func (inst Instruction) String() (out string) {
	switch inst.Kind {
	case KIND_MOVE, KIND_INCREMENT, KIND_DECREMENT, KIND_COMPARE:
		out = fmt.Sprintf("%v %v, %v", inst.Kind.String(), inst.Dest.String(), inst.Source.String())
	case KIND_JUMP:
		out = fmt.Sprintf("%v %v", inst.Cond.String(), inst.Target.String())
	default:
		out = inst.Kind.String()
	}

	return
}

// Opcode is an instruction with the source location it was assembled from.
type Opcode struct {
	LineNo int      // Source line number, zero if unknown.
	Words  []string // Source words, nil if unknown.
	Instruction
}
