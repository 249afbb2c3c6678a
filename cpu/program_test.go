package cpu

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLabels_Resolve(t *testing.T) {
	assert := assert.New(t)

	labels := Labels{"loop": 1, "end": 4, "7": 2}

	table := [](struct {
		target Target
		index  int
		ok     bool
	}){
		{Label("loop"), 1, true},
		{Label("end"), 4, true},
		{Index(3), 3, true},
		{Index(-1), -1, true},
		// Declared labels win over their numeric reading.
		{Label("7"), 2, true},
		// Undeclared numeric labels are literal indexes.
		{Label("5"), 5, true},
		{Label("0x10"), 16, true},
		{Label("nowhere"), 0, false},
	}

	for _, entry := range table {
		index, err := labels.Resolve(entry.target)
		if entry.ok {
			assert.NoError(err, entry.target.String())
			assert.Equal(entry.index, index, entry.target.String())
		} else {
			var elm ErrLabelMissing
			assert.True(errors.As(err, &elm), entry.target.String())
			assert.Equal(entry.target.Label, string(elm))
		}
	}

	_, ok := labels.Lookup("5")
	assert.False(ok)

	var empty Labels
	index, err := empty.Resolve(Label("2"))
	assert.NoError(err)
	assert.Equal(2, index)
}

func TestLabels_At(t *testing.T) {
	assert := assert.New(t)

	labels := Labels{"b": 1, "a": 1, "c": 2}

	assert.Equal([]string{"a", "b"}, labels.At(1))
	assert.Equal([]string{"c"}, labels.At(2))
	assert.Nil(labels.At(0))
}

func TestProgram(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Opcodes: []Opcode{
			{LineNo: 1, Words: []string{"mov", "ax", "5"}, Instruction: MakeMove(REG_AX, Imm(5))},
			{LineNo: 3, Words: []string{"inc", "ax"}, Instruction: MakeIncrement(REG_AX, Imm(1))},
			{LineNo: 4, Words: []string{"jmp", "top"}, Instruction: MakeJump(COND_ALWAYS, Label("top"))},
		},
		Labels: Labels{"top": 1},
	}

	assert.Equal(3, prog.Len())

	inst, ok := prog.Fetch(1)
	assert.True(ok)
	assert.Equal(MakeIncrement(REG_AX, Imm(1)), inst)

	_, ok = prog.Fetch(3)
	assert.False(ok)
	_, ok = prog.Fetch(-1)
	assert.False(ok)

	assert.Equal(3, prog.LineNo(1))
	assert.Equal(0, prog.LineNo(5))

	var ips []int
	for ip, inst := range prog.Instructions() {
		ips = append(ips, ip)
		assert.Equal(prog.Opcodes[ip].Instruction, inst)
	}
	assert.Equal([]int{0, 1, 2}, ips)

	listing := "\tmov ax, 5\ntop:\n\tinc ax, 1\n\tjmp top\n"
	assert.Equal(listing, prog.String())
}

func TestProgram_Clone(t *testing.T) {
	assert := assert.New(t)

	prog := &Program{
		Opcodes: []Opcode{
			{LineNo: 1, Words: []string{"mov", "ax", "5"}, Instruction: MakeMove(REG_AX, Imm(5))},
		},
	}

	clone := prog.Clone()
	assert.Equal(prog.Opcodes, clone.Opcodes)
	assert.NotNil(clone.Labels)

	clone.Opcodes[0].Words[0] = "changed"
	clone.Labels["new"] = 0
	assert.Equal("mov", prog.Opcodes[0].Words[0])
	assert.Nil(prog.Labels)
}

func TestProgram_StringTrailingLabel(t *testing.T) {
	assert := assert.New(t)

	b := &Builder{}
	b.Move(REG_AX, Imm(1))
	b.DeclareLabel("end")

	prog, err := b.Program()
	assert.NoError(err)
	assert.Equal("\tmov ax, 1\nend:\n", prog.String())
}
