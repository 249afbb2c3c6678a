package image

import (
	"github.com/ezrec/regvm/cpu"
)

const (
	IMAGE_MAGIC   = "regvm" // Leading marker of every image.
	IMAGE_VERSION = 1       // Current image layout.
)

// wireImage is the on-disk layout of a program image.
type wireImage struct {
	Magic   string         `cbor:"1,keyasint"`
	Version int            `cbor:"2,keyasint"`
	Opcodes []wireOpcode   `cbor:"3,keyasint,omitempty"`
	Labels  map[string]int `cbor:"4,keyasint,omitempty"`
}

// wireOpcode is a flattened instruction, with its source attribution.
type wireOpcode struct {
	LineNo int      `cbor:"1,keyasint,omitempty"`
	Words  []string `cbor:"2,keyasint,omitempty"`

	Kind cpu.Kind     `cbor:"3,keyasint"`
	Dest cpu.Register `cbor:"4,keyasint,omitempty"`

	SourceKind     cpu.OperandKind `cbor:"5,keyasint,omitempty"`
	SourceRegister cpu.Register    `cbor:"6,keyasint,omitempty"`
	SourceValue    int             `cbor:"7,keyasint,omitempty"`

	Cond        cpu.Cond `cbor:"8,keyasint,omitempty"`
	TargetLabel string   `cbor:"9,keyasint,omitempty"`
	TargetIndex int      `cbor:"10,keyasint,omitempty"`
}

func toWire(op cpu.Opcode) wireOpcode {
	return wireOpcode{
		LineNo:         op.LineNo,
		Words:          op.Words,
		Kind:           op.Kind,
		Dest:           op.Dest,
		SourceKind:     op.Source.Kind,
		SourceRegister: op.Source.Register,
		SourceValue:    op.Source.Value,
		Cond:           op.Cond,
		TargetLabel:    op.Target.Label,
		TargetIndex:    op.Target.Index,
	}
}

func (w wireOpcode) opcode() cpu.Opcode {
	return cpu.Opcode{
		LineNo: w.LineNo,
		Words:  w.Words,
		Instruction: cpu.Instruction{
			Kind: w.Kind,
			Dest: w.Dest,
			Source: cpu.Operand{
				Kind:     w.SourceKind,
				Register: w.SourceRegister,
				Value:    w.SourceValue,
			},
			Cond: w.Cond,
			Target: cpu.Target{
				Label: w.TargetLabel,
				Index: w.TargetIndex,
			},
		},
	}
}
