// Package image stores assembled programs as canonical CBOR.
package image

import (
	"errors"
	"fmt"
	"maps"

	"github.com/fxamacker/cbor/v2"

	"github.com/ezrec/regvm/cpu"
	"github.com/ezrec/regvm/translate"
)

var f = translate.From

var (
	ErrImageMagic   = errors.New(f("not a program image"))
	ErrImageVersion = errors.New(f("unsupported image version"))
	ErrImageDecode  = errors.New(f("image corrupt"))
)

var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("image: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Marshal serializes a program to image bytes.
// Identical programs always encode to identical bytes.
func Marshal(prog *cpu.Program) (data []byte, err error) {
	img := wireImage{
		Magic:   IMAGE_MAGIC,
		Version: IMAGE_VERSION,
	}

	if prog != nil {
		img.Labels = maps.Clone(prog.Labels)
		for _, op := range prog.Opcodes {
			img.Opcodes = append(img.Opcodes, toWire(op))
		}
	}

	return cborEncMode.Marshal(&img)
}

// Unmarshal deserializes a program from image bytes.
func Unmarshal(data []byte) (prog *cpu.Program, err error) {
	var img wireImage
	err = cbor.Unmarshal(data, &img)
	if err != nil {
		err = errors.Join(ErrImageDecode, err)
		return
	}

	if img.Magic != IMAGE_MAGIC {
		err = ErrImageMagic
		return
	}

	if img.Version != IMAGE_VERSION {
		err = ErrImageVersion
		return
	}

	prog = &cpu.Program{
		Labels: cpu.Labels(img.Labels),
	}
	if prog.Labels == nil {
		prog.Labels = cpu.Labels{}
	}

	for _, w := range img.Opcodes {
		prog.Opcodes = append(prog.Opcodes, w.opcode())
	}

	return
}
