package emulator

import (
	"log"

	"github.com/ezrec/regvm/cpu"
)

// LogTracer logs every executed instruction.
type LogTracer struct {
	Prefix string // Prepended to each line.
}

func (lt *LogTracer) Trace(ip int, op cpu.Opcode) {
	if op.LineNo > 0 {
		log.Printf("%v%03d: %-16v ; line %d", lt.Prefix, ip, op.Instruction, op.LineNo)
	} else {
		log.Printf("%v%03d: %v", lt.Prefix, ip, op.Instruction)
	}
}

// Profile counts executions of each instruction index.
type Profile map[int]int

func (p Profile) Trace(ip int, op cpu.Opcode) {
	p[ip] += 1
}

// Tracers fans each instruction out to several tracers, in order.
type Tracers []Tracer

func (ts Tracers) Trace(ip int, op cpu.Opcode) {
	for _, t := range ts {
		t.Trace(ip, op)
	}
}
