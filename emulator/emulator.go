// Copyright 2024, Jason S. McMullan <jason.mcmullan@gmail.com>

package emulator

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/regvm/cpu"
	"github.com/ezrec/regvm/internal"
)

const (
	TICK_POLL = 1024 // Ticks between checks of the run context.
)

// Tracer observes each instruction just before it executes.
type Tracer interface {
	Trace(ip int, op cpu.Opcode)
}

//go:generate mockgen -write_package_comment=false -package=$GOPACKAGE -destination=mock_tracer_test.go github.com/ezrec/regvm/emulator Tracer

// Emulator state. CPU + program + tracing.
type Emulator struct {
	Verbose  bool         // If set, enables verbose logging.
	*cpu.Cpu              // Reference to the CPU simulation.
	Program  *cpu.Program // Reference to the currently running program listing.

	Tracer Tracer // If set, observes every executed instruction.
}

// NewEmulator creates a new emulator, with an empty program.
func NewEmulator() (emu *Emulator) {
	emu = &Emulator{
		Cpu:     cpu.NewCpu(nil),
		Program: &cpu.Program{},
	}

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	defines := map[string]string{
		"TICK_LIMIT": fmt.Sprintf("%v", emu.Cpu.TickLimit),
		"TICK_POLL":  fmt.Sprintf("%v", TICK_POLL),
	}

	return internal.Concat2(maps.All(defines),
		emu.Cpu.Defines(),
	)
}

// Reset loads the program into the CPU, and resets the CPU state.
func (emu *Emulator) Reset() {
	if emu.Verbose {
		log.Printf("emulator: reset")
	}

	emu.Cpu.Verbose = emu.Verbose
	emu.Cpu.Program = emu.Program
	emu.Cpu.Reset()
}

// Ticks returns the total ticks since a reset.
func (emu *Emulator) Ticks() int {
	return emu.Cpu.Ticks
}

// Ip returns current instruction pointer.
func (emu *Emulator) Ip() int {
	return emu.Cpu.Ip
}

// Opcode returns the current opcode.
func (emu *Emulator) Opcode() (op cpu.Opcode, ok bool) {
	prog := emu.Cpu.Program
	if prog == nil || emu.Cpu.Halted() {
		return
	}

	return prog.Opcodes[emu.Cpu.Ip], true
}

// LineNo returns the current line number for the executing opcode.
func (emu *Emulator) LineNo() int {
	op, _ := emu.Opcode()
	return op.LineNo
}

// Tick performs a single tick of the emulator.
// done is set once the program has halted.
func (emu *Emulator) Tick() (done bool, err error) {
	// Set CPU verbosity
	emu.Cpu.Verbose = emu.Verbose

	ip := emu.Cpu.Ip
	op, ok := emu.Opcode()
	defer func() {
		if err != nil {
			err = &ErrRuntime{LineNo: op.LineNo, Ip: ip, Err: err}
		}
	}()

	limited := emu.Cpu.TickLimit > 0 && emu.Cpu.Ticks >= emu.Cpu.TickLimit
	if ok && !limited && emu.Tracer != nil {
		emu.Tracer.Trace(ip, op)
	}

	err = emu.Cpu.Tick()
	if errors.Is(err, cpu.ErrHalt) {
		err = nil
		done = true
		return
	}

	return
}

// Run ticks until the program halts, the tick limit is reached, or the
// context is done. The CPU is not reset first, so a stopped run may be
// resumed.
func (emu *Emulator) Run(ctx context.Context) (regs [cpu.REGISTER_COUNT]int, err error) {
	for n := 0; ; n++ {
		if n%TICK_POLL == 0 {
			err = ctx.Err()
			if err != nil {
				err = &ErrRuntime{LineNo: emu.LineNo(), Ip: emu.Cpu.Ip, Err: err}
				return
			}
		}

		var done bool
		done, err = emu.Tick()
		if err != nil {
			return
		}
		if done {
			break
		}
	}

	regs = emu.Cpu.Register.Values()
	return
}
