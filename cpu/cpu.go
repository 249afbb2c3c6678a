package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"
)

// IP_HALT is the conventional jump target that ends a program.
const IP_HALT = -1

var _cpu_defines = map[string]string{
	"REGISTER_COUNT": fmt.Sprintf("%v", REGISTER_COUNT),
	"IP_HALT":        fmt.Sprintf("%v", IP_HALT),
}

// Cpu is the execution context for a single program run.
type Cpu struct {
	Verbose   bool // Set to enable verbose logging.
	Strict    bool // Set to fail on unknown instructions and undeclared labels.
	TickLimit int  // Maximum instructions to execute, unlimited if zero.

	Program *Program // Program being executed.

	Ip       int       // Current instruction pointer.
	Register Registers // Register bank.
	Flag     int       // Signed difference from the last comparison.

	Ticks int // Instructions executed since reset.
}

// NewCpu creates a new CPU, reset to run a program.
func NewCpu(prog *Program) (cpu *Cpu) {
	cpu = &Cpu{
		Program: prog,
	}

	cpu.Reset()

	return
}

// Defines for the cpu
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	return maps.All(_cpu_defines)
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	regs := []string{
		"ip",
		"flag",
		"ax", "bx", "cx", "dx",
		"ticks",
	}
	for _, reg := range regs {
		var val int
		switch reg {
		case "ip":
			val = cpu.Ip
		case "flag":
			val = cpu.Flag
		case "ticks":
			val = cpu.Ticks
		default:
			r, _ := ParseRegister(reg)
			val = cpu.Register[r]
		}
		text += fmt.Sprintf("% 5s: %v\n", reg, val)
	}

	return
}

// Reset the CPU state.
// - Clears the registers and the flag.
// - Zeros the tick counter.
// - Sets the instruction pointer to the first instruction.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.Register.Reset()
	cpu.Flag = 0
	cpu.Ip = 0
	cpu.Ticks = 0
}

// Halted returns true once the instruction pointer has left the program.
func (cpu *Cpu) Halted() bool {
	if cpu.Program == nil {
		return true
	}

	return cpu.Ip < 0 || cpu.Ip >= cpu.Program.Len()
}

// FetchInstruction fetches the instruction at the instruction pointer.
func (cpu *Cpu) FetchInstruction() (inst Instruction, err error) {
	if cpu.Halted() {
		err = ErrHalt
		return
	}

	inst, _ = cpu.Program.Fetch(cpu.Ip)
	return
}

// Tick executes a single instruction.
func (cpu *Cpu) Tick() (err error) {
	inst, err := cpu.FetchInstruction()
	if err != nil {
		return
	}

	if cpu.TickLimit > 0 && cpu.Ticks >= cpu.TickLimit {
		err = ErrTickLimit
		return
	}

	err = cpu.Execute(inst)
	return
}

// Run ticks until the program halts, and returns the final registers.
func (cpu *Cpu) Run() (regs [REGISTER_COUNT]int, err error) {
	for {
		err = cpu.Tick()
		if errors.Is(err, ErrHalt) {
			err = nil
			break
		}
		if err != nil {
			return
		}
	}

	regs = cpu.Register.Values()
	return
}

// Run executes a program on a fresh CPU, and returns the final registers in
// ax, bx, cx, dx order.
func Run(prog *Program) (regs [REGISTER_COUNT]int, err error) {
	return NewCpu(prog).Run()
}

// Execute executes a single decoded instruction.
func (cpu *Cpu) Execute(inst Instruction) (err error) {
	defer func() {
		if err != nil {
			err = errors.Join(ErrOpcode(inst), err)
		}
	}()
	if cpu.Verbose {
		log.Printf("%03d: %v", cpu.Ip, inst)
	}

	next_ip := cpu.Ip + 1

	switch inst.Kind {
	case KIND_MOVE:
		var value int
		value, err = inst.Source.Resolve(&cpu.Register)
		if err != nil {
			err = errors.Join(ErrOpcodeArg2, err)
			return
		}
		err = cpu.Register.Write(inst.Dest, value)
		if err != nil {
			err = errors.Join(ErrOpcodeArg1, err)
			return
		}
	case KIND_INCREMENT, KIND_DECREMENT, KIND_COMPARE:
		var input, value int
		input, err = cpu.Register.Read(inst.Dest)
		if err != nil {
			err = errors.Join(ErrOpcodeArg1, err)
			return
		}
		value, err = inst.Source.Resolve(&cpu.Register)
		if err != nil {
			err = errors.Join(ErrOpcodeArg2, err)
			return
		}
		switch inst.Kind {
		case KIND_INCREMENT:
			cpu.Register[inst.Dest] = input + value
		case KIND_DECREMENT:
			cpu.Register[inst.Dest] = input - value
		case KIND_COMPARE:
			cpu.Flag = input - value
		}
	case KIND_JUMP:
		var taken bool
		taken, err = inst.Cond.Test(cpu.Flag)
		if err != nil {
			return
		}
		if taken {
			next_ip, err = cpu.resolve(inst.Target)
			if err != nil {
				return
			}
		}
	default:
		if cpu.Strict {
			err = ErrInstructionInvalid
			return
		}
		// Unknown instructions are skipped.
		if cpu.Verbose {
			log.Printf("cpu: %03d: ignored %v", cpu.Ip, inst)
		}
	}

	cpu.Ip = next_ip
	cpu.Ticks += 1

	return
}

// resolve returns the instruction index of a jump target.
func (cpu *Cpu) resolve(target Target) (ip int, err error) {
	var labels Labels
	if cpu.Program != nil {
		labels = cpu.Program.Labels
	}

	if cpu.Strict && target.IsLabel() {
		var ok bool
		ip, ok = labels.Lookup(target.Label)
		if !ok {
			err = ErrLabelMissing(target.Label)
		}
		return
	}

	return labels.Resolve(target)
}
