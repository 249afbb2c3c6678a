// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"maps"
	"os"
	"os/signal"

	"github.com/tebeka/atexit"

	"github.com/ezrec/regvm/config"
	"github.com/ezrec/regvm/cpu"
	"github.com/ezrec/regvm/emulator"
	"github.com/ezrec/regvm/image"
	"github.com/ezrec/regvm/internal"
	"github.com/ezrec/regvm/script"
)

func main() {
	var compile string
	var star string
	var input string
	var output string
	var configPath string
	var ticks int
	var strict bool
	var listing bool
	var defines bool
	var trace bool
	var profile bool
	var verbose bool

	flag.StringVar(&compile, "c", "", ".asm file to assemble")
	flag.StringVar(&star, "S", "", ".star script to compile")
	flag.StringVar(&input, "i", "", ".rvm program image to load")
	flag.StringVar(&output, "o", "", "Save program image, do not execute")
	flag.StringVar(&configPath, "config", "", "regvm.toml configuration file")
	flag.IntVar(&ticks, "n", -1, "Tick limit, 0 for unlimited (default from configuration)")
	flag.BoolVar(&strict, "strict", false, "Fail on unknown instructions and undeclared labels")
	flag.BoolVar(&listing, "l", false, "Print the program listing")
	flag.BoolVar(&defines, "D", false, "Print the predefined equates")
	flag.BoolVar(&trace, "t", false, "Trace each executed instruction")
	flag.BoolVar(&profile, "p", false, "Print instruction execution counts")
	flag.BoolVar(&verbose, "v", false, "Verbose mode")

	flag.Parse()

	if flag.NArg() != 0 {
		atexit.Fatalf("%v: Unknown arguments: %v", os.Args[0], flag.Args())
	}

	cfg := config.Default()
	if len(configPath) != 0 {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			atexit.Fatal(err)
		}
	}

	// Flags override the configuration.
	if ticks >= 0 {
		cfg.Machine.TickLimit = ticks
	}
	cfg.Machine.Strict = cfg.Machine.Strict || strict
	cfg.Machine.Trace = cfg.Machine.Trace || trace
	cfg.Machine.Verbose = cfg.Machine.Verbose || verbose

	emu := emulator.NewEmulator()
	emu.Verbose = cfg.Machine.Verbose
	emu.Cpu.Strict = cfg.Machine.Strict
	emu.Cpu.TickLimit = cfg.Machine.TickLimit

	if defines {
		for key, value := range internal.Sorted2(emu.Defines()) {
			fmt.Printf("%v=%v\n", key, value)
		}
	}

	sources := 0
	for _, source := range []string{compile, star, input} {
		if len(source) != 0 {
			sources++
		}
	}
	switch {
	case sources == 0 && defines:
		atexit.Exit(0)
	case sources != 1:
		atexit.Fatalf("%v: exactly one of -c, -S or -i is required", os.Args[0])
	}

	var prog *cpu.Program

	switch {
	case len(compile) != 0:
		inf, err := os.Open(compile)
		if err != nil {
			atexit.Fatalf("%v: %v", compile, err)
		}
		defer inf.Close()

		asm := &cpu.Assembler{Verbose: cfg.Machine.Verbose}
		for key, value := range internal.Concat2(emu.Defines(), cfg.Equates()) {
			asm.Predefine(key, value)
		}
		prog, err = asm.Parse(inf)
		if err != nil {
			atexit.Fatalf("%v: %v", compile, err)
		}
	case len(star) != 0:
		c := &script.Compiler{Verbose: cfg.Machine.Verbose}
		for key, value := range internal.Concat2(emu.Defines(), cfg.Equates()) {
			c.Predefine(key, value)
		}
		var err error
		prog, err = c.Compile(star, nil)
		if err != nil {
			atexit.Fatalf("%v: %v", star, err)
		}
	case len(input) != 0:
		data, err := os.ReadFile(input)
		if err != nil {
			atexit.Fatalf("%v: %v", input, err)
		}
		prog, err = image.Unmarshal(data)
		if err != nil {
			atexit.Fatalf("%v: %v", input, err)
		}
	}

	if listing {
		fmt.Print(prog.String())
	}

	if len(output) != 0 {
		data, err := image.Marshal(prog)
		if err != nil {
			atexit.Fatalf("%v: %v", output, err)
		}
		err = os.WriteFile(output, data, 0o644)
		if err != nil {
			atexit.Fatalf("%v: %v", output, err)
		}
		atexit.Exit(0)
	}

	var tracers emulator.Tracers
	if cfg.Machine.Trace {
		tracers = append(tracers, &emulator.LogTracer{Prefix: "trace: "})
	}
	counts := emulator.Profile{}
	if profile {
		tracers = append(tracers, counts)
	}
	if len(tracers) > 0 {
		emu.Tracer = tracers
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	atexit.Register(stop)

	emu.Program = prog
	emu.Reset()
	regs, err := emu.Run(ctx)

	if profile {
		for ip, count := range internal.Sorted2(maps.All(counts)) {
			inst, _ := prog.Fetch(ip)
			fmt.Printf("%03d: %8d  %v\n", ip, count, inst)
		}
	}

	if err != nil {
		log.Print(emu.Cpu.String())
		atexit.Fatal(err)
	}

	for reg, value := range regs {
		fmt.Printf("%v: %v\n", cpu.Register(reg), value)
	}

	atexit.Exit(0)
}
