// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/ezrec/avrsim/cpu"
	"github.com/ezrec/avrsim/debugger"
	"github.com/ezrec/avrsim/emulator"
)

// addBreakpoints parses a comma separated list of addr[:cond] breakpoints.
func addBreakpoints(dbg *debugger.Debugger, list string) (err error) {
	for _, item := range strings.Split(list, ",") {
		item = strings.TrimSpace(item)
		if len(item) == 0 {
			continue
		}

		addr_str, cond, _ := strings.Cut(item, ":")
		var addr uint64
		addr, err = strconv.ParseUint(addr_str, 0, 16)
		if err != nil {
			return
		}

		err = dbg.AddBreakpoint(uint16(addr), cond)
		if err != nil {
			return
		}
	}

	return
}

func main() {
	os.Exit(avrsim(os.Args[0], os.Args[1:]))
}

// avrsim runs the command, returning the process exit code.
func avrsim(prog string, args []string) (code int) {
	var memory int
	var origin uint
	var limit int
	var breaks string
	var input string
	var output string
	var raw bool
	var verbose bool

	flags := flag.NewFlagSet(prog, flag.ContinueOnError)
	flags.IntVar(&memory, "m", cpu.MEMORY_SIZE, "Memory size in bytes")
	flags.UintVar(&origin, "origin", cpu.ORIGIN, "Origin of raw binary images")
	flags.IntVar(&limit, "n", 0, "Tick limit, 0 for no limit")
	flags.StringVar(&breaks, "b", "", "Breakpoints, as a comma separated list of addr[:cond]")
	flags.StringVar(&input, "i", "-", "Console input")
	flags.StringVar(&output, "o", "-", "Console output")
	flags.BoolVar(&raw, "raw", false, "Raw terminal mode for console input")
	flags.BoolVar(&verbose, "v", false, "Verbose mode")

	err := flags.Parse(args)
	if err != nil {
		return 2
	}

	if flags.NArg() != 1 {
		log.Printf("%v: Usage: %v [options] image.{hex,bin}", prog, prog)
		return 2
	}
	image := flags.Arg(0)

	if origin > 0xffff {
		log.Printf("%v: origin 0x%x out of range", prog, origin)
		return 2
	}

	emu, err := emulator.NewEmulator(emulator.Config{
		MemorySize: memory,
		Origin:     uint16(origin),
		HasOrigin:  true,
	})
	if err != nil {
		log.Printf("%v: %v", prog, err)
		return 1
	}
	emu.Verbose = verbose

	err = addBreakpoints(emu.Debugger, breaks)
	if err != nil {
		log.Printf("%v: %v", breaks, err)
		return 1
	}

	err = emu.LoadFile(image)
	if err != nil {
		log.Printf("%v: %v", image, err)
		return 1
	}

	if input == "-" {
		emu.Console.Input = os.Stdin
		if raw {
			err = enterRawTerm()
			if err != nil {
				log.Printf("%v: %v", prog, err)
				return 1
			}
			defer exitRawTerm()
		}
	} else {
		inf, err := os.Open(input)
		if err != nil {
			log.Printf("%v: %v", input, err)
			return 1
		}
		defer inf.Close()
		emu.Console.Input = inf
	}

	if output == "-" {
		emu.Console.Output = os.Stdout
	} else {
		ouf, err := os.Create(output)
		if err != nil {
			log.Printf("%v: %v", output, err)
			return 1
		}
		defer ouf.Close()
		emu.Console.Output = ouf
	}

	err = run(emu, limit)
	if err != nil {
		log.Print(err)
		return 1
	}

	return 0
}

// run executes the loaded image, then reports the final machine state.
func run(emu *emulator.Emulator, limit int) (err error) {
	_, err = emu.Run(limit)

	var event *debugger.Event
	switch {
	case errors.As(err, &event):
		fmt.Fprintf(os.Stderr, "%v\n", event)
		err = nil
	case errors.Is(err, emulator.ErrTickLimit):
		fmt.Fprintf(os.Stderr, "%v\n", err)
		err = nil
	}

	text, dis_err := emu.DisplayCurrentInstruction()
	if dis_err != nil {
		text = dis_err.Error()
	}

	fmt.Fprintf(os.Stderr, "%04x: %v\n", emu.Pc(), text)
	fmt.Fprintf(os.Stderr, "ticks: %d\n", emu.Ticks)
	fmt.Fprint(os.Stderr, emu.Cpu.String())

	return
}
