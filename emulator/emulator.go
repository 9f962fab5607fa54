// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

// Package emulator provides a complete avrsim session: a CPU with its
// console and scratch ports, the loaded program image and a debugger.
package emulator

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/avrsim/cpu"
	"github.com/ezrec/avrsim/debugger"
	"github.com/ezrec/avrsim/internal"
	"github.com/ezrec/avrsim/io"
)

const (
	CONSOLE_PORT = 0x0c // Console tape I/O port, like a UART data register.
	SCRATCH_PORT = 0x0d // Scratch FIFO I/O port.

	SCRATCH_SIZE = 256 // Default scratch FIFO capacity.
)

var _emulator_defines = map[string]string{
	"CONSOLE": fmt.Sprintf("0x%02x", CONSOLE_PORT),
	"SCRATCH": fmt.Sprintf("0x%02x", SCRATCH_PORT),
}

// Config selects the emulated machine. Zero fields take their defaults.
type Config struct {
	MemorySize  int    // Memory size in bytes, default cpu.MEMORY_SIZE.
	Origin      uint16 // Origin of raw binary images, if HasOrigin.
	HasOrigin   bool   // Set to use Origin, else cpu.ORIGIN.
	ScratchSize int    // Scratch FIFO capacity, default SCRATCH_SIZE.
}

func (cfg Config) withDefaults() Config {
	if cfg.MemorySize == 0 {
		cfg.MemorySize = cpu.MEMORY_SIZE
	}
	if !cfg.HasOrigin {
		cfg.Origin = cpu.ORIGIN
		cfg.HasOrigin = true
	}
	if cfg.ScratchSize == 0 {
		cfg.ScratchSize = SCRATCH_SIZE
	}
	return cfg
}

// Emulator state. CPU + IO ports + debugger.
type Emulator struct {
	Verbose  bool // If set, enables verbose logging.
	*cpu.Cpu      // Reference to the CPU simulation.

	Config Config // Machine configuration.

	Console io.Tape      // Console IO port.
	Scratch io.Temporary // Scratch FIFO IO port.

	Debugger *debugger.Debugger // Break and watch points.

	Rom *io.Rom // Last loaded program image.
}

// NewEmulator creates a new emulator.
func NewEmulator(config Config) (emu *Emulator, err error) {
	config = config.withDefaults()

	core, err := cpu.NewCpu(config.MemorySize)
	if err != nil {
		return
	}

	emu = &Emulator{
		Cpu:      core,
		Config:   config,
		Debugger: debugger.NewDebugger(),
	}

	emu.Scratch.Capacity = config.ScratchSize
	emu.Scratch.Rewind()

	err = errors.Join(
		emu.Cpu.SetPort(CONSOLE_PORT, &emu.Console),
		emu.Cpu.SetPort(SCRATCH_PORT, &emu.Scratch),
	)
	if err != nil {
		emu = nil
		return
	}

	emu.Cpu.Monitor = emu.Debugger
	emu.Debugger.SetDefines(emu.Defines())

	return
}

// Defines returns an iterator over all of the defines
func (emu *Emulator) Defines() iter.Seq2[string, string] {
	config := map[string]string{
		"ORIGIN":       fmt.Sprintf("0x%04x", emu.Config.Origin),
		"SCRATCH_SIZE": fmt.Sprintf("%d", emu.Config.ScratchSize),
	}
	return internal.IterSeq2Concat(maps.All(_emulator_defines),
		maps.All(config),
		emu.Cpu.Defines(),
	)
}

// Load installs a program image, and remembers it for Reset.
func (emu *Emulator) Load(rom *io.Rom) (err error) {
	emu.Cpu.Verbose = emu.Verbose

	err = emu.Cpu.Load(rom)
	if err != nil {
		return
	}

	emu.Rom = rom
	emu.Debugger.Clear()

	return
}

// LoadFile reads a program image file and installs it. Raw binary images
// are placed at the configured origin.
func (emu *Emulator) LoadFile(name string) (err error) {
	rom, err := io.ReadRom(name, uint32(emu.Config.Origin))
	if err != nil {
		return
	}

	err = emu.Load(rom)
	return
}

// Reset the emulator, reinstalling the last loaded image.
func (emu *Emulator) Reset() (err error) {
	emu.Debugger.Clear()

	if emu.Rom == nil {
		emu.Cpu.Reset()
		return
	}

	err = emu.Load(emu.Rom)
	return
}

// Registers returns a copy of the register file.
func (emu *Emulator) Registers() [cpu.REGISTER_COUNT]uint8 {
	return emu.Cpu.State.Registers()
}

// SetRegisters replaces the register file.
func (emu *Emulator) SetRegisters(regs []uint8) (err error) {
	return emu.Cpu.State.SetRegisters(regs)
}

// Register reads a single register.
func (emu *Emulator) Register(id uint8) (value uint8, err error) {
	return emu.Cpu.State.Register(id)
}

// SetRegister writes a single register.
func (emu *Emulator) SetRegister(id uint8, value uint8) (err error) {
	return emu.Cpu.State.SetRegister(id, value)
}

// Pc returns the program counter.
func (emu *Emulator) Pc() uint16 {
	return emu.Cpu.State.Pc()
}

// SetPc sets the program counter.
func (emu *Emulator) SetPc(pc uint16) (err error) {
	return emu.Cpu.State.SetPc(pc)
}

// Sp returns the stack pointer.
func (emu *Emulator) Sp() uint16 {
	return emu.Cpu.State.Sp()
}

// Flags returns the status register.
func (emu *Emulator) Flags() cpu.Flags {
	return emu.Cpu.State.Flags()
}

// SetFlags sets the status register.
func (emu *Emulator) SetFlags(flags cpu.Flags) {
	emu.Cpu.State.SetFlags(flags)
}

// Memory returns a copy of memory.
func (emu *Emulator) Memory() []uint8 {
	return emu.Cpu.State.Memory()
}

// MemorySize returns the memory size in bytes.
func (emu *Emulator) MemorySize() int {
	return emu.Cpu.State.MemorySize()
}

// Halted is set once a BREAK has executed.
func (emu *Emulator) Halted() bool {
	return emu.Cpu.State.Halted()
}

// CurrentInstruction returns the opcode word at the program counter.
func (emu *Emulator) CurrentInstruction() (word uint16, err error) {
	return emu.Cpu.State.Word(emu.Pc())
}

// DisplayCurrentInstruction disassembles the instruction at the program
// counter.
func (emu *Emulator) DisplayCurrentInstruction() (text string, err error) {
	return emu.Cpu.Disassemble(emu.Pc())
}

// Tick performs a single tick of the emulator. It is done once the CPU
// has halted. Watchpoint hits of earlier ticks are discarded; those of
// this tick are reported by Check.
func (emu *Emulator) Tick() (done bool, err error) {
	emu.Cpu.Verbose = emu.Verbose
	emu.Debugger.Verbose = emu.Verbose
	emu.Debugger.Clear()

	pc := emu.Pc()
	defer func() {
		if err != nil {
			err = &ErrRuntime{Pc: pc, Err: err}
		}
	}()

	err = emu.Cpu.Tick()
	if err != nil {
		return
	}

	done = emu.Halted()
	return
}

// Check reports a debugger stop at the current state: a breakpoint at the
// PC, or watchpoint hits of the last tick.
func (emu *Emulator) Check() (err error) {
	return emu.Debugger.Check(emu.Cpu.State)
}

// Run ticks until the CPU halts, an error occurs, or the debugger stops
// execution. A limit greater than zero bounds the number of ticks.
//
// Breakpoints are checked before each instruction but the first, so a Run
// resumes from a breakpoint. Debugger stops are reported as an error
// matching debugger.ErrStop.
func (emu *Emulator) Run(limit int) (done bool, err error) {
	for n := 0; limit <= 0 || n < limit; n++ {
		done, err = emu.Tick()
		if err != nil || done {
			return
		}

		err = emu.Check()
		if err != nil {
			return
		}
	}

	if emu.Verbose {
		log.Printf("emulator: tick limit %d reached at %04x", limit, emu.Pc())
	}

	err = ErrTickLimit
	return
}
