package cpu

import (
	"errors"
	"fmt"
	"iter"
	"log"
	"maps"

	"github.com/ezrec/avrsim/internal"
	"github.com/ezrec/avrsim/io"
)

// Port is an I/O port device.
type Port io.Port

// I/O port constants. IN and OUT address A is data address IO_BASE + A.
const (
	IO_BASE       = 0x20 // Data address of I/O port 0.
	IO_PORT_COUNT = 64   // Number of I/O ports.

	IO_SPL  = 0x3d // Stack pointer, low byte.
	IO_SPH  = 0x3e // Stack pointer, high byte.
	IO_SREG = 0x3f // Status register.
)

var _cpu_defines = map[string]string{
	"IO_BASE": fmt.Sprintf("0x%02x", IO_BASE),
	"SPL":     fmt.Sprintf("0x%02x", IO_SPL),
	"SPH":     fmt.Sprintf("0x%02x", IO_SPH),
	"SREG":    fmt.Sprintf("0x%02x", IO_SREG),
	"SREG_C":  "0",
	"SREG_Z":  "1",
	"SREG_N":  "2",
	"SREG_V":  "3",
	"SREG_S":  "4",
	"SREG_H":  "5",
	"SREG_T":  "6",
	"SREG_I":  "7",
	"XL":      fmt.Sprintf("%d", REG_X),
	"XH":      fmt.Sprintf("%d", REG_X+1),
	"YL":      fmt.Sprintf("%d", REG_Y),
	"YH":      fmt.Sprintf("%d", REG_Y+1),
	"ZL":      fmt.Sprintf("%d", REG_Z),
	"ZH":      fmt.Sprintf("%d", REG_Z+1),
}

// Monitor observes the data memory accesses of executing instructions.
type Monitor interface {
	Read(addr uint16, value uint8)
	Write(addr uint16, value uint8)
}

// Cpu is the simulation context of the microcontroller core.
type Cpu struct {
	Verbose bool // Set to enable verbose logging.

	State   *State  // Machine state.
	Monitor Monitor // Optional data access observer.

	Ticks int // Instructions executed.

	port [IO_PORT_COUNT]Port // Attached I/O devices.
}

// NewCpu creates a CPU with size bytes of memory.
func NewCpu(size int) (cpu *Cpu, err error) {
	st, err := NewState(size)
	if err != nil {
		return
	}

	cpu = &Cpu{
		State: st,
	}

	return
}

// Defines for the cpu.
func (cpu *Cpu) Defines() iter.Seq2[string, string] {
	sizes := map[string]string{
		"RAMEND": fmt.Sprintf("0x%04x", cpu.State.MemorySize()-1),
	}
	return internal.IterSeq2Concat(maps.All(_cpu_defines), maps.All(sizes))
}

// Reset the CPU state.
// - Clears registers, flags and memory.
// - Zeros the tick counter.
// - Rewinds all attached ports.
func (cpu *Cpu) Reset() {
	if cpu.Verbose {
		log.Printf("cpu: reset")
	}

	cpu.State.Reset()
	cpu.Ticks = 0

	for _, port := range cpu.port {
		if port != nil {
			port.Rewind()
		}
	}
}

// SetPort attaches a device to an I/O port. A nil port detaches it.
func (cpu *Cpu) SetPort(addr uint8, port Port) (err error) {
	switch {
	case addr >= IO_PORT_COUNT:
		err = errors.Join(ErrPortInvalid, ErrAddress(addr))
		return
	case addr == IO_SPL || addr == IO_SPH || addr == IO_SREG:
		err = errors.Join(ErrPortInvalid, ErrAddress(addr))
		return
	}

	cpu.port[addr] = port
	return
}

// GetPort returns the device attached to an I/O port.
func (cpu *Cpu) GetPort(addr uint8) (port Port, err error) {
	if addr >= IO_PORT_COUNT || cpu.port[addr] == nil {
		err = errors.Join(ErrPortInvalid, ErrAddress(addr))
		return
	}

	port = cpu.port[addr]
	return
}

// String returns the current CPU state as a string.
func (cpu *Cpu) String() (text string) {
	st := cpu.State

	for row := range REGISTER_COUNT / 8 {
		for col := range 8 {
			id := row*8 + col
			text += fmt.Sprintf("r%-2d=%02x ", id, st.register[id])
		}
		text += "\n"
	}

	text += fmt.Sprintf("   pc: %04x\n", st.pc)
	text += fmt.Sprintf("   sp: %04x\n", st.sp)
	text += fmt.Sprintf(" sreg: %v\n", st.flags)
	text += fmt.Sprintf("x/y/z: %04x %04x %04x\n", st.Pair(REG_X), st.Pair(REG_Y), st.Pair(REG_Z))

	return
}

// Fetch decodes the instruction at the PC.
func (cpu *Cpu) Fetch() (inst Instruction, err error) {
	return Decode(cpu.State.memory, cpu.State.pc)
}

// Tick decodes and executes a single instruction.
func (cpu *Cpu) Tick() (err error) {
	pc := cpu.State.pc

	inst, err := cpu.Fetch()
	if err != nil {
		return
	}

	if cpu.Verbose {
		log.Printf("%04x: %v", pc, inst)
	}

	err = cpu.Execute(inst)
	if err != nil {
		return
	}

	cpu.Ticks++
	return
}

// load reads memory, reporting the access to the monitor.
func (cpu *Cpu) load(addr uint16) (value uint8, err error) {
	value, err = cpu.State.load(addr)
	if err != nil {
		return
	}

	if cpu.Monitor != nil {
		cpu.Monitor.Read(addr, value)
	}

	return
}

// store writes memory, reporting the access to the monitor.
func (cpu *Cpu) store(addr uint16, value uint8) (err error) {
	err = cpu.State.store(addr, value)
	if err != nil {
		return
	}

	if cpu.Monitor != nil {
		cpu.Monitor.Write(addr, value)
	}

	return
}

// read loads a data address, mapping the I/O ports.
func (cpu *Cpu) read(addr uint16) (value uint8, err error) {
	if addr < IO_BASE || addr >= IO_BASE+IO_PORT_COUNT {
		return cpu.load(addr)
	}

	st := cpu.State
	switch ioaddr := addr - IO_BASE; ioaddr {
	case IO_SREG:
		value = uint8(st.flags)
	case IO_SPL:
		value = uint8(st.sp)
	case IO_SPH:
		value = uint8(st.sp >> 8)
	default:
		port := cpu.port[ioaddr]
		if port == nil {
			return cpu.load(addr)
		}
		value, _ = port.Receive()
		st.memory[addr] = value
	}

	if cpu.Monitor != nil {
		cpu.Monitor.Read(addr, value)
	}

	return
}

// write stores to a data address, mapping the I/O ports.
func (cpu *Cpu) write(addr uint16, value uint8) (err error) {
	if addr < IO_BASE || addr >= IO_BASE+IO_PORT_COUNT {
		return cpu.store(addr, value)
	}

	st := cpu.State
	switch ioaddr := addr - IO_BASE; ioaddr {
	case IO_SREG:
		st.flags = Flags(value)
	case IO_SPL:
		st.sp = st.sp&0xff00 | uint16(value)
	case IO_SPH:
		st.sp = st.sp&0x00ff | uint16(value)<<8
	default:
		port := cpu.port[ioaddr]
		if port == nil {
			return cpu.store(addr, value)
		}
		err = port.Send(value)
		if err != nil {
			return
		}
		st.memory[addr] = value
	}

	if cpu.Monitor != nil {
		cpu.Monitor.Write(addr, value)
	}

	return
}
