package cpu

import (
	"errors"
	"slices"
)

const (
	REGISTER_COUNT = 32 // General purpose registers.

	REG_X = 26 // Low register of the X pointer pair.
	REG_Y = 28 // Low register of the Y pointer pair.
	REG_Z = 30 // Low register of the Z pointer pair.

	MEMORY_MIN  = 0x100   // Smallest memory, the register and I/O page.
	MEMORY_MAX  = 0x10000 // Largest memory addressable with 16 bits.
	MEMORY_SIZE = MEMORY_MAX

	ORIGIN = 0x0100 // Default program origin.
)

// State is the machine state of a single emulator session: the register
// file, program counter, stack pointer, status register and memory.
//
// State enforces its own invariants. Register identifiers and memory
// addresses are bounds checked, and a rejected write leaves the state
// unchanged.
type State struct {
	register [REGISTER_COUNT]uint8
	pc       uint16
	sp       uint16
	flags    Flags
	memory   []uint8
	halted   bool
}

// NewState creates a reset machine state with size bytes of memory.
func NewState(size int) (st *State, err error) {
	if size < MEMORY_MIN || size > MEMORY_MAX {
		err = errors.Join(ErrOutOfRange, ErrAddress(size))
		return
	}

	st = &State{
		memory: make([]uint8, size),
	}
	st.Reset()

	return
}

// Reset clears registers, flags and memory, sets the PC to zero and the
// stack pointer to the top of the stack.
func (st *State) Reset() {
	clear(st.register[:])
	clear(st.memory)
	st.pc = 0
	st.sp = st.StackTop()
	st.flags = 0
	st.halted = false
}

// Register returns the value of register id.
func (st *State) Register(id uint8) (value uint8, err error) {
	if int(id) >= len(st.register) {
		err = errors.Join(ErrOutOfRange, ErrRegister(id))
		return
	}

	value = st.register[id]
	return
}

// SetRegister sets register id to value.
func (st *State) SetRegister(id uint8, value uint8) (err error) {
	if int(id) >= len(st.register) {
		err = errors.Join(ErrOutOfRange, ErrRegister(id))
		return
	}

	st.register[id] = value
	return
}

// Registers returns a copy of the register file.
func (st *State) Registers() [REGISTER_COUNT]uint8 {
	return st.register
}

// SetRegisters replaces the whole register file. regs must hold exactly
// REGISTER_COUNT values.
func (st *State) SetRegisters(regs []uint8) (err error) {
	if len(regs) != len(st.register) {
		err = errors.Join(ErrOutOfRange, ErrRegister(min(len(regs), 0xff)))
		return
	}

	copy(st.register[:], regs)
	return
}

// Pair returns the 16-bit value of the register pair starting at lo.
func (st *State) Pair(lo uint8) uint16 {
	lo &= 0x1e
	return uint16(st.register[lo+1])<<8 | uint16(st.register[lo])
}

func (st *State) setPair(lo uint8, value uint16) {
	lo &= 0x1e
	st.register[lo] = uint8(value)
	st.register[lo+1] = uint8(value >> 8)
}

// Pc returns the program counter.
func (st *State) Pc() uint16 {
	return st.pc
}

// SetPc sets the program counter. The PC must address memory.
func (st *State) SetPc(pc uint16) (err error) {
	if int(pc) >= len(st.memory) {
		err = errors.Join(ErrOutOfRange, ErrAddress(pc))
		return
	}

	st.pc = pc
	return
}

// Sp returns the stack pointer.
func (st *State) Sp() uint16 {
	return st.sp
}

// Flags returns the status register.
func (st *State) Flags() Flags {
	return st.flags
}

// SetFlags sets the status register.
func (st *State) SetFlags(flags Flags) {
	st.flags = flags
}

// Halted returns true once a BREAK instruction has executed, until another
// instruction executes.
func (st *State) Halted() bool {
	return st.halted
}

// MemorySize returns the size of memory in bytes.
func (st *State) MemorySize() int {
	return len(st.memory)
}

// Memory returns a copy of the whole memory.
func (st *State) Memory() []uint8 {
	return slices.Clone(st.memory)
}

// ReadMemory copies memory, from address zero, into buf. It returns the
// number of bytes copied.
func (st *State) ReadMemory(buf []uint8) int {
	return copy(buf, st.memory)
}

// Peek returns the memory byte at addr.
func (st *State) Peek(addr uint16) (value uint8, err error) {
	return st.load(addr)
}

// load reads memory with no I/O port mapping.
func (st *State) load(addr uint16) (value uint8, err error) {
	if int(addr) >= len(st.memory) {
		err = errors.Join(ErrOutOfRange, ErrAddress(addr))
		return
	}

	value = st.memory[addr]
	return
}

// store writes memory with no I/O port mapping.
func (st *State) store(addr uint16, value uint8) (err error) {
	if int(addr) >= len(st.memory) {
		err = errors.Join(ErrOutOfRange, ErrAddress(addr))
		return
	}

	st.memory[addr] = value
	return
}

// Word reads the little-endian opcode word at addr.
func (st *State) Word(addr uint16) (word uint16, err error) {
	return fetchWord(st.memory, addr)
}

// wrap reduces a computed program address modulo the memory size.
func (st *State) wrap(addr int) uint16 {
	size := len(st.memory)
	return uint16(((addr % size) + size) % size)
}

// target validates an absolute control transfer destination.
func (st *State) target(addr uint32) (pc uint16, err error) {
	if addr >= uint32(len(st.memory)) {
		err = errors.Join(ErrOutOfRange, ErrAddress(addr))
		return
	}

	pc = uint16(addr)
	return
}
