// Package cpu implements the microcontroller core of the avrsim emulator.
//
// The CPU is an 8-bit AVR-style machine: thirty-two 8-bit general purpose
// registers (r0-r31, with the X, Y and Z pointer pairs in r26-r31), a
// 16-bit program counter (PC), a 16-bit stack pointer (SP), the status
// register (SREG) and a single flat memory holding both program and data.
//
// Memory map:
//
//	0x0000-0x001f  reserved
//	0x0020-0x005f  I/O ports (IN/OUT address + 0x20), SREG/SPH/SPL at 0x3f/0x3e/0x3d
//	0x0060-0x00ff  free
//	0x0100-        default program origin
//	top            stack, growing down from the end of memory
//
// Instructions are little-endian 16-bit words, with a second word for
// JMP, CALL, LDS and STS. The PC holds a byte address. Each Tick decodes
// the instruction at PC into an Instruction, then executes it.
package cpu
