package cpu

import (
	"errors"
	"log"

	"github.com/ezrec/avrsim/io"
)

// Load resets the CPU and installs a program image. The image must fit in
// memory, and its entry point must address memory; otherwise nothing is
// modified.
func (cpu *Cpu) Load(rom *io.Rom) (err error) {
	st := cpu.State
	size := uint32(st.MemorySize())

	if rom.End() > size || rom.End() < rom.Origin {
		err = errors.Join(ErrImageTooLarge, ErrAddress(rom.End()))
		return
	}

	start := rom.Start()
	if start >= size {
		err = errors.Join(ErrOutOfRange, ErrAddress(start))
		return
	}

	cpu.Reset()

	copy(st.memory[rom.Origin:], rom.Data)
	st.pc = uint16(start)
	st.sp = st.StackTop()

	if cpu.Verbose {
		log.Printf("cpu: load %v: %d bytes at 0x%04x, entry 0x%04x", rom.Name, len(rom.Data), rom.Origin, start)
	}

	return
}
