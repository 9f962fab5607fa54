package cpu

import (
	"errors"
)

// The stack lives in memory and grows down from StackTop. A push
// decrements SP and then writes; a pop reads and then increments SP.

// StackTop returns the stack pointer of an empty stack: the memory size,
// which wraps to zero for a full 64 KiB memory.
func (st *State) StackTop() uint16 {
	return uint16(len(st.memory))
}

// StackEmpty returns true if nothing has been pushed.
func (st *State) StackEmpty() bool {
	return st.sp == st.StackTop()
}

// StackDepth returns the number of bytes on the stack.
func (st *State) StackDepth() int {
	return int(st.StackTop() - st.sp)
}

// StackPeek returns the byte on the top of the stack.
func (st *State) StackPeek() (value uint8, ok bool) {
	if st.StackEmpty() {
		return
	}

	value, err := st.load(st.sp)
	return value, err == nil
}

// push writes value to the stack.
func (st *State) push(value uint8) (err error) {
	err = st.store(st.sp-1, value)
	if err != nil {
		return
	}

	st.sp--
	return
}

// pop removes the top of the stack.
func (st *State) pop() (value uint8, err error) {
	if st.StackEmpty() {
		err = ErrStackEmpty
		return
	}

	value, err = st.load(st.sp)
	if err != nil {
		return
	}

	st.sp++
	return
}

// pushPc pushes a return address, low byte first. Either both bytes are
// pushed or neither is.
func (st *State) pushPc(pc uint16) (err error) {
	for _, addr := range []uint16{st.sp - 1, st.sp - 2} {
		if int(addr) >= len(st.memory) {
			err = errors.Join(ErrOutOfRange, ErrAddress(addr))
			return
		}
	}

	st.push(uint8(pc))
	st.push(uint8(pc >> 8))

	return
}

// popPc pops a return address pushed by pushPc. The stack is unchanged on
// error.
func (st *State) popPc() (pc uint16, err error) {
	sp := st.sp

	hi, err := st.pop()
	if err != nil {
		return
	}

	lo, err := st.pop()
	if err != nil {
		st.sp = sp
		return
	}

	pc = uint16(hi)<<8 | uint16(lo)
	return
}
