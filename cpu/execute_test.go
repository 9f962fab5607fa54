package cpu

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// execute runs a single instruction at ORIGIN.
func execute(t *testing.T, cpu *Cpu, inst Instruction) (err error) {
	code, err := inst.Encode()
	if !assert.NoError(t, err, inst.Op.String()) {
		t.FailNow()
	}

	inst.Length = uint16(len(code) * 2)
	cpu.State.pc = ORIGIN
	return cpu.Execute(inst)
}

func TestExecuteAlu(t *testing.T) {
	assert := assert.New(t)

	const rd, rr = 16, 17

	table := [](struct {
		inst Instruction
		a, b uint8 // Initial Rd and Rr
		in   Flags
		r    uint8 // Final Rd
		out  Flags
	}){
		{Instruction{Op: OP_ADD}, 0x7f, 0x01, 0, 0x80, FLAG_H | FLAG_V | FLAG_N},
		{Instruction{Op: OP_ADD}, 0xff, 0x01, 0, 0x00, FLAG_H | FLAG_Z | FLAG_C},
		{Instruction{Op: OP_ADD}, 0x80, 0x80, 0, 0x00, FLAG_S | FLAG_V | FLAG_Z | FLAG_C},
		{Instruction{Op: OP_ADD}, 0x01, 0x02, FLAG_I | FLAG_T, 0x03, FLAG_I | FLAG_T},
		{Instruction{Op: OP_ADC}, 0x0f, 0x00, FLAG_C, 0x10, FLAG_H},
		{Instruction{Op: OP_ADC}, 0xfe, 0x01, FLAG_C, 0x00, FLAG_H | FLAG_Z | FLAG_C},
		{Instruction{Op: OP_SUB}, 0x00, 0x01, 0, 0xff, FLAG_H | FLAG_S | FLAG_N | FLAG_C},
		{Instruction{Op: OP_SUB}, 0x80, 0x01, 0, 0x7f, FLAG_H | FLAG_S | FLAG_V},
		{Instruction{Op: OP_SUB}, 0x42, 0x42, 0, 0x00, FLAG_Z},
		{Instruction{Op: OP_SBC}, 0x01, 0x00, FLAG_Z | FLAG_C, 0x00, FLAG_Z},
		{Instruction{Op: OP_SBC}, 0x01, 0x01, 0, 0x00, 0},
		{Instruction{Op: OP_SBC}, 0x01, 0x01, FLAG_Z, 0x00, FLAG_Z},
		{Instruction{Op: OP_CP}, 0x10, 0x20, 0, 0x10, FLAG_S | FLAG_N | FLAG_C},
		{Instruction{Op: OP_CP}, 0x20, 0x20, FLAG_C, 0x20, FLAG_Z},
		{Instruction{Op: OP_CPC}, 0x00, 0x00, FLAG_Z | FLAG_C, 0x00, FLAG_H | FLAG_S | FLAG_N | FLAG_C},
		{Instruction{Op: OP_AND}, 0xf0, 0x0f, FLAG_V, 0x00, FLAG_Z},
		{Instruction{Op: OP_OR}, 0xf0, 0x0f, FLAG_C, 0xff, FLAG_S | FLAG_N | FLAG_C},
		{Instruction{Op: OP_EOR}, 0x80, 0x00, 0, 0x80, FLAG_S | FLAG_N},
		{Instruction{Op: OP_EOR}, 0x5a, 0x5a, 0, 0x00, FLAG_Z},
		{Instruction{Op: OP_MOV}, 0x00, 0x99, FLAG_Z, 0x99, FLAG_Z},
		{Instruction{Op: OP_LDI, K: 0xa5}, 0x00, 0x00, FLAG_C, 0xa5, FLAG_C},
		{Instruction{Op: OP_CPI, K: 100}, 100, 0x00, 0, 100, FLAG_Z},
		{Instruction{Op: OP_CPI, K: 100}, 99, 0x00, 0, 99, FLAG_H | FLAG_S | FLAG_N | FLAG_C},
		{Instruction{Op: OP_SUBI, K: 0x01}, 0x00, 0x00, 0, 0xff, FLAG_H | FLAG_S | FLAG_N | FLAG_C},
		{Instruction{Op: OP_SBCI, K: 0x00}, 0x01, 0x00, FLAG_Z | FLAG_C, 0x00, FLAG_Z},
		{Instruction{Op: OP_SBCI, K: 0x00}, 0x00, 0x00, FLAG_C, 0xff, FLAG_H | FLAG_S | FLAG_N | FLAG_C},
		{Instruction{Op: OP_ORI, K: 0x80}, 0x01, 0x00, 0, 0x81, FLAG_S | FLAG_N},
		{Instruction{Op: OP_ANDI, K: 0x0f}, 0xf0, 0x00, FLAG_V | FLAG_C, 0x00, FLAG_Z | FLAG_C},
		{Instruction{Op: OP_COM}, 0x0f, 0x00, FLAG_V, 0xf0, FLAG_S | FLAG_N | FLAG_C},
		{Instruction{Op: OP_COM}, 0xff, 0x00, 0, 0x00, FLAG_Z | FLAG_C},
		{Instruction{Op: OP_NEG}, 0x01, 0x00, 0, 0xff, FLAG_H | FLAG_S | FLAG_N | FLAG_C},
		{Instruction{Op: OP_NEG}, 0x80, 0x00, 0, 0x80, FLAG_V | FLAG_N | FLAG_C},
		{Instruction{Op: OP_NEG}, 0x00, 0x00, FLAG_C, 0x00, FLAG_Z},
		{Instruction{Op: OP_SWAP}, 0x12, 0x00, FLAG_C, 0x21, FLAG_C},
		{Instruction{Op: OP_INC}, 0x7f, 0x00, FLAG_C, 0x80, FLAG_V | FLAG_N | FLAG_C},
		{Instruction{Op: OP_INC}, 0xff, 0x00, 0, 0x00, FLAG_Z},
		{Instruction{Op: OP_DEC}, 0x80, 0x00, 0, 0x7f, FLAG_S | FLAG_V},
		{Instruction{Op: OP_DEC}, 0x01, 0x00, FLAG_C, 0x00, FLAG_Z | FLAG_C},
		{Instruction{Op: OP_ASR}, 0x81, 0x00, 0, 0xc0, FLAG_S | FLAG_N | FLAG_C},
		{Instruction{Op: OP_LSR}, 0x01, 0x00, 0, 0x00, FLAG_S | FLAG_V | FLAG_Z | FLAG_C},
		{Instruction{Op: OP_LSR}, 0x80, 0x00, FLAG_N, 0x40, 0},
		{Instruction{Op: OP_ROR}, 0x01, 0x00, FLAG_C, 0x80, FLAG_S | FLAG_N | FLAG_C},
		{Instruction{Op: OP_ROR}, 0x02, 0x00, 0, 0x01, 0},
		{Instruction{Op: OP_BLD, B: 2}, 0x00, 0x00, FLAG_T, 0x04, FLAG_T},
		{Instruction{Op: OP_BLD, B: 7}, 0xff, 0x00, 0, 0x7f, 0},
	}

	for _, entry := range table {
		cpu, err := NewCpu(MEMORY_MIN * 4)
		assert.NoError(err)

		inst := entry.inst
		inst.Rd = rd
		if inst.Op == OP_ADD || inst.Op == OP_ADC || inst.Op == OP_SUB ||
			inst.Op == OP_SBC || inst.Op == OP_CP || inst.Op == OP_CPC ||
			inst.Op == OP_AND || inst.Op == OP_OR || inst.Op == OP_EOR ||
			inst.Op == OP_MOV {
			inst.Rr = rr
		}

		cpu.State.SetRegister(rd, entry.a)
		cpu.State.SetRegister(rr, entry.b)
		cpu.State.SetFlags(entry.in)

		err = execute(t, cpu, inst)
		name := inst.String()
		if !assert.NoError(err, name) {
			continue
		}

		r, _ := cpu.State.Register(rd)
		assert.Equal(entry.r, r, name)
		assert.Equal(entry.out, cpu.State.Flags(), name)
		assert.Equal(uint16(ORIGIN+2), cpu.State.Pc(), name)

		// Zero is set exactly when a result is zero.
		switch inst.Op {
		case OP_ADD, OP_ADC, OP_SUB, OP_AND, OP_OR, OP_EOR, OP_SUBI, OP_ORI,
			OP_ANDI, OP_COM, OP_NEG, OP_INC, OP_DEC, OP_ASR, OP_LSR, OP_ROR:
			assert.Equal(entry.r == 0, cpu.State.Flags().Has(FLAG_Z), name)
		}
	}
}

func TestExecuteWord(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		inst Instruction
		a    uint16
		r    uint16
		out  Flags
	}){
		{Instruction{Op: OP_ADIW, Rd: 24, K: 1}, 0x7fff, 0x8000, FLAG_V | FLAG_N},
		{Instruction{Op: OP_ADIW, Rd: 26, K: 1}, 0xffff, 0x0000, FLAG_Z | FLAG_C},
		{Instruction{Op: OP_ADIW, Rd: 28, K: 63}, 0x00c1, 0x0100, 0},
		{Instruction{Op: OP_SBIW, Rd: 30, K: 1}, 0x0000, 0xffff, FLAG_S | FLAG_N | FLAG_C},
		{Instruction{Op: OP_SBIW, Rd: 24, K: 1}, 0x8000, 0x7fff, FLAG_S | FLAG_V},
		{Instruction{Op: OP_SBIW, Rd: 24, K: 2}, 0x0002, 0x0000, FLAG_Z},
	}

	for _, entry := range table {
		cpu, err := NewCpu(MEMORY_MIN * 4)
		assert.NoError(err)

		cpu.State.setPair(entry.inst.Rd, entry.a)
		err = execute(t, cpu, entry.inst)
		name := entry.inst.String()
		if assert.NoError(err, name) {
			assert.Equal(entry.r, cpu.State.Pair(entry.inst.Rd), name)
			assert.Equal(entry.out, cpu.State.Flags(), name)
		}
	}
}

func TestExecuteMul(t *testing.T) {
	assert := assert.New(t)

	cpu, err := NewCpu(MEMORY_MIN * 4)
	assert.NoError(err)

	cpu.State.SetRegister(2, 0xff)
	cpu.State.SetRegister(3, 0xff)
	assert.NoError(execute(t, cpu, Instruction{Op: OP_MUL, Rd: 2, Rr: 3}))
	assert.Equal(uint16(0xfe01), cpu.State.Pair(0))
	assert.Equal(FLAG_C, cpu.State.Flags())

	cpu.State.SetRegister(3, 0)
	assert.NoError(execute(t, cpu, Instruction{Op: OP_MUL, Rd: 2, Rr: 3}))
	assert.Equal(uint16(0), cpu.State.Pair(0))
	assert.Equal(FLAG_Z, cpu.State.Flags())

	cpu.State.setPair(REG_Z, 0xbeef)
	assert.NoError(execute(t, cpu, Instruction{Op: OP_MOVW, Rd: 24, Rr: REG_Z}))
	assert.Equal(uint16(0xbeef), cpu.State.Pair(24))
}

func TestExecuteFlagBits(t *testing.T) {
	assert := assert.New(t)

	cpu, err := NewCpu(MEMORY_MIN * 4)
	assert.NoError(err)

	for b := range uint8(8) {
		assert.NoError(execute(t, cpu, Instruction{Op: OP_BSET, B: b}))
		assert.True(cpu.State.Flags().Bit(b))
	}
	assert.Equal(Flags(0xff), cpu.State.Flags())

	assert.NoError(execute(t, cpu, Instruction{Op: OP_BCLR, B: 6}))
	assert.Equal(Flags(0xff)&^FLAG_T, cpu.State.Flags())

	cpu.State.SetRegister(20, 0x08)
	assert.NoError(execute(t, cpu, Instruction{Op: OP_BST, Rd: 20, B: 3}))
	assert.True(cpu.State.Flags().Has(FLAG_T))
	assert.NoError(execute(t, cpu, Instruction{Op: OP_BST, Rd: 20, B: 4}))
	assert.False(cpu.State.Flags().Has(FLAG_T))
}

func TestExecuteBranch(t *testing.T) {
	assert := assert.New(t)

	table := [](struct {
		inst  Instruction
		flags Flags
		pc    uint16
	}){
		{Instruction{Op: OP_BRBS, B: 1, Offset: 5}, FLAG_Z, ORIGIN + 2 + 10},
		{Instruction{Op: OP_BRBS, B: 1, Offset: 5}, 0, ORIGIN + 2},
		{Instruction{Op: OP_BRBC, B: 1, Offset: -5}, 0, ORIGIN + 2 - 10},
		{Instruction{Op: OP_BRBC, B: 1, Offset: -5}, FLAG_Z, ORIGIN + 2},
		{Instruction{Op: OP_BRBS, B: 7, Offset: -1}, FLAG_I, ORIGIN},
		{Instruction{Op: OP_RJMP, Offset: -1}, 0, ORIGIN},
		{Instruction{Op: OP_RJMP, Offset: 2047}, 0, (ORIGIN + 2 + 4094) % (MEMORY_MIN * 4)},
		{Instruction{Op: OP_RJMP, Offset: -2048}, 0, (ORIGIN + 2 - 4096 + MEMORY_MIN*4*4) % (MEMORY_MIN * 4)},
		{Instruction{Op: OP_JMP, K: 0x80}, 0, 0x100},
	}

	for _, entry := range table {
		cpu, err := NewCpu(MEMORY_MIN * 4)
		assert.NoError(err)

		cpu.State.SetFlags(entry.flags)
		sp := cpu.State.Sp()

		err = execute(t, cpu, entry.inst)
		name := entry.inst.String()
		if assert.NoError(err, name) {
			assert.Equal(entry.pc, cpu.State.Pc(), name)
			assert.Equal(sp, cpu.State.Sp(), name)
			assert.Equal(entry.flags, cpu.State.Flags(), name)
		}
	}
}

func TestExecuteCall(t *testing.T) {
	assert := assert.New(t)

	cpu, err := NewCpu(MEMORY_MIN * 4)
	assert.NoError(err)

	top := cpu.State.Sp()

	// RCALL pushes the address of the next instruction.
	assert.NoError(execute(t, cpu, Instruction{Op: OP_RCALL, Offset: 10}))
	assert.Equal(uint16(ORIGIN+2+20), cpu.State.Pc())
	assert.Equal(top-2, cpu.State.Sp())

	assert.NoError(cpu.Execute(Instruction{Op: OP_RET, Length: 2}))
	assert.Equal(uint16(ORIGIN+2), cpu.State.Pc())
	assert.Equal(top, cpu.State.Sp())

	// CALL is two words long.
	assert.NoError(execute(t, cpu, Instruction{Op: OP_CALL, K: 0x100}))
	assert.Equal(uint16(0x200), cpu.State.Pc())
	assert.Equal(top-2, cpu.State.Sp())
	ret, err := cpu.State.popPc()
	assert.NoError(err)
	assert.Equal(uint16(ORIGIN+4), ret)

	// ICALL through Z, and RETI sets I.
	cpu.State.setPair(REG_Z, 0x90)
	assert.NoError(execute(t, cpu, Instruction{Op: OP_ICALL}))
	assert.Equal(uint16(0x120), cpu.State.Pc())
	assert.NoError(cpu.Execute(Instruction{Op: OP_RETI, Length: 2}))
	assert.Equal(uint16(ORIGIN+2), cpu.State.Pc())
	assert.True(cpu.State.Flags().Has(FLAG_I))

	assert.NoError(execute(t, cpu, Instruction{Op: OP_IJMP}))
	assert.Equal(uint16(0x120), cpu.State.Pc())
	assert.Equal(top, cpu.State.Sp())
}

func TestExecuteCallOutOfRange(t *testing.T) {
	assert := assert.New(t)

	cpu, err := NewCpu(MEMORY_MIN * 4)
	assert.NoError(err)

	top := cpu.State.Sp()

	table := []Instruction{
		{Op: OP_CALL, K: 0x200},
		{Op: OP_JMP, K: 0x3fffff},
		{Op: OP_IJMP},
		{Op: OP_ICALL},
	}

	cpu.State.setPair(REG_Z, 0x8000)
	for _, inst := range table {
		err = execute(t, cpu, inst)
		assert.ErrorIs(err, ErrOutOfRange, inst.String())
		assert.Equal(uint16(ORIGIN), cpu.State.Pc(), inst.String())
		assert.Equal(top, cpu.State.Sp(), inst.String())
	}

	// A return address outside memory leaves the stack as it was.
	assert.NoError(cpu.State.pushPc(0x1000))
	err = execute(t, cpu, Instruction{Op: OP_RET})
	assert.ErrorIs(err, ErrOutOfRange)
	assert.Equal(top-2, cpu.State.Sp())
	assert.Equal(uint16(ORIGIN), cpu.State.Pc())

	// No room for the return address.
	cpu.State.sp = 1
	err = execute(t, cpu, Instruction{Op: OP_RCALL, Offset: 1})
	assert.ErrorIs(err, ErrOutOfRange)
	assert.Equal(uint16(1), cpu.State.Sp())
	assert.Equal(uint16(ORIGIN), cpu.State.Pc())
}

func TestExecuteSkip(t *testing.T) {
	assert := assert.New(t)

	cpu, err := NewCpu(MEMORY_MIN * 4)
	assert.NoError(err)

	// Skipped instructions: a one word NOP, or a two word JMP.
	next := map[bool][]uint16{
		false: {0x0000},
		true:  {0x940c, 0x0000},
	}

	table := [](struct {
		inst Instruction
		skip bool
	}){
		{Instruction{Op: OP_CPSE, Rd: 1, Rr: 2}, true},
		{Instruction{Op: OP_CPSE, Rd: 1, Rr: 3}, false},
		{Instruction{Op: OP_SBRC, Rd: 3, B: 0}, true},
		{Instruction{Op: OP_SBRC, Rd: 3, B: 1}, false},
		{Instruction{Op: OP_SBRS, Rd: 3, B: 1}, true},
		{Instruction{Op: OP_SBRS, Rd: 3, B: 0}, false},
		{Instruction{Op: OP_SBIC, K: 4, B: 0}, true},
		{Instruction{Op: OP_SBIC, K: 4, B: 7}, false},
		{Instruction{Op: OP_SBIS, K: 4, B: 7}, true},
		{Instruction{Op: OP_SBIS, K: 4, B: 0}, false},
	}

	for _, twoWord := range []bool{false, true} {
		for _, entry := range table {
			cpu.State.SetRegister(1, 0x55)
			cpu.State.SetRegister(2, 0x55)
			cpu.State.SetRegister(3, 0x02)
			cpu.State.store(IO_BASE+4, 0x80)

			for n, word := range next[twoWord] {
				addr := uint16(ORIGIN + 2 + n*2)
				cpu.State.store(addr, uint8(word))
				cpu.State.store(addr+1, uint8(word>>8))
			}

			err = execute(t, cpu, entry.inst)
			name := entry.inst.String()
			if !assert.NoError(err, name) {
				continue
			}

			pc := uint16(ORIGIN + 2)
			if entry.skip {
				pc += uint16(len(next[twoWord]) * 2)
			}
			assert.Equal(pc, cpu.State.Pc(), name)
		}
	}
}

func TestExecuteMemory(t *testing.T) {
	assert := assert.New(t)

	cpu, err := NewCpu(MEMORY_MIN * 4)
	assert.NoError(err)

	st := cpu.State
	for n := range 16 {
		st.store(uint16(0x200+n), uint8(0xa0+n))
	}

	// X, X+ and -X
	st.setPair(REG_X, 0x204)
	assert.NoError(execute(t, cpu, Instruction{Op: OP_LD, Rd: 1, Ptr: PTR_X}))
	assert.NoError(execute(t, cpu, Instruction{Op: OP_LD, Rd: 2, Ptr: PTR_X, Mode: MODE_POST_INC}))
	assert.Equal(uint16(0x205), st.Pair(REG_X))
	assert.NoError(execute(t, cpu, Instruction{Op: OP_LD, Rd: 3, Ptr: PTR_X, Mode: MODE_PRE_DEC}))
	assert.Equal(uint16(0x204), st.Pair(REG_X))
	assert.NoError(execute(t, cpu, Instruction{Op: OP_LD, Rd: 4, Ptr: PTR_X, Mode: MODE_PRE_DEC}))
	assert.Equal(uint16(0x203), st.Pair(REG_X))

	regs := st.Registers()
	assert.Equal([]uint8{0xa4, 0xa4, 0xa4, 0xa3}, regs[1:5])

	// Y+q and Z+q
	st.setPair(REG_Y, 0x200)
	st.setPair(REG_Z, 0x208)
	assert.NoError(execute(t, cpu, Instruction{Op: OP_LDD, Rd: 5, Ptr: PTR_Y, K: 9}))
	assert.NoError(execute(t, cpu, Instruction{Op: OP_STD, Rd: 5, Ptr: PTR_Z, K: 63}))
	value, _ := st.Peek(0x208 + 63)
	assert.Equal(uint8(0xa9), value)
	assert.Equal(uint16(0x200), st.Pair(REG_Y))
	assert.Equal(uint16(0x208), st.Pair(REG_Z))

	// ST -Y, ST Z+
	st.SetRegister(6, 0x66)
	assert.NoError(execute(t, cpu, Instruction{Op: OP_ST, Rd: 6, Ptr: PTR_Y, Mode: MODE_PRE_DEC}))
	value, _ = st.Peek(0x1ff)
	assert.Equal(uint8(0x66), value)
	assert.Equal(uint16(0x1ff), st.Pair(REG_Y))
	assert.NoError(execute(t, cpu, Instruction{Op: OP_ST, Rd: 6, Ptr: PTR_Z, Mode: MODE_POST_INC}))
	value, _ = st.Peek(0x208)
	assert.Equal(uint8(0x66), value)
	assert.Equal(uint16(0x209), st.Pair(REG_Z))

	// LDS and STS
	assert.NoError(execute(t, cpu, Instruction{Op: OP_LDS, Rd: 7, K: 0x20f}))
	assert.NoError(execute(t, cpu, Instruction{Op: OP_STS, Rd: 7, K: 0x300}))
	value, _ = st.Peek(0x300)
	assert.Equal(uint8(0xaf), value)

	// LPM and LPM Z+
	st.setPair(REG_Z, 0x20e)
	assert.NoError(execute(t, cpu, Instruction{Op: OP_LPM, Rd: 8, Mode: MODE_POST_INC}))
	assert.NoError(execute(t, cpu, Instruction{Op: OP_LPM, Rd: 9}))
	regs = st.Registers()
	assert.Equal([]uint8{0xae, 0xaf}, regs[8:10])
	assert.Equal(uint16(0x20f), st.Pair(REG_Z))
}

func TestExecuteMemoryOutOfRange(t *testing.T) {
	assert := assert.New(t)

	cpu, err := NewCpu(MEMORY_MIN)
	assert.NoError(err)

	st := cpu.State
	st.SetRegister(1, 0x11)
	st.setPair(REG_X, 0x100)
	st.setPair(REG_Z, 0x100)
	before := st.Registers()

	table := []Instruction{
		{Op: OP_LDS, Rd: 1, K: 0x100},
		{Op: OP_STS, Rd: 1, K: 0xffff},
		{Op: OP_LD, Rd: 1, Ptr: PTR_X, Mode: MODE_POST_INC},
		{Op: OP_ST, Rd: 1, Ptr: PTR_X},
		{Op: OP_LDD, Rd: 1, Ptr: PTR_Z, K: 0},
		{Op: OP_LPM, Rd: 1},
	}


	for _, inst := range table {
		st.pc = ORIGIN - 0x10
		err = cpu.Execute(inst)
		assert.ErrorIs(err, ErrOutOfRange, inst.String())
		assert.Equal(before, st.Registers(), inst.String())
		assert.Equal(uint16(ORIGIN-0x10), st.Pc(), inst.String())
	}

	// Register identifiers outside the register file.
	err = cpu.Execute(Instruction{Op: OP_INC, Rd: 32})
	assert.ErrorIs(err, ErrOutOfRange)
	err = cpu.Execute(Instruction{Op: OP_MOV, Rd: 0, Rr: 40})
	assert.ErrorIs(err, ErrOutOfRange)
	assert.Equal(before, st.Registers())

	// Malformed pointer operand.
	err = cpu.Execute(Instruction{Op: OP_LD, Rd: 1})
	assert.ErrorIs(err, ErrOperandInvalid)
}

func TestExecuteStack(t *testing.T) {
	assert := assert.New(t)

	cpu, err := NewCpu(MEMORY_MIN * 4)
	assert.NoError(err)

	cpu.State.SetRegister(16, 0x16)
	cpu.State.SetRegister(17, 0x17)
	assert.NoError(execute(t, cpu, Instruction{Op: OP_PUSH, Rd: 16}))
	assert.NoError(execute(t, cpu, Instruction{Op: OP_PUSH, Rd: 17}))
	assert.Equal(2, cpu.State.StackDepth())

	assert.NoError(execute(t, cpu, Instruction{Op: OP_POP, Rd: 0}))
	assert.NoError(execute(t, cpu, Instruction{Op: OP_POP, Rd: 1}))
	assert.Equal(uint16(0x1617), cpu.State.Pair(0))

	err = execute(t, cpu, Instruction{Op: OP_POP, Rd: 2})
	assert.ErrorIs(err, ErrStackEmpty)
}

func TestExecuteIo(t *testing.T) {
	assert := assert.New(t)

	cpu, err := NewCpu(MEMORY_MIN * 4)
	assert.NoError(err)

	st := cpu.State

	// SREG
	st.SetFlags(FLAG_Z | FLAG_C)
	assert.NoError(execute(t, cpu, Instruction{Op: OP_IN, Rd: 24, K: IO_SREG}))
	r24, _ := st.Register(24)
	assert.Equal(uint8(FLAG_Z|FLAG_C), r24)

	st.SetRegister(0, uint8(FLAG_I))
	assert.NoError(execute(t, cpu, Instruction{Op: OP_OUT, Rd: 0, K: IO_SREG}))
	assert.Equal(FLAG_I, st.Flags())

	// SPH:SPL
	st.SetRegister(28, 0x80)
	st.SetRegister(29, 0x03)
	assert.NoError(execute(t, cpu, Instruction{Op: OP_OUT, Rd: 29, K: IO_SPH}))
	assert.NoError(execute(t, cpu, Instruction{Op: OP_OUT, Rd: 28, K: IO_SPL}))
	assert.Equal(uint16(0x0380), st.Sp())
	assert.NoError(execute(t, cpu, Instruction{Op: OP_IN, Rd: 30, K: IO_SPL}))
	assert.NoError(execute(t, cpu, Instruction{Op: OP_IN, Rd: 31, K: IO_SPH}))
	assert.Equal(uint16(0x0380), st.Pair(REG_Z))

	// Plain ports are latched.
	st.SetRegister(1, 0x5a)
	assert.NoError(execute(t, cpu, Instruction{Op: OP_OUT, Rd: 1, K: 0x05}))
	assert.NoError(execute(t, cpu, Instruction{Op: OP_SBI, K: 0x05, B: 0}))
	assert.NoError(execute(t, cpu, Instruction{Op: OP_CBI, K: 0x05, B: 1}))
	assert.NoError(execute(t, cpu, Instruction{Op: OP_IN, Rd: 2, K: 0x05}))
	r2, _ := st.Register(2)
	assert.Equal(uint8(0x59), r2)

	// Data space view of the same port.
	assert.NoError(execute(t, cpu, Instruction{Op: OP_LDS, Rd: 3, K: IO_BASE + 0x05}))
	r3, _ := st.Register(3)
	assert.Equal(uint8(0x59), r3)
	assert.NoError(execute(t, cpu, Instruction{Op: OP_LDS, Rd: 4, K: IO_BASE + IO_SREG}))
	r4, _ := st.Register(4)
	assert.Equal(uint8(FLAG_I), r4)
}

func TestExecuteHalt(t *testing.T) {
	assert := assert.New(t)

	cpu, err := NewCpu(MEMORY_MIN * 4)
	assert.NoError(err)

	assert.NoError(execute(t, cpu, Instruction{Op: OP_BREAK}))
	assert.True(cpu.State.Halted())
	assert.Equal(uint16(ORIGIN), cpu.State.Pc())

	assert.NoError(execute(t, cpu, Instruction{Op: OP_NOP}))
	assert.False(cpu.State.Halted())
	assert.Equal(uint16(ORIGIN+2), cpu.State.Pc())

	for _, op := range []Op{OP_SLEEP, OP_WDR} {
		assert.NoError(execute(t, cpu, Instruction{Op: op}))
		assert.Equal(uint16(ORIGIN+2), cpu.State.Pc())
	}
}

func TestExecuteUnknown(t *testing.T) {
	assert := assert.New(t)

	cpu, err := NewCpu(MEMORY_MIN)
	assert.NoError(err)

	assert.Panics(func() {
		cpu.Execute(Instruction{Op: Op(OP_COUNT)})
	})
}
