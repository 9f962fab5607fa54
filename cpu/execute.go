package cpu

import (
	"errors"
)

// Execute applies a decoded instruction to the machine state. On error the
// PC is not advanced and the state is unchanged.
func (cpu *Cpu) Execute(inst Instruction) (err error) {
	st := cpu.State
	pc := st.pc

	defer func() {
		if err != nil {
			err = &ErrExecute{Pc: pc, Instruction: inst, Err: err}
		}
	}()

	switch {
	case inst.Rd >= REGISTER_COUNT:
		return errors.Join(ErrOutOfRange, ErrRegister(inst.Rd))
	case inst.Rr >= REGISTER_COUNT:
		return errors.Join(ErrOutOfRange, ErrRegister(inst.Rr))
	}

	fl := &st.flags
	rd := &st.register[inst.Rd]
	a := st.register[inst.Rd]
	b := st.register[inst.Rr]
	k := uint8(inst.K)

	length := inst.Length
	if length == 0 {
		length = inst.Op.EncodedLength()
	}
	next := int(pc) + int(length)
	skip := false

	// relative is the target of a relative jump, call or branch.
	relative := func() int {
		return int(pc) + 2 + 2*int(inst.Offset)
	}

	switch inst.Op {
	case OP_NOP, OP_SLEEP, OP_WDR:
		// pass
	case OP_MOVW:
		st.setPair(inst.Rd, st.Pair(inst.Rr))
	case OP_MUL:
		st.setPair(0, fl.mul(a, b))
	case OP_ADD:
		*rd = fl.add(a, b, false)
	case OP_ADC:
		*rd = fl.add(a, b, fl.Has(FLAG_C))
	case OP_SUB:
		*rd = fl.sub(a, b, false, false)
	case OP_SBC:
		*rd = fl.sub(a, b, fl.Has(FLAG_C), true)
	case OP_AND:
		*rd = fl.logic(a & b)
	case OP_OR:
		*rd = fl.logic(a | b)
	case OP_EOR:
		*rd = fl.logic(a ^ b)
	case OP_CP:
		fl.sub(a, b, false, false)
	case OP_CPC:
		fl.sub(a, b, fl.Has(FLAG_C), true)
	case OP_CPSE:
		skip = a == b
	case OP_MOV:
		*rd = b
	case OP_LDI:
		*rd = k
	case OP_CPI:
		fl.sub(a, k, false, false)
	case OP_SUBI:
		*rd = fl.sub(a, k, false, false)
	case OP_SBCI:
		*rd = fl.sub(a, k, fl.Has(FLAG_C), true)
	case OP_ORI:
		*rd = fl.logic(a | k)
	case OP_ANDI:
		*rd = fl.logic(a & k)
	case OP_ADIW:
		st.setPair(inst.Rd, fl.adiw(st.Pair(inst.Rd), k))
	case OP_SBIW:
		st.setPair(inst.Rd, fl.sbiw(st.Pair(inst.Rd), k))
	case OP_COM:
		*rd = fl.com(a)
	case OP_NEG:
		*rd = fl.neg(a)
	case OP_SWAP:
		*rd = swap(a)
	case OP_INC:
		*rd = fl.inc(a)
	case OP_DEC:
		*rd = fl.dec(a)
	case OP_ASR:
		*rd = fl.asr(a)
	case OP_LSR:
		*rd = fl.lsr(a)
	case OP_ROR:
		*rd = fl.ror(a)
	case OP_LD, OP_ST:
		if inst.Ptr == PTR_NONE {
			return ErrOperand{Op: inst.Op, Operand: "pointer"}
		}
		ptr := uint8(inst.Ptr)
		addr := st.Pair(ptr)
		if inst.Mode == MODE_PRE_DEC {
			addr--
		}
		var value uint8
		if inst.Op == OP_LD {
			value, err = cpu.read(addr)
		} else {
			err = cpu.write(addr, a)
		}
		if err != nil {
			return
		}
		switch inst.Mode {
		case MODE_POST_INC:
			st.setPair(ptr, addr+1)
		case MODE_PRE_DEC:
			st.setPair(ptr, addr)
		}
		if inst.Op == OP_LD {
			*rd = value
		}
	case OP_LDD, OP_STD:
		if inst.Ptr != PTR_Y && inst.Ptr != PTR_Z {
			return ErrOperand{Op: inst.Op, Operand: "pointer"}
		}
		addr := st.Pair(uint8(inst.Ptr)) + uint16(inst.K)
		if inst.Op == OP_LDD {
			var value uint8
			value, err = cpu.read(addr)
			if err != nil {
				return
			}
			*rd = value
		} else {
			err = cpu.write(addr, a)
			if err != nil {
				return
			}
		}
	case OP_LDS:
		var value uint8
		value, err = cpu.read(uint16(inst.K))
		if err != nil {
			return
		}
		*rd = value
	case OP_STS:
		err = cpu.write(uint16(inst.K), a)
		if err != nil {
			return
		}
	case OP_LPM:
		addr := st.Pair(REG_Z)
		var value uint8
		value, err = cpu.load(addr)
		if err != nil {
			return
		}
		if inst.Mode == MODE_POST_INC {
			st.setPair(REG_Z, addr+1)
		}
		*rd = value
	case OP_PUSH:
		err = st.push(a)
		if err != nil {
			return
		}
	case OP_POP:
		var value uint8
		value, err = st.pop()
		if err != nil {
			return
		}
		*rd = value
	case OP_IN:
		if inst.K >= IO_PORT_COUNT {
			return ErrOperand{Op: inst.Op, Operand: "a"}
		}
		var value uint8
		value, err = cpu.read(IO_BASE + uint16(inst.K))
		if err != nil {
			return
		}
		*rd = value
	case OP_OUT:
		if inst.K >= IO_PORT_COUNT {
			return ErrOperand{Op: inst.Op, Operand: "a"}
		}
		err = cpu.write(IO_BASE+uint16(inst.K), a)
		if err != nil {
			return
		}
	case OP_BSET:
		fl.set(1<<(inst.B&7), true)
	case OP_BCLR:
		fl.set(1<<(inst.B&7), false)
	case OP_BST:
		fl.set(FLAG_T, a&(1<<(inst.B&7)) != 0)
	case OP_BLD:
		mask := uint8(1) << (inst.B & 7)
		if fl.Has(FLAG_T) {
			*rd = a | mask
		} else {
			*rd = a &^ mask
		}
	case OP_SBI, OP_CBI, OP_SBIC, OP_SBIS:
		if inst.K >= IO_PORT_COUNT/2 {
			return ErrOperand{Op: inst.Op, Operand: "a"}
		}
		addr := IO_BASE + uint16(inst.K)
		mask := uint8(1) << (inst.B & 7)
		var value uint8
		value, err = cpu.load(addr)
		if err != nil {
			return
		}
		switch inst.Op {
		case OP_SBI:
			err = cpu.store(addr, value|mask)
		case OP_CBI:
			err = cpu.store(addr, value&^mask)
		case OP_SBIC:
			skip = value&mask == 0
		case OP_SBIS:
			skip = value&mask != 0
		}
		if err != nil {
			return
		}
	case OP_SBRC:
		skip = a&(1<<(inst.B&7)) == 0
	case OP_SBRS:
		skip = a&(1<<(inst.B&7)) != 0
	case OP_RJMP:
		next = relative()
	case OP_RCALL:
		err = st.pushPc(st.wrap(next))
		if err != nil {
			return
		}
		next = relative()
	case OP_JMP, OP_CALL, OP_IJMP, OP_ICALL:
		addr := inst.K * 2
		if inst.Op == OP_IJMP || inst.Op == OP_ICALL {
			addr = uint32(st.Pair(REG_Z)) * 2
		}
		var target uint16
		target, err = st.target(addr)
		if err != nil {
			return
		}
		if inst.Op == OP_CALL || inst.Op == OP_ICALL {
			err = st.pushPc(st.wrap(next))
			if err != nil {
				return
			}
		}
		next = int(target)
	case OP_RET, OP_RETI:
		sp := st.sp
		var ret uint16
		ret, err = st.popPc()
		if err != nil {
			return
		}
		_, err = st.target(uint32(ret))
		if err != nil {
			st.sp = sp
			return
		}
		if inst.Op == OP_RETI {
			fl.set(FLAG_I, true)
		}
		next = int(ret)
	case OP_BRBS:
		if fl.Bit(inst.B) {
			next = relative()
		}
	case OP_BRBC:
		if !fl.Bit(inst.B) {
			next = relative()
		}
	case OP_BREAK:
		st.halted = true
		return
	default:
		panic(f("cpu: no semantics for %v", inst.Op))
	}

	if skip {
		var skipped uint16
		skipped, err = st.skipLength(st.wrap(next))
		if err != nil {
			return
		}
		next += int(skipped)
	}

	st.halted = false
	st.pc = st.wrap(next)

	return
}
