package cpu

import (
	"fmt"
)

// Status register bit aliases for BSET/BCLR and BRBS/BRBC.
var (
	bsetAlias = [8]string{"sec", "sez", "sen", "sev", "ses", "seh", "set", "sei"}
	bclrAlias = [8]string{"clc", "clz", "cln", "clv", "cls", "clh", "clt", "cli"}
	brbsAlias = [8]string{"brcs", "breq", "brmi", "brvs", "brlt", "brhs", "brts", "brie"}
	brbcAlias = [8]string{"brcc", "brne", "brpl", "brvc", "brge", "brhc", "brtc", "brid"}
)

// pointerText renders a pointer operand with its adjustment.
func (inst Instruction) pointerText() string {
	switch inst.Mode {
	case MODE_POST_INC:
		return inst.Ptr.String() + "+"
	case MODE_PRE_DEC:
		return "-" + inst.Ptr.String()
	}
	return inst.Ptr.String()
}

// relativeText renders a relative target as a byte offset from the
// following instruction.
func (inst Instruction) relativeText() string {
	return fmt.Sprintf(".%+d", 2*int(inst.Offset))
}

// String renders the instruction in assembler syntax.
func (inst Instruction) String() string {
	op := inst.Op
	rd := fmt.Sprintf("r%d", inst.Rd)
	rr := fmt.Sprintf("r%d", inst.Rr)
	b := inst.B & 7

	switch op {
	case OP_NOP, OP_IJMP, OP_ICALL, OP_RET, OP_RETI, OP_SLEEP, OP_WDR, OP_BREAK:
		return op.String()
	case OP_MOVW, OP_MUL, OP_ADD, OP_ADC, OP_SUB, OP_SBC, OP_AND, OP_OR, OP_EOR,
		OP_CP, OP_CPC, OP_CPSE, OP_MOV:
		return fmt.Sprintf("%v %v, %v", op, rd, rr)
	case OP_LDI, OP_CPI, OP_SUBI, OP_SBCI, OP_ORI, OP_ANDI, OP_ADIW, OP_SBIW:
		return fmt.Sprintf("%v %v, 0x%02X", op, rd, inst.K)
	case OP_COM, OP_NEG, OP_SWAP, OP_INC, OP_DEC, OP_ASR, OP_LSR, OP_ROR,
		OP_PUSH, OP_POP:
		return fmt.Sprintf("%v %v", op, rd)
	case OP_LD:
		return fmt.Sprintf("ld %v, %v", rd, inst.pointerText())
	case OP_ST:
		return fmt.Sprintf("st %v, %v", inst.pointerText(), rd)
	case OP_LDD:
		if inst.K == 0 {
			return fmt.Sprintf("ld %v, %v", rd, inst.Ptr)
		}
		return fmt.Sprintf("ldd %v, %v+%d", rd, inst.Ptr, inst.K)
	case OP_STD:
		if inst.K == 0 {
			return fmt.Sprintf("st %v, %v", inst.Ptr, rd)
		}
		return fmt.Sprintf("std %v+%d, %v", inst.Ptr, inst.K, rd)
	case OP_LDS:
		return fmt.Sprintf("lds %v, 0x%04x", rd, inst.K)
	case OP_STS:
		return fmt.Sprintf("sts 0x%04x, %v", inst.K, rd)
	case OP_LPM:
		if inst.Mode == MODE_POST_INC {
			return fmt.Sprintf("lpm %v, Z+", rd)
		}
		return fmt.Sprintf("lpm %v, Z", rd)
	case OP_IN:
		return fmt.Sprintf("in %v, 0x%02x", rd, inst.K)
	case OP_OUT:
		return fmt.Sprintf("out 0x%02x, %v", inst.K, rd)
	case OP_BSET:
		return bsetAlias[b]
	case OP_BCLR:
		return bclrAlias[b]
	case OP_BST, OP_BLD, OP_SBRC, OP_SBRS:
		return fmt.Sprintf("%v %v, %d", op, rd, b)
	case OP_SBI, OP_CBI, OP_SBIC, OP_SBIS:
		return fmt.Sprintf("%v 0x%02x, %d", op, inst.K, b)
	case OP_RJMP, OP_RCALL:
		return fmt.Sprintf("%v %v", op, inst.relativeText())
	case OP_JMP, OP_CALL:
		return fmt.Sprintf("%v 0x%04x", op, inst.K*2)
	case OP_BRBS:
		return fmt.Sprintf("%v %v", brbsAlias[b], inst.relativeText())
	case OP_BRBC:
		return fmt.Sprintf("%v %v", brbcAlias[b], inst.relativeText())
	}

	return op.String()
}

// Disassemble decodes and renders the instruction at pc. Relative
// control transfers are annotated with their absolute target.
func Disassemble(memory []uint8, pc uint16) (text string, err error) {
	inst, err := Decode(memory, pc)
	if err != nil {
		return
	}

	text = inst.String()

	switch inst.Op {
	case OP_RJMP, OP_RCALL, OP_BRBS, OP_BRBC:
		size := len(memory)
		target := ((int(pc)+2+2*int(inst.Offset))%size + size) % size
		text += fmt.Sprintf(" ; 0x%04x", target)
	}

	return
}

// Disassemble renders the instruction at pc in the CPU's memory.
func (cpu *Cpu) Disassemble(pc uint16) (text string, err error) {
	return Disassemble(cpu.State.memory, pc)
}
