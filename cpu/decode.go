package cpu

// fetchWord reads the little-endian opcode word at addr.
func fetchWord(memory []uint8, addr uint16) (word uint16, err error) {
	if int(addr)+1 >= len(memory) {
		err = ErrTruncatedInstruction
		return
	}

	word = uint16(memory[addr]) | uint16(memory[addr+1])<<8
	return
}

// Decode decodes the instruction at pc. It does not modify memory.
func Decode(memory []uint8, pc uint16) (inst Instruction, err error) {
	word, err := fetchWord(memory, pc)
	if err != nil {
		err = &ErrDecode{Pc: pc, Err: err}
		return
	}

	var next uint16
	if isTwoWord(word) {
		next, err = fetchWord(memory, pc+2)
		if err != nil || pc+2 < pc {
			err = &ErrDecode{Pc: pc, Word: word, Err: ErrTruncatedInstruction}
			return
		}
	}

	inst, ok := decodeWord(word, next)
	if !ok {
		err = &ErrDecode{Pc: pc, Word: word, Err: ErrInvalidOpcode}
		return
	}

	return
}

// decodeWord decodes an opcode, with next as the second word of the
// 32-bit instructions.
func decodeWord(word uint16, next uint16) (inst Instruction, ok bool) {
	d := uint8(word>>4) & 0x1f
	r := uint8(word&0xf) | uint8(word>>5)&0x10
	dh := 16 + uint8(word>>4)&0xf
	kImm := uint32(word>>4)&0xf0 | uint32(word)&0xf

	inst.Length = 2
	ok = true

	switch word >> 12 {
	case 0x0:
		switch word >> 10 {
		case 0x0:
			switch word >> 8 {
			case 0x00:
				if word != 0x0000 {
					return inst, false
				}
				inst.Op = OP_NOP
			case 0x01:
				inst.Op = OP_MOVW
				inst.Rd = uint8(word>>4&0xf) * 2
				inst.Rr = uint8(word&0xf) * 2
			default:
				// MULS, MULSU, FMUL family
				return inst, false
			}
		case 0x1:
			inst.Op, inst.Rd, inst.Rr = OP_CPC, d, r
		case 0x2:
			inst.Op, inst.Rd, inst.Rr = OP_SBC, d, r
		case 0x3:
			inst.Op, inst.Rd, inst.Rr = OP_ADD, d, r
		}
	case 0x1:
		switch word >> 10 & 3 {
		case 0:
			inst.Op = OP_CPSE
		case 1:
			inst.Op = OP_CP
		case 2:
			inst.Op = OP_SUB
		case 3:
			inst.Op = OP_ADC
		}
		inst.Rd, inst.Rr = d, r
	case 0x2:
		switch word >> 10 & 3 {
		case 0:
			inst.Op = OP_AND
		case 1:
			inst.Op = OP_EOR
		case 2:
			inst.Op = OP_OR
		case 3:
			inst.Op = OP_MOV
		}
		inst.Rd, inst.Rr = d, r
	case 0x3, 0x4, 0x5, 0x6, 0x7, 0xe:
		inst.Op = immOp[word>>12]
		inst.Rd = dh
		inst.K = kImm
	case 0x8, 0xa:
		// LDD/STD: 10q0 qqsd dddd yqqq
		q := uint32(word>>8)&0x20 | uint32(word>>7)&0x18 | uint32(word)&7
		inst.Op = OP_LDD
		if word&0x0200 != 0 {
			inst.Op = OP_STD
		}
		inst.Rd = d
		inst.K = q
		inst.Ptr = PTR_Z
		if word&0x0008 != 0 {
			inst.Ptr = PTR_Y
		}
	case 0x9:
		return decodeNine(word, next)
	case 0xb:
		inst.Op = OP_IN
		if word&0x0800 != 0 {
			inst.Op = OP_OUT
		}
		inst.Rd = d
		inst.K = uint32(word>>5)&0x30 | uint32(word)&0xf
	case 0xc, 0xd:
		inst.Op = OP_RJMP
		if word>>12 == 0xd {
			inst.Op = OP_RCALL
		}
		inst.Offset = int16(word<<4) >> 4
	case 0xf:
		switch word >> 10 & 3 {
		case 0, 1:
			inst.Op = OP_BRBS
			if word&0x0400 != 0 {
				inst.Op = OP_BRBC
			}
			inst.B = uint8(word & 7)
			inst.Offset = int16(word<<6) >> 9
		default:
			if word&0x0008 != 0 {
				return inst, false
			}
			inst.Op = []Op{OP_BLD, OP_BST, OP_SBRC, OP_SBRS}[word>>9&3]
			inst.Rd = d
			inst.B = uint8(word & 7)
		}
	}

	return
}

// immOp maps the top nibble of oooo KKKK dddd KKKK.
var immOp = map[uint16]Op{
	0x3: OP_CPI,
	0x4: OP_SBCI,
	0x5: OP_SUBI,
	0x6: OP_ORI,
	0x7: OP_ANDI,
	0xe: OP_LDI,
}

// ldNibble maps the low nibble of 1001 00xd dddd nnnn to a pointer access.
var ldNibble = map[uint16]struct {
	ptr  Pointer
	mode Mode
}{
	0x1: {PTR_Z, MODE_POST_INC},
	0x2: {PTR_Z, MODE_PRE_DEC},
	0x9: {PTR_Y, MODE_POST_INC},
	0xa: {PTR_Y, MODE_PRE_DEC},
	0xc: {PTR_X, MODE_NONE},
	0xd: {PTR_X, MODE_POST_INC},
	0xe: {PTR_X, MODE_PRE_DEC},
}

// oneRegNibble maps the low nibble of 1001 010d dddd nnnn.
var oneRegNibble = map[uint16]Op{
	0x0: OP_COM,
	0x1: OP_NEG,
	0x2: OP_SWAP,
	0x3: OP_INC,
	0x5: OP_ASR,
	0x6: OP_LSR,
	0x7: OP_ROR,
	0xa: OP_DEC,
}

// decodeNine decodes the 1001 xxxx xxxx xxxx group.
func decodeNine(word uint16, next uint16) (inst Instruction, ok bool) {
	d := uint8(word>>4) & 0x1f
	nibble := word & 0xf

	inst.Length = 2
	ok = true

	switch word >> 9 & 7 {
	case 0, 1:
		store := word&0x0200 != 0
		inst.Rd = d
		switch {
		case nibble == 0x0:
			inst.Op = OP_LDS
			if store {
				inst.Op = OP_STS
			}
			inst.K = uint32(next)
			inst.Length = 4
		case nibble == 0xf:
			inst.Op = OP_POP
			if store {
				inst.Op = OP_PUSH
			}
		case !store && (nibble == 0x4 || nibble == 0x5):
			inst.Op = OP_LPM
			if nibble == 0x5 {
				inst.Mode = MODE_POST_INC
			}
		default:
			access, found := ldNibble[nibble]
			if !found {
				return inst, false
			}
			inst.Op = OP_LD
			if store {
				inst.Op = OP_ST
			}
			inst.Ptr = access.ptr
			inst.Mode = access.mode
		}
	case 2:
		if op, found := oneRegNibble[nibble]; found {
			inst.Op = op
			inst.Rd = d
			return
		}
		switch nibble {
		case 0x8:
			if word&0x0100 == 0 {
				inst.Op = OP_BSET
				if word&0x0080 != 0 {
					inst.Op = OP_BCLR
				}
				inst.B = uint8(word>>4) & 7
				return
			}
			switch word {
			case 0x9508:
				inst.Op = OP_RET
			case 0x9518:
				inst.Op = OP_RETI
			case 0x9588:
				inst.Op = OP_SLEEP
			case 0x9598:
				inst.Op = OP_BREAK
			case 0x95a8:
				inst.Op = OP_WDR
			case 0x95c8:
				inst.Op = OP_LPM
			default:
				return inst, false
			}
		case 0x9:
			switch word {
			case 0x9409:
				inst.Op = OP_IJMP
			case 0x9509:
				inst.Op = OP_ICALL
			default:
				return inst, false
			}
		case 0xc, 0xd, 0xe, 0xf:
			inst.Op = OP_JMP
			if word&0x0002 != 0 {
				inst.Op = OP_CALL
			}
			inst.K = (uint32(word>>4)&0x1f)<<17 | uint32(word&1)<<16 | uint32(next)
			inst.Length = 4
		default:
			return inst, false
		}
	case 3:
		inst.Op = OP_ADIW
		if word&0x0100 != 0 {
			inst.Op = OP_SBIW
		}
		inst.Rd = 24 + uint8(word>>4&3)*2
		inst.K = uint32(word>>2)&0x30 | uint32(word)&0xf
	case 4, 5:
		inst.Op = []Op{OP_CBI, OP_SBIC, OP_SBI, OP_SBIS}[word>>8&3]
		inst.K = uint32(word>>3) & 0x1f
		inst.B = uint8(word & 7)
	case 6, 7:
		inst.Op = OP_MUL
		inst.Rd = d
		inst.Rr = uint8(word&0xf) | uint8(word>>5)&0x10
	}

	return
}

// skipLength returns the length of the instruction at pc, for the skip
// instructions.
func (st *State) skipLength(pc uint16) (length uint16, err error) {
	word, err := st.Word(pc)
	if err != nil {
		return
	}

	length = 2
	if isTwoWord(word) {
		length = 4
	}

	return
}
