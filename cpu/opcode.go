package cpu

// Op is an instruction kind. The set is closed: every Op has an encoding,
// a decoding, executable semantics and a disassembly.
type Op int

//go:generate go tool stringer -linecomment -type=Op
const (
	OP_NOP   Op = iota // nop
	OP_MOVW            // movw
	OP_MUL             // mul
	OP_ADD             // add
	OP_ADC             // adc
	OP_SUB             // sub
	OP_SBC             // sbc
	OP_AND             // and
	OP_OR              // or
	OP_EOR             // eor
	OP_CP              // cp
	OP_CPC             // cpc
	OP_CPSE            // cpse
	OP_MOV             // mov
	OP_LDI             // ldi
	OP_CPI             // cpi
	OP_SUBI            // subi
	OP_SBCI            // sbci
	OP_ORI             // ori
	OP_ANDI            // andi
	OP_ADIW            // adiw
	OP_SBIW            // sbiw
	OP_COM             // com
	OP_NEG             // neg
	OP_SWAP            // swap
	OP_INC             // inc
	OP_DEC             // dec
	OP_ASR             // asr
	OP_LSR             // lsr
	OP_ROR             // ror
	OP_LD              // ld
	OP_ST              // st
	OP_LDD             // ldd
	OP_STD             // std
	OP_LDS             // lds
	OP_STS             // sts
	OP_LPM             // lpm
	OP_PUSH            // push
	OP_POP             // pop
	OP_IN              // in
	OP_OUT             // out
	OP_BSET            // bset
	OP_BCLR            // bclr
	OP_BST             // bst
	OP_BLD             // bld
	OP_SBI             // sbi
	OP_CBI             // cbi
	OP_SBIC            // sbic
	OP_SBIS            // sbis
	OP_SBRC            // sbrc
	OP_SBRS            // sbrs
	OP_RJMP            // rjmp
	OP_RCALL           // rcall
	OP_JMP             // jmp
	OP_CALL            // call
	OP_IJMP            // ijmp
	OP_ICALL           // icall
	OP_RET             // ret
	OP_RETI            // reti
	OP_BRBS            // brbs
	OP_BRBC            // brbc
	OP_SLEEP           // sleep
	OP_WDR             // wdr
	OP_BREAK           // break
)

// OP_COUNT is the number of instruction kinds.
const OP_COUNT = int(OP_BREAK) + 1

// Pointer selects the X, Y or Z pointer pair by its low register.
type Pointer uint8

const (
	PTR_NONE = Pointer(0)
	PTR_X    = Pointer(REG_X)
	PTR_Y    = Pointer(REG_Y)
	PTR_Z    = Pointer(REG_Z)
)

func (ptr Pointer) String() string {
	switch ptr {
	case PTR_X:
		return "X"
	case PTR_Y:
		return "Y"
	case PTR_Z:
		return "Z"
	}
	return "-"
}

// Mode is the pointer adjustment of LD, ST and LPM.
type Mode uint8

const (
	MODE_NONE     = Mode(0) // Pointer unchanged.
	MODE_POST_INC = Mode(1) // Pointer incremented after the access.
	MODE_PRE_DEC  = Mode(2) // Pointer decremented before the access.
)

// Instruction is a decoded instruction. Only the operands used by Op are
// set; the others are zero.
//
// Rd is the register operand of single register instructions, including
// the source register of ST, STD, STS, PUSH, OUT, BST, SBRC and SBRS.
type Instruction struct {
	Op     Op      // Instruction kind.
	Rd     uint8   // Destination, or only, register.
	Rr     uint8   // Source register.
	K      uint32  // Immediate, I/O address, data address, displacement or word target.
	B      uint8   // Bit number, or SREG bit for BSET, BCLR, BRBS and BRBC.
	Offset int16   // Relative target in words for RJMP, RCALL, BRBS and BRBC.
	Ptr    Pointer // Pointer pair for LD, ST, LDD and STD.
	Mode   Mode    // Pointer adjustment for LD, ST and LPM.
	Length uint16  // Encoded length in bytes.
}

// Halt returns true if the instruction stops the CPU.
func (inst Instruction) Halt() bool {
	return inst.Op == OP_BREAK
}

// IsTwoWord returns true for the 32-bit instructions.
func (op Op) IsTwoWord() bool {
	switch op {
	case OP_JMP, OP_CALL, OP_LDS, OP_STS:
		return true
	}
	return false
}

// EncodedLength returns the encoded length of op in bytes.
func (op Op) EncodedLength() uint16 {
	if op.IsTwoWord() {
		return 4
	}
	return 2
}

// isTwoWord identifies a 32-bit instruction from its first word.
func isTwoWord(word uint16) bool {
	// JMP/CALL: 1001 010k kkkk 11xk
	// LDS/STS:  1001 00xd dddd 0000
	return word&0xfe0c == 0x940c || word&0xfc0f == 0x9000
}

// Two register operations: oooo oord dddd rrrr
var twoRegBase = map[Op]uint16{
	OP_CPC:  0x0400,
	OP_SBC:  0x0800,
	OP_ADD:  0x0c00,
	OP_CPSE: 0x1000,
	OP_CP:   0x1400,
	OP_SUB:  0x1800,
	OP_ADC:  0x1c00,
	OP_AND:  0x2000,
	OP_EOR:  0x2400,
	OP_OR:   0x2800,
	OP_MOV:  0x2c00,
	OP_MUL:  0x9c00,
}

// Register and immediate operations: oooo KKKK dddd KKKK
var immBase = map[Op]uint16{
	OP_CPI:  0x3000,
	OP_SBCI: 0x4000,
	OP_SUBI: 0x5000,
	OP_ORI:  0x6000,
	OP_ANDI: 0x7000,
	OP_LDI:  0xe000,
}

// One register operations: 1001 010d dddd oooo
var oneRegBase = map[Op]uint16{
	OP_COM:  0x9400,
	OP_NEG:  0x9401,
	OP_SWAP: 0x9402,
	OP_INC:  0x9403,
	OP_ASR:  0x9405,
	OP_LSR:  0x9406,
	OP_ROR:  0x9407,
	OP_DEC:  0x940a,
}

// Operations with no operands.
var fixedWord = map[Op]uint16{
	OP_NOP:   0x0000,
	OP_IJMP:  0x9409,
	OP_ICALL: 0x9509,
	OP_RET:   0x9508,
	OP_RETI:  0x9518,
	OP_SLEEP: 0x9588,
	OP_BREAK: 0x9598,
	OP_WDR:   0x95a8,
}

// Low nibble of LD and ST, by pointer and mode.
var ptrNibble = map[Pointer]map[Mode]uint16{
	PTR_X: {MODE_NONE: 0xc, MODE_POST_INC: 0xd, MODE_PRE_DEC: 0xe},
	PTR_Y: {MODE_POST_INC: 0x9, MODE_PRE_DEC: 0xa},
	PTR_Z: {MODE_POST_INC: 0x1, MODE_PRE_DEC: 0x2},
}

// Bit I/O operations: 1001 10oo AAAA Abbb
var bitIoBase = map[Op]uint16{
	OP_CBI:  0x9800,
	OP_SBIC: 0x9900,
	OP_SBI:  0x9a00,
	OP_SBIS: 0x9b00,
}

// Register bit operations: 1111 1ood dddd 0bbb
var regBitBase = map[Op]uint16{
	OP_BLD:  0xf800,
	OP_BST:  0xfa00,
	OP_SBRC: 0xfc00,
	OP_SBRS: 0xfe00,
}

// Encode returns the opcode words of the instruction.
func (inst Instruction) Encode() (words []uint16, err error) {
	op := inst.Op
	d := uint16(inst.Rd)
	r := uint16(inst.Rr)
	k := inst.K
	b := uint16(inst.B)

	bad := func(operand string) ([]uint16, error) {
		return nil, ErrOperand{Op: op, Operand: operand}
	}

	if inst.Rd >= REGISTER_COUNT {
		return bad("rd")
	}
	if inst.Rr >= REGISTER_COUNT {
		return bad("rr")
	}

	if base, ok := twoRegBase[op]; ok {
		return []uint16{base | (r&0x10)<<5 | d<<4 | r&0xf}, nil
	}

	if base, ok := immBase[op]; ok {
		if d < 16 {
			return bad("rd")
		}
		if k > 0xff {
			return bad("k")
		}
		return []uint16{base | uint16(k&0xf0)<<4 | (d-16)<<4 | uint16(k&0xf)}, nil
	}

	if base, ok := oneRegBase[op]; ok {
		return []uint16{base | d<<4}, nil
	}

	if word, ok := fixedWord[op]; ok {
		return []uint16{word}, nil
	}

	if base, ok := bitIoBase[op]; ok {
		if k > 0x1f {
			return bad("a")
		}
		if b > 7 {
			return bad("b")
		}
		return []uint16{base | uint16(k)<<3 | b}, nil
	}

	if base, ok := regBitBase[op]; ok {
		if b > 7 {
			return bad("b")
		}
		return []uint16{base | d<<4 | b}, nil
	}

	switch op {
	case OP_MOVW:
		if d&1 != 0 {
			return bad("rd")
		}
		if r&1 != 0 {
			return bad("rr")
		}
		return []uint16{0x0100 | (d/2)<<4 | r/2}, nil
	case OP_ADIW, OP_SBIW:
		if d < 24 || d&1 != 0 {
			return bad("rd")
		}
		if k > 0x3f {
			return bad("k")
		}
		base := uint16(0x9600)
		if op == OP_SBIW {
			base = 0x9700
		}
		return []uint16{base | uint16(k&0x30)<<2 | ((d-24)/2)<<4 | uint16(k&0xf)}, nil
	case OP_LD, OP_ST:
		nibble, ok := ptrNibble[inst.Ptr][inst.Mode]
		if !ok {
			return bad("pointer")
		}
		base := uint16(0x9000)
		if op == OP_ST {
			base = 0x9200
		}
		return []uint16{base | d<<4 | nibble}, nil
	case OP_LDD, OP_STD:
		if inst.Ptr != PTR_Y && inst.Ptr != PTR_Z {
			return bad("pointer")
		}
		if k > 0x3f {
			return bad("q")
		}
		q := uint16(k)
		word := 0x8000 | (q&0x20)<<8 | (q&0x18)<<7 | d<<4 | q&7
		if inst.Ptr == PTR_Y {
			word |= 0x0008
		}
		if op == OP_STD {
			word |= 0x0200
		}
		return []uint16{word}, nil
	case OP_LDS, OP_STS:
		if k > 0xffff {
			return bad("k")
		}
		base := uint16(0x9000)
		if op == OP_STS {
			base = 0x9200
		}
		return []uint16{base | d<<4, uint16(k)}, nil
	case OP_LPM:
		switch inst.Mode {
		case MODE_NONE:
			return []uint16{0x9004 | d<<4}, nil
		case MODE_POST_INC:
			return []uint16{0x9005 | d<<4}, nil
		}
		return bad("mode")
	case OP_POP:
		return []uint16{0x900f | d<<4}, nil
	case OP_PUSH:
		return []uint16{0x920f | d<<4}, nil
	case OP_IN, OP_OUT:
		if k > 0x3f {
			return bad("a")
		}
		base := uint16(0xb000)
		if op == OP_OUT {
			base = 0xb800
		}
		return []uint16{base | uint16(k&0x30)<<5 | d<<4 | uint16(k&0xf)}, nil
	case OP_BSET, OP_BCLR:
		if b > 7 {
			return bad("s")
		}
		base := uint16(0x9408)
		if op == OP_BCLR {
			base = 0x9488
		}
		return []uint16{base | b<<4}, nil
	case OP_RJMP, OP_RCALL:
		if inst.Offset < -2048 || inst.Offset > 2047 {
			return bad("k")
		}
		base := uint16(0xc000)
		if op == OP_RCALL {
			base = 0xd000
		}
		return []uint16{base | uint16(inst.Offset)&0x0fff}, nil
	case OP_BRBS, OP_BRBC:
		if b > 7 {
			return bad("s")
		}
		if inst.Offset < -64 || inst.Offset > 63 {
			return bad("k")
		}
		base := uint16(0xf000)
		if op == OP_BRBC {
			base = 0xf400
		}
		return []uint16{base | (uint16(inst.Offset)&0x7f)<<3 | b}, nil
	case OP_JMP, OP_CALL:
		if k >= 1<<22 {
			return bad("k")
		}
		base := uint16(0x940c)
		if op == OP_CALL {
			base = 0x940e
		}
		return []uint16{base | uint16(k>>17&0x1f)<<4 | uint16(k>>16&1), uint16(k)}, nil
	}

	return bad("op")
}
