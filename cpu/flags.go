package cpu

// Flags is the status register (SREG).
type Flags uint8

const (
	FLAG_C = Flags(1 << 0) // Carry
	FLAG_Z = Flags(1 << 1) // Zero
	FLAG_N = Flags(1 << 2) // Negative
	FLAG_V = Flags(1 << 3) // Two's complement overflow
	FLAG_S = Flags(1 << 4) // Sign, N xor V
	FLAG_H = Flags(1 << 5) // Half carry
	FLAG_T = Flags(1 << 6) // Bit copy storage
	FLAG_I = Flags(1 << 7) // Global interrupt enable
)

// flagNames are the single letter SREG names, bit 0 first.
const flagNames = "CZNVSHTI"

// Has returns true if all of the flags in mask are set.
func (fl Flags) Has(mask Flags) bool {
	return fl&mask == mask
}

// Bit returns true if SREG bit n is set.
func (fl Flags) Bit(n uint8) bool {
	return fl&(1<<(n&7)) != 0
}

// String renders SREG as "ITHSVNZC", with '-' for clear bits.
func (fl Flags) String() string {
	var out [8]byte
	for n := range 8 {
		ch := byte('-')
		if fl.Bit(uint8(n)) {
			ch = flagNames[n]
		}
		out[7-n] = ch
	}
	return string(out[:])
}

func (fl *Flags) set(mask Flags, on bool) {
	if on {
		*fl |= mask
	} else {
		*fl &^= mask
	}
}

// setNZS sets N and Z from the result, then S from N and V.
func (fl *Flags) setNZS(result uint8) {
	fl.set(FLAG_N, result&0x80 != 0)
	fl.set(FLAG_Z, result == 0)
	fl.set(FLAG_S, fl.Has(FLAG_N) != fl.Has(FLAG_V))
}
